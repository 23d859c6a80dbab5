package media

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

func exifOrientation(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 0, false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, false
	}
	o, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return o, true
}
