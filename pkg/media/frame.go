package media

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// IsSolidColor reports whether an extracted frame is a single flat color,
// which usually means a fade-in or a black leader was captured. A 10x10 grid
// is sampled; more than 95% of samples matching the first pixel counts as solid.
func IsSolidColor(path string) (bool, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to decode frame: %w", err)
	}
	return solid(img), nil
}

func solid(img image.Image) bool {
	bounds := img.Bounds()
	if bounds.Empty() {
		return true
	}

	const sampleSize = 10
	stepX := max(bounds.Dx()/sampleSize, 1)
	stepY := max(bounds.Dy()/sampleSize, 1)

	r1, g1, b1, a1 := img.At(bounds.Min.X, bounds.Min.Y).RGBA()

	different, total := 0, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			total++
			r2, g2, b2, a2 := img.At(x, y).RGBA()
			// 16-bit channels; 1000 is roughly 1.5% of the range
			if absDiff(r1, r2) > 1000 || absDiff(g1, g2) > 1000 || absDiff(b1, b2) > 1000 || absDiff(a1, a2) > 1000 {
				different++
			}
		}
	}
	return different*100 < total*5
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
