package media

import (
	"context"
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// PaletteExtractor reduces an image file to a list of hex colors
type PaletteExtractor interface {
	Palette(ctx context.Context, path string) ([]string, error)
}

// BuiltinPalette extracts palettes in-process without ImageMagick. The image
// is fitted into 200x200, reduced to 4 bits per channel and the seven most
// frequent colors are returned ordered from darkest to lightest.
type BuiltinPalette struct{}

// Palette implements PaletteExtractor
func (BuiltinPalette) Palette(_ context.Context, path string) ([]string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return paletteOf(imaging.Fit(img, 200, 200, imaging.Box), 7), nil
}

type colorCount struct {
	r, g, b uint8
	n       int
}

func (c colorCount) luma() int {
	return 299*int(c.r) + 587*int(c.g) + 114*int(c.b)
}

func paletteOf(img image.Image, size int) []string {
	counts := make(map[[3]uint8]int)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			key := [3]uint8{quantize(r), quantize(g), quantize(b)}
			counts[key]++
		}
	}

	colors := make([]colorCount, 0, len(counts))
	for k, n := range counts {
		colors = append(colors, colorCount{r: k[0], g: k[1], b: k[2], n: n})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].n != colors[j].n {
			return colors[i].n > colors[j].n
		}
		return colors[i].luma() < colors[j].luma()
	})
	if len(colors) > size {
		colors = colors[:size]
	}
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].luma() < colors[j].luma()
	})

	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = fmt.Sprintf("#%02X%02X%02X", c.r, c.g, c.b)
	}
	return out
}

// quantize maps a 16-bit channel to 4 bits and back to 8 bits
func quantize(v uint32) uint8 {
	return uint8(v>>12) * 17
}
