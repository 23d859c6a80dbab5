package media

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	convertBin  = "convert"
	identifyBin = "identify"
)

var hexColorRe = regexp.MustCompile(`#[0-9A-Fa-f]+`)

// Magick drives the ImageMagick command line tools
type Magick struct {
	runner Runner
}

// NewMagick creates an ImageMagick wrapper on top of a runner
func NewMagick(runner Runner) *Magick {
	return &Magick{runner: runner}
}

// Identify runs identify with a format string and returns the trimmed first
// line of its output. Multi-frame images report once per frame.
func (m *Magick) Identify(ctx context.Context, path, format string) (string, error) {
	out, err := m.runner.Run(ctx, identifyBin, "-format", format+`\n`, path)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// Dimensions returns the pixel size of an image as stored on disk
func (m *Magick) Dimensions(ctx context.Context, path string) (int, int, error) {
	out, err := m.Identify(ctx, path, "%w %h")
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected identify output %q for %s", out, path)
	}
	w, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse width of %s: %w", path, err)
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse height of %s: %w", path, err)
	}
	return w, h, nil
}

// Orientation returns the EXIF orientation tag, or 0 when there is none.
// The EXIF block is read in-process first; identify covers the formats the
// EXIF decoder does not understand.
func (m *Magick) Orientation(ctx context.Context, path string) int {
	if o, ok := exifOrientation(path); ok {
		return o
	}
	out, err := m.Identify(ctx, path, "%[EXIF:Orientation]")
	if err != nil {
		return 0
	}
	o, err := strconv.Atoi(out)
	if err != nil {
		return 0
	}
	return o
}

// DisplaySize returns the size an image is shown at. With autorotate the
// width and height are swapped for orientations 5 to 8.
func (m *Magick) DisplaySize(ctx context.Context, path string, autorotate bool) (int, int, error) {
	w, h, err := m.Dimensions(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	if autorotate && IsRotated(m.Orientation(ctx, path)) {
		w, h = h, w
	}
	return w, h, nil
}

// IsRotated reports whether an EXIF orientation turns the image by 90 degrees
func IsRotated(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}

// Palette reduces an image to at most seven representative colors
func (m *Magick) Palette(ctx context.Context, path string) ([]string, error) {
	out, err := m.runner.Run(ctx, convertBin, path,
		"-resize", "200x200",
		"-depth", "4",
		"+dither",
		"-colors", "7",
		"-unique-colors",
		"txt:-")
	if err != nil {
		return nil, err
	}
	return ParsePalette(string(out)), nil
}

// ParsePalette extracts the hex colors of an ImageMagick txt: dump. The first
// line is a header; every following line contributes its first hex color.
func ParsePalette(dump string) []string {
	lines := strings.Split(dump, "\n")
	if len(lines) < 2 {
		return nil
	}

	var colors []string
	for _, line := range lines[1:] {
		if c := hexColorRe.FindString(line); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}

// Convert runs convert with the given arguments
func (m *Magick) Convert(ctx context.Context, args ...string) error {
	_, err := m.runner.Run(ctx, convertBin, args...)
	return err
}
