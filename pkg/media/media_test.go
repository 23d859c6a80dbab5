package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expose/pkg/media/mediatest"
)

func TestParsePalette(t *testing.T) {
	dump := "# ImageMagick pixel enumeration: 7,1,15,srgb\n" +
		"0,0: (0,0,0)  #000000  black\n" +
		"1,0: (3,4,5)  #334455  srgb(51,68,85)\n" +
		"2,0: (15,15,15)  #FFFFFF  white\n"

	assert.Equal(t, []string{"#000000", "#334455", "#FFFFFF"}, ParsePalette(dump))
	assert.Nil(t, ParsePalette("# header only"))
	assert.Empty(t, ParsePalette("# header\nno colors here\n"))
}

func TestParseProbe(t *testing.T) {
	w, h := ParseProbe("streams_stream_0_width=1920\nstreams_stream_0_height=1080\n")
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	w, h = ParseProbe("garbage\n")
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestDisplaySizeSwapsRotatedImages(t *testing.T) {
	runner := mediatest.NewRunner()
	runner.Handle("identify", func(args []string) ([]byte, error) {
		switch args[1] {
		case `%w %h\n`:
			return []byte("4000 3000\n"), nil
		case `%[EXIF:Orientation]\n`:
			return []byte("6\n"), nil
		}
		return nil, errors.New("unexpected format")
	})
	m := NewMagick(runner)
	path := filepath.Join(t.TempDir(), "missing.jpg")

	w, h, err := m.DisplaySize(context.Background(), path, true)
	require.NoError(t, err)
	assert.Equal(t, 3000, w)
	assert.Equal(t, 4000, h)

	w, h, err = m.DisplaySize(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, 4000, w)
	assert.Equal(t, 3000, h)
}

func TestDimensionsRejectsBadOutput(t *testing.T) {
	runner := mediatest.NewRunner()
	runner.Handle("identify", func([]string) ([]byte, error) { return []byte("oops"), nil })

	_, _, err := NewMagick(runner).Dimensions(context.Background(), "x.jpg")
	assert.Error(t, err)
}

func TestExtractFrameArguments(t *testing.T) {
	runner := mediatest.NewRunner()
	f := NewFFmpeg(runner)

	require.NoError(t, f.ExtractFrame(context.Background(), "in.mov", "out.jpg", "hflip"))
	calls := runner.CallsTo("ffmpeg")
	require.Len(t, calls, 1)
	assert.Equal(t, `ffmpeg -loglevel error -nostdin -y -i in.mov -vf select=gte(n\,1),hflip -vframes 1 -qscale:v 2 out.jpg`, calls[0].Line())
}

func TestFFmpegDimensionsFailsWithoutStream(t *testing.T) {
	runner := mediatest.NewRunner()
	runner.Handle("ffprobe", func([]string) ([]byte, error) { return []byte(""), nil })

	_, _, err := NewFFmpeg(runner).Dimensions(context.Background(), "audio.mp4")
	assert.Error(t, err)
}

func TestIsRotated(t *testing.T) {
	for o := 0; o <= 9; o++ {
		assert.Equal(t, o >= 5 && o <= 8, IsRotated(o), "orientation %d", o)
	}
}

func TestExtensionClassification(t *testing.T) {
	assert.True(t, IsImage("a.JPG"))
	assert.True(t, IsVideo("clip.MTS"))
	assert.False(t, IsVideo("notes.txt"))
	assert.Equal(t, "webm", FormatExtension("vp9"))
	assert.Equal(t, "mp4", FormatExtension("prores"))
}

func TestSniffVideo(t *testing.T) {
	dir := t.TempDir()
	webm := filepath.Join(dir, "clip.bin")
	require.NoError(t, os.WriteFile(webm, append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 60)...), 0o644))
	text := filepath.Join(dir, "notes.bin")
	require.NoError(t, os.WriteFile(text, []byte("just some words"), 0o644))

	assert.True(t, SniffVideo(webm))
	assert.False(t, SniffVideo(text))
	assert.False(t, SniffVideo(filepath.Join(dir, "missing")))
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestIsSolidColor(t *testing.T) {
	flat := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for i := range flat.Pix {
		flat.Pix[i] = 255
	}
	ok, err := IsSolidColor(writePNG(t, flat))
	require.NoError(t, err)
	assert.True(t, ok)

	striped := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x >= 20 {
				striped.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				striped.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	ok, err = IsSolidColor(writePNG(t, striped))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuiltinPaletteOrdersDarkToLight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			switch {
			case x < 10:
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			case x < 20:
				img.Set(x, y, color.RGBA{A: 255})
			default:
				img.Set(x, y, color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 255})
			}
		}
	}

	colors, err := BuiltinPalette{}.Palette(context.Background(), writePNG(t, img))
	require.NoError(t, err)
	assert.Equal(t, []string{"#000000", "#888888", "#FFFFFF"}, colors)
}
