package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	ffmpegBin  = "ffmpeg"
	ffprobeBin = "ffprobe"
)

// FFmpeg drives ffmpeg and ffprobe
type FFmpeg struct {
	runner Runner
}

// NewFFmpeg creates an ffmpeg wrapper on top of a runner
func NewFFmpeg(runner Runner) *FFmpeg {
	return &FFmpeg{runner: runner}
}

// Run invokes ffmpeg with the quiet, non-interactive flags prepended
func (f *FFmpeg) Run(ctx context.Context, args ...string) error {
	full := append([]string{"-loglevel", "error", "-nostdin"}, args...)
	_, err := f.runner.Run(ctx, ffmpegBin, full...)
	return err
}

// ExtractFrame writes the second frame of a video to dst as a JPEG. Extra
// filters are appended to the frame selector.
func (f *FFmpeg) ExtractFrame(ctx context.Context, src, dst, filters string) error {
	vf := `select=gte(n\,1)`
	if filters != "" {
		vf += "," + filters
	}
	return f.Run(ctx, "-y", "-i", src, "-vf", vf, "-vframes", "1", "-qscale:v", "2", dst)
}

// Dimensions probes the size of the first video stream
func (f *FFmpeg) Dimensions(ctx context.Context, src string) (int, int, error) {
	out, err := f.runner.Run(ctx, ffprobeBin,
		"-v", "error",
		"-of", "flat=s=_",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		src)
	if err != nil {
		return 0, 0, err
	}
	w, h := ParseProbe(string(out))
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("no video stream dimensions in %s", src)
	}
	return w, h, nil
}

// ParseProbe reads width and height from ffprobe's flat output
func ParseProbe(out string) (int, int) {
	var w, h int
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.Trim(value, `"`))
		if err != nil {
			continue
		}
		switch {
		case strings.HasSuffix(key, "width"):
			w = n
		case strings.HasSuffix(key, "height"):
			h = n
		}
	}
	return w, h
}
