package encoder

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// codec describes how one configured video format is produced
type codec struct {
	lib       string
	container string
	twoPass   bool
}

var codecs = map[string]codec{
	"h264": {lib: "libx264", container: "mp4", twoPass: true},
	"h265": {lib: "libx265", container: "mp4", twoPass: true},
	"vp9":  {lib: "libvpx-vp9", container: "webm", twoPass: true},
	"vp8":  {lib: "libvpx", container: "webm", twoPass: true},
	"ogv":  {lib: "libtheora"},
}

// videoJob is one (source, rung, format) encode
type videoJob struct {
	format  string
	src     string
	out     string
	res     int
	mbit    float64
	mbitMax float64
	filters string
	options []string
	passlog string
}

// ImageArgs returns the convert arguments for one image rung
func ImageArgs(src, out string, res, quality int, autorotate bool, options string) []string {
	size := fmt.Sprintf("%dx%d", res, res)
	var args []string
	if autorotate {
		args = append(args, "-auto-orient")
	}
	args = append(args,
		"-size", size,
		src,
		"-resize", size,
		"-quality", strconv.Itoa(quality),
		"+profile", "*",
	)
	args = append(args, strings.Fields(options)...)
	return append(args, out)
}

func scaleFilter(res int, filters string) string {
	vf := fmt.Sprintf("scale=%d:trunc(ow/a/2)*2", res)
	if filters != "" {
		vf += "," + filters
	}
	return vf
}

func megabits(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "M"
}

func (e *Encoder) audioArgs() []string {
	if e.cfg.DisableAudio {
		return []string{"-an"}
	}
	return []string{"-c:a", "copy"}
}

// codecArgs are the per-format encoder settings shared by both passes
func (e *Encoder) codecArgs(format string, pass int) []string {
	switch format {
	case "h264":
		return []string{"-profile:v", "high", "-pix_fmt", "yuv420p", "-preset", e.cfg.H264EncodeSpeed}
	case "h265":
		return []string{"-pix_fmt", "yuv420p", "-preset", e.cfg.H264EncodeSpeed}
	case "vp9":
		speed := "4"
		if pass == 2 {
			speed = strconv.Itoa(e.cfg.VP9EncodeSpeed)
		}
		return []string{"-pix_fmt", "yuv420p", "-speed", speed}
	default:
		return []string{"-pix_fmt", "yuv420p"}
	}
}

func (j videoJob) bitrateArgs() []string {
	return []string{"-b:v", megabits(j.mbit), "-maxrate", megabits(j.mbitMax), "-bufsize", megabits(j.mbitMax)}
}

// firstPassArgs measures statistics at source size with audio off and the
// output discarded. Nil means the format has no first pass.
func (e *Encoder) firstPassArgs(j videoJob) []string {
	c, ok := codecs[j.format]
	if !ok || !c.twoPass {
		return nil
	}
	args := []string{"-y", "-i", j.src, "-c:v", c.lib, "-threads", strconv.Itoa(e.cfg.FFmpegThreads)}
	if j.filters != "" {
		args = append(args, "-vf", j.filters)
	}
	args = append(args, e.codecArgs(j.format, 1)...)
	args = append(args, j.bitrateArgs()...)
	args = append(args, "-pass", "1", "-passlogfile", j.passlog, "-an", "-f", c.container, os.DevNull)
	return args
}

// finalPassArgs writes the artifact. Nil means the format is not supported.
func (e *Encoder) finalPassArgs(j videoJob) []string {
	c, ok := codecs[j.format]
	if !ok {
		return nil
	}
	args := []string{"-y", "-i", j.src, "-c:v", c.lib, "-threads", strconv.Itoa(e.cfg.FFmpegThreads), "-vf", scaleFilter(j.res, j.filters)}
	args = append(args, e.codecArgs(j.format, 2)...)
	args = append(args, j.bitrateArgs()...)
	if c.twoPass {
		args = append(args, "-pass", "2", "-passlogfile", j.passlog)
	}
	args = append(args, e.audioArgs()...)
	if c.container == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}
	if c.container != "" {
		args = append(args, "-f", c.container)
	}
	args = append(args, j.options...)
	return append(args, j.out)
}

// draftArgs is the single-pass, fixed-quality preview encode
func (e *Encoder) draftArgs(src, out string, res int, filters string, options []string) []string {
	args := []string{
		"-y", "-i", src,
		"-c:v", "libx264",
		"-threads", strconv.Itoa(e.cfg.FFmpegThreads),
		"-vf", scaleFilter(res, filters),
		"-profile:v", "high",
		"-pix_fmt", "yuv420p",
		"-preset", "ultrafast",
		"-crf", "26",
	}
	args = append(args, e.audioArgs()...)
	args = append(args, "-movflags", "+faststart", "-f", "mp4")
	args = append(args, options...)
	return append(args, out)
}

// sequenceArgs compiles numbered frames into one high quality intermediate
func (e *Encoder) sequenceArgs(pattern, out string) []string {
	return []string{
		"-f", "image2", "-y",
		"-i", pattern,
		"-c:v", "libx264",
		"-threads", strconv.Itoa(e.cfg.FFmpegThreads),
		"-vf", fmt.Sprintf("scale=%d:trunc(ow/a/2)*2", e.cfg.MaxResolution()),
		"-profile:v", "high",
		"-pix_fmt", "yuv420p",
		"-preset", e.cfg.H264EncodeSpeed,
		"-crf", "15",
		"-r", strconv.Itoa(e.cfg.SequenceFramerate),
		"-f", "mp4",
		out,
	}
}
