// Package encoder produces the resolution-suffixed image and video artifacts
// of every gallery item. An artifact that exists with a non-zero size is
// complete, so a second run only produces what is missing.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expose/pkg/config"
	"expose/pkg/media"
	"expose/pkg/metrics"
	"expose/pkg/models"
	"expose/pkg/scanner"
	"expose/pkg/workspace"
)

const (
	frameName    = "temp.jpg"
	sequenceName = "sequencevideo.mp4"
)

// Encoder runs the per-item encode pipeline
type Encoder struct {
	cfg     *config.Config
	siteDir string
	magick  *media.Magick
	ffmpeg  *media.FFmpeg
	scratch *workspace.Workspace
	logger  *slog.Logger

	// OnItem is called after each item has been processed
	OnItem func(item *models.GalleryItem)
}

// New creates an encoder writing below siteDir
func New(cfg *config.Config, siteDir string, runner media.Runner, scratch *workspace.Workspace, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Encoder{
		cfg:     cfg,
		siteDir: siteDir,
		magick:  media.NewMagick(runner),
		ffmpeg:  media.NewFFmpeg(runner),
		scratch: scratch,
		logger:  logger.With("component", "encoder"),
	}
}

// Encode processes items in order. Only cancellation stops it early.
func (e *Encoder) Encode(ctx context.Context, items []*models.GalleryItem) error {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.EncodeItem(ctx, item); err != nil {
			return err
		}
		if e.OnItem != nil {
			e.OnItem(item)
		}
	}
	return nil
}

// EncodeItem produces every missing artifact of one item and clears the
// scratch workspace afterwards. Failed invocations are logged and left for
// the next run; only cancellation is returned.
func (e *Encoder) EncodeItem(ctx context.Context, item *models.GalleryItem) error {
	outDir := filepath.Join(e.siteDir, filepath.FromSlash(item.URL()))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		e.logger.Error("cannot create item directory", "dir", outDir, "error", err)
		return nil
	}
	defer func() {
		if err := e.scratch.Clear(); err != nil {
			e.logger.Warn("clearing scratch failed", "error", err)
		}
	}()

	log := e.logger.With("item", item.URL(), "kind", item.Kind.String())
	image := item.SourceFile

	if item.Kind != models.MediaImage {
		playable := item.SourceFile
		if item.Kind == models.MediaImageSequence {
			if e.sequenceFinished(outDir) {
				log.Debug("sequence already encoded")
				metrics.EncodesTotal.WithLabelValues(item.Kind.String(), metrics.StatusSkipped).Inc()
				return nil
			}
			compiled, err := e.compileSequence(ctx, item.SourceFile)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn("sequence compile failed", "error", err)
				return nil
			}
			playable = compiled
		}

		e.encodeVideo(ctx, log, item, playable, outDir)

		frame := e.scratch.Path(frameName)
		if err := e.ffmpeg.ExtractFrame(ctx, playable, frame, item.VideoFilters); err != nil {
			log.Warn("thumbnail frame extraction failed", "error", err)
		}
		image = frame
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.encodeImages(ctx, log, item, image, outDir)

	if e.cfg.DownloadButton {
		if err := e.writeArchive(item, outDir); err != nil {
			log.Warn("download archive failed", "error", err)
		}
	}
	return ctx.Err()
}

// Complete reports whether an artifact exists with a non-zero size
func Complete(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// ImagePath is the expected still image artifact for a rung
func ImagePath(outDir string, res int) string {
	return filepath.Join(outDir, fmt.Sprintf("%d.jpg", res))
}

// VideoPath is the expected video artifact for a rung and format
func VideoPath(outDir string, res int, format string) string {
	return filepath.Join(outDir, fmt.Sprintf("%d-%s.%s", res, format, media.FormatExtension(format)))
}

// run wraps one external invocation with in-progress registration, timing
// and outcome counting. A failed run removes whatever partial output it left.
func (e *Encoder) run(ctx context.Context, kind, out string, fn func() error) error {
	if out != "" {
		e.scratch.Begin(out)
		defer e.scratch.Done()
	}
	start := time.Now()
	err := fn()
	metrics.EncodeDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		// run is only reached for incomplete artifacts, so anything left
		// behind is partial, whatever its size
		if out != "" {
			_ = os.Remove(out)
		}
		metrics.EncodesTotal.WithLabelValues(kind, metrics.StatusFailed).Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ctxErr, err)
		}
		return err
	}
	metrics.EncodesTotal.WithLabelValues(kind, metrics.StatusDone).Inc()
	return nil
}

// encodeImages writes one JPEG per rung the source is at least as wide as,
// always including the last rung. The source width is probed here rather than
// reused from the scan.
func (e *Encoder) encodeImages(ctx context.Context, log *slog.Logger, item *models.GalleryItem, image, outDir string) {
	width, _, err := e.magick.Dimensions(ctx, image)
	if err != nil {
		log.Warn("image probe failed", "file", image, "error", err)
		width = 0
	}

	options := item.ImageOptions
	if item.Kind == models.MediaVideo {
		options = ""
	}

	ladder := e.cfg.Resolution
	for i, res := range ladder {
		out := ImagePath(outDir, res)
		if Complete(out) {
			metrics.EncodesTotal.WithLabelValues("image", metrics.StatusSkipped).Inc()
			continue
		}
		if width < res && i != len(ladder)-1 {
			continue
		}
		args := ImageArgs(image, out, res, e.cfg.JPEGQuality, e.cfg.Autorotate, options)
		err := e.run(ctx, "image", out, func() error { return e.magick.Convert(ctx, args...) })
		if err != nil {
			log.Warn("resize failed", "res", res, "error", err)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (e *Encoder) sequenceFinished(outDir string) bool {
	for _, res := range e.cfg.Resolution {
		for _, format := range e.cfg.VideoFormats {
			if !Complete(VideoPath(outDir, res, format)) {
				return false
			}
		}
	}
	return true
}

// compileSequence copies the frames into scratch as a numbered series and
// encodes them into a single intermediate video
func (e *Encoder) compileSequence(ctx context.Context, dir string) (string, error) {
	frames, err := scanner.Frames(dir)
	if err != nil {
		return "", err
	}
	if len(frames) == 0 {
		return "", fmt.Errorf("no frames in %s", dir)
	}

	for i, frame := range frames {
		dst := e.scratch.Path(fmt.Sprintf("%04d%s", i, filepath.Ext(frame)))
		if err := copyFile(frame, dst); err != nil {
			return "", err
		}
	}

	out := e.scratch.Path(sequenceName)
	pattern := e.scratch.Path("%04d" + filepath.Ext(frames[0]))
	args := e.sequenceArgs(pattern, out)
	if err := e.run(ctx, "sequence", "", func() error { return e.ffmpeg.Run(ctx, args...) }); err != nil {
		return "", err
	}
	if !Complete(out) {
		return "", fmt.Errorf("sequence video was not written")
	}
	return out, nil
}

// encodeVideo produces every missing (format, rung) pair. Formats are
// independent: a failed first pass abandons only its own format.
func (e *Encoder) encodeVideo(ctx context.Context, log *slog.Logger, item *models.GalleryItem, src, outDir string) {
	width, height, err := e.ffmpeg.Dimensions(ctx, src)
	if err != nil {
		log.Warn("video probe failed", "error", err)
	}
	options := strings.Fields(item.VideoOptions)

	if e.cfg.Draft {
		res := e.cfg.Resolution[0]
		out := VideoPath(outDir, res, "h264")
		if Complete(out) {
			metrics.EncodesTotal.WithLabelValues("video", metrics.StatusSkipped).Inc()
			return
		}
		args := e.draftArgs(src, out, res, item.VideoFilters, options)
		if err := e.run(ctx, "video", out, func() error { return e.ffmpeg.Run(ctx, args...) }); err != nil {
			log.Warn("draft encode failed", "error", err)
		}
		return
	}

	for _, format := range e.cfg.VideoFormats {
		if _, ok := codecs[format]; !ok {
			log.Warn("unsupported video format ignored", "format", format)
			continue
		}
		firstPassDone := false

		for i, res := range e.cfg.Resolution {
			if ctx.Err() != nil {
				return
			}
			if width < res {
				continue
			}
			out := VideoPath(outDir, res, format)
			if Complete(out) {
				metrics.EncodesTotal.WithLabelValues("video", metrics.StatusSkipped).Inc()
				continue
			}

			mbit := models.BitrateFor(e.cfg.Bitrate, i)
			job := videoJob{
				format:  format,
				src:     src,
				out:     out,
				res:     res,
				mbit:    mbit,
				mbitMax: mbit * e.cfg.BitrateMaxRatio,
				filters: item.VideoFilters,
				options: options,
				passlog: e.scratch.Path("ffmpeg2pass-" + format),
			}
			log.Info("encoding", "format", format, "width", res, "height", scaledHeight(res, width, height))

			if !firstPassDone {
				if args := e.firstPassArgs(job); args != nil {
					if err := e.run(ctx, "firstpass", "", func() error { return e.ffmpeg.Run(ctx, args...) }); err != nil {
						log.Warn("first pass failed, skipping format", "format", format, "error", err)
						break
					}
				}
			}

			args := e.finalPassArgs(job)
			if err := e.run(ctx, "video", out, func() error { return e.ffmpeg.Run(ctx, args...) }); err != nil {
				log.Warn("encode failed", "format", format, "res", res, "error", err)
			}
			firstPassDone = true
		}
	}
}

func scaledHeight(res, width, height int) int {
	if width == 0 {
		return 0
	}
	return height * res / width
}
