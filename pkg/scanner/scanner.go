// Package scanner turns the files of every gallery node into gallery items
// with display dimensions and a color palette.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"expose/pkg/config"
	"expose/pkg/media"
	"expose/pkg/metrics"
	"expose/pkg/models"
	"expose/pkg/textutil"
	"expose/pkg/workspace"
)

// frameName is the scratch file a video's representative frame is written to
const frameName = "temp.jpg"

// Scanner resolves gallery items for leaf and sequence-container nodes
type Scanner struct {
	cfg          *config.Config
	magick       *media.Magick
	ffmpeg       *media.FFmpeg
	palette      media.PaletteExtractor
	scratch      *workspace.Workspace
	videoEnabled bool
	logger       *slog.Logger

	// OnNode is called after each node has been scanned
	OnNode func(node *models.NavNode)
}

// New creates a scanner. The palette backend follows the configuration.
func New(cfg *config.Config, runner media.Runner, scratch *workspace.Workspace, videoEnabled bool, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	magick := media.NewMagick(runner)
	var palette media.PaletteExtractor = magick
	if cfg.PaletteBackend == "builtin" {
		palette = media.BuiltinPalette{}
	}
	return &Scanner{
		cfg:          cfg,
		magick:       magick,
		ffmpeg:       media.NewFFmpeg(runner),
		palette:      palette,
		scratch:      scratch,
		videoEnabled: videoEnabled,
		logger:       logger.With("component", "scanner"),
	}
}

// Scan fills Items and ItemCount of every gallery node and returns all items
// in node order. Per-file failures are logged and never abort the scan.
func (s *Scanner) Scan(ctx context.Context, nodes []*models.NavNode) ([]*models.GalleryItem, error) {
	var all []*models.GalleryItem
	for _, node := range nodes {
		if !node.IsGallery() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return all, err
		}
		items, err := s.scanNode(ctx, node)
		if err != nil {
			return all, err
		}
		node.Items = items
		node.ItemCount = len(items)
		all = append(all, items...)

		s.logger.Debug("scanned gallery", "url", node.URL, "items", len(items))
		if s.OnNode != nil {
			s.OnNode(node)
		}
	}
	return all, nil
}

func (s *Scanner) scanNode(ctx context.Context, node *models.NavNode) ([]*models.GalleryItem, error) {
	entries, err := os.ReadDir(node.Path)
	if err != nil {
		s.logger.Warn("cannot list gallery", "path", node.Path, "error", err)
		return nil, nil
	}

	var items []*models.GalleryItem
	slugs := make(map[string]int)

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return items, err
		}

		path := filepath.Join(node.Path, entry.Name())
		kind, probe, ok := s.classify(ctx, path, entry)
		if !ok {
			continue
		}

		item := &models.GalleryItem{
			SourceFile: path,
			Owner:      node,
			Slug:       uniqueSlug(slugs, textutil.ItemSlug(entry.Name())),
			Kind:       kind,
		}
		item.Palette = s.extractPalette(ctx, probe)

		width, height, err := s.magick.DisplaySize(ctx, probe, s.cfg.Autorotate)
		if err != nil {
			s.logger.Warn("probe failed", "file", path, "error", err)
		}
		item.DisplayWidth, item.DisplayHeight = models.SelectRung(s.cfg.Resolution, width, height)

		items = append(items, item)
		metrics.ItemsScannedTotal.WithLabelValues(kind.String()).Inc()
	}
	return items, nil
}

// classify decides the media kind of a directory entry and returns the image
// that stands in for it when probing
func (s *Scanner) classify(ctx context.Context, path string, entry os.DirEntry) (models.MediaKind, string, bool) {
	name := entry.Name()
	keyword := s.cfg.SequenceKeyword

	switch {
	case entry.IsDir() && keyword != "" && strings.Contains(name, keyword):
		frame, err := FirstFrame(path)
		if err != nil || frame == "" {
			s.skip("empty-sequence", path)
			return 0, "", false
		}
		return models.MediaImageSequence, frame, true

	case entry.IsDir() || !entry.Type().IsRegular():
		return 0, "", false

	case media.IsImage(name):
		return models.MediaImage, path, true

	case media.IsVideo(name):
		if !s.videoEnabled {
			metrics.FilesSkippedTotal.WithLabelValues("video-disabled").Inc()
			return 0, "", false
		}
		return models.MediaVideo, s.extractFrame(ctx, path), true

	default:
		if !s.videoEnabled {
			metrics.FilesSkippedTotal.WithLabelValues("video-disabled").Inc()
			return 0, "", false
		}
		if !media.SniffVideo(path) {
			s.skip("unsupported", path)
			return 0, "", false
		}
		return models.MediaVideo, s.extractFrame(ctx, path), true
	}
}

func (s *Scanner) skip(reason, path string) {
	metrics.FilesSkippedTotal.WithLabelValues(reason).Inc()
	s.logger.Debug("skipping file", "file", path, "reason", reason)
}

func (s *Scanner) extractFrame(ctx context.Context, path string) string {
	frame := s.scratch.Path(frameName)
	_ = os.Remove(frame)
	if err := s.ffmpeg.ExtractFrame(ctx, path, frame, ""); err != nil {
		s.logger.Warn("frame extraction failed", "file", path, "error", err)
		return frame
	}
	if flat, err := media.IsSolidColor(frame); err == nil && flat {
		s.logger.Warn("representative frame is a single solid color", "file", path)
	}
	return frame
}

func (s *Scanner) extractPalette(ctx context.Context, probe string) []string {
	if !s.cfg.ExtractColors {
		return append([]string(nil), s.cfg.DefaultPalette...)
	}
	palette, err := s.palette.Palette(ctx, probe)
	if err != nil {
		s.logger.Warn("palette extraction failed", "file", probe, "error", err)
		return nil
	}
	return palette
}

// FirstFrame returns the first image of a sequence directory by name, or ""
// when it holds none
func FirstFrame(dir string) (string, error) {
	frames, err := Frames(dir)
	if err != nil || len(frames) == 0 {
		return "", err
	}
	return frames[0], nil
}

// Frames lists the images of a sequence directory sorted by name
func Frames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sequence %s: %w", dir, err)
	}
	var frames []string
	for _, e := range entries {
		if media.IsImage(e.Name()) {
			frames = append(frames, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(frames)
	return frames, nil
}

// uniqueSlug keeps slugs unique within one gallery by suffixing repeats
func uniqueSlug(seen map[string]int, slug string) string {
	if slug == "" {
		slug = "item"
	}
	seen[slug]++
	if n := seen[slug]; n > 1 {
		candidate := fmt.Sprintf("%s-%d", slug, n)
		for seen[candidate] > 0 {
			n++
			candidate = fmt.Sprintf("%s-%d", slug, n)
		}
		seen[candidate]++
		return candidate
	}
	return slug
}
