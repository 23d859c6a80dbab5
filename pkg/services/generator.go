package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"expose/pkg/config"
	"expose/pkg/encoder"
	"expose/pkg/media"
	"expose/pkg/metrics"
	"expose/pkg/models"
	"expose/pkg/navigation"
	"expose/pkg/progress"
	"expose/pkg/render"
	"expose/pkg/scanner"
	"expose/pkg/theme"
	"expose/pkg/workspace"
)

// LockFileName guards a gallery root against concurrent builds
const LockFileName = "_expose.lock"

// ErrBuildLocked is returned when another build holds the gallery lock
var ErrBuildLocked = errors.New("another build is running for this gallery")

// Generator runs the build phases in order: navigation, item scan, page
// render, media encode, theme resources. Each phase hands its result to the
// next through the Result it fills.
type Generator struct {
	Root         string
	Config       *config.Config
	Runner       media.Runner
	VideoEnabled bool
	Logger       *slog.Logger
	Progress     progress.Reporter
}

// Result is what a build produced
type Result struct {
	RunID    string
	SiteDir  string
	Nodes    []*models.NavNode
	Items    []*models.GalleryItem
	Duration time.Duration
}

// Galleries returns the nodes that got a page
func (r *Result) Galleries() []*models.NavNode {
	var out []*models.NavNode
	for _, n := range r.Nodes {
		if n.IsGallery() {
			out = append(out, n)
		}
	}
	return out
}

// Run executes a full build. Per-item failures are logged and leave their
// artifacts missing for the next run; the returned error is reserved for
// lock contention, configuration and output problems, and cancellation.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:   uuid.NewString(),
		SiteDir: g.Config.SiteDir(g.Root),
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", result.RunID)
	reporter := g.Progress
	if reporter == nil {
		reporter = progress.Discard{}
	}
	runner := g.Runner
	if runner == nil {
		runner = media.ExecRunner{}
	}

	lock := flock.New(filepath.Join(g.Root, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return nil, ErrBuildLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release build lock", "error", err)
		}
	}()

	scratch, err := workspace.New()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := scratch.Close(); err != nil {
			logger.Warn("scratch cleanup", "error", err)
		}
	}()

	th, err := theme.Load(g.Root, g.Config.ThemeDir)
	if err != nil {
		return nil, err
	}
	logger.Info("build started", "root", g.Root, "theme", th.Name, "draft", g.Config.Draft, "video", g.VideoEnabled)

	// navigation
	nodes, err := navigation.Build(g.Root, navigation.Options{
		SiteDir:         result.SiteDir,
		ThemeDir:        g.Config.ThemePath(g.Root),
		SequenceKeyword: g.Config.SequenceKeyword,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	if err := navigation.AssignURLs(nodes, result.SiteDir); err != nil {
		return nil, err
	}
	result.Nodes = nodes
	logger.Info("navigation built", "nodes", len(nodes))

	// item scan
	galleries := result.Galleries()
	sc := scanner.New(g.Config, runner, scratch, g.VideoEnabled, logger)
	sc.OnNode = func(*models.NavNode) { reporter.Advance() }
	reporter.Start("Reading files", len(galleries))
	items, err := sc.Scan(ctx, nodes)
	reporter.Finish()
	if err != nil {
		return nil, err
	}
	result.Items = items
	logger.Info("items scanned", "items", len(items))

	// render
	r, err := render.New(g.Config, th, logger)
	if err != nil {
		return nil, err
	}
	r.OnPage = func(*models.NavNode) { reporter.Advance() }
	reporter.Start("Building HTML", len(galleries))
	err = r.Render(nodes, result.SiteDir)
	reporter.Finish()
	if err != nil {
		return nil, err
	}

	// encode
	enc := encoder.New(g.Config, result.SiteDir, runner, scratch, logger)
	enc.OnItem = func(*models.GalleryItem) { reporter.Advance() }
	reporter.Start("Encoding", len(items))
	err = enc.Encode(ctx, items)
	reporter.Finish()
	if err != nil {
		return nil, err
	}

	if err := th.CopyResources(result.SiteDir); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	metrics.BuildDuration.Set(result.Duration.Seconds())
	metrics.BuildTimestamp.SetToCurrentTime()
	if g.Config.MetricsFile != "" {
		path := g.Config.MetricsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(g.Root, path)
		}
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn("metrics export failed", "error", err)
		}
	}

	logger.Info("build finished", "galleries", len(galleries), "items", len(items), "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}
