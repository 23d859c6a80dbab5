// Package navigation builds the ordered node list of a gallery tree, assigns
// site URLs and renders the nested navigation menu.
package navigation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expose/pkg/metrics"
	"expose/pkg/models"
	"expose/pkg/textutil"
)

// Options controls the tree walk
type Options struct {
	// SiteDir is the output directory; it and everything below are excluded
	SiteDir string
	// ThemeDir is a theme directory inside the tree; it is never walked
	ThemeDir string
	// SequenceKeyword marks frame sequence directories, "" disables sequences
	SequenceKeyword string
	Logger          *slog.Logger
}

type builder struct {
	opts     Options
	siteDir  string
	themeDir string
	logger   *slog.Logger
	nodes    []*models.NavNode
}

// Build walks root depth-first with entries sorted by name at every level and
// returns the navigation nodes, root first. Unreadable subtrees are skipped.
func Build(root string, opts Options) ([]*models.NavNode, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("gallery root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("gallery root %s is not a directory", abs)
	}

	b := &builder{opts: opts, logger: opts.Logger}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if opts.SiteDir != "" {
		if b.siteDir, err = filepath.Abs(opts.SiteDir); err != nil {
			return nil, fmt.Errorf("resolve site dir: %w", err)
		}
	}
	if opts.ThemeDir != "" {
		if b.themeDir, err = filepath.Abs(opts.ThemeDir); err != nil {
			return nil, fmt.Errorf("resolve theme dir: %w", err)
		}
	}

	b.visit(abs, 0)

	counts := map[models.NodeKind]int{}
	for _, n := range b.nodes {
		counts[n.Kind]++
	}
	for _, kind := range []models.NodeKind{models.KindBranch, models.KindLeaf, models.KindSequenceContainer} {
		metrics.NavNodes.WithLabelValues(kind.String()).Set(float64(counts[kind]))
	}
	return b.nodes, nil
}

func (b *builder) excluded(path, name string) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return true
	}
	return b.output(path)
}

// output reports whether path is the site or theme directory
func (b *builder) output(path string) bool {
	return (b.siteDir != "" && path == b.siteDir) || (b.themeDir != "" && path == b.themeDir)
}

func (b *builder) visit(dir string, depth int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.logger.Warn("skipping unreadable directory", "path", dir, "error", err)
		metrics.WalkErrorsTotal.Inc()
		return
	}
	if depth > 0 && !b.hasContent(dir, entries) {
		return
	}

	rawName := filepath.Base(dir)
	name := textutil.StripOrderingPrefix(rawName)

	keyword := b.opts.SequenceKeyword
	subdirs, nonSequence := 0, 0
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), "_") || b.output(filepath.Join(dir, e.Name())) {
			continue
		}
		subdirs++
		if keyword == "" || !strings.Contains(e.Name(), keyword) {
			nonSequence++
		}
	}

	var kind models.NodeKind
	switch {
	case subdirs == 0:
		if keyword != "" && strings.Contains(name, keyword) {
			return
		}
		kind = models.KindLeaf
	case keyword == "" || nonSequence > 0:
		kind = models.KindBranch
	default:
		kind = models.KindSequenceContainer
	}

	b.nodes = append(b.nodes, &models.NavNode{
		Path:      dir,
		Name:      name,
		Depth:     depth,
		Kind:      kind,
		ItemCount: models.NoItems,
	})

	for _, e := range entries {
		child := filepath.Join(dir, e.Name())
		if !e.IsDir() || b.excluded(child, e.Name()) {
			continue
		}
		b.visit(child, depth+1)
	}
}

// hasContent reports whether any non-excluded file exists below dir
func (b *builder) hasContent(dir string, entries []os.DirEntry) bool {
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if b.excluded(path, e.Name()) {
			continue
		}
		if !e.IsDir() {
			return true
		}
		sub, err := os.ReadDir(path)
		if err != nil {
			continue
		}
		if b.hasContent(path, sub) {
			return true
		}
	}
	return false
}

// AssignURLs gives every node its site URL and creates the matching output
// directory. URLs follow the depth of consecutive nodes, not their names, so
// duplicate names under different parents resolve correctly. An empty siteDir
// assigns URLs without touching the file system.
func AssignURLs(nodes []*models.NavNode, siteDir string) error {
	if siteDir != "" {
		if err := os.MkdirAll(siteDir, 0o755); err != nil {
			return fmt.Errorf("create site dir: %w", err)
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	nodes[0].URL = models.RootURL

	var stack []string
	slug := ""
	for i := 1; i < len(nodes); i++ {
		if i > 1 {
			prev, cur := nodes[i-1].Depth, nodes[i].Depth
			switch {
			case cur > prev:
				stack = append(stack, slug)
			case cur < prev:
				for d := prev; d > cur && len(stack) > 0; d-- {
					stack = stack[:len(stack)-1]
				}
			}
		}

		slug = textutil.Slugify(nodes[i].Name)
		url := slug
		if len(stack) > 0 {
			url = strings.Join(append(append([]string(nil), stack...), slug), "/")
		}
		nodes[i].URL = url

		if siteDir == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Join(siteDir, filepath.FromSlash(url)), 0o755); err != nil {
			return fmt.Errorf("create output dir for %s: %w", url, err)
		}
	}
	return nil
}
