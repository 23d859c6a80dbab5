package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/patrickmn/go-cache"

	"expose/pkg/config"
	"expose/pkg/media"
	"expose/pkg/models"
	"expose/pkg/navigation"
	"expose/pkg/scanner"
	"expose/pkg/workspace"
)

// ErrGalleryNotFound is returned when no gallery has the requested url
var ErrGalleryNotFound = errors.New("gallery not found")

const catalogKey = "catalog"

// Catalog is a scanned gallery tree without any encoding
type Catalog struct {
	Nodes   []*models.NavNode `json:"nodes"`
	Scanned time.Time         `json:"scanned"`
}

// Service answers read-only questions about a gallery tree. Scans are cached
// so the preview server and listing commands do not re-probe every file.
type Service struct {
	root         string
	config       *config.Config
	runner       media.Runner
	videoEnabled bool
	logger       *slog.Logger
	catalogCache *cache.Cache
	mu           sync.RWMutex
}

// NewService creates a catalog service for the gallery root
func NewService(root string, cfg *config.Config, runner media.Runner, videoEnabled bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		root:         root,
		config:       cfg,
		runner:       runner,
		videoEnabled: videoEnabled,
		logger:       logger.With("component", "catalog"),
		catalogCache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// naturalLess compares strings treating digit runs as numbers,
// so "trip2" sorts before "trip10"
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			start := i
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				i++
			}
			n1, _ := strconv.Atoi(s1[start:i])
			start = j
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				j++
			}
			n2, _ := strconv.Atoi(s2[start:j])
			if n1 != n2 {
				return n1 < n2
			}
			continue
		}
		if s1[i] != s2[j] {
			return s1[i] < s2[j]
		}
		i++
		j++
	}
	return len(s1)-i < len(s2)-j
}

// Catalog returns the cached scan of the gallery tree, scanning on a miss
func (s *Service) Catalog(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	if cached, found := s.catalogCache.Get(catalogKey); found {
		s.mu.RUnlock()
		s.logger.Debug("using cached catalog")
		return cached.(*Catalog), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, found := s.catalogCache.Get(catalogKey); found {
		return cached.(*Catalog), nil
	}

	catalog, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	s.catalogCache.Set(catalogKey, catalog, cache.DefaultExpiration)
	return catalog, nil
}

func (s *Service) scan(ctx context.Context) (*Catalog, error) {
	s.logger.Info("scanning gallery tree", "root", s.root)

	nodes, err := navigation.Build(s.root, navigation.Options{
		SiteDir:         s.config.SiteDir(s.root),
		ThemeDir:        s.config.ThemePath(s.root),
		SequenceKeyword: s.config.SequenceKeyword,
		Logger:          s.logger,
	})
	if err != nil {
		return nil, err
	}
	// urls only, nothing is written
	if err := navigation.AssignURLs(nodes, ""); err != nil {
		return nil, err
	}

	scratch, err := workspace.New()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := scratch.Close(); err != nil {
			s.logger.Warn("scratch cleanup", "error", err)
		}
	}()

	if _, err := scanner.New(s.config, s.runner, scratch, s.videoEnabled, s.logger).Scan(ctx, nodes); err != nil {
		return nil, fmt.Errorf("scan gallery tree: %w", err)
	}
	return &Catalog{Nodes: nodes, Scanned: time.Now()}, nil
}

// Invalidate drops the cached catalog
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.catalogCache.Delete(catalogKey)
	s.mu.Unlock()
}

// Galleries returns the nodes that get a page, sorted naturally by url
func (s *Service) Galleries(ctx context.Context) ([]*models.NavNode, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	var galleries []*models.NavNode
	for _, node := range catalog.Nodes {
		if node.IsGallery() {
			galleries = append(galleries, node)
		}
	}
	sort.SliceStable(galleries, func(i, j int) bool {
		return naturalLess(galleries[i].URL, galleries[j].URL)
	})
	return galleries, nil
}

// Gallery returns the gallery node with the given url
func (s *Service) Gallery(ctx context.Context, url string) (*models.NavNode, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	for _, node := range catalog.Nodes {
		if node.IsGallery() && node.URL == url {
			return node, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGalleryNotFound, url)
}
