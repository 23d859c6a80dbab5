package handlers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/eknkc/pug"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expose/pkg/models"
)

//go:embed views/index.pug
var indexView string

// Catalog is the gallery listing the index pages are built from
type Catalog interface {
	Galleries(ctx context.Context) ([]*models.NavNode, error)
	Invalidate()
}

// Handlers serves a generated site plus a few preview helpers
type Handlers struct {
	siteDir string
	title   string
	catalog Catalog
	index   *template.Template
	logger  *slog.Logger
}

// New compiles the index view and returns the preview handlers
func New(siteDir, title string, catalog Catalog, logger *slog.Logger) (*Handlers, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index, err := pug.CompileString(indexView, pug.Options{})
	if err != nil {
		return nil, fmt.Errorf("compile index view: %w", err)
	}
	return &Handlers{
		siteDir: siteDir,
		title:   title,
		catalog: catalog,
		index:   index,
		logger:  logger.With("component", "server"),
	}, nil
}

// Router wires every route. The generated site is served from the root so
// relative links inside the pages keep working.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/_galleries", h.GalleryIndexHandler).Methods(http.MethodGet)
	r.HandleFunc("/_galleries.json", h.FeedHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(h.siteDir)))
	r.Use(h.logRequests)
	return r
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) links(r *http.Request) ([]models.GalleryLink, error) {
	if r.URL.Query().Get("refresh") != "" {
		h.catalog.Invalidate()
	}
	galleries, err := h.catalog.Galleries(r.Context())
	if err != nil {
		return nil, err
	}
	links := make([]models.GalleryLink, 0, len(galleries))
	for _, g := range galleries {
		links = append(links, models.LinkFor(g))
	}
	return links, nil
}

// GalleryIndexHandler renders the list of every gallery page
func (h *Handlers) GalleryIndexHandler(w http.ResponseWriter, r *http.Request) {
	links, err := h.links(r)
	if err != nil {
		h.logger.Error("gallery listing failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = h.index.Execute(w, models.Index{Title: h.title, Galleries: links})
	if err != nil {
		h.logger.Error("index view failed", "error", err)
	}
}

// FeedHandler returns the gallery list as JSON
func (h *Handlers) FeedHandler(w http.ResponseWriter, r *http.Request) {
	links, err := h.links(r)
	if err != nil {
		h.logger.Error("gallery listing failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(links)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("write feed", "error", err)
	}
}
