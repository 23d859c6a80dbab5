// Package render writes one HTML page per gallery node plus the landing page.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"expose/pkg/caption"
	"expose/pkg/config"
	"expose/pkg/metrics"
	"expose/pkg/models"
	"expose/pkg/navigation"
	"expose/pkg/placeholder"
	"expose/pkg/theme"
)

// Metadata keys copied back onto the gallery item for the encoder
const (
	KeyImageOptions = "image-options"
	KeyVideoOptions = "video-options"
	KeyVideoFilters = "video-filters"
)

// Renderer fills the theme templates for every gallery node
type Renderer struct {
	cfg    *config.Config
	page   string
	slide  string
	logger *slog.Logger

	// OnPage is called after each page is written
	OnPage func(node *models.NavNode)
}

// New loads both templates from the theme
func New(cfg *config.Config, th *theme.Theme, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	page, err := th.Page()
	if err != nil {
		return nil, err
	}
	slide, err := th.Slide()
	if err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg, page: page, slide: slide, logger: logger.With("component", "render")}, nil
}

// Render writes <site>/<url>/index.html for every gallery node and the
// landing page <site>/index.html from the first one. Caption options are
// stored on the items as a side effect.
func (r *Renderer) Render(nodes []*models.NavNode, siteDir string) error {
	var first string
	var firstNode *models.NavNode

	for _, node := range nodes {
		if !node.IsGallery() {
			continue
		}
		html := r.renderGallery(nodes, node)
		if firstNode == nil {
			first, firstNode = html, node
		}

		html = placeholder.Substitute(html, "basepath", BasePath(node.Depth))
		html = placeholder.Substitute(html, "disqus_identifier", node.URL)
		if err := r.write(filepath.Join(siteDir, filepath.FromSlash(node.URL), "index.html"), placeholder.Finalize(html)); err != nil {
			return err
		}
		if r.OnPage != nil {
			r.OnPage(node)
		}
	}

	if firstNode == nil {
		r.logger.Warn("no galleries found, landing page not written")
		return nil
	}
	first = placeholder.Substitute(first, "basepath", "./")
	first = placeholder.Substitute(first, "disqus_identifier", firstNode.URL)
	first = placeholder.Substitute(first, "resourcepath", firstNode.URL+"/")
	return r.write(filepath.Join(siteDir, "index.html"), placeholder.Finalize(first))
}

func (r *Renderer) write(path, html string) error {
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	metrics.PagesRenderedTotal.Inc()
	return nil
}

// renderGallery builds a node's page up to, but not including, the
// page-location dependent values
func (r *Renderer) renderGallery(nodes []*models.NavNode, node *models.NavNode) string {
	html := r.page
	gallery := caption.ReadGallery(node.Path)

	for i, item := range node.Items {
		post := r.Slide(item, i+1, gallery)
		html = placeholder.Substitute(html, "content", post+" {{content}}")
	}

	html = placeholder.Substitute(html, "sitetitle", r.cfg.SiteTitle)
	html = placeholder.Substitute(html, "gallerytitle", node.Name)
	html = placeholder.Substitute(html, "disqus_shortname", r.cfg.DisqusShortname)
	html = placeholder.Substitute(html, "resolution", joinInts(r.cfg.Resolution))
	html = placeholder.Substitute(html, "videoformats", strings.Join(r.cfg.VideoFormats, " "))
	html = placeholder.Substitute(html, "text_toggle", display(r.cfg.TextToggle))
	html = placeholder.Substitute(html, "social_button", display(r.cfg.SocialButton))
	html = placeholder.Substitute(html, "download_button", display(r.cfg.DownloadButton))
	html = placeholder.Substitute(html, "navigation", navigation.Menu(nodes, node))
	return html
}

// Slide renders one item at 1-based position index. Metadata comes from the
// item's caption, then the gallery metadata, then the palette colors.
func (r *Renderer) Slide(item *models.GalleryItem, index int, gallery string) string {
	metadata, body, err := caption.Read(item.SourceFile)
	if err != nil {
		r.logger.Warn("caption unreadable", "file", item.SourceFile, "error", err)
	}

	var sb strings.Builder
	sb.WriteString(metadata)
	sb.WriteString("\n" + gallery + "\n")
	for i, c := range item.Palette {
		fmt.Fprintf(&sb, "color%d:%s\n", i+1, c)
	}

	if r.cfg.Markdown {
		if html, err := caption.Markdown(body); err == nil {
			body = html
		} else {
			r.logger.Warn("markdown failed", "file", item.SourceFile, "error", err)
		}
	}

	post := placeholder.Substitute(r.slide, "index", strconv.Itoa(index))
	post = placeholder.Substitute(post, "post", body)

	for _, e := range caption.Parse(sb.String()) {
		post = placeholder.Substitute(post, e.Key, e.Value)
		switch e.Key {
		case KeyImageOptions:
			item.ImageOptions = e.Value
		case KeyVideoOptions:
			item.VideoOptions = e.Value
		case KeyVideoFilters:
			item.VideoFilters = e.Value
		}
	}

	background, text := r.colors(item.Palette)
	post = placeholder.Substitute(post, "imageurl", item.Slug)
	post = placeholder.Substitute(post, "imagewidth", strconv.Itoa(item.DisplayWidth))
	post = placeholder.Substitute(post, "imageheight", strconv.Itoa(item.DisplayHeight))
	post = placeholder.Substitute(post, "textcolor", text)
	post = placeholder.Substitute(post, "backgroundcolor", background)
	post = placeholder.Substitute(post, "type", item.Kind.TemplateType())
	return post
}

// colors picks the slide background (second palette entry) and text color
func (r *Renderer) colors(palette []string) (background, text string) {
	if len(palette) > 1 {
		background = palette[1]
	}
	switch {
	case r.cfg.OverrideTextColor:
		text = r.cfg.TextColor
	case len(palette) > 0:
		text = palette[len(palette)-1]
	default:
		text = r.cfg.TextColor
	}
	return background, text
}

// BasePath is the relative prefix from a page at depth back to the site root
func BasePath(depth int) string {
	if depth == 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

func display(on bool) string {
	if on {
		return "block"
	}
	return "none"
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
