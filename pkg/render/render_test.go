package render

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expose/pkg/config"
	"expose/pkg/logging"
	"expose/pkg/models"
	"expose/pkg/placeholder"
	"expose/pkg/theme"
)

const (
	testPage  = `<title>{{gallerytitle}} - {{sitetitle}}</title><nav><ul>{{navigation}}</ul></nav><a href="{{basepath}}">home</a><div data-res="{{resolution}}" data-fmt="{{videoformats}}" style="display:{{download_button}}">{{content}}</div><i>{{disqus_identifier}}</i>`
	testSlide = `<section id="s{{index}}" data-url="{{resourcepath}}{{imageurl}}" data-size="{{imagewidth}}x{{imageheight}}" data-type="{{type}}" style="color:{{textcolor}};background:{{backgroundcolor}}"><h3>{{title:Untitled}}</h3>{{post}}<em>{{author}}</em></section>`
)

func newRenderer(t *testing.T, mutate func(*config.Config)) *Renderer {
	t.Helper()
	cfg := config.Default()
	cfg.SiteTitle = "Photos"
	cfg.Resolution = []int{1920, 640}
	cfg.VideoFormats = []string{"h264", "vp9"}
	if mutate != nil {
		mutate(&cfg)
	}
	th := theme.FromFS("test", fstest.MapFS{
		theme.PageTemplate:  {Data: []byte(testPage)},
		theme.SlideTemplate: {Data: []byte(testSlide)},
	})
	r, err := New(&cfg, th, logging.Discard())
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

type tree struct {
	root, nature, oceans, urban *models.NavNode
	nodes                       []*models.NavNode
	site                        string
}

func newTree(t *testing.T) *tree {
	t.Helper()
	src := t.TempDir()
	site := t.TempDir()

	tr := &tree{
		root:   &models.NavNode{Path: src, Name: "root", Kind: models.KindBranch, URL: models.RootURL},
		nature: &models.NavNode{Path: filepath.Join(src, "Nature"), Name: "Nature", Depth: 1, Kind: models.KindBranch, URL: "nature"},
		oceans: &models.NavNode{Path: filepath.Join(src, "Nature", "Oceans"), Name: "Oceans", Depth: 2, Kind: models.KindLeaf, URL: "nature/oceans"},
		urban:  &models.NavNode{Path: filepath.Join(src, "Urban"), Name: "Urban", Depth: 1, Kind: models.KindLeaf, URL: "urban"},
		site:   site,
	}
	tr.nodes = []*models.NavNode{tr.root, tr.nature, tr.oceans, tr.urban}

	wave := filepath.Join(tr.oceans.Path, "wave.jpg")
	writeFile(t, wave, "x")
	writeFile(t, filepath.Join(tr.oceans.Path, "wave.txt"), "---\ntitle: Big   wave\nimage-options: -sharpen 0x1\n---\nSurf *up*\n")
	writeFile(t, filepath.Join(tr.oceans.Path, "metadata.txt"), "author: Kim\n")
	tr.oceans.Items = []*models.GalleryItem{{
		SourceFile: wave, Owner: tr.oceans, Slug: "wave", Kind: models.MediaImage,
		DisplayWidth: 1920, DisplayHeight: 1080, Palette: []string{"#000000", "#112233", "#EEEEEE"},
	}}
	tr.oceans.ItemCount = 1

	clip := filepath.Join(tr.urban.Path, "clip.mp4")
	writeFile(t, clip, "x")
	tr.urban.Items = []*models.GalleryItem{{
		SourceFile: clip, Owner: tr.urban, Slug: "clip", Kind: models.MediaVideo,
		DisplayWidth: 640, DisplayHeight: 360,
	}}
	tr.urban.ItemCount = 1

	for _, n := range tr.nodes[1:] {
		require.NoError(t, os.MkdirAll(filepath.Join(site, filepath.FromSlash(n.URL)), 0o755))
	}
	return tr
}

func readPage(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRenderGalleryPages(t *testing.T) {
	tr := newTree(t)
	r := newRenderer(t, nil)
	require.NoError(t, r.Render(tr.nodes, tr.site))

	page := readPage(t, filepath.Join(tr.site, "nature", "oceans", "index.html"))
	assert.Contains(t, page, "<title>Oceans - Photos</title>")
	assert.Contains(t, page, `<a href="../../">home</a>`)
	assert.Contains(t, page, `data-res="1920 640" data-fmt="h264 vp9"`)
	assert.Contains(t, page, `style="display:none"`)
	assert.Contains(t, page, `<section id="s1" data-url="wave" data-size="1920x1080" data-type="image" style="color:#ffffff;background:#112233">`)
	assert.Contains(t, page, "<h3>Big wave</h3>")
	assert.Contains(t, page, "<p>Surf <em>up</em></p>")
	assert.Contains(t, page, "<em>Kim</em>")
	assert.Contains(t, page, `<li class="gallery active" data-image="wave"><a href="../../nature/oceans">`)
	assert.Contains(t, page, "<i>nature/oceans</i>")
	assert.NotContains(t, page, "<ul></ul>")
	assert.False(t, placeholder.HasPlaceholders(page))

	assert.Equal(t, "-sharpen 0x1", tr.oceans.Items[0].ImageOptions)

	video := readPage(t, filepath.Join(tr.site, "urban", "index.html"))
	assert.Contains(t, video, `data-type="video"`)
	assert.Contains(t, video, "<h3>Untitled</h3>")
	assert.Contains(t, video, `<a href="../">home</a>`)
	assert.False(t, placeholder.HasPlaceholders(video))
}

func TestRenderLandingPage(t *testing.T) {
	tr := newTree(t)
	r := newRenderer(t, nil)
	require.NoError(t, r.Render(tr.nodes, tr.site))

	landing := readPage(t, filepath.Join(tr.site, "index.html"))
	assert.Contains(t, landing, "<title>Oceans - Photos</title>")
	assert.Contains(t, landing, `<a href="./">home</a>`)
	assert.Contains(t, landing, `data-url="nature/oceans/wave"`)
	assert.Contains(t, landing, `<a href="./nature/oceans">`)
	assert.Contains(t, landing, "<i>nature/oceans</i>")
	assert.False(t, placeholder.HasPlaceholders(landing))
}

func TestSlideColors(t *testing.T) {
	r := newRenderer(t, func(c *config.Config) { c.OverrideTextColor = false })

	bg, text := r.colors([]string{"#000000", "#111111", "#FAFAFA"})
	assert.Equal(t, "#111111", bg)
	assert.Equal(t, "#FAFAFA", text)

	bg, text = r.colors(nil)
	assert.Empty(t, bg)
	assert.Equal(t, "#ffffff", text)

	bg, _ = r.colors([]string{"#000000"})
	assert.Empty(t, bg)
}

func TestSlideWithoutMarkdown(t *testing.T) {
	r := newRenderer(t, func(c *config.Config) { c.Markdown = false })
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	writeFile(t, src, "x")
	writeFile(t, filepath.Join(dir, "a.md"), "plain *text*\nvideo-filters: hflip")

	item := &models.GalleryItem{SourceFile: src, Slug: "a"}
	post := r.Slide(item, 3, "")
	assert.Contains(t, post, `id="s3"`)
	assert.Contains(t, post, "plain *text* video-filters: hflip")
	// no delimiter means no metadata
	assert.Empty(t, item.VideoFilters)
}

func TestBasePath(t *testing.T) {
	assert.Equal(t, "./", BasePath(0))
	assert.Equal(t, "../", BasePath(1))
	assert.Equal(t, "../../../", BasePath(3))
}
