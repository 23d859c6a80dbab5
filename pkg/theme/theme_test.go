package theme

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expose/pkg/placeholder"
)

func TestBuiltinTemplates(t *testing.T) {
	th := Builtin()

	page, err := th.Page()
	require.NoError(t, err)
	assert.Contains(t, page, "{{content}}")
	assert.Contains(t, page, "{{navigation}}")

	slide, err := th.Slide()
	require.NoError(t, err)
	assert.Contains(t, slide, "{{imageurl}}")
	assert.True(t, placeholder.HasPlaceholders(slide))
}

func TestLoadFallsBackToBuiltin(t *testing.T) {
	th, err := Load(t.TempDir(), "theme1")
	require.NoError(t, err)
	assert.Equal(t, "builtin", th.Name)
}

func TestLoadThemeDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "mytheme")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PageTemplate), []byte("<p>{{content}}</p>"), 0o644))

	th, err := Load(root, "mytheme")
	require.NoError(t, err)
	page, err := th.Page()
	require.NoError(t, err)
	assert.Equal(t, "<p>{{content}}</p>", page)

	_, err = th.Slide()
	assert.Error(t, err)
}

func TestCopyResources(t *testing.T) {
	th := FromFS("test", fstest.MapFS{
		PageTemplate:    {Data: []byte("page")},
		SlideTemplate:   {Data: []byte("slide")},
		"favicon.ico":   {Data: []byte("icon")},
		"css/style.css": {Data: []byte("body{}")},
		"js/a/deep.js":  {Data: []byte("x")},
	})
	site := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(site, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "css", "stale.css"), []byte("old"), 0o644))

	require.NoError(t, th.CopyResources(site))

	assert.FileExists(t, filepath.Join(site, "favicon.ico"))
	assert.FileExists(t, filepath.Join(site, "css", "style.css"))
	assert.FileExists(t, filepath.Join(site, "js", "a", "deep.js"))
	assert.NoFileExists(t, filepath.Join(site, "css", "stale.css"))
	assert.NoFileExists(t, filepath.Join(site, PageTemplate))
	assert.NoFileExists(t, filepath.Join(site, SlideTemplate))
}
