package caption

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantMetadata string
		wantBody     string
	}{
		{
			name:     "no delimiter",
			text:     "Just a caption\nover two lines\n",
			wantBody: "Just a caption\nover two lines",
		},
		{
			name:         "one delimiter",
			text:         "title: Dawn\n---\nBody text",
			wantMetadata: "title: Dawn\n---",
			wantBody:     "Body text",
		},
		{
			name:         "front matter",
			text:         "---\ntitle: Dawn\n---\nBody\n---\nmore",
			wantMetadata: "---\ntitle: Dawn\n---",
			wantBody:     "Body\n---\nmore",
		},
		{
			name:         "carriage returns",
			text:         "title: Dawn\r\n---\r\nBody\r\n\r\n",
			wantMetadata: "title: Dawn\n---",
			wantBody:     "Body",
		},
		{
			name:     "indented delimiter is body",
			text:     " ---\nBody",
			wantBody: " ---\nBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata, body := Split(tt.text)
			assert.Equal(t, tt.wantMetadata, metadata)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParse(t *testing.T) {
	entries := Parse("---\ntitle: Dawn: part one\nempty:\n: nokey\nimage-options: -sharpen 0x1\nno colon here\ncolor1:#112233")
	assert.Equal(t, []Entry{
		{Key: "title", Value: "Dawn: part one"},
		{Key: "image-options", Value: "-sharpen 0x1"},
		{Key: "color1", Value: "#112233"},
	}, entries)
}

func TestFindPrefersTxt(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "beach.jpg")
	for _, name := range []string{"beach.jpg", "beach.txt", "beach.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	assert.Equal(t, filepath.Join(dir, "beach.txt"), Find(source))

	require.NoError(t, os.Remove(filepath.Join(dir, "beach.txt")))
	assert.Equal(t, filepath.Join(dir, "beach.md"), Find(source))

	require.NoError(t, os.Remove(filepath.Join(dir, "beach.md")))
	assert.Empty(t, Find(source))
}

func TestFindSkipsItself(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))
	assert.Empty(t, Find(source))
}

func TestReadMissingCaption(t *testing.T) {
	metadata, body, err := Read(filepath.Join(t.TempDir(), "a.jpg"))
	require.NoError(t, err)
	assert.Empty(t, metadata)
	assert.Empty(t, body)
}

func TestReadGallery(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, ReadGallery(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, GalleryFile), []byte("author: Sam\n"), 0o644))
	assert.Equal(t, "author: Sam\n", ReadGallery(dir))
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("Hello *world*")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello <em>world</em></p>\n", out)

	out, err = Markdown(`<span class="x">raw</span>`)
	require.NoError(t, err)
	assert.Contains(t, out, `<span class="x">raw</span>`)
}
