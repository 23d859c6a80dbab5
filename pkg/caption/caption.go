// Package caption reads per-item caption files and gallery metadata.
//
// A caption file sits next to its media file with the same stem and a .txt
// or .md extension. Lines up to a `---` delimiter are metadata, written as
// "key: value"; the rest is the caption body.
package caption

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"expose/pkg/textutil"
)

// GalleryFile is the gallery-level metadata applied to every item of a node
const GalleryFile = "metadata.txt"

// Extensions are tried in order when looking for an item's caption
var Extensions = []string{".txt", ".md"}

// Find returns the caption file for a media file, or "" when there is none
func Find(source string) string {
	dir := filepath.Dir(source)
	stem := textutil.Stem(filepath.Base(source))
	for _, ext := range Extensions {
		candidate := filepath.Join(dir, stem+ext)
		if candidate == source {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Split separates caption text into metadata and body. Carriage returns and
// trailing newlines are dropped first. With two or more delimiter lines the
// metadata runs through the second one; with exactly one it runs through that
// one; without any the whole text is body.
func Split(text string) (metadata, body string) {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r", ""), "\n")
	lines := strings.Split(text, "\n")

	var delims []int
	for i, line := range lines {
		if line == "---" {
			delims = append(delims, i)
			if len(delims) == 2 {
				break
			}
		}
	}
	if len(delims) == 0 {
		return "", text
	}
	cut := delims[len(delims)-1]
	return strings.Join(lines[:cut+1], "\n"), strings.Join(lines[cut+1:], "\n")
}

// Read loads and splits the caption of a media file. A missing caption yields
// empty strings and no error.
func Read(source string) (metadata, body string, err error) {
	path := Find(source)
	if path == "" {
		return "", "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read caption %s: %w", path, err)
	}
	metadata, body = Split(string(data))
	return metadata, body, nil
}

// ReadGallery returns the gallery-level metadata of a node directory, or ""
func ReadGallery(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, GalleryFile))
	if err != nil {
		return ""
	}
	return string(data)
}

// Entry is one "key: value" metadata line
type Entry struct {
	Key   string
	Value string
}

// Parse returns the metadata entries in order. The first colon splits key
// from value; lines where either side is empty are ignored.
func Parse(metadata string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(metadata, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries
}

var md = goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))

// Markdown converts a caption body to HTML. Raw HTML in the body is kept.
func Markdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
