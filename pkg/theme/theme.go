// Package theme loads the page and slide templates and copies the theme's
// static resources into the generated site.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

const (
	// PageTemplate is the per-gallery page
	PageTemplate = "template.html"
	// SlideTemplate is rendered once per gallery item
	SlideTemplate = "post-template.html"
)

//go:embed default
var builtin embed.FS

// Theme is a directory holding the two templates plus static resources
type Theme struct {
	Name  string
	files fs.FS
}

// Load opens the theme directory relative to the gallery root, falling back
// to the built-in theme when the directory does not exist
func Load(root, dir string) (*Theme, error) {
	if dir != "" {
		full := dir
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, dir)
		}
		info, err := os.Stat(full)
		switch {
		case err == nil && info.IsDir():
			return &Theme{Name: full, files: os.DirFS(full)}, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("open theme %s: %w", full, err)
		}
	}
	return Builtin(), nil
}

// Builtin returns the theme compiled into the binary
func Builtin() *Theme {
	sub, err := fs.Sub(builtin, "default")
	if err != nil {
		panic(err)
	}
	return &Theme{Name: "builtin", files: sub}
}

// FromFS wraps an arbitrary file system as a theme
func FromFS(name string, files fs.FS) *Theme {
	return &Theme{Name: name, files: files}
}

// Page returns the page template
func (t *Theme) Page() (string, error) {
	return t.read(PageTemplate)
}

// Slide returns the slide template
func (t *Theme) Slide() (string, error) {
	return t.read(SlideTemplate)
}

func (t *Theme) read(name string) (string, error) {
	data, err := fs.ReadFile(t.files, name)
	if err != nil {
		return "", fmt.Errorf("theme %s: %w", t.Name, err)
	}
	return string(data), nil
}

// CopyResources copies every top-level theme entry except the templates into
// siteDir. Directories are replaced wholesale; files are overwritten.
func (t *Theme) CopyResources(siteDir string) error {
	entries, err := fs.ReadDir(t.files, ".")
	if err != nil {
		return fmt.Errorf("list theme %s: %w", t.Name, err)
	}
	for _, e := range entries {
		name := e.Name()
		if name == PageTemplate || name == SlideTemplate {
			continue
		}
		dst := filepath.Join(siteDir, name)
		if e.IsDir() {
			if err := os.RemoveAll(dst); err != nil {
				return fmt.Errorf("replace %s: %w", dst, err)
			}
			if err := copyTree(t.files, name, dst); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(t.files, name, dst); err != nil {
			return err
		}
	}
	return nil
}

func copyTree(files fs.FS, src, dst string) error {
	return fs.WalkDir(files, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(filepath.FromSlash(src), filepath.FromSlash(p))
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(files, p, target)
	})
}

func copyFile(files fs.FS, src, dst string) error {
	in, err := files.Open(path.Clean(src))
	if err != nil {
		return fmt.Errorf("open theme file %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
