// Package textutil converts directory and file names into display names and
// URL-safe slugs.
package textutil

import (
	"path/filepath"
	"strings"
)

// Slugify deletes every character that is not a space or an ASCII letter or
// digit, turns spaces into hyphens and lowercases the result. Non-ASCII
// letters are dropped, not transliterated.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == ' ':
			b.WriteByte('-')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// StripOrderingPrefix removes a leading run of ASCII digits and surrounding
// whitespace. A name that is nothing but digits is returned unchanged.
func StripOrderingPrefix(name string) string {
	trimmed := strings.TrimSpace(strings.TrimLeft(name, "0123456789"))
	if trimmed == "" {
		return name
	}
	return trimmed
}

// Stem returns the file name without its final extension. Dot-files without
// a further extension keep their full name.
func Stem(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// ItemSlug derives a gallery item's url slug from its file name: the
// extension and any leading whitespace/digit run are removed before
// slugifying. When nothing is left the bare stem is used.
func ItemSlug(filename string) string {
	stem := Stem(filename)
	trimmed := strings.TrimSpace(strings.TrimLeft(stem, " \t\n\r\v\f0123456789"))
	if trimmed == "" {
		trimmed = stem
	}
	return Slugify(trimmed)
}
