// Package placeholder implements the flat {{key}} / {{key:default}}
// substitution used by theme templates.
package placeholder

import (
	"regexp"
	"strings"
)

var (
	defaultPattern = regexp.MustCompile(`\{\{[^{}]*:([^}]*)\}\}`)
	barePattern    = regexp.MustCompile(`\{\{[^}]*\}\}`)
)

// Collapse turns every whitespace run into a single space and trims both ends
func Collapse(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Substitute replaces every {{key}} and {{key:default}} in text with the
// whitespace-collapsed value. The key is matched literally and the value is
// inserted as-is, so placeholders inside value are left for later passes.
func Substitute(text, key, value string) string {
	key = strings.TrimSpace(key)
	re, err := regexp.Compile(`\{\{` + regexp.QuoteMeta(key) + `(?::[^}]*)?\}\}`)
	if err != nil {
		return text
	}
	return re.ReplaceAllLiteralString(text, Collapse(value))
}

// Finalize resolves whatever is left once a page is complete: defaults are
// applied first, then bare placeholders are removed, then empty lists.
func Finalize(text string) string {
	text = defaultPattern.ReplaceAllString(text, "${1}")
	text = barePattern.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, "<ul></ul>", "")
}

// HasPlaceholders reports whether any {{...}} token remains in text
func HasPlaceholders(text string) bool {
	return barePattern.MatchString(text)
}
