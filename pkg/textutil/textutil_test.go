package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"!@#$%", ""},
		{"Café Olé", "caf-ol"},
		{"Mountains & Lakes (2019)", "mountains--lakes-2019"},
		{"already-slugged", "alreadyslugged"},
		{"  Spaced  ", "--spaced--"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			for _, r := range got {
				ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
				assert.Truef(t, ok, "unexpected rune %q in %q", r, got)
			}
		})
	}
}

func TestStripOrderingPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01 Mountains", "Mountains"},
		{"01234", "01234"},
		{"Mountains", "Mountains"},
		{"2019 Trip 2", "Trip 2"},
		{"  07 Lakes", "07 Lakes"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := StripOrderingPrefix(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				assert.NotEmpty(t, got)
			}
		})
	}
}

func TestItemSlug(t *testing.T) {
	assert.Equal(t, "sunset", ItemSlug("01 Sunset.jpg"))
	assert.Equal(t, "0042", ItemSlug("0042.jpg"))
	assert.Equal(t, "beach-day", ItemSlug("3 Beach Day.mov"))
	assert.Equal(t, "frames", ItemSlug("frames"))
	assert.Equal(t, "archivetar", ItemSlug("archive.tar.gz"))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "photo", Stem("photo.jpg"))
	assert.Equal(t, ".hidden", Stem(".hidden"))
	assert.Equal(t, "noext", Stem("noext"))
}
