package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		key   string
		value string
		want  string
	}{
		{name: "all occurrences", text: "{{x}} and {{x}}", key: "x", value: "Y", want: "Y and Y"},
		{name: "default form", text: "{{name:Anon}}", key: "name", value: "Bob", want: "Bob"},
		{name: "unrelated key", text: "{{name:Anon}}", key: "title", value: "Bob", want: "{{name:Anon}}"},
		{name: "prefix key does not match", text: "{{names}} {{name}}", key: "name", value: "Bob", want: "{{names}} Bob"},
		{name: "collapses whitespace", text: "<p>{{post}}</p>", key: "post", value: "  line one\n\n  line\ttwo  ", want: "<p>line one line two</p>"},
		{name: "key is literal", text: "{{a.b}} {{axb}}", key: "a.b", value: "v", want: "v {{axb}}"},
		{name: "key is trimmed", text: "{{color1}}", key: " color1 ", value: "#fff", want: "#fff"},
		{name: "value inserted literally", text: "{{x}}", key: "x", value: `$1 \& /`, want: `$1 \& /`},
		{name: "no re-expansion", text: "{{x}}", key: "x", value: "{{x:again}}", want: "{{x:again}}"},
		{name: "empty value", text: "a{{x}}b", key: "x", value: "", want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.text, tt.key, tt.value))
		})
	}
}

func TestSubstituteIsIdempotent(t *testing.T) {
	text := "<h1>{{title}}</h1><p>{{title:Untitled}}</p>{{other}}"
	once := Substitute(text, "title", "My   Photos")
	twice := Substitute(once, "title", "My   Photos")
	assert.Equal(t, once, twice)
	assert.Equal(t, "<h1>My Photos</h1><p>My Photos</p>{{other}}", once)
}

func TestSubstituteAccumulator(t *testing.T) {
	page := "<main>{{content}}</main>"
	page = Substitute(page, "content", "<div>1</div> {{content}}")
	page = Substitute(page, "content", "<div>2</div> {{content}}")
	assert.Equal(t, "<main><div>1</div> <div>2</div> {{content}}</main>", page)
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "defaults resolved", in: `<a title="{{caption:none}}">`, want: `<a title="none">`},
		{name: "bare removed", in: "a{{missing}}b", want: "ab"},
		{name: "empty default", in: "a{{missing:}}b", want: "ab"},
		{name: "empty list removed", in: "<li>x<ul>{{marker3}}</ul></li>", want: "<li>x</li>"},
		{name: "non-empty list kept", in: "<ul><li>a</li></ul>", want: "<ul><li>a</li></ul>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Finalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, HasPlaceholders(got))
		})
	}
}
