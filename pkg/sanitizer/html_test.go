package sanitizer_test

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips script injection", input: `<p>Hello</p><script>alert('xss')</script>`, expected: "Hello"},
		{name: "strips all tags", input: `<p>Hello <strong>world</strong></p>`, expected: "Hello world"},
		{name: "strips javascript URLs", input: `<a href="javascript:alert('xss')">click</a>`, expected: "click"},
		{name: "strips iframe", input: `<iframe src="https://evil.com"></iframe>content`, expected: "content"},
		{name: "plain text", input: "normal text", expected: "normal text"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Tom & Jerry", sanitizer.PlainText(" <b>Tom</b> &amp; Jerry "))
	require.Equal(t, "a < b", sanitizer.PlainText("a < b"))
	require.Equal(t, "", sanitizer.PlainText("<script>alert(1)</script>"))
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "keeps safe tags", input: `<p>Hello</p><script>alert('xss')</script>`, expected: "<p>Hello</p>"},
		{name: "lists", input: `<ul><li>one</li><li>two</li></ul>`, expected: "<ul><li>one</li><li>two</li></ul>"},
		{name: "links get nofollow", input: `<a href="https://example.com">link</a>`, expected: `<a href="https://example.com" rel="nofollow">link</a>`},
		{name: "event handlers", input: `<p onclick="alert('xss')">content</p>`, expected: "<p>content</p>"},
		{name: "class attributes", input: `<p class="x">content</p>`, expected: "<p>content</p>"},
		{name: "div unwrapped", input: `<div>content</div>`, expected: "content"},
		{name: "line breaks", input: `line1<br>line2`, expected: `line1<br>line2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.SanitizeHTML(tt.input))
		})
	}
}

func TestSanitizeContent(t *testing.T) {
	t.Parallel()

	out := sanitizer.SanitizeContent(`<h2 class="lead">Title</h2><img src="/img/a.png" alt="a" onerror="x()"><script>x()</script>`)
	assert.Contains(t, out, `<h2 class="lead">Title</h2>`)
	assert.Contains(t, out, `<img src="/img/a.png" alt="a">`)
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onerror")

	out = sanitizer.SanitizeContent(`<a href="https://example.com">x</a>`)
	assert.NotContains(t, out, "nofollow")
}

func TestSanitizeHTMLCustom(t *testing.T) {
	t.Parallel()

	policy := bluemonday.NewPolicy()
	policy.AllowElements("img")
	policy.AllowAttrs("src", "alt").OnElements("img")

	input := `<img src="photo.jpg" alt="photo" onerror="alert('xss')">`
	assert.Equal(t, `<img src="photo.jpg" alt="photo">`, sanitizer.SanitizeHTMLCustom(input, policy))
	assert.Equal(t, input, sanitizer.SanitizeHTMLCustom(input, nil))
}

func TestPolicy(t *testing.T) {
	t.Parallel()

	for _, name := range []string{sanitizer.PolicyStrict, sanitizer.PolicySafe, sanitizer.PolicyContent} {
		p, ok := sanitizer.Policy(name)
		require.True(t, ok, name)
		require.NotNil(t, p)
	}

	_, ok := sanitizer.Policy("loose")
	require.False(t, ok)
}

func TestXSSVectors(t *testing.T) {
	t.Parallel()

	vectors := map[string]string{
		"script tag":        `<script>alert('XSS')</script>`,
		"img onerror":       `<img src="x" onerror="alert('XSS')">`,
		"svg onload":        `<svg onload="alert('XSS')">`,
		"javascript link":   `<a href="JaVaScRiPt:alert('XSS')">click</a>`,
		"vbscript link":     `<a href="vbscript:msgbox('XSS')">click</a>`,
		"style expression":  `<div style="width:expression(alert('XSS'))">`,
		"iframe":            `<iframe src="javascript:alert('XSS')"></iframe>`,
		"form action":       `<form action="javascript:alert('XSS')"><input type="submit"></form>`,
		"details ontoggle":  `<details open ontoggle="alert('XSS')">`,
		"meta refresh":      `<meta http-equiv="refresh" content="0;url=javascript:alert('XSS')">`,
	}

	sanitizers := map[string]func(string) string{
		"strip":   sanitizer.StripHTML,
		"safe":    sanitizer.SanitizeHTML,
		"content": sanitizer.SanitizeContent,
	}

	for vname, input := range vectors {
		for sname, fn := range sanitizers {
			t.Run(sname+"/"+vname, func(t *testing.T) {
				t.Parallel()

				out := fn(input)
				assert.NotContains(t, out, "<script")
				assert.NotContains(t, out, "javascript:")
				assert.NotContains(t, out, "onerror=")
				assert.NotContains(t, out, "onload=")
				assert.NotContains(t, out, "alert(")
			})
		}
	}
}
