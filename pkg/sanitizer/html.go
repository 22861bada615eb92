package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Policy names accepted by Policy.
const (
	PolicyStrict  = "strict"
	PolicySafe    = "safe"
	PolicyContent = "content"
)

var (
	strictPolicy  *bluemonday.Policy
	safePolicy    *bluemonday.Policy
	contentPolicy *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		// Strips all markup, leaves text.
		strictPolicy = bluemonday.StrictPolicy()

		// Basic formatting for visitor input such as form messages.
		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)

		// Editor-authored page content: headings, images, tables and classes.
		contentPolicy = bluemonday.UGCPolicy()
		contentPolicy.AllowAttrs("class").Globally()
		contentPolicy.AllowElements("section", "article", "aside", "figure", "figcaption", "main", "nav")
		contentPolicy.RequireNoFollowOnLinks(false)
	})
}

// StripHTML removes all markup and returns plain text.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// PlainText strips all markup and unescapes the entities the strict policy
// adds, for values that are stored as text and escaped again on output.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(StripHTML(s)))
}

// SanitizeHTML allows safe formatting tags (p, a, strong, em, lists, code).
// Links get rel="nofollow".
func SanitizeHTML(s string) string {
	initPolicies()
	return safePolicy.Sanitize(s)
}

// SanitizeContent allows the markup editors use in page content while still
// removing scripts, event handlers and dangerous URLs.
func SanitizeContent(s string) string {
	initPolicies()
	return contentPolicy.Sanitize(s)
}

// SanitizeHTMLCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeHTMLCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}

// Policy returns the named built-in policy.
func Policy(name string) (*bluemonday.Policy, bool) {
	initPolicies()
	switch name {
	case PolicyStrict:
		return strictPolicy, true
	case PolicySafe:
		return safePolicy, true
	case PolicyContent:
		return contentPolicy, true
	default:
		return nil, false
	}
}
