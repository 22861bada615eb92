package decorator

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/sitegear/sitegear/pkg/sanitizer"
)

// Built-in decorator names.
const (
	Element  = "element"
	Comments = "comments"
	Sanitize = "sanitize"
	Markdown = "markdown"
	Trim     = "trim"
	Escape   = "escape"
)

var (
	tagName  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
	attrName = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_.:-]*$`)
	markdown = goldmark.New()
)

func builtins() map[string]Func {
	return map[string]Func{
		Element:  element,
		Comments: comments,
		Sanitize: sanitize,
		Markdown: toHTML,
		Trim:     trim,
		Escape:   escape,
	}
}

// element wraps content in a tag: element:div,class=main,id=x.
func element(_ context.Context, content string, args ...string) (string, error) {
	if len(args) == 0 || !tagName.MatchString(args[0]) {
		return "", fmt.Errorf("%w: element needs a tag name", ErrInvalidArgs)
	}

	var b strings.Builder
	b.WriteString("<" + args[0])
	for _, attr := range args[1:] {
		key, value, _ := strings.Cut(attr, "=")
		if !attrName.MatchString(key) {
			return "", fmt.Errorf("%w: attribute %q", ErrInvalidArgs, key)
		}
		b.WriteString(fmt.Sprintf(` %s="%s"`, key, html.EscapeString(value)))
	}
	b.WriteString(">")
	b.WriteString(content)
	b.WriteString("</" + args[0] + ">")
	return b.String(), nil
}

// comments surrounds content with begin/end comments labelled by the first arg.
func comments(_ context.Context, content string, args ...string) (string, error) {
	label := "content"
	if len(args) > 0 && args[0] != "" {
		label = strings.ReplaceAll(args[0], "--", "")
	}
	return fmt.Sprintf("<!-- begin: %s -->\n%s\n<!-- end: %s -->", label, content, label), nil
}

// sanitize cleans content with a named policy, "safe" by default.
func sanitize(_ context.Context, content string, args ...string) (string, error) {
	name := sanitizer.PolicySafe
	if len(args) > 0 && args[0] != "" {
		name = args[0]
	}
	policy, ok := sanitizer.Policy(name)
	if !ok {
		return "", fmt.Errorf("%w: unknown policy %q", ErrInvalidArgs, name)
	}
	return sanitizer.SanitizeHTMLCustom(content, policy), nil
}

func toHTML(_ context.Context, content string, _ ...string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func trim(_ context.Context, content string, _ ...string) (string, error) {
	return strings.TrimSpace(content), nil
}

func escape(_ context.Context, content string, _ ...string) (string, error) {
	return html.EscapeString(content), nil
}
