package view

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// NewMarkdown returns the goldmark processor used for .md templates.
// It understands styled links: [!class|Label](url) renders
// <a href="url" class="class">Label</a>.
func NewMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(&StyledLinkExtension{}),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// KindStyledLink is the node kind for StyledLink.
var KindStyledLink = ast.NewNodeKind("StyledLink")

// StyledLink is an inline link carrying a CSS class.
type StyledLink struct {
	ast.BaseInline
	Class []byte
	URL   []byte
	Label []byte
}

func (n *StyledLink) Kind() ast.NodeKind { return KindStyledLink }

func (n *StyledLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Class": string(n.Class),
		"URL":   string(n.URL),
	}, nil)
}

type styledLinkParser struct{}

func (p *styledLinkParser) Trigger() []byte { return []byte{'['} }

// Parse accepts [!class|Label](url) on a single line.
func (p *styledLinkParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 4 || line[1] != '!' {
		return nil
	}

	pipe := bytes.IndexByte(line, '|')
	closing := bytes.IndexByte(line, ']')
	if pipe < 3 || closing < pipe {
		return nil
	}
	if closing+1 >= len(line) || line[closing+1] != '(' {
		return nil
	}
	urlEnd := bytes.IndexByte(line[closing+2:], ')')
	if urlEnd == -1 {
		return nil
	}
	urlEnd += closing + 2

	class := line[2:pipe]
	if bytes.ContainsAny(class, " \t\"'") {
		return nil
	}

	node := &StyledLink{
		Class: bytes.Clone(class),
		Label: bytes.Clone(line[pipe+1 : closing]),
		URL:   bytes.Clone(line[closing+2 : urlEnd]),
	}
	block.Advance(urlEnd + 1)
	return node
}

type styledLinkRenderer struct{}

func (r *styledLinkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindStyledLink, r.render)
}

func (r *styledLinkRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*StyledLink)
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.URL, false)))
	_, _ = w.WriteString(`" class="`)
	_, _ = w.Write(util.EscapeHTML(n.Class))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

// StyledLinkExtension registers the styled link parser and renderer.
type StyledLinkExtension struct{}

func (e *StyledLinkExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&styledLinkParser{}, 199),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&styledLinkRenderer{}, 199),
	))
}
