package view

import "errors"

var (
	// ErrTemplateNotFound indicates no .html or .md file exists for a template name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrNoTarget indicates the view has an empty target stack.
	ErrNoTarget = errors.New("view has no target")

	// ErrRenderFailed indicates template parsing or execution failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrInvalidFrontmatter indicates invalid YAML front matter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrNoComponents indicates the renderer has no component resolver.
	ErrNoComponents = errors.New("no component resolver configured")
)
