package view

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	frontmatterDelimiter = []byte("---")
	// The closing delimiter only counts at the start of a line.
	closingDelimiter = []byte("\n---")
)

// Source is a template file split into YAML front matter and body.
type Source struct {
	Metadata map[string]any
	Body     string
}

// ParseSource splits content into front matter and body.
// Content without a leading "---" line has empty metadata.
func ParseSource(content []byte) (*Source, error) {
	if !bytes.HasPrefix(content, frontmatterDelimiter) {
		return &Source{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, frontmatterDelimiter), "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	end := 0
	if !bytes.HasPrefix(rest, frontmatterDelimiter) {
		i := bytes.Index(rest, closingDelimiter)
		if i == -1 {
			return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
		}
		end = i + 1
	}

	head := rest[:end]
	body := rest[end+len(frontmatterDelimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))

	meta := map[string]any{}
	if len(bytes.TrimSpace(head)) > 0 {
		if err := yaml.Unmarshal(head, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Source{Metadata: meta, Body: string(body)}, nil
}
