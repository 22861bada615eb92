package internal

import (
	"path/filepath"

	"github.com/sitegear/sitegear/pkg/config"
)

// TokenProcessor resolves {{ engine:name }} tokens for a site rooted at
// root: root, templates, public and environment. Values are fixed when
// the processor is built; config references use {{ config:key }} instead.
func TokenProcessor(root, env string) config.Processor {
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return config.ValuesProcessor("engine", map[string]string{
		"root":        root,
		"templates":   filepath.Join(root, "templates"),
		"public":      filepath.Join(root, "public"),
		"environment": env,
	})
}

func (e *Engine) tokenProcessor() config.Processor {
	return TokenProcessor(e.root, e.config.Environment())
}
