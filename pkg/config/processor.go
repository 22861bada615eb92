package config

import (
	"os"
	"regexp"
	"strings"
)

// Processor transforms a string leaf value. Processors form a chain applied
// in registration order to every string returned by Container.Get.
type Processor func(string) string

// tokenPattern matches {{ prefix:argument }} with optional inner whitespace.
var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_-]+):\s*([^{}]*?)\s*\}\}`)

// TokenProcessor returns a Processor that replaces {{ prefix:arg }} tokens with
// resolve(arg). Tokens with other prefixes, and tokens resolve reports as
// unknown, are left verbatim.
//
// Example:
//
//	p := config.TokenProcessor("engine", func(name string) (string, bool) {
//		if name == "site-root" {
//			return "/srv/site", true
//		}
//		return "", false
//	})
//	p("{{ engine:site-root }}/templates") // "/srv/site/templates"
func TokenProcessor(prefix string, resolve func(arg string) (string, bool)) Processor {
	return func(s string) string {
		return replaceTokens(s, func(p, arg string) (string, bool) {
			if p != prefix {
				return "", false
			}
			return resolve(arg)
		})
	}
}

// EnvProcessor resolves {{ env:NAME }} from the process environment.
func EnvProcessor() Processor {
	return TokenProcessor("env", os.LookupEnv)
}

// ValuesProcessor resolves {{ prefix:name }} from a fixed map.
func ValuesProcessor(prefix string, values map[string]string) Processor {
	return TokenProcessor(prefix, func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	})
}

func replaceTokens(s string, resolve func(prefix, arg string) (string, bool)) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		m := tokenPattern.FindStringSubmatch(token)
		if v, ok := resolve(m[1], m[2]); ok {
			return v
		}
		return token
	})
}
