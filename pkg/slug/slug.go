package slug

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	suffixChars   = "abcdefghijklmnopqrstuvwxyz0123456789"
	defaultSuffix = 6
)

// Letters that do not decompose into a base letter plus combining marks.
var specials = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "TH",
	'ı': "i",
}

type config struct {
	maxLength int
	separator string
	lowercase bool
	strip     string
	replace   map[string]string
	suffix    int
	reserved  map[string]struct{}
}

// Option configures Make.
type Option func(*config)

// MaxLength limits the slug to n runes, cutting at a separator when possible.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator sets the string placed between words. Default "-".
func Separator(sep string) Option {
	return func(c *config) { c.separator = sep }
}

// Lowercase controls case folding. Default true.
func Lowercase(on bool) Option {
	return func(c *config) { c.lowercase = on }
}

// StripChars removes the given characters before slugifying.
func StripChars(chars string) Option {
	return func(c *config) { c.strip = chars }
}

// CustomReplace applies literal replacements before slugifying.
func CustomReplace(m map[string]string) Option {
	return func(c *config) { c.replace = m }
}

// WithSuffix appends a random alphanumeric suffix of n characters.
func WithSuffix(n int) Option {
	return func(c *config) { c.suffix = n }
}

// ReservedSlugs forces a random suffix when the result matches one of the
// given slugs, compared case-insensitively.
func ReservedSlugs(slugs ...string) Option {
	return func(c *config) {
		if c.reserved == nil {
			c.reserved = make(map[string]struct{}, len(slugs))
		}
		for _, s := range slugs {
			c.reserved[strings.ToLower(s)] = struct{}{}
		}
	}
}

// Make converts s into a URL-safe slug.
func Make(s string, opts ...Option) string {
	c := config{separator: "-", lowercase: true}
	for _, opt := range opts {
		opt(&c)
	}

	for from, to := range c.replace {
		s = strings.ReplaceAll(s, from, to)
	}
	if c.strip != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(c.strip, r) {
				return -1
			}
			return r
		}, s)
	}

	words := strings.FieldsFunc(Transliterate(s), func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	out := strings.Join(words, c.separator)
	if c.lowercase {
		out = strings.ToLower(out)
	}

	suffix := c.suffix
	if _, ok := c.reserved[strings.ToLower(out)]; ok && suffix == 0 {
		suffix = defaultSuffix
	}
	if suffix > 0 {
		tail := randomSuffix(suffix)
		room := c.maxLength - len(tail) - len(c.separator)
		if c.maxLength > 0 && room >= 0 {
			out = truncate(out, c.separator, room)
		}
		if out == "" {
			return tail
		}
		return out + c.separator + tail
	}
	if c.maxLength > 0 {
		out = truncate(out, c.separator, c.maxLength)
	}
	return out
}

// Transliterate strips diacritics and maps special Latin letters to ASCII.
// Other scripts pass through unchanged.
func Transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if rep, ok := specials[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truncate shortens s to at most n bytes, preferring to cut at sep.
// s is ASCII at this point, so bytes and runes coincide.
func truncate(s, sep string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if sep != "" && !strings.HasPrefix(s[n:], sep) {
		if i := strings.LastIndex(cut, sep); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimSuffix(cut, sep)
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i, v := range buf {
		buf[i] = suffixChars[int(v)%len(suffixChars)]
	}
	return string(buf)
}
