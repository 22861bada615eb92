package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "simple text", input: "Hello World", expected: "hello-world"},
		{name: "punctuation", input: "Hello, World!", expected: "hello-world"},
		{name: "numbers", input: "Product 123", expected: "product-123"},
		{name: "repeated spaces", input: "Too    Many     Spaces", expected: "too-many-spaces"},
		{name: "surrounding spaces", input: "  Trim Me  ", expected: "trim-me"},
		{name: "price", input: "Price: $99.99", expected: "price-99-99"},
		{name: "empty", input: "", expected: ""},
		{name: "only symbols", input: "!@#$%^&*()", expected: ""},
		{name: "consecutive dashes", input: "Too---Many---Dashes", expected: "too-many-dashes"},
		{name: "french", input: "Château façade élève", expected: "chateau-facade-eleve"},
		{name: "german", input: "Über Größe straße", expected: "uber-grosse-strasse"},
		{name: "spanish", input: "Niño español año", expected: "nino-espanol-ano"},
		{name: "polish", input: "Zażółć gęślą jaźń", expected: "zazolc-gesla-jazn"},
		{name: "nordic", input: "Ærø Ødegaard", expected: "aero-odegaard"},
		{name: "apostrophe", input: "Côte d'Ivoire 2024", expected: "cote-d-ivoire-2024"},
		{name: "cyrillic dropped", input: "Новости news", expected: "news"},
		{
			name:     "keep case",
			input:    "Hello World",
			opts:     []slug.Option{slug.Lowercase(false)},
			expected: "Hello-World",
		},
		{
			name:     "custom separator",
			input:    "Hello World",
			opts:     []slug.Option{slug.Separator("_")},
			expected: "hello_world",
		},
		{
			name:     "max length cuts at word",
			input:    "This is a very long title that should be truncated",
			opts:     []slug.Option{slug.MaxLength(20)},
			expected: "this-is-a-very-long",
		},
		{
			name:     "max length on separator boundary",
			input:    "Cut off cleanly",
			opts:     []slug.Option{slug.MaxLength(7)},
			expected: "cut-off",
		},
		{
			name:     "max length single word",
			input:    "Supercalifragilistic",
			opts:     []slug.Option{slug.MaxLength(5)},
			expected: "super",
		},
		{
			name:     "strip chars",
			input:    "Remove (these) [chars]",
			opts:     []slug.Option{slug.StripChars("()[]")},
			expected: "remove-these-chars",
		},
		{
			name:     "custom replace",
			input:    "Fish & Chips @ Home",
			opts:     []slug.Option{slug.CustomReplace(map[string]string{"&": "and", "@": "at"})},
			expected: "fish-and-chips-at-home",
		},
		{
			name:     "reserved does not match",
			input:    "about us",
			opts:     []slug.Option{slug.ReservedSlugs("about")},
			expected: "about-us",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMakeWithSuffix(t *testing.T) {
	t.Parallel()

	t.Run("appends random suffix", func(t *testing.T) {
		t.Parallel()
		a := slug.Make("Article Title", slug.WithSuffix(8))
		b := slug.Make("Article Title", slug.WithSuffix(8))

		require.True(t, strings.HasPrefix(a, "article-title-"))
		require.Len(t, a, len("article-title-")+8)
		require.NotEqual(t, a, b)
	})

	t.Run("suffix fits max length", func(t *testing.T) {
		t.Parallel()
		s := slug.Make("Long Article Title", slug.MaxLength(20), slug.WithSuffix(6))
		require.LessOrEqual(t, len(s), 20)
		require.True(t, strings.HasPrefix(s, "long-article-"))
	})

	t.Run("empty input yields suffix only", func(t *testing.T) {
		t.Parallel()
		s := slug.Make("!!!", slug.WithSuffix(6))
		require.Len(t, s, 6)
		require.Regexp(t, `^[a-z0-9]{6}$`, s)
	})
}

func TestReservedSlugs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "exact", input: "admin"},
		{name: "case insensitive", input: "ADMIN"},
		{name: "after normalisation", input: " Ádmin! "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := slug.Make(tt.input, slug.ReservedSlugs("Admin", "api"))
			require.Regexp(t, `^admin-[a-z0-9]{6}$`, s)
		})
	}
}

func TestTransliterate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "naive resume", slug.Transliterate("naïve résumé"))
	require.Equal(t, "Strasse", slug.Transliterate("Straße"))
	require.Equal(t, "Lodz", slug.Transliterate("Łódź"))
	require.Equal(t, "日本", slug.Transliterate("日本"))
}
