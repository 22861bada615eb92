// Package slug turns titles into URL-safe identifiers.
//
// Diacritics are removed through Unicode decomposition (golang.org/x/text),
// a handful of Latin letters without a decomposition are transliterated, and
// every other run of non-alphanumeric characters becomes a single separator:
//
//	slug.Make("Café & Restaurant")                   // "cafe-restaurant"
//	slug.Make("München straße")                      // "munchen-strasse"
//	slug.Make("Long Article Title", slug.MaxLength(12)) // "long-article"
//	slug.Make("admin", slug.ReservedSlugs("admin"))  // "admin-k7x2m4"
//
// The news module uses it to derive item slugs from titles.
package slug
