// Package normalize collapses heterogeneous vendor-name spellings into
// canonical supplier identities. The canonical key is used for grouping
// only; display names always keep the literal spelling from the source.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonicalizer turns raw vendor names into canonical grouping keys.
// The alias table is injected at construction so every call site (ingestion,
// hours view, list view) shares the exact same mapping.
type Canonicalizer struct {
	aliases map[string]string
}

func New(aliases map[string]string) *Canonicalizer {
	return &Canonicalizer{aliases: aliases}
}

// NewDefault returns a canonicalizer loaded with the curated alias table.
func NewDefault() *Canonicalizer {
	return New(DefaultAliases())
}

// Canonicalize maps a raw vendor name to its canonical key:
// diacritic stripping (NFD, combining marks removed), separator removal,
// case folding, then alias-table lookup. Empty input resolves to the
// unknown-vendor bucket before normalization.
func (c *Canonicalizer) Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		s = "Desconhecido"
	}
	s = stripDiacritics(s)
	s = stripSeparators(s)
	s = strings.ToLower(s)
	if canonical, ok := c.aliases[s]; ok {
		return canonical
	}
	return s
}

// Blacklisted reports whether a canonical key is extraction noise, i.e. a
// token produced by malformed source cells (stray header text, purchase
// order remnants). Such keys are excluded from summary views but still
// appear in the full vendor list.
func (c *Canonicalizer) Blacklisted(key string) bool {
	_, ok := blacklist[key]
	return ok || key == ""
}

var blacklist = map[string]struct{}{
	"fornecedor":    {},
	"???":           {},
	"ajustedarc":    {},
	"pedidoemitido": {},
	"emitidaem":     {},
	"multivendor":   {},
}

// stripDiacritics removes combining marks after canonical decomposition,
// so "Réguas" and "Reguas" compare equal.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// stripSeparators drops the punctuation and whitespace that varies freely
// between spellings of the same legal entity.
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == ',' || r == '-' || r == '&':
			return -1
		case unicode.IsSpace(r):
			return -1
		}
		return r
	}, s)
}
