// Package normalize holds the pure canonicalization functions. All functions
// are deterministic for identical inputs and identical reference-table
// snapshots; nothing here touches storage.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// UnknownLabel groups rows whose network name is empty and names genres with
// no mapping. It is a literal label: a network actually named "unknown"
// folds to a different key and stays a separate group.
const UnknownLabel = "Unknown"

// Tables is an immutable snapshot of the reference tables consulted during
// canonicalization. Build a fresh snapshot per rollup query so alias and
// genre edits are reflected immediately.
type Tables struct {
	aliases map[string]string // canonical title -> content key
	genres  map[string]string // raw label -> canonical genre
}

// NewTables builds a snapshot from alias and genre mapping lists.
func NewTables(aliases []Alias, genres []GenreMapping) *Tables {
	t := &Tables{
		aliases: make(map[string]string, len(aliases)),
		genres:  make(map[string]string, len(genres)),
	}
	for _, a := range aliases {
		t.aliases[a.TitleCanon] = a.ContentKey
	}
	for _, g := range genres {
		t.genres[g.RawGenre] = g.GenreCanon
	}
	return t
}

// Alias maps a canonicalized title to its stable grouping key.
type Alias struct {
	TitleCanon string
	ContentKey string
}

// GenreMapping maps a raw label to a canonical genre.
type GenreMapping struct {
	RawGenre   string
	GenreCanon string
}

// NetworkKey returns the grouping key for a network name: case-folded and
// trimmed. Empty input keys to UnknownLabel. The key is never displayed;
// rollups show the first-seen original spelling instead.
func NetworkKey(raw string) string {
	folded := strings.TrimSpace(cases.Fold().String(raw))
	if folded == "" {
		return UnknownLabel
	}
	return folded
}

// NetworkDisplay returns the display form of a network name: the original
// spelling, or UnknownLabel when the name is empty.
func NetworkDisplay(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return UnknownLabel
	}
	return raw
}

// Genre resolves a raw network label to its canonical genre. The lookup is
// an exact match on the label as received; absent mappings yield
// UnknownLabel. Genre rollups key off the network name, not a per-row genre
// field, matching the observed upstream behavior.
func (t *Tables) Genre(rawNetwork string) string {
	if canon, ok := t.genres[rawNetwork]; ok {
		return canon
	}
	return UnknownLabel
}

// ContentKey resolves a title to its grouping key: the alias for the
// canonicalized title if one exists, else the canonicalized title itself.
// Callers must apply FallbackTitle first so the key is never empty.
func (t *Tables) ContentKey(title string) string {
	canon := TitleCanon(title)
	if key, ok := t.aliases[canon]; ok {
		return key
	}
	return canon
}

// TitleCanon canonicalizes a content title: case-folded, trimmed, with every
// rune outside [a-z0-9 ] stripped.
func TitleCanon(title string) string {
	folded := strings.TrimSpace(cases.Fold().String(title))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FallbackTitle substitutes a placeholder for an empty content title so key
// derivation always has input. Non-empty titles pass through unchanged.
func FallbackTitle(title, network string) string {
	if title != "" {
		return title
	}
	return NetworkDisplay(network) + " - Unknown Content"
}
