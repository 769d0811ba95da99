package normalize

import "testing"

func TestNetworkKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase passthrough", "pluto tv", "pluto tv"},
		{"case folded", "Pluto TV", "pluto tv"},
		{"trailing space trimmed", "pluto tv ", "pluto tv"},
		{"leading space trimmed", "  Pluto TV", "pluto tv"},
		{"empty maps to unknown", "", UnknownLabel},
		{"whitespace only maps to unknown", "   ", UnknownLabel},
		{"literal unknown folds", "UNKNOWN", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NetworkKey(tt.raw); got != tt.want {
				t.Errorf("NetworkKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNetworkKeyEquivalence(t *testing.T) {
	// Variants of the same network must share one grouping key.
	variants := []string{"Pluto TV", "pluto tv", "PLUTO TV", " pluto tv "}
	want := NetworkKey(variants[0])
	for _, v := range variants[1:] {
		if got := NetworkKey(v); got != want {
			t.Errorf("NetworkKey(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNetworkDisplay(t *testing.T) {
	if got := NetworkDisplay("Pluto TV"); got != "Pluto TV" {
		t.Errorf("NetworkDisplay preserved casing: got %q", got)
	}
	if got := NetworkDisplay(""); got != UnknownLabel {
		t.Errorf("NetworkDisplay(\"\") = %q, want %q", got, UnknownLabel)
	}
	if got := NetworkDisplay("  "); got != UnknownLabel {
		t.Errorf("NetworkDisplay(whitespace) = %q, want %q", got, UnknownLabel)
	}
}

func TestTitleCanon(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"lowercase and trim", "  The Matrix  ", "the matrix"},
		{"punctuation stripped", "The Matrix: Reloaded!", "the matrix reloaded"},
		{"digits kept", "Matrix 1999", "matrix 1999"},
		{"non ascii stripped", "Amélie", "amlie"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleCanon(tt.title); got != tt.want {
				t.Errorf("TitleCanon(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestTablesContentKey(t *testing.T) {
	tables := NewTables([]Alias{
		{TitleCanon: "the matrix", ContentKey: "matrix_1999"},
		{TitleCanon: "matrix", ContentKey: "matrix_1999"},
	}, nil)

	tests := []struct {
		title string
		want  string
	}{
		{"The Matrix", "matrix_1999"},
		{"MATRIX", "matrix_1999"},
		{"the matrix!!!", "matrix_1999"},
		{"Breaking Bad", "breaking bad"}, // no alias: canonical title is the key
	}

	for _, tt := range tests {
		if got := tables.ContentKey(tt.title); got != tt.want {
			t.Errorf("ContentKey(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestTablesGenre(t *testing.T) {
	tables := NewTables(nil, []GenreMapping{
		{RawGenre: "Pluto TV", GenreCanon: "Entertainment"},
	})

	if got := tables.Genre("Pluto TV"); got != "Entertainment" {
		t.Errorf("Genre(mapped) = %q, want Entertainment", got)
	}

	// The lookup is exact match: a case variant is not resolved.
	if got := tables.Genre("pluto tv"); got != UnknownLabel {
		t.Errorf("Genre(case variant) = %q, want %q", got, UnknownLabel)
	}

	if got := tables.Genre("Never Seen"); got != UnknownLabel {
		t.Errorf("Genre(unmapped) = %q, want %q", got, UnknownLabel)
	}
}

func TestFallbackTitle(t *testing.T) {
	if got := FallbackTitle("The Matrix", "Pluto TV"); got != "The Matrix" {
		t.Errorf("non-empty title changed: got %q", got)
	}
	if got := FallbackTitle("", "Pluto TV"); got != "Pluto TV - Unknown Content" {
		t.Errorf("FallbackTitle(empty) = %q", got)
	}
	if got := FallbackTitle("", ""); got != "Unknown - Unknown Content" {
		t.Errorf("FallbackTitle(empty, empty network) = %q", got)
	}
}
