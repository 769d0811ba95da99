package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reachreport/ctv-rollup/internal/storage/memory"
)

func TestLoadFromDirectory(t *testing.T) {
	files, errs := LoadFromDirectory("../../fixtures/refdata/valid")

	if len(errs) != 0 {
		t.Fatalf("expected no load errors, got %d: %v", len(errs), errs)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 seed files, got %d", len(files))
	}

	var genres, aliases, bundles int
	for _, f := range files {
		genres += len(f.File.Genres)
		aliases += len(f.File.Aliases)
		bundles += len(f.File.Bundles)
	}
	if genres != 2 || aliases != 2 || bundles != 2 {
		t.Errorf("loaded %d genres, %d aliases, %d bundles; want 2 of each", genres, aliases, bundles)
	}
}

func TestLoadFromDirectory_MissingDirectory(t *testing.T) {
	_, errs := LoadFromDirectory("../../fixtures/refdata/no-such-dir")
	if len(errs) == 0 {
		t.Error("expected an error for a missing directory")
	}
}

func TestLoadFromDirectory_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("genres: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	files, errs := LoadFromDirectory(dir)
	if len(errs) != 1 {
		t.Fatalf("expected 1 parse error, got %d", len(errs))
	}
	if len(files) != 0 {
		t.Errorf("expected no parsed files, got %d", len(files))
	}
}

func TestApply(t *testing.T) {
	files, errs := LoadFromDirectory("../../fixtures/refdata/valid")
	if len(errs) != 0 {
		t.Fatalf("load errors: %v", errs)
	}

	store := memory.NewStore()
	defer store.Close()

	if err := Apply(files, store); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	genres, err := store.GenreMappings()
	if err != nil {
		t.Fatalf("list genres: %v", err)
	}
	if len(genres) != 2 {
		t.Errorf("expected 2 genre mappings, got %d", len(genres))
	}

	aliases, err := store.ContentAliases()
	if err != nil {
		t.Fatalf("list aliases: %v", err)
	}
	if len(aliases) != 2 {
		t.Errorf("expected 2 aliases, got %d", len(aliases))
	}
	for _, a := range aliases {
		if a.ContentKey != "matrix_1999" {
			t.Errorf("alias %q -> %q, want matrix_1999", a.TitleCanon, a.ContentKey)
		}
	}
}
