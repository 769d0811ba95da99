package refdata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reachreport/ctv-rollup/internal/storage"
)

// LoadFromDirectory discovers and parses all seed files in a directory.
func LoadFromDirectory(dirPath string) ([]FileWithPath, []ValidationError) {
	var files []FileWithPath
	var errors []ValidationError

	paths, err := discoverYAMLFiles(dirPath)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    dirPath,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		})
		return nil, errors
	}

	for _, path := range paths {
		file, err := parseYAMLFile(path)
		if err != nil {
			errors = append(errors, ValidationError{
				File:    path,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
			})
			continue
		}
		files = append(files, FileWithPath{File: file, Path: path})
	}

	return files, errors
}

// Apply upserts every entry of every seed file into the backend. Entries are
// applied in file order; a later file wins on duplicate keys, matching
// upsert semantics.
func Apply(files []FileWithPath, store storage.Backend) error {
	for _, f := range files {
		for _, g := range f.File.Genres {
			if err := store.UpsertGenreMapping(g.Raw, g.Canon); err != nil {
				return fmt.Errorf("failed to apply genre mapping %q: %w", g.Raw, err)
			}
		}
		for _, a := range f.File.Aliases {
			if err := store.UpsertContentAlias(a.Title, a.Key); err != nil {
				return fmt.Errorf("failed to apply content alias %q: %w", a.Title, err)
			}
		}
		for _, b := range f.File.Bundles {
			m := storage.BundleMapping{
				Raw:        b.Raw,
				Bundle:     b.Bundle,
				AppName:    b.AppName,
				Publisher:  b.Publisher,
				MaskReason: b.MaskReason,
			}
			if err := store.UpsertBundleMapping(m); err != nil {
				return fmt.Errorf("failed to apply bundle mapping %q: %w", b.Raw, err)
			}
		}
	}
	return nil
}

// discoverYAMLFiles finds all *.yaml and *.yml files in a directory
func discoverYAMLFiles(dirPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// parseYAMLFile parses a single YAML seed file
func parseYAMLFile(filePath string) (*File, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return &file, nil
}
