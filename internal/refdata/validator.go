package refdata

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Validator checks seed files against the reference-data JSON schema plus
// cross-file rules the schema cannot express.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a validator from the given schema file.
func NewValidator(schemaPath string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateDirectory loads and validates all seed files in a directory.
func (v *Validator) ValidateDirectory(dirPath string) []ValidationError {
	files, loadErrors := LoadFromDirectory(dirPath)

	var allErrors []ValidationError
	allErrors = append(allErrors, loadErrors...)

	if len(files) == 0 {
		return allErrors
	}

	for _, f := range files {
		allErrors = append(allErrors, v.validateSchema(f.Path, f.File)...)
	}

	allErrors = append(allErrors, validateUniqueKeys(files)...)

	return allErrors
}

// validateSchema validates a single seed file against the JSON schema.
func (v *Validator) validateSchema(file string, seed *File) []ValidationError {
	var errors []ValidationError

	// Round-trip through YAML to get the plain map form the schema expects.
	yamlBytes, err := yaml.Marshal(seed)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to marshal seed file: %v", err),
		})
		return errors
	}

	var jsonData interface{}
	if err := yaml.Unmarshal(yamlBytes, &jsonData); err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to convert to JSON: %v", err),
		})
		return errors
	}

	if err := v.schema.Validate(jsonData); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			errors = append(errors, extractSchemaErrors(file, validationErr)...)
		} else {
			errors = append(errors, ValidationError{
				File:    file,
				Message: err.Error(),
			})
		}
	}

	return errors
}

// extractSchemaErrors converts JSON schema validation errors to ValidationErrors
func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError

	path := strings.Join(err.InstanceLocation, ".")
	if path == "" {
		path = "(root)"
	}

	errors = append(errors, ValidationError{
		File:    file,
		Path:    path,
		Message: err.Error(),
	})

	for _, cause := range err.Causes {
		errors = append(errors, extractSchemaErrors(file, cause)...)
	}

	return errors
}

// validateUniqueKeys rejects the same mapping key defined twice across the
// seed set: with upsert semantics the last one would silently win.
func validateUniqueKeys(files []FileWithPath) []ValidationError {
	var errors []ValidationError

	genreSeen := make(map[string]string)
	aliasSeen := make(map[string]string)
	bundleSeen := make(map[string]string)

	for _, f := range files {
		for i, g := range f.File.Genres {
			if prev, exists := genreSeen[g.Raw]; exists {
				errors = append(errors, ValidationError{
					File:    f.Path,
					Path:    fmt.Sprintf("genres[%d].raw", i),
					Message: fmt.Sprintf("duplicate raw genre %q (also in %s)", g.Raw, filepath.Base(prev)),
				})
			} else {
				genreSeen[g.Raw] = f.Path
			}
		}
		for i, a := range f.File.Aliases {
			if prev, exists := aliasSeen[a.Title]; exists {
				errors = append(errors, ValidationError{
					File:    f.Path,
					Path:    fmt.Sprintf("aliases[%d].title", i),
					Message: fmt.Sprintf("duplicate alias title %q (also in %s)", a.Title, filepath.Base(prev)),
				})
			} else {
				aliasSeen[a.Title] = f.Path
			}
		}
		for i, b := range f.File.Bundles {
			if prev, exists := bundleSeen[b.Raw]; exists {
				errors = append(errors, ValidationError{
					File:    f.Path,
					Path:    fmt.Sprintf("bundles[%d].raw", i),
					Message: fmt.Sprintf("duplicate raw bundle %q (also in %s)", b.Raw, filepath.Base(prev)),
				})
			} else {
				bundleSeen[b.Raw] = f.Path
			}
		}
	}

	return errors
}
