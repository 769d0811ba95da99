package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/reachreport/ctv-rollup/internal/refdata"
	"github.com/reachreport/ctv-rollup/internal/storage/sqlite"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateDir := validateCmd.String("dir", "", "directory containing reference data YAML files")

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedDir := seedCmd.String("dir", "", "directory containing reference data YAML files")
	seedDB := seedCmd.String("db", "data/rollup.db", "SQLite database path")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *validateDir == "" {
			fmt.Fprintln(os.Stderr, "Error: --dir flag is required")
			validateCmd.Usage()
			os.Exit(1)
		}
		os.Exit(runValidate(*validateDir))
	case "seed":
		seedCmd.Parse(os.Args[2:])
		if *seedDir == "" {
			fmt.Fprintln(os.Stderr, "Error: --dir flag is required")
			seedCmd.Usage()
			os.Exit(1)
		}
		os.Exit(runSeed(*seedDir, *seedDB))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: rollup <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate --dir <path>              Validate reference data YAML files in a directory")
	fmt.Println("  seed --dir <path> [--db <path>]    Validate and apply reference data to a database")
	fmt.Println()
}

func runValidate(dirPath string) int {
	schemaPath := findSchemaFile()
	if schemaPath == "" {
		fmt.Fprintln(os.Stderr, "Error: could not find schemas/refdata_v1.json")
		return 1
	}

	validator, err := refdata.NewValidator(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize validator: %v\n", err)
		return 1
	}

	errors := validator.ValidateDirectory(dirPath)

	if len(errors) == 0 {
		fmt.Println("✓ All reference data files are valid")
		return 0
	}

	printErrors(errors)
	return 1
}

func runSeed(dirPath, dbPath string) int {
	if code := runValidate(dirPath); code != 0 {
		return code
	}

	files, loadErrors := refdata.LoadFromDirectory(dirPath)
	if len(loadErrors) > 0 {
		printErrors(loadErrors)
		return 1
	}

	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := refdata.Apply(files, store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to apply reference data: %v\n", err)
		return 1
	}

	fmt.Printf("✓ Applied reference data from %d file(s) to %s\n", len(files), dbPath)
	return 0
}

func printErrors(errors []refdata.ValidationError) {
	// Group errors by file
	errorsByFile := make(map[string][]refdata.ValidationError)
	for _, err := range errors {
		errorsByFile[err.File] = append(errorsByFile[err.File], err)
	}

	var files []string
	for file := range errorsByFile {
		files = append(files, file)
	}
	sort.Strings(files)

	fmt.Fprintf(os.Stderr, "✗ Validation failed with %d error(s):\n\n", len(errors))
	for _, file := range files {
		fileErrors := errorsByFile[file]
		for _, err := range fileErrors {
			if err.Path != "" {
				fmt.Fprintf(os.Stderr, "%s: %s: %s\n", filepath.Base(err.File), err.Path, err.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %s\n", filepath.Base(err.File), err.Message)
			}
		}
	}
}

// findSchemaFile looks for the schema file in common locations
func findSchemaFile() string {
	candidates := []string{
		"schemas/refdata_v1.json",
		"../schemas/refdata_v1.json",
		"../../schemas/refdata_v1.json",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
