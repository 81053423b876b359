package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"asset-angel-api/internal/store"
	"asset-angel-api/pkg/importer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: import_excel --file=assets.xlsx [--seed=seed.yaml] [--mapping=mapping.yaml] [--out=seed.yaml] [--dry-run]")
		os.Exit(1)
	}

	var filePath, seedPath, mappingPath, outPath string
	dryRun := false

	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "--file=") {
			filePath = strings.TrimPrefix(arg, "--file=")
		} else if strings.HasPrefix(arg, "--seed=") {
			seedPath = strings.TrimPrefix(arg, "--seed=")
		} else if strings.HasPrefix(arg, "--mapping=") {
			mappingPath = strings.TrimPrefix(arg, "--mapping=")
		} else if strings.HasPrefix(arg, "--out=") {
			outPath = strings.TrimPrefix(arg, "--out=")
		} else if arg == "--dry-run" {
			dryRun = true
		}
	}

	if filePath == "" {
		fmt.Println("Error: file is required")
		fmt.Println("Usage: import_excel --file=assets.xlsx [--seed=seed.yaml] [--mapping=mapping.yaml] [--out=seed.yaml] [--dry-run]")
		os.Exit(1)
	}

	// Load the dataset the import is applied to
	seed, err := store.LoadSeedFile(seedPath)
	if err != nil {
		log.Fatalf("Failed to load seed: %v", err)
	}
	st, err := store.NewFromSeed(seed)
	if err != nil {
		log.Fatalf("Invalid seed: %v", err)
	}

	// Open Excel file
	file, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("Failed to open Excel file: %v", err)
	}
	defer file.Close()

	fmt.Printf("Importing from %s (dry_run=%v)\n", filePath, dryRun)
	fmt.Println("=" + strings.Repeat("=", 60))

	summary, err := importer.ImportAssets(context.Background(), st, file, importer.ImportOptions{
		MappingPath: mappingPath,
		DryRun:      dryRun,
		MaxErrors:   importer.DefaultMaxErrors,
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	// Print summary
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("IMPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Total inserted: %d\n", summary.Inserted)
	fmt.Printf("Total updated: %d\n", summary.Updated)
	fmt.Printf("Total skipped: %d\n", summary.Skipped)
	fmt.Printf("Total errors: %d\n", summary.Errors)
	fmt.Printf("Dry run: %v\n", summary.DryRun)

	for _, sheet := range summary.Sheets {
		fmt.Printf("  %s: inserted=%d, updated=%d, skipped=%d, errors=%d\n",
			sheet.Name, sheet.Inserted, sheet.Updated, sheet.Skipped, sheet.Errors)
		for _, sample := range sheet.Samples {
			fmt.Printf("      Row %d: %s\n", sample.Row, sample.Message)
		}
	}

	if dryRun {
		return
	}

	if outPath == "" {
		fmt.Println("\nNo --out given, merged seed not written")
		return
	}

	// Write the merged dataset as a seed the API can boot from
	var buf bytes.Buffer
	if err := st.WriteSeed(&buf); err != nil {
		log.Fatalf("Failed to encode seed: %v", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", outPath, err)
	}
	fmt.Printf("\nWrote seed to %s\n", outPath)
}
