package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/labforms/coc-extractor/internal/fields"
	"github.com/labforms/coc-extractor/internal/match"
	"github.com/labforms/coc-extractor/internal/pipeline"
)

// coc-compare matches the fields of a filled document against a template
// document and prints the mapping. Inputs are JSON files holding either a
// bare record array or a full extraction document.

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		templatePath = flag.String("template", "", "template records JSON (required)")
		filledPath   = flag.String("filled", "", "filled records JSON (required)")
		threshold    = flag.Float64("threshold", match.DefaultThreshold, "similarity threshold")
		asJSON       = flag.Bool("json", false, "emit the comparison as JSON instead of a table")
	)
	flag.Parse()

	if *templatePath == "" || *filledPath == "" {
		printError("Error: --template and --filled are required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	template, err := loadRecords(*templatePath)
	if err != nil {
		printError("Error: load template: %v\n", err)
		os.Exit(1)
	}
	filled, err := loadRecords(*filledPath)
	if err != nil {
		printError("Error: load filled: %v\n", err)
		os.Exit(1)
	}

	comparison := match.Compare(template, filled, match.Matcher{Threshold: *threshold})

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(comparison); err != nil {
			printError("Error: encode comparison: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Print(comparison.Render())
}

// loadRecords accepts either a record array or a whole document and returns
// its flat field sequence.
func loadRecords(path string) ([]fields.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var recs []fields.Record
	if err := json.Unmarshal(raw, &recs); err == nil {
		return recs, nil
	}

	var doc pipeline.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: neither a record array nor a document", path)
	}
	return doc.ExtractedFields, nil
}
