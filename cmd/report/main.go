// Package main writes a Markdown and CSV report of the training statistics
// and the model's feature columns.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"auction-advisor/internal/app"
	"auction-advisor/internal/config"
	"auction-advisor/internal/reporting"
)

func main() {
	flags := flag.NewFlagSet("report", flag.ExitOnError)
	outputDir := flags.String("output-dir", "docs", "Output directory for generated files")
	generatedAt := flags.String("generated-at", "", "Fixed report timestamp (RFC3339) for reproducible output")

	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()

	src, closeSource, err := app.OpenSource(ctx, cfg.Dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening dataset: %v\n", err)
		os.Exit(1)
	}
	defer closeSource()

	g := reporting.NewGenerator(src, cfg.Timing)
	if *generatedAt != "" {
		ts, err := time.Parse(time.RFC3339, *generatedAt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: --generated-at: %v\n", err)
			os.Exit(2)
		}
		g = g.WithClock(func() time.Time { return ts.UTC() })
	}

	report, err := g.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	paths, err := reporting.Write(*outputDir, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Training data report generated successfully:")
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}
}
