// Package main prices a single listing from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"auction-advisor/internal/app"
	"auction-advisor/internal/config"
	"auction-advisor/internal/domain"
	"auction-advisor/internal/features"
	"auction-advisor/internal/logging"
)

func main() {
	flags := flag.NewFlagSet("estimate", flag.ExitOnError)
	req := domain.DefaultEstimateRequest()
	flags.IntVar(&req.Year, "year", req.Year, fmt.Sprintf("Model year (%d-%d)", domain.MinYear, domain.MaxYear))
	flags.IntVar(&req.Mileage, "mileage", req.Mileage, fmt.Sprintf("Odometer miles (%d-%d)", domain.MinMileage, domain.MaxMileage))
	submodel := flags.String("submodel", req.Submodel.String(), "Submodel")
	flags.StringVar(&req.Title, "title", req.Title, "Listing title")
	flags.StringVar(&req.ZIP, "zip", req.ZIP, "Seller ZIP code")
	outputJSON := flags.Bool("json", false, "Output as JSON")

	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	req.Submodel = domain.Submodel(*submodel)

	if err := features.ValidateRequest(req); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr so stdout carries only the estimate.
	logger, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx := context.Background()
	adv, err := app.LoadAdvisor(ctx, cfg, "cli", logger)
	if err != nil {
		logger.Fatal("load advisor", zap.Error(err))
	}

	est, err := adv.Estimate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := printEstimate(os.Stdout, est, *outputJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printEstimate(w io.Writer, est *domain.Estimate, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}

	_, err := fmt.Fprintf(w, "Estimated sale price: %s\nRecommended auction window: %s\nRecommended end day: %s\n\n%s\n",
		est.PriceText, est.MonthLabel, est.DayLabel, est.Summary)
	return err
}
