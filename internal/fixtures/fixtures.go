// Package fixtures ships a small bundled dataset and price model so the
// binaries can run without the full training artifacts (-use-fixtures).
package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"auction-advisor/internal/dataset"
	"auction-advisor/internal/predictor"
)

const (
	ListingsFile = "listings.csv"
	ModelFile    = "price_model.json"
)

//go:embed testdata/listings.csv
var listingsCSV []byte

//go:embed testdata/price_model.json
var priceModelJSON []byte

// ListingsCSV returns a copy of the bundled listings dataset.
func ListingsCSV() []byte {
	return bytes.Clone(listingsCSV)
}

// Table parses the bundled listings.
func Table() (*dataset.Table, error) {
	return dataset.ReadCSV(bytes.NewReader(listingsCSV))
}

// Source returns the bundled listings as a dataset source.
func Source() (dataset.Source, error) {
	t, err := Table()
	if err != nil {
		return nil, fmt.Errorf("parse bundled listings: %w", err)
	}
	return &dataset.TableSource{Label: "fixture:" + ListingsFile, Data: t}, nil
}

// Model parses the bundled price model.
func Model() (*predictor.Ensemble, error) {
	return predictor.ReadXGBoost(bytes.NewReader(priceModelJSON))
}

// WriteFiles writes the bundled dataset and model into dir and returns
// their paths.
func WriteFiles(dir string) (csvPath, modelPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create %s: %w", dir, err)
	}
	csvPath = filepath.Join(dir, ListingsFile)
	if err := os.WriteFile(csvPath, listingsCSV, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", csvPath, err)
	}
	modelPath = filepath.Join(dir, ModelFile)
	if err := os.WriteFile(modelPath, priceModelJSON, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", modelPath, err)
	}
	return csvPath, modelPath, nil
}
