package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file names.
const (
	MarkdownFile = "TRAINING_REPORT.md"
	ColumnsFile  = "DATASET_COLUMNS.csv"
	FeaturesFile = "FEATURE_COLUMNS.csv"
)

// Write renders r into dir and returns the written paths.
func Write(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{MarkdownFile, RenderMarkdown(r)},
		{ColumnsFile, RenderColumnsCSV(r.Columns)},
		{FeaturesFile, RenderFeaturesCSV(r.FeatureColumns)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
