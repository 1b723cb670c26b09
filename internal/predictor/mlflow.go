package predictor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MLmodelFile is the descriptor at the root of an MLflow model directory.
const MLmodelFile = "MLmodel"

// MLmodel models the fields of an MLflow MLmodel descriptor that are read.
type MLmodel struct {
	ArtifactPath  string `yaml:"artifact_path"`
	MLflowVersion string `yaml:"mlflow_version"`
	RunID         string `yaml:"run_id"`
	ModelUUID     string `yaml:"model_uuid"`
	Flavors       struct {
		PythonFunction *struct {
			Data         string `yaml:"data"`
			LoaderModule string `yaml:"loader_module"`
		} `yaml:"python_function"`
		XGBoost *struct {
			Data        string `yaml:"data"`
			ModelClass  string `yaml:"model_class"`
			ModelFormat string `yaml:"model_format"`
			XGBVersion  string `yaml:"xgb_version"`
		} `yaml:"xgboost"`
	} `yaml:"flavors"`
	Signature *struct {
		Inputs  string `yaml:"inputs"`
		Outputs string `yaml:"outputs"`
	} `yaml:"signature"`
}

// signatureColumn is one entry of the JSON-encoded signature inputs.
type signatureColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ReadMLmodel parses the MLmodel descriptor in dir.
func ReadMLmodel(dir string) (*MLmodel, error) {
	data, err := os.ReadFile(filepath.Join(dir, MLmodelFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", MLmodelFile, err)
	}
	var m MLmodel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", MLmodelFile, err)
	}
	return &m, nil
}

// DataFile returns the model data path relative to the model directory.
func (m *MLmodel) DataFile() (string, error) {
	if x := m.Flavors.XGBoost; x != nil && x.Data != "" {
		return x.Data, nil
	}
	if p := m.Flavors.PythonFunction; p != nil && p.Data != "" {
		return p.Data, nil
	}
	return "", fmt.Errorf("%w: no xgboost or python_function data in %s", ErrUnsupportedModel, MLmodelFile)
}

// InputColumns returns the column names from the model signature, if any.
func (m *MLmodel) InputColumns() ([]string, error) {
	if m.Signature == nil || m.Signature.Inputs == "" {
		return nil, nil
	}
	var cols []signatureColumn
	if err := json.Unmarshal([]byte(m.Signature.Inputs), &cols); err != nil {
		return nil, fmt.Errorf("parse signature inputs: %w", err)
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		switch c.Type {
		case "", "long", "integer", "double", "float":
		default:
			return nil, fmt.Errorf("%w: column %s has type %s", ErrSchemaMismatch, c.Name, c.Type)
		}
		names = append(names, c.Name)
	}
	return names, nil
}

// LoadMLflowDir loads the XGBoost model stored in an MLflow model directory.
func LoadMLflowDir(dir string) (*Ensemble, error) {
	m, err := ReadMLmodel(dir)
	if err != nil {
		return nil, err
	}

	cols, err := m.InputColumns()
	if err != nil {
		return nil, err
	}
	if err := checkFeatureNames(cols); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}

	data, err := m.DataFile()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, data)

	if x := m.Flavors.XGBoost; x != nil && x.ModelFormat != "" && x.ModelFormat != "json" {
		return nil, fmt.Errorf("%w: xgboost model_format %q (re-log the model with model_format=\"json\")", ErrUnsupportedModel, x.ModelFormat)
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, data)
	}

	return LoadXGBoostFile(path)
}
