package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads a run from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Run{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a validated Run.
func FromYAML(data []byte) (Run, error) {
	var r Run
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Run{}, fmt.Errorf("parse yaml: %w", err)
	}
	return finish(r)
}

// FromJSON parses JSON data into a validated Run.
func FromJSON(data []byte) (Run, error) {
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return Run{}, fmt.Errorf("parse json: %w", err)
	}
	return finish(r)
}

func finish(r Run) (Run, error) {
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return Run{}, fmt.Errorf("invalid config: %w", err)
	}
	return r, nil
}
