package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadConfigBytes reads a graph config file and normalizes it to JSON.
// YAML files are decoded into a generic map then re-marshaled so every
// downstream consumer (parser.Parse, upgrader.Upgrade) only ever sees JSON,
// regardless of the source format on disk.
func loadConfigBytes(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("no config file given; pass -f/--file")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var data map[string]any
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", path, err)
		}
		return json.Marshal(data)
	default:
		return raw, nil
	}
}
