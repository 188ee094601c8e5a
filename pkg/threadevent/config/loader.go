package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// format is a settings file encoding.
type format int

const (
	formatYAML format = iota
	formatJSON
)

func (f format) String() string {
	if f == formatJSON {
		return "json"
	}
	return "yaml"
}

// formatFor picks the encoding from the file extension.
func formatFor(path string) (format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, fmt.Errorf("unsupported config file extension %q (want .yaml, .yml or .json)", ext)
	}
}

// Load reads the file at path and returns its validated Settings. It is the
// usual entry point; FromFile is for callers that want the raw Config.
func Load(path string) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := cfg.Settings()
	if err != nil {
		return Settings{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return s, nil
}

// FromFile reads the file at path. Supported extensions: .yaml, .yml, .json.
// An empty file yields an empty Config.
func FromFile(path string) (Config, error) {
	f, err := formatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return decode(f, data)
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	return decode(formatYAML, data)
}

// FromJSON parses JSON data into a Config. Numbers are kept as json.Number
// so integer settings do not pass through float64.
func FromJSON(data []byte) (Config, error) {
	return decode(formatJSON, data)
}

func decode(f format, data []byte) (Config, error) {
	m := make(map[string]any)

	var err error
	switch f {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&m)
	default:
		err = yaml.NewDecoder(bytes.NewReader(data)).Decode(&m)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse %s: %w", f, err)
	}
	return New(m), nil
}
