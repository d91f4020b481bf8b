package carbon

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Table file formats accepted by ParseTable
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// ErrUnsupportedFormat is returned for factor files of unknown type
var ErrUnsupportedFormat = errors.New("unsupported factor table format")

//go:embed default_factors.yaml
var defaultFactors []byte

// tableFile is the on-disk shape of a factor table
type tableFile struct {
	Version string   `json:"version" yaml:"version" toml:"version"`
	Factors []Factor `json:"factors" yaml:"factors" toml:"factors"`
}

// DefaultTable returns the built-in factor table
func DefaultTable() *FactorTable {
	t, err := ParseTable(defaultFactors, FormatYAML)
	if err != nil {
		// the embedded table is covered by tests
		panic(err)
	}
	return t
}

// LoadTable reads a factor table, choosing the format by file extension
func LoadTable(filename string) (*FactorTable, error) {
	format, err := formatOf(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read factor table: %w", err)
	}
	t, err := ParseTable(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return t, nil
}

func formatOf(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

// ParseTable decodes and validates a factor table
func ParseTable(data []byte, format string) (*FactorTable, error) {
	var file tableFile
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&file)
	case FormatTOML:
		err = toml.Unmarshal(data, &file)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&file)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return NewFactorTable(file.Version, file.Factors)
}

// Encode writes the table in the given format, in the shape ParseTable reads
func (t *FactorTable) Encode(format string) ([]byte, error) {
	file := tableFile{Version: t.version, Factors: t.Factors()}
	switch format {
	case FormatYAML:
		return yaml.Marshal(file)
	case FormatTOML:
		return toml.Marshal(file)
	case FormatJSON:
		return json.MarshalIndent(file, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
