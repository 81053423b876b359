package importer

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed mapping/assets.yaml
var defaultMapping []byte

var knownFields = map[string]bool{
	"name": true, "category": true, "serial_number": true, "condition": true, "status": true,
	"purchase_date": true, "purchase_price": true, "warranty_expiry": true, "notes": true,
}

var knownTypes = map[string]bool{"TEXT": true, "ENUM": true, "NUMBER": true, "DATE": true}

// MappingConfig represents the YAML mapping configuration
type MappingConfig struct {
	Version  int                    `yaml:"version"`
	Defaults map[string]string      `yaml:"defaults"`
	Sheets   map[string]SheetConfig `yaml:"sheets"`
}

type SheetConfig struct {
	NaturalKey string                  `yaml:"natural_key"`
	Aliases    map[string][]string     `yaml:"aliases"`
	Columns    map[string]ColumnConfig `yaml:"columns"`
}

type ColumnConfig struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

func (c ColumnConfig) required() bool { return !strings.HasSuffix(c.Type, "?") }

// LoadMapping reads a mapping file, or the embedded default when path is empty
func LoadMapping(path string) (*MappingConfig, error) {
	raw := defaultMapping
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return ParseMapping(raw)
}

// ParseMapping decodes and checks a YAML mapping
func ParseMapping(raw []byte) (*MappingConfig, error) {
	var m MappingConfig
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *MappingConfig) validate() error {
	if len(m.Sheets) == 0 {
		return fmt.Errorf("mapping defines no sheets")
	}
	for field := range m.Defaults {
		if !knownFields[field] {
			return fmt.Errorf("mapping default for unknown field %q", field)
		}
	}
	for name, sheet := range m.Sheets {
		keyMapped := false
		for header, col := range sheet.Columns {
			if !knownFields[col.Field] {
				return fmt.Errorf("sheet %s: column %q maps unknown field %q", name, header, col.Field)
			}
			if !knownTypes[strings.TrimSuffix(col.Type, "?")] {
				return fmt.Errorf("sheet %s: column %q has unsupported type %q", name, header, col.Type)
			}
			if col.Field == sheet.NaturalKey {
				keyMapped = true
			}
		}
		if !keyMapped {
			return fmt.Errorf("sheet %s: natural key %q is not mapped by any column", name, sheet.NaturalKey)
		}
		for header := range sheet.Aliases {
			if _, ok := sheet.Columns[header]; !ok {
				return fmt.Errorf("sheet %s: aliases for unmapped column %q", name, header)
			}
		}
	}
	return nil
}

// sheet finds the config for a workbook sheet, ignoring case
func (m *MappingConfig) sheet(name string) (SheetConfig, bool) {
	if cfg, ok := m.Sheets[name]; ok {
		return cfg, true
	}
	for key, cfg := range m.Sheets {
		if strings.EqualFold(key, name) {
			return cfg, true
		}
	}
	return SheetConfig{}, false
}

func (m *MappingConfig) sheetNames() []string {
	names := make([]string, 0, len(m.Sheets))
	for name := range m.Sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
