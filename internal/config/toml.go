// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/dexboard/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Dataset   DatasetConfig   `toml:"dataset"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

// DatasetConfig maps the input file settings.
type DatasetConfig struct {
	Path    *string       `toml:"path"`
	Columns ColumnsConfig `toml:"columns"`
}

// ColumnsConfig renames the headers expected in a CSV dataset.
type ColumnsConfig struct {
	Name     *string `toml:"name"`
	Category *string `toml:"category_primary"`
	Region   *string `toml:"region"`
	Attack   *string `toml:"attack"`
	Defense  *string `toml:"defense"`
	Speed    *string `toml:"speed"`
	Health   *string `toml:"health"`
	Total    *string `toml:"total_stat"`
}

// DashboardConfig maps dashboard defaults.
type DashboardConfig struct {
	View       *string  `toml:"view"`
	Regions    []string `toml:"regions"`
	Categories []string `toml:"categories"`
	MinTotal   *int     `toml:"min-total"`
	MaxTotal   *int     `toml:"max-total"`
	Top        *int     `toml:"top"`
	Bins       *int     `toml:"bins"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Headers returns the configured header overrides keyed by field name.
func (c ColumnsConfig) Headers() map[string]string {
	out := map[string]string{}
	set := func(field model.Field, value *string) {
		if value != nil && *value != "" {
			out[string(field)] = *value
		}
	}
	set(model.FieldName, c.Name)
	set(model.FieldCategory, c.Category)
	set(model.FieldRegion, c.Region)
	set(model.FieldAttack, c.Attack)
	set(model.FieldDefense, c.Defense)
	set(model.FieldSpeed, c.Speed)
	set(model.FieldHealth, c.Health)
	set(model.FieldTotal, c.Total)
	return out
}
