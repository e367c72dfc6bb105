package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/verte-zerg/dexboard/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Dataset.Path != nil || cfg.Dashboard.Top != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[dataset]
path = "data/pokedex_enriquecida.csv"

[dataset.columns]
name = "Nombre"
region = "País"
total_stat = "Total"

[dashboard]
view = "geography"
regions = ["Japan", "USA"]
min-total = 300
top = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Dataset.Path == nil || *cfg.Dataset.Path != "data/pokedex_enriquecida.csv" {
		t.Fatalf("unexpected dataset path: %v", cfg.Dataset.Path)
	}
	headers := cfg.Dataset.Columns.Headers()
	want := map[string]string{"name": "Nombre", "region": "País", "total_stat": "Total"}
	if !reflect.DeepEqual(headers, want) {
		t.Fatalf("unexpected headers: %v", headers)
	}
	if cfg.Dashboard.View == nil || *cfg.Dashboard.View != "geography" {
		t.Fatalf("unexpected view: %v", cfg.Dashboard.View)
	}
	if !reflect.DeepEqual(cfg.Dashboard.Regions, []string{"Japan", "USA"}) {
		t.Fatalf("unexpected regions: %v", cfg.Dashboard.Regions)
	}
	if cfg.Dashboard.MinTotal == nil || *cfg.Dashboard.MinTotal != 300 {
		t.Fatalf("unexpected min-total: %v", cfg.Dashboard.MinTotal)
	}
	if cfg.Dashboard.MaxTotal != nil {
		t.Fatalf("expected unset max-total")
	}
	if cfg.Dashboard.Top == nil || *cfg.Dashboard.Top != 5 {
		t.Fatalf("unexpected top: %v", cfg.Dashboard.Top)
	}
}

func TestColumnsHeadersCoverEveryField(t *testing.T) {
	var content strings.Builder
	content.WriteString("[dataset.columns]\n")
	for _, f := range model.Fields {
		content.WriteString(string(f) + " = \"col_" + string(f) + "\"\n")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	headers := cfg.Dataset.Columns.Headers()
	if len(headers) != len(model.Fields) {
		t.Fatalf("expected %d headers, got %v", len(model.Fields), headers)
	}
	for _, f := range model.Fields {
		if got := headers[string(f)]; got != "col_"+string(f) {
			t.Fatalf("field %s: unexpected header %q", f, got)
		}
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[dashboard]\ntopp = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "topp") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
