package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/dexboard/internal/config"
)

const testCSV = `name,category_primary,region,attack,defense,speed,health,total_stat
Bulbasaur,grass,Japan,49,49,45,45,318
Charmander,fire,Japan,52,43,65,39,309
Squirtle,water,USA,48,65,43,44,314
Missingno,bird,,136,0,29,33,198
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	path := filepath.Join(dir, "dex.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

type jsonSummary struct {
	Criteria struct {
		Total struct {
			Min int `json:"min"`
			Max int `json:"max"`
		} `json:"total"`
	} `json:"criteria"`
	Count      int `json:"count"`
	Highlights []struct {
		Label string `json:"label"`
		Name  string `json:"name"`
	} `json:"highlights"`
	Focus string `json:"focus_region"`
	Top   []struct {
		Name string `json:"name"`
	} `json:"top_in_region"`
}

func summaryJSON(t *testing.T, args ...string) jsonSummary {
	t.Helper()
	out, err := run(t, append([]string{"summary", "--format", "json"}, args...)...)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var got jsonSummary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	return got
}

func TestSummaryJSON(t *testing.T) {
	path := setupEnv(t)
	got := summaryJSON(t, "--data", path)
	if got.Count != 4 {
		t.Fatalf("expected 4 records, got %d", got.Count)
	}
	if len(got.Highlights) != 3 || got.Highlights[0].Name != "Missingno" {
		t.Fatalf("unexpected highlights: %+v", got.Highlights)
	}
	if got.Focus != "Japan" || len(got.Top) != 2 || got.Top[0].Name != "Bulbasaur" {
		t.Fatalf("unexpected top: %s %+v", got.Focus, got.Top)
	}

	filtered := summaryJSON(t, "--data", path, "--region", "Japan", "--min-total", "310")
	if filtered.Count != 1 {
		t.Fatalf("expected 1 record, got %d", filtered.Count)
	}
}

func TestSummaryFormats(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "summary", "--data", path, "--format", "yaml", "--focus", "USA")
	if err != nil {
		t.Fatalf("summary yaml: %v", err)
	}
	for _, want := range []string{"count: 4", "focus_region: USA", "name: Squirtle"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in yaml output:\n%s", want, out)
		}
	}

	out, err = run(t, "summary", "--data", path)
	if err != nil {
		t.Fatalf("summary text: %v", err)
	}
	for _, want := range []string{"dexboard: " + path, "Filters: regions=all", "Strongest: Missingno", "Mean Total by Region"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in text output:\n%s", want, out)
		}
	}

	if _, err := run(t, "summary", "--data", path, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	path := setupEnv(t)
	_, err := run(t, "summary", "--data", path, "--min-total", "400", "--max-total", "300")
	if err == nil || !strings.Contains(err.Error(), "must not exceed") {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestSummaryClampsRangeToObservedTotals(t *testing.T) {
	path := setupEnv(t)
	got := summaryJSON(t, "--data", path, "--min-total", "0", "--max-total", "99999")
	if got.Count != 4 {
		t.Fatalf("expected 4 records, got %d", got.Count)
	}
	if got.Criteria.Total.Min != 198 || got.Criteria.Total.Max != 318 {
		t.Fatalf("expected total clamped to 198..318, got %+v", got.Criteria.Total)
	}

	got = summaryJSON(t, "--data", path, "--min-total", "310")
	if got.Criteria.Total.Min != 310 || got.Criteria.Total.Max != 318 {
		t.Fatalf("expected total 310..318, got %+v", got.Criteria.Total)
	}
}

func TestMissingDatasetFails(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "summary", "--data", filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestConfigAppliesUnlessFlagChanged(t *testing.T) {
	path := setupEnv(t)
	writeConfig(t, `[dataset]
path = "`+path+`"

[dashboard]
regions = ["USA"]
`)
	if got := summaryJSON(t); got.Count != 1 {
		t.Fatalf("expected config regions to apply, got %d records", got.Count)
	}
	if got := summaryJSON(t, "--region", "all"); got.Count != 4 {
		t.Fatalf("expected flag to override config, got %d records", got.Count)
	}
}

func TestConfigRemapsColumns(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pokedex.csv")
	content := "Nombre,Tipo,País,Ataque,Defensa,Velocidad,HP,Total\nPikachu,electric,Japan,55,40,90,35,320\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	writeConfig(t, `[dataset.columns]
name = "Nombre"
category_primary = "Tipo"
region = "País"
attack = "Ataque"
defense = "Defensa"
speed = "Velocidad"
health = "HP"
total_stat = "Total"
`)
	if got := summaryJSON(t, "--data", path); got.Count != 1 {
		t.Fatalf("expected 1 record, got %d", got.Count)
	}
}

func TestValues(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "values", "region", "--data", path)
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if out != "Japan\nUSA\n" {
		t.Fatalf("unexpected values %q", out)
	}

	out, err = run(t, "values", "category_primary", "--data", path, "--region", "Japan")
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if out != "fire\ngrass\n" {
		t.Fatalf("unexpected values %q", out)
	}

	if _, err := run(t, "values", "attack", "--data", path); err == nil {
		t.Fatalf("expected error for numeric field")
	}
	if _, err := run(t, "values", "weight", "--data", path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestImportRoundTrip(t *testing.T) {
	path := setupEnv(t)
	out := filepath.Join(t.TempDir(), "dex.db")
	if _, err := run(t, "import", path, "--out", out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := run(t, "import", path, "--out", out); err == nil {
		t.Fatalf("expected error when output exists")
	}
	if _, err := run(t, "import", path, "--out", out, "--force"); err != nil {
		t.Fatalf("import --force: %v", err)
	}
	got := summaryJSON(t, "--data", out)
	if got.Count != 4 || got.Focus != "Japan" {
		t.Fatalf("unexpected summary from db: %+v", got)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	setupEnv(t)
	writeConfig(t, defaultConfigTemplate())
	if _, err := config.LoadConfig(config.DefaultConfigPath()); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
}

func TestValidateView(t *testing.T) {
	for _, view := range []string{"combat", "Geography", "data"} {
		if err := validateView(view); err != nil {
			t.Fatalf("view %q: %v", view, err)
		}
	}
	if err := validateView("stats"); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}
