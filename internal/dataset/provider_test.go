package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/dexboard/internal/model"
	"github.com/verte-zerg/dexboard/internal/store"
)

const sampleCSV = `name,category_primary,region,attack,defense,speed,health,total_stat
Bulbasaur,grass,Japan,49,49,45,45,318
Charmander,fire,,52,43,65,39,309
Squirtle,water,USA,48,65,43,44,313.0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "dex.csv", sampleCSV)
	p := NewProvider(path, nil)

	table, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", table.Len())
	}
	first := table.At(0)
	want := model.Record{Name: "Bulbasaur", Category: "grass", Region: "Japan", Attack: 49, Defense: 49, Speed: 45, Health: 45, Total: 318}
	if first != want {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if table.At(1).HasRegion() {
		t.Fatalf("expected missing region for Charmander")
	}
	if table.At(2).Total != 313 {
		t.Fatalf("expected integral float to parse, got %d", table.At(2).Total)
	}
	if b := table.TotalBounds(); b.Min != 309 || b.Max != 318 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestLoadIsMemoized(t *testing.T) {
	path := writeFile(t, "dex.csv", sampleCSV)
	p := NewProvider(path, nil)
	ctx := context.Background()

	first, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Fatalf("expected memoized table")
	}
	if p.loads != 1 {
		t.Fatalf("expected a single read, got %d", p.loads)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
		reason  string
	}{
		{name: "missing column", file: "dex.csv", content: "name,category_primary,region,attack,defense,speed,health\nA,fire,Japan,1,2,3,4\n", reason: "total_stat"},
		{name: "empty", file: "dex.csv", content: "", reason: "empty"},
		{name: "bad number", file: "dex.csv", content: "name,category_primary,region,attack,defense,speed,health,total_stat\nA,fire,Japan,x,2,3,4,10\n", reason: "attack"},
		{name: "overflow", file: "dex.csv", content: "name,category_primary,region,attack,defense,speed,health,total_stat\nA,fire,Japan,1,2,3,4,1e20\n", reason: "invalid integer \"1e20\""},
		{name: "overflow integer", file: "dex.csv", content: "name,category_primary,region,attack,defense,speed,health,total_stat\nA,fire,Japan,1,2,3,4,99999999999999999999\n", reason: "total_stat"},
		{name: "negative", file: "dex.csv", content: "name,category_primary,region,attack,defense,speed,health,total_stat\nA,fire,Japan,-5,2,3,4,10\n", reason: "negative value"},
		{name: "fractional", file: "dex.csv", content: "name,category_primary,region,attack,defense,speed,health,total_stat\nA,fire,Japan,1.5,2,3,4,10\n", reason: "attack"},
		{name: "not tabular", file: "dex.csv", content: "name,category_primary,region,attack,defense,speed,health,total_stat\n\"A,fire\n", reason: "row"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.file, tc.content)
			table, err := NewProvider(path, nil).Load(context.Background())
			if table != nil {
				t.Fatalf("expected no table on error")
			}
			var loadErr *DataLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected DataLoadError, got %v", err)
			}
			if loadErr.Path != path {
				t.Fatalf("expected path %s in error, got %s", path, loadErr.Path)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Fatalf("expected %q in error, got %v", tc.reason, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "absent.csv"), nil)
	_, err := p.Load(context.Background())
	var loadErr *DataLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected DataLoadError, got %v", err)
	}
	_, again := p.Load(context.Background())
	if again != err {
		t.Fatalf("expected memoized error")
	}
}

func TestLoadRemappedColumns(t *testing.T) {
	content := "\ufeffNombre,Tipo,País,Ataque,Defensa,Velocidad,HP,Total\nPikachu,electric,Japan,55,40,90,35,320\n"
	path := writeFile(t, "pokedex_enriquecida.csv", content)
	cols := ColumnMap{
		model.FieldName:     "Nombre",
		model.FieldCategory: "Tipo",
		model.FieldRegion:   "País",
		model.FieldAttack:   "Ataque",
		model.FieldDefense:  "Defensa",
		model.FieldSpeed:    "Velocidad",
		model.FieldHealth:   "HP",
		model.FieldTotal:    "Total",
	}
	table, err := NewProvider(path, cols).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 1 || table.At(0).Speed != 90 || table.At(0).Region != "Japan" {
		t.Fatalf("unexpected table: %+v", table.Records())
	}
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dex.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	records := []model.Record{
		{Name: "Eevee", Category: "normal", Region: "Japan", Attack: 55, Defense: 50, Speed: 55, Health: 55, Total: 325},
		{Name: "Ditto", Category: "normal", Attack: 48, Defense: 48, Speed: 48, Health: 48, Total: 288},
	}
	if err := st.ReplaceRecords(context.Background(), records); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = st.Close()

	table, err := NewProvider(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := table.Records()
	if len(got) != 2 || got[0] != records[0] || got[1] != records[1] {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestLoadSQLiteEscapedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dex#2?.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.ReplaceRecords(context.Background(), []model.Record{{Name: "Eevee", Category: "normal", Region: "Japan", Total: 325}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = st.Close()

	table, err := NewProvider(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 1 || table.At(0).Name != "Eevee" {
		t.Fatalf("unexpected records: %+v", table.Records())
	}
}

func TestIsSQLitePath(t *testing.T) {
	for path, want := range map[string]bool{
		"data/dex.db":      true,
		"dex.SQLITE":       true,
		"dex.sqlite3":      true,
		"dex.csv":          false,
		"pokedex_enriched": false,
	} {
		if got := IsSQLitePath(path); got != want {
			t.Fatalf("IsSQLitePath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestColumnsFrom(t *testing.T) {
	cols, err := ColumnsFrom(map[string]string{"region": "País", "health": "HP"})
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if cols.Header(model.FieldRegion) != "País" || cols.Header(model.FieldHealth) != "HP" {
		t.Fatalf("expected overrides, got %v", cols)
	}
	if cols.Header(model.FieldName) != "name" {
		t.Fatalf("expected default header for name, got %q", cols.Header(model.FieldName))
	}

	_, err = ColumnsFrom(map[string]string{"weight": "Peso"})
	var fieldErr *model.InvalidFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected InvalidFieldError, got %v", err)
	}
}
