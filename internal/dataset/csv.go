package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/dexboard/internal/model"
)

var nullTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// ParseCSV reads records from CSV data with a header row. Every field must
// have a column; extra columns are ignored.
func ParseCSV(r io.Reader, columns ColumnMap) ([]model.Record, error) {
	if columns == nil {
		columns = DefaultColumns()
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataLoadError{Reason: "file is empty"}
		}
		return nil, &DataLoadError{Reason: "failed to read CSV header", Err: err}
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	positions := make(map[model.Field]int, len(model.Fields))
	var missing []string
	for _, f := range model.Fields {
		header := columns.Header(f)
		pos, ok := index[header]
		if !ok {
			missing = append(missing, header)
			continue
		}
		positions[f] = pos
	}
	if len(missing) > 0 {
		return nil, &DataLoadError{Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	var records []model.Record
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &DataLoadError{Reason: fmt.Sprintf("malformed row %d", line), Err: err}
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec, err := parseRow(row, positions, columns)
		if err != nil {
			return nil, &DataLoadError{Reason: fmt.Sprintf("row %d", line), Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, positions map[model.Field]int, columns ColumnMap) (model.Record, error) {
	cell := func(f model.Field) string {
		pos := positions[f]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}
	number := func(f model.Field) (int, error) {
		v, err := parseInt(cell(f))
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", columns.Header(f), err)
		}
		return v, nil
	}

	rec := model.Record{
		Name:     cell(model.FieldName),
		Category: cell(model.FieldCategory),
		Region:   nullable(cell(model.FieldRegion)),
	}
	var err error
	if rec.Attack, err = number(model.FieldAttack); err != nil {
		return model.Record{}, err
	}
	if rec.Defense, err = number(model.FieldDefense); err != nil {
		return model.Record{}, err
	}
	if rec.Speed, err = number(model.FieldSpeed); err != nil {
		return model.Record{}, err
	}
	if rec.Health, err = number(model.FieldHealth); err != nil {
		return model.Record{}, err
	}
	if rec.Total, err = number(model.FieldTotal); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

func nullable(value string) string {
	if _, ok := nullTokens[strings.ToLower(value)]; ok {
		return ""
	}
	return value
}

// parseInt accepts base-10 integers and integral floats such as "45.0". Stats
// are non-negative and must fit in an int.
func parseInt(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseInt(value, 10, 0)
	if err != nil {
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
			f >= math.MaxInt || f < math.MinInt {
			return 0, fmt.Errorf("invalid integer %q", value)
		}
		v = int64(f)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %q", value)
	}
	return int(v), nil
}
