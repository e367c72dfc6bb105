// Package model defines shared data structures.
package model

import "fmt"

// Field names a column of the creature stats table.
type Field string

// Known fields.
const (
	FieldName     Field = "name"
	FieldCategory Field = "category_primary"
	FieldRegion   Field = "region"
	FieldAttack   Field = "attack"
	FieldDefense  Field = "defense"
	FieldSpeed    Field = "speed"
	FieldHealth   Field = "health"
	FieldTotal    Field = "total_stat"
)

// Fields lists every column in file order.
var Fields = []Field{
	FieldName,
	FieldCategory,
	FieldRegion,
	FieldAttack,
	FieldDefense,
	FieldSpeed,
	FieldHealth,
	FieldTotal,
}

// FieldKind separates group keys from measures.
type FieldKind int

// Field kinds.
const (
	KindUnknown FieldKind = iota
	KindCategorical
	KindNumeric
)

func (k FieldKind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Kind reports whether the field is categorical, numeric or unknown.
func (f Field) Kind() FieldKind {
	switch f {
	case FieldName, FieldCategory, FieldRegion:
		return KindCategorical
	case FieldAttack, FieldDefense, FieldSpeed, FieldHealth, FieldTotal:
		return KindNumeric
	default:
		return KindUnknown
	}
}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if f.Kind() == KindUnknown {
		return "", &InvalidFieldError{Field: f}
	}
	return f, nil
}

// InvalidFieldError reports a reference to a column that does not exist or
// has the wrong kind for the requested operation.
type InvalidFieldError struct {
	Field Field
	Want  FieldKind
}

func (e *InvalidFieldError) Error() string {
	if e.Field.Kind() == KindUnknown || e.Want == KindUnknown {
		return fmt.Sprintf("invalid field %q", string(e.Field))
	}
	return fmt.Sprintf("invalid field %q: expected %s field, got %s", string(e.Field), e.Want, e.Field.Kind())
}

// Record is one creature's statistic row.
type Record struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category_primary" yaml:"category_primary"`
	// Region is empty when the source has no value.
	Region  string `json:"region,omitempty" yaml:"region,omitempty"`
	Attack  int    `json:"attack" yaml:"attack"`
	Defense int    `json:"defense" yaml:"defense"`
	Speed   int    `json:"speed" yaml:"speed"`
	Health  int    `json:"health" yaml:"health"`
	Total   int    `json:"total_stat" yaml:"total_stat"`
}

// HasRegion reports whether the source provided a region.
func (r Record) HasRegion() bool {
	return r.Region != ""
}

// Number returns the value of a numeric field.
func (r Record) Number(f Field) (int, error) {
	switch f {
	case FieldAttack:
		return r.Attack, nil
	case FieldDefense:
		return r.Defense, nil
	case FieldSpeed:
		return r.Speed, nil
	case FieldHealth:
		return r.Health, nil
	case FieldTotal:
		return r.Total, nil
	default:
		return 0, &InvalidFieldError{Field: f, Want: KindNumeric}
	}
}

// Text returns the value of a categorical field.
func (r Record) Text(f Field) (string, error) {
	switch f {
	case FieldName:
		return r.Name, nil
	case FieldCategory:
		return r.Category, nil
	case FieldRegion:
		return r.Region, nil
	default:
		return "", &InvalidFieldError{Field: f, Want: KindCategorical}
	}
}

// Range is an inclusive integer interval.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the range, both ends included.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// IsZero reports whether r is the zero range, which criteria treat as
// unbounded.
func (r Range) IsZero() bool {
	return r == Range{}
}

// Clamp restricts r to the bounds. An inverted result is left inverted so
// that it matches nothing.
func (r Range) Clamp(bounds Range) Range {
	out := r
	if out.Min < bounds.Min {
		out.Min = bounds.Min
	}
	if out.Max > bounds.Max {
		out.Max = bounds.Max
	}
	return out
}

// Table is the complete, immutable in-memory dataset.
type Table struct {
	records []Record
	bounds  Range
}

// NewTable copies records into a Table and records the observed total bounds.
func NewTable(records []Record) *Table {
	rows := make([]Record, len(records))
	copy(rows, records)
	t := &Table{records: rows}
	for i, r := range rows {
		if i == 0 || r.Total < t.bounds.Min {
			t.bounds.Min = r.Total
		}
		if i == 0 || r.Total > t.bounds.Max {
			t.bounds.Max = r.Total
		}
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the record at index i in table order.
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy of all records in table order.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// TotalBounds returns the observed min and max of total_stat. It is the zero
// range for an empty table.
func (t *Table) TotalBounds() Range {
	if t == nil {
		return Range{}
	}
	return t.bounds
}
