// Package engine filters the creature table and derives aggregate views.
//
// Every function here is a pure computation over its arguments: no state is
// kept between calls and an empty view never causes an error.
package engine

import (
	"sort"
	"strings"

	"github.com/verte-zerg/dexboard/internal/model"
)

// Criteria is the set of user-selected constraints. An empty selection leaves
// its dimension unfiltered, and so does a zero Total range. DefaultCriteria
// sets Total to the observed bounds of the table.
type Criteria struct {
	Regions    []string    `json:"regions,omitempty" yaml:"regions,omitempty"`
	Categories []string    `json:"categories,omitempty" yaml:"categories,omitempty"`
	Total      model.Range `json:"total" yaml:"total"`
}

// DefaultCriteria selects everything in the table.
func DefaultCriteria(table *model.Table) Criteria {
	return Criteria{Total: table.TotalBounds()}
}

// View is an ordered subset of a table, kept in table order.
type View struct {
	records []model.Record
}

// NewView wraps records as a view without filtering.
func NewView(records []model.Record) View {
	out := make([]model.Record, len(records))
	copy(out, records)
	return View{records: out}
}

// Len returns the number of records in the view.
func (v View) Len() int {
	return len(v.records)
}

// Empty reports whether the view has no records.
func (v View) Empty() bool {
	return len(v.records) == 0
}

// Records returns a copy of the view's records.
func (v View) Records() []model.Record {
	out := make([]model.Record, len(v.records))
	copy(out, v.records)
	return out
}

// Where returns the sub-partition whose categorical field equals value.
func (v View) Where(field model.Field, value string) (View, error) {
	if field.Kind() != model.KindCategorical {
		return View{}, &model.InvalidFieldError{Field: field, Want: model.KindCategorical}
	}
	out := make([]model.Record, 0, len(v.records))
	for _, r := range v.records {
		got, err := r.Text(field)
		if err != nil {
			return View{}, err
		}
		if got == value {
			out = append(out, r)
		}
	}
	return View{records: out}, nil
}

// Filter returns the records of table that satisfy all of the criteria.
// Dimensions are AND-combined; values within a dimension are OR-combined.
func Filter(table *model.Table, criteria Criteria) View {
	regions := toSet(criteria.Regions)
	categories := toSet(criteria.Categories)

	n := table.Len()
	out := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		r := table.At(i)
		if !matchSet(regions, r.Region, r.HasRegion()) {
			continue
		}
		if !matchSet(categories, r.Category, true) {
			continue
		}
		if !matchTotal(criteria.Total, r.Total) {
			continue
		}
		out = append(out, r)
	}
	return View{records: out}
}

// Matches reports whether a single record satisfies the criteria.
func (c Criteria) Matches(r model.Record) bool {
	return matchSet(toSet(c.Regions), r.Region, r.HasRegion()) &&
		matchSet(toSet(c.Categories), r.Category, true) &&
		matchTotal(c.Total, r.Total)
}

func matchTotal(total model.Range, value int) bool {
	return total.IsZero() || total.Contains(value)
}

func matchSet(set map[string]struct{}, value string, present bool) bool {
	if len(set) == 0 {
		return true
	}
	if !present {
		return false
	}
	_, ok := set[value]
	return ok
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// ParseSelection splits a comma-separated selection. A blank input or the
// word "all" among the values selects everything and yields nil.
func ParseSelection(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]struct{}{}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "all") {
			return nil
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeSelection applies the ParseSelection rules to values that were
// already split, e.g. repeated CLI flags or TOML arrays.
func NormalizeSelection(values []string) []string {
	return ParseSelection(strings.Join(values, ","))
}

// Values lists the distinct non-empty values of a categorical field, sorted.
func Values(v View, field model.Field) ([]string, error) {
	if field.Kind() != model.KindCategorical {
		return nil, &model.InvalidFieldError{Field: field, Want: model.KindCategorical}
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range v.records {
		val, err := r.Text(field)
		if err != nil {
			return nil, err
		}
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	sort.Strings(out)
	return out, nil
}
