package stats

import (
	"github.com/verte-zerg/dexboard/internal/engine"
	"github.com/verte-zerg/dexboard/internal/model"
)

// DefaultTop is the number of records listed for the focused region.
const DefaultTop = 10

// Options tunes report construction.
type Options struct {
	Top    int
	Bins   int
	Region string
}

// Highlight is the record that maximizes one numeric field.
type Highlight struct {
	Label string      `json:"label" yaml:"label"`
	Field model.Field `json:"field" yaml:"field"`
	Name  string      `json:"name" yaml:"name"`
	Value int         `json:"value" yaml:"value"`
}

// Share is a group count with its fraction of the view.
type Share struct {
	Key   string  `json:"key" yaml:"key"`
	Count int     `json:"count" yaml:"count"`
	Share float64 `json:"share" yaml:"share"`
}

// Report contains precomputed data for dashboard rendering.
type Report struct {
	Criteria   engine.Criteria    `json:"criteria" yaml:"criteria"`
	Count      int                `json:"count" yaml:"count"`
	Highlights []Highlight        `json:"highlights" yaml:"highlights"`
	Scatter    []Series           `json:"scatter" yaml:"scatter"`
	Health     []Bin              `json:"health_histogram" yaml:"health_histogram"`
	RegionMean []engine.GroupMean `json:"region_mean_total" yaml:"region_mean_total"`
	Regions    []string           `json:"regions" yaml:"regions"`
	Focus      string             `json:"focus_region" yaml:"focus_region"`
	Top        []model.Record     `json:"top_in_region" yaml:"top_in_region"`
	Categories []Share            `json:"categories" yaml:"categories"`
	Records    []model.Record     `json:"-" yaml:"-"`
}

var highlightFields = []struct {
	label string
	field model.Field
}{
	{label: "Strongest", field: model.FieldAttack},
	{label: "Fastest", field: model.FieldSpeed},
	{label: "Best defense", field: model.FieldDefense},
}

// BuildReport filters the table and computes every dashboard section.
func BuildReport(table *model.Table, criteria engine.Criteria, opts Options) (Report, error) {
	if opts.Top <= 0 {
		opts.Top = DefaultTop
	}
	if opts.Bins <= 0 {
		opts.Bins = DefaultBins
	}
	view := engine.Filter(table, criteria)
	report := Report{
		Criteria: criteria,
		Count:    view.Len(),
		Records:  view.Records(),
	}

	for _, h := range highlightFields {
		rec, ok, err := engine.ArgMax(view, h.field)
		if err != nil {
			return Report{}, err
		}
		if !ok {
			continue
		}
		value, err := rec.Number(h.field)
		if err != nil {
			return Report{}, err
		}
		report.Highlights = append(report.Highlights, Highlight{Label: h.label, Field: h.field, Name: rec.Name, Value: value})
	}

	scatter, err := scatterByCategory(view)
	if err != nil {
		return Report{}, err
	}
	report.Scatter = scatter

	health, err := engine.Column(view, model.FieldHealth)
	if err != nil {
		return Report{}, err
	}
	report.Health = Histogram(health, opts.Bins)

	report.RegionMean, err = engine.GroupMeans(view, model.FieldRegion, model.FieldTotal)
	if err != nil {
		return Report{}, err
	}
	report.Regions, err = engine.Values(view, model.FieldRegion)
	if err != nil {
		return Report{}, err
	}

	report.Focus = focusRegion(report.RegionMean, opts.Region)
	if len(report.RegionMean) > 0 {
		inRegion, err := view.Where(model.FieldRegion, report.Focus)
		if err != nil {
			return Report{}, err
		}
		report.Top, err = engine.TopN(inRegion, opts.Top, model.FieldTotal)
		if err != nil {
			return Report{}, err
		}
	}

	counts, err := engine.GroupCounts(view, model.FieldCategory)
	if err != nil {
		return Report{}, err
	}
	for _, c := range counts {
		report.Categories = append(report.Categories, Share{
			Key:   c.Key,
			Count: c.Count,
			Share: float64(c.Count) / float64(view.Len()),
		})
	}
	return report, nil
}

// focusRegion keeps the requested region when the view has it and otherwise
// falls back to the first region in view order. Records without a region
// are never focused unless they are all the view holds.
func focusRegion(groups []engine.GroupMean, requested string) string {
	if requested != "" {
		for _, g := range groups {
			if g.Key == requested {
				return requested
			}
		}
	}
	for _, g := range groups {
		if g.Key != "" {
			return g.Key
		}
	}
	return ""
}

func scatterByCategory(view engine.View) ([]Series, error) {
	var series []Series
	index := make(map[string]int)
	for _, r := range view.Records() {
		attack, err := r.Number(model.FieldAttack)
		if err != nil {
			return nil, err
		}
		defense, err := r.Number(model.FieldDefense)
		if err != nil {
			return nil, err
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(series)
			index[r.Category] = i
			series = append(series, Series{Name: r.Category})
		}
		series[i].Points = append(series[i].Points, Point{X: float64(attack), Y: float64(defense), Label: r.Name})
	}
	return series, nil
}

// NextRegion returns the region after current in regions, wrapping around.
// step may be negative.
func NextRegion(regions []string, current string, step int) string {
	if len(regions) == 0 {
		return ""
	}
	idx := -1
	for i, r := range regions {
		if r == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if step < 0 {
			return regions[len(regions)-1]
		}
		return regions[0]
	}
	n := len(regions)
	return regions[((idx+step)%n+n)%n]
}
