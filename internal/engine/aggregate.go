package engine

import (
	"sort"

	"github.com/verte-zerg/dexboard/internal/model"
)

// GroupMean is the mean of a measure over one group.
type GroupMean struct {
	Key   string  `json:"key" yaml:"key"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Count int     `json:"count" yaml:"count"`
}

// GroupCount is the number of records in one group.
type GroupCount struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// ArgMax returns the record with the largest value of field. The first
// occurrence wins on ties. ok is false when the view is empty.
func ArgMax(v View, field model.Field) (rec model.Record, ok bool, err error) {
	if field.Kind() != model.KindNumeric {
		return model.Record{}, false, &model.InvalidFieldError{Field: field, Want: model.KindNumeric}
	}
	best := 0
	for _, r := range v.records {
		val, err := r.Number(field)
		if err != nil {
			return model.Record{}, false, err
		}
		if !ok || val > best {
			rec, best, ok = r, val, true
		}
	}
	return rec, ok, nil
}

// GroupMeans averages valueKey per distinct groupKey, in order of first
// appearance. Records without a value for groupKey form the "" group.
func GroupMeans(v View, groupKey, valueKey model.Field) ([]GroupMean, error) {
	if groupKey.Kind() != model.KindCategorical {
		return nil, &model.InvalidFieldError{Field: groupKey, Want: model.KindCategorical}
	}
	if valueKey.Kind() != model.KindNumeric {
		return nil, &model.InvalidFieldError{Field: valueKey, Want: model.KindNumeric}
	}
	type acc struct {
		sum   int64
		count int
	}
	sums := map[string]*acc{}
	order := []string{}
	for _, r := range v.records {
		key, err := r.Text(groupKey)
		if err != nil {
			return nil, err
		}
		val, err := r.Number(valueKey)
		if err != nil {
			return nil, err
		}
		a, exists := sums[key]
		if !exists {
			a = &acc{}
			sums[key] = a
			order = append(order, key)
		}
		a.sum += int64(val)
		a.count++
	}
	out := make([]GroupMean, 0, len(order))
	for _, key := range order {
		a := sums[key]
		out = append(out, GroupMean{
			Key:   key,
			Mean:  float64(a.sum) / float64(a.count),
			Count: a.count,
		})
	}
	return out, nil
}

// GroupCounts counts records per distinct groupKey, largest groups first.
// Equal counts keep order of first appearance.
func GroupCounts(v View, groupKey model.Field) ([]GroupCount, error) {
	if groupKey.Kind() != model.KindCategorical {
		return nil, &model.InvalidFieldError{Field: groupKey, Want: model.KindCategorical}
	}
	index := map[string]int{}
	out := []GroupCount{}
	for _, r := range v.records {
		key, err := r.Text(groupKey)
		if err != nil {
			return nil, err
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, GroupCount{Key: key})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out, nil
}

// TopN returns the n records with the largest valueKey, descending. Equal
// values keep table order. n larger than the view returns the whole view.
func TopN(v View, n int, valueKey model.Field) ([]model.Record, error) {
	if valueKey.Kind() != model.KindNumeric {
		return nil, &model.InvalidFieldError{Field: valueKey, Want: model.KindNumeric}
	}
	if n <= 0 || len(v.records) == 0 {
		return []model.Record{}, nil
	}
	type item struct {
		rec model.Record
		val int
	}
	items := make([]item, 0, len(v.records))
	for _, r := range v.records {
		val, err := r.Number(valueKey)
		if err != nil {
			return nil, err
		}
		items = append(items, item{rec: r, val: val})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].val > items[j].val
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].rec)
	}
	return out, nil
}

// Mean averages a numeric field over the whole view. It is 0 for an empty view.
func Mean(v View, field model.Field) (float64, error) {
	if field.Kind() != model.KindNumeric {
		return 0, &model.InvalidFieldError{Field: field, Want: model.KindNumeric}
	}
	if len(v.records) == 0 {
		return 0, nil
	}
	var sum int64
	for _, r := range v.records {
		val, err := r.Number(field)
		if err != nil {
			return 0, err
		}
		sum += int64(val)
	}
	return float64(sum) / float64(len(v.records)), nil
}

// Column extracts a numeric field for every record in view order.
func Column(v View, field model.Field) ([]float64, error) {
	if field.Kind() != model.KindNumeric {
		return nil, &model.InvalidFieldError{Field: field, Want: model.KindNumeric}
	}
	out := make([]float64, 0, len(v.records))
	for _, r := range v.records {
		val, err := r.Number(field)
		if err != nil {
			return nil, err
		}
		out = append(out, float64(val))
	}
	return out, nil
}
