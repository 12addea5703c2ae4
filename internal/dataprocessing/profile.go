package dataprocessing

import (
	"math"
	"sort"
	"strconv"

	"salespulse/pkg/contracts/domain"
)

// Inferred column types, named the way a dataframe library reports them
const (
	TypeInt64    = "int64"
	TypeFloat64  = "float64"
	TypeDatetime = "datetime64"
	TypeObject   = "object"
)

// ColumnProfile describes one column of a dataset
type ColumnProfile struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	NonNull int    `json:"non_null"`
}

// NumericSummary holds descriptive statistics of a numeric column.
// Std uses the sample (n-1) formula; quantiles use linear interpolation.
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Profile is the exploratory summary of a dataset
type Profile struct {
	Rows           int              `json:"rows"`
	Columns        int              `json:"columns"`
	Preview        []domain.Record  `json:"preview"`
	ColumnTypes    []ColumnProfile  `json:"column_types"`
	Numeric        []NumericSummary `json:"numeric"`
	Regions        []string         `json:"regions"`
	Products       []string         `json:"products"`
	SalesReps      []string         `json:"sales_reps"`
	UniqueOrderIDs int              `json:"unique_order_ids"`
}

// BuildProfile summarises ds. previewRows bounds the number of leading records kept.
// Regions and products are listed in first-seen order, sales reps sorted.
func BuildProfile(ds *domain.Dataset, previewRows int) *Profile {
	rows, cols := ds.Shape()
	p := &Profile{
		Rows:    rows,
		Columns: cols,
	}

	if previewRows > rows {
		previewRows = rows
	}
	if previewRows > 0 {
		p.Preview = make([]domain.Record, previewRows)
		for i := 0; i < previewRows; i++ {
			p.Preview[i] = ds.Records[i].Clone()
		}
	}

	for _, name := range ds.Columns {
		values := columnValues(ds, name)
		colType := columnType(ds, name, values)
		p.ColumnTypes = append(p.ColumnTypes, ColumnProfile{
			Name:    name,
			Type:    colType,
			NonNull: countPresent(values),
		})
		if colType == TypeInt64 || colType == TypeFloat64 {
			p.Numeric = append(p.Numeric, describe(name, values))
		}
	}

	p.Regions = distinct(ds, func(r *domain.Record) string { return r.Region })
	p.Products = distinct(ds, func(r *domain.Record) string { return r.Product })
	p.SalesReps = distinct(ds, func(r *domain.Record) string { return r.SalesRep })
	sort.Strings(p.SalesReps)
	p.UniqueOrderIDs = len(distinct(ds, func(r *domain.Record) string { return r.OrderID }))

	return p
}

// cell is a column value that may be absent
type cell struct {
	value   string
	present bool
}

// columnValues returns the values of a schema or extra column
func columnValues(ds *domain.Dataset, name string) []cell {
	out := make([]cell, len(ds.Records))
	col := domain.Column(name)
	isSchema := false
	for _, c := range domain.Schema {
		if c == col {
			isSchema = true
			break
		}
	}
	for i := range ds.Records {
		rec := &ds.Records[i]
		if isSchema {
			v, ok := rec.Value(col)
			out[i] = cell{value: v, present: ok}
		} else {
			v := rec.Extra[name]
			out[i] = cell{value: v, present: v != ""}
		}
	}
	return out
}

func countPresent(values []cell) int {
	n := 0
	for _, v := range values {
		if v.present {
			n++
		}
	}
	return n
}

// columnType uses the declared type of schema columns and infers the rest
func columnType(ds *domain.Dataset, name string, values []cell) string {
	col := domain.Column(name)
	switch {
	case col == domain.ColUnitsSold:
		if countPresent(values) < len(values) {
			return TypeFloat64
		}
		return TypeInt64
	case col.IsNumeric():
		return TypeFloat64
	case col.IsCategorical():
		return TypeObject
	case col == domain.ColOrderDate:
		if datesParsed(ds) {
			return TypeDatetime
		}
		return TypeObject
	}
	return inferType(values)
}

// inferType reports int64 when every value is an integer and none is missing,
// float64 when every present value is numeric and object otherwise
func inferType(values []cell) string {
	allInt, allNum, anyMissing, anyPresent := true, true, false, false
	for _, v := range values {
		if !v.present {
			anyMissing = true
			continue
		}
		anyPresent = true
		if _, err := strconv.ParseInt(v.value, 10, 64); err != nil {
			allInt = false
			if _, err := strconv.ParseFloat(v.value, 64); err != nil {
				allNum = false
				break
			}
		}
	}
	switch {
	case !anyPresent:
		return TypeObject
	case !allNum:
		return TypeObject
	case allInt && !anyMissing:
		return TypeInt64
	default:
		return TypeFloat64
	}
}

func datesParsed(ds *domain.Dataset) bool {
	parsed := false
	for i := range ds.Records {
		rec := &ds.Records[i]
		if rec.OrderDateRaw == "" {
			continue
		}
		if rec.OrderDate.IsZero() {
			return false
		}
		parsed = true
	}
	return parsed
}

// describe computes count, mean, std, min, quartiles and max over the present values
func describe(name string, values []cell) NumericSummary {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if !v.present {
			continue
		}
		f, err := strconv.ParseFloat(v.value, 64)
		if err != nil {
			continue
		}
		nums = append(nums, f)
	}

	s := NumericSummary{Column: name, Count: len(nums)}
	if len(nums) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sort.Float64s(nums)
	var sum float64
	for _, f := range nums {
		sum += f
	}
	s.Mean = sum / float64(len(nums))

	if len(nums) < 2 {
		s.Std = math.NaN()
	} else {
		var sq float64
		for _, f := range nums {
			d := f - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(len(nums)-1))
	}

	s.Min = nums[0]
	s.Max = nums[len(nums)-1]
	s.Q25 = quantile(nums, 0.25)
	s.Median = quantile(nums, 0.5)
	s.Q75 = quantile(nums, 0.75)
	return s
}

// quantile interpolates linearly between the closest ranks of sorted
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// distinct returns the non-empty values of key in first-seen order
func distinct(ds *domain.Dataset, key func(*domain.Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range ds.Records {
		k := key(&ds.Records[i])
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
