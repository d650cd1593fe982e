package models

// PeriodSpec holds what the user's text said about time: every four-digit
// year token starting with "20" in order of appearance (duplicates kept), and
// every month or month range as it appeared (e.g. "May", "january-march").
type PeriodSpec struct {
	Years       []string `json:"years"`
	MonthRanges []string `json:"month_ranges"`
}

// WantsComparison reports whether enough years were named for a
// period-over-period comparison.
func (p PeriodSpec) WantsComparison() bool {
	return len(p.Years) >= 2
}

// QualityReport summarizes the health of a table's amount column before any
// analysis runs against it.
type QualityReport struct {
	TotalRows       int64   `json:"total_rows"`
	NullOrZeroCount int64   `json:"null_or_zero_count"`
	MinAmount       float64 `json:"min_amount"`
	MaxAmount       float64 `json:"max_amount"`
	AvgAmount       float64 `json:"avg_amount"`
}

// Row is one result row from the warehouse, keyed by column name. The
// executor normalizes numeric values to float64 before rows reach consumers.
type Row map[string]any

// Float returns the named value as float64. The second return is false when
// the key is absent, the value is NULL, or it is not numeric.
func (r Row) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Int returns the named value as int64, truncating floats. The second return
// is false when the key is absent, NULL, or non-numeric.
func (r Row) Int(key string) (int64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}

// String returns the named value when it is a string.
func (r Row) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	default:
		return "", false
	}
}
