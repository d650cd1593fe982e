package models

// SchemaTables is one schema and its tables, in catalog order.
type SchemaTables struct {
	Schema string   `json:"schema"`
	Tables []string `json:"tables"`
}

// SchemaSnapshot is the full table inventory of the warehouse, fetched once
// per advisor run and immutable afterwards. Order is preserved from the
// catalog so repeated runs over the same warehouse walk tables identically.
type SchemaSnapshot struct {
	Schemas []SchemaTables `json:"schemas"`
}

// IsEmpty reports whether the snapshot contains no tables at all.
func (s SchemaSnapshot) IsEmpty() bool {
	for _, st := range s.Schemas {
		if len(st.Tables) > 0 {
			return false
		}
	}
	return true
}

// TableCount returns the total number of tables across all schemas.
func (s SchemaSnapshot) TableCount() int {
	n := 0
	for _, st := range s.Schemas {
		n += len(st.Tables)
	}
	return n
}

// TableRef identifies a table within the snapshot.
type TableRef struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// ColumnDescriptor describes one column of a warehouse table, in declaration
// order as reported by the catalog.
type ColumnDescriptor struct {
	Name     string  `json:"name"`
	SQLType  string  `json:"sql_type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default,omitempty"`
}

// ColumnClassification is the outcome of classifying one table's columns: the
// chosen date axis and amount axis, either of which may be absent. Advisory
// carries the reasoning capability's raw suggestion for observability; the
// type/name gates decide the axes.
type ColumnClassification struct {
	DateColumn   *string `json:"date_column"`
	AmountColumn *string `json:"amount_column"`
	Advisory     string  `json:"-"`
}

// Complete reports whether both axes were identified.
func (c ColumnClassification) Complete() bool {
	return c.DateColumn != nil && c.AmountColumn != nil
}

// CandidateTable is a table that passed classification: both a date column and
// an amount column were positively identified. Tables never enter a discovery
// result with either axis missing.
type CandidateTable struct {
	Schema       string `json:"schema"`
	Table        string `json:"table"`
	DateColumn   string `json:"date_column"`
	AmountColumn string `json:"amount_column"`
}

// SkipReason explains why a table was rejected during one discovery iteration.
type SkipReason string

const (
	// SkipDescribeFailed means the column fetch for the table errored.
	SkipDescribeFailed SkipReason = "describe_failed"
	// SkipNoColumns means the catalog returned no columns for the table.
	SkipNoColumns SkipReason = "no_columns"
	// SkipNoDateColumn means no column passed the temporal type gate.
	SkipNoDateColumn SkipReason = "no_date_column"
	// SkipNoAmountColumn means no numeric column carried a sales-amount marker.
	SkipNoAmountColumn SkipReason = "no_amount_column"
)

// TableEvaluation is the per-table outcome of a discovery iteration: either
// an accepted candidate or a skip reason. Keeping both makes "why was this
// table dropped" testable instead of log-only.
type TableEvaluation struct {
	Schema     string          `json:"schema"`
	Table      string          `json:"table"`
	Candidate  *CandidateTable `json:"candidate,omitempty"`
	SkipReason SkipReason      `json:"skip_reason,omitempty"`
	Detail     string          `json:"detail,omitempty"`
}

// Accepted reports whether the table validated with both axes.
func (e TableEvaluation) Accepted() bool {
	return e.Candidate != nil
}

// DiscoveryState is the loop state for one discovery run. Each run owns its
// own value; nothing is shared across concurrent runs.
type DiscoveryState struct {
	Iteration      int
	BestSet        []CandidateTable
	PriorReasoning string
}

// DiscoveryResult is what a discovery run returns: the best candidate set
// found (possibly empty), how many iterations ran, whether the loop stopped
// by convergence or exhaustion, and the final iteration's per-table outcomes.
type DiscoveryResult struct {
	Tables      []CandidateTable  `json:"tables"`
	Iterations  int               `json:"iterations"`
	Converged   bool              `json:"converged"`
	Evaluations []TableEvaluation `json:"evaluations,omitempty"`
}
