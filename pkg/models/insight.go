package models

import "time"

// Insight is a persisted analysis finding: the generated summary sentence and
// the exact SQL that produced it. Insights are append-only; the engine never
// updates or deletes them.
type Insight struct {
	ID          int       `json:"id"`
	Summary     string    `json:"summary"`
	SourceQuery string    `json:"source_query"`
	CreatedAt   time.Time `json:"created_at"`
}
