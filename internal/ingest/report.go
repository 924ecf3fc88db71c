package ingest

import (
	"github.com/roach88/oms/internal/reconcile"
)

// Outcome summarizes how an ingestion run ended.
type Outcome string

const (
	// OutcomeComplete means every record was accepted and persisted.
	OutcomeComplete Outcome = "complete"
	// OutcomePartial means some records were skipped, the rest persisted.
	OutcomePartial Outcome = "partial"
	// OutcomeNone means no record survived cleaning; nothing was written.
	OutcomeNone Outcome = "none"
	// OutcomeDuplicate means the storefront order was already stored.
	OutcomeDuplicate Outcome = "duplicate"
)

// RowError is a record skipped during cleaning.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Report describes one ingestion run.
type Report struct {
	Source    string            `json:"source"`
	Total     int               `json:"total"`
	Accepted  int               `json:"accepted"`
	Skipped   []RowError        `json:"skipped"`
	Result    *reconcile.Result `json:"result,omitempty"`
	Duplicate bool              `json:"duplicate,omitempty"`
}

// Outcome classifies the run.
func (r *Report) Outcome() Outcome {
	switch {
	case r.Duplicate:
		return OutcomeDuplicate
	case r.Accepted == 0:
		return OutcomeNone
	case len(r.Skipped) > 0:
		return OutcomePartial
	default:
		return OutcomeComplete
	}
}
