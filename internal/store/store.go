package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/procurisk/triage/internal/models"
)

// ErrNotFound reports that a reference lookup matched nothing. Callers decide
// whether that is fatal; the store never does.
var ErrNotFound = errors.New("not found")

// LookupError wraps a failed read against the reference data store with
// enough context (which lookup, which id) to diagnose. A LookupError is fatal
// to the single event being processed.
type LookupError struct {
	Lookup string
	ID     string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("reference lookup %q (id %s): %v", e.Lookup, e.ID, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// ContractQuery selects contracts by lifecycle status, optionally narrowed to
// a business unit or region. The narrowing predicates are only applied when
// the mapper's filter is enabled.
type ContractQuery struct {
	Statuses       []string
	BusinessUnitID *int64
	RegionID       *int64
}

// ReferenceStore is the read-only port the pipeline runs against. Any data
// store exposing these query shapes satisfies the contract; the store is
// never written through this interface.
type ReferenceStore interface {
	// EventTypeActive reports whether the event type exists and is active.
	EventTypeActive(ctx context.Context, id int64) (bool, error)

	// RegionExists reports whether the geographic region exists.
	RegionExists(ctx context.Context, id int64) (bool, error)

	// BusinessUnitExists reports whether the business unit exists.
	BusinessUnitExists(ctx context.Context, id int64) (bool, error)

	// SeverityResponseSLA returns the configured response SLA in hours for a
	// severity label, or ErrNotFound when the label is not configured.
	SeverityResponseSLA(ctx context.Context, name string) (float64, error)

	// Contracts returns contract summaries matching the query, joined to
	// their vendor. Zero matches is an empty slice, not an error.
	Contracts(ctx context.Context, q ContractQuery) ([]models.ContractSummary, error)

	// HighImpactCount counts impact assessments with level high or critical
	// linked (via events) to the business unit.
	HighImpactCount(ctx context.Context, businessUnitID int64) (int, error)

	// EventTypeInfo returns type and category metadata for an event type, or
	// ErrNotFound.
	EventTypeInfo(ctx context.Context, id int64) (*models.EventTypeInfo, error)

	Ping(ctx context.Context) error
}
