// Package triage implements the event decision pipeline: validation,
// priority scoring, contract-impact mapping, and classification. All logic
// runs over an injected read-only reference port; the pipeline holds no
// mutable state of its own.
package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/procurisk/triage/internal/models"
	"github.com/procurisk/triage/internal/store"
)

// ValidationError reports that an event failed one of the intake checks. It
// is always recoverable: fix the event and resubmit.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("event validation failed: %s", e.Reason)
}

// MapperFilter controls whether contract matching is narrowed to the event's
// own business unit or region. Both default to off: the mapper casts a wide
// net until a deployment opts into narrowing.
type MapperFilter struct {
	ByBusinessUnit bool
	ByRegion       bool
}

// Pipeline sequences validation, scoring, contract mapping, and
// classification for a single event. Safe for concurrent use: every method
// only reads through the reference port.
type Pipeline struct {
	refs   store.ReferenceStore
	table  ResponseTable
	filter MapperFilter
	now    func() time.Time
}

type Option func(*Pipeline)

// WithResponseTable overrides the default response-requirements table.
func WithResponseTable(t ResponseTable) Option {
	return func(p *Pipeline) { p.table = t }
}

// WithMapperFilter enables contract narrowing by business unit and/or region.
func WithMapperFilter(f MapperFilter) Option {
	return func(p *Pipeline) { p.filter = f }
}

// WithClock fixes the detection-time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(refs store.ReferenceStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		refs:  refs,
		table: DefaultResponseTable(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessEvent runs one event through the full pipeline. It returns a
// ValidationError when the event fails intake checks (no scoring happens),
// and propagates reference-lookup failures as-is. Processing is
// all-or-nothing: no partial result is ever returned.
func (p *Pipeline) ProcessEvent(ctx context.Context, ev models.Event) (*models.PipelineResult, error) {
	valid, message, err := p.Validate(ctx, ev)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, &ValidationError{Reason: message}
	}

	priority, err := p.Score(ctx, ev)
	if err != nil {
		return nil, err
	}

	contracts, err := p.MapAffectedContracts(ctx, ev)
	if err != nil {
		return nil, err
	}

	classification, err := p.Classify(ctx, ev, priority)
	if err != nil {
		return nil, err
	}

	return &models.PipelineResult{
		ID: uuid.New(),
		Event: models.EventDetails{
			Title:         ev.Title,
			Description:   ev.Description,
			Source:        ev.Source,
			DetectionTime: classification.DetectionTime,
		},
		Validation: models.ValidationOutcome{
			Valid:   true,
			Message: message,
		},
		Priority:          priority,
		AffectedContracts: contracts,
		Classification:    classification,
	}, nil
}
