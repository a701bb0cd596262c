package triage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurisk/triage/internal/models"
	"github.com/procurisk/triage/internal/store"
)

// countingStore wraps a ReferenceStore and counts scoring/mapping/
// classification reads so tests can assert they never happen.
type countingStore struct {
	store.ReferenceStore
	scoringReads int64
}

func (c *countingStore) SeverityResponseSLA(ctx context.Context, name string) (float64, error) {
	atomic.AddInt64(&c.scoringReads, 1)
	return c.ReferenceStore.SeverityResponseSLA(ctx, name)
}

func (c *countingStore) HighImpactCount(ctx context.Context, id int64) (int, error) {
	atomic.AddInt64(&c.scoringReads, 1)
	return c.ReferenceStore.HighImpactCount(ctx, id)
}

func (c *countingStore) Contracts(ctx context.Context, q store.ContractQuery) ([]models.ContractSummary, error) {
	atomic.AddInt64(&c.scoringReads, 1)
	return c.ReferenceStore.Contracts(ctx, q)
}

func (c *countingStore) EventTypeInfo(ctx context.Context, id int64) (*models.EventTypeInfo, error) {
	atomic.AddInt64(&c.scoringReads, 1)
	return c.ReferenceStore.EventTypeInfo(ctx, id)
}

func TestProcessEventInvalidTitleAbortsBeforeScoring(t *testing.T) {
	refs := &countingStore{ReferenceStore: seededStore()}
	p := New(refs)

	ev := validEvent()
	ev.Title = "Chip" // 4 trimmed characters

	result, err := p.ProcessEvent(context.Background(), ev)
	assert.Nil(t, result)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Event title is too short", verr.Reason)
	assert.Equal(t, int64(0), atomic.LoadInt64(&refs.scoringReads))
}

func TestProcessEventEndToEnd(t *testing.T) {
	refs := seededStore()
	refs.SetHighImpactCount(20, 5)
	refs.AddContract("Active", nil, nil, contractFixture("CN-001"))
	refs.AddContract("Expired", nil, nil, contractFixture("CN-002"))
	p := New(refs, WithClock(fixedClock()))

	ev := validEvent()
	ev.EventTypeID = ptr(1)
	ev.Severity = "Medium"
	ev.BusinessUnitID = ptr(20)

	result, err := p.ProcessEvent(context.Background(), ev)
	require.NoError(t, err)

	assert.NotEqual(t, "", result.ID.String())
	assert.Equal(t, ev.Title, result.Event.Title)
	assert.Equal(t, models.SourceExternal, result.Event.Source)
	assert.True(t, result.Validation.Valid)
	assert.Equal(t, "Event validated successfully", result.Validation.Message)

	assert.Equal(t, 37.5, result.Priority.Score)
	assert.Equal(t, models.PriorityLow, result.Priority.Level)

	require.Len(t, result.AffectedContracts, 1)
	assert.Equal(t, "CN-001", result.AffectedContracts[0].ContractNumber)

	assert.Equal(t, models.PriorityLow, result.Classification.PriorityLevel)
	require.NotNil(t, result.Classification.EventType)
	assert.Equal(t, "Supply Chain Disruption", result.Classification.EventType.TypeName)
	assert.Equal(t, fixedClock()(), result.Classification.DetectionTime)
	assert.Equal(t, fixedClock()(), result.Event.DetectionTime)
}

func TestProcessEventIdempotent(t *testing.T) {
	refs := seededStore()
	refs.SetHighImpactCount(20, 7)
	refs.AddContract("Under Review", nil, nil, contractFixture("CN-010"))
	p := New(refs, WithClock(fixedClock()))

	ev := validEvent()
	ev.Severity = "Medium"
	ev.BusinessUnitID = ptr(20)

	first, err := p.ProcessEvent(context.Background(), ev)
	require.NoError(t, err)
	second, err := p.ProcessEvent(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, first.Priority, second.Priority)
	assert.Equal(t, first.Classification, second.Classification)
	assert.Equal(t, first.AffectedContracts, second.AffectedContracts)
	// Result IDs are fresh per invocation.
	assert.NotEqual(t, first.ID, second.ID)
}

// failingStore simulates an unreachable data store.
type failingStore struct {
	store.ReferenceStore
}

func (f *failingStore) SeverityResponseSLA(ctx context.Context, name string) (float64, error) {
	return 0, &store.LookupError{Lookup: "severity", ID: name, Err: errors.New("connection refused")}
}

func TestProcessEventLookupFailurePropagates(t *testing.T) {
	p := New(&failingStore{ReferenceStore: seededStore()})

	ev := validEvent()
	ev.Severity = "Critical"

	result, err := p.ProcessEvent(context.Background(), ev)
	assert.Nil(t, result)

	var lerr *store.LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "severity", lerr.Lookup)
	assert.Equal(t, "Critical", lerr.ID)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}
