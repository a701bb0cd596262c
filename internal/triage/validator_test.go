package triage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurisk/triage/internal/models"
	"github.com/procurisk/triage/internal/store"
)

func ptr(v int64) *int64 { return &v }

func seededStore() *store.MemoryStore {
	m := store.NewMemoryStore()
	m.AddEventType(1, true, models.EventTypeInfo{
		TypeName:            "Supply Chain Disruption",
		MonitoringFrequency: "daily",
		CategoryName:        "Supplier Issue",
		CategoryType:        "operational",
	})
	m.AddEventType(2, false, models.EventTypeInfo{TypeName: "Retired Type"})
	m.AddRegion(10)
	m.AddBusinessUnit(20)
	m.SetSeveritySLA("Critical", 2)
	m.SetSeveritySLA("High", 4)
	m.SetSeveritySLA("Medium", 8)
	m.SetSeveritySLA("Low", 24)
	return m
}

func validEvent() models.Event {
	return models.Event{
		Title:       "Supply chain disruption at vendor",
		Description: "Critical shortage of semiconductor components affecting production",
		Source:      models.SourceExternal,
	}
}

func TestValidateRules(t *testing.T) {
	p := New(seededStore())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.Event)
		valid  bool
		reason string
	}{
		{
			name:   "all optionals absent is valid",
			mutate: func(ev *models.Event) {},
			valid:  true,
			reason: "Event validated successfully",
		},
		{
			name: "unknown event type",
			mutate: func(ev *models.Event) {
				ev.EventTypeID = ptr(99)
			},
			reason: "Invalid event type ID",
		},
		{
			name: "inactive event type",
			mutate: func(ev *models.Event) {
				ev.EventTypeID = ptr(2)
			},
			reason: "Invalid event type ID",
		},
		{
			name: "unknown region",
			mutate: func(ev *models.Event) {
				ev.EventTypeID = ptr(1)
				ev.RegionID = ptr(99)
			},
			reason: "Invalid region ID",
		},
		{
			name: "unknown business unit",
			mutate: func(ev *models.Event) {
				ev.BusinessUnitID = ptr(99)
			},
			reason: "Invalid business unit ID",
		},
		{
			name: "short title",
			mutate: func(ev *models.Event) {
				ev.Title = "Oops"
			},
			reason: "Event title is too short",
		},
		{
			name: "title trimmed before measuring",
			mutate: func(ev *models.Event) {
				ev.Title = "  ab  "
			},
			reason: "Event title is too short",
		},
		{
			name: "short description",
			mutate: func(ev *models.Event) {
				ev.Description = "too short"
			},
			reason: "Event description is too short",
		},
		{
			name: "reference checks run before content checks",
			mutate: func(ev *models.Event) {
				ev.EventTypeID = ptr(99)
				ev.Title = "x"
			},
			reason: "Invalid event type ID",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := validEvent()
			tc.mutate(&ev)
			valid, reason, err := p.Validate(ctx, ev)
			require.NoError(t, err)
			assert.Equal(t, tc.valid, valid)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestValidateFullyReferencedEvent(t *testing.T) {
	p := New(seededStore())
	ev := validEvent()
	ev.EventTypeID = ptr(1)
	ev.RegionID = ptr(10)
	ev.BusinessUnitID = ptr(20)

	valid, reason, err := p.Validate(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "Event validated successfully", reason)
}
