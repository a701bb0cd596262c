package triage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurisk/triage/internal/models"
)

func TestScoreCriticalSeverityMaxesOut(t *testing.T) {
	p := New(seededStore())
	ev := validEvent()
	ev.Severity = "Critical" // 2h SLA: 24/2*100 = 1200, clamped to 100

	result, err := p.Score(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Factors[models.FactorSeverity])
}

func TestScoreSeverityOnly(t *testing.T) {
	// Severity "Low" at the 24h baseline scores 100; the other three slots
	// stay 0, so the equal-weighted mean is 25.
	p := New(seededStore())
	ev := validEvent()
	ev.Severity = "Low"

	result, err := p.Score(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Factors[models.FactorSeverity])
	assert.Equal(t, 0.0, result.Factors[models.FactorBusinessImpact])
	assert.Equal(t, 0.0, result.Factors[models.FactorUrgency])
	assert.Equal(t, 0.0, result.Factors[models.FactorScope])
	assert.Equal(t, 25.0, result.Score)
	assert.Equal(t, models.PriorityLow, result.Level)
}

func TestScoreBusinessImpact(t *testing.T) {
	refs := seededStore()
	refs.SetHighImpactCount(20, 5)
	p := New(refs)
	ev := validEvent()
	ev.Severity = "Medium" // 8h SLA clamps to 100
	ev.BusinessUnitID = ptr(20)

	result, err := p.Score(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Factors[models.FactorBusinessImpact])
	assert.Equal(t, 37.5, result.Score)
	assert.Equal(t, models.PriorityLow, result.Level)
}

func TestScoreBusinessImpactCrossesMediumBand(t *testing.T) {
	refs := seededStore()
	refs.SetHighImpactCount(20, 7)
	p := New(refs)
	ev := validEvent()
	ev.Severity = "Medium"
	ev.BusinessUnitID = ptr(20)

	result, err := p.Score(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 70.0, result.Factors[models.FactorBusinessImpact])
	assert.Equal(t, 42.5, result.Score)
	assert.Equal(t, models.PriorityMedium, result.Level)
}

func TestScoreBusinessImpactClamped(t *testing.T) {
	refs := seededStore()
	refs.SetHighImpactCount(20, 50)
	p := New(refs)
	ev := validEvent()
	ev.BusinessUnitID = ptr(20)

	result, err := p.Score(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Factors[models.FactorBusinessImpact])
}

func TestScoreUnconfiguredSeverityContributesNothing(t *testing.T) {
	p := New(seededStore())
	ev := validEvent()
	ev.Severity = "Catastrophic"

	result, err := p.Score(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Factors[models.FactorSeverity])
	assert.Equal(t, 0.0, result.Score)
}

func TestLevelBoundaries(t *testing.T) {
	// 40 and 70 belong to the higher band.
	assert.Equal(t, models.PriorityLow, levelForScore(39.999))
	assert.Equal(t, models.PriorityMedium, levelForScore(40))
	assert.Equal(t, models.PriorityMedium, levelForScore(69.999))
	assert.Equal(t, models.PriorityHigh, levelForScore(70))
	assert.Equal(t, models.PriorityHigh, levelForScore(100))
	assert.Equal(t, models.PriorityLow, levelForScore(0))
}

func TestSeverityScoreLongerSLA(t *testing.T) {
	refs := seededStore()
	refs.SetSeveritySLA("Negligible", 48)
	p := New(refs)
	ev := validEvent()
	ev.Severity = "Negligible"

	result, err := p.Score(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Factors[models.FactorSeverity])
}
