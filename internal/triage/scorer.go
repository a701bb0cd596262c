package triage

import (
	"context"
	"errors"
	"math"

	"github.com/procurisk/triage/internal/models"
	"github.com/procurisk/triage/internal/store"
)

// slaBaselineHours calibrates severity scoring: a 24-hour SLA is "routine"
// and maps to 100 before clamping, shorter SLAs compress above it.
const slaBaselineHours = 24

const impactCountWeight = 10

// Priority-level band boundaries. 40 and 70 belong to the higher band.
const (
	mediumThreshold = 40
	highThreshold   = 70
)

// Score computes the event's priority from the four equal-weighted factor
// slots. Urgency and scope are reserved and stay 0; absent signals default to
// 0 rather than being excluded from the mean.
func (p *Pipeline) Score(ctx context.Context, ev models.Event) (models.PriorityResult, error) {
	factors := models.NewPriorityFactors()

	if ev.Severity != "" {
		hours, err := p.refs.SeverityResponseSLA(ctx, ev.Severity)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Unconfigured severity label contributes no signal.
		case err != nil:
			return models.PriorityResult{}, err
		case hours > 0:
			factors[models.FactorSeverity] = clamp(math.Round(slaBaselineHours / hours * 100))
		}
	}

	if ev.BusinessUnitID != nil {
		count, err := p.refs.HighImpactCount(ctx, *ev.BusinessUnitID)
		if err != nil {
			return models.PriorityResult{}, err
		}
		factors[models.FactorBusinessImpact] = clamp(float64(count) * impactCountWeight)
	}

	total := (factors[models.FactorSeverity] +
		factors[models.FactorBusinessImpact] +
		factors[models.FactorUrgency] +
		factors[models.FactorScope]) / 4

	return models.PriorityResult{
		Level:   levelForScore(total),
		Score:   total,
		Factors: factors,
	}, nil
}

func levelForScore(score float64) models.PriorityLevel {
	switch {
	case score < mediumThreshold:
		return models.PriorityLow
	case score < highThreshold:
		return models.PriorityMedium
	default:
		return models.PriorityHigh
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
