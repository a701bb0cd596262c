package triage

import (
	"context"
	"errors"
	"math"

	"github.com/procurisk/triage/internal/models"
	"github.com/procurisk/triage/internal/store"
)

// Confidence weights. These sum to 1.0 and measure how much corroborating
// metadata was available, not correctness. Distinct from the equal-weighted
// priority mean.
const (
	confWeightEventType    = 0.2
	confWeightSeverity     = 0.2
	confWeightRegion       = 0.15
	confWeightBusinessUnit = 0.15
	confWeightPriority     = 0.3
)

// Classify combines the priority result, event-type metadata, and the
// response-requirements table into the final classification record. The
// response lookup is total over priority levels and cannot fail.
func (p *Pipeline) Classify(ctx context.Context, ev models.Event, priority models.PriorityResult) (models.ClassificationResult, error) {
	var typeInfo *models.EventTypeInfo
	if ev.EventTypeID != nil {
		info, err := p.refs.EventTypeInfo(ctx, *ev.EventTypeID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return models.ClassificationResult{}, err
		}
		typeInfo = info
	}

	return models.ClassificationResult{
		EventType:     typeInfo,
		PriorityLevel: priority.Level,
		PriorityScore: priority.Score,
		Response:      p.table.For(priority.Level),
		Source:        ev.Source,
		DetectionTime: p.now(),
		Confidence:    confidenceScore(ev, priority),
	}, nil
}

func confidenceScore(ev models.Event, priority models.PriorityResult) float64 {
	score := 0.0
	if ev.EventTypeID != nil {
		score += confWeightEventType
	}
	if ev.Severity != "" {
		score += confWeightSeverity
	}
	if ev.RegionID != nil {
		score += confWeightRegion
	}
	if ev.BusinessUnitID != nil {
		score += confWeightBusinessUnit
	}
	score += math.Min(priority.Score/100, 1) * confWeightPriority
	return score * 100
}
