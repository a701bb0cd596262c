package triage

import (
	"context"
	"strings"

	"github.com/procurisk/triage/internal/models"
)

// Validation reason strings surfaced to callers. Downstream tooling matches
// on these, so they are fixed.
const (
	ReasonInvalidEventType    = "Invalid event type ID"
	ReasonInvalidRegion       = "Invalid region ID"
	ReasonInvalidBusinessUnit = "Invalid business unit ID"
	ReasonTitleTooShort       = "Event title is too short"
	ReasonDescriptionTooShort = "Event description is too short"

	validationOK = "Event validated successfully"
)

const (
	minTitleLen       = 5
	minDescriptionLen = 10
)

// Validate checks the event against reference existence and minimal content
// constraints. Rules run in order and short-circuit on the first failure.
// Absent optional fields are always valid; validation only constrains fields
// that are present. A non-nil error means a reference lookup failed, not that
// the event is invalid.
func (p *Pipeline) Validate(ctx context.Context, ev models.Event) (bool, string, error) {
	if ev.EventTypeID != nil {
		ok, err := p.refs.EventTypeActive(ctx, *ev.EventTypeID)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, ReasonInvalidEventType, nil
		}
	}

	if ev.RegionID != nil {
		ok, err := p.refs.RegionExists(ctx, *ev.RegionID)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, ReasonInvalidRegion, nil
		}
	}

	if ev.BusinessUnitID != nil {
		ok, err := p.refs.BusinessUnitExists(ctx, *ev.BusinessUnitID)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, ReasonInvalidBusinessUnit, nil
		}
	}

	if len(strings.TrimSpace(ev.Title)) < minTitleLen {
		return false, ReasonTitleTooShort, nil
	}
	if len(strings.TrimSpace(ev.Description)) < minDescriptionLen {
		return false, ReasonDescriptionTooShort, nil
	}

	return true, validationOK, nil
}
