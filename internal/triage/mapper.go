package triage

import (
	"context"

	"github.com/procurisk/triage/internal/models"
	"github.com/procurisk/triage/internal/store"
)

// Contract lifecycle statuses considered plausibly affected by an event.
var affectedStatuses = []string{"Active", "Under Review"}

// MapAffectedContracts returns active and under-review contracts joined to
// their vendor. With the default MapperFilter every such contract matches,
// irrespective of the event's region or business unit; narrowing is opt-in
// per deployment. Zero matches is an empty slice, never an error.
func (p *Pipeline) MapAffectedContracts(ctx context.Context, ev models.Event) ([]models.ContractSummary, error) {
	q := store.ContractQuery{Statuses: affectedStatuses}
	if p.filter.ByBusinessUnit && ev.BusinessUnitID != nil {
		q.BusinessUnitID = ev.BusinessUnitID
	}
	if p.filter.ByRegion && ev.RegionID != nil {
		q.RegionID = ev.RegionID
	}
	return p.refs.Contracts(ctx, q)
}
