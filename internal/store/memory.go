package store

import (
	"context"
	"strings"
	"sync"

	"github.com/procurisk/triage/internal/models"
)

// MemoryStore provides an in-memory ReferenceStore useful for tests and for
// running the pipeline against a fixed reference snapshot.
type MemoryStore struct {
	mu         sync.RWMutex
	eventTypes map[int64]memEventType
	regions    map[int64]struct{}
	units      map[int64]struct{}
	severities map[string]float64
	contracts  []memContract
	highImpact map[int64]int
}

type memEventType struct {
	active bool
	info   models.EventTypeInfo
}

type memContract struct {
	status         string
	businessUnitID *int64
	regionID       *int64
	summary        models.ContractSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		eventTypes: map[int64]memEventType{},
		regions:    map[int64]struct{}{},
		units:      map[int64]struct{}{},
		severities: map[string]float64{},
		highImpact: map[int64]int{},
	}
}

// AddEventType registers an event type with its category metadata.
func (m *MemoryStore) AddEventType(id int64, active bool, info models.EventTypeInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventTypes[id] = memEventType{active: active, info: info}
}

func (m *MemoryStore) AddRegion(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions[id] = struct{}{}
}

func (m *MemoryStore) AddBusinessUnit(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[id] = struct{}{}
}

// SetSeveritySLA configures the response SLA (hours) for a severity label.
func (m *MemoryStore) SetSeveritySLA(name string, hours float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.severities[name] = hours
}

// AddContract registers a contract under a lifecycle status. Business unit
// and region may be nil when the contract carries no such link.
func (m *MemoryStore) AddContract(status string, businessUnitID, regionID *int64, summary models.ContractSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts = append(m.contracts, memContract{
		status:         status,
		businessUnitID: businessUnitID,
		regionID:       regionID,
		summary:        summary,
	})
}

// SetHighImpactCount fixes the high/critical impact-assessment count for a
// business unit.
func (m *MemoryStore) SetHighImpactCount(businessUnitID int64, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highImpact[businessUnitID] = count
}

func (m *MemoryStore) EventTypeActive(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	et, ok := m.eventTypes[id]
	return ok && et.active, nil
}

func (m *MemoryStore) RegionExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.regions[id]
	return ok, nil
}

func (m *MemoryStore) BusinessUnitExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.units[id]
	return ok, nil
}

func (m *MemoryStore) SeverityResponseSLA(ctx context.Context, name string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hours, ok := m.severities[name]
	if !ok {
		return 0, ErrNotFound
	}
	return hours, nil
}

func (m *MemoryStore) Contracts(ctx context.Context, q ContractQuery) ([]models.ContractSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := map[string]struct{}{}
	for _, s := range q.Statuses {
		wanted[strings.ToLower(s)] = struct{}{}
	}
	out := []models.ContractSummary{}
	for _, c := range m.contracts {
		if _, ok := wanted[strings.ToLower(c.status)]; !ok {
			continue
		}
		if q.BusinessUnitID != nil && (c.businessUnitID == nil || *c.businessUnitID != *q.BusinessUnitID) {
			continue
		}
		if q.RegionID != nil && (c.regionID == nil || *c.regionID != *q.RegionID) {
			continue
		}
		out = append(out, c.summary)
	}
	return out, nil
}

func (m *MemoryStore) HighImpactCount(ctx context.Context, businessUnitID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.highImpact[businessUnitID], nil
}

func (m *MemoryStore) EventTypeInfo(ctx context.Context, id int64) (*models.EventTypeInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	et, ok := m.eventTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	info := et.info
	return &info, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
