package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/procurisk/triage/internal/models"
)

// PGStore reads reference and contract data from the collaborator-owned
// relational schema. All queries are read-only.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) EventTypeActive(ctx context.Context, id int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM event_type
			WHERE type_id = $1 AND is_active
		)
	`
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, &LookupError{Lookup: "event type", ID: fmt.Sprint(id), Err: err}
	}
	return ok, nil
}

func (s *PGStore) RegionExists(ctx context.Context, id int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM geographic_region
			WHERE region_id = $1
		)
	`
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, &LookupError{Lookup: "region", ID: fmt.Sprint(id), Err: err}
	}
	return ok, nil
}

func (s *PGStore) BusinessUnitExists(ctx context.Context, id int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM business_unit
			WHERE unit_id = $1
		)
	`
	var ok bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, &LookupError{Lookup: "business unit", ID: fmt.Sprint(id), Err: err}
	}
	return ok, nil
}

func (s *PGStore) SeverityResponseSLA(ctx context.Context, name string) (float64, error) {
	const query = `
		SELECT response_sla_hours
		FROM event_severity
		WHERE severity_name = $1
	`
	var hours float64
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&hours); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, &LookupError{Lookup: "severity", ID: name, Err: err}
	}
	return hours, nil
}

func (s *PGStore) Contracts(ctx context.Context, q ContractQuery) ([]models.ContractSummary, error) {
	query := `
		SELECT DISTINCT ch.vendor_id, ch.contract_number, v.vendor_name,
		       ch.total_value, ch.start_date, ch.end_date
		FROM contract_header ch
		JOIN vendor v ON v.vendor_id = ch.vendor_id
		WHERE ch.status_id IN (
			SELECT status_id FROM contract_status
			WHERE status_name = ANY($1)
		)
	`
	args := []interface{}{pq.Array(q.Statuses)}
	if q.BusinessUnitID != nil {
		args = append(args, *q.BusinessUnitID)
		query += fmt.Sprintf(" AND ch.business_unit_id = $%d", len(args))
	}
	if q.RegionID != nil {
		args = append(args, *q.RegionID)
		query += fmt.Sprintf(" AND ch.region_id = $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &LookupError{Lookup: "contracts", ID: fmt.Sprint(q.Statuses), Err: err}
	}
	defer rows.Close()

	summaries := []models.ContractSummary{}
	for rows.Next() {
		var c models.ContractSummary
		if err := rows.Scan(&c.VendorID, &c.ContractNumber, &c.VendorName, &c.TotalValue, &c.StartDate, &c.EndDate); err != nil {
			return nil, &LookupError{Lookup: "contracts", ID: fmt.Sprint(q.Statuses), Err: err}
		}
		summaries = append(summaries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &LookupError{Lookup: "contracts", ID: fmt.Sprint(q.Statuses), Err: err}
	}
	return summaries, nil
}

func (s *PGStore) HighImpactCount(ctx context.Context, businessUnitID int64) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM contract_header ch
		JOIN event_impact_assessment eia ON ch.contract_id = eia.contract_id
		JOIN event e ON eia.event_id = e.event_id
		WHERE e.business_unit_id = $1
		  AND eia.impact_level IN ('high', 'critical')
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, businessUnitID).Scan(&count); err != nil {
		return 0, &LookupError{Lookup: "impact assessments", ID: fmt.Sprint(businessUnitID), Err: err}
	}
	return count, nil
}

func (s *PGStore) EventTypeInfo(ctx context.Context, id int64) (*models.EventTypeInfo, error) {
	const query = `
		SELECT et.type_name, et.monitoring_frequency, ec.category_name, ec.category_type
		FROM event_type et
		JOIN event_category ec ON ec.category_id = et.category_id
		WHERE et.type_id = $1
	`
	var info models.EventTypeInfo
	err := s.db.QueryRowContext(ctx, query, id).Scan(&info.TypeName, &info.MonitoringFrequency, &info.CategoryName, &info.CategoryType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &LookupError{Lookup: "event type info", ID: fmt.Sprint(id), Err: err}
	}
	return &info, nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
