package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies where an event was detected.
type SourceKind string

const (
	SourceExternal       SourceKind = "external"
	SourceInternalKPI    SourceKind = "internal_kpi"
	SourceOrganizational SourceKind = "organizational"
	SourceUnknown        SourceKind = "unknown"
)

// ParseSourceKind maps free-text source labels (CSV imports, migrated rows)
// onto the closed set, falling back to SourceUnknown.
func ParseSourceKind(s string) SourceKind {
	switch SourceKind(s) {
	case SourceExternal, SourceInternalKPI, SourceOrganizational:
		return SourceKind(s)
	default:
		return SourceUnknown
	}
}

// PriorityLevel is the coarse triage bucket derived from the priority score.
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "Low"
	PriorityMedium PriorityLevel = "Medium"
	PriorityHigh   PriorityLevel = "High"
)

// Rank returns the position of the level in the Low < Medium < High order.
// Unknown levels rank below Low.
func (p PriorityLevel) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// NotificationLevel is the urgency attached to a response profile.
type NotificationLevel string

const (
	NotifyImmediate NotificationLevel = "Immediate"
	NotifyStandard  NotificationLevel = "Standard"
	NotifyRoutine   NotificationLevel = "Routine"
)

// SystemUserID is the creator identity assumed when the ingesting caller
// supplies none (automated detectors, bulk imports).
const SystemUserID int64 = 1

// Event is the immutable unit of work submitted to the pipeline. Optional
// reference fields are pointers; nil means the caller had no signal, which is
// always acceptable input.
type Event struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Source          SourceKind `json:"source"`
	Severity        string     `json:"severity,omitempty"`
	EventTypeID     *int64     `json:"eventTypeId,omitempty"`
	RegionID        *int64     `json:"regionId,omitempty"`
	BusinessUnitID  *int64     `json:"businessUnitId,omitempty"`
	SourceReference string     `json:"sourceReference,omitempty"`
	CreatedBy       int64      `json:"createdBy,omitempty"`
}

// Creator returns the creator identity, defaulting to the system user.
func (e Event) Creator() int64 {
	if e.CreatedBy == 0 {
		return SystemUserID
	}
	return e.CreatedBy
}

// Factor names carried by every PriorityFactors snapshot. Urgency and scope
// are reserved slots: no current rule populates them, but they participate in
// the equal-weighted mean.
const (
	FactorSeverity       = "severity_score"
	FactorBusinessImpact = "business_impact"
	FactorUrgency        = "urgency"
	FactorScope          = "scope"
)

// PriorityFactors maps factor name to a sub-score in [0,100].
type PriorityFactors map[string]float64

// NewPriorityFactors returns a snapshot with all four slots zeroed.
func NewPriorityFactors() PriorityFactors {
	return PriorityFactors{
		FactorSeverity:       0,
		FactorBusinessImpact: 0,
		FactorUrgency:        0,
		FactorScope:          0,
	}
}

type PriorityResult struct {
	Level   PriorityLevel   `json:"priorityLevel"`
	Score   float64         `json:"priorityScore"`
	Factors PriorityFactors `json:"factors"`
}

// ContractSummary is a read-only view of a contract matched as potentially
// affected by an event.
type ContractSummary struct {
	VendorID       int64     `json:"vendorId"`
	ContractNumber string    `json:"contractNumber"`
	VendorName     string    `json:"vendorName"`
	TotalValue     float64   `json:"totalValue"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// EventTypeInfo is reference metadata about an event type and its owning
// category.
type EventTypeInfo struct {
	TypeName            string `json:"typeName"`
	MonitoringFrequency string `json:"monitoringFrequency"`
	CategoryName        string `json:"categoryName"`
	CategoryType        string `json:"categoryType"`
}

// ResponseRequirements is the SLA/approval/notification profile attached to a
// priority level.
type ResponseRequirements struct {
	MaxResponse       time.Duration     `json:"maxResponse"`
	RequiredApprovals []string          `json:"requiredApprovals"`
	Notification      NotificationLevel `json:"notificationLevel"`
}

type ClassificationResult struct {
	EventType     *EventTypeInfo       `json:"eventType,omitempty"`
	PriorityLevel PriorityLevel        `json:"priorityLevel"`
	PriorityScore float64              `json:"priorityScore"`
	Response      ResponseRequirements `json:"responseRequirements"`
	Source        SourceKind           `json:"source"`
	DetectionTime time.Time            `json:"detectionTime"`
	Confidence    float64              `json:"classificationConfidence"`
}

// EventDetails echoes the submitted event fields back in the result.
type EventDetails struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Source        SourceKind `json:"source"`
	DetectionTime time.Time  `json:"detectionTime"`
}

type ValidationOutcome struct {
	Valid   bool   `json:"isValid"`
	Message string `json:"message"`
}

// PipelineResult is the composite output of processing one event end to end.
type PipelineResult struct {
	ID                uuid.UUID            `json:"id"`
	Event             EventDetails         `json:"eventDetails"`
	Validation        ValidationOutcome    `json:"validation"`
	Priority          PriorityResult       `json:"priority"`
	AffectedContracts []ContractSummary    `json:"affectedContracts"`
	Classification    ClassificationResult `json:"classification"`
}
