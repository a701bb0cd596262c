package triage

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/procurisk/triage/internal/models"
)

// ResponseTable maps each priority level to its response profile. The table
// is static configuration: it must stay total over the three levels so the
// classifier's lookup cannot fail.
type ResponseTable map[models.PriorityLevel]models.ResponseRequirements

// DefaultResponseTable returns the built-in response profiles.
func DefaultResponseTable() ResponseTable {
	return ResponseTable{
		models.PriorityHigh: {
			MaxResponse:       2 * time.Hour,
			RequiredApprovals: []string{"Department Head", "Risk Management"},
			Notification:      models.NotifyImmediate,
		},
		models.PriorityMedium: {
			MaxResponse:       8 * time.Hour,
			RequiredApprovals: []string{"Team Lead"},
			Notification:      models.NotifyStandard,
		},
		models.PriorityLow: {
			MaxResponse:       24 * time.Hour,
			RequiredApprovals: []string{},
			Notification:      models.NotifyRoutine,
		},
	}
}

// For returns the response profile for a level. Unknown levels fall back to
// the Low profile so the lookup stays total.
func (t ResponseTable) For(level models.PriorityLevel) models.ResponseRequirements {
	if req, ok := t[level]; ok {
		return req
	}
	return t[models.PriorityLow]
}

type responseEntry struct {
	MaxResponseHours  float64  `yaml:"max_response_hours"`
	RequiredApprovals []string `yaml:"required_approvals"`
	NotificationLevel string   `yaml:"notification_level"`
}

// LoadResponseTable reads per-deployment response-profile overrides from a
// YAML file keyed by priority level:
//
//	High:
//	  max_response_hours: 2
//	  required_approvals: [Department Head, Risk Management]
//	  notification_level: Immediate
//
// The file must cover all three levels with positive SLAs and known
// notification levels.
func LoadResponseTable(path string) (ResponseTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read response table: %w", err)
	}
	var raw map[string]responseEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse response table: %w", err)
	}

	table := ResponseTable{}
	for name, entry := range raw {
		level := models.PriorityLevel(name)
		if level.Rank() == 0 {
			return nil, fmt.Errorf("response table: unknown priority level %q", name)
		}
		if entry.MaxResponseHours <= 0 {
			return nil, fmt.Errorf("response table: %s: max_response_hours must be positive", name)
		}
		notification := models.NotificationLevel(entry.NotificationLevel)
		switch notification {
		case models.NotifyImmediate, models.NotifyStandard, models.NotifyRoutine:
		default:
			return nil, fmt.Errorf("response table: %s: unknown notification level %q", name, entry.NotificationLevel)
		}
		approvals := entry.RequiredApprovals
		if approvals == nil {
			approvals = []string{}
		}
		table[level] = models.ResponseRequirements{
			MaxResponse:       time.Duration(entry.MaxResponseHours * float64(time.Hour)),
			RequiredApprovals: approvals,
			Notification:      notification,
		}
	}

	for _, level := range []models.PriorityLevel{models.PriorityLow, models.PriorityMedium, models.PriorityHigh} {
		if _, ok := table[level]; !ok {
			return nil, fmt.Errorf("response table: missing entry for level %s", level)
		}
	}
	return table, nil
}
