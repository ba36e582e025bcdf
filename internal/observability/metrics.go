package observability

import (
	"fmt"
	"time"
)

// Metrics holds assignment figures derived from the event log.
type Metrics struct {
	MatchRequests         int            `json:"match_requests"`
	AssignmentsCommitted  int            `json:"assignments_committed"`
	AutoAssignments       int            `json:"auto_assignments"`
	ManualAssignments     int            `json:"manual_assignments"`
	HoursAssigned         float64        `json:"hours_assigned"`
	AssignmentsByPriority map[string]int `json:"assignments_by_priority"`
	AssignmentsByEmployee map[string]int `json:"assignments_by_employee"`
	Rejections            int            `json:"rejections"`
	RejectionsByReason    map[string]int `json:"rejections_by_reason"`
	EventCount            int            `json:"event_count"`
	OldestEvent           *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent           *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event written since the given time.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		AssignmentsByPriority: make(map[string]int),
		AssignmentsByEmployee: make(map[string]int),
		RejectionsByReason:    make(map[string]int),
		EventCount:            len(events),
	}

	for _, event := range events {
		t := event.Time
		if m.OldestEvent == nil || t.Before(*m.OldestEvent) {
			m.OldestEvent = &t
		}
		if m.NewestEvent == nil || t.After(*m.NewestEvent) {
			m.NewestEvent = &t
		}

		switch event.Type {
		case TypeMatchesRequested:
			m.MatchRequests++
		case TypeAssignmentCommitted:
			m.AssignmentsCommitted++
			if dataString(event, "mode") == "auto" {
				m.AutoAssignments++
			} else {
				m.ManualAssignments++
			}
			if hours, ok := dataFloat(event, "hours"); ok {
				m.HoursAssigned += hours
			}
			if p := dataString(event, "priority"); p != "" {
				m.AssignmentsByPriority[p]++
			}
			if id := dataString(event, "employee_id"); id != "" {
				m.AssignmentsByEmployee[id]++
			}
		case TypeAssignmentRejected:
			m.Rejections++
			if reason := dataString(event, "reason"); reason != "" {
				m.RejectionsByReason[reason]++
			}
		}
	}

	return m, nil
}
