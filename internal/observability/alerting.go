package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/taskmatch/internal/core"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert conditions.
const (
	ConditionOverUtilized   = "employee_over_utilized"
	ConditionUnassignable   = "task_unassignable"
	ConditionRejectionsHigh = "rejections_high"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	UtilizationPercent float64 `yaml:"utilization_percent" json:"utilization_percent"`
	MaxRejections      int     `yaml:"max_rejections" json:"max_rejections"`
}

// DefaultAlertThresholds returns the default alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		UtilizationPercent: 90,
		MaxRejections:      3,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate replays the assignment events and returns triggered alerts, high
// severity first.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("reading events for alerts: %w", err)
	}

	now := ae.now()
	var alerts []Alert
	alerts = append(alerts, ae.checkUnassignable(events, now)...)
	alerts = append(alerts, ae.checkUtilization(events, now)...)
	alerts = append(alerts, ae.checkRejections(events, now)...)
	return alerts, nil
}

// checkUnassignable flags tasks whose latest outcome was a rejection for
// lack of any feasible employee.
func (ae *alertEngine) checkUnassignable(events []Event, now time.Time) []Alert {
	stuck := make(map[string]bool)
	for _, event := range events {
		taskID := dataString(event, "task_id")
		if taskID == "" {
			continue
		}
		switch event.Type {
		case TypeAssignmentCommitted:
			delete(stuck, taskID)
		case TypeAssignmentRejected:
			if dataString(event, "reason") == core.ReasonNoCandidate {
				stuck[taskID] = true
			}
		}
	}

	var alerts []Alert
	for _, taskID := range sortedKeys(stuck) {
		alerts = append(alerts, Alert{
			ID:          "unassignable-" + taskID,
			Condition:   ConditionUnassignable,
			Severity:    SeverityHigh,
			Message:     fmt.Sprintf("task %s has no employee with enough capacity", taskID),
			TriggeredAt: now,
		})
	}
	return alerts
}

// checkUtilization flags employees whose utilization after their latest
// committed assignment reached the threshold.
func (ae *alertEngine) checkUtilization(events []Event, now time.Time) []Alert {
	latest := make(map[string]float64)
	for _, event := range events {
		if event.Type != TypeAssignmentCommitted {
			continue
		}
		id := dataString(event, "employee_id")
		if u, ok := dataFloat(event, "utilization"); ok && id != "" {
			latest[id] = u
		}
	}

	over := make(map[string]bool)
	for id, u := range latest {
		if u >= ae.thresholds.UtilizationPercent {
			over[id] = true
		}
	}

	var alerts []Alert
	for _, id := range sortedKeys(over) {
		alerts = append(alerts, Alert{
			ID:          "utilization-" + id,
			Condition:   ConditionOverUtilized,
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("employee %s is at %.1f%% utilization, at or above %.0f%%", id, latest[id], ae.thresholds.UtilizationPercent),
			TriggeredAt: now,
		})
	}
	return alerts
}

func (ae *alertEngine) checkRejections(events []Event, now time.Time) []Alert {
	count := 0
	for _, event := range events {
		if event.Type == TypeAssignmentRejected {
			count++
		}
	}
	if count <= ae.thresholds.MaxRejections {
		return nil
	}
	return []Alert{{
		ID:          "rejections-high",
		Condition:   ConditionRejectionsHigh,
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d assignment requests were rejected, exceeding the maximum of %d", count, ae.thresholds.MaxRejections),
		TriggeredAt: now,
	}}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
