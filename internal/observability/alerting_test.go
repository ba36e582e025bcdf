package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

func newTestAlertEngine(log EventLog, thresholds AlertThresholds) AlertEngine {
	ae := NewAlertEngine(log, thresholds).(*alertEngine)
	ae.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return ae
}

func findAlert(alerts []Alert, id string) *Alert {
	for i := range alerts {
		if alerts[i].ID == id {
			return &alerts[i]
		}
	}
	return nil
}

func TestAlertEngine_NoEvents(t *testing.T) {
	log, _ := newTestEventLog(t)

	alerts, err := newTestAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}

func TestAlertEngine_OverUtilized(t *testing.T) {
	log, _ := newTestEventLog(t)
	writeAll(t, log,
		committed("T001", "E001", "auto", "HIGH", 20, 50),
		committed("T002", "E001", "auto", "HIGH", 16, 90),
		committed("T003", "E002", "auto", "LOW", 35, 87.5),
	)

	alerts, err := newTestAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	a := findAlert(alerts, "utilization-E001")
	if a == nil {
		t.Fatalf("expected utilization alert for E001, got %+v", alerts)
	}
	if a.Severity != SeverityMedium || a.Condition != ConditionOverUtilized {
		t.Errorf("alert = %+v", a)
	}
	if !strings.Contains(a.Message, "90.0%") {
		t.Errorf("message %q should report the utilization", a.Message)
	}
	if findAlert(alerts, "utilization-E002") != nil {
		t.Error("E002 is below the threshold and should not alert")
	}
}

func TestAlertEngine_Unassignable(t *testing.T) {
	log, _ := newTestEventLog(t)
	writeAll(t, log,
		rejected("T001", "no_candidate"),
		rejected("T002", "no_candidate"),
		committed("T002", "E001", "manual", "LOW", 4, 10),
		rejected("T003", "capacity_exceeded"),
	)

	alerts, err := newTestAlertEngine(log, AlertThresholds{UtilizationPercent: 100, MaxRejections: 10}).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %+v", alerts)
	}
	if alerts[0].ID != "unassignable-T001" || alerts[0].Severity != SeverityHigh {
		t.Errorf("alert = %+v, want high unassignable-T001", alerts[0])
	}
}

// engineLogger forwards engine events into an EventLog unchanged.
type engineLogger struct{ log EventLog }

func (l engineLogger) LogEvent(eventType string, data map[string]any) error {
	return l.log.Write(Event{Level: "INFO", Type: eventType, Data: data})
}

func TestAlertEngine_ReadsEngineEvents(t *testing.T) {
	log, _ := newTestEventLog(t)
	engine := core.NewAssignmentEngine(engineLogger{log: log})
	engine.AddEmployee(models.NewEmployee("E001", "Alice", nil, 10))
	engine.AddTask(models.NewTask("T001", "Too big", nil, models.PriorityHigh, 20, 5))

	if _, err := engine.Assign("T001", ""); err == nil {
		t.Fatal("expected T001 to have no candidate")
	}

	rejections, err := log.Read(EventFilter{Type: TypeAssignmentRejected})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(rejections) != 1 {
		t.Fatalf("got %d rejected events, want 1", len(rejections))
	}

	alerts, err := newTestAlertEngine(log, DefaultAlertThresholds()).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if a := findAlert(alerts, "unassignable-T001"); a == nil || a.Condition != ConditionUnassignable {
		t.Errorf("alerts = %+v, want unassignable-T001", alerts)
	}
}

func TestAlertEngine_RejectionsHigh(t *testing.T) {
	log, _ := newTestEventLog(t)
	writeAll(t, log,
		rejected("T1", "task_not_found"),
		rejected("T2", "task_not_found"),
		rejected("T3", "already_assigned"),
	)
	thresholds := AlertThresholds{UtilizationPercent: 90, MaxRejections: 3}

	alerts, err := newTestAlertEngine(log, thresholds).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	if findAlert(alerts, "rejections-high") != nil {
		t.Error("3 rejections should not exceed a maximum of 3")
	}

	writeAll(t, log, rejected("T4", "employee_not_found"))
	alerts, err = newTestAlertEngine(log, thresholds).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	a := findAlert(alerts, "rejections-high")
	if a == nil {
		t.Fatal("expected rejections-high alert")
	}
	if a.Severity != SeverityLow {
		t.Errorf("Severity = %s, want low", a.Severity)
	}
}

func TestAlertEngine_OrdersBySeverity(t *testing.T) {
	log, _ := newTestEventLog(t)
	writeAll(t, log,
		committed("T1", "E1", "auto", "LOW", 40, 100),
		rejected("T2", "no_candidate"),
		rejected("T3", "no_candidate"),
	)

	alerts, err := newTestAlertEngine(log, AlertThresholds{UtilizationPercent: 90, MaxRejections: 1}).Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	want := []string{"unassignable-T2", "unassignable-T3", "utilization-E1", "rejections-high"}
	if len(alerts) != len(want) {
		t.Fatalf("got %d alerts, want %d", len(alerts), len(want))
	}
	for i, id := range want {
		if alerts[i].ID != id {
			t.Errorf("alerts[%d].ID = %s, want %s", i, alerts[i].ID, id)
		}
	}
}
