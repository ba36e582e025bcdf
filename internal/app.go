// Package internal provides the App struct that wires all components of
// taskmatch together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/taskmatch/internal/cli"
	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/internal/observability"
	"github.com/valter-silva-au/taskmatch/internal/storage"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// EventLogFileName is the JSONL event log written in the base path.
const EventLogFileName = ".taskmatch_events.jsonl"

// HomeEnvVar overrides base path discovery.
const HomeEnvVar = "TASKMATCH_HOME"

// App holds all service dependencies for taskmatch.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Core services
	Engine core.AssignmentEngine

	// Storage layer, set once LoadRoster has run.
	Roster storage.RosterManager

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of taskmatch. basePath is the
// directory holding .matchconfig, the roster and the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	if cfg.EventLogEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
		if err != nil {
			// Non-fatal: run without metrics and alerts.
			app.EventLog = nil
		}
	}

	if app.EventLog != nil {
		thresholds := observability.DefaultAlertThresholds()
		if cfg.Alerts.UtilizationPercent > 0 {
			thresholds.UtilizationPercent = cfg.Alerts.UtilizationPercent
		}
		if cfg.Alerts.MaxRejections > 0 {
			thresholds.MaxRejections = cfg.Alerts.MaxRejections
		}
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, thresholds)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	if cfg.Alerts.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Alerts.WebhookURL)
	}

	// --- Core services ---
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
	}
	app.Engine = core.NewAssignmentEngine(evtAdapter)

	// --- Wire CLI package-level variables ---
	cli.Engine = app.Engine
	cli.Config = app.Config
	cli.LoadRoster = app.LoadRoster
	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// LoadRoster reads the roster file into the engine. An empty path uses
// roster.file from the configuration; relative paths resolve against the base
// path. A missing file leaves the engine empty.
func (a *App) LoadRoster(path string) error {
	if path == "" {
		path = a.Config.RosterFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.BasePath, path)
	}

	roster := storage.NewRosterManager(path, storage.RosterDefaults{
		MaxWorkloadHours:  a.Config.DefaultMaxWorkloadHours,
		PerformanceRating: a.Config.DefaultPerformanceRating,
	})
	if err := roster.Load(); err != nil {
		return err
	}

	employees, err := roster.Employees()
	if err != nil {
		return err
	}
	tasks, err := roster.Tasks()
	if err != nil {
		return err
	}

	for _, e := range employees {
		a.Engine.AddEmployee(e)
	}
	for _, t := range tasks {
		a.Engine.AddTask(t)
	}
	a.Roster = roster
	return nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the taskmatch base directory. It checks the
// TASKMATCH_HOME env var, then walks up from the working directory looking for
// .matchconfig, then falls back to the working directory.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home
	}

	dir, err := os.Getwd()
	if err != nil {
		return "."
	}

	for {
		if hasConfigFile(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	cwd, _ := os.Getwd()
	return cwd
}

func hasConfigFile(dir string) bool {
	for _, name := range []string{core.ConfigFileName, core.ConfigFileName + ".yaml", core.ConfigFileName + ".yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := "INFO"
	if eventType == core.EventAssignmentRejected {
		level = "WARN"
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventMessage(eventType, data),
		Data:    data,
	})
}

func eventMessage(eventType string, data map[string]any) string {
	switch eventType {
	case core.EventAssignmentCommitted:
		return fmt.Sprintf("assigned %v to %v", data["task_id"], data["employee_id"])
	case core.EventAssignmentRejected:
		return fmt.Sprintf("rejected assignment of %v: %v", data["task_id"], data["reason"])
	case core.EventMatchesRequested:
		return fmt.Sprintf("ranked %v candidates for %v", data["candidates"], data["task_id"])
	default:
		return eventType
	}
}
