package cli

import (
	"fmt"

	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/internal/observability"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	Engine core.AssignmentEngine
	Config *models.GlobalConfig

	// LoadRoster reads the roster at path (or the configured roster when path
	// is empty) into Engine.
	LoadRoster func(path string) error
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)

var rosterLoaded bool

// requireEngine returns the engine with the roster loaded into it. The roster
// is read at most once per process.
func requireEngine() (core.AssignmentEngine, error) {
	if Engine == nil {
		return nil, fmt.Errorf("assignment engine not initialized")
	}
	if LoadRoster != nil && !rosterLoaded {
		if err := LoadRoster(rosterPath); err != nil {
			return nil, err
		}
		rosterLoaded = true
	}
	return Engine, nil
}

func activeConfig() *models.GlobalConfig {
	if Config == nil {
		return core.DefaultGlobalConfig()
	}
	return Config
}
