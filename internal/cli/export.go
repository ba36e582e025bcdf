package cli

import (
	"fmt"

	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/internal/storage"
)

// exportSession writes the engine's current employees and tasks, including
// workloads and assignments, as a roster file at path.
func exportSession(engine core.AssignmentEngine, path string) error {
	cfg := activeConfig()
	mgr := storage.NewRosterManager(path, storage.RosterDefaults{
		MaxWorkloadHours:  cfg.DefaultMaxWorkloadHours,
		PerformanceRating: cfg.DefaultPerformanceRating,
	})
	mgr.SetEmployees(engine.Employees())
	mgr.SetTasks(engine.Tasks())
	if err := mgr.Save(); err != nil {
		return fmt.Errorf("exporting session: %w", err)
	}
	return nil
}
