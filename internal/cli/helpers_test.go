package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// useDemoEngine installs an engine holding three employees and three tasks
// and restores the package state when the test ends.
func useDemoEngine(t *testing.T) core.AssignmentEngine {
	t.Helper()

	origEngine, origConfig, origLoad, origLoaded := Engine, Config, LoadRoster, rosterLoaded
	t.Cleanup(func() {
		Engine, Config, LoadRoster, rosterLoaded = origEngine, origConfig, origLoad, origLoaded
	})

	en := core.NewAssignmentEngine(nil)

	alice := models.NewEmployee("E001", "Alice Johnson", []models.Skill{
		{Name: "Python", Level: models.Expert, ExperienceYears: 5},
		{Name: "Machine Learning", Level: models.Advanced, ExperienceYears: 3},
		{Name: "Data Analysis", Level: models.Expert, ExperienceYears: 4},
	}, 40)
	alice.PerformanceRating = 0.95

	bob := models.NewEmployee("E002", "Bob Smith", []models.Skill{
		{Name: "JavaScript", Level: models.Expert, ExperienceYears: 6},
		{Name: "React", Level: models.Advanced, ExperienceYears: 4},
		{Name: "Python", Level: models.Intermediate, ExperienceYears: 2},
	}, 40)
	bob.PerformanceRating = 0.85

	en.AddEmployee(alice)
	en.AddEmployee(bob)

	en.AddTask(models.NewTask("T001", "Develop ML Model",
		map[string]models.SkillLevel{"Python": models.Advanced, "Machine Learning": models.Advanced},
		models.PriorityHigh, 20, 14))
	en.AddTask(models.NewTask("T002", "Build Web Dashboard",
		map[string]models.SkillLevel{"JavaScript": models.Advanced, "React": models.Intermediate},
		models.PriorityMedium, 15, 10))
	en.AddTask(models.NewTask("T003", "Data Analysis Report",
		map[string]models.SkillLevel{"Data Analysis": models.Intermediate, "Python": models.Intermediate},
		models.PriorityLow, 10, 7))

	Engine = en
	Config = nil
	LoadRoster = nil
	rosterLoaded = false
	return en
}

// capture points cmd's output at a buffer for the duration of the test.
func capture(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	t.Cleanup(func() { cmd.SetOut(nil) })
	return &buf
}
