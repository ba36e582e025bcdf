package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/valter-silva-au/taskmatch/pkg/models"
	"gopkg.in/yaml.v3"
)

// rosterVersion is written to every saved roster file.
const rosterVersion = "1.0"

// EmployeeEntry is the on-disk form of an employee. Skills are a list so the
// file reads naturally; duplicate names resolve to the last entry.
type EmployeeEntry struct {
	ID                string         `yaml:"id"`
	Name              string         `yaml:"name"`
	MaxWorkloadHours  float64        `yaml:"max_workload_hours,omitempty"`
	PerformanceRating float64        `yaml:"performance_rating,omitempty"`
	CurrentWorkload   float64        `yaml:"current_workload,omitempty"`
	AssignedTasks     []string       `yaml:"assigned_tasks,omitempty"`
	Skills            []models.Skill `yaml:"skills"`
}

// RosterFile represents the top-level structure of roster.yaml.
type RosterFile struct {
	Version   string          `yaml:"version"`
	Employees []EmployeeEntry `yaml:"employees"`
	Tasks     []models.Task   `yaml:"tasks"`
}

// RosterDefaults fills fields left out of roster entries.
type RosterDefaults struct {
	MaxWorkloadHours  float64
	PerformanceRating float64
}

// RosterManager reads and writes the employee and task roster.
type RosterManager interface {
	Load() error
	Save() error
	Path() string
	Employees() ([]*models.Employee, error)
	Tasks() ([]*models.Task, error)
	SetEmployees(employees []*models.Employee)
	SetTasks(tasks []*models.Task)
}

type fileRosterManager struct {
	path     string
	defaults RosterDefaults
	data     RosterFile
}

// NewRosterManager creates a RosterManager backed by the YAML file at path.
// Zero defaults fall back to the model defaults.
func NewRosterManager(path string, defaults RosterDefaults) RosterManager {
	if defaults.MaxWorkloadHours <= 0 {
		defaults.MaxWorkloadHours = models.DefaultMaxWorkloadHours
	}
	if defaults.PerformanceRating <= 0 {
		defaults.PerformanceRating = models.DefaultPerformanceRating
	}
	return &fileRosterManager{
		path:     path,
		defaults: defaults,
		data:     RosterFile{Version: rosterVersion},
	}
}

func (m *fileRosterManager) Path() string {
	return m.path
}

// Load reads the roster file. A missing file leaves the roster empty.
func (m *fileRosterManager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.data = RosterFile{Version: rosterVersion}
			return nil
		}
		return fmt.Errorf("loading roster: %w", err)
	}

	var rf RosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("loading roster: parsing YAML: %w", err)
	}
	if rf.Version == "" {
		rf.Version = rosterVersion
	}
	m.data = rf

	if _, err := m.Employees(); err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	if _, err := m.Tasks(); err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	return nil
}

// Save writes the roster, including workloads and assignments.
func (m *fileRosterManager) Save() error {
	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("saving roster: creating directory: %w", err)
		}
	}
	data, err := yaml.Marshal(&m.data)
	if err != nil {
		return fmt.Errorf("saving roster: marshaling YAML: %w", err)
	}

	// Exports from concurrent runs into the same file must not interleave.
	unlock, err := lockFile(m.path + ".lock")
	if err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}
	defer func() { _ = unlock() }()

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving roster: writing file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("saving roster: replacing file: %w", err)
	}
	return nil
}

// Employees converts the roster entries into validated employees, applying
// defaults for omitted capacity and rating.
func (m *fileRosterManager) Employees() ([]*models.Employee, error) {
	var errs []string
	seen := make(map[string]bool, len(m.data.Employees))
	employees := make([]*models.Employee, 0, len(m.data.Employees))

	for _, entry := range m.data.Employees {
		if seen[entry.ID] {
			errs = append(errs, fmt.Sprintf("duplicate employee id %q", entry.ID))
			continue
		}
		seen[entry.ID] = true

		// Only an omitted capacity takes the default; negative values are
		// left for Validate to reject.
		e := models.NewEmployee(entry.ID, entry.Name, entry.Skills, m.defaults.MaxWorkloadHours)
		if entry.MaxWorkloadHours != 0 {
			e.MaxWorkloadHours = entry.MaxWorkloadHours
		}
		e.PerformanceRating = entry.PerformanceRating
		if e.PerformanceRating == 0 {
			e.PerformanceRating = m.defaults.PerformanceRating
		}
		e.CurrentWorkload = entry.CurrentWorkload
		e.AssignedTasks = append([]string{}, entry.AssignedTasks...)

		if err := e.Validate(); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		employees = append(employees, e)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid employees:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return employees, nil
}

// Tasks returns validated copies of the roster tasks. Assignments must agree
// in both directions: a task's assigned_to must name an employee listing the
// task, and every task an employee lists must be assigned to that employee.
func (m *fileRosterManager) Tasks() ([]*models.Task, error) {
	known := make(map[string]bool, len(m.data.Employees))
	holds := make(map[string]map[string]bool, len(m.data.Employees))
	for _, e := range m.data.Employees {
		known[e.ID] = true
		holds[e.ID] = make(map[string]bool, len(e.AssignedTasks))
		for _, id := range e.AssignedTasks {
			holds[e.ID][id] = true
		}
	}

	var errs []string
	seen := make(map[string]bool, len(m.data.Tasks))
	tasks := make([]*models.Task, 0, len(m.data.Tasks))

	for i := range m.data.Tasks {
		t := m.data.Tasks[i].Clone()
		if seen[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate task id %q", t.ID))
			continue
		}
		seen[t.ID] = true

		if err := t.Validate(); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if t.IsAssigned() && !known[t.AssignedTo] {
			errs = append(errs, fmt.Sprintf("task %q is assigned to unknown employee %q", t.ID, t.AssignedTo))
			continue
		}
		if t.IsAssigned() && !holds[t.AssignedTo][t.ID] {
			errs = append(errs, fmt.Sprintf("task %q is assigned to %q but missing from its assigned_tasks", t.ID, t.AssignedTo))
			continue
		}
		tasks = append(tasks, t)
	}

	byID := make(map[string]models.Task, len(m.data.Tasks))
	for _, t := range m.data.Tasks {
		byID[t.ID] = t
	}
	for _, e := range m.data.Employees {
		for _, id := range e.AssignedTasks {
			t, ok := byID[id]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("employee %q lists unknown task %q", e.ID, id))
			case t.AssignedTo != e.ID:
				errs = append(errs, fmt.Sprintf("employee %q lists task %q, which is assigned to %q", e.ID, id, t.AssignedTo))
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid tasks:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return tasks, nil
}

// SetEmployees replaces the roster employees, sorted by ID.
func (m *fileRosterManager) SetEmployees(employees []*models.Employee) {
	entries := make([]EmployeeEntry, 0, len(employees))
	for _, e := range employees {
		entries = append(entries, EmployeeEntry{
			ID:                e.ID,
			Name:              e.Name,
			MaxWorkloadHours:  e.MaxWorkloadHours,
			PerformanceRating: e.PerformanceRating,
			CurrentWorkload:   e.CurrentWorkload,
			AssignedTasks:     append([]string{}, e.AssignedTasks...),
			Skills:            e.SkillList(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	m.data.Employees = entries
}

// SetTasks replaces the roster tasks, sorted by ID.
func (m *fileRosterManager) SetTasks(tasks []*models.Task) {
	list := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, *t.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	m.data.Tasks = list
}
