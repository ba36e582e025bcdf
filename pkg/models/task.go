package models

import (
	"fmt"
	"sort"
	"strings"
)

// TaskPriority is the ordered urgency scale of a task.
type TaskPriority int

const (
	PriorityLow      TaskPriority = 1
	PriorityMedium   TaskPriority = 2
	PriorityHigh     TaskPriority = 3
	PriorityCritical TaskPriority = 4
)

var taskPriorityNames = map[TaskPriority]string{
	PriorityLow:      "LOW",
	PriorityMedium:   "MEDIUM",
	PriorityHigh:     "HIGH",
	PriorityCritical: "CRITICAL",
}

// performanceThresholds maps each priority to the minimum performance rating
// an employee needs for full priority-match credit.
var performanceThresholds = map[TaskPriority]float64{
	PriorityCritical: 0.90,
	PriorityHigh:     0.70,
	PriorityMedium:   0.50,
	PriorityLow:      0.30,
}

// TaskPriorities lists every defined priority in ascending order.
func TaskPriorities() []TaskPriority {
	return []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// Valid reports whether p is one of the defined priorities.
func (p TaskPriority) Valid() bool {
	_, ok := taskPriorityNames[p]
	return ok
}

func (p TaskPriority) String() string {
	if name, ok := taskPriorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(p))
}

// PerformanceThreshold returns the fixed minimum performance rating for p.
// Undefined priorities have no threshold and return 0.
func (p TaskPriority) PerformanceThreshold() float64 {
	return performanceThresholds[p]
}

// ParseTaskPriority converts a priority name (case-insensitive) into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range taskPriorityNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid priority %q, must be one of: LOW, MEDIUM, HIGH, CRITICAL", s)
}

// MarshalText encodes the priority by name for YAML and JSON.
func (p TaskPriority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a priority name.
func (p *TaskPriority) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskPriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Task is a unit of work to be matched to an employee.
// AssignedTo holds the employee ID once the task is committed, empty before.
type Task struct {
	ID             string                `yaml:"id" json:"id"`
	Name           string                `yaml:"name" json:"name"`
	RequiredSkills map[string]SkillLevel `yaml:"required_skills,omitempty" json:"required_skills,omitempty"`
	Priority       TaskPriority          `yaml:"priority" json:"priority"`
	EstimatedHours float64               `yaml:"estimated_hours" json:"estimated_hours"`
	DeadlineDays   int                   `yaml:"deadline_days" json:"deadline_days"`
	AssignedTo     string                `yaml:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	IsCompleted    bool                  `yaml:"is_completed,omitempty" json:"is_completed"`
}

// NewTask creates an unassigned task. requiredSkills may be nil.
func NewTask(id, name string, requiredSkills map[string]SkillLevel, priority TaskPriority, estimatedHours float64, deadlineDays int) *Task {
	skills := make(map[string]SkillLevel, len(requiredSkills))
	for k, v := range requiredSkills {
		skills[k] = v
	}
	return &Task{
		ID:             id,
		Name:           name,
		RequiredSkills: skills,
		Priority:       priority,
		EstimatedHours: estimatedHours,
		DeadlineDays:   deadlineDays,
	}
}

// IsAssigned reports whether the task has been committed to an employee.
func (t *Task) IsAssigned() bool {
	return t.AssignedTo != ""
}

// RequiredSkillNames returns the required skill names in sorted order.
func (t *Task) RequiredSkillNames() []string {
	names := make([]string, 0, len(t.RequiredSkills))
	for name := range t.RequiredSkills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the task for values that would produce anomalous scores.
func (t *Task) Validate() error {
	var errs []string

	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, "id must not be empty")
	}
	if !t.Priority.Valid() {
		errs = append(errs, fmt.Sprintf("priority %d is invalid", int(t.Priority)))
	}
	if t.EstimatedHours <= 0 {
		errs = append(errs, fmt.Sprintf("estimated_hours must be positive, got %g", t.EstimatedHours))
	}
	if t.DeadlineDays <= 0 {
		errs = append(errs, fmt.Sprintf("deadline_days must be positive, got %d", t.DeadlineDays))
	}
	for _, name := range t.RequiredSkillNames() {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "required skill name must not be empty")
			continue
		}
		if level := t.RequiredSkills[name]; !level.Valid() {
			errs = append(errs, fmt.Sprintf("required skill %q has invalid level %d", name, int(level)))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("task %q is invalid:\n  - %s", t.ID, strings.Join(errs, "\n  - "))
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.RequiredSkills = make(map[string]SkillLevel, len(t.RequiredSkills))
	for k, v := range t.RequiredSkills {
		c.RequiredSkills[k] = v
	}
	return &c
}
