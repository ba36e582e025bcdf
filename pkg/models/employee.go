package models

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultMaxWorkloadHours is the capacity given to employees created
	// without an explicit maximum.
	DefaultMaxWorkloadHours = 40.0

	// DefaultPerformanceRating is the rating of a newly created employee.
	DefaultPerformanceRating = 1.0
)

// Employee is a capacity-constrained actor that tasks are assigned to.
// CurrentWorkload and AssignedTasks are only mutated by the assignment engine.
type Employee struct {
	ID                string           `yaml:"id" json:"id"`
	Name              string           `yaml:"name" json:"name"`
	Skills            map[string]Skill `yaml:"-" json:"-"`
	MaxWorkloadHours  float64          `yaml:"max_workload_hours" json:"max_workload_hours"`
	CurrentWorkload   float64          `yaml:"current_workload" json:"current_workload"`
	AssignedTasks     []string         `yaml:"assigned_tasks" json:"assigned_tasks"`
	PerformanceRating float64          `yaml:"performance_rating" json:"performance_rating"`
}

// NewEmployee creates an employee with no workload. A non-positive
// maxWorkloadHours falls back to DefaultMaxWorkloadHours. When two skills share
// a name the later one wins.
func NewEmployee(id, name string, skills []Skill, maxWorkloadHours float64) *Employee {
	if maxWorkloadHours <= 0 {
		maxWorkloadHours = DefaultMaxWorkloadHours
	}
	e := &Employee{
		ID:                id,
		Name:              name,
		Skills:            make(map[string]Skill, len(skills)),
		MaxWorkloadHours:  maxWorkloadHours,
		AssignedTasks:     []string{},
		PerformanceRating: DefaultPerformanceRating,
	}
	for _, s := range skills {
		e.AddSkill(s)
	}
	return e
}

// AddSkill adds or replaces the skill with the same name.
func (e *Employee) AddSkill(skill Skill) {
	if e.Skills == nil {
		e.Skills = make(map[string]Skill)
	}
	e.Skills[skill.Name] = skill
}

// SkillLevel returns the employee's level for the named skill, or 0 when the
// skill is not held.
func (e *Employee) SkillLevel(name string) SkillLevel {
	if s, ok := e.Skills[name]; ok {
		return s.Level
	}
	return 0
}

// SkillList returns the employee's skills sorted by name.
func (e *Employee) SkillList() []Skill {
	list := make([]Skill, 0, len(e.Skills))
	for _, s := range e.Skills {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// AvailabilityRatio is the unused fraction of capacity, floored at 0.
func (e *Employee) AvailabilityRatio() float64 {
	ratio := (e.MaxWorkloadHours - e.CurrentWorkload) / e.MaxWorkloadHours
	if ratio < 0 {
		return 0
	}
	return ratio
}

// Utilization is the used fraction of capacity. It returns 0 when the
// employee has no capacity.
func (e *Employee) Utilization() float64 {
	if e.MaxWorkloadHours <= 0 {
		return 0
	}
	return e.CurrentWorkload / e.MaxWorkloadHours
}

// RemainingHours is the capacity left before the maximum is reached.
func (e *Employee) RemainingHours() float64 {
	return e.MaxWorkloadHours - e.CurrentWorkload
}

// CanAccommodate reports whether adding hours keeps the employee at or below
// the maximum workload.
func (e *Employee) CanAccommodate(hours float64) bool {
	return e.CurrentWorkload+hours <= e.MaxWorkloadHours
}

// Validate checks the employee for values that would produce anomalous scores.
func (e *Employee) Validate() error {
	var errs []string

	if strings.TrimSpace(e.ID) == "" {
		errs = append(errs, "id must not be empty")
	}
	if e.MaxWorkloadHours <= 0 {
		errs = append(errs, fmt.Sprintf("max_workload_hours must be positive, got %g", e.MaxWorkloadHours))
	}
	if e.CurrentWorkload < 0 {
		errs = append(errs, fmt.Sprintf("current_workload must be non-negative, got %g", e.CurrentWorkload))
	}
	if e.MaxWorkloadHours > 0 && e.CurrentWorkload > e.MaxWorkloadHours {
		errs = append(errs, fmt.Sprintf("current_workload %g exceeds max_workload_hours %g", e.CurrentWorkload, e.MaxWorkloadHours))
	}
	if e.PerformanceRating <= 0 || e.PerformanceRating > 1 {
		errs = append(errs, fmt.Sprintf("performance_rating must be in (0, 1], got %g", e.PerformanceRating))
	}
	for _, s := range e.SkillList() {
		if err := s.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("employee %q is invalid:\n  - %s", e.ID, strings.Join(errs, "\n  - "))
	}
	return nil
}

// Clone returns a deep copy of the employee.
func (e *Employee) Clone() *Employee {
	c := *e
	c.Skills = make(map[string]Skill, len(e.Skills))
	for k, v := range e.Skills {
		c.Skills[k] = v
	}
	c.AssignedTasks = append([]string{}, e.AssignedTasks...)
	return &c
}
