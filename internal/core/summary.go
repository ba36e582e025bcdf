package core

import (
	"sort"

	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// recentTaskLimit is the number of tasks listed under recent activity.
const recentTaskLimit = 10

// EmployeeWorkload is one row of the workload table.
type EmployeeWorkload struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	CurrentWorkload    float64  `json:"current_workload"`
	MaxWorkloadHours   float64  `json:"max_workload_hours"`
	UtilizationPercent float64  `json:"utilization_percent"`
	PerformanceRating  float64  `json:"performance_rating"`
	AssignedTasks      []string `json:"assigned_tasks"`
}

// TaskActivity is one row of the recent activity table.
type TaskActivity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assigned_to"`
	IsCompleted bool   `json:"is_completed"`
}

// Summary aggregates the registries into dashboard figures.
type Summary struct {
	TotalEmployees       int                `json:"total_employees"`
	TotalTasks           int                `json:"total_tasks"`
	AssignedTasks        int                `json:"assigned_tasks"`
	UnassignedTasks      int                `json:"unassigned_tasks"`
	CompletedTasks       int                `json:"completed_tasks"`
	Workloads            []EmployeeWorkload `json:"workloads"`
	SkillDistribution    map[string]int     `json:"skill_distribution"`
	PriorityDistribution map[string]int     `json:"priority_distribution"`
	RecentTasks          []TaskActivity     `json:"recent_tasks"`
}

// RegistryReader is the read side of AssignmentEngine used for reporting.
type RegistryReader interface {
	Employees() []*models.Employee
	Tasks() []*models.Task
}

// Summarize builds a Summary from the engine's registries. Recent tasks are
// the last ten by task ID.
func Summarize(r RegistryReader) Summary {
	employees := r.Employees()
	tasks := r.Tasks()

	s := Summary{
		TotalEmployees:       len(employees),
		TotalTasks:           len(tasks),
		Workloads:            make([]EmployeeWorkload, 0, len(employees)),
		SkillDistribution:    make(map[string]int),
		PriorityDistribution: make(map[string]int),
	}

	for _, e := range employees {
		s.Workloads = append(s.Workloads, EmployeeWorkload{
			ID:                 e.ID,
			Name:               e.Name,
			CurrentWorkload:    e.CurrentWorkload,
			MaxWorkloadHours:   e.MaxWorkloadHours,
			UtilizationPercent: e.Utilization() * 100,
			PerformanceRating:  e.PerformanceRating,
			AssignedTasks:      append([]string{}, e.AssignedTasks...),
		})
		for name := range e.Skills {
			s.SkillDistribution[name]++
		}
	}

	for _, t := range tasks {
		if t.IsAssigned() {
			s.AssignedTasks++
		}
		if t.IsCompleted {
			s.CompletedTasks++
		}
		s.PriorityDistribution[t.Priority.String()]++
	}
	s.UnassignedTasks = s.TotalTasks - s.AssignedTasks

	start := 0
	if len(tasks) > recentTaskLimit {
		start = len(tasks) - recentTaskLimit
	}
	for _, t := range tasks[start:] {
		s.RecentTasks = append(s.RecentTasks, TaskActivity{
			ID:          t.ID,
			Name:        t.Name,
			Priority:    t.Priority.String(),
			AssignedTo:  t.AssignedTo,
			IsCompleted: t.IsCompleted,
		})
	}

	return s
}

// SortedSkillNames returns the keys of the skill distribution, most common
// first and then by name.
func (s Summary) SortedSkillNames() []string {
	names := make([]string, 0, len(s.SkillDistribution))
	for name := range s.SkillDistribution {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := s.SkillDistribution[names[i]], s.SkillDistribution[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}
