package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/valter-silva-au/taskmatch/pkg/models"
)

const (
	// DefaultTopN is the number of matches returned when no count is given.
	DefaultTopN = 3

	// RecommendTopN is the number of candidates shown in a recommendation.
	RecommendTopN = 5
)

// Errors returned by Assign. AssignTask reports all of them as false.
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAlreadyAssigned = errors.New("task already assigned")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrCapacityExceeded    = errors.New("employee does not have enough capacity")
	ErrNoCandidate         = errors.New("no suitable employee found")

	// ErrEmployeeBusy is returned by ReplaceEmployee when the registered
	// employee still holds assigned tasks.
	ErrEmployeeBusy = errors.New("employee has assigned tasks")
)

// Rejection reasons recorded on assignment.rejected events.
const (
	ReasonTaskNotFound     = "task_not_found"
	ReasonAlreadyAssigned  = "already_assigned"
	ReasonEmployeeNotFound = "employee_not_found"
	ReasonCapacityExceeded = "capacity_exceeded"
	ReasonNoCandidate      = "no_candidate"
)

// Match is a feasible candidate for a task with its assignment probability.
type Match struct {
	Employee    *models.Employee
	Probability float64
}

// Recommendation is a ranked match with the sub-scores behind it.
type Recommendation struct {
	Rank      int
	Employee  *models.Employee
	Breakdown ScoreBreakdown
}

// Assignment describes a committed task assignment.
type Assignment struct {
	TaskID      string  `json:"task_id"`
	EmployeeID  string  `json:"employee_id"`
	Hours       float64 `json:"hours"`
	Auto        bool    `json:"auto"`
	Probability float64 `json:"probability"`
}

// AssignmentOutcome is the result of one auto-assignment in AutoAssignAll.
type AssignmentOutcome struct {
	TaskID     string
	Assignment *Assignment
	Err        error
}

// AssignmentEngine owns the employee and task registries and matches tasks
// to employees. Records returned from lookups and rankings are copies; the
// registered records are only mutated by Assign and AssignTask.
type AssignmentEngine interface {
	AddEmployee(e *models.Employee)
	AddTask(t *models.Task)
	ReplaceEmployee(e *models.Employee) error
	ReplaceTask(t *models.Task) error
	Employee(id string) (*models.Employee, bool)
	Task(id string) (*models.Task, bool)
	Employees() []*models.Employee
	Tasks() []*models.Task
	FindBestMatches(t *models.Task, topN int) []Match
	CalculateSkillSimilarity(e *models.Employee, t *models.Task) float64
	AssignTask(taskID, employeeID string) bool
	Assign(taskID, employeeID string) (*Assignment, error)
	Recommend(taskID string, topN int) ([]Recommendation, error)
	AutoAssignAll() []AssignmentOutcome
}

// assignmentEngine implements AssignmentEngine with in-memory registries.
// mu serializes the capacity check and the commit of every assignment.
type assignmentEngine struct {
	mu        sync.Mutex
	employees map[string]*models.Employee
	tasks     map[string]*models.Task
	logger    EventLogger
}

// NewAssignmentEngine creates an empty engine. logger may be nil.
func NewAssignmentEngine(logger EventLogger) AssignmentEngine {
	return &assignmentEngine{
		employees: make(map[string]*models.Employee),
		tasks:     make(map[string]*models.Task),
		logger:    logger,
	}
}

// AddEmployee registers e, replacing any employee with the same ID.
func (en *assignmentEngine) AddEmployee(e *models.Employee) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.employees[e.ID] = e
}

// AddTask registers t, replacing any task with the same ID.
func (en *assignmentEngine) AddTask(t *models.Task) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.tasks[t.ID] = t
}

// ReplaceEmployee registers a copy of e unless an employee with the same ID
// holds assigned tasks, in which case it returns ErrEmployeeBusy. The check
// and the write happen under one lock.
func (en *assignmentEngine) ReplaceEmployee(e *models.Employee) error {
	en.mu.Lock()
	defer en.mu.Unlock()
	if existing, ok := en.employees[e.ID]; ok && len(existing.AssignedTasks) > 0 {
		return fmt.Errorf("replacing %s: %w: %d task(s)", e.ID, ErrEmployeeBusy, len(existing.AssignedTasks))
	}
	en.employees[e.ID] = e.Clone()
	return nil
}

// ReplaceTask registers a copy of t unless a task with the same ID is already
// assigned, in which case it returns ErrTaskAlreadyAssigned.
func (en *assignmentEngine) ReplaceTask(t *models.Task) error {
	en.mu.Lock()
	defer en.mu.Unlock()
	if existing, ok := en.tasks[t.ID]; ok && existing.IsAssigned() {
		return fmt.Errorf("replacing %s: %w to %s", t.ID, ErrTaskAlreadyAssigned, existing.AssignedTo)
	}
	en.tasks[t.ID] = t.Clone()
	return nil
}

func (en *assignmentEngine) Employee(id string) (*models.Employee, bool) {
	en.mu.Lock()
	defer en.mu.Unlock()
	e, ok := en.employees[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (en *assignmentEngine) Task(id string) (*models.Task, bool) {
	en.mu.Lock()
	defer en.mu.Unlock()
	t, ok := en.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Employees returns copies of all registered employees sorted by ID.
func (en *assignmentEngine) Employees() []*models.Employee {
	en.mu.Lock()
	defer en.mu.Unlock()
	list := make([]*models.Employee, 0, len(en.employees))
	for _, e := range en.sortedEmployees() {
		list = append(list, e.Clone())
	}
	return list
}

// Tasks returns copies of all registered tasks sorted by ID.
func (en *assignmentEngine) Tasks() []*models.Task {
	en.mu.Lock()
	defer en.mu.Unlock()
	list := make([]*models.Task, 0, len(en.tasks))
	for _, t := range en.sortedTasks() {
		list = append(list, t.Clone())
	}
	return list
}

// FindBestMatches ranks every registered employee for t by assignment
// probability, dropping capacity-infeasible ones. Equal probabilities are
// ordered by employee ID. A topN of zero or less uses DefaultTopN.
func (en *assignmentEngine) FindBestMatches(t *models.Task, topN int) []Match {
	en.mu.Lock()
	defer en.mu.Unlock()

	matches := en.rankLocked(t, topN)
	en.logEvent(EventMatchesRequested, map[string]any{
		"task_id":    t.ID,
		"top_n":      topN,
		"candidates": len(matches),
	})

	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{Employee: m.Employee.Clone(), Probability: m.Probability}
	}
	return out
}

func (en *assignmentEngine) CalculateSkillSimilarity(e *models.Employee, t *models.Task) float64 {
	return SkillSimilarity(e, t)
}

// AssignTask commits taskID to employeeID, or to the best match when
// employeeID is empty. It reports whether the assignment was made.
func (en *assignmentEngine) AssignTask(taskID, employeeID string) bool {
	_, err := en.Assign(taskID, employeeID)
	return err == nil
}

// Assign commits taskID to employeeID, or to the best match when employeeID
// is empty. Task and employee are updated together or not at all.
func (en *assignmentEngine) Assign(taskID, employeeID string) (*Assignment, error) {
	en.mu.Lock()
	defer en.mu.Unlock()

	a, err := en.assignLocked(taskID, employeeID)
	if err != nil {
		en.logEvent(EventAssignmentRejected, map[string]any{
			"task_id":     taskID,
			"employee_id": employeeID,
			"reason":      rejectionReason(err),
			"error":       err.Error(),
		})
		return nil, err
	}
	return a, nil
}

// Recommend ranks candidates for a registered task along with their score
// breakdowns. A topN of zero or less uses RecommendTopN.
func (en *assignmentEngine) Recommend(taskID string, topN int) ([]Recommendation, error) {
	if topN <= 0 {
		topN = RecommendTopN
	}

	en.mu.Lock()
	defer en.mu.Unlock()

	t, ok := en.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("recommending for %s: %w", taskID, ErrTaskNotFound)
	}

	matches := en.rankLocked(t, topN)
	en.logEvent(EventMatchesRequested, map[string]any{
		"task_id":    t.ID,
		"top_n":      topN,
		"candidates": len(matches),
	})

	recs := make([]Recommendation, len(matches))
	for i, m := range matches {
		recs[i] = Recommendation{
			Rank:      i + 1,
			Employee:  m.Employee.Clone(),
			Breakdown: Breakdown(m.Employee, t),
		}
	}
	return recs, nil
}

// AutoAssignAll auto-assigns every unassigned task in task ID order.
func (en *assignmentEngine) AutoAssignAll() []AssignmentOutcome {
	en.mu.Lock()
	var pending []string
	for _, t := range en.sortedTasks() {
		if !t.IsAssigned() {
			pending = append(pending, t.ID)
		}
	}
	en.mu.Unlock()

	outcomes := make([]AssignmentOutcome, 0, len(pending))
	for _, id := range pending {
		a, err := en.Assign(id, "")
		outcomes = append(outcomes, AssignmentOutcome{TaskID: id, Assignment: a, Err: err})
	}
	return outcomes
}

func (en *assignmentEngine) assignLocked(taskID, employeeID string) (*Assignment, error) {
	t, ok := en.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("assigning %s: %w", taskID, ErrTaskNotFound)
	}
	if t.IsAssigned() {
		return nil, fmt.Errorf("assigning %s: %w to %s", taskID, ErrTaskAlreadyAssigned, t.AssignedTo)
	}

	var (
		e           *models.Employee
		probability float64
	)
	auto := employeeID == ""
	if auto {
		matches := en.rankLocked(t, DefaultTopN)
		if len(matches) == 0 {
			return nil, fmt.Errorf("assigning %s: %w", taskID, ErrNoCandidate)
		}
		e = matches[0].Employee
		probability = matches[0].Probability
	} else {
		e, ok = en.employees[employeeID]
		if !ok {
			return nil, fmt.Errorf("assigning %s: %w: %s", taskID, ErrEmployeeNotFound, employeeID)
		}
		if !e.CanAccommodate(t.EstimatedHours) {
			return nil, fmt.Errorf("assigning %s: %w: %s has %g of %g hours free",
				taskID, ErrCapacityExceeded, e.ID, e.RemainingHours(), t.EstimatedHours)
		}
		probability = AssignmentProbability(e, t)
	}

	t.AssignedTo = e.ID
	e.CurrentWorkload += t.EstimatedHours
	e.AssignedTasks = append(e.AssignedTasks, t.ID)

	mode := "manual"
	if auto {
		mode = "auto"
	}
	en.logEvent(EventAssignmentCommitted, map[string]any{
		"task_id":     t.ID,
		"employee_id": e.ID,
		"hours":       t.EstimatedHours,
		"priority":    t.Priority.String(),
		"mode":        mode,
		"probability": probability,
		"utilization": math.Round(e.Utilization()*10000) / 100,
	})

	return &Assignment{
		TaskID:      t.ID,
		EmployeeID:  e.ID,
		Hours:       t.EstimatedHours,
		Auto:        auto,
		Probability: probability,
	}, nil
}

// rankLocked returns registered records, not copies; callers must clone
// before handing them out.
func (en *assignmentEngine) rankLocked(t *models.Task, topN int) []Match {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var matches []Match
	for _, e := range en.sortedEmployees() {
		p := AssignmentProbability(e, t)
		if p > 0 {
			matches = append(matches, Match{Employee: e, Probability: p})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Probability > matches[j].Probability
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

func (en *assignmentEngine) sortedEmployees() []*models.Employee {
	list := make([]*models.Employee, 0, len(en.employees))
	for _, e := range en.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (en *assignmentEngine) sortedTasks() []*models.Task {
	list := make([]*models.Task, 0, len(en.tasks))
	for _, t := range en.tasks {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// logEvent emits an event if an EventLogger is configured.
func (en *assignmentEngine) logEvent(eventType string, data map[string]any) {
	if en.logger != nil {
		_ = en.logger.LogEvent(eventType, data)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return ReasonTaskNotFound
	case errors.Is(err, ErrTaskAlreadyAssigned):
		return ReasonAlreadyAssigned
	case errors.Is(err, ErrEmployeeNotFound):
		return ReasonEmployeeNotFound
	case errors.Is(err, ErrCapacityExceeded):
		return ReasonCapacityExceeded
	case errors.Is(err, ErrNoCandidate):
		return ReasonNoCandidate
	default:
		return "unknown"
	}
}
