// Package mcp exposes the assignment engine as MCP (Model Context Protocol)
// tools so AI assistants can inspect the roster, rank candidates and commit
// assignments.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/internal/observability"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// Server wraps the engine and observability services as MCP tools.
type Server struct {
	server      *gomcp.Server
	engine      core.AssignmentEngine
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over the given engine.
// metricsCalc and alertEngine may be nil if the event log is disabled.
func NewServer(engine core.AssignmentEngine, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		engine:      engine,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "taskmatch", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type skillOutput struct {
	Name            string  `json:"name"`
	Level           string  `json:"level"`
	ExperienceYears float64 `json:"experience_years"`
}

type employeeOutput struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Skills             []skillOutput `json:"skills"`
	MaxWorkloadHours   float64       `json:"max_workload_hours"`
	CurrentWorkload    float64       `json:"current_workload"`
	UtilizationPercent float64       `json:"utilization_percent"`
	PerformanceRating  float64       `json:"performance_rating"`
	AssignedTasks      []string      `json:"assigned_tasks"`
}

type listEmployeesInput struct{}

type listEmployeesOutput struct {
	Employees []employeeOutput `json:"employees"`
	Count     int              `json:"count"`
}

type taskOutput struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	RequiredSkills map[string]string `json:"required_skills"`
	Priority       string            `json:"priority"`
	EstimatedHours float64           `json:"estimated_hours"`
	DeadlineDays   int               `json:"deadline_days"`
	AssignedTo     string            `json:"assigned_to,omitempty"`
	IsCompleted    bool              `json:"is_completed"`
}

type listTasksInput struct {
	UnassignedOnly bool `json:"unassigned_only,omitempty" jsonschema:"only list tasks that have not been assigned yet"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type findBestMatchesInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task to find candidates for (e.g. T001)"`
	TopN   int    `json:"top_n,omitempty" jsonschema:"maximum number of candidates to return. Defaults to 3."`
}

type matchOutput struct {
	Rank            int     `json:"rank"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name"`
	Probability     float64 `json:"probability"`
	SkillSimilarity float64 `json:"skill_similarity"`
	Availability    float64 `json:"availability"`
	Experience      float64 `json:"experience"`
	PriorityMatch   float64 `json:"priority_match"`
}

type findBestMatchesOutput struct {
	TaskID  string        `json:"task_id"`
	Matches []matchOutput `json:"matches"`
	Count   int           `json:"count"`
}

type skillSimilarityInput struct {
	EmployeeID string `json:"employee_id" jsonschema:"required,the employee to score"`
	TaskID     string `json:"task_id" jsonschema:"required,the task to score against"`
}

type skillSimilarityOutput struct {
	EmployeeID      string  `json:"employee_id"`
	TaskID          string  `json:"task_id"`
	SkillSimilarity float64 `json:"skill_similarity"`
	Probability     float64 `json:"probability"`
	Feasible        bool    `json:"feasible"`
}

type assignTaskInput struct {
	TaskID     string `json:"task_id" jsonschema:"required,the task to assign"`
	EmployeeID string `json:"employee_id,omitempty" jsonschema:"the employee to assign to. Leave empty to pick the best match."`
}

type assignTaskOutput struct {
	TaskID      string  `json:"task_id"`
	EmployeeID  string  `json:"employee_id"`
	Hours       float64 `json:"hours"`
	Auto        bool    `json:"auto"`
	Probability float64 `json:"probability"`
	Message     string  `json:"message"`
}

type getSummaryInput struct{}

type summaryOutput struct {
	TotalEmployees       int                     `json:"total_employees"`
	TotalTasks           int                     `json:"total_tasks"`
	AssignedTasks        int                     `json:"assigned_tasks"`
	UnassignedTasks      int                     `json:"unassigned_tasks"`
	CompletedTasks       int                     `json:"completed_tasks"`
	Workloads            []core.EmployeeWorkload `json:"workloads"`
	SkillDistribution    map[string]int          `json:"skill_distribution"`
	PriorityDistribution map[string]int          `json:"priority_distribution"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	MatchRequests         int            `json:"match_requests"`
	AssignmentsCommitted  int            `json:"assignments_committed"`
	AutoAssignments       int            `json:"auto_assignments"`
	ManualAssignments     int            `json:"manual_assignments"`
	HoursAssigned         float64        `json:"hours_assigned"`
	AssignmentsByPriority map[string]int `json:"assignments_by_priority"`
	AssignmentsByEmployee map[string]int `json:"assignments_by_employee"`
	Rejections            int            `json:"rejections"`
	RejectionsByReason    map[string]int `json:"rejections_by_reason"`
	EventCount            int            `json:"event_count"`
	OldestEvent           string         `json:"oldest_event,omitempty"`
	NewestEvent           string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_employees",
		Description: "List all employees with their skills, capacity, current workload and assigned tasks.",
	}, s.handleListEmployees)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with their required skills, priority, estimated hours and assignee.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "find_best_matches",
		Description: "Rank the employees who can take a task by assignment probability, with the sub-scores behind each rank. Employees without enough remaining capacity are excluded.",
	}, s.handleFindBestMatches)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_skill_similarity",
		Description: "Score how well one employee's skills meet a task's required skill levels (0 to 1), along with the full assignment probability.",
	}, s.handleSkillSimilarity)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "assign_task",
		Description: "Assign a task to an employee, or to the best match when employee_id is omitted. Fails if the task is already assigned or the employee lacks capacity.",
	}, s.handleAssignTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_summary",
		Description: "Get dashboard figures: task counts, per-employee workload and utilization, skill and priority distributions.",
	}, s.handleGetSummary)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get assignment metrics from the event log: match requests, committed assignments, hours, and rejections by reason.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (over-utilized employees, unassignable tasks, frequent rejections).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListEmployees(_ context.Context, _ *gomcp.CallToolRequest, _ listEmployeesInput) (*gomcp.CallToolResult, listEmployeesOutput, error) {
	employees := s.engine.Employees()
	out := listEmployeesOutput{
		Employees: make([]employeeOutput, len(employees)),
		Count:     len(employees),
	}
	for i, e := range employees {
		out.Employees[i] = employeeToOutput(e)
	}
	return nil, out, nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	out := listTasksOutput{Tasks: []taskOutput{}}
	for _, t := range s.engine.Tasks() {
		if input.UnassignedOnly && t.IsAssigned() {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(t))
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleFindBestMatches(_ context.Context, _ *gomcp.CallToolRequest, input findBestMatchesInput) (*gomcp.CallToolResult, findBestMatchesOutput, error) {
	empty := findBestMatchesOutput{Matches: []matchOutput{}}
	if input.TaskID == "" {
		return errorResult("task_id is required"), empty, nil
	}
	if input.TopN < 0 {
		return errorResult(fmt.Sprintf("top_n must not be negative, got %d", input.TopN)), empty, nil
	}
	topN := input.TopN
	if topN == 0 {
		topN = core.DefaultTopN
	}

	recs, err := s.engine.Recommend(input.TaskID, topN)
	if err != nil {
		return errorResult(fmt.Sprintf("finding matches for %s: %s", input.TaskID, err)), empty, nil
	}

	out := findBestMatchesOutput{
		TaskID:  input.TaskID,
		Matches: make([]matchOutput, len(recs)),
		Count:   len(recs),
	}
	for i, r := range recs {
		out.Matches[i] = matchOutput{
			Rank:            r.Rank,
			EmployeeID:      r.Employee.ID,
			EmployeeName:    r.Employee.Name,
			Probability:     r.Breakdown.Probability,
			SkillSimilarity: r.Breakdown.SkillSimilarity,
			Availability:    r.Breakdown.Availability,
			Experience:      r.Breakdown.Experience,
			PriorityMatch:   r.Breakdown.PriorityMatch,
		}
	}
	return nil, out, nil
}

func (s *Server) handleSkillSimilarity(_ context.Context, _ *gomcp.CallToolRequest, input skillSimilarityInput) (*gomcp.CallToolResult, skillSimilarityOutput, error) {
	if input.EmployeeID == "" || input.TaskID == "" {
		return errorResult("employee_id and task_id are required"), skillSimilarityOutput{}, nil
	}
	e, ok := s.engine.Employee(input.EmployeeID)
	if !ok {
		return errorResult(fmt.Sprintf("employee %s not found", input.EmployeeID)), skillSimilarityOutput{}, nil
	}
	t, ok := s.engine.Task(input.TaskID)
	if !ok {
		return errorResult(fmt.Sprintf("task %s not found", input.TaskID)), skillSimilarityOutput{}, nil
	}

	b := core.Breakdown(e, t)
	return nil, skillSimilarityOutput{
		EmployeeID:      e.ID,
		TaskID:          t.ID,
		SkillSimilarity: s.engine.CalculateSkillSimilarity(e, t),
		Probability:     b.Probability,
		Feasible:        b.Feasible,
	}, nil
}

func (s *Server) handleAssignTask(_ context.Context, _ *gomcp.CallToolRequest, input assignTaskInput) (*gomcp.CallToolResult, assignTaskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), assignTaskOutput{}, nil
	}

	a, err := s.engine.Assign(input.TaskID, input.EmployeeID)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, core.ErrNoCandidate) {
			msg += " (every employee lacks the remaining capacity)"
		}
		return errorResult(msg), assignTaskOutput{}, nil
	}

	mode := "manually"
	if a.Auto {
		mode = "automatically"
	}
	return nil, assignTaskOutput{
		TaskID:      a.TaskID,
		EmployeeID:  a.EmployeeID,
		Hours:       a.Hours,
		Auto:        a.Auto,
		Probability: a.Probability,
		Message:     fmt.Sprintf("task %s %s assigned to %s", a.TaskID, mode, a.EmployeeID),
	}, nil
}

func (s *Server) handleGetSummary(_ context.Context, _ *gomcp.CallToolRequest, _ getSummaryInput) (*gomcp.CallToolResult, summaryOutput, error) {
	sum := core.Summarize(s.engine)
	out := summaryOutput{
		TotalEmployees:       sum.TotalEmployees,
		TotalTasks:           sum.TotalTasks,
		AssignedTasks:        sum.AssignedTasks,
		UnassignedTasks:      sum.UnassignedTasks,
		CompletedTasks:       sum.CompletedTasks,
		Workloads:            sum.Workloads,
		SkillDistribution:    sum.SkillDistribution,
		PriorityDistribution: sum.PriorityDistribution,
	}
	for i := range out.Workloads {
		if out.Workloads[i].AssignedTasks == nil {
			out.Workloads[i].AssignedTasks = []string{}
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	m, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		MatchRequests:         m.MatchRequests,
		AssignmentsCommitted:  m.AssignmentsCommitted,
		AutoAssignments:       m.AutoAssignments,
		ManualAssignments:     m.ManualAssignments,
		HoursAssigned:         m.HoursAssigned,
		AssignmentsByPriority: nonNil(m.AssignmentsByPriority),
		AssignmentsByEmployee: nonNil(m.AssignmentsByEmployee),
		Rejections:            m.Rejections,
		RejectionsByReason:    nonNil(m.RejectionsByReason),
		EventCount:            m.EventCount,
	}
	if m.OldestEvent != nil {
		out.OldestEvent = m.OldestEvent.Format(time.RFC3339)
	}
	if m.NewestEvent != nil {
		out.NewestEvent = m.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (event log may be disabled)"), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func employeeToOutput(e *models.Employee) employeeOutput {
	out := employeeOutput{
		ID:                 e.ID,
		Name:               e.Name,
		Skills:             []skillOutput{},
		MaxWorkloadHours:   e.MaxWorkloadHours,
		CurrentWorkload:    e.CurrentWorkload,
		UtilizationPercent: e.Utilization() * 100,
		PerformanceRating:  e.PerformanceRating,
		AssignedTasks:      append([]string{}, e.AssignedTasks...),
	}
	for _, s := range e.SkillList() {
		out.Skills = append(out.Skills, skillOutput{
			Name:            s.Name,
			Level:           s.Level.String(),
			ExperienceYears: s.ExperienceYears,
		})
	}
	return out
}

func taskToOutput(t *models.Task) taskOutput {
	out := taskOutput{
		ID:             t.ID,
		Name:           t.Name,
		RequiredSkills: make(map[string]string, len(t.RequiredSkills)),
		Priority:       t.Priority.String(),
		EstimatedHours: t.EstimatedHours,
		DeadlineDays:   t.DeadlineDays,
		AssignedTo:     t.AssignedTo,
		IsCompleted:    t.IsCompleted,
	}
	for name, level := range t.RequiredSkills {
		out.RequiredSkills[name] = level.String()
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		AssignmentsByPriority: make(map[string]int),
		AssignmentsByEmployee: make(map[string]int),
		RejectionsByReason:    make(map[string]int),
	}
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return make(map[string]int)
	}
	return m
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || num < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	switch s[len(s)-1] {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", s[len(s)-1:])
	}
}
