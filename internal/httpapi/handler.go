// Package httpapi serves the assignment engine over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// maxBodyBytes caps request bodies on the POST routes.
const maxBodyBytes = 1 << 20

// Options holds the defaults applied to records created over HTTP.
type Options struct {
	TopN                     int
	DefaultMaxWorkloadHours  float64
	DefaultPerformanceRating float64
}

type handler struct {
	engine core.AssignmentEngine
	opts   Options
}

// NewHandler returns the HTTP routes for engine.
func NewHandler(engine core.AssignmentEngine, opts Options) http.Handler {
	if opts.TopN <= 0 {
		opts.TopN = core.DefaultTopN
	}
	if opts.DefaultMaxWorkloadHours <= 0 {
		opts.DefaultMaxWorkloadHours = models.DefaultMaxWorkloadHours
	}
	if opts.DefaultPerformanceRating <= 0 {
		opts.DefaultPerformanceRating = models.DefaultPerformanceRating
	}
	h := &handler{engine: engine, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/summary", h.getSummary)

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.listEmployees)
		r.Post("/", h.putEmployee)
		r.Get("/{employeeID}", h.getEmployee)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.listTasks)
		r.Post("/", h.putTask)
		r.Get("/{taskID}", h.getTask)
		r.Get("/{taskID}/matches", h.getMatches)
		r.Post("/{taskID}/assign", h.assignTask)
	})

	return r
}

// --- Request and response bodies ---

type employeeRequest struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	MaxWorkloadHours  float64        `json:"max_workload_hours"`
	PerformanceRating float64        `json:"performance_rating"`
	Skills            []models.Skill `json:"skills"`
}

type employeeView struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Skills             []models.Skill `json:"skills"`
	MaxWorkloadHours   float64        `json:"max_workload_hours"`
	CurrentWorkload    float64        `json:"current_workload"`
	UtilizationPercent float64        `json:"utilization_percent"`
	PerformanceRating  float64        `json:"performance_rating"`
	AssignedTasks      []string       `json:"assigned_tasks"`
}

type matchView struct {
	Rank      int                 `json:"rank"`
	Employee  employeeView        `json:"employee"`
	Breakdown core.ScoreBreakdown `json:"breakdown"`
}

type assignRequest struct {
	EmployeeID string `json:"employee_id"`
}

type errorBody struct {
	Error string `json:"error"`
}

// --- Handlers ---

func (h *handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees := h.engine.Employees()
	views := make([]employeeView, len(employees))
	for i, e := range employees {
		views[i] = toEmployeeView(e)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	e, ok := h.engine.Employee(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", core.ErrEmployeeNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeView(e))
}

func (h *handler) putEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	e := models.NewEmployee(req.ID, req.Name, req.Skills, h.opts.DefaultMaxWorkloadHours)
	if req.MaxWorkloadHours != 0 {
		e.MaxWorkloadHours = req.MaxWorkloadHours
	}
	e.PerformanceRating = h.opts.DefaultPerformanceRating
	if req.PerformanceRating != 0 {
		e.PerformanceRating = req.PerformanceRating
	}
	if err := e.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	// The engine stores its own copy, so e stays private to this request.
	if err := h.engine.ReplaceEmployee(e); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeView(e))
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.engine.Tasks()
	if r.URL.Query().Get("unassigned") == "true" {
		open := tasks[:0]
		for _, t := range tasks {
			if !t.IsAssigned() {
				open = append(open, t)
			}
		}
		tasks = open
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *handler) getTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")
	t, ok := h.engine.Task(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", core.ErrTaskNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) putTask(w http.ResponseWriter, r *http.Request) {
	var req models.Task
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	t := models.NewTask(req.ID, req.Name, req.RequiredSkills, req.Priority, req.EstimatedHours, req.DeadlineDays)
	if err := t.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	if err := h.engine.ReplaceTask(t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *handler) getMatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")

	topN := h.opts.TopN
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("top must be a positive integer, got %q", raw)})
			return
		}
		topN = n
	}

	recs, err := h.engine.Recommend(id, topN)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]matchView, len(recs))
	for i, rec := range recs {
		views[i] = matchView{
			Rank:      rec.Rank,
			Employee:  toEmployeeView(rec.Employee),
			Breakdown: rec.Breakdown,
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) assignTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskID")

	var req assignRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
	}

	a, err := h.engine.Assign(id, strings.TrimSpace(req.EmployeeID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Summarize(h.engine))
}

// --- Helpers ---

func toEmployeeView(e *models.Employee) employeeView {
	return employeeView{
		ID:                 e.ID,
		Name:               e.Name,
		Skills:             e.SkillList(),
		MaxWorkloadHours:   e.MaxWorkloadHours,
		CurrentWorkload:    e.CurrentWorkload,
		UtilizationPercent: e.Utilization() * 100,
		PerformanceRating:  e.PerformanceRating,
		AssignedTasks:      append([]string{}, e.AssignedTasks...),
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	return nil
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrTaskNotFound), errors.Is(err, core.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTaskAlreadyAssigned),
		errors.Is(err, core.ErrCapacityExceeded),
		errors.Is(err, core.ErrNoCandidate),
		errors.Is(err, core.ErrEmployeeBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
