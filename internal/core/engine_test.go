package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// fakeEventLogger records logged events.
type fakeEventLogger struct {
	mu     sync.Mutex
	events []fakeEvent
}

type fakeEvent struct {
	eventType string
	data      map[string]any
}

func (l *fakeEventLogger) LogEvent(eventType string, data map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fakeEvent{eventType: eventType, data: data})
	return nil
}

func (l *fakeEventLogger) ofType(eventType string) []fakeEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []fakeEvent
	for _, e := range l.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// newDemoEngine registers the three employees and three tasks of the demo
// session.
func newDemoEngine(logger EventLogger) AssignmentEngine {
	en := NewAssignmentEngine(logger)

	alice := models.NewEmployee("E001", "Alice Johnson", []models.Skill{
		{Name: "Python", Level: models.Expert, ExperienceYears: 5},
		{Name: "Machine Learning", Level: models.Advanced, ExperienceYears: 3},
		{Name: "Data Analysis", Level: models.Expert, ExperienceYears: 4},
	}, 40)
	alice.PerformanceRating = 0.95

	bob := models.NewEmployee("E002", "Bob Smith", []models.Skill{
		{Name: "JavaScript", Level: models.Expert, ExperienceYears: 6},
		{Name: "React", Level: models.Advanced, ExperienceYears: 4},
		{Name: "Node.js", Level: models.Intermediate, ExperienceYears: 2},
		{Name: "Python", Level: models.Intermediate, ExperienceYears: 2},
	}, 40)
	bob.PerformanceRating = 0.85

	carol := models.NewEmployee("E003", "Carol Wilson", []models.Skill{
		{Name: "Project Management", Level: models.Expert, ExperienceYears: 8},
		{Name: "Data Analysis", Level: models.Intermediate, ExperienceYears: 3},
		{Name: "Python", Level: models.Beginner, ExperienceYears: 1},
	}, 40)
	carol.PerformanceRating = 0.90

	en.AddEmployee(alice)
	en.AddEmployee(bob)
	en.AddEmployee(carol)

	en.AddTask(models.NewTask("T001", "Develop ML Model",
		map[string]models.SkillLevel{"Python": models.Advanced, "Machine Learning": models.Advanced},
		models.PriorityHigh, 20, 14))
	en.AddTask(models.NewTask("T002", "Build Web Dashboard",
		map[string]models.SkillLevel{"JavaScript": models.Advanced, "React": models.Intermediate},
		models.PriorityMedium, 15, 10))
	en.AddTask(models.NewTask("T003", "Data Analysis Report",
		map[string]models.SkillLevel{"Data Analysis": models.Intermediate, "Python": models.Intermediate},
		models.PriorityLow, 10, 7))

	return en
}

func TestAddEmployee_LastWriteWins(t *testing.T) {
	en := NewAssignmentEngine(nil)
	en.AddEmployee(models.NewEmployee("E1", "first", nil, 40))
	en.AddEmployee(models.NewEmployee("E1", "second", nil, 30))

	if n := len(en.Employees()); n != 1 {
		t.Fatalf("len(Employees()) = %d, want 1", n)
	}
	e, ok := en.Employee("E1")
	if !ok {
		t.Fatal("expected E1 to be registered")
	}
	if e.Name != "second" || e.MaxWorkloadHours != 30 {
		t.Errorf("Employee(E1) = %+v, want the second registration", e)
	}
}

func TestReplaceEmployee(t *testing.T) {
	en := NewAssignmentEngine(nil)
	en.AddEmployee(models.NewEmployee("E1", "first", nil, 40))
	en.AddTask(models.NewTask("T1", "t", nil, models.PriorityLow, 8, 3))

	idle := models.NewEmployee("E1", "idle swap", nil, 30)
	if err := en.ReplaceEmployee(idle); err != nil {
		t.Fatalf("ReplaceEmployee(idle) error = %v", err)
	}
	idle.Name = "mutated after register"
	if e, _ := en.Employee("E1"); e.Name != "idle swap" {
		t.Errorf("Employee(E1).Name = %q, want %q", e.Name, "idle swap")
	}

	if _, err := en.Assign("T1", "E1"); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	err := en.ReplaceEmployee(models.NewEmployee("E1", "busy swap", nil, 40))
	if !errors.Is(err, ErrEmployeeBusy) {
		t.Fatalf("ReplaceEmployee(busy) error = %v, want ErrEmployeeBusy", err)
	}
	e, _ := en.Employee("E1")
	if e.Name != "idle swap" || e.CurrentWorkload != 8 || len(e.AssignedTasks) != 1 {
		t.Errorf("Employee(E1) = %+v, want unchanged busy record", e)
	}
}

func TestReplaceTask(t *testing.T) {
	en := NewAssignmentEngine(nil)
	en.AddEmployee(models.NewEmployee("E1", "e", nil, 40))
	en.AddTask(models.NewTask("T1", "first", nil, models.PriorityLow, 8, 3))

	if err := en.ReplaceTask(models.NewTask("T1", "second", nil, models.PriorityHigh, 10, 3)); err != nil {
		t.Fatalf("ReplaceTask(unassigned) error = %v", err)
	}
	if _, err := en.Assign("T1", "E1"); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	err := en.ReplaceTask(models.NewTask("T1", "third", nil, models.PriorityLow, 1, 3))
	if !errors.Is(err, ErrTaskAlreadyAssigned) {
		t.Fatalf("ReplaceTask(assigned) error = %v, want ErrTaskAlreadyAssigned", err)
	}
	task, _ := en.Task("T1")
	if task.Name != "second" || task.AssignedTo != "E1" {
		t.Errorf("Task(T1) = %+v, want the assigned second registration", task)
	}
}

func TestEmployees_ReturnsCopiesSortedByID(t *testing.T) {
	en := NewAssignmentEngine(nil)
	en.AddEmployee(models.NewEmployee("E3", "c", nil, 40))
	en.AddEmployee(models.NewEmployee("E1", "a", nil, 40))
	en.AddEmployee(models.NewEmployee("E2", "b", nil, 40))

	list := en.Employees()
	for i, want := range []string{"E1", "E2", "E3"} {
		if list[i].ID != want {
			t.Errorf("Employees()[%d].ID = %s, want %s", i, list[i].ID, want)
		}
	}

	list[0].CurrentWorkload = 99
	e, _ := en.Employee("E1")
	if e.CurrentWorkload != 0 {
		t.Errorf("mutating a returned employee changed the registry: workload = %v", e.CurrentWorkload)
	}
}

func TestFindBestMatches_DemoOrdering(t *testing.T) {
	en := newDemoEngine(nil)
	task, _ := en.Task("T001")

	matches := en.FindBestMatches(task, 5)
	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(matches))
	}

	want := []string{"E001", "E002", "E003"}
	for i, id := range want {
		if matches[i].Employee.ID != id {
			t.Errorf("matches[%d] = %s, want %s", i, matches[i].Employee.ID, id)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Probability > matches[i-1].Probability {
			t.Errorf("matches not sorted descending at %d: %v > %v", i, matches[i].Probability, matches[i-1].Probability)
		}
	}
}

func TestFindBestMatches_ExcludesInfeasible(t *testing.T) {
	// Register in an order unrelated to the expected ranking.
	for _, order := range [][]string{{"A", "B", "C"}, {"C", "B", "A"}, {"B", "C", "A"}} {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			en := NewAssignmentEngine(nil)
			employees := map[string]*models.Employee{
				"A": models.NewEmployee("A", "strong", []models.Skill{{Name: "Go", Level: models.Expert, ExperienceYears: 8}}, 40),
				"B": models.NewEmployee("B", "small", []models.Skill{{Name: "Go", Level: models.Expert, ExperienceYears: 8}}, 20),
				"C": models.NewEmployee("C", "weak", []models.Skill{{Name: "Go", Level: models.Beginner, ExperienceYears: 1}}, 40),
			}
			for _, id := range order {
				en.AddEmployee(employees[id])
			}

			task := models.NewTask("T1", "service", map[string]models.SkillLevel{"Go": models.Advanced}, models.PriorityHigh, 30, 5)
			matches := en.FindBestMatches(task, 3)

			if len(matches) != 2 {
				t.Fatalf("len(matches) = %d, want 2", len(matches))
			}
			if matches[0].Employee.ID != "A" || matches[1].Employee.ID != "C" {
				t.Errorf("matches = [%s %s], want [A C]", matches[0].Employee.ID, matches[1].Employee.ID)
			}
		})
	}
}

func TestFindBestMatches_TiesOrderedByID(t *testing.T) {
	en := NewAssignmentEngine(nil)
	for _, id := range []string{"E9", "E2", "E5"} {
		en.AddEmployee(models.NewEmployee(id, "same", nil, 40))
	}

	task := models.NewTask("T1", "task", nil, models.PriorityLow, 4, 1)
	matches := en.FindBestMatches(task, 3)

	want := []string{"E2", "E5", "E9"}
	for i, id := range want {
		if matches[i].Employee.ID != id {
			t.Errorf("matches[%d] = %s, want %s", i, matches[i].Employee.ID, id)
		}
	}
}

func TestFindBestMatches_TopN(t *testing.T) {
	en := newDemoEngine(nil)
	task, _ := en.Task("T003")

	if n := len(en.FindBestMatches(task, 1)); n != 1 {
		t.Errorf("top 1: got %d matches", n)
	}
	if n := len(en.FindBestMatches(task, 0)); n != DefaultTopN {
		t.Errorf("top 0: got %d matches, want default %d", n, DefaultTopN)
	}
	if n := len(en.FindBestMatches(task, 10)); n != 3 {
		t.Errorf("top 10: got %d matches, want all 3 feasible", n)
	}
}

func TestFindBestMatches_EmptyRegistry(t *testing.T) {
	en := NewAssignmentEngine(nil)
	task := models.NewTask("T1", "task", nil, models.PriorityLow, 4, 1)

	if matches := en.FindBestMatches(task, 3); len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestAssignTask_AutoCommitsTopMatch(t *testing.T) {
	logger := &fakeEventLogger{}
	en := newDemoEngine(logger)

	if !en.AssignTask("T001", "") {
		t.Fatal("AssignTask(T001) = false, want true")
	}

	task, _ := en.Task("T001")
	if task.AssignedTo != "E001" {
		t.Errorf("T001 assigned to %q, want E001", task.AssignedTo)
	}
	alice, _ := en.Employee("E001")
	if alice.CurrentWorkload != 20 {
		t.Errorf("E001 workload = %v, want 20", alice.CurrentWorkload)
	}
	if len(alice.AssignedTasks) != 1 || alice.AssignedTasks[0] != "T001" {
		t.Errorf("E001 assigned tasks = %v, want [T001]", alice.AssignedTasks)
	}

	if en.AssignTask("T001", "") {
		t.Error("second AssignTask(T001) = true, want false")
	}
	alice, _ = en.Employee("E001")
	if alice.CurrentWorkload != 20 {
		t.Errorf("E001 workload after rejected reassignment = %v, want 20", alice.CurrentWorkload)
	}

	committed := logger.ofType(EventAssignmentCommitted)
	if len(committed) != 1 {
		t.Fatalf("committed events = %d, want 1", len(committed))
	}
	if committed[0].data["mode"] != "auto" {
		t.Errorf("mode = %v, want auto", committed[0].data["mode"])
	}
	rejected := logger.ofType(EventAssignmentRejected)
	if len(rejected) != 1 || rejected[0].data["reason"] != ReasonAlreadyAssigned {
		t.Errorf("rejected events = %+v, want one already_assigned", rejected)
	}
}

func TestAssignTask_Manual(t *testing.T) {
	en := newDemoEngine(nil)

	a, err := en.Assign("T002", "E003")
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if a.Auto {
		t.Error("expected a manual assignment")
	}
	if a.EmployeeID != "E003" || a.Hours != 15 {
		t.Errorf("assignment = %+v", a)
	}

	carol, _ := en.Employee("E003")
	if carol.CurrentWorkload != 15 {
		t.Errorf("E003 workload = %v, want 15", carol.CurrentWorkload)
	}
}

func TestAssign_Failures(t *testing.T) {
	tests := []struct {
		name       string
		taskID     string
		employeeID string
		prepare    func(en AssignmentEngine)
		wantErr    error
	}{
		{
			name:    "unknown task",
			taskID:  "T404",
			wantErr: ErrTaskNotFound,
		},
		{
			name:       "unknown employee",
			taskID:     "T001",
			employeeID: "E404",
			wantErr:    ErrEmployeeNotFound,
		},
		{
			name:       "manual over capacity",
			taskID:     "T001",
			employeeID: "E001",
			prepare: func(en AssignmentEngine) {
				en.AddTask(models.NewTask("T100", "big", nil, models.PriorityLow, 30, 5))
				if !en.AssignTask("T100", "E001") {
					panic("setup assignment failed")
				}
			},
			wantErr: ErrCapacityExceeded,
		},
		{
			name:   "auto without feasible candidate",
			taskID: "T999",
			prepare: func(en AssignmentEngine) {
				en.AddTask(models.NewTask("T999", "huge", nil, models.PriorityLow, 41, 5))
			},
			wantErr: ErrNoCandidate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := newDemoEngine(nil)
			if tt.prepare != nil {
				tt.prepare(en)
			}
			before := workloads(en)

			_, err := en.Assign(tt.taskID, tt.employeeID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Assign() error = %v, want %v", err, tt.wantErr)
			}
			if en.AssignTask(tt.taskID, tt.employeeID) {
				t.Error("AssignTask() = true, want false")
			}

			after := workloads(en)
			for id, w := range before {
				if after[id] != w {
					t.Errorf("workload of %s changed from %v to %v", id, w, after[id])
				}
			}
			if task, ok := en.Task(tt.taskID); ok && task.IsAssigned() && tt.wantErr != ErrTaskAlreadyAssigned {
				t.Errorf("task %s was assigned to %s despite failure", tt.taskID, task.AssignedTo)
			}
		})
	}
}

func workloads(en AssignmentEngine) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range en.Employees() {
		out[e.ID] = e.CurrentWorkload
	}
	return out
}

func TestAutoAssignAll_DemoSession(t *testing.T) {
	en := newDemoEngine(nil)

	outcomes := en.AutoAssignAll()
	if len(outcomes) != 3 {
		t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
	}

	want := map[string]string{"T001": "E001", "T002": "E002", "T003": "E001"}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Errorf("%s: unexpected error %v", o.TaskID, o.Err)
			continue
		}
		if o.Assignment.EmployeeID != want[o.TaskID] {
			t.Errorf("%s assigned to %s, want %s", o.TaskID, o.Assignment.EmployeeID, want[o.TaskID])
		}
	}

	wantLoad := map[string]float64{"E001": 30, "E002": 15, "E003": 0}
	for id, w := range workloads(en) {
		if w != wantLoad[id] {
			t.Errorf("workload of %s = %v, want %v", id, w, wantLoad[id])
		}
	}

	if again := en.AutoAssignAll(); len(again) != 0 {
		t.Errorf("second AutoAssignAll returned %d outcomes, want 0", len(again))
	}
}

func TestRecommend(t *testing.T) {
	en := newDemoEngine(nil)

	recs, err := en.Recommend("T002", 0)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len(recs) = %d, want 3", len(recs))
	}
	if recs[0].Rank != 1 || recs[0].Employee.ID != "E002" {
		t.Errorf("top recommendation = #%d %s, want #1 E002", recs[0].Rank, recs[0].Employee.ID)
	}
	if !approxEqual(recs[0].Breakdown.SkillSimilarity, 2.2/2.4) {
		t.Errorf("skill similarity = %v, want %v", recs[0].Breakdown.SkillSimilarity, 2.2/2.4)
	}

	if _, err := en.Recommend("T404", 5); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Recommend(T404) error = %v, want ErrTaskNotFound", err)
	}
}

func TestCalculateSkillSimilarity_MatchesScoringFunction(t *testing.T) {
	en := newDemoEngine(nil)
	e, _ := en.Employee("E002")
	task, _ := en.Task("T002")

	if got, want := en.CalculateSkillSimilarity(e, task), SkillSimilarity(e, task); got != want {
		t.Errorf("CalculateSkillSimilarity() = %v, want %v", got, want)
	}
}

func TestAssign_ConcurrentCallersNeverExceedCapacity(t *testing.T) {
	en := NewAssignmentEngine(nil)
	en.AddEmployee(models.NewEmployee("E1", "one", nil, 40))
	en.AddEmployee(models.NewEmployee("E2", "two", nil, 40))

	const n = 50
	for i := 0; i < n; i++ {
		en.AddTask(models.NewTask(fmt.Sprintf("T%03d", i), "chunk", nil, models.PriorityLow, 7, 1))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			en.AssignTask(id, "")
		}(fmt.Sprintf("T%03d", i))
	}
	wg.Wait()

	assigned := 0
	for _, e := range en.Employees() {
		if e.CurrentWorkload > e.MaxWorkloadHours {
			t.Errorf("%s workload %v exceeds max %v", e.ID, e.CurrentWorkload, e.MaxWorkloadHours)
		}
		assigned += len(e.AssignedTasks)
	}
	// 40 / 7 = 5 tasks each.
	if assigned != 10 {
		t.Errorf("assigned %d tasks, want 10", assigned)
	}
}
