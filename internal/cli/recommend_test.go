package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/taskmatch/internal/core"
)

func TestRecommendCmd_RanksCandidates(t *testing.T) {
	useDemoEngine(t)
	out := capture(t, recommendCmd)

	if err := recommendCmd.RunE(recommendCmd, []string{"T001"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Develop ML Model") {
		t.Errorf("output missing task name:\n%s", got)
	}
	first := strings.Index(got, "1. Alice Johnson")
	second := strings.Index(got, "2. Bob Smith")
	if first < 0 || second < 0 || first > second {
		t.Errorf("want Alice ranked above Bob:\n%s", got)
	}
	for _, label := range []string{"Probability:", "Skill Match:", "Availability:", "Current Workload:", "Performance:"} {
		if !strings.Contains(got, label) {
			t.Errorf("output missing %q", label)
		}
	}
}

func TestRecommendCmd_TopFlag(t *testing.T) {
	useDemoEngine(t)
	out := capture(t, recommendCmd)

	orig := recommendTop
	defer func() { recommendTop = orig }()
	recommendTop = 1

	if err := recommendCmd.RunE(recommendCmd, []string{"T001"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "2. ") {
		t.Errorf("--top 1 printed a second candidate:\n%s", out.String())
	}
}

func TestRecommendCmd_DoesNotAssign(t *testing.T) {
	en := useDemoEngine(t)
	capture(t, recommendCmd)

	if err := recommendCmd.RunE(recommendCmd, []string{"T001"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, _ := en.Task("T001")
	if task.IsAssigned() {
		t.Errorf("task assigned to %s by recommend", task.AssignedTo)
	}
}

func TestRecommendCmd_UnknownTask(t *testing.T) {
	useDemoEngine(t)
	capture(t, recommendCmd)

	err := recommendCmd.RunE(recommendCmd, []string{"T999"})
	if !errors.Is(err, core.ErrTaskNotFound) {
		t.Errorf("error = %v, want ErrTaskNotFound", err)
	}
}

func TestRecommendCmd_NoCapacity(t *testing.T) {
	en := useDemoEngine(t)
	en.AddTask(mustTask(t, "T010", 45))
	out := capture(t, recommendCmd)

	if err := recommendCmd.RunE(recommendCmd, []string{"T010"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No employee has enough capacity") {
		t.Errorf("output = %q, want capacity message", out.String())
	}
}
