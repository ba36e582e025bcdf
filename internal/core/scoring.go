// Package core contains the matching and assignment logic of taskmatch:
// the scoring functions, the assignment engine, configuration loading, and
// the summary figures reported by the outer surfaces.
package core

import (
	"math"

	"github.com/valter-silva-au/taskmatch/pkg/models"
)

// Weights of the sub-scores in the weighted score. They sum to 1.
const (
	WeightSkillMatch    = 0.40
	WeightAvailability  = 0.25
	WeightExperience    = 0.15
	WeightPerformance   = 0.10
	WeightPriorityMatch = 0.10
)

const (
	// neutralScore is returned by skill and experience scoring when a task
	// requires no skills.
	neutralScore = 0.5

	// noExperienceScore is returned when the employee holds none of the
	// required skills.
	noExperienceScore = 0.1

	// skillScoreCeiling is the per-skill normalizer of SkillSimilarity.
	skillScoreCeiling = 1.2

	overqualificationBonus = 0.1
	shortfallCredit        = 0.7

	// fullExperienceYears is the average experience treated as full relevance.
	fullExperienceYears = 10.0

	sigmoidSteepness = 5.0
	sigmoidCenter    = 0.5
)

// ScoreBreakdown holds every component of an assignment probability.
type ScoreBreakdown struct {
	SkillSimilarity float64 `json:"skill_similarity"`
	Availability    float64 `json:"availability"`
	Experience      float64 `json:"experience"`
	Performance     float64 `json:"performance"`
	PriorityMatch   float64 `json:"priority_match"`
	WeightedScore   float64 `json:"weighted_score"`
	Probability     float64 `json:"probability"`
	Feasible        bool    `json:"feasible"`
}

// SkillSimilarity measures how well the employee's skill levels meet the
// task's per-skill minimums, in [0,1].
func SkillSimilarity(e *models.Employee, t *models.Task) float64 {
	if len(t.RequiredSkills) == 0 {
		return neutralScore
	}

	total := 0.0
	for name, required := range t.RequiredSkills {
		have := float64(e.SkillLevel(name))
		need := float64(required)
		if have >= need {
			total += 1.0 + (have-need)*overqualificationBonus
		} else {
			total += math.Max(0, have/need*shortfallCredit)
		}
	}

	return math.Min(1.0, total/(float64(len(t.RequiredSkills))*skillScoreCeiling))
}

// ExperienceScore averages the employee's years over the required skills they
// hold, with ten years counting as full relevance. Skills the employee lacks
// are left out of the average.
func ExperienceScore(e *models.Employee, t *models.Task) float64 {
	if len(t.RequiredSkills) == 0 {
		return neutralScore
	}

	total := 0.0
	count := 0
	for name := range t.RequiredSkills {
		if s, ok := e.Skills[name]; ok {
			total += s.ExperienceYears
			count++
		}
	}
	if count == 0 {
		return noExperienceScore
	}

	return math.Min(1.0, total/float64(count)/fullExperienceYears)
}

// PriorityMatchScore is 1 when the employee's performance rating reaches the
// threshold of the task's priority, and scales linearly below it.
func PriorityMatchScore(e *models.Employee, t *models.Task) float64 {
	threshold := t.Priority.PerformanceThreshold()
	if e.PerformanceRating >= threshold {
		return 1.0
	}
	return e.PerformanceRating / threshold
}

// WeightedScore combines the sub-scores into a single suitability value. It
// ignores the capacity gate.
func WeightedScore(e *models.Employee, t *models.Task) float64 {
	return Breakdown(e, t).WeightedScore
}

// AssignmentProbability returns the sigmoid-transformed weighted score, or 0
// when the task would push the employee past their maximum workload.
func AssignmentProbability(e *models.Employee, t *models.Task) float64 {
	if !e.CanAccommodate(t.EstimatedHours) {
		return 0.0
	}
	return sigmoid(WeightedScore(e, t))
}

// Breakdown computes every sub-score for the pair. Probability is 0 and
// Feasible is false when the capacity gate fails; the sub-scores are still
// filled in for display.
func Breakdown(e *models.Employee, t *models.Task) ScoreBreakdown {
	b := ScoreBreakdown{
		SkillSimilarity: SkillSimilarity(e, t),
		Availability:    e.AvailabilityRatio(),
		Experience:      ExperienceScore(e, t),
		Performance:     math.Min(1.0, e.PerformanceRating),
		PriorityMatch:   PriorityMatchScore(e, t),
	}
	b.WeightedScore = b.SkillSimilarity*WeightSkillMatch +
		b.Availability*WeightAvailability +
		b.Experience*WeightExperience +
		b.Performance*WeightPerformance +
		b.PriorityMatch*WeightPriorityMatch

	b.Feasible = e.CanAccommodate(t.EstimatedHours)
	if b.Feasible {
		b.Probability = sigmoid(b.WeightedScore)
	}
	return b
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-sigmoidSteepness*(x-sigmoidCenter)))
}
