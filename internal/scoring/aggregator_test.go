package scoring

import (
	"testing"
	"time"

	"github.com/pathwayhq/pathway/internal/domain"
)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(time.Now(), nil)

	if got.TotalXP != 0 || got.AverageScore != 0 || got.TimeSpentSeconds != 0 || got.DaysUsed != 0 {
		t.Errorf("Aggregate(empty) = %+v, want all-zero aggregates", got)
	}
	if got.DomainScores == nil {
		t.Error("DomainScores should be an empty map, not nil")
	}
}

func TestAggregateAverageScore(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	t.Run("example scenario", func(t *testing.T) {
		evals := []*domain.Evaluation{
			{Score: 80}, {Score: 90}, {Score: 70},
		}
		got := Aggregate(start, evals)
		if got.AverageScore != 80 {
			t.Errorf("AverageScore = %d, want 80", got.AverageScore)
		}
	})

	t.Run("zero scores excluded from mean", func(t *testing.T) {
		evals := []*domain.Evaluation{
			{Score: 80}, {Score: 0}, {Score: 90},
		}
		got := Aggregate(start, evals)
		if got.AverageScore != 85 {
			t.Errorf("AverageScore = %d, want 85", got.AverageScore)
		}
	})

	t.Run("no valid scores", func(t *testing.T) {
		evals := []*domain.Evaluation{{Score: 0}, {Score: 0}}
		got := Aggregate(start, evals)
		if got.AverageScore != 0 {
			t.Errorf("AverageScore = %d, want 0", got.AverageScore)
		}
	})

	t.Run("rounds to nearest", func(t *testing.T) {
		evals := []*domain.Evaluation{{Score: 80}, {Score: 85}}
		got := Aggregate(start, evals)
		if got.AverageScore != 83 { // 82.5 rounds half away from zero
			t.Errorf("AverageScore = %d, want 83", got.AverageScore)
		}
	})

	t.Run("scores above 100 clamp to 100", func(t *testing.T) {
		evals := []*domain.Evaluation{{Score: 150}, {Score: 130}}
		got := Aggregate(start, evals)
		if got.AverageScore != 100 {
			t.Errorf("AverageScore = %d, want 100", got.AverageScore)
		}
	})

	t.Run("oversized score pulls the mean no higher than 100", func(t *testing.T) {
		evals := []*domain.Evaluation{{Score: 60}, {Score: 9000}}
		got := Aggregate(start, evals)
		if got.AverageScore != 80 { // (60 + 100) / 2
			t.Errorf("AverageScore = %d, want 80", got.AverageScore)
		}
	})
}

func TestAggregateXPPrecedence(t *testing.T) {
	evals := []*domain.Evaluation{
		{ActualXP: intPtr(50), XPEarned: intPtr(99), Score: 99}, // actualXP wins
		{XPEarned: intPtr(30), Score: 99},                       // xpEarned next
		{Score: 20},                                             // score fallback
		{},                                                      // zero
	}
	got := Aggregate(time.Now(), evals)
	if got.TotalXP != 100 {
		t.Errorf("TotalXP = %d, want 100", got.TotalXP)
	}
}

func TestAggregateDomainScores(t *testing.T) {
	evals := []*domain.Evaluation{
		{Score: 80, DomainScores: map[string]float64{"engaging": 80, "managing": 60}},
		{Score: 90, DomainScores: map[string]float64{"engaging": 100}},
		{Score: 70},
	}
	got := Aggregate(time.Now(), evals)

	if got.DomainScores["engaging"] != 90 {
		t.Errorf("engaging = %v, want 90", got.DomainScores["engaging"])
	}
	if got.DomainScores["managing"] != 60 {
		t.Errorf("managing = %v, want 60", got.DomainScores["managing"])
	}
	if len(got.DomainScores) != 2 {
		t.Errorf("DomainScores has %d domains, want 2", len(got.DomainScores))
	}
}

func TestAggregateTimeAndDays(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	evals := []*domain.Evaluation{
		{TimeSpentSeconds: 120, CompletedAt: timePtr(start.Add(2 * time.Hour))},
		{TimeSpentSeconds: 300, CompletedAt: timePtr(start.Add(50 * time.Hour))},
		{TimeSpentSeconds: -5}, // malformed, contributes nothing
	}
	got := Aggregate(start, evals)

	if got.TimeSpentSeconds != 420 {
		t.Errorf("TimeSpentSeconds = %d, want 420", got.TimeSpentSeconds)
	}
	if got.DaysUsed != 3 { // 50h spans into the third day
		t.Errorf("DaysUsed = %d, want 3", got.DaysUsed)
	}
}

func TestAggregateDaysNeverNegative(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	evals := []*domain.Evaluation{
		{CompletedAt: timePtr(start.Add(-48 * time.Hour))}, // clock skew in stored data
	}
	got := Aggregate(start, evals)
	if got.DaysUsed != 0 {
		t.Errorf("DaysUsed = %d, want 0", got.DaysUsed)
	}
}

func TestAggregateTotality(t *testing.T) {
	// Nil entries and malformed values must degrade, never panic.
	start := time.Time{}
	evals := []*domain.Evaluation{
		nil,
		{Score: -10},
		{DomainScores: map[string]float64{}},
	}
	got := Aggregate(start, evals)
	if got.AverageScore < 0 || got.AverageScore > 100 {
		t.Errorf("AverageScore = %d, want within [0,100]", got.AverageScore)
	}
	if got.TimeSpentSeconds < 0 {
		t.Errorf("TimeSpentSeconds = %d, want >= 0", got.TimeSpentSeconds)
	}
}
