// Package scoring turns the task evaluations of a program into one
// program-level result. Aggregation is pure and total: it never performs
// I/O, never returns an error, and treats malformed per-task data as zero
// contribution, because partial and legacy data is expected in production.
package scoring

import (
	"math"
	"time"

	"github.com/pathwayhq/pathway/internal/domain"
)

// Summary is the aggregate outcome of a program's task evaluations.
type Summary struct {
	TotalXP          int                `json:"totalXP"`
	AverageScore     int                `json:"averageScore"`
	DomainScores     map[string]float64 `json:"domainScores"`
	TimeSpentSeconds int                `json:"timeSpentSeconds"`
	DaysUsed         int                `json:"daysUsed"`
	EvaluatedTasks   int                `json:"evaluatedTasks"`
}

// Aggregate computes the program-level summary from task evaluations.
// startedAt is the program start; it anchors the DaysUsed span.
//
// XP per task falls back through actualXP, xpEarned, the raw score, then
// zero. AverageScore is the mean of valid (positive) scores rounded to the
// nearest integer, zero when no task has one. Scores above 100 are
// malformed and contribute 100, keeping AverageScore within [0,100].
// DomainScores are per-domain means across the tasks that report that
// domain.
func Aggregate(startedAt time.Time, evals []*domain.Evaluation) Summary {
	summary := Summary{DomainScores: map[string]float64{}}

	var (
		scoreSum    float64
		scoreCount  int
		domainSums  = map[string]float64{}
		domainSeen  = map[string]int{}
		latestStamp time.Time
	)

	for _, e := range evals {
		if e == nil {
			continue
		}
		summary.EvaluatedTasks++
		summary.TotalXP += e.AwardedXP()

		if e.Score > 0 {
			scoreSum += math.Min(e.Score, 100)
			scoreCount++
		}

		for name, score := range e.DomainScores {
			domainSums[name] += score
			domainSeen[name]++
		}

		if e.TimeSpentSeconds > 0 {
			summary.TimeSpentSeconds += e.TimeSpentSeconds
		}

		stamp := e.CreatedAt
		if e.CompletedAt != nil {
			stamp = *e.CompletedAt
		}
		if stamp.After(latestStamp) {
			latestStamp = stamp
		}
	}

	if scoreCount > 0 {
		summary.AverageScore = int(math.Round(scoreSum / float64(scoreCount)))
	}

	for name, sum := range domainSums {
		summary.DomainScores[name] = sum / float64(domainSeen[name])
	}

	summary.DaysUsed = daysBetween(startedAt, latestStamp)

	return summary
}

// daysBetween returns the ceiling of the calendar-day span between start and
// end, never negative. A zero start or end contributes nothing.
func daysBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0
	}
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}
