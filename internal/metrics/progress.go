// Package metrics computes derived views over tracker state. Every function
// is pure and recomputed on each read.
package metrics

import (
	"math"
	"time"

	"github.com/fastygo/goaltracker/domain"
)

// GoalProgress returns the share of estimated minutes that belong to
// completed tasks, as a rounded percentage. No tasks (or no minutes) is 0.
func GoalProgress(tasks []domain.Task) int {
	total, done := 0, 0
	for _, t := range tasks {
		total += t.EstimatedMinutes
		if t.IsCompleted {
			done += t.EstimatedMinutes
		}
	}
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// Contribution is one task's share in weighted-link progress: Fraction is the
// task's own completion in [0,1], Weight the link weight in percent.
type Contribution struct {
	Fraction float64
	Weight   float64
}

// WeightedProgress sums fraction*weight/100 over every contribution and
// clamps the rounded percentage to 100. Weights need not add up to 100.
func WeightedProgress(contributions []Contribution) int {
	var sum float64
	for _, c := range contributions {
		sum += clamp(c.Fraction, 0, 1) * (c.Weight / 100)
	}
	pct := int(math.Round(sum * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// CompletionSnapshot captures a goal's task state at completion time.
// DaysToComplete is ceil(elapsed days) with a floor of 1.
func CompletionSnapshot(goal domain.Goal, tasks []domain.Task, activeDays int, now time.Time) domain.CompletionSnapshot {
	snap := domain.CompletionSnapshot{
		TotalTasks:     len(tasks),
		DaysToComplete: elapsedDaysCeil(goal.CreatedAt, now),
		ActiveDays:     activeDays,
		Tasks:          make([]domain.SnapshotTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		if t.IsCompleted {
			snap.CompletedTasks++
			snap.MinutesSpent += t.EstimatedMinutes
		}
		snap.Tasks = append(snap.Tasks, domain.SnapshotTask{
			ID:          t.ID,
			Title:       t.Title,
			IsCompleted: t.IsCompleted,
			CompletedAt: copyTime(t.CompletedAt),
		})
	}
	return snap
}

// GoalTimeline summarizes how long a goal has been open.
type GoalTimeline struct {
	DaysToComplete *int `json:"daysToComplete"`
	TotalDays      int  `json:"totalDays"`
	TasksCompleted int  `json:"tasksCompleted"`
	TasksTotal     int  `json:"tasksTotal"`
	MinutesSpent   int  `json:"minutesSpent"`
	Progress       int  `json:"progress"`
}

// GoalTimelineStats reports whole days since creation (and until completion
// when the goal is completed) alongside task counts.
func GoalTimelineStats(goal domain.Goal, tasks []domain.Task, now time.Time) GoalTimeline {
	stats := GoalTimeline{
		TotalDays:  elapsedDaysFloor(goal.CreatedAt, now),
		TasksTotal: len(tasks),
		Progress:   GoalProgress(tasks),
	}
	for _, t := range tasks {
		if t.IsCompleted {
			stats.TasksCompleted++
			stats.MinutesSpent += t.EstimatedMinutes
		}
	}
	if goal.Status == domain.GoalCompleted && goal.CompletedAt != nil {
		days := elapsedDaysFloor(goal.CreatedAt, *goal.CompletedAt)
		stats.DaysToComplete = &days
	}
	return stats
}

func elapsedDaysCeil(from, to time.Time) int {
	days := int(math.Ceil(to.Sub(from).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

func elapsedDaysFloor(from, to time.Time) int {
	days := int(math.Floor(to.Sub(from).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
