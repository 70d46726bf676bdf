package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/goaltracker/domain"
)

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name  string
		tasks []domain.Task
		want  int
	}{
		{name: "no tasks", want: 0},
		{name: "zero minutes", tasks: []domain.Task{{EstimatedMinutes: 0, IsCompleted: true}}, want: 0},
		{
			name: "thirty of hundred",
			tasks: []domain.Task{
				{EstimatedMinutes: 30, IsCompleted: true},
				{EstimatedMinutes: 70},
			},
			want: 30,
		},
		{
			name: "rounds to nearest",
			tasks: []domain.Task{
				{EstimatedMinutes: 10, IsCompleted: true},
				{EstimatedMinutes: 20},
			},
			want: 33,
		},
		{
			name: "all done",
			tasks: []domain.Task{
				{EstimatedMinutes: 15, IsCompleted: true},
				{EstimatedMinutes: 45, IsCompleted: true},
			},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GoalProgress(tt.tasks))
		})
	}
}

func TestWeightedProgress(t *testing.T) {
	assert.Equal(t, 0, WeightedProgress(nil))
	assert.Equal(t, 50, WeightedProgress([]Contribution{{Fraction: 1, Weight: 50}}))
	assert.Equal(t, 45, WeightedProgress([]Contribution{
		{Fraction: 0.5, Weight: 50},
		{Fraction: 1, Weight: 20},
	}))
	assert.Equal(t, 100, WeightedProgress([]Contribution{
		{Fraction: 1, Weight: 80},
		{Fraction: 1, Weight: 80},
	}), "weights over 100 clamp")
	assert.Equal(t, 30, WeightedProgress([]Contribution{{Fraction: 3, Weight: 30}}), "fraction clamps to 1")
}

func TestCompletionSnapshot(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	done := created.Add(36 * time.Hour)
	goal := domain.Goal{ID: "g1", CreatedAt: created}
	tasks := []domain.Task{
		{ID: "t1", Title: "a", EstimatedMinutes: 30, IsCompleted: true, CompletedAt: &done},
		{ID: "t2", Title: "b", EstimatedMinutes: 45},
	}

	snap := CompletionSnapshot(goal, tasks, 2, done)
	assert.Equal(t, 2, snap.TotalTasks)
	assert.Equal(t, 1, snap.CompletedTasks)
	assert.Equal(t, 2, snap.DaysToComplete)
	assert.Equal(t, 2, snap.ActiveDays)
	assert.Equal(t, 30, snap.MinutesSpent)
	require.Len(t, snap.Tasks, 2)
	assert.True(t, snap.Tasks[0].IsCompleted)
	require.NotNil(t, snap.Tasks[0].CompletedAt)
	assert.NotSame(t, &done, snap.Tasks[0].CompletedAt)

	same := CompletionSnapshot(goal, nil, 0, created)
	assert.Equal(t, 1, same.DaysToComplete, "elapsed days has a floor of 1")
	assert.NotNil(t, same.Tasks)
}

func TestGoalTimelineStats(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	completed := created.Add(50 * time.Hour)
	goal := domain.Goal{CreatedAt: created, Status: domain.GoalCompleted, CompletedAt: &completed}
	tasks := []domain.Task{{EstimatedMinutes: 20, IsCompleted: true}, {EstimatedMinutes: 20}}

	stats := GoalTimelineStats(goal, tasks, created.Add(10*24*time.Hour))
	assert.Equal(t, 10, stats.TotalDays)
	require.NotNil(t, stats.DaysToComplete)
	assert.Equal(t, 2, *stats.DaysToComplete)
	assert.Equal(t, 1, stats.TasksCompleted)
	assert.Equal(t, 2, stats.TasksTotal)
	assert.Equal(t, 20, stats.MinutesSpent)
	assert.Equal(t, 50, stats.Progress)

	goal.Status = domain.GoalInProgress
	assert.Nil(t, GoalTimelineStats(goal, tasks, created).DaysToComplete)
}
