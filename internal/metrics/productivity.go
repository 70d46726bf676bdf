package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/fastygo/goaltracker/domain"
)

const (
	// TrailingDays is the window of the weekly productivity total.
	TrailingDays = 7
	// TopGoalsLimit caps the per-goal breakdown of today's minutes.
	TopGoalsLimit = 5
)

// GoalMinutes is one entry of today's per-goal breakdown.
type GoalMinutes struct {
	GoalID  string `json:"goalId"`
	Title   string `json:"title,omitempty"`
	Minutes int    `json:"minutes"`
}

// Productivity is the dashboard summary for a single day.
type Productivity struct {
	Date          string        `json:"date"`
	TodayMinutes  int           `json:"todayMinutes"`
	WakingMinutes int           `json:"wakingMinutes"`
	Percentage    int           `json:"percentage"`
	WeekMinutes   int           `json:"weekMinutes"`
	DailyAverage  int           `json:"dailyAverage"`
	TopGoals      []GoalMinutes `json:"topGoals"`
}

// TodayProductivity aggregates logs around today. Percentage is measured
// against the waking-hours budget and is not capped at 100. Goal titles are
// looked up in titles; unknown goals keep an empty title.
func TodayProductivity(logs []domain.ProductivityLog, today time.Time, wakingHoursPerDay float64, titles map[string]string) Productivity {
	byDate := make(map[string]domain.ProductivityLog, len(logs))
	for _, l := range logs {
		byDate[l.Date] = l
	}

	todayKey := domain.DateKey(today)
	current := byDate[todayKey]

	out := Productivity{
		Date:          todayKey,
		TodayMinutes:  current.ProductiveMinutes,
		WakingMinutes: int(math.Round(wakingHoursPerDay * 60)),
		TopGoals:      topGoals(current.CompletedTasks, titles),
	}
	if out.WakingMinutes > 0 {
		out.Percentage = int(math.Round(float64(out.TodayMinutes) / float64(out.WakingMinutes) * 100))
	}
	for i := 0; i < TrailingDays; i++ {
		out.WeekMinutes += byDate[domain.DateKey(today.AddDate(0, 0, -i))].ProductiveMinutes
	}
	out.DailyAverage = int(math.Round(float64(out.WeekMinutes) / TrailingDays))
	return out
}

// topGoals sums record durations per goal; ties keep first-seen order.
func topGoals(records []domain.TaskCompletion, titles map[string]string) []GoalMinutes {
	index := make(map[string]int)
	totals := []GoalMinutes{}
	for _, r := range records {
		if r.GoalID == "" {
			continue
		}
		i, ok := index[r.GoalID]
		if !ok {
			i = len(totals)
			index[r.GoalID] = i
			totals = append(totals, GoalMinutes{GoalID: r.GoalID, Title: titles[r.GoalID]})
		}
		totals[i].Minutes += r.Duration
	}
	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Minutes > totals[b].Minutes
	})
	if len(totals) > TopGoalsLimit {
		totals = totals[:TopGoalsLimit]
	}
	return totals
}
