package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fastygo/goaltracker/domain"
)

const (
	DefaultSleepTargetMinutes = 8 * 60
	DefaultSleepWindow        = 30
)

// SleepOptions tunes SleepStats.
type SleepOptions struct {
	TargetMinutes int
	Window        int
	Location      *time.Location
}

// Sleep summarizes recent sleep/wake logs.
type Sleep struct {
	AverageSleepDuration int     `json:"averageSleepDuration"`
	AverageWakeUpTime    string  `json:"averageWakeUpTime"`
	AverageSleepTime     string  `json:"averageSleepTime"`
	AverageMood          float64 `json:"averageMood"`
	SleepDebtMinutes     int     `json:"sleepDebtMinutes"`
	StreakDays           int     `json:"streakDays"`
	LoggedDays           int     `json:"loggedDays"`
}

// SleepStats looks at the most recent Window logs by date. Averages only
// count entries that carry the field. Debt is (target - average duration)
// summed once per windowed log, so it is derived from the average rather
// than from per-day deficits.
func SleepStats(logs []domain.SleepWakeLog, today time.Time, opts SleepOptions) Sleep {
	if opts.TargetMinutes <= 0 {
		opts.TargetMinutes = DefaultSleepTargetMinutes
	}
	if opts.Window <= 0 {
		opts.Window = DefaultSleepWindow
	}
	loc := opts.Location
	if loc == nil {
		loc = today.Location()
	}

	sorted := SortSleepLogs(logs)
	window := sorted
	if len(window) > opts.Window {
		window = window[:opts.Window]
	}

	var (
		totalDuration, durationCount int
		totalMood, moodCount         int
		wakes, sleeps                []time.Time
	)
	for _, l := range window {
		if l.SleepDurationMinutes != nil {
			totalDuration += *l.SleepDurationMinutes
			durationCount++
		}
		if l.WakeUpMood != nil {
			totalMood += int(*l.WakeUpMood)
			moodCount++
		}
		if l.WakeUpTime != nil {
			wakes = append(wakes, l.WakeUpTime.In(loc))
		}
		if l.SleepTime != nil {
			sleeps = append(sleeps, l.SleepTime.In(loc))
		}
	}

	out := Sleep{
		LoggedDays:        len(window),
		AverageWakeUpTime: averageClock(wakes),
		AverageSleepTime:  averageClock(sleeps),
		StreakDays:        streak(sorted, today),
	}
	if durationCount > 0 {
		out.AverageSleepDuration = int(math.Round(float64(totalDuration) / float64(durationCount)))
	}
	if moodCount > 0 {
		out.AverageMood = math.Round(float64(totalMood)/float64(moodCount)*10) / 10
	}
	out.SleepDebtMinutes = len(window) * (opts.TargetMinutes - out.AverageSleepDuration)
	return out
}

// SortSleepLogs returns a copy of logs ordered by date, newest first.
func SortSleepLogs(logs []domain.SleepWakeLog) []domain.SleepWakeLog {
	sorted := append([]domain.SleepWakeLog(nil), logs...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Date > sorted[b].Date
	})
	return sorted
}

// streak counts consecutive logged dates, starting from today or yesterday.
func streak(sorted []domain.SleepWakeLog, today time.Time) int {
	if len(sorted) == 0 {
		return 0
	}
	todayKey := domain.DateKey(today)
	yesterdayKey := domain.DateKey(today.AddDate(0, 0, -1))
	if sorted[0].Date != todayKey && sorted[0].Date != yesterdayKey {
		return 0
	}
	count := 1
	for i := 1; i < len(sorted); i++ {
		prev, errPrev := time.Parse(domain.DateLayout, sorted[i-1].Date)
		cur, errCur := time.Parse(domain.DateLayout, sorted[i].Date)
		if errPrev != nil || errCur != nil {
			break
		}
		if int(math.Round(prev.Sub(cur).Hours()/24)) != 1 {
			break
		}
		count++
	}
	return count
}

// averageClock is the circular mean of the times of day, as "HH:MM".
func averageClock(times []time.Time) string {
	if len(times) == 0 {
		return ""
	}
	const day = 24 * 60
	var sinSum, cosSum float64
	for _, t := range times {
		angle := float64(t.Hour()*60+t.Minute()) / day * 2 * math.Pi
		sinSum += math.Sin(angle)
		cosSum += math.Cos(angle)
	}
	angle := math.Atan2(sinSum, cosSum)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	minutes := int(math.Round(angle/(2*math.Pi)*day)) % day
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
