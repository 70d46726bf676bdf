package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/repository/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeClock, *memory.SnapshotRepository) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)}
	repo := memory.NewSnapshotRepository()
	s := New(Options{
		Snapshots: repo,
		Now:       clock.Now,
		NewID:     sequentialIDs(),
	})
	require.NoError(t, s.Load(context.Background()))
	return s, clock, repo
}

func eventTypes(events []domain.TimelineEvent) []domain.EventType {
	out := make([]domain.EventType, len(events))
	for i, e := range events {
		out[i] = e.EventType
	}
	return out
}

func todayMinutes(s *Store) int {
	return s.TodayProductivity().TodayMinutes
}

func TestLearnPianoScenario(t *testing.T) {
	s, _, _ := newTestStore(t)

	goal := s.AddGoal(domain.CreateGoalInput{Title: "Learn Piano", Level: domain.LevelYearly})
	assert.Equal(t, domain.GoalNotStarted, goal.Status)
	assert.Equal(t, domain.Yearly{Year: 2026}, goal.Metadata)

	task := s.AddTask(domain.CreateTaskInput{Title: "Practice scales", EstimatedMinutes: 30, GoalID: goal.ID})
	before := todayMinutes(s)

	done, ok := s.CompleteTask(task.ID)
	require.True(t, ok)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)

	g, ok := s.GetGoal(goal.ID)
	require.True(t, ok)
	assert.Equal(t, domain.GoalInProgress, g.Status)
	assert.NotNil(t, g.StartedAt)
	assert.Equal(t, before+30, todayMinutes(s))

	types := eventTypes(s.TimelineEvents(0))
	assert.Contains(t, types, domain.EventTaskCompleted)
	assert.Contains(t, types, domain.EventGoalStarted)
}

func TestGoalProgress_ThirtyOfHundred(t *testing.T) {
	s, _, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Read", Level: domain.LevelMonthly})
	short := s.AddTask(domain.CreateTaskInput{Title: "short", EstimatedMinutes: 30, GoalID: goal.ID})
	s.AddTask(domain.CreateTaskInput{Title: "long", EstimatedMinutes: 70, GoalID: goal.ID})

	assert.Equal(t, 0, s.GoalProgress(goal.ID))
	s.CompleteTask(short.ID)
	assert.Equal(t, 30, s.GoalProgress(goal.ID))
	assert.Equal(t, 50, s.GoalProgressByTaskCount(goal.ID))
	assert.Equal(t, 0, s.GoalProgressByTaskCount("missing"))
}

func TestGoalProgress_MatchesMinuteShare(t *testing.T) {
	s, _, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Fitness", Level: domain.LevelQuarterly})
	estimates := []int{15, 25, 40, 45, 10}
	completed := map[int]bool{0: true, 2: true, 4: true}
	total, done := 0, 0
	for i, minutes := range estimates {
		task := s.AddTask(domain.CreateTaskInput{Title: fmt.Sprintf("t%d", i), EstimatedMinutes: minutes, GoalID: goal.ID})
		total += minutes
		if completed[i] {
			s.CompleteTask(task.ID)
			done += minutes
		}
	}
	want := int(float64(done)/float64(total)*100 + 0.5)
	assert.Equal(t, want, s.GoalProgress(goal.ID))
	assert.Equal(t, 0, s.GoalProgress("missing"))
}

func TestAddTask_DefaultsAndDanglingGoal(t *testing.T) {
	s, _, _ := newTestStore(t)
	task := s.AddTask(domain.CreateTaskInput{Title: "loose", GoalID: "nope"})
	assert.Equal(t, DefaultTaskMinutes, task.EstimatedMinutes)
	assert.Empty(t, task.GoalID)
	assert.False(t, task.IsCompleted)
}

func TestCompleteTask_RoundTripRestoresMinutes(t *testing.T) {
	s, clock, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Write", Level: domain.LevelWeekly})
	first := s.AddTask(domain.CreateTaskInput{Title: "draft", EstimatedMinutes: 45, GoalID: goal.ID})
	second := s.AddTask(domain.CreateTaskInput{Title: "edit", EstimatedMinutes: 20, GoalID: goal.ID})
	s.CompleteTask(first.ID)
	before := s.ProductivityLogs(1)
	require.Len(t, before, 1)

	clock.Advance(time.Hour)
	s.CompleteTask(second.ID)
	assert.Equal(t, 65, todayMinutes(s))

	reopened, ok := s.CompleteTask(second.ID)
	require.True(t, ok)
	assert.False(t, reopened.IsCompleted)
	assert.Nil(t, reopened.CompletedAt)

	after := s.ProductivityLogs(1)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ProductiveMinutes, after[0].ProductiveMinutes)
	assert.Len(t, after[0].CompletedTasks, 1)
}

func TestCompleteTask_UncompleteOnLaterDayKeepsEmptyLog(t *testing.T) {
	s, clock, _ := newTestStore(t)
	task := s.AddTask(domain.CreateTaskInput{Title: "solo", EstimatedMinutes: 25})
	s.CompleteTask(task.ID)

	clock.Advance(48 * time.Hour)
	s.CompleteTask(task.ID)

	logs := s.ProductivityLogs(0)
	require.Len(t, logs, 1)
	assert.Equal(t, "2026-04-06", logs[0].Date)
	assert.Equal(t, 0, logs[0].ProductiveMinutes)
	assert.Empty(t, logs[0].CompletedTasks)
}

func TestCompleteTask_BumpsActivityOfStartedGoal(t *testing.T) {
	s, clock, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Garden", Level: domain.LevelUncategorized})
	s.StartGoal(goal.ID)
	task := s.AddTask(domain.CreateTaskInput{Title: "water", GoalID: goal.ID})

	clock.Advance(2 * time.Hour)
	s.CompleteTask(task.ID)

	g, _ := s.GetGoal(goal.ID)
	assert.Equal(t, domain.GoalInProgress, g.Status)
	require.NotNil(t, g.LastActivityAt)
	assert.Equal(t, clock.Now(), *g.LastActivityAt)
	assert.Equal(t, 1, countType(s.TimelineEventsForGoal(goal.ID), domain.EventGoalStarted))
}

func countType(events []domain.TimelineEvent, eventType domain.EventType) int {
	n := 0
	for _, e := range events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

func TestStartGoal_OnlyFromNotStarted(t *testing.T) {
	s, clock, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Run", Level: domain.LevelWeekly})

	started, ok := s.StartGoal(goal.ID)
	require.True(t, ok)
	require.NotNil(t, started.StartedAt)
	firstStart := *started.StartedAt

	clock.Advance(time.Hour)
	again, _ := s.StartGoal(goal.ID)
	assert.Equal(t, firstStart, *again.StartedAt)

	s.CompleteGoal(goal.ID)
	completed, _ := s.StartGoal(goal.ID)
	assert.Equal(t, domain.GoalCompleted, completed.Status)

	_, ok = s.StartGoal("missing")
	assert.False(t, ok)
}

func TestCompleteGoal_SnapshotOverwrittenOnSecondCall(t *testing.T) {
	s, clock, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Ship", Level: domain.LevelMonthly})
	a := s.AddTask(domain.CreateTaskInput{Title: "a", EstimatedMinutes: 30, GoalID: goal.ID})
	b := s.AddTask(domain.CreateTaskInput{Title: "b", EstimatedMinutes: 60, GoalID: goal.ID})
	s.CompleteTask(a.ID)

	clock.Advance(30 * time.Hour)
	first, ok := s.CompleteGoal(goal.ID)
	require.True(t, ok)
	require.NotNil(t, first.CompletionSnapshot)
	assert.Equal(t, domain.GoalCompleted, first.Status)
	assert.Equal(t, 1, first.CompletionSnapshot.CompletedTasks)
	assert.Equal(t, 30, first.CompletionSnapshot.MinutesSpent)
	assert.Equal(t, 2, first.CompletionSnapshot.DaysToComplete)
	assert.Equal(t, 1, first.CompletionSnapshot.ActiveDays)
	firstCompletedAt := *first.CompletedAt

	clock.Advance(24 * time.Hour)
	s.CompleteTask(b.ID)
	second, _ := s.CompleteGoal(goal.ID)
	require.NotNil(t, second.CompletionSnapshot)
	assert.Equal(t, 2, second.CompletionSnapshot.CompletedTasks)
	assert.Equal(t, 90, second.CompletionSnapshot.MinutesSpent)
	assert.Equal(t, 3, second.CompletionSnapshot.DaysToComplete)
	assert.Equal(t, 3, second.CompletionSnapshot.ActiveDays)
	assert.Equal(t, firstCompletedAt, *second.CompletedAt)
}

func TestDeleteGoal_CascadesTasksAndSlots(t *testing.T) {
	s, _, _ := newTestStore(t)
	slot := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Morning", Type: domain.SlotMorning, StartTime: "06:00", EndTime: "09:00"})
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Meditate", Level: domain.LevelWeekly, TimeSlotID: slot.ID})
	other := s.AddGoal(domain.CreateGoalInput{Title: "Stretch", Level: domain.LevelWeekly, TimeSlotID: slot.ID})
	task := s.AddTask(domain.CreateTaskInput{Title: "sit", EstimatedMinutes: 10, GoalID: goal.ID})
	s.AddTask(domain.CreateTaskInput{Title: "sit more", EstimatedMinutes: 20, GoalID: goal.ID})
	keep := s.AddTask(domain.CreateTaskInput{Title: "reach", GoalID: other.ID})
	s.CompleteTask(task.ID)

	require.True(t, s.DeleteGoal(goal.ID))

	_, ok := s.GetGoal(goal.ID)
	assert.False(t, ok)
	assert.Empty(t, s.TasksForGoal(goal.ID))
	for _, task := range s.Tasks() {
		assert.NotEqual(t, goal.ID, task.GoalID)
	}
	_, ok = s.GetTask(keep.ID)
	assert.True(t, ok)
	for _, sl := range s.TimeSlots() {
		assert.NotContains(t, sl.GoalIDs, goal.ID)
	}
	got, _ := s.GetTimeSlot(slot.ID)
	assert.Equal(t, []string{other.ID}, got.GoalIDs)
	assert.Equal(t, 10, todayMinutes(s), "productivity logs are never deleted")

	assert.False(t, s.DeleteGoal(goal.ID))
}

func TestTimeSlotLink_RoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)
	slot := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Work", Type: domain.SlotWork, StartTime: "09:00", EndTime: "17:00"})
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Deep work", Level: domain.LevelWeekly})
	slotBefore, _ := s.GetTimeSlot(slot.ID)
	goalBefore, _ := s.GetGoal(goal.ID)

	require.True(t, s.AddGoalToTimeSlot(slot.ID, goal.ID))
	linkedSlot, _ := s.GetTimeSlot(slot.ID)
	linkedGoal, _ := s.GetGoal(goal.ID)
	assert.Equal(t, []string{goal.ID}, linkedSlot.GoalIDs)
	assert.Equal(t, slot.ID, linkedGoal.TimeSlotID)

	require.True(t, s.RemoveGoalFromTimeSlot(slot.ID, goal.ID))
	slotAfter, _ := s.GetTimeSlot(slot.ID)
	goalAfter, _ := s.GetGoal(goal.ID)
	assert.Equal(t, slotBefore.GoalIDs, slotAfter.GoalIDs)
	assert.Equal(t, goalBefore.TimeSlotID, goalAfter.TimeSlotID)

	assert.False(t, s.AddGoalToTimeSlot("missing", goal.ID))
	assert.False(t, s.AddGoalToTimeSlot(slot.ID, "missing"))
	assert.False(t, s.RemoveGoalFromTimeSlot(slot.ID, goal.ID))
}

func TestTimeSlotLink_MovesBetweenSlots(t *testing.T) {
	s, _, _ := newTestStore(t)
	morning := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Morning", Type: domain.SlotMorning, StartTime: "06:00", EndTime: "09:00"})
	evening := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Evening", Type: domain.SlotEvening, StartTime: "18:00", EndTime: "22:00"})
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Journal", Level: domain.LevelWeekly, TimeSlotID: morning.ID})

	require.True(t, s.AddGoalToTimeSlot(evening.ID, goal.ID))
	m, _ := s.GetTimeSlot(morning.ID)
	e, _ := s.GetTimeSlot(evening.ID)
	g, _ := s.GetGoal(goal.ID)
	assert.Empty(t, m.GoalIDs)
	assert.Equal(t, []string{goal.ID}, e.GoalIDs)
	assert.Equal(t, evening.ID, g.TimeSlotID)
	assertLinksConsistent(t, s)
}

func TestTimeSlotLink_RemoveAfterMoveLeavesGoalUnscheduled(t *testing.T) {
	s, _, _ := newTestStore(t)
	morning := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Morning", Type: domain.SlotMorning, StartTime: "06:00", EndTime: "09:00"})
	evening := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Evening", Type: domain.SlotEvening, StartTime: "18:00", EndTime: "22:00"})
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Journal", Level: domain.LevelWeekly, TimeSlotID: morning.ID})

	require.True(t, s.AddGoalToTimeSlot(evening.ID, goal.ID))
	require.True(t, s.RemoveGoalFromTimeSlot(evening.ID, goal.ID))

	m, _ := s.GetTimeSlot(morning.ID)
	e, _ := s.GetTimeSlot(evening.ID)
	g, _ := s.GetGoal(goal.ID)
	assert.Empty(t, m.GoalIDs, "previous slot is not restored")
	assert.Empty(t, e.GoalIDs)
	assert.Empty(t, g.TimeSlotID)
	assertLinksConsistent(t, s)
}

func TestDeleteTimeSlot_ClearsGoalReference(t *testing.T) {
	s, _, _ := newTestStore(t)
	slot := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Leisure", Type: domain.SlotLeisure, StartTime: "14:00", EndTime: "18:00"})
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Guitar", Level: domain.LevelYearly, TimeSlotID: slot.ID})

	require.True(t, s.DeleteTimeSlot(slot.ID))
	g, ok := s.GetGoal(goal.ID)
	require.True(t, ok)
	assert.Empty(t, g.TimeSlotID)
	assertLinksConsistent(t, s)
}

func TestUpdateTimeSlot_KeepsMembership(t *testing.T) {
	s, _, _ := newTestStore(t)
	slot := s.AddTimeSlot(domain.CreateTimeSlotInput{Name: "Work", Type: domain.SlotWork, StartTime: "09:00", EndTime: "17:00"})
	assert.Equal(t, domain.DefaultSlotColor(domain.SlotWork), slot.Color)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Reports", Level: domain.LevelWeekly, TimeSlotID: slot.ID})

	name, active := "Office", false
	updated, ok := s.UpdateTimeSlot(slot.ID, domain.TimeSlotPatch{Name: &name, IsActive: &active})
	require.True(t, ok)
	assert.Equal(t, "Office", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, []string{goal.ID}, updated.GoalIDs)
}

func assertLinksConsistent(t *testing.T, s *Store) {
	t.Helper()
	slots := s.TimeSlots()
	for _, g := range s.Goals() {
		for _, sl := range slots {
			assert.Equal(t, g.TimeSlotID == sl.ID, sl.HasGoal(g.ID), "goal %s slot %s", g.ID, sl.ID)
		}
	}
}

func TestLoadDefaultTimeSlots_SeedsOnce(t *testing.T) {
	s, _, _ := newTestStore(t)
	slots := s.LoadDefaultTimeSlots()
	require.Len(t, slots, 4)
	assert.Equal(t, "Morning", slots[0].Name)
	assert.Equal(t, "06:00", slots[0].StartTime)
	assert.Equal(t, "Evening", slots[3].Name)
	assert.Equal(t, "22:00", slots[3].EndTime)

	assert.Len(t, s.LoadDefaultTimeSlots(), 4)
}

func TestTimeline_CappedMostRecentFirst(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := 0; i < 650; i++ {
		s.LogTimelineEvent(domain.EventNoteAdded, "", "", fmt.Sprintf("n%d", i))
	}
	st := s.Snapshot()
	require.Len(t, st.TimelineEvents, 500)
	assert.Equal(t, "n649", st.TimelineEvents[0].Details)
	assert.Equal(t, "n150", st.TimelineEvents[499].Details)

	recent := s.TimelineEvents(3)
	require.Len(t, recent, 3)
	assert.Equal(t, "n647", recent[2].Details)
	assert.Len(t, s.TimelineEvents(0), 50)
}

func TestRecordSleepThenWake_SameDate(t *testing.T) {
	s, clock, _ := newTestStore(t)
	clock.now = time.Date(2026, 4, 6, 0, 30, 0, 0, time.UTC)
	s.RecordSleep()

	clock.now = time.Date(2026, 4, 6, 8, 0, 0, 0, time.UTC)
	log := s.RecordWakeUp(0, 4)

	logs := s.SleepLogs(0)
	require.Len(t, logs, 1)
	assert.Equal(t, log.ID, logs[0].ID)
	require.NotNil(t, logs[0].SleepTime)
	require.NotNil(t, logs[0].WakeUpTime)
	require.NotNil(t, logs[0].WakeUpMood)
	assert.Equal(t, domain.Mood(4), *logs[0].WakeUpMood)
	require.NotNil(t, logs[0].SleepDurationMinutes)
	assert.Equal(t, 450, *logs[0].SleepDurationMinutes)
}

func TestRecordWakeUp_UsesPreviousNightAndAdjustment(t *testing.T) {
	s, clock, _ := newTestStore(t)
	clock.now = time.Date(2026, 4, 5, 22, 45, 0, 0, time.UTC)
	s.RecordSleep()
	clock.now = time.Date(2026, 4, 5, 23, 15, 0, 0, time.UTC)
	s.RecordSleep()

	clock.now = time.Date(2026, 4, 6, 7, 45, 0, 0, time.UTC)
	log := s.RecordWakeUp(30, 9)

	require.NotNil(t, log.WakeUpTime)
	assert.Equal(t, time.Date(2026, 4, 6, 7, 15, 0, 0, time.UTC), *log.WakeUpTime)
	assert.Equal(t, 30, log.WakeUpAdjustedMinutes)
	assert.Nil(t, log.WakeUpMood, "mood outside 1-5 is ignored")
	require.NotNil(t, log.SleepDurationMinutes)
	assert.Equal(t, 480, *log.SleepDurationMinutes)

	yesterday := s.SleepLogs(2)
	require.Len(t, yesterday, 2)
	assert.Len(t, yesterday[1].SleepAttempts, 2)
	assert.Nil(t, yesterday[1].WakeUpTime)

	today, ok := s.TodaySleepLog()
	require.True(t, ok)
	assert.Nil(t, today.SleepTime)

	stats := s.SleepStats()
	assert.Equal(t, 480, stats.AverageSleepDuration)
	assert.Equal(t, 2, stats.StreakDays)
}

func TestMissingReferencesAreNoOps(t *testing.T) {
	s, _, repo := newTestStore(t)
	s.AddGoal(domain.CreateGoalInput{Title: "g", Level: domain.LevelWeekly})
	saves := repo.Saves()
	events := len(s.Snapshot().TimelineEvents)

	_, ok := s.CompleteTask("missing")
	assert.False(t, ok)
	_, ok = s.UpdateGoal("missing", domain.GoalPatch{})
	assert.False(t, ok)
	_, ok = s.CompleteGoal("missing")
	assert.False(t, ok)
	assert.False(t, s.DeleteTask("missing"))
	assert.False(t, s.DeleteTimeSlot("missing"))
	_, ok = s.AddNote("missing", "text")
	assert.False(t, ok)
	_, ok = s.GoalTimelineStats("missing")
	assert.False(t, ok)

	assert.Equal(t, saves, repo.Saves())
	assert.Len(t, s.Snapshot().TimelineEvents, events)
}

func TestUpdateGoal_ShallowMerge(t *testing.T) {
	s, _, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Old", Level: domain.LevelYearly})

	title := "New"
	level := domain.LevelQuarterly
	updated, ok := s.UpdateGoal(goal.ID, domain.GoalPatch{Title: &title, Level: &level})
	require.True(t, ok)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, domain.Quarterly{Year: 2026, Quarter: 2}, updated.Metadata)

	status := domain.GoalCompleted
	completed, _ := s.UpdateGoal(goal.ID, domain.GoalPatch{Status: &status})
	assert.Equal(t, domain.GoalCompleted, completed.Status)
	assert.NotNil(t, completed.CompletionSnapshot)
	assert.NotNil(t, completed.CompletedAt)
}

func TestUpdateGoal_MetadataSetsLevel(t *testing.T) {
	s, _, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Read", Level: domain.LevelYearly})

	updated, ok := s.UpdateGoal(goal.ID, domain.GoalPatch{Metadata: domain.Monthly{Year: 2026, Month: 5}})
	require.True(t, ok)
	assert.Equal(t, domain.LevelMonthly, updated.Level)
	assert.Equal(t, domain.Monthly{Year: 2026, Month: 5}, updated.Metadata)

	stored, _ := s.GetGoal(goal.ID)
	assert.Equal(t, stored.Metadata.Level(), stored.Level)
}

func TestArchiveAndDeleteTask(t *testing.T) {
	s, _, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Clean", Level: domain.LevelWeekly})
	task := s.AddTask(domain.CreateTaskInput{Title: "kitchen", GoalID: goal.ID})

	archived, ok := s.ArchiveTask(task.ID)
	require.True(t, ok)
	assert.True(t, archived.IsArchived)

	minutes := 50
	updated, _ := s.UpdateTask(task.ID, domain.TaskPatch{EstimatedMinutes: &minutes})
	assert.Equal(t, 50, updated.EstimatedMinutes)

	require.True(t, s.DeleteTask(task.ID))
	assert.Empty(t, s.TasksForGoal(goal.ID))

	g, _ := s.ArchiveGoal(goal.ID)
	assert.True(t, g.IsArchived)
	assert.Equal(t, domain.EventGoalArchived, s.TimelineEvents(1)[0].EventType)
}

func TestGoalTimelineStatsAndNotes(t *testing.T) {
	s, clock, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Paint", Level: domain.LevelMonthly})
	task := s.AddTask(domain.CreateTaskInput{Title: "sketch", EstimatedMinutes: 40, GoalID: goal.ID})
	s.CompleteTask(task.ID)

	clock.Advance(73 * time.Hour)
	note, ok := s.AddNote(goal.ID, "bought canvas")
	require.True(t, ok)
	assert.Equal(t, domain.EventNoteAdded, note.EventType)

	stats, ok := s.GoalTimelineStats(goal.ID)
	require.True(t, ok)
	assert.Equal(t, 3, stats.TotalDays)
	assert.Nil(t, stats.DaysToComplete)
	assert.Equal(t, 1, stats.TasksCompleted)
	assert.Equal(t, 40, stats.MinutesSpent)
	assert.Equal(t, 100, stats.Progress)

	forGoal := s.TimelineEventsForGoal(goal.ID)
	require.NotEmpty(t, forGoal)
	assert.Equal(t, "bought canvas", forGoal[0].Details)
}

func TestTodayProductivity_TopGoals(t *testing.T) {
	s, _, _ := newTestStore(t)
	a := s.AddGoal(domain.CreateGoalInput{Title: "A", Level: domain.LevelWeekly})
	b := s.AddGoal(domain.CreateGoalInput{Title: "B", Level: domain.LevelWeekly})
	s.CompleteTask(s.AddTask(domain.CreateTaskInput{Title: "a1", EstimatedMinutes: 20, GoalID: a.ID}).ID)
	s.CompleteTask(s.AddTask(domain.CreateTaskInput{Title: "b1", EstimatedMinutes: 60, GoalID: b.ID}).ID)
	s.CompleteTask(s.AddTask(domain.CreateTaskInput{Title: "loose", EstimatedMinutes: 16}).ID)

	p := s.TodayProductivity()
	assert.Equal(t, 96, p.TodayMinutes)
	assert.Equal(t, 10, p.Percentage)
	require.Len(t, p.TopGoals, 2)
	assert.Equal(t, "B", p.TopGoals[0].Title)
	assert.Equal(t, 60, p.TopGoals[0].Minutes)
}

func TestPersistence_ReloadRestoresState(t *testing.T) {
	s, clock, repo := newTestStore(t)
	s.LoadDefaultTimeSlots()
	slots := s.TimeSlots()
	goal := s.AddGoal(domain.CreateGoalInput{
		Title:      "Marathon",
		Level:      domain.LevelWeekly,
		TimeSlotID: slots[0].ID,
	})
	task := s.AddTask(domain.CreateTaskInput{Title: "long run", EstimatedMinutes: 90, GoalID: goal.ID})
	s.CompleteTask(task.ID)
	s.RecordSleep()
	clock.Advance(8 * time.Hour)
	s.RecordWakeUp(5, 3)
	s.CompleteGoal(goal.ID)

	before := s.Snapshot()
	reloaded := New(Options{Snapshots: repo, Now: clock.Now})
	require.NoError(t, reloaded.Load(context.Background()))
	after := reloaded.Snapshot()

	wantJSON, err := json.Marshal(before)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(after)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))

	g, ok := reloaded.GetGoal(goal.ID)
	require.True(t, ok)
	assert.Equal(t, domain.Weekly{WeekStartDate: "2026-04-06"}, g.Metadata)
	assert.Equal(t, 100, reloaded.GoalProgress(goal.ID))
	last, ok := reloaded.LastInteraction()
	require.True(t, ok)
	assert.True(t, last.Equal(clock.Now()))
}

func TestLoad_RejectsNewerSchema(t *testing.T) {
	repo := memory.NewSnapshotRepository()
	require.NoError(t, repo.Save(context.Background(), []byte(`{"version":99}`)))
	s := New(Options{Snapshots: repo})
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestSubscribe_ReceivesChangesAfterUnlock(t *testing.T) {
	s, _, _ := newTestStore(t)
	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) {
		changes = append(changes, c)
		if c.Entity == EntityGoal {
			_, ok := s.GetGoal(c.ID)
			assert.True(t, ok, "store is readable from a callback")
		}
	})

	goal := s.AddGoal(domain.CreateGoalInput{Title: "Observe", Level: domain.LevelWeekly})
	require.Len(t, changes, 2)
	assert.Equal(t, EntityTimeline, changes[0].Entity)
	assert.Equal(t, domain.EventGoalCreated, changes[0].Event.EventType)
	assert.Equal(t, EntityGoal, changes[1].Entity)
	assert.Equal(t, goal.ID, changes[1].Goal.ID)

	unsubscribe()
	unsubscribe()
	s.AddGoal(domain.CreateGoalInput{Title: "Quiet", Level: domain.LevelWeekly})
	assert.Len(t, changes, 2)
}

func TestTrackInteractionAndReset(t *testing.T) {
	s, clock, repo := newTestStore(t)
	s.AddGoal(domain.CreateGoalInput{Title: "x", Level: domain.LevelWeekly})
	saves := repo.Saves()

	clock.Advance(time.Minute)
	s.TrackInteraction()
	last, ok := s.LastInteraction()
	require.True(t, ok)
	assert.Equal(t, clock.Now(), last)
	assert.Equal(t, saves+1, repo.Saves())

	s.Reset()
	st := s.Snapshot()
	assert.Empty(t, st.Goals)
	assert.Empty(t, st.TimelineEvents)
	assert.Equal(t, SchemaVersion, st.Version)
}

func TestSubscribe_ConcurrentMutationsPublishInOrder(t *testing.T) {
	s, _, _ := newTestStore(t)
	goal := s.AddGoal(domain.CreateGoalInput{Title: "Run", Level: domain.LevelWeekly})

	var (
		mu   sync.Mutex
		ops  []Operation
		once sync.Once
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	s.Subscribe(func(c Change) {
		if c.Entity != EntityGoal {
			return
		}
		if c.Op == OpUpsert {
			once.Do(func() { close(entered) })
			<-release
		}
		mu.Lock()
		ops = append(ops, c.Op)
		mu.Unlock()
	})

	updated := make(chan struct{})
	go func() {
		defer close(updated)
		title := "Run further"
		s.UpdateGoal(goal.ID, domain.GoalPatch{Title: &title})
	}()
	<-entered

	deleted := make(chan struct{})
	go func() {
		defer close(deleted)
		s.DeleteGoal(goal.ID)
	}()

	select {
	case <-deleted:
		t.Fatal("delete was published before the earlier update")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Eventually(t, func() bool {
		_, ok := s.GetGoal(goal.ID)
		return !ok
	}, time.Second, 5*time.Millisecond, "state changes are not held back")

	close(release)
	<-updated
	<-deleted
	assert.Equal(t, []Operation{OpUpsert, OpDelete}, ops)
}
