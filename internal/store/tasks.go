package store

import (
	"github.com/fastygo/goaltracker/domain"
)

func (s *Store) taskIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) tasksForGoalLocked(goalID string) []domain.Task {
	out := []domain.Task{}
	for i := range s.tasks {
		if s.tasks[i].BelongsTo(goalID) {
			out = append(out, s.tasks[i].Clone())
		}
	}
	return out
}

// AddTask creates an open task. A non-positive estimate falls back to the
// configured default and a goal id that does not resolve is dropped.
func (s *Store) AddTask(in domain.CreateTaskInput) domain.Task {
	var created domain.Task
	s.mutate("add_task", func(tx *txn) {
		minutes := in.EstimatedMinutes
		if minutes <= 0 {
			minutes = s.settings.DefaultTaskMinutes
		}
		goalID := in.GoalID
		if s.goalIndex(goalID) < 0 {
			goalID = ""
		}
		t := domain.Task{
			ID:               s.newID(),
			Title:            in.Title,
			Description:      in.Description,
			GoalID:           goalID,
			EstimatedMinutes: minutes,
			CreatedAt:        tx.now,
		}
		s.tasks = append(s.tasks, t)
		tx.event(domain.EventTaskCreated, t.GoalID, t.ID, t.Title)
		tx.taskChanged(&t)
		created = t.Clone()
	})
	return created
}

// CompleteTask toggles completion. Completing credits the estimate to
// today's productivity log and starts the parent goal when needed;
// reopening takes back exactly the minutes that completion credited.
func (s *Store) CompleteTask(id string) (domain.Task, bool) {
	var (
		out   domain.Task
		found bool
	)
	s.mutate("complete_task", func(tx *txn) {
		idx := s.taskIndex(id)
		if idx < 0 {
			return
		}
		found = true
		t := &s.tasks[idx]
		if t.IsCompleted {
			s.reopenLocked(tx, t)
		} else {
			s.finishLocked(tx, t)
		}
		tx.taskChanged(t)
		out = t.Clone()
	})
	return out, found
}

func (s *Store) finishLocked(tx *txn, t *domain.Task) {
	t.IsCompleted = true
	t.CompletedAt = domain.TimePtr(tx.now)

	date := domain.DateKey(tx.now)
	log := s.productivityLogLocked(date)
	log.ProductiveMinutes += t.EstimatedMinutes
	log.CompletedTasks = append(log.CompletedTasks, domain.TaskCompletion{
		TaskID:      t.ID,
		GoalID:      t.GoalID,
		Date:        date,
		Duration:    t.EstimatedMinutes,
		CompletedAt: tx.now,
	})
	tx.record(Change{Entity: EntityProductivity, Op: OpUpsert, ID: date})
	tx.event(domain.EventTaskCompleted, t.GoalID, t.ID, t.Title)

	if gi := s.goalIndex(t.GoalID); gi >= 0 {
		g := &s.goals[gi]
		if g.Status == domain.GoalNotStarted {
			s.startLocked(tx, g)
		} else {
			g.LastActivityAt = domain.TimePtr(tx.now)
		}
		tx.goalChanged(g)
	}
}

func (s *Store) reopenLocked(tx *txn, t *domain.Task) {
	preferred := ""
	if t.CompletedAt != nil {
		preferred = domain.DateKey(t.CompletedAt.In(s.settings.Location))
	}
	if li, ri := s.findCompletionLocked(t.ID, preferred); li >= 0 {
		log := &s.productivity[li]
		log.ProductiveMinutes -= log.CompletedTasks[ri].Duration
		if log.ProductiveMinutes < 0 {
			log.ProductiveMinutes = 0
		}
		log.CompletedTasks = append(log.CompletedTasks[:ri], log.CompletedTasks[ri+1:]...)
		tx.record(Change{Entity: EntityProductivity, Op: OpUpsert, ID: log.Date})
	}
	t.IsCompleted = false
	t.CompletedAt = nil
	tx.event(domain.EventTaskUncompleted, t.GoalID, t.ID, t.Title)
}

// findCompletionLocked locates the latest completion record of taskID,
// looking at the preferred date first.
func (s *Store) findCompletionLocked(taskID, preferred string) (logIdx, recordIdx int) {
	search := func(li int) int {
		records := s.productivity[li].CompletedTasks
		for ri := len(records) - 1; ri >= 0; ri-- {
			if records[ri].TaskID == taskID {
				return ri
			}
		}
		return -1
	}
	if preferred != "" {
		for li := range s.productivity {
			if s.productivity[li].Date == preferred {
				if ri := search(li); ri >= 0 {
					return li, ri
				}
			}
		}
	}
	for li := range s.productivity {
		if ri := search(li); ri >= 0 {
			return li, ri
		}
	}
	return -1, -1
}

// productivityLogLocked returns the log for date, creating it when absent.
func (s *Store) productivityLogLocked(date string) *domain.ProductivityLog {
	for i := range s.productivity {
		if s.productivity[i].Date == date {
			return &s.productivity[i]
		}
	}
	s.productivity = append(s.productivity, domain.ProductivityLog{
		Date:           date,
		CompletedTasks: []domain.TaskCompletion{},
	})
	return &s.productivity[len(s.productivity)-1]
}

// UpdateTask merges patch into the task. Reassigning to a goal that does not
// exist detaches the task; negative estimates are ignored.
func (s *Store) UpdateTask(id string, patch domain.TaskPatch) (domain.Task, bool) {
	var (
		out   domain.Task
		found bool
	)
	s.mutate("update_task", func(tx *txn) {
		idx := s.taskIndex(id)
		if idx < 0 {
			return
		}
		found = true
		t := &s.tasks[idx]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.EstimatedMinutes != nil && *patch.EstimatedMinutes >= 0 {
			t.EstimatedMinutes = *patch.EstimatedMinutes
		}
		if patch.GoalID != nil {
			t.GoalID = ""
			if s.goalIndex(*patch.GoalID) >= 0 {
				t.GoalID = *patch.GoalID
			}
		}
		if patch.IsArchived != nil {
			t.IsArchived = *patch.IsArchived
		}
		tx.event(domain.EventTaskUpdated, t.GoalID, t.ID, t.Title)
		tx.taskChanged(t)
		out = t.Clone()
	})
	return out, found
}

// ArchiveTask soft-deletes the task.
func (s *Store) ArchiveTask(id string) (domain.Task, bool) {
	var (
		out   domain.Task
		found bool
	)
	s.mutate("archive_task", func(tx *txn) {
		idx := s.taskIndex(id)
		if idx < 0 {
			return
		}
		found = true
		t := &s.tasks[idx]
		if !t.IsArchived {
			t.IsArchived = true
			tx.event(domain.EventTaskArchived, t.GoalID, t.ID, t.Title)
			tx.taskChanged(t)
		}
		out = t.Clone()
	})
	return out, found
}

// DeleteTask removes the task. Minutes it already contributed stay logged.
func (s *Store) DeleteTask(id string) bool {
	var found bool
	s.mutate("delete_task", func(tx *txn) {
		idx := s.taskIndex(id)
		if idx < 0 {
			return
		}
		found = true
		t := s.tasks[idx]
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
		tx.record(Change{Entity: EntityTask, Op: OpDelete, ID: t.ID})
		tx.event(domain.EventTaskDeleted, t.GoalID, t.ID, t.Title)
	})
	return found
}

func (s *Store) GetTask(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.taskIndex(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// Tasks returns every task in creation order.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = s.tasks[i].Clone()
	}
	return out
}

// TasksForGoal returns the tasks owned by goalID.
func (s *Store) TasksForGoal(goalID string) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasksForGoalLocked(goalID)
}
