package store

import (
	"github.com/fastygo/goaltracker/domain"
)

// DefaultTimeSlots is the routine seeded by LoadDefaultTimeSlots.
var DefaultTimeSlots = []domain.CreateTimeSlotInput{
	{Name: "Morning", Type: domain.SlotMorning, StartTime: "06:00", EndTime: "09:00"},
	{Name: "Work", Type: domain.SlotWork, StartTime: "09:00", EndTime: "17:00"},
	{Name: "Leisure", Type: domain.SlotLeisure, StartTime: "14:00", EndTime: "18:00"},
	{Name: "Evening", Type: domain.SlotEvening, StartTime: "18:00", EndTime: "22:00"},
}

func (s *Store) slotIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.slots {
		if s.slots[i].ID == id {
			return i
		}
	}
	return -1
}

// AddTimeSlot creates an active, empty slot.
func (s *Store) AddTimeSlot(in domain.CreateTimeSlotInput) domain.TimeSlot {
	var created domain.TimeSlot
	s.mutate("add_time_slot", func(tx *txn) {
		created = s.addSlotLocked(tx, in)
	})
	return created
}

func (s *Store) addSlotLocked(tx *txn, in domain.CreateTimeSlotInput) domain.TimeSlot {
	color := in.Color
	if color == "" {
		color = domain.DefaultSlotColor(in.Type)
	}
	slot := domain.TimeSlot{
		ID:        s.newID(),
		Name:      in.Name,
		Type:      in.Type,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Color:     color,
		GoalIDs:   []string{},
		IsActive:  true,
		CreatedAt: tx.now,
	}
	s.slots = append(s.slots, slot)
	tx.record(Change{Entity: EntityTimeSlot, Op: OpUpsert, ID: slot.ID})
	tx.event(domain.EventSlotCreated, "", "", slot.Name)
	return slot.Clone()
}

// LoadDefaultTimeSlots seeds the default routine when no slots exist yet
// and returns the slots present afterwards.
func (s *Store) LoadDefaultTimeSlots() []domain.TimeSlot {
	s.mutate("load_default_time_slots", func(tx *txn) {
		if len(s.slots) > 0 {
			return
		}
		for _, in := range DefaultTimeSlots {
			s.addSlotLocked(tx, in)
		}
	})
	return s.TimeSlots()
}

// UpdateTimeSlot merges patch into the slot. Membership is not editable here.
func (s *Store) UpdateTimeSlot(id string, patch domain.TimeSlotPatch) (domain.TimeSlot, bool) {
	var (
		out   domain.TimeSlot
		found bool
	)
	s.mutate("update_time_slot", func(tx *txn) {
		idx := s.slotIndex(id)
		if idx < 0 {
			return
		}
		found = true
		slot := &s.slots[idx]
		if patch.Name != nil {
			slot.Name = *patch.Name
		}
		if patch.Type != nil {
			slot.Type = *patch.Type
		}
		if patch.StartTime != nil {
			slot.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			slot.EndTime = *patch.EndTime
		}
		if patch.Color != nil {
			slot.Color = *patch.Color
		}
		if patch.IsActive != nil {
			slot.IsActive = *patch.IsActive
		}
		tx.record(Change{Entity: EntityTimeSlot, Op: OpUpsert, ID: slot.ID})
		tx.event(domain.EventSlotUpdated, "", "", slot.Name)
		out = slot.Clone()
	})
	return out, found
}

// DeleteTimeSlot removes the slot. Member goals survive and lose their
// slot reference.
func (s *Store) DeleteTimeSlot(id string) bool {
	var found bool
	s.mutate("delete_time_slot", func(tx *txn) {
		idx := s.slotIndex(id)
		if idx < 0 {
			return
		}
		found = true
		slot := s.slots[idx]
		for i := range s.goals {
			if s.goals[i].TimeSlotID == slot.ID {
				s.goals[i].TimeSlotID = ""
				tx.goalChanged(&s.goals[i])
			}
		}
		s.slots = append(s.slots[:idx], s.slots[idx+1:]...)
		tx.record(Change{Entity: EntityTimeSlot, Op: OpDelete, ID: slot.ID})
		tx.event(domain.EventSlotDeleted, "", "", slot.Name)
	})
	return found
}

// AddGoalToTimeSlot schedules the goal into the slot, moving it out of any
// previous slot. Both sides of the link change together; it reports false
// when either id is unknown. A goal holds one slot, so the previous slot is
// forgotten: removing the goal again leaves it unscheduled rather than
// returning it to where it was. Add then remove is a round trip only for a
// goal that had no slot.
func (s *Store) AddGoalToTimeSlot(slotID, goalID string) bool {
	var ok bool
	s.mutate("add_goal_to_time_slot", func(tx *txn) {
		ok = s.linkLocked(tx, slotID, goalID)
		if ok && len(tx.changes) > 0 {
			tx.goalChanged(&s.goals[s.goalIndex(goalID)])
		}
	})
	return ok
}

func (s *Store) linkLocked(tx *txn, slotID, goalID string) bool {
	si, gi := s.slotIndex(slotID), s.goalIndex(goalID)
	if si < 0 || gi < 0 {
		return false
	}
	g := &s.goals[gi]
	slot := &s.slots[si]
	if g.TimeSlotID == slotID && slot.HasGoal(goalID) {
		return true
	}
	if prev := s.slotIndex(g.TimeSlotID); prev >= 0 && prev != si {
		if s.removeSlotMemberLocked(&s.slots[prev], goalID) {
			tx.record(Change{Entity: EntityTimeSlot, Op: OpUpsert, ID: s.slots[prev].ID})
		}
	}
	if !slot.HasGoal(goalID) {
		slot.GoalIDs = append(slot.GoalIDs, goalID)
	}
	g.TimeSlotID = slotID
	tx.record(Change{Entity: EntityTimeSlot, Op: OpUpsert, ID: slot.ID})
	tx.event(domain.EventGoalScheduled, goalID, "", slot.Name)
	return true
}

// RemoveGoalFromTimeSlot unschedules the goal from the slot. It reports
// whether the goal was a member.
func (s *Store) RemoveGoalFromTimeSlot(slotID, goalID string) bool {
	var ok bool
	s.mutate("remove_goal_from_time_slot", func(tx *txn) {
		si := s.slotIndex(slotID)
		if si < 0 {
			return
		}
		slot := &s.slots[si]
		ok = s.removeSlotMemberLocked(slot, goalID)
		gi := s.goalIndex(goalID)
		if gi >= 0 && s.goals[gi].TimeSlotID == slotID {
			s.goals[gi].TimeSlotID = ""
			tx.goalChanged(&s.goals[gi])
			ok = true
		}
		if ok {
			tx.record(Change{Entity: EntityTimeSlot, Op: OpUpsert, ID: slot.ID})
			tx.event(domain.EventGoalUnscheduled, goalID, "", slot.Name)
		}
	})
	return ok
}

// removeSlotMemberLocked drops goalID from the slot's membership, keeping order.
func (s *Store) removeSlotMemberLocked(slot *domain.TimeSlot, goalID string) bool {
	for i, id := range slot.GoalIDs {
		if id == goalID {
			slot.GoalIDs = append(slot.GoalIDs[:i], slot.GoalIDs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) GetTimeSlot(id string) (domain.TimeSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.slotIndex(id)
	if idx < 0 {
		return domain.TimeSlot{}, false
	}
	return s.slots[idx].Clone(), true
}

// TimeSlots returns every slot in creation order.
func (s *Store) TimeSlots() []domain.TimeSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TimeSlot, len(s.slots))
	for i := range s.slots {
		out[i] = s.slots[i].Clone()
	}
	return out
}
