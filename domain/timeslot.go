package domain

import "time"

// TimeSlotType categorizes a daily schedule block.
type TimeSlotType string

const (
	SlotMorning TimeSlotType = "morning"
	SlotWork    TimeSlotType = "work"
	SlotEvening TimeSlotType = "evening"
	SlotLeisure TimeSlotType = "leisure"
)

func (t TimeSlotType) Valid() bool {
	switch t {
	case SlotMorning, SlotWork, SlotEvening, SlotLeisure:
		return true
	}
	return false
}

// TimeSlot is a named block of the day that goals are scheduled into.
// GoalIDs mirrors Goal.TimeSlotID; only the store's link/unlink operations
// change either side.
type TimeSlot struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      TimeSlotType `json:"type"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
	Color     string       `json:"color,omitempty"`
	GoalIDs   []string     `json:"goalIds"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (s TimeSlot) Clone() TimeSlot {
	out := s
	out.GoalIDs = append([]string{}, s.GoalIDs...)
	return out
}

// HasGoal reports whether goalID is a member of the slot.
func (s *TimeSlot) HasGoal(goalID string) bool {
	if s == nil {
		return false
	}
	for _, id := range s.GoalIDs {
		if id == goalID {
			return true
		}
	}
	return false
}

// DefaultSlotColor returns the palette colour used when a slot has none.
func DefaultSlotColor(t TimeSlotType) string {
	switch t {
	case SlotMorning:
		return "#f59e0b"
	case SlotWork:
		return "#3b82f6"
	case SlotEvening:
		return "#8b5cf6"
	case SlotLeisure:
		return "#10b981"
	default:
		return "#64748b"
	}
}
