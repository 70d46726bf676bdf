package domain

import "strings"

// CreateGoalInput carries the fields a caller supplies for a new goal.
type CreateGoalInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Level       GoalLevel    `json:"level"`
	Metadata    GoalMetadata `json:"-"`
	TimeSlotID  string       `json:"timeSlotId,omitempty"`
}

// Validate is for callers at the edge; the store itself accepts any input.
func (in CreateGoalInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewError(ErrCodeInvalid, "title is required")
	}
	if !in.Level.Valid() {
		return NewError(ErrCodeInvalid, "unknown goal level")
	}
	if in.Metadata != nil && in.Metadata.Level() != in.Level {
		return NewError(ErrCodeInvalid, "metadata type does not match level")
	}
	return ValidateMetadata(in.Metadata)
}

type CreateTaskInput struct {
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	EstimatedMinutes int    `json:"estimatedMinutes,omitempty"`
	GoalID           string `json:"goalId,omitempty"`
}

func (in CreateTaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewError(ErrCodeInvalid, "title is required")
	}
	if in.EstimatedMinutes < 0 {
		return NewError(ErrCodeInvalid, "estimatedMinutes must not be negative")
	}
	return nil
}

type CreateTimeSlotInput struct {
	Name      string       `json:"name"`
	Type      TimeSlotType `json:"type"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
	Color     string       `json:"color,omitempty"`
}

func (in CreateTimeSlotInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewError(ErrCodeInvalid, "name is required")
	}
	if !in.Type.Valid() {
		return NewError(ErrCodeInvalid, "unknown time slot type")
	}
	if !IsClockTime(in.StartTime) || !IsClockTime(in.EndTime) {
		return NewError(ErrCodeInvalid, "startTime and endTime must be HH:MM")
	}
	return nil
}

// GoalPatch is a shallow merge applied by UpdateGoal. The time slot
// reference is absent on purpose: it only changes through slot linking.
type GoalPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Level       *GoalLevel   `json:"level,omitempty"`
	Metadata    GoalMetadata `json:"-"`
	Status      *GoalStatus  `json:"status,omitempty"`
	IsArchived  *bool        `json:"isArchived,omitempty"`
}

type TaskPatch struct {
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	EstimatedMinutes *int    `json:"estimatedMinutes,omitempty"`
	GoalID           *string `json:"goalId,omitempty"`
	IsArchived       *bool   `json:"isArchived,omitempty"`
}

// TimeSlotPatch never touches membership; see Store.AddGoalToTimeSlot.
type TimeSlotPatch struct {
	Name      *string       `json:"name,omitempty"`
	Type      *TimeSlotType `json:"type,omitempty"`
	StartTime *string       `json:"startTime,omitempty"`
	EndTime   *string       `json:"endTime,omitempty"`
	Color     *string       `json:"color,omitempty"`
	IsActive  *bool         `json:"isActive,omitempty"`
}

// IsClockTime reports whether s is a 24h "HH:MM" time of day.
func IsClockTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	return h < 24 && m < 60
}
