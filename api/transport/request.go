package transport

import (
	"encoding/json"
	"strings"

	"github.com/fastygo/goaltracker/domain"
)

type CreateGoalRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Level       domain.GoalLevel `json:"level"`
	Metadata    json.RawMessage  `json:"metadata"`
	TimeSlotID  string           `json:"timeSlotId"`
}

// ToInput parses the tagged metadata and validates the result.
func (r CreateGoalRequest) ToInput() (domain.CreateGoalInput, error) {
	if r.Level == "" {
		r.Level = domain.LevelUncategorized
	}
	meta, err := parseMetadata(r.Metadata)
	if err != nil {
		return domain.CreateGoalInput{}, err
	}
	in := domain.CreateGoalInput{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Level:       r.Level,
		Metadata:    meta,
		TimeSlotID:  r.TimeSlotID,
	}
	if err := in.Validate(); err != nil {
		return domain.CreateGoalInput{}, err
	}
	return in, nil
}

type UpdateGoalRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Level       *domain.GoalLevel  `json:"level"`
	Metadata    json.RawMessage    `json:"metadata"`
	Status      *domain.GoalStatus `json:"status"`
	IsArchived  *bool              `json:"isArchived"`
}

func (r UpdateGoalRequest) ToPatch() (domain.GoalPatch, error) {
	meta, err := parseMetadata(r.Metadata)
	if err != nil {
		return domain.GoalPatch{}, err
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return domain.GoalPatch{}, domain.NewError(domain.ErrCodeInvalid, "title must not be empty")
	}
	if r.Level != nil && !r.Level.Valid() {
		return domain.GoalPatch{}, domain.NewError(domain.ErrCodeInvalid, "unknown goal level")
	}
	if r.Status != nil {
		switch *r.Status {
		case domain.GoalNotStarted, domain.GoalInProgress, domain.GoalCompleted:
		default:
			return domain.GoalPatch{}, domain.NewError(domain.ErrCodeInvalid, "unknown goal status")
		}
	}
	if meta != nil && r.Level != nil && meta.Level() != *r.Level {
		return domain.GoalPatch{}, domain.NewError(domain.ErrCodeInvalid, "metadata type does not match level")
	}
	if err := domain.ValidateMetadata(meta); err != nil {
		return domain.GoalPatch{}, err
	}
	return domain.GoalPatch{
		Title:       r.Title,
		Description: r.Description,
		Level:       r.Level,
		Metadata:    meta,
		Status:      r.Status,
		IsArchived:  r.IsArchived,
	}, nil
}

type CreateTaskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	GoalID           string `json:"goalId"`
}

func (r CreateTaskRequest) ToInput() (domain.CreateTaskInput, error) {
	in := domain.CreateTaskInput{
		Title:            strings.TrimSpace(r.Title),
		Description:      r.Description,
		EstimatedMinutes: r.EstimatedMinutes,
		GoalID:           r.GoalID,
	}
	return in, in.Validate()
}

type UpdateTaskRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	EstimatedMinutes *int    `json:"estimatedMinutes"`
	GoalID           *string `json:"goalId"`
	IsArchived       *bool   `json:"isArchived"`
}

func (r UpdateTaskRequest) ToPatch() (domain.TaskPatch, error) {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return domain.TaskPatch{}, domain.NewError(domain.ErrCodeInvalid, "title must not be empty")
	}
	if r.EstimatedMinutes != nil && *r.EstimatedMinutes < 0 {
		return domain.TaskPatch{}, domain.NewError(domain.ErrCodeInvalid, "estimatedMinutes must not be negative")
	}
	return domain.TaskPatch{
		Title:            r.Title,
		Description:      r.Description,
		EstimatedMinutes: r.EstimatedMinutes,
		GoalID:           r.GoalID,
		IsArchived:       r.IsArchived,
	}, nil
}

type CreateTimeSlotRequest struct {
	Name      string              `json:"name"`
	Type      domain.TimeSlotType `json:"type"`
	StartTime string              `json:"startTime"`
	EndTime   string              `json:"endTime"`
	Color     string              `json:"color"`
}

func (r CreateTimeSlotRequest) ToInput() (domain.CreateTimeSlotInput, error) {
	in := domain.CreateTimeSlotInput{
		Name:      strings.TrimSpace(r.Name),
		Type:      r.Type,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Color:     r.Color,
	}
	return in, in.Validate()
}

type UpdateTimeSlotRequest struct {
	Name      *string              `json:"name"`
	Type      *domain.TimeSlotType `json:"type"`
	StartTime *string              `json:"startTime"`
	EndTime   *string              `json:"endTime"`
	Color     *string              `json:"color"`
	IsActive  *bool                `json:"isActive"`
}

func (r UpdateTimeSlotRequest) ToPatch() (domain.TimeSlotPatch, error) {
	if r.Type != nil && !r.Type.Valid() {
		return domain.TimeSlotPatch{}, domain.NewError(domain.ErrCodeInvalid, "unknown time slot type")
	}
	for _, t := range []*string{r.StartTime, r.EndTime} {
		if t != nil && !domain.IsClockTime(*t) {
			return domain.TimeSlotPatch{}, domain.NewError(domain.ErrCodeInvalid, "startTime and endTime must be HH:MM")
		}
	}
	return domain.TimeSlotPatch{
		Name:      r.Name,
		Type:      r.Type,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Color:     r.Color,
		IsActive:  r.IsActive,
	}, nil
}

// WakeRequest confirms a wake-up, optionally shifted back in time.
type WakeRequest struct {
	AdjustedMinutesAgo int          `json:"adjustedMinutesAgo"`
	Mood               *domain.Mood `json:"mood"`
}

func (r WakeRequest) Validate() error {
	if r.AdjustedMinutesAgo < 0 {
		return domain.NewError(domain.ErrCodeInvalid, "adjustedMinutesAgo must not be negative")
	}
	if r.Mood != nil && !r.Mood.Valid() {
		return domain.NewError(domain.ErrCodeInvalid, "mood must be between 1 and 5")
	}
	return nil
}

func (r WakeRequest) MoodValue() domain.Mood {
	if r.Mood == nil {
		return 0
	}
	return *r.Mood
}

type NoteRequest struct {
	Text string `json:"text"`
}

func (r NoteRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "text is required")
	}
	return nil
}

// TimelineEventRequest logs a caller-defined timeline entry.
type TimelineEventRequest struct {
	EventType domain.EventType `json:"eventType"`
	GoalID    string           `json:"goalId"`
	TaskID    string           `json:"taskId"`
	Details   string           `json:"details"`
}

func (r TimelineEventRequest) Validate() error {
	if strings.TrimSpace(string(r.EventType)) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "eventType is required")
	}
	return nil
}

func parseMetadata(raw json.RawMessage) (domain.GoalMetadata, error) {
	meta, err := domain.UnmarshalMetadata(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid goal metadata", err)
	}
	return meta, nil
}
