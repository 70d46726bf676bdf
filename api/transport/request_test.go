package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/goaltracker/domain"
)

func TestCreateGoalRequestParsesMetadata(t *testing.T) {
	var req CreateGoalRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "  Ship v1 ",
		"level": "quarterly",
		"metadata": {"type": "quarterly", "year": 2026, "quarter": 2}
	}`), &req))

	in, err := req.ToInput()
	require.NoError(t, err)
	assert.Equal(t, "Ship v1", in.Title)
	assert.Equal(t, domain.Quarterly{Year: 2026, Quarter: 2}, in.Metadata)
}

func TestCreateGoalRequestDefaultsLevel(t *testing.T) {
	in, err := CreateGoalRequest{Title: "Read more"}.ToInput()
	require.NoError(t, err)
	assert.Equal(t, domain.LevelUncategorized, in.Level)
	assert.Nil(t, in.Metadata)
}

func TestCreateGoalRequestRejects(t *testing.T) {
	cases := map[string]CreateGoalRequest{
		"empty title":    {Title: " ", Level: domain.LevelYearly},
		"unknown level":  {Title: "x", Level: "decade"},
		"mismatched":     {Title: "x", Level: domain.LevelMonthly, Metadata: json.RawMessage(`{"type":"yearly","year":2026}`)},
		"bad quarter":    {Title: "x", Level: domain.LevelQuarterly, Metadata: json.RawMessage(`{"type":"quarterly","year":2026,"quarter":5}`)},
		"unknown type":   {Title: "x", Level: domain.LevelYearly, Metadata: json.RawMessage(`{"type":"decade"}`)},
		"malformed json": {Title: "x", Level: domain.LevelYearly, Metadata: json.RawMessage(`{`)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := req.ToInput()
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "got %v", err)
		})
	}
}

func TestUpdateGoalRequestValidates(t *testing.T) {
	status := domain.GoalStatus("paused")
	_, err := UpdateGoalRequest{Status: &status}.ToPatch()
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	level := domain.LevelWeekly
	patch, err := UpdateGoalRequest{Level: &level, Metadata: json.RawMessage(`{"type":"weekly","weekStartDate":"2026-04-06"}`)}.ToPatch()
	require.NoError(t, err)
	assert.Equal(t, domain.Weekly{WeekStartDate: "2026-04-06"}, patch.Metadata)
}

func TestUpdateTimeSlotRequestValidatesClock(t *testing.T) {
	bad := "25:00"
	_, err := UpdateTimeSlotRequest{EndTime: &bad}.ToPatch()
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	good := "07:30"
	patch, err := UpdateTimeSlotRequest{StartTime: &good}.ToPatch()
	require.NoError(t, err)
	assert.Equal(t, &good, patch.StartTime)
}

func TestWakeRequest(t *testing.T) {
	mood := domain.Mood(6)
	assert.Error(t, WakeRequest{Mood: &mood}.Validate())
	assert.Error(t, WakeRequest{AdjustedMinutesAgo: -5}.Validate())

	mood = 4
	req := WakeRequest{AdjustedMinutesAgo: 15, Mood: &mood}
	require.NoError(t, req.Validate())
	assert.Equal(t, domain.Mood(4), req.MoodValue())
	assert.Equal(t, domain.Mood(0), WakeRequest{}.MoodValue())
}

func TestNoteRequest(t *testing.T) {
	assert.Error(t, NoteRequest{Text: "  "}.Validate())
	assert.NoError(t, NoteRequest{Text: "felt good"}.Validate())
}
