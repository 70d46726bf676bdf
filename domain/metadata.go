package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// GoalMetadata is the level-specific payload of a goal. The concrete
// variants are Yearly, Quarterly, Monthly, Weekly and Uncategorized.
type GoalMetadata interface {
	Level() GoalLevel
	isGoalMetadata()
}

type Yearly struct {
	Year int `json:"year"`
}

type Quarterly struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

type Monthly struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Weekly anchors a goal to the week starting at WeekStartDate (YYYY-MM-DD).
type Weekly struct {
	WeekStartDate string `json:"weekStartDate"`
}

type Uncategorized struct{}

func (Yearly) Level() GoalLevel        { return LevelYearly }
func (Quarterly) Level() GoalLevel     { return LevelQuarterly }
func (Monthly) Level() GoalLevel       { return LevelMonthly }
func (Weekly) Level() GoalLevel        { return LevelWeekly }
func (Uncategorized) Level() GoalLevel { return LevelUncategorized }

func (Yearly) isGoalMetadata()        {}
func (Quarterly) isGoalMetadata()     {}
func (Monthly) isGoalMetadata()       {}
func (Weekly) isGoalMetadata()        {}
func (Uncategorized) isGoalMetadata() {}

// DefaultMetadata derives metadata for level from the reference time.
func DefaultMetadata(level GoalLevel, ref time.Time) GoalMetadata {
	if ref.IsZero() {
		ref = time.Now()
	}
	switch level {
	case LevelYearly:
		return Yearly{Year: ref.Year()}
	case LevelQuarterly:
		return Quarterly{Year: ref.Year(), Quarter: (int(ref.Month())-1)/3 + 1}
	case LevelMonthly:
		return Monthly{Year: ref.Year(), Month: int(ref.Month())}
	case LevelWeekly:
		offset := (int(ref.Weekday()) + 6) % 7
		return Weekly{WeekStartDate: DateKey(ref.AddDate(0, 0, -offset))}
	default:
		return Uncategorized{}
	}
}

// DescribeMetadata renders the metadata as a short human label, e.g. "Q2 2026".
func DescribeMetadata(m GoalMetadata) string {
	switch v := m.(type) {
	case Yearly:
		return fmt.Sprintf("%d", v.Year)
	case Quarterly:
		return fmt.Sprintf("Q%d %d", v.Quarter, v.Year)
	case Monthly:
		return fmt.Sprintf("%s %d", time.Month(v.Month).String(), v.Year)
	case Weekly:
		return "Week of " + v.WeekStartDate
	case Uncategorized, nil:
		return "Uncategorized"
	default:
		return ""
	}
}

// ValidateMetadata checks the payload ranges of each variant.
func ValidateMetadata(m GoalMetadata) error {
	switch v := m.(type) {
	case Yearly:
		if v.Year <= 0 {
			return NewError(ErrCodeInvalid, "yearly metadata requires a year")
		}
	case Quarterly:
		if v.Year <= 0 || v.Quarter < 1 || v.Quarter > 4 {
			return NewError(ErrCodeInvalid, "quarterly metadata requires a year and quarter 1-4")
		}
	case Monthly:
		if v.Year <= 0 || v.Month < 1 || v.Month > 12 {
			return NewError(ErrCodeInvalid, "monthly metadata requires a year and month 1-12")
		}
	case Weekly:
		if _, err := time.Parse(DateLayout, v.WeekStartDate); err != nil {
			return WrapError(ErrCodeInvalid, "weekly metadata requires weekStartDate as YYYY-MM-DD", err)
		}
	case Uncategorized, nil:
	default:
		return NewError(ErrCodeInvalid, "unknown goal metadata")
	}
	return nil
}

type metadataEnvelope struct {
	Type          GoalLevel `json:"type"`
	Year          int       `json:"year,omitempty"`
	Quarter       int       `json:"quarter,omitempty"`
	Month         int       `json:"month,omitempty"`
	WeekStartDate string    `json:"weekStartDate,omitempty"`
}

// MarshalMetadata encodes m as an object tagged by its "type" discriminator.
func MarshalMetadata(m GoalMetadata) ([]byte, error) {
	var env metadataEnvelope
	switch v := m.(type) {
	case Yearly:
		env = metadataEnvelope{Type: LevelYearly, Year: v.Year}
	case Quarterly:
		env = metadataEnvelope{Type: LevelQuarterly, Year: v.Year, Quarter: v.Quarter}
	case Monthly:
		env = metadataEnvelope{Type: LevelMonthly, Year: v.Year, Month: v.Month}
	case Weekly:
		env = metadataEnvelope{Type: LevelWeekly, WeekStartDate: v.WeekStartDate}
	case Uncategorized, nil:
		env = metadataEnvelope{Type: LevelUncategorized}
	default:
		return nil, fmt.Errorf("unsupported goal metadata %T", m)
	}
	return json.Marshal(env)
}

// UnmarshalMetadata decodes a tagged metadata object. Empty input yields nil.
func UnmarshalMetadata(data []byte) (GoalMetadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env metadataEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case LevelYearly:
		return Yearly{Year: env.Year}, nil
	case LevelQuarterly:
		return Quarterly{Year: env.Year, Quarter: env.Quarter}, nil
	case LevelMonthly:
		return Monthly{Year: env.Year, Month: env.Month}, nil
	case LevelWeekly:
		return Weekly{WeekStartDate: env.WeekStartDate}, nil
	case LevelUncategorized:
		return Uncategorized{}, nil
	default:
		return nil, fmt.Errorf("unknown goal metadata type %q", env.Type)
	}
}
