package model

import (
	"fmt"
	"strings"
	"time"

	"telegram-post-scheduler/internal/domain"
)

type ScheduleType string

const (
	ScheduleDaily  ScheduleType = "daily"
	ScheduleWeekly ScheduleType = "weekly"
)

// Schedule is an optional recurrence rule attached to a message definition.
// A nil *Schedule means the message is delivered on demand only.
type Schedule struct {
	Type ScheduleType `yaml:"type" json:"type"`
	Time string       `yaml:"time" json:"time"`                   // zero-padded 24h clock, "HH:MM"
	Day  string       `yaml:"day,omitempty" json:"day,omitempty"` // weekday name, weekly only
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseTimeOfDay validates a zero-padded 24-hour "HH:MM" string.
// Validation happens at creation time; delivery trusts the stored value.
func ParseTimeOfDay(s string) (string, error) {
	if len(s) != 5 || s[2] != ':' {
		return "", fmt.Errorf("%w: time %q must be HH:MM", domain.ErrInvalidSchedule, s)
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return "", fmt.Errorf("%w: time %q must be HH:MM", domain.ErrInvalidSchedule, s)
	}
	return s, nil
}

// ParseWeekday maps a weekday name (any case) to its canonical form.
func ParseWeekday(s string) (string, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown weekday %q", domain.ErrInvalidSchedule, s)
	}
	return d.String(), nil
}

func NewDailySchedule(at string) (*Schedule, error) {
	t, err := ParseTimeOfDay(at)
	if err != nil {
		return nil, err
	}
	return &Schedule{Type: ScheduleDaily, Time: t}, nil
}

func NewWeeklySchedule(at, day string) (*Schedule, error) {
	t, err := ParseTimeOfDay(at)
	if err != nil {
		return nil, err
	}
	d, err := ParseWeekday(day)
	if err != nil {
		return nil, err
	}
	return &Schedule{Type: ScheduleWeekly, Time: t, Day: d}, nil
}

// Validate checks a schedule loaded from the store.
func (s *Schedule) Validate() error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case ScheduleDaily:
		_, err := ParseTimeOfDay(s.Time)
		return err
	case ScheduleWeekly:
		if _, err := ParseTimeOfDay(s.Time); err != nil {
			return err
		}
		_, err := ParseWeekday(s.Day)
		return err
	default:
		return fmt.Errorf("%w: unknown type %q", domain.ErrInvalidSchedule, s.Type)
	}
}

// Matches reports whether the rule is due at the given instant. Granularity
// is one minute: the rule matches for the whole minute its clock names.
func (s *Schedule) Matches(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Time != now.Format("15:04") {
		return false
	}
	if s.Type == ScheduleWeekly {
		return strings.EqualFold(s.Day, now.Weekday().String())
	}
	return s.Type == ScheduleDaily
}

// Describe renders the rule for admin-facing listings.
func (s *Schedule) Describe() string {
	switch {
	case s == nil:
		return "manual"
	case s.Type == ScheduleWeekly:
		return fmt.Sprintf("%s at %s", s.Day, s.Time)
	default:
		return fmt.Sprintf("daily at %s", s.Time)
	}
}
