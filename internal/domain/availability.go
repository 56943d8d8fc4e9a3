package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Availability is one recurring weekly window during which an owner accepts
// bookings: a day of week plus a local wall-clock range in the window's own
// timezone. A user may hold several windows on the same day; they are never
// merged.
type Availability struct {
	bun.BaseModel `bun:"table:availabilities"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	DayOfWeek int       `bun:"day_of_week,notnull"` // 0 = Sunday ... 6 = Saturday
	StartTime string    `bun:"start_time,notnull"`  // HH:MM:SS
	EndTime   string    `bun:"end_time,notnull"`    // HH:MM:SS
	Timezone  string    `bun:"timezone,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (a *Availability) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// ClockTime is a wall-clock time of day, independent of any date or zone.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

func (c ClockTime) SecondsOfDay() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// On anchors the clock time on the given calendar day in loc. During DST
// transitions the result follows time.Date's normalization for the zone.
func (c ClockTime) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, c.Second, 0, loc)
}

// ParseClockTime parses "HH:MM:SS" or "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		sec = 0
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return ClockTime{}, fmt.Errorf("invalid time of day %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return ClockTime{}, fmt.Errorf("invalid time of day %q", s)
	}
	return ClockTime{Hour: h, Minute: m, Second: sec}, nil
}

// Validate checks the invariants enforced at window creation: day of week in
// range, parseable times with start strictly before end on the same day, and
// a loadable IANA timezone.
func (a *Availability) Validate() error {
	if a.DayOfWeek < 0 || a.DayOfWeek > 6 {
		return errors.New("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}
	start, err := ParseClockTime(a.StartTime)
	if err != nil {
		return errors.New("start_time must be a valid HH:MM:SS time")
	}
	end, err := ParseClockTime(a.EndTime)
	if err != nil {
		return errors.New("end_time must be a valid HH:MM:SS time")
	}
	if start.SecondsOfDay() >= end.SecondsOfDay() {
		return errors.New("start_time must be before end_time")
	}
	if a.Timezone == "" {
		return errors.New("timezone is required")
	}
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return errors.New("invalid timezone")
	}
	return nil
}
