package domain

import (
	"errors"
	"sort"
	"time"
)

// SlotPolicy selects how availability windows are expanded into candidate
// slots.
type SlotPolicy string

const (
	// SlotPolicyTiled tiles each matching window into consecutive
	// duration-sized slots, dropping a final partial slot that would run past
	// the window end.
	SlotPolicyTiled SlotPolicy = "tiled"
	// SlotPolicyAnchor emits a single candidate per matching window, anchored
	// at the window's start time.
	SlotPolicyAnchor SlotPolicy = "anchor"
)

func (p SlotPolicy) Valid() bool {
	return p == SlotPolicyTiled || p == SlotPolicyAnchor
}

// Slot is a candidate bookable [StartTime, EndTime) interval of the event
// type's duration.
type Slot struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// ResolveSlots computes the open, bookable slots for eventType between
// rangeStart and rangeEnd (calendar days inclusive), given the owner's full
// availability set and the event type's confirmed bookings.
//
// Day iteration and wall-clock anchoring happen in each window's own
// timezone, so a DST transition shifts the slot's wall-clock position, not
// its local meaning. Candidates overlapping any confirmed booking are
// discarded using half-open interval intersection, as are candidates whose
// start is not strictly after now. The result is ordered by ascending start
// time; windows are expanded independently and never merged.
//
// The engine does no I/O and never fails on valid input; errors indicate
// malformed windows or a non-positive duration, both of which are rejected
// upstream at creation time.
func ResolveSlots(eventType EventType, windows []Availability, confirmed []Booking, rangeStart, rangeEnd, now time.Time, policy SlotPolicy) ([]Slot, error) {
	duration := eventType.Duration()
	if duration <= 0 {
		return nil, errors.New("event type duration must be positive")
	}
	if !policy.Valid() {
		return nil, errors.New("unknown slot policy")
	}
	if rangeEnd.Before(rangeStart) {
		return nil, errors.New("range end before range start")
	}

	out := make([]Slot, 0, 16)

	for _, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return nil, errors.New("invalid day_of_week")
		}
		start, err := ParseClockTime(w.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := ParseClockTime(w.EndTime)
		if err != nil {
			return nil, err
		}
		loc, err := time.LoadLocation(w.Timezone)
		if err != nil {
			return nil, errors.New("invalid timezone")
		}

		firstLocal := rangeStart.In(loc)
		lastLocal := rangeEnd.In(loc)

		year, month, day := firstLocal.Date()
		lastYear, lastMonth, lastDay := lastLocal.Date()
		cursor := time.Date(year, month, day, 0, 0, 0, 0, loc)
		boundary := time.Date(lastYear, lastMonth, lastDay, 0, 0, 0, 0, loc)

		for ; !cursor.After(boundary); cursor = cursor.AddDate(0, 0, 1) {
			if int(cursor.Weekday()) != w.DayOfWeek {
				continue
			}

			y, m, d := cursor.Date()
			windowStart := start.On(y, m, d, loc)
			windowEnd := end.On(y, m, d, loc)

			switch policy {
			case SlotPolicyAnchor:
				out = appendCandidate(out, windowStart, windowStart.Add(duration), confirmed, now)
			case SlotPolicyTiled:
				for s := windowStart; !s.Add(duration).After(windowEnd); s = s.Add(duration) {
					out = appendCandidate(out, s, s.Add(duration), confirmed, now)
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].EndTime.Before(out[j].EndTime)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})

	return out, nil
}

func appendCandidate(slots []Slot, start, end time.Time, confirmed []Booking, now time.Time) []Slot {
	if !start.After(now) {
		return slots
	}
	for i := range confirmed {
		if confirmed[i].Overlaps(start, end) {
			return slots
		}
	}
	return append(slots, Slot{StartTime: start, EndTime: end})
}
