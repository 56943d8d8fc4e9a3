package domain

import (
	"testing"
	"time"
)

func utcEventType(durationMinutes int) EventType {
	return EventType{DurationMinutes: durationMinutes}
}

func mondayWindow(start, end, tz string) Availability {
	return Availability{DayOfWeek: 1, StartTime: start, EndTime: end, Timezone: tz}
}

func TestResolveSlots_TiledFullDay(t *testing.T) {
	// 2026-01-05 is a Monday.
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	slots, err := ResolveSlots(
		utcEventType(30),
		[]Availability{mondayWindow("09:00:00", "17:00:00", "UTC")},
		nil,
		rangeStart, rangeEnd, now, SlotPolicyTiled,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
	for i, s := range slots {
		wantStart := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * 30 * time.Minute)
		if !s.StartTime.Equal(wantStart) {
			t.Fatalf("slots[%d].StartTime = %v, want %v", i, s.StartTime, wantStart)
		}
		if !s.EndTime.Equal(wantStart.Add(30 * time.Minute)) {
			t.Fatalf("slots[%d].EndTime = %v, want %v", i, s.EndTime, wantStart.Add(30*time.Minute))
		}
	}
}

func TestResolveSlots_AnchorPolicySingleSlotPerWindow(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	slots, err := ResolveSlots(
		utcEventType(30),
		[]Availability{mondayWindow("09:00:00", "17:00:00", "UTC")},
		nil,
		rangeStart, rangeEnd, now, SlotPolicyAnchor,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("len(slots) = %d, want 1", len(slots))
	}
	wantStart := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	if !slots[0].StartTime.Equal(wantStart) {
		t.Fatalf("StartTime = %v, want %v", slots[0].StartTime, wantStart)
	}
}

func TestResolveSlots_ConfirmedBookingExcludesSlot(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	booked := Booking{
		Status:    BookingStatusConfirmed,
		StartTime: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC),
	}

	slots, err := ResolveSlots(
		utcEventType(30),
		[]Availability{mondayWindow("09:00:00", "17:00:00", "UTC")},
		[]Booking{booked},
		rangeStart, rangeEnd, now, SlotPolicyTiled,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 15 {
		t.Fatalf("len(slots) = %d, want 15", len(slots))
	}
	for _, s := range slots {
		if s.StartTime.Before(booked.EndTime) && booked.StartTime.Before(s.EndTime) {
			t.Fatalf("slot [%v, %v) overlaps booking", s.StartTime, s.EndTime)
		}
	}
	first := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	if !slots[0].StartTime.Equal(first) {
		t.Fatalf("slots[0].StartTime = %v, want %v", slots[0].StartTime, first)
	}
}

func TestResolveSlots_PartialOverlapAlsoExcluded(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Booking straddling two tiled slots knocks both out.
	booked := Booking{
		Status:    BookingStatusConfirmed,
		StartTime: time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 1, 5, 9, 45, 0, 0, time.UTC),
	}

	slots, err := ResolveSlots(
		utcEventType(30),
		[]Availability{mondayWindow("09:00:00", "17:00:00", "UTC")},
		[]Booking{booked},
		rangeStart, rangeEnd, now, SlotPolicyTiled,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 14 {
		t.Fatalf("len(slots) = %d, want 14", len(slots))
	}
	first := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if !slots[0].StartTime.Equal(first) {
		t.Fatalf("slots[0].StartTime = %v, want %v", slots[0].StartTime, first)
	}
}

func TestResolveSlots_EmptyAvailabilityYieldsEmptyResult(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	slots, err := ResolveSlots(utcEventType(30), nil, nil, rangeStart, rangeEnd, now, SlotPolicyTiled)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0", len(slots))
	}
}

func TestResolveSlots_OnlyMatchingWeekdaysProduceSlots(t *testing.T) {
	// Full week starting Sunday 2026-01-04.
	rangeStart := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 10, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	slots, err := ResolveSlots(
		utcEventType(60),
		[]Availability{mondayWindow("09:00:00", "12:00:00", "UTC")},
		nil,
		rangeStart, rangeEnd, now, SlotPolicyTiled,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}
	for _, s := range slots {
		if s.StartTime.Weekday() != time.Monday {
			t.Fatalf("slot on %v, want Monday", s.StartTime.Weekday())
		}
	}
}

func TestResolveSlots_PastSlotsRejected(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	// Resolution time sits exactly on the 10:00 slot boundary; slots at and
	// before it are not bookable.
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	slots, err := ResolveSlots(
		utcEventType(60),
		[]Availability{mondayWindow("09:00:00", "13:00:00", "UTC")},
		nil,
		rangeStart, rangeEnd, now, SlotPolicyTiled,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	for _, s := range slots {
		if !s.StartTime.After(now) {
			t.Fatalf("slot start %v not strictly after now %v", s.StartTime, now)
		}
	}
}

func TestResolveSlots_FinalPartialSlotDiscarded(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	slots, err := ResolveSlots(
		utcEventType(30),
		[]Availability{mondayWindow("09:00:00", "10:15:00", "UTC")},
		nil,
		rangeStart, rangeEnd, now, SlotPolicyTiled,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
}

func TestResolveSlots_WindowNeverSpillsPastMidnight(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 6, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// A 90-minute event cannot fit the late Monday window, and Tuesday's
	// window does not extend it across midnight.
	windows := []Availability{
		{DayOfWeek: 1, StartTime: "23:00:00", EndTime: "23:59:59", Timezone: "UTC"},
		{DayOfWeek: 2, StartTime: "00:00:00", EndTime: "01:00:00", Timezone: "UTC"},
	}

	slots, err := ResolveSlots(utcEventType(90), windows, nil, rangeStart, rangeEnd, now, SlotPolicyTiled)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0", len(slots))
	}
}

func TestResolveSlots_MultipleWindowsSameDayNotMerged(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	windows := []Availability{
		mondayWindow("09:00:00", "10:00:00", "UTC"),
		mondayWindow("09:30:00", "10:30:00", "UTC"),
	}

	slots, err := ResolveSlots(utcEventType(60), windows, nil, rangeStart, rangeEnd, now, SlotPolicyTiled)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if !slots[0].StartTime.Before(slots[1].StartTime) {
		t.Fatalf("slots not ordered: %v then %v", slots[0].StartTime, slots[1].StartTime)
	}
}

func TestResolveSlots_WindowTimezoneDrivesWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}

	// US DST starts Sunday 2026-03-08. The window covers the Sunday before
	// and the Sunday of the transition.
	rangeStart := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	rangeEnd := time.Date(2026, 3, 8, 23, 59, 59, 0, loc)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	slots, err := ResolveSlots(
		utcEventType(60),
		[]Availability{{DayOfWeek: 0, StartTime: "09:00:00", EndTime: "10:00:00", Timezone: "America/New_York"}},
		nil,
		rangeStart, rangeEnd, now, SlotPolicyTiled,
	)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}

	// Both slots start at 09:00 local; the UTC offset differs by one hour.
	for _, s := range slots {
		local := s.StartTime.In(loc)
		if local.Hour() != 9 || local.Minute() != 0 {
			t.Fatalf("local start = %v, want 09:00", local)
		}
	}
	beforeDST := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	afterDST := time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC)
	if !slots[0].StartTime.Equal(beforeDST) {
		t.Fatalf("slots[0].StartTime = %v, want %v", slots[0].StartTime, beforeDST)
	}
	if !slots[1].StartTime.Equal(afterDST) {
		t.Fatalf("slots[1].StartTime = %v, want %v", slots[1].StartTime, afterDST)
	}
}

func TestResolveSlots_DeterministicForIdenticalInputs(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	windows := []Availability{
		mondayWindow("09:00:00", "17:00:00", "UTC"),
		{DayOfWeek: 3, StartTime: "13:00:00", EndTime: "15:00:00", Timezone: "UTC"},
	}

	first, err := ResolveSlots(utcEventType(30), windows, nil, rangeStart, rangeEnd, now, SlotPolicyTiled)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	second, err := ResolveSlots(utcEventType(30), windows, nil, rangeStart, rangeEnd, now, SlotPolicyTiled)
	if err != nil {
		t.Fatalf("ResolveSlots error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].StartTime.Equal(second[i].StartTime) || !first[i].EndTime.Equal(second[i].EndTime) {
			t.Fatalf("slot %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestResolveSlots_InvalidInputs(t *testing.T) {
	rangeStart := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("non-positive duration", func(t *testing.T) {
		_, err := ResolveSlots(utcEventType(0), nil, nil, rangeStart, rangeEnd, now, SlotPolicyTiled)
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("malformed window time", func(t *testing.T) {
		_, err := ResolveSlots(
			utcEventType(30),
			[]Availability{mondayWindow("not-a-time", "17:00:00", "UTC")},
			nil, rangeStart, rangeEnd, now, SlotPolicyTiled,
		)
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown timezone", func(t *testing.T) {
		_, err := ResolveSlots(
			utcEventType(30),
			[]Availability{mondayWindow("09:00:00", "17:00:00", "Mars/Olympus")},
			nil, rangeStart, rangeEnd, now, SlotPolicyTiled,
		)
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := ResolveSlots(utcEventType(30), nil, nil, rangeStart, rangeEnd, now, SlotPolicy("bogus"))
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{in: "09:00:00", want: ClockTime{Hour: 9}},
		{in: "23:59:59", want: ClockTime{Hour: 23, Minute: 59, Second: 59}},
		{in: "09:30", want: ClockTime{Hour: 9, Minute: 30}},
		{in: "24:00:00", wantErr: true},
		{in: "12:60:00", wantErr: true},
		{in: "garbage", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseClockTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseClockTime(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClockTime(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseClockTime(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
