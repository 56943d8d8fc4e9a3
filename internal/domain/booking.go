package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is a reserved [StartTime, EndTime) interval against an event type.
// Only confirmed bookings block slots; the non-overlap invariant among
// confirmed rows of one event type is enforced by the store.
type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID           uuid.UUID     `bun:"id,pk,type:uuid"`
	EventTypeID  uuid.UUID     `bun:"event_type_id,notnull,type:uuid"`
	InviteeName  string        `bun:"invitee_name,notnull"`
	InviteeEmail string        `bun:"invitee_email,notnull"`
	StartTime    time.Time     `bun:"start_time,notnull"`
	EndTime      time.Time     `bun:"end_time,notnull"`
	Status       BookingStatus `bun:"status,notnull"`
	Notes        *string       `bun:"notes"`
	CreatedAt    time.Time     `bun:"created_at,notnull"`
	UpdatedAt    time.Time     `bun:"updated_at,notnull"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.Status == "" {
			b.Status = BookingStatusConfirmed
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

// Overlaps reports whether the half-open intervals [b.StartTime, b.EndTime)
// and [start, end) intersect.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && b.StartTime.Before(end)
}
