package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookable/backend/internal/domain"
)

// DefaultSlotRange is the lookahead applied when a slot query does not name
// an explicit date range.
const DefaultSlotRange = 30 * 24 * time.Hour

type EventTypeRepository interface {
	Create(ctx context.Context, et domain.EventType) (domain.EventType, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.EventType, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.EventType, error)
	FindOwned(ctx context.Context, ownerID, id uuid.UUID) (domain.EventType, error)
	Update(ctx context.Context, et domain.EventType) (domain.EventType, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type AvailabilityRepository interface {
	Create(ctx context.Context, w domain.Availability) (domain.Availability, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Availability, error)
	FindOwned(ctx context.Context, ownerID, id uuid.UUID) (domain.Availability, error)
	Update(ctx context.Context, w domain.Availability) (domain.Availability, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type BookingRepository interface {
	// Create admits the booking atomically: concurrent requests for the same
	// event type are serialized by the store, and an overlap with an existing
	// confirmed booking returns ErrConflict with no row written.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	ListConfirmed(ctx context.Context, eventTypeID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	ListAllConfirmed(ctx context.Context, eventTypeID uuid.UUID) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	Update(ctx context.Context, b domain.Booking) (domain.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
