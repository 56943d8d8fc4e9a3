package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func validationError(msg string) error {
	return NewValidationError(msg)
}

// UnauthorizedError marks an operation on a resource the caller can see
// exists but does not own.
type UnauthorizedError struct {
	msg string
}

func (e *UnauthorizedError) Error() string {
	return e.msg
}

func NewUnauthorizedError(msg string) *UnauthorizedError {
	return &UnauthorizedError{msg: msg}
}

func unauthorizedError(msg string) error {
	return NewUnauthorizedError(msg)
}

type Service struct {
	eventTypes   store.EventTypeRepository
	availability store.AvailabilityRepository
	bookings     store.BookingRepository
	policy       domain.SlotPolicy
	now          func() time.Time
}

func NewService(eventTypes store.EventTypeRepository, availability store.AvailabilityRepository, bookings store.BookingRepository, policy domain.SlotPolicy) *Service {
	if !policy.Valid() {
		policy = domain.SlotPolicyTiled
	}
	return &Service{
		eventTypes:   eventTypes,
		availability: availability,
		bookings:     bookings,
		policy:       policy,
		now:          time.Now,
	}
}

type EventTypeInput struct {
	Title           string
	Description     *string
	DurationMinutes int
	Color           *string
}

func (in EventTypeInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return validationError("title is required")
	}
	if in.DurationMinutes <= 0 {
		return validationError("duration_minutes must be positive")
	}
	return nil
}

func (s *Service) CreateEventType(ctx context.Context, ownerID uuid.UUID, in EventTypeInput) (domain.EventType, error) {
	if err := in.validate(); err != nil {
		return domain.EventType{}, err
	}
	return s.eventTypes.Create(ctx, domain.EventType{
		UserID:          ownerID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Color:           in.Color,
	})
}

func (s *Service) ListEventTypes(ctx context.Context, ownerID uuid.UUID) ([]domain.EventType, error) {
	return s.eventTypes.ListByOwner(ctx, ownerID)
}

func (s *Service) GetEventType(ctx context.Context, ownerID, id uuid.UUID) (domain.EventType, error) {
	return s.eventTypes.FindOwned(ctx, ownerID, id)
}

func (s *Service) UpdateEventType(ctx context.Context, ownerID, id uuid.UUID, in EventTypeInput) (domain.EventType, error) {
	if err := in.validate(); err != nil {
		return domain.EventType{}, err
	}
	et, err := s.eventTypes.FindOwned(ctx, ownerID, id)
	if err != nil {
		return domain.EventType{}, err
	}
	et.Title = strings.TrimSpace(in.Title)
	et.Description = in.Description
	et.DurationMinutes = in.DurationMinutes
	et.Color = in.Color
	return s.eventTypes.Update(ctx, et)
}

func (s *Service) DeleteEventType(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.eventTypes.Delete(ctx, ownerID, id)
}

type AvailabilityInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	Timezone  string
}

func (s *Service) CreateAvailability(ctx context.Context, ownerID uuid.UUID, in AvailabilityInput) (domain.Availability, error) {
	w := domain.Availability{
		UserID:    ownerID,
		DayOfWeek: in.DayOfWeek,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Timezone:  strings.TrimSpace(in.Timezone),
	}
	if w.Timezone == "" {
		w.Timezone = "UTC"
	}
	if err := w.Validate(); err != nil {
		return domain.Availability{}, validationError(err.Error())
	}
	return s.availability.Create(ctx, w)
}

func (s *Service) ListAvailability(ctx context.Context, ownerID uuid.UUID) ([]domain.Availability, error) {
	return s.availability.ListByOwner(ctx, ownerID)
}

type UpdateAvailabilityInput struct {
	DayOfWeek *int
	StartTime *string
	EndTime   *string
	Timezone  *string
}

func (s *Service) UpdateAvailability(ctx context.Context, ownerID, id uuid.UUID, in UpdateAvailabilityInput) (domain.Availability, error) {
	w, err := s.availability.FindOwned(ctx, ownerID, id)
	if err != nil {
		return domain.Availability{}, err
	}
	if in.DayOfWeek != nil {
		w.DayOfWeek = *in.DayOfWeek
	}
	if in.StartTime != nil {
		w.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		w.EndTime = *in.EndTime
	}
	if in.Timezone != nil {
		if tz := strings.TrimSpace(*in.Timezone); tz != "" {
			w.Timezone = tz
		}
	}
	if err := w.Validate(); err != nil {
		return domain.Availability{}, validationError(err.Error())
	}
	return s.availability.Update(ctx, w)
}

func (s *Service) DeleteAvailability(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.availability.Delete(ctx, ownerID, id)
}

// PublicEventType returns an event type for the unauthenticated booking page.
func (s *Service) PublicEventType(ctx context.Context, id uuid.UUID) (domain.EventType, error) {
	return s.eventTypes.FindByID(ctx, id)
}

// ListSlots resolves the open slots for an event type. A nil start or end
// falls back to a window of DefaultSlotRange starting now.
func (s *Service) ListSlots(ctx context.Context, eventTypeID uuid.UUID, rangeStart, rangeEnd *time.Time) ([]domain.Slot, error) {
	et, err := s.eventTypes.FindByID(ctx, eventTypeID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start := now
	if rangeStart != nil {
		start = rangeStart.UTC()
	}
	end := start.Add(store.DefaultSlotRange)
	if rangeEnd != nil {
		end = rangeEnd.UTC()
	}
	if end.Before(start) {
		return nil, validationError("end_date must not be before start_date")
	}

	windows, err := s.availability.ListByOwner(ctx, et.UserID)
	if err != nil {
		return nil, err
	}
	// The overlap filter pads the query by a day on each side so bookings made
	// against windows in far-offset timezones are not missed at the edges.
	confirmed, err := s.bookings.ListConfirmed(ctx, eventTypeID, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	slots, err := domain.ResolveSlots(et, windows, confirmed, start, end, now, s.policy)
	if err != nil {
		return nil, fmt.Errorf("resolve slots: %w", err)
	}
	return slots, nil
}

type CreateBookingInput struct {
	EventTypeID  uuid.UUID
	InviteeName  string
	InviteeEmail string
	StartTime    time.Time
	Notes        *string
}

// CreateBooking admits a public booking request. The end time is derived from
// the event type's duration and the store rejects the insert with
// ErrConflict when it would overlap an existing confirmed booking.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	name := strings.TrimSpace(in.InviteeName)
	if name == "" {
		return domain.Booking{}, validationError("invitee_name is required")
	}
	email := strings.TrimSpace(in.InviteeEmail)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Booking{}, validationError("a valid invitee_email is required")
	}
	if in.StartTime.IsZero() {
		return domain.Booking{}, validationError("start_time is required")
	}

	et, err := s.eventTypes.FindByID(ctx, in.EventTypeID)
	if err != nil {
		return domain.Booking{}, err
	}

	start := in.StartTime.UTC()
	return s.bookings.Create(ctx, domain.Booking{
		EventTypeID:  et.ID,
		InviteeName:  name,
		InviteeEmail: email,
		StartTime:    start,
		EndTime:      start.Add(et.Duration()),
		Status:       domain.BookingStatusConfirmed,
		Notes:        in.Notes,
	})
}

// PublicBookings lists the confirmed intervals of an event type. Only the
// times are meaningful to a caller of the public surface; invitee details are
// stripped at the transport layer.
func (s *Service) PublicBookings(ctx context.Context, eventTypeID uuid.UUID) ([]domain.Booking, error) {
	if _, err := s.eventTypes.FindByID(ctx, eventTypeID); err != nil {
		return nil, err
	}
	return s.bookings.ListAllConfirmed(ctx, eventTypeID)
}

func (s *Service) ListBookings(ctx context.Context, ownerID uuid.UUID) ([]domain.Booking, error) {
	return s.bookings.ListByOwner(ctx, ownerID)
}

// ownedBooking loads a booking and verifies the caller owns its event type.
func (s *Service) ownedBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (domain.Booking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if _, err := s.eventTypes.FindOwned(ctx, ownerID, b.EventTypeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Booking{}, unauthorizedError("booking belongs to another user")
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (domain.Booking, error) {
	return s.ownedBooking(ctx, ownerID, bookingID)
}

type UpdateBookingInput struct {
	Status *domain.BookingStatus
	Notes  *string
}

func (s *Service) UpdateBooking(ctx context.Context, ownerID, bookingID uuid.UUID, in UpdateBookingInput) (domain.Booking, error) {
	b, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return domain.Booking{}, validationError("status must be pending, confirmed or cancelled")
		}
		b.Status = *in.Status
	}
	if in.Notes != nil {
		b.Notes = in.Notes
	}
	return s.bookings.Update(ctx, b)
}

func (s *Service) DeleteBooking(ctx context.Context, ownerID, bookingID uuid.UUID) error {
	if _, err := s.ownedBooking(ctx, ownerID, bookingID); err != nil {
		return err
	}
	return s.bookings.Delete(ctx, bookingID)
}
