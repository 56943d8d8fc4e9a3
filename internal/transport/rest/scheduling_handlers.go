package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/service/scheduling"
)

type schedulingService interface {
	CreateEventType(ctx context.Context, ownerID uuid.UUID, in scheduling.EventTypeInput) (domain.EventType, error)
	ListEventTypes(ctx context.Context, ownerID uuid.UUID) ([]domain.EventType, error)
	GetEventType(ctx context.Context, ownerID, id uuid.UUID) (domain.EventType, error)
	UpdateEventType(ctx context.Context, ownerID, id uuid.UUID, in scheduling.EventTypeInput) (domain.EventType, error)
	DeleteEventType(ctx context.Context, ownerID, id uuid.UUID) error

	CreateAvailability(ctx context.Context, ownerID uuid.UUID, in scheduling.AvailabilityInput) (domain.Availability, error)
	ListAvailability(ctx context.Context, ownerID uuid.UUID) ([]domain.Availability, error)
	UpdateAvailability(ctx context.Context, ownerID, id uuid.UUID, in scheduling.UpdateAvailabilityInput) (domain.Availability, error)
	DeleteAvailability(ctx context.Context, ownerID, id uuid.UUID) error

	PublicEventType(ctx context.Context, id uuid.UUID) (domain.EventType, error)
	ListSlots(ctx context.Context, eventTypeID uuid.UUID, rangeStart, rangeEnd *time.Time) ([]domain.Slot, error)
	CreateBooking(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error)
	PublicBookings(ctx context.Context, eventTypeID uuid.UUID) ([]domain.Booking, error)

	ListBookings(ctx context.Context, ownerID uuid.UUID) ([]domain.Booking, error)
	GetBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (domain.Booking, error)
	UpdateBooking(ctx context.Context, ownerID, bookingID uuid.UUID, in scheduling.UpdateBookingInput) (domain.Booking, error)
	DeleteBooking(ctx context.Context, ownerID, bookingID uuid.UUID) error
}

type SchedulingHandler struct {
	svc schedulingService
	log *slog.Logger
}

func NewSchedulingHandler(svc schedulingService, log *slog.Logger) *SchedulingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SchedulingHandler{
		svc: svc,
		log: log.With(slog.String("component", "rest.scheduling")),
	}
}

type eventTypeResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	DurationMinutes int       `json:"durationMinutes"`
	Color           *string   `json:"color"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toEventTypeResponse(et domain.EventType) eventTypeResponse {
	return eventTypeResponse{
		ID:              et.ID,
		Title:           et.Title,
		Description:     et.Description,
		DurationMinutes: et.DurationMinutes,
		Color:           et.Color,
		CreatedAt:       et.CreatedAt,
	}
}

type availabilityResponse struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek int       `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Timezone  string    `json:"timezone"`
}

func toAvailabilityResponse(w domain.Availability) availabilityResponse {
	return availabilityResponse{
		ID:        w.ID,
		DayOfWeek: w.DayOfWeek,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		Timezone:  w.Timezone,
	}
}

type bookingResponse struct {
	ID           uuid.UUID            `json:"id"`
	EventTypeID  uuid.UUID            `json:"eventTypeId"`
	InviteeName  string               `json:"inviteeName"`
	InviteeEmail string               `json:"inviteeEmail"`
	StartTime    time.Time            `json:"startTime"`
	EndTime      time.Time            `json:"endTime"`
	Status       domain.BookingStatus `json:"status"`
	Notes        *string              `json:"notes"`
	CreatedAt    time.Time            `json:"createdAt"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:           b.ID,
		EventTypeID:  b.EventTypeID,
		InviteeName:  b.InviteeName,
		InviteeEmail: b.InviteeEmail,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		Status:       b.Status,
		Notes:        b.Notes,
		CreatedAt:    b.CreatedAt,
	}
}

// publicBookingResponse exposes only the reserved interval. Invitee details
// never leave the authenticated surface.
type publicBookingResponse struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// dateParam accepts RFC 3339 timestamps or bare dates; bare dates are read as
// midnight UTC.
func dateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an RFC 3339 timestamp or YYYY-MM-DD"})
	return nil, false
}

type eventTypeRequest struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	DurationMinutes int     `json:"durationMinutes"`
	Color           *string `json:"color"`
}

func (r eventTypeRequest) toInput() scheduling.EventTypeInput {
	return scheduling.EventTypeInput{
		Title:           r.Title,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Color:           r.Color,
	}
}

func (h *SchedulingHandler) CreateEventType(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "CreateEventType"))

	var req eventTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	et, err := h.svc.CreateEventType(c.Request.Context(), authedUserID(c), req.toInput())
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("event type created", slog.String("event_type_id", et.ID.String()))
	c.JSON(http.StatusCreated, gin.H{"eventType": toEventTypeResponse(et)})
}

func (h *SchedulingHandler) ListEventTypes(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "ListEventTypes"))

	ets, err := h.svc.ListEventTypes(c.Request.Context(), authedUserID(c))
	if err != nil {
		writeError(c, log, err)
		return
	}

	out := make([]eventTypeResponse, 0, len(ets))
	for _, et := range ets {
		out = append(out, toEventTypeResponse(et))
	}
	c.JSON(http.StatusOK, gin.H{"eventTypes": out})
}

func (h *SchedulingHandler) GetEventType(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "GetEventType"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	et, err := h.svc.GetEventType(c.Request.Context(), authedUserID(c), id)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eventType": toEventTypeResponse(et)})
}

func (h *SchedulingHandler) UpdateEventType(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "UpdateEventType"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	var req eventTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	et, err := h.svc.UpdateEventType(c.Request.Context(), authedUserID(c), id, req.toInput())
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("event type updated", slog.String("event_type_id", et.ID.String()))
	c.JSON(http.StatusOK, gin.H{"eventType": toEventTypeResponse(et)})
}

func (h *SchedulingHandler) DeleteEventType(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "DeleteEventType"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteEventType(c.Request.Context(), authedUserID(c), id); err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("event type deleted", slog.String("event_type_id", id.String()))
	c.Status(http.StatusNoContent)
}

type availabilityRequest struct {
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Timezone  string `json:"timezone"`
}

func (r availabilityRequest) toInput() scheduling.AvailabilityInput {
	return scheduling.AvailabilityInput{
		DayOfWeek: r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Timezone:  r.Timezone,
	}
}

func (h *SchedulingHandler) CreateAvailability(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "CreateAvailability"))

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	w, err := h.svc.CreateAvailability(c.Request.Context(), authedUserID(c), req.toInput())
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("availability created", slog.String("availability_id", w.ID.String()))
	c.JSON(http.StatusCreated, gin.H{"availability": toAvailabilityResponse(w)})
}

func (h *SchedulingHandler) ListAvailability(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "ListAvailability"))

	windows, err := h.svc.ListAvailability(c.Request.Context(), authedUserID(c))
	if err != nil {
		writeError(c, log, err)
		return
	}

	out := make([]availabilityResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, toAvailabilityResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"availability": out})
}

// updateAvailabilityRequest leaves omitted fields untouched, so a client can
// shift a window's times without restating its day or timezone.
type updateAvailabilityRequest struct {
	DayOfWeek *int    `json:"dayOfWeek"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Timezone  *string `json:"timezone"`
}

func (h *SchedulingHandler) UpdateAvailability(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "UpdateAvailability"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	w, err := h.svc.UpdateAvailability(c.Request.Context(), authedUserID(c), id, scheduling.UpdateAvailabilityInput{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Timezone:  req.Timezone,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("availability updated", slog.String("availability_id", w.ID.String()))
	c.JSON(http.StatusOK, gin.H{"availability": toAvailabilityResponse(w)})
}

func (h *SchedulingHandler) DeleteAvailability(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "DeleteAvailability"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAvailability(c.Request.Context(), authedUserID(c), id); err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("availability deleted", slog.String("availability_id", id.String()))
	c.Status(http.StatusNoContent)
}

func (h *SchedulingHandler) PublicEventType(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "PublicEventType"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	et, err := h.svc.PublicEventType(c.Request.Context(), id)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eventType": toEventTypeResponse(et)})
}

func (h *SchedulingHandler) ListSlots(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "ListSlots"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	start, ok := dateParam(c, "start_date")
	if !ok {
		return
	}
	end, ok := dateParam(c, "end_date")
	if !ok {
		return
	}

	slots, err := h.svc.ListSlots(c.Request.Context(), id, start, end)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

type createBookingRequest struct {
	InviteeName  string    `json:"inviteeName"`
	InviteeEmail string    `json:"inviteeEmail"`
	StartTime    time.Time `json:"startTime"`
	Notes        *string   `json:"notes"`
}

func (h *SchedulingHandler) CreateBooking(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "CreateBooking"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	b, err := h.svc.CreateBooking(c.Request.Context(), scheduling.CreateBookingInput{
		EventTypeID:  id,
		InviteeName:  req.InviteeName,
		InviteeEmail: req.InviteeEmail,
		StartTime:    req.StartTime,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info(
		"booking created",
		slog.String("booking_id", b.ID.String()),
		slog.String("event_type_id", b.EventTypeID.String()),
		slog.Time("start_time", b.StartTime),
	)
	c.JSON(http.StatusCreated, gin.H{"booking": toBookingResponse(b)})
}

func (h *SchedulingHandler) PublicBookings(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "PublicBookings"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	bookings, err := h.svc.PublicBookings(c.Request.Context(), id)
	if err != nil {
		writeError(c, log, err)
		return
	}

	out := make([]publicBookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, publicBookingResponse{StartTime: b.StartTime, EndTime: b.EndTime})
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

func (h *SchedulingHandler) ListBookings(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "ListBookings"))

	bookings, err := h.svc.ListBookings(c.Request.Context(), authedUserID(c))
	if err != nil {
		writeError(c, log, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

func (h *SchedulingHandler) GetBooking(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "GetBooking"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.svc.GetBooking(c.Request.Context(), authedUserID(c), id)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

type updateBookingRequest struct {
	Status *domain.BookingStatus `json:"status"`
	Notes  *string               `json:"notes"`
}

func (h *SchedulingHandler) UpdateBooking(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "UpdateBooking"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	b, err := h.svc.UpdateBooking(c.Request.Context(), authedUserID(c), id, scheduling.UpdateBookingInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("booking updated", slog.String("booking_id", b.ID.String()))
	c.JSON(http.StatusOK, gin.H{"booking": toBookingResponse(b)})
}

func (h *SchedulingHandler) DeleteBooking(c *gin.Context) {
	log := h.log.With(slog.String("rpc", "DeleteBooking"))

	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBooking(c.Request.Context(), authedUserID(c), id); err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("booking deleted", slog.String("booking_id", id.String()))
	c.Status(http.StatusNoContent)
}
