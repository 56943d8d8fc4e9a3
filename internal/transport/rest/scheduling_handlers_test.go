package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/service/scheduling"
	"bookable/backend/internal/store"
)

func TestCreateEventTypeEndpoint(t *testing.T) {
	userID := uuid.New()
	var gotInput scheduling.EventTypeInput
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		createEventTypeFn: func(ctx context.Context, ownerID uuid.UUID, in scheduling.EventTypeInput) (domain.EventType, error) {
			gotInput = in
			return domain.EventType{ID: uuid.New(), UserID: ownerID, Title: in.Title, DurationMinutes: in.DurationMinutes}, nil
		},
	}, userID)

	w := doRequest(t, router, http.MethodPost, "/api/event-types", "good",
		`{"title":"Intro call","durationMinutes":30}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body)
	}
	if gotInput.Title != "Intro call" || gotInput.DurationMinutes != 30 {
		t.Fatalf("input = %+v", gotInput)
	}
}

func TestCreateEventTypeEndpoint_ValidationTo400(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		createEventTypeFn: func(ctx context.Context, ownerID uuid.UUID, in scheduling.EventTypeInput) (domain.EventType, error) {
			return domain.EventType{}, scheduling.NewValidationError("title is required")
		},
	}, uuid.New())

	w := doRequest(t, router, http.MethodPost, "/api/event-types", "good", `{"durationMinutes":30}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "title is required") {
		t.Fatalf("body = %s, want validation message", w.Body)
	}
}

func TestGetEventTypeEndpoint_NotFoundTo404(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		getEventTypeFn: func(ctx context.Context, ownerID, id uuid.UUID) (domain.EventType, error) {
			return domain.EventType{}, store.ErrNotFound
		},
	}, uuid.New())

	w := doRequest(t, router, http.MethodGet, "/api/event-types/"+uuid.NewString(), "good", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetEventTypeEndpoint_BadIDTo400(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{}, uuid.New())

	w := doRequest(t, router, http.MethodGet, "/api/event-types/not-a-uuid", "good", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListSlotsEndpoint_ParsesDateRange(t *testing.T) {
	eventTypeID := uuid.New()
	var gotStart, gotEnd *time.Time
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		listSlotsFn: func(ctx context.Context, id uuid.UUID, rangeStart, rangeEnd *time.Time) ([]domain.Slot, error) {
			gotStart, gotEnd = rangeStart, rangeEnd
			return []domain.Slot{}, nil
		},
	}, uuid.New())

	w := doRequest(t, router, http.MethodGet,
		"/api/public/event-types/"+eventTypeID.String()+"/slots?start_date=2026-02-01&end_date=2026-02-08", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body)
	}
	if gotStart == nil || !gotStart.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", gotStart)
	}
	if gotEnd == nil || !gotEnd.Equal(time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", gotEnd)
	}
}

func TestListSlotsEndpoint_OmittedRangePassesNil(t *testing.T) {
	called := false
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		listSlotsFn: func(ctx context.Context, id uuid.UUID, rangeStart, rangeEnd *time.Time) ([]domain.Slot, error) {
			called = true
			if rangeStart != nil || rangeEnd != nil {
				t.Errorf("range = %v..%v, want nil..nil", rangeStart, rangeEnd)
			}
			return nil, nil
		},
	}, uuid.New())

	w := doRequest(t, router, http.MethodGet, "/api/public/event-types/"+uuid.NewString()+"/slots", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !called {
		t.Fatalf("service not called")
	}
}

func TestListSlotsEndpoint_BadDateTo400(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{}, uuid.New())

	w := doRequest(t, router, http.MethodGet,
		"/api/public/event-types/"+uuid.NewString()+"/slots?start_date=tomorrow", "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	eventTypeID := uuid.New()
	start := time.Date(2026, 2, 2, 14, 0, 0, 0, time.UTC)
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		createBookingFn: func(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error) {
			if in.EventTypeID != eventTypeID {
				t.Errorf("event type id = %v, want %v", in.EventTypeID, eventTypeID)
			}
			return domain.Booking{
				ID:           uuid.New(),
				EventTypeID:  in.EventTypeID,
				InviteeName:  in.InviteeName,
				InviteeEmail: in.InviteeEmail,
				StartTime:    in.StartTime,
				EndTime:      in.StartTime.Add(30 * time.Minute),
				Status:       domain.BookingStatusConfirmed,
			}, nil
		},
	}, uuid.New())

	body := `{"inviteeName":"Ada","inviteeEmail":"ada@example.com","startTime":"` + start.Format(time.RFC3339) + `"}`
	w := doRequest(t, router, http.MethodPost, "/api/public/event-types/"+eventTypeID.String()+"/bookings", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body)
	}
}

func TestCreateBookingEndpoint_ConflictTo409(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		createBookingFn: func(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error) {
			return domain.Booking{}, store.ErrConflict
		},
	}, uuid.New())

	body := `{"inviteeName":"Ada","inviteeEmail":"ada@example.com","startTime":"2026-02-02T14:00:00Z"}`
	w := doRequest(t, router, http.MethodPost, "/api/public/event-types/"+uuid.NewString()+"/bookings", "", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "taken") {
		t.Fatalf("body = %s, want a conflict message", w.Body)
	}
}

func TestPublicBookingsEndpoint_StripsInviteeDetails(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		publicBookingsFn: func(ctx context.Context, id uuid.UUID) ([]domain.Booking, error) {
			return []domain.Booking{
				{
					ID:           uuid.New(),
					InviteeName:  "Ada",
					InviteeEmail: "ada@example.com",
					StartTime:    time.Date(2026, 2, 2, 14, 0, 0, 0, time.UTC),
					EndTime:      time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC),
					Status:       domain.BookingStatusConfirmed,
				},
			}, nil
		},
	}, uuid.New())

	w := doRequest(t, router, http.MethodGet, "/api/public/event-types/"+uuid.NewString()+"/bookings", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if strings.Contains(w.Body.String(), "ada@example.com") || strings.Contains(w.Body.String(), "Ada") {
		t.Fatalf("public body leaks invitee details: %s", w.Body)
	}

	var resp struct {
		Bookings []publicBookingResponse `json:"bookings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Bookings) != 1 {
		t.Fatalf("bookings = %d, want 1", len(resp.Bookings))
	}
}

func TestGetBookingEndpoint_UnauthorizedTo403(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		getBookingFn: func(ctx context.Context, ownerID, bookingID uuid.UUID) (domain.Booking, error) {
			return domain.Booking{}, scheduling.NewUnauthorizedError("booking belongs to another user")
		},
	}, uuid.New())

	w := doRequest(t, router, http.MethodGet, "/api/bookings/"+uuid.NewString(), "good", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestDeleteEventTypeEndpoint_NoContent(t *testing.T) {
	router := newTestRouter(&fakeAccountsService{}, &fakeSchedulingService{
		deleteEventTypeFn: func(ctx context.Context, ownerID, id uuid.UUID) error {
			return nil
		},
	}, uuid.New())

	w := doRequest(t, router, http.MethodDelete, "/api/event-types/"+uuid.NewString(), "good", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
