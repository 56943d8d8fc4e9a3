package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/store"
)

type EventTypeRepo struct {
	db *bun.DB
}

func NewEventTypeRepo(db *bun.DB) *EventTypeRepo {
	return &EventTypeRepo{db: db}
}

func (r *EventTypeRepo) Create(ctx context.Context, et domain.EventType) (domain.EventType, error) {
	m := et
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.EventType{}, err
	}
	return m, nil
}

func (r *EventTypeRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.EventType, error) {
	var rows []domain.EventType
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", ownerID).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *EventTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.EventType, error) {
	var m domain.EventType
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.EventType{}, store.ErrNotFound
		}
		return domain.EventType{}, err
	}
	return m, nil
}

func (r *EventTypeRepo) FindOwned(ctx context.Context, ownerID, id uuid.UUID) (domain.EventType, error) {
	var m domain.EventType
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.EventType{}, store.ErrNotFound
		}
		return domain.EventType{}, err
	}
	return m, nil
}

func (r *EventTypeRepo) Update(ctx context.Context, et domain.EventType) (domain.EventType, error) {
	m := et
	res, err := r.db.NewUpdate().
		Model(&m).
		WherePK().
		Where("user_id = ?", et.UserID).
		Exec(ctx)
	if err != nil {
		return domain.EventType{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.EventType{}, err
	}
	if affected == 0 {
		return domain.EventType{}, store.ErrNotFound
	}
	return m, nil
}

func (r *EventTypeRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.EventType)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type AvailabilityRepo struct {
	db *bun.DB
}

func NewAvailabilityRepo(db *bun.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) Create(ctx context.Context, w domain.Availability) (domain.Availability, error) {
	m := w
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Availability{}, err
	}
	return m, nil
}

func (r *AvailabilityRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Availability, error) {
	var rows []domain.Availability
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", ownerID).
		OrderExpr("day_of_week ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AvailabilityRepo) FindOwned(ctx context.Context, ownerID, id uuid.UUID) (domain.Availability, error) {
	var m domain.Availability
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Availability{}, store.ErrNotFound
		}
		return domain.Availability{}, err
	}
	return m, nil
}

func (r *AvailabilityRepo) Update(ctx context.Context, w domain.Availability) (domain.Availability, error) {
	m := w
	res, err := r.db.NewUpdate().
		Model(&m).
		WherePK().
		Where("user_id = ?", w.UserID).
		Exec(ctx)
	if err != nil {
		return domain.Availability{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Availability{}, err
	}
	if affected == 0 {
		return domain.Availability{}, store.ErrNotFound
	}
	return m, nil
}

func (r *AvailabilityRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Availability)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create serializes admission per event type with an advisory xact lock, so
// the overlap check and the insert are atomic with respect to concurrent
// requests; the partial unique index and the bookings_no_overlap exclusion
// constraint catch anything that slips past.
func (r *BookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockEventType(ctx, tx, b.EventTypeID); err != nil {
			return err
		}

		exists, err := tx.NewSelect().
			Model((*domain.Booking)(nil)).
			Where("event_type_id = ?", b.EventTypeID).
			Where("status = ?", domain.BookingStatusConfirmed).
			Where("start_time < ?", b.EndTime).
			Where("end_time > ?", b.StartTime).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrConflict
		}

		m := b
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return mapBookingConstraintError(err)
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func lockEventType(ctx context.Context, tx bun.Tx, eventTypeID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", eventTypeID.String()).Exec(ctx)
	return err
}

func (r *BookingRepo) ListConfirmed(ctx context.Context, eventTypeID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("event_type_id = ?", eventTypeID).
		Where("status = ?", domain.BookingStatusConfirmed).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListAllConfirmed(ctx context.Context, eventTypeID uuid.UUID) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("event_type_id = ?", eventTypeID).
		Where("status = ?", domain.BookingStatusConfirmed).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Join("JOIN event_types AS et ON et.id = b.event_type_id").
		Where("et.user_id = ?", ownerID).
		OrderExpr("b.start_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var m domain.Booking
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return m, nil
}

func (r *BookingRepo) Update(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	res, err := r.db.NewUpdate().
		Model(&m).
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Booking{}, mapBookingConstraintError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected == 0 {
		return domain.Booking{}, store.ErrNotFound
	}
	return m, nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapBookingConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
			return store.ErrConflict
		}
		if pgErr.Code == "23505" && pgErr.ConstraintName == "bookings_confirmed_start_key" {
			return store.ErrConflict
		}
	}
	return err
}
