package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"roombook/internal/domain"
)

const bookingColumns = `id, room_id, primary_user_id, invited_user_ids, title, description, start_time, end_time, created_at, updated_at`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{DB: db}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var invited []string
	err := row.Scan(&b.ID, &b.RoomID, &b.PrimaryUserID, pq.Array(&invited), &b.Title, &b.Description,
		&b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if invited == nil {
		invited = []string{}
	}
	b.InvitedUserIDs = invited
	return b, nil
}

func listBookings(ctx context.Context, q queryer, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByRoomIDs(ctx context.Context, roomIDs []string) ([]*domain.Booking, error) {
	if len(roomIDs) == 0 {
		return []*domain.Booking{}, nil
	}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = ANY($1::uuid[])
		ORDER BY start_time, id
	`
	return listBookings(ctx, r.DB, query, pq.Array(roomIDs))
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InRoomTx locks the room row for the lifetime of a transaction so that concurrent writers to
// the same room serialize their overlap check and write.
func (r *bookingRepository) InRoomTx(ctx context.Context, roomID string, fn func(tx domain.BookingTx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lockedID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UnknownRoom(roomID)
		}
		return fmt.Errorf("lock room: %w", err)
	}

	if err := fn(&bookingTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type bookingTx struct {
	q queryer
}

func (t *bookingTx) GetForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	b, err := scanBooking(t.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return b, nil
}

func (t *bookingTx) ListByRoomID(ctx context.Context, roomID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = $1
		ORDER BY start_time, id
	`
	return listBookings(ctx, t.q, query, roomID)
}

func (t *bookingTx) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (room_id, primary_user_id, invited_user_ids, title, description, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3::uuid[], $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := t.q.QueryRowContext(ctx, query, b.RoomID, b.PrimaryUserID, pq.Array(invitees(b)), b.Title, b.Description,
		b.StartTime, b.EndTime, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	return bookingWriteError(err, b)
}

func (t *bookingTx) Update(ctx context.Context, b *domain.Booking) error {
	query := `
		UPDATE bookings
		SET room_id = $1, primary_user_id = $2, invited_user_ids = $3::uuid[], title = $4, description = $5,
			start_time = $6, end_time = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := t.q.ExecContext(ctx, query, b.RoomID, b.PrimaryUserID, pq.Array(invitees(b)), b.Title, b.Description,
		b.StartTime, b.EndTime, b.UpdatedAt, b.ID)
	if err != nil {
		return bookingWriteError(err, b)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func invitees(b *domain.Booking) []string {
	if b.InvitedUserIDs == nil {
		return []string{}
	}
	return b.InvitedUserIDs
}

// bookingWriteError maps constraint violations raised by a booking insert or update.
func bookingWriteError(err error, b *domain.Booking) error {
	switch {
	case err == nil:
		return nil
	case pqCode(err) == codeExclusionViolation:
		return &domain.OverlapError{RoomID: b.RoomID, Start: b.StartTime, End: b.EndTime}
	case isForeignKeyViolation(err):
		switch pqConstraint(err) {
		case fkBookingRoom:
			return domain.UnknownRoom(b.RoomID)
		case fkBookingPrimaryUser:
			return domain.UnknownUser(b.PrimaryUserID)
		}
		return fmt.Errorf("%w: %s", domain.ErrNotFound, pqConstraint(err))
	default:
		return err
	}
}
