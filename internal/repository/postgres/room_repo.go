package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"roombook/internal/domain"
)

const roomColumns = `id, space_id, name, description, capacity, created_at, updated_at`

type roomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(db *sql.DB) domain.RoomRepository {
	return &roomRepository{DB: db}
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	room := &domain.Room{}
	if err := row.Scan(&room.ID, &room.SpaceID, &room.Name, &room.Description, &room.Capacity,
		&room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (space_id, name, description, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, room.SpaceID, room.Name, room.Description, room.Capacity,
		room.CreatedAt, room.UpdatedAt).Scan(&room.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	room, err := scanRoom(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) ListBySpaceIDs(ctx context.Context, spaceIDs []string) ([]*domain.Room, error) {
	rooms := make([]*domain.Room, 0)
	if len(spaceIDs) == 0 {
		return rooms, nil
	}
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE space_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(spaceIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	query := `
		UPDATE rooms
		SET space_id = $1, name = $2, description = $3, capacity = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.DB.ExecContext(ctx, query, room.SpaceID, room.Name, room.Description, room.Capacity,
		room.UpdatedAt, room.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the room. Its bookings are removed by ON DELETE CASCADE.
func (r *roomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
