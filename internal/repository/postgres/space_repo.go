package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"roombook/internal/domain"
)

// spaceSelect loads a space with its members, ordered by join time. The admin is not a row
// in space_members.
const spaceSelect = `
	SELECT s.id, s.admin_id, s.name, s.description, s.invite_code, s.capacity, s.created_at, s.updated_at,
		COALESCE(array_agg(m.user_id ORDER BY m.joined_at) FILTER (WHERE m.user_id IS NOT NULL), '{}')
	FROM spaces s
	LEFT JOIN space_members m ON m.space_id = s.id
`

type spaceRepository struct {
	DB *sql.DB
}

func NewSpaceRepository(db *sql.DB) domain.SpaceRepository {
	return &spaceRepository{DB: db}
}

func scanSpace(row rowScanner) (*domain.Space, error) {
	s := &domain.Space{}
	var userIDs []string
	err := row.Scan(&s.ID, &s.AdminID, &s.Name, &s.Description, &s.InviteCode, &s.Capacity,
		&s.CreatedAt, &s.UpdatedAt, pq.Array(&userIDs))
	if err != nil {
		return nil, err
	}
	if userIDs == nil {
		userIDs = []string{}
	}
	s.UserIDs = userIDs
	return s, nil
}

func (r *spaceRepository) Create(ctx context.Context, s *domain.Space) error {
	query := `
		INSERT INTO spaces (admin_id, name, description, invite_code, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, s.AdminID, s.Name, s.Description, s.InviteCode, s.Capacity,
		s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInviteCode
		}
		return err
	}
	if s.UserIDs == nil {
		s.UserIDs = []string{}
	}
	return nil
}

func (r *spaceRepository) getOne(ctx context.Context, where string, arg any) (*domain.Space, error) {
	query := spaceSelect + ` WHERE ` + where + ` GROUP BY s.id`
	s, err := scanSpace(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *spaceRepository) GetByID(ctx context.Context, id string) (*domain.Space, error) {
	return r.getOne(ctx, "s.id = $1", id)
}

func (r *spaceRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Space, error) {
	return r.getOne(ctx, "s.invite_code = $1", code)
}

func (r *spaceRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Space, error) {
	query := spaceSelect + `
		WHERE s.admin_id = $1
			OR EXISTS (SELECT 1 FROM space_members x WHERE x.space_id = s.id AND x.user_id = $1)
		GROUP BY s.id
		ORDER BY s.created_at, s.id
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	spaces := make([]*domain.Space, 0)
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

func (r *spaceRepository) Update(ctx context.Context, s *domain.Space) error {
	query := `
		UPDATE spaces
		SET name = $1, description = $2, capacity = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query, s.Name, s.Description, s.Capacity, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *spaceRepository) SetInviteCode(ctx context.Context, spaceID, code string) error {
	query := `UPDATE spaces SET invite_code = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, code, spaceID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInviteCode
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the space. Rooms and their bookings are removed by ON DELETE CASCADE.
func (r *spaceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM spaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *spaceRepository) AddMember(ctx context.Context, spaceID, userID string) error {
	query := `
		INSERT INTO space_members (space_id, user_id)
		VALUES ($1, $2)
	`
	_, err := r.DB.ExecContext(ctx, query, spaceID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyMember
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *spaceRepository) RemoveMember(ctx context.Context, spaceID, userID string) error {
	query := `DELETE FROM space_members WHERE space_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, spaceID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
