package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, first_name, last_name, is_staff, password_hash, salt, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name, is_staff, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Username, u.Email, u.FirstName, u.LastName, u.IsStaff, u.PasswordHash, u.Salt, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	switch {
	case isUniqueViolation(err, "users_email_key"):
		return domain.ErrDuplicateEmail
	case isUniqueViolation(err, "users_username_key"):
		return domain.ErrDuplicateUsername
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsStaff, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// userCascade deletes everything that references a user, children before parents.
var userCascade = []string{
	`DELETE FROM event_invitations
		WHERE user_id = $1 OR invited_by = $1
		   OR event_id IN (SELECT id FROM events WHERE organizer_id = $1)`,
	`DELETE FROM reviews
		WHERE user_id = $1 OR event_id IN (SELECT id FROM events WHERE organizer_id = $1)`,
	`DELETE FROM rsvps
		WHERE user_id = $1 OR event_id IN (SELECT id FROM events WHERE organizer_id = $1)`,
	`DELETE FROM events WHERE organizer_id = $1`,
	`DELETE FROM profiles WHERE user_id = $1`,
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := execAll(ctx, tx, userCascade, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}
