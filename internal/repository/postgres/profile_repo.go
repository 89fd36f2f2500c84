package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, full_name, bio, location, profile_picture, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	p := &domain.Profile{}
	err := r.DB.QueryRowContext(ctx, query, userID).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Bio, &p.Location, &p.ProfilePicture, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Upsert relies on xmax = 0 being true only for freshly inserted rows.
func (r *profileRepository) Upsert(ctx context.Context, p *domain.Profile) (bool, error) {
	query := `
		INSERT INTO profiles (user_id, full_name, bio, location, profile_picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    bio = EXCLUDED.bio,
		    location = EXCLUDED.location,
		    profile_picture = EXCLUDED.profile_picture,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`
	var created bool
	err := r.DB.QueryRowContext(ctx, query,
		p.UserID, p.FullName, p.Bio, p.Location, p.ProfilePicture, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &created)
	if err != nil {
		return false, err
	}
	return created, nil
}
