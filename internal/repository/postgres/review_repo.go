package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &reviewRepository{DB: db}
}

const reviewSelect = `
	SELECT v.id, v.event_id, v.user_id, u.username, v.rating, v.comment, v.created_at, v.updated_at
	FROM reviews v
	JOIN users u ON u.id = v.user_id
`

func scanReview(row rowScanner) (*domain.Review, error) {
	rv := &domain.Review{}
	if err := row.Scan(&rv.ID, &rv.EventID, &rv.UserID, &rv.Username, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *reviewRepository) Upsert(ctx context.Context, rv *domain.Review) (bool, error) {
	query := `
		INSERT INTO reviews (event_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`
	var created bool
	err := r.DB.QueryRowContext(ctx, query, rv.EventID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt, rv.UpdatedAt).
		Scan(&rv.ID, &rv.CreatedAt, &created)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return created, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	rv, err := scanReview(r.DB.QueryRowContext(ctx, reviewSelect+` WHERE v.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rv, nil
}

func (r *reviewRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Review, error) {
	rows, err := r.DB.QueryContext(ctx, reviewSelect+` WHERE v.event_id = $1 ORDER BY v.created_at DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
