package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{DB: db}
}

const rsvpSelect = `
	SELECT r.id, r.event_id, r.user_id, u.username, r.status, r.created_at, r.updated_at
	FROM rsvps r
	JOIN users u ON u.id = r.user_id
`

func scanRSVP(row rowScanner) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	var status string
	if err := row.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.Username, &status, &rsvp.CreatedAt, &rsvp.UpdatedAt); err != nil {
		return nil, err
	}
	rsvp.Status = domain.RSVPStatus(status)
	return rsvp, nil
}

// Upsert is a single INSERT .. ON CONFLICT so concurrent answers for one (event, user) never produce two rows.
// An empty Status inserts Going and leaves an existing answer unchanged; rsvp.Status is set to the stored value.
func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) (bool, error) {
	query := `
		INSERT INTO rsvps (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'Going'), $4, $5)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET status = COALESCE(NULLIF($3, ''), rsvps.status), updated_at = EXCLUDED.updated_at
		RETURNING id, status, created_at, (xmax = 0) AS inserted
	`
	var (
		created bool
		status  string
	)
	err := r.DB.QueryRowContext(ctx, query, rsvp.EventID, rsvp.UserID, string(rsvp.Status), rsvp.CreatedAt, rsvp.UpdatedAt).
		Scan(&rsvp.ID, &status, &rsvp.CreatedAt, &created)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	rsvp.Status = domain.RSVPStatus(status)
	return created, nil
}

func (r *rsvpRepository) GetByID(ctx context.Context, id string) (*domain.RSVP, error) {
	rsvp, err := scanRSVP(r.DB.QueryRowContext(ctx, rsvpSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	rsvp, err := scanRSVP(r.DB.QueryRowContext(ctx, rsvpSelect+` WHERE r.event_id = $1 AND r.user_id = $2`, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) UpdateStatus(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		UPDATE rsvps
		SET status = $3, updated_at = $4
		WHERE event_id = $1 AND user_id = $2
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, rsvp.EventID, rsvp.UserID, string(rsvp.Status), rsvp.UpdatedAt).
		Scan(&rsvp.ID, &rsvp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	return r.list(ctx, rsvpSelect+` WHERE r.event_id = $1 ORDER BY r.created_at`, eventID)
}

func (r *rsvpRepository) ListByUserForEvents(ctx context.Context, userID string, eventIDs []string) (map[string]*domain.RSVP, error) {
	byEvent := make(map[string]*domain.RSVP, len(eventIDs))
	if userID == "" || len(eventIDs) == 0 {
		return byEvent, nil
	}
	rsvps, err := r.list(ctx, rsvpSelect+` WHERE r.user_id = $1 AND r.event_id = ANY($2)`, userID, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	for _, rsvp := range rsvps {
		byEvent[rsvp.EventID] = rsvp
	}
	return byEvent, nil
}

func (r *rsvpRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

func (r *rsvpRepository) list(ctx context.Context, query string, args ...any) ([]*domain.RSVP, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rsvps := []*domain.RSVP{}
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rsvps, nil
}
