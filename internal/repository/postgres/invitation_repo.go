package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

const invitationColumns = `id, event_id, user_id, invited_by, created_at`

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	if err := row.Scan(&inv.ID, &inv.EventID, &inv.UserID, &inv.InvitedByID, &inv.CreatedAt); err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateIfAbsent inserts with DO NOTHING; when the row already exists the insert returns no row
// and the stored invitation is read back unchanged.
func (r *invitationRepository) CreateIfAbsent(ctx context.Context, inv *domain.Invitation) (bool, error) {
	query := `
		INSERT INTO event_invitations (event_id, user_id, invited_by, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, inv.EventID, inv.UserID, inv.InvitedByID, inv.CreatedAt).Scan(&inv.ID)
	if err == nil {
		return true, nil
	}
	if isForeignKeyViolation(err) {
		return false, domain.ErrNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	existing, err := r.GetByEventAndUser(ctx, inv.EventID, inv.UserID)
	if err != nil {
		return false, err
	}
	*inv = *existing
	return false, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	return r.getOne(ctx, `SELECT `+invitationColumns+` FROM event_invitations WHERE id = $1`, id)
}

func (r *invitationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Invitation, error) {
	return r.getOne(ctx, `SELECT `+invitationColumns+` FROM event_invitations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
}

func (r *invitationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Invitation, error) {
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM event_invitations
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := []*domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}
