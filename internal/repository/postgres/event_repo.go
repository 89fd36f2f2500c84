package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"eventhub/internal/domain"
)

type eventRepository struct {
	DB      *sql.DB
	dialect goqu.DialectWrapper
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB:      db,
		dialect: goqu.Dialect("postgres"),
	}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (title, description, organizer_id, location, start_time, end_time, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		event.Title, event.Description, event.OrganizerID, event.Location,
		event.StartTime, event.EndTime, event.IsPublic, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.organizer_id, u.username, e.location,
		       e.start_time, e.end_time, e.is_public, e.created_at, e.updated_at
		FROM events e
		JOIN users u ON u.id = e.organizer_id
		WHERE e.id = $1
	`
	ev, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	ev := &domain.Event{}
	err := row.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.OrganizerID, &ev.OrganizerUsername, &ev.Location,
		&ev.StartTime, &ev.EndTime, &ev.IsPublic, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

var eventListColumns = []any{
	goqu.I("e.id"), goqu.I("e.title"), goqu.I("e.description"), goqu.I("e.organizer_id"), goqu.I("u.username"),
	goqu.I("e.location"), goqu.I("e.start_time"), goqu.I("e.end_time"), goqu.I("e.is_public"),
	goqu.I("e.created_at"), goqu.I("e.updated_at"),
}

// visibleTo is the SQL form of domain.Access.CanView: public, organized by, invited or RSVPed.
func (r *eventRepository) visibleTo(scope domain.VisibilityScope) exp.Expression {
	public := goqu.I("e.is_public").IsTrue()
	if scope.ViewerID == "" {
		return public
	}
	invited := r.dialect.From("event_invitations").Select("event_id").Where(goqu.C("user_id").Eq(scope.ViewerID))
	rsvped := r.dialect.From("rsvps").Select("event_id").Where(goqu.C("user_id").Eq(scope.ViewerID))
	return goqu.Or(
		public,
		goqu.I("e.organizer_id").Eq(scope.ViewerID),
		goqu.I("e.id").In(invited),
		goqu.I("e.id").In(rsvped),
	)
}

func (r *eventRepository) filtered(filter domain.EventFilter) *goqu.SelectDataset {
	ds := r.dialect.From(goqu.T("events").As("e")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("e.organizer_id")))).
		Where(r.visibleTo(filter.Scope)).
		Prepared(true)

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("e.title").ILike(pattern),
			goqu.I("e.description").ILike(pattern),
			goqu.I("e.location").ILike(pattern),
			goqu.I("u.username").ILike(pattern),
		))
	}
	if filter.OrganizerID != "" {
		ds = ds.Where(goqu.I("e.organizer_id").Eq(filter.OrganizerID))
	}
	if filter.Location != "" {
		ds = ds.Where(goqu.I("e.location").Eq(filter.Location))
	}
	if filter.IsPublic != nil {
		ds = ds.Where(goqu.I("e.is_public").Eq(*filter.IsPublic))
	}
	return ds
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	field, desc, err := domain.ParseEventOrdering(filter.Ordering)
	if err != nil {
		return nil, 0, err
	}
	ds := r.filtered(filter)

	countSQL, countArgs, err := ds.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := goqu.I("e." + field).Asc()
	if desc {
		order = goqu.I("e." + field).Desc()
	}
	listDS := ds.Select(eventListColumns...).Order(order, goqu.I("e.id").Asc())
	if params.PageSize > 0 {
		listDS = listDS.Limit(uint(params.PageSize)).Offset(uint(params.Offset()))
	}
	listSQL, listArgs, err := listDS.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, location = $4, start_time = $5, end_time = $6, is_public = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		event.ID, event.Title, event.Description, event.Location,
		event.StartTime, event.EndTime, event.IsPublic, event.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var eventCascade = []string{
	`DELETE FROM event_invitations WHERE event_id = $1`,
	`DELETE FROM reviews WHERE event_id = $1`,
	`DELETE FROM rsvps WHERE event_id = $1`,
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := execAll(ctx, tx, eventCascade, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *eventRepository) Stats(ctx context.Context, eventIDs []string) (map[string]domain.EventStats, error) {
	stats := make(map[string]domain.EventStats, len(eventIDs))
	if len(eventIDs) == 0 {
		return stats, nil
	}
	query := `
		SELECT e.id,
		       (SELECT COUNT(*) FROM rsvps r WHERE r.event_id = e.id),
		       (SELECT COUNT(*) FROM reviews v WHERE v.event_id = e.id),
		       (SELECT AVG(v.rating)::float8 FROM reviews v WHERE v.event_id = e.id)
		FROM events e
		WHERE e.id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			s   domain.EventStats
			avg sql.NullFloat64
		)
		if err := rows.Scan(&id, &s.RSVPCount, &s.ReviewCount, &avg); err != nil {
			return nil, err
		}
		if avg.Valid {
			rounded := domain.RoundRating(avg.Float64)
			s.AverageRating = &rounded
		}
		stats[id] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
