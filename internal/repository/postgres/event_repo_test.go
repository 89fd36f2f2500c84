package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

var eventCols = []string{"id", "title", "description", "organizer_id", "username", "location", "start_time", "end_time", "is_public", "created_at", "updated_at"}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, description, organizer_id, location, start_time, end_time, is_public, created_at, updated_at\)`).
					WithArgs("Go Night", "talks", "user-1", "Berlin", ts, ts.Add(time.Hour), false, ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
			},
			wantID: "ev-1",
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			ev := &domain.Event{
				Title: "Go Night", Description: "talks", OrganizerID: "user-1", Location: "Berlin",
				StartTime: ts, EndTime: ts.Add(time.Hour), IsPublic: false, CreatedAt: ts, UpdatedAt: ts,
			}
			err = NewEventRepository(db).Create(ctx, ev)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ev.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT e.id, e.title, e.description, e.organizer_id, u.username`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows(eventCols).
						AddRow("ev-1", "Go Night", "", "user-1", "ada", "Berlin", ts, ts, true, ts, ts))
			},
			want: &domain.Event{
				ID: "ev-1", Title: "Go Night", OrganizerID: "user-1", OrganizerUsername: "ada", Location: "Berlin",
				StartTime: ts, EndTime: ts, IsPublic: true, CreatedAt: ts, UpdatedAt: ts,
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT e.id`).WithArgs("ev-1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewEventRepository(db).GetByID(ctx, "ev-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewEventRepository(db).Update(context.Background(), &domain.Event{ID: "missing"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes dependents before the event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_invitations WHERE event_id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM reviews WHERE event_id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM rsvps WHERE event_id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewEventRepository(db).Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_invitations`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM reviews`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM rsvps`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM events`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = NewEventRepository(db).Delete(ctx, "ev-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_FilteredSQL(t *testing.T) {
	repo := NewEventRepository(nil).(*eventRepository)
	public := true

	tests := []struct {
		name        string
		filter      domain.EventFilter
		contains    []string
		notContains []string
	}{
		{
			name:        "anonymous sees public only",
			filter:      domain.EventFilter{},
			contains:    []string{`"e"."is_public" IS TRUE`},
			notContains: []string{"event_invitations", "rsvps"},
		},
		{
			name:   "viewer union",
			filter: domain.EventFilter{Scope: domain.VisibilityScope{ViewerID: "user-1"}},
			contains: []string{
				`"e"."is_public" IS TRUE`,
				`"e"."organizer_id" = $1`,
				`FROM "event_invitations"`,
				`FROM "rsvps"`,
				" OR ",
			},
		},
		{
			name:     "search and filters",
			filter:   domain.EventFilter{Search: "go", OrganizerID: "user-2", Location: "Berlin", IsPublic: &public},
			contains: []string{`"e"."title" ILIKE`, `"u"."username" ILIKE`, `"e"."location" =`, `"e"."organizer_id" =`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, _, err := repo.filtered(tt.filter).Select(goqu.Star()).ToSQL()
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, query, s)
			}
		})
	}
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "events" AS "e"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`FROM "events" AS "e" .* ORDER BY "e"\."start_time" ASC, "e"\."id" ASC`).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow("ev-1", "A", "", "user-1", "ada", "", ts, ts, true, ts, ts).
			AddRow("ev-2", "B", "", "user-1", "ada", "", ts, ts, false, ts, ts))

	events, total, err := NewEventRepository(db).List(ctx,
		domain.EventFilter{Ordering: "start_time", Scope: domain.VisibilityScope{ViewerID: "user-1"}},
		domain.PaginationParams{Page: 1, PageSize: 2},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, events, 2)
	assert.Equal(t, "ev-2", events[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_List_InvalidOrdering(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, _, err = NewEventRepository(db).List(context.Background(), domain.EventFilter{Ordering: "organizer"}, domain.PaginationParams{Page: 1, PageSize: 20})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT e.id,`).
		WithArgs(pq.Array([]string{"ev-1", "ev-2"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rsvps", "reviews", "avg"}).
			AddRow("ev-1", 4, 3, 13.0/3.0).
			AddRow("ev-2", 0, 0, nil))

	stats, err := NewEventRepository(db).Stats(context.Background(), []string{"ev-1", "ev-2"})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 4, stats["ev-1"].RSVPCount)
	assert.Equal(t, 3, stats["ev-1"].ReviewCount)
	require.NotNil(t, stats["ev-1"].AverageRating)
	assert.Equal(t, 4.33, *stats["ev-1"].AverageRating)
	assert.Nil(t, stats["ev-2"].AverageRating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Stats_EmptyInput(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stats, err := NewEventRepository(db).Stats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_off\\`, escapeLike(`100%_off\`))
}
