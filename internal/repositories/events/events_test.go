package events_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcodd23/go-txchain/internal/repositories/events"
	"github.com/marcodd23/go-txchain/internal/repositories/users"
	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-txchain/pkg/txchain"
)

var errBoom = errors.New("boom")

func newMockDB(t *testing.T) (pgxmock.PgxPoolIface, *pgxdb.PostgresDB) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, pgxdb.NewPostgresDB(mock, dbx.ConnConfig{})
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("CreateEvent", func(t *testing.T) {
		mock, db := newMockDB(t)
		repo := events.NewRepository(db)

		mock.ExpectQuery("INSERT INTO events").
			WithArgs(id, "user_created", []byte(`{"plan":"pro"}`)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "payload"}).
				AddRow(id, "user_created", map[string]any{"plan": "pro"}))

		event, err := repo.CreateEvent(ctx, id, "user_created", map[string]any{"plan": "pro"})
		require.NoError(t, err)
		assert.Equal(t, "pro", event.Payload["plan"])
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateEvents", func(t *testing.T) {
		mock, db := newMockDB(t)
		repo := events.NewRepository(db)

		mock.ExpectCopyFrom(pgx.Identifier{"public", "events"}, []string{"id", "name", "payload"}).WillReturnResult(2)

		count, err := repo.CreateEvents(ctx, []events.Event{{ID: uuid.New(), Name: "a"}, {ID: uuid.New(), Name: "b"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ToRow defaults the payload", func(t *testing.T) {
		row := events.Event{ID: id, Name: "x"}.ToRow()
		assert.Equal(t, []any{id, "x", map[string]any{}}, row)
	})
}

func TestChainedSignup(t *testing.T) {
	ctx := context.Background()
	userID, eventID := uuid.New(), uuid.New()

	signup := func(ev events.Repository, us users.Repository, fail bool) error {
		return txchain.Begin(ctx, ev, func(ctx context.Context, ev events.Repository) (events.Repository, error) {
			ev, err := txchain.Chain(ctx, ev, us, func(ctx context.Context, us users.Repository) (users.Repository, error) {
				_, err := us.CreateUser(ctx, userID, "Ada")
				return us, err
			})
			if err != nil {
				return ev, err
			}

			if fail {
				return ev, errBoom
			}

			_, err = ev.CreateEvent(ctx, eventID, "user_created", nil)
			return ev, err
		})
	}

	t.Run("commits both writes once", func(t *testing.T) {
		mock, db := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(userID, "Ada").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(userID, "Ada"))
		mock.ExpectQuery("INSERT INTO events").
			WithArgs(eventID, "user_created", []byte("{}")).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "payload"}).AddRow(eventID, "user_created", map[string]any{}))
		mock.ExpectCommit()

		require.NoError(t, signup(events.NewRepository(db), users.NewRepository(db), false))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure after chain rolls back", func(t *testing.T) {
		mock, db := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(userID, "Ada").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(userID, "Ada"))
		mock.ExpectRollback()

		err := signup(events.NewRepository(db), users.NewRepository(db), true)
		require.Same(t, errBoom, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
