// Package events is the repository of the application event log.
package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-txchain/pkg/txchain"
	"github.com/marcodd23/go-txchain/pkg/utilx/jsonx"
)

const (
	tableName        = "public.events"
	insertEventQuery = "INSERT INTO events (id, name, payload) VALUES ($1, $2, $3::jsonb) RETURNING id, name, payload"
	listEventsQuery  = "SELECT id, name, payload FROM events ORDER BY name, id LIMIT $1"
)

// Event - a row of the events table.
type Event struct {
	ID      uuid.UUID      `db:"id" json:"id"`
	Name    string         `db:"name" json:"name"`
	Payload map[string]any `db:"payload" json:"payload"`
}

// ToRow - values in the order of the db tags, for bulk inserts.
func (e Event) ToRow() []any {
	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	return []any{e.ID, e.Name, payload}
}

// Repository - events repository, bound either to the pool or to a chained transaction.
type Repository struct {
	txchain.Binding
}

var _ txchain.Repository[Repository] = Repository{}

// NewRepository - returns the repository bound to pool.
func NewRepository(pool dbx.Pool) Repository {
	return Repository{Binding: txchain.OnPool(pool)}
}

// Bind - returns the repository bound to tx.
func (r Repository) Bind(tx *txchain.Tx) Repository {
	return Repository{Binding: txchain.OnTx(tx)}
}

// CreateEvent - inserts an event and returns the stored row.
func (r Repository) CreateEvent(ctx context.Context, id uuid.UUID, name string, payload map[string]any) (Event, error) {
	doc, err := jsonx.Encode(payload)
	if err != nil {
		return Event{}, err
	}

	return pgxdb.QueryOneAndMap[Event](r.Executor(), ctx, insertEventQuery, id, name, doc)
}

// CreateEvents - bulk inserts events with the copy protocol.
func (r Repository) CreateEvents(ctx context.Context, events []Event) (int64, error) {
	return pgxdb.BulkInsertEntitiesWithTags(r.Executor(), ctx, tableName, events)
}

// GetEvents - lists at most limit events ordered by name.
func (r Repository) GetEvents(ctx context.Context, limit int) ([]Event, error) {
	return pgxdb.QueryAndMap[Event](r.Executor(), ctx, listEventsQuery, limit)
}
