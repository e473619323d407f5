// Package users is the repository of application users.
package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-txchain/pkg/txchain"
)

const (
	tableName       = "public.users"
	insertUserQuery = "INSERT INTO users (id, name) VALUES ($1, $2) RETURNING id, name"
	selectUserQuery = "SELECT id, name FROM users WHERE id = $1"
	listUsersQuery  = "SELECT id, name FROM users ORDER BY name, id LIMIT $1"
)

// ErrUserNotFound - no user with the requested id.
var ErrUserNotFound = errors.New("user not found")

// User - a row of the users table.
type User struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// Repository - users repository, bound either to the pool or to a chained transaction.
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

// CreateUser - inserts a user and returns the stored row.
func (r Repository) CreateUser(ctx context.Context, id uuid.UUID, name string) (User, error) {
	return pgxdb.QueryOneAndMap[User](r.Executor(), ctx, insertUserQuery, id, name)
}

// CreateUsers - bulk inserts users with the copy protocol.
func (r Repository) CreateUsers(ctx context.Context, users []User) (int64, error) {
	return pgxdb.BulkInsertStructs(r.Executor(), ctx, tableName, users)
}

// GetUser - returns the user with the given id, ErrUserNotFound when there is none.
func (r Repository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := pgxdb.QueryOneAndMap[User](r.Executor(), ctx, selectUserQuery, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}

	return user, err
}

// GetUsers - lists at most limit users ordered by name.
func (r Repository) GetUsers(ctx context.Context, limit int) ([]User, error) {
	return pgxdb.QueryAndMap[User](r.Executor(), ctx, listUsersQuery, limit)
}
