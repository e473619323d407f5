package postgres

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marcodd23/go-txchain/migrations"
	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/dbx/pgxdb"
	"github.com/marcodd23/go-txchain/pkg/logx"
	"github.com/marcodd23/go-txchain/test"
)

const (
	postgresContainerImage = "docker.io/postgres:16-alpine"
	postgresContainerPort  = "5432/tcp"

	MainDbName     = "main-db"
	MainDbUser     = "postgres"
	MainDbPassword = "password"
)

// PostgresContainer represents the postgres Container type used in the module.
type PostgresContainer struct {
	Container  *postgres.PostgresContainer
	MappedPort nat.Port
	Host       string
	DbName     string
	DbUser     string
	DbPassword string
}

// StartPostgresContainer - starts a postgres container. Integration tests are skipped with -short.
func StartPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	test.ConfigTestRootPath()

	pg, err := postgres.Run(ctx,
		postgresContainerImage,
		postgres.WithDatabase(MainDbName),
		postgres.WithUsername(MainDbUser),
		postgres.WithPassword(MainDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	require.NotNil(t, pg)

	mappedPort, err := pg.MappedPort(ctx, postgresContainerPort)
	require.NoError(t, err)

	host, err := pg.Host(ctx)
	require.NoError(t, err)

	log.Printf("Postgres running at %s:%s", host, mappedPort.Port())

	return &PostgresContainer{
		Container:  pg,
		MappedPort: mappedPort,
		Host:       host,
		DbName:     MainDbName,
		DbUser:     MainDbUser,
		DbPassword: MainDbPassword,
	}
}

// StopContainer - terminates the container.
func (c *PostgresContainer) StopContainer(ctx context.Context, t *testing.T) {
	logx.GetLogger().LogInfo(ctx, "Terminating the Container ....")

	err := c.Container.Terminate(ctx)
	require.NoError(t, err, fmt.Sprintf("error terminating the Container %v", err))
}

// ConnConfig - connection configuration pointing at the container.
func (c *PostgresContainer) ConnConfig() dbx.ConnConfig {
	return dbx.ConnConfig{
		IsLocalEnv: true,
		Host:       c.Host,
		Port:       int32(c.MappedPort.Int()),
		DBName:     c.DbName,
		User:       c.DbUser,
		Password:   c.DbPassword,
		MaxConn:    4,
	}
}

// SetupDatabase - connects to the container, waits for it to answer and applies the migrations.
// The pool is closed when the test ends.
func SetupDatabase(ctx context.Context, t *testing.T, c *PostgresContainer, preparedStatements ...dbx.PreparedStatement) *pgxdb.PostgresDB {
	t.Helper()

	db, err := pgxdb.SetupPostgresDbManager(ctx, c.ConnConfig(), preparedStatements...)
	require.NoError(t, err)
	t.Cleanup(db.CloseDbConnPool)

	require.NoError(t, db.WaitReady(ctx, 30*time.Second))
	require.NoError(t, db.Migrate(ctx, migrations.FS, "."))

	return db
}

// Truncate - empties the given tables between tests.
func Truncate(ctx context.Context, t *testing.T, db dbx.Executor, tables ...string) {
	t.Helper()

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table))
		require.NoError(t, err)
	}
}
