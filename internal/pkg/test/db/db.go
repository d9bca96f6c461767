package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresStartRequest struct {
	User     string
	Password string
	DB       string
}

type PostgresStartResponse struct {
	Host string
	Port string
}

// StartPostgres runs a throwaway postgres container. The returned closer terminates it.
func StartPostgres(t testing.TB, ctx context.Context, cfg PostgresStartRequest) (PostgresStartResponse, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     cfg.User,
			"POSTGRES_PASSWORD": cfg.Password,
			"POSTGRES_DB":       cfg.DB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start postgres container")

	host, err := cont.Host(ctx)
	require.NoError(t, err, "get container host")

	port, err := cont.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "get container port")

	closer := func() {
		_ = cont.Terminate(context.Background())
	}
	return PostgresStartResponse{
		Host: host,
		Port: port.Port(),
	}, closer
}

// Migrator is the subset of *migrate.Migrate needed to rebuild a schema.
type Migrator interface {
	Up() error
	Down() error
}

// ResetSchema drops every migrated object and applies the migrations again.
func ResetSchema(t testing.TB, m Migrator) {
	t.Helper()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to drop existing db objects: %v", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

type dbQuery struct {
	t   testing.TB
	row *sql.Row
}

func Query(t testing.TB, db *sql.DB, query string, args ...any) *dbQuery {
	t.Helper()

	row := db.QueryRow(query, args...)
	require.NoError(t, row.Err())

	return &dbQuery{
		t:   t,
		row: row,
	}
}

func (q *dbQuery) AsInt64() int64 {
	q.t.Helper()

	var v int64
	err := q.row.Scan(&v)
	require.NoError(q.t, err)
	return v
}

func (q *dbQuery) AsString() string {
	q.t.Helper()

	var v string
	err := q.row.Scan(&v)
	require.NoError(q.t, err)
	return v
}
