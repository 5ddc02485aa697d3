// Package testutil provides integration test helpers, chiefly the
// containerized PostgreSQL instance used by storage tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/embervale/mud/internal/config"
	"github.com/embervale/mud/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// SkipWithoutDocker skips the calling test when no Docker daemon is
// reachable, so the integration suite degrades to a skip instead of a
// failure on machines without Docker.
func SkipWithoutDocker(t *testing.T) {
	t.Helper()
	// testcontainers panics (rather than returning an error) when no
	// Docker host can be detected at all, so treat that as a skip too.
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("skipping, docker not available: %v", r)
		}
	}()
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		t.Skipf("skipping, docker not available: %v", err)
	}
	defer provider.Close()
	if _, err := provider.Client().Ping(context.Background()); err != nil {
		t.Skipf("skipping, docker not available: %v", err)
	}
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool. Tests skip when Docker is unavailable.
//
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	SkipWithoutDocker(t)
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		FlushInterval:   time.Second,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplySchema creates the players and items tables in the test database.
//
// Precondition: Pool must be connected.
func (pc *PostgresContainer) ApplySchema(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	if err := pc.Pool.EnsureSchema(ctx); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	t.Logf("schema applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}
