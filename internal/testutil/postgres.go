// Package testutil provides test helpers including container management.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/moonhowl/werewolfd/internal/config"
	"github.com/moonhowl/werewolfd/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
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

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The game tables exist in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS rooms (
			id            VARCHAR(8)  PRIMARY KEY,
			moderator     UUID        NOT NULL,
			state         VARCHAR(16) NOT NULL DEFAULT 'lobby',
			current_night INTEGER     NOT NULL DEFAULT 0,
			is_day        BOOLEAN     NOT NULL DEFAULT FALSE,
			win           VARCHAR(16) NOT NULL DEFAULT 'none',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS room_members (
			id           BIGSERIAL   PRIMARY KEY,
			room_id      VARCHAR(8)  NOT NULL REFERENCES rooms (id) ON DELETE CASCADE,
			player_id    UUID        NOT NULL,
			nickname     VARCHAR(64) NOT NULL,
			avatar_index INTEGER     NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (room_id, player_id)
		);
		CREATE TABLE IF NOT EXISTS seats (
			id           BIGSERIAL   PRIMARY KEY,
			room_id      VARCHAR(8)  NOT NULL REFERENCES rooms (id) ON DELETE CASCADE,
			player_id    UUID        NOT NULL,
			nickname     VARCHAR(64) NOT NULL,
			avatar_index INTEGER     NOT NULL DEFAULT 0,
			role         VARCHAR(16) NOT NULL,
			is_alive     BOOLEAN     NOT NULL DEFAULT TRUE,
			night_killed INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_seats_room ON seats (room_id);
		CREATE TABLE IF NOT EXISTS game_actions (
			id        BIGSERIAL   PRIMARY KEY,
			room_id   VARCHAR(8)  NOT NULL REFERENCES rooms (id) ON DELETE CASCADE,
			actor_id  BIGINT      REFERENCES seats (id) ON DELETE CASCADE,
			type      VARCHAR(24) NOT NULL,
			target_id BIGINT      NOT NULL,
			night     INTEGER     NOT NULL,
			state     VARCHAR(16) NOT NULL DEFAULT 'queued'
		);
		CREATE INDEX IF NOT EXISTS idx_game_actions_room_state ON game_actions (room_id, state);
		CREATE TABLE IF NOT EXISTS role_settings (
			room_id                   VARCHAR(8) PRIMARY KEY REFERENCES rooms (id) ON DELETE CASCADE,
			werewolves                INTEGER    NOT NULL DEFAULT 1,
			selected_roles            TEXT[]     NOT NULL DEFAULT '{}',
			allow_multiple_self_heals BOOLEAN    NOT NULL DEFAULT FALSE,
			show_game_summary         BOOLEAN    NOT NULL DEFAULT FALSE
		);
	`

	_, err := pc.RawPool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// NewPool starts a migrated test database and returns its raw pool. The
// container is terminated via t.Cleanup.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
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
