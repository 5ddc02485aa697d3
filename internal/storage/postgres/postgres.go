// Package postgres provides PostgreSQL-backed storage for player and item
// state. It is consumed only by the persistence sidecar; game logic never
// calls it.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embervale/mud/internal/config"
)

// Pool wraps a pgx connection pool configured from DatabaseConfig.
type Pool struct {
	db *pgxpool.Pool
}

// NewPool creates a connection pool and verifies connectivity with a ping.
//
// Precondition: cfg must be validated; ctx governs the connect and ping.
// Postcondition: Returns a healthy pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{db: db}, nil
}

// Health checks database connectivity.
func (p *Pool) Health(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}

// Close releases all pooled connections.
func (p *Pool) Close() {
	p.db.Close()
}

// DB exposes the underlying pool for repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}
