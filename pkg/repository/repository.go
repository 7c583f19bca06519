// Package repository provides document persistence on top of the SQLite store.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/umputun/mailscope/pkg/db"
)

// Config represents repository configuration
type Config struct {
	DB            db.Config
	RetryAttempts int           // write attempts on busy database, defaults to 5
	RetryDelay    time.Duration // delay between write attempts, defaults to 1s
}

// Repositories contains all repository instances
type Repositories struct {
	Document *DocumentRepository
	DB       *db.DB
}

// NewRepositories opens the database and creates repositories sharing its connection
func NewRepositories(ctx context.Context, cfg Config) (*Repositories, error) {
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 5
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	conn, err := db.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Repositories{
		Document: NewDocumentRepository(conn, cfg.RetryAttempts, cfg.RetryDelay),
		DB:       conn,
	}, nil
}

// Close closes the database connection
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// Ping verifies the database connection
func (r *Repositories) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
