package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flarewatch/flarewatch/internal/watch"
)

// ArchiveConfig holds the Postgres event archive settings.
type ArchiveConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnectionString returns the PostgreSQL connection string.
func (c ArchiveConfig) ConnectionString() string {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Archive persists every emitted event to Postgres for auditing. It is a
// write-only log: nothing in the watcher reads it back, and the snapshot
// store remains the only state the diff engine depends on.
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive connects the pool and ensures the schema.
func NewArchive(ctx context.Context, cfg ArchiveConfig) (*Archive, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("archive connect: %w", err)
	}

	a := &Archive{pool: pool}
	if err := a.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) ensureSchema(ctx context.Context) error {
	sql := `
		CREATE TABLE IF NOT EXISTS watch_events (
			id          UUID PRIMARY KEY,
			watch       TEXT NOT NULL,
			kind        TEXT NOT NULL,
			subject     TEXT,
			current     TEXT NOT NULL,
			previous    TEXT,
			direction   TEXT,
			delta       TEXT,
			details     JSONB,
			emitted_at  TIMESTAMPTZ NOT NULL,
			archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS watch_events_watch_idx ON watch_events (watch, emitted_at);
	`
	if _, err := a.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

func (a *Archive) Publish(ctx context.Context, events []watch.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `
		INSERT INTO watch_events (id, watch, kind, subject, current, previous, direction, delta, details, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	for _, ev := range events {
		var details []byte
		if ev.Details != nil {
			details, err = json.Marshal(ev.Details)
			if err != nil {
				return fmt.Errorf("marshal details of %s: %w", ev.ID, err)
			}
		}
		_, err = tx.Exec(ctx, sql,
			ev.ID, ev.Watch, string(ev.Kind), ev.Subject,
			ev.Current, ev.Previous, string(ev.Direction), ev.Delta,
			details, ev.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("archive event %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("archive commit: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	a.pool.Close()
	return nil
}

// RecentEvents returns the latest archived events of one watch, newest first.
// Used by operators for spot checks, not by the engine.
func (a *Archive) RecentEvents(ctx context.Context, watchID string, limit int) ([]watch.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.pool.Query(ctx, `
		SELECT id, watch, kind, subject, current, previous, direction, delta, details, emitted_at
		FROM watch_events
		WHERE watch = $1
		ORDER BY emitted_at DESC
		LIMIT $2
	`, watchID, limit)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var events []watch.Event
	for rows.Next() {
		var (
			ev        watch.Event
			kind      string
			direction string
			details   []byte
			emittedAt time.Time
		)
		err := rows.Scan(&ev.ID, &ev.Watch, &kind, &ev.Subject, &ev.Current,
			&ev.Previous, &direction, &ev.Delta, &details, &emittedAt)
		if err != nil {
			return nil, fmt.Errorf("scan archived event: %w", err)
		}
		ev.Kind = watch.Kind(kind)
		ev.Direction = watch.Direction(direction)
		ev.Timestamp = emittedAt
		if len(details) > 0 {
			if err := json.Unmarshal(details, &ev.Details); err != nil {
				return nil, fmt.Errorf("decode details of %s: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
