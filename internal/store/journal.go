package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Journal is an append-only record of confirmed submissions, kept for
// observability. It never gates an action and a failed write never
// fails a cycle. It deliberately does not hold budget counters: those
// stay in memory per the runtime's best-effort rate limit.
type Journal struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// Action is one journaled submission.
type Action struct {
	ID           string    `json:"id"`
	CycleID      string    `json:"cycle_id"`
	Kind         string    `json:"kind"` // "post" or "comment"
	TargetPostID string    `json:"target_post_id,omitempty"`
	RemoteID     string    `json:"remote_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// New creates a Journal with a pgx connection pool.
func New(dsn string, logger *zap.Logger) (*Journal, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("PostgreSQL connected")
	return &Journal{db: pool, logger: logger}, nil
}

// Migrate reads and executes all .up.sql files from the migrations directory.
func (j *Journal) Migrate(ctx context.Context, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(migrationsDir, f))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}
		if _, err := j.db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		j.logger.Info("Migration applied", zap.String("file", f))
	}
	return nil
}

// Record appends one confirmed action.
func (j *Journal) Record(ctx context.Context, a *Action) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := j.db.Exec(ctx, `
		INSERT INTO actions (id, cycle_id, kind, target_post_id, remote_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.CycleID, a.Kind, a.TargetPostID, a.RemoteID, a.Content, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// Recent returns the latest journaled actions, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(ctx, `
		SELECT id, cycle_id, kind, COALESCE(target_post_id,''), remote_id, content, created_at
		FROM actions
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.CycleID, &a.Kind, &a.TargetPostID, &a.RemoteID, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Close shuts down the connection pool.
func (j *Journal) Close() {
	j.db.Close()
}
