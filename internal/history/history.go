// Package history records dashboard generations in SQLite so they can be
// listed and served again.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
)

// Trigger sources.
const (
	SourceCLI  = "cli"
	SourceAPI  = "api"
	SourceMQTT = "mqtt"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// timeLayout has a fixed width so created_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned when no generation has the requested ID.
var ErrNotFound = errors.New("generation not found")

// Generation is one run of the generator.
type Generation struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	Language   string    `json:"language"`
	Views      int       `json:"views"`
	Areas      int       `json:"areas"`
	Entities   int       `json:"entities"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`

	// Dashboard is nil for failed runs and in List results.
	Dashboard *lovelace.Dashboard `json:"dashboard,omitempty"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Source string
	Failed *bool
	Limit  int // default 20, max 100
	Offset int
}

// Repository stores generations.
type Repository interface {
	Save(ctx context.Context, g *Generation) error
	Get(ctx context.Context, id string) (*Generation, error)
	Latest(ctx context.Context) (*Generation, error)
	List(ctx context.Context, filter Filter) ([]Generation, error)
}

// SQLiteRepository keeps generations in the generations table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps a migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save inserts g, assigning an ID and timestamp when they are empty.
func (r *SQLiteRepository) Save(ctx context.Context, g *Generation) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	var dashboard *string
	if g.Dashboard != nil {
		b, err := json.Marshal(g.Dashboard)
		if err != nil {
			return fmt.Errorf("marshalling dashboard: %w", err)
		}
		s := string(b)
		dashboard = &s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generations (id, created_at, source, language, views, areas, entities, duration_ms, error, dashboard)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.CreatedAt.UTC().Format(timeLayout), g.Source, g.Language,
		g.Views, g.Areas, g.Entities, g.DurationMS,
		nullableString(g.Error), dashboard,
	)
	if err != nil {
		return fmt.Errorf("inserting generation %s: %w", g.ID, err)
	}
	return nil
}

// Get returns a generation with its dashboard.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Generation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, language, views, areas, entities, duration_ms, error, dashboard
		 FROM generations WHERE id = ?`, id)
	g, err := scanGeneration(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g, err
}

// Latest returns the most recent successful generation with its dashboard.
func (r *SQLiteRepository) Latest(ctx context.Context) (*Generation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, language, views, areas, entities, duration_ms, error, dashboard
		 FROM generations WHERE error IS NULL ORDER BY created_at DESC LIMIT 1`)
	g, err := scanGeneration(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// List returns generations without their dashboards, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) ([]Generation, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	filter.Limit = min(filter.Limit, maxLimit)
	filter.Offset = max(filter.Offset, 0)

	var conditions []string
	var args []any
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Failed != nil {
		if *filter.Failed {
			conditions = append(conditions, "error IS NOT NULL")
		} else {
			conditions = append(conditions, "error IS NULL")
		}
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE holds only fixed conditions with ? placeholders
		`SELECT id, created_at, source, language, views, areas, entities, duration_ms, error, NULL
		 FROM generations %s ORDER BY created_at DESC LIMIT ? OFFSET ?`, where)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	out := []Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generations: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(s scanner, withDashboard bool) (*Generation, error) {
	var (
		g         Generation
		createdAt string
		errText   sql.NullString
		dashboard sql.NullString
	)
	err := s.Scan(&g.ID, &createdAt, &g.Source, &g.Language,
		&g.Views, &g.Areas, &g.Entities, &g.DurationMS, &errText, &dashboard)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning generation: %w", err)
	}

	g.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing generation timestamp %q: %w", createdAt, err)
	}
	g.Error = errText.String

	if withDashboard && dashboard.Valid {
		var d lovelace.Dashboard
		if err := json.Unmarshal([]byte(dashboard.String), &d); err != nil {
			return nil, fmt.Errorf("decoding dashboard of %s: %w", g.ID, err)
		}
		g.Dashboard = &d
	}
	return &g, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
