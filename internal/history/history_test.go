package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/config"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/database"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/migrations"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func testDashboard() *lovelace.Dashboard {
	return &lovelace.Dashboard{Views: []lovelace.View{
		{"title": "Home", "path": "home", "cards": []any{}},
	}}
}

func TestSave_AssignsIDAndTimestamp(t *testing.T) {
	repo := newRepo(t)
	g := &Generation{Source: SourceCLI, Language: "en", Views: 1, Dashboard: testDashboard()}

	if err := repo.Save(context.Background(), g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if g.ID == "" || g.CreatedAt.IsZero() {
		t.Errorf("Save() left ID=%q CreatedAt=%v", g.ID, g.CreatedAt)
	}
}

func TestGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	saved := &Generation{Source: SourceAPI, Language: "de", Views: 3, Areas: 2, Entities: 14, DurationMS: 42, Dashboard: testDashboard()}
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Source != SourceAPI || got.Language != "de" || got.Views != 3 || got.Areas != 2 || got.Entities != 14 || got.DurationMS != 42 {
		t.Errorf("Get() = %+v", got)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, saved.CreatedAt)
	}
	if got.Dashboard == nil || len(got.Dashboard.Views) != 1 || got.Dashboard.Views[0].String("path") != "home" {
		t.Errorf("Dashboard = %+v", got.Dashboard)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestLatest_SkipsFailures(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest() on empty store error = %v, want ErrNotFound", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ok := &Generation{ID: "ok", CreatedAt: base, Source: SourceCLI, Language: "en", Dashboard: testDashboard()}
	failed := &Generation{ID: "failed", CreatedAt: base.Add(time.Minute), Source: SourceCLI, Language: "en", Error: "boom"}
	for _, g := range []*Generation{ok, failed} {
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save(%s) error = %v", g.ID, err)
		}
	}

	got, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.ID != "ok" || got.Dashboard == nil {
		t.Errorf("Latest() = %+v, want the successful run", got)
	}
}

func TestList(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []*Generation{
		{ID: "a", CreatedAt: base, Source: SourceCLI},
		{ID: "b", CreatedAt: base.Add(1 * time.Minute), Source: SourceMQTT},
		{ID: "c", CreatedAt: base.Add(2 * time.Minute), Source: SourceMQTT, Error: "timeout"},
		{ID: "d", CreatedAt: base.Add(3 * time.Minute), Source: SourceAPI, Dashboard: testDashboard()},
	}
	for _, g := range seed {
		g.Language = "en"
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("Save(%s) error = %v", g.ID, err)
		}
	}

	yes, no := true, false
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{}, []string{"d", "c", "b", "a"}},
		{"by source", Filter{Source: SourceMQTT}, []string{"c", "b"}},
		{"failed only", Filter{Failed: &yes}, []string{"c"}},
		{"succeeded only", Filter{Failed: &no}, []string{"d", "b", "a"}},
		{"paged", Filter{Limit: 2, Offset: 1}, []string{"c", "b"}},
		{"no match", Filter{Source: "cron"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() returned %d rows, want %d", len(got), len(tt.want))
			}
			for i, g := range got {
				if g.ID != tt.want[i] {
					t.Errorf("row %d = %s, want %s", i, g.ID, tt.want[i])
				}
				if g.Dashboard != nil {
					t.Errorf("row %s carries a dashboard", g.ID)
				}
			}
		})
	}
}
