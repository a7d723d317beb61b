// Package generator runs dashboard generations and hands each result to
// the configured consumers: the history store, the MQTT broker and the
// metrics store.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/history"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/influxdb"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/mqtt"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
	"github.com/nerrad567/lovelace-strategy/internal/strategy"
)

// ErrNoDashboard is returned before the first successful generation.
var ErrNoDashboard = errors.New("no dashboard generated yet")

// DefaultTimeout bounds a run when Config.Timeout is zero.
const DefaultTimeout = 2 * time.Minute

// Publisher receives every successful dashboard. *mqtt.Client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
	Topics() mqtt.Topics
}

// Metrics receives a summary of every run. *influxdb.Client satisfies it.
type Metrics interface {
	WriteGeneration(g influxdb.Generation)
}

// Config holds the per-run settings that do not change between runs.
type Config struct {
	Site     string
	Language string
	Workers  int
	LogLevel string

	// Timeout bounds one run. It does not depend on any caller's context,
	// since a run is shared by every caller that arrives while it is active.
	Timeout time.Duration

	// Override is the parsed user options tree.
	Override map[string]any
}

// Result is a finished generation.
type Result struct {
	Generation history.Generation
	Dashboard  lovelace.Dashboard
}

// Service generates dashboards on demand. Concurrent Generate calls share
// a single run.
type Service struct {
	cfg    Config
	source hass.Source
	logger registry.Logger

	history   history.Repository
	publisher Publisher
	metrics   Metrics

	group singleflight.Group

	mu        sync.RWMutex
	latest    *Result
	listeners []func(*Result)
}

// New creates a service reading the registries from source.
func New(cfg Config, source hass.Source, logger registry.Logger) *Service {
	return &Service{cfg: cfg, source: source, logger: logger}
}

// SetHistory stores every run in repo.
func (s *Service) SetHistory(repo history.Repository) { s.history = repo }

// SetPublisher publishes every successful dashboard through p.
func (s *Service) SetPublisher(p Publisher) { s.publisher = p }

// SetMetrics writes a metric point for every run to m.
func (s *Service) SetMetrics(m Metrics) { s.metrics = m }

// OnGenerated registers fn to run after every successful generation.
func (s *Service) OnGenerated(fn func(*Result)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Generate runs one generation and hands the result to the consumers.
// Calls that arrive while a run is in progress wait for it and share its
// result. A caller whose ctx ends stops waiting; the run carries on for the
// others and is still recorded.
//
// Parameters:
//   - ctx: ends this caller's wait; its values reach the run, its
//     cancellation does not
//   - source: who asked, one of the history.Source* constants
//
// Returns:
//   - *Result: the dashboard and its run record
//   - error: the session or build error (the failed run is still recorded),
//     or ctx's error
func (s *Service) Generate(ctx context.Context, source string) (*Result, error) {
	done := s.group.DoChan("generate", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout())
		defer cancel()
		return s.run(runCtx, source)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	}
}

func (s *Service) timeout() time.Duration {
	if s.cfg.Timeout > 0 {
		return s.cfg.Timeout
	}
	return DefaultTimeout
}

func (s *Service) run(ctx context.Context, source string) (*Result, error) {
	started := time.Now()
	gen := history.Generation{
		ID:        uuid.NewString(),
		CreatedAt: started.UTC(),
		Source:    source,
		Language:  s.cfg.Language,
	}

	reg, err := strategy.NewSession(ctx, s.source, strategy.SessionConfig{
		Language: s.cfg.Language,
		Override: s.cfg.Override,
		LogLevel: s.cfg.LogLevel,
	}, s.logger)
	var dashboard lovelace.Dashboard
	if err == nil {
		dashboard, err = strategy.GenerateDashboard(ctx, reg, s.cfg.Workers)
	}

	gen.DurationMS = time.Since(started).Milliseconds()
	gen.Views = len(dashboard.Views)
	gen.Areas = len(reg.Areas())
	gen.Entities = len(reg.Entities())

	if err != nil {
		gen.Error = err.Error()
		s.logger.Error("dashboard generation failed", "id", gen.ID, "source", source, "error", err)
		s.record(ctx, &gen, 0)
		return nil, fmt.Errorf("generating dashboard: %w", err)
	}

	gen.Dashboard = &dashboard
	result := &Result{Generation: gen, Dashboard: dashboard}
	s.mu.Lock()
	s.latest = result
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	cards := CountCards(dashboard)
	s.logger.Info("dashboard generated",
		"id", gen.ID,
		"source", source,
		"views", gen.Views,
		"cards", cards,
		"duration_ms", gen.DurationMS,
	)
	s.record(ctx, &gen, cards)
	s.publish(result)
	for _, fn := range listeners {
		fn(result)
	}
	return result, nil
}

// record stores the run and writes its metric. Failures are logged; they
// never fail the generation.
func (s *Service) record(ctx context.Context, gen *history.Generation, cards int) {
	if s.history != nil {
		if err := s.history.Save(context.WithoutCancel(ctx), gen); err != nil {
			s.logger.Error("storing generation failed", "id", gen.ID, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.WriteGeneration(influxdb.Generation{
			Site:     s.cfg.Site,
			Source:   gen.Source,
			Language: gen.Language,
			Failed:   gen.Error != "",
			Views:    gen.Views,
			Areas:    gen.Areas,
			Entities: gen.Entities,
			Cards:    cards,
			Duration: time.Duration(gen.DurationMS) * time.Millisecond,
			At:       gen.CreatedAt,
		})
	}
}

// publish sends the dashboard, then each view, then the run summary.
func (s *Service) publish(r *Result) {
	if s.publisher == nil {
		return
	}
	topics := s.publisher.Topics()

	if err := s.publisher.PublishJSON(topics.Dashboard(), r.Dashboard, true); err != nil {
		s.logger.Warn("publishing dashboard failed", "error", err)
		return
	}
	for _, v := range r.Dashboard.Views {
		path := v.String("path")
		if path == "" {
			continue
		}
		if err := s.publisher.PublishJSON(topics.View(path), v, true); err != nil {
			s.logger.Warn("publishing view failed", "view", path, "error", err)
		}
	}

	summary := r.Generation
	summary.Dashboard = nil
	if err := s.publisher.PublishJSON(topics.Generation(), summary, false); err != nil {
		s.logger.Warn("publishing generation summary failed", "error", err)
	}
}

// Latest returns the most recent successful run of this process, falling
// back to the history store.
func (s *Service) Latest(ctx context.Context) (*Result, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}

	if s.history != nil {
		gen, err := s.history.Latest(ctx)
		switch {
		case err == nil && gen.Dashboard != nil:
			return &Result{Generation: *gen, Dashboard: *gen.Dashboard}, nil
		case err != nil && !errors.Is(err, history.ErrNotFound):
			return nil, err
		}
	}
	return nil, ErrNoDashboard
}

// History returns the configured history store, or nil.
func (s *Service) History() history.Repository {
	return s.history
}

// generateCommand is the optional payload of a generate command.
type generateCommand struct {
	RequestedBy string `json:"requested_by"`
}

// GenerateCommandHandler returns the MQTT handler for the generate command topic.
// The payload may be empty; anything else must be a JSON object.
func (s *Service) GenerateCommandHandler(ctx context.Context) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		var cmd generateCommand
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &cmd); err != nil {
				return fmt.Errorf("decoding generate command: %w", err)
			}
		}
		s.logger.Info("generate command received", "topic", topic, "requested_by", cmd.RequestedBy)

		// The handler runs on the MQTT client's goroutine.
		go func() {
			if _, err := s.Generate(ctx, history.SourceMQTT); err != nil {
				s.logger.Warn("generate command failed", "error", err)
			}
		}()
		return nil
	}
}

// CountCards counts the cards of a dashboard, including those nested in
// stacks.
func CountCards(d lovelace.Dashboard) int {
	return lo.SumBy(d.Views, func(v lovelace.View) int {
		return countNested(v.Cards())
	})
}

func countNested(cards []lovelace.Card) int {
	return lo.SumBy(cards, func(c lovelace.Card) int {
		return 1 + countNested(c.Cards())
	})
}
