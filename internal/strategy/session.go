package strategy

import (
	"context"
	"fmt"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/localize"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// DebugSwitcher is implemented by loggers whose verbosity can follow the
// strategy "debug" option.
type DebugSwitcher interface {
	SetDebug(enabled bool, fallback string)
}

// SessionConfig selects the inputs of one generation session.
type SessionConfig struct {
	// Language of titles and collation. Default: "en"
	Language string

	// Override is the user options tree (see options.ParseOverride).
	Override map[string]any

	// LogLevel is restored on the logger when the options leave debug off.
	LogLevel string
}

// NewSession merges the options, then fetches and sanitises the registries.
//
// A malformed options override aborts the session: it is logged at fatal
// level and returned. Registry fetch failures only degrade the session (see
// registry.Initialize).
//
// Parameters:
//   - ctx: bounds the registry fetches
//   - src: the registry source
//   - cfg: language, options and log level
//   - logger: receives diagnostics; if it implements DebugSwitcher its
//     verbosity follows the "debug" option
//
// Returns:
//   - *registry.Registry: the initialised session
//   - error: wraps options.ErrInvalidOverride for a bad override
func NewSession(ctx context.Context, src hass.Source, cfg SessionConfig, logger registry.Logger) (*registry.Registry, error) {
	if cfg.Language == "" {
		cfg.Language = localize.DefaultLanguage
	}

	loc, err := localize.New(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}

	opts, err := options.Build(loc, cfg.Override)
	if err != nil {
		if logger != nil {
			logger.Fatal("Error merging strategy options!", "error", err)
		}
		return nil, err
	}

	if ds, ok := logger.(DebugSwitcher); ok {
		ds.SetDebug(opts.Debug, cfg.LogLevel)
	}

	return registry.Initialize(ctx, src, opts, loc, logger), nil
}
