package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/localize"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/query"
)

// uninitializedCount is rendered in place of a count template when the
// registry has not been initialised.
const uninitializedCount = "?"

// statefulSceneSuffix marks switches that mirror a scene's active state.
const statefulSceneSuffix = "_stateful_scene"

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

// Registry is one generation session: the sanitised registries, the live
// states and the effective options, plus the localizer of the dashboard
// language.
//
// A Registry is built once by Initialize and never modified afterwards, so
// every method is safe for concurrent use.
type Registry struct {
	entities    []hass.Entity
	devices     []hass.Device
	areas       []Area
	states      hass.States
	deviceAreas map[string]hass.Optional[string]

	opts        *options.Options
	loc         *localize.Localizer
	logger      Logger
	initialized bool
}

// Initialize fetches the registries and states from src and sanitises them
// with opts.
//
// The four fetches run concurrently. A failing fetch is logged at fatal level
// and the session continues with that collection empty, so generation still
// produces a (degraded) dashboard.
//
// Sanitising:
//   - entities: config and diagnostic entities, hidden and disabled entities
//     are dropped; the rest is ordered by name and the missing area becomes
//     "undisclosed"
//   - devices: hidden and disabled devices are dropped; the rest is ordered
//     by name and the missing area becomes "undisclosed"
//   - areas: the undisclosed area is added, overlays are applied, hidden
//     areas dropped and the rest ordered by order, then name
//
// Parameters:
//   - ctx: bounds the fetches
//   - src: the registry source (websocket client or snapshot)
//   - opts: effective options from options.Build
//   - loc: localizer of the dashboard language
//   - logger: receives diagnostics; nil discards them
//
// Returns:
//   - *Registry: the initialised session
func Initialize(ctx context.Context, src hass.Source, opts *options.Options, loc *localize.Localizer, logger Logger) *Registry {
	if logger == nil {
		logger = noopLogger{}
	}
	if loc == nil {
		loc = localize.MustNew(localize.DefaultLanguage)
	}
	if opts == nil {
		opts = options.Defaults(loc)
	}

	r := &Registry{
		opts:        opts,
		loc:         loc,
		logger:      logger,
		states:      hass.States{},
		deviceAreas: map[string]hass.Optional[string]{},
	}

	var (
		entities []hass.Entity
		devices  []hass.Device
		areas    []hass.Area
		states   hass.States
	)

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	fetchErrors := map[string]error{}
	fetch := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				mu.Lock()
				fetchErrors[name] = err
				mu.Unlock()
			}
			// Fetch failures degrade the session instead of aborting it.
			return nil
		})
	}

	fetch("entities", func(ctx context.Context) (err error) {
		entities, err = src.Entities(ctx)
		return err
	})
	fetch("devices", func(ctx context.Context) (err error) {
		devices, err = src.Devices(ctx)
		return err
	})
	fetch("areas", func(ctx context.Context) (err error) {
		areas, err = src.Areas(ctx)
		return err
	})
	fetch("states", func(ctx context.Context) (err error) {
		states, err = src.States(ctx)
		return err
	})
	_ = g.Wait()

	for name, err := range fetchErrors {
		logger.Fatal("Error importing Home Assistant registries!", "registry", name, "error", err)
	}
	if states != nil {
		r.states = states
	}

	r.entities = r.sanitizeEntities(entities)
	r.devices = r.sanitizeDevices(devices)
	for _, d := range r.devices {
		r.deviceAreas[d.ID] = d.AreaID
	}
	r.areas = r.sanitizeAreas(areas)
	r.initialized = true

	logger.Debug("registry initialised",
		"entities", len(r.entities),
		"devices", len(r.devices),
		"areas", len(r.areas),
		"states", len(r.states),
	)
	return r
}

func (r *Registry) sanitizeEntities(in []hass.Entity) []hass.Entity {
	out := query.New(in, r).
		Not().WhereEntityCategory(hass.Some(hass.CategoryConfig)).
		Not().WhereEntityCategory(hass.Some(hass.CategoryDiagnostic)).
		IsNotHidden(true).
		WhereDisabledBy(hass.Null[string]()).
		OrderBy(query.Ascending,
			query.Field(func(e hass.Entity) hass.Optional[string] { return e.Name }),
			query.Field(func(e hass.Entity) hass.Optional[string] { return e.OriginalName }),
		).
		List()

	for i := range out {
		if !out[i].AreaID.HasValue() {
			out[i].AreaID = hass.Some(options.UndisclosedArea)
		}
	}
	return out
}

func (r *Registry) sanitizeDevices(in []hass.Device) []hass.Device {
	out := query.New(in, r).
		IsNotHidden(true).
		WhereDisabledBy(hass.Null[string]()).
		OrderBy(query.Ascending,
			query.Field(func(d hass.Device) hass.Optional[string] { return d.NameByUser }),
			query.Field(func(d hass.Device) hass.Optional[string] { return d.Name }),
		).
		List()

	for i := range out {
		if !out[i].AreaID.HasValue() {
			out[i].AreaID = hass.Some(options.UndisclosedArea)
		}
	}
	return out
}

func (r *Registry) sanitizeAreas(in []hass.Area) []Area {
	if r.opts.Areas[options.GroupKey].IsHidden() {
		return []Area{}
	}

	// The undisclosed area goes first so it wins ties in the stable sort.
	records := make([]hass.Area, 0, len(in)+1)
	if !r.opts.Areas[options.UndisclosedArea].IsHidden() {
		defaults := options.Defaults(r.loc).Areas[options.UndisclosedArea]
		records = append(records, undisclosedArea(defaults))
	}
	records = append(records, in...)

	merged := make([]Area, 0, len(records))
	for _, a := range records {
		area := applyOverlay(a, r.opts.AreaOverlay(a.AreaID))
		if area.AreaID == options.UndisclosedArea {
			area.Type = DefaultAreaType
		}
		merged = append(merged, area)
	}

	return query.New(merged, r).
		IsNotHidden(true).
		OrderBy(query.Ascending,
			query.Int(func(a Area) *int { return a.Order }),
			query.String(func(a Area) string { return a.Name }),
		).
		List()
}

// Initialized reports whether Initialize completed. A nil Registry is not
// initialised.
func (r *Registry) Initialized() bool {
	return r != nil && r.initialized
}

// Entities returns the sanitised entity registry. The slice must not be
// modified.
func (r *Registry) Entities() []hass.Entity {
	if r == nil {
		return nil
	}
	return r.entities
}

// Devices returns the sanitised device registry. The slice must not be
// modified.
func (r *Registry) Devices() []hass.Device {
	if r == nil {
		return nil
	}
	return r.devices
}

// Areas returns the visible areas in display order. The slice must not be
// modified.
func (r *Registry) Areas() []Area {
	if r == nil {
		return nil
	}
	return r.areas
}

// States returns the live entity states.
func (r *Registry) States() hass.States {
	if r == nil {
		return hass.States{}
	}
	return r.states
}

// Options returns the effective options. A nil Registry reports the
// defaults.
func (r *Registry) Options() *options.Options {
	if r == nil || r.opts == nil {
		return options.Defaults(r.Localizer())
	}
	return r.opts
}

// Localizer returns the localizer of the dashboard language.
func (r *Registry) Localizer() *localize.Localizer {
	if r == nil || r.loc == nil {
		return localize.MustNew(localize.DefaultLanguage)
	}
	return r.loc
}

// Log returns the session logger.
func (r *Registry) Log() Logger {
	if r == nil || r.logger == nil {
		return noopLogger{}
	}
	return r.logger
}

// Logger returns the session logger for queries.
func (r *Registry) Logger() query.Logger {
	return r.Log()
}

// T translates a dotted key in the dashboard language.
func (r *Registry) T(key string) string {
	return r.Localizer().T(key)
}

// Compare collates two strings in the dashboard language.
func (r *Registry) Compare(a, b string) int {
	return r.Localizer().Compare(a, b)
}

// DeviceArea returns the area of a known device, or unset when the device is
// unknown (or was dropped while sanitising).
func (r *Registry) DeviceArea(deviceID string) hass.Optional[string] {
	if r == nil {
		return hass.Unset[string]()
	}
	if area, ok := r.deviceAreas[deviceID]; ok {
		return area
	}
	return hass.Unset[string]()
}

// Area returns a visible area by id.
func (r *Registry) Area(id string) (Area, bool) {
	return lo.Find(r.Areas(), func(a Area) bool { return a.AreaID == id })
}

// Entity returns a sanitised entity by entity_id.
func (r *Registry) Entity(entityID string) (hass.Entity, bool) {
	return query.New(r.Entities(), r).WhereEntityID(hass.Some(entityID)).First()
}

// EntityQuery starts a query over the sanitised entities.
func (r *Registry) EntityQuery() *query.Query[hass.Entity] {
	return query.New(r.Entities(), r)
}

// DeviceQuery starts a query over the sanitised devices.
func (r *Registry) DeviceQuery() *query.Query[hass.Device] {
	return query.New(r.Devices(), r)
}

// AreaQuery starts a query over the visible areas.
func (r *Registry) AreaQuery() *query.Query[Area] {
	return query.New(r.Areas(), r)
}

// CountTemplate returns a Jinja template counting the entities of domain
// whose state compares to value with operator ("eq", "ne", ...). Unavailable
// and unknown states are never counted, nor are stateful scene switches.
// An uninitialised registry yields "?".
func (r *Registry) CountTemplate(domain, operator, value string) string {
	if !r.Initialized() {
		r.Log().Fatal("Registry not initialized!")
		return uninitializedCount
	}

	ids := query.Values(
		r.EntityQuery().
			WhereDomain(domain).
			Where(func(e hass.Entity) bool { return !strings.HasSuffix(e.EntityID, statefulSceneSuffix) }),
		func(e hass.Entity) (string, bool) { return fmt.Sprintf("states['%s']", e.EntityID), true },
	)

	return fmt.Sprintf(
		"{%% set entities = [%s] %%} {{ entities"+
			" | selectattr('state','%s','%s')"+
			" | selectattr('state','ne','unavailable')"+
			" | selectattr('state','ne','unknown')"+
			" | list | count }}",
		strings.Join(ids, ","), operator, value,
	)
}

// DomainTargets returns the entity ids of every entity in domain.
func (r *Registry) DomainTargets(domain string) []string {
	return query.Values(r.EntityQuery().WhereDomain(domain), func(e hass.Entity) (string, bool) {
		return e.EntityID, true
	})
}
