package query

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/options"
)

// Record is the read surface shared by every registry record kind. Filters
// only go through these accessors, so a filter on a field a kind lacks sees
// an unset value instead of failing.
type Record interface {
	Kind() hass.Kind
	Identifier() string
	Names() []hass.Optional[string]
	OwningArea() hass.Optional[string]
	OwningFloor() hass.Optional[string]
	OwningDevice() hass.Optional[string]
	EntityRef() hass.Optional[string]
	DisabledReason() hass.Optional[string]
	HiddenReason() hass.Optional[string]
	Category() hass.Optional[string]
}

// Logger is the logging surface the engine needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Scope is the session context a query reads while filtering: the effective
// options, the device registry (for area expansion), the collation of the
// session language and a logger.
type Scope interface {
	Options() *options.Options
	DeviceArea(deviceID string) hass.Optional[string]
	Compare(a, b string) int
	Logger() Logger
}

// step transforms the records surviving the previous steps.
type step[T Record] func(records []T) []T

// Query is a chainable filter over one kind of registry record.
//
// Filters are recorded, not applied: terminals (List, First, Single, Count)
// run the chain over the original records every time, so a Query can be
// reused after a terminal. Steps run in the order they were added; Take and
// Skip count positions in the output of the steps before them.
//
// A Query is not safe for concurrent use while it is being built.
type Query[T Record] struct {
	records    []T
	scope      Scope
	steps      []step[T]
	invertNext bool
}

// New returns a Query over records. A nil scope behaves like a session with
// default options and no devices.
func New[T Record](records []T, scope Scope) *Query[T] {
	return &Query[T]{records: records, scope: scope}
}

// Not negates the next filter. Two calls in a row cancel out. Take and Skip
// are not filters and leave a pending negation in place.
func (q *Query[T]) Not() *Query[T] {
	q.invertNext = !q.invertNext
	return q
}

// ResetFilters clears the chain and any pending negation.
func (q *Query[T]) ResetFilters() *Query[T] {
	q.steps = nil
	q.invertNext = false
	return q
}

// Where adds a custom predicate.
func (q *Query[T]) Where(pred func(T) bool) *Query[T] {
	return q.addFilter(pred)
}

// WhereAreaID keeps records in an area.
//
// With expandToDevice, an entity whose own area does not match is kept when
// its device is in the area. An unset id keeps records without an area (and,
// when expanding, whose device has no known area). For the undisclosed area
// the record must be undisclosed and its device undisclosed or unknown.
func (q *Query[T]) WhereAreaID(areaID hass.Optional[string], expandToDevice bool) *Query[T] {
	return q.addFilter(func(r T) bool {
		deviceArea := hass.Unset[string]()
		if expandToDevice && r.Kind() == hass.KindEntity {
			if deviceID, ok := r.OwningDevice().Get(); ok && deviceID != "" {
				deviceArea = q.deviceArea(deviceID)
			}
		}

		area := r.OwningArea()
		switch {
		case areaID.Is(options.UndisclosedArea):
			return area.Is(options.UndisclosedArea) &&
				(deviceArea.Is(options.UndisclosedArea) || deviceArea.IsUnset())
		case areaID.IsUnset():
			return area.IsUnset() && (!expandToDevice || deviceArea.IsUnset())
		default:
			return area.Equal(areaID) || (expandToDevice && deviceArea.Equal(areaID))
		}
	})
}

// WhereFloorID keeps records on a floor. An unset id keeps records that carry
// no floor at all.
func (q *Query[T]) WhereFloorID(floorID hass.Optional[string]) *Query[T] {
	return q.addFilter(func(r T) bool {
		return strictMatch(r.OwningFloor(), floorID)
	})
}

// WhereDeviceID keeps devices with the id and entities owned by it. An unset
// id keeps records with no device reference.
func (q *Query[T]) WhereDeviceID(deviceID hass.Optional[string]) *Query[T] {
	return q.addFilter(func(r T) bool {
		return strictMatch(r.OwningDevice(), deviceID)
	})
}

// WhereEntityID keeps the entity with the id. An unset id keeps records that
// are not entities.
func (q *Query[T]) WhereEntityID(entityID hass.Optional[string]) *Query[T] {
	return q.addFilter(func(r T) bool {
		return strictMatch(r.EntityRef(), entityID)
	})
}

// WhereDomain keeps entities of a domain ("light", "sensor", ...).
func (q *Query[T]) WhereDomain(domain string) *Query[T] {
	prefix := domain + "."
	return q.addFilter(func(r T) bool {
		id, ok := r.EntityRef().Get()
		return ok && strings.HasPrefix(id, prefix)
	})
}

// WhereNameContains keeps records with a name containing sub, ignoring case.
func (q *Query[T]) WhereNameContains(sub string) *Query[T] {
	lowered := strings.ToLower(sub)
	return q.addFilter(func(r T) bool {
		return lo.SomeBy(r.Names(), func(name hass.Optional[string]) bool {
			v, ok := name.Get()
			return ok && strings.Contains(strings.ToLower(v), lowered)
		})
	})
}

// WhereDisabledBy keeps records disabled for exactly the given reason. An
// unset reason keeps records that carry no disabled_by field.
func (q *Query[T]) WhereDisabledBy(reason hass.Optional[string]) *Query[T] {
	return q.addFilter(func(r T) bool {
		return strictMatch(r.DisabledReason(), reason)
	})
}

// WhereHiddenBy keeps records hidden for exactly the given reason. An unset
// reason keeps records that carry no hidden_by field.
func (q *Query[T]) WhereHiddenBy(reason hass.Optional[string]) *Query[T] {
	return q.addFilter(func(r T) bool {
		return strictMatch(r.HiddenReason(), reason)
	})
}

// IsNotHidden drops records hidden in Home Assistant. With applyOptions it
// also drops records hidden by the strategy options: card_options for
// entities and devices, the area overlay for areas.
func (q *Query[T]) IsNotHidden(applyOptions bool) *Query[T] {
	return q.addFilter(func(r T) bool {
		if reason, ok := r.HiddenReason().Get(); ok && reason != "" {
			return false
		}
		if !applyOptions {
			return true
		}

		opts := q.options()
		if opts == nil {
			return true
		}
		if r.Kind() == hass.KindArea {
			return !opts.AreaOverlay(r.Identifier()).IsHidden()
		}
		return !opts.IsCardHidden(r.Identifier())
	})
}

// WhereEntityCategory keeps records whose entity_category equals category.
//
// The domains._.hide_<category>_entities option takes precedence: true drops
// every record of that category, false keeps records of the requested
// category even when the filter is negated.
func (q *Query[T]) WhereEntityCategory(category hass.Optional[string]) *Query[T] {
	invert := q.invertNext
	q.invertNext = false

	q.steps = append(q.steps, filterStep(func(r T) bool {
		own := r.Category()

		var hide *bool
		if name, ok := own.Get(); ok {
			if opts := q.options(); opts != nil {
				hide = opts.HideCategory(name)
			}
		}

		if hide != nil && *hide {
			return false
		}
		if hide != nil && own.Equal(category) {
			return true
		}
		if invert {
			return !own.Equal(category)
		}
		return own.Equal(category)
	}))
	return q
}

// Take keeps the first n records produced so far. Negative n keeps none.
func (q *Query[T]) Take(n int) *Query[T] {
	n = max(n, 0)
	q.steps = append(q.steps, func(records []T) []T {
		return records[:min(n, len(records))]
	})
	return q
}

// Skip drops the first n records produced so far. Negative n drops none.
func (q *Query[T]) Skip(n int) *Query[T] {
	n = max(n, 0)
	q.steps = append(q.steps, func(records []T) []T {
		return records[min(n, len(records)):]
	})
	return q
}

// List runs the chain and returns the surviving records.
func (q *Query[T]) List() []T {
	out := append([]T(nil), q.records...)
	for _, s := range q.steps {
		out = s(out)
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// First returns the first surviving record.
func (q *Query[T]) First() (T, bool) {
	return lo.First(q.List())
}

// Single returns the only surviving record. Any other count logs a warning
// and returns false.
func (q *Query[T]) Single() (T, bool) {
	out := q.List()
	if len(out) != 1 {
		q.logger().Warn(fmt.Sprintf("Expected a single element, but found %d.", len(out)))
		var zero T
		return zero, false
	}
	return out[0], true
}

// Count returns the number of surviving records.
func (q *Query[T]) Count() int {
	return len(q.List())
}

// Values runs the chain and returns one value per surviving record; records
// for which get reports false are skipped.
func Values[T Record, V any](q *Query[T], get func(T) (V, bool)) []V {
	return lo.FilterMap(q.List(), func(r T, _ int) (V, bool) {
		return get(r)
	})
}

// addFilter appends pred, negated when Not is pending.
func (q *Query[T]) addFilter(pred func(T) bool) *Query[T] {
	if q.invertNext {
		q.invertNext = false
		inner := pred
		pred = func(r T) bool { return !inner(r) }
	}
	q.steps = append(q.steps, filterStep(pred))
	return q
}

func filterStep[T Record](pred func(T) bool) step[T] {
	return func(records []T) []T {
		return lo.Filter(records, func(r T, _ int) bool { return pred(r) })
	}
}

// strictMatch compares a record field with a filter argument. An unset
// argument matches records lacking the field; anything else must be equal,
// null included.
func strictMatch(field, want hass.Optional[string]) bool {
	if want.IsUnset() {
		return field.IsUnset()
	}
	return field.Equal(want)
}

func (q *Query[T]) options() *options.Options {
	if q.scope == nil {
		return nil
	}
	return q.scope.Options()
}

func (q *Query[T]) deviceArea(deviceID string) hass.Optional[string] {
	if q.scope == nil {
		return hass.Unset[string]()
	}
	return q.scope.DeviceArea(deviceID)
}

func (q *Query[T]) logger() Logger {
	if q.scope == nil || q.scope.Logger() == nil {
		return noopLogger{}
	}
	return q.scope.Logger()
}
