package query

import (
	"cmp"
	"slices"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
)

// Direction is a sort direction.
type Direction int

const (
	// Ascending sorts missing values last.
	Ascending Direction = iota
	// Descending sorts missing values first.
	Descending
)

// SortKey extracts one sort value from a record. It reports false when the
// record has no usable value, in which case the next key is tried.
//
// Values are compared as numbers when both are numeric and as collated
// strings when both are strings; numbers sort before strings.
type SortKey[T Record] func(T) (any, bool)

// OrderBy returns a new Query over the records sorted by the first key each
// record has a value for. The sort is stable. The chain built so far is
// carried over; the receiver is left unchanged.
func (q *Query[T]) OrderBy(dir Direction, keys ...SortKey[T]) *Query[T] {
	sorted := append([]T(nil), q.records...)

	sign := 1
	if dir == Descending {
		sign = -1
	}

	slices.SortStableFunc(sorted, func(a, b T) int {
		va, oka := firstValue(a, keys)
		vb, okb := firstValue(b, keys)
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return sign
		case !okb:
			return -sign
		}
		return sign * q.compareValues(va, vb)
	})

	return &Query[T]{
		records: sorted,
		scope:   q.scope,
		steps:   slices.Clone(q.steps),
	}
}

// Field sorts by an optional registry field.
func Field[T Record](get func(T) hass.Optional[string]) SortKey[T] {
	return func(r T) (any, bool) {
		v, ok := get(r).Get()
		if !ok {
			return nil, false
		}
		return v, true
	}
}

// String sorts by a string; the empty string counts as missing.
func String[T Record](get func(T) string) SortKey[T] {
	return func(r T) (any, bool) {
		v := get(r)
		return v, v != ""
	}
}

// Int sorts by an optional integer.
func Int[T Record](get func(T) *int) SortKey[T] {
	return func(r T) (any, bool) {
		v := get(r)
		if v == nil {
			return nil, false
		}
		return *v, true
	}
}

// Name sorts by the first display name a record has.
func Name[T Record]() SortKey[T] {
	return func(r T) (any, bool) {
		for _, n := range r.Names() {
			if v, ok := n.Get(); ok {
				return v, true
			}
		}
		return nil, false
	}
}

func firstValue[T Record](r T, keys []SortKey[T]) (any, bool) {
	for _, key := range keys {
		if v, ok := key(r); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (q *Query[T]) compareValues(a, b any) int {
	fa, aNum := toNumber(a)
	fb, bNum := toNumber(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(fa, fb)
	case aNum:
		return -1
	case bNum:
		return 1
	}

	sa, _ := a.(string)
	sb, _ := b.(string)
	if q.scope != nil {
		return q.scope.Compare(sa, sb)
	}
	return cmp.Compare(sa, sb)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
