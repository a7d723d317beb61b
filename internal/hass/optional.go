package hass

import (
	"bytes"
	"encoding/json"
)

type presence uint8

const (
	unset presence = iota
	null
	present
)

// Optional is a registry field that can be missing from a record, explicitly
// null, or carry a value. Home Assistant distinguishes the first two (a key
// that does not exist on a record kind vs. an entity with no area), and the
// query filters depend on that distinction.
//
// The zero value is unset.
type Optional[T comparable] struct {
	state presence
	value T
}

// Some returns an Optional holding v.
func Some[T comparable](v T) Optional[T] {
	return Optional[T]{state: present, value: v}
}

// Null returns an explicitly null Optional.
func Null[T comparable]() Optional[T] {
	return Optional[T]{state: null}
}

// Unset returns an Optional for a field the record does not carry.
func Unset[T comparable]() Optional[T] {
	return Optional[T]{}
}

// IsUnset reports whether the field is absent.
func (o Optional[T]) IsUnset() bool { return o.state == unset }

// IsNull reports whether the field is present but null.
func (o Optional[T]) IsNull() bool { return o.state == null }

// HasValue reports whether the field carries a value.
func (o Optional[T]) HasValue() bool { return o.state == present }

// Get returns the value and whether there is one.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state == present
}

// OrElse returns the value, or fallback when unset or null.
func (o Optional[T]) OrElse(fallback T) T {
	if o.state == present {
		return o.value
	}
	return fallback
}

// Equal is strict equality: unset only equals unset, null only equals null.
func (o Optional[T]) Equal(other Optional[T]) bool {
	if o.state != other.state {
		return false
	}
	return o.state != present || o.value == other.value
}

// Is reports whether the field holds exactly v.
func (o Optional[T]) Is(v T) bool {
	return o.state == present && o.value == v
}

// IsZero makes unset fields disappear under the omitzero tag.
func (o Optional[T]) IsZero() bool { return o.state == unset }

// MarshalJSON writes null for both null and unset fields; unset fields are
// normally omitted by the omitzero tag before reaching here.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.state != present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON is only invoked for keys present in the document, so a
// missing key stays unset and a literal null becomes null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.state, o.value = null, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.state, o.value = present, v
	return nil
}
