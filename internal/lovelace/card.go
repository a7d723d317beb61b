package lovelace

// Card is one renderable dashboard fragment: a "type" discriminator plus
// type-specific fields. Chips share the same shape.
//
// Cards returned by builders are owned by the caller; builders never keep a
// reference to a card they returned.
type Card map[string]any

// View is one dashboard view (title, path, icon, cards, ...).
type View map[string]any

// Dashboard is the configuration handed to the Lovelace frontend.
type Dashboard struct {
	Views []View `json:"views" yaml:"views"`
}

// Card types used across builders.
const (
	TypeEntity          = "custom:mushroom-entity-card"
	TypeTemplate        = "custom:mushroom-template-card"
	TypeTitle           = "custom:mushroom-title-card"
	TypeChips           = "custom:mushroom-chips-card"
	TypeHorizontalStack = "horizontal-stack"
	TypeVerticalStack   = "vertical-stack"
)

// Type returns the discriminator, or "" when missing.
func (c Card) Type() string {
	t, _ := c["type"].(string)
	return t
}

// String returns a string field, or "" when missing or not a string.
func (c Card) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Cards returns the nested cards of a stack, or nil.
func (c Card) Cards() []Card {
	cards, _ := c["cards"].([]Card)
	return cards
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	if c == nil {
		return nil
	}
	return Card(deepCopyMap(c))
}

// Without returns a copy of the card with the given top-level keys removed.
func (c Card) Without(keys ...string) Card {
	cpy := c.Clone()
	if cpy == nil {
		return nil
	}
	for _, k := range keys {
		delete(cpy, k)
	}
	return cpy
}

// Merge layers cards left to right; a key in a later layer replaces the key
// in earlier layers wholesale (nested values are not merged). Layers are
// copied, never aliased.
func Merge(layers ...Card) Card {
	out := Card{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = deepCopyValue(v)
		}
	}
	return out
}

// Clone returns a deep copy of the view.
func (v View) Clone() View {
	if v == nil {
		return nil
	}
	return View(deepCopyMap(v))
}

// String returns a string field of the view, or "".
func (v View) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Cards returns the cards of the view, or nil.
func (v View) Cards() []Card {
	cards, _ := v["cards"].([]Card)
	return cards
}

// deepCopyMap copies a map and everything nested in it.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case Card:
		return val.Clone()
	case View:
		return val.Clone()
	case map[string]any:
		return deepCopyMap(val)
	case []Card:
		cpy := make([]Card, len(val))
		for i, elem := range val {
			cpy[i] = elem.Clone()
		}
		return cpy
	case []map[string]any:
		cpy := make([]map[string]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyMap(elem)
		}
		return cpy
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	case []string:
		return append([]string(nil), val...)
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy by value
		return v
	}
}
