package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
)

// Build merges override onto the defaults and decodes the result into the
// typed schema.
//
// Nested mappings merge key by key. Scalars and sequences in override
// replace the default outright, including false and null. Keys outside the
// schema are rejected.
//
// Parameters:
//   - tr: translates default titles and collates titles while ordering
//   - override: the user tree, usually from ParseOverride; nil means none
//
// Returns:
//   - *Options: the effective options
//   - error: wraps ErrInvalidOverride when the override cannot be applied
func Build(tr Translator, override map[string]any) (opts *Options, err error) {
	defer func() {
		// mergo panics on some mismatched shapes (e.g. a mapping replacing a list).
		if r := recover(); r != nil {
			opts = nil
			err = fmt.Errorf("%w: %v", ErrInvalidOverride, r)
		}
	}()

	tree, err := toTree(Defaults(tr))
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}

	if err := mergo.Merge(&tree, normalizeTree(override), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}

	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	out := &Options{}
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}

	out.normalize(tr)
	return out, nil
}

// ParseOverride parses a YAML (or JSON) document into an override tree. An
// empty document yields an empty tree.
func ParseOverride(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverride, err)
	}
	if tree == nil {
		tree = map[string]any{}
	}
	return normalizeTree(tree), nil
}

// LoadOverride reads an override file. An empty path yields an empty tree.
func LoadOverride(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's config
	if err != nil {
		return nil, fmt.Errorf("reading options file: %w", err)
	}
	return ParseOverride(data)
}

// toTree converts typed options into the generic tree the merge works on.
func toTree(o *Options) (map[string]any, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, err
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// normalizeTree rewrites every nested map to map[string]any so that mergo
// sees matching types on both sides.
func normalizeTree(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeTree(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalizeValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return v
	}
}

// normalize computes the view and domain orders and sorts extra views.
func (o *Options) normalize(tr Translator) {
	o.viewOrder = sortedKeys(o.Views, func(v ViewOptions) (*int, string) {
		return v.Order, v.Title
	}, tr)

	domains := sortedKeys(o.Domains, func(d DomainOptions) (*int, string) {
		return d.Order, d.Title
	}, tr)
	o.domainOrder = slices.DeleteFunc(domains, func(name string) bool {
		return name == GroupKey
	})

	for _, v := range o.ExtraViews {
		if _, ok := v["subview"]; !ok {
			v["subview"] = false
		}
	}
	slices.SortStableFunc(o.ExtraViews, func(a, b lovelace.View) int {
		if c := compareOrder(orderValue(a["order"]), orderValue(b["order"])); c != 0 {
			return c
		}
		at, _ := a["title"].(string)
		bt, _ := b["title"].(string)
		return tr.Compare(at, bt)
	})
}

// sortedKeys orders map keys by (order, title, key). A missing order sorts
// after every explicit one.
func sortedKeys[V any](m map[string]V, fields func(V) (*int, string), tr Translator) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ao, at := fields(m[a])
		bo, bt := fields(m[b])
		if c := compareOrder(toFloat(ao), toFloat(bo)); c != 0 {
			return c
		}
		if c := tr.Compare(at, bt); c != 0 {
			return c
		}
		return tr.Compare(a, b)
	})
	return keys
}

func compareOrder(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(p *int) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return float64(*p)
}

// orderValue reads an "order" value decoded from YAML or JSON.
func orderValue(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return math.Inf(1)
	}
}
