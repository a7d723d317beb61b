package localize

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when a requested language has no table.
const DefaultLanguage = "en"

//go:embed translations/*.yaml
var translationsFS embed.FS

var (
	loadOnce sync.Once
	tables   map[string]map[string]string
	loadErr  error
)

// Localizer translates dotted keys (e.g. "light.all_lights") and compares
// strings using the collation rules of its language.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Localizer struct {
	lang     string
	table    map[string]string
	fallback map[string]string

	collateMu sync.Mutex
	collator  *collate.Collator
}

// New returns a Localizer for lang ("en", "nl", "de-CH", ...). Unknown
// languages fall back to English for translations; collation still follows
// lang when the tag is valid.
func New(lang string) (*Localizer, error) {
	loadOnce.Do(func() {
		tables, loadErr = loadTables()
	})
	if loadErr != nil {
		return nil, loadErr
	}

	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	base, _ := tag.Base()
	code := base.String()
	table, ok := tables[code]
	if !ok {
		code = DefaultLanguage
		table = tables[DefaultLanguage]
	}

	return &Localizer{
		lang:     code,
		table:    table,
		fallback: tables[DefaultLanguage],
		collator: collate.New(tag),
	}, nil
}

// MustNew is New for the built-in languages; it panics only if the embedded
// tables are corrupt.
func MustNew(lang string) *Localizer {
	l, err := New(lang)
	if err != nil {
		panic(err)
	}
	return l
}

// Language returns the language of the translation table in use.
func (l *Localizer) Language() string {
	return l.lang
}

// T translates key. Missing keys fall back to English, then to the key itself.
func (l *Localizer) T(key string) string {
	if v, ok := l.table[key]; ok {
		return v
	}
	if v, ok := l.fallback[key]; ok {
		return v
	}
	return key
}

// Compare orders two strings the way a speaker of the language expects.
// It returns -1, 0 or +1.
func (l *Localizer) Compare(a, b string) int {
	l.collateMu.Lock()
	defer l.collateMu.Unlock()
	return l.collator.CompareString(a, b)
}

// loadTables reads and flattens every embedded translation file.
func loadTables() (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(translationsFS, "translations")
	if err != nil {
		return nil, fmt.Errorf("reading translations: %w", err)
	}

	out := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		data, err := translationsFS.ReadFile(path.Join("translations", name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}

		flat := make(map[string]string)
		flatten("", tree, flat)
		out[strings.TrimSuffix(name, path.Ext(name))] = flat
	}
	return out, nil
}

func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
