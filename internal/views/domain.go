package views

import (
	"fmt"
	"strings"

	"github.com/nerrad567/lovelace-strategy/internal/cards"
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

const statefulSceneSuffix = "_stateful_scene"

// domainView lists every entity of one domain, grouped by area.
type domainView struct {
	domain   string
	titleKey string
	path     string
	icon     string

	// header configures the on/off controls of the view and of every area
	// section.
	header options.HeaderOptions

	// summary returns the title and subtitle of the view header. Nil means
	// the view header has neither.
	summary func(reg *registry.Registry, domain string) options.HeaderOptions
}

// countSummary titles the view header with titleKey and counts the entities
// whose state compares to value in the subtitle, e.g. "{{count}} Lights On".
func countSummary(operator, value, titleKey, nounKey, stateKey string) func(*registry.Registry, string) options.HeaderOptions {
	return func(reg *registry.Registry, domain string) options.HeaderOptions {
		return options.HeaderOptions{
			Title: reg.T(titleKey),
			Subtitle: fmt.Sprintf("%s %s %s",
				reg.CountTemplate(domain, operator, value),
				reg.T(nounKey),
				reg.T(stateKey),
			),
		}
	}
}

// Build implements Factory.
//
// The view is the generic base overlaid with the view defaults and then the
// user's view options. Its cards are a header for the whole domain followed
// by one vertical stack per area holding an area header and the entity
// cards of that area.
func (v domainView) Build(reg *registry.Registry) (lovelace.View, error) {
	factory, err := cards.For(v.domain)
	if err != nil {
		return nil, fmt.Errorf("building %s view: %w", v.domain, err)
	}

	opts := reg.Options()
	custom := opts.Views[v.domain]

	view := applyViewOptions(lovelace.View{
		"icon":    v.icon,
		"subview": false,
		"title":   reg.T(v.titleKey),
		"path":    v.path,
	}, custom)

	header := v.header.Overlay(custom.Header)

	var (
		sections []lovelace.Card
		shown    []string
	)
	for _, area := range reg.Areas() {
		entities := reg.EntityQuery().
			WhereAreaID(hass.Some(area.AreaID), true).
			WhereDomain(v.domain).
			Where(func(e hass.Entity) bool {
				return v.domain != "switch" || !strings.HasSuffix(e.EntityID, statefulSceneSuffix)
			}).
			List()
		if len(entities) == 0 {
			continue
		}

		areaCards := make([]lovelace.Card, 0, len(entities)+1)
		ids := make([]string, 0, len(entities))
		for _, e := range entities {
			ids = append(ids, e.EntityID)
			areaCards = append(areaCards, factory.Build(reg, e, cards.Overrides(opts, e)))
		}
		shown = append(shown, ids...)

		sectionHeader := header
		sectionHeader.Title = area.Name
		sectionHeader.Subtitle = ""
		areaCards = append([]lovelace.Card{cards.Header(reg, cards.AreaTarget(area, ids), sectionHeader)}, areaCards...)

		sections = append(sections, lovelace.VerticalStack(areaCards...))
	}

	viewCards := make([]lovelace.Card, 0, len(sections)+1)
	if len(sections) > 0 {
		viewHeader := header
		if v.summary != nil {
			viewHeader = viewHeader.Overlay(v.summary(reg, v.domain))
		}
		if h := cards.Header(reg, lovelace.EntityTarget(shown...), viewHeader); len(h.Cards()) > 0 {
			viewCards = append(viewCards, h)
		}
		viewCards = append(viewCards, sections...)
	}

	view["cards"] = viewCards
	return view, nil
}
