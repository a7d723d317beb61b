package views

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/nerrad567/lovelace-strategy/internal/cards"
	"github.com/nerrad567/lovelace-strategy/internal/chips"
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// areaColumns is the row width of each area card type in the areas section.
var areaColumns = map[string]int{
	"area":                1,
	lovelace.TypeTemplate: 2,
}

// homeView is the landing view: chips, persons, a greeting, the quick access
// cards, links to every area and the extra cards, in that order. Each section
// can be hidden through home_view.hidden.
type homeView struct{}

// Build implements Factory.
func (homeView) Build(reg *registry.Registry) (lovelace.View, error) {
	opts := reg.Options()

	view := applyViewOptions(lovelace.View{
		"icon":    "mdi:home-assistant",
		"subview": false,
		"title":   reg.T("generic.home"),
		"path":    Home,
	}, opts.Views[Home])

	var viewCards []lovelace.Card
	hidden := opts.HomeView.IsHidden

	if !hidden(options.SectionChips) {
		viewCards = append(viewCards, lovelace.Card{
			"type":      lovelace.TypeChips,
			"alignment": "center",
			"chips":     chips.Build(reg),
		})
	}

	if !hidden(options.SectionPersons) {
		viewCards = append(viewCards, personsSection(reg))
	}

	if !hidden(options.SectionGreeting) {
		viewCards = append(viewCards, greeting(reg))
	}

	for _, c := range opts.QuickAccessCards {
		viewCards = append(viewCards, c.Clone())
	}

	if !hidden(options.SectionAreas) {
		viewCards = append(viewCards, areasSection(reg))
	}

	for _, c := range opts.ExtraCards {
		viewCards = append(viewCards, c.Clone())
	}

	if viewCards == nil {
		viewCards = []lovelace.Card{}
	}
	view["cards"] = viewCards
	return view, nil
}

func personsSection(reg *registry.Registry) lovelace.Card {
	factory, _ := cards.For("person")

	persons := reg.EntityQuery().WhereDomain("person").List()
	personCards := lo.Map(persons, func(p hass.Entity, _ int) lovelace.Card {
		return factory.Build(reg, p, nil)
	})

	return lovelace.VerticalStack(lovelace.StackHorizontal(personCards, nil)...)
}

// greeting renders a time-of-day greeting for the logged in user.
func greeting(reg *registry.Registry) lovelace.Card {
	primary := fmt.Sprintf(`{%% set time = now().hour %%}
{%% if (time >= 18) %%}
  %s, {{user}}!
{%% elif (time >= 12) %%}
  %s, {{user}}!
{%% elif (time >= 6) %%}
  %s, {{user}}!
{%% else %%}
  %s, {{user}}!
{%% endif %%}`,
		reg.T("generic.good_evening"),
		reg.T("generic.good_afternoon"),
		reg.T("generic.good_morning"),
		reg.T("generic.hello"),
	)

	return lovelace.Card{
		"type":              lovelace.TypeTemplate,
		"primary":           primary,
		"icon":              "mdi:hand-wave",
		"icon_color":        "orange",
		"tap_action":        lovelace.NoAction(),
		"double_tap_action": lovelace.NoAction(),
		"hold_action":       lovelace.NoAction(),
	}
}

// areasSection links to every visible area. An area whose card type cannot
// be resolved falls back to the default area card.
func areasSection(reg *registry.Registry) lovelace.Card {
	opts := reg.Options()

	areaCards := make([]lovelace.Card, 0, len(reg.Areas()))
	for _, area := range reg.Areas() {
		areaType := area.Type
		if areaType == "" {
			areaType = cards.AreaTypeDefault
		}

		factory, err := cards.AreaFor(areaType)
		if err != nil {
			if opts.Debug {
				reg.Log().Error("Error importing area card, using the default card", "area", area.AreaID, "error", err)
			}
			factory, _ = cards.AreaFor(cards.AreaTypeDefault)
		}
		areaCards = append(areaCards, factory.Build(reg, area, area.CardOptions))
	}

	section := lovelace.VerticalStack(lovelace.StackHorizontal(areaCards, areaColumns)...)
	if !opts.HomeView.IsHidden(options.SectionAreasTitle) {
		section["title"] = reg.T("generic.areas")
	}
	return section
}
