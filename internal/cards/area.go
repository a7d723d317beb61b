package cards

import (
	"fmt"

	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// Area card types selectable with the "type" key of an area overlay.
const (
	AreaTypeDefault = registry.DefaultAreaType
	AreaTypeHass    = "HaAreaCard"
)

const defaultAreaIcon = "mdi:floor-plan"

// AreaFactory builds the card that links to an area's view.
type AreaFactory interface {
	Build(reg *registry.Registry, area registry.Area, overrides lovelace.Card) lovelace.Card
}

// AreaFactoryFunc adapts a function to the AreaFactory interface.
type AreaFactoryFunc func(reg *registry.Registry, area registry.Area, overrides lovelace.Card) lovelace.Card

// Build calls f.
func (f AreaFactoryFunc) Build(reg *registry.Registry, area registry.Area, overrides lovelace.Card) lovelace.Card {
	return f(reg, area, overrides)
}

var areaFactories = map[string]AreaFactory{
	AreaTypeDefault: AreaFactoryFunc(buildTemplateArea),
	AreaTypeHass:    AreaFactoryFunc(buildHassArea),
}

// AreaFor returns the area card factory of an area type. An empty type
// selects the default card.
func AreaFor(areaType string) (AreaFactory, error) {
	if areaType == "" {
		areaType = AreaTypeDefault
	}
	f, ok := areaFactories[areaType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAreaCard, areaType)
	}
	return f, nil
}

// buildTemplateArea renders the area as a mushroom template card that opens
// the area view on tap.
func buildTemplateArea(reg *registry.Registry, area registry.Area, overrides lovelace.Card) lovelace.Card {
	checkInitialized(reg)

	card := lovelace.Merge(lovelace.Card{
		"type":        lovelace.TypeTemplate,
		"primary":     area.Name,
		"icon":        area.Icon.OrElse(defaultAreaIcon),
		"icon_color":  "blue",
		"tap_action":  lovelace.Navigate(area.AreaID),
		"hold_action": lovelace.NoAction(),
	}, overrides)
	card["type"] = lovelace.TypeTemplate
	return card
}

// buildHassArea renders the area with the built-in Home Assistant area card.
func buildHassArea(reg *registry.Registry, area registry.Area, overrides lovelace.Card) lovelace.Card {
	checkInitialized(reg)

	card := lovelace.Merge(overrides)
	card["type"] = "area"
	card["area"] = area.AreaID
	card["navigation_path"] = area.AreaID
	return card
}
