package chips

import (
	"errors"
	"fmt"

	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// Chip card types.
const (
	TypeTemplate = "template"
	TypeWeather  = "weather"
)

// WeatherAuto selects the first weather entity.
const WeatherAuto = "auto"

// ErrUnknownChip is returned for a chip name without a factory.
var ErrUnknownChip = errors.New("unknown chip")

// Factory builds one chip of the home view chips card.
type Factory interface {
	Build(reg *registry.Registry) lovelace.Card
}

// countChip counts the entities of a domain in a given state. Tapping the
// chip calls tapService on all of them; holding it opens the domain view.
type countChip struct {
	domain     string
	icon       string
	color      string
	operator   string
	value      string
	tapService string
	holdPath   string
}

// Build implements Factory.
func (c countChip) Build(reg *registry.Registry) lovelace.Card {
	if !reg.Initialized() {
		reg.Log().Fatal("Registry not initialized!")
	}

	tap := lovelace.Navigate(c.holdPath)
	if c.tapService != "" {
		tap = lovelace.PerformAction(c.tapService, lovelace.EntityTarget(reg.DomainTargets(c.domain)...))
	}

	return lovelace.Card{
		"type":        TypeTemplate,
		"icon":        c.icon,
		"icon_color":  c.color,
		"content":     reg.CountTemplate(c.domain, c.operator, c.value),
		"tap_action":  tap,
		"hold_action": lovelace.Navigate(c.holdPath),
	}
}

var factories = map[string]Factory{
	"light": countChip{
		domain: "light", icon: "mdi:lightbulb-group", color: "amber",
		operator: "eq", value: "on", tapService: "light.turn_off", holdPath: "lights",
	},
	"fan": countChip{
		domain: "fan", icon: "mdi:fan", color: "green",
		operator: "eq", value: "on", tapService: "fan.turn_off", holdPath: "fans",
	},
	"cover": countChip{
		domain: "cover", icon: "mdi:window-open", color: "cyan",
		operator: "search", value: "(open|opening)", tapService: "cover.close_cover", holdPath: "covers",
	},
	"switch": countChip{
		domain: "switch", icon: "mdi:dip-switch", color: "blue",
		operator: "eq", value: "on", tapService: "switch.turn_off", holdPath: "switches",
	},
	"climate": countChip{
		domain: "climate", icon: "mdi:thermostat", color: "orange",
		operator: "ne", value: "off", holdPath: "climates",
	},
}

// For returns the count chip of a domain.
func For(name string) (Factory, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChip, name)
	}
	return f, nil
}

// Weather builds the weather chip of entityID. WeatherAuto picks the first
// weather entity; ok is false when there is none.
func Weather(reg *registry.Registry, entityID string) (chip lovelace.Card, ok bool) {
	if entityID == WeatherAuto {
		first, found := reg.EntityQuery().WhereDomain("weather").First()
		if !found {
			reg.Log().Info("Weather chip has no entities available")
			return nil, false
		}
		entityID = first.EntityID
	}
	if entityID == "" {
		return nil, false
	}

	return lovelace.Card{
		"type":             TypeWeather,
		"entity":           entityID,
		"show_temperature": true,
		"show_conditions":  true,
	}, true
}

// Build returns every enabled chip: the weather chip, the count chips of the
// enabled domains that have entities, then the extra chips.
func Build(reg *registry.Registry) []lovelace.Card {
	opts := reg.Options()
	out := make([]lovelace.Card, 0, len(opts.ExposedChips())+len(opts.Chips.ExtraChips)+1)

	if chip, ok := Weather(reg, opts.Chips.WeatherEntity); ok {
		out = append(out, chip)
	}

	for _, name := range opts.ExposedChips() {
		if reg.EntityQuery().WhereDomain(name).Count() == 0 {
			reg.Log().Info("Chip has no entities available", "chip", name)
			continue
		}
		f, err := For(name)
		if err != nil {
			reg.Log().Error("building chip", "chip", name, "error", err)
			continue
		}
		out = append(out, f.Build(reg))
	}

	for _, extra := range opts.Chips.ExtraChips {
		out = append(out, extra.Clone())
	}
	return out
}
