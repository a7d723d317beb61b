package cards

import (
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// headerDefaults fills the icons and services a header leaves empty. The
// "none" services do nothing in Home Assistant.
var headerDefaults = options.HeaderOptions{
	IconOn:     "mdi:power-on",
	IconOff:    "mdi:power-off",
	OnService:  "none",
	OffService: "none",
}

// Header builds a section header: an optional title card and, unless
// controls are switched off, a pair of buttons calling the off and on
// services for target.
//
// Parameters:
//   - reg: the generation session
//   - target: the service target of the on/off buttons
//   - opts: title, subtitle, icons and services of the header
//
// Returns:
//   - lovelace.Card: a horizontal stack; it has no cards when there is
//     neither a title nor controls
func Header(reg *registry.Registry, target lovelace.Target, opts options.HeaderOptions) lovelace.Card {
	checkInitialized(reg)

	cfg := headerDefaults.Overlay(opts)
	cards := make([]lovelace.Card, 0, 2)

	if cfg.Title != "" || cfg.Subtitle != "" {
		cards = append(cards, lovelace.Card{
			"type":     lovelace.TypeTitle,
			"title":    cfg.Title,
			"subtitle": cfg.Subtitle,
		})
	}

	if cfg.Controls() {
		cards = append(cards, lovelace.Card{
			"type": lovelace.TypeHorizontalStack,
			"cards": []lovelace.Card{
				controlButton(cfg.IconOff, "red", cfg.OffService, target),
				controlButton(cfg.IconOn, "amber", cfg.OnService, target),
			},
		})
	}

	return lovelace.Card{
		"type":  lovelace.TypeHorizontalStack,
		"cards": cards,
	}
}

func controlButton(icon, color, service string, target lovelace.Target) lovelace.Card {
	return lovelace.Card{
		"type":       lovelace.TypeTemplate,
		"icon":       icon,
		"layout":     "vertical",
		"icon_color": color,
		"tap_action": lovelace.PerformAction(service, target),
	}
}

// AreaTarget addresses the entities of an area section. The undisclosed area
// does not exist in Home Assistant, so its entities are targeted directly.
func AreaTarget(area registry.Area, entityIDs []string) lovelace.Target {
	if area.AreaID == options.UndisclosedArea {
		return lovelace.EntityTarget(entityIDs...)
	}
	return lovelace.AreaTarget(area.AreaID)
}
