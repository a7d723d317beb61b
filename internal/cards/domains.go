package cards

import (
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// Domain defaults. A nil value removes the key set by the base layer, so the
// mushroom card falls back to the entity's own icon.

func binarySensorDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type": lovelace.TypeEntity,
		"icon": "mdi:power-cycle",
	}
}

func cameraDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":   "custom:webrtc-camera",
		"icon":   nil,
		"ui":     true,
		"poster": "",
		"muted":  true,
	}
}

func climateDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":                     "custom:mushroom-climate-card",
		"icon":                     nil,
		"hvac_modes":               []string{"off", "cool", "heat", "fan_only"},
		"show_temperature_control": true,
	}
}

func coverDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":                       "custom:mushroom-cover-card",
		"icon":                       nil,
		"show_buttons_control":       true,
		"show_position_control":      true,
		"show_tilt_position_control": true,
	}
}

func fanDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":                    "custom:mushroom-fan-card",
		"icon":                    nil,
		"show_percentage_control": true,
		"show_oscillate_control":  true,
		"icon_animation":          true,
	}
}

// lightDefaults double-tap sets the light to white.
func lightDefaults(_ *registry.Registry, entity hass.Entity) lovelace.Card {
	whiten := lovelace.PerformAction("light.turn_on", lovelace.EntityTarget(entity.EntityID))
	whiten["data"] = map[string]any{"rgb_color": []any{255, 255, 255}}

	return lovelace.Card{
		"type":                    "custom:mushroom-light-card",
		"icon":                    nil,
		"show_brightness_control": true,
		"show_color_control":      true,
		"show_color_temp_control": true,
		"use_light_color":         true,
		"double_tap_action":       whiten,
	}
}

func lockDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type": "custom:mushroom-lock-card",
		"icon": nil,
	}
}

func mediaPlayerDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":              "custom:mushroom-media-player-card",
		"icon":              nil,
		"use_media_info":    true,
		"media_controls":    []string{"on_off", "play_pause_stop"},
		"show_volume_level": true,
		"volume_controls":   []string{"volume_mute", "volume_set", "volume_buttons"},
	}
}

func miscellaneousDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":       lovelace.TypeEntity,
		"icon_color": "blue-grey",
	}
}

func numberDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type": "custom:mushroom-number-card",
		"icon": nil,
	}
}

func personDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":           "custom:mushroom-person-card",
		"icon":           nil,
		"layout":         "vertical",
		"primary_info":   "none",
		"secondary_info": "none",
		"icon_type":      "entity-picture",
	}
}

// selectDefaults serves both select and input_select entities.
func selectDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type": "custom:mushroom-select-card",
		"icon": nil,
	}
}

func sensorDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":       lovelace.TypeEntity,
		"icon":       "mdi:information-outline",
		"animate":    true,
		"line_color": "green",
	}
}

func switchDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":       lovelace.TypeEntity,
		"icon":       nil,
		"tap_action": lovelace.Toggle(),
	}
}

func vacuumDefaults(*registry.Registry, hass.Entity) lovelace.Card {
	return lovelace.Card{
		"type":           "custom:mushroom-vacuum-card",
		"icon":           nil,
		"icon_animation": true,
		"commands":       []string{"start_pause", "stop", "return_home"},
	}
}

// GraphType is the card used for sensors that report a unit.
const GraphType = "custom:mini-graph-card"

// Graph builds a mini graph card for a numeric sensor. overrides are layered
// below the graph type and entity list, which are always set.
func Graph(reg *registry.Registry, entity hass.Entity, overrides lovelace.Card) lovelace.Card {
	graph := lovelace.Merge(overrides, lovelace.Card{
		"type":     GraphType,
		"entities": []string{entity.EntityID},
	})
	return sensorCard.Build(reg, entity, graph)
}
