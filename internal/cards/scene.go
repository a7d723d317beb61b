package cards

import (
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// statefulSceneSwitch returns the switch mirroring a scene's active state,
// created by the stateful_scenes integration as switch.<scene>_stateful_scene.
func statefulSceneSwitch(reg *registry.Registry, scene hass.Entity) (hass.Entity, bool) {
	return reg.Entity("switch." + scene.ObjectID() + "_stateful_scene")
}

// buildScene activates the scene on tap. When a stateful scene switch exists
// the switch card is returned instead, so the card can show and toggle the
// scene state; overrides are not applied to it.
func buildScene(reg *registry.Registry, entity hass.Entity, overrides lovelace.Card) lovelace.Card {
	checkInitialized(reg)

	if stateful, ok := statefulSceneSwitch(reg, entity); ok {
		return switchCard.Build(reg, stateful, nil)
	}

	var icon any
	if v, ok := reg.States().Attribute(entity.EntityID, "icon"); ok {
		icon = v
	}

	defaults := lovelace.Card{
		"type":       lovelace.TypeEntity,
		"icon":       icon,
		"tap_action": lovelace.PerformAction("scene.turn_on", lovelace.EntityTarget(entity.EntityID)),
	}
	return compose(entity.EntityID, defaults, overrides)
}
