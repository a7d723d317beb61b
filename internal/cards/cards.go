package cards

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// Domain names that have no Home Assistant domain of their own.
const (
	// Miscellaneous covers entities of domains without a dedicated card.
	Miscellaneous = "miscellaneous"
)

var (
	// ErrUnknownCard is returned for a domain without a card factory.
	ErrUnknownCard = errors.New("unknown card domain")

	// ErrUnknownAreaCard is returned for an unknown area card type.
	ErrUnknownAreaCard = errors.New("unknown area card type")
)

// Factory builds the card of one entity.
//
// The card is the generic base, then the domain defaults, then overrides,
// each layer replacing keys of the layers below it. The "entity" key is
// always the entity's id.
type Factory interface {
	Build(reg *registry.Registry, entity hass.Entity, overrides lovelace.Card) lovelace.Card
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(reg *registry.Registry, entity hass.Entity, overrides lovelace.Card) lovelace.Card

// Build calls f.
func (f FactoryFunc) Build(reg *registry.Registry, entity hass.Entity, overrides lovelace.Card) lovelace.Card {
	return f(reg, entity, overrides)
}

// switchCard and sensorCard are also built on by the scene and graph cards,
// so they are declared outside factories.
var (
	switchCard = defaultsCard(switchDefaults)
	sensorCard = defaultsCard(sensorDefaults)
)

// factories is the static registry of entity card factories.
var factories = map[string]Factory{
	"binary_sensor": defaultsCard(binarySensorDefaults),
	"camera":        defaultsCard(cameraDefaults),
	"climate":       defaultsCard(climateDefaults),
	"cover":         defaultsCard(coverDefaults),
	"fan":           defaultsCard(fanDefaults),
	"input_select":  defaultsCard(selectDefaults),
	"light":         defaultsCard(lightDefaults),
	"lock":          defaultsCard(lockDefaults),
	"media_player":  defaultsCard(mediaPlayerDefaults),
	Miscellaneous:   defaultsCard(miscellaneousDefaults),
	"number":        defaultsCard(numberDefaults),
	"person":        defaultsCard(personDefaults),
	"scene":         FactoryFunc(buildScene),
	"select":        defaultsCard(selectDefaults),
	"sensor":        sensorCard,
	"switch":        switchCard,
	"vacuum":        defaultsCard(vacuumDefaults),
}

// For returns the card factory of a domain.
func For(domain string) (Factory, error) {
	f, ok := factories[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, domain)
	}
	return f, nil
}

// IsSupported reports whether a domain has a dedicated card factory.
func IsSupported(domain string) bool {
	_, ok := factories[domain]
	return ok && domain != Miscellaneous
}

// Domains returns the domains with a card factory, sorted.
func Domains() []string {
	return slices.Sorted(maps.Keys(factories))
}

// base is the layer every entity card starts from.
func base() lovelace.Card {
	return lovelace.Card{
		"type": lovelace.TypeEntity,
		"icon": "mdi:help-circle",
	}
}

// defaultsCard builds a factory from a domain defaults function.
func defaultsCard(defaults func(reg *registry.Registry, entity hass.Entity) lovelace.Card) Factory {
	return FactoryFunc(func(reg *registry.Registry, entity hass.Entity, overrides lovelace.Card) lovelace.Card {
		checkInitialized(reg)
		return compose(entity.EntityID, defaults(reg, entity), overrides)
	})
}

// compose layers the base, domain defaults and overrides, pins the entity
// and drops keys a layer cleared with nil.
func compose(entityID string, defaults, overrides lovelace.Card) lovelace.Card {
	card := lovelace.Merge(base(), defaults, overrides)
	for k, v := range card {
		if v == nil {
			delete(card, k)
		}
	}
	if entityID != "" {
		card["entity"] = entityID
	}
	return card
}

// checkInitialized reports building against an uninitialised registry. The
// card is still built, from whatever the registry holds.
func checkInitialized(reg *registry.Registry) {
	if !reg.Initialized() {
		reg.Log().Fatal("Registry not initialized!")
	}
}

// Overrides returns the card options of an entity: those of its device with
// those of the entity itself on top. Nil when neither has any.
func Overrides(opts *options.Options, e hass.Entity) lovelace.Card {
	var device lovelace.Card
	if id, ok := e.DeviceID.Get(); ok {
		device = opts.CardOverrides(id)
	}
	entity := opts.CardOverrides(e.EntityID)
	if device == nil && entity == nil {
		return nil
	}
	return lovelace.Merge(device, entity)
}
