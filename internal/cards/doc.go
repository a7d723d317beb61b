// Package cards builds Lovelace card configurations for entities, areas and
// section headers.
//
// Entity cards come from a static factory registry keyed by domain:
//
//	f, err := cards.For("light")
//	if err != nil {
//	    return err
//	}
//	card := f.Build(reg, entity, reg.Options().CardOverrides(entity.EntityID))
//
// Every entity card is the generic mushroom entity card overlaid with the
// domain defaults and then the caller's overrides. Building against an
// uninitialised registry logs at fatal level and still returns a card.
package cards
