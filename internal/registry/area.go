package registry

import (
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
)

// DefaultAreaType selects the mushroom template area card.
const DefaultAreaType = "default"

// Area is an area registry record with the strategy overlay applied. The
// record accessors are those of hass.Area, so areas can be queried like any
// other record.
type Area struct {
	hass.Area

	Order      *int
	Hidden     bool
	Type       string
	ExtraCards []lovelace.Card

	// CardOptions holds overlay keys the schema does not name; they are
	// passed on to the area card.
	CardOptions lovelace.Card
}

// applyOverlay returns the record with the overlay fields merged in. Names and
// icons in the overlay replace those from Home Assistant.
func applyOverlay(a hass.Area, overlay options.AreaOptions) Area {
	if overlay.Name != "" {
		a.Name = overlay.Name
	}
	if overlay.Icon != "" {
		a.Icon = hass.Some(overlay.Icon)
	}

	return Area{
		Area:        a,
		Order:       overlay.Order,
		Hidden:      overlay.IsHidden(),
		Type:        overlay.Type,
		ExtraCards:  overlay.ExtraCards,
		CardOptions: overlay.Card,
	}
}

// undisclosedArea builds the catch-all area for records without an area.
func undisclosedArea(defaults options.AreaOptions) hass.Area {
	return hass.Area{
		AreaID:  options.UndisclosedArea,
		Name:    defaults.Name,
		Icon:    hass.Some(defaults.Icon),
		FloorID: hass.Null[string](),
		Picture: hass.Null[string](),
	}
}
