package options

import (
	"slices"

	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
)

// Reserved keys inside the areas and domains maps.
const (
	// GroupKey holds settings applied to every area or domain.
	GroupKey = "_"

	// DefaultDomain holds the settings of the miscellaneous section.
	DefaultDomain = "default"

	// UndisclosedArea is the identifier of the synthetic catch-all area.
	UndisclosedArea = "undisclosed"
)

// Home view sections that can be listed in home_view.hidden.
const (
	SectionChips      = "chips"
	SectionPersons    = "persons"
	SectionGreeting   = "greeting"
	SectionAreas      = "areas"
	SectionAreasTitle = "areasTitle"
)

// Options is the effective configuration of one generation: the built-in
// defaults with the user override merged on top. It is read-only once built.
type Options struct {
	Areas            map[string]AreaOptions   `yaml:"areas"`
	CardOptions      map[string]lovelace.Card `yaml:"card_options"`
	Chips            ChipOptions              `yaml:"chips"`
	Debug            bool                     `yaml:"debug"`
	Domains          map[string]DomainOptions `yaml:"domains"`
	ExtraCards       []lovelace.Card          `yaml:"extra_cards"`
	ExtraViews       []lovelace.View          `yaml:"extra_views"`
	HomeView         HomeViewOptions          `yaml:"home_view"`
	Views            map[string]ViewOptions   `yaml:"views"`
	QuickAccessCards []lovelace.Card          `yaml:"quick_access_cards"`

	viewOrder   []string
	domainOrder []string
}

// AreaOptions overlays an area record. Any key the schema does not name is
// kept in Card and handed to the area card as an override.
type AreaOptions struct {
	AreaID     string          `yaml:"area_id,omitempty"`
	Name       string          `yaml:"name,omitempty"`
	Icon       string          `yaml:"icon,omitempty"`
	Type       string          `yaml:"type,omitempty"`
	Order      *int            `yaml:"order,omitempty"`
	Hidden     *bool           `yaml:"hidden,omitempty"`
	ExtraCards []lovelace.Card `yaml:"extra_cards,omitempty"`
	Card       lovelace.Card   `yaml:",inline"`
}

// IsHidden reports whether the overlay hides the area.
func (a AreaOptions) IsHidden() bool {
	return a.Hidden != nil && *a.Hidden
}

// HeaderOptions configures the title card (and its on/off controls) placed
// above a group of cards.
type HeaderOptions struct {
	Title        string `yaml:"title,omitempty"`
	Subtitle     string `yaml:"subtitle,omitempty"`
	ShowControls *bool  `yaml:"showControls,omitempty"`
	IconOn       string `yaml:"iconOn,omitempty"`
	IconOff      string `yaml:"iconOff,omitempty"`
	OnService    string `yaml:"onService,omitempty"`
	OffService   string `yaml:"offService,omitempty"`
}

// Overlay returns h with every field set in over replacing its counterpart.
func (h HeaderOptions) Overlay(over HeaderOptions) HeaderOptions {
	out := h
	setString(&out.Title, over.Title)
	setString(&out.Subtitle, over.Subtitle)
	setString(&out.IconOn, over.IconOn)
	setString(&out.IconOff, over.IconOff)
	setString(&out.OnService, over.OnService)
	setString(&out.OffService, over.OffService)
	if over.ShowControls != nil {
		out.ShowControls = over.ShowControls
	}
	return out
}

// Controls reports whether on/off controls are shown; unset means shown.
func (h HeaderOptions) Controls() bool {
	return h.ShowControls == nil || *h.ShowControls
}

// DomainOptions configures one entity domain.
type DomainOptions struct {
	HeaderOptions `yaml:",inline"`

	Hidden                 *bool `yaml:"hidden,omitempty"`
	Order                  *int  `yaml:"order,omitempty"`
	HideConfigEntities     *bool `yaml:"hide_config_entities,omitempty"`
	HideDiagnosticEntities *bool `yaml:"hide_diagnostic_entities,omitempty"`
}

// IsHidden reports whether the domain is excluded from generation.
func (d DomainOptions) IsHidden() bool {
	return d.Hidden != nil && *d.Hidden
}

// ViewOptions configures one generated view. Unknown keys (theme,
// max_columns, ...) are copied into the view.
type ViewOptions struct {
	Title  string         `yaml:"title,omitempty"`
	Path   string         `yaml:"path,omitempty"`
	Icon   string         `yaml:"icon,omitempty"`
	Order  *int           `yaml:"order,omitempty"`
	Hidden *bool          `yaml:"hidden,omitempty"`
	Header HeaderOptions  `yaml:"headerCardConfiguration,omitempty"`
	Extra  map[string]any `yaml:",inline"`
}

// IsHidden reports whether the view is excluded from the dashboard.
func (v ViewOptions) IsHidden() bool {
	return v.Hidden != nil && *v.Hidden
}

// ChipOptions configures the chips bar of the home view.
type ChipOptions struct {
	// WeatherEntity is an entity id, "auto" for the first weather entity,
	// or empty to leave the weather chip out.
	WeatherEntity string          `yaml:"weather_entity"`
	LightCount    bool            `yaml:"light_count"`
	FanCount      bool            `yaml:"fan_count"`
	CoverCount    bool            `yaml:"cover_count"`
	SwitchCount   bool            `yaml:"switch_count"`
	ClimateCount  bool            `yaml:"climate_count"`
	ExtraChips    []lovelace.Card `yaml:"extra_chips"`
}

// HomeViewOptions configures the home view.
type HomeViewOptions struct {
	Hidden []string `yaml:"hidden"`
}

// IsHidden reports whether a home view section is hidden.
func (h HomeViewOptions) IsHidden(section string) bool {
	return slices.Contains(h.Hidden, section)
}

// AreaOverlay returns the group-wide area overlay with the overlay of id
// applied on top.
func (o *Options) AreaOverlay(id string) AreaOptions {
	group := o.Areas[GroupKey]
	own, ok := o.Areas[id]
	if !ok {
		return group.clone()
	}
	return group.overlay(own)
}

// Domain returns the group-wide domain settings with those of name applied
// on top. Hidden and Order always come from the named domain.
func (o *Options) Domain(name string) DomainOptions {
	group := o.Domains[GroupKey]
	own := o.Domains[name]

	out := own
	out.HeaderOptions = group.HeaderOptions.Overlay(own.HeaderOptions)
	if out.HideConfigEntities == nil {
		out.HideConfigEntities = group.HideConfigEntities
	}
	if out.HideDiagnosticEntities == nil {
		out.HideDiagnosticEntities = group.HideDiagnosticEntities
	}
	return out
}

// HideCategory returns the group-wide policy for an entity category: nil when
// unset, otherwise whether entities of that category are always hidden.
func (o *Options) HideCategory(category string) *bool {
	group := o.Domains[GroupKey]
	switch category {
	case "config":
		return group.HideConfigEntities
	case "diagnostic":
		return group.HideDiagnosticEntities
	default:
		return nil
	}
}

// CardOverrides returns the user card options for an entity or device id,
// without the strategy-only "hidden" key. The result is a copy.
func (o *Options) CardOverrides(id string) lovelace.Card {
	card, ok := o.CardOptions[id]
	if !ok {
		return nil
	}
	return card.Without("hidden")
}

// IsCardHidden reports whether card_options hides an entity or device.
func (o *Options) IsCardHidden(id string) bool {
	hidden, _ := o.CardOptions[id]["hidden"].(bool)
	return hidden
}

// ViewOrder returns every configured view name, sorted by order then title.
func (o *Options) ViewOrder() []string {
	return slices.Clone(o.viewOrder)
}

// DomainOrder returns every configured domain name except the group key,
// sorted by order then title.
func (o *Options) DomainOrder() []string {
	return slices.Clone(o.domainOrder)
}

// ExposedViews returns the views that are not hidden, in order.
func (o *Options) ExposedViews() []string {
	var out []string
	for _, name := range o.viewOrder {
		if !o.Views[name].IsHidden() {
			out = append(out, name)
		}
	}
	return out
}

// ExposedDomains returns the domains that are not hidden, in order, without
// the miscellaneous default domain.
func (o *Options) ExposedDomains() []string {
	var out []string
	for _, name := range o.domainOrder {
		if name == DefaultDomain || o.Domains[name].IsHidden() {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ExposedChips returns the domains whose count chip is enabled.
func (o *Options) ExposedChips() []string {
	toggles := []struct {
		domain  string
		enabled bool
	}{
		{"light", o.Chips.LightCount},
		{"fan", o.Chips.FanCount},
		{"cover", o.Chips.CoverCount},
		{"switch", o.Chips.SwitchCount},
		{"climate", o.Chips.ClimateCount},
	}

	var out []string
	for _, t := range toggles {
		if t.enabled {
			out = append(out, t.domain)
		}
	}
	return out
}

func (a AreaOptions) clone() AreaOptions {
	out := a
	out.Card = a.Card.Clone()
	if a.ExtraCards != nil {
		out.ExtraCards = make([]lovelace.Card, len(a.ExtraCards))
		for i, c := range a.ExtraCards {
			out.ExtraCards[i] = c.Clone()
		}
	}
	return out
}

// overlay returns a with every field set in over replacing its counterpart.
// Free card keys are merged key by key.
func (a AreaOptions) overlay(over AreaOptions) AreaOptions {
	out := a.clone()
	over = over.clone()

	setString(&out.AreaID, over.AreaID)
	setString(&out.Name, over.Name)
	setString(&out.Icon, over.Icon)
	setString(&out.Type, over.Type)
	if over.Order != nil {
		out.Order = over.Order
	}
	if over.Hidden != nil {
		out.Hidden = over.Hidden
	}
	if over.ExtraCards != nil {
		out.ExtraCards = over.ExtraCards
	}
	if len(over.Card) > 0 {
		out.Card = lovelace.Merge(out.Card, over.Card)
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
