package hass

import (
	"strings"
	"time"
)

// Kind identifies the registry a record belongs to.
type Kind int

const (
	KindEntity Kind = iota
	KindDevice
	KindArea
)

// String returns the registry name.
func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindDevice:
		return "device"
	case KindArea:
		return "area"
	default:
		return "unknown"
	}
}

// Entity category values.
const (
	CategoryConfig     = "config"
	CategoryDiagnostic = "diagnostic"
)

// Entity is an entry of the entity registry (config/entity_registry/list).
type Entity struct {
	ID             string           `json:"id"`
	EntityID       string           `json:"entity_id"`
	Name           Optional[string] `json:"name,omitzero"`
	OriginalName   Optional[string] `json:"original_name,omitzero"`
	Icon           Optional[string] `json:"icon,omitzero"`
	Platform       string           `json:"platform,omitempty"`
	DeviceID       Optional[string] `json:"device_id,omitzero"`
	AreaID         Optional[string] `json:"area_id,omitzero"`
	Labels         []string         `json:"labels,omitempty"`
	DisabledBy     Optional[string] `json:"disabled_by,omitzero"`
	HiddenBy       Optional[string] `json:"hidden_by,omitzero"`
	EntityCategory Optional[string] `json:"entity_category,omitzero"`
	HasEntityName  bool             `json:"has_entity_name,omitempty"`
	UniqueID       string           `json:"unique_id,omitempty"`
	TranslationKey Optional[string] `json:"translation_key,omitzero"`
}

// Domain returns the entity_id prefix, e.g. "light" for "light.kitchen".
func (e Entity) Domain() string {
	return DomainOf(e.EntityID)
}

// ObjectID returns the entity_id part after the domain.
func (e Entity) ObjectID() string {
	_, object, _ := strings.Cut(e.EntityID, ".")
	return object
}

// Device is an entry of the device registry (config/device_registry/list).
type Device struct {
	ID           string           `json:"id"`
	Name         Optional[string] `json:"name,omitzero"`
	NameByUser   Optional[string] `json:"name_by_user,omitzero"`
	AreaID       Optional[string] `json:"area_id,omitzero"`
	DisabledBy   Optional[string] `json:"disabled_by,omitzero"`
	Manufacturer Optional[string] `json:"manufacturer,omitzero"`
	Model        Optional[string] `json:"model,omitzero"`
	Labels       []string         `json:"labels,omitempty"`
}

// Area is an entry of the area registry (config/area_registry/list).
type Area struct {
	AreaID              string           `json:"area_id"`
	FloorID             Optional[string] `json:"floor_id,omitzero"`
	Name                string           `json:"name"`
	Icon                Optional[string] `json:"icon,omitzero"`
	Picture             Optional[string] `json:"picture,omitzero"`
	Aliases             []string         `json:"aliases,omitempty"`
	Labels              []string         `json:"labels,omitempty"`
	HumidityEntityID    Optional[string] `json:"humidity_entity_id,omitzero"`
	TemperatureEntityID Optional[string] `json:"temperature_entity_id,omitzero"`
}

// State is the live state of one entity (get_states).
type State struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

// States maps entity_id to its live state.
type States map[string]State

// Attribute returns one state attribute of an entity.
func (s States) Attribute(entityID, key string) (any, bool) {
	st, ok := s[entityID]
	if !ok {
		return nil, false
	}
	v, ok := st.Attributes[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// StringAttribute returns a string attribute, or "" when missing.
func (s States) StringAttribute(entityID, key string) string {
	v, ok := s.Attribute(entityID, key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// DomainOf returns the domain part of an entity_id.
func DomainOf(entityID string) string {
	domain, _, _ := strings.Cut(entityID, ".")
	return domain
}
