package hass

// The accessor methods below give every record kind the same read surface.
// A record kind that has no such field reports it as unset, which the query
// filters treat as "field absent".

// Kind returns KindEntity.
func (e Entity) Kind() Kind { return KindEntity }

// Identifier returns the entity_id.
func (e Entity) Identifier() string { return e.EntityID }

// Names returns the display name candidates of the entity.
func (e Entity) Names() []Optional[string] {
	return []Optional[string]{e.Name, e.OriginalName}
}

// OwningArea returns area_id.
func (e Entity) OwningArea() Optional[string] { return e.AreaID }

// OwningFloor is always unset for entities.
func (e Entity) OwningFloor() Optional[string] { return Unset[string]() }

// OwningDevice returns device_id.
func (e Entity) OwningDevice() Optional[string] { return e.DeviceID }

// EntityRef returns the entity_id.
func (e Entity) EntityRef() Optional[string] { return Some(e.EntityID) }

// DisabledReason returns disabled_by.
func (e Entity) DisabledReason() Optional[string] { return e.DisabledBy }

// HiddenReason returns hidden_by.
func (e Entity) HiddenReason() Optional[string] { return e.HiddenBy }

// Category returns entity_category.
func (e Entity) Category() Optional[string] { return e.EntityCategory }

// Kind returns KindDevice.
func (d Device) Kind() Kind { return KindDevice }

// Identifier returns the device id.
func (d Device) Identifier() string { return d.ID }

// Names returns the display name candidates of the device.
func (d Device) Names() []Optional[string] {
	return []Optional[string]{d.NameByUser, d.Name}
}

// OwningArea returns area_id.
func (d Device) OwningArea() Optional[string] { return d.AreaID }

// OwningFloor is always unset for devices.
func (d Device) OwningFloor() Optional[string] { return Unset[string]() }

// OwningDevice returns the device's own id.
func (d Device) OwningDevice() Optional[string] { return Some(d.ID) }

// EntityRef is always unset for devices.
func (d Device) EntityRef() Optional[string] { return Unset[string]() }

// DisabledReason returns disabled_by.
func (d Device) DisabledReason() Optional[string] { return d.DisabledBy }

// HiddenReason is always unset for devices.
func (d Device) HiddenReason() Optional[string] { return Unset[string]() }

// Category is always unset for devices.
func (d Device) Category() Optional[string] { return Unset[string]() }

// Kind returns KindArea.
func (a Area) Kind() Kind { return KindArea }

// Identifier returns the area_id.
func (a Area) Identifier() string { return a.AreaID }

// Names returns the area name.
func (a Area) Names() []Optional[string] {
	return []Optional[string]{Some(a.Name)}
}

// OwningArea returns the area's own id.
func (a Area) OwningArea() Optional[string] { return Some(a.AreaID) }

// OwningFloor returns floor_id.
func (a Area) OwningFloor() Optional[string] { return a.FloorID }

// OwningDevice is always unset for areas.
func (a Area) OwningDevice() Optional[string] { return Unset[string]() }

// EntityRef is always unset for areas.
func (a Area) EntityRef() Optional[string] { return Unset[string]() }

// DisabledReason is always unset for areas.
func (a Area) DisabledReason() Optional[string] { return Unset[string]() }

// HiddenReason is always unset for areas.
func (a Area) HiddenReason() Optional[string] { return Unset[string]() }

// Category is always unset for areas.
func (a Area) Category() Optional[string] { return Unset[string]() }
