// Package registry aggregates the Home Assistant registries into one
// generation session.
//
// Initialize fetches the entity, device and area registries plus the live
// states, drops what the dashboard must not show (hidden, disabled, config
// and diagnostic records), applies the strategy area overlays and sorts
// everything for display. The resulting Registry is read-only and is the
// query scope every card, chip and view builder works against.
package registry
