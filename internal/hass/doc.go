// Package hass models the Home Assistant registries and talks to a running
// instance over its websocket API.
//
// # Records
//
// Entity, Device and Area mirror the JSON returned by the
// config/*_registry/list commands. Nullable fields use Optional, which keeps
// three states apart: a key the record kind never carries (unset), a key that
// is present but null, and a value. All three record kinds expose the same
// accessor set (OwningArea, OwningDevice, Category, ...); a kind that lacks a
// field reports it as unset.
//
// # Sources
//
// A Source yields entities, devices, areas and live states. Client is the
// websocket implementation:
//
//	client, err := hass.Dial(ctx, hass.ClientConfig{
//	    URL:   "ws://homeassistant.local:8123/api/websocket",
//	    Token: token,
//	})
//	entities, err := client.Entities(ctx)
//
// Snapshot serves a JSON file captured earlier with Capture and Save, which
// is how the generator runs offline and in tests.
package hass
