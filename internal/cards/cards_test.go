package cards

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/localize"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

type fatalRecorder struct {
	mu     sync.Mutex
	fatals []string
}

func (l *fatalRecorder) Debug(string, ...any) {}
func (l *fatalRecorder) Info(string, ...any)  {}
func (l *fatalRecorder) Warn(string, ...any)  {}
func (l *fatalRecorder) Error(string, ...any) {}

func (l *fatalRecorder) Fatal(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fatals = append(l.fatals, msg)
}

func testEntity(id string) hass.Entity {
	return hass.Entity{
		EntityID:       id,
		Name:           hass.Null[string](),
		OriginalName:   hass.Null[string](),
		DeviceID:       hass.Null[string](),
		AreaID:         hass.Null[string](),
		DisabledBy:     hass.Null[string](),
		HiddenBy:       hass.Null[string](),
		EntityCategory: hass.Null[string](),
	}
}

func newRegistry(t *testing.T, snap *hass.Snapshot) *registry.Registry {
	t.Helper()
	loc := localize.MustNew("en")
	opts, err := options.Build(loc, nil)
	if err != nil {
		t.Fatalf("options.Build() error = %v", err)
	}
	return registry.Initialize(context.Background(), snap, opts, loc, nil)
}

func build(t *testing.T, reg *registry.Registry, entity hass.Entity, overrides lovelace.Card) lovelace.Card {
	t.Helper()
	f, err := For(entity.Domain())
	if err != nil {
		t.Fatalf("For(%q) error = %v", entity.Domain(), err)
	}
	return f.Build(reg, entity, overrides)
}

func TestFor_UnknownDomain(t *testing.T) {
	_, err := For("teleporter")
	if !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("For() error = %v, want ErrUnknownCard", err)
	}
}

func TestIsSupported(t *testing.T) {
	tests := map[string]bool{
		"light":        true,
		"input_select": true,
		"scene":        true,
		Miscellaneous:  false,
		"update":       false,
	}
	for domain, want := range tests {
		if got := IsSupported(domain); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", domain, got, want)
		}
	}
}

func TestBuild_DomainDefaults(t *testing.T) {
	reg := newRegistry(t, &hass.Snapshot{})

	tests := []struct {
		entityID string
		wantType string
		wantKeys map[string]any
		noIcon   bool
	}{
		{"light.kitchen", "custom:mushroom-light-card", map[string]any{"use_light_color": true}, true},
		{"fan.ceiling", "custom:mushroom-fan-card", map[string]any{"show_oscillate_control": true}, true},
		{"cover.garage", "custom:mushroom-cover-card", map[string]any{"show_position_control": true}, true},
		{"lock.front", "custom:mushroom-lock-card", nil, true},
		{"select.mode", "custom:mushroom-select-card", nil, true},
		{"input_select.mode", "custom:mushroom-select-card", nil, true},
		{"camera.porch", "custom:webrtc-camera", map[string]any{"muted": true, "poster": ""}, true},
		{"sensor.temp", lovelace.TypeEntity, map[string]any{"icon": "mdi:information-outline", "line_color": "green"}, false},
		{"binary_sensor.door", lovelace.TypeEntity, map[string]any{"icon": "mdi:power-cycle"}, false},
		{"person.alice", "custom:mushroom-person-card", map[string]any{"layout": "vertical", "icon_type": "entity-picture"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.entityID, func(t *testing.T) {
			card := build(t, reg, testEntity(tt.entityID), nil)

			if card.Type() != tt.wantType {
				t.Errorf("type = %q, want %q", card.Type(), tt.wantType)
			}
			if card["entity"] != tt.entityID {
				t.Errorf("entity = %v, want %q", card["entity"], tt.entityID)
			}
			for k, want := range tt.wantKeys {
				if !reflect.DeepEqual(card[k], want) {
					t.Errorf("%s = %v, want %v", k, card[k], want)
				}
			}
			if _, has := card["icon"]; has == tt.noIcon {
				t.Errorf("icon present = %v, want %v", has, !tt.noIcon)
			}
		})
	}
}

func TestBuild_MiscellaneousKeepsGenericIcon(t *testing.T) {
	reg := newRegistry(t, &hass.Snapshot{})
	f, err := For(Miscellaneous)
	if err != nil {
		t.Fatalf("For() error = %v", err)
	}

	card := f.Build(reg, testEntity("update.firmware"), nil)
	want := lovelace.Card{
		"type":       lovelace.TypeEntity,
		"icon":       "mdi:help-circle",
		"icon_color": "blue-grey",
		"entity":     "update.firmware",
	}
	if !reflect.DeepEqual(card, want) {
		t.Errorf("card = %v, want %v", card, want)
	}
}

func TestBuild_OverridesWinButEntityIsPinned(t *testing.T) {
	reg := newRegistry(t, &hass.Snapshot{})

	card := build(t, reg, testEntity("light.kitchen"), lovelace.Card{
		"use_light_color": false,
		"icon":            "mdi:ceiling-light",
		"entity":          "light.other",
	})

	if card["use_light_color"] != false {
		t.Errorf("use_light_color = %v, want false", card["use_light_color"])
	}
	if card["icon"] != "mdi:ceiling-light" {
		t.Errorf("icon = %v", card["icon"])
	}
	if card["entity"] != "light.kitchen" {
		t.Errorf("entity = %v, want light.kitchen", card["entity"])
	}
}

func TestBuild_LightDoubleTapWhitens(t *testing.T) {
	reg := newRegistry(t, &hass.Snapshot{})
	card := build(t, reg, testEntity("light.kitchen"), nil)

	action, _ := card["double_tap_action"].(map[string]any)
	if action["perform_action"] != "light.turn_on" {
		t.Fatalf("double_tap_action = %v", action)
	}
	target, _ := action["target"].(map[string]any)
	if !reflect.DeepEqual(target["entity_id"], []string{"light.kitchen"}) {
		t.Errorf("target = %v", target)
	}
}

func TestBuild_SceneEqualsStatefulSwitchCard(t *testing.T) {
	snap := &hass.Snapshot{EntityList: []hass.Entity{
		testEntity("scene.bedtime"),
		testEntity("switch.bedtime_stateful_scene"),
	}}
	reg := newRegistry(t, snap)

	scene, _ := reg.Entity("scene.bedtime")
	sw, _ := reg.Entity("switch.bedtime_stateful_scene")

	got := build(t, reg, scene, nil)
	want := build(t, reg, sw, nil)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scene card = %v, want switch card %v", got, want)
	}
	if got["entity"] != "switch.bedtime_stateful_scene" {
		t.Errorf("entity = %v", got["entity"])
	}
}

func TestBuild_SceneActivates(t *testing.T) {
	snap := &hass.Snapshot{
		EntityList: []hass.Entity{testEntity("scene.movie")},
		StateList: []hass.State{{
			EntityID:   "scene.movie",
			State:      "scening",
			Attributes: map[string]any{"icon": "mdi:movie"},
		}},
	}
	reg := newRegistry(t, snap)
	scene, _ := reg.Entity("scene.movie")

	card := build(t, reg, scene, nil)
	if card["icon"] != "mdi:movie" {
		t.Errorf("icon = %v, want mdi:movie", card["icon"])
	}
	tap, _ := card["tap_action"].(map[string]any)
	if tap["perform_action"] != "scene.turn_on" {
		t.Errorf("tap_action = %v", tap)
	}
}

func TestGraph(t *testing.T) {
	reg := newRegistry(t, &hass.Snapshot{})
	card := Graph(reg, testEntity("sensor.temp"), lovelace.Card{"type": "custom:ignored", "hours_to_show": 12})

	if card.Type() != GraphType {
		t.Errorf("type = %q, want %q", card.Type(), GraphType)
	}
	if !reflect.DeepEqual(card["entities"], []string{"sensor.temp"}) {
		t.Errorf("entities = %v", card["entities"])
	}
	if card["hours_to_show"] != 12 {
		t.Errorf("hours_to_show = %v", card["hours_to_show"])
	}
}

func TestBuild_UninitializedRegistryStillBuilds(t *testing.T) {
	var reg *registry.Registry
	card := build(t, reg, testEntity("switch.kettle"), nil)
	if card.Type() != lovelace.TypeEntity || card["entity"] != "switch.kettle" {
		t.Errorf("card = %v", card)
	}
}

func TestAreaFor(t *testing.T) {
	reg := newRegistry(t, &hass.Snapshot{})
	area := registry.Area{Area: hass.Area{AreaID: "kitchen", Name: "Kitchen", Icon: hass.Null[string]()}}

	t.Run("default", func(t *testing.T) {
		f, err := AreaFor("")
		if err != nil {
			t.Fatalf("AreaFor() error = %v", err)
		}
		card := f.Build(reg, area, lovelace.Card{"type": "tile", "icon_color": "red"})
		if card.Type() != lovelace.TypeTemplate {
			t.Errorf("type = %q", card.Type())
		}
		if card["icon"] != defaultAreaIcon || card["icon_color"] != "red" || card["primary"] != "Kitchen" {
			t.Errorf("card = %v", card)
		}
		tap, _ := card["tap_action"].(map[string]any)
		if tap["navigation_path"] != "kitchen" {
			t.Errorf("tap_action = %v", tap)
		}
	})

	t.Run("home assistant area card", func(t *testing.T) {
		f, err := AreaFor(AreaTypeHass)
		if err != nil {
			t.Fatalf("AreaFor() error = %v", err)
		}
		card := f.Build(reg, area, lovelace.Card{"area": "other", "show_camera": true})
		want := lovelace.Card{"type": "area", "area": "kitchen", "navigation_path": "kitchen", "show_camera": true}
		if !reflect.DeepEqual(card, want) {
			t.Errorf("card = %v, want %v", card, want)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := AreaFor("Bogus"); !errors.Is(err, ErrUnknownAreaCard) {
			t.Errorf("AreaFor() error = %v, want ErrUnknownAreaCard", err)
		}
	})
}

func TestHeader(t *testing.T) {
	loc := localize.MustNew("en")
	logger := &fatalRecorder{}
	reg := registry.Initialize(context.Background(), &hass.Snapshot{}, options.Defaults(loc), loc, logger)
	target := lovelace.AreaTarget("kitchen")

	t.Run("title and controls", func(t *testing.T) {
		header := Header(reg, target, options.HeaderOptions{
			Title:      "Kitchen",
			OnService:  "light.turn_on",
			OffService: "light.turn_off",
		})
		cards := header.Cards()
		if len(cards) != 2 {
			t.Fatalf("len(cards) = %d, want 2", len(cards))
		}
		if cards[0].Type() != lovelace.TypeTitle || cards[0]["title"] != "Kitchen" {
			t.Errorf("title card = %v", cards[0])
		}
		buttons := cards[1].Cards()
		if len(buttons) != 2 {
			t.Fatalf("len(buttons) = %d, want 2", len(buttons))
		}
		off, _ := buttons[0]["tap_action"].(map[string]any)
		on, _ := buttons[1]["tap_action"].(map[string]any)
		if off["perform_action"] != "light.turn_off" || on["perform_action"] != "light.turn_on" {
			t.Errorf("buttons = %v", buttons)
		}
		if buttons[0]["icon"] != "mdi:power-off" || buttons[1]["icon"] != "mdi:power-on" {
			t.Errorf("default icons not applied: %v", buttons)
		}
		if !reflect.DeepEqual(on["target"], map[string]any{"area_id": []string{"kitchen"}}) {
			t.Errorf("target = %v", on["target"])
		}
	})

	t.Run("no title and no controls", func(t *testing.T) {
		off := false
		header := Header(reg, target, options.HeaderOptions{ShowControls: &off})
		if len(header.Cards()) != 0 {
			t.Errorf("cards = %v, want none", header.Cards())
		}
	})

	if len(logger.fatals) != 0 {
		t.Errorf("unexpected fatal logs: %v", logger.fatals)
	}
}

func TestHeader_Uninitialized(t *testing.T) {
	var reg *registry.Registry
	header := Header(reg, lovelace.EntityTarget(), options.HeaderOptions{Title: "x"})
	if header.Type() != lovelace.TypeHorizontalStack {
		t.Errorf("type = %q", header.Type())
	}
}
