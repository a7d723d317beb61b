package views

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

// Home is the name of the home view.
const Home = "home"

// ErrUnknownView is returned for a view name without a factory.
var ErrUnknownView = errors.New("unknown view")

// Factory builds one top-level view of the dashboard.
type Factory interface {
	// Build returns the view configuration. A view without cards is
	// returned with an empty "cards" list; callers decide whether to show it.
	Build(reg *registry.Registry) (lovelace.View, error)
}

var factories = map[string]Factory{
	Home: homeView{},
	"camera": domainView{
		domain: "camera", titleKey: "camera.cameras", path: "cameras", icon: "mdi:cctv",
		header:  options.HeaderOptions{ShowControls: off()},
		summary: countSummary("ne", "off", "camera.all_cameras", "camera.cameras", "generic.busy"),
	},
	"climate": domainView{
		domain: "climate", titleKey: "climate.climates", path: "climates", icon: "mdi:thermostat",
		header:  options.HeaderOptions{ShowControls: off()},
		summary: countSummary("ne", "off", "climate.all_climates", "climate.climates", "generic.busy"),
	},
	"cover": domainView{
		domain: "cover", titleKey: "cover.covers", path: "covers", icon: "mdi:window-open",
		header: options.HeaderOptions{
			IconOn: "mdi:arrow-up", IconOff: "mdi:arrow-down",
			OnService: "cover.open_cover", OffService: "cover.close_cover",
		},
		summary: countSummary("search", "(open|opening)", "cover.all_covers", "cover.covers", "generic.unclosed"),
	},
	"fan": domainView{
		domain: "fan", titleKey: "fan.fans", path: "fans", icon: "mdi:fan",
		header: options.HeaderOptions{
			IconOn: "mdi:fan", IconOff: "mdi:fan-off",
			OnService: "fan.turn_on", OffService: "fan.turn_off",
		},
		summary: countSummary("eq", "on", "fan.all_fans", "fan.fans", "generic.on"),
	},
	"light": domainView{
		domain: "light", titleKey: "light.lights", path: "lights", icon: "mdi:lamps",
		header: options.HeaderOptions{
			IconOn: "mdi:lightbulb", IconOff: "mdi:lightbulb-off",
			OnService: "light.turn_on", OffService: "light.turn_off",
		},
		summary: countSummary("eq", "on", "light.all_lights", "light.lights", "generic.on"),
	},
	"lock": domainView{
		domain: "lock", titleKey: "lock.locks", path: "locks", icon: "mdi:lock-open",
		header: options.HeaderOptions{
			IconOn: "mdi:lock-open", IconOff: "mdi:lock",
			OnService: "lock.lock", OffService: "lock.unlock",
		},
		summary: countSummary("ne", "locked", "lock.all_locks", "lock.locks", "lock.unlocked"),
	},
	"scene": domainView{
		domain: "scene", titleKey: "scene.scenes", path: "scenes", icon: "mdi:palette",
		header: options.HeaderOptions{ShowControls: off()},
	},
	"switch": domainView{
		domain: "switch", titleKey: "switch.switches", path: "switches", icon: "mdi:dip-switch",
		header: options.HeaderOptions{
			IconOn: "mdi:power-plug", IconOff: "mdi:power-plug-off",
			OnService: "switch.turn_on", OffService: "switch.turn_off",
		},
		summary: countSummary("eq", "on", "switch.all_switches", "switch.switches", "generic.on"),
	},
	"vacuum": domainView{
		domain: "vacuum", titleKey: "vacuum.vacuums", path: "vacuums", icon: "mdi:robot-vacuum",
		header: options.HeaderOptions{
			IconOn: "mdi:robot-vacuum", IconOff: "mdi:robot-vacuum-off",
			OnService: "vacuum.start", OffService: "vacuum.stop",
		},
		summary: countSummary("ne", "docked", "vacuum.all_vacuums", "vacuum.vacuums", "generic.busy"),
	},
}

// For returns the factory of a view.
func For(name string) (Factory, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	return f, nil
}

// Names returns the names of every buildable view, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(factories))
}

func off() *bool {
	v := false
	return &v
}

// applyViewOptions overlays the user settings of a view on cfg. Strategy-only
// settings (order, hidden, header configuration) are not copied.
func applyViewOptions(cfg lovelace.View, custom options.ViewOptions) lovelace.View {
	maps.Copy(cfg, lovelace.Card(custom.Extra).Clone())
	if custom.Title != "" {
		cfg["title"] = custom.Title
	}
	if custom.Path != "" {
		cfg["path"] = custom.Path
	}
	if custom.Icon != "" {
		cfg["icon"] = custom.Icon
	}
	return cfg
}
