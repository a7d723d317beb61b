package options

import (
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
)

// Translator resolves dotted translation keys and compares display strings.
// *localize.Localizer satisfies it.
type Translator interface {
	T(key string) string
	Compare(a, b string) int
}

// viewDefaults lists the built-in views and their positions.
var viewDefaults = []struct {
	name  string
	order int
}{
	{"home", 1},
	{"light", 2},
	{"fan", 3},
	{"cover", 4},
	{"switch", 5},
	{"climate", 6},
	{"camera", 7},
	{"vacuum", 8},
	{"scene", 9},
	{"lock", 10},
}

// domainDefault describes the built-in settings of one domain.
type domainDefault struct {
	titleKey     string
	showControls bool
	iconOn       string
	iconOff      string
	onService    string
	offService   string
}

var domainDefaults = map[string]domainDefault{
	"binary_sensor": {titleKey: "binary_sensor.binary_sensors"},
	"camera":        {titleKey: "camera.cameras"},
	"climate":       {titleKey: "climate.climates"},
	"cover": {
		titleKey:     "cover.covers",
		showControls: true,
		iconOn:       "mdi:arrow-up",
		iconOff:      "mdi:arrow-down",
		onService:    "cover.open_cover",
		offService:   "cover.close_cover",
	},
	DefaultDomain: {titleKey: "generic.miscellaneous"},
	"fan": {
		titleKey:     "fan.fans",
		showControls: true,
		iconOn:       "mdi:fan",
		iconOff:      "mdi:fan-off",
		onService:    "fan.turn_on",
		offService:   "fan.turn_off",
	},
	"input_select": {titleKey: "input_select.input_selects"},
	"light": {
		titleKey:     "light.lights",
		showControls: true,
		iconOn:       "mdi:lightbulb",
		iconOff:      "mdi:lightbulb-off",
		onService:    "light.turn_on",
		offService:   "light.turn_off",
	},
	"lock":         {titleKey: "lock.locks"},
	"media_player": {titleKey: "media_player.media_players"},
	"number":       {titleKey: "number.numbers"},
	"scene":        {titleKey: "scene.scenes", onService: "scene.turn_on"},
	"select":       {titleKey: "select.selects"},
	"sensor":       {titleKey: "sensor.sensors"},
	"switch": {
		titleKey:     "switch.switches",
		showControls: true,
		iconOn:       "mdi:power-plug",
		iconOff:      "mdi:power-plug-off",
		onService:    "switch.turn_on",
		offService:   "switch.turn_off",
	},
	"vacuum": {
		titleKey:     "vacuum.vacuums",
		showControls: true,
		iconOn:       "mdi:robot-vacuum",
		iconOff:      "mdi:robot-vacuum-off",
		onService:    "vacuum.start",
		offService:   "vacuum.stop",
	},
}

// Defaults returns the built-in options with titles translated by tr.
// Every collection is allocated so that merging an empty override yields a
// value deep-equal to Defaults.
func Defaults(tr Translator) *Options {
	o := &Options{
		Areas: map[string]AreaOptions{
			GroupKey: {},
			UndisclosedArea: {
				AreaID: UndisclosedArea,
				Name:   tr.T("generic.undisclosed"),
				Icon:   "mdi:floor-plan",
				Hidden: ptr(false),
			},
		},
		CardOptions: map[string]lovelace.Card{},
		Chips: ChipOptions{
			WeatherEntity: "auto",
			LightCount:    true,
			FanCount:      true,
			CoverCount:    true,
			SwitchCount:   true,
			ClimateCount:  true,
			ExtraChips:    []lovelace.Card{},
		},
		Domains: map[string]DomainOptions{
			GroupKey: {HeaderOptions: HeaderOptions{ShowControls: ptr(true)}},
		},
		ExtraCards:       []lovelace.Card{},
		ExtraViews:       []lovelace.View{},
		HomeView:         HomeViewOptions{Hidden: []string{}},
		Views:            make(map[string]ViewOptions, len(viewDefaults)),
		QuickAccessCards: []lovelace.Card{},
	}

	for name, d := range domainDefaults {
		o.Domains[name] = DomainOptions{
			HeaderOptions: HeaderOptions{
				Title:        tr.T(d.titleKey),
				ShowControls: ptr(d.showControls),
				IconOn:       d.iconOn,
				IconOff:      d.iconOff,
				OnService:    d.onService,
				OffService:   d.offService,
			},
			Hidden: ptr(false),
		}
	}

	for _, v := range viewDefaults {
		o.Views[v.name] = ViewOptions{
			Order:  ptr(v.order),
			Hidden: ptr(false),
		}
	}

	o.normalize(tr)
	return o
}

func ptr[T any](v T) *T {
	return &v
}
