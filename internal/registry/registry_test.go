package registry

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/localize"
	"github.com/nerrad567/lovelace-strategy/internal/options"
)

// fakeSource serves fixed collections; a non-nil error fails that fetch.
type fakeSource struct {
	entities []hass.Entity
	devices  []hass.Device
	areas    []hass.Area
	states   hass.States

	entitiesErr error
	areasErr    error
}

func (f *fakeSource) Entities(context.Context) ([]hass.Entity, error) {
	return f.entities, f.entitiesErr
}

func (f *fakeSource) Devices(context.Context) ([]hass.Device, error) {
	return f.devices, nil
}

func (f *fakeSource) Areas(context.Context) ([]hass.Area, error) {
	return f.areas, f.areasErr
}

func (f *fakeSource) States(context.Context) (hass.States, error) {
	return f.states, nil
}

type capturingLogger struct {
	mu     sync.Mutex
	fatals []string
	warns  []string
}

func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Info(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}

func (l *capturingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *capturingLogger) Fatal(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fatals = append(l.fatals, msg)
}

// regEntity returns an entity as the registry list command reports it.
func regEntity(id, name string) hass.Entity {
	e := hass.Entity{
		EntityID:       id,
		DeviceID:       hass.Null[string](),
		AreaID:         hass.Null[string](),
		DisabledBy:     hass.Null[string](),
		HiddenBy:       hass.Null[string](),
		EntityCategory: hass.Null[string](),
		Name:           hass.Null[string](),
		OriginalName:   hass.Null[string](),
	}
	if name != "" {
		e.Name = hass.Some(name)
	}
	return e
}

func regDevice(id, name string) hass.Device {
	return hass.Device{
		ID:         id,
		Name:       hass.Some(name),
		NameByUser: hass.Null[string](),
		AreaID:     hass.Null[string](),
		DisabledBy: hass.Null[string](),
	}
}

func buildOptions(t *testing.T, loc *localize.Localizer, doc string) *options.Options {
	t.Helper()
	override, err := options.ParseOverride([]byte(doc))
	if err != nil {
		t.Fatalf("ParseOverride() error = %v", err)
	}
	opts, err := options.Build(loc, override)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return opts
}

func initialize(t *testing.T, src hass.Source, doc string) (*Registry, *capturingLogger) {
	t.Helper()
	loc := localize.MustNew("en")
	logger := &capturingLogger{}
	return Initialize(context.Background(), src, buildOptions(t, loc, doc), loc, logger), logger
}

func entityIDs(entities []hass.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.EntityID
	}
	return out
}

func areaIDs(areas []Area) []string {
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = a.AreaID
	}
	return out
}

func TestInitialize_NullAreaBecomesUndisclosed(t *testing.T) {
	src := &fakeSource{entities: []hass.Entity{regEntity("light.orphan", "Orphan")}}

	reg, _ := initialize(t, src, "")

	e, ok := reg.Entity("light.orphan")
	if !ok {
		t.Fatal("Entity(light.orphan) not found")
	}
	if !e.AreaID.Is(options.UndisclosedArea) {
		t.Errorf("area_id = %+v, want undisclosed", e.AreaID)
	}
}

func TestInitialize_SanitizesEntities(t *testing.T) {
	config := regEntity("switch.setup", "Setup")
	config.EntityCategory = hass.Some(hass.CategoryConfig)
	diag := regEntity("sensor.rssi", "Signal")
	diag.EntityCategory = hass.Some(hass.CategoryDiagnostic)
	hidden := regEntity("light.hidden", "Hidden")
	hidden.HiddenBy = hass.Some("user")
	disabled := regEntity("light.disabled", "Disabled")
	disabled.DisabledBy = hass.Some("integration")
	unnamed := regEntity("light.unnamed", "")
	unnamed.OriginalName = hass.Some("Bureau")
	kitchen := regEntity("light.kitchen", "Kitchen")
	kitchen.AreaID = hass.Some("kitchen")

	src := &fakeSource{entities: []hass.Entity{
		kitchen, config, diag, hidden, disabled, unnamed,
		regEntity("light.configured_hidden", "Aardvark"),
		regEntity("light.attic", "Attic"),
	}}

	reg, _ := initialize(t, src, `
card_options:
  light.configured_hidden:
    hidden: true
`)

	want := []string{"light.attic", "light.unnamed", "light.kitchen"}
	if got := entityIDs(reg.Entities()); !reflect.DeepEqual(got, want) {
		t.Errorf("Entities() = %v, want %v", got, want)
	}
	if e, _ := reg.Entity("light.kitchen"); !e.AreaID.Is("kitchen") {
		t.Errorf("existing area_id rewritten: %+v", e.AreaID)
	}
}

func TestInitialize_ConfigEntitiesKeptWhenOptedIn(t *testing.T) {
	config := regEntity("switch.setup", "Setup")
	config.EntityCategory = hass.Some(hass.CategoryConfig)

	reg, _ := initialize(t, &fakeSource{entities: []hass.Entity{config}}, `
domains:
  _:
    hide_config_entities: false
`)

	if len(reg.Entities()) != 1 {
		t.Errorf("Entities() = %v, want the config entity kept", entityIDs(reg.Entities()))
	}
}

func TestInitialize_SanitizesDevices(t *testing.T) {
	disabled := regDevice("d-off", "Off")
	disabled.DisabledBy = hass.Some("user")
	renamed := regDevice("d-b", "Zulu")
	renamed.NameByUser = hass.Some("Alpha")
	placed := regDevice("d-c", "Bravo")
	placed.AreaID = hass.Some("hall")

	reg, _ := initialize(t, &fakeSource{devices: []hass.Device{placed, disabled, renamed}}, "")

	devices := reg.Devices()
	if len(devices) != 2 || devices[0].ID != "d-b" || devices[1].ID != "d-c" {
		t.Fatalf("Devices() = %+v", devices)
	}
	if !reg.DeviceArea("d-b").Is(options.UndisclosedArea) {
		t.Errorf("DeviceArea(d-b) = %+v, want undisclosed", reg.DeviceArea("d-b"))
	}
	if !reg.DeviceArea("d-c").Is("hall") {
		t.Errorf("DeviceArea(d-c) = %+v, want hall", reg.DeviceArea("d-c"))
	}
	if !reg.DeviceArea("d-off").IsUnset() {
		t.Error("DeviceArea() of a dropped device should be unset")
	}
}

func TestInitialize_Areas(t *testing.T) {
	src := &fakeSource{areas: []hass.Area{
		{AreaID: "kitchen", Name: "Kitchen"},
		{AreaID: "attic", Name: "Attic"},
		{AreaID: "garage", Name: "Garage"},
		{AreaID: "bedroom", Name: "Bedroom"},
	}}

	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "defaults sort by name with undisclosed added",
			want: []string{"attic", "bedroom", "garage", "kitchen", options.UndisclosedArea},
		},
		{
			name: "order first, hidden dropped",
			doc: `
areas:
  kitchen: {order: 1}
  garage: {hidden: true}
  undisclosed: {order: 0}
`,
			want: []string{options.UndisclosedArea, "kitchen", "attic", "bedroom"},
		},
		{
			name: "undisclosed hidden",
			doc:  "areas: {undisclosed: {hidden: true}}",
			want: []string{"attic", "bedroom", "garage", "kitchen"},
		},
		{
			name: "all areas hidden",
			doc:  "areas: {_: {hidden: true}}",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := initialize(t, src, tt.doc)
			if got := areaIDs(reg.Areas()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Areas() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitialize_UndisclosedWinsTies(t *testing.T) {
	src := &fakeSource{areas: []hass.Area{
		{AreaID: "spare", Name: "Undisclosed"},
		{AreaID: "attic", Name: "Attic"},
	}}

	reg, _ := initialize(t, src, "")
	want := []string{"attic", options.UndisclosedArea, "spare"}
	if got := areaIDs(reg.Areas()); !reflect.DeepEqual(got, want) {
		t.Errorf("Areas() = %v, want %v", got, want)
	}
}

func TestInitialize_AreaOverlay(t *testing.T) {
	src := &fakeSource{areas: []hass.Area{{AreaID: "kitchen", Name: "Kitchen", Icon: hass.Null[string]()}}}

	reg, _ := initialize(t, src, `
areas:
  _:
    type: HaAreaCard
  kitchen:
    name: Cookery
    icon: mdi:stove
    extra_cards:
      - type: markdown
    color: teal
  undisclosed:
    type: HaAreaCard
    area_id: elsewhere
`)

	kitchen, ok := reg.Area("kitchen")
	if !ok {
		t.Fatal("Area(kitchen) not found")
	}
	if kitchen.Name != "Cookery" || !kitchen.Icon.Is("mdi:stove") || kitchen.Type != "HaAreaCard" {
		t.Errorf("kitchen = %+v", kitchen)
	}
	if len(kitchen.ExtraCards) != 1 || kitchen.CardOptions["color"] != "teal" {
		t.Errorf("kitchen overlay extras = %+v / %+v", kitchen.ExtraCards, kitchen.CardOptions)
	}

	undisclosed, ok := reg.Area(options.UndisclosedArea)
	if !ok {
		t.Fatal("undisclosed area missing")
	}
	if undisclosed.Type != DefaultAreaType {
		t.Errorf("undisclosed type = %q, want %q pinned", undisclosed.Type, DefaultAreaType)
	}
	if undisclosed.Name != "Undisclosed" || !undisclosed.Icon.Is("mdi:floor-plan") {
		t.Errorf("undisclosed = %+v", undisclosed)
	}
}

func TestInitialize_FetchFailureDegrades(t *testing.T) {
	src := &fakeSource{
		entitiesErr: errors.New("connection reset"),
		devices:     []hass.Device{regDevice("d1", "Hub")},
		areas:       []hass.Area{{AreaID: "hall", Name: "Hall"}},
	}

	reg, logger := initialize(t, src, "")

	if !reg.Initialized() {
		t.Fatal("Initialized() = false after a failed fetch")
	}
	if len(reg.Entities()) != 0 {
		t.Errorf("Entities() = %v, want empty", reg.Entities())
	}
	if len(reg.Devices()) != 1 {
		t.Errorf("Devices() = %v, want the fetched device", reg.Devices())
	}
	if len(logger.fatals) != 1 {
		t.Errorf("fatal diagnostics = %v, want one", logger.fatals)
	}
}

func TestCountTemplate(t *testing.T) {
	src := &fakeSource{entities: []hass.Entity{
		regEntity("light.a", "A"),
		regEntity("light.b", "B"),
		regEntity("switch.bedtime_stateful_scene", "Bedtime"),
		regEntity("switch.kettle", "Kettle"),
	}}
	reg, _ := initialize(t, src, "")

	got := reg.CountTemplate("switch", "eq", "on")
	want := "{% set entities = [states['switch.kettle']] %} {{ entities" +
		" | selectattr('state','eq','on')" +
		" | selectattr('state','ne','unavailable')" +
		" | selectattr('state','ne','unknown')" +
		" | list | count }}"
	if got != want {
		t.Errorf("CountTemplate() =\n%s\nwant\n%s", got, want)
	}

	lights := reg.CountTemplate("light", "ne", "off")
	if !strings.Contains(lights, "[states['light.a'],states['light.b']]") {
		t.Errorf("CountTemplate(light) = %s", lights)
	}

	if got := reg.DomainTargets("switch"); !reflect.DeepEqual(got, []string{"switch.bedtime_stateful_scene", "switch.kettle"}) {
		t.Errorf("DomainTargets(switch) = %v", got)
	}
}

func TestRegistry_Uninitialized(t *testing.T) {
	var reg *Registry

	if reg.Initialized() {
		t.Error("nil registry reports initialised")
	}
	if got := reg.CountTemplate("light", "eq", "on"); got != "?" {
		t.Errorf("CountTemplate() = %q, want ?", got)
	}
	if reg.Entities() != nil {
		t.Error("nil registry returned entities")
	}
	if reg.Options() == nil || reg.Options().Views["light"].Order == nil {
		t.Error("nil registry should report the default options")
	}
	if reg.T("generic.home") != "Home" {
		t.Errorf("T() on nil registry = %q", reg.T("generic.home"))
	}
}

func TestCountTemplate_UninitializedIsFatal(t *testing.T) {
	logger := &capturingLogger{}
	reg := &Registry{logger: logger}

	if got := reg.CountTemplate("light", "eq", "on"); got != "?" {
		t.Errorf("CountTemplate() = %q, want ?", got)
	}
	if len(logger.fatals) != 1 || len(logger.warns) != 0 {
		t.Errorf("diagnostics fatal=%v warn=%v, want one fatal", logger.fatals, logger.warns)
	}
}
