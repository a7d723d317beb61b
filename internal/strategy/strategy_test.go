package strategy

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/nerrad567/lovelace-strategy/internal/cards"
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

type recordingLogger struct {
	mu     sync.Mutex
	fatals []string
	errs   []string
	debug  *bool
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Warn(string, ...any)  {}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func (l *recordingLogger) Fatal(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fatals = append(l.fatals, msg)
}

func (l *recordingLogger) SetDebug(enabled bool, _ string) {
	l.debug = &enabled
}

func testEntity(id, areaID string) hass.Entity {
	e := hass.Entity{
		EntityID:       id,
		Name:           hass.Null[string](),
		OriginalName:   hass.Null[string](),
		DeviceID:       hass.Null[string](),
		AreaID:         hass.Null[string](),
		DisabledBy:     hass.Null[string](),
		HiddenBy:       hass.Null[string](),
		EntityCategory: hass.Null[string](),
	}
	if areaID != "" {
		e.AreaID = hass.Some(areaID)
	}
	return e
}

func testArea(id, name string) hass.Area {
	return hass.Area{AreaID: id, Name: name, Icon: hass.Null[string](), FloorID: hass.Null[string]()}
}

// houseSnapshot has a kitchen with a light, a numeric and a textual sensor,
// two binary sensors and an update entity, plus a loose switch.
func houseSnapshot() *hass.Snapshot {
	return &hass.Snapshot{
		AreaList: []hass.Area{testArea("kitchen", "Kitchen")},
		EntityList: []hass.Entity{
			testEntity("light.kitchen", "kitchen"),
			testEntity("sensor.kitchen_temp", "kitchen"),
			testEntity("sensor.kitchen_status", "kitchen"),
			testEntity("binary_sensor.kitchen_door", "kitchen"),
			testEntity("binary_sensor.kitchen_window", "kitchen"),
			testEntity("update.kitchen_fw", "kitchen"),
			testEntity("switch.kettle", ""),
		},
		StateList: []hass.State{
			{EntityID: "sensor.kitchen_temp", State: "21", Attributes: map[string]any{"unit_of_measurement": "°C"}},
			{EntityID: "sensor.kitchen_status", State: "ok", Attributes: map[string]any{}},
		},
	}
}

func newSession(t *testing.T, snap *hass.Snapshot, override string) (*registry.Registry, *recordingLogger) {
	t.Helper()
	tree, err := options.ParseOverride([]byte(override))
	if err != nil {
		t.Fatalf("ParseOverride() error = %v", err)
	}
	logger := &recordingLogger{}
	reg, err := NewSession(context.Background(), snap, SessionConfig{Override: tree, LogLevel: "info"}, logger)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return reg, logger
}

func viewPaths(d lovelace.Dashboard) []string {
	out := make([]string, 0, len(d.Views))
	for _, v := range d.Views {
		out = append(out, v.String("path"))
	}
	return out
}

func TestNewSession_InvalidOverride(t *testing.T) {
	logger := &recordingLogger{}
	_, err := NewSession(context.Background(), &hass.Snapshot{}, SessionConfig{
		Override: map[string]any{"colour": "red"},
	}, logger)
	if !errors.Is(err, options.ErrInvalidOverride) {
		t.Fatalf("NewSession() error = %v, want ErrInvalidOverride", err)
	}
	if len(logger.fatals) != 1 {
		t.Errorf("fatal logs = %v, want one", logger.fatals)
	}
}

func TestNewSession_DebugOption(t *testing.T) {
	_, logger := newSession(t, &hass.Snapshot{}, "debug: true")
	if logger.debug == nil || !*logger.debug {
		t.Errorf("SetDebug not called with true")
	}
}

func TestGenerateDashboard_ViewOrder(t *testing.T) {
	reg, _ := newSession(t, houseSnapshot(), `
extra_views:
  - title: Energy
    path: energy
    order: 2
  - title: Cameras outside
    path: outside
    order: 1
`)

	dashboard, err := GenerateDashboard(context.Background(), reg, 2)
	if err != nil {
		t.Fatalf("GenerateDashboard() error = %v", err)
	}

	// home, lights and switches have cards; other domain views are empty.
	want := []string{"home", "lights", "switches", "kitchen", "undisclosed", "outside", "energy"}
	if got := viewPaths(dashboard); !reflect.DeepEqual(got, want) {
		t.Errorf("view paths = %v, want %v", got, want)
	}

	kitchen := dashboard.Views[3]
	if kitchen["subview"] != true || kitchen["title"] != "Kitchen" {
		t.Errorf("kitchen subview = %v", kitchen)
	}
	outside := dashboard.Views[5]
	if outside["subview"] != false {
		t.Errorf("extra view subview = %v, want false", outside["subview"])
	}
}

func TestGenerateDashboard_HiddenView(t *testing.T) {
	reg, _ := newSession(t, houseSnapshot(), "views: {light: {hidden: true}}")

	dashboard, err := GenerateDashboard(context.Background(), reg, 0)
	if err != nil {
		t.Fatalf("GenerateDashboard() error = %v", err)
	}
	for _, p := range viewPaths(dashboard) {
		if p == "lights" {
			t.Errorf("hidden light view was generated")
		}
	}
}

func TestGenerateDashboard_Cancelled(t *testing.T) {
	reg, _ := newSession(t, houseSnapshot(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := GenerateDashboard(ctx, reg, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateDashboard() error = %v, want context.Canceled", err)
	}
}

func TestGenerateDashboard_Uninitialized(t *testing.T) {
	var reg *registry.Registry
	dashboard, err := GenerateDashboard(context.Background(), reg, 0)
	if err != nil {
		t.Fatalf("GenerateDashboard() error = %v", err)
	}
	if len(dashboard.Views) == 0 || dashboard.Views[0].String("path") != "home" {
		t.Errorf("degraded dashboard = %v, want the home view", viewPaths(dashboard))
	}
}

func TestGenerateAreaView(t *testing.T) {
	reg, _ := newSession(t, houseSnapshot(), `
areas:
  kitchen:
    extra_cards:
      - type: markdown
        content: Hi
`)

	view, err := GenerateAreaView(context.Background(), reg, "kitchen", 0)
	if err != nil {
		t.Fatalf("GenerateAreaView() error = %v", err)
	}
	if view["path"] != "kitchen" || view["subview"] != true {
		t.Errorf("view = %v", view)
	}

	viewCards := view.Cards()
	if viewCards[0].Type() != "markdown" {
		t.Errorf("first card = %v, want the area extra card", viewCards[0])
	}

	sectionsByTitle := map[string]lovelace.Card{}
	for _, c := range viewCards[1:] {
		title := c.Cards()[0].Cards()[0]["title"].(string)
		sectionsByTitle[title] = c
	}

	for _, title := range []string{"Lights", "Sensors", "Binary Sensors", "Miscellaneous"} {
		if _, ok := sectionsByTitle[title]; !ok {
			t.Errorf("missing %s section (have %v)", title, len(sectionsByTitle))
		}
	}

	sensors := sectionsByTitle["Sensors"].Cards()
	if len(sensors) != 2 || sensors[1].Type() != cards.GraphType || sensors[1]["entity"] != "sensor.kitchen_temp" {
		t.Errorf("sensor section = %v, want one graph for the numeric sensor", sensors)
	}

	binary := sectionsByTitle["Binary Sensors"].Cards()
	if len(binary) != 2 || binary[1].Type() != lovelace.TypeHorizontalStack || len(binary[1].Cards()) != 2 {
		t.Errorf("binary sensor section = %v, want one row of two", binary)
	}

	misc := sectionsByTitle["Miscellaneous"].Cards()
	if len(misc) != 2 || misc[1]["entity"] != "update.kitchen_fw" {
		t.Errorf("miscellaneous section = %v", misc)
	}
	controls := misc[0].Cards()
	if len(controls) != 1 {
		t.Errorf("miscellaneous header = %v, want title only", controls)
	}
}

func TestGenerateAreaView_MiscellaneousHidden(t *testing.T) {
	reg, _ := newSession(t, houseSnapshot(), "domains: {default: {hidden: true}}")

	view, err := GenerateAreaView(context.Background(), reg, "kitchen", 0)
	if err != nil {
		t.Fatalf("GenerateAreaView() error = %v", err)
	}
	for _, c := range view.Cards() {
		if c.Cards()[0].Cards()[0]["title"] == "Miscellaneous" {
			t.Errorf("miscellaneous section present")
		}
	}
}

func TestGenerateAreaView_UnknownArea(t *testing.T) {
	reg, _ := newSession(t, houseSnapshot(), "")
	if _, err := GenerateAreaView(context.Background(), reg, "cellar", 0); !errors.Is(err, ErrUnknownArea) {
		t.Errorf("GenerateAreaView() error = %v, want ErrUnknownArea", err)
	}
}
