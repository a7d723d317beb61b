package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Source supplies the registry collections and live states a dashboard is
// generated from. Client talks to a running Home Assistant; Snapshot serves
// a previously captured copy.
type Source interface {
	Entities(ctx context.Context) ([]Entity, error)
	Devices(ctx context.Context) ([]Device, error)
	Areas(ctx context.Context) ([]Area, error)
	States(ctx context.Context) (States, error)
}

// Snapshot is an in-memory copy of the registries, in the same JSON shape
// Home Assistant returns for the registry list commands.
type Snapshot struct {
	EntityList []Entity `json:"entities"`
	DeviceList []Device `json:"devices"`
	AreaList   []Area   `json:"areas"`
	StateList  []State  `json:"states"`
}

// LoadSnapshot reads a JSON snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return &snap, nil
}

// Capture copies every collection of src into a Snapshot.
func Capture(ctx context.Context, src Source) (*Snapshot, error) {
	entities, err := src.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing entities: %w", err)
	}
	devices, err := src.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing devices: %w", err)
	}
	areas, err := src.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing areas: %w", err)
	}
	states, err := src.States(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing states: %w", err)
	}

	snap := &Snapshot{
		EntityList: entities,
		DeviceList: devices,
		AreaList:   areas,
		StateList:  make([]State, 0, len(states)),
	}
	for _, st := range states {
		snap.StateList = append(snap.StateList, st)
	}
	return snap, nil
}

// Save writes the snapshot as indented JSON.
func (s *Snapshot) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Entities returns a copy of the entity list.
func (s *Snapshot) Entities(_ context.Context) ([]Entity, error) {
	return append([]Entity(nil), s.EntityList...), nil
}

// Devices returns a copy of the device list.
func (s *Snapshot) Devices(_ context.Context) ([]Device, error) {
	return append([]Device(nil), s.DeviceList...), nil
}

// Areas returns a copy of the area list.
func (s *Snapshot) Areas(_ context.Context) ([]Area, error) {
	return append([]Area(nil), s.AreaList...), nil
}

// States returns the states keyed by entity_id.
func (s *Snapshot) States(_ context.Context) (States, error) {
	states := make(States, len(s.StateList))
	for _, st := range s.StateList {
		states[st.EntityID] = st
	}
	return states, nil
}
