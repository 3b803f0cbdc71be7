package settings

import (
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected Default() to be valid, got %v", err)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := Default()
	s.Vehicles = append(s.Vehicles, VehicleSettings{Name: "drone2", Type: "multirotor", Mass: 2.0, HoverThrust: 9.81})

	if err := Save(s, path); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if len(loaded.Vehicles) != 2 {
		t.Fatalf("expected 2 vehicles after round trip, got %d", len(loaded.Vehicles))
	}
	if loaded.Vehicles[1].Name != "drone2" {
		t.Fatalf("expected the second vehicle's name to survive the round trip, got %q", loaded.Vehicles[1].Name)
	}
	if loaded.Rpc.Port != s.Rpc.Port {
		t.Fatalf("expected rpc port to survive the round trip, got %d", loaded.Rpc.Port)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing settings file")
	}
}

func TestLoadOrDefaultFallsBackWhenPathEmpty(t *testing.T) {
	s, err := LoadOrDefault("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Mode != SimModeMultirotor {
		t.Fatalf("expected LoadOrDefault with no path to return Default(), got %+v", s)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	s := Default()
	s.Mode = "bogus"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected an error for an unknown sim mode")
	}
}

func TestValidateRejectsNonPositiveClockSpeed(t *testing.T) {
	s := Default()
	s.Clock.Speed = 0
	if err := s.Validate(); err == nil {
		t.Fatalf("expected an error for a non-positive clock speed")
	}
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	s := Default()
	s.Rpc.Port = 70000
	if err := s.Validate(); err == nil {
		t.Fatalf("expected an error for an out-of-range rpc port")
	}
}

func TestValidateRejectsDuplicateVehicleNames(t *testing.T) {
	s := Default()
	s.Vehicles = []VehicleSettings{
		{Name: "a", Type: "multirotor", Mass: 1, HoverThrust: 9.81},
		{Name: "a", Type: "multirotor", Mass: 1, HoverThrust: 9.81},
	}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected an error for duplicate vehicle names")
	}
}

func TestValidateRejectsMultipleDefaultVehicles(t *testing.T) {
	s := Default()
	s.Vehicles = []VehicleSettings{
		{Name: "", Type: "multirotor", Mass: 1, HoverThrust: 9.81},
		{Name: "", Type: "car", Mass: 1, HoverThrust: 9.81},
	}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected an error when more than one vehicle omits a name")
	}
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := Default()
	s.PhysicsPeriod = -1
	if err := Save(s, path); err == nil {
		t.Fatalf("expected Save to reject invalid settings before writing")
	}
}
