// Package settings implements the core's settings value object (spec §6):
// a read-only, YAML-shaped configuration passed into every component at
// construction rather than a process-wide singleton (spec §9's redesign of
// AutonomySimSettings::singleton()). The loader/validate/merge pattern is
// grounded on the teacher's cmd/drone-swarm/config package.
package settings

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/kinematics"
)

// SimMode selects the vehicle domain a settings file targets.
type SimMode string

const (
	SimModeMultirotor      SimMode = "multirotor"
	SimModeCar             SimMode = "car"
	SimModeComputerVision  SimMode = "computer-vision"
)

// ClockType selects the Clock implementation the core wires up.
type ClockType string

const (
	ClockSteppable ClockType = "steppable"
	ClockScalable  ClockType = "scalable"
)

// ClockSettings configures pkg/clock's construction.
type ClockSettings struct {
	Type  ClockType `yaml:"type"`
	Speed float64   `yaml:"speed"`
}

// VehicleSettings configures one vehicle's factory build (pawn path,
// initial pose, sensors, firmware connection info per spec §6).
type VehicleSettings struct {
	Name             string              `yaml:"name"`
	Type             string              `yaml:"type"` // "multirotor" | "car"
	PawnPath         string              `yaml:"pawn_path"`
	InitialPosition  [3]float64          `yaml:"initial_position"`
	InitialRotation  [3]float64          `yaml:"initial_rotation_rpy"`
	Sensors          []string            `yaml:"sensors"`
	FirmwareHost     string              `yaml:"firmware_host,omitempty"`
	FirmwarePort     int                 `yaml:"firmware_port,omitempty"`
	Mass             float64             `yaml:"mass"`
	HoverThrust      float64             `yaml:"hover_thrust"`
}

// RecordingSettings configures pkg/telemetry sinks.
type RecordingSettings struct {
	Enabled    bool   `yaml:"enabled"`
	OutputPath string `yaml:"output_path"`
	Sink       string `yaml:"sink"` // "tsv" | "sqlite"
	Frequency  float64 `yaml:"frequency_hz"`
}

// RpcSettings configures pkg/rpc's TCP bind and websocket feed.
type RpcSettings struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	Workers     int    `yaml:"workers"`
	FeedPort    int    `yaml:"feed_port"`
}

// SwarmSettings configures pkg/swarm's Params.
type SwarmSettings struct {
	AgentTimeoutSeconds float64 `yaml:"agent_timeout_seconds"`
	MinAgents           int     `yaml:"min_agents"`
	DynamicRoles        bool    `yaml:"dynamic_roles"`
}

// Settings is the opaque configuration value object the core consumes
// (spec §6). Every field is read-only after Load returns; there is no
// global mutable settings singleton anywhere in the module.
type Settings struct {
	Mode          SimMode           `yaml:"mode"`
	Clock         ClockSettings     `yaml:"clock"`
	PhysicsPeriod float64           `yaml:"physics_period_seconds"`
	Home          kinematics.GeoPoint `yaml:"home"`
	Vehicles      []VehicleSettings `yaml:"vehicles"`
	Recording     RecordingSettings `yaml:"recording"`
	Rpc           RpcSettings       `yaml:"rpc"`
	Swarm         SwarmSettings     `yaml:"swarm"`
}

// Default returns a minimal, valid Settings value: one multirotor at the
// origin, a steppable clock, RPC on the standard port (spec §6).
func Default() Settings {
	return Settings{
		Mode:          SimModeMultirotor,
		Clock:         ClockSettings{Type: ClockSteppable, Speed: 1.0},
		PhysicsPeriod: 0.003,
		Vehicles: []VehicleSettings{
			{Name: "", Type: "multirotor", Sensors: []string{"imu", "barometer", "magnetometer", "gps"}, Mass: 1.0, HoverThrust: 9.81},
		},
		Recording: RecordingSettings{Enabled: false, Sink: "tsv", Frequency: 10},
		Rpc:       RpcSettings{BindAddress: "0.0.0.0", Port: 41451, Workers: 8, FeedPort: 41452},
		Swarm:     SwarmSettings{AgentTimeoutSeconds: 5, MinAgents: 2, DynamicRoles: true},
	}
}

// Load reads and parses a YAML settings file, then validates it.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errkind.Newf(errkind.ConfigError, "settings file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errkind.Wrap(errkind.ConfigError, "reading settings file", err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, errkind.Wrap(errkind.ConfigError, "parsing settings file", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadOrDefault loads path if non-empty (a missing file is an error). With
// an empty path it loads the first of settings.yaml, coresim.yaml and
// config/settings.yaml that exists, falling back to Default() when none
// does; envPath, if non-empty, is loaded as a .env file
// first so LoadOrDefault's caller can override secrets/paths without
// editing the YAML.
func LoadOrDefault(path, envPath string) (Settings, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Settings{}, errkind.Wrap(errkind.ConfigError, "loading .env file", err)
		}
	}
	if path == "" {
		for _, candidate := range []string{"settings.yaml", "coresim.yaml", filepath.Join("config", "settings.yaml")} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Save writes s to path as YAML.
func Save(s Settings, path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return errkind.Wrap(errkind.ConfigError, "marshaling settings", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errkind.Wrap(errkind.ConfigError, "creating settings directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errkind.Wrap(errkind.ConfigError, "writing settings file", err)
	}
	return nil
}

// Validate checks the invariants Load/Save both rely on: at most one
// vehicle may use the default empty name, ports are in range, and clock
// speed is positive.
func (s Settings) Validate() error {
	switch s.Mode {
	case SimModeMultirotor, SimModeCar, SimModeComputerVision:
	default:
		return errkind.Newf(errkind.ConfigError, "unknown sim mode %q", s.Mode)
	}
	if s.Clock.Speed <= 0 {
		return errkind.New(errkind.ConfigError, "clock speed must be positive")
	}
	if s.PhysicsPeriod <= 0 {
		return errkind.New(errkind.ConfigError, "physics_period_seconds must be positive")
	}
	if s.Rpc.Port <= 0 || s.Rpc.Port > 65535 {
		return errkind.Newf(errkind.ConfigError, "rpc port %d out of range", s.Rpc.Port)
	}
	seenDefault := false
	seenNames := make(map[string]bool)
	for _, v := range s.Vehicles {
		if v.Name == "" {
			if seenDefault {
				return errkind.New(errkind.ConfigError, "at most one vehicle may omit a name (become the default)")
			}
			seenDefault = true
			continue
		}
		if seenNames[v.Name] {
			return errkind.Newf(errkind.ConfigError, "duplicate vehicle name %q", v.Name)
		}
		seenNames[v.Name] = true
	}
	return nil
}
