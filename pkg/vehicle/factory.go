package vehicle

import (
	"fmt"
	"sync"

	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/physics"
	"github.com/autonomysim/coresim/pkg/sensors"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Spec is the per-vehicle configuration a factory builds from — the
// language-neutral "configuration map" of spec §3, flattened to a struct.
type Spec struct {
	Name          string
	Kind          Kind
	Mass          spatial.Real
	HoverThrust   spatial.Real
	InertiaDiag   spatial.Vec3
	InitialPose   spatial.Pose
	Home          kinematics.GeoPoint
	Sensors       []SensorSpec
}

// SensorSpec names a sensor to attach and, for ray-based sensors, the
// RayCaster collaborator to wire in (nil uses sensors.NoHitRayCaster).
type SensorSpec struct {
	Kind   sensors.AnySensorKind
	Caster sensors.RayCaster
}

// Registry maps a vehicle type name (as it would appear in a settings file)
// to a builder function, the flattened replacement for the source's virtual
// vehicle-firmware inheritance chain described in spec §9 — "flatten into a
// tagged variant ... a small common capability set is shared" plus a small
// factory registry standing in for its extensibility, grounded on the
// teacher's simulation.Registry.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]func(Spec) *Vehicle
}

// NewRegistry builds an empty Registry pre-seeded with the two built-in
// vehicle types.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]func(Spec) *Vehicle)}
	r.Register("multirotor", buildDefault(KindMultirotor))
	r.Register("car", buildDefault(KindCar))
	return r
}

// Register adds a named vehicle-type builder; registering an existing name
// is an error, matching the teacher's simulation.Registry.Register
// contract.
func (r *Registry) Register(name string, builder func(Spec) *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("vehicle type %q already registered", name)
	}
	r.builders[name] = builder
	return nil
}

// Build constructs a vehicle of the named type from spec, wiring its
// sensors and physics body.
func (r *Registry) Build(typeName string, spec Spec) (*Vehicle, error) {
	r.mu.RLock()
	builder, ok := r.builders[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, errkind.Newf(errkind.ConfigError, "unknown vehicle type %q", typeName)
	}
	return builder(spec), nil
}

func buildDefault(kind Kind) func(Spec) *Vehicle {
	return func(spec Spec) *Vehicle {
		spec.Kind = kind
		return assemble(spec)
	}
}

// assemble wires a Vehicle's kinematics, environment, sensors, and physics
// body together, the equivalent of the source's per-vehicle construction
// step run once at startup or via CreateAtRuntime.
func assemble(spec Spec) *Vehicle {
	v := New(spec.Name, spec.Kind, spec.Mass, spec.HoverThrust, spec.Home)
	v.Kinematics.Pose = spec.InitialPose
	if v.Kinematics.Pose.Orientation == (spatial.Quat{}) {
		v.Kinematics.Pose.Orientation = spatial.IdentityQuat
	}
	v.Environment = kinematics.StandardAtmosphere(v.Kinematics.Pose.Position, spec.Home)

	for _, ss := range spec.Sensors {
		v.Sensors.Add(buildSensor(ss))
	}

	inertia := spec.InertiaDiag
	if inertia == (spatial.Vec3{}) {
		inertia = spatial.Vec3{X: 0.02, Y: 0.02, Z: 0.04}
	}
	v.Body = physics.NewBody(spec.Name, &v.Kinematics, &v.Environment, orDefault(spec.Mass, 1.0), inertia)
	return v
}

func orDefault(v, def spatial.Real) spatial.Real {
	if v <= 0 {
		return def
	}
	return v
}

func buildSensor(spec SensorSpec) sensors.AnySensor {
	switch spec.Kind {
	case sensors.KindImu:
		return sensors.FromImu(sensors.NewImu(sensors.DefaultImuParams()))
	case sensors.KindBarometer:
		return sensors.FromBarometer(sensors.NewBarometer(sensors.DefaultBarometerParams()))
	case sensors.KindMagnetometer:
		return sensors.FromMagnetometer(sensors.NewMagnetometer(sensors.DefaultMagnetometerParams()))
	case sensors.KindGps:
		return sensors.FromGps(sensors.NewGps(sensors.DefaultGpsParams(kinematics.GeoPoint{})))
	case sensors.KindDistance:
		return sensors.FromDistance(sensors.NewDistance(sensors.DefaultDistanceParams(), spec.Caster))
	case sensors.KindLidar:
		return sensors.FromLidar(sensors.NewLidar(sensors.DefaultLidarParams(), spec.Caster))
	}
	return sensors.AnySensor{}
}

// DefaultRegistry is the process-wide vehicle-type registry used by
// settings-driven startup; a factory module builds the component tree from
// the settings value rather than reading process-global mutable state,
// matching the "no process-wide mutable state" resolution in spec §9 (the
// registry itself only holds constructor functions, never simulation
// state).
var DefaultRegistry = NewRegistry()
