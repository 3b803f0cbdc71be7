// Package vehicle implements the per-vehicle command/query surface of spec
// §4.7 (VehicleApi) plus the underlying Vehicle that owns kinematics,
// environment, sensors, and the control cascade driving it.
package vehicle

import (
	"github.com/autonomysim/coresim/pkg/control"
	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/physics"
	"github.com/autonomysim/coresim/pkg/sensors"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Kind selects which VehicleApi variant a Vehicle exposes, per the tagged
// variant "VehicleApi = Multirotor(...) | Car(...)" flattening of spec §9.
type Kind int

const (
	KindMultirotor Kind = iota
	KindCar
)

// CarControls is the car command surface's input (spec §4.7).
type CarControls struct {
	Throttle  spatial.Real
	Steering  spatial.Real
	Brake     spatial.Real
	Handbrake bool
	Gear      int
}

// Drivetrain selects multirotor yaw coupling to velocity (glossary).
type Drivetrain int

const (
	DrivetrainMaxDegreeOfFreedom Drivetrain = iota
	DrivetrainForwardOnly
)

// YawMode selects whether yaw is controlled or left to the drivetrain.
type YawMode struct {
	IsRate bool
	Value  spatial.Real
}

// activeCommand tracks the in-flight, cancellable command per spec §4.7/§5:
// "command n+1 observed by the controller overrides command n".
type activeCommand struct {
	token      *CommandToken
	goal       control.Goal
	isComplete func(k *kinematics.Kinematics, elapsed spatial.TimeDelta) bool
	startedAt  spatial.TimePoint
	deadline   spatial.TimeDelta // 0 = no explicit duration budget
}

// Vehicle owns one Kinematics, one Environment, its sensors, and the
// control cascade and state machine driving it (spec §3).
type Vehicle struct {
	Name        string
	Kind        Kind
	Kinematics  kinematics.Kinematics
	Environment kinematics.Environment
	Sensors     *sensors.Suite
	Controller  *control.Controller
	State       *control.StateMachine
	Body        *physics.Body

	apiControlEnabled bool
	homeGeoPoint      kinematics.GeoPoint
	current           *activeCommand
	carControls       CarControls
	batteryFraction   spatial.Real
	rcLost            bool
	rcRequired        bool
	lastTick          spatial.TimePoint
}

// New constructs a Vehicle with fresh state; sensors and the physics body
// are attached by the caller (typically the factory) once, as spec §3
// requires ("Sensors are created once per vehicle and live as long as the
// vehicle").
func New(name string, kind Kind, mass, hoverThrust spatial.Real, home kinematics.GeoPoint) *Vehicle {
	return &Vehicle{
		Name:            name,
		Kind:            kind,
		Sensors:         sensors.NewSuite(),
		Controller:      control.NewController(mass, hoverThrust),
		State:           control.NewStateMachine(),
		homeGeoPoint:    home,
		batteryFraction: 1.0,
	}
}

// Reset returns the vehicle to a freshly constructed state (spec §4.2).
func (v *Vehicle) Reset() {
	v.Kinematics = kinematics.Kinematics{Pose: spatial.Pose{Orientation: spatial.IdentityQuat}}
	v.Environment = kinematics.StandardAtmosphere(v.Kinematics.Pose.Position, v.homeGeoPoint)
	v.Sensors.Reset()
	v.State.Reset()
	v.apiControlEnabled = false
	v.batteryFraction = 1.0
	v.rcLost = false
	if v.current != nil {
		v.current.token.resolve(errkind.New(errkind.Cancelled, "vehicle reset"))
		v.current = nil
	}
}

// Update runs one tick: refresh sensors, evaluate the current goal through
// the control cascade, apply actuator output to the physics body, advance
// the state machine, and resolve the active command's token if its
// completion predicate now holds.
func (v *Vehicle) Update(now spatial.TimePoint, dt spatial.TimeDelta) error {
	v.lastTick = now
	gt := sensors.GroundTruth{Kinematics: &v.Kinematics, Environment: &v.Environment}
	if err := v.Sensors.Update(now, dt, gt); err != nil {
		return err
	}

	v.State.Update(control.StateMachineInputs{
		Altitude:        -v.Kinematics.Pose.Position.Z,
		Throttle:        v.throttleSignal(),
		BatteryFraction: v.batteryFraction,
		RcRequired:      v.rcRequired,
		RcLost:          v.rcLost,
		LandedThreshold: 0.15,
	})

	if v.current != nil && v.Body != nil && v.State.State() != control.Disarmed {
		cmd := v.Controller.Update(v.current.goal, &v.Kinematics, dt.Seconds())
		v.applyActuator(cmd)

		elapsed := now.Sub(v.current.startedAt)
		if v.current.isComplete(&v.Kinematics, elapsed) {
			v.current.token.resolve(nil)
			v.current = nil
		}
	}
	return nil
}

func (v *Vehicle) throttleSignal() spatial.Real {
	if v.current == nil {
		return 0
	}
	switch v.current.goal.Mode {
	case control.GoalPassthrough:
		return (v.current.goal.Raw.Z + 1) / 2
	default:
		return 0.5
	}
}

func (v *Vehicle) applyActuator(cmd control.ActuatorCommand) {
	worldThrust := v.Kinematics.Pose.Orientation.Rotate(spatial.Vec3{Z: -cmd.Thrust})
	v.Body.ApplyForce(worldThrust)
	v.Body.ApplyTorque(cmd.Torque)
}

// startCommand cancels any in-flight command and installs a new one,
// implementing "any new command on a vehicle cancels its predecessor" from
// spec §5.
func (v *Vehicle) startCommand(now spatial.TimePoint, goal control.Goal, deadline spatial.TimeDelta, isComplete func(*kinematics.Kinematics, spatial.TimeDelta) bool) *CommandToken {
	if v.current != nil {
		v.current.token.resolve(errkind.New(errkind.Cancelled, "superseded by a new command"))
	}
	token := newToken()
	v.current = &activeCommand{token: token, goal: goal, isComplete: isComplete, startedAt: now, deadline: deadline}
	return token
}

// CancelCurrent resolves the active command, if any, as Cancelled.
func (v *Vehicle) CancelCurrent() {
	if v.current != nil {
		v.current.token.resolve(errkind.New(errkind.Cancelled, "cancelled"))
		v.current = nil
	}
}
