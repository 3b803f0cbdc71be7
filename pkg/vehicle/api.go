package vehicle

import (
	"math"

	"github.com/autonomysim/coresim/pkg/control"
	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/sensors"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// RcData is raw stick input for SetRcData/passthrough control.
type RcData struct {
	Roll, Pitch, Throttle, Yaw spatial.Real
}

// VehicleState is the get_state() query payload (spec §4.7).
type VehicleState struct {
	Kinematics kinematics.Kinematics
	Armed      bool
	FlightState control.FlightState
	Ready      bool
}

// Api is the flattened tagged-variant VehicleApi of spec §9: a common
// capability set (arm/disarm/reset/get_state/queries), plus the Kind-gated
// Multirotor and Car command sets. Callers branch on Kind before invoking
// the variant-specific commands, matching how RpcServer dispatches by
// vehicle capability.
type Api struct {
	v *Vehicle
}

// NewApi wraps a Vehicle in its stable command/query surface.
func NewApi(v *Vehicle) *Api { return &Api{v: v} }

func (a *Api) Kind() Kind { return a.v.Kind }

// --- Lifecycle (shared) ---

func (a *Api) EnableApiControl(enabled bool) {
	a.v.apiControlEnabled = enabled
}

func (a *Api) IsApiControlEnabled() bool { return a.v.apiControlEnabled }

func (a *Api) Arm() error {
	if !a.v.apiControlEnabled {
		return errkind.New(errkind.NotReady, "API control must be enabled before arming")
	}
	if !a.v.State.Arm() {
		return errkind.New(errkind.NotReady, "vehicle is not in a state that can arm")
	}
	return nil
}

func (a *Api) Disarm() error {
	a.v.CancelCurrent()
	a.v.State.Disarm()
	return nil
}

func (a *Api) Reset() { a.v.Reset() }

func (a *Api) GetState() VehicleState {
	return VehicleState{
		Kinematics:  a.v.Kinematics,
		Armed:       a.v.State.State() != control.Disarmed,
		FlightState: a.v.State.State(),
		Ready:       a.v.apiControlEnabled,
	}
}

func (a *Api) GetHomeGeoPoint() kinematics.GeoPoint { return a.v.homeGeoPoint }

func (a *Api) requireArmed() error {
	if a.v.State.State() == control.Disarmed {
		return errkind.New(errkind.NotReady, "vehicle is disarmed")
	}
	if !a.v.apiControlEnabled {
		return errkind.New(errkind.NotReady, "API control is not enabled")
	}
	return nil
}

// --- Queries (shared) ---

func (a *Api) GetImu() (sensors.ImuOutput, error) {
	s, ok := a.v.Sensors.Get("imu")
	if !ok {
		return sensors.ImuOutput{}, errkind.New(errkind.InvalidArgument, "no imu attached")
	}
	return s.Imu.GetOutput(), nil
}

func (a *Api) GetGps() (sensors.GpsOutput, error) {
	s, ok := a.v.Sensors.Get("gps")
	if !ok {
		return sensors.GpsOutput{}, errkind.New(errkind.InvalidArgument, "no gps attached")
	}
	return s.Gps.GetOutput(), nil
}

func (a *Api) GetBarometer() (sensors.BarometerOutput, error) {
	s, ok := a.v.Sensors.Get("barometer")
	if !ok {
		return sensors.BarometerOutput{}, errkind.New(errkind.InvalidArgument, "no barometer attached")
	}
	return s.Barometer.GetOutput(), nil
}

func (a *Api) GetMagnetometer() (sensors.MagnetometerOutput, error) {
	s, ok := a.v.Sensors.Get("magnetometer")
	if !ok {
		return sensors.MagnetometerOutput{}, errkind.New(errkind.InvalidArgument, "no magnetometer attached")
	}
	return s.Magnetometer.GetOutput(), nil
}

func (a *Api) GetDistance() (sensors.DistanceOutput, error) {
	s, ok := a.v.Sensors.Get("distance")
	if !ok {
		return sensors.DistanceOutput{}, errkind.New(errkind.InvalidArgument, "no distance sensor attached")
	}
	return s.Distance.GetOutput(), nil
}

func (a *Api) GetLidar() (sensors.LidarOutput, error) {
	s, ok := a.v.Sensors.Get("lidar")
	if !ok {
		return sensors.LidarOutput{}, errkind.New(errkind.InvalidArgument, "no lidar attached")
	}
	return s.Lidar.GetOutput(), nil
}

// --- Multirotor commands ---

const positionTolerance = 0.5
const velocityTolerance = 0.5

func (a *Api) Takeoff(altitude spatial.Real) (*CommandToken, error) {
	if err := a.requireArmed(); err != nil {
		return nil, err
	}
	target := a.v.Kinematics.Pose.Position
	target.Z = -altitude
	goal := control.Goal{Mode: control.GoalPosition, Position: target}
	token := a.v.startCommand(a.now(), goal, 0, func(k *kinematics.Kinematics, _ spatial.TimeDelta) bool {
		return math.Abs(k.Pose.Position.Z-target.Z) < positionTolerance && k.Twist.Linear.Length() < velocityTolerance
	})
	return token, nil
}

func (a *Api) Land() (*CommandToken, error) {
	if err := a.requireArmed(); err != nil {
		return nil, err
	}
	target := a.v.Kinematics.Pose.Position
	target.Z = 0
	goal := control.Goal{Mode: control.GoalPosition, Position: target}
	token := a.v.startCommand(a.now(), goal, 0, func(k *kinematics.Kinematics, _ spatial.TimeDelta) bool {
		return -k.Pose.Position.Z < 0.15
	})
	return token, nil
}

func (a *Api) Hover() (*CommandToken, error) {
	if err := a.requireArmed(); err != nil {
		return nil, err
	}
	goal := control.Goal{Mode: control.GoalPosition, Position: a.v.Kinematics.Pose.Position}
	token := a.v.startCommand(a.now(), goal, 0, func(*kinematics.Kinematics, spatial.TimeDelta) bool { return true })
	return token, nil
}

// MoveToPositionOptions groups the seldom-varied parameters of
// move_to_position (spec §4.7). MoveToPosition accepts them but reads none
// of them: the controller tracks the target with its own gains and holds
// the current yaw regardless of Drivetrain or YawMode.
type MoveToPositionOptions struct {
	Speed              spatial.Real
	Drivetrain         Drivetrain
	YawMode            YawMode
	Lookahead          spatial.Real
	AdaptiveLookahead  bool
}

func (a *Api) MoveToPosition(target spatial.Vec3, opts MoveToPositionOptions) (*CommandToken, error) {
	if err := a.requireArmed(); err != nil {
		return nil, err
	}
	goal := control.Goal{Mode: control.GoalPosition, Position: target}
	token := a.v.startCommand(a.now(), goal, 0, func(k *kinematics.Kinematics, _ spatial.TimeDelta) bool {
		return k.Pose.Position.DistanceTo(target) < positionTolerance
	})
	return token, nil
}

func (a *Api) MoveByVelocity(vel spatial.Vec3, duration spatial.Real) (*CommandToken, error) {
	if err := a.requireArmed(); err != nil {
		return nil, err
	}
	goal := control.Goal{Mode: control.GoalVelocity, Velocity: vel}
	deadline := spatial.SecondsToDelta(duration)
	token := a.v.startCommand(a.now(), goal, deadline, func(_ *kinematics.Kinematics, elapsed spatial.TimeDelta) bool {
		return elapsed >= deadline
	})
	return token, nil
}

func (a *Api) MoveByAngleRates(rates spatial.Vec3, z spatial.Real, duration spatial.Real) (*CommandToken, error) {
	if err := a.requireArmed(); err != nil {
		return nil, err
	}
	goal := control.Goal{Mode: control.GoalRate, Rates: rates, ZTarget: z}
	deadline := spatial.SecondsToDelta(duration)
	token := a.v.startCommand(a.now(), goal, deadline, func(_ *kinematics.Kinematics, elapsed spatial.TimeDelta) bool {
		return elapsed >= deadline
	})
	return token, nil
}

func (a *Api) SetRcData(rc RcData) (*CommandToken, error) {
	if err := a.requireArmed(); err != nil {
		return nil, err
	}
	goal := control.Goal{Mode: control.GoalPassthrough, Raw: spatial.Vec3{X: rc.Pitch, Y: rc.Roll, Z: rc.Throttle*2 - 1}}
	token := a.v.startCommand(a.now(), goal, 0, func(*kinematics.Kinematics, spatial.TimeDelta) bool { return true })
	return token, nil
}

// --- Car commands ---

func (a *Api) SetControls(c CarControls) error {
	if a.v.Kind != KindCar {
		return errkind.New(errkind.InvalidArgument, "SetControls is only valid on car vehicles")
	}
	if err := a.requireArmed(); err != nil {
		return err
	}
	a.v.carControls = c
	goal := control.Goal{Mode: control.GoalPassthrough, Raw: spatial.Vec3{X: c.Throttle - c.Brake, Y: c.Steering, Z: 0}}
	a.v.startCommand(a.now(), goal, 0, func(*kinematics.Kinematics, spatial.TimeDelta) bool { return true })
	return nil
}

// GetControls returns the last CarControls applied via SetControls. It is
// zero-valued until the first call on a car, and always zero on a
// multirotor.
func (a *Api) GetControls() CarControls {
	return a.v.carControls
}

func (a *Api) now() spatial.TimePoint {
	// The vehicle records timestamps as of its last Update tick; commands
	// issued between ticks are timestamped at that tick, which is
	// sufficient since duration windows are measured in elapsed ticks.
	return a.v.lastTick
}
