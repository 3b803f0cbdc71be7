package control

import (
	"math"

	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// GoalMode selects which cascade layer a Goal enters at; axes above the
// entry layer are driven down to it (spec §4.6: "Goal modes drive which
// axes are position-, velocity-, angle-, or rate-controlled").
type GoalMode int

const (
	GoalPosition GoalMode = iota
	GoalVelocity
	GoalAngle
	GoalRate
	GoalPassthrough
	GoalConstant
)

// Goal is the command handed to Controller.Update each tick. Only the
// fields relevant to Mode are read.
type Goal struct {
	Mode     GoalMode
	Position spatial.Vec3 // world-frame target position
	Velocity spatial.Vec3 // world-frame target linear velocity
	Angles   spatial.Vec3 // roll,pitch,yaw target, radians
	Rates    spatial.Vec3 // body-frame target angular rate
	Raw      spatial.Vec3 // passthrough stick values, [-1,1] per axis
	ZTarget  spatial.Real // altitude target carried on the goal; Controller.Update does not read it
}

// ActuatorCommand is the cascade's final output: a thrust magnitude (along
// the vehicle's +z body axis, NED convention: negative is up) and a
// body-frame torque, which a vehicle-specific mixer (out of scope, owned by
// the collaborating firmware/3D-engine layer) turns into rotor/wheel
// commands. Here it is consumed directly by physics.Body.ApplyForce /
// ApplyTorque so the controller loop closes without a mixer stub.
type ActuatorCommand struct {
	Thrust spatial.Real
	Torque spatial.Vec3
}

// Controller composes the nested PID cascade of spec §4.6:
// outer position → middle velocity/angle → inner angle-rate → mixer.
type Controller struct {
	position   *PositionController
	velocity   *VelocityController
	angle      *AngleController
	angleRate  *AngleRateController
	passthrough PassthroughController
	constant   ConstantOutputController

	hoverThrust spatial.Real
	mass        spatial.Real

	currentMode GoalMode
}

// NewController builds a cascade with reasonable multirotor-scale gains.
// mass and hoverThrust size the thrust term so PositionControl/VelocityControl
// goals produce a physically plausible force.
func NewController(mass, hoverThrust spatial.Real) *Controller {
	return &Controller{
		position:    NewPositionController(0.6, 0.0, 0.15),
		velocity:    NewVelocityController(1.2, 0.15, 0.05),
		angle:       NewAngleController(6.0, 0.0, 0.3),
		angleRate:   NewAngleRateController(0.15, 0.02, 0.003),
		passthrough: PassthroughController{},
		mass:        mass,
		hoverThrust: hoverThrust,
		currentMode: GoalPosition,
	}
}

// Update runs the cascade against the goal, entering at the layer implied
// by goal.Mode, and returns the actuator command for this tick. Switching
// modes resets the integrators of any axis whose semantics changed, per
// spec §4.6.
func (c *Controller) Update(goal Goal, k *kinematics.Kinematics, dt spatial.Real) ActuatorCommand {
	if goal.Mode != c.currentMode {
		c.resetForModeChange(c.currentMode, goal.Mode)
		c.currentMode = goal.Mode
	}

	switch goal.Mode {
	case GoalConstant:
		c.constant.Value = spatial.Vec3{}
		return ActuatorCommand{}
	case GoalPassthrough:
		raw := c.passthrough.Update(goal.Raw)
		return ActuatorCommand{
			Thrust: c.hoverThrust * (1 + raw.Z),
			Torque: spatial.Vec3{X: raw.X, Y: raw.Y, Z: raw.Z}.Scale(0.5),
		}
	case GoalRate:
		return c.fromRates(goal.Rates, k, dt)
	case GoalAngle:
		rates := c.angle.Update(goal.Angles, quatToEuler(k.Pose.Orientation), dt)
		return c.fromRates(rates, k, dt)
	case GoalVelocity:
		return c.fromVelocity(goal.Velocity, k, dt)
	default: // GoalPosition
		velGoal := c.position.Update(goal.Position, k.Pose.Position, dt)
		return c.fromVelocity(velGoal, k, dt)
	}
}

func (c *Controller) fromVelocity(velGoal spatial.Vec3, k *kinematics.Kinematics, dt spatial.Real) ActuatorCommand {
	accelGoal := c.velocity.Update(velGoal, k.Twist.Linear, dt)
	// Tilt the thrust vector to realize the horizontal component of the
	// requested acceleration, matching how a multirotor achieves lateral
	// motion by banking rather than by a lateral rotor.
	targetAngles := spatial.Vec3{
		X: clampF(accelGoal.Y/9.81, -0.5, 0.5),  // roll from lateral accel
		Y: clampF(-accelGoal.X/9.81, -0.5, 0.5), // pitch from forward accel
		Z: quatToEuler(k.Pose.Orientation).Z,    // hold current yaw
	}
	rates := c.angle.Update(targetAngles, quatToEuler(k.Pose.Orientation), dt)
	cmd := c.fromRates(rates, k, dt)
	cmd.Thrust = c.hoverThrust - c.mass*accelGoal.Z
	return cmd
}

func (c *Controller) fromRates(rateGoal spatial.Vec3, k *kinematics.Kinematics, dt spatial.Real) ActuatorCommand {
	torque := c.angleRate.Update(rateGoal, k.Twist.Angular, dt)
	return ActuatorCommand{Thrust: c.hoverThrust, Torque: torque}
}

func (c *Controller) resetForModeChange(from, to GoalMode) {
	// Any axis whose controlling layer changed loses its integrator state;
	// conservatively reset every layer on any mode change since layer
	// boundaries do not align with a single axis in this cascade.
	c.position.Reset()
	c.velocity.Reset()
	c.angle.Reset()
	c.angleRate.Reset()
}

func clampF(v, lo, hi spatial.Real) spatial.Real {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// quatToEuler extracts roll/pitch/yaw (radians, Z-Y-X yaw-pitch-roll order) for the
// angle-tracking layers; the physics/geometry core otherwise stays entirely
// in quaternions.
func quatToEuler(q spatial.Quat) spatial.Vec3 {
	// roll (x-axis rotation)
	sinrCosp := 2 * (q.W*q.X + q.Y*q.Z)
	cosrCosp := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll := math.Atan2(sinrCosp, cosrCosp)

	// pitch (y-axis rotation)
	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	var pitch spatial.Real
	if sinp >= 1 {
		pitch = math.Pi / 2
	} else if sinp <= -1 {
		pitch = -math.Pi / 2
	} else {
		pitch = math.Asin(sinp)
	}

	// yaw (z-axis rotation)
	sinyCosp := 2 * (q.W*q.Z + q.X*q.Y)
	cosyCosp := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw := math.Atan2(sinyCosp, cosyCosp)

	return spatial.Vec3{X: roll, Y: pitch, Z: yaw}
}
