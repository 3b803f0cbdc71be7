package control

import "github.com/autonomysim/coresim/pkg/spatial"

// AxisPid bundles one Pid per axis of a Vec3 quantity.
type AxisPid struct {
	X, Y, Z *Pid
}

// NewAxisPid builds three independent Pids with identical gains; callers
// needing per-axis tuning construct the fields directly instead.
func NewAxisPid(p, i, d, integralMax spatial.Real) *AxisPid {
	return &AxisPid{X: NewPid(p, i, d, integralMax), Y: NewPid(p, i, d, integralMax), Z: NewPid(p, i, d, integralMax)}
}

func (a *AxisPid) Update(goal, measured spatial.Vec3, dt spatial.Real) spatial.Vec3 {
	return spatial.Vec3{
		X: a.X.Update(goal.X, measured.X, dt),
		Y: a.Y.Update(goal.Y, measured.Y, dt),
		Z: a.Z.Update(goal.Z, measured.Z, dt),
	}
}

func (a *AxisPid) Reset() {
	a.X.Reset()
	a.Y.Reset()
	a.Z.Reset()
}

// AngleRateController tracks a goal body angular rate against measured
// angular velocity, one PID per axis (spec §4.6).
type AngleRateController struct{ pid *AxisPid }

func NewAngleRateController(p, i, d spatial.Real) *AngleRateController {
	return &AngleRateController{pid: NewAxisPid(p, i, d, 1.0)}
}

func (c *AngleRateController) Update(goalRate, measuredRate spatial.Vec3, dt spatial.Real) spatial.Vec3 {
	return c.pid.Update(goalRate, measuredRate, dt)
}
func (c *AngleRateController) Reset() { c.pid.Reset() }

// AngleController tracks a goal orientation (as roll/pitch/yaw radians)
// against measured orientation, outputting a goal axis-rate for
// AngleRateController (spec §4.6).
type AngleController struct{ pid *AxisPid }

func NewAngleController(p, i, d spatial.Real) *AngleController {
	return &AngleController{pid: NewAxisPid(p, i, d, 2.0)}
}

func (c *AngleController) Update(goalAngles, measuredAngles spatial.Vec3, dt spatial.Real) spatial.Vec3 {
	return c.pid.Update(goalAngles, measuredAngles, dt)
}
func (c *AngleController) Reset() { c.pid.Reset() }

// VelocityController tracks a goal linear velocity, outputting a goal
// acceleration/angle for the next layer down (spec §4.6).
type VelocityController struct{ pid *AxisPid }

func NewVelocityController(p, i, d spatial.Real) *VelocityController {
	return &VelocityController{pid: NewAxisPid(p, i, d, 5.0)}
}

func (c *VelocityController) Update(goalVel, measuredVel spatial.Vec3, dt spatial.Real) spatial.Vec3 {
	return c.pid.Update(goalVel, measuredVel, dt)
}
func (c *VelocityController) Reset() { c.pid.Reset() }

// PositionController tracks a goal world position, outputting a goal
// velocity for VelocityController (spec §4.6).
type PositionController struct{ pid *AxisPid }

func NewPositionController(p, i, d spatial.Real) *PositionController {
	return &PositionController{pid: NewAxisPid(p, i, d, 10.0)}
}

func (c *PositionController) Update(goalPos, measuredPos spatial.Vec3, dt spatial.Real) spatial.Vec3 {
	return c.pid.Update(goalPos, measuredPos, dt)
}
func (c *PositionController) Reset() { c.pid.Reset() }

// PassthroughController outputs the goal unchanged, used when the client
// provides raw stick values (spec §4.6).
type PassthroughController struct{}

func (PassthroughController) Update(goal spatial.Vec3) spatial.Vec3 { return goal }

// ConstantOutputController emits a fixed value regardless of input, used
// for disarmed or failsafe states (spec §4.6).
type ConstantOutputController struct{ Value spatial.Vec3 }

func (c ConstantOutputController) Update() spatial.Vec3 { return c.Value }
