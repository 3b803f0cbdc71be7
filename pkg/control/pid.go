// Package control implements the cascaded flight/driving firmware of spec
// §4.6: a tree of PID loops (position → velocity/angle → angle-rate) plus
// pass-through and constant-output leaves, composed per goal mode, driving
// a per-vehicle armed/flying state machine.
package control

import "github.com/autonomysim/coresim/pkg/spatial"

// Pid is a single-axis PID with bounded-integrator anti-windup.
type Pid struct {
	P, I, D    spatial.Real
	IntegralMax spatial.Real // symmetric clamp on the accumulated integral

	integral  spatial.Real
	prevError spatial.Real
	haveLast  bool
}

// NewPid builds a Pid with the given gains and integrator clamp.
func NewPid(p, i, d, integralMax spatial.Real) *Pid {
	return &Pid{P: p, I: i, D: d, IntegralMax: integralMax}
}

// Update produces an output from (goal, measured, dt); dt<=0 is treated as
// a derivative-free pass (integral/derivative terms are skipped) to avoid
// divide-by-zero on the first call.
func (c *Pid) Update(goal, measured, dt spatial.Real) spatial.Real {
	err := goal - measured
	if dt <= 0 {
		return c.P * err
	}

	c.integral += err * dt
	if c.IntegralMax > 0 {
		if c.integral > c.IntegralMax {
			c.integral = c.IntegralMax
		} else if c.integral < -c.IntegralMax {
			c.integral = -c.IntegralMax
		}
	}

	var derivative spatial.Real
	if c.haveLast {
		derivative = (err - c.prevError) / dt
	}
	c.prevError = err
	c.haveLast = true

	return c.P*err + c.I*c.integral + c.D*derivative
}

// Reset clears integrator and derivative memory, the way switching goal
// modes resets any integrator on an axis whose semantics changed (spec
// §4.6).
func (c *Pid) Reset() {
	c.integral = 0
	c.prevError = 0
	c.haveLast = false
}
