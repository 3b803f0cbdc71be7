// Package physics implements the fixed-period rigid-body integration
// described in spec §4.3: PhysicsEngine advances every registered body by
// exactly one step, and ExternalPhysicsEngine refreshes derived kinematics
// only, for hosts that own motion themselves.
package physics

import (
	"github.com/hashicorp/go-multierror"

	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Body is a registered rigid body: a name plus a pointer to the vehicle's
// live kinematics/environment, and its mass properties. PhysicsEngine
// borrows Kinematics/Environment mutably during a step; it never copies
// them, per the ownership model in spec §3.
type Body struct {
	Name        string
	Kinematics  *kinematics.Kinematics
	Environment *kinematics.Environment
	Mass        spatial.Real
	// InertiaDiag is the diagonal of a body-frame inertia tensor
	// approximation; off-diagonal coupling is out of scope for this core.
	InertiaDiag spatial.Vec3
	// Functional is cleared when the body's state goes non-finite; a
	// non-functional body is skipped by Step and its last valid kinematics
	// are left in place, per the spec §7 quarantine policy.
	Functional bool
	// pendingForce/pendingTorque are supplied by the controller each tick
	// via ApplyForce/ApplyTorque and consumed (zeroed) by the next Step.
	pendingForce  spatial.Vec3
	pendingTorque spatial.Vec3
}

// NewBody registers a rigid body ready for integration.
func NewBody(name string, k *kinematics.Kinematics, env *kinematics.Environment, mass spatial.Real, inertiaDiag spatial.Vec3) *Body {
	return &Body{
		Name:        name,
		Kinematics:  k,
		Environment: env,
		Mass:        mass,
		InertiaDiag: inertiaDiag,
		Functional:  true,
	}
}

// ApplyForce accumulates a world-frame force to be integrated on the next
// Step; actuator mixers call this once per tick before the physics tick.
func (b *Body) ApplyForce(f spatial.Vec3) { b.pendingForce = b.pendingForce.Add(f) }

// ApplyTorque accumulates a body-frame torque for the next Step.
func (b *Body) ApplyTorque(t spatial.Vec3) { b.pendingTorque = b.pendingTorque.Add(t) }

// Engine is a fixed-period integrator over a set of registered bodies.
type Engine struct {
	bodies    []*Body
	wind      spatial.Vec3
	extForce  spatial.Vec3
}

// New builds an empty PhysicsEngine.
func New() *Engine {
	return &Engine{}
}

// Register adds a body to the engine. Order of registration is the
// deterministic integration order within a step.
func (e *Engine) Register(b *Body) { e.bodies = append(e.bodies, b) }

// Unregister removes a body by name, if present.
func (e *Engine) Unregister(name string) {
	for i, b := range e.bodies {
		if b.Name == name {
			e.bodies = append(e.bodies[:i], e.bodies[i+1:]...)
			return
		}
	}
}

// Body looks up a registered body by name.
func (e *Engine) Body(name string) (*Body, bool) {
	for _, b := range e.bodies {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// SetWind sets a uniform wind velocity affecting every body's drag term.
func (e *Engine) SetWind(w spatial.Vec3) { e.wind = w }

// SetExternalForce sets a single external force field (e.g. RPC-injected
// force) applied uniformly to every body in addition to per-body forces.
func (e *Engine) SetExternalForce(f spatial.Vec3) { e.extForce = f }

// Reset clears wind/external force but leaves registered bodies in place;
// callers reset each body's own Kinematics separately since PhysicsEngine
// does not own vehicle lifecycle.
func (e *Engine) Reset() {
	e.wind = spatial.ZeroVec3
	e.extForce = spatial.ZeroVec3
	for _, b := range e.bodies {
		b.pendingForce = spatial.ZeroVec3
		b.pendingTorque = spatial.ZeroVec3
		b.Functional = true
	}
}

const dragCoefficient = 0.05

// Step advances every registered, functional body by exactly dt: integrate
// forces into twist, integrate twist into pose, renormalize orientation,
// and refresh accelerations for consumers. Given identical initial state and
// inputs, repeated calls produce identical trajectories (subject to
// floating-point associativity), satisfying the determinism contract in
// spec §4.3. A body that fails to integrate is quarantined but does not
// abort the tick: every other registered body still gets stepped, per the
// spec §7 propagation policy ("the rest of the simulation continues").
func (e *Engine) Step(dt spatial.TimeDelta) error {
	dtSec := dt.Seconds()
	if dtSec <= 0 {
		return errkind.New(errkind.InvalidArgument, "physics step requires dt > 0")
	}
	var errs *multierror.Error
	for _, b := range e.bodies {
		if !b.Functional {
			continue
		}
		if err := e.stepBody(b, dtSec); err != nil {
			b.Functional = false
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (e *Engine) stepBody(b *Body, dt spatial.Real) error {
	k := b.Kinematics
	env := b.Environment
	prev := *k

	relWind := e.wind.Sub(k.Twist.Linear)
	drag := relWind.Scale(dragCoefficient * b.Mass)

	totalForce := b.pendingForce.Add(e.extForce).Add(drag).Add(env.Gravity.Scale(b.Mass))
	linearAccel := totalForce.Scale(1 / b.Mass)

	angularAccel := spatial.Vec3{
		X: safeDiv(b.pendingTorque.X, b.InertiaDiag.X),
		Y: safeDiv(b.pendingTorque.Y, b.InertiaDiag.Y),
		Z: safeDiv(b.pendingTorque.Z, b.InertiaDiag.Z),
	}

	k.Twist.Linear = k.Twist.Linear.Add(linearAccel.Scale(dt))
	k.Twist.Angular = k.Twist.Angular.Add(angularAccel.Scale(dt))

	k.Pose.Position = k.Pose.Position.Add(k.Twist.Linear.Scale(dt))
	k.Pose.Orientation = k.Pose.Orientation.IntegrateBodyRate(k.Twist.Angular, dt)

	k.Accelerations.Linear = linearAccel
	k.Accelerations.Angular = angularAccel

	b.pendingForce = spatial.ZeroVec3
	b.pendingTorque = spatial.ZeroVec3

	if !k.IsFinite() {
		*k = prev
		return errkind.Newf(errkind.InternalError, "non-finite kinematics for body %q", b.Name)
	}
	return nil
}

func safeDiv(n, d spatial.Real) spatial.Real {
	if d == 0 {
		return 0
	}
	return n / d
}

// ExternalEngine skips force integration entirely; it only refreshes
// derived kinematics (accelerations) for consumers when a host engine
// (e.g. a 3D engine's own physics) owns motion, per spec §4.3.
type ExternalEngine struct {
	bodies []*Body
	prev   map[string]kinematics.Twist
}

// NewExternal builds an ExternalEngine.
func NewExternal() *ExternalEngine {
	return &ExternalEngine{prev: make(map[string]kinematics.Twist)}
}

func (e *ExternalEngine) Register(b *Body) { e.bodies = append(e.bodies, b) }

// Step recomputes each body's accelerations from the change in twist since
// the previous call, without touching position or twist; the orientation is
// only renormalized.
func (e *ExternalEngine) Step(dt spatial.TimeDelta) error {
	dtSec := dt.Seconds()
	if dtSec <= 0 {
		return errkind.New(errkind.InvalidArgument, "physics step requires dt > 0")
	}
	for _, b := range e.bodies {
		k := b.Kinematics
		prev := e.prev[b.Name]
		k.Accelerations.Linear = k.Twist.Linear.Sub(prev.Linear).Scale(1 / dtSec)
		k.Accelerations.Angular = k.Twist.Angular.Sub(prev.Angular).Scale(1 / dtSec)
		k.Normalize()
		e.prev[b.Name] = k.Twist
	}
	return nil
}

func (e *ExternalEngine) Reset() {
	for name := range e.prev {
		delete(e.prev, name)
	}
}
