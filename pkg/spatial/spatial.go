// Package spatial defines the scalar and geometric primitives shared by
// every simulation component: time points, vectors, quaternions, and poses.
package spatial

import "math"

// Real is the module's configurable-precision floating type. It defaults to
// float64 for headroom in tests that check tight numerical tolerances; the
// physics and sensor layers never assume a wider or narrower type than this.
type Real = float64

// TimePoint is a 64-bit nanosecond monotonic counter, always read through
// the clock package and never through the host clock directly.
type TimePoint int64

// TimeDelta is a signed nanosecond duration.
type TimeDelta int64

// Sub returns a-b as a TimeDelta.
func (a TimePoint) Sub(b TimePoint) TimeDelta { return TimeDelta(a - b) }

// Add returns a TimePoint offset by d.
func (a TimePoint) Add(d TimeDelta) TimePoint { return TimePoint(int64(a) + int64(d)) }

// Seconds converts a TimeDelta to floating-point seconds.
func (d TimeDelta) Seconds() Real { return Real(d) / 1e9 }

// SecondsToDelta converts floating-point seconds to a TimeDelta.
func SecondsToDelta(s Real) TimeDelta { return TimeDelta(s * 1e9) }

// Vec3 is a 3-component real vector.
type Vec3 struct {
	X, Y, Z Real
}

// ZeroVec3 is the additive identity.
var ZeroVec3 = Vec3{}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s Real) Vec3    { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) Real      { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) LengthSq() Real       { return v.Dot(v) }
func (v Vec3) Length() Real         { return math.Sqrt(v.LengthSq()) }
func (v Vec3) DistanceTo(o Vec3) Real { return v.Sub(o).Length() }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalized returns v/|v|, or the zero vector if v is (near) zero length.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < 1e-12 {
		return ZeroVec3
	}
	return v.Scale(1 / l)
}

// ClampLength returns v scaled down so its length does not exceed max; v is
// returned unchanged if it is already within budget.
func (v Vec3) ClampLength(max Real) Vec3 {
	l := v.Length()
	if l <= max || l < 1e-12 {
		return v
	}
	return v.Scale(max / l)
}

func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// Quat is a w-first quaternion; identity is (1,0,0,0).
type Quat struct {
	W, X, Y, Z Real
}

// IdentityQuat is the rotation identity.
var IdentityQuat = Quat{W: 1}

func (q Quat) LengthSq() Real { return q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z }
func (q Quat) Length() Real   { return math.Sqrt(q.LengthSq()) }

// Normalized returns q/|q|, or the identity quaternion if q is degenerate.
func (q Quat) Normalized() Quat {
	l := q.Length()
	if l < 1e-12 {
		return IdentityQuat
	}
	inv := 1 / l
	return Quat{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// Mul composes rotations: applying q.Mul(r) rotates by r first, then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

func (q Quat) Conjugate() Quat { return Quat{q.W, -q.X, -q.Y, -q.Z} }

// Rotate applies the quaternion's rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	p := Quat{0, v.X, v.Y, v.Z}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vec3{r.X, r.Y, r.Z}
}

// IntegrateBodyRate advances a quaternion by a body-frame angular velocity
// over dt seconds, using the first-order quaternion derivative, and
// renormalizes the result. This is the sole place PhysicsEngine integrates
// orientation, so the "orientation is normalized after every update"
// invariant in §3 holds by construction.
func (q Quat) IntegrateBodyRate(omega Vec3, dt Real) Quat {
	omegaQuat := Quat{0, omega.X, omega.Y, omega.Z}
	dq := q.Mul(omegaQuat)
	next := Quat{
		W: q.W + 0.5*dt*dq.W,
		X: q.X + 0.5*dt*dq.X,
		Y: q.Y + 0.5*dt*dq.Y,
		Z: q.Z + 0.5*dt*dq.Z,
	}
	return next.Normalized()
}

func (q Quat) IsFinite() bool {
	return !math.IsNaN(q.W) && !math.IsNaN(q.X) && !math.IsNaN(q.Y) && !math.IsNaN(q.Z)
}

// ForwardAxis returns the body +x axis rotated into the world frame.
func (q Quat) ForwardAxis() Vec3 { return q.Rotate(Vec3{X: 1}) }

// QuatFromAxisAngle builds a rotation of angle radians around axis.
func QuatFromAxisAngle(axis Vec3, angle Real) Quat {
	a := axis.Normalized()
	half := angle / 2
	s := math.Sin(half)
	return Quat{W: math.Cos(half), X: a.X * s, Y: a.Y * s, Z: a.Z * s}
}

// QuatLookAt builds the shortest rotation whose forward axis (+x) points
// along dir, keeping roll at zero. Used by FormationController when aligning
// desired orientation with desired velocity.
func QuatLookAt(dir Vec3) Quat {
	d := dir.Normalized()
	if d == ZeroVec3 {
		return IdentityQuat
	}
	fwd := Vec3{X: 1}
	dot := clamp(fwd.Dot(d), -1, 1)
	axis := fwd.Cross(d)
	if axis.Length() < 1e-9 {
		if dot > 0 {
			return IdentityQuat
		}
		return QuatFromAxisAngle(Vec3{Z: 1}, math.Pi)
	}
	return QuatFromAxisAngle(axis, math.Acos(dot))
}

func clamp(v, lo, hi Real) Real {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Pose is a position/orientation pair.
type Pose struct {
	Position    Vec3
	Orientation Quat
}

// Rotate applies the pose's orientation and then its translation to a
// pose-frame offset, mapping it into world space.
func (p Pose) Transform(offset Vec3) Vec3 {
	return p.Orientation.Rotate(offset).Add(p.Position)
}
