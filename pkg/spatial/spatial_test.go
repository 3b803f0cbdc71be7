package spatial

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want, tol Real) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %v, want %v (tol %v)", got, want, tol)
	}
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 5, Z: 6}
	if a.Add(b) != (Vec3{5, 7, 9}) {
		t.Fatalf("unexpected Add result")
	}
	if a.Sub(b) != (Vec3{-3, -3, -3}) {
		t.Fatalf("unexpected Sub result")
	}
	if a.Scale(2) != (Vec3{2, 4, 6}) {
		t.Fatalf("unexpected Scale result")
	}
	if a.Neg() != (Vec3{-1, -2, -3}) {
		t.Fatalf("unexpected Neg result")
	}
}

func TestVec3DotAndCross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	if x.Dot(y) != 0 {
		t.Fatalf("expected orthogonal unit vectors to have zero dot product")
	}
	if x.Cross(y) != (Vec3{Z: 1}) {
		t.Fatalf("expected x cross y to be z, got %+v", x.Cross(y))
	}
}

func TestVec3Normalized(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	n := v.Normalized()
	approx(t, n.Length(), 1, 1e-9)
	if (Vec3{}).Normalized() != (Vec3{}) {
		t.Fatalf("expected the zero vector to normalize to itself, not NaN")
	}
}

func TestVec3ClampLength(t *testing.T) {
	v := Vec3{X: 10}
	got := v.ClampLength(5)
	approx(t, got.Length(), 5, 1e-9)

	within := Vec3{X: 1}
	if within.ClampLength(5) != within {
		t.Fatalf("expected a vector already within budget to be returned unchanged")
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Fatalf("expected a normal vector to be finite")
	}
	if (Vec3{X: math.NaN()}).IsFinite() {
		t.Fatalf("expected a NaN component to be reported non-finite")
	}
	if (Vec3{X: math.Inf(1)}).IsFinite() {
		t.Fatalf("expected an infinite component to be reported non-finite")
	}
}

func TestQuatIdentityRotationIsNoOp(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	got := IdentityQuat.Rotate(v)
	approx(t, got.X, v.X, 1e-9)
	approx(t, got.Y, v.Y, 1e-9)
	approx(t, got.Z, v.Z, 1e-9)
}

func TestQuatFromAxisAngleRotatesQuarterTurn(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Z: 1}, math.Pi/2)
	got := q.Rotate(Vec3{X: 1})
	approx(t, got.X, 0, 1e-9)
	approx(t, got.Y, 1, 1e-9)
}

func TestQuatNormalizedDegenerateFallsBackToIdentity(t *testing.T) {
	if (Quat{}).Normalized() != IdentityQuat {
		t.Fatalf("expected a degenerate quaternion to normalize to identity")
	}
}

func TestQuatIntegrateBodyRateStaysNormalized(t *testing.T) {
	q := IdentityQuat
	for i := 0; i < 100; i++ {
		q = q.IntegrateBodyRate(Vec3{Z: 1}, 0.01)
	}
	approx(t, q.Length(), 1, 1e-6)
}

func TestQuatLookAtPointsForwardAxisAlongDir(t *testing.T) {
	q := QuatLookAt(Vec3{Y: 1})
	fwd := q.ForwardAxis()
	approx(t, fwd.X, 0, 1e-9)
	approx(t, fwd.Y, 1, 1e-9)
}

func TestQuatLookAtOppositeDirection(t *testing.T) {
	q := QuatLookAt(Vec3{X: -1})
	fwd := q.ForwardAxis()
	approx(t, fwd.X, -1, 1e-9)
}

func TestQuatLookAtZeroDirFallsBackToIdentity(t *testing.T) {
	if QuatLookAt(Vec3{}) != IdentityQuat {
		t.Fatalf("expected a zero direction to fall back to identity")
	}
}

func TestPoseTransformComposesRotationThenTranslation(t *testing.T) {
	p := Pose{Position: Vec3{X: 10}, Orientation: QuatFromAxisAngle(Vec3{Z: 1}, math.Pi/2)}
	got := p.Transform(Vec3{X: 1})
	approx(t, got.X, 10, 1e-9)
	approx(t, got.Y, 1, 1e-9)
}

func TestTimePointArithmetic(t *testing.T) {
	a := TimePoint(100)
	b := a.Add(SecondsToDelta(1))
	if b.Sub(a) != SecondsToDelta(1) {
		t.Fatalf("expected Add/Sub to be inverses")
	}
}

func TestSecondsToDeltaRoundTrip(t *testing.T) {
	d := SecondsToDelta(2.5)
	approx(t, d.Seconds(), 2.5, 1e-9)
}
