package formation

import (
	"math"
	"testing"

	"github.com/autonomysim/coresim/pkg/spatial"
)

func approxVec3(t *testing.T, got, want spatial.Vec3, tol spatial.Real) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol || math.Abs(got.Z-want.Z) > tol {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestOffsetLineCentersOnMiddleMember(t *testing.T) {
	p := DefaultParams()
	// n=5, spacing=5: offsets are (i-2)*5 for i=0..4 -> -10,-5,0,5,10
	want := []spatial.Real{-10, -5, 0, 5, 10}
	for i := 0; i < 5; i++ {
		off := Offset(ShapeLine, i, 5, p)
		if off.Y != want[i] {
			t.Fatalf("member %d: expected Y=%v, got %v", i, want[i], off.Y)
		}
		if off.X != 0 || off.Z != 0 {
			t.Fatalf("member %d: expected a purely lateral offset, got %+v", i, off)
		}
	}
}

func TestOffsetColumnTrailsBehindLeader(t *testing.T) {
	p := DefaultParams()
	off := Offset(ShapeColumn, 2, 4, p)
	want := spatial.Vec3{X: -2 * p.Spacing}
	approxVec3(t, off, want, 1e-9)
}

func TestOffsetCircleEvenlySpacesMembers(t *testing.T) {
	p := DefaultParams()
	n := 4
	for i := 0; i < n; i++ {
		off := Offset(ShapeCircle, i, n, p)
		dist := math.Sqrt(off.X*off.X + off.Y*off.Y)
		if math.Abs(dist-p.Radius) > 1e-9 {
			t.Fatalf("member %d: expected distance %v from center, got %v", i, p.Radius, dist)
		}
	}
	// member 0 sits at angle 0: (radius, 0)
	off0 := Offset(ShapeCircle, 0, n, p)
	approxVec3(t, off0, spatial.Vec3{X: p.Radius}, 1e-9)
}

func TestOffsetCircleEmptyFormation(t *testing.T) {
	p := DefaultParams()
	off := Offset(ShapeCircle, 0, 0, p)
	if off != (spatial.Vec3{}) {
		t.Fatalf("expected zero offset for an empty circle formation, got %+v", off)
	}
}

func TestOffsetDiamondLeaderAtOrigin(t *testing.T) {
	p := DefaultParams()
	off := Offset(ShapeDiamond, 0, 5, p)
	if off != (spatial.Vec3{}) {
		t.Fatalf("expected the diamond leader slot to be at the origin, got %+v", off)
	}
}

func TestOffsetCustomUsesProvidedOffsets(t *testing.T) {
	custom := spatial.Vec3{X: 1, Y: 2, Z: 3}
	p := Params{CustomOffsets: []spatial.Vec3{{}, custom}}
	off := Offset(ShapeCustom, 1, 2, p)
	if off != custom {
		t.Fatalf("expected the custom offset to be returned verbatim, got %+v", off)
	}
}

func TestOffsetCustomOutOfRangeIsZero(t *testing.T) {
	p := Params{CustomOffsets: []spatial.Vec3{{X: 1}}}
	off := Offset(ShapeCustom, 5, 6, p)
	if off != (spatial.Vec3{}) {
		t.Fatalf("expected zero offset for an out-of-range custom index, got %+v", off)
	}
}

func TestDesiredPositionAppliesLeaderPose(t *testing.T) {
	p := DefaultParams()
	leader := spatial.Pose{Position: spatial.Vec3{X: 100, Y: 0, Z: 0}, Orientation: spatial.IdentityQuat}
	pos := DesiredPosition(ShapeLine, 2, 5, leader, p)
	// member index 2 of 5 has zero line offset, so desired position is exactly the leader's.
	approxVec3(t, pos, leader.Position, 1e-9)
}

func TestComputeHoldsStationWhenAtDesiredPosition(t *testing.T) {
	p := DefaultParams()
	leader := spatial.Pose{Position: spatial.Vec3{}, Orientation: spatial.IdentityQuat}
	cmd := Compute(ShapeLine, 2, 5, leader, spatial.Vec3{}, spatial.Vec3{}, spatial.Vec3{}, nil, spatial.IdentityQuat, p)
	if cmd.Velocity.Length() > 1e-9 {
		t.Fatalf("expected zero commanded velocity when already at the desired position with no neighbors, got %+v", cmd.Velocity)
	}
}

func TestComputeSeparationPushesAwayFromCloseNeighbor(t *testing.T) {
	p := DefaultParams()
	leader := spatial.Pose{Position: spatial.Vec3{}, Orientation: spatial.IdentityQuat}
	// Member 2 of 5 in a line wants to be at the origin; a neighbor sitting
	// right on top of it should push the commanded velocity away.
	neighbor := Neighbor{Position: spatial.Vec3{X: 0.1}, Velocity: spatial.Vec3{}}
	cmd := Compute(ShapeLine, 2, 5, leader, spatial.Vec3{}, spatial.Vec3{}, spatial.Vec3{}, []Neighbor{neighbor}, spatial.IdentityQuat, p)
	if cmd.Velocity.X >= 0 {
		t.Fatalf("expected separation to push velocity in the -X direction away from the neighbor, got %+v", cmd.Velocity)
	}
}

func TestComputeClampsToMaxVelocity(t *testing.T) {
	p := DefaultParams()
	p.MaxAcceleration = 1000
	leader := spatial.Pose{Position: spatial.Vec3{X: 1000}, Orientation: spatial.IdentityQuat}
	cmd := Compute(ShapeLine, 2, 5, leader, spatial.Vec3{}, spatial.Vec3{}, spatial.Vec3{}, nil, spatial.IdentityQuat, p)
	if cmd.Velocity.Length() > p.MaxVelocity+1e-6 {
		t.Fatalf("expected commanded velocity to be clamped to MaxVelocity=%v, got %v", p.MaxVelocity, cmd.Velocity.Length())
	}
}
