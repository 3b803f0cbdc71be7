package rpc

import (
	"testing"
	"time"

	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/sensors"
	"github.com/autonomysim/coresim/pkg/spatial"
	"github.com/autonomysim/coresim/pkg/vehicle"
)

func TestVec3RoundTrip(t *testing.T) {
	v := spatial.Vec3{X: 1, Y: -2, Z: 3.5}
	got := Vec3ToCore(Vec3ToWire(v))
	if got != v {
		t.Fatalf("expected Vec3 round trip to be exact, got %+v want %+v", got, v)
	}
}

func TestQuatRoundTrip(t *testing.T) {
	q := spatial.Quat{W: 0.7071, X: 0, Y: 0.7071, Z: 0}
	got := QuatToCore(QuatToWire(q))
	if got != q {
		t.Fatalf("expected Quat round trip to be exact, got %+v want %+v", got, q)
	}
}

func TestPoseRoundTrip(t *testing.T) {
	p := spatial.Pose{
		Position:    spatial.Vec3{X: 1, Y: 2, Z: 3},
		Orientation: spatial.Quat{W: 1},
	}
	got := PoseToCore(PoseToWire(p))
	if got != p {
		t.Fatalf("expected Pose round trip to be exact, got %+v want %+v", got, p)
	}
}

func TestKinematicsRoundTrip(t *testing.T) {
	k := kinematics.Kinematics{
		Pose:          spatial.Pose{Position: spatial.Vec3{X: 1}, Orientation: spatial.IdentityQuat},
		Twist:         kinematics.Twist{Linear: spatial.Vec3{X: 2}, Angular: spatial.Vec3{Y: 3}},
		Accelerations: kinematics.Accelerations{Linear: spatial.Vec3{Z: 4}, Angular: spatial.Vec3{X: 5}},
	}
	got := KinematicsToCore(KinematicsToWire(k))
	if got != k {
		t.Fatalf("expected Kinematics round trip to be exact, got %+v want %+v", got, k)
	}
}

func TestGeoPointRoundTrip(t *testing.T) {
	g := kinematics.GeoPoint{Latitude: 47.6, Longitude: -122.3, Altitude: 12.5}
	got := GeoPointToCore(GeoPointToWire(g))
	if got != g {
		t.Fatalf("expected GeoPoint round trip to be exact, got %+v want %+v", got, g)
	}
}

func TestGpsDataRoundTripPreservesUtcToMillisecondPrecision(t *testing.T) {
	o := sensors.GpsOutput{
		TimeStamp: 42,
		GeoPoint:  kinematics.GeoPoint{Latitude: 1, Longitude: 2, Altitude: 3},
		Eph:       1.5,
		Epv:       2.5,
		Velocity:  spatial.Vec3{X: 1},
		FixType:   sensors.GpsFix3D,
		TimeUtc:   time.UnixMilli(1700000000123).UTC(),
	}
	got := GpsDataToCore(GpsDataToWire(o))
	if !got.TimeUtc.Equal(o.TimeUtc) {
		t.Fatalf("expected TimeUtc round trip at millisecond precision, got %v want %v", got.TimeUtc, o.TimeUtc)
	}
	if got.FixType != o.FixType || got.Eph != o.Eph {
		t.Fatalf("expected the remaining GPS fields to round trip exactly, got %+v want %+v", got, o)
	}
}

func TestCarControlsRoundTrip(t *testing.T) {
	c := vehicle.CarControls{Throttle: 0.5, Steering: -0.2, Brake: 0.1, Handbrake: true, Gear: 1}
	got := CarControlsToCore(CarControlsToWire(c))
	if got != c {
		t.Fatalf("expected CarControls round trip to be exact, got %+v want %+v", got, c)
	}
}

func TestCarStateRoundTrip(t *testing.T) {
	s := CarState{
		Kinematics: kinematics.Kinematics{Pose: spatial.Pose{Orientation: spatial.IdentityQuat}},
		Controls:   vehicle.CarControls{Throttle: 1, Gear: 3},
	}
	got := CarStateToCore(CarStateToWire(s))
	if got != s {
		t.Fatalf("expected CarState round trip to be exact, got %+v want %+v", got, s)
	}
}

func TestCollisionInfoRoundTrip(t *testing.T) {
	c := CollisionInfo{
		HasCollided:      true,
		Position:         spatial.Vec3{X: 1},
		Normal:           spatial.Vec3{Y: 1},
		ImpactPoint:      spatial.Vec3{Z: 1},
		PenetrationDepth: 0.05,
		ObjectName:       "wall",
	}
	got := CollisionInfoToCore(CollisionInfoToWire(c))
	if got != c {
		t.Fatalf("expected CollisionInfo round trip to be exact, got %+v want %+v", got, c)
	}
}

func TestImageRequestRoundTrip(t *testing.T) {
	r := ImageRequest{CameraName: "front", ImageType: 2, PixelsAsFloat: true, Compress: false}
	got := ImageRequestToCore(ImageRequestToWire(r))
	if got != r {
		t.Fatalf("expected ImageRequest round trip to be exact, got %+v want %+v", got, r)
	}
}
