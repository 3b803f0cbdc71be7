package kinematics

import (
	"math"
	"testing"

	"github.com/autonomysim/coresim/pkg/spatial"
)

func TestNormalizeRenormalizesOrientation(t *testing.T) {
	k := Kinematics{Pose: spatial.Pose{Orientation: spatial.Quat{W: 2}}}
	k.Normalize()
	if math.Abs(k.Pose.Orientation.Length()-1) > 1e-9 {
		t.Fatalf("expected Normalize to renormalize orientation to unit length, got %v", k.Pose.Orientation.Length())
	}
}

func TestIsFiniteDetectsNaN(t *testing.T) {
	k := Kinematics{Pose: spatial.Pose{Orientation: spatial.IdentityQuat}}
	if !k.IsFinite() {
		t.Fatalf("expected a zero-valued Kinematics to be finite")
	}
	k.Twist.Linear.X = math.NaN()
	if k.IsFinite() {
		t.Fatalf("expected NaN propagation into Twist to be detected")
	}
}

func TestStandardAtmosphereAtHomeAltitude(t *testing.T) {
	home := GeoPoint{Latitude: 47.6, Longitude: -122.3, Altitude: 100}
	env := StandardAtmosphere(spatial.Vec3{}, home)

	if math.Abs(env.Temperature-288.15) > 1e-6 {
		t.Fatalf("expected sea-level-equivalent temperature at the home altitude, got %v", env.Temperature)
	}
	if math.Abs(env.AirPressure-101325.0) > 1e-6 {
		t.Fatalf("expected sea-level-equivalent pressure at the home altitude, got %v", env.AirPressure)
	}
	if env.GeoPoint.Latitude != home.Latitude || env.GeoPoint.Longitude != home.Longitude {
		t.Fatalf("expected lat/lon to pass through from home unchanged")
	}
}

func TestStandardAtmosphereDecreasesWithAltitude(t *testing.T) {
	home := GeoPoint{Altitude: 0}
	// NED: -Z is up, so a negative Z position is a higher altitude.
	low := StandardAtmosphere(spatial.Vec3{Z: 0}, home)
	high := StandardAtmosphere(spatial.Vec3{Z: -1000}, home)

	if high.AirPressure >= low.AirPressure {
		t.Fatalf("expected pressure to drop with altitude, got low=%v high=%v", low.AirPressure, high.AirPressure)
	}
	if high.Temperature >= low.Temperature {
		t.Fatalf("expected temperature to drop with altitude, got low=%v high=%v", low.Temperature, high.Temperature)
	}
}
