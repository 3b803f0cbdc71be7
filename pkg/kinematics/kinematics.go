// Package kinematics holds the per-vehicle ground-truth state (spec §3):
// pose, twist, accelerations, and the ambient environment sample a vehicle
// sits in. PhysicsEngine owns and mutates these; sensors and controllers
// only ever hold read-only borrows.
package kinematics

import (
	"math"

	"github.com/autonomysim/coresim/pkg/spatial"
)

// Twist is a linear/angular velocity pair, expressed in the body frame
// unless a caller explicitly documents otherwise.
type Twist struct {
	Linear  spatial.Vec3
	Angular spatial.Vec3
}

// Accelerations is a linear/angular acceleration pair.
type Accelerations struct {
	Linear  spatial.Vec3
	Angular spatial.Vec3
}

// Kinematics is one vehicle's ground-truth motion state.
type Kinematics struct {
	Pose          spatial.Pose
	Twist         Twist
	Accelerations Accelerations
}

// Normalize renormalizes orientation in place. PhysicsEngine calls this
// after every integration step so the "orientation is normalized after
// every update" invariant in spec §3 always holds; nothing else should need
// to call it.
func (k *Kinematics) Normalize() {
	k.Pose.Orientation = k.Pose.Orientation.Normalized()
}

// IsFinite reports whether every field is a finite real number. PhysicsEngine
// uses this to detect NaN propagation and quarantine the offending body per
// the spec §7 propagation policy.
func (k Kinematics) IsFinite() bool {
	return k.Pose.Position.IsFinite() &&
		k.Pose.Orientation.IsFinite() &&
		k.Twist.Linear.IsFinite() && k.Twist.Angular.IsFinite() &&
		k.Accelerations.Linear.IsFinite() && k.Accelerations.Angular.IsFinite()
}

// Environment is the ambient condition sample a vehicle's position implies:
// gravity, air properties, and its geodetic fix.
type Environment struct {
	Position    spatial.Vec3
	GeoPoint    GeoPoint
	Gravity     spatial.Vec3
	AirPressure spatial.Real
	Temperature spatial.Real
	AirDensity  spatial.Real
}

// GeoPoint is a WGS84-ish geodetic fix; lat/lon are double precision
// regardless of the module's configured Real width, matching how GPS
// receivers report position.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
	Altitude  spatial.Real
}

// StandardAtmosphere returns the environment sample for a position at sea
// level under ISA conditions, translated by the position's altitude using
// the barometric formula. home is the reference geo-point at zero altitude.
func StandardAtmosphere(position spatial.Vec3, home GeoPoint) Environment {
	const (
		seaLevelPressure = 101325.0 // Pa
		seaLevelTemp     = 288.15   // K
		lapseRate        = 0.0065   // K/m
		gasConstant      = 8.31447
		molarMassAir     = 0.0289644
		g0               = 9.80665
	)
	altitude := -position.Z // NED: -Z is up
	temp := seaLevelTemp - lapseRate*altitude
	pressure := seaLevelPressure * math.Pow(1-(lapseRate*altitude)/seaLevelTemp, (g0*molarMassAir)/(gasConstant*lapseRate))
	density := pressure * molarMassAir / (gasConstant * temp)

	return Environment{
		Position:    position,
		GeoPoint:    GeoPoint{Latitude: home.Latitude, Longitude: home.Longitude, Altitude: home.Altitude - position.Z},
		Gravity:     spatial.Vec3{Z: g0},
		AirPressure: pressure,
		Temperature: temp,
		AirDensity:  density,
	}
}
