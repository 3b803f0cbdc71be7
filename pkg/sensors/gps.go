package sensors

import (
	"math"
	"math/rand"
	"time"

	"github.com/autonomysim/coresim/pkg/delayline"
	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// GpsFixType mirrors common GNSS fix-type enums.
type GpsFixType int

const (
	GpsFixNone GpsFixType = iota
	GpsFix2D
	GpsFix3D
	GpsFixDGPS
	GpsFixRTK
)

// GpsOutput is GPS's latched reading.
type GpsOutput struct {
	TimeStamp spatial.TimePoint
	GeoPoint  kinematics.GeoPoint
	Eph       spatial.Real // horizontal DOP-derived error estimate, meters
	Epv       spatial.Real // vertical error estimate, meters
	Velocity  spatial.Vec3
	FixType   GpsFixType
	TimeUtc   time.Time
}

type GpsParams struct {
	Frequency    spatial.Real
	StartupDelay spatial.TimeDelta
	OutputDelay  spatial.TimeDelta
	Seed         int64
	HorizontalDOP spatial.Real
	VerticalDOP   spatial.Real
	PositionNoise spatial.Real // meters/sqrt(Hz), applied to lat/lon/alt via a local NED approximation
	Home          kinematics.GeoPoint
	FixType       GpsFixType
}

func DefaultGpsParams(home kinematics.GeoPoint) GpsParams {
	return GpsParams{
		Frequency:     10,
		HorizontalDOP: 1.0,
		VerticalDOP:   1.5,
		PositionNoise: 0.5,
		Home:          home,
		FixType:       GpsFix3D,
	}
}

// Gps synthesizes geodetic position/velocity readings by converting the
// vehicle's local NED offset from Home into a lat/lon delta.
type Gps struct {
	params   GpsParams
	schedule Schedule
	rng      *rand.Rand
	delay    *delayline.DelayLine[GpsOutput]
}

func NewGps(params GpsParams) *Gps {
	s := &Gps{params: params, delay: newDelay[GpsOutput]()}
	s.schedule.Frequency = params.Frequency
	s.schedule.StartupDelay = params.StartupDelay
	s.rng = newRNG(params.Seed)
	return s
}

func (s *Gps) Name() string { return "gps" }

func (s *Gps) Reset() {
	s.schedule.Reset()
	s.delay.Reset()
	s.rng = newRNG(s.params.Seed)
}

const earthRadiusMeters = 6378137.0

func (s *Gps) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	if s.schedule.Due(now) {
		dtSec := dt.Seconds()
		pos := gt.Kinematics.Pose.Position
		noise := gaussianVec3(s.rng, s.params.PositionNoise, dtSec)
		north := pos.X + noise.X
		east := pos.Y + noise.Y
		down := pos.Z + noise.Z

		dLat := (north / earthRadiusMeters) * (180 / math.Pi)
		latCos := math.Cos(s.params.Home.Latitude * math.Pi / 180)
		if latCos < 1e-9 {
			latCos = 1e-9
		}
		dLon := (east / (earthRadiusMeters * latCos)) * (180 / math.Pi)

		out := GpsOutput{
			TimeStamp: now,
			GeoPoint: kinematics.GeoPoint{
				Latitude:  s.params.Home.Latitude + dLat,
				Longitude: s.params.Home.Longitude + dLon,
				Altitude:  s.params.Home.Altitude - down,
			},
			Eph:      s.params.HorizontalDOP * s.params.PositionNoise,
			Epv:      s.params.VerticalDOP * s.params.PositionNoise,
			Velocity: gt.Kinematics.Twist.Linear,
			FixType:  s.params.FixType,
			TimeUtc:  time.Now().UTC(),
		}
		s.delay.Push(out, now, s.params.OutputDelay)
	}
	s.delay.Update(now)
	return nil
}

func (s *Gps) GetOutput() GpsOutput {
	out, ok := s.delay.GetOutput()
	if !ok {
		return GpsOutput{}
	}
	return out
}
