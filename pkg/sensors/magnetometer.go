package sensors

import (
	"math/rand"

	"github.com/autonomysim/coresim/pkg/delayline"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// MagnetometerOutput is magnetometer's latched reading.
type MagnetometerOutput struct {
	TimeStamp        spatial.TimePoint
	MagneticFieldBody spatial.Vec3
	Covariance       [9]spatial.Real
}

type MagnetometerParams struct {
	Frequency    spatial.Real
	StartupDelay spatial.TimeDelta
	OutputDelay  spatial.TimeDelta
	Seed         int64
	NoiseSigma   spatial.Real
	// ReferenceField is the world-frame magnetic field at the vehicle's
	// location (e.g. from a declination/inclination model supplied by the
	// caller); a constant is used absent a magnetic-field collaborator.
	ReferenceField spatial.Vec3
}

func DefaultMagnetometerParams() MagnetometerParams {
	return MagnetometerParams{
		Frequency:      50,
		NoiseSigma:     0.005,
		ReferenceField: spatial.Vec3{X: 0.2, Y: 0.05, Z: 0.45}, // gauss, rough mid-latitude field
	}
}

// Magnetometer synthesizes body-frame magnetic field readings.
type Magnetometer struct {
	params   MagnetometerParams
	schedule Schedule
	rng      *rand.Rand
	delay    *delayline.DelayLine[MagnetometerOutput]
}

func NewMagnetometer(params MagnetometerParams) *Magnetometer {
	s := &Magnetometer{params: params, delay: newDelay[MagnetometerOutput]()}
	s.schedule.Frequency = params.Frequency
	s.schedule.StartupDelay = params.StartupDelay
	s.rng = newRNG(params.Seed)
	return s
}

func (s *Magnetometer) Name() string { return "magnetometer" }

func (s *Magnetometer) Reset() {
	s.schedule.Reset()
	s.delay.Reset()
	s.rng = newRNG(s.params.Seed)
}

func (s *Magnetometer) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	if s.schedule.Due(now) {
		dtSec := dt.Seconds()
		bodyField := gt.Kinematics.Pose.Orientation.Conjugate().Rotate(s.params.ReferenceField)
		noise := gaussianVec3(s.rng, s.params.NoiseSigma, dtSec)
		variance := s.params.NoiseSigma * s.params.NoiseSigma
		out := MagnetometerOutput{
			TimeStamp:         now,
			MagneticFieldBody: bodyField.Add(noise),
			Covariance:        [9]spatial.Real{variance, 0, 0, 0, variance, 0, 0, 0, variance},
		}
		s.delay.Push(out, now, s.params.OutputDelay)
	}
	s.delay.Update(now)
	return nil
}

func (s *Magnetometer) GetOutput() MagnetometerOutput {
	out, ok := s.delay.GetOutput()
	if !ok {
		return MagnetometerOutput{}
	}
	return out
}
