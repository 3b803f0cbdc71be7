package sensors

import (
	"math"
	"math/rand"

	"github.com/autonomysim/coresim/pkg/delayline"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// BarometerOutput is barometer's latched reading.
type BarometerOutput struct {
	TimeStamp spatial.TimePoint
	Altitude  spatial.Real
	Pressure  spatial.Real
	Qnh       spatial.Real
}

type BarometerParams struct {
	Frequency    spatial.Real
	StartupDelay spatial.TimeDelta
	OutputDelay  spatial.TimeDelta
	Seed         int64
	NoiseSigma   spatial.Real // pressure noise, Pa/sqrt(Hz)
	Qnh          spatial.Real
}

func DefaultBarometerParams() BarometerParams {
	return BarometerParams{Frequency: 50, NoiseSigma: 3.0, Qnh: 1013.25}
}

// Barometer synthesizes altitude/pressure from ground-truth environment.
type Barometer struct {
	params   BarometerParams
	schedule Schedule
	rng      *rand.Rand
	delay    *delayline.DelayLine[BarometerOutput]
}

func NewBarometer(params BarometerParams) *Barometer {
	s := &Barometer{params: params, delay: newDelay[BarometerOutput]()}
	s.schedule.Frequency = params.Frequency
	s.schedule.StartupDelay = params.StartupDelay
	s.rng = newRNG(params.Seed)
	return s
}

func (s *Barometer) Name() string { return "barometer" }

func (s *Barometer) Reset() {
	s.schedule.Reset()
	s.delay.Reset()
	s.rng = newRNG(s.params.Seed)
}

func (s *Barometer) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	if s.schedule.Due(now) {
		dtSec := dt.Seconds()
		noise := s.params.NoiseSigma * math.Sqrt(math.Max(dtSec, 0)) * s.rng.NormFloat64()
		out := BarometerOutput{
			TimeStamp: now,
			Altitude:  -gt.Kinematics.Pose.Position.Z, // NED: altitude is -z
			Pressure:  gt.Environment.AirPressure + noise,
			Qnh:       s.params.Qnh,
		}
		s.delay.Push(out, now, s.params.OutputDelay)
	}
	s.delay.Update(now)
	return nil
}

func (s *Barometer) GetOutput() BarometerOutput {
	out, ok := s.delay.GetOutput()
	if !ok {
		return BarometerOutput{}
	}
	return out
}
