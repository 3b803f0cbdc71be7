package sensors

import (
	"math/rand"

	"github.com/autonomysim/coresim/pkg/delayline"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// ImuOutput is IMU's latched, time-stamped reading (spec §3).
type ImuOutput struct {
	TimeStamp         spatial.TimePoint
	Orientation       spatial.Quat
	AngularVelocity   spatial.Vec3
	LinearAcceleration spatial.Vec3
}

// ImuParams configures noise magnitudes and update behavior.
type ImuParams struct {
	Frequency          spatial.Real // Hz, 0 disables scheduling gate (samples every tick)
	StartupDelay       spatial.TimeDelta
	OutputDelay        spatial.TimeDelta
	Seed               int64
	AngularRandomWalk  spatial.Real // rad/s / sqrt(Hz)
	VelocityRandomWalk spatial.Real // m/s^2 / sqrt(Hz)
	BiasSigma          spatial.Real // bias random-walk step scale
}

// DefaultImuParams matches a commodity MEMS IMU's rough noise floor.
func DefaultImuParams() ImuParams {
	return ImuParams{
		Frequency:          200,
		AngularRandomWalk:  0.0003,
		VelocityRandomWalk: 0.003,
		BiasSigma:          0.00002,
	}
}

// Imu synthesizes noisy orientation/rate/acceleration readings from ground
// truth (spec §4.4 "IMU (simple)").
type Imu struct {
	params   ImuParams
	schedule Schedule
	rng      *rand.Rand
	gyroBias randomWalk
	accBias  randomWalk
	delay    *delayline.DelayLine[ImuOutput]
}

// NewImu constructs an IMU with the given parameters.
func NewImu(params ImuParams) *Imu {
	s := &Imu{
		params: params,
		delay:  newDelay[ImuOutput](),
	}
	s.schedule.Frequency = params.Frequency
	s.schedule.StartupDelay = params.StartupDelay
	s.gyroBias.sigma = params.BiasSigma
	s.accBias.sigma = params.BiasSigma
	s.rng = newRNG(params.Seed)
	return s
}

func (s *Imu) Name() string { return "imu" }

func (s *Imu) Reset() {
	s.schedule.Reset()
	s.gyroBias.reset()
	s.accBias.reset()
	s.delay.Reset()
	s.rng = newRNG(s.params.Seed)
}

func (s *Imu) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	if s.schedule.Due(now) {
		dtSec := dt.Seconds()
		gyroBiasV := spatial.Vec3{X: s.gyroBias.step(s.rng, dtSec), Y: s.gyroBias.step(s.rng, dtSec), Z: s.gyroBias.step(s.rng, dtSec)}
		accBiasV := spatial.Vec3{X: s.accBias.step(s.rng, dtSec), Y: s.accBias.step(s.rng, dtSec), Z: s.accBias.step(s.rng, dtSec)}

		angularNoise := gaussianVec3(s.rng, s.params.AngularRandomWalk, dtSec)
		accelNoise := gaussianVec3(s.rng, s.params.VelocityRandomWalk, dtSec)

		k := gt.Kinematics
		gravity := gt.Environment.Gravity
		bodyAccel := k.Pose.Orientation.Conjugate().Rotate(k.Accelerations.Linear.Sub(gravity))

		out := ImuOutput{
			TimeStamp:          now,
			Orientation:        k.Pose.Orientation,
			AngularVelocity:    k.Twist.Angular.Add(gyroBiasV).Add(angularNoise),
			LinearAcceleration: bodyAccel.Add(accBiasV).Add(accelNoise),
		}
		s.delay.Push(out, now, s.params.OutputDelay)
	}
	s.delay.Update(now)
	return nil
}

// GetOutput returns the latched output, zeroed if the sensor has never
// produced a reading (spec §3: "a fresh sensor reports a zeroed output").
func (s *Imu) GetOutput() ImuOutput {
	out, ok := s.delay.GetOutput()
	if !ok {
		return ImuOutput{}
	}
	return out
}
