// Package sensors implements the periodic, noise-injected sensor pipeline
// of spec §4.4: IMU, barometer, magnetometer, GPS, LiDAR, and distance
// sensors, each synthesizing a reading from a read-only borrow of ground
// truth kinematics/environment, pushing it through a DelayLine, and
// latching the newest due sample as its public output.
package sensors

import (
	"math/rand"

	"github.com/autonomysim/coresim/pkg/delayline"
	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// GroundTruth is the read-only borrow every sensor synthesizes readings
// from. Sensors never receive a mutable reference; PhysicsEngine remains
// the sole writer.
type GroundTruth struct {
	Kinematics  *kinematics.Kinematics
	Environment *kinematics.Environment
}

// Schedule tracks a sensor's nominal update frequency and startup delay,
// deciding whether the next sample is due on a given tick.
type Schedule struct {
	Frequency    spatial.Real // Hz
	StartupDelay spatial.TimeDelta
	lastSample   spatial.TimePoint
	started      bool
	haveLast     bool
}

// Due reports whether a fresh sample should be synthesized this tick, and
// updates the internal bookkeeping if so.
func (s *Schedule) Due(now spatial.TimePoint) bool {
	if !s.started {
		s.started = true
		s.lastSample = now
	}
	if now.Sub(s.lastSample) < s.StartupDelay {
		return false
	}
	if !s.haveLast {
		s.haveLast = true
		s.lastSample = now
		return true
	}
	if s.Frequency <= 0 {
		s.lastSample = now
		return true
	}
	period := spatial.SecondsToDelta(1 / s.Frequency)
	if now.Sub(s.lastSample) >= period {
		s.lastSample = now
		return true
	}
	return false
}

// Reset clears schedule state so the next Due() call behaves as if freshly
// constructed.
func (s *Schedule) Reset() {
	s.started = false
	s.haveLast = false
	s.lastSample = 0
}

// Sensor is the common capability set: reset, update from ground truth, and
// a latched output. Concrete sensor types implement this and are wrapped by
// AnySensor for storage in a SensorSuite.
type Sensor interface {
	Reset()
	Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error
	Name() string
}

// newRNG seeds a *rand.Rand deterministically when seed != 0, matching the
// "sensor noise RNGs are seeded, explicitly or from a configured seed"
// determinism contract in spec §5.
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

func newDelay[T any]() *delayline.DelayLine[T] {
	return delayline.New[T]()
}
