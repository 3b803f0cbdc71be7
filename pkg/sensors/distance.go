package sensors

import (
	"github.com/autonomysim/coresim/pkg/delayline"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// DistanceOutput is the distance sensor's latched reading.
type DistanceOutput struct {
	TimeStamp    spatial.TimePoint
	Distance     spatial.Real
	MinDistance  spatial.Real
	MaxDistance  spatial.Real
	RelativePose spatial.Pose
}

type DistanceParams struct {
	Frequency    spatial.Real
	StartupDelay spatial.TimeDelta
	OutputDelay  spatial.TimeDelta
	MinDistance  spatial.Real
	MaxDistance  spatial.Real
	// RelativePose is the sensor's mount offset/orientation within the
	// vehicle body frame; the ray is cast along its +x axis.
	RelativePose spatial.Pose
	// ExternalController is reserved for a future external-firmware flow
	// (spec §9 Open Questions) and currently has no effect on Update.
	ExternalController bool
}

func DefaultDistanceParams() DistanceParams {
	return DistanceParams{
		Frequency:   30,
		MinDistance: 0.2,
		MaxDistance: 40,
		RelativePose: spatial.Pose{
			Orientation: spatial.QuatFromAxisAngle(spatial.Vec3{Y: 1}, -1.5707963267948966), // pointed down
		},
	}
}

// Distance is a single downward-or-configured-pose ranging sensor.
type Distance struct {
	params   DistanceParams
	schedule Schedule
	caster   RayCaster
	delay    *delayline.DelayLine[DistanceOutput]
}

func NewDistance(params DistanceParams, caster RayCaster) *Distance {
	if caster == nil {
		caster = NoHitRayCaster{}
	}
	s := &Distance{params: params, caster: caster, delay: newDelay[DistanceOutput]()}
	s.schedule.Frequency = params.Frequency
	s.schedule.StartupDelay = params.StartupDelay
	return s
}

func (s *Distance) Name() string { return "distance" }

func (s *Distance) Reset() {
	s.schedule.Reset()
	s.delay.Reset()
}

func (s *Distance) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	if s.schedule.Due(now) {
		worldPose := composePose(gt.Kinematics.Pose, s.params.RelativePose)
		hit := s.caster.Cast(worldPose.Position, worldPose.Orientation.ForwardAxis(), s.params.MaxDistance)

		dist := s.params.MaxDistance
		if hit.Hit {
			dist = hit.Distance
		}
		if dist < s.params.MinDistance {
			dist = s.params.MinDistance
		}
		if dist > s.params.MaxDistance {
			dist = s.params.MaxDistance
		}

		out := DistanceOutput{
			TimeStamp:    now,
			Distance:     dist,
			MinDistance:  s.params.MinDistance,
			MaxDistance:  s.params.MaxDistance,
			RelativePose: s.params.RelativePose,
		}
		s.delay.Push(out, now, s.params.OutputDelay)
	}
	s.delay.Update(now)
	return nil
}

func (s *Distance) GetOutput() DistanceOutput {
	out, ok := s.delay.GetOutput()
	if !ok {
		return DistanceOutput{}
	}
	return out
}

// composePose maps a sensor-local pose into the world frame given the
// vehicle's world pose.
func composePose(vehicle spatial.Pose, relative spatial.Pose) spatial.Pose {
	return spatial.Pose{
		Position:    vehicle.Transform(relative.Position),
		Orientation: vehicle.Orientation.Mul(relative.Orientation),
	}
}
