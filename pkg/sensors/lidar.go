package sensors

import (
	"math"

	"github.com/autonomysim/coresim/pkg/delayline"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// LidarFrame selects whether point-cloud coordinates are reported in the
// vehicle-inertial frame or the sensor-local frame (spec §4.4).
type LidarFrame int

const (
	LidarFrameVehicleInertial LidarFrame = iota
	LidarFrameSensorLocal
)

// LidarOutput is LiDAR's latched reading. PointCloud is a flat [3N] array
// of interleaved x,y,z; Segmentation has one entry per returned point (rays
// that miss are omitted, so PointCloud is three times as long as
// Segmentation).
type LidarOutput struct {
	TimeStamp     spatial.TimePoint
	PointCloud    []spatial.Real
	Segmentation  []int32
	Pose          spatial.Pose
}

type LidarParams struct {
	Frequency        spatial.Real
	StartupDelay     spatial.TimeDelta
	OutputDelay      spatial.TimeDelta
	NumChannels      int     // vertical rays
	PointsPerChannel int     // horizontal rays per vertical ray
	VerticalFOVUpper spatial.Real
	VerticalFOVLower spatial.Real
	HorizontalFOV    spatial.Real
	Range            spatial.Real
	RelativePose     spatial.Pose
	DataFrame        LidarFrame
}

func DefaultLidarParams() LidarParams {
	return LidarParams{
		Frequency:        10,
		NumChannels:      16,
		PointsPerChannel: 36,
		VerticalFOVUpper: 0.2618,  // +15 deg
		VerticalFOVLower: -0.2618, // -15 deg
		HorizontalFOV:    2 * math.Pi,
		Range:            60,
		DataFrame:        LidarFrameVehicleInertial,
	}
}

// Lidar emits NumChannels*PointsPerChannel rays per tick across the
// configured FOV, collecting a hit point and segmentation id per ray that
// actually hits something (spec §4.4).
type Lidar struct {
	params   LidarParams
	schedule Schedule
	caster   RayCaster
	delay    *delayline.DelayLine[LidarOutput]
}

func NewLidar(params LidarParams, caster RayCaster) *Lidar {
	if caster == nil {
		caster = NoHitRayCaster{}
	}
	s := &Lidar{params: params, caster: caster, delay: newDelay[LidarOutput]()}
	s.schedule.Frequency = params.Frequency
	s.schedule.StartupDelay = params.StartupDelay
	return s
}

func (s *Lidar) Name() string { return "lidar" }

func (s *Lidar) Reset() {
	s.schedule.Reset()
	s.delay.Reset()
}

func (s *Lidar) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	if s.schedule.Due(now) {
		worldPose := composePose(gt.Kinematics.Pose, s.params.RelativePose)

		var points []spatial.Real
		var seg []int32

		nv := max1(s.params.NumChannels)
		nh := max1(s.params.PointsPerChannel)
		for vi := 0; vi < nv; vi++ {
			vFrac := spatial.Real(0)
			if nv > 1 {
				vFrac = spatial.Real(vi) / spatial.Real(nv-1)
			}
			vAngle := s.params.VerticalFOVLower + vFrac*(s.params.VerticalFOVUpper-s.params.VerticalFOVLower)
			for hi := 0; hi < nh; hi++ {
				hFrac := spatial.Real(hi) / spatial.Real(nh)
				hAngle := -s.params.HorizontalFOV/2 + hFrac*s.params.HorizontalFOV

				localDir := spatial.Vec3{
					X: math.Cos(vAngle) * math.Cos(hAngle),
					Y: math.Cos(vAngle) * math.Sin(hAngle),
					Z: math.Sin(vAngle),
				}
				worldDir := worldPose.Orientation.Rotate(localDir)

				hit := s.caster.Cast(worldPose.Position, worldDir, s.params.Range)
				if !hit.Hit {
					continue
				}

				p := hit.Point
				if s.params.DataFrame == LidarFrameSensorLocal {
					p = worldPose.Orientation.Conjugate().Rotate(p.Sub(worldPose.Position))
				}
				points = append(points, p.X, p.Y, p.Z)
				seg = append(seg, hit.SegmentationID)
			}
		}

		out := LidarOutput{TimeStamp: now, PointCloud: points, Segmentation: seg, Pose: worldPose}
		s.delay.Push(out, now, s.params.OutputDelay)
	}
	s.delay.Update(now)
	return nil
}

func (s *Lidar) GetOutput() LidarOutput {
	out, ok := s.delay.GetOutput()
	if !ok {
		return LidarOutput{}
	}
	return out
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
