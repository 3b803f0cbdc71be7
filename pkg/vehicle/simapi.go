package vehicle

import "github.com/autonomysim/coresim/pkg/spatial"

// TracePoint is one recorded sample for VehicleSimApi's flight trace.
type TracePoint struct {
	Time spatial.TimePoint
	Pose spatial.Pose
}

// SimApi is the pose/reset/trace surface (VehicleSimApi in spec §3),
// distinct from the control-facing Api: it lets the world/RPC layer
// teleport and introspect a vehicle without going through the firmware
// cascade.
type SimApi struct {
	v          *Vehicle
	tracing    bool
	trace      []TracePoint
	maxTrace   int
}

// NewSimApi wraps a Vehicle in its simulation-side pose/reset/trace surface.
func NewSimApi(v *Vehicle) *SimApi { return &SimApi{v: v, maxTrace: 10000} }

// SetPose teleports the vehicle, bypassing physics for this tick. Any
// in-flight command is cancelled since its goal frame is no longer valid.
func (s *SimApi) SetPose(pose spatial.Pose) {
	s.v.CancelCurrent()
	s.v.Kinematics.Pose = pose
	s.v.Kinematics.Pose.Orientation = pose.Orientation.Normalized()
}

func (s *SimApi) GetPose() spatial.Pose { return s.v.Kinematics.Pose }

// Reset returns the vehicle to its freshly constructed state.
func (s *SimApi) Reset() { s.v.Reset() }

// EnableTrace starts (or stops) recording a pose sample on every RecordTick
// call.
func (s *SimApi) EnableTrace(enable bool) {
	s.tracing = enable
	if !enable {
		s.trace = nil
	}
}

// RecordTick appends the current pose to the trace buffer if tracing is
// enabled, dropping the oldest sample once maxTrace is exceeded.
func (s *SimApi) RecordTick(now spatial.TimePoint) {
	if !s.tracing {
		return
	}
	s.trace = append(s.trace, TracePoint{Time: now, Pose: s.v.Kinematics.Pose})
	if len(s.trace) > s.maxTrace {
		s.trace = s.trace[len(s.trace)-s.maxTrace:]
	}
}

// Trace returns the recorded pose history.
func (s *SimApi) Trace() []TracePoint { return s.trace }
