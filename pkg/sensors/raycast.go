package sensors

import "github.com/autonomysim/coresim/pkg/spatial"

// RayHit is one ray-caster result.
type RayHit struct {
	Point         spatial.Vec3
	Distance      spatial.Real
	SegmentationID int32
	Hit           bool
}

// RayCaster is the external collaborator that answers "what does this ray
// hit" — owned by the (out-of-scope) 3D engine and its geometry hooks per
// spec §1. Distance and LiDAR sensors only ever consume this interface.
type RayCaster interface {
	Cast(origin spatial.Vec3, direction spatial.Vec3, maxRange spatial.Real) RayHit
}

// NoHitRayCaster is a RayCaster that never reports a hit; useful as a
// default in tests and headless runs with no geometry collaborator wired.
type NoHitRayCaster struct{}

func (NoHitRayCaster) Cast(spatial.Vec3, spatial.Vec3, spatial.Real) RayHit {
	return RayHit{Hit: false}
}
