// Package formation implements the FormationController of spec §4.13:
// per-shape offset geometry plus the weighted-sum per-tick flocking
// command.
package formation

import (
	"math"

	"github.com/autonomysim/coresim/pkg/spatial"
)

// Shape selects the desired-position formula.
type Shape int

const (
	ShapeLine Shape = iota
	ShapeColumn
	ShapeWedge
	ShapeDiamond
	ShapeCircle
	ShapeBox
	ShapeCustom
)

// Params tunes offset geometry and the flocking weights.
type Params struct {
	Spacing         spatial.Real
	Radius          spatial.Real
	WedgeAngle      spatial.Real // φ, radians
	CustomOffsets   []spatial.Vec3
	CollisionRadius spatial.Real
	KPos, KVel, KSep, KCoh, KAlign spatial.Real
	MaxVelocity     spatial.Real
	MaxAcceleration spatial.Real
}

// DefaultParams mirrors typical multirotor-swarm spacing.
func DefaultParams() Params {
	return Params{
		Spacing:         5,
		Radius:          10,
		WedgeAngle:      math.Pi / 6,
		CollisionRadius: 3,
		KPos:            1.0,
		KVel:            0.5,
		KSep:            2.0,
		KCoh:            0.3,
		KAlign:          0.2,
		MaxVelocity:     10,
		MaxAcceleration: 5,
	}
}

// Offset computes the formation-frame offset (leader at origin, forward =
// +x) of member i of n, per the per-shape formulas in spec §4.13.
func Offset(shape Shape, i, n int, p Params) spatial.Vec3 {
	switch shape {
	case ShapeLine:
		return spatial.Vec3{Y: spatial.Real(i-n/2) * p.Spacing}
	case ShapeColumn:
		return spatial.Vec3{X: -spatial.Real(i) * p.Spacing}
	case ShapeWedge:
		if i == 0 {
			return spatial.Vec3{}
		}
		row := int(math.Ceil(float64(i+1) / 2))
		sign := spatial.Real(1)
		if i%2 == 0 {
			sign = -1
		}
		r := spatial.Real(row)
		return spatial.Vec3{
			X: -r * p.Spacing * math.Cos(p.WedgeAngle),
			Y: sign * r * p.Spacing * math.Sin(p.WedgeAngle),
		}
	case ShapeDiamond:
		return diamondOffset(i, n, p)
	case ShapeCircle:
		if n <= 0 {
			return spatial.Vec3{}
		}
		angle := 2 * math.Pi * spatial.Real(i) / spatial.Real(n)
		return spatial.Vec3{X: p.Radius * math.Cos(angle), Y: p.Radius * math.Sin(angle)}
	case ShapeBox:
		return boxOffset(i, n, p)
	case ShapeCustom:
		if i < 0 || i >= len(p.CustomOffsets) {
			return spatial.Vec3{}
		}
		return p.CustomOffsets[i]
	default:
		return spatial.Vec3{}
	}
}

func diamondOffset(i, n int, p Params) spatial.Vec3 {
	switch i {
	case 0:
		return spatial.Vec3{}
	case 1:
		return spatial.Vec3{X: p.Spacing}
	case 2:
		return spatial.Vec3{Y: p.Spacing}
	case 3:
		return spatial.Vec3{X: -p.Spacing}
	case 4:
		return spatial.Vec3{Y: -p.Spacing}
	default:
		extra := i - 5
		extraN := n - 5
		if extraN <= 0 {
			extraN = 1
		}
		angle := 2 * math.Pi * spatial.Real(extra) / spatial.Real(extraN)
		r := 2 * p.Spacing
		return spatial.Vec3{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
	}
}

func boxOffset(i, n int, p Params) spatial.Vec3 {
	side := int(math.Sqrt(float64(n)))
	if side < 1 {
		side = 1
	}
	row := i / side
	col := i % side
	center := spatial.Real(side-1) / 2
	return spatial.Vec3{
		X: (spatial.Real(row) - center) * p.Spacing,
		Y: (spatial.Real(col) - center) * p.Spacing,
	}
}

// DesiredPosition maps a formation-frame offset into world space via the
// leader's pose: leader_pose.rotate(offset) + leader_pose.position.
func DesiredPosition(shape Shape, i, n int, leader spatial.Pose, p Params) spatial.Vec3 {
	return leader.Transform(Offset(shape, i, n, p))
}

// Neighbor is a nearby swarm member as seen by the flocking terms.
type Neighbor struct {
	Position spatial.Vec3
	Velocity spatial.Vec3
}

// Command is the FormationController's per-tick velocity/orientation
// output for one follower.
type Command struct {
	Velocity    spatial.Vec3
	Orientation spatial.Quat
}

// Compute evaluates the weighted-sum flocking law of spec §4.13 for one
// follower at (currentPos, currentVel), given the leader's pose/velocity,
// this follower's formation index/count, and its visible neighbors.
func Compute(shape Shape, i, n int, leader spatial.Pose, leaderVel spatial.Vec3, currentPos, currentVel spatial.Vec3, neighbors []Neighbor, currentOrientation spatial.Quat, p Params) Command {
	desiredPos := DesiredPosition(shape, i, n, leader, p)

	posTerm := desiredPos.Sub(currentPos).Scale(p.KPos)
	velTerm := leaderVel.Sub(currentVel).Scale(p.KVel)

	sep := spatial.Vec3{}
	meanNeighborPos := spatial.Vec3{}
	meanNeighborVel := spatial.Vec3{}
	if len(neighbors) > 0 {
		for _, nb := range neighbors {
			d := currentPos.Sub(nb.Position)
			distSq := d.LengthSq()
			if distSq > 1e-9 && d.Length() < p.CollisionRadius {
				sep = sep.Add(d.Scale(1 / distSq))
			}
			meanNeighborPos = meanNeighborPos.Add(nb.Position)
			meanNeighborVel = meanNeighborVel.Add(nb.Velocity)
		}
		inv := 1 / spatial.Real(len(neighbors))
		meanNeighborPos = meanNeighborPos.Scale(inv)
		meanNeighborVel = meanNeighborVel.Scale(inv)
	}
	sepTerm := sep.Scale(p.KSep)
	cohTerm := meanNeighborPos.Sub(currentPos).Scale(p.KCoh)
	alignTerm := meanNeighborVel.Sub(currentVel).Scale(p.KAlign)

	if len(neighbors) == 0 {
		cohTerm = spatial.Vec3{}
		alignTerm = spatial.Vec3{}
	}

	sum := posTerm.Add(velTerm).Add(sepTerm).Add(cohTerm).Add(alignTerm)
	sum = sum.ClampLength(p.MaxVelocity)

	accel := sum.Sub(currentVel)
	accel = accel.ClampLength(p.MaxAcceleration)
	finalVel := currentVel.Add(accel).ClampLength(p.MaxVelocity)

	orientation := currentOrientation
	if finalVel.Length() > 0.1 {
		orientation = spatial.QuatLookAt(finalVel)
	}

	return Command{Velocity: finalVel, Orientation: orientation}
}
