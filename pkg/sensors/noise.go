package sensors

import (
	"math"
	"math/rand"

	"github.com/autonomysim/coresim/pkg/spatial"
)

// randomWalk models a slowly-varying bias: bias += N(0, sigma*sqrt(dt)),
// the same discretization IMU/GPS bias models use throughout the corpus.
type randomWalk struct {
	sigma spatial.Real
	value spatial.Real
}

func (w *randomWalk) step(rng *rand.Rand, dt spatial.Real) spatial.Real {
	w.value += w.sigma * math.Sqrt(dt) * rng.NormFloat64()
	return w.value
}

func (w *randomWalk) reset() { w.value = 0 }

// gaussianVec3 returns a vector of independent zero-mean Gaussian samples
// scaled by sigma*sqrt(dt), the "noise scaled by sqrt(dt)" pattern spec §4.4
// calls for on angular-random-walk and velocity-random-walk terms.
func gaussianVec3(rng *rand.Rand, sigma, dt spatial.Real) spatial.Vec3 {
	scale := sigma * math.Sqrt(dt)
	return spatial.Vec3{
		X: scale * rng.NormFloat64(),
		Y: scale * rng.NormFloat64(),
		Z: scale * rng.NormFloat64(),
	}
}
