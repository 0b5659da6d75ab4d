package algorithm

import (
	"math"

	"narrowphase/internal/physics"
	"narrowphase/internal/solver"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// perturbAngleLimit caps the perturbation rotation
	perturbAngleLimit = 0.125 * math.Pi
)

// perturbation rotates a body by a small angle about an axis orthogonal to the
// contact normal, stepping the axis around the normal each iteration.
type perturbation struct {
	normal mgl64.Vec3
	tilt   mgl64.Vec3
	angle  float64
}

func newPerturbation(normal rl.Vector3, bounds physics.AABB, threshold float32) perturbation {
	n := solver.ToVec3(normal)
	if n.LenSqr() < 1e-12 {
		n = mgl64.Vec3{0, 1, 0}
	}
	n = n.Normalize()

	radius := float64(rl.Vector3Length(rl.Vector3Subtract(bounds.Max, bounds.Min))) * 0.5
	angle := perturbAngleLimit
	if radius > 1e-6 {
		angle = math.Min(float64(threshold)/radius, perturbAngleLimit)
	}
	if angle <= 0 {
		angle = perturbAngleLimit
	}
	return perturbation{
		normal: n,
		tilt:   solver.ToVec3(physics.Perpendicular(solver.FromVec3(n))),
		angle:  angle,
	}
}

// rotation returns the perturbing rotation for iteration i of n
func (p perturbation) rotation(i, n int) rl.Quaternion {
	iterationAngle := float64(i) * (2 * math.Pi / float64(n))
	spin := mgl64.QuatRotate(iterationAngle, p.normal)
	axis := spin.Rotate(p.tilt)
	return solver.ToQuat(mgl64.QuatRotate(p.angle, axis))
}

// perturbed rotates t about its own position
func perturbed(t physics.Transform, q rl.Quaternion) physics.Transform {
	return t.Rotated(q)
}

// unperturb maps a point on the perturbed body back onto the original
func unperturb(original, perturbedT physics.Transform, p rl.Vector3) rl.Vector3 {
	return original.Apply(perturbedT.InverseApply(p))
}

// needsPerturbation reports whether the manifold is still short of the point threshold
func needsPerturbation(mp Multipoint, out Result) bool {
	m := out.Manifold()
	return mp.Iterations > 0 && m != nil && m.Len() < mp.MinimumPointsThreshold
}
