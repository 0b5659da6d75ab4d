package solver

import (
	"github.com/go-gl/mathgl/mgl64"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Contact describes the deepest penetration between A and B.
// Normal points from A towards B; moving B by Normal*Depth separates the pair.
type Contact struct {
	Normal mgl64.Vec3
	Depth  float64
	PointA mgl64.Vec3 // deepest point of A inside B
	PointB mgl64.Vec3 // matching point on the surface of B
}

// PenetrationDepthSolver measures how far two overlapping convex shapes interpenetrate.
// Implementations must be safe for concurrent use.
type PenetrationDepthSolver interface {
	Name() string
	// Penetration is called after the simplex solver reported an overlap.
	Penetration(p Pair, simplex *Simplex) (Contact, bool)
}

// ToVec3 widens a raylib vector
func ToVec3(v rl.Vector3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// FromVec3 narrows back to raylib precision
func FromVec3(v mgl64.Vec3) rl.Vector3 {
	return rl.Vector3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
}

// ToQuat converts an mgl64 quaternion to raylib
func ToQuat(q mgl64.Quat) rl.Quaternion {
	return rl.Quaternion{X: float32(q.V[0]), Y: float32(q.V[1]), Z: float32(q.V[2]), W: float32(q.W)}
}

func contactFrom(normal mgl64.Vec3, depth float64, pointA mgl64.Vec3) Contact {
	return Contact{
		Normal: normal,
		Depth:  depth,
		PointA: pointA,
		PointB: pointA.Sub(normal.Mul(depth)),
	}
}
