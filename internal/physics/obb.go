package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated)
}

// NewOBB places a box with the given half extents under transform t
func NewOBB(t Transform, halfExtents rl.Vector3) OBB {
	return OBB{
		Center:   t.Position,
		HalfSize: halfExtents,
		Axes:     t.Axes(),
	}
}

// IntersectsOBB tests if two OBBs intersect using the Separating Axis Theorem
func (a OBB) IntersectsOBB(b OBB) bool {
	t := rl.Vector3Subtract(b.Center, a.Center)

	for i := 0; i < 3; i++ {
		if !overlapOnAxis(a, b, a.Axes[i], t) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		if !overlapOnAxis(a, b, b.Axes[i], t) {
			return false
		}
	}

	// Edge cross products
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := rl.Vector3CrossProduct(a.Axes[i], b.Axes[j])
			// Skip near-zero axes (parallel edges)
			if rl.Vector3Length(axis) > 0.0001 {
				axis = rl.Vector3Normalize(axis)
				if !overlapOnAxis(a, b, axis, t) {
					return false
				}
			}
		}
	}

	return true
}

// projectedRadius is the half-length of the box's shadow on axis
func (a OBB) projectedRadius(axis rl.Vector3) float32 {
	return a.HalfSize.X*absf(rl.Vector3DotProduct(a.Axes[0], axis)) +
		a.HalfSize.Y*absf(rl.Vector3DotProduct(a.Axes[1], axis)) +
		a.HalfSize.Z*absf(rl.Vector3DotProduct(a.Axes[2], axis))
}

func overlapOnAxis(a, b OBB, axis, t rl.Vector3) bool {
	distance := absf(rl.Vector3DotProduct(t, axis))
	return distance <= a.projectedRadius(axis)+b.projectedRadius(axis)
}

// Penetration finds the axis of least overlap between a and b.
// The returned normal points from b towards a; depth is positive when overlapping.
func (a OBB) Penetration(b OBB) (normal rl.Vector3, depth float32, ok bool) {
	if !a.IntersectsOBB(b) {
		return rl.Vector3Zero(), 0, false
	}

	t := rl.Vector3Subtract(b.Center, a.Center)
	minPenetration := float32(math.MaxFloat32)

	testAxis := func(axis rl.Vector3) {
		if rl.Vector3Length(axis) < 0.0001 {
			return
		}
		axis = rl.Vector3Normalize(axis)

		dist := rl.Vector3DotProduct(t, axis)
		penetration := a.projectedRadius(axis) + b.projectedRadius(axis) - absf(dist)

		if penetration < minPenetration {
			minPenetration = penetration
			// Push in the direction away from B
			if dist < 0 {
				normal = axis
			} else {
				normal = rl.Vector3Negate(axis)
			}
		}
	}

	for i := 0; i < 3; i++ {
		testAxis(a.Axes[i])
	}
	for i := 0; i < 3; i++ {
		testAxis(b.Axes[i])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			testAxis(rl.Vector3CrossProduct(a.Axes[i], b.Axes[j]))
		}
	}

	return normal, minPenetration, true
}

// Support returns the box vertex furthest along dir
func (o OBB) Support(dir rl.Vector3) rl.Vector3 {
	result := o.Center
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[0], signf(rl.Vector3DotProduct(dir, o.Axes[0]))*o.HalfSize.X))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[1], signf(rl.Vector3DotProduct(dir, o.Axes[1]))*o.HalfSize.Y))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[2], signf(rl.Vector3DotProduct(dir, o.Axes[2]))*o.HalfSize.Z))
	return result
}

// ClosestPoint returns the point of the box closest to point.
// A point inside the box is returned unchanged.
func (o OBB) ClosestPoint(point rl.Vector3) rl.Vector3 {
	local := rl.Vector3Subtract(point, o.Center)
	localX := rl.Vector3DotProduct(local, o.Axes[0])
	localY := rl.Vector3DotProduct(local, o.Axes[1])
	localZ := rl.Vector3DotProduct(local, o.Axes[2])

	closestX := clampf(localX, -o.HalfSize.X, o.HalfSize.X)
	closestY := clampf(localY, -o.HalfSize.Y, o.HalfSize.Y)
	closestZ := clampf(localZ, -o.HalfSize.Z, o.HalfSize.Z)

	result := o.Center
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[0], closestX))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[1], closestY))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[2], closestZ))

	return result
}

// FaceExit returns, for a point inside the box, the outward face normal of the nearest
// face and the distance to it.
func (o OBB) FaceExit(point rl.Vector3) (normal rl.Vector3, distance float32) {
	local := rl.Vector3Subtract(point, o.Center)
	half := [3]float32{o.HalfSize.X, o.HalfSize.Y, o.HalfSize.Z}
	distance = float32(math.MaxFloat32)
	for i := 0; i < 3; i++ {
		d := rl.Vector3DotProduct(local, o.Axes[i])
		if gap := half[i] - d; gap < distance {
			distance = gap
			normal = o.Axes[i]
		}
		if gap := half[i] + d; gap < distance {
			distance = gap
			normal = rl.Vector3Negate(o.Axes[i])
		}
	}
	return normal, distance
}

// Vertices returns the eight corners of the box
func (o OBB) Vertices() [8]rl.Vector3 {
	var out [8]rl.Vector3
	for i := 0; i < 8; i++ {
		v := o.Center
		v = rl.Vector3Add(v, rl.Vector3Scale(o.Axes[0], cornerSign(i, 0)*o.HalfSize.X))
		v = rl.Vector3Add(v, rl.Vector3Scale(o.Axes[1], cornerSign(i, 1)*o.HalfSize.Y))
		v = rl.Vector3Add(v, rl.Vector3Scale(o.Axes[2], cornerSign(i, 2)*o.HalfSize.Z))
		out[i] = v
	}
	return out
}

func cornerSign(i, axis int) float32 {
	if i&(1<<axis) != 0 {
		return 1
	}
	return -1
}
