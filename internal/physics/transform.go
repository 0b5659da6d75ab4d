package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform places a shape in world space: rotate by Rotation, then translate by Position.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
}

// Identity returns a transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: rl.QuaternionIdentity()}
}

// NewTransform creates a transform from a position and rotation
func NewTransform(position rl.Vector3, rotation rl.Quaternion) Transform {
	return Transform{Position: position, Rotation: rotation}
}

// Translation creates an unrotated transform at position
func Translation(position rl.Vector3) Transform {
	return Transform{Position: position, Rotation: rl.QuaternionIdentity()}
}

// rotation treats the zero quaternion as identity so zero-value transforms stay usable
func (t Transform) rotation() rl.Quaternion {
	q := t.Rotation
	if q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0 {
		return rl.QuaternionIdentity()
	}
	return q
}

// Apply maps a local-space point into world space
func (t Transform) Apply(p rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(rl.Vector3RotateByQuaternion(p, t.rotation()), t.Position)
}

// ApplyDirection rotates a local-space direction into world space
func (t Transform) ApplyDirection(d rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(d, t.rotation())
}

// InverseApply maps a world-space point into local space
func (t Transform) InverseApply(p rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(p, t.Position), rl.QuaternionInvert(t.rotation()))
}

// InverseDirection rotates a world-space direction into local space
func (t Transform) InverseDirection(d rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(d, rl.QuaternionInvert(t.rotation()))
}

// Mul composes t with a child transform expressed in t's local space.
func (t Transform) Mul(local Transform) Transform {
	return Transform{
		Position: t.Apply(local.Position),
		Rotation: rl.QuaternionNormalize(rl.QuaternionMultiply(t.rotation(), local.rotation())),
	}
}

// Axes returns the world-space local X, Y, Z axes
func (t Transform) Axes() [3]rl.Vector3 {
	q := t.rotation()
	return [3]rl.Vector3{
		rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, q),
		rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, q),
		rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, q),
	}
}

// Rotated returns a copy of t with its rotation pre-multiplied by q (rotation about the world origin of t).
func (t Transform) Rotated(q rl.Quaternion) Transform {
	return Transform{
		Position: t.Position,
		Rotation: rl.QuaternionNormalize(rl.QuaternionMultiply(q, t.rotation())),
	}
}

// Inverse returns the transform mapping world space back into t's local space
func (t Transform) Inverse() Transform {
	inv := rl.QuaternionInvert(t.rotation())
	return Transform{
		Position: rl.Vector3Negate(rl.Vector3RotateByQuaternion(t.Position, inv)),
		Rotation: inv,
	}
}
