package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "Y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "Z")
}

func TestTransformRoundTrip(t *testing.T) {
	tr := NewTransform(rl.Vector3{X: 1, Y: 2, Z: 3}, rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/2))
	p := rl.Vector3{X: 1}

	world := tr.Apply(p)
	assertVec(t, rl.Vector3{X: 1, Y: 2, Z: 2}, world)
	assertVec(t, p, tr.InverseApply(world))
	assertVec(t, p, tr.Inverse().Apply(world))
}

func TestZeroTransformIsIdentity(t *testing.T) {
	var tr Transform
	p := rl.Vector3{X: 3, Y: -1, Z: 2}
	assertVec(t, p, tr.Apply(p))
	assertVec(t, rl.Vector3{X: 1}, tr.Axes()[0])
}

func TestTransformMul(t *testing.T) {
	parent := Translation(rl.Vector3{Y: 10})
	child := NewTransform(rl.Vector3{X: 1}, rl.QuaternionFromAxisAngle(rl.Vector3{Z: 1}, rl.Pi/2))
	world := parent.Mul(child)

	assertVec(t, rl.Vector3{X: 1, Y: 10}, world.Position)
	assertVec(t, rl.Vector3{Y: 1}, world.Axes()[0])
}

func TestOBBIntersection(t *testing.T) {
	half := rl.Vector3{X: 1, Y: 1, Z: 1}
	a := NewOBB(Identity(), half)
	b := NewOBB(Translation(rl.Vector3{X: 1.5}), half)
	c := NewOBB(Translation(rl.Vector3{X: 2.5}), half)

	assert.True(t, a.IntersectsOBB(b))
	assert.False(t, a.IntersectsOBB(c))

	// rotated 45 degrees the corner reaches further
	rot := NewTransform(rl.Vector3{X: 2.3}, rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, rl.Pi/4))
	assert.True(t, a.IntersectsOBB(NewOBB(rot, half)))
}

func TestOBBPenetration(t *testing.T) {
	half := rl.Vector3{X: 1, Y: 1, Z: 1}
	a := NewOBB(Translation(rl.Vector3{Y: 1.8}), half)
	b := NewOBB(Identity(), half)

	normal, depth, ok := a.Penetration(b)
	assert.True(t, ok)
	assert.InDelta(t, 0.2, depth, 1e-4)
	assertVec(t, rl.Vector3{Y: 1}, normal)

	_, _, ok = a.Penetration(NewOBB(Translation(rl.Vector3{Y: -5}), half))
	assert.False(t, ok)
}

func TestOBBClosestPointAndFaceExit(t *testing.T) {
	box := NewOBB(Identity(), rl.Vector3{X: 1, Y: 2, Z: 1})

	assertVec(t, rl.Vector3{X: 1, Y: 2}, box.ClosestPoint(rl.Vector3{X: 5, Y: 5}))
	inside := rl.Vector3{X: 0.1, Y: 1.5}
	assertVec(t, inside, box.ClosestPoint(inside))

	n, d := box.FaceExit(inside)
	assertVec(t, rl.Vector3{Y: 1}, n)
	assert.InDelta(t, 0.5, d, 1e-5)
}

func TestOBBVerticesMatchSupport(t *testing.T) {
	box := NewOBB(Translation(rl.Vector3{Z: 4}), rl.Vector3{X: 1, Y: 2, Z: 3})
	verts := box.Vertices()
	found := false
	s := box.Support(rl.Vector3{X: 1, Y: -1, Z: 1})
	for _, v := range verts {
		if rl.Vector3Distance(v, s) < 1e-5 {
			found = true
		}
	}
	assert.True(t, found)
	assertVec(t, rl.Vector3{X: 1, Y: -2, Z: 7}, s)
}

func TestClosestPointOnTriangle(t *testing.T) {
	a := rl.Vector3{}
	b := rl.Vector3{X: 2}
	c := rl.Vector3{Z: 2}

	assertVec(t, rl.Vector3{X: 0.5, Z: 0.5}, ClosestPointOnTriangle(rl.Vector3{X: 0.5, Y: 3, Z: 0.5}, a, b, c))
	assertVec(t, a, ClosestPointOnTriangle(rl.Vector3{X: -1, Z: -1}, a, b, c))
	assertVec(t, rl.Vector3{X: 1}, ClosestPointOnTriangle(rl.Vector3{X: 1, Z: -3}, a, b, c))
	assertVec(t, rl.Vector3{Y: -1}, TriangleNormal(a, b, c))
}

func TestAABB(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	b := EmptyAABB().Extend(rl.Vector3{X: 0.5}).Extend(rl.Vector3{X: 3, Y: 1})

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(NewAABBFromCenter(rl.Vector3{X: 5}, rl.Vector3{X: 1, Y: 1, Z: 1})))
	assert.True(t, InfiniteAABB().Intersects(a))

	m := a.Merge(b)
	assertVec(t, rl.Vector3{X: 3, Y: 1, Z: 1}, m.Max)
	assertVec(t, rl.Vector3{X: 1.75, Y: 0.5}, b.Center())
}
