package shape

import (
	"math"

	"narrowphase/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Shape is the collision geometry attached to a body
type Shape interface {
	Type() Type
	// Bounds returns the world-space AABB of the shape placed at t
	Bounds(t physics.Transform) physics.AABB
}

// Convex shapes expose a support mapping for GJK based algorithms.
type Convex interface {
	Shape
	// Support returns the local-space point furthest along the local direction dir
	Support(dir rl.Vector3) rl.Vector3
	// Margin is the rounding radius already included in Support
	Margin() float32
}

// SupportWorld evaluates the support mapping of c placed at t for a world direction
func SupportWorld(c Convex, t physics.Transform, dir rl.Vector3) rl.Vector3 {
	return t.Apply(c.Support(t.InverseDirection(dir)))
}

func convexBounds(c Convex, t physics.Transform) physics.AABB {
	axes := [3]rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}
	out := physics.EmptyAABB()
	for _, axis := range axes {
		out = out.Extend(SupportWorld(c, t, axis))
		out = out.Extend(SupportWorld(c, t, rl.Vector3Negate(axis)))
	}
	return out
}

// Sphere
type Sphere struct {
	Radius float32
}

func NewSphere(radius float32) *Sphere {
	return &Sphere{Radius: radius}
}

func (s *Sphere) Type() Type      { return TypeSphere }
func (s *Sphere) Margin() float32 { return s.Radius }

func (s *Sphere) Support(dir rl.Vector3) rl.Vector3 {
	if rl.Vector3LengthSqr(dir) < 1e-12 {
		return rl.Vector3{Y: s.Radius}
	}
	return rl.Vector3Scale(rl.Vector3Normalize(dir), s.Radius)
}

func (s *Sphere) Bounds(t physics.Transform) physics.AABB {
	r := rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return physics.NewAABBFromCenter(t.Position, r)
}

// Box is centered on its local origin
type Box struct {
	HalfExtents rl.Vector3
}

func NewBox(halfExtents rl.Vector3) *Box {
	return &Box{HalfExtents: halfExtents}
}

func (b *Box) Type() Type      { return TypeBox }
func (b *Box) Margin() float32 { return 0 }

func (b *Box) Support(dir rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: signNonZero(dir.X) * b.HalfExtents.X,
		Y: signNonZero(dir.Y) * b.HalfExtents.Y,
		Z: signNonZero(dir.Z) * b.HalfExtents.Z,
	}
}

func (b *Box) Bounds(t physics.Transform) physics.AABB {
	return physics.NewAABBFromCenter(rl.Vector3Zero(), b.HalfExtents).Transformed(t)
}

// OBB returns the oriented box placed at t
func (b *Box) OBB(t physics.Transform) physics.OBB {
	return physics.NewOBB(t, b.HalfExtents)
}

// Triangle is a single convex triangle, also used as the temporary child
// shape when colliding against concave meshes.
type Triangle struct {
	Vertices [3]rl.Vector3
}

func NewTriangle(v0, v1, v2 rl.Vector3) *Triangle {
	return &Triangle{Vertices: [3]rl.Vector3{v0, v1, v2}}
}

func (tr *Triangle) Type() Type      { return TypeTriangle }
func (tr *Triangle) Margin() float32 { return 0 }

func (tr *Triangle) Support(dir rl.Vector3) rl.Vector3 {
	return maxDot(tr.Vertices[:], dir)
}

func (tr *Triangle) Bounds(t physics.Transform) physics.AABB {
	out := physics.EmptyAABB()
	for _, v := range tr.Vertices {
		out = out.Extend(t.Apply(v))
	}
	return out
}

// Normal returns the face normal using counter-clockwise winding
func (tr *Triangle) Normal() rl.Vector3 {
	return physics.TriangleNormal(tr.Vertices[0], tr.Vertices[1], tr.Vertices[2])
}

// ConvexHull is the convex hull of a point set
type ConvexHull struct {
	Points []rl.Vector3
}

func NewConvexHull(points ...rl.Vector3) *ConvexHull {
	return &ConvexHull{Points: points}
}

func (h *ConvexHull) Type() Type      { return TypeConvexHull }
func (h *ConvexHull) Margin() float32 { return 0 }

func (h *ConvexHull) Support(dir rl.Vector3) rl.Vector3 {
	return maxDot(h.Points, dir)
}

func (h *ConvexHull) Bounds(t physics.Transform) physics.AABB {
	out := physics.EmptyAABB()
	for _, p := range h.Points {
		out = out.Extend(t.Apply(p))
	}
	return out
}

// Capsule is aligned with the local Y axis
type Capsule struct {
	Radius     float32
	HalfHeight float32
}

func NewCapsule(radius, halfHeight float32) *Capsule {
	return &Capsule{Radius: radius, HalfHeight: halfHeight}
}

func (c *Capsule) Type() Type      { return TypeCapsule }
func (c *Capsule) Margin() float32 { return c.Radius }

func (c *Capsule) Support(dir rl.Vector3) rl.Vector3 {
	tip := rl.Vector3{Y: signNonZero(dir.Y) * c.HalfHeight}
	if rl.Vector3LengthSqr(dir) < 1e-12 {
		return rl.Vector3Add(tip, rl.Vector3{Y: c.Radius})
	}
	return rl.Vector3Add(tip, rl.Vector3Scale(rl.Vector3Normalize(dir), c.Radius))
}

func (c *Capsule) Bounds(t physics.Transform) physics.AABB {
	return convexBounds(c, t)
}

// StaticPlane is the infinite plane dot(Normal, p) = Constant in local space
type StaticPlane struct {
	Normal   rl.Vector3
	Constant float32
}

func NewStaticPlane(normal rl.Vector3, constant float32) *StaticPlane {
	return &StaticPlane{Normal: rl.Vector3Normalize(normal), Constant: constant}
}

func (p *StaticPlane) Type() Type { return TypeStaticPlane }

func (p *StaticPlane) Bounds(physics.Transform) physics.AABB {
	return physics.InfiniteAABB()
}

// WorldPlane returns the world normal and plane constant under t
func (p *StaticPlane) WorldPlane(t physics.Transform) (normal rl.Vector3, constant float32) {
	normal = t.ApplyDirection(p.Normal)
	origin := t.Apply(rl.Vector3Scale(p.Normal, p.Constant))
	return normal, rl.Vector3DotProduct(normal, origin)
}

func maxDot(points []rl.Vector3, dir rl.Vector3) rl.Vector3 {
	if len(points) == 0 {
		return rl.Vector3Zero()
	}
	best := points[0]
	bestDot := float32(-math.MaxFloat32)
	for _, p := range points {
		if d := rl.Vector3DotProduct(p, dir); d > bestDot {
			bestDot = d
			best = p
		}
	}
	return best
}

func signNonZero(x float32) float32 {
	if x < 0 {
		return -1
	}
	return 1
}
