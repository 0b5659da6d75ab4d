package algorithm

import (
	"math"
	"unsafe"

	"narrowphase/internal/physics"
	"narrowphase/internal/shape"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	RegisterFootprint(KindSphereSphere, "SphereSphere", int(unsafe.Sizeof(SphereSphereAlgorithm{})))
	RegisterFootprint(KindSphereBox, "SphereBox", int(unsafe.Sizeof(SphereBoxAlgorithm{})))
	RegisterFootprint(KindSphereTriangle, "SphereTriangle", int(unsafe.Sizeof(SphereTriangleAlgorithm{})))
}

// SphereSphereAlgorithm tests two spheres analytically
type SphereSphereAlgorithm struct {
	pairBase
}

func NewSphereSphereFactory() Factory {
	return NewCreateFunc(KindSphereSphere, false, func(_ CreateInfo, _, _ *Object, swapped bool) Algorithm {
		return &SphereSphereAlgorithm{pairBase{kind: KindSphereSphere, swapped: swapped}}
	})
}

func (s *SphereSphereAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = s.order(a, b, out)
	sa, okA := a.Shape.(*shape.Sphere)
	sb, okB := b.Shape.(*shape.Sphere)
	if !okA || !okB {
		return
	}

	diff := rl.Vector3Subtract(a.Transform.Position, b.Transform.Position)
	length := rl.Vector3Length(diff)
	dist := length - sa.Radius - sb.Radius
	if dist > out.Threshold() {
		return
	}

	normalOnB := rl.Vector3{X: 1}
	if length > math.SmallestNonzeroFloat32 {
		normalOnB = rl.Vector3Scale(diff, 1/length)
	}
	pointOnB := rl.Vector3Add(b.Transform.Position, rl.Vector3Scale(normalOnB, sb.Radius))
	out.AddContact(normalOnB, pointOnB, dist)
}

func (*SphereSphereAlgorithm) Release() {}

// SphereBoxAlgorithm expects the sphere first
type SphereBoxAlgorithm struct {
	pairBase
}

func NewSphereBoxFactory(swapped bool) Factory {
	return NewCreateFunc(KindSphereBox, swapped, func(_ CreateInfo, _, _ *Object, swapped bool) Algorithm {
		return &SphereBoxAlgorithm{pairBase{kind: KindSphereBox, swapped: swapped}}
	})
}

func (s *SphereBoxAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = s.order(a, b, out)
	sphere, okA := a.Shape.(*shape.Sphere)
	box, okB := b.Shape.(*shape.Box)
	if !okA || !okB {
		return
	}

	center := a.Transform.Position
	obb := box.OBB(b.Transform)
	closest := obb.ClosestPoint(center)
	diff := rl.Vector3Subtract(center, closest)
	length := rl.Vector3Length(diff)

	if length > 1e-6 {
		dist := length - sphere.Radius
		if dist > out.Threshold() {
			return
		}
		out.AddContact(rl.Vector3Scale(diff, 1/length), closest, dist)
		return
	}

	// center inside the box: push out through the nearest face
	normal, faceDist := obb.FaceExit(center)
	pointOnB := rl.Vector3Add(center, rl.Vector3Scale(normal, faceDist))
	out.AddContact(normal, pointOnB, -(faceDist + sphere.Radius))
}

func (*SphereBoxAlgorithm) Release() {}

// SphereTriangleAlgorithm expects the sphere first. Triangles are two sided.
type SphereTriangleAlgorithm struct {
	pairBase
}

func NewSphereTriangleFactory(swapped bool) Factory {
	return NewCreateFunc(KindSphereTriangle, swapped, func(_ CreateInfo, _, _ *Object, swapped bool) Algorithm {
		return &SphereTriangleAlgorithm{pairBase{kind: KindSphereTriangle, swapped: swapped}}
	})
}

func (s *SphereTriangleAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = s.order(a, b, out)
	sphere, okA := a.Shape.(*shape.Sphere)
	tri, okB := b.Shape.(*shape.Triangle)
	if !okA || !okB {
		return
	}

	v0 := b.Transform.Apply(tri.Vertices[0])
	v1 := b.Transform.Apply(tri.Vertices[1])
	v2 := b.Transform.Apply(tri.Vertices[2])

	center := a.Transform.Position
	closest := physics.ClosestPointOnTriangle(center, v0, v1, v2)
	diff := rl.Vector3Subtract(center, closest)
	length := rl.Vector3Length(diff)

	dist := length - sphere.Radius
	if dist > out.Threshold() {
		return
	}

	var normal rl.Vector3
	if length > 1e-6 {
		normal = rl.Vector3Scale(diff, 1/length)
	} else {
		// center on the triangle
		normal = physics.TriangleNormal(v0, v1, v2)
	}
	out.AddContact(normal, closest, dist)
}

func (*SphereTriangleAlgorithm) Release() {}
