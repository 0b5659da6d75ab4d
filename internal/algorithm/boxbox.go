package algorithm

import (
	"unsafe"

	"narrowphase/internal/physics"
	"narrowphase/internal/shape"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	RegisterFootprint(KindBoxBox, "BoxBox", int(unsafe.Sizeof(BoxBoxAlgorithm{})))
}

// onFaceTolerance is how far a clipped point may sit outside the other box
const onFaceTolerance = 1e-3

// BoxBoxAlgorithm finds the separating axis of least overlap and reports every
// corner of either box that lies inside the other.
type BoxBoxAlgorithm struct {
	pairBase
}

func NewBoxBoxFactory() Factory {
	return NewCreateFunc(KindBoxBox, false, func(_ CreateInfo, _, _ *Object, swapped bool) Algorithm {
		return &BoxBoxAlgorithm{pairBase{kind: KindBoxBox, swapped: swapped}}
	})
}

func (bb *BoxBoxAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = bb.order(a, b, out)
	boxA, okA := a.Shape.(*shape.Box)
	boxB, okB := b.Shape.(*shape.Box)
	if !okA || !okB {
		return
	}

	obbA := boxA.OBB(a.Transform)
	obbB := boxB.OBB(b.Transform)
	normal, depth, ok := obbA.Penetration(obbB)
	if !ok {
		return
	}

	threshold := out.Threshold()
	planeB := rl.Vector3DotProduct(obbB.Support(normal), normal)
	planeA := rl.Vector3DotProduct(obbA.Support(rl.Vector3Negate(normal)), normal)
	found := false

	// corners of A below B's face
	for _, v := range obbA.Vertices() {
		d := rl.Vector3DotProduct(v, normal) - planeB
		if d > threshold {
			continue
		}
		pointOnB := rl.Vector3Subtract(v, rl.Vector3Scale(normal, d))
		if !onSurface(obbB, pointOnB) {
			continue
		}
		out.AddContact(normal, pointOnB, d)
		found = true
	}

	// corners of B above A's face
	for _, w := range obbB.Vertices() {
		d := planeA - rl.Vector3DotProduct(w, normal)
		if d > threshold {
			continue
		}
		pointOnA := rl.Vector3Add(w, rl.Vector3Scale(normal, d))
		if !onSurface(obbA, pointOnA) {
			continue
		}
		out.AddContact(normal, w, d)
		found = true
	}

	if !found {
		// edge against edge
		deepest := obbA.Support(rl.Vector3Negate(normal))
		out.AddContact(normal, rl.Vector3Add(deepest, rl.Vector3Scale(normal, depth)), -depth)
	}
}

func onSurface(box physics.OBB, p rl.Vector3) bool {
	return rl.Vector3Distance(box.ClosestPoint(p), p) <= onFaceTolerance
}

func (*BoxBoxAlgorithm) Release() {}
