package algorithm

import (
	"unsafe"

	"narrowphase/internal/physics"
	"narrowphase/internal/shape"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	RegisterFootprint(KindConvexPlane, "ConvexPlane", int(unsafe.Sizeof(ConvexPlaneAlgorithm{})))
}

// DefaultPlaneMultipoint matches the refinement used for resting contact on planes
var DefaultPlaneMultipoint = Multipoint{Iterations: 1, MinimumPointsThreshold: 0}

// ConvexPlaneAlgorithm expects the convex shape first and the static plane second
type ConvexPlaneAlgorithm struct {
	pairBase
	multipoint Multipoint
}

func NewConvexPlaneFactory(swapped bool, mp Multipoint) *MultipointCreateFunc {
	return &MultipointCreateFunc{
		CreateFunc: CreateFunc{kind: KindConvexPlane, swapped: swapped},
		multipoint: mp,
		newMp: func(_ CreateInfo, _, _ *Object, swapped bool, mp Multipoint) Algorithm {
			return &ConvexPlaneAlgorithm{
				pairBase:   pairBase{kind: KindConvexPlane, swapped: swapped},
				multipoint: mp,
			}
		},
	}
}

// Multipoint returns the settings copied at creation
func (c *ConvexPlaneAlgorithm) Multipoint() Multipoint {
	return c.multipoint
}

func (c *ConvexPlaneAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = c.order(a, b, out)
	convex, okA := a.Shape.(shape.Convex)
	plane, okB := b.Shape.(*shape.StaticPlane)
	if !okA || !okB {
		return
	}

	normal, constant := plane.WorldPlane(b.Transform)
	if !c.collideSingle(convex, a.Transform, a.Transform, normal, constant, out) {
		return
	}
	if !needsPerturbation(c.multipoint, out) {
		return
	}

	p := newPerturbation(normal, a.Bounds(), out.Threshold())
	for i := 0; i < c.multipoint.Iterations; i++ {
		t := perturbed(a.Transform, p.rotation(i, c.multipoint.Iterations))
		c.collideSingle(convex, a.Transform, t, normal, constant, out)
	}
}

// collideSingle tests the deepest vertex of the convex under t, reporting it in the original pose
func (c *ConvexPlaneAlgorithm) collideSingle(convex shape.Convex, original, t physics.Transform, normal rl.Vector3, constant float32, out Result) bool {
	vtx := shape.SupportWorld(convex, t, rl.Vector3Negate(normal))
	if t != original {
		vtx = unperturb(original, t, vtx)
	}
	dist := rl.Vector3DotProduct(normal, vtx) - constant
	if dist > out.Threshold() {
		return false
	}
	pointOnB := rl.Vector3Subtract(vtx, rl.Vector3Scale(normal, dist))
	out.AddContact(normal, pointOnB, dist)
	return true
}

func (*ConvexPlaneAlgorithm) Release() {}
