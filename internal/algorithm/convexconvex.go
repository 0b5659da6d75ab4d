package algorithm

import (
	"unsafe"

	"narrowphase/internal/physics"
	"narrowphase/internal/shape"
	"narrowphase/internal/solver"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

func init() {
	RegisterFootprint(KindConvexConvex, "ConvexConvex", int(unsafe.Sizeof(ConvexConvexAlgorithm{})))
}

// DefaultConvexMultipoint leaves perturbation off until tuned
var DefaultConvexMultipoint = Multipoint{Iterations: 0, MinimumPointsThreshold: 3}

// ConvexConvexAlgorithm runs GJK and, on overlap, the configured penetration
// depth solver. Both solvers are shared with every other convex pair.
type ConvexConvexAlgorithm struct {
	pairBase
	simplexSolver *solver.VoronoiSimplexSolver
	pdSolver      solver.PenetrationDepthSolver
	multipoint    Multipoint
}

func NewConvexConvexFactory(simplexSolver *solver.VoronoiSimplexSolver, pdSolver solver.PenetrationDepthSolver, mp Multipoint) *MultipointCreateFunc {
	return &MultipointCreateFunc{
		CreateFunc: CreateFunc{kind: KindConvexConvex},
		multipoint: mp,
		newMp: func(_ CreateInfo, _, _ *Object, swapped bool, mp Multipoint) Algorithm {
			return &ConvexConvexAlgorithm{
				pairBase:      pairBase{kind: KindConvexConvex, swapped: swapped},
				simplexSolver: simplexSolver,
				pdSolver:      pdSolver,
				multipoint:    mp,
			}
		},
	}
}

func (c *ConvexConvexAlgorithm) Multipoint() Multipoint {
	return c.multipoint
}

// PenetrationSolver returns the shared depth solver
func (c *ConvexConvexAlgorithm) PenetrationSolver() solver.PenetrationDepthSolver {
	return c.pdSolver
}

func (c *ConvexConvexAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = c.order(a, b, out)
	convexA, okA := a.Shape.(shape.Convex)
	convexB, okB := b.Shape.(shape.Convex)
	if !okA || !okB {
		return
	}

	normalOnB, ok := c.collide(convexA, a.Transform, a.Transform, convexB, b.Transform, out)
	if !ok || !needsPerturbation(c.multipoint, out) {
		return
	}

	p := newPerturbation(normalOnB, a.Bounds(), out.Threshold())
	for i := 0; i < c.multipoint.Iterations; i++ {
		t := perturbed(a.Transform, p.rotation(i, c.multipoint.Iterations))
		c.collide(convexA, a.Transform, t, convexB, b.Transform, out)
	}
}

// collide queries A placed at t against B and reports the contact with A's
// witness point mapped back onto original.
func (c *ConvexConvexAlgorithm) collide(a shape.Convex, original, t physics.Transform, b shape.Convex, tb physics.Transform, out Result) (rl.Vector3, bool) {
	pair := solver.Pair{
		SupportA: worldSupport(a, t),
		SupportB: worldSupport(b, tb),
		CenterA:  solver.ToVec3(t.Position),
		CenterB:  solver.ToVec3(tb.Position),
	}

	simplex := solver.AcquireSimplex()
	defer solver.ReleaseSimplex(simplex)

	if !c.simplexSolver.Intersect(pair, simplex) {
		return rl.Vector3{}, false
	}
	contact, ok := c.pdSolver.Penetration(pair, simplex)
	if !ok {
		return rl.Vector3{}, false
	}

	normalOnB := solver.FromVec3(contact.Normal.Mul(-1))
	pointOnA := solver.FromVec3(contact.PointA)
	if t != original {
		pointOnA = unperturb(original, t, pointOnA)
	}
	dist := -float32(contact.Depth)
	pointOnB := rl.Vector3Subtract(pointOnA, rl.Vector3Scale(normalOnB, dist))
	out.AddContact(normalOnB, pointOnB, dist)
	return normalOnB, true
}

func worldSupport(c shape.Convex, t physics.Transform) solver.SupportFunc {
	return func(dir mgl64.Vec3) mgl64.Vec3 {
		return solver.ToVec3(shape.SupportWorld(c, t, solver.FromVec3(dir)))
	}
}

func (*ConvexConvexAlgorithm) Release() {}
