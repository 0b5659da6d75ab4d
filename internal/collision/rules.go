package collision

import (
	"narrowphase/internal/algorithm"
	"narrowphase/internal/shape"
	"narrowphase/internal/solver"
)

// RuleSet is one link of the dispatch chain. A configuration asks each rule
// set in priority order and the first match wins; extensions are added in
// front of the base rules and never modify them.
type RuleSet interface {
	Name() string
	TryResolve(a, b shape.Type) (algorithm.Factory, bool)
	// Kinds lists every algorithm kind the rule set can instantiate
	Kinds() []algorithm.Kind
	// Close drops the factories. Called once at configuration teardown.
	Close()
}

// DefaultRulesName names the base rule set
const DefaultRulesName = "default"

// DefaultRules is the base rule set for rigid shapes
type DefaultRules struct {
	enableSphereBox bool
	closed          bool

	sphereSphere   algorithm.Factory
	sphereBox      algorithm.Factory
	boxSphere      algorithm.Factory
	sphereTriangle algorithm.Factory
	triangleSphere algorithm.Factory
	boxBox         algorithm.Factory

	convexPlane *algorithm.MultipointCreateFunc
	planeConvex *algorithm.MultipointCreateFunc

	convexConvex *algorithm.MultipointCreateFunc

	convexConcave        algorithm.Factory
	swappedConvexConcave algorithm.Factory
	compound             algorithm.Factory
	swappedCompound      algorithm.Factory
}

// NewDefaultRules builds one factory per rule. The convex pair factory shares
// the given solvers.
func NewDefaultRules(simplexSolver *solver.VoronoiSimplexSolver, pdSolver solver.PenetrationDepthSolver, enableSphereBox bool) *DefaultRules {
	r := &DefaultRules{
		enableSphereBox: enableSphereBox,

		sphereSphere:   algorithm.NewSphereSphereFactory(),
		sphereTriangle: algorithm.NewSphereTriangleFactory(false),
		triangleSphere: algorithm.NewSphereTriangleFactory(true),
		boxBox:         algorithm.NewBoxBoxFactory(),

		convexPlane: algorithm.NewConvexPlaneFactory(false, algorithm.DefaultPlaneMultipoint),
		planeConvex: algorithm.NewConvexPlaneFactory(true, algorithm.DefaultPlaneMultipoint),

		convexConvex: algorithm.NewConvexConvexFactory(simplexSolver, pdSolver, algorithm.DefaultConvexMultipoint),

		convexConcave:        algorithm.NewConvexConcaveFactory(false),
		swappedConvexConcave: algorithm.NewConvexConcaveFactory(true),
		compound:             algorithm.NewCompoundFactory(false),
		swappedCompound:      algorithm.NewCompoundFactory(true),
	}
	if enableSphereBox {
		r.sphereBox = algorithm.NewSphereBoxFactory(false)
		r.boxSphere = algorithm.NewSphereBoxFactory(true)
	}
	return r
}

func (r *DefaultRules) Name() string { return DefaultRulesName }

// TryResolve applies the base precedence: exact pairs, convex-plane,
// convex-convex, convex-concave, then compound.
func (r *DefaultRules) TryResolve(a, b shape.Type) (algorithm.Factory, bool) {
	if r.closed {
		return nil, false
	}

	switch {
	case a == shape.TypeSphere && b == shape.TypeSphere:
		return r.sphereSphere, true
	case r.enableSphereBox && a == shape.TypeSphere && b == shape.TypeBox:
		return r.sphereBox, true
	case r.enableSphereBox && a == shape.TypeBox && b == shape.TypeSphere:
		return r.boxSphere, true
	case a == shape.TypeSphere && b == shape.TypeTriangle:
		return r.sphereTriangle, true
	case a == shape.TypeTriangle && b == shape.TypeSphere:
		return r.triangleSphere, true
	case a == shape.TypeBox && b == shape.TypeBox:
		return r.boxBox, true
	}

	switch {
	case shape.IsConvex(a) && shape.IsInfinite(b):
		return r.convexPlane, true
	case shape.IsConvex(b) && shape.IsInfinite(a):
		return r.planeConvex, true
	case shape.IsConvex(a) && shape.IsConvex(b):
		return r.convexConvex, true
	case shape.IsConvex(a) && shape.IsConcave(b):
		return r.convexConcave, true
	case shape.IsConvex(b) && shape.IsConcave(a):
		return r.swappedConvexConcave, true
	case shape.IsCompound(a):
		return r.compound, true
	case shape.IsCompound(b):
		return r.swappedCompound, true
	}

	return nil, false
}

func (r *DefaultRules) Kinds() []algorithm.Kind {
	kinds := []algorithm.Kind{algorithm.KindSphereSphere}
	if r.enableSphereBox {
		kinds = append(kinds, algorithm.KindSphereBox)
	}
	return append(kinds,
		algorithm.KindSphereTriangle,
		algorithm.KindBoxBox,
		algorithm.KindConvexPlane,
		algorithm.KindConvexConvex,
		algorithm.KindConvexConcave,
		algorithm.KindCompound,
	)
}

func (r *DefaultRules) Close() {
	*r = DefaultRules{enableSphereBox: r.enableSphereBox, closed: true}
}

// setMultipoint tunes the convex-convex factory or both plane factories
func (r *DefaultRules) setMultipoint(kind PairKind, mp algorithm.Multipoint) error {
	if r.closed {
		return ErrClosed
	}
	switch kind {
	case PairConvexConvex:
		r.convexConvex.SetMultipoint(mp)
	case PairConvexPlane:
		r.convexPlane.SetMultipoint(mp)
		r.planeConvex.SetMultipoint(mp)
	default:
		return ErrUnknownPairKind
	}
	return nil
}

func (r *DefaultRules) multipoint(kind PairKind) (algorithm.Multipoint, error) {
	if r.closed {
		return algorithm.Multipoint{}, ErrClosed
	}
	switch kind {
	case PairConvexConvex:
		return r.convexConvex.Multipoint(), nil
	case PairConvexPlane:
		return r.convexPlane.Multipoint(), nil
	}
	return algorithm.Multipoint{}, ErrUnknownPairKind
}
