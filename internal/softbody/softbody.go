// Package softbody extends the collision configuration with soft body pairs.
// Its rule set sits in front of the base rules and only claims pairs that
// involve a soft body.
package softbody

import (
	"unsafe"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/collision"
	"narrowphase/internal/shape"
)

var (
	KindSoftSoft    = algorithm.RegisterKind("SoftSoft", int(unsafe.Sizeof(SoftSoftAlgorithm{})))
	KindSoftRigid   = algorithm.RegisterKind("SoftRigid", int(unsafe.Sizeof(NodeAlgorithm{})))
	KindSoftConcave = algorithm.RegisterKind("SoftConcave", int(unsafe.Sizeof(NodeAlgorithm{})))
)

// RulesName names the soft body rule set
const RulesName = "softbody"

// Rules resolves soft-soft, soft-convex and soft-concave pairs
type Rules struct {
	concave bool
	closed  bool

	softSoft           algorithm.Factory
	softRigid          algorithm.Factory
	swappedSoftRigid   algorithm.Factory
	softConcave        algorithm.Factory
	swappedSoftConcave algorithm.Factory
}

type RulesOption func(*Rules)

// EnableConcaveCollisions toggles the soft-concave rule. It is on by default.
func EnableConcaveCollisions(enabled bool) RulesOption {
	return func(r *Rules) {
		r.concave = enabled
	}
}

func NewRules(opts ...RulesOption) *Rules {
	r := &Rules{concave: true}
	for _, opt := range opts {
		opt(r)
	}

	r.softSoft = algorithm.NewCreateFunc(KindSoftSoft, false, newSoftSoft)
	r.softRigid = algorithm.NewCreateFunc(KindSoftRigid, false, newNodeAlgorithm(KindSoftRigid))
	r.swappedSoftRigid = algorithm.NewCreateFunc(KindSoftRigid, true, newNodeAlgorithm(KindSoftRigid))
	if r.concave {
		r.softConcave = algorithm.NewCreateFunc(KindSoftConcave, false, newNodeAlgorithm(KindSoftConcave))
		r.swappedSoftConcave = algorithm.NewCreateFunc(KindSoftConcave, true, newNodeAlgorithm(KindSoftConcave))
	}
	return r
}

func (r *Rules) Name() string { return RulesName }

func (r *Rules) TryResolve(a, b shape.Type) (algorithm.Factory, bool) {
	if r.closed {
		return nil, false
	}

	softA, softB := shape.IsSoftBody(a), shape.IsSoftBody(b)
	switch {
	case softA && softB:
		return r.softSoft, true
	case softA && shape.IsConvex(b):
		return r.softRigid, true
	case shape.IsConvex(a) && softB:
		return r.swappedSoftRigid, true
	}

	if !r.concave {
		return nil, false
	}
	switch {
	case softA && concaveTarget(b):
		return r.softConcave, true
	case concaveTarget(a) && softB:
		return r.swappedSoftConcave, true
	}
	return nil, false
}

// concaveTarget includes infinite planes, which the node delegate handles
// like any static concave surface
func concaveTarget(t shape.Type) bool {
	return shape.IsConcave(t) || shape.IsInfinite(t)
}

func (r *Rules) Kinds() []algorithm.Kind {
	if r.concave {
		return []algorithm.Kind{KindSoftSoft, KindSoftRigid, KindSoftConcave}
	}
	return []algorithm.Kind{KindSoftSoft, KindSoftRigid}
}

func (r *Rules) Close() {
	*r = Rules{concave: r.concave, closed: true}
}

// NewConfiguration builds a configuration whose chain is the soft body rules,
// then the base rules, then the empty fallback. Rule sets passed in opts go in
// front of the soft body rules.
func NewConfiguration(info collision.ConstructionInfo, opts ...collision.Option) (*collision.Configuration, error) {
	all := append([]collision.Option{collision.WithRuleSet(NewRules())}, opts...)
	return collision.New(info, all...)
}
