package shape

import (
	"narrowphase/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DefaultSoftBodyMargin is the node radius used when none is given
const DefaultSoftBodyMargin = 0.25

// SoftBody is a deformable cloud of nodes. Node positions are kept in world
// space, so the body transform is ignored.
type SoftBody struct {
	Nodes  []rl.Vector3
	margin float32
}

func NewSoftBody(margin float32, nodes ...rl.Vector3) *SoftBody {
	if margin <= 0 {
		margin = DefaultSoftBodyMargin
	}
	return &SoftBody{Nodes: nodes, margin: margin}
}

func (s *SoftBody) Type() Type { return TypeSoftBody }

// Margin is the collision radius of every node
func (s *SoftBody) Margin() float32 { return s.margin }

func (s *SoftBody) Bounds(physics.Transform) physics.AABB {
	out := physics.EmptyAABB()
	for _, n := range s.Nodes {
		out = out.Extend(n)
	}
	return out.Expand(s.margin)
}
