package softbody

import (
	"math"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/physics"
	"narrowphase/internal/shape"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// SoftSoftAlgorithm collides the nodes of two soft bodies as spheres of
// their margins
type SoftSoftAlgorithm struct {
	contacts int
}

func newSoftSoft(algorithm.CreateInfo, *algorithm.Object, *algorithm.Object, bool) algorithm.Algorithm {
	return &SoftSoftAlgorithm{}
}

func (*SoftSoftAlgorithm) Kind() algorithm.Kind { return KindSoftSoft }

// Contacts is the number of node pairs in contact during the last Process
func (s *SoftSoftAlgorithm) Contacts() int { return s.contacts }

func (s *SoftSoftAlgorithm) Process(a, b *algorithm.Object, out algorithm.Result) {
	s.contacts = 0
	sa, okA := a.Shape.(*shape.SoftBody)
	sb, okB := b.Shape.(*shape.SoftBody)
	if !okA || !okB || sa == sb {
		return
	}
	threshold := out.Threshold()
	if !a.Bounds().Intersects(b.Bounds().Expand(threshold)) {
		return
	}

	radius := sa.Margin() + sb.Margin()
	limit := radius + threshold
	for _, na := range sa.Nodes {
		for _, nb := range sb.Nodes {
			diff := rl.Vector3Subtract(na, nb)
			length := rl.Vector3Length(diff)
			if length > limit {
				continue
			}
			normalOnB := rl.Vector3{Y: 1}
			if length > math.SmallestNonzeroFloat32 {
				normalOnB = rl.Vector3Scale(diff, 1/length)
			}
			pointOnB := rl.Vector3Add(nb, rl.Vector3Scale(normalOnB, sb.Margin()))
			out.AddContact(normalOnB, pointOnB, length-radius)
			s.contacts++
		}
	}
}

func (*SoftSoftAlgorithm) Release() {}

// NodeAlgorithm expects the soft body first. Each node becomes a sphere of the
// body's margin and is collided with the other object by a child algorithm
// from the dispatcher, so any rigid target the base rules support works here.
type NodeAlgorithm struct {
	kind       algorithm.Kind
	swapped    bool
	dispatcher algorithm.Dispatcher

	sphere shape.Sphere
	node   algorithm.Object
	child  algorithm.Algorithm
}

func newNodeAlgorithm(kind algorithm.Kind) algorithm.NewFunc {
	return func(info algorithm.CreateInfo, _, _ *algorithm.Object, swapped bool) algorithm.Algorithm {
		return &NodeAlgorithm{kind: kind, swapped: swapped, dispatcher: info.Dispatcher}
	}
}

func (n *NodeAlgorithm) Kind() algorithm.Kind { return n.kind }

func (n *NodeAlgorithm) Swapped() bool { return n.swapped }

func (n *NodeAlgorithm) Process(a, b *algorithm.Object, out algorithm.Result) {
	if n.swapped {
		a, b, out = b, a, out.Oriented(true)
	}
	soft, ok := a.Shape.(*shape.SoftBody)
	if !ok || n.dispatcher == nil {
		return
	}

	other := b.Bounds().Expand(out.Threshold())
	if !soft.Bounds(a.Transform).Intersects(other) {
		return
	}

	n.sphere.Radius = soft.Margin()
	n.node.Shape = &n.sphere
	for _, p := range soft.Nodes {
		n.node.Transform = physics.Translation(p)
		if !n.node.Bounds().Intersects(other) {
			continue
		}
		if n.child == nil {
			n.child = n.dispatcher.FindAlgorithm(&n.node, b)
		}
		n.child.Process(&n.node, b, out)
	}
}

func (n *NodeAlgorithm) Release() {
	if n.child != nil && n.dispatcher != nil {
		n.dispatcher.ReleaseAlgorithm(n.child)
	}
	n.child = nil
}
