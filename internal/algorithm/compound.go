package algorithm

import (
	"unsafe"

	"narrowphase/internal/shape"
)

func init() {
	RegisterFootprint(KindCompound, "Compound", int(unsafe.Sizeof(CompoundAlgorithm{})))
}

// CompoundAlgorithm expects the compound first and keeps one child algorithm
// per compound child, created on first overlap.
type CompoundAlgorithm struct {
	pairBase
	dispatcher Dispatcher

	children []Algorithm
	objects  []Object
}

func NewCompoundFactory(swapped bool) Factory {
	return NewCreateFunc(KindCompound, swapped, func(info CreateInfo, a, b *Object, swapped bool) Algorithm {
		alg := &CompoundAlgorithm{
			pairBase:   pairBase{kind: KindCompound, swapped: swapped},
			dispatcher: info.Dispatcher,
		}
		compoundObj := a
		if swapped {
			compoundObj = b
		}
		if c, ok := compoundObj.Shape.(*shape.Compound); ok {
			alg.children = make([]Algorithm, c.NumChildren())
			alg.objects = make([]Object, c.NumChildren())
		}
		return alg
	})
}

func (c *CompoundAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = c.order(a, b, out)
	compound, ok := a.Shape.(*shape.Compound)
	if !ok || c.dispatcher == nil {
		return
	}

	children := compound.Children()
	if len(children) != len(c.children) {
		// the compound changed shape: start over
		c.Release()
		c.children = make([]Algorithm, len(children))
		c.objects = make([]Object, len(children))
	}

	other := b.Bounds().Expand(out.Threshold())
	for i, child := range children {
		obj := &c.objects[i]
		obj.Shape = child.Shape
		obj.Transform = a.Transform.Mul(child.Transform)
		if !obj.Bounds().Intersects(other) {
			continue
		}
		if c.children[i] == nil {
			c.children[i] = c.dispatcher.FindAlgorithm(obj, b)
		}
		c.children[i].Process(obj, b, out)
	}
}

func (c *CompoundAlgorithm) Release() {
	for i, child := range c.children {
		if child != nil && c.dispatcher != nil {
			c.dispatcher.ReleaseAlgorithm(child)
		}
		c.children[i] = nil
	}
}
