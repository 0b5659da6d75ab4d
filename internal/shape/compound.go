package shape

import "narrowphase/internal/physics"

// Child is one shape of a compound, placed in the compound's local space
type Child struct {
	Transform physics.Transform
	Shape     Shape
}

// Compound groups child shapes under one body
type Compound struct {
	children []Child
}

func NewCompound() *Compound {
	return &Compound{}
}

func (c *Compound) Type() Type { return TypeCompound }

// AddChild appends s at the local transform
func (c *Compound) AddChild(local physics.Transform, s Shape) {
	c.children = append(c.children, Child{Transform: local, Shape: s})
}

// Children returns the child list. The slice must not be modified.
func (c *Compound) Children() []Child {
	return c.children
}

func (c *Compound) NumChildren() int {
	return len(c.children)
}

func (c *Compound) Bounds(t physics.Transform) physics.AABB {
	out := physics.EmptyAABB()
	for _, child := range c.children {
		out = out.Merge(child.Shape.Bounds(t.Mul(child.Transform)))
	}
	return out
}
