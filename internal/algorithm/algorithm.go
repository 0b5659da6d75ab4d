// Package algorithm defines the narrow-phase algorithm contract, the factories
// that create algorithm instances, the footprint table used for pool sizing and
// the base set of concrete algorithms.
package algorithm

import (
	"narrowphase/internal/alloc"
	"narrowphase/internal/physics"
	"narrowphase/internal/shape"
)

// Object is a shape placed in the world
type Object struct {
	Shape     shape.Shape
	Transform physics.Transform
}

func NewObject(s shape.Shape, t physics.Transform) *Object {
	return &Object{Shape: s, Transform: t}
}

// Type returns the shape type of o, or TypeEmpty without a shape
func (o *Object) Type() shape.Type {
	if o == nil || o.Shape == nil {
		return shape.TypeEmpty
	}
	return o.Shape.Type()
}

func (o *Object) Bounds() physics.AABB {
	return o.Shape.Bounds(o.Transform)
}

// Algorithm computes contacts for one pair of objects. Objects are always
// passed in lookup order; algorithms created by a swapped factory reverse them
// internally.
type Algorithm interface {
	Kind() Kind
	Process(a, b *Object, out Result)
	// Release returns child algorithms and other per-pair resources
	Release()
}

// Dispatcher finds and releases algorithms for child pairs (compound children,
// mesh triangles, soft body nodes).
type Dispatcher interface {
	FindAlgorithm(a, b *Object) Algorithm
	ReleaseAlgorithm(alg Algorithm)
}

// CreateInfo carries the collaborators available to a new algorithm
type CreateInfo struct {
	Dispatcher Dispatcher
	// Scratch holds transient per-query buffers. It may be nil.
	Scratch *alloc.StackAllocator
}

// pairBase is embedded by every algorithm to carry its kind and argument order
type pairBase struct {
	kind    Kind
	swapped bool
}

func (p pairBase) Kind() Kind { return p.kind }

// Swapped reports whether the algorithm reverses its arguments
func (p pairBase) Swapped() bool { return p.swapped }

// order puts a and b into the algorithm's own order and orients out to match
func (p pairBase) order(a, b *Object, out Result) (*Object, *Object, Result) {
	if p.swapped {
		return b, a, out.Oriented(true)
	}
	return a, b, out
}
