package algorithm

import (
	"encoding/binary"
	"unsafe"

	"narrowphase/internal/alloc"
	"narrowphase/internal/shape"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	RegisterFootprint(KindConvexConcave, "ConvexConcave", int(unsafe.Sizeof(ConvexConcaveAlgorithm{})))
}

// ConvexConcaveAlgorithm expects the convex shape first. Every mesh triangle
// overlapping the convex bounds is handed to a child algorithm obtained from
// the dispatcher.
type ConvexConcaveAlgorithm struct {
	pairBase
	dispatcher Dispatcher
	scratch    *alloc.StackAllocator

	triangle    shape.Triangle
	triangleObj Object
	child       Algorithm
}

func NewConvexConcaveFactory(swapped bool) Factory {
	return NewCreateFunc(KindConvexConcave, swapped, func(info CreateInfo, _, _ *Object, swapped bool) Algorithm {
		return &ConvexConcaveAlgorithm{
			pairBase:   pairBase{kind: KindConvexConcave, swapped: swapped},
			dispatcher: info.Dispatcher,
			scratch:    info.Scratch,
		}
	})
}

func (c *ConvexConcaveAlgorithm) Process(a, b *Object, out Result) {
	a, b, out = c.order(a, b, out)
	mesh, ok := b.Shape.(*shape.TriangleMesh)
	if !ok || c.dispatcher == nil {
		return
	}

	// query in mesh space
	query := a.Bounds().Expand(out.Threshold()).Transformed(b.Transform.Inverse())

	c.triangleObj.Shape = &c.triangle
	c.triangleObj.Transform = b.Transform

	// Candidate indices are gathered into scratch memory first so the BVH
	// walk finishes before any child runs.
	if c.scratch != nil {
		mark := c.scratch.BeginBlock()
		defer c.scratch.EndBlock(mark)
		if buf, err := c.scratch.Allocate(4 * mesh.NumTriangles()); err == nil {
			n := 0
			mesh.Query(query, func(index int, _ [3]rl.Vector3) bool {
				binary.LittleEndian.PutUint32(buf[4*n:], uint32(index))
				n++
				return true
			})
			for i := range n {
				c.collideTriangle(a, mesh.Triangle(int(binary.LittleEndian.Uint32(buf[4*i:]))), out)
			}
			return
		}
	}

	mesh.Query(query, func(_ int, tri [3]rl.Vector3) bool {
		c.collideTriangle(a, tri, out)
		return true
	})
}

func (c *ConvexConcaveAlgorithm) collideTriangle(a *Object, tri [3]rl.Vector3, out Result) {
	c.triangle.Vertices = tri
	if c.child == nil {
		c.child = c.dispatcher.FindAlgorithm(a, &c.triangleObj)
	}
	c.child.Process(a, &c.triangleObj, out)
}

func (c *ConvexConcaveAlgorithm) Release() {
	if c.child != nil && c.dispatcher != nil {
		c.dispatcher.ReleaseAlgorithm(c.child)
	}
	c.child = nil
}
