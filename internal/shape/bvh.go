package shape

import (
	"narrowphase/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	bvhLeafSize = 4
	bvhMaxDepth = 20
)

// bvhNode is a node in the bounding volume hierarchy
type bvhNode struct {
	bounds    physics.AABB
	left      *bvhNode
	right     *bvhNode
	triangles []int // only set on leaves
}

func (m *TriangleMesh) buildNode(indices []int, depth int) *bvhNode {
	node := &bvhNode{bounds: m.computeBounds(indices)}

	if len(indices) <= bvhLeafSize || depth > bvhMaxDepth {
		node.triangles = indices
		return node
	}

	// Split along the longest axis
	size := rl.Vector3Subtract(node.bounds.Max, node.bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > physics.AxisValue(size, axis) {
		axis = 2
	}

	mid := m.partition(indices, axis)
	if mid == 0 || mid == len(indices) {
		node.triangles = indices
		return node
	}

	node.left = m.buildNode(indices[:mid], depth+1)
	node.right = m.buildNode(indices[mid:], depth+1)
	return node
}

func (m *TriangleMesh) computeBounds(indices []int) physics.AABB {
	bounds := physics.EmptyAABB()
	for _, idx := range indices {
		bounds = bounds.Merge(triangleBounds(m.Triangle(idx)))
	}
	return bounds
}

// partition splits indices around the mean centroid on axis
func (m *TriangleMesh) partition(indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += physics.AxisValue(centroid(m.Triangle(idx)), axis)
	}
	center /= float32(len(indices))

	left := 0
	right := len(indices) - 1
	for left <= right {
		if physics.AxisValue(centroid(m.Triangle(indices[left])), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

func centroid(tri [3]rl.Vector3) rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(tri[0], tri[1]), tri[2]), 1.0/3.0)
}

func triangleBounds(tri [3]rl.Vector3) physics.AABB {
	return physics.EmptyAABB().Extend(tri[0]).Extend(tri[1]).Extend(tri[2])
}
