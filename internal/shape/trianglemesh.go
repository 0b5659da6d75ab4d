package shape

import (
	"errors"
	"math"

	"narrowphase/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrIndexOverflow is returned when a 16-bit mesh needs a vertex index above 65535
var ErrIndexOverflow = errors.New("triangle mesh: vertex index exceeds 16-bit range")

// TriangleMesh is a static concave mesh built from indexed triangle soup.
// Vertices are stored in local space; the BVH is built lazily on first query.
type TriangleMesh struct {
	// WeldingThreshold is the squared distance under which AddTriangle reuses
	// an existing vertex when duplicate removal is requested.
	WeldingThreshold float32

	use32Bit  bool
	vertices  []rl.Vector3
	indices32 []uint32
	indices16 []uint16

	root  *bvhNode
	dirty bool
}

func NewTriangleMesh(use32BitIndices bool) *TriangleMesh {
	return &TriangleMesh{use32Bit: use32BitIndices}
}

func (m *TriangleMesh) Type() Type { return TypeTriangleMesh }

// Uses32BitIndices reports the index width chosen at construction
func (m *TriangleMesh) Uses32BitIndices() bool {
	return m.use32Bit
}

func (m *TriangleMesh) PreallocateVertices(n int) {
	if n > cap(m.vertices) {
		v := make([]rl.Vector3, len(m.vertices), n)
		copy(v, m.vertices)
		m.vertices = v
	}
}

func (m *TriangleMesh) PreallocateIndices(n int) {
	if m.use32Bit {
		if n > cap(m.indices32) {
			idx := make([]uint32, len(m.indices32), n)
			copy(idx, m.indices32)
			m.indices32 = idx
		}
		return
	}
	if n > cap(m.indices16) {
		idx := make([]uint16, len(m.indices16), n)
		copy(idx, m.indices16)
		m.indices16 = idx
	}
}

// AddTriangle appends a triangle. With removeDuplicates set, each vertex is
// welded to the first stored vertex within WeldingThreshold.
func (m *TriangleMesh) AddTriangle(v0, v1, v2 rl.Vector3, removeDuplicates bool) error {
	before := len(m.vertices)
	var idx [3]int
	for i, v := range [3]rl.Vector3{v0, v1, v2} {
		idx[i] = m.findOrAddVertex(v, removeDuplicates)
	}
	if !m.use32Bit {
		for _, i := range idx {
			if i > math.MaxUint16 {
				m.vertices = m.vertices[:before]
				return ErrIndexOverflow
			}
		}
	}
	for _, i := range idx {
		m.addIndex(i)
	}
	m.dirty = true
	return nil
}

func (m *TriangleMesh) findOrAddVertex(v rl.Vector3, removeDuplicates bool) int {
	if removeDuplicates {
		for i, existing := range m.vertices {
			if rl.Vector3LengthSqr(rl.Vector3Subtract(existing, v)) <= m.WeldingThreshold {
				return i
			}
		}
	}
	m.vertices = append(m.vertices, v)
	return len(m.vertices) - 1
}

func (m *TriangleMesh) addIndex(i int) {
	if m.use32Bit {
		m.indices32 = append(m.indices32, uint32(i))
	} else {
		m.indices16 = append(m.indices16, uint16(i))
	}
}

func (m *TriangleMesh) numIndices() int {
	if m.use32Bit {
		return len(m.indices32)
	}
	return len(m.indices16)
}

func (m *TriangleMesh) index(i int) int {
	if m.use32Bit {
		return int(m.indices32[i])
	}
	return int(m.indices16[i])
}

func (m *TriangleMesh) NumTriangles() int {
	return m.numIndices() / 3
}

func (m *TriangleMesh) NumVertices() int {
	return len(m.vertices)
}

// Triangle returns the local-space vertices of triangle i
func (m *TriangleMesh) Triangle(i int) [3]rl.Vector3 {
	return [3]rl.Vector3{
		m.vertices[m.index(i*3)],
		m.vertices[m.index(i*3+1)],
		m.vertices[m.index(i*3+2)],
	}
}

// LocalBounds returns the bounds of all vertices in mesh space
func (m *TriangleMesh) LocalBounds() physics.AABB {
	m.Build()
	if m.root == nil {
		return physics.AABB{}
	}
	return m.root.bounds
}

func (m *TriangleMesh) Bounds(t physics.Transform) physics.AABB {
	if m.NumTriangles() == 0 {
		return physics.AABB{Min: t.Position, Max: t.Position}
	}
	return m.LocalBounds().Transformed(t)
}

// Build (re)constructs the BVH if triangles were added since the last build
func (m *TriangleMesh) Build() {
	if !m.dirty && m.root != nil {
		return
	}
	m.dirty = false
	n := m.NumTriangles()
	if n == 0 {
		m.root = nil
		return
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	m.root = m.buildNode(indices, 0)
}

// Query calls fn for every triangle whose bounds overlap the local-space box.
// Returning false from fn stops the walk.
func (m *TriangleMesh) Query(local physics.AABB, fn func(index int, tri [3]rl.Vector3) bool) {
	m.Build()
	m.queryNode(m.root, local, fn)
}

func (m *TriangleMesh) queryNode(node *bvhNode, query physics.AABB, fn func(int, [3]rl.Vector3) bool) bool {
	if node == nil || !node.bounds.Intersects(query) {
		return true
	}
	if node.triangles != nil {
		for _, idx := range node.triangles {
			tri := m.Triangle(idx)
			if !triangleBounds(tri).Intersects(query) {
				continue
			}
			if !fn(idx, tri) {
				return false
			}
		}
		return true
	}
	return m.queryNode(node.left, query, fn) && m.queryNode(node.right, query, fn)
}
