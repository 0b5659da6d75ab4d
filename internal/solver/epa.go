package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EpaMaxIterations limits polytope expansion
	EpaMaxIterations = 64
	// EpaTolerance is the distance improvement under which the closest face is accepted
	EpaTolerance = 1e-4

	epaMinFaceDistance = 1e-4
)

// EpaSolver expands the GJK simplex into a polytope until its closest face to
// the origin lies on the boundary of the Minkowski difference.
type EpaSolver struct {
	MaxIterations int
	Tolerance     float64

	fallback MinkowskiSolver
}

func NewEpaSolver() *EpaSolver {
	return &EpaSolver{MaxIterations: EpaMaxIterations, Tolerance: EpaTolerance}
}

func (e *EpaSolver) Name() string { return "epa" }

func (e *EpaSolver) Penetration(p Pair, simplex *Simplex) (Contact, bool) {
	// EPA needs a full tetrahedron; degenerate simplices are sampled instead
	if simplex.Count < 4 {
		return e.fallback.Penetration(p, simplex)
	}

	faces := initialFaces(simplex.Points)
	maxIterations := e.MaxIterations
	if maxIterations <= 0 {
		maxIterations = EpaMaxIterations
	}
	tolerance := e.Tolerance
	if tolerance <= 0 {
		tolerance = EpaTolerance
	}

	for i := 0; i < maxIterations && len(faces) > 0; i++ {
		closest := closestFace(faces)
		face := faces[closest]
		if math.IsInf(face.distance, 1) {
			break
		}

		support := p.Support(face.normal)
		distance := support.W.Dot(face.normal)

		if distance-face.distance < tolerance {
			return contactFrom(face.normal, face.distance, face.witnessA()), true
		}

		faces = expand(faces, support, closest)
	}

	// did not converge; the sampling solver still gives a usable answer
	return e.fallback.Penetration(p, simplex)
}

type epaFace struct {
	points   [3]Vertex
	normal   mgl64.Vec3
	distance float64
}

// newFace builds a face whose normal points away from opposite
func newFace(a, b, c Vertex, opposite mgl64.Vec3) epaFace {
	f := epaFace{points: [3]Vertex{a, b, c}}

	normal := b.W.Sub(a.W).Cross(c.W.Sub(a.W))
	if normal.Len() < 1e-12 {
		f.normal = mgl64.Vec3{0, 1, 0}
		f.distance = math.Inf(1)
		return f
	}
	normal = normal.Normalize()
	if normal.Dot(opposite.Sub(a.W)) > 0 {
		normal = normal.Mul(-1)
	}

	distance := a.W.Dot(normal)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
	}
	if distance < epaMinFaceDistance {
		distance = epaMinFaceDistance
	}

	f.normal = normal
	f.distance = distance
	return f
}

// witnessA maps the projection of the origin onto the face back onto shape A
func (f epaFace) witnessA() mgl64.Vec3 {
	u, v, w := barycentric(f.normal.Mul(f.distance), f.points[0].W, f.points[1].W, f.points[2].W)
	return f.points[0].A.Mul(u).Add(f.points[1].A.Mul(v)).Add(f.points[2].A.Mul(w))
}

func initialFaces(s [4]Vertex) []epaFace {
	a, b, c, d := s[0], s[1], s[2], s[3]
	return []epaFace{
		newFace(a, b, c, d.W),
		newFace(a, c, d, b.W),
		newFace(a, d, b, c.W),
		newFace(b, d, c, a.W),
	}
}

func closestFace(faces []epaFace) int {
	best := 0
	for i := 1; i < len(faces); i++ {
		if faces[i].distance < faces[best].distance {
			best = i
		}
	}
	return best
}

type epaEdge struct {
	a, b Vertex
}

func expand(faces []epaFace, support Vertex, closest int) []epaFace {
	var centroid mgl64.Vec3
	seen := make(map[mgl64.Vec3]struct{})
	for _, f := range faces {
		for _, p := range f.points {
			if _, ok := seen[p.W]; !ok {
				seen[p.W] = struct{}{}
				centroid = centroid.Add(p.W)
			}
		}
	}
	if len(seen) > 0 {
		centroid = centroid.Mul(1.0 / float64(len(seen)))
	}

	visible := make([]bool, len(faces))
	nVisible := 0
	for i, f := range faces {
		if support.W.Sub(f.points[0].W).Dot(f.normal) > 0 {
			visible[i] = true
			nVisible++
		}
	}
	if nVisible == 0 || nVisible == len(faces) {
		for i := range visible {
			visible[i] = i == closest
		}
	}

	// boundary edges appear in exactly one visible face
	counts := make(map[[2]mgl64.Vec3]int)
	edges := make(map[[2]mgl64.Vec3]epaEdge)
	for i, f := range faces {
		if !visible[i] {
			continue
		}
		for j := 0; j < 3; j++ {
			e := epaEdge{f.points[j], f.points[(j+1)%3]}
			key := edgeKey(e)
			counts[key]++
			edges[key] = e
		}
	}

	kept := faces[:0]
	for i, f := range faces {
		if !visible[i] {
			kept = append(kept, f)
		}
	}
	for key, n := range counts {
		if n == 1 {
			e := edges[key]
			kept = append(kept, newFace(e.a, e.b, support, centroid))
		}
	}
	return kept
}

func edgeKey(e epaEdge) [2]mgl64.Vec3 {
	if lessVec3(e.b.W, e.a.W) {
		return [2]mgl64.Vec3{e.b.W, e.a.W}
	}
	return [2]mgl64.Vec3{e.a.W, e.b.W}
}

func lessVec3(a, b mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// barycentric returns the weights of p relative to triangle abc
func barycentric(p, a, b, c mgl64.Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-18 {
		return 1, 0, 0
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}
