// Package solver holds the numeric services shared by every convex pair
// algorithm: a GJK simplex solver that detects overlap and penetration depth
// solvers that measure it.
//
// All computations run in double precision on the Minkowski difference A - B.
package solver

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMaxIterations bounds GJK refinement
const DefaultMaxIterations = 32

// SupportFunc returns the world-space point of a convex shape furthest along dir
type SupportFunc func(dir mgl64.Vec3) mgl64.Vec3

// Pair is a convex pair as seen by the solvers
type Pair struct {
	SupportA SupportFunc
	SupportB SupportFunc
	CenterA  mgl64.Vec3
	CenterB  mgl64.Vec3
}

// Vertex is a Minkowski difference point together with the point of A that produced it
type Vertex struct {
	W mgl64.Vec3 // a - b
	A mgl64.Vec3
}

// Support computes the support vertex of A - B along dir
func (p Pair) Support(dir mgl64.Vec3) Vertex {
	a := p.SupportA(dir)
	b := p.SupportB(dir.Mul(-1))
	return Vertex{W: a.Sub(b), A: a}
}

// Simplex represents a set of 1-4 points in the Minkowski difference.
type Simplex struct {
	Points [4]Vertex
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

var simplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// AcquireSimplex returns a cleared simplex from the pool
func AcquireSimplex() *Simplex {
	s := simplexPool.Get().(*Simplex)
	s.Reset()
	return s
}

// ReleaseSimplex hands s back to the pool
func ReleaseSimplex(s *Simplex) {
	simplexPool.Put(s)
}

// VoronoiSimplexSolver runs GJK, reducing the simplex to the Voronoi region
// closest to the origin each iteration. It keeps no state between calls and is
// safe to share between goroutines.
type VoronoiSimplexSolver struct {
	MaxIterations int
}

func NewVoronoiSimplexSolver() *VoronoiSimplexSolver {
	return &VoronoiSimplexSolver{MaxIterations: DefaultMaxIterations}
}

// Intersect reports whether the pair overlaps. On overlap the simplex usually
// holds a tetrahedron enclosing the origin, which EPA uses as its seed.
func (v *VoronoiSimplexSolver) Intersect(p Pair, simplex *Simplex) bool {
	direction := p.CenterB.Sub(p.CenterA)
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Points[0] = p.Support(direction)
	simplex.Count = 1

	direction = simplex.Points[0].W.Mul(-1)
	if direction.LenSqr() < 1e-16 {
		// touching at a single point
		return true
	}

	maxIterations := v.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	for i := 0; i < maxIterations; i++ {
		newPoint := p.Support(direction)

		// the new point does not pass the origin, so the origin cannot be enclosed
		if newPoint.W.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

// line handles the 2 point simplex
func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.W.Sub(a.W)
	ao := a.W.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	// Region A
	if ab.Dot(ao) <= 0 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	// Region AB
	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.LenSqr() < 1e-8 {
		// origin lies on the segment
		return true
	}

	*direction = abPerp
	return false
}

// triangle handles the 3 point simplex
func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ao := a.W.Mul(-1)

	abc := ab.Cross(ac)

	// Collinear points, keep the newest edge
	if abc.LenSqr() < 1e-10 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		return line(simplex, direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	if abc.Cross(ac).Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// below the face, flip winding
		simplex.Points[0] = a
		simplex.Points[1] = c
		simplex.Points[2] = b
		simplex.Count = 3
		*direction = abc.Mul(-1)
	}

	return false
}

// tetrahedron handles the 4 point simplex; the only case that can enclose the origin
func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ad := d.W.Sub(a.W)
	ao := a.W.Mul(-1)

	// Face normals point away from the opposite vertex
	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if abc.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if acd.Dot(ao) > 0 {
		simplex.Points[0] = d
		simplex.Points[1] = c
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if adb.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = d
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	return true
}
