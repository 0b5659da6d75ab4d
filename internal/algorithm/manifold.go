package algorithm

import (
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	// MaxManifoldPoints is the contact capacity of a persistent manifold
	MaxManifoldPoints = 4
	// DefaultContactBreakingThreshold is the largest separation still kept as a contact
	DefaultContactBreakingThreshold = 0.02
)

// ManifoldFootprint is the pool block size of one persistent manifold
var ManifoldFootprint = int(unsafe.Sizeof(Manifold{}))

// ContactPoint is one contact between bodies A and B.
// NormalOnB points from B towards A. Distance is negative when penetrating,
// and PointOnA = PointOnB + NormalOnB*Distance.
type ContactPoint struct {
	PointOnA  rl.Vector3
	PointOnB  rl.Vector3
	NormalOnB rl.Vector3
	Distance  float32
}

// Manifold caches up to four contact points for one body pair
type Manifold struct {
	bodyA, bodyB *Object
	points       [MaxManifoldPoints]ContactPoint
	count        int

	ContactBreakingThreshold float32
}

func NewManifold(a, b *Object) *Manifold {
	m := &Manifold{}
	m.Init(a, b)
	return m
}

// Init resets m for a new pair
func (m *Manifold) Init(a, b *Object) {
	*m = Manifold{bodyA: a, bodyB: b, ContactBreakingThreshold: DefaultContactBreakingThreshold}
}

func (m *Manifold) BodyA() *Object { return m.bodyA }
func (m *Manifold) BodyB() *Object { return m.bodyB }

func (m *Manifold) Len() int {
	return m.count
}

// Points returns the live contacts. The slice aliases the manifold.
func (m *Manifold) Points() []ContactPoint {
	return m.points[:m.count]
}

func (m *Manifold) Clear() {
	m.count = 0
}

// Deepest returns the contact with the smallest distance
func (m *Manifold) Deepest() (ContactPoint, bool) {
	if m.count == 0 {
		return ContactPoint{}, false
	}
	best := m.points[0]
	for _, p := range m.points[1:m.count] {
		if p.Distance < best.Distance {
			best = p
		}
	}
	return best, true
}

// AddPoint inserts p. A point close to an existing one replaces it; when the
// manifold is full the point that keeps the largest contact area is dropped,
// never the deepest.
func (m *Manifold) AddPoint(p ContactPoint) {
	if idx := m.nearest(p); idx >= 0 {
		m.points[idx] = p
		return
	}
	if m.count < MaxManifoldPoints {
		m.points[m.count] = p
		m.count++
		return
	}
	m.points[m.replacementIndex(p)] = p
}

// RefreshContactPoints drops contacts separated beyond the breaking threshold
func (m *Manifold) RefreshContactPoints() {
	for i := m.count - 1; i >= 0; i-- {
		if m.points[i].Distance > m.ContactBreakingThreshold {
			m.count--
			m.points[i] = m.points[m.count]
		}
	}
}

func (m *Manifold) nearest(p ContactPoint) int {
	threshold := m.ContactBreakingThreshold * m.ContactBreakingThreshold
	best := -1
	for i := 0; i < m.count; i++ {
		d := rl.Vector3LengthSqr(rl.Vector3Subtract(m.points[i].PointOnB, p.PointOnB))
		if d < threshold {
			threshold = d
			best = i
		}
	}
	return best
}

// replacementIndex picks the slot whose replacement by p yields the widest quad
func (m *Manifold) replacementIndex(p ContactPoint) int {
	deepest := -1
	maxDepth := p.Distance
	for i := 0; i < m.count; i++ {
		if m.points[i].Distance < maxDepth {
			maxDepth = m.points[i].Distance
			deepest = i
		}
	}

	best := 0
	bestArea := float32(-1)
	for skip := 0; skip < MaxManifoldPoints; skip++ {
		if skip == deepest {
			continue
		}
		var quad [MaxManifoldPoints]rl.Vector3
		for i := 0; i < MaxManifoldPoints; i++ {
			quad[i] = m.points[i].PointOnA
		}
		quad[skip] = p.PointOnA
		if area := quadArea(quad); area > bestArea {
			bestArea = area
			best = skip
		}
	}
	return best
}

// quadArea approximates the area spanned by four points from their diagonals
func quadArea(q [MaxManifoldPoints]rl.Vector3) float32 {
	a := rl.Vector3LengthSqr(rl.Vector3CrossProduct(rl.Vector3Subtract(q[0], q[1]), rl.Vector3Subtract(q[2], q[3])))
	b := rl.Vector3LengthSqr(rl.Vector3CrossProduct(rl.Vector3Subtract(q[0], q[2]), rl.Vector3Subtract(q[1], q[3])))
	c := rl.Vector3LengthSqr(rl.Vector3CrossProduct(rl.Vector3Subtract(q[0], q[3]), rl.Vector3Subtract(q[1], q[2])))
	return max(a, b, c)
}

// Result receives contacts from an algorithm. It is passed by value so that
// child algorithms can be given a reoriented copy.
type Result struct {
	manifold *Manifold
	flipped  bool
}

func NewResult(m *Manifold) Result {
	return Result{manifold: m}
}

func (r Result) Manifold() *Manifold {
	return r.manifold
}

// Threshold is the largest separation worth reporting
func (r Result) Threshold() float32 {
	if r.manifold == nil {
		return DefaultContactBreakingThreshold
	}
	return r.manifold.ContactBreakingThreshold
}

// Oriented returns a result for an algorithm that sees the pair in reverse order when swapped is set
func (r Result) Oriented(swapped bool) Result {
	r.flipped = r.flipped != swapped
	return r
}

// AddContact records a contact in the algorithm's own argument order.
// normalOnB points from the algorithm's second body towards its first.
func (r Result) AddContact(normalOnB, pointOnB rl.Vector3, distance float32) {
	if r.manifold == nil {
		return
	}
	pointOnA := rl.Vector3Add(pointOnB, rl.Vector3Scale(normalOnB, distance))
	if r.flipped {
		r.manifold.AddPoint(ContactPoint{
			PointOnA:  pointOnB,
			PointOnB:  pointOnA,
			NormalOnB: rl.Vector3Negate(normalOnB),
			Distance:  distance,
		})
		return
	}
	r.manifold.AddPoint(ContactPoint{
		PointOnA:  pointOnA,
		PointOnB:  pointOnB,
		NormalOnB: normalOnB,
		Distance:  distance,
	})
}
