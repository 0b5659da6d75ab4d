package solver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinkowskiSampleCount is the number of sphere directions probed per query
const MinkowskiSampleCount = 42

// sampleDirections is a fixed Fibonacci sphere plus the principal axes, so
// results are deterministic between runs.
var sampleDirections = buildSampleDirections(MinkowskiSampleCount)

func buildSampleDirections(n int) []mgl64.Vec3 {
	dirs := []mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - (float64(i)+0.5)*2/float64(n)
		r := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		dirs = append(dirs, mgl64.Vec3{math.Cos(theta) * r, y, math.Sin(theta) * r})
	}
	return dirs
}

// MinkowskiSolver estimates penetration by sampling support distances of the
// Minkowski difference over a fixed direction set and keeping the shallowest.
type MinkowskiSolver struct{}

func NewMinkowskiSolver() *MinkowskiSolver {
	return &MinkowskiSolver{}
}

func (MinkowskiSolver) Name() string { return "minkowski" }

func (MinkowskiSolver) Penetration(p Pair, simplex *Simplex) (Contact, bool) {
	best := math.Inf(1)
	var bestDir mgl64.Vec3
	var bestA mgl64.Vec3

	try := func(dir mgl64.Vec3) {
		if dir.LenSqr() < 1e-16 {
			return
		}
		dir = dir.Normalize()
		v := p.Support(dir)
		if depth := v.W.Dot(dir); depth < best {
			best = depth
			bestDir = dir
			bestA = v.A
		}
	}

	try(p.CenterB.Sub(p.CenterA))
	if simplex != nil {
		for i := 0; i < simplex.Count; i++ {
			try(simplex.Points[i].W)
		}
	}
	for _, d := range sampleDirections {
		try(d)
	}

	if math.IsInf(best, 1) || best < 0 {
		return Contact{}, false
	}
	return contactFrom(bestDir, best, bestA), true
}
