package solver

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphereSupport(center mgl64.Vec3, radius float64) SupportFunc {
	return func(dir mgl64.Vec3) mgl64.Vec3 {
		if dir.LenSqr() < 1e-16 {
			return center.Add(mgl64.Vec3{0, radius, 0})
		}
		return center.Add(dir.Normalize().Mul(radius))
	}
}

func boxSupport(center, half mgl64.Vec3) SupportFunc {
	return func(dir mgl64.Vec3) mgl64.Vec3 {
		var out mgl64.Vec3
		for i := 0; i < 3; i++ {
			if dir[i] < 0 {
				out[i] = center[i] - half[i]
			} else {
				out[i] = center[i] + half[i]
			}
		}
		return out
	}
}

func boxPair(a, b mgl64.Vec3) Pair {
	half := mgl64.Vec3{1, 1, 1}
	return Pair{
		SupportA: boxSupport(a, half),
		SupportB: boxSupport(b, half),
		CenterA:  a,
		CenterB:  b,
	}
}

func TestIntersectSeparated(t *testing.T) {
	gjk := NewVoronoiSimplexSolver()
	s := AcquireSimplex()
	defer ReleaseSimplex(s)

	assert.False(t, gjk.Intersect(boxPair(mgl64.Vec3{}, mgl64.Vec3{3, 0, 0}), s))

	p := Pair{
		SupportA: sphereSupport(mgl64.Vec3{}, 1),
		SupportB: sphereSupport(mgl64.Vec3{0, 2.5, 0}, 1),
		CenterB:  mgl64.Vec3{0, 2.5, 0},
	}
	s.Reset()
	assert.False(t, gjk.Intersect(p, s))
}

func TestIntersectOverlapping(t *testing.T) {
	gjk := NewVoronoiSimplexSolver()
	s := AcquireSimplex()
	defer ReleaseSimplex(s)

	assert.True(t, gjk.Intersect(boxPair(mgl64.Vec3{}, mgl64.Vec3{1.5, 0.2, 0.1}), s))
	assert.GreaterOrEqual(t, s.Count, 1)
}

func TestPenetrationSolvers(t *testing.T) {
	solvers := []PenetrationDepthSolver{NewEpaSolver(), NewMinkowskiSolver()}

	for _, pd := range solvers {
		t.Run(pd.Name(), func(t *testing.T) {
			gjk := NewVoronoiSimplexSolver()

			// boxes overlapping by 0.5 along X
			p := boxPair(mgl64.Vec3{}, mgl64.Vec3{1.5, 0.2, 0.1})
			s := AcquireSimplex()
			defer ReleaseSimplex(s)
			require.True(t, gjk.Intersect(p, s))

			c, ok := pd.Penetration(p, s)
			require.True(t, ok)
			assert.InDelta(t, 0.5, c.Depth, 1e-2)
			assert.InDelta(t, 1, c.Normal[0], 1e-2, "normal should point from A to B")

			// spheres overlapping by 0.5 along Y
			p = Pair{
				SupportA: sphereSupport(mgl64.Vec3{}, 1),
				SupportB: sphereSupport(mgl64.Vec3{0, 1.5, 0}, 1),
				CenterB:  mgl64.Vec3{0, 1.5, 0},
			}
			s.Reset()
			require.True(t, gjk.Intersect(p, s))
			c, ok = pd.Penetration(p, s)
			require.True(t, ok)
			assert.InDelta(t, 0.5, c.Depth, 2e-2)
			assert.InDelta(t, 1, c.Normal[1], 2e-2)
			assert.InDelta(t, 1, c.PointA[1], 2e-2)
			assert.InDelta(t, 0.5, c.PointB[1], 3e-2)
		})
	}
}

func TestSampleDirectionsAreUnit(t *testing.T) {
	require.Len(t, sampleDirections, MinkowskiSampleCount+6)
	for _, d := range sampleDirections {
		assert.InDelta(t, 1, d.Len(), 1e-9)
	}
}

func TestBarycentric(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{1, 0, 0}
	c := mgl64.Vec3{0, 1, 0}

	u, v, w := barycentric(mgl64.Vec3{0.25, 0.25, 0}, a, b, c)
	assert.InDelta(t, 0.5, u, 1e-12)
	assert.InDelta(t, 0.25, v, 1e-12)
	assert.InDelta(t, 0.25, w, 1e-12)
}
