package algorithm

import (
	"testing"

	"narrowphase/internal/alloc"
	"narrowphase/internal/physics"
	"narrowphase/internal/shape"
	"narrowphase/internal/solver"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(s shape.Shape, pos rl.Vector3) *Object {
	return NewObject(s, physics.Translation(pos))
}

func run(t *testing.T, f Factory, a, b *Object) *Manifold {
	t.Helper()
	m := NewManifold(a, b)
	alg := f.Create(CreateInfo{Dispatcher: testDispatcher{}}, a, b)
	require.NotNil(t, alg)
	assert.Equal(t, f.Kind(), alg.Kind())
	alg.Process(a, b, NewResult(m))
	alg.Release()
	return m
}

// testDispatcher resolves child pairs with the base factories
type testDispatcher struct{}

func (testDispatcher) FindAlgorithm(a, b *Object) Algorithm {
	ta, tb := a.Type(), b.Type()
	var f Factory
	switch {
	case ta == shape.TypeSphere && tb == shape.TypeSphere:
		f = NewSphereSphereFactory()
	case ta == shape.TypeSphere && tb == shape.TypeTriangle:
		f = NewSphereTriangleFactory(false)
	case shape.IsConvex(ta) && shape.IsInfinite(tb):
		f = NewConvexPlaneFactory(false, DefaultPlaneMultipoint)
	case shape.IsConvex(ta) && shape.IsConvex(tb):
		f = NewConvexConvexFactory(solver.NewVoronoiSimplexSolver(), solver.NewEpaSolver(), DefaultConvexMultipoint)
	default:
		f = NewEmptyFactory()
	}
	return f.Create(CreateInfo{Dispatcher: testDispatcher{}}, a, b)
}

func (testDispatcher) ReleaseAlgorithm(alg Algorithm) { alg.Release() }

func TestBaseFootprintsRegistered(t *testing.T) {
	for _, k := range BaseKinds() {
		size, ok := Footprint(k)
		assert.True(t, ok, "kind %d has no footprint", k)
		assert.Positive(t, size)
		assert.NotEmpty(t, KindName(k))
	}
	assert.Positive(t, ManifoldFootprint)
	assert.Equal(t, "ConvexConvex", KindConvexConvex.String())
}

func TestRegisterFootprintDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	RegisterFootprint(KindSphereSphere, "SphereSphere", 8)
}

func TestRegisterKind(t *testing.T) {
	k := RegisterKind("TestOnlyKind", 24)
	assert.GreaterOrEqual(t, k, numBaseKinds)
	size, ok := Footprint(k)
	assert.True(t, ok)
	assert.Equal(t, 24, size)

	assert.Panics(t, func() { RegisterKind("TestOnlyKind", 24) })
	assert.Panics(t, func() { RegisterKind("ZeroSized", 0) })

	entries := Footprints()
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Kind, entries[i].Kind)
	}
}

func TestSphereSphere(t *testing.T) {
	a := obj(shape.NewSphere(1), rl.Vector3{})
	b := obj(shape.NewSphere(1), rl.Vector3{X: 1.5})

	m := run(t, NewSphereSphereFactory(), a, b)
	require.Equal(t, 1, m.Len())
	p := m.Points()[0]
	assert.InDelta(t, -0.5, p.Distance, 1e-5)
	assert.InDelta(t, -1, p.NormalOnB.X, 1e-5)
	assert.InDelta(t, 0.5, p.PointOnB.X, 1e-5)
	assert.InDelta(t, 1, p.PointOnA.X, 1e-5)

	far := obj(shape.NewSphere(1), rl.Vector3{X: 5})
	assert.Equal(t, 0, run(t, NewSphereSphereFactory(), a, far).Len())
}

func TestSwappedSphereBoxMatchesDirect(t *testing.T) {
	sphere := obj(shape.NewSphere(0.5), rl.Vector3{Y: 1.3})
	box := obj(shape.NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}), rl.Vector3{})

	direct := run(t, NewSphereBoxFactory(false), sphere, box)
	swapped := run(t, NewSphereBoxFactory(true), box, sphere)

	require.Equal(t, 1, direct.Len())
	require.Equal(t, 1, swapped.Len())
	d := direct.Points()[0]
	s := swapped.Points()[0]

	assert.InDelta(t, d.Distance, s.Distance, 1e-5)
	assert.InDelta(t, -0.2, d.Distance, 1e-5)
	// same contact seen from the other side
	assert.InDelta(t, d.PointOnA.Y, s.PointOnB.Y, 1e-5)
	assert.InDelta(t, d.PointOnB.Y, s.PointOnA.Y, 1e-5)
	assert.InDelta(t, -d.NormalOnB.Y, s.NormalOnB.Y, 1e-5)
}

func TestSphereInsideBox(t *testing.T) {
	sphere := obj(shape.NewSphere(0.5), rl.Vector3{Y: 0.8})
	box := obj(shape.NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}), rl.Vector3{})

	m := run(t, NewSphereBoxFactory(false), sphere, box)
	require.Equal(t, 1, m.Len())
	p := m.Points()[0]
	assert.InDelta(t, -0.7, p.Distance, 1e-5)
	assert.InDelta(t, 1, p.NormalOnB.Y, 1e-5)
}

func TestSphereTriangle(t *testing.T) {
	tri := shape.NewTriangle(rl.Vector3{X: -1, Z: -1}, rl.Vector3{X: 1, Z: -1}, rl.Vector3{Z: 1})
	sphere := obj(shape.NewSphere(0.5), rl.Vector3{Y: 0.4})

	m := run(t, NewSphereTriangleFactory(false), sphere, obj(tri, rl.Vector3{}))
	require.Equal(t, 1, m.Len())
	assert.InDelta(t, -0.1, m.Points()[0].Distance, 1e-5)
	assert.InDelta(t, 1, m.Points()[0].NormalOnB.Y, 1e-5)
}

func TestBoxBoxStack(t *testing.T) {
	half := rl.Vector3{X: 1, Y: 1, Z: 1}
	top := obj(shape.NewBox(half), rl.Vector3{Y: 1.9})
	bottom := obj(shape.NewBox(half), rl.Vector3{})

	m := run(t, NewBoxBoxFactory(), top, bottom)
	assert.Equal(t, MaxManifoldPoints, m.Len())
	for _, p := range m.Points() {
		assert.InDelta(t, -0.1, p.Distance, 1e-4)
		assert.InDelta(t, 1, p.NormalOnB.Y, 1e-4)
	}
}

func TestConvexPlane(t *testing.T) {
	plane := obj(shape.NewStaticPlane(rl.Vector3{Y: 1}, 0), rl.Vector3{})
	hull := obj(shape.NewConvexHull(
		rl.Vector3{X: -1, Y: -1}, rl.Vector3{X: 1, Y: -1}, rl.Vector3{Y: 1}, rl.Vector3{Z: 1, Y: -1},
	), rl.Vector3{Y: 0.9})

	m := run(t, NewConvexPlaneFactory(false, DefaultPlaneMultipoint), hull, plane)
	require.GreaterOrEqual(t, m.Len(), 1)
	deepest, _ := m.Deepest()
	assert.InDelta(t, -0.1, deepest.Distance, 1e-4)
	assert.InDelta(t, 1, deepest.NormalOnB.Y, 1e-4)

	swapped := run(t, NewConvexPlaneFactory(true, DefaultPlaneMultipoint), plane, hull)
	require.GreaterOrEqual(t, swapped.Len(), 1)
	sd, _ := swapped.Deepest()
	assert.InDelta(t, -0.1, sd.Distance, 1e-4)
	assert.InDelta(t, -1, sd.NormalOnB.Y, 1e-4)
}

func TestConvexPlaneMultipointAddsPoints(t *testing.T) {
	plane := obj(shape.NewStaticPlane(rl.Vector3{Y: 1}, 0), rl.Vector3{})
	box := obj(shape.NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}), rl.Vector3{Y: 0.99})

	single := run(t, NewConvexPlaneFactory(false, Multipoint{}), box, plane)
	assert.Equal(t, 1, single.Len())

	multi := run(t, NewConvexPlaneFactory(false, Multipoint{Iterations: 4, MinimumPointsThreshold: 4}), box, plane)
	assert.Greater(t, multi.Len(), 1)
}

func TestConvexConvex(t *testing.T) {
	for _, pd := range []solver.PenetrationDepthSolver{solver.NewEpaSolver(), solver.NewMinkowskiSolver()} {
		t.Run(pd.Name(), func(t *testing.T) {
			f := NewConvexConvexFactory(solver.NewVoronoiSimplexSolver(), pd, DefaultConvexMultipoint)
			a := obj(shape.NewBox(rl.Vector3{X: 1, Y: 1, Z: 1}), rl.Vector3{})
			b := obj(shape.NewSphere(1), rl.Vector3{X: 1.8})

			m := run(t, f, a, b)
			require.Equal(t, 1, m.Len())
			p := m.Points()[0]
			assert.InDelta(t, -0.2, p.Distance, 2e-2)
			assert.InDelta(t, -1, p.NormalOnB.X, 2e-2)

			apart := obj(shape.NewSphere(1), rl.Vector3{X: 3})
			assert.Equal(t, 0, run(t, f, a, apart).Len())
		})
	}
}

func TestMultipointCopiedAtCreation(t *testing.T) {
	f := NewConvexConvexFactory(solver.NewVoronoiSimplexSolver(), solver.NewEpaSolver(), DefaultConvexMultipoint)
	a := obj(shape.NewSphere(1), rl.Vector3{})
	b := obj(shape.NewSphere(1), rl.Vector3{X: 1})

	before := f.Create(CreateInfo{}, a, b).(*ConvexConvexAlgorithm)
	f.SetMultipoint(Multipoint{Iterations: 5, MinimumPointsThreshold: 2})
	after := f.Create(CreateInfo{}, a, b).(*ConvexConvexAlgorithm)

	assert.Equal(t, DefaultConvexMultipoint, before.Multipoint())
	assert.Equal(t, Multipoint{Iterations: 5, MinimumPointsThreshold: 2}, after.Multipoint())
}

func TestConvexConcave(t *testing.T) {
	mesh := shape.NewTriangleMesh(true)
	require.NoError(t, mesh.AddTriangle(rl.Vector3{X: -5, Z: -5}, rl.Vector3{X: 5, Z: -5}, rl.Vector3{X: 5, Z: 5}, true))
	require.NoError(t, mesh.AddTriangle(rl.Vector3{X: -5, Z: -5}, rl.Vector3{X: 5, Z: 5}, rl.Vector3{X: -5, Z: 5}, true))
	ground := obj(mesh, rl.Vector3{Y: -1})
	sphere := obj(shape.NewSphere(0.5), rl.Vector3{Y: -0.6})

	m := run(t, NewConvexConcaveFactory(false), sphere, ground)
	require.GreaterOrEqual(t, m.Len(), 1)
	deepest, _ := m.Deepest()
	assert.InDelta(t, -0.1, deepest.Distance, 1e-4)

	swapped := run(t, NewConvexConcaveFactory(true), ground, sphere)
	require.GreaterOrEqual(t, swapped.Len(), 1)
	sd, _ := swapped.Deepest()
	assert.InDelta(t, -0.1, sd.Distance, 1e-4)
	assert.InDelta(t, -1, sd.NormalOnB.Y, 1e-4)
}

func TestConvexConcaveUsesScratch(t *testing.T) {
	mesh := shape.NewTriangleMesh(true)
	for x := float32(-2); x < 2; x++ {
		require.NoError(t, mesh.AddTriangle(rl.Vector3{X: x, Z: -1}, rl.Vector3{X: x + 1, Z: -1}, rl.Vector3{X: x + 1, Z: 1}, true))
		require.NoError(t, mesh.AddTriangle(rl.Vector3{X: x, Z: -1}, rl.Vector3{X: x + 1, Z: 1}, rl.Vector3{X: x, Z: 1}, true))
	}
	ground := obj(mesh, rl.Vector3{Y: -1})
	sphere := obj(shape.NewSphere(0.5), rl.Vector3{Y: -0.6})

	scratch, err := alloc.NewStackAllocator(1024)
	require.NoError(t, err)
	_, err = scratch.Allocate(32)
	require.NoError(t, err)
	mark := scratch.Used()

	m := NewManifold(sphere, ground)
	alg := NewConvexConcaveFactory(false).Create(CreateInfo{Dispatcher: testDispatcher{}, Scratch: scratch}, sphere, ground)
	alg.Process(sphere, ground, NewResult(m))
	defer alg.Release()

	assert.Equal(t, mark, scratch.Used())
	assert.Greater(t, scratch.Peak(), mark)
	require.GreaterOrEqual(t, m.Len(), 1)
	deepest, _ := m.Deepest()
	assert.InDelta(t, -0.1, deepest.Distance, 1e-4)
}

func TestConvexConcaveScratchExhausted(t *testing.T) {
	mesh := shape.NewTriangleMesh(true)
	require.NoError(t, mesh.AddTriangle(rl.Vector3{X: -5, Z: -5}, rl.Vector3{X: 5, Z: -5}, rl.Vector3{X: 5, Z: 5}, true))
	ground := obj(mesh, rl.Vector3{Y: -1})
	sphere := obj(shape.NewSphere(0.5), rl.Vector3{X: 2, Y: -0.6, Z: -2})

	scratch, err := alloc.NewStackAllocator(16)
	require.NoError(t, err)
	_, err = scratch.Allocate(16)
	require.NoError(t, err)

	m := NewManifold(sphere, ground)
	alg := NewConvexConcaveFactory(false).Create(CreateInfo{Dispatcher: testDispatcher{}, Scratch: scratch}, sphere, ground)
	alg.Process(sphere, ground, NewResult(m))
	defer alg.Release()

	assert.Equal(t, 16, scratch.Used())
	require.Equal(t, 1, m.Len())
	assert.InDelta(t, -0.1, m.Points()[0].Distance, 1e-4)
}

func TestCompound(t *testing.T) {
	c := shape.NewCompound()
	c.AddChild(physics.Translation(rl.Vector3{X: -2}), shape.NewSphere(1))
	c.AddChild(physics.Translation(rl.Vector3{X: 2}), shape.NewSphere(1))
	compound := obj(c, rl.Vector3{})
	probe := obj(shape.NewSphere(1), rl.Vector3{X: 3.5})

	m := run(t, NewCompoundFactory(false), compound, probe)
	require.Equal(t, 1, m.Len())
	assert.InDelta(t, -0.5, m.Points()[0].Distance, 1e-5)

	swapped := run(t, NewCompoundFactory(true), probe, compound)
	require.Equal(t, 1, swapped.Len())
	assert.InDelta(t, -0.5, swapped.Points()[0].Distance, 1e-5)
	assert.InDelta(t, 1, swapped.Points()[0].NormalOnB.X, 1e-5)
}

func TestEmptyAlgorithm(t *testing.T) {
	m := run(t, NewEmptyFactory(), obj(shape.NewSphere(1), rl.Vector3{}), obj(shape.NewSphere(1), rl.Vector3{}))
	assert.Equal(t, 0, m.Len())
}

func TestManifoldKeepsDeepestAndWidest(t *testing.T) {
	m := NewManifold(nil, nil)
	corners := []rl.Vector3{{X: -1, Z: -1}, {X: 1, Z: -1}, {X: 1, Z: 1}, {X: -1, Z: 1}}
	for i, c := range corners {
		m.AddPoint(ContactPoint{PointOnA: c, PointOnB: c, NormalOnB: rl.Vector3{Y: 1}, Distance: -0.1 * float32(i+1)})
	}
	require.Equal(t, 4, m.Len())

	// a point near the centre would shrink the area; the deepest point must survive
	m.AddPoint(ContactPoint{PointOnA: rl.Vector3{X: 0.1}, PointOnB: rl.Vector3{X: 0.1}, Distance: -0.05})
	assert.Equal(t, 4, m.Len())
	deepest, ok := m.Deepest()
	require.True(t, ok)
	assert.InDelta(t, -0.4, deepest.Distance, 1e-6)

	// a point on top of an existing one replaces it
	m.AddPoint(ContactPoint{PointOnA: corners[3], PointOnB: corners[3], Distance: -0.9})
	assert.Equal(t, 4, m.Len())
	deepest, _ = m.Deepest()
	assert.InDelta(t, -0.9, deepest.Distance, 1e-6)

	m.Points()[0].Distance = 1
	m.RefreshContactPoints()
	assert.Equal(t, 3, m.Len())

	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestResultOrientation(t *testing.T) {
	m := NewManifold(nil, nil)
	r := NewResult(m).Oriented(true)
	r.AddContact(rl.Vector3{Y: 1}, rl.Vector3{Y: 1}, -0.5)

	p := m.Points()[0]
	assert.Equal(t, rl.Vector3{Y: 1}, p.PointOnA)
	assert.Equal(t, rl.Vector3{Y: 0.5}, p.PointOnB)
	assert.Equal(t, rl.Vector3{Y: -1}, p.NormalOnB)

	// flipping twice restores the original order
	assert.Equal(t, NewResult(m), NewResult(m).Oriented(true).Oriented(true))
}
