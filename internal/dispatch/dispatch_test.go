package dispatch

import (
	"testing"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/collision"
	"narrowphase/internal/physics"
	"narrowphase/internal/shape"
	"narrowphase/internal/softbody"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T, poolSize int) *collision.Configuration {
	t.Helper()
	info := collision.DefaultConstructionInfo()
	info.DefaultStackAllocatorSize = 64 * 1024
	info.DefaultMaxCollisionAlgorithmPoolSize = poolSize
	info.DefaultMaxPersistentManifoldPoolSize = poolSize
	c, err := collision.New(info)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sphereAt(radius float32, pos rl.Vector3) *algorithm.Object {
	return algorithm.NewObject(shape.NewSphere(radius), physics.Translation(pos))
}

func TestProcessPairCachesByUnorderedPair(t *testing.T) {
	d := New(newConfig(t, 16))
	defer d.Close()

	a := sphereAt(1, rl.Vector3{})
	b := sphereAt(1, rl.Vector3{X: 1.5})

	m := d.ProcessPair(a, b)
	require.Equal(t, 1, m.Len())
	assert.InDelta(t, -0.5, m.Points()[0].Distance, 1e-5)

	again := d.ProcessPair(b, a)
	assert.Same(t, m, again)
	assert.Equal(t, 1, again.Len())
	assert.Len(t, d.Pairs(), 1)

	alg, ok := d.Algorithm(b, a)
	require.True(t, ok)
	assert.Equal(t, algorithm.KindSphereSphere, alg.Kind())

	stats := d.Stats()
	assert.Equal(t, 1, stats.Pairs)
	assert.Equal(t, 1, stats.PooledAlgorithms)
	assert.Equal(t, 1, stats.PooledManifolds)
	assert.Equal(t, 15, stats.FreeAlgorithmBlocks)
}

func TestProcessPairRefreshesContacts(t *testing.T) {
	d := New(newConfig(t, 16))
	defer d.Close()

	a := sphereAt(1, rl.Vector3{})
	b := sphereAt(1, rl.Vector3{X: 1.5})
	require.Equal(t, 1, d.ProcessPair(a, b).Len())

	b.Transform.Position.X = 4
	assert.Zero(t, d.ProcessPair(a, b).Len())
}

func TestChildAlgorithmsComeFromPool(t *testing.T) {
	d := New(newConfig(t, 16))
	defer d.Close()

	compound := shape.NewCompound()
	compound.AddChild(physics.Translation(rl.Vector3{X: -1}), shape.NewSphere(0.5))
	compound.AddChild(physics.Translation(rl.Vector3{X: 1}), shape.NewSphere(0.5))
	body := algorithm.NewObject(compound, physics.Identity())
	floor := algorithm.NewObject(shape.NewStaticPlane(rl.Vector3{Y: 1}, 0), physics.Translation(rl.Vector3{Y: -0.4}))

	m := d.ProcessPair(body, floor)
	assert.Equal(t, 2, m.Len())
	for _, p := range m.Points() {
		assert.InDelta(t, -0.1, p.Distance, 1e-4)
	}
	assert.Equal(t, 3, d.Stats().PooledAlgorithms)

	require.True(t, d.RemovePair(floor, body))
	assert.False(t, d.RemovePair(floor, body))
	stats := d.Stats()
	assert.Zero(t, stats.PooledAlgorithms)
	assert.Equal(t, 16, stats.FreeAlgorithmBlocks)
}

func TestPoolExhaustionFallsBackToHeap(t *testing.T) {
	d := New(newConfig(t, 1))

	a := sphereAt(1, rl.Vector3{})
	b := sphereAt(1, rl.Vector3{X: 1})
	c := sphereAt(1, rl.Vector3{Y: 1})

	require.Equal(t, 1, d.ProcessPair(a, b).Len())
	require.Equal(t, 1, d.ProcessPair(a, c).Len())

	stats := d.Stats()
	assert.Equal(t, 1, stats.PooledAlgorithms)
	assert.Equal(t, 1, stats.HeapAlgorithms)
	assert.Equal(t, 1, stats.PooledManifolds)
	assert.Equal(t, 1, stats.HeapManifolds)

	d.Close()
	stats = d.Stats()
	assert.Zero(t, stats.Pairs)
	assert.Zero(t, stats.PooledAlgorithms)
	assert.Zero(t, stats.HeapAlgorithms)
	assert.Equal(t, 1, stats.FreeAlgorithmBlocks)
}

func TestReleaseIgnoresUnknownAlgorithms(t *testing.T) {
	d := New(newConfig(t, 1))
	defer d.Close()

	pooled := d.FindAlgorithm(sphereAt(1, rl.Vector3{}), sphereAt(1, rl.Vector3{X: 1}))
	onHeap := d.FindAlgorithm(sphereAt(1, rl.Vector3{}), sphereAt(1, rl.Vector3{Y: 1}))
	require.Equal(t, 1, d.Stats().HeapAlgorithms)

	d.ReleaseAlgorithm(onHeap)
	d.ReleaseAlgorithm(onHeap)
	d.ReleaseAlgorithm(algorithm.NewEmptyFactory().Create(algorithm.CreateInfo{}, nil, nil))
	d.ReleaseAlgorithm(pooled)
	d.ReleaseAlgorithm(pooled)

	stats := d.Stats()
	assert.Zero(t, stats.HeapAlgorithms)
	assert.Zero(t, stats.PooledAlgorithms)
	assert.Equal(t, 1, stats.FreeAlgorithmBlocks)
}

func TestMeshPairsUseScratch(t *testing.T) {
	cfg := newConfig(t, 16)
	d := New(cfg)
	defer d.Close()

	mesh := shape.NewTriangleMesh(false)
	require.NoError(t, mesh.AddTriangle(rl.Vector3{X: -5, Z: -5}, rl.Vector3{X: 5, Z: -5}, rl.Vector3{X: 5, Z: 5}, true))
	require.NoError(t, mesh.AddTriangle(rl.Vector3{X: -5, Z: -5}, rl.Vector3{X: 5, Z: 5}, rl.Vector3{X: -5, Z: 5}, true))
	ground := algorithm.NewObject(mesh, physics.Translation(rl.Vector3{Y: -1}))
	ball := sphereAt(0.5, rl.Vector3{X: 1, Y: -0.6, Z: 2})

	scratch := cfg.StackAllocator().Value()
	require.Zero(t, scratch.Used())

	m := d.ProcessPair(ball, ground)
	require.GreaterOrEqual(t, m.Len(), 1)
	deepest, _ := m.Deepest()
	assert.InDelta(t, -0.1, deepest.Distance, 1e-4)
	assert.Zero(t, scratch.Used())
	assert.Positive(t, scratch.Peak())
}

// undersized reports a block size too small for any algorithm
type undersized struct {
	*collision.Configuration
}

func (undersized) RequiredPoolBlockSize() int { return 1 }

func TestOversizedFootprintPanics(t *testing.T) {
	d := New(undersized{newConfig(t, 4)})
	assert.Panics(t, func() {
		d.FindAlgorithm(sphereAt(1, rl.Vector3{}), sphereAt(1, rl.Vector3{}))
	})
}

func TestSoftBodyPairsUseExtendedRules(t *testing.T) {
	info := collision.DefaultConstructionInfo()
	info.DefaultMaxCollisionAlgorithmPoolSize = 16
	info.DefaultMaxPersistentManifoldPoolSize = 16
	cfg, err := softbody.NewConfiguration(info)
	require.NoError(t, err)
	defer cfg.Close()

	d := New(cfg)
	defer d.Close()

	cloth := algorithm.NewObject(shape.NewSoftBody(0.25, rl.Vector3{Y: 0.2}, rl.Vector3{X: 1, Y: 0.2}), physics.Identity())
	ground := algorithm.NewObject(shape.NewStaticPlane(rl.Vector3{Y: 1}, 0), physics.Identity())

	m := d.ProcessPair(cloth, ground)
	assert.Equal(t, 2, m.Len())

	alg, ok := d.Algorithm(cloth, ground)
	require.True(t, ok)
	assert.Equal(t, softbody.KindSoftConcave, alg.Kind())
	// node delegate plus its sphere-plane child
	assert.Equal(t, 2, d.Stats().PooledAlgorithms)
}

func TestMakePairIsOrderIndependent(t *testing.T) {
	a := sphereAt(1, rl.Vector3{})
	b := sphereAt(1, rl.Vector3{})
	assert.Equal(t, MakePair(a, b), MakePair(b, a))
}
