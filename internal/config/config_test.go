package config

import (
	"os"
	"path/filepath"
	"testing"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/collision"
	"narrowphase/internal/shape"
	"narrowphase/internal/softbody"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfigMatchesConstructionDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, collision.DefaultConstructionInfo(), cfg.ConstructionInfo())
	assert.True(t, cfg.SoftBody.ConcaveCollisions)
	assert.False(t, cfg.SoftBody.Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrowphase.yaml")
	data := `
collision:
  use_epa: false
  sphere_box: true
  algorithm_pool_size: 128
  convex_convex:
    iterations: 4
    threshold: 2
soft_body:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Collision.UseEPA)
	assert.True(t, cfg.Collision.SphereBox)
	assert.Equal(t, 128, cfg.Collision.AlgorithmPoolSize)
	assert.Equal(t, MultipointConfig{Iterations: 4, Threshold: 2}, cfg.Collision.ConvexConvex)
	// untouched keys keep their defaults
	assert.Equal(t, collision.DefaultStackAllocatorSize, cfg.Collision.StackAllocatorSize)
	assert.True(t, cfg.SoftBody.ConcaveCollisions)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrowphase.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collision:\n  algorithm_pool_size: 128\n"), 0644))

	t.Setenv("NARROWPHASE_COLLISION_ALGORITHM_POOL_SIZE", "64")
	t.Setenv("NARROWPHASE_COLLISION_CONVEX_PLANE_ITERATIONS", "3")
	t.Setenv("NARROWPHASE_SOFT_BODY_ENABLED", "true")
	t.Setenv("NARROWPHASE_LOG_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Collision.AlgorithmPoolSize)
	assert.Equal(t, 3, cfg.Collision.ConvexPlane.Iterations)
	assert.True(t, cfg.SoftBody.Enabled)
	assert.True(t, cfg.Logging.Verbose)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		t.Setenv("NARROWPHASE_COLLISION_STACK_ALLOCATOR_SIZE", "lots")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("collision: [1, 2"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
	t.Run("range", func(t *testing.T) {
		t.Setenv("NARROWPHASE_COLLISION_CONVEX_CONVEX_THRESHOLD", "-1")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "narrowphase.yaml")
	cfg := DefaultConfig()
	cfg.Collision.SphereBox = true
	cfg.Collision.CustomMaxElementSize = 512
	cfg.SoftBody.Enabled = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestBuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collision.StackAllocatorSize = 64 * 1024
	cfg.Collision.AlgorithmPoolSize = 8
	cfg.Collision.ManifoldPoolSize = 8
	cfg.Collision.ConvexConvex = MultipointConfig{Iterations: 6, Threshold: 3}
	cfg.SoftBody.Enabled = true

	c, err := cfg.Build(zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, softbody.KindSoftSoft, c.Resolve(shape.TypeSoftBody, shape.TypeSoftBody).Kind())
	mp, err := c.Multipoint(collision.PairConvexConvex)
	require.NoError(t, err)
	assert.Equal(t, algorithm.Multipoint{Iterations: 6, MinimumPointsThreshold: 3}, mp)

	cfg.SoftBody.Enabled = false
	rigid, err := cfg.Build(nil)
	require.NoError(t, err)
	defer rigid.Close()
	assert.Equal(t, algorithm.KindEmpty, rigid.Resolve(shape.TypeSoftBody, shape.TypeSoftBody).Kind())
}
