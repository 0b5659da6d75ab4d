package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with flags reset to their defaults
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestResolveCmd(t *testing.T) {
	out, err := execute(t, "resolve", "Box", "Sphere", "--sphere-box")
	require.NoError(t, err)
	assert.Contains(t, out, "Box x Sphere -> SphereBox (swapped=true)")

	out, err = execute(t, "resolve", "Box", "Sphere")
	require.NoError(t, err)
	assert.Contains(t, out, "-> ConvexConvex (swapped=false)")

	out, err = execute(t, "resolve", "convexhull", "softbody", "--soft-body")
	require.NoError(t, err)
	assert.Contains(t, out, "ConvexHull x SoftBody -> SoftRigid (swapped=true)")

	_, err = execute(t, "resolve", "Box", "Teapot")
	assert.Error(t, err)
}

func TestMatrixCmd(t *testing.T) {
	out, err := execute(t, "matrix", "--supported")
	require.NoError(t, err)
	assert.Contains(t, out, "SphereSphere")
	assert.Contains(t, out, "default")
	assert.NotContains(t, out, "fallback")

	out, err = execute(t, "matrix")
	require.NoError(t, err)
	assert.Contains(t, out, "fallback")
}

func TestPoolSizeAndFootprintsCmd(t *testing.T) {
	out, err := execute(t, "poolsize", "--soft-body")
	require.NoError(t, err)
	assert.Contains(t, out, "pool block size:")
	assert.Contains(t, out, "SoftConcave")

	out, err = execute(t, "footprints")
	require.NoError(t, err)
	assert.Contains(t, out, "ConvexConvex")
	assert.Contains(t, out, "SoftSoft")
}

func TestProbeCmd(t *testing.T) {
	out, err := execute(t, "probe", "--soft-body", "--steps", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "SphereSphere")
	assert.Contains(t, out, "ConvexPlane")
	assert.Contains(t, out, "SoftConcave")
	assert.Contains(t, out, "heap algorithms: 0")
}

func TestConfigSaveAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrowphase.yaml")
	_, err := execute(t, "config", "save", path, "--sphere-box", "--minkowski")
	require.NoError(t, err)

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "sphere_box: true")
	assert.Contains(t, out, "use_epa: false")

	out, err = execute(t, "resolve", "Sphere", "Box", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "SphereBox")
}
