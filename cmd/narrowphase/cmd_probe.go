package main

import (
	"fmt"
	"text/tabwriter"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/dispatch"
	"narrowphase/internal/physics"
	"narrowphase/internal/shape"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var probeSteps int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run a small scene through the dispatcher and print the contacts",
	Args:  cobra.NoArgs,
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().IntVar(&probeSteps, "steps", 1, "Number of times to process every pair")
}

type probeBody struct {
	name string
	obj  *algorithm.Object
}

// probeScene places one shape of each family on or just into a ground plane
func probeScene() []probeBody {
	at := func(x, y, z float32) physics.Transform {
		return physics.Translation(rl.Vector3{X: x, Y: y, Z: z})
	}

	terrain := shape.NewTriangleMesh(false)
	for x := float32(-2); x < 2; x++ {
		for z := float32(-2); z < 2; z++ {
			_ = terrain.AddTriangle(rl.Vector3{X: x, Z: z}, rl.Vector3{X: x + 1, Z: z}, rl.Vector3{X: x, Z: z + 1}, true)
			_ = terrain.AddTriangle(rl.Vector3{X: x + 1, Z: z}, rl.Vector3{X: x + 1, Z: z + 1}, rl.Vector3{X: x, Z: z + 1}, true)
		}
	}

	pair := shape.NewCompound()
	pair.AddChild(at(-0.6, 0, 0), shape.NewSphere(0.5))
	pair.AddChild(at(0.6, 0, 0), shape.NewBox(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}))

	cloth := shape.NewSoftBody(shape.DefaultSoftBodyMargin,
		rl.Vector3{X: 7, Y: 0.2, Z: -1}, rl.Vector3{X: 8, Y: 0.2, Z: -1},
		rl.Vector3{X: 7, Y: 0.2, Z: 0}, rl.Vector3{X: 8, Y: 0.2, Z: 0},
	)

	return []probeBody{
		{"ground", algorithm.NewObject(shape.NewStaticPlane(rl.Vector3{Y: 1}, 0), physics.Identity())},
		{"ball", algorithm.NewObject(shape.NewSphere(0.5), at(-3, 0.45, 0))},
		{"ball2", algorithm.NewObject(shape.NewSphere(0.5), at(-3, 1.4, 0))},
		{"crate", algorithm.NewObject(shape.NewBox(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), at(3, 0.45, 0))},
		{"crate2", algorithm.NewObject(shape.NewBox(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}), at(3, 1.4, 0))},
		{"pair", algorithm.NewObject(pair, at(0, 0.45, 4))},
		{"terrain", algorithm.NewObject(terrain, at(0, 0.01, -6))},
		{"capsule", algorithm.NewObject(shape.NewCapsule(0.3, 0.5), at(0, 0.8, -6))},
		{"cloth", algorithm.NewObject(cloth, physics.Identity())},
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfiguration(cmd)
	if err != nil {
		return err
	}
	defer cfg.Close()

	d := dispatch.New(cfg, dispatch.WithLogger(logger))
	defer d.Close()

	bodies := probeScene()
	fmt.Fprintln(cmd.OutOrStdout(), title(fmt.Sprintf("probe: %d bodies, %d steps", len(bodies), probeSteps)))
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tA\tB\tALGORITHM\tCONTACTS\tDEEPEST")
	for step := 0; step < probeSteps; step++ {
		for i := range bodies {
			for j := i + 1; j < len(bodies); j++ {
				a, b := bodies[i], bodies[j]
				if !a.obj.Bounds().Intersects(b.obj.Bounds()) {
					continue
				}
				m := d.ProcessPair(a.obj, b.obj)
				alg, _ := d.Algorithm(a.obj, b.obj)
				deepest := "-"
				if p, ok := m.Deepest(); ok {
					deepest = fmt.Sprintf("%.4f", p.Distance)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n", step, a.name, b.name, alg.Kind(), m.Len(), deepest)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stats := d.Stats()
	logger.Debug("probe finished",
		zap.Int("pairs", stats.Pairs),
		zap.Int("pooled_algorithms", stats.PooledAlgorithms),
		zap.Int("heap_algorithms", stats.HeapAlgorithms),
	)
	fmt.Fprintln(cmd.OutOrStdout(), "\n"+mutedStyle.Render(fmt.Sprintf("pairs: %d  pooled algorithms: %d  heap algorithms: %d  free blocks: %d",
		stats.Pairs, stats.PooledAlgorithms, stats.HeapAlgorithms, stats.FreeAlgorithmBlocks)))
	return nil
}
