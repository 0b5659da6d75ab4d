package main

import (
	"fmt"
	"text/tabwriter"

	"narrowphase/internal/algorithm"
	"narrowphase/internal/collision"
	"narrowphase/internal/shape"

	"github.com/spf13/cobra"
)

var supportedOnly bool

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the resolved algorithm for every ordered pair of shape types",
	Args:  cobra.NoArgs,
	RunE:  runMatrix,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <typeA> <typeB>",
	Short: "Resolve a single ordered pair of shape types",
	Example: `  narrowphase resolve Box Sphere --sphere-box
  narrowphase resolve SoftBody ConvexHull --soft-body`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	matrixCmd.Flags().BoolVar(&supportedOnly, "supported", false, "Skip pairs that fall back to the empty algorithm")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfiguration(cmd)
	if err != nil {
		return err
	}
	defer cfg.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title(fmt.Sprintf("dispatch matrix (%s solver)", cfg.PenetrationSolver().Name())))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "A\tB\tALGORITHM\tSWAPPED\tRULES")
	for _, e := range cfg.Matrix() {
		if supportedOnly && e.Kind == algorithm.KindEmpty {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", e.A, e.B, e.Kind, e.Swapped, ruleSetName(e))
	}
	return w.Flush()
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := shape.ParseType(args[0])
	if err != nil {
		return err
	}
	b, err := shape.ParseType(args[1])
	if err != nil {
		return err
	}

	cfg, err := buildConfiguration(cmd)
	if err != nil {
		return err
	}
	defer cfg.Close()

	f := cfg.Resolve(a, b)
	fmt.Fprintf(cmd.OutOrStdout(), "%s x %s -> %s (swapped=%t)\n", a, b, f.Kind(), f.Swapped())
	return nil
}

func ruleSetName(e collision.Entry) string {
	if e.RuleSet == "" {
		return "fallback"
	}
	return e.RuleSet
}
