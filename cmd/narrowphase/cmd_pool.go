package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"narrowphase/internal/algorithm"

	"github.com/spf13/cobra"
)

var poolSizeCmd = &cobra.Command{
	Use:   "poolsize",
	Short: "Print the pool block size and the footprints it covers",
	Args:  cobra.NoArgs,
	RunE:  runPoolSize,
}

var footprintsCmd = &cobra.Command{
	Use:   "footprints",
	Short: "Print every registered algorithm footprint",
	Args:  cobra.NoArgs,
	RunE:  runFootprints,
}

func runPoolSize(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfiguration(cmd)
	if err != nil {
		return err
	}
	defer cfg.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title(fmt.Sprintf("pool block size: %d bytes", cfg.RequiredPoolBlockSize())))
	fmt.Fprintf(out, "manifold block size: %d bytes\n", algorithm.ManifoldFootprint)
	fmt.Fprintf(out, "penetration solver: %s\n\n", cfg.PenetrationSolver().Name())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tBYTES")
	for _, k := range cfg.Kinds() {
		size, _ := algorithm.Footprint(k)
		fmt.Fprintf(w, "%s\t%d\n", k, size)
	}
	return w.Flush()
}

// runFootprints lists the whole table, including kinds no active rule set uses
func runFootprints(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfiguration(cmd)
	if err != nil {
		return err
	}
	defer cfg.Close()
	active := cfg.Kinds()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tBYTES\tACTIVE")
	for _, fp := range algorithm.Footprints() {
		fmt.Fprintf(w, "%d\t%s\t%d\t%t\n", int(fp.Kind), fp.Name, fp.Size, slices.Contains(active, fp.Kind))
	}
	return w.Flush()
}
