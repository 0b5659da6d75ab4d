package main

import (
	"fmt"
	"os"

	"narrowphase/internal/collision"
	"narrowphase/internal/config"
	"narrowphase/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool
	softBody   bool
	sphereBox  bool
	minkowski  bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "narrowphase",
	Short: "Inspect narrow-phase collision dispatch",
	Long: `narrowphase builds a collision configuration and reports how it dispatches
shape pairs: the full dispatch matrix, single resolutions, pool block sizing
and the registered algorithm footprints. The probe command runs a small scene
through the dispatcher and prints the resulting contacts.

Options come from a YAML file (--config), NARROWPHASE_ environment variables
and the flags below, in increasing priority.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&softBody, "soft-body", false, "Add the soft body rules")
	rootCmd.PersistentFlags().BoolVar(&sphereBox, "sphere-box", false, "Enable the dedicated sphere-box rule")
	rootCmd.PersistentFlags().BoolVar(&minkowski, "minkowski", false, "Use the Minkowski sampling penetration solver instead of EPA")

	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(poolSizeCmd)
	rootCmd.AddCommand(footprintsCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and environment, then applies
// any flags set on the command line
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("soft-body") {
		cfg.SoftBody.Enabled = softBody
	}
	if flags.Changed("sphere-box") {
		cfg.Collision.SphereBox = sphereBox
	}
	if flags.Changed("minkowski") {
		cfg.Collision.UseEPA = !minkowski
	}
	if flags.Changed("verbose") {
		cfg.Logging.Verbose = verbose
	}
	return cfg, nil
}

func buildConfiguration(cmd *cobra.Command) (*collision.Configuration, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return cfg.Build(logger)
}
