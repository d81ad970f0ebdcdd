package cmd

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katalvlaran/nettopo/config"
)

// session carries what PersistentPreRunE resolved to the subcommands.
type session struct {
	cfg    config.Config
	logger *log.Logger
}

// Execute is the entry point to running the CLI
func Execute(ctx context.Context, version string) {
	input := new(Input)
	rootCmd := createRootCommand(ctx, input, version)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	s := new(session)
	rootCmd := &cobra.Command{
		Use:          "nettopo",
		Short:        "Derive fundamental loop and cutset matrices from a reduced incidence matrix.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := input.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log, input.verbose, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s.cfg, s.logger = cfg, logger
			logger.Debugf("config: %+v", cfg)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&input.configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&input.envFile, "env-file", "", "path to a .env file with NETTOPO_* variables")
	rootCmd.PersistentFlags().BoolVarP(&input.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&input.logFormat, "log-format", config.FormatText, "log format: text or json")
	rootCmd.PersistentFlags().Float64Var(&input.tolerance, "tolerance", config.Default().Topology.Tolerance, "absolute |det| threshold for a nonsingular tree")
	rootCmd.PersistentFlags().IntVar(&input.maxBranches, "max-branches", config.Default().Topology.MaxBranches, "largest accepted branch count, 0 for unlimited")

	rootCmd.AddCommand(
		newServeCommand(ctx, input, s),
		newComputeCommand(input, s),
		newNetlistCommand(input, s),
	)
	return rootCmd
}

// loadConfig layers explicitly set flags over config.Load.
func (i *Input) loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(i.configPath, i.envFile)
	if err != nil {
		return cfg, errors.Wrap(err, "load config")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = i.logFormat
	}
	if flags.Changed("tolerance") {
		cfg.Topology.Tolerance = i.tolerance
	}
	if flags.Changed("max-branches") {
		cfg.Topology.MaxBranches = i.maxBranches
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = i.addr
	}
	return cfg, errors.Wrap(cfg.Validate(), "invalid flags")
}
