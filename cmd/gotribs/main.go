package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tribshms/gotribs/config"
	"github.com/tribshms/gotribs/internal/runstats"
	"github.com/tribshms/gotribs/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the loaded configuration and shared services into the
// subcommands.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	stats *runstats.Collector
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "gotribs",
		Short:         "Pre- and post-processing toolkit for tRIBS simulations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Logging.Level, false, cfg.Logging.Environment)
			slog.SetDefault(a.log)

			a.stats = runstats.NewCollector(256, logger.Component(a.log, "runstats"))
			a.stats.Start(cmd.Context())
			return nil
		},
	}

	root.AddCommand(
		newManifestCmd(a),
		newCheckCmd(a),
		newDelineateCmd(a),
		newMeshCmd(a),
		newRunCmd(a),
		newBuildCmd(a),
		newMergeCmd(a),
	)
	return root
}
