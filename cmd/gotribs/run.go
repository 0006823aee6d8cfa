package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tribshms/gotribs/internal/sim"
	"github.com/tribshms/gotribs/pkg/logger"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		mpi        string
		storeInput string
		flags      []string
	)

	cmd := &cobra.Command{
		Use:   "run [control-file]",
		Short: "Launch a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := a.cfg.Project.ControlFile
			if len(args) == 1 {
				ctrl = args[0]
			}
			if ctrl == "" {
				return fmt.Errorf("no control file configured or given")
			}

			if mpi == "" {
				mpi = a.cfg.Simulator.MPICommand
			}

			opts := sim.RunOptions{
				Executable:  a.cfg.Simulator.Executable,
				ControlFile: ctrl,
				MPICommand:  mpi,
				Flags:       flags,
				LogDir:      a.cfg.Simulator.LogDir,
				StoreInput:  storeInput,
			}
			if err := sim.Run(cmd.Context(), opts, a.stats, logger.Component(a.log, "sim")); err != nil {
				return err
			}

			a.stats.Flush()
			a.stats.Summary(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&mpi, "mpi", "", "MPI launch prefix, e.g. \"mpirun -n 4\"")
	cmd.Flags().StringVar(&storeInput, "store-input", "", "archive the control file into this directory")
	cmd.Flags().StringArrayVar(&flags, "flag", nil, "extra simulator flags")
	return cmd
}

func newBuildCmd(a *app) *cobra.Command {
	var opts sim.BuildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the simulator from source with cmake",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sim.Build(cmd.Context(), opts, logger.Component(a.log, "build"))
		},
	}
	cmd.Flags().StringVar(&opts.SourceDir, "source", "", "simulator source directory")
	cmd.Flags().StringVar(&opts.BuildDir, "build-dir", "build", "build output directory")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "build with MPI support")
	cmd.Flags().StringVar(&opts.CXXFlags, "cxx-flags", "-O2", "compiler flags")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
