package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tribshms/gotribs/internal/basin"
	"github.com/tribshms/gotribs/internal/control"
	"github.com/tribshms/gotribs/internal/results"
	"github.com/tribshms/gotribs/pkg/logger"
)

func newMergeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Recombine the outputs of a parallel run",
	}
	cmd.AddCommand(newMergeVoiCmd(a), newMergeSpatialCmd(a))
	return cmd
}

func newMergeVoiCmd(a *app) *cobra.Command {
	var (
		out  string
		join string
		save string
	)

	cmd := &cobra.Command{
		Use:   "voi",
		Short: "Merge per-processor voronoi files into one GeoJSON layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Component(a.log, "merge")

			cells, err := basin.MergeVoronoi(cmd.Context(), out, log)
			if err != nil {
				return err
			}

			var attrs *basin.Table
			if join != "" {
				if attrs, err = basin.ReadTableFile(join); err != nil {
					return err
				}
				cells = basin.JoinAttributes(cells, attrs, log)
			}

			data, err := basin.MarshalVoronoiGeoJSON(cells, attrs, a.cfg.Project.EPSG)
			if err != nil {
				return err
			}
			if save == "" {
				save = out + "_mergedVoi.geojson"
			}
			if err := basin.WriteGeoJSON(data, save); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), save)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "run OUTFILENAME the voronoi partitions sit next to")
	cmd.Flags().StringVar(&join, "join", "", "CSV attribute table to join on element ID")
	cmd.Flags().StringVar(&save, "save", "", "output GeoJSON path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newMergeSpatialCmd(a *app) *cobra.Command {
	var (
		ctrlPath string
		suffix   string
		dtime    int
		single   bool
	)

	cmd := &cobra.Command{
		Use:   "spatial",
		Short: "Merge per-processor spatial outputs at every output interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctrlPath == "" {
				ctrlPath = a.cfg.Project.ControlFile
			}
			if ctrlPath == "" {
				return fmt.Errorf("no control file configured or given")
			}

			reg := control.New()
			if err := reg.ReadFile(ctrlPath); err != nil {
				return err
			}
			runtime, err := reg.GetInt("runtime")
			if err != nil {
				return err
			}
			interval, err := reg.GetInt("spopintrvl")
			if err != nil {
				return err
			}
			out, err := reg.Get("outfilename")
			if err != nil {
				return err
			}

			m := results.NewSpatialMerge(out, runtime, interval, logger.Component(a.log, "merge"))
			m.Suffix = suffix
			m.StartTime = dtime
			m.Single = single

			tables, err := m.Merge(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("spatial merge complete")
			fmt.Fprintf(cmd.OutOrStdout(), "merged %d timesteps\n", len(tables))
			return nil
		},
	}
	cmd.Flags().StringVar(&ctrlPath, "control", "", "control file naming RUNTIME, SPOPINTRVL and OUTFILENAME")
	cmd.Flags().StringVar(&suffix, "suffix", results.SuffixDynamic, "spatial output suffix (_00d or _00i)")
	cmd.Flags().IntVar(&dtime, "dtime", 0, "first timestep to merge")
	cmd.Flags().BoolVar(&single, "single", false, "merge only the first timestep")
	return cmd
}
