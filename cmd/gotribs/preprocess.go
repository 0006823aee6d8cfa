package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tribshms/gotribs/internal/control"
	"github.com/tribshms/gotribs/internal/diagnose"
	"github.com/tribshms/gotribs/internal/mesh"
	"github.com/tribshms/gotribs/internal/meshbuild"
	"github.com/tribshms/gotribs/internal/raster"
	"github.com/tribshms/gotribs/internal/terrain"
	"github.com/tribshms/gotribs/pkg/logger"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [control-file]",
		Short: "Verify every path and descriptor the control file references",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Project.ControlFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no control file configured or given")
			}

			reg := control.New()
			if err := reg.ReadFile(path); err != nil {
				return err
			}
			return diagnose.Check(reg, filepath.Dir(path), logger.Component(a.log, "diagnose"))
		},
	}
}

// delineateFlags are shared by delineate and mesh points.
type delineateFlags struct {
	dem       string
	outletX   float64
	outletY   float64
	snap      float64
	threshold float64
	clean     bool
}

func (f *delineateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dem, "dem", "", "input DEM raster (ESRI ASCII)")
	cmd.Flags().Float64Var(&f.outletX, "outlet-x", 0, "outlet easting")
	cmd.Flags().Float64Var(&f.outletY, "outlet-y", 0, "outlet northing")
	cmd.Flags().Float64Var(&f.snap, "snap", 100, "pour point snap distance (map units)")
	cmd.Flags().Float64Var(&f.threshold, "threshold-area", 1000, "stream accumulation threshold (cells)")
	cmd.Flags().BoolVar(&f.clean, "clean", false, "remove intermediate rasters")
	_ = cmd.MarkFlagRequired("dem")
}

func (f *delineateFlags) delineate(cmd *cobra.Command, a *app) (*terrain.Artifacts, *raster.Grid, error) {
	dem, err := raster.ReadASCII(f.dem)
	if err != nil {
		return nil, nil, err
	}

	p := terrain.NewPipeline(
		a.cfg.Project.Name,
		a.cfg.Project.OutputDir,
		[2]float64{f.outletX, f.outletY},
		f.snap,
		f.threshold,
		a.cfg.Project.EPSG,
		logger.Component(a.log, "terrain"),
		a.stats,
	)
	p.Clean = f.clean

	art, err := p.Delineate(cmd.Context(), dem)
	if err != nil {
		return nil, nil, err
	}
	return art, dem, nil
}

func newDelineateCmd(a *app) *cobra.Command {
	flags := &delineateFlags{}
	cmd := &cobra.Command{
		Use:   "delineate",
		Short: "Delineate the watershed and stream network from a DEM",
		RunE: func(cmd *cobra.Command, args []string) error {
			art, _, err := flags.delineate(cmd, a)
			if err != nil {
				return err
			}
			a.log.Info("delineation complete")
			fmt.Fprintln(cmd.OutOrStdout(), art.BoundaryFile)
			fmt.Fprintln(cmd.OutOrStdout(), art.StreamsFile)
			a.stats.Flush()
			a.stats.Summary(cmd.OutOrStdout())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newMeshCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Generate and partition the TIN mesh",
	}
	cmd.AddCommand(newMeshPointsCmd(a), newMeshPartitionCmd(a))
	return cmd
}

func newMeshPointsCmd(a *app) *cobra.Command {
	flags := &delineateFlags{}
	var (
		significance float64
		maxLevel     int
	)

	cmd := &cobra.Command{
		Use:   "points",
		Short: "Select TIN nodes from the DEM and write the point file",
		RunE: func(cmd *cobra.Command, args []string) error {
			art, _, err := flags.delineate(cmd, a)
			if err != nil {
				return err
			}

			clipped, err := raster.ReadASCII(art.ClippedDEM)
			if err != nil {
				return err
			}

			gen := mesh.NewGenerator(clipped, art.Boundary, art.StreamLines, art.Outlet,
				maxLevel, logger.Component(a.log, "mesh"))
			nodes, err := gen.Points(significance)
			if err != nil {
				return err
			}

			base := a.cfg.Project.Name
			pointFile := base + ".points"
			outDir := a.cfg.Project.OutputDir
			if err := mesh.WritePoints(nodes, filepath.Join(outDir, pointFile)); err != nil {
				return err
			}
			if err := mesh.WriteMeshBuildInput(
				filepath.Join(outDir, base+".in"), base, pointFile); err != nil {
				return err
			}

			a.log.Info("point set written")
			a.stats.Flush()
			a.stats.Summary(cmd.OutOrStdout())
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&significance, "significance", 0.1, "wavelet detail significance threshold")
	cmd.Flags().IntVar(&maxLevel, "max-level", 0, "decomposition depth cap (0 = full)")
	return cmd
}

func newMeshPartitionCmd(a *app) *cobra.Command {
	var (
		volume string
		input  string
		nodes  int
		method int
		base   string
	)

	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Triangulate and partition the mesh in the MeshBuilder container",
		RunE: func(cmd *cobra.Command, args []string) error {
			if volume == "" {
				volume = a.cfg.MeshBuilder.Volume
			}
			if volume == "" {
				return fmt.Errorf("no mesh volume configured or given")
			}
			return meshbuild.Partition(cmd.Context(),
				a.cfg.MeshBuilder.Image, volume, input, nodes, method, base,
				logger.Component(a.log, "meshbuild"))
		},
	}
	cmd.Flags().StringVar(&volume, "volume", "", "directory holding the .in and .points files")
	cmd.Flags().StringVar(&input, "input", "", "MeshBuilder .in file name")
	cmd.Flags().IntVar(&nodes, "nodes", 2, "number of compute nodes")
	cmd.Flags().IntVar(&method, "method", 1, "partitioning method (1-3)")
	cmd.Flags().StringVar(&base, "base", "", "simulation base name")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}
