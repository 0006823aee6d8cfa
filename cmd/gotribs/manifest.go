package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tribshms/gotribs/manifest"
)

const defaultManifestPath = "pyproject.toml"

func newManifestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect and validate the build manifest",
	}
	cmd.AddCommand(newManifestValidateCmd(a), newManifestShowCmd(a))
	return cmd
}

func newManifestValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check the manifest for structural and specifier errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultManifestPath
			if len(args) == 1 {
				path = args[0]
			}

			m, err := manifest.Load(path)
			if err != nil {
				return err
			}
			if err := m.Validate(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			a.log.Info("manifest is valid",
				slog.String("path", path),
				slog.String("name", m.Project.Name),
				slog.String("version", m.Project.Version))
			return nil
		},
	}
}

func newManifestShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print the project metadata and its dependency table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultManifestPath
			if len(args) == 1 {
				path = args[0]
			}

			m, err := manifest.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", m.Project.Name, m.Project.Version)
			fmt.Fprintln(out, m.Project.Description)
			if repo := m.Repository(); repo != "" {
				fmt.Fprintln(out, repo)
			}
			fmt.Fprintln(out)

			reqs, err := m.Requirements()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Dependency", "Constraint", "Pinned"})
			for _, r := range reqs {
				constraint := strings.TrimPrefix(r.String(), r.Name)
				pinned := ""
				if r.Pinned() {
					pinned = "yes"
				}
				table.Append([]string{r.Name, strings.TrimSpace(constraint), pinned})
			}
			table.Render()
			return nil
		},
	}
}
