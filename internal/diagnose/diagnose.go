package diagnose

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/tribshms/gotribs/internal/control"
	"github.com/tribshms/gotribs/internal/forcing"
)

// CheckPaths verifies that every path-like io option with a value points
// at something on disk. Relative values resolve against baseDir. All
// problems are collected rather than stopping at the first.
func CheckPaths(reg *control.Registry, baseDir string) error {
	var result *multierror.Error

	for _, opt := range reg.Tagged(control.TagIO) {
		if !opt.PathLike || opt.Value == "" {
			continue
		}
		path := resolve(baseDir, opt.Value)
		if _, err := os.Stat(path); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("%s: %s does not exist", opt.Keyword, path))
		}
	}
	return result.ErrorOrNil()
}

// CheckForcing cross-checks the station and grid descriptors the control
// file references: descriptor files must parse, and every station or
// grid location they point at must exist.
func CheckForcing(reg *control.Registry, baseDir string) error {
	var result *multierror.Error

	if value, err := reg.Get("gaugestations"); err == nil && value != "" {
		path := resolve(baseDir, value)
		stations, err := forcing.ReadPrecipSDF(path)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("gaugestations: %w", err))
		}
		for _, s := range stations {
			if _, err := os.Stat(resolve(baseDir, s.Path)); err != nil {
				result = multierror.Append(result,
					fmt.Errorf("gauge station %d: data file %s does not exist", s.ID, s.Path))
			}
		}
	}

	if value, err := reg.Get("hydrometstations"); err == nil && value != "" {
		path := resolve(baseDir, value)
		stations, err := forcing.ReadMetSDF(path)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("hydrometstations: %w", err))
		}
		for _, s := range stations {
			if _, err := os.Stat(resolve(baseDir, s.Path)); err != nil {
				result = multierror.Append(result,
					fmt.Errorf("met station %d: data file %s does not exist", s.ID, s.Path))
			}
		}
	}

	for _, keyword := range []string{"hydrometgrid", "scgrid", "lugrid"} {
		value, err := reg.Get(keyword)
		if err != nil || value == "" {
			continue
		}
		path := resolve(baseDir, value)
		gd, err := forcing.ReadGDF(path)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", keyword, err))
			continue
		}
		for _, p := range gd.Params {
			if p.Location == "NO_DATA" {
				continue
			}
			if _, err := os.Stat(resolve(baseDir, p.Location)); err != nil {
				result = multierror.Append(result,
					fmt.Errorf("%s: grid location %s for %s does not exist",
						keyword, p.Location, p.Name))
			}
		}
	}

	return result.ErrorOrNil()
}

// Check runs every diagnostic over a control file registry, logging a
// summary and returning the combined findings.
func Check(reg *control.Registry, baseDir string, log *slog.Logger) error {
	var result *multierror.Error

	if err := CheckPaths(reg, baseDir); err != nil {
		result = multierror.Append(result, err)
	}
	if err := CheckForcing(reg, baseDir); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		log.Warn("diagnostics found problems", slog.Int("count", result.Len()))
		return err
	}
	log.Info("diagnostics passed")
	return nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
