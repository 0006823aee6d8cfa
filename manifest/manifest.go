package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"
)

// Manifest models a pyproject-style build manifest: the [build-system]
// table and the [project] metadata table, including the dependency list
// the rest of the toolkit is built around.
type Manifest struct {
	BuildSystem BuildSystem `toml:"build-system"`
	Project     Project     `toml:"project"`
}

type BuildSystem struct {
	Requires     []string `toml:"requires"`
	BuildBackend string   `toml:"build-backend"`
}

type License struct {
	Text string `toml:"text"`
}

type Author struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type Project struct {
	Name         string            `toml:"name"`
	Version      string            `toml:"version"`
	Description  string            `toml:"description,omitempty"`
	Readme       string            `toml:"readme,omitempty"`
	License      License           `toml:"license"`
	Keywords     []string          `toml:"keywords,omitempty"`
	Authors      []Author          `toml:"authors,omitempty"`
	Dependencies []string          `toml:"dependencies"`
	URLs         map[string]string `toml:"urls,omitempty"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses a manifest from r. TOML syntax errors are returned with
// their position information intact.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Encode serializes the manifest to w. Key order follows the struct
// definition; a decode of the output is structurally equal to m.
func (m *Manifest) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// Save atomically writes the manifest to path.
func (m *Manifest) Save(path string) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Repository returns the declared repository URL, if any.
func (m *Manifest) Repository() string {
	return m.Project.URLs["Repository"]
}

// Requirements parses every declared dependency. The first invalid
// specifier aborts with an error naming the offending entry.
func (m *Manifest) Requirements() ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(m.Project.Dependencies))
	for _, dep := range m.Project.Dependencies {
		req, err := ParseRequirement(dep)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Default returns the manifest the package ships with.
func Default() *Manifest {
	return &Manifest{
		BuildSystem: BuildSystem{
			Requires:     []string{"setuptools>=61.0", "wheel"},
			BuildBackend: "setuptools.build_meta",
		},
		Project: Project{
			Name:        "pytRIBS",
			Version:     "0.4.0",
			Description: "Pre- and post-processing for the tRIBS distributed hydrological model",
			Readme:      "README.md",
			License:     License{Text: "GPL-version 2"},
			Keywords:    []string{"hydrology", "modeling"},
			Authors: []Author{
				{Name: "L. Raming", Email: "lraming@hydro.asu.edu"},
				{Name: "J. Cederstrom", Email: "jcederstrom@hydro.asu.edu"},
				{Name: "E. Vivoni", Email: "vivoni@asu.edu"},
			},
			Dependencies: []string{
				"numpy",
				"pandas",
				"matplotlib",
				"scipy",
				"rasterio",
				"geopandas",
				"shapely",
				"pyproj",
				"fiona",
				"pyvista",
				"whitebox",
				"rosetta-soil",
				"owslib",
				"pynldas2",
				"timezonefinder",
				"docker",
				"scikit-learn",
				"PyWavelets",
				"requests",
			},
			URLs: map[string]string{
				"Repository": "https://github.com/tribshms/pytRIBS",
			},
		},
	}
}
