package manifest_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tribshms/gotribs/manifest"
)

func TestManifest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Manifest Suite")
}

const sampleManifest = `
[build-system]
requires = ["setuptools>=61.0", "wheel"]
build-backend = "setuptools.build_meta"

[project]
name = "pytRIBS"
version = "0.4.0"
description = "Pre- and post-processing for tRIBS"
readme = "README.md"
license = { text = "GPL-version 2" }
keywords = ["hydrology", "modeling"]
dependencies = ["numpy", "rasterio", "geopandas"]

[[project.authors]]
name = "L. Raming"
email = "lraming@hydro.asu.edu"

[project.urls]
Repository = "https://github.com/tribshms/pytRIBS"
`

var _ = Describe("Manifest", func() {
	Describe("Decode", func() {
		It("should parse a valid manifest", func() {
			m, err := manifest.Decode(strings.NewReader(sampleManifest))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Project.Name).To(Equal("pytRIBS"))
			Expect(m.Project.Version).To(Equal("0.4.0"))
			Expect(m.Project.License.Text).To(Equal("GPL-version 2"))
			Expect(m.Project.Dependencies).To(HaveLen(3))
			Expect(m.BuildSystem.BuildBackend).To(Equal("setuptools.build_meta"))
			Expect(m.Repository()).To(Equal("https://github.com/tribshms/pytRIBS"))
		})

		It("should surface TOML syntax errors", func() {
			_, err := manifest.Decode(strings.NewReader("[project\nname ="))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("round-trip", func() {
		It("should re-decode to a structurally equal manifest", func() {
			m, err := manifest.Decode(strings.NewReader(sampleManifest))
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(m.Encode(&buf)).To(Succeed())

			again, err := manifest.Decode(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(m))
		})

		It("should round-trip through Save and Load", func() {
			dir, err := os.MkdirTemp("", "manifest-test-*")
			Expect(err).NotTo(HaveOccurred())
			defer os.RemoveAll(dir)

			m := manifest.Default()
			path := filepath.Join(dir, "pyproject.toml")
			Expect(m.Save(path)).To(Succeed())

			again, err := manifest.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(m))
		})
	})

	Describe("Default", func() {
		It("should carry the shipped metadata", func() {
			m := manifest.Default()
			Expect(m.Project.Name).To(Equal("pytRIBS"))
			Expect(m.Project.Version).To(Equal("0.4.0"))
			Expect(m.Project.Dependencies).To(HaveLen(19))
			Expect(m.Project.Authors).To(HaveLen(3))
			Expect(m.Project.Keywords).To(ConsistOf("hydrology", "modeling"))
		})

		It("should validate cleanly", func() {
			Expect(manifest.Default().Validate()).To(Succeed())
		})
	})

	Describe("Validate", func() {
		var m *manifest.Manifest

		BeforeEach(func() {
			m = manifest.Default()
		})

		It("should reject a missing project name", func() {
			m.Project.Name = ""
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject a missing version", func() {
			m.Project.Version = ""
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject a malformed version", func() {
			m.Project.Version = "four.oh"
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject an empty dependency list", func() {
			m.Project.Dependencies = nil
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject invalid dependency specifiers", func() {
			m.Project.Dependencies = append(m.Project.Dependencies, "-leading-dash")
			err := m.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("-leading-dash"))
		})

		It("should reject missing license text", func() {
			m.Project.License.Text = ""
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject an empty author list", func() {
			m.Project.Authors = nil
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject bad author emails", func() {
			m.Project.Authors[0].Email = "not-an-email"
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject a missing Repository URL", func() {
			m.Project.URLs = map[string]string{}
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should reject a non-http repository URL", func() {
			m.Project.URLs["Repository"] = "git@github.com:tribshms/pytRIBS.git"
			Expect(m.Validate()).NotTo(Succeed())
		})

		It("should aggregate multiple findings", func() {
			m.Project.Name = ""
			m.Project.Dependencies = []string{"good", "==broken"}
			err := m.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("==broken"))
		})
	})
})
