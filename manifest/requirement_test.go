package manifest_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tribshms/gotribs/manifest"
)

var _ = Describe("ParseRequirement", func() {
	DescribeTable("valid specifiers",
		func(spec, wantName string, wantClauses int) {
			req, err := manifest.ParseRequirement(spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Name).To(Equal(wantName))
			Expect(req.Clauses).To(HaveLen(wantClauses))
		},
		Entry("bare name", "numpy", "numpy", 0),
		Entry("dotted name", "ruamel.yaml", "ruamel.yaml", 0),
		Entry("hyphenated name", "rosetta-soil", "rosetta-soil", 0),
		Entry("mixed case", "PyWavelets", "PyWavelets", 0),
		Entry("pinned", "numpy==1.26.4", "numpy", 1),
		Entry("short version", "setuptools>=61.0", "setuptools", 1),
		Entry("range", "pandas>=1.5,<3", "pandas", 2),
		Entry("compatible release", "rasterio~=1.3", "rasterio", 1),
		Entry("wildcard exclusion", "shapely!=2.0.*", "shapely", 1),
		Entry("spaces around operator", "scipy >= 1.10", "scipy", 1),
	)

	DescribeTable("invalid specifiers",
		func(spec string) {
			_, err := manifest.ParseRequirement(spec)
			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("whitespace only", "   "),
		Entry("leading separator", "-numpy"),
		Entry("trailing separator", "numpy-"),
		Entry("clause without version", "numpy=="),
		Entry("clause without operator", "numpy 1.2"),
		Entry("illegal character", "num py"),
		Entry("unterminated extras", "owslib[wfs"),
		Entry("empty extra", "owslib[]"),
		Entry("empty marker", "docker;"),
		Entry("unparseable version", "numpy==one.two"),
	)

	It("should capture extras and markers", func() {
		req, err := manifest.ParseRequirement(`owslib[wfs,wms]>=0.29; python_version >= "3.9"`)
		Expect(err).NotTo(HaveOccurred())
		Expect(req.Name).To(Equal("owslib"))
		Expect(req.Extras).To(Equal([]string{"wfs", "wms"}))
		Expect(req.Clauses).To(Equal([]manifest.VersionClause{{Operator: ">=", Version: "0.29"}}))
		Expect(req.Marker).To(Equal(`python_version >= "3.9"`))
	})

	It("should reassemble a canonical string", func() {
		req, err := manifest.ParseRequirement("pandas >= 1.5, < 3")
		Expect(err).NotTo(HaveOccurred())
		Expect(req.String()).To(Equal("pandas>=1.5,<3"))
	})

	It("should report pinned requirements", func() {
		pinned, err := manifest.ParseRequirement("numpy==1.26.4")
		Expect(err).NotTo(HaveOccurred())
		Expect(pinned.Pinned()).To(BeTrue())

		loose, err := manifest.ParseRequirement("numpy>=1.20")
		Expect(err).NotTo(HaveOccurred())
		Expect(loose.Pinned()).To(BeFalse())
	})
})
