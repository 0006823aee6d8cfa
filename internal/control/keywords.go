package control

// Tag groups mirror the sections of the model control file.
const (
	TagIO       = "io"
	TagTime     = "time"
	TagPhysical = "physical"
	TagOpts     = "opts"
	TagRestart  = "restart"
	TagParallel = "parallel"
	TagMesh     = "mesh"
)

type definition struct {
	keyword     string
	description string
	tags        []string
	pathLike    bool
}

// definitions lists the control-file keywords the toolkit understands,
// in the order they are written out. pathLike marks options whose values
// are checked on disk by the diagnostics pass.
var definitions = []definition{
	// time parameters
	{"startdate", "simulation start date (MM/DD/YYYY/HH/MM)", []string{TagTime}, false},
	{"runtime", "simulation length in hours", []string{TagTime}, false},
	{"timestep", "unsaturated zone computational time step (min)", []string{TagTime}, false},
	{"gwstep", "saturated zone computational time step (min)", []string{TagTime}, false},
	{"metstep", "meteorological data time step (min)", []string{TagTime}, false},
	{"etistep", "evapotranspiration and interception step (hr)", []string{TagTime}, false},
	{"rainintrvl", "rainfall input interval (hr)", []string{TagTime}, false},
	{"opintrvl", "output interval (hr)", []string{TagTime}, false},
	{"spopintrvl", "spatial output interval (hr)", []string{TagTime}, false},
	{"intstormmax", "maximum interstorm duration (hr)", []string{TagTime, TagPhysical}, false},

	// mesh and domain inputs
	{"optmeshinput", "mesh input option code", []string{TagOpts, TagMesh}, false},
	{"inputdatafile", "tMesh input file base name", []string{TagIO, TagMesh}, true},
	{"inputtime", "tMesh input file time stamp", []string{TagMesh}, false},
	{"arcinfofilename", "Arc/Info mesh input base name", []string{TagIO, TagMesh}, true},
	{"pointfilename", "TIN point file (x y z bc rows)", []string{TagIO, TagMesh}, true},
	{"graphoption", "parallel graph partition option", []string{TagParallel}, false},
	{"graphfile", "reach connectivity graph file", []string{TagIO, TagParallel}, true},
	{"parallelmode", "parallel execution mode", []string{TagParallel}, false},

	// forcing inputs
	{"rainsource", "rainfall source (1 radar, 2 wsi, 3 gauges)", []string{TagOpts}, false},
	{"rainfile", "radar rainfall base name", []string{TagIO}, true},
	{"rainextension", "radar rainfall file extension", []string{TagIO}, false},
	{"hydrometstations", "meteorological station descriptor file", []string{TagIO}, true},
	{"hydrometgrid", "meteorological grid data file", []string{TagIO}, true},
	{"hydrometbasename", "meteorological point file base name", []string{TagIO}, true},
	{"gaugestations", "rain gauge station descriptor file", []string{TagIO}, true},
	{"gaugebasename", "rain gauge point file base name", []string{TagIO}, true},
	{"metdataoption", "meteorological data option (0 none, 1 point, 2 grid)", []string{TagOpts}, false},
	{"rainputoption", "rainfall input option", []string{TagOpts}, false},

	// surface descriptors
	{"soiltablename", "soil parameter reference table (.sdt)", []string{TagIO}, true},
	{"soilmapname", "soil texture classification map", []string{TagIO}, true},
	{"landtablename", "land-use parameter reference table (.ldt)", []string{TagIO}, true},
	{"landmapname", "land-use classification map", []string{TagIO}, true},
	{"scgrid", "soil grid data file", []string{TagIO}, true},
	{"lugrid", "land-use grid data file", []string{TagIO}, true},
	{"gwaterfile", "initial groundwater table file", []string{TagIO}, true},
	{"bedrockfile", "bedrock depth file", []string{TagIO}, true},
	{"demfile", "digital elevation model file", []string{TagIO}, true},

	// physical parameters
	{"baseflow", "baseflow discharge (m3/s)", []string{TagPhysical}, false},
	{"velocityratio", "stream to hillslope velocity ratio", []string{TagPhysical}, false},
	{"velocitycoef", "discharge-velocity coefficient", []string{TagPhysical}, false},
	{"flowexp", "discharge-velocity exponent", []string{TagPhysical}, false},
	{"channelwidth", "channel width (m)", []string{TagPhysical}, false},
	{"channelwidthcoeff", "channel width-area coefficient", []string{TagPhysical}, false},
	{"channelwidthexpnt", "channel width-area exponent", []string{TagPhysical}, false},
	{"channelroughness", "channel roughness coefficient", []string{TagPhysical}, false},
	{"depthtobedrock", "uniform depth to bedrock (m)", []string{TagPhysical}, false},
	{"porosity", "uniform soil porosity", []string{TagPhysical}, false},

	// model behaviour options
	{"optevapotrans", "evapotranspiration scheme option", []string{TagOpts}, false},
	{"optintercept", "canopy interception scheme option", []string{TagOpts}, false},
	{"optlanduse", "land-use mode option", []string{TagOpts}, false},
	{"optsoiltype", "soil input mode option", []string{TagOpts}, false},
	{"optgroundwater", "groundwater module option", []string{TagOpts}, false},
	{"optsnow", "snow module option", []string{TagOpts}, false},
	{"optradshelt", "radiation sheltering option", []string{TagOpts}, false},
	{"gfluxoption", "ground heat flux option", []string{TagOpts}, false},
	{"optviz", "binary viz output option", []string{TagOpts}, false},

	// output
	{"outfilename", "base name for simulation output", []string{TagIO}, false},
	{"outhydrofilename", "base name for hydrograph output", []string{TagIO}, false},
	{"outhydroextension", "hydrograph output extension", []string{TagIO}, false},
	{"nodeoutputlist", "node list file for .pixel output", []string{TagIO}, true},
	{"hydronodelist", "node list file for hydrologic output", []string{TagIO}, true},
	{"outletnodelist", "node list file for outlet output", []string{TagIO}, true},

	// restart capability
	{"restartmode", "restart mode (0 off, 1 write, 2 read, 3 both)", []string{TagRestart}, false},
	{"restartintrvl", "restart dump interval (hr)", []string{TagRestart}, false},
	{"restartdir", "restart dump directory", []string{TagIO, TagRestart}, true},
	{"restartfile", "restart read file", []string{TagIO, TagRestart}, true},
}
