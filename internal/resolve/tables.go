package resolve

// objectRemap renames description attributes to renderer object parameters.
var objectRemap = map[string]string{
	"motionBlur": "geo_velocityblur",
	"matteShade": "vm_matte",
}

// modeParms maps a geometry group's mode to the ROP parameter listing the
// objects rendered in that mode.
var modeParms = map[string]string{
	"visible": ModeVisible,
	"matte":   ModeMatte,
	"phantom": ModePhantom,
	"exclude": ModeExclude,
}

// Renderer object-list parameters, in the order they are written.
const (
	ModeVisible = "forceobject"
	ModeMatte   = "matte_objects"
	ModePhantom = "phantom_objects"
	ModeExclude = "excludeobject"
)

// Modes lists the object-list parameters in write order.
var Modes = []string{ModeVisible, ModeMatte, ModePhantom, ModeExclude}

// rendererEnums maps enumeration labels to the integer menu values the
// renderer expects for a handful of pass-level settings.
var rendererEnums = map[string]map[string]int{
	"vm_usecacheratio": {
		"Fixed Size":                    0,
		"Proportion of Physical Memory": 1,
	},
	"soho_spoolrenderoutput": {
		"Don't capture render output":              0,
		"Capture render output for graphical apps": 1,
		"Capture render output for all apps":       2,
	},
	"vm_vexprofile": {
		"No VEX Profiling":            0,
		"Execution profiling":         1,
		"Profiling and NAN detection": 2,
	},
}

// lightEnums is the light counterpart of rendererEnums.
var lightEnums = map[string]map[string]int{
	"shadow_type": {"off": 0, "raytrace": 1, "depthmap": 2},
}

// lightContributions maps contribution toggles to renderer contribution
// patterns.
var lightContributions = map[string]string{
	"contributeToVolume":        "volume",
	"contributeToDiffuse":       "diffuse",
	"contributeToRefract":       "refract",
	"contributeToCoat":          "coat",
	"contributeToReflect":       "reflect",
	"contributeToAnyDiffuse":    "diffuse|volume",
	"contributeToAnyNonDiffuse": "-diffuse & -volume",
}

// Names of object settings that drive derived behavior instead of being
// written as plain object parameters.
const (
	CastShadows           = "castShadows"
	VisibleInReflections  = "visibleInReflections"
	VisibleInRefractions  = "visibleInRefractions"
	VisibleToIndirectRays = "visibleToIndirectRays"
	MatteAOVs             = "matte_aovs"
	CropMask              = "cropMask"
)

var specialObjectSettings = map[string]bool{
	CastShadows:           true,
	VisibleInReflections:  true,
	VisibleInRefractions:  true,
	VisibleToIndirectRays: true,
	MatteAOVs:             true,
	CropMask:              true,
}

// IsSpecialObjectSetting reports whether an object setting is consumed by
// derived behavior and must not be written as a parameter.
func IsSpecialObjectSetting(name string) bool {
	return specialObjectSettings[name]
}

// Shutter is routed to the camera instead of the ROP.
const Shutter = "shutter"

// Names of pass-level attribute groups with dedicated handling.
const (
	GroupAOVs       = "AOVs"
	GroupSubmission = "Submission"
	GroupSource     = "source_settings"
	ModeAttribute   = "mode"
)
