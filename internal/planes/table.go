package planes

// Parm is one extra plane parameter. The renderer parameter name is the
// Name followed by the plane index.
type Parm struct {
	Name  string
	Value any
}

const lightExportParm = "vm_lightexport"

// known holds the extra settings of planes that need more than a variable
// name. It is never modified.
var known = map[string][]Parm{
	"diffuseColor": {
		{Name: "vm_variable_plane", Value: "direct_reflectivity"},
		{Name: lightExportParm, Value: 0},
	},
	"depth": {
		{Name: "vm_variable_plane", Value: "Pz"},
		{Name: lightExportParm, Value: 0},
		{Name: "vm_vextype_plane", Value: "float"},
	},
	"normals": {
		{Name: "vm_variable_plane", Value: "N"},
		{Name: lightExportParm, Value: 0},
	},
	"pointWorld": {
		{Name: "vm_variable_plane", Value: "P"},
		{Name: lightExportParm, Value: 0},
	},
	"subsurface": {
		{Name: "vm_variable_plane", Value: "sss_multi"},
	},
	"direct_emission": {
		{Name: "vm_sfilter_plane", Value: "fullopacity"},
	},
	"direct_comp": {
		{Name: "vm_channel_plane", Value: "direct"},
		{Name: "vm_componentexport", Value: 1},
	},
	"indirect_comp": {
		{Name: "vm_channel_plane", Value: "indirect"},
		{Name: "vm_componentexport", Value: 1},
	},
}

// allowedComponents are the shading components that can be exported, in
// export order.
var allowedComponents = []string{"Diffuse", "Reflect", "Coat", "Refract", "Volume"}

const (
	suffixCombined = "Combined"
	suffixEmission = "Emission"
)

// Legacy eye plane names. Requesting either enables eye AOV discovery; both
// are removed from the final list.
const (
	EyeCaustics = "eyeCaustics"
	EyeGlint    = "eyeGlint"
)

// eyeSuffixes mark shader AOVs discovered for eye planes. The misspelled
// caustic suffix is what older assets export.
var eyeSuffixes = []string{"_casuticmask_aov", "_causticmask_aov", "_glint_aov"}
