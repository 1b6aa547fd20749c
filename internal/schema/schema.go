// Package schema holds the HCL block structures of passgrid's input files:
// shot requests, render descriptions and renderer scene snapshots. They are
// decoded with gohcl and translated into the config model by internal/hcl.
package schema

import "github.com/hashicorp/hcl/v2"

// --- Shot request ---

// ShotFile is the top level of a shot request file.
type ShotFile struct {
	Shots  []*Shot  `hcl:"shot,block"`
	Remain hcl.Body `hcl:",remain"`
}

// Shot represents a `shot "<sequence>" "<shot>"` block.
type Shot struct {
	Sequence     string      `hcl:"sequence,label"`
	Shot         string      `hcl:"shot,label"`
	Context      string      `hcl:"context,optional"`
	OutputFormat string      `hcl:"output_format,optional"`
	ScenePath    string      `hcl:"scene_path,optional"`
	RLCFile      string      `hcl:"rlc_file,optional"`
	ShotOpts     string      `hcl:"shot_opts,optional"`
	Notes        string      `hcl:"notes,optional"`
	AfterJob     string      `hcl:"after_job,optional"`
	Priority     int         `hcl:"priority,optional"`
	CPUs         int         `hcl:"cpus,optional"`
	PerLayerJobs bool        `hcl:"per_layer_jobs,optional"`
	Distribution string      `hcl:"distribution,optional"`
	Resolution   *Resolution `hcl:"resolution,block"`
	Layers       []*Layer    `hcl:"layer,block"`
}

// Resolution is the output image size.
type Resolution struct {
	Width  int     `hcl:"width"`
	Height int     `hcl:"height"`
	Aspect float64 `hcl:"aspect,optional"`
}

// Layer represents a `layer "<name>"` block.
type Layer struct {
	Name         string `hcl:"name,label"`
	PassType     string `hcl:"pass_type,optional"`
	FrameRange   string `hcl:"frame_range"`
	LeftEye      bool   `hcl:"left_eye,optional"`
	RightEye     bool   `hcl:"right_eye,optional"`
	VersionUp    bool   `hcl:"version_up,optional"`
	Camera       string `hcl:"camera,optional"`
	Priority     int    `hcl:"priority,optional"`
	CPUs         int    `hcl:"cpus,optional"`
	Cluster      string `hcl:"cluster,optional"`
	Distribution string `hcl:"distribution,optional"`
}

// --- Render description ---

// DescriptionFile is the top level of a render description file.
type DescriptionFile struct {
	Passes []*Pass  `hcl:"pass,block"`
	Remain hcl.Body `hcl:",remain"`
}

// Pass represents a `pass "<name>"` block.
type Pass struct {
	Name     string           `hcl:"name,label"`
	Type     string           `hcl:"type"`
	Settings []*SettingsGroup `hcl:"settings,block"`
	Groups   []*Group         `hcl:"group,block"`
}

// SettingsGroup represents a named `settings "<name>"` attribute group.
type SettingsGroup struct {
	Name     string     `hcl:"name,label"`
	Settings []*Setting `hcl:"setting,block"`
}

// Setting represents a `setting "<name>"` block. A setting with nested
// settings is a container and its own value is ignored.
type Setting struct {
	Name     string         `hcl:"name,label"`
	Value    hcl.Expression `hcl:"value,optional"`
	Kind     string         `hcl:"kind,optional"`
	Locked   bool           `hcl:"locked,optional"`
	Settings []*Setting     `hcl:"setting,block"`
}

// Group represents a `group "<name>"` source group.
type Group struct {
	Name           string          `hcl:"name,label"`
	SourceType     string          `hcl:"source_type"`
	Members        []string        `hcl:"members,optional"`
	AOVs           []string        `hcl:"aovs,optional"`
	SourceSettings *SourceSettings `hcl:"source_settings,block"`
}

// SourceSettings is the group's override attribute group.
type SourceSettings struct {
	Settings []*Setting `hcl:"setting,block"`
}

// --- Scene snapshot ---

// SceneFile is the top level of a scene snapshot file.
type SceneFile struct {
	Nodes   []*Node   `hcl:"node,block"`
	Cameras []*Camera `hcl:"camera,block"`
	Remain  hcl.Body  `hcl:",remain"`
}

// Node represents a `node "<path>"` block.
type Node struct {
	Path        string   `hcl:"path,label"`
	Type        string   `hcl:"type"`
	RenderNode  string   `hcl:"render_node,optional"`
	Input       string   `hcl:"input,optional"`
	PrimAttribs []string `hcl:"prim_attribs,optional"`
	RenderFlag  bool     `hcl:"render_flag,optional"`
	Assets      []*Asset `hcl:"asset,block"`
}

// Camera represents a `camera "<path>"` block. Cameras are discovered in
// block order.
type Camera struct {
	Path   string `hcl:"path,label"`
	Type   string `hcl:"type,optional"`
	Stereo bool   `hcl:"stereo,optional"`
}

// Asset represents an `asset "<path>"` block.
type Asset struct {
	Path       string       `hcl:"path,label"`
	MagicAOVs  []string     `hcl:"magic_aovs,optional"`
	ShaderAOVs []*ShaderAOV `hcl:"shader_aov,block"`
}

// ShaderAOV represents a `shader_aov "<name>"` block.
type ShaderAOV struct {
	Name        string `hcl:"name,label"`
	StorageType string `hcl:"storage_type,optional"`
}
