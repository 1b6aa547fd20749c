package config

// PassType selects the type-specific derivation the translator applies.
type PassType string

const (
	PassBeauty           PassType = "beauty"
	PassShadow           PassType = "shadow"
	PassMatte            PassType = "matte"
	PassAmbientOcclusion PassType = "ambientOcclusion"
)

// SourceType is the kind of scene item a source group references.
type SourceType string

const (
	SourceGeom   SourceType = "geom"
	SourceLight  SourceType = "light"
	SourceCamera SourceType = "camera"
)

// Distribution is the farm agenda policy for a render job.
type Distribution string

const (
	// DistributeSingle emits one task per frame-range segment.
	DistributeSingle Distribution = "single"
	// DistributePerFrame emits one task per frame.
	DistributePerFrame Distribution = "frame"
)

// ContextType is the pipeline context a submission is made from. It selects
// the path formulas used for archive and submission directories.
type ContextType string

const (
	ContextShot     ContextType = "shot"
	ContextAssembly ContextType = "assembly"
)

// --- Submission request ---

// Shot is a complete submission request for one shot.
type Shot struct {
	Sequence     string
	Shot         string
	Context      ContextType
	Resolution   Resolution
	OutputFormat string
	ScenePath    string
	RLCFile      string
	ShotOpts     string
	Notes        string

	// AfterJob is an optional external farm job id the prep job waits on.
	AfterJob string
	// Priority and CPUs apply to the preparation job.
	Priority int
	CPUs     int

	// PerLayerJobs enables one dependent render job per layer.
	PerLayerJobs bool
	// Distribution is the default agenda policy for layers that do not set one.
	Distribution Distribution

	Layers []*Layer
}

// Resolution is the output image size.
type Resolution struct {
	Width  int
	Height int
	Aspect float64
}

// Layer is one row of user intent: render this pass with these settings.
// It is immutable once submitted and serialized verbatim into the manifest.
type Layer struct {
	Layer          string
	PassType       PassType
	FrameRange     string
	RenderLeftEye  bool
	RenderRightEye bool
	VersionUp      bool
	Camera         string
	Priority       int
	CPUs           int
	Cluster        string
	Distribution   Distribution
}

// --- Render description ---

// Description is the hierarchical render description for a shot.
type Description struct {
	Passes []*Pass
}

// Pass finds a pass by name.
func (d *Description) Pass(name string) (*Pass, bool) {
	for _, p := range d.Passes {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Pass is one renderable output layer as authored upstream.
type Pass struct {
	Name string
	Type PassType
	// Settings are the pass-level attribute groups (renderer settings, the
	// "AOVs" group of requested planes, the "Submission" group).
	Settings []*AttributeGroup
	Groups   []*SourceGroup
}

// SourceGroup references scene items of one SourceType plus their overrides.
type SourceGroup struct {
	Name       string
	SourceType SourceType
	Members    []string
	// Settings is the "source_settings" attribute group; nil means no overrides.
	Settings *AttributeGroup
	// AOVs is the per-group list of magic AOV names to import.
	AOVs []string
}

// AttributeGroup is a named bag of attributes.
type AttributeGroup struct {
	Name       string
	Attributes []*Attribute
}

// Get returns the first top-level attribute with the given name.
func (g *AttributeGroup) Get(name string) (*Attribute, bool) {
	if g == nil {
		return nil, false
	}
	for _, a := range g.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// AttributeKind distinguishes plain values from enumeration selectors.
type AttributeKind string

const (
	KindValue AttributeKind = "value"
	KindEnum  AttributeKind = "enum"
)

// Attribute is one named value. An attribute with Members is a container;
// only leaves carry values that are applied.
type Attribute struct {
	Name    string
	Kind    AttributeKind
	Value   any
	Locked  bool
	Members []*Attribute
}

// IsLeaf reports whether the attribute carries a value rather than members.
func (a *Attribute) IsLeaf() bool {
	return len(a.Members) == 0
}

// --- Renderer scene snapshot ---

// Scene is a read-only snapshot of the renderer-side nodes the translator
// consults. It replaces live scene-graph lookups.
type Scene struct {
	Nodes map[string]*SceneNode
	// Cameras lists camera node paths in discovery order.
	Cameras []string
}

// CameraType is the node type of a plain camera.
const CameraType = "cam"

// IsCamera reports whether path names a camera: a discovered camera, a
// stereo rig or a node of CameraType.
func (s *Scene) IsCamera(path string) bool {
	n, ok := s.Node(path)
	if !ok {
		return false
	}
	if n.Type == CameraType || n.Stereo {
		return true
	}
	for _, c := range s.Cameras {
		if c == path {
			return true
		}
	}
	return false
}

// Node returns the node at path, if it exists in the snapshot.
func (s *Scene) Node(path string) (*SceneNode, bool) {
	if s == nil || s.Nodes == nil {
		return nil, false
	}
	n, ok := s.Nodes[path]
	return n, ok
}

// SceneNode is one renderer node.
type SceneNode struct {
	Path string
	Type string
	// RenderNode is the path of the node whose output is rendered.
	RenderNode string
	// Input is the path of the first input, if any.
	Input string
	// PrimAttribs are the primitive attribute names on the node's geometry.
	PrimAttribs []string
	// RenderFlag is true when this node carries the render flag.
	RenderFlag bool
	// Stereo marks a camera rig exposing left_camera/right_camera children.
	Stereo bool
	// Assets are the shading assets found under this node.
	Assets []*Asset
}

// HasPrimAttrib reports whether the node's geometry carries the attribute.
func (n *SceneNode) HasPrimAttrib(name string) bool {
	for _, a := range n.PrimAttribs {
		if a == name {
			return true
		}
	}
	return false
}

// Asset is a shading asset with discoverable auxiliary outputs.
type Asset struct {
	Path string
	// ShaderAOVs are the imported shader AOVs with their storage types.
	ShaderAOVs []ShaderAOV
	// MagicAOVs are the imported magic AOV names.
	MagicAOVs []string
}

// ShaderAOV is an auxiliary output declared by an asset's shading network.
type ShaderAOV struct {
	Name        string
	StorageType string
}
