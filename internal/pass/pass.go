// Package pass builds the per-pass render snapshot: the resolved objects,
// lights, special-object lists and camera of one render description pass.
//
// A built Pass holds copies of everything it needs from the description and
// the scene snapshot. Nothing in it points back into the inputs, so passes
// built concurrently never share mutable state.
package pass

import (
	"strings"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/resolve"
)

// TmpSubnet is the parent of the merge proxies created for sub-group objects.
const TmpSubnet = "/obj/tmp_render_objs"

// Item is one resolved member of a source group.
type Item struct {
	Group      string
	SourceType config.SourceType
	// Member is the description entry, "path" or "path:sub/group".
	Member string
	// SourcePath is the scene node the member refers to.
	SourcePath string
	// ObjectPath is the node placed into the render.
	ObjectPath string
	Settings   *resolve.Settings
}

// RenderObject is a geometry item.
type RenderObject struct {
	Item
	Mode  string
	Flags resolve.Flags
	// MergeName names the proxy combining sub-groups; empty for whole objects.
	MergeName string
	// PrimGroup is the primitive group pattern selected by the member.
	PrimGroup string
	Assets    []*config.Asset
}

// IsMerge reports whether the object renders a sub-group through a proxy.
func (o *RenderObject) IsMerge() bool {
	return o.ObjectPath != o.SourcePath
}

// Light is a light item with its settings split for the renderer.
type Light struct {
	Item
	Light resolve.LightSettings
}

// Camera is the pass camera.
type Camera struct {
	Path   string
	Stereo bool
	// Planned is set when the camera does not exist yet and must be created.
	Planned bool
}

// RenderPath is the camera the ROP renders through. Stereo rigs render their
// left eye.
func (c Camera) RenderPath() string {
	if c.Stereo {
		return c.Path + "/left_camera"
	}
	return c.Path
}

// EyePath returns the camera for a single-eye render.
func (c Camera) EyePath(left, right bool) string {
	if !c.Stereo {
		return c.Path
	}
	switch {
	case left && !right:
		return c.Path + "/left_camera"
	case right && !left:
		return c.Path + "/right_camera"
	default:
		return c.Path
	}
}

// Pass is the resolved snapshot of one render description pass.
type Pass struct {
	Name string
	Type config.PassType

	Renderer *resolve.Settings
	Planes   []string

	Objects []*RenderObject
	Lights  []*Light
	Camera  Camera

	NoShadow     []*RenderObject
	NoReflection []*RenderObject
	NoRefraction []*RenderObject
	NoCropMask   []*RenderObject

	// Gaps aggregates non-fatal resolution gaps found while building.
	Gaps error
}

// ObjectsInMode returns the objects whose mode selects the given object-list
// parameter, in build order.
func (p *Pass) ObjectsInMode(mode string) []*RenderObject {
	var out []*RenderObject
	for _, o := range p.Objects {
		if o.Mode == mode {
			out = append(out, o)
		}
	}
	return out
}

// splitMember separates "path:sub/group" into the source path and the raw
// sub-group selector.
func splitMember(member string) (path, sub string, ok bool) {
	path, _, ok = strings.Cut(member, ":")
	if !ok {
		return member, "", false
	}
	return path, member[strings.LastIndex(member, ":")+1:], true
}

// primGroupPattern converts a sub-group selector into a primitive group
// pattern: slashes become underscores, "_GRP" groups match their children
// and the "_primGroups_" prefix is dropped.
func primGroupPattern(sub string) string {
	grp := strings.ReplaceAll(sub, "/", "_")
	if strings.HasSuffix(grp, "_GRP") {
		grp += "*"
	}
	return strings.TrimPrefix(grp, "_primGroups_")
}

// mergeName is the proxy name for a sub-group member. The pass name is part
// of it so concurrently built passes never target the same proxy.
func mergeName(passName, group, sourcePath string) string {
	return passName + "_" + group + "_" + strings.ReplaceAll(sourcePath, "/", "_")
}

func copyAssets(in []*config.Asset) []*config.Asset {
	if len(in) == 0 {
		return nil
	}
	out := make([]*config.Asset, len(in))
	for i, a := range in {
		c := &config.Asset{Path: a.Path}
		c.ShaderAOVs = append(c.ShaderAOVs, a.ShaderAOVs...)
		c.MagicAOVs = append(c.MagicAOVs, a.MagicAOVs...)
		out[i] = c
	}
	return out
}
