package translate

import (
	"fmt"
	"path"

	"github.com/specialistvlad/passgrid/internal/params"
	"github.com/specialistvlad/passgrid/internal/pass"
	"github.com/specialistvlad/passgrid/internal/resolve"
)

// Shared shadow matte material.
const (
	ShadowMatte     = "/shop/tmp_render_shadow_matte"
	ShadowMatteType = "v_shadowmatte"
)

// Occlusion attribute stage.
const (
	OcclusionStage     = "AO_ATTR"
	OcclusionStageType = "attribcreate::2.0"
	MaterialAttribute  = "shop_materialpath"
)

// shadowObject gives visible objects the shadow matte material and turns off
// their assets' looks so only the matte shows.
func (t *translator) shadowObject(o *pass.RenderObject) {
	if node, ok := t.scene.Node(ShadowMatte); !ok || node.Type != ShadowMatteType {
		t.main.Create(ShadowMatte, ShadowMatteType)
	}

	if o.Mode != resolve.ModeVisible {
		return
	}
	t.take.Set(o.ObjectPath, MaterialAttribute, ShadowMatte)
	for _, asset := range o.Assets {
		t.take.Set(asset.Path, "import_look", false)
	}
}

// matteObject registers one magic AOV per object, named after its group, on
// each of its assets. Sub-group objects restrict the AOV to the groups their
// proxy merges from the object's source.
func (t *translator) matteObject(o *pass.RenderObject) {
	groups := "*"
	if o.IsMerge() {
		m, ok := t.merges.Merge(o.MergeName)
		if !ok || m.Patterns(o.SourcePath) == nil {
			t.gap(fmt.Errorf("%w: merge proxy for %s", ErrMissingNode, o.Member), "group", o.Group)
			return
		}
		groups = m.Patterns(o.SourcePath).String()
	}
	for _, asset := range o.Assets {
		t.magic.add(asset.Path, magicAOV{Name: o.Group, Group: groups})
		t.magic.matteAll(asset.Path)
	}
}

// occlusionObject inserts an attribute stage that points the object's
// materials at their occlusion variants. The stage is created once and
// reused when it already exists.
func (t *translator) occlusionObject(o *pass.RenderObject) {
	source, ok := t.scene.Node(o.SourcePath)
	if !ok {
		t.gap(fmt.Errorf("%w: %s", ErrMissingNode, o.SourcePath), "group", o.Group)
		return
	}

	renderPath := source.RenderNode
	if path.Base(renderPath) == OcclusionStage {
		if stage, ok := t.scene.Node(renderPath); ok {
			renderPath = stage.Input
		}
	}
	renderNode, ok := t.scene.Node(renderPath)
	if !ok {
		t.gap(fmt.Errorf("%w: render node %q of %s", ErrMissingNode, renderPath, o.SourcePath), "group", o.Group)
		return
	}
	if !renderNode.HasPrimAttrib(MaterialAttribute) {
		t.gap(fmt.Errorf("%w: %s on %s", ErrMissingAttribute, MaterialAttribute, renderPath), "group", o.Group)
		return
	}

	stage := o.SourcePath + "/" + OcclusionStage
	if !t.exists(stage) {
		t.main.Create(stage, OcclusionStageType)
	}
	t.take.Connect(stage, 0, renderPath)

	if !t.aoFlagged[stage] {
		if node, ok := t.scene.Node(stage); !ok || !node.RenderFlag {
			t.take.Flag(stage, params.FlagRender, true)
		}
		t.aoFlagged[stage] = true
	}

	t.take.Set(stage, "numattr", 1)
	t.take.Set(stage, "name1", MaterialAttribute)
	t.take.Set(stage, "class1", 1)
	t.take.Set(stage, "type1", 3)
	t.take.Set(stage, "string1", occlusionExpression(renderPath))
	t.take.Flag(stage, params.FlagHidden, true)
}

func occlusionExpression(renderPath string) string {
	return fmt.Sprintf("`ifs(hasprimattrib(%q, %q), prims(%q, $PR, %q)/__OCCLUSION__, \"\")`",
		renderPath, MaterialAttribute, renderPath, MaterialAttribute)
}
