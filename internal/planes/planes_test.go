package planes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/pass"
	"github.com/specialistvlad/passgrid/internal/resolve"
	"github.com/stretchr/testify/assert"
)

func names(l Layout) []string {
	var out []string
	for _, p := range l.Planes {
		out = append(out, p.Name)
	}
	return out
}

func TestEnumerate_Partition(t *testing.T) {
	l := Enumerate([]string{"directDiffuse", "directCombined", "indirectEmission", "customPlane"}, nil)

	assert.Equal(t, []string{"direct", "indirect_emission", "customPlane"}, names(l))
	for i, p := range l.Planes {
		assert.Equal(t, i+1, p.Index)
		assert.True(t, p.LightExport)
	}
}

func TestEnumerate_Components(t *testing.T) {
	l := Enumerate([]string{"directReflect", "directDiffuse", "indirectDiffuse", "directEmission", "depth"}, nil)

	assert.Equal(t, []string{"direct_comp", "direct_emission", "indirect_comp", "depth"}, names(l))
	assert.True(t, l.Computed)
	assert.Equal(t, "diffuse reflect", l.ExportComponents)

	want := []PlaneSpec{
		{Index: 1, Name: "direct_comp", LightExport: true, Extra: []Parm{
			{Name: "vm_channel_plane", Value: "direct"},
			{Name: "vm_componentexport", Value: 1},
		}},
		{Index: 2, Name: "direct_emission", LightExport: true, Extra: []Parm{
			{Name: "vm_sfilter_plane", Value: "fullopacity"},
		}},
		{Index: 3, Name: "indirect_comp", LightExport: true, Extra: []Parm{
			{Name: "vm_channel_plane", Value: "indirect"},
			{Name: "vm_componentexport", Value: 1},
		}},
		{Index: 4, Name: "depth", LightExport: false, Extra: []Parm{
			{Name: "vm_variable_plane", Value: "Pz"},
			{Name: "vm_vextype_plane", Value: "float"},
		}},
	}
	if diff := cmp.Diff(want, l.Planes); diff != "" {
		t.Errorf("plane specs mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerate_BucketDroppedIndependently(t *testing.T) {
	l := Enumerate([]string{"directDiffuse", "indirectBogus"}, nil)
	assert.Equal(t, []string{"direct_comp"}, names(l))
	assert.Equal(t, "diffuse", l.ExportComponents)
}

func TestEnumerate_NoValidComponents(t *testing.T) {
	l := Enumerate([]string{"normals"}, nil)
	assert.Equal(t, []string{"normals"}, names(l))
	assert.True(t, l.Computed)
	assert.Equal(t, "", l.ExportComponents)
}

func TestEnumerate_Empty(t *testing.T) {
	l := Enumerate(nil, nil)
	assert.Empty(t, l.Planes)
	assert.False(t, l.Computed)

	l = Enumerate([]string{}, nil)
	assert.Empty(t, l.Planes)
	assert.False(t, l.Computed)
}

func eyeObject(mode string) *pass.RenderObject {
	return &pass.RenderObject{
		Item: pass.Item{Group: "chars", SourcePath: "/obj/hero", ObjectPath: "/obj/hero"},
		Mode: mode,
		Assets: []*config.Asset{{
			Path: "/obj/hero/asset",
			ShaderAOVs: []config.ShaderAOV{
				{Name: "hero_casuticmask_aov", StorageType: "vector"},
				{Name: "hero_glint_aov", StorageType: "float"},
				{Name: "hero_spec_aov", StorageType: "vector"},
			},
		}},
	}
}

func TestEnumerate_EyeAOVs(t *testing.T) {
	objects := []*pass.RenderObject{eyeObject(resolve.ModeVisible), eyeObject(resolve.ModeVisible), eyeObject(resolve.ModeMatte)}

	l := Enumerate([]string{"eyeCaustics", "normals"}, objects)

	assert.Equal(t, []string{"normals", "hero_casuticmask_aov", "hero_glint_aov"}, names(l))
	assert.Equal(t, []Parm{
		{Name: "vm_variable_plane", Value: "hero_glint_aov"},
		{Name: "vm_vextype_plane", Value: "float"},
	}, l.Planes[2].Extra)
}

func TestEnumerate_EyeAOVsRequireEyePlane(t *testing.T) {
	l := Enumerate([]string{"normals"}, []*pass.RenderObject{eyeObject(resolve.ModeVisible)})
	assert.Equal(t, []string{"normals"}, names(l))
}

func TestEnumerate_LegacyEyeNamesAlwaysRemoved(t *testing.T) {
	l := Enumerate([]string{"eyeGlint", "eyeCaustics"}, nil)
	assert.Empty(t, l.Planes)
	assert.True(t, l.Computed)
}

func TestEnumerate_OverlayDoesNotLeak(t *testing.T) {
	Enumerate([]string{"eyeGlint"}, []*pass.RenderObject{eyeObject(resolve.ModeVisible)})
	_, ok := known["hero_glint_aov"]
	assert.False(t, ok)
}

func TestEnumerate_Idempotent(t *testing.T) {
	requested := []string{"directDiffuse", "indirectReflect", "eyeGlint", "depth", "indirectEmission"}
	objects := []*pass.RenderObject{eyeObject(resolve.ModeVisible)}

	first := Enumerate(requested, objects)
	second := Enumerate(requested, objects)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("enumeration is not stable (-first +second):\n%s", diff)
	}
}
