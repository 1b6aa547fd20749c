// Package planes derives the renderer's ordered image-plane list from the
// abstract plane names requested by a pass.
//
// Requested names starting with "direct" or "indirect" are decomposed into a
// component plane per bucket (or the bare bucket when "Combined" was asked
// for) plus an optional emission plane; every other name is emitted
// verbatim. Enumeration is a pure function of its inputs.
package planes

import (
	"strings"

	"github.com/specialistvlad/passgrid/internal/pass"
	"github.com/specialistvlad/passgrid/internal/resolve"
)

// PlaneSpec is one output image plane.
type PlaneSpec struct {
	// Index is the 1-based position in the plane list.
	Index       int
	Name        string
	LightExport bool
	Extra       []Parm
}

// Layout is the enumerated plane configuration of a pass.
type Layout struct {
	Planes []PlaneSpec
	// ExportComponents is the space-separated component list. It is only
	// meaningful when Computed is set.
	ExportComponents string
	// Computed is false when nothing was requested and the export
	// components step was skipped.
	Computed bool
}

type bucket struct {
	name     string
	comps    []string
	skip     bool
	emission bool
}

// Enumerate derives the plane layout for the requested planes. Objects are
// scanned for eye AOVs when an eye plane is requested.
func Enumerate(requested []string, objects []*pass.RenderObject) Layout {
	if len(requested) == 0 {
		return Layout{}
	}

	direct := &bucket{name: "direct"}
	indirect := &bucket{name: "indirect"}
	var others []string

	for _, name := range requested {
		var b *bucket
		switch {
		case strings.HasPrefix(name, indirect.name):
			b = indirect
		case strings.HasPrefix(name, direct.name):
			b = direct
		default:
			others = append(others, name)
			continue
		}
		suffix := strings.TrimPrefix(name, b.name)
		switch suffix {
		case suffixEmission:
			b.emission = true
		case suffixCombined:
			b.skip = true
		default:
			b.comps = append(b.comps, suffix)
		}
	}

	var names []string
	for _, b := range []*bucket{direct, indirect} {
		if b.skip {
			b.comps = nil
			names = append(names, b.name)
		} else if len(validComponents(b.comps)) > 0 {
			names = append(names, b.name+"_comp")
		}
		if b.emission {
			names = append(names, b.name+"_emission")
		}
	}
	names = append(names, others...)

	overlay := make(map[string][]Parm)
	if contains(others, EyeCaustics) || contains(others, EyeGlint) {
		names = appendEyeAOVs(names, objects, overlay)
	}
	names = remove(names, EyeCaustics)
	names = remove(names, EyeGlint)

	layout := Layout{
		ExportComponents: exportComponents(direct.comps, indirect.comps),
		Computed:         true,
	}
	for i, name := range names {
		layout.Planes = append(layout.Planes, newSpec(i+1, name, overlay))
	}
	return layout
}

func newSpec(index int, name string, overlay map[string][]Parm) PlaneSpec {
	spec := PlaneSpec{Index: index, Name: name, LightExport: true}
	extra, ok := overlay[name]
	if !ok {
		extra = known[name]
	}
	for _, p := range extra {
		if p.Name == lightExportParm {
			spec.LightExport = resolve.Truthy(p.Value)
			continue
		}
		spec.Extra = append(spec.Extra, p)
	}
	return spec
}

// appendEyeAOVs adds the eye shader AOVs of visible objects and registers
// their plane settings in overlay.
func appendEyeAOVs(names []string, objects []*pass.RenderObject, overlay map[string][]Parm) []string {
	for _, obj := range objects {
		if obj.Mode != resolve.ModeVisible {
			continue
		}
		for _, asset := range obj.Assets {
			for _, aov := range asset.ShaderAOVs {
				if !isEyeAOV(aov.Name) || contains(names, aov.Name) {
					continue
				}
				names = append(names, aov.Name)
				overlay[aov.Name] = []Parm{
					{Name: "vm_variable_plane", Value: aov.Name},
					{Name: "vm_vextype_plane", Value: aov.StorageType},
				}
			}
		}
	}
	return names
}

func isEyeAOV(name string) bool {
	for _, s := range eyeSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func validComponents(comps []string) []string {
	var out []string
	for _, allowed := range allowedComponents {
		if contains(comps, allowed) {
			out = append(out, allowed)
		}
	}
	return out
}

// exportComponents is the lowercase union of valid components of both
// buckets, in allowed-list order.
func exportComponents(direct, indirect []string) string {
	all := append(append([]string(nil), direct...), indirect...)
	valid := validComponents(all)
	for i, c := range valid {
		valid[i] = strings.ToLower(c)
	}
	return strings.Join(valid, " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
