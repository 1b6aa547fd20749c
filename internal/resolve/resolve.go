// Package resolve flattens the hierarchical attribute groups of a render
// description into renderer parameter maps.
//
// Source group overrides follow a fixed precedence: leaves are visited in
// source-tree order, locked leaves are skipped so the inherited value
// prevails, and a later unlocked leaf overwrites an earlier one. Enumeration
// attributes (the group's mode selector) never reach the map. Names without a
// renderer equivalent pass through unchanged.
package resolve

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/passgrid/internal/config"
	"go.uber.org/multierr"
)

// ErrUnmappedValue marks an enumeration label with no renderer value. It is a
// resolution gap: the raw label is kept and processing continues.
var ErrUnmappedValue = errors.New("unmapped attribute value")

// Flags are the object-level special settings, set when the resolved value of
// the corresponding attribute is falsy.
type Flags struct {
	NoShadow     bool
	NoReflection bool
	NoRefraction bool
	NoCropMask   bool
}

// Result is the resolved override set of one source group.
type Result struct {
	Settings *Settings
	Flags    Flags
	// Mode is the renderer object-list parameter for the group, or "".
	Mode string
}

// Resolve walks a source group's "source_settings" attribute group and
// returns the flattened overrides. A group without settings yields an empty
// result.
func Resolve(group *config.SourceGroup) Result {
	res := Result{Settings: NewSettings()}
	if group == nil {
		return res
	}

	if group.Settings != nil {
		for _, attr := range group.Settings.Attributes {
			if attr.Name == ModeAttribute {
				continue
			}
			collectLeaves(attr, res.Settings)
		}
	}
	if len(group.AOVs) > 0 {
		res.Settings.Set(MatteAOVs, append([]string(nil), group.AOVs...))
	}

	res.Mode = Mode(group)
	res.Flags = flagsFrom(res.Settings)
	return res
}

func collectLeaves(attr *config.Attribute, out *Settings) {
	if attr.Kind == config.KindEnum {
		return
	}
	if !attr.IsLeaf() {
		for _, m := range attr.Members {
			collectLeaves(m, out)
		}
		return
	}
	if attr.Locked {
		return
	}
	name := attr.Name
	if remapped, ok := objectRemap[name]; ok {
		name = remapped
	}
	out.Set(name, attr.Value)
}

func flagsFrom(s *Settings) Flags {
	var f Flags
	falsy := func(name string) bool {
		v, ok := s.Get(name)
		return ok && !Truthy(v)
	}
	f.NoShadow = falsy(CastShadows)
	f.NoReflection = falsy(VisibleInReflections)
	f.NoRefraction = falsy(VisibleInRefractions)
	f.NoCropMask = falsy(CropMask)
	return f
}

// Mode returns the renderer object-list parameter selected by the group's
// mode attribute, or "" when the group has no recognised mode.
func Mode(group *config.SourceGroup) string {
	if group == nil {
		return ""
	}
	attr, ok := group.Settings.Get(ModeAttribute)
	if !ok {
		return ""
	}
	label, _ := attr.Value.(string)
	return modeParms[label]
}

// PassSettings is the resolved pass-level configuration.
type PassSettings struct {
	// Renderer holds the ROP settings, including Shutter.
	Renderer *Settings
	// Planes are the requested abstract plane names, in description order.
	Planes []string
	// Gaps aggregates non-fatal resolution gaps.
	Gaps error
}

// ResolvePassSettings flattens every pass-level attribute group except the
// AOV and submission groups into renderer settings, and reads the requested
// plane list from the AOV group.
func ResolvePassSettings(pass *config.Pass) PassSettings {
	ps := PassSettings{Renderer: NewSettings()}
	if pass == nil {
		return ps
	}

	for _, group := range pass.Settings {
		switch group.Name {
		case GroupSubmission:
			continue
		case GroupAOVs:
			for _, attr := range group.Attributes {
				if attr.IsLeaf() && Truthy(attr.Value) {
					ps.Planes = append(ps.Planes, attr.Name)
				}
			}
			continue
		}

		leaves := NewSettings()
		for _, attr := range group.Attributes {
			collectRendererLeaves(attr, leaves)
		}
		for _, name := range leaves.Keys() {
			v, _ := leaves.Get(name)
			mapped, err := mapEnum(rendererEnums, name, v)
			if err != nil {
				ps.Gaps = multierr.Append(ps.Gaps, err)
			}
			ps.Renderer.Set(name, mapped)
		}
	}
	return ps
}

// collectRendererLeaves is collectLeaves without the object remap; enum
// attributes are kept because renderer menus are authored as enums.
func collectRendererLeaves(attr *config.Attribute, out *Settings) {
	if !attr.IsLeaf() {
		for _, m := range attr.Members {
			collectRendererLeaves(m, out)
		}
		return
	}
	if attr.Locked {
		return
	}
	out.Set(attr.Name, attr.Value)
}

func mapEnum(table map[string]map[string]int, name string, value any) (any, error) {
	labels, ok := table[name]
	if !ok {
		return value, nil
	}
	label, ok := value.(string)
	if !ok {
		return value, nil
	}
	mapped, ok := labels[label]
	if !ok {
		return value, fmt.Errorf("%w: %s=%q", ErrUnmappedValue, name, label)
	}
	return mapped, nil
}

// Contribution is one entry of a light's contribution multiparm.
type Contribution struct {
	Name    string
	Enabled any
}

// LightSettings is a light group's resolution split into plain parameters
// and contribution toggles.
type LightSettings struct {
	Settings      *Settings
	Contributions []Contribution
	Gaps          error
}

// SplitLight separates contribution toggles from plain light settings and
// maps light enumeration labels to renderer values. Names without a light
// mapping pass through unchanged.
func SplitLight(res Result) LightSettings {
	ls := LightSettings{Settings: NewSettings()}
	for _, name := range res.Settings.Keys() {
		v, _ := res.Settings.Get(name)
		if pattern, ok := lightContributions[name]; ok {
			ls.Contributions = append(ls.Contributions, Contribution{Name: pattern, Enabled: v})
			continue
		}
		mapped, err := mapEnum(lightEnums, name, v)
		if err != nil {
			ls.Gaps = multierr.Append(ls.Gaps, err)
		}
		ls.Settings.Set(name, mapped)
	}
	return ls
}
