package translate

import (
	"fmt"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/pass"
	"github.com/specialistvlad/passgrid/internal/resolve"
)

func (t *translator) applyObjects() {
	reflectMask := ""
	if len(t.pass.NoReflection) > 0 {
		reflectMask = excludeMask(t.pass.NoReflection)
	}
	refractMask := ""
	if len(t.pass.NoRefraction) > 0 {
		refractMask = excludeMask(t.pass.NoRefraction)
	}

	for _, o := range t.pass.Objects {
		if !t.exists(o.ObjectPath) {
			t.gap(fmt.Errorf("%w: object %s", ErrMissingNode, o.ObjectPath), "group", o.Group)
			continue
		}

		t.applyObjectSettings(o)
		if reflectMask != "" {
			t.take.Set(o.ObjectPath, "reflectmask", reflectMask)
		}
		if refractMask != "" {
			t.take.Set(o.ObjectPath, "refractmask", refractMask)
		}

		switch t.pass.Type {
		case config.PassShadow:
			t.shadowObject(o)
		case config.PassMatte:
			t.matteObject(o)
		case config.PassAmbientOcclusion:
			t.occlusionObject(o)
		}
	}
}

// applyObjectSettings writes the regular settings of an object. Special
// settings only drive derived behavior; matte AOVs select magic AOVs on the
// object's assets.
func (t *translator) applyObjectSettings(o *pass.RenderObject) {
	for _, name := range o.Settings.Keys() {
		v, _ := o.Settings.Get(name)
		if !resolve.IsSpecialObjectSetting(name) {
			t.take.Set(o.ObjectPath, name, v)
			continue
		}
		if name != resolve.MatteAOVs {
			continue
		}
		wanted := stringList(v)
		for _, asset := range o.Assets {
			for _, aov := range asset.MagicAOVs {
				if contains(wanted, aov) {
					t.magic.add(asset.Path, magicAOV{Name: aov})
				}
			}
		}
	}
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{l}
	default:
		return nil
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
