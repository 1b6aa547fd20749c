package translate

import "github.com/specialistvlad/passgrid/internal/params"

// magicAOV is a per-object auxiliary output on a shading asset.
type magicAOV struct {
	Name  string
	Group string
}

// magicAOVs accumulates the magic AOVs of every asset touched by a pass so
// each asset's multiparm is written once, as a union by name.
type magicAOVs struct {
	order  []string
	byPath map[string][]magicAOV
	matte  map[string]bool
}

func newMagicAOVs() *magicAOVs {
	return &magicAOVs{byPath: make(map[string][]magicAOV), matte: make(map[string]bool)}
}

func (m *magicAOVs) touch(asset string) {
	if _, ok := m.byPath[asset]; !ok {
		m.byPath[asset] = nil
		m.order = append(m.order, asset)
	}
}

// add registers an AOV on an asset unless one with the same name is there.
func (m *magicAOVs) add(asset string, aov magicAOV) {
	m.touch(asset)
	for _, existing := range m.byPath[asset] {
		if existing.Name == aov.Name {
			return
		}
	}
	m.byPath[asset] = append(m.byPath[asset], aov)
}

// matteAll makes the asset's magic matte shader apply to all primitives.
func (m *magicAOVs) matteAll(asset string) {
	m.touch(asset)
	m.matte[asset] = true
}

func (m *magicAOVs) flush(scope params.Scope) {
	for _, asset := range m.order {
		aovs := m.byPath[asset]
		scope.Set(asset, "magic_aovs", len(aovs))
		for i, aov := range aovs {
			scope.Set(asset, params.Indexed("magic_aov_name", i+1), aov.Name)
			if aov.Group != "" {
				scope.Set(asset, params.Indexed("magic_aov_group", i+1), aov.Group)
			}
		}
		scope.Set(asset, "use_magic_shaders", true)
		if m.matte[asset] {
			scope.Set(asset, "magic_matte_shader", "*")
		}
	}
}
