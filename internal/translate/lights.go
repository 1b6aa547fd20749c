package translate

import (
	"fmt"

	"github.com/specialistvlad/passgrid/internal/params"
)

func (t *translator) applyLights() {
	shadowMask := ""
	if len(t.pass.NoShadow) > 0 {
		shadowMask = excludeMask(t.pass.NoShadow)
	}

	for _, l := range t.pass.Lights {
		if !t.exists(l.ObjectPath) {
			t.gap(fmt.Errorf("%w: light %s", ErrMissingNode, l.ObjectPath), "group", l.Group)
			continue
		}

		settings := l.Light.Settings
		for _, name := range settings.Keys() {
			v, _ := settings.Get(name)
			t.take.Set(l.ObjectPath, name, v)
		}

		if n := len(l.Light.Contributions); n > 0 {
			t.take.Set(l.ObjectPath, "light_contrib", n)
			for i, c := range l.Light.Contributions {
				t.take.Set(l.ObjectPath, params.Indexed("light_contribenable", i+1), c.Enabled)
				t.take.Set(l.ObjectPath, params.Indexed("light_contribname", i+1), c.Name)
			}
		}

		if shadowMask != "" {
			t.take.Set(l.ObjectPath, "shadowmask", shadowMask)
		}
		t.take.Set(l.ObjectPath, "vm_export_prefix", l.Group+"_")
	}
}
