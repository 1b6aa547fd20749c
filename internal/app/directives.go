package app

import (
	"fmt"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/framerange"
	"github.com/specialistvlad/passgrid/internal/params"
	"github.com/specialistvlad/passgrid/internal/pass"
	"github.com/specialistvlad/passgrid/internal/site"
	"github.com/specialistvlad/passgrid/internal/translate"
)

// DispatchType is the node type of the farm output node wired after each
// pass ROP.
const DispatchType = "farm_dispatch"

// DispatchPath is the farm output node of a pass.
func DispatchPath(passName string) string {
	return translate.ROPPath(passName) + "_dispatch"
}

// applyDirectives records what the manifest and the path sidecar say about
// one layer: camera resolution, the eye to render, the frame set and the
// output locations. Everything but the dispatch node goes into the pass
// context.
func applyDirectives(plan *params.Plan, p *pass.Pass, layer *config.Layer, resolution config.Resolution, paths *site.LayerPaths) error {
	frames, err := framerange.Parse(layer.FrameRange)
	if err != nil {
		return err
	}

	main := plan.Scope(params.BaseContext)
	take := plan.AddContext(p.Name, params.BaseContext)
	rop := translate.ROPPath(p.Name)

	if resolution.Width > 0 && resolution.Height > 0 {
		take.Set(p.Camera.Path, "resolution_menu", "custom_res")
		take.Set(p.Camera.Path, "custom_resx", resolution.Width)
		take.Set(p.Camera.Path, "custom_resy", resolution.Height)
	}
	take.Set(rop, "camera", p.Camera.EyePath(layer.RenderLeftEye, layer.RenderRightEye))

	dispatch := DispatchPath(p.Name)
	if main.Create(dispatch, DispatchType) {
		main.Connect(dispatch, 0, rop)
	}
	take.Set(dispatch, "override_trange", true)
	take.Set(dispatch, "use_arbitrary_frames", true)
	take.Set(dispatch, "arbitrary_frames", frames.Flatten().String())

	if paths != nil {
		if paths.Image == "" || paths.IFD == "" {
			return fmt.Errorf("incomplete output paths for layer %q", layer.Layer)
		}
		take.Set(rop, "vm_picture", paths.Image)
		take.Set(rop, "soho_outputmode", true)
		take.Set(rop, "soho_diskfile", paths.IFD)
	}
	return nil
}
