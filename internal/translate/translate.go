// Package translate turns a built pass into a renderer parameter plan.
//
// Pass-wide state (ROP creation, renderer settings, planes, object and light
// lists) is recorded in the base context. Everything that must only apply
// while this pass renders (camera overrides, object and light settings,
// pass-type derivations) is recorded in a context named after the pass.
//
// Items whose renderer node is missing are skipped with a warning; the only
// hard failure is a pass without a camera.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/mergeplan"
	"github.com/specialistvlad/passgrid/internal/params"
	"github.com/specialistvlad/passgrid/internal/pass"
	"github.com/specialistvlad/passgrid/internal/planes"
	"github.com/specialistvlad/passgrid/internal/resolve"
	"go.uber.org/multierr"
)

// ErrMissingNode marks an item skipped because its renderer node does not
// exist.
var ErrMissingNode = errors.New("renderer node not found")

// ErrMissingAttribute marks an occlusion item skipped because its geometry
// lacks the material attribute.
var ErrMissingAttribute = errors.New("required primitive attribute missing")

// ROPType is the node type of the output driver created per pass.
const ROPType = "ifd"

// ROPPath is the output driver of a pass.
func ROPPath(passName string) string {
	return "/out/" + passName
}

// Result is the outcome of translating one pass.
type Result struct {
	Plan   *params.Plan
	Layout planes.Layout
	Merges *mergeplan.MergePlan
	// Gaps aggregates the resolution gaps of the build and the translation.
	Gaps error
}

// translator carries the state of one Translate call.
type translator struct {
	ctx    context.Context
	pass   *pass.Pass
	scene  *config.Scene
	plan   *params.Plan
	main   params.Scope
	take   params.Scope
	rop    string
	merges *mergeplan.MergePlan
	magic  *magicAOVs
	gaps   error

	aoFlagged map[string]bool
}

// Translate records the parameter plan of a built pass.
func Translate(ctx context.Context, p *pass.Pass, scene *config.Scene) (*Result, error) {
	if p.Camera.Path == "" {
		return nil, fmt.Errorf("pass %q: %w", p.Name, pass.ErrNoCamera)
	}
	ctx, logger := ctxlog.With(ctx, "pass", p.Name)
	logger.Debug("Translating pass.", "type", p.Type)

	plan := params.New(p.Name)
	t := &translator{
		ctx:       ctx,
		pass:      p,
		scene:     scene,
		plan:      plan,
		main:      plan.Scope(params.BaseContext),
		rop:       ROPPath(p.Name),
		magic:     newMagicAOVs(),
		aoFlagged: make(map[string]bool),
	}

	t.main.Create(t.rop, ROPType)
	t.merges = mergeplan.Plan(p.Objects)
	t.merges.Realize(t.main)
	if p.Camera.Planned {
		t.main.Create(p.Camera.Path, "cam")
	}

	t.applyRendererSettings()
	layout := t.applyPlanes()
	t.main.Set(t.rop, "camera", p.Camera.RenderPath())
	t.applyObjectLists()
	t.applyLightList()

	t.take = plan.AddContext(p.Name, params.BaseContext)
	t.applyCamera()
	t.applyObjects()
	t.applyLights()
	t.magic.flush(t.take)

	t.main.Set(t.rop, "take", p.Name)

	res := &Result{
		Plan:   plan,
		Layout: layout,
		Merges: t.merges,
		Gaps:   multierr.Combine(p.Gaps, t.gaps),
	}
	logger.Debug("Pass translated.", "ops", len(plan.Ops()), "planes", len(layout.Planes), "gaps", len(multierr.Errors(res.Gaps)))
	return res, nil
}

// gap records a non-fatal resolution gap.
func (t *translator) gap(err error, args ...any) {
	ctxlog.FromContext(t.ctx).Warn("Skipping item.", append([]any{"reason", err}, args...)...)
	t.gaps = multierr.Append(t.gaps, err)
}

// exists reports whether a renderer node is in the scene or planned.
func (t *translator) exists(path string) bool {
	if _, ok := t.scene.Node(path); ok {
		return true
	}
	return t.plan.Created(path)
}

func (t *translator) applyRendererSettings() {
	r := t.pass.Renderer
	for _, name := range r.Keys() {
		if name == resolve.Shutter {
			continue
		}
		v, _ := r.Get(name)
		t.main.Set(t.rop, name, v)
	}
}

func (t *translator) applyPlanes() planes.Layout {
	layout := planes.Enumerate(t.pass.Planes, t.pass.Objects)
	if !layout.Computed {
		return layout
	}
	t.main.Set(t.rop, "vm_exportcomponents", layout.ExportComponents)
	t.main.Set(t.rop, "vm_numaux", len(layout.Planes))
	for _, plane := range layout.Planes {
		t.main.Set(t.rop, params.Indexed("vm_variable_plane", plane.Index), plane.Name)
		export := 0
		if plane.LightExport {
			export = 1
		}
		t.main.Set(t.rop, params.Indexed("vm_lightexport", plane.Index), export)
		for _, extra := range plane.Extra {
			t.main.Set(t.rop, params.Indexed(extra.Name, plane.Index), extra.Value)
		}
	}
	return layout
}

// applyObjectLists writes the four object-list parameters, each listing the
// object paths in that mode once.
func (t *translator) applyObjectLists() {
	t.main.Set(t.rop, "vobject", "")
	for _, mode := range resolve.Modes {
		var paths []string
		seen := make(map[string]bool)
		for _, o := range t.pass.ObjectsInMode(mode) {
			if seen[o.ObjectPath] {
				continue
			}
			seen[o.ObjectPath] = true
			paths = append(paths, o.ObjectPath)
		}
		t.main.Set(t.rop, mode, strings.Join(paths, " "))
	}
}

func (t *translator) applyLightList() {
	t.main.Set(t.rop, "alights", "")
	paths := make([]string, 0, len(t.pass.Lights))
	for _, l := range t.pass.Lights {
		paths = append(paths, l.ObjectPath)
	}
	t.main.Set(t.rop, "forcelights", strings.Join(paths, " "))
}

func (t *translator) applyCamera() {
	cam := t.pass.Camera.Path
	if v, ok := t.pass.Renderer.Get(resolve.Shutter); ok && resolve.Truthy(v) {
		t.take.Set(cam, resolve.Shutter, v)
	}
	t.take.Set(cam, "cropmask", excludeMask(t.pass.NoCropMask))
}

// excludeMask builds a "match everything except" pattern.
func excludeMask(objects []*pass.RenderObject) string {
	parts := []string{"*"}
	for _, o := range objects {
		parts = append(parts, "^"+o.ObjectPath)
	}
	return strings.Join(parts, " ")
}
