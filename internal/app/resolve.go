package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/manifest"
	"github.com/specialistvlad/passgrid/internal/pass"
	"github.com/specialistvlad/passgrid/internal/site"
	"github.com/specialistvlad/passgrid/internal/translate"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownPass is returned for a manifest layer the render description
// does not define.
var ErrUnknownPass = errors.New("layer has no pass in the render description")

// LayerResult is the translated plan of one manifest layer.
type LayerResult struct {
	Layer    *config.Layer
	Pass     *pass.Pass
	Result   *translate.Result
	PlanPath string
}

// Resolve translates the manifest's layers into parameter plans, one YAML
// file per layer in the output directory. Layers are independent and are
// processed concurrently.
func (a *App) Resolve(ctx context.Context) ([]*LayerResult, error) {
	logger := ctxlog.FromContext(ctx)

	m, err := manifest.ReadFile(a.config.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	resolution, err := m.ShotResolution()
	if err != nil {
		return nil, err
	}
	layers, err := selectLayers(m, a.config.Layers)
	if err != nil {
		return nil, err
	}
	ctx, logger = ctxlog.With(ctx, "sequence", m.Shot.Sequence, "shot", m.Shot.Shot)

	paths, err := ReadSidecar(a.config.SidecarPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("No path sidecar found, output paths are left untouched.", "sidecar", a.config.SidecarPath)
		paths = nil
	case err != nil:
		return nil, err
	}

	desc, err := a.loader.LoadDescription(ctx, a.config.DescriptionPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load render description: %w", err)
	}
	scene, err := a.loader.LoadScene(ctx, a.config.ScenePaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	if err := os.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Resolving layers.", "layers", len(layers), "workers", a.config.WorkerCount)
	results := make([]*LayerResult, len(layers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	for i, layer := range layers {
		g.Go(func() error {
			r, err := a.resolveLayer(gctx, desc, scene, layer, resolution, paths)
			if err != nil {
				return fmt.Errorf("layer %q: %w", layer.Layer, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	writeResolveReport(a.outW, results)
	logger.Info("Layers resolved.", "layers", len(results))
	return results, nil
}

func (a *App) resolveLayer(ctx context.Context, desc *config.Description, scene *config.Scene, layer *config.Layer, resolution config.Resolution, paths *site.ShotPaths) (*LayerResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, logger := ctxlog.With(ctx, "layer", layer.Layer)

	cfgPass, ok := desc.Pass(layer.Layer)
	if !ok {
		return nil, ErrUnknownPass
	}
	if layer.PassType != "" && layer.PassType != cfgPass.Type {
		logger.Warn("Layer pass type differs from the render description.", "layer_type", layer.PassType, "pass_type", cfgPass.Type)
	}

	p, err := pass.Build(ctx, cfgPass, scene, pass.Options{Camera: layer.Camera})
	if err != nil {
		return nil, err
	}
	res, err := translate.Translate(ctx, p, scene)
	if err != nil {
		return nil, err
	}

	var lp *site.LayerPaths
	if paths != nil {
		if found, ok := paths.Layer(layer.Layer); ok {
			lp = &found
		} else {
			logger.Warn("Layer missing from the path sidecar.")
		}
	}
	if err := applyDirectives(res.Plan, p, layer, resolution, lp); err != nil {
		return nil, err
	}
	if lp != nil {
		if err := prepareOutputs(lp, paths.Archive, a.absManifestPath()); err != nil {
			return nil, err
		}
	}

	planPath := filepath.Join(a.config.OutputDir, p.Name+".yaml")
	if err := writePlan(planPath, res); err != nil {
		return nil, err
	}

	gaps := len(multierr.Errors(res.Gaps))
	a.metrics.passesTranslated.Inc()
	a.metrics.resolutionGaps.Add(float64(gaps))
	if gaps > 0 {
		logger.Warn("Layer resolved with gaps.", "gaps", gaps, "error", res.Gaps)
	}
	logger.Debug("Plan written.", "plan", planPath, "ops", len(res.Plan.Ops()))
	return &LayerResult{Layer: layer, Pass: p, Result: res, PlanPath: planPath}, nil
}

// selectLayers returns the named layers in the order given. No names keeps
// every manifest layer in manifest order.
func selectLayers(m *manifest.Manifest, names []string) ([]*config.Layer, error) {
	if len(names) == 0 {
		return m.Layers()
	}
	out := make([]*config.Layer, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		l, err := m.Layer(n)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// absManifestPath is the manifest path as a link target.
func (a *App) absManifestPath() string {
	if p, err := filepath.Abs(a.config.ManifestPath); err == nil {
		return p
	}
	return a.config.ManifestPath
}

func writePlan(filename string, res *translate.Result) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating plan: %w", err)
	}
	if err := res.Plan.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
