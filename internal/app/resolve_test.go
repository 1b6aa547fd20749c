package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/passgrid/internal/manifest"
	"github.com/specialistvlad/passgrid/internal/params"
	"github.com/specialistvlad/passgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// submitted runs a dry-run submission of the example shot and returns its
// root directory and manifest path.
func submitted(t *testing.T) (string, string) {
	t.Helper()
	root := testutil.ShotFixture(t)
	a, _ := newTestApp(t, submitConfig(root))
	res, err := a.Submit(context.Background())
	require.NoError(t, err)
	return root, res.Paths.Manifest
}

func resolveConfig(root, manifestPath string) Config {
	return Config{
		Command:          CommandResolve,
		ManifestPath:     manifestPath,
		DescriptionPaths: []string{filepath.Join(root, "description")},
		ScenePaths:       []string{filepath.Join(root, "scene")},
		OutputDir:        filepath.Join(root, "plans"),
		WorkerCount:      2,
	}
}

func TestResolve(t *testing.T) {
	root, manifestPath := submitted(t)
	a, logs := newTestApp(t, resolveConfig(root, manifestPath))

	results, err := a.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "bg", results[0].Layer.Layer)
	assert.Equal(t, "hero_shadow", results[1].Layer.Layer)

	sidecar, err := ReadSidecar(SidecarPathFor(manifestPath))
	require.NoError(t, err)

	t.Run("camera", func(t *testing.T) {
		bg := results[0].Result.Plan
		v, _ := bg.Value("bg", "/out/bg", "camera")
		assert.Equal(t, "/obj/shotcam/left_camera", v)
		v, _ = bg.Value("bg", "/obj/shotcam", "custom_resx")
		assert.Equal(t, 2048, v)
		v, _ = bg.Value("bg", "/obj/shotcam", "custom_resy")
		assert.Equal(t, 858, v)

		// Neither eye selected renders through the rig itself.
		shadow := results[1].Result.Plan
		v, _ = shadow.Value("hero_shadow", "/out/hero_shadow", "camera")
		assert.Equal(t, "/obj/shotcam", v)
	})

	t.Run("frames", func(t *testing.T) {
		plan := results[0].Result.Plan
		typ, ok := plan.CreatedType(DispatchPath("bg"))
		require.True(t, ok)
		assert.Equal(t, DispatchType, typ)
		v, _ := plan.Value("bg", DispatchPath("bg"), "arbitrary_frames")
		assert.Equal(t, "101-105,110", v)

		// Stepped ranges are spelled out frame by frame.
		v, _ = results[1].Result.Plan.Value("hero_shadow", DispatchPath("hero_shadow"), "arbitrary_frames")
		assert.Equal(t, "101,105,109", v)
	})

	t.Run("output paths", func(t *testing.T) {
		plan := results[0].Result.Plan
		want, _ := sidecar.Layer("bg")
		v, _ := plan.Value("bg", "/out/bg", "vm_picture")
		assert.Equal(t, want.Image, v)
		v, _ = plan.Value("bg", "/out/bg", "soho_diskfile")
		assert.Equal(t, want.IFD, v)
	})

	t.Run("output directories", func(t *testing.T) {
		for _, lp := range sidecar.Layers {
			for _, dir := range []string{filepath.Dir(lp.Image), filepath.Dir(lp.IFD)} {
				assert.DirExists(t, dir)
				for _, src := range []string{sidecar.Archive, manifestPath} {
					link := filepath.Join(dir, filepath.Base(src))
					target, err := os.Readlink(link)
					require.NoError(t, err, link)
					assert.Equal(t, src, target)
				}
			}
		}
	})

	t.Run("gaps", func(t *testing.T) {
		assert.Empty(t, multierr.Errors(results[0].Result.Gaps))
		assert.NotEmpty(t, multierr.Errors(results[1].Result.Gaps))
		assert.Contains(t, logs.String(), "Layer resolved with gaps.")
		assert.Equal(t, 2.0, promtestutil.ToFloat64(a.metrics.passesTranslated))
		assert.GreaterOrEqual(t, promtestutil.ToFloat64(a.metrics.resolutionGaps), 1.0)
	})

	t.Run("plan files", func(t *testing.T) {
		for _, r := range results {
			f, err := os.Open(r.PlanPath)
			require.NoError(t, err)
			plan, err := params.ReadYAML(f)
			f.Close()
			require.NoError(t, err)
			assert.Equal(t, r.Pass.Name, plan.Pass)
			assert.Len(t, plan.Ops(), len(r.Result.Plan.Ops()))
		}
		assert.Contains(t, logs.String(), filepath.Join(root, "plans", "bg.yaml"))
	})
}

func TestResolve_SelectedLayers(t *testing.T) {
	root, manifestPath := submitted(t)

	cfg := resolveConfig(root, manifestPath)
	cfg.Layers = []string{"hero_shadow"}
	a, _ := newTestApp(t, cfg)
	results, err := a.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hero_shadow", results[0].Pass.Name)
	assert.NoFileExists(t, filepath.Join(root, "plans", "bg.yaml"))

	cfg.Layers = []string{"hero_shadow", "bg"}
	a, _ = newTestApp(t, cfg)
	results, err = a.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "hero_shadow", results[0].Layer.Layer)
	assert.Equal(t, "bg", results[1].Layer.Layer)

	cfg.Layers = []string{"fg"}
	a, _ = newTestApp(t, cfg)
	_, err = a.Resolve(context.Background())
	assert.ErrorIs(t, err, manifest.ErrNoLayer)
	assert.ErrorContains(t, err, `"fg"`)
}

func TestResolve_WithoutSidecar(t *testing.T) {
	root, manifestPath := submitted(t)
	require.NoError(t, os.Remove(SidecarPathFor(manifestPath)))

	a, logs := newTestApp(t, resolveConfig(root, manifestPath))
	results, err := a.Resolve(context.Background())
	require.NoError(t, err)

	_, ok := results[0].Result.Plan.Value("bg", "/out/bg", "vm_picture")
	assert.False(t, ok)
	assert.NoDirExists(t, filepath.Join(root, "render"))
	assert.Contains(t, logs.String(), "No path sidecar found")
}

func TestResolve_UnknownPass(t *testing.T) {
	root, manifestPath := submitted(t)
	testutil.WriteFiles(t, root, map[string]string{
		"only_bg/passes.hcl": `pass "bg" { type = "beauty" }`,
	})

	cfg := resolveConfig(root, manifestPath)
	cfg.DescriptionPaths = []string{filepath.Join(root, "only_bg")}
	a, _ := newTestApp(t, cfg)

	_, err := a.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrUnknownPass)
	assert.ErrorContains(t, err, `layer "hero_shadow"`)
}

func TestResolve_BadManifest(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"m.xml": "<submission>"})

	a, _ := newTestApp(t, resolveConfig(root, filepath.Join(root, "m.xml")))
	_, err := a.Resolve(context.Background())
	assert.ErrorContains(t, err, "failed to read manifest")
}
