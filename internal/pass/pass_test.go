package pass

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(buf *bytes.Buffer) context.Context {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

func value(name string, v any) *config.Attribute {
	return &config.Attribute{Name: name, Kind: config.KindValue, Value: v}
}

func mode(m string) *config.Attribute {
	return &config.Attribute{Name: "mode", Kind: config.KindEnum, Value: m}
}

func testScene() *config.Scene {
	return &config.Scene{
		Nodes: map[string]*config.SceneNode{
			"/obj/hero": {Path: "/obj/hero", Type: "geo", Assets: []*config.Asset{
				{Path: "/obj/hero/asset", MagicAOVs: []string{"skin"}},
			}},
			"/obj/set":      {Path: "/obj/set", Type: "geo"},
			"/obj/key":      {Path: "/obj/key", Type: "hlight"},
			"/obj/shotcam":  {Path: "/obj/shotcam", Type: "cam"},
			"/obj/stereo":   {Path: "/obj/stereo", Type: "cam", Stereo: true},
			"/obj/unlisted": {Path: "/obj/unlisted", Type: "cam"},
		},
		Cameras: []string{"/obj/shotcam", "/obj/stereo"},
	}
}

func testPass() *config.Pass {
	return &config.Pass{
		Name: "beauty",
		Type: config.PassBeauty,
		Settings: []*config.AttributeGroup{
			{Name: "AOVs", Attributes: []*config.Attribute{value("normals", true)}},
		},
		Groups: []*config.SourceGroup{
			{
				Name:       "chars",
				SourceType: config.SourceGeom,
				Members:    []string{"/obj/hero", "/obj/hero:body/arm_GRP"},
				Settings: &config.AttributeGroup{Name: "source_settings", Attributes: []*config.Attribute{
					mode("visible"),
					value("castShadows", false),
					value("motionBlur", 1),
				}},
			},
			{
				Name:       "env",
				SourceType: config.SourceGeom,
				Members:    []string{"/obj/set:_primGroups_floor"},
				Settings: &config.AttributeGroup{Name: "source_settings", Attributes: []*config.Attribute{
					mode("matte"),
					value("visibleInReflections", false),
					value("cropMask", false),
				}},
			},
			{
				Name:       "keys",
				SourceType: config.SourceLight,
				Members:    []string{"/obj/key"},
				Settings: &config.AttributeGroup{Name: "source_settings", Attributes: []*config.Attribute{
					value("shadow_type", "depthmap"),
					value("contributeToCoat", true),
				}},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	var buf bytes.Buffer
	p, err := Build(testContext(&buf), testPass(), testScene(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "beauty", p.Name)
	assert.Equal(t, []string{"normals"}, p.Planes)
	require.Len(t, p.Objects, 3)
	require.Len(t, p.Lights, 1)

	whole := p.Objects[0]
	assert.False(t, whole.IsMerge())
	assert.Equal(t, "/obj/hero", whole.ObjectPath)
	assert.Equal(t, resolve.ModeVisible, whole.Mode)
	require.Len(t, whole.Assets, 1)
	assert.Equal(t, []string{"skin"}, whole.Assets[0].MagicAOVs)

	sub := p.Objects[1]
	assert.True(t, sub.IsMerge())
	assert.Equal(t, "/obj/hero", sub.SourcePath)
	assert.Equal(t, "body_arm_GRP*", sub.PrimGroup)
	assert.Equal(t, "beauty_chars__obj_hero", sub.MergeName)
	assert.Equal(t, TmpSubnet+"/beauty_chars__obj_hero", sub.ObjectPath)

	env := p.Objects[2]
	assert.Equal(t, "floor", env.PrimGroup)
	assert.Equal(t, resolve.ModeMatte, env.Mode)

	assert.Equal(t, []*RenderObject{whole, sub}, p.NoShadow)
	assert.Equal(t, []*RenderObject{env}, p.NoReflection)
	assert.Equal(t, []*RenderObject{env}, p.NoCropMask)
	assert.Empty(t, p.NoRefraction)

	light := p.Lights[0]
	assert.Equal(t, map[string]any{"shadow_type": 2}, light.Light.Settings.Map())
	assert.Equal(t, []resolve.Contribution{{Name: "coat", Enabled: true}}, light.Light.Contributions)

	assert.Equal(t, Camera{Path: "/obj/shotcam"}, p.Camera)
	assert.Equal(t, []*RenderObject{whole, sub}, p.ObjectsInMode(resolve.ModeVisible))
}

func TestBuild_ItemsAreSnapshots(t *testing.T) {
	var buf bytes.Buffer
	scene := testScene()
	p, err := Build(testContext(&buf), testPass(), scene, Options{})
	require.NoError(t, err)

	p.Objects[0].Settings.Set("geo_velocityblur", 0)
	v, _ := p.Objects[1].Settings.Get("geo_velocityblur")
	assert.Equal(t, 1, v)

	scene.Nodes["/obj/hero"].Assets[0].MagicAOVs[0] = "changed"
	assert.Equal(t, "skin", p.Objects[0].Assets[0].MagicAOVs[0])
}

func TestBuild_CameraFallback(t *testing.T) {
	testCases := []struct {
		name     string
		scene    *config.Scene
		override string
		want     Camera
		logs     string
	}{
		{name: "override by path", scene: testScene(), override: "/obj/stereo", want: Camera{Path: "/obj/stereo", Stereo: true}},
		{name: "override by name", scene: testScene(), override: "stereo", want: Camera{Path: "/obj/stereo", Stereo: true}},
		{name: "override of a non-camera node falls back", scene: testScene(), override: "/obj/set", want: Camera{Path: "/obj/shotcam"}, logs: "Camera override is not a scene camera"},
		{name: "undiscovered camera node", scene: testScene(), override: "/obj/unlisted", want: Camera{Path: "/obj/unlisted"}},
		{name: "missing override falls back", scene: testScene(), override: "nope", want: Camera{Path: "/obj/shotcam"}, logs: "Camera override is not a scene camera"},
		{name: "first discovered", scene: testScene(), want: Camera{Path: "/obj/shotcam"}},
		{name: "planned default", scene: &config.Scene{}, want: Camera{Path: DefaultCamera, Planned: true}, logs: "planning default camera"},
		{name: "nil scene", scene: nil, want: Camera{Path: DefaultCamera, Planned: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			p, err := Build(testContext(&buf), &config.Pass{Name: "p"}, tc.scene, Options{Camera: tc.override})
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Camera)
			if tc.logs != "" {
				assert.Contains(t, buf.String(), tc.logs)
			}
		})
	}
}

func TestBuild_NoCamera(t *testing.T) {
	scene := &config.Scene{Nodes: map[string]*config.SceneNode{
		DefaultCamera: {Path: DefaultCamera, Type: "geo"},
	}}
	var buf bytes.Buffer
	_, err := Build(testContext(&buf), &config.Pass{Name: "p"}, scene, Options{})
	assert.ErrorIs(t, err, ErrNoCamera)
}

func TestCamera_Paths(t *testing.T) {
	mono := Camera{Path: "/obj/cam"}
	assert.Equal(t, "/obj/cam", mono.RenderPath())
	assert.Equal(t, "/obj/cam", mono.EyePath(true, false))

	rig := Camera{Path: "/obj/rig", Stereo: true}
	assert.Equal(t, "/obj/rig/left_camera", rig.RenderPath())
	assert.Equal(t, "/obj/rig/left_camera", rig.EyePath(true, false))
	assert.Equal(t, "/obj/rig/right_camera", rig.EyePath(false, true))
	assert.Equal(t, "/obj/rig", rig.EyePath(true, true))
}

func TestPrimGroupPattern(t *testing.T) {
	assert.Equal(t, "a_b", primGroupPattern("a/b"))
	assert.Equal(t, "arm_GRP*", primGroupPattern("arm_GRP"))
	assert.Equal(t, "floor", primGroupPattern("_primGroups_floor"))
}
