package pass

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/resolve"
	"go.uber.org/multierr"
)

// DefaultCamera is created when neither an override nor the scene supply a
// camera.
const DefaultCamera = "/obj/cam1"

// ErrNoCamera is returned when no camera can be resolved, not even the
// default one.
var ErrNoCamera = errors.New("no camera could be resolved")

// Options tune a build.
type Options struct {
	// Camera is an explicit camera override, a node path or a node name.
	Camera string
}

// Build resolves a description pass against a scene snapshot.
func Build(ctx context.Context, cfg *config.Pass, scene *config.Scene, opts Options) (*Pass, error) {
	ctx, logger := ctxlog.With(ctx, "pass", cfg.Name)
	logger.Debug("Building pass.", "type", cfg.Type, "groups", len(cfg.Groups))

	ps := resolve.ResolvePassSettings(cfg)
	p := &Pass{
		Name:     cfg.Name,
		Type:     cfg.Type,
		Renderer: ps.Renderer,
		Planes:   ps.Planes,
		Gaps:     ps.Gaps,
	}

	for _, group := range cfg.Groups {
		res := resolve.Resolve(group)
		switch group.SourceType {
		case config.SourceGeom:
			for _, member := range group.Members {
				p.Objects = append(p.Objects, newObject(cfg.Name, group, member, res, scene))
			}
		case config.SourceLight:
			light := resolve.SplitLight(res)
			p.Gaps = multierr.Append(p.Gaps, light.Gaps)
			for _, member := range group.Members {
				p.Lights = append(p.Lights, newLight(group, member, res, light))
			}
		case config.SourceCamera:
			// Camera groups only feed camera discovery through the scene.
		default:
			p.Gaps = multierr.Append(p.Gaps, fmt.Errorf("group %q: unknown source type %q", group.Name, group.SourceType))
		}
	}

	for _, o := range p.Objects {
		if o.Flags.NoShadow {
			p.NoShadow = append(p.NoShadow, o)
		}
		if o.Flags.NoReflection {
			p.NoReflection = append(p.NoReflection, o)
		}
		if o.Flags.NoRefraction {
			p.NoRefraction = append(p.NoRefraction, o)
		}
		if o.Flags.NoCropMask {
			p.NoCropMask = append(p.NoCropMask, o)
		}
	}

	cam, err := resolveCamera(ctx, scene, opts.Camera)
	if err != nil {
		return nil, fmt.Errorf("pass %q: %w", cfg.Name, err)
	}
	p.Camera = cam

	logger.Debug("Pass built.", "objects", len(p.Objects), "lights", len(p.Lights), "camera", p.Camera.Path)
	return p, nil
}

func newObject(passName string, group *config.SourceGroup, member string, res resolve.Result, scene *config.Scene) *RenderObject {
	source, sub, hasSub := splitMember(member)
	o := &RenderObject{
		Item: Item{
			Group:      group.Name,
			SourceType: group.SourceType,
			Member:     member,
			SourcePath: source,
			ObjectPath: source,
			Settings:   res.Settings.Clone(),
		},
		Mode:  res.Mode,
		Flags: res.Flags,
	}
	if hasSub {
		o.PrimGroup = primGroupPattern(sub)
		o.MergeName = mergeName(passName, group.Name, source)
		o.ObjectPath = TmpSubnet + "/" + o.MergeName
	}
	if node, ok := scene.Node(source); ok {
		o.Assets = copyAssets(node.Assets)
	}
	return o
}

func newLight(group *config.SourceGroup, member string, res resolve.Result, ls resolve.LightSettings) *Light {
	source, _, _ := splitMember(member)
	return &Light{
		Item: Item{
			Group:      group.Name,
			SourceType: group.SourceType,
			Member:     member,
			SourcePath: source,
			ObjectPath: source,
			Settings:   res.Settings.Clone(),
		},
		Light: resolve.LightSettings{
			Settings:      ls.Settings.Clone(),
			Contributions: append([]resolve.Contribution(nil), ls.Contributions...),
		},
	}
}

// resolveCamera falls back through an explicit override, the first camera
// discovered in the scene and finally a planned default camera.
func resolveCamera(ctx context.Context, scene *config.Scene, override string) (Camera, error) {
	logger := ctxlog.FromContext(ctx)

	if override != "" {
		if cam, ok := findCamera(scene, override); ok {
			return cam, nil
		}
		logger.Warn("Camera override is not a scene camera, falling back.", "camera", override)
	}

	if scene != nil {
		for _, camPath := range scene.Cameras {
			if cam, ok := findCamera(scene, camPath); ok {
				logger.Debug("Using first discovered camera.", "camera", cam.Path)
				return cam, nil
			}
		}
	}

	if node, ok := scene.Node(DefaultCamera); ok && node.Type != config.CameraType {
		return Camera{}, fmt.Errorf("%w: %s exists as %q", ErrNoCamera, DefaultCamera, node.Type)
	}
	logger.Warn("No camera in scene, planning default camera.", "camera", DefaultCamera)
	return Camera{Path: DefaultCamera, Planned: true}, nil
}

// findCamera looks a camera up by path, then by node name in discovery order.
// Nodes that are not cameras never match.
func findCamera(scene *config.Scene, ref string) (Camera, bool) {
	if scene == nil {
		return Camera{}, false
	}
	if scene.IsCamera(ref) {
		node, _ := scene.Node(ref)
		return Camera{Path: node.Path, Stereo: node.Stereo}, true
	}
	for _, camPath := range scene.Cameras {
		if path.Base(camPath) == ref {
			if node, ok := scene.Node(camPath); ok {
				return Camera{Path: node.Path, Stereo: node.Stereo}, true
			}
		}
	}
	return Camera{}, false
}
