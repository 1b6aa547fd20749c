// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"fmt"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/schema"
)

func translateShot(s *schema.Shot) (*config.Shot, error) {
	shot := &config.Shot{
		Sequence:     s.Sequence,
		Shot:         s.Shot,
		Context:      config.ContextType(s.Context),
		OutputFormat: s.OutputFormat,
		ScenePath:    s.ScenePath,
		RLCFile:      s.RLCFile,
		ShotOpts:     s.ShotOpts,
		Notes:        s.Notes,
		AfterJob:     s.AfterJob,
		Priority:     s.Priority,
		CPUs:         s.CPUs,
		PerLayerJobs: s.PerLayerJobs,
	}
	if shot.Context == "" {
		shot.Context = config.ContextShot
	}
	if s.Resolution != nil {
		shot.Resolution = config.Resolution{Width: s.Resolution.Width, Height: s.Resolution.Height, Aspect: s.Resolution.Aspect}
		if shot.Resolution.Aspect == 0 {
			shot.Resolution.Aspect = 1
		}
	}

	var err error
	if shot.Distribution, err = distribution(s.Distribution); err != nil {
		return nil, fmt.Errorf("shot %s/%s: %w", s.Sequence, s.Shot, err)
	}

	seen := make(map[string]bool, len(s.Layers))
	for _, l := range s.Layers {
		if seen[l.Name] {
			return nil, fmt.Errorf("shot %s/%s: duplicate layer %q", s.Sequence, s.Shot, l.Name)
		}
		seen[l.Name] = true

		layer := &config.Layer{
			Layer:          l.Name,
			PassType:       config.PassType(l.PassType),
			FrameRange:     l.FrameRange,
			RenderLeftEye:  l.LeftEye,
			RenderRightEye: l.RightEye,
			VersionUp:      l.VersionUp,
			Camera:         l.Camera,
			Priority:       l.Priority,
			CPUs:           l.CPUs,
			Cluster:        l.Cluster,
		}
		if layer.Distribution, err = distribution(l.Distribution); err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		shot.Layers = append(shot.Layers, layer)
	}
	return shot, nil
}

func distribution(s string) (config.Distribution, error) {
	switch d := config.Distribution(s); d {
	case "", config.DistributeSingle, config.DistributePerFrame:
		return d, nil
	default:
		return "", fmt.Errorf("unknown distribution %q", s)
	}
}

func translatePass(p *schema.Pass) (*config.Pass, error) {
	out := &config.Pass{Name: p.Name, Type: config.PassType(p.Type)}

	for _, g := range p.Settings {
		attrs, err := translateSettings(g.Settings)
		if err != nil {
			return nil, fmt.Errorf("pass %q, settings %q: %w", p.Name, g.Name, err)
		}
		out.Settings = append(out.Settings, &config.AttributeGroup{Name: g.Name, Attributes: attrs})
	}

	for _, g := range p.Groups {
		group := &config.SourceGroup{
			Name:       g.Name,
			SourceType: config.SourceType(g.SourceType),
			Members:    g.Members,
			AOVs:       g.AOVs,
		}
		switch group.SourceType {
		case config.SourceGeom, config.SourceLight, config.SourceCamera:
		default:
			return nil, fmt.Errorf("pass %q, group %q: unknown source type %q", p.Name, g.Name, g.SourceType)
		}
		if g.SourceSettings != nil {
			attrs, err := translateSettings(g.SourceSettings.Settings)
			if err != nil {
				return nil, fmt.Errorf("pass %q, group %q: %w", p.Name, g.Name, err)
			}
			group.Settings = &config.AttributeGroup{Name: "source_settings", Attributes: attrs}
		}
		out.Groups = append(out.Groups, group)
	}
	return out, nil
}

func translateSettings(settings []*schema.Setting) ([]*config.Attribute, error) {
	out := make([]*config.Attribute, 0, len(settings))
	for _, s := range settings {
		attr := &config.Attribute{
			Name:   s.Name,
			Kind:   config.KindValue,
			Locked: s.Locked,
		}
		switch s.Kind {
		case "", string(config.KindValue):
		case string(config.KindEnum):
			attr.Kind = config.KindEnum
		default:
			return nil, fmt.Errorf("setting %q: unknown kind %q", s.Name, s.Kind)
		}

		if len(s.Settings) > 0 {
			members, err := translateSettings(s.Settings)
			if err != nil {
				return nil, fmt.Errorf("setting %q: %w", s.Name, err)
			}
			attr.Members = members
		} else {
			v, err := exprValue(s.Value)
			if err != nil {
				return nil, fmt.Errorf("setting %q: %w", s.Name, err)
			}
			attr.Value = v
		}
		out = append(out, attr)
	}
	return out, nil
}

func translateScene(f *schema.SceneFile, scene *config.Scene) error {
	for _, n := range f.Nodes {
		if _, ok := scene.Nodes[n.Path]; ok {
			return fmt.Errorf("node %q defined twice", n.Path)
		}
		node := &config.SceneNode{
			Path:        n.Path,
			Type:        n.Type,
			RenderNode:  n.RenderNode,
			Input:       n.Input,
			PrimAttribs: n.PrimAttribs,
			RenderFlag:  n.RenderFlag,
		}
		for _, a := range n.Assets {
			asset := &config.Asset{Path: a.Path, MagicAOVs: a.MagicAOVs}
			for _, aov := range a.ShaderAOVs {
				asset.ShaderAOVs = append(asset.ShaderAOVs, config.ShaderAOV{Name: aov.Name, StorageType: aov.StorageType})
			}
			node.Assets = append(node.Assets, asset)
		}
		scene.Nodes[n.Path] = node
	}

	for _, c := range f.Cameras {
		if _, ok := scene.Nodes[c.Path]; ok {
			return fmt.Errorf("camera %q defined twice", c.Path)
		}
		camType := c.Type
		if camType == "" {
			camType = config.CameraType
		}
		scene.Nodes[c.Path] = &config.SceneNode{Path: c.Path, Type: camType, Stereo: c.Stereo}
		scene.Cameras = append(scene.Cameras, c.Path)
	}
	return nil
}
