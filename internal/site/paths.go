package site

import (
	"path"
	"strings"

	"github.com/specialistvlad/passgrid/internal/config"
)

// LayerPaths are the output locations of one layer version.
type LayerPaths struct {
	Layer   string `yaml:"layer"`
	Version string `yaml:"version"`
	Image   string `yaml:"image"`
	IFD     string `yaml:"ifd"`
}

// ShotPaths are the locations of one submission.
type ShotPaths struct {
	Archive    string       `yaml:"archive"`
	Submission string       `yaml:"submission"`
	Manifest   string       `yaml:"manifest"`
	Sidecar    string       `yaml:"sidecar"`
	Layers     []LayerPaths `yaml:"layers"`
}

// Layer finds a layer's paths.
func (p *ShotPaths) Layer(name string) (LayerPaths, bool) {
	for _, l := range p.Layers {
		if l.Layer == name {
			return l, true
		}
	}
	return LayerPaths{}, false
}

// ResolvePaths evaluates the shot's formulas. versions maps layer names to
// version labels. stamp identifies the submission; the archive and
// submission formulas see it with empty layer and version.
func (c *Config) ResolvePaths(shot *config.Shot, versions map[string]string, stamp string) (*ShotPaths, error) {
	formulas, err := c.Formulas(shot.Context)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{
		"sequence": shot.Sequence,
		"shot":     shot.Shot,
		"user":     c.UserName(),
		"stamp":    stamp,
		"layer":    "",
		"version":  "",
	}

	out := &ShotPaths{}
	if out.Archive, err = formulas[FormulaArchive].Render(vars); err != nil {
		return nil, err
	}
	if out.Submission, err = formulas[FormulaSubmission].Render(vars); err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(path.Base(out.Archive), path.Ext(out.Archive))
	out.Manifest = path.Join(out.Submission, base+".xml")
	out.Sidecar = path.Join(out.Submission, base+".paths.yaml")

	for _, l := range shot.Layers {
		vars["layer"] = l.Layer
		vars["version"] = versions[l.Layer]
		lp := LayerPaths{Layer: l.Layer, Version: versions[l.Layer]}
		if lp.Image, err = formulas[FormulaImage].Render(vars); err != nil {
			return nil, err
		}
		if lp.IFD, err = formulas[FormulaIFD].Render(vars); err != nil {
			return nil, err
		}
		out.Layers = append(out.Layers, lp)
	}
	return out, nil
}
