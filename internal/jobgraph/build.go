package jobgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/framerange"
)

// BuildRequest carries everything needed to build a submission graph.
type BuildRequest struct {
	Shot *config.Shot

	// PrepCommand runs the scene preparation for every layer.
	PrepCommand []string
	// RenderCommand returns the render invocation for one layer.
	RenderCommand func(layer *config.Layer) []string

	// PrepProfile and RenderProfile supply cluster and requirement tags.
	// Priority and CPUs come from the shot and the layers.
	PrepProfile   Profile
	RenderProfile Profile

	MailAddress string
}

// PrepLabel is the label of the preparation job of a shot.
func PrepLabel(shot *config.Shot) string {
	return fmt.Sprintf("IFD_Creation_%s_%s", shot.Sequence, shot.Shot)
}

// RenderLabel is the label of the render job of a layer.
func RenderLabel(layer *config.Layer) string {
	return "Render_" + layer.Layer
}

// Build constructs the submission graph. It always creates exactly one
// preparation job. When the shot enables per-layer jobs, every layer adds a
// render job that depends on the preparation job completing.
func Build(ctx context.Context, req BuildRequest) (*SubmissionGraph, error) {
	if req.Shot == nil {
		return nil, errors.New("build request has no shot")
	}
	shot := req.Shot
	_, logger := ctxlog.With(ctx, "sequence", shot.Sequence, "shot", shot.Shot)

	g := newGraph()

	prep := &JobNode{
		Label:       PrepLabel(shot),
		Kind:        KindProcess,
		Command:     req.PrepCommand,
		Profile:     profile(req.PrepProfile, shot.Priority, shot.CPUs, "", PrepRequirement),
		MailAddress: req.MailAddress,
	}
	if shot.AfterJob != "" {
		prep.Dependencies = append(prep.Dependencies, Dependency{ExternalID: shot.AfterJob, Event: EventComplete})
	}
	prep.addMailCallbacks()
	if err := g.add(prep); err != nil {
		return nil, err
	}

	if shot.PerLayerJobs {
		for _, layer := range shot.Layers {
			job, err := renderJob(shot, layer, req)
			if err != nil {
				return nil, fmt.Errorf("layer %q: %w", layer.Layer, err)
			}
			if err := g.add(job); err != nil {
				return nil, err
			}
			if err := g.dependOn(job, prep, EventComplete); err != nil {
				return nil, err
			}
		}
	}

	if err := g.validate(); err != nil {
		return nil, err
	}

	logger.Debug("Submission graph built.", "jobs", g.Len(), "per_layer", shot.PerLayerJobs)
	return g, nil
}

func renderJob(shot *config.Shot, layer *config.Layer, req BuildRequest) (*JobNode, error) {
	rng, err := framerange.Parse(layer.FrameRange)
	if err != nil {
		return nil, err
	}

	distribution := layer.Distribution
	if distribution == "" {
		distribution = shot.Distribution
	}
	agenda, err := Agenda(rng, distribution)
	if err != nil {
		return nil, err
	}

	var command []string
	if req.RenderCommand != nil {
		command = req.RenderCommand(layer)
	}

	job := &JobNode{
		Label:       RenderLabel(layer),
		Kind:        KindRender,
		Command:     command,
		Profile:     profile(req.RenderProfile, layer.Priority, layer.CPUs, layer.Cluster, RenderRequirement),
		MailAddress: req.MailAddress,
		Agenda:      agenda,
	}
	job.addMailCallbacks()
	return job, nil
}

func profile(base Profile, priority, cpus int, cluster, requirement string) Profile {
	p := Profile{
		Priority:     priority,
		CPUs:         cpus,
		Cluster:      base.Cluster,
		AllowLocal:   false,
		Requirements: append([]string(nil), base.Requirements...),
	}
	if cluster != "" {
		p.Cluster = cluster
	}
	if len(p.Requirements) == 0 {
		p.Requirements = []string{requirement}
	}
	return p
}
