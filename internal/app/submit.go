package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/farm"
	"github.com/specialistvlad/passgrid/internal/framerange"
	"github.com/specialistvlad/passgrid/internal/jobgraph"
	"github.com/specialistvlad/passgrid/internal/objectstore"
	"github.com/specialistvlad/passgrid/internal/site"
	"github.com/specialistvlad/passgrid/internal/versions"
)

// stampLayout formats the submission stamp exposed to path formulas.
const stampLayout = "20060102T150405Z"

// ErrNoFarmURL is returned when a submission would go to the farm but the site
// names no farm gateway.
var ErrNoFarmURL = errors.New("farm.url is required unless running a dry run")

// SubmitResult is the outcome of a submission.
type SubmitResult struct {
	Shot     *config.Shot
	Stamp    string
	Versions map[string]versions.Version
	Paths    *site.ShotPaths
	Graph    *jobgraph.SubmissionGraph
	// IDs maps job labels to scheduler ids.
	IDs map[string]string
	// Warning is set when the scheduler accepted only part of the graph.
	Warning error
}

// Submit versions the shot's layers, writes and publishes the manifest and
// path sidecar, builds the job graph and submits it in one call.
func (a *App) Submit(ctx context.Context) (*SubmitResult, error) {
	siteCfg, err := site.LoadFile(a.config.SitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}
	shot, err := a.loader.LoadShot(ctx, a.config.ShotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load shot: %w", err)
	}
	ctx, logger := ctxlog.With(ctx, "sequence", shot.Sequence, "shot", shot.Shot)
	logger.Info("Submitting shot.", "layers", len(shot.Layers), "context", shot.Context)

	// Configuration errors stop the submission before anything is written
	// or reserved.
	if _, err := siteCfg.Formulas(shot.Context); err != nil {
		return nil, err
	}
	if err := validateLayers(shot); err != nil {
		return nil, err
	}
	if a.submitter == nil && !a.config.DryRun && siteCfg.Farm.URL == "" {
		return nil, ErrNoFarmURL
	}

	res := &SubmitResult{Shot: shot, Stamp: a.now().UTC().Format(stampLayout)}

	store, closeStore, err := a.versionStore(ctx, siteCfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	if res.Versions, err = reserveVersions(ctx, store, shot); err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(res.Versions))
	for name, v := range res.Versions {
		labels[name] = v.Label()
	}
	if res.Paths, err = siteCfg.ResolvePaths(shot, labels, res.Stamp); err != nil {
		return nil, err
	}

	req, err := buildRequest(siteCfg, res)
	if err != nil {
		return nil, err
	}
	if res.Graph, err = jobgraph.Build(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to build job graph: %w", err)
	}

	if err := a.writeArtifacts(ctx, siteCfg, res); err != nil {
		return nil, err
	}

	submitter, closeSubmitter, err := a.farmSubmitter(ctx, siteCfg)
	if err != nil {
		return nil, err
	}
	defer closeSubmitter()

	res.IDs, err = jobgraph.Submit(ctx, res.Graph, submitter)
	switch {
	case errors.Is(err, jobgraph.ErrPartialSubmit):
		a.metrics.submitFailures.Inc()
		res.Warning = err
		logger.Warn("Submission was only partially accepted.", "error", err)
	case err != nil:
		a.metrics.submitFailures.Inc()
		return nil, err
	}
	a.metrics.jobsSubmitted.Add(float64(len(res.IDs)))

	checkCounts(ctx, res)
	writeSubmitReport(a.outW, res)
	logger.Info("Shot submitted.", "jobs", len(res.IDs), "manifest", res.Paths.Manifest)
	return res, nil
}

// validateLayers rejects malformed frame ranges before anything is
// reserved, whether or not render jobs are built.
func validateLayers(shot *config.Shot) error {
	for _, l := range shot.Layers {
		if _, err := framerange.Parse(l.FrameRange); err != nil {
			return fmt.Errorf("layer %q: %w", l.Layer, err)
		}
	}
	return nil
}

// reserveVersions reserves one output version per layer. The store
// serializes reservations per output.
func reserveVersions(ctx context.Context, store versions.Store, shot *config.Shot) (map[string]versions.Version, error) {
	logger := ctxlog.FromContext(ctx)
	out := make(map[string]versions.Version, len(shot.Layers))
	for _, l := range shot.Layers {
		key := versions.OutputKey{Sequence: shot.Sequence, Shot: shot.Shot, Layer: l.Layer}
		v, err := store.Reserve(ctx, key, l.VersionUp, shot.Notes)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve version for layer %q: %w", l.Layer, err)
		}
		logger.Debug("Version reserved.", "layer", l.Layer, "version", v.Label(), "up", l.VersionUp)
		out[l.Layer] = v
	}
	return out, nil
}

func buildRequest(siteCfg *site.Config, res *SubmitResult) (jobgraph.BuildRequest, error) {
	shot := res.Shot
	vars := map[string]string{
		"sequence": shot.Sequence,
		"shot":     shot.Shot,
		"stamp":    res.Stamp,
		"user":     siteCfg.UserName(),
		"manifest": res.Paths.Manifest,
		"archive":  res.Paths.Archive,
		"sidecar":  res.Paths.Sidecar,
		"layer":    "",
		"version":  "",
		"image":    "",
		"ifd":      "",
	}

	prep, err := siteCfg.PrepCommand(vars)
	if err != nil {
		return jobgraph.BuildRequest{}, fmt.Errorf("prep command: %w", err)
	}

	render := make(map[string][]string, len(shot.Layers))
	for _, lp := range res.Paths.Layers {
		vars["layer"] = lp.Layer
		vars["version"] = lp.Version
		vars["image"] = lp.Image
		vars["ifd"] = lp.IFD
		cmd, err := siteCfg.RenderCommand(vars)
		if err != nil {
			return jobgraph.BuildRequest{}, fmt.Errorf("render command for layer %q: %w", lp.Layer, err)
		}
		render[lp.Layer] = cmd
	}

	return jobgraph.BuildRequest{
		Shot:          shot,
		PrepCommand:   prep,
		RenderCommand: func(l *config.Layer) []string { return render[l.Layer] },
		PrepProfile:   siteCfg.PrepProfile(),
		RenderProfile: siteCfg.RenderProfile(),
		MailAddress:   siteCfg.MailAddress(),
	}, nil
}

func (a *App) versionStore(ctx context.Context, siteCfg *site.Config) (versions.Store, func(), error) {
	if a.versions != nil {
		return a.versions, func() {}, nil
	}
	if siteCfg.Versions.DatabaseURL == "" {
		ctxlog.FromContext(ctx).Warn("No version database configured, versions are kept in memory.")
		return versions.NewMemory(), func() {}, nil
	}
	db, err := versions.Open(ctx, siteCfg.Versions.DatabaseURL, siteCfg.Versions.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open version database: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

func (a *App) objectStore(ctx context.Context, siteCfg *site.Config) (objectstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	switch siteCfg.Store.Kind {
	case "filesystem":
		return objectstore.Filesystem{Root: siteCfg.Store.Root}, nil
	case "minio":
		m, err := objectstore.NewMinio(ctx, siteCfg.Store.Minio)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to object store: %w", err)
		}
		return m, nil
	}
	return nil, nil
}

func (a *App) farmSubmitter(ctx context.Context, siteCfg *site.Config) (jobgraph.Submitter, func(), error) {
	if a.submitter != nil {
		return a.submitter, func() {}, nil
	}
	if a.config.DryRun {
		return farm.NewDryRun(), func() {}, nil
	}
	s, err := farm.Dial(ctx, farm.Options{
		URL:                siteCfg.Farm.URL,
		Namespace:          siteCfg.Farm.Namespace,
		InsecureSkipVerify: siteCfg.Farm.InsecureSkipVerify,
		ConnectTimeout:     siteCfg.ConnectTimeout(),
		AckTimeout:         siteCfg.AckTimeout(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to farm: %w", err)
	}
	return s, func() { _ = s.Close() }, nil
}
