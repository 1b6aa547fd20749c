package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/manifest"
	"github.com/specialistvlad/passgrid/internal/objectstore"
	"github.com/specialistvlad/passgrid/internal/site"
	"gopkg.in/yaml.v3"
)

// writeArtifacts archives the scene, writes the manifest and the path
// sidecar into the submission directory and publishes both.
func (a *App) writeArtifacts(ctx context.Context, siteCfg *site.Config, res *SubmitResult) error {
	logger := ctxlog.FromContext(ctx)

	if res.Shot.ScenePath != "" {
		if err := copyFile(res.Shot.ScenePath, res.Paths.Archive); err != nil {
			return fmt.Errorf("failed to archive scene: %w", err)
		}
		logger.Debug("Scene archived.", "source", res.Shot.ScenePath, "archive", res.Paths.Archive)
	} else {
		logger.Warn("Shot has no scene path, nothing archived.")
	}

	m := manifest.FromShot(res.Shot, a.now())
	if err := m.WriteFile(res.Paths.Manifest); err != nil {
		return err
	}
	if err := WriteSidecar(res.Paths.Sidecar, res.Paths); err != nil {
		return err
	}
	logger.Debug("Manifest written.", "manifest", res.Paths.Manifest, "sidecar", res.Paths.Sidecar)

	store, err := a.objectStore(ctx, siteCfg)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	prefix := path.Join(res.Shot.Sequence, res.Shot.Shot, res.Stamp)
	uploads := []struct{ local, contentType string }{
		{res.Paths.Manifest, "application/xml"},
		{res.Paths.Sidecar, "application/yaml"},
	}
	for _, u := range uploads {
		key := path.Join(prefix, filepath.Base(u.local))
		if err := objectstore.PutFile(ctx, store, key, u.local, u.contentType); err != nil {
			return fmt.Errorf("failed to publish %s: %w", filepath.Base(u.local), err)
		}
		logger.Debug("Artifact published.", "key", key)
	}
	return nil
}

// WriteSidecar writes the resolved paths of a submission as YAML.
func WriteSidecar(filename string, paths *site.ShotPaths) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("creating sidecar directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating sidecar: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(paths); err != nil {
		f.Close()
		return fmt.Errorf("encoding sidecar: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadSidecar reads a sidecar written by WriteSidecar.
func ReadSidecar(filename string) (*site.ShotPaths, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var paths site.ShotPaths
	if err := yaml.NewDecoder(f).Decode(&paths); err != nil {
		return nil, fmt.Errorf("decoding sidecar %s: %w", filename, err)
	}
	return &paths, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
