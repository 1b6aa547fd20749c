package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/fsutil"
	"github.com/specialistvlad/passgrid/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// decodeFiles parses every .hcl file under paths and decodes each into a new
// T, calling visit in file order.
func decodeFiles[T any](paths []string, visit func(file string, root *T) error) (int, error) {
	files, err := findAllHCLFiles(paths)
	if err != nil {
		return 0, err
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return 0, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		root := new(T)
		diags = gohcl.DecodeBody(hclFile.Body, nil, root)
		if diags.HasErrors() {
			return 0, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := visit(file, root); err != nil {
			return 0, fmt.Errorf("%s: %w", file, err)
		}
	}
	return len(files), nil
}

// LoadShot reads a shot request file. The file must hold exactly one shot.
func (l *Loader) LoadShot(ctx context.Context, path string) (*config.Shot, error) {
	logger := ctxlog.FromContext(ctx)

	var shot *config.Shot
	n, err := decodeFiles(paths(path), func(file string, root *schema.ShotFile) error {
		for _, s := range root.Shots {
			if shot != nil {
				return fmt.Errorf("more than one shot block")
			}
			translated, err := translateShot(s)
			if err != nil {
				return err
			}
			shot = translated
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no HCL file found at %s", path)
	}
	if shot == nil {
		return nil, fmt.Errorf("%s: no shot block", path)
	}

	logger.Debug("Shot loaded.", "sequence", shot.Sequence, "shot", shot.Shot, "layers", len(shot.Layers))
	return shot, nil
}

// LoadDescription reads the render description. Pass names must be unique
// across all files.
func (l *Loader) LoadDescription(ctx context.Context, paths ...string) (*config.Description, error) {
	logger := ctxlog.FromContext(ctx)

	desc := &config.Description{}
	seen := make(map[string]string)
	n, err := decodeFiles(paths, func(file string, root *schema.DescriptionFile) error {
		for _, p := range root.Passes {
			if prev, ok := seen[p.Name]; ok {
				return fmt.Errorf("pass %q already defined in %s", p.Name, prev)
			}
			seen[p.Name] = file
			translated, err := translatePass(p)
			if err != nil {
				return err
			}
			desc.Passes = append(desc.Passes, translated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Description loaded.", "files", n, "passes", len(desc.Passes))
	return desc, nil
}

// LoadScene reads the renderer scene snapshot.
func (l *Loader) LoadScene(ctx context.Context, paths ...string) (*config.Scene, error) {
	logger := ctxlog.FromContext(ctx)

	scene := &config.Scene{Nodes: make(map[string]*config.SceneNode)}
	n, err := decodeFiles(paths, func(_ string, root *schema.SceneFile) error {
		return translateScene(root, scene)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Scene loaded.", "files", n, "nodes", len(scene.Nodes), "cameras", len(scene.Cameras))
	return scene, nil
}

func paths(p ...string) []string { return p }

// findAllHCLFiles returns every .hcl file under paths, each once.
func findAllHCLFiles(paths []string) ([]string, error) {
	return fsutil.CollectFiles(paths, ".hcl")
}
