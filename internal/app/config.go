package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Command selects the flow Run executes.
type Command string

const (
	// CommandSubmit versions the layers of a shot, writes the manifest and
	// submits the job graph to the farm.
	CommandSubmit Command = "submit"
	// CommandResolve runs on the farm: it translates every manifest layer
	// into a renderer parameter plan.
	CommandResolve Command = "resolve"
)

// DefaultWorkerCount bounds concurrent pass translation when unset.
const DefaultWorkerCount = 4

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command Command

	// submit
	SitePath string // toml file
	ShotPath string // hcl file
	DryRun   bool

	// resolve
	ManifestPath     string
	SidecarPath      string   // defaults next to the manifest
	DescriptionPaths []string // hcl files or directories
	ScenePaths       []string // hcl files or directories
	OutputDir        string
	Layers           []string // empty means every manifest layer

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int
}

func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandSubmit:
		if cfg.SitePath == "" {
			return nil, errors.New("SitePath is a required configuration field and cannot be empty")
		}
		if cfg.ShotPath == "" {
			return nil, errors.New("ShotPath is a required configuration field and cannot be empty")
		}
	case CommandResolve:
		if cfg.ManifestPath == "" {
			return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
		}
		if len(cfg.DescriptionPaths) == 0 {
			return nil, errors.New("at least one description path is required")
		}
		if len(cfg.ScenePaths) == 0 {
			return nil, errors.New("at least one scene path is required")
		}
		if cfg.OutputDir == "" {
			return nil, errors.New("OutputDir is a required configuration field and cannot be empty")
		}
		if cfg.SidecarPath == "" {
			cfg.SidecarPath = SidecarPathFor(cfg.ManifestPath)
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("invalid worker count %d", cfg.WorkerCount)
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	return &cfg, nil
}

// SidecarPathFor is the path sidecar written next to a manifest.
func SidecarPathFor(manifestPath string) string {
	return strings.TrimSuffix(manifestPath, filepath.Ext(manifestPath)) + ".paths.yaml"
}
