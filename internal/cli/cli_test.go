package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/passgrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{nil, {"-h"}, {"submit"}, {"resolve", "--help"}} {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse(args, out)
		require.NoError(t, err, "args %v", args)
		assert.True(t, shouldExit, "args %v", args)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "USAGE", "args %v", args)
	}
}

func TestParse_Submit(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"--log-level", "DEBUG", "submit", "--site", "site.toml", "--dry-run", "shot.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, &app.Config{
		Command:     app.CommandSubmit,
		SitePath:    "site.toml",
		ShotPath:    "shot.hcl",
		DryRun:      true,
		LogFormat:   "text",
		LogLevel:    "debug",
		WorkerCount: app.DefaultWorkerCount,
	}, cfg)
}

func TestParse_Resolve(t *testing.T) {
	args := []string{
		"--workers", "8", "--log-format", "json", "--healthcheck-port", "9090",
		"resolve", "-m", "/dispatch/aa_0010.xml", "-d", "desc/a", "-d", "desc/b",
		"--scene", "scene", "-o", "/tmp/plans", "-l", "bg",
	}
	cfg, _, err := Parse(args, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, app.CommandResolve, cfg.Command)
	assert.Equal(t, "/dispatch/aa_0010.xml", cfg.ManifestPath)
	assert.Equal(t, "/dispatch/aa_0010.paths.yaml", cfg.SidecarPath)
	assert.Equal(t, []string{"desc/a", "desc/b"}, cfg.DescriptionPaths)
	assert.Equal(t, []string{"scene"}, cfg.ScenePaths)
	assert.Equal(t, "/tmp/plans", cfg.OutputDir)
	assert.Equal(t, []string{"bg"}, cfg.Layers)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 9090, cfg.HealthcheckPort)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"--this-is-not-a-valid-flag"}, want: "flag provided but not defined"},
		{name: "unknown command flag", args: []string{"submit", "--grid", "x"}, want: "flag provided but not defined"},
		{name: "missing site", args: []string{"submit", "shot.hcl"}, want: "SitePath"},
		{name: "bad log format", args: []string{"--log-format", "xml", "submit", "-s", "site.toml", "shot.hcl"}, want: "invalid log format"},
		{name: "resolve without scene", args: []string{"resolve", "-m", "m.xml", "-d", "desc"}, want: "scene path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
