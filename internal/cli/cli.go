package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/passgrid/internal/app"
	ucli "github.com/urfave/cli"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		parsed   *app.Config
		parseErr error
	)
	// finish completes a command's config with the global flags.
	finish := func(c *ucli.Context, cfg app.Config) error {
		cfg.LogFormat = strings.ToLower(c.GlobalString("log-format"))
		cfg.LogLevel = strings.ToLower(c.GlobalString("log-level"))
		cfg.HealthcheckPort = c.GlobalInt("healthcheck-port")
		cfg.WorkerCount = c.GlobalInt("workers")
		parsed, parseErr = app.NewConfig(cfg)
		return nil
	}

	cliApp := newApp(output, finish)
	if err := cliApp.Run(append([]string{cliApp.Name}, args...)); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if parseErr != nil {
		return nil, false, &ExitError{Code: 2, Message: parseErr.Error()}
	}
	if parsed == nil {
		slog.Debug("No command ran, exiting.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", parsed.Command)
	return parsed, false, nil
}

func newApp(output io.Writer, finish func(*ucli.Context, app.Config) error) *ucli.App {
	a := ucli.NewApp()
	a.Name = "passgrid"
	a.Usage = "dispatch render passes to the farm and resolve them into renderer settings"
	a.HideVersion = true
	a.Writer = output
	a.ErrWriter = output
	// Errors are mapped to exit codes by the caller, never by the library.
	a.ExitErrHandler = func(*ucli.Context, error) {}
	a.Flags = []ucli.Flag{
		ucli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "log output format: 'text' or 'json'",
		},
		ucli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "logging level: 'debug', 'info', 'warn' or 'error'",
		},
		ucli.IntFlag{
			Name:  "healthcheck-port",
			Usage: "port for the HTTP health check and metrics server, 0 is disabled",
		},
		ucli.IntFlag{
			Name:  "workers",
			Value: app.DefaultWorkerCount,
			Usage: "number of layers resolved concurrently",
		},
	}
	a.Commands = []ucli.Command{
		{
			Name:  "submit",
			Usage: "version a shot's layers, write its manifest and submit the job graph",
			Description: `
Load the site configuration and a shot file, reserve an output version for
every layer, archive the scene, write the XML manifest and the path sidecar,
and submit one preparation job plus one render job per layer.`,
			ArgsUsage: "[SHOT_FILE]",
			Flags: []ucli.Flag{
				ucli.StringFlag{
					Name:  "site, s",
					Usage: "site configuration file (TOML)",
				},
				ucli.StringFlag{
					Name:  "shot",
					Usage: "shot file (HCL), also accepted as the first argument",
				},
				ucli.BoolFlag{
					Name:  "dry-run",
					Usage: "log the jobs instead of sending them to the farm",
				},
			},
			Action: func(c *ucli.Context) error {
				shot := c.String("shot")
				if shot == "" {
					shot = c.Args().First()
				}
				if shot == "" && c.String("site") == "" {
					return ucli.ShowCommandHelp(c, "submit")
				}
				return finish(c, app.Config{
					Command:  app.CommandSubmit,
					SitePath: c.String("site"),
					ShotPath: shot,
					DryRun:   c.Bool("dry-run"),
				})
			},
		},
		{
			Name:  "resolve",
			Usage: "translate the layers of a manifest into renderer parameter plans",
			Description: `
Read a submission manifest and its path sidecar, load the render description
and the scene snapshot, and write one YAML parameter plan per layer.`,
			Flags: []ucli.Flag{
				ucli.StringFlag{
					Name:  "manifest, m",
					Usage: "submission manifest (XML)",
				},
				ucli.StringFlag{
					Name:  "paths",
					Usage: "path sidecar (YAML), defaults next to the manifest",
				},
				ucli.StringSliceFlag{
					Name:  "description, d",
					Usage: "render description file or directory (HCL), repeatable",
				},
				ucli.StringSliceFlag{
					Name:  "scene",
					Usage: "scene snapshot file or directory (HCL), repeatable",
				},
				ucli.StringFlag{
					Name:  "out, o",
					Value: "plans",
					Usage: "directory the parameter plans are written to",
				},
				ucli.StringSliceFlag{
					Name:  "layer, l",
					Usage: "only resolve this layer, repeatable",
				},
			},
			Action: func(c *ucli.Context) error {
				if c.String("manifest") == "" {
					return ucli.ShowCommandHelp(c, "resolve")
				}
				return finish(c, app.Config{
					Command:          app.CommandResolve,
					ManifestPath:     c.String("manifest"),
					SidecarPath:      c.String("paths"),
					DescriptionPaths: c.StringSlice("description"),
					ScenePaths:       c.StringSlice("scene"),
					OutputDir:        c.String("out"),
					Layers:           c.StringSlice("layer"),
				})
			},
		},
	}
	return a
}
