// Package site loads the studio site configuration: farm connection and
// resource tags, command lines, per-context path formulas, the version
// database and the artifact store.
package site

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/jobgraph"
	"github.com/specialistvlad/passgrid/internal/objectstore"
)

var (
	// ErrUnknownContext is returned for a context with no path formulas.
	ErrUnknownContext = errors.New("unknown path formulas for context")
	// ErrMissingFormula is returned when a context lacks a required formula.
	ErrMissingFormula = errors.New("missing path formula")
)

// Formula names.
const (
	FormulaArchive    = "archive"
	FormulaSubmission = "submission"
	FormulaImage      = "image"
	FormulaIFD        = "ifd"
)

var requiredFormulas = []string{FormulaArchive, FormulaSubmission, FormulaImage, FormulaIFD}

// Template variables.
var (
	pathVariables    = []string{"sequence", "shot", "stamp", "layer", "version", "user"}
	commandVariables = []string{"sequence", "shot", "stamp", "user", "manifest", "archive", "sidecar", "layer", "version", "image", "ifd"}
)

// Config is the decoded site file.
type Config struct {
	MailDomain string              `toml:"mail_domain"`
	User       string              `toml:"user"`
	Farm       Farm                `toml:"farm"`
	Commands   Commands            `toml:"commands"`
	Contexts   map[string]Formulas `toml:"contexts"`
	Versions   Versions            `toml:"versions"`
	Store      Store               `toml:"store"`

	connectTimeout time.Duration
	ackTimeout     time.Duration
	formulas       map[config.ContextType]map[string]*Template
	prep           []*Template
	render         []*Template
}

// Farm configures the scheduler gateway and job resource tags.
type Farm struct {
	URL                string   `toml:"url"`
	Namespace          string   `toml:"namespace"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify"`
	ConnectTimeout     string   `toml:"connect_timeout"`
	AckTimeout         string   `toml:"ack_timeout"`
	PrepCluster        string   `toml:"prep_cluster"`
	RenderCluster      string   `toml:"render_cluster"`
	PrepRequirements   []string `toml:"prep_requirements"`
	RenderRequirements []string `toml:"render_requirements"`
}

// Commands are the farm command lines, one template per argument.
type Commands struct {
	Prep   []string `toml:"prep"`
	Render []string `toml:"render"`
}

// Formulas maps formula names to path templates.
type Formulas map[string]string

// Versions configures the version database. An empty URL keeps versions in
// process memory.
type Versions struct {
	DatabaseURL string `toml:"database_url"`
	Table       string `toml:"table"`
}

// Store selects where submission artifacts are published.
type Store struct {
	Kind  string                  `toml:"kind"`
	Root  string                  `toml:"root"`
	Minio objectstore.MinioConfig `toml:"minio"`
}

// LoadFile reads and validates a site file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site config: %w", err)
	}
	return Load(string(data))
}

// Load decodes and validates site configuration text.
func Load(data string) (*Config, error) {
	c := &Config{}
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, fmt.Errorf("decoding site config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		items := make([]string, len(undecoded))
		for i, key := range undecoded {
			items[i] = key.String()
		}
		return nil, fmt.Errorf("unknown site config items: %s", strings.Join(items, ","))
	}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) compile() error {
	var err error
	if c.connectTimeout, err = parseDuration("farm.connect_timeout", c.Farm.ConnectTimeout); err != nil {
		return err
	}
	if c.ackTimeout, err = parseDuration("farm.ack_timeout", c.Farm.AckTimeout); err != nil {
		return err
	}

	switch c.Store.Kind {
	case "", "none", "filesystem":
		if c.Store.Kind == "filesystem" && c.Store.Root == "" {
			return errors.New("store.root is required for the filesystem store")
		}
	case "minio":
		if err := c.Store.Minio.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}

	c.formulas = make(map[config.ContextType]map[string]*Template, len(c.Contexts))
	for ctxName, formulas := range c.Contexts {
		compiled := make(map[string]*Template, len(formulas))
		for name, src := range formulas {
			t, err := CompileTemplate(fmt.Sprintf("contexts.%s.%s", ctxName, name), src, pathVariables)
			if err != nil {
				return err
			}
			compiled[name] = t
		}
		c.formulas[config.ContextType(ctxName)] = compiled
	}

	if c.prep, err = compileArgs("commands.prep", c.Commands.Prep); err != nil {
		return err
	}
	if c.render, err = compileArgs("commands.render", c.Commands.Render); err != nil {
		return err
	}
	return nil
}

func compileArgs(name string, args []string) ([]*Template, error) {
	out := make([]*Template, len(args))
	for i, arg := range args {
		t, err := CompileTemplate(fmt.Sprintf("%s[%d]", name, i), arg, commandVariables)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func parseDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// ConnectTimeout is the parsed farm connect timeout; zero means default.
func (c *Config) ConnectTimeout() time.Duration { return c.connectTimeout }

// AckTimeout is the parsed submission acknowledgement timeout.
func (c *Config) AckTimeout() time.Duration { return c.ackTimeout }

// UserName returns the configured user, falling back to $USER.
func (c *Config) UserName() string {
	if c.User != "" {
		return c.User
	}
	return os.Getenv("USER")
}

// MailAddress is the notification address of the submitting user. It is
// empty when no mail domain is configured.
func (c *Config) MailAddress() string {
	user := c.UserName()
	if c.MailDomain == "" || user == "" {
		return ""
	}
	return user + "@" + c.MailDomain
}

// PrepProfile and RenderProfile carry the farm cluster and requirement tags.
func (c *Config) PrepProfile() jobgraph.Profile {
	return jobgraph.Profile{Cluster: c.Farm.PrepCluster, Requirements: c.Farm.PrepRequirements}
}

func (c *Config) RenderProfile() jobgraph.Profile {
	return jobgraph.Profile{Cluster: c.Farm.RenderCluster, Requirements: c.Farm.RenderRequirements}
}

// Formulas returns the compiled formulas of a context. Every required
// formula must be present.
func (c *Config) Formulas(ctx config.ContextType) (map[string]*Template, error) {
	formulas, ok := c.formulas[ctx]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContext, ctx)
	}
	for _, name := range requiredFormulas {
		if _, ok := formulas[name]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingFormula, ctx, name)
		}
	}
	return formulas, nil
}

// PrepCommand renders the prep command line.
func (c *Config) PrepCommand(vars map[string]string) ([]string, error) {
	return renderArgs(c.prep, vars)
}

// RenderCommand renders the per-layer render command line.
func (c *Config) RenderCommand(vars map[string]string) ([]string, error) {
	return renderArgs(c.render, vars)
}

func renderArgs(templates []*Template, vars map[string]string) ([]string, error) {
	out := make([]string, len(templates))
	for i, t := range templates {
		s, err := t.Render(vars)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
