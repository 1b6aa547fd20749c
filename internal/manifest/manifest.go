// Package manifest reads and writes the XML submission manifest, the handoff
// between the submitting process and the renderer-side preparation job.
//
// Every value is stored as a string attribute. Booleans are written as
// "True"/"False" and parsed case-insensitively.
package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/passgrid/internal/config"
)

// FormatVersion is the manifest version this package writes.
const FormatVersion = "1"

// ErrInvalid is returned for manifests whose values cannot be decoded.
var ErrInvalid = errors.New("invalid manifest")

// ErrNoLayer is returned when a manifest has no render for a layer.
var ErrNoLayer = errors.New("layer is not in the manifest")

// Manifest is the XML document root.
type Manifest struct {
	XMLName    xml.Name   `xml:"submission"`
	Version    string     `xml:"version,attr"`
	Date       string     `xml:"date,attr"`
	Shot       Shot       `xml:"shot"`
	Resolution Resolution `xml:"resolution"`
	Output     Output     `xml:"output"`
	ScenePath  string     `xml:"scenepath"`
	RLCFile    string     `xml:"rlcfile"`
	ShotOpts   string     `xml:"shotopts"`
	Renders    []Render   `xml:"renders>render"`
}

type Shot struct {
	Sequence string `xml:"sequence,attr"`
	Shot     string `xml:"shot,attr"`
}

type Resolution struct {
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Aspect string `xml:"aspect,attr"`
}

type Output struct {
	Format string `xml:"format,attr"`
}

// Render is one layer.
type Render struct {
	Layer    string `xml:"layer,attr"`
	Right    string `xml:"right,attr"`
	Left     string `xml:"left,attr"`
	Proc     string `xml:"proc,attr"`
	Priority string `xml:"priority,attr"`
	Range    string `xml:"range,attr"`
	Up       string `xml:"up,attr"`
	Camera   string `xml:"camera,attr"`

	Type         string `xml:"type,attr,omitempty"`
	Cluster      string `xml:"cluster,attr,omitempty"`
	Distribution string `xml:"distribution,attr,omitempty"`
}

// FromShot builds the manifest of a submission.
func FromShot(shot *config.Shot, date time.Time) *Manifest {
	m := &Manifest{
		Version: FormatVersion,
		Date:    date.UTC().Format(time.RFC3339),
		Shot:    Shot{Sequence: shot.Sequence, Shot: shot.Shot},
		Resolution: Resolution{
			Width:  strconv.Itoa(shot.Resolution.Width),
			Height: strconv.Itoa(shot.Resolution.Height),
			Aspect: strconv.FormatFloat(shot.Resolution.Aspect, 'f', -1, 64),
		},
		Output:    Output{Format: shot.OutputFormat},
		ScenePath: shot.ScenePath,
		RLCFile:   shot.RLCFile,
		ShotOpts:  shot.ShotOpts,
	}
	for _, l := range shot.Layers {
		m.Renders = append(m.Renders, Render{
			Layer:        l.Layer,
			Right:        formatBool(l.RenderRightEye),
			Left:         formatBool(l.RenderLeftEye),
			Proc:         strconv.Itoa(l.CPUs),
			Priority:     strconv.Itoa(l.Priority),
			Range:        l.FrameRange,
			Up:           formatBool(l.VersionUp),
			Camera:       l.Camera,
			Type:         string(l.PassType),
			Cluster:      l.Cluster,
			Distribution: string(l.Distribution),
		})
	}
	return m
}

// Layers decodes the render entries back into layer configurations.
func (m *Manifest) Layers() ([]*config.Layer, error) {
	layers := make([]*config.Layer, 0, len(m.Renders))
	for i, r := range m.Renders {
		l, err := r.layer()
		if err != nil {
			return nil, fmt.Errorf("%w: render %d (%s): %v", ErrInvalid, i, r.Layer, err)
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// Layer finds a layer by name. A name without a render entry yields
// ErrNoLayer.
func (m *Manifest) Layer(name string) (*config.Layer, error) {
	for _, r := range m.Renders {
		if r.Layer == name {
			l, err := r.layer()
			if err != nil {
				return nil, fmt.Errorf("%w: render %s: %v", ErrInvalid, name, err)
			}
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoLayer, name)
}

func (r Render) layer() (*config.Layer, error) {
	var err error
	l := &config.Layer{
		Layer:        r.Layer,
		PassType:     config.PassType(r.Type),
		FrameRange:   r.Range,
		Camera:       r.Camera,
		Cluster:      r.Cluster,
		Distribution: config.Distribution(r.Distribution),
	}
	if l.RenderRightEye, err = parseBool("right", r.Right); err != nil {
		return nil, err
	}
	if l.RenderLeftEye, err = parseBool("left", r.Left); err != nil {
		return nil, err
	}
	if l.VersionUp, err = parseBool("up", r.Up); err != nil {
		return nil, err
	}
	if l.CPUs, err = parseInt("proc", r.Proc); err != nil {
		return nil, err
	}
	if l.Priority, err = parseInt("priority", r.Priority); err != nil {
		return nil, err
	}
	return l, nil
}

// ShotResolution decodes the resolution element.
func (m *Manifest) ShotResolution() (config.Resolution, error) {
	var (
		res config.Resolution
		err error
	)
	if res.Width, err = parseInt("width", m.Resolution.Width); err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if res.Height, err = parseInt("height", m.Resolution.Height); err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if m.Resolution.Aspect != "" {
		if res.Aspect, err = strconv.ParseFloat(m.Resolution.Aspect, 64); err != nil {
			return res, fmt.Errorf("%w: aspect %q", ErrInvalid, m.Resolution.Aspect)
		}
	}
	return res, nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(name, s string) (bool, error) {
	switch {
	case strings.EqualFold(s, "true"), s == "1":
		return true, nil
	case strings.EqualFold(s, "false"), s == "0", s == "":
		return false, nil
	}
	return false, fmt.Errorf("%s: not a boolean: %q", name, s)
}

func parseInt(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer: %q", name, s)
	}
	return n, nil
}

// Write encodes the manifest as indented XML.
func (m *Manifest) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes the manifest to path, creating its directory.
func (m *Manifest) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Parse decodes a manifest.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &m, nil
}

// ReadFile parses the manifest at path.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
