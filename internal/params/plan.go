// Package params records renderer mutations as data. A Plan is an ordered
// list of node creations, parameter assignments, flag changes and
// connections, each tagged with the configuration context it applies in.
// Applying a plan to a live renderer is the caller's business.
package params

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// BaseContext is the configuration context every pass context derives from.
const BaseContext = "Main"

// OpKind identifies a plan operation.
type OpKind string

const (
	OpContext OpKind = "context"
	OpCreate  OpKind = "create"
	OpSet     OpKind = "set"
	OpFlag    OpKind = "flag"
	OpConnect OpKind = "connect"
)

// Node flags.
const (
	FlagRender  = "render"
	FlagDisplay = "display"
	FlagHidden  = "hidden"
)

// Op is one recorded mutation.
type Op struct {
	Kind    OpKind `yaml:"op"`
	Context string `yaml:"context"`
	Node    string `yaml:"node"`
	// Type is the node type of a create, or the parent of a context.
	Type string `yaml:"type,omitempty"`
	// CopyOf names the node a create duplicates the settings of.
	CopyOf string `yaml:"copy_of,omitempty"`
	// Parm is the parameter of a set, or the flag name of a flag.
	Parm  string `yaml:"parm,omitempty"`
	Value any    `yaml:"value,omitempty"`
	// Input and Source describe a connection.
	Input  int    `yaml:"input,omitempty"`
	Source string `yaml:"source,omitempty"`
}

// Plan is the parameter set produced for one pass.
type Plan struct {
	Pass     string
	ops      []Op
	created  map[string]string
	contexts []string
}

// New returns an empty plan for the named pass.
func New(pass string) *Plan {
	return &Plan{Pass: pass, created: make(map[string]string)}
}

// AddContext records the creation of a configuration context derived from
// parent. Adding an existing context is a no-op.
func (p *Plan) AddContext(name, parent string) Scope {
	for _, c := range p.contexts {
		if c == name {
			return Scope{plan: p, context: name}
		}
	}
	p.contexts = append(p.contexts, name)
	p.ops = append(p.ops, Op{Kind: OpContext, Context: parent, Node: name, Type: parent})
	return Scope{plan: p, context: name}
}

// Scope returns a writer recording into the given context.
func (p *Plan) Scope(context string) Scope {
	return Scope{plan: p, context: context}
}

// Ops returns a copy of the recorded operations.
func (p *Plan) Ops() []Op {
	return append([]Op(nil), p.ops...)
}

// Contexts returns the contexts added to the plan, in creation order.
func (p *Plan) Contexts() []string {
	return append([]string(nil), p.contexts...)
}

// Created reports whether the plan creates a node at path.
func (p *Plan) Created(path string) bool {
	_, ok := p.created[path]
	return ok
}

// CreatedType returns the type of a node the plan creates.
func (p *Plan) CreatedType(path string) (string, bool) {
	t, ok := p.created[path]
	return t, ok
}

// Value returns the last value assigned to node/parm in context.
func (p *Plan) Value(context, node, parm string) (any, bool) {
	for i := len(p.ops) - 1; i >= 0; i-- {
		op := p.ops[i]
		if op.Kind == OpSet && op.Context == context && op.Node == node && op.Parm == parm {
			return op.Value, true
		}
	}
	return nil, false
}

// Assignments returns the final parameter values of a node in a context.
func (p *Plan) Assignments(context, node string) map[string]any {
	out := make(map[string]any)
	for _, op := range p.ops {
		if op.Kind == OpSet && op.Context == context && op.Node == node {
			out[op.Parm] = op.Value
		}
	}
	return out
}

func (p *Plan) record(op Op) {
	p.ops = append(p.ops, op)
}

type document struct {
	Pass     string   `yaml:"pass"`
	Contexts []string `yaml:"contexts,omitempty"`
	Ops      []Op     `yaml:"ops"`
}

// WriteYAML writes the plan as a YAML document.
func (p *Plan) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Pass: p.Pass, Contexts: p.contexts, Ops: p.ops}); err != nil {
		return fmt.Errorf("failed to encode plan for pass %q: %w", p.Pass, err)
	}
	return enc.Close()
}

// ReadYAML decodes a plan written by WriteYAML.
func ReadYAML(r io.Reader) (*Plan, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	p := New(doc.Pass)
	p.contexts = doc.Contexts
	for _, op := range doc.Ops {
		if op.Kind == OpCreate {
			p.created[op.Node] = op.Type
		}
		p.record(op)
	}
	return p, nil
}

// Scope records operations into one configuration context.
type Scope struct {
	plan    *Plan
	context string
}

// Context returns the scope's configuration context.
func (s Scope) Context() string {
	return s.context
}

// Plan returns the plan the scope records into.
func (s Scope) Plan() *Plan {
	return s.plan
}

// Create records a node creation. Creating a node the plan already creates
// is a no-op and reports false.
func (s Scope) Create(path, nodeType string) bool {
	return s.CreateCopy(path, nodeType, "")
}

// CreateCopy records a node creation that duplicates copyOf's settings.
func (s Scope) CreateCopy(path, nodeType, copyOf string) bool {
	if s.plan.Created(path) {
		return false
	}
	s.plan.created[path] = nodeType
	s.plan.record(Op{Kind: OpCreate, Context: s.context, Node: path, Type: nodeType, CopyOf: copyOf})
	return true
}

// Set records a parameter assignment.
func (s Scope) Set(node, parm string, value any) {
	s.plan.record(Op{Kind: OpSet, Context: s.context, Node: node, Parm: parm, Value: value})
}

// Flag records a node flag change.
func (s Scope) Flag(node, flag string, on bool) {
	s.plan.record(Op{Kind: OpFlag, Context: s.context, Node: node, Parm: flag, Value: on})
}

// Connect records wiring source into node's input.
func (s Scope) Connect(node string, input int, source string) {
	s.plan.record(Op{Kind: OpConnect, Context: s.context, Node: node, Input: input, Source: source})
}
