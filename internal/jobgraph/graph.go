package jobgraph

import (
	"fmt"

	"github.com/specialistvlad/passgrid/internal/dag"
)

// SubmissionGraph is the ordered set of jobs built for one submission.
// Edges live in the dependency lists of the nodes and are mirrored in a
// dag.Graph for validation and ordering.
type SubmissionGraph struct {
	nodes     []*JobNode
	byLabel   map[string]*JobNode
	topology  *dag.Graph
	submitted bool
}

func newGraph() *SubmissionGraph {
	return &SubmissionGraph{
		byLabel:  make(map[string]*JobNode),
		topology: dag.New(),
	}
}

func (g *SubmissionGraph) add(n *JobNode) error {
	if _, ok := g.byLabel[n.Label]; ok {
		return fmt.Errorf("duplicate job label %q", n.Label)
	}
	g.nodes = append(g.nodes, n)
	g.byLabel[n.Label] = n
	g.topology.AddNode(n.Label)
	return nil
}

// dependOn makes n wait for upstream to reach event.
func (g *SubmissionGraph) dependOn(n, upstream *JobNode, event Event) error {
	if err := g.topology.AddEdge(upstream.Label, n.Label); err != nil {
		return err
	}
	n.Dependencies = append(n.Dependencies, Dependency{Job: upstream.Label, Event: event})
	return nil
}

// Len returns the number of jobs.
func (g *SubmissionGraph) Len() int { return len(g.nodes) }

// Node finds a job by label.
func (g *SubmissionGraph) Node(label string) (*JobNode, bool) {
	n, ok := g.byLabel[label]
	return n, ok
}

// Nodes returns the jobs ordered so every job follows its dependencies.
func (g *SubmissionGraph) Nodes() []*JobNode {
	order, err := g.topology.TopologicalOrder()
	if err != nil {
		// Build rejects cyclic graphs.
		return append([]*JobNode(nil), g.nodes...)
	}
	out := make([]*JobNode, len(order))
	for i, label := range order {
		out[i] = g.byLabel[label]
	}
	return out
}

// Dependents returns the labels of the jobs waiting on label.
func (g *SubmissionGraph) Dependents(label string) ([]string, error) {
	return g.topology.Dependents(label)
}

func (g *SubmissionGraph) validate() error {
	return g.topology.DetectCycles()
}
