package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, ids []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		g.AddNode(id)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.Zero(t, g.Len())

	g.AddNode("prep")
	g.AddNode("prep")
	g.AddNode("render_bg")

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"prep", "render_bg"}, g.Nodes())
	assert.Equal(t, 1, g.nodes["render_bg"].seq)
}

func TestAddEdge(t *testing.T) {
	t.Run("links both directions", func(t *testing.T) {
		g := newGraph(t, []string{"prep", "render_bg"}, [][2]string{{"prep", "render_bg"}})

		assert.Len(t, g.nodes["render_bg"].deps, 1)
		assert.Contains(t, g.nodes["render_bg"].deps, "prep")

		dependents, err := g.Dependents("prep")
		require.NoError(t, err)
		assert.Equal(t, []string{"render_bg"}, dependents)
	})

	t.Run("rejects bad edges", func(t *testing.T) {
		g := newGraph(t, []string{"prep", "render_bg"}, nil)

		assert.ErrorContains(t, g.AddEdge("missing", "prep"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("prep", "missing"), "destination node not found")
		assert.ErrorContains(t, g.AddEdge("prep", "prep"), "self-referential edge")
	})

	t.Run("unknown node lookups fail", func(t *testing.T) {
		g := New()
		_, err := g.Dependents("missing")
		assert.ErrorContains(t, err, "node not found")
	})
}

func TestDependentsFollowInsertionOrder(t *testing.T) {
	ids := []string{"prep", "render_fg", "render_bg", "render_char", "render_env"}
	g := New()
	for _, id := range ids {
		g.AddNode(id)
	}
	for i := len(ids) - 1; i > 0; i-- {
		require.NoError(t, g.AddEdge("prep", ids[i]))
	}

	dependents, err := g.Dependents("prep")
	require.NoError(t, err)
	assert.Equal(t, ids[1:], dependents)
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		edges   [][2]string
		wantErr bool
	}{
		{name: "empty graph"},
		{name: "isolated nodes", ids: []string{"a", "b", "c"}},
		{
			name:  "fan out with transitive edge",
			ids:   []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"c", "d"}},
		},
		{
			name:    "direct cycle",
			ids:     []string{"a", "b"},
			edges:   [][2]string{{"a", "b"}, {"b", "a"}},
			wantErr: true,
		},
		{
			name:    "long cycle",
			ids:     []string{"a", "b", "c", "d"},
			edges:   [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			wantErr: true,
		},
		{
			name:    "cycle in a disjoint component",
			ids:     []string{"a", "b", "x", "y", "z"},
			edges:   [][2]string{{"a", "b"}, {"x", "y"}, {"y", "z"}, {"z", "y"}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGraph(t, tc.ids, tc.edges)
			err := g.DetectCycles()
			if tc.wantErr {
				assert.ErrorContains(t, err, "cycle detected")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTopologicalOrder(t *testing.T) {
	t.Run("dependencies come first", func(t *testing.T) {
		g := newGraph(t,
			[]string{"render_a", "render_b", "prep", "mail"},
			[][2]string{{"prep", "render_a"}, {"prep", "render_b"}, {"render_a", "mail"}, {"render_b", "mail"}},
		)

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"prep", "render_a", "render_b", "mail"}, order)
	})

	t.Run("independent nodes keep insertion order", func(t *testing.T) {
		g := newGraph(t, []string{"c", "a", "b"}, nil)
		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, order)
	})

	t.Run("cycle is an error", func(t *testing.T) {
		g := newGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
		_, err := g.TopologicalOrder()
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("repeated calls agree", func(t *testing.T) {
		g := newGraph(t,
			[]string{"prep", "r1", "r2", "r3"},
			[][2]string{{"prep", "r3"}, {"prep", "r1"}, {"prep", "r2"}},
		)
		first, err := g.TopologicalOrder()
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := g.TopologicalOrder()
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})
}
