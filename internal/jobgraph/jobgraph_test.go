package jobgraph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/passgrid/internal/config"
	"github.com/specialistvlad/passgrid/internal/framerange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShot(perLayer bool, layers ...string) *config.Shot {
	shot := &config.Shot{
		Sequence:     "aa",
		Shot:         "0010",
		Priority:     4000,
		CPUs:         2,
		PerLayerJobs: perLayer,
	}
	for i, name := range layers {
		shot.Layers = append(shot.Layers, &config.Layer{
			Layer:      name,
			PassType:   config.PassBeauty,
			FrameRange: "101-110",
			Priority:   3000 + i,
			CPUs:       8,
		})
	}
	return shot
}

func TestBuild_GraphShape(t *testing.T) {
	shot := testShot(true, "bg", "char", "fx")

	g, err := Build(context.Background(), BuildRequest{Shot: shot})
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())

	prep, ok := g.Node("IFD_Creation_aa_0010")
	require.True(t, ok)
	assert.Empty(t, prep.Dependencies)

	dependents, err := g.Dependents(prep.Label)
	require.NoError(t, err)
	assert.Equal(t, []string{"Render_bg", "Render_char", "Render_fx"}, dependents)

	for _, label := range dependents {
		n, ok := g.Node(label)
		require.True(t, ok)
		assert.Equal(t, []Dependency{{Job: prep.Label, Event: EventComplete}}, n.Dependencies)
		assert.Equal(t, KindRender, n.Kind)
	}

	nodes := g.Nodes()
	assert.Equal(t, prep, nodes[0])
}

func TestBuild_PrepOnly(t *testing.T) {
	g, err := Build(context.Background(), BuildRequest{Shot: testShot(false, "bg", "char")})
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestBuild_Profiles(t *testing.T) {
	shot := testShot(true, "bg")
	shot.Layers[0].Cluster = "/fx"
	shot.AfterJob = "1234"

	g, err := Build(context.Background(), BuildRequest{
		Shot:          shot,
		PrepProfile:   Profile{Cluster: "/prep"},
		RenderProfile: Profile{Cluster: "/render", Requirements: []string{"host.gpu=0"}},
		MailAddress:   "artist@example.com",
	})
	require.NoError(t, err)

	prep, _ := g.Node("IFD_Creation_aa_0010")
	want := Profile{Priority: 4000, CPUs: 2, Cluster: "/prep", Requirements: []string{PrepRequirement}}
	if diff := cmp.Diff(want, prep.Profile); diff != "" {
		t.Errorf("prep profile mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Dependency{{ExternalID: "1234", Event: EventComplete}}, prep.Dependencies)

	render, _ := g.Node("Render_bg")
	want = Profile{Priority: 3000, CPUs: 8, Cluster: "/fx", Requirements: []string{"host.gpu=0"}}
	if diff := cmp.Diff(want, render.Profile); diff != "" {
		t.Errorf("render profile mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "artist@example.com", render.MailAddress)
}

func TestBuild_MailCallbacks(t *testing.T) {
	g, err := Build(context.Background(), BuildRequest{Shot: testShot(true, "bg")})
	require.NoError(t, err)

	want := []Callback{
		{Trigger: EventFail, Language: MailLanguage},
		{Trigger: EventComplete, Language: MailLanguage},
	}
	for _, n := range g.Nodes() {
		assert.Equal(t, want, n.Callbacks, n.Label)
	}
}

func TestBuild_Commands(t *testing.T) {
	g, err := Build(context.Background(), BuildRequest{
		Shot:        testShot(true, "bg"),
		PrepCommand: []string{"hbatch", "prep.py"},
		RenderCommand: func(layer *config.Layer) []string {
			return []string{"mantra", "-f", layer.Layer + ".ifd"}
		},
	})
	require.NoError(t, err)

	prep, _ := g.Node("IFD_Creation_aa_0010")
	assert.Equal(t, []string{"hbatch", "prep.py"}, prep.Command)
	render, _ := g.Node("Render_bg")
	assert.Equal(t, []string{"mantra", "-f", "bg.ifd"}, render.Command)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(context.Background(), BuildRequest{})
	assert.Error(t, err)

	shot := testShot(true, "bg")
	shot.Layers[0].FrameRange = "10-1"
	_, err = Build(context.Background(), BuildRequest{Shot: shot})
	assert.ErrorIs(t, err, framerange.ErrMalformedRange)

	shot = testShot(true, "bg", "bg")
	_, err = Build(context.Background(), BuildRequest{Shot: shot})
	assert.ErrorContains(t, err, "duplicate job label")
}

func TestAgenda(t *testing.T) {
	rng, err := framerange.Parse("101-103,110-120x5")
	require.NoError(t, err)

	tests := []struct {
		name         string
		distribution config.Distribution
		want         []Task
	}{
		{
			name:         "single",
			distribution: config.DistributeSingle,
			want:         []Task{{Name: "101-103", Frames: "101-103"}, {Name: "110-120x5", Frames: "110-120x5"}},
		},
		{
			name:         "default is single",
			distribution: "",
			want:         []Task{{Name: "101-103", Frames: "101-103"}, {Name: "110-120x5", Frames: "110-120x5"}},
		},
		{
			name:         "per frame",
			distribution: config.DistributePerFrame,
			want: []Task{
				{Name: "101", Frames: "101"}, {Name: "102", Frames: "102"}, {Name: "103", Frames: "103"},
				{Name: "110", Frames: "110"}, {Name: "115", Frames: "115"}, {Name: "120", Frames: "120"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Agenda(rng, tc.distribution)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err = Agenda(rng, "chunked")
	assert.ErrorContains(t, err, "unknown distribution")
}

func TestBuild_LayerDistributionFallsBackToShot(t *testing.T) {
	shot := testShot(true, "bg", "char")
	shot.Distribution = config.DistributePerFrame
	shot.Layers[1].Distribution = config.DistributeSingle

	g, err := Build(context.Background(), BuildRequest{Shot: shot})
	require.NoError(t, err)

	bg, _ := g.Node("Render_bg")
	assert.Len(t, bg.Agenda, 10)
	char, _ := g.Node("Render_char")
	assert.Equal(t, []Task{{Name: "101-110", Frames: "101-110"}}, char.Agenda)
}

type fakeSubmitter struct {
	calls int
	got   []*JobNode
	ids   []string
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, jobs []*JobNode) ([]string, error) {
	f.calls++
	f.got = jobs
	if f.err != nil {
		return nil, f.err
	}
	if f.ids != nil {
		return f.ids, nil
	}
	ids := make([]string, len(jobs))
	for i := range jobs {
		ids[i] = fmt.Sprint(100 + i)
	}
	return ids, nil
}

func TestSubmit(t *testing.T) {
	t.Run("all jobs in one call", func(t *testing.T) {
		g, err := Build(context.Background(), BuildRequest{Shot: testShot(true, "bg", "char")})
		require.NoError(t, err)

		s := &fakeSubmitter{}
		ids, err := Submit(context.Background(), g, s)
		require.NoError(t, err)

		assert.Equal(t, 1, s.calls)
		assert.Len(t, s.got, 3)
		assert.Equal(t, map[string]string{
			"IFD_Creation_aa_0010": "100",
			"Render_bg":            "101",
			"Render_char":          "102",
		}, ids)
		prep, _ := g.Node("IFD_Creation_aa_0010")
		assert.Equal(t, "100", prep.ID)
	})

	t.Run("at most once", func(t *testing.T) {
		g, err := Build(context.Background(), BuildRequest{Shot: testShot(false)})
		require.NoError(t, err)

		s := &fakeSubmitter{}
		_, err = Submit(context.Background(), g, s)
		require.NoError(t, err)
		_, err = Submit(context.Background(), g, s)
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
		assert.Equal(t, 1, s.calls)
	})

	t.Run("partial", func(t *testing.T) {
		g, err := Build(context.Background(), BuildRequest{Shot: testShot(true, "bg", "char")})
		require.NoError(t, err)

		ids, err := Submit(context.Background(), g, &fakeSubmitter{ids: []string{"7"}})
		assert.ErrorIs(t, err, ErrPartialSubmit)
		assert.Equal(t, map[string]string{"IFD_Creation_aa_0010": "7"}, ids)
	})

	t.Run("scheduler error", func(t *testing.T) {
		g, err := Build(context.Background(), BuildRequest{Shot: testShot(false)})
		require.NoError(t, err)

		boom := errors.New("scheduler offline")
		_, err = Submit(context.Background(), g, &fakeSubmitter{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}
