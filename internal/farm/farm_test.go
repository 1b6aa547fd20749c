package farm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/passgrid/internal/jobgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ jobgraph.Submitter = (*DryRun)(nil)
var _ jobgraph.Submitter = (*SocketIO)(nil)

// fakeGateway answers every emit with the reply produced by respond.
type fakeGateway struct {
	mu       sync.Mutex
	handlers map[string]func(args ...any)
	emitted  []any
	respond  func(payload any) (any, bool)
	closed   bool
}

func newFakeGateway(respond func(payload any) (any, bool)) *fakeGateway {
	return &fakeGateway{handlers: make(map[string]func(args ...any)), respond: respond}
}

func (f *fakeGateway) emit(event string, payload any) {
	f.mu.Lock()
	f.emitted = append(f.emitted, payload)
	handler := f.handlers[SubmittedEvent]
	delete(f.handlers, SubmittedEvent)
	f.mu.Unlock()

	reply, ok := f.respond(payload)
	if ok && handler != nil {
		go handler(reply)
	}
}

func (f *fakeGateway) once(event string, fn func(args ...any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = fn
}

func (f *fakeGateway) close() { f.closed = true }

func testJobs() []*jobgraph.JobNode {
	return []*jobgraph.JobNode{
		{Label: "IFD_Creation_aa_0010", Kind: jobgraph.KindProcess},
		{Label: "Render_bg", Kind: jobgraph.KindRender, Dependencies: []jobgraph.Dependency{
			{Job: "IFD_Creation_aa_0010", Event: jobgraph.EventComplete},
		}},
	}
}

func TestSocketIO_Submit(t *testing.T) {
	gw := newFakeGateway(func(payload any) (any, bool) {
		jobs := payload.(map[string]any)["jobs"].([]any)
		ids := make([]any, len(jobs))
		for i := range jobs {
			ids[i] = float64(500 + i)
		}
		return map[string]any{"ids": ids}, true
	})
	s := newSocketIO(gw, time.Second)

	ids, err := s.Submit(context.Background(), testJobs())
	require.NoError(t, err)
	assert.Equal(t, []string{"500", "501"}, ids)

	require.Len(t, gw.emitted, 1)
	jobs := gw.emitted[0].(map[string]any)["jobs"].([]any)
	first := jobs[0].(map[string]any)
	assert.Equal(t, "IFD_Creation_aa_0010", first["label"])
	second := jobs[1].(map[string]any)
	deps := second["dependencies"].([]any)
	assert.Equal(t, "complete", deps[0].(map[string]any)["event"])

	require.NoError(t, s.Close())
	assert.True(t, gw.closed)
}

func TestSocketIO_Rejected(t *testing.T) {
	gw := newFakeGateway(func(any) (any, bool) {
		return map[string]any{"error": "cluster /fx is closed"}, true
	})
	_, err := newSocketIO(gw, time.Second).Submit(context.Background(), testJobs())
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorContains(t, err, "cluster /fx is closed")
}

func TestSocketIO_Timeout(t *testing.T) {
	gw := newFakeGateway(func(any) (any, bool) { return nil, false })
	_, err := newSocketIO(gw, 20*time.Millisecond).Submit(context.Background(), testJobs())
	assert.ErrorContains(t, err, "timed out")
}

func TestDecodeAck(t *testing.T) {
	ids, err := decodeAck(map[string]any{"ids": []any{"a", float64(12)}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "12"}, ids)

	_, err = decodeAck("nope")
	assert.Error(t, err)
	_, err = decodeAck(map[string]any{})
	assert.ErrorContains(t, err, "no ids")
	_, err = decodeAck(map[string]any{"ids": []any{true}})
	assert.Error(t, err)
}

func TestConnectError(t *testing.T) {
	refused := errors.New("refused")
	assert.Equal(t, refused, connectError([]any{refused}))
	assert.EqualError(t, connectError([]any{"unauthorized"}), "unauthorized")
	assert.Error(t, connectError(nil))
}

func TestReport_FirstOutcomeWins(t *testing.T) {
	ch := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		report(ch, nil)
		report(ch, errors.New("late"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second report blocked")
	}
	assert.NoError(t, <-ch)
}

func TestDryRun(t *testing.T) {
	d := NewDryRun()
	jobs := testJobs()

	ids, err := d.Submit(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, [][]*jobgraph.JobNode{jobs}, d.Submissions())
}
