package farm

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/jobgraph"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Gateway events.
const (
	SubmitEvent    = "submit"
	SubmittedEvent = "submitted"
)

const (
	defaultConnectTimeout = 15 * time.Second
	defaultAckTimeout     = 30 * time.Second
)

// ErrRejected is returned when the gateway acknowledges a submission with an
// error.
var ErrRejected = errors.New("farm rejected submission")

// Options configure the socket.io submitter.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
	AckTimeout         time.Duration
}

// channel is the part of a socket.io client the submitter needs.
type channel interface {
	emit(event string, payload any)
	once(event string, fn func(args ...any))
	close()
}

type socketChannel struct {
	io *socket.Socket
}

func (c socketChannel) emit(event string, payload any) {
	c.io.Emit(event, payload)
}

func (c socketChannel) once(event string, fn func(args ...any)) {
	c.io.Once(types.EventName(event), func(args ...any) { fn(args...) })
}

func (c socketChannel) close() {
	c.io.Disconnect()
}

// SocketIO submits job graphs to the farm gateway.
type SocketIO struct {
	ch         channel
	ackTimeout time.Duration
}

// Dial connects to the farm gateway.
func Dial(ctx context.Context, opts Options) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("submitter", "socketio", "url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse farm URL: %w", err)
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		report(connected, nil)
	})
	io.Once(types.EventName("connect_error"), func(args ...any) {
		report(connected, connectError(args))
	})

	logger.Debug("Connecting to farm gateway.")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for farm connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for farm connection", connectTimeout)
	}

	logger.Info("Connected to farm gateway.", "sid", io.Id())
	return newSocketIO(socketChannel{io: io}, opts.AckTimeout), nil
}

// report delivers the first connection outcome. Later ones are dropped.
func report(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// connectError turns the arguments of a connect_error event into an error.
func connectError(args []any) error {
	if len(args) == 0 {
		return errors.New("connection refused by gateway")
	}
	if err, ok := args[0].(error); ok && err != nil {
		return err
	}
	return fmt.Errorf("%v", args[0])
}

func newSocketIO(ch channel, ackTimeout time.Duration) *SocketIO {
	if ackTimeout <= 0 {
		ackTimeout = defaultAckTimeout
	}
	return &SocketIO{ch: ch, ackTimeout: ackTimeout}
}

// Close disconnects from the gateway.
func (s *SocketIO) Close() error {
	s.ch.close()
	return nil
}

type ack struct {
	ids []string
	err error
}

// Submit implements jobgraph.Submitter. The whole job list is sent as one
// "submit" event and the gateway answers with one "submitted" event carrying
// the ids in job order.
func (s *SocketIO) Submit(ctx context.Context, jobs []*jobgraph.JobNode) ([]string, error) {
	logger := ctxlog.FromContext(ctx).With("submitter", "socketio")

	payload, err := encodeJobs(jobs)
	if err != nil {
		return nil, err
	}

	done := make(chan ack, 1)
	s.ch.once(SubmittedEvent, func(args ...any) {
		if len(args) == 0 {
			done <- ack{err: errors.New("empty acknowledgement")}
			return
		}
		ids, err := decodeAck(args[0])
		done <- ack{ids: ids, err: err}
	})

	logger.Debug("Emitting submission.", "event", SubmitEvent, "jobs", len(jobs))
	s.ch.emit(SubmitEvent, payload)

	opCtx, cancel := context.WithTimeout(ctx, s.ackTimeout)
	defer cancel()

	select {
	case <-opCtx.Done():
		return nil, fmt.Errorf("timed out after %v waiting for event '%s'", s.ackTimeout, SubmittedEvent)
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Info("Submission acknowledged.", "ids", len(res.ids))
		return res.ids, nil
	}
}

// encodeJobs turns the job list into the generic JSON shape the socket.io
// client serializes.
func encodeJobs(jobs []*jobgraph.JobNode) (map[string]any, error) {
	raw, err := json.Marshal(jobs)
	if err != nil {
		return nil, fmt.Errorf("encoding jobs: %w", err)
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("encoding jobs: %w", err)
	}
	return map[string]any{"jobs": list}, nil
}

func decodeAck(data any) ([]string, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected acknowledgement %T", data)
	}
	if msg, ok := m["error"].(string); ok && msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	rawIDs, ok := m["ids"].([]any)
	if !ok {
		return nil, errors.New("acknowledgement has no ids")
	}
	ids := make([]string, 0, len(rawIDs))
	for _, v := range rawIDs {
		switch id := v.(type) {
		case string:
			ids = append(ids, id)
		case float64:
			ids = append(ids, fmt.Sprintf("%.0f", id))
		default:
			return nil, fmt.Errorf("unexpected job id %T", v)
		}
	}
	return ids, nil
}
