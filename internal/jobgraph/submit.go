package jobgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/passgrid/internal/ctxlog"
)

var (
	// ErrPartialSubmit is returned when the scheduler reports fewer job ids
	// than jobs were submitted. It is reported, never retried.
	ErrPartialSubmit = errors.New("submission partially failed")
	// ErrAlreadySubmitted guards against submitting one graph twice.
	ErrAlreadySubmitted = errors.New("graph already submitted")
)

// Submitter hands a complete, dependency-ordered job list to the farm in one
// call and returns the scheduler ids in the same order.
type Submitter interface {
	Submit(ctx context.Context, jobs []*JobNode) ([]string, error)
}

// Submit sends the whole graph to the submitter once and returns the job
// ids keyed by label. Ids are also stored on the nodes.
func Submit(ctx context.Context, g *SubmissionGraph, s Submitter) (map[string]string, error) {
	if g.submitted {
		return nil, ErrAlreadySubmitted
	}
	logger := ctxlog.FromContext(ctx)

	jobs := g.Nodes()
	g.submitted = true
	ids, err := s.Submit(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("submitting %d jobs: %w", len(jobs), err)
	}

	out := make(map[string]string, len(ids))
	for i, id := range ids {
		if i >= len(jobs) {
			break
		}
		jobs[i].ID = id
		out[jobs[i].Label] = id
	}

	if len(ids) != len(jobs) {
		logger.Warn("Scheduler returned an unexpected number of job ids.", "jobs", len(jobs), "ids", len(ids))
		return out, fmt.Errorf("%w: %d jobs, %d ids", ErrPartialSubmit, len(jobs), len(ids))
	}

	logger.Info("Jobs submitted.", "count", len(out))
	return out, nil
}
