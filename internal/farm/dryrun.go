package farm

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/jobgraph"
)

// DryRun accepts every submission and assigns random job ids.
type DryRun struct {
	mu          sync.Mutex
	submissions [][]*jobgraph.JobNode
}

// NewDryRun returns an empty DryRun submitter.
func NewDryRun() *DryRun {
	return &DryRun{}
}

// Submit implements jobgraph.Submitter.
func (d *DryRun) Submit(ctx context.Context, jobs []*jobgraph.JobNode) ([]string, error) {
	logger := ctxlog.FromContext(ctx).With("submitter", "dry-run")

	ids := make([]string, len(jobs))
	for i, job := range jobs {
		ids[i] = uuid.NewString()
		logger.Info("Would submit job.", "label", job.Label, "id", ids[i], "tasks", len(job.Agenda))
	}

	d.mu.Lock()
	d.submissions = append(d.submissions, jobs)
	d.mu.Unlock()
	return ids, nil
}

// Submissions returns every job list submitted so far.
func (d *DryRun) Submissions() [][]*jobgraph.JobNode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]*jobgraph.JobNode(nil), d.submissions...)
}
