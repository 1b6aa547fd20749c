package app

import (
	"context"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/specialistvlad/passgrid/internal/ctxlog"
	"github.com/specialistvlad/passgrid/internal/jobgraph"
	"github.com/specialistvlad/passgrid/internal/translate"
	"go.uber.org/multierr"
)

// writeSubmitReport renders one row per submitted job.
func writeSubmitReport(w io.Writer, res *SubmitResult) {
	versionByLabel := make(map[string]string, len(res.Shot.Layers))
	for _, l := range res.Shot.Layers {
		if v, ok := res.Versions[l.Layer]; ok {
			versionByLabel[jobgraph.RenderLabel(l)] = v.Label()
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Job", "Kind", "Tasks", "Version", "Job ID"})
	for _, job := range res.Graph.Nodes() {
		tasks := "-"
		if len(job.Agenda) > 0 {
			tasks = strconv.Itoa(len(job.Agenda))
		}
		version := versionByLabel[job.Label]
		if version == "" {
			version = "-"
		}
		id := res.IDs[job.Label]
		if id == "" {
			id = "MISSING"
		}
		table.Append([]string{job.Label, string(job.Kind), tasks, version, id})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(res.Graph.Len()), "", "", strconv.Itoa(len(res.IDs))})
	table.Render()
}

// checkCounts warns when the reserved versions and the render job ids do
// not pair up one to one. Render jobs are the jobs waiting on the
// preparation job.
func checkCounts(ctx context.Context, res *SubmitResult) {
	if !res.Shot.PerLayerJobs {
		return
	}
	logger := ctxlog.FromContext(ctx)
	renders, err := res.Graph.Dependents(jobgraph.PrepLabel(res.Shot))
	if err != nil {
		logger.Warn("Could not list render jobs.", "error", err)
		return
	}
	ids := 0
	for _, label := range renders {
		if res.IDs[label] != "" {
			ids++
		}
	}
	if ids != len(res.Versions) {
		logger.Warn("Version notes and render job ids differ.", "notes", len(res.Versions), "ids", ids)
	}
}

// writeResolveReport renders one row per translated layer.
func writeResolveReport(w io.Writer, results []*LayerResult) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Layer", "ROP", "Planes", "Ops", "Gaps", "Plan"})
	for _, r := range results {
		table.Append([]string{
			r.Layer.Layer,
			translate.ROPPath(r.Pass.Name),
			strconv.Itoa(len(r.Result.Layout.Planes)),
			strconv.Itoa(len(r.Result.Plan.Ops())),
			strconv.Itoa(len(multierr.Errors(r.Result.Gaps))),
			r.PlanPath,
		})
	}
	table.Render()
}
