package batch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moevm/grade-export-sheets/control"
	"github.com/moevm/grade-export-sheets/credentials"
	"github.com/moevm/grade-export-sheets/report"
)

// Builder produces the exporter argument vector for a job.
type Builder interface {
	Build(job control.ExportJob, creds *credentials.Registry) ([]string, error)
}

// Runner runs an argument vector to completion and reports whether it exited with 0.
type Runner interface {
	Run(ctx context.Context, argv []string) (bool, error)
}

// Exporter launches one exporter per control table row and reports a link to each
// exporter's own result sheet.
type Exporter struct {
	Store    Store
	Registry *credentials.Registry
	Builder  Builder
	Runner   Runner
	Log      logrus.FieldLogger

	// Prefix names the report sheet, '<prefix><control sheet title>'.
	Prefix string

	// Timeout bounds each exporter run. Zero waits for the exporter indefinitely.
	Timeout time.Duration
}

// Run processes every row of the control sheet and writes the report. It returns true
// only if every row succeeded and the report was written. A control sheet that cannot
// be read fails the run before any row is processed and nothing is written.
func (x *Exporter) Run(ctx context.Context, tableID, sheetID string) (bool, error) {
	log := newRun(x.Log, tableID, sheetID)

	logRevision(ctx, log, x.Store, tableID)

	jobs, err := control.ReadJobs(ctx, x.Store, tableID, sheetID)
	if err != nil {
		log.Errorf("error retrieving export jobs (%v)", err)
		return false, err
	}

	log.Infof("retrieved %v export jobs for systems %v", len(jobs), x.Registry.Systems())

	rpt := x.export(ctx, log, jobs)

	return flush(ctx, log, rpt, x.Store, tableID, sheetID, x.Prefix)
}

func (x *Exporter) export(ctx context.Context, log logrus.FieldLogger, jobs []control.ExportJob) *report.Report {
	rpt := report.New("subject", "table_link")

	for _, job := range jobs {
		l := log.WithFields(logrus.Fields{
			"subject": job.Subject,
			"system":  job.System,
		})

		outcome := guard(l, func() Outcome {
			return x.process(ctx, job)
		})

		outcome.record(rpt, job.Subject)
	}

	return rpt
}

func (x *Exporter) process(ctx context.Context, job control.ExportJob) Outcome {
	argv, err := x.Builder.Build(job, x.Registry)
	if err != nil {
		return failure(err)
	}

	if x.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, x.Timeout)
		defer cancel()
	}

	ok, err := x.Runner.Run(ctx, argv)
	if err != nil {
		return failure(err)
	} else if !ok {
		return failure(ErrExporterFailed)
	}

	return success(report.Link(job.TableID, job.SheetID))
}
