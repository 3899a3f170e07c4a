// Package batch runs control-table driven batches: one row at a time, in table order,
// recording each row's outcome without letting a failed row stop the batch, and
// writing a single report back to the control spreadsheet at the end.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/moevm/grade-export-sheets/control"
	"github.com/moevm/grade-export-sheets/report"
	"github.com/moevm/grade-export-sheets/sheetstore"
)

// ErrExporterFailed marks a row whose exporter exited with a non-zero status.
var ErrExporterFailed = errors.New("exporter exited with non-zero status")

// Store is the spreadsheet collaborator: control sheet export and report writes.
type Store interface {
	control.Exporter
	report.Writer
}

type revisioner interface {
	Revision(ctx context.Context, fileID string) (*sheetstore.Revision, error)
}

// Outcome is the result of processing one control table row: either a link to the
// row's detailed result or the error that failed it.
type Outcome struct {
	Link string
	Err  error
}

func success(link string) Outcome {
	return Outcome{Link: link}
}

func failure(err error) Outcome {
	return Outcome{Err: err}
}

func (o Outcome) record(rpt *report.Report, label string) {
	if o.Err != nil {
		rpt.Failure(label)
	} else {
		rpt.Success(label, o.Link)
	}
}

// guard runs one row step and converts a panic into a failed outcome so that the
// batch loop always continues with the next row.
func guard(log logrus.FieldLogger, f func() Outcome) (outcome Outcome) {
	log.Info(">>>>> export started")

	defer func() {
		if r := recover(); r != nil {
			outcome = failure(fmt.Errorf("unexpected error (%v)", r))
		}

		if outcome.Err != nil {
			log.Errorf("!!!!! export failed (%v)", outcome.Err)
		}

		log.Info(">>>>> export finished")
	}()

	return f()
}

func newRun(log logrus.FieldLogger, tableID, sheetID string) logrus.FieldLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return log.WithFields(logrus.Fields{
		"run":   uuid.NewString(),
		"table": tableID,
		"sheet": sheetID,
	})
}

func logRevision(ctx context.Context, log logrus.FieldLogger, store Store, tableID string) {
	if r, ok := store.(revisioner); ok {
		if revision, err := r.Revision(ctx, tableID); err != nil {
			log.Debugf("control spreadsheet revision unavailable (%v)", err)
		} else {
			log.Infof("control spreadsheet revision %v modified %v", revision.ID, revision.Modified.Format("2006-01-02 15:04:05"))
		}
	}
}

func flush(ctx context.Context, log logrus.FieldLogger, rpt *report.Report, store Store, tableID, sheetID, prefix string) (bool, error) {
	if err := rpt.Flush(ctx, store, tableID, sheetID, prefix); err != nil {
		log.Errorf("%v", err)
		return false, err
	}

	log.Infof("wrote report with %v rows (errors:%v)", rpt.Len(), rpt.HadErrors())

	return !rpt.HadErrors(), nil
}
