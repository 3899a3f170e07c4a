package report

import (
	"context"
	"fmt"
)

const (
	ERROR_MARKER   = "- (error)"
	DEFAULT_PREFIX = "result_"
)

// Writer is the part of the sheet store used to persist a report.
type Writer interface {
	SheetTitle(ctx context.Context, tableID, sheetID string) (string, error)
	Replace(ctx context.Context, tableID, title string, rows [][]string) error
}

// Report accumulates one row per processed control table row, in order, and tracks
// whether any row failed.
type Report struct {
	header    []string
	rows      [][]string
	hadErrors bool
}

func New(header ...string) *Report {
	return &Report{
		header: header,
		rows:   [][]string{},
	}
}

// Success records a row with a link to the detailed export.
func (r *Report) Success(subject, link string) {
	r.rows = append(r.rows, []string{subject, link})
}

// Failure records a row with the error placeholder and marks the batch as failed.
func (r *Report) Failure(subject string) {
	r.rows = append(r.rows, []string{subject, ERROR_MARKER})
	r.hadErrors = true
}

func (r *Report) HadErrors() bool {
	return r.hadErrors
}

// Len returns the number of recorded rows, excluding the header.
func (r *Report) Len() int {
	return len(r.rows)
}

// Rows returns the header followed by the recorded rows.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.rows)+1)
	rows = append(rows, append([]string{}, r.header...))
	for _, row := range r.rows {
		rows = append(rows, append([]string{}, row...))
	}

	return rows
}

// Flush replaces the content of the '<prefix><control sheet title>' sheet with the
// report.
func (r *Report) Flush(ctx context.Context, w Writer, tableID, sheetID, prefix string) error {
	title, err := w.SheetTitle(ctx, tableID, sheetID)
	if err != nil {
		return fmt.Errorf("unable to resolve control sheet title (%w)", err)
	}

	name := SheetName(prefix, title)
	if err := w.Replace(ctx, tableID, name, r.Rows()); err != nil {
		return fmt.Errorf("unable to write report to sheet '%v' (%w)", name, err)
	}

	return nil
}

// SheetName derives the report sheet name from the control sheet title.
func SheetName(prefix, title string) string {
	if prefix == "" {
		prefix = DEFAULT_PREFIX
	}

	return prefix + title
}

// Link is the URL of a worksheet in the Google Sheets UI.
func Link(tableID, sheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%v/edit?gid=%v", tableID, sheetID)
}
