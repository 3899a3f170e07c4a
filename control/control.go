package control

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoData is returned when the control sheet has no content.
var ErrNoData = errors.New("no data in control sheet")

// Exporter is the part of the sheet store used to fetch a control sheet.
type Exporter interface {
	Export(ctx context.Context, tableID, sheetID, format string) ([]byte, error)
}

// ExportJob is one control table row. It is consumed by exactly one build/run cycle.
type ExportJob struct {
	Subject        string
	TableID        string
	SheetID        string
	System         string
	MainInfo       string
	AdditionalInfo string
}

// Duplicate is one row of a duplication control table.
type Duplicate struct {
	Subject string
	TableID string
	SheetID string
	Format  string
	Name    string
}

// Filename is the local and remote file name of the exported sheet.
func (d Duplicate) Filename() string {
	return fmt.Sprintf("%v.%v", d.Name, d.Format)
}

// ReadJobs fetches the control sheet as CSV and decodes the export jobs.
func ReadJobs(ctx context.Context, store Exporter, tableID, sheetID string) ([]ExportJob, error) {
	content, err := fetch(ctx, store, tableID, sheetID)
	if err != nil {
		return nil, err
	}

	return DecodeJobs(bytes.NewReader(content))
}

// ReadDuplicates fetches the control sheet as CSV and decodes the duplication rows.
func ReadDuplicates(ctx context.Context, store Exporter, tableID, sheetID string) ([]Duplicate, error) {
	content, err := fetch(ctx, store, tableID, sheetID)
	if err != nil {
		return nil, err
	}

	return DecodeDuplicates(bytes.NewReader(content))
}

// DecodeJobs decodes positional rows of subject, table_id, sheet_id, system,
// main_info, additional_info. Short rows are padded with empty fields and rows with
// no content at all (e.g. ",,,,,") are skipped.
func DecodeJobs(r io.Reader) ([]ExportJob, error) {
	records, err := read(r, 6)
	if err != nil {
		return nil, err
	}

	jobs := []ExportJob{}
	for _, record := range records {
		jobs = append(jobs, ExportJob{
			Subject:        record[0],
			TableID:        record[1],
			SheetID:        record[2],
			System:         record[3],
			MainInfo:       record[4],
			AdditionalInfo: record[5],
		})
	}

	return jobs, nil
}

// DecodeDuplicates decodes positional rows of subject, table_id, sheet_id,
// export_format, export_name.
func DecodeDuplicates(r io.Reader) ([]Duplicate, error) {
	records, err := read(r, 5)
	if err != nil {
		return nil, err
	}

	list := []Duplicate{}
	for _, record := range records {
		list = append(list, Duplicate{
			Subject: record[0],
			TableID: record[1],
			SheetID: record[2],
			Format:  record[3],
			Name:    record[4],
		})
	}

	return list, nil
}

func fetch(ctx context.Context, store Exporter, tableID, sheetID string) ([]byte, error) {
	content, err := store.Export(ctx, tableID, sheetID, "csv")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve control sheet (%w)", err)
	}

	if len(content) == 0 {
		return nil, ErrNoData
	}

	return content, nil
}

func read(r io.Reader, columns int) ([][]string, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true

	records := [][]string{}
	for {
		record, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("invalid control sheet (%w)", err)
		}

		row := make([]string, columns)
		blank := true
		for i := 0; i < columns && i < len(record); i++ {
			row[i] = clean(record[i])
			blank = blank && row[i] == ""
		}

		if !blank {
			records = append(records, row)
		}
	}

	return records, nil
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
