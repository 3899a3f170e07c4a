package control

import (
	"encoding/csv"
	"fmt"
	"io"
)

var header = []string{"subject", "table_id", "sheet_id", "system", "main_info", "additional_info"}

// WriteTSV writes the decoded control table as a tab separated file with a header row.
func WriteTSV(f io.Writer, jobs []ExportJob) error {
	if len(jobs) == 0 {
		return fmt.Errorf("empty control sheet")
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	w.Write(header)
	for _, job := range jobs {
		w.Write([]string{job.Subject, job.TableID, job.SheetID, job.System, job.MainInfo, job.AdditionalInfo})
	}

	w.Flush()

	return w.Error()
}
