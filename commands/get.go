package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/moevm/grade-export-sheets/control"
	"github.com/moevm/grade-export-sheets/sheetstore"
)

var GetCmd = Get{
	command: command{
		credentials: "",
		table:       "",
		sheet:       "",
	},

	file: time.Now().Format("2006-01-02T150405.tsv"),
}

type Get struct {
	command
	file string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the export jobs from a Google Sheets control table and stores them to a local file"
}

func (cmd *Get) Usage() string {
	return "--table_id <ID> --sheet_id <ID> --google_cred <file> --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --table_id <ID> --sheet_id <ID> --google_cred <file> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads a control table and writes the decoded export jobs to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug get --table_id "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`+"\n", APP)
	fmt.Println(`                                   --sheet_id 0 \`)
	fmt.Println(`                                   --google_cred "conf.json" \`)
	fmt.Println(`                                   --file "jobs.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *pflag.FlagSet {
	flagset := pflag.NewFlagSet("get", pflag.ContinueOnError)

	cmd.flags(flagset)
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(ctx context.Context, options *Options) error {
	// ... check parameters
	if err := cmd.validate(); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	table, err := cmd.spreadsheet()
	if err != nil {
		return err
	}

	log := options.logger()
	log.Debugf("control table - ID:%v  sheet:%v", table, cmd.sheet)

	// ... authorise
	store, err := sheetstore.NewStore(ctx, cmd.credentials)
	if err != nil {
		return err
	}

	jobs, err := control.ReadJobs(ctx, store, table, cmd.sheet)
	if err != nil {
		return err
	}

	if err := save(jobs, cmd.file); err != nil {
		return err
	}

	log.Infof("retrieved %v export jobs to file %s", len(jobs), cmd.file)

	return nil
}

// save writes the jobs to a temporary file alongside the target and renames it into place.
func save(jobs []control.ExportJob, file string) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".jobs-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := control.WriteTSV(tmp, jobs); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	if err := os.Rename(tmp.Name(), file); err != nil {
		return err
	}

	return nil
}
