package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/moevm/grade-export-sheets/batch"
	"github.com/moevm/grade-export-sheets/sheetstore"
	"github.com/moevm/grade-export-sheets/yadisk"
)

var DuplicateCmd = Duplicate{
	command: command{
		credentials: "",
		table:       "",
		sheet:       "",
	},

	token:   "",
	dir:     "",
	workdir: "",
}

type Duplicate struct {
	command
	token   string
	dir     string
	workdir string
}

func (cmd *Duplicate) Name() string {
	return "duplicate"
}

func (cmd *Duplicate) Description() string {
	return "Copies the worksheets listed in a Google Sheets control table to Yandex Disk"
}

func (cmd *Duplicate) Usage() string {
	return "--table_id <ID> --sheet_id <ID> --google_cred <file> --yadisk_dir <dir>"
}

func (cmd *Duplicate) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] duplicate [options] --table_id <ID> --sheet_id <ID> --google_cred <file> --yadisk_dir <dir>\n", APP)
	fmt.Println()
	fmt.Println("  Exports each worksheet listed in the control table (subject, table_id, sheet_id, export_format,")
	fmt.Println("  export_name) as csv, tsv, pdf, xlsx or ods, uploads it to Yandex Disk and writes a")
	fmt.Println("  'result_<sheet>' report with the public link for each file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s duplicate --table_id "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`+"\n", APP)
	fmt.Println(`                                 --sheet_id 1514082 \`)
	fmt.Println(`                                 --google_cred "conf.json" \`)
	fmt.Println(`                                 --yadisk_dir "grades/2025"`)
	fmt.Println()
}

func (cmd *Duplicate) FlagSet() *pflag.FlagSet {
	flagset := pflag.NewFlagSet("duplicate", pflag.ContinueOnError)

	cmd.flags(flagset)
	flagset.StringVar(&cmd.token, "yadisk_token", cmd.token, "Yandex Disk OAuth token. Defaults to YADISK_TOKEN")
	flagset.StringVar(&cmd.dir, "yadisk_dir", cmd.dir, "Yandex Disk destination directory")
	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for exported files while they are uploaded. Defaults to the system temporary directory")

	return flagset
}

func (cmd *Duplicate) Execute(ctx context.Context, options *Options) error {
	// ... check parameters
	if err := cmd.validate(); err != nil {
		return err
	}

	conf := options.Config

	token := strings.TrimSpace(cmd.token)
	if token == "" {
		token = strings.TrimSpace(conf.YandexDiskToken)
	}

	if token == "" {
		return fmt.Errorf("--yadisk_token is a required option (or set YADISK_TOKEN)")
	}

	if strings.TrimSpace(cmd.dir) == "" {
		return fmt.Errorf("--yadisk_dir is a required option")
	}

	table, err := cmd.spreadsheet()
	if err != nil {
		return err
	}

	if strings.TrimSpace(conf.ResultPrefix) == "" {
		return fmt.Errorf("RESULT_PREFIX must not be empty")
	}

	log := options.logger()
	log.Debugf("duplication table - ID:%v  sheet:%v  directory:%v", table, cmd.sheet, cmd.dir)

	// ... authorise
	store, err := sheetstore.NewStore(ctx, cmd.credentials)
	if err != nil {
		return err
	}

	disk := yadisk.NewClient(token)
	if conf.YandexDiskURL != "" {
		disk.BaseURL = conf.YandexDiskURL
	}

	x := batch.Duplicator{
		Store:   store,
		Disk:    disk,
		Log:     log,
		Dir:     strings.TrimSpace(cmd.dir),
		WorkDir: cmd.workdir,
		Prefix:  conf.ResultPrefix,
	}

	ok, err := x.Run(ctx, table, cmd.sheet)
	if err != nil {
		return err
	} else if !ok {
		return ErrBatchFailed
	}

	return nil
}
