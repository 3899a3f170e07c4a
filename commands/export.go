package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/moevm/grade-export-sheets/batch"
	"github.com/moevm/grade-export-sheets/credentials"
	"github.com/moevm/grade-export-sheets/exporter"
	"github.com/moevm/grade-export-sheets/runner"
	"github.com/moevm/grade-export-sheets/sheetstore"
)

var ExportCmd = Export{
	command: command{
		credentials: "",
		table:       "",
		sheet:       "",
	},

	systemCredentials: "",
	runtime:           "",
}

type Export struct {
	command
	systemCredentials string
	runtime           string
}

func (cmd *Export) Name() string {
	return "export"
}

func (cmd *Export) Description() string {
	return "Runs the grade exporter for every subject listed in a Google Sheets control table"
}

func (cmd *Export) Usage() string {
	return "--table_id <ID> --sheet_id <ID> --google_cred <file> --system_cred <file>"
}

func (cmd *Export) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] export [options] --table_id <ID> --sheet_id <ID> --google_cred <file> --system_cred <file>\n", APP)
	fmt.Println()
	fmt.Println("  Reads the control table, runs the moodle, dis or stepik exporter for each row and writes")
	fmt.Println("  a 'result_<sheet>' report with a link to each subject's grade sheet (or '- (error)')")
	fmt.Println("  back to the control spreadsheet")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s export --table_id "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`+"\n", APP)
	fmt.Println(`                              --sheet_id 0 \`)
	fmt.Println(`                              --google_cred "conf.json" \`)
	fmt.Println(`                              --system_cred "credentials.json"`)
	fmt.Println()
}

func (cmd *Export) FlagSet() *pflag.FlagSet {
	flagset := pflag.NewFlagSet("export", pflag.ContinueOnError)

	cmd.flags(flagset)
	flagset.StringVar(&cmd.systemCredentials, "system_cred", cmd.systemCredentials, "Path for the moodle/dis/stepik credentials file (JSON or YAML)")
	flagset.StringVar(&cmd.runtime, "runtime", cmd.runtime, "Exporter runtime ('process' or 'docker'). Defaults to EXPORT_RUNTIME")

	return flagset
}

func (cmd *Export) Execute(ctx context.Context, options *Options) error {
	// ... check parameters
	if err := cmd.validate(); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.systemCredentials) == "" {
		return fmt.Errorf("--system_cred is a required option")
	}

	table, err := cmd.spreadsheet()
	if err != nil {
		return err
	}

	conf := options.Config
	if cmd.runtime != "" {
		conf.Runtime = strings.ToLower(strings.TrimSpace(cmd.runtime))
	}

	if err := conf.Validate(); err != nil {
		return err
	}

	log := options.logger()
	log.Debugf("control table - ID:%v  sheet:%v  runtime:%v", table, cmd.sheet, conf.Runtime)

	// ... credentials
	registry, err := credentials.LoadRegistry(cmd.systemCredentials, exporter.Systems()...)
	if err != nil {
		return fmt.Errorf("invalid system credentials (%w)", err)
	}

	// ... authorise
	store, err := sheetstore.NewStore(ctx, cmd.credentials)
	if err != nil {
		return err
	}

	x := batch.Exporter{
		Store:    store,
		Registry: registry,
		Builder: &exporter.Builder{
			Runtime:     exporter.Runtime(conf.Runtime),
			ExporterDir: conf.ExporterDir,
			Docker:      conf.Docker,
			GoogleCred:  cmd.credentials,
			MoodleURL:   conf.MoodleURL,
			StepikURL:   conf.StepikURL,
		},
		Runner:  &runner.Runner{Log: log},
		Log:     log,
		Prefix:  conf.ResultPrefix,
		Timeout: conf.Timeout,
	}

	ok, err := x.Run(ctx, table, cmd.sheet)
	if err != nil {
		return err
	} else if !ok {
		return ErrBatchFailed
	}

	return nil
}
