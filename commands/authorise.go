package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/moevm/grade-export-sheets/report"
	"github.com/moevm/grade-export-sheets/sheetstore"
)

var AuthoriseCmd = Authorise{
	command: command{
		credentials: "",
		table:       "",
		sheet:       "",
	},
}

// Authorise checks that the service account can read the control sheet and write
// the report sheet, without running any exporters.
type Authorise struct {
	command
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Verifies that the Google service account can access a control table"
}

func (cmd *Authorise) Usage() string {
	return "--table_id <ID> --sheet_id <ID> --google_cred <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --table_id <ID> --sheet_id <ID> --google_cred <file>\n", APP)
	fmt.Println()
	fmt.Println("  Verifies that the service account in the Google credentials file can access the control")
	fmt.Println("  table. The control spreadsheet must be shared with the service account e-mail address.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s authorise --google_cred "conf.json" --table_id "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" --sheet_id 0`+"\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *pflag.FlagSet {
	flagset := pflag.NewFlagSet("authorise", pflag.ContinueOnError)

	cmd.flags(flagset)

	return flagset
}

func (cmd *Authorise) Execute(ctx context.Context, options *Options) error {
	// ... check parameters
	if err := cmd.validate(); err != nil {
		return err
	}

	table, err := cmd.spreadsheet()
	if err != nil {
		return err
	}

	log := options.logger()

	store, err := sheetstore.NewStore(ctx, cmd.credentials)
	if err != nil {
		return err
	}

	title, err := store.SheetTitle(ctx, table, cmd.sheet)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	if content, err := store.Export(ctx, table, cmd.sheet, "csv"); err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	} else {
		log.Debugf("control sheet '%v' - %v bytes", title, len(content))
	}

	if revision, err := store.Revision(ctx, table); err != nil {
		log.Warnf("control spreadsheet revisions not accessible (%v)", err)
	} else {
		log.Infof("control spreadsheet revision %v modified %v", revision.ID, revision.Modified.Format("2006-01-02 15:04:05"))
	}

	log.Infof("authorised for control sheet '%v', report sheet '%v'", title, report.SheetName(options.Config.ResultPrefix, title))

	return nil
}
