package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/moevm/grade-export-sheets/rating"
	"github.com/moevm/grade-export-sheets/sheetstore"
)

var RatingCmd = Rating{
	config:      DEFAULT_RATING_CONFIG,
	credentials: "",
}

type Rating struct {
	config      string
	credentials string
}

func (cmd *Rating) Name() string {
	return "rating"
}

func (cmd *Rating) Description() string {
	return "Publishes a static HTML rating page for every student in the configured grade sheets"
}

func (cmd *Rating) Usage() string {
	return "--config <file>"
}

func (cmd *Rating) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] rating [options] --config <file>\n", APP)
	fmt.Println()
	fmt.Println("  Reads the worksheets listed in the rating configuration and writes a page per student")
	fmt.Println("  and subject to '<outdir>/<ID>/<subject>.html', where the ID is derived from the student")
	fmt.Println("  login, along with a per-student index and an index page listing every student")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug rating --config "rating.json" --google_cred "conf.json"`+"\n", APP)
	fmt.Println()
}

func (cmd *Rating) FlagSet() *pflag.FlagSet {
	flagset := pflag.NewFlagSet("rating", pflag.ContinueOnError)

	flagset.StringVar(&cmd.config, "config", cmd.config, "Rating configuration file (JSON or YAML)")
	flagset.StringVar(&cmd.credentials, "google_cred", cmd.credentials, "Path for the Google service account credentials file. Defaults to google.credentials_file in the configuration")

	return flagset
}

func (cmd *Rating) Execute(ctx context.Context, options *Options) error {
	// ... check parameters
	if strings.TrimSpace(cmd.config) == "" {
		return fmt.Errorf("--config is a required option")
	}

	conf, err := rating.LoadConfig(cmd.config)
	if err != nil {
		return err
	}

	credentials := strings.TrimSpace(cmd.credentials)
	if credentials == "" {
		credentials = strings.TrimSpace(conf.Google.CredentialsFile)
	}

	if credentials == "" {
		return fmt.Errorf("--google_cred is a required option (or set google.credentials_file)")
	}

	log := options.logger()
	log.Debugf("rating configuration:%v  tables:%v", cmd.config, len(conf.Export))

	// ... authorise
	store, err := sheetstore.NewStore(ctx, credentials)
	if err != nil {
		return err
	}

	x := rating.Exporter{
		Store:     store,
		Log:       log,
		Salt:      conf.Salt,
		IndexPage: conf.IndexPage,
	}

	ok, err := x.Run(ctx, conf.Export)
	if err != nil {
		return err
	} else if !ok {
		return ErrBatchFailed
	}

	return nil
}
