package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moevm/grade-export-sheets/commands"
	"github.com/moevm/grade-export-sheets/config"
	"github.com/moevm/grade-export-sheets/logging"
)

var cli = []commands.Command{
	&commands.VersionCmd,
	&commands.ExportCmd,
	&commands.DuplicateCmd,
	&commands.GetCmd,
	&commands.RatingCmd,
	&commands.AuthoriseCmd,
}

var options = commands.Options{
	Debug: false,
}

func main() {
	root := &cobra.Command{
		Use:           commands.APP,
		Short:         "Runs the grade exporters listed in a Google Sheets control table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load()
			if err != nil {
				return err
			}

			options.Config = conf
			options.Log = logging.New(conf.Log, options.Debug)

			return nil
		},
	}

	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")

	for _, c := range cli {
		root.AddCommand(commands.Cobra(c, &options))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		if options.Log != nil {
			options.Log.Errorf("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "\nERROR: %v\n\n", err)
		}

		cancel()
		os.Exit(1)
	}
}
