package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/moevm/grade-export-sheets/config"
)

const APP = "grade-export-sheets"

// ErrBatchFailed is returned when a batch completed but at least one row failed.
var ErrBatchFailed = errors.New("one or more rows failed")

// Options are the global settings shared by all commands.
type Options struct {
	Debug  bool
	Config config.Options
	Log    *logrus.Logger
}

// Command is a CLI command with a flag set bound to its fields and an Execute that runs
// with the global options.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *pflag.FlagSet
	Execute(ctx context.Context, options *Options) error
}

// Cobra wraps a Command for registration with the root command.
func Cobra(c Command, options *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           strings.TrimSpace(fmt.Sprintf("%v %v", c.Name(), c.Usage())),
		Short:         c.Description(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Execute(cmd.Context(), options)
		},
	}

	cmd.Flags().AddFlagSet(c.FlagSet())
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		c.Help()
	})

	return cmd
}

// command holds the options common to every command that works on a control sheet.
type command struct {
	credentials string
	table       string
	sheet       string
}

func (c *command) flags(flagset *pflag.FlagSet) {
	flagset.StringVar(&c.table, "table_id", c.table, "Control spreadsheet ID or URL")
	flagset.StringVar(&c.sheet, "sheet_id", c.sheet, "Control worksheet ID (the 'gid' in the worksheet URL)")
	flagset.StringVar(&c.credentials, "google_cred", c.credentials, "Path for the Google service account credentials file")
}

func (c *command) validate() error {
	if strings.TrimSpace(c.table) == "" {
		return fmt.Errorf("--table_id is a required option")
	}

	if strings.TrimSpace(c.sheet) == "" {
		return fmt.Errorf("--sheet_id is a required option")
	}

	if strings.TrimSpace(c.credentials) == "" {
		return fmt.Errorf("--google_cred is a required option")
	}

	return nil
}

// spreadsheet returns the spreadsheet ID, accepting either a bare ID or a spreadsheet URL.
func (c *command) spreadsheet() (string, error) {
	table := strings.TrimSpace(c.table)

	if !strings.HasPrefix(table, "https://") {
		return table, nil
	}

	match := regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`).FindStringSubmatch(table)
	if len(match) < 2 || match[1] == "" {
		return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
	}

	return match[1], nil
}

func (o *Options) logger() *logrus.Logger {
	if o == nil || o.Log == nil {
		return logrus.StandardLogger()
	}

	return o.Log
}

func helpOptions(flagset *pflag.FlagSet) {
	fmt.Println("  Options:")
	fmt.Println()

	for _, line := range strings.Split(strings.TrimRight(flagset.FlagUsages(), "\n"), "\n") {
		fmt.Printf("  %v\n", line)
	}
}
