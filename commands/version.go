package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
)

// VERSION is set at build time with -ldflags "-X github.com/moevm/grade-export-sheets/commands.VERSION=..."
var VERSION = "v0.1.0"

// VersionCmd is an initialized Version command for the main() command list
var VersionCmd = Version{}

// Version is a CLI command implementation that displays the CLI version information.
type Version struct {
}

func (c *Version) FlagSet() *pflag.FlagSet {
	return pflag.NewFlagSet("version", pflag.ContinueOnError)
}

// Execute prints the current version
func (c *Version) Execute(ctx context.Context, options *Options) error {
	fmt.Printf("%s\n", VERSION)

	return nil
}

// Returns 'version'
func (c *Version) Name() string {
	return "version"
}

// Description returns the 'version' command short form help
func (c *Version) Description() string {
	return "Displays the current version"
}

// Usage returns the string describing the additional options for the 'version' command
func (c *Version) Usage() string {
	return ""
}

// Help returns the 'version' command long form help
func (c *Version) Help() {
	fmt.Printf("Displays the %s version in the format v<major>.<minor>.<build> e.g. v0.1.0\n", APP)
	fmt.Println()
}
