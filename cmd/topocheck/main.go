// Topocheck - BACnet Network Topology Validator
//
// Reads BACnet network documents (devices, networks, subnets, routers and
// BBMDs) from YAML or JSON files or from a Redis snapshot store, runs a
// selection of topology checks over them and reports every defect found.
//
// Examples:
//
//	topocheck check site-a.yaml site-b.yaml            # all checks
//	topocheck check sites/ --checks network-loops,duplicate-device-id
//	topocheck check sites/ --json --fail-on warning    # CI gate
//	topocheck check --snapshot north --snapshot south  # stored documents
//	topocheck list-checks
//	topocheck merge -o campus.yaml sites/
//	topocheck snapshot push sites/north.yaml
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topocheck/pkg/cli"
	"github.com/newtron-network/topocheck/pkg/report"
	"github.com/newtron-network/topocheck/pkg/settings"
	"github.com/newtron-network/topocheck/pkg/util"
	"github.com/newtron-network/topocheck/pkg/version"
)

var (
	// Global option flags
	verbose bool
	jsonLog bool
	noColor bool

	// Global state
	userSettings *settings.Settings
)

// exitError ends the process with a code and no message; the command has
// already written its output.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(report.ExitConfig)
	}
}

var rootCmd = &cobra.Command{
	Use:               "topocheck",
	Short:             "BACnet network topology validator",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Topocheck validates BACnet network documents.

It finds routing loops, unreachable networks, duplicate device instances and
network numbers, address conflicts, BBMD misconfiguration and data quality
gaps, and compares devices across documents.

Exit status: 0 when nothing reaches --fail-on, 1 when something does,
2 on bad arguments or unreadable input.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set log level: quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if jsonLog {
			util.SetJSONFormat()
		}
		if noColor {
			cli.SetColor(false)
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "validate", Title: "Validation:"},
		&cobra.Group{ID: "documents", Title: "Documents & Snapshots:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{checkCmd, listChecksCmd} {
		cmd.GroupID = "validate"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{mergeCmd, snapshotCmd} {
		cmd.GroupID = "documents"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("topocheck %s\n", version.Info())
	},
}

func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
