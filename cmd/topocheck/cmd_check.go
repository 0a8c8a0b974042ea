package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topocheck/pkg/cli"
	"github.com/newtron-network/topocheck/pkg/engine"
	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/loader"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/report"
	"github.com/newtron-network/topocheck/pkg/util"
)

var (
	checkNames     string
	checkJSON      bool
	checkMinSev    string
	checkFailOn    string
	checkSnapshots []string
	checkWorkers   int
	checkMerged    bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Validate network documents",
	Long: `Validate network documents from files, directories and stored snapshots.

Directories are searched for *.yaml, *.yml and *.json files. Document
checks run once per document; correlation checks compare all documents.

Examples:
  topocheck check site.yaml
  topocheck check sites/ --checks network-loops,duplicate-network
  topocheck check sites/ --json --min-severity warning --fail-on warning
  topocheck check sites/north.yaml --snapshot south
  topocheck check sites/ --merged`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := userSettings.GetChecks()
		if checkNames != "" {
			names = util.SplitCommaSeparated(checkNames)
		}

		minSev, err := severityFlag("min-severity", checkMinSev, userSettings.GetMinSeverity())
		if err != nil {
			return err
		}
		failOn, err := severityFlag("fail-on", checkFailOn, userSettings.GetFailOn())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		docs, err := loader.LoadPaths(args)
		if err != nil {
			return err
		}
		if len(checkSnapshots) > 0 {
			stored, err := loadSnapshots(ctx, checkSnapshots)
			if err != nil {
				return err
			}
			docs = append(docs, stored...)
		}
		if len(docs) == 0 {
			return fmt.Errorf("%w: no documents: give paths or --snapshot names", util.ErrInvalidConfig)
		}
		if checkMerged && len(docs) > 1 {
			docs = []*model.Document{model.Merge("merged", docs...)}
		}

		workers := userSettings.Concurrency
		if cmd.Flags().Changed("concurrency") {
			workers = checkWorkers
		}

		issues, err := engine.New(engine.WithConcurrency(workers)).Run(ctx, docs, names)
		if err != nil {
			return err
		}

		shown := issue.Filter(issues, minSev)
		if checkJSON {
			err = report.WriteJSON(os.Stdout, shown)
		} else {
			err = report.WriteTable(os.Stdout, shown, cli.TerminalWidth())
		}
		if err != nil {
			return err
		}

		if code := report.ExitCode(issues, failOn); code != report.ExitOK {
			return &exitError{code: code}
		}
		return nil
	},
}

// severityFlag parses a severity flag, falling back to the settings value.
func severityFlag(name, flag, fallback string) (issue.Severity, error) {
	raw := fallback
	if flag != "" {
		raw = flag
	}
	sev, err := issue.ParseSeverity(raw)
	if err != nil {
		return "", fmt.Errorf("%w: --%s: %v", util.ErrInvalidConfig, name, err)
	}
	return sev, nil
}

func init() {
	checkCmd.Flags().StringVarP(&checkNames, "checks", "c", "", "Comma-separated checks to run (default from settings, else all)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output as JSON")
	checkCmd.Flags().StringVar(&checkMinSev, "min-severity", "", "Hide issues below this severity (info, warning, error)")
	checkCmd.Flags().StringVar(&checkFailOn, "fail-on", "", "Exit 1 when an issue reaches this severity (default error)")
	checkCmd.Flags().StringArrayVar(&checkSnapshots, "snapshot", nil, "Also validate a stored snapshot (repeatable)")
	checkCmd.Flags().IntVar(&checkWorkers, "concurrency", 0, "Parallel check tasks (0 = one per CPU)")
	checkCmd.Flags().BoolVar(&checkMerged, "merged", false, "Merge all documents into one before checking")
	addStoreFlags(checkCmd)
}
