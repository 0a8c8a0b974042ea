package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topocheck/pkg/cli"
	"github.com/newtron-network/topocheck/pkg/settings"
	"github.com/newtron-network/topocheck/pkg/util"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.topocheck/settings.json.

Settings provide defaults for flags:
  - default_checks:  Checks run when --checks is not given
  - min_severity:    --min-severity default
  - fail_on:         --fail-on default
  - concurrency:     --concurrency default
  - redis_addr:      Snapshot store address
  - redis_db:        Snapshot store database
  - snapshot_prefix: Key prefix for stored snapshots
  - ssh_host:        Reach the store through this SSH host
  - ssh_user:        SSH user for the tunnel

Examples:
  topocheck settings show
  topocheck settings set default_checks network-loops,duplicate-device-id
  topocheck settings set fail_on warning
  topocheck settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")
		for _, key := range settings.Keys {
			value := s.Get(key)
			if value == "" {
				value = cli.Dim("(not set)")
			}
			t.Row(key, value)
		}
		return t.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s set to: %s\n", args[0], s.Get(args[0]))
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if !slices.Contains(settings.Keys, args[0]) {
			return fmt.Errorf("%w: unknown setting %q", util.ErrInvalidConfig, args[0])
		}
		value := s.Get(args[0])
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println(green("Settings cleared."))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsGetCmd, settingsClearCmd)
}
