package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topocheck/pkg/check"
	"github.com/newtron-network/topocheck/pkg/cli"
)

var listJSON bool

type checkInfo struct {
	Name        check.Name     `json:"name"`
	Category    check.Category `json:"category"`
	Scope       check.Scope    `json:"scope"`
	Description string         `json:"description"`
}

var listChecksCmd = &cobra.Command{
	Use:   "list-checks",
	Short: "List available checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs := check.Definitions()

		if listJSON {
			infos := make([]checkInfo, 0, len(defs))
			for _, d := range defs {
				infos = append(infos, checkInfo{Name: d.Name, Category: d.Category, Scope: d.Scope, Description: d.Description})
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}

		t := cli.NewTable("CHECK", "CATEGORY", "SCOPE", "DESCRIPTION")
		for _, d := range defs {
			t.Row(bold(string(d.Name)), string(d.Category), string(d.Scope), d.Description)
		}
		return t.Flush()
	},
}

func init() {
	listChecksCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}
