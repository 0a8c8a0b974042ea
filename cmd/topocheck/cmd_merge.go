package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topocheck/pkg/loader"
	"github.com/newtron-network/topocheck/pkg/model"
)

var (
	mergeOutput string
	mergeName   string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <paths...>",
	Short: "Merge documents into one",
	Long: `Merge several documents into one by entity id. The first definition of
an id wins; differing later definitions are reported as warnings (-v shows
more detail).

Examples:
  topocheck merge -o campus.yaml north.yaml south.yaml
  topocheck merge --name campus sites/ > campus.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := loader.LoadPaths(args)
		if err != nil {
			return err
		}

		merged := model.Merge(mergeName, docs...)
		if mergeOutput == "" {
			return loader.Write(os.Stdout, merged)
		}
		if err := loader.WriteFile(mergeOutput, merged); err != nil {
			return err
		}
		fmt.Printf("Merged %d documents into %s (%s)\n", len(docs), mergeOutput, merged.Summary())
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output file (default stdout)")
	mergeCmd.Flags().StringVar(&mergeName, "name", "merged", "Name of the merged document")
}
