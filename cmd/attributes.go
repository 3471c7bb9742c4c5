package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "List series and group attributes of the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "features: %d\n", len(ds.Features))
		fmt.Fprintf(out, "label:    %s\n", ds.LabelProperty)
		fmt.Fprintln(out, "series:")
		for i, s := range ds.Series {
			fmt.Fprintf(out, "  %d  %s\n", i, s)
		}
		if len(ds.Groups) > 0 {
			fmt.Fprintln(out, "groups:")
			for _, g := range ds.Groups {
				fmt.Fprintf(out, "  %s\n", g)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(attributesCmd)
}
