package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/symbolmap/internal/symbol"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Advance the sequence index one step and print the new attribute",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, _ := cmd.Flags().GetInt("index")
		direction, _ := cmd.Flags().GetString("direction")

		dir, err := symbol.ParseDirection(direction)
		if err != nil {
			return err
		}

		v, err := loadView(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := v.Seek(index); err != nil {
			return err
		}

		st := v.Step(dir)
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", st.Index, st.Attribute)
		return nil
	},
}

func init() {
	stepCmd.Flags().IntP("index", "i", 0, "current series index")
	stepCmd.Flags().StringP("direction", "d", "forward", "forward or reverse")
	rootCmd.AddCommand(stepCmd)
}
