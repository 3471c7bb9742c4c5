package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/symbolmap/internal/mapview"
	"github.com/sells-group/symbolmap/internal/symbol"
)

var radiusCmd = &cobra.Command{
	Use:   "radius <value>",
	Short: "Print the circle radius for a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "radius: parse value %q", args[0])
		}

		scale, _ := cmd.Flags().GetFloat64("scale")
		if scale == 0 {
			scale = cfg.Symbol.ScaleFactor
		}
		if scale == 0 {
			scale, err = mapview.PresetScaleFactor(cfg.Popup.Preset)
			if err != nil {
				return err
			}
		}

		r, err := symbol.Radius(value, scale)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(r, 'f', -1, 64))
		return nil
	},
}

func init() {
	radiusCmd.Flags().Float64("scale", 0, "scale factor (default from config)")
	rootCmd.AddCommand(radiusCmd)
}
