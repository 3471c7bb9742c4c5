package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/symbolmap/internal/mapview"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Write proportional symbols as a GeoJSON FeatureCollection",
	Long:  "Sizes every anchored feature for one attribute and writes the visible symbols as GeoJSON points carrying radius, popup and style properties.",
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().StringP("attribute", "a", "", "attribute to draw (overrides --index)")
	symbolsCmd.Flags().IntP("index", "i", 0, "series index to draw")
	symbolsCmd.Flags().StringP("group", "g", "", "group filter to draw")
	symbolsCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, _ []string) error {
	attribute, _ := cmd.Flags().GetString("attribute")
	index, _ := cmd.Flags().GetInt("index")
	group, _ := cmd.Flags().GetString("group")
	out, _ := cmd.Flags().GetString("out")

	v, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	var symbols []mapview.Symbol
	switch {
	case attribute != "":
		symbols, err = v.SymbolsFor(attribute)
	default:
		if _, err = v.Seek(index); err != nil {
			return err
		}
		if group != "" {
			if _, err = v.SelectGroup(group); err != nil {
				return err
			}
		}
		symbols, err = v.Symbols()
	}
	if err != nil {
		return err
	}

	fc := mapview.FeatureCollection(symbols, v.Options().Style)

	if out == "" {
		if err := writeFeatureCollection(cmd.OutOrStdout(), fc); err != nil {
			return err
		}
	} else if err := writeFeatureCollectionFile(out, fc); err != nil {
		return err
	}

	zap.L().Debug("symbols written",
		zap.String("attribute", v.State().Attribute),
		zap.Int("features", len(fc.Features)),
	)
	return nil
}

func writeFeatureCollection(w io.Writer, fc any) error {
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		return eris.Wrap(err, "symbols: encode geojson")
	}
	return nil
}

// writeFeatureCollectionFile writes fc to path, reporting close errors.
func writeFeatureCollectionFile(path string, fc any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "symbols: create %s", path)
	}
	if err := writeFeatureCollection(f, fc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "symbols: close %s", path)
	}
	return nil
}
