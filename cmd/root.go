package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/symbolmap/internal/config"
)

var (
	cfg        *config.Config
	sourceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "symbolmap",
	Short: "Proportional symbol maps over time series",
	Long:  "Loads a GeoJSON or shapefile feature collection, sizes circle symbols by area, computes legend statistics and steps through the series attributes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if sourceFlag != "" {
			c.Dataset.Source = sourceFlag
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "dataset path or URL (overrides dataset.source)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
