package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/symbolmap/internal/export"
	"github.com/sells-group/symbolmap/internal/mapview"
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Compute legend statistics (min, mean, max) for attributes",
	Long:  "Computes legend statistics for one attribute (default: the first series attribute) or, with --all, for every series and group attribute.",
	RunE:  runLegend,
}

func init() {
	legendCmd.Flags().StringP("attribute", "a", "", "attribute to summarize")
	legendCmd.Flags().Bool("all", false, "summarize every series and group attribute")
	legendCmd.Flags().StringP("format", "f", "table", "output format: table, json or yaml")
	legendCmd.Flags().String("xlsx", "", "also write the legend to an .xlsx workbook")
	legendCmd.Flags().Int("concurrency", 4, "attributes summarized in parallel with --all")
	rootCmd.AddCommand(legendCmd)
}

func runLegend(cmd *cobra.Command, _ []string) error {
	attribute, _ := cmd.Flags().GetString("attribute")
	all, _ := cmd.Flags().GetBool("all")
	format, _ := cmd.Flags().GetString("format")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	switch format {
	case "table", "json", "yaml":
	default:
		return eris.Errorf("legend: unknown format %q", format)
	}
	if all && attribute != "" {
		return eris.New("legend: --attribute and --all are mutually exclusive")
	}

	v, err := loadView(cmd.Context())
	if err != nil {
		return err
	}

	var attrs []string
	switch {
	case all:
		attrs = v.Dataset().Attributes()
	case attribute != "":
		attrs = []string{attribute}
	default:
		attrs = []string{v.State().Attribute}
	}

	rows, err := legendRows(cmd, v, attrs, concurrency)
	if err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := export.WriteLegendWorkbook(xlsxPath, rows); err != nil {
			return err
		}
		zap.L().Info("legend workbook written", zap.String("path", xlsxPath), zap.Int("rows", len(rows)))
	}

	return writeLegend(cmd.OutOrStdout(), format, rows)
}

// legendRows computes one row per attribute, keeping the input order.
func legendRows(cmd *cobra.Command, v *mapview.MapView, attrs []string, concurrency int) ([]export.LegendRow, error) {
	rows := make([]export.LegendRow, len(attrs))

	g, gctx := errgroup.WithContext(cmd.Context())
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, attr := range attrs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, ok, err := v.LegendFor(attr)
			if err != nil {
				return eris.Wrapf(err, "legend: %s", attr)
			}
			rows[i] = export.LegendRow{Attribute: attr, OK: ok, Legend: l}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func writeLegend(w io.Writer, format string, rows []export.LegendRow) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(rows), "legend: encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "legend: encode yaml")
		}
		return eris.Wrap(enc.Close(), "legend: encode yaml")
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header(export.LegendHeader)

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		if !r.OK {
			data = append(data, []string{r.Attribute, "no data", "", "", "0"})
			continue
		}
		data = append(data, []string{
			r.Attribute,
			formatStat(r.Legend.Min),
			formatStat(r.Legend.Mean),
			formatStat(r.Legend.Max),
			fmt.Sprint(r.Legend.Count),
		})
	}
	if err := table.Bulk(data); err != nil {
		return eris.Wrap(err, "legend: build table")
	}
	return eris.Wrap(table.Render(), "legend: render table")
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
