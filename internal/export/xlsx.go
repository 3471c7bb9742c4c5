// Package export writes legend tables for use outside the map.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/symbolmap/internal/symbol"
)

// LegendRow is one attribute's legend. OK is false when the attribute has
// no usable values.
type LegendRow struct {
	Attribute string        `json:"attribute" yaml:"attribute"`
	OK        bool          `json:"ok" yaml:"ok"`
	Legend    symbol.Legend `json:"legend" yaml:"legend"`
}

// LegendHeader names the workbook columns.
var LegendHeader = []string{"attribute", "min", "mean", "max", "count"}

// WriteLegendWorkbook saves rows to an .xlsx file with a single "legend"
// sheet. No-data rows keep the attribute and leave the statistics blank.
func WriteLegendWorkbook(path string, rows []LegendRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("legend")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range LegendHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Attribute)
		if !r.OK {
			continue
		}
		row.AddCell().SetFloat(r.Legend.Min)
		row.AddCell().SetFloat(r.Legend.Mean)
		row.AddCell().SetFloat(r.Legend.Max)
		row.AddCell().SetInt(r.Legend.Count)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
