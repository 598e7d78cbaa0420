// Package export writes a report to spreadsheet form for sharing outside
// the JSON contract.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/bitcoin-commons/bench-cli/internal/model"
)

// WriteXLSX writes the report to an .xlsx workbook at path with summary,
// comparison, and unpaired sheets.
func WriteXLSX(rpt *model.Report, path string) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, rpt); err != nil {
		return err
	}
	if err := addComparisonSheet(f, rpt); err != nil {
		return err
	}
	if err := addUnpairedSheet(f, "Core Only", rpt.CoreOnly); err != nil {
		return err
	}
	if err := addUnpairedSheet(f, "Commons Only", rpt.CommonsOnly); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, rpt *model.Report) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addKV := func(key string, val int) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		row.AddCell().SetInt(val)
	}
	addKV("Total", rpt.Summary.Total)
	addKV("Comparisons", rpt.Summary.Comparisons)
	addKV("Core only", rpt.Summary.CoreOnly)
	addKV("Commons only", rpt.Summary.CommonsOnly)

	if len(rpt.Warnings) > 0 {
		sheet.AddRow()
		header := sheet.AddRow()
		header.AddCell().Value = "Warnings"
		for _, w := range rpt.Warnings {
			sheet.AddRow().AddCell().Value = w
		}
	}
	return nil
}

func addComparisonSheet(f *xlsx.File, rpt *model.Report) error {
	sheet, err := f.AddSheet("Comparisons")
	if err != nil {
		return eris.Wrap(err, "export: add comparisons sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Benchmark", "Core (ns)", "Commons (ns)", "Winner", "Speedup", "Partial"} {
		header.AddCell().Value = h
	}

	for _, c := range rpt.Comparisons {
		row := sheet.AddRow()
		row.AddCell().Value = c.Name
		row.AddCell().SetInt64(c.CoreNs)
		row.AddCell().SetInt64(c.CommonsNs)
		row.AddCell().Value = string(c.Winner)
		row.AddCell().SetFloat(c.Speedup)
		row.AddCell().SetBool(c.Partial)
	}
	return nil
}

func addUnpairedSheet(f *xlsx.File, name string, entries []model.UnpairedEntry) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add %s sheet", name)
	}

	header := sheet.AddRow()
	for _, h := range []string{"Benchmark", "Time (ns)", "Partial"} {
		header.AddCell().Value = h
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().Value = e.Name
		row.AddCell().SetInt64(e.TimingNs)
		row.AddCell().SetBool(e.Partial)
	}
	return nil
}
