package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

// SheetName is the worksheet written by the xlsx format.
const SheetName = "leaderboard"

func writeXLSX(w io.Writer, entries []leaderboard.Entry, layout Layout) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}

	for _, e := range arrange(entries, layout) {
		row := sheet.AddRow()
		row.AddCell().SetString(e.Address)
		cell := row.AddCell()
		if v, err := e.Points.Float64(); err == nil {
			cell.SetFloat(v)
		} else {
			cell.SetString(e.Points.String())
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write")
	}
	return nil
}
