package refdata

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readSheet reads the first sheet of an XLSX file as string rows.
func readSheet(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("refdata: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

// headerIndex maps required column names to their positions in the header
// row. Any missing column fails the whole load.
func headerIndex(header []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, eris.Errorf("refdata: missing required column %q", name)
		}
	}

	return idx, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func readCatalogXLSX(path string) ([]catalogRow, error) {
	rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("refdata: %s is empty", path)
	}

	idx, err := headerIndex(rows[0], catalogColumns)
	if err != nil {
		return nil, err
	}

	out := make([]catalogRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, catalogRow{
			ItemNo:   cellAt(row, idx[colCatItemNo]),
			WineName: cellAt(row, idx[colCatWineName]),
			Producer: cellAt(row, idx[colCatProducer]),
			Vintage:  cellAt(row, idx[colCatVintage]),
			Size:     cellAt(row, idx[colCatSize]),
		})
	}

	return out, nil
}

func readOfferXLSX(path string) ([]offerRow, error) {
	rows, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("refdata: %s is empty", path)
	}

	idx, err := headerIndex(rows[0], offerColumns)
	if err != nil {
		return nil, err
	}

	out := make([]offerRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, offerRow{
			ItemNo:      cellAt(row, idx[colOfferItemNo]),
			UnitPrice:   cellAt(row, idx[colOfferUnitPrice]),
			EURPrice:    cellAt(row, idx[colOfferEURPrice]),
			MinQuantity: cellAt(row, idx[colOfferMinQty]),
			Campaign:    cellAt(row, idx[colOfferType]),
			SubType:     cellAt(row, idx[colOfferSubType]),
			Status:      cellAt(row, idx[colOfferStatus]),
			Competitor:  cellAt(row, idx[colOfferCompetitor]),
			Schedule:    cellAt(row, idx[colOfferSchedule]),
		})
	}

	return out, nil
}
