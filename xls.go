//go:build !noxls

package recon

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
)

// SpreadsheetSupport tells whether spreadsheet statements can be read.
const SpreadsheetSupport = true

// readSpreadsheet decodes the first sheet of an xls workbook.
func readSpreadsheet(content []byte) (grid [][]Cell, err error) {
	// the decoder panics on some truncated workbooks
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("corrupt workbook: %v", r)
		}
	}()
	if bytes.HasPrefix(content, []byte("PK")) {
		return nil, errors.New("xlsx workbooks are not supported, save the statement as xls")
	}
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no sheet")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("cannot read the first sheet")
	}

	grid = make([][]Cell, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]Cell, row.LastCol())
		for j := range cells {
			cells[j] = typedCell(row.Col(j))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
