//go:build noxls

package recon

// SpreadsheetSupport tells whether spreadsheet statements can be read.
const SpreadsheetSupport = false

func readSpreadsheet([]byte) ([][]Cell, error) { return nil, errNoSpreadsheet }
