package recon

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is reported when a statement has no content at all.
var ErrEmptyInput = errors.New("empty input")

// UnrecognizedFormatError is returned when no parser claims a statement with
// enough confidence. It is fatal for the whole file.
type UnrecognizedFormatError struct {
	Best       string  // best scoring parser, if any
	Confidence float64 // its confidence
	Reason     error
}

func (e *UnrecognizedFormatError) Error() string {
	msg := "unrecognized statement format"
	if e.Best != "" {
		msg += fmt.Sprintf(" (best guess %q at %.2f)", e.Best, e.Confidence)
	}
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	return msg
}

func (e *UnrecognizedFormatError) Unwrap() error { return e.Reason }

// RowParseError reports a single row that could not be turned into a
// transaction. Processing of the other rows goes on.
type RowParseError struct {
	Row   int    // row ordinal in the source
	Field string // column role at fault, empty for whole row problems
	Err   error
}

func (e *RowParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Field, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }

// MalformedAmountError is returned when an amount text holds anything but a
// number once separators, currency marks and sign markers are removed.
type MalformedAmountError struct {
	Text string
}

func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount %q", e.Text)
}

// TradeMismatchError is the cause of the RowParseError raised when a trade
// amount does not agree with quantity times price.
type TradeMismatchError struct {
	Amount, Quantity, Price, Fees string
}

func (e *TradeMismatchError) Error() string {
	msg := fmt.Sprintf("amount %s does not match quantity %s × price %s", e.Amount, e.Quantity, e.Price)
	if e.Fees != "" {
		msg += " with fees " + e.Fees
	}
	return msg
}

// DuplicateScope tells where a duplicate import id was already seen.
type DuplicateScope string

const (
	ScopeBatch    DuplicateScope = "batch"    // earlier in the same batch
	ScopePrevious DuplicateScope = "previous" // in a previous import
)

// DuplicateImportError is an informational diagnostic for a row skipped
// because its import id was already imported.
type DuplicateImportError struct {
	Row      int
	ImportID string
	Scope    DuplicateScope
}

func (e *DuplicateImportError) Error() string {
	return fmt.Sprintf("row %d: duplicate import %s (%s)", e.Row, e.ImportID, e.Scope)
}

// errMissing is the cause of RowParseErrors for required fields left blank.
var errMissing = errors.New("missing value")
