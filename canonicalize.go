package recon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/recon/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// importNamespace is the UUID namespace of import ids. Changing it changes
// every import id.
var importNamespace = uuid.MustParse("8d3b3f0e-4c1a-5e0b-9a57-6f2f1c9d7e21")

// defaultTolerance is the minimum tolerance of the trade check.
var defaultTolerance = decimal.New(1, -2)

// ImportID returns the import identity of a transaction: a name based UUID
// over its institution, account, date, amount, description and row ordinal.
// The amount is normalized so that "-500" and "-500.00" give the same id.
func ImportID(institution, account string, on date.Date, amount decimal.Decimal, description string, row int) string {
	key := strings.Join([]string{
		institution,
		account,
		on.String(),
		amount.String(),
		description,
		strconv.Itoa(row),
	}, "\x1f")
	return uuid.NewSHA1(importNamespace, []byte(key)).String()
}

// Canonicalize converts a raw row into a transaction. Any failure is a
// *RowParseError naming the offending field.
func Canonicalize(row RawRow, ctx ImportContext) (Transaction, error) {
	cols := ctx.Columns
	fail := func(field string, err error) (Transaction, error) {
		return Transaction{}, &RowParseError{Row: row.Ordinal, Field: field, Err: err}
	}

	tx := Transaction{
		Institution: ctx.Institution,
		Row:         row.Ordinal,
		Description: strings.Join(strings.Fields(row.Text(cols.Description)), " "),
		AccountName: row.Text(cols.AccountName),
		OtherParty:  row.Text(cols.OtherParty),
		Symbol:      strings.ToUpper(row.Text(cols.Symbol)),
		CUSIP:       strings.ToUpper(row.Text(cols.CUSIP)),
		RawData:     rawData(row, ctx),
	}
	if tx.AccountName == "" {
		tx.AccountName = ctx.AccountName
	}

	// date
	c, ok := row.Cell(cols.Date)
	if !ok {
		return fail("date", errMissing)
	}
	if c.Kind == DateCell {
		tx.Date = c.Date
	} else {
		d, err := date.Normalize(c.Text, ctx.DateHint)
		if err != nil {
			return fail("date", err)
		}
		tx.Date = d
	}

	// account
	tx.AccountNumber = ctx.Account
	if acct := row.Text(cols.Account); acct != "" {
		a, err := ExtractAccount(acct)
		if err != nil {
			return fail("account", err)
		}
		tx.AccountNumber = a
	}

	// currency
	cur := strings.ToUpper(row.Text(cols.Currency))
	if cur == "" {
		cur = strings.ToUpper(ctx.Currency)
	}
	if cur != "" && !KnownCurrency(cur) {
		return fail("currency", fmt.Errorf("unknown currency %q", cur))
	}

	// amount
	amount, field, err := rowAmount(row, ctx)
	if err != nil {
		return fail(field, err)
	}
	tx.Amount = Money{value: amount, cur: cur}

	// security
	if c, ok := row.Cell(cols.Quantity); ok {
		q, err := cellNumber(c, ctx)
		if err != nil {
			return fail("quantity", err)
		}
		tx.Quantity = &Quantity{value: q}
	}
	if c, ok := row.Cell(cols.Price); ok {
		p, err := cellNumber(c, ctx)
		if err != nil {
			return fail("price", err)
		}
		tx.Price = &Money{value: p, cur: cur}
	}
	if tx.IsTrade() {
		var fees decimal.Decimal
		if c, ok := row.Cell(cols.Fees); ok {
			if fees, err = cellNumber(c, ctx); err != nil {
				return fail("fees", err)
			}
		}
		if err := checkTrade(amount, tx.Quantity.value, tx.Price.value, fees, ctx.Tolerance); err != nil {
			return fail("amount", err)
		}
	}

	// activity
	if text := row.Text(cols.Activity); text != "" {
		tx.Activity = Classify(text)
		if tx.Activity == "" {
			tx.Activity = Other
		}
	} else {
		tx.Activity = Classify(tx.Description)
	}
	if tx.Activity == "" && tx.IsTrade() {
		tx.Activity = Trade
	}

	tx.ImportID = ImportID(tx.Institution, tx.AccountNumber, tx.Date, amount, tx.Description, tx.Row)
	return tx, nil
}

// rowAmount reads the signed amount of a row: the amount column, or the
// debit and credit columns, then the sign column if any.
func rowAmount(row RawRow, ctx ImportContext) (decimal.Decimal, string, error) {
	cols := ctx.Columns
	var amount decimal.Decimal
	if c, ok := row.Cell(cols.Amount); ok {
		a, err := cellNumber(c, ctx)
		if err != nil {
			return amount, "amount", err
		}
		amount = a
	} else {
		debit, hasDebit := row.Cell(cols.Debit)
		credit, hasCredit := row.Cell(cols.Credit)
		if !hasDebit && !hasCredit {
			return amount, "amount", errMissing
		}
		if hasCredit {
			a, err := cellNumber(credit, ctx)
			if err != nil {
				return amount, "credit", err
			}
			amount = a.Abs()
		}
		if hasDebit {
			a, err := cellNumber(debit, ctx)
			if err != nil {
				return amount, "debit", err
			}
			if hasCredit {
				amount = amount.Sub(a.Abs())
			} else {
				amount = a.Abs().Neg()
			}
		}
	}

	switch strings.ToUpper(row.Text(cols.Sign)) {
	case "DEBIT", "DR", "D", "WITHDRAWAL":
		amount = amount.Abs().Neg()
	case "CREDIT", "CR", "C", "DEPOSIT":
		amount = amount.Abs()
	}
	return amount, "", nil
}

// rawData returns the row as text, typed numbers written in the statement's
// notation so that the text reads back to the same values.
func rawData(row RawRow, ctx ImportContext) map[string]string {
	data := row.Data()
	if ctx.DecimalComma {
		for k, c := range row.Cells {
			if c.Kind == NumberCell {
				data[k] = strings.ReplaceAll(c.String(), ".", ",")
			}
		}
	}
	return data
}

func cellNumber(c Cell, ctx ImportContext) (decimal.Decimal, error) {
	if c.Kind == NumberCell {
		return c.Number, nil
	}
	if ctx.DecimalComma {
		return ParseAmountComma(c.Text)
	}
	return ParseAmount(c.Text)
}

// checkTrade checks that |amount| is |quantity × price|, with or without the
// fees, within one unit of the amount's last digit (and at least minTol, or
// 0.01).
func checkTrade(amount, quantity, price, fees, minTol decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	tol := decimal.New(1, amount.Exponent())
	if amount.Exponent() > 0 {
		tol = decimal.New(1, 0)
	}
	if minTol.IsZero() {
		minTol = defaultTolerance
	}
	if tol.LessThan(minTol) {
		tol = minTol
	}
	diff := amount.Abs().Sub(quantity.Mul(price).Abs()).Abs()
	if diff.GreaterThan(tol) && diff.Sub(fees.Abs()).Abs().GreaterThan(tol) {
		err := &TradeMismatchError{Amount: exactString(amount), Quantity: exactString(quantity), Price: exactString(price)}
		if !fees.IsZero() {
			err.Fees = exactString(fees)
		}
		return err
	}
	return nil
}
