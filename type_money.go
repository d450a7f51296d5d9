package recon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a signed monetary amount.
//
// The value keeps the scale it was read with: "-500.00" is stored with two
// decimals and written back as "-500.00".
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses an exact decimal string like "-500.00" in currency cur.
func ParseMoney(s, cur string) (Money, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: v, cur: cur}, nil
}

// KnownCurrency reports whether code is an ISO 4217 currency code.
func KnownCurrency(code string) bool { return money.GetCurrency(code) != nil }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the display representation of the money value, with the
// symbol and separators of its currency. Values of an unknown currency, or
// with more decimals than its minor unit, are shown exactly with their code.
func (m Money) String() string {
	if !KnownCurrency(m.cur) {
		return strings.TrimSpace(m.Exact() + " " + m.cur)
	}
	c := m.currency()
	if -m.value.Exponent() > int32(c.Fraction) {
		return m.Exact() + " " + m.cur
	}
	return c.Formatter().Format(m.value.Shift(int32(c.Fraction)).IntPart())
}

// SignedString returns the string representation of the money value with a sign.
func (m Money) SignedString() string {
	if m.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Exact returns the value with the scale it was read with, without currency.
func (m Money) Exact() string { return exactString(m.value) }

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Neg() Money               { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money               { return Money{value: m.value.Abs(), cur: m.cur} }

// SameCurrency reports whether m and n can be compared. The empty currency is
// unknown and matches any other.
func (m Money) SameCurrency(n Money) bool { return m.cur == "" || n.cur == "" || m.cur == n.cur }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	return A.cur
}

// key identifies the value regardless of its scale and currency: -500 and
// -500.00 share a key. Currencies are compared with SameCurrency.
func (m Money) key() string { return m.value.String() }

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.Exact())
	return w.MarshalJSON()
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var j struct {
		Currency string `json:"currency"`
		Amount   string `json:"amount"`
	}
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	v, err := ParseMoney(j.Amount, j.Currency)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// exactString formats d keeping its exponent, unlike d.String which trims zeros.
func exactString(d decimal.Decimal) string {
	if d.Exponent() >= 0 {
		return d.StringFixed(0)
	}
	return d.StringFixed(-d.Exponent())
}
