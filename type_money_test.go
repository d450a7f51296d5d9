package recon

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyString(t *testing.T) {
	tests := []struct {
		value, cur   string
		want, signed string
	}{
		{"-500.00", "USD", "-$500.00", "-$500.00"},
		{"1234.5", "USD", "$1,234.50", "+$1,234.50"},
		{"500", "USD", "$500.00", "+$500.00"},
		{"0.125", "USD", "0.125 USD", "+0.125 USD"},
		{"1500", "JPY", "¥1,500", "+¥1,500"},
		{"12.50", "", "12.50", "+12.50"},
		{"0", "USD", "$0.00", "$0.00"},
	}
	for _, tt := range tests {
		m := M(decimal.RequireFromString(tt.value), tt.cur)
		if got := m.String(); got != tt.want {
			t.Errorf("M(%s, %q).String() = %q, want %q", tt.value, tt.cur, got, tt.want)
		}
		if got := m.SignedString(); got != tt.signed {
			t.Errorf("M(%s, %q).SignedString() = %q, want %q", tt.value, tt.cur, got, tt.signed)
		}
	}
}

func TestMoneySameCurrency(t *testing.T) {
	usd, eur, none := USD("1"), M(1, "EUR"), M(1, "")
	if !usd.SameCurrency(none) || !none.SameCurrency(eur) || !usd.SameCurrency(usd) {
		t.Error("SameCurrency() rejects a compatible pair")
	}
	if usd.SameCurrency(eur) {
		t.Error("SameCurrency(USD, EUR) = true")
	}
	if got := cur(none, usd); got != "USD" {
		t.Errorf("cur(\"\", USD) = %q, want USD", got)
	}
}
