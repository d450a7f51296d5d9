package recon

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const currencySymbols = "$€£¥₹"

var (
	plainNumber = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)
	// digit groups of an integer part once its separators are made ','.
	groupedDigits = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
)

// ParseAmount converts a statement amount into an exact decimal.
//
// Blanks (including non breaking spaces), currency symbols, ISO currency codes
// and ',' thousands separators are dropped. Separators must split the integer
// part in groups of three digits: "12,5" is malformed, not 125. Parentheses, a
// leading or trailing '-' and a "DR" suffix make the amount negative, "CR" and
// a leading '+' keep it positive. At most one sign marker is allowed.
// Whatever remains must be a plain number or a *MalformedAmountError is
// returned. The scale of the text is kept.
func ParseAmount(text string) (decimal.Decimal, error) {
	return parseAmount(text, '.', ',')
}

// ParseAmountComma is ParseAmount for the decimal comma notation ("1.234,56").
func ParseAmountComma(text string) (decimal.Decimal, error) {
	return parseAmount(text, ',', '.')
}

func parseAmount(text string, point, thousands rune) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) { // NBSP and narrow spaces included
			return -1
		}
		return r
	}, text)

	neg, signed := false, false
	for {
		before := s
		s = strings.Trim(s, currencySymbols)
		s = trimCurrencyCode(s)
		upper := strings.ToUpper(s)
		sign := true
		switch {
		case len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')':
			neg, s = true, s[1:len(s)-1]
		case strings.HasPrefix(s, "-"):
			neg, s = true, s[1:]
		case strings.HasSuffix(s, "-"):
			neg, s = true, s[:len(s)-1]
		case strings.HasPrefix(s, "+"):
			s = s[1:]
		case strings.HasSuffix(upper, "DR"):
			neg, s = true, s[:len(s)-2]
		case strings.HasSuffix(upper, "CR"):
			s = s[:len(s)-2]
		default:
			sign = false
		}
		if sign {
			if signed {
				return decimal.Zero, &MalformedAmountError{Text: text}
			}
			signed = true
		}
		if s == before {
			break
		}
	}

	if strings.ContainsRune(s, thousands) || strings.ContainsRune(s, '\'') {
		integer, _, _ := strings.Cut(s, string(point))
		integer = strings.NewReplacer(string(thousands), ",", "'", ",").Replace(integer)
		if !groupedDigits.MatchString(integer) {
			return decimal.Zero, &MalformedAmountError{Text: text}
		}
		s = strings.NewReplacer(string(thousands), "", "'", "").Replace(s)
	}
	if point != '.' {
		s = strings.ReplaceAll(s, string(point), ".")
	}
	if !plainNumber.MatchString(s) {
		return decimal.Zero, &MalformedAmountError{Text: text}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &MalformedAmountError{Text: text}
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// trimCurrencyCode removes an ISO 4217 code at either end of s.
func trimCurrencyCode(s string) string {
	if len(s) > 3 && isCode(s[:3]) {
		return s[3:]
	}
	if len(s) > 3 && isCode(s[len(s)-3:]) {
		return s[:len(s)-3]
	}
	return s
}

func isCode(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return KnownCurrency(s)
}
