package recon

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/recon/date"
)

// ActivityType classifies a transaction when the source distinguishes it.
type ActivityType string

const (
	Dividend   ActivityType = "dividend"
	Interest   ActivityType = "interest"
	Trade      ActivityType = "trade"
	Transfer   ActivityType = "transfer"
	Fee        ActivityType = "fee"
	Deposit    ActivityType = "deposit"
	Withdrawal ActivityType = "withdrawal"
	Other      ActivityType = "other"
)

// Transaction is the canonical form of a statement row, whatever its format.
type Transaction struct {
	ImportID    string
	Institution string
	Row         int // row ordinal in the source
	Date        date.Date
	Description string
	Amount      Money // debits are negative

	AccountNumber string
	AccountName   string
	OtherParty    string

	// Security fields, for broker statements only.
	Symbol   string
	CUSIP    string
	Quantity *Quantity
	Price    *Money

	Activity ActivityType
	RawData  map[string]string
}

// RawRow rebuilds the source row of the transaction from RawData, so that it
// can be canonicalized again, for instance after normalization rules changed.
func (t Transaction) RawRow() RawRow {
	row := RawRow{Ordinal: t.Row, Cells: make(map[string]Cell, len(t.RawData))}
	for k, v := range t.RawData {
		row.Columns = append(row.Columns, k)
		row.Cells[k] = TextOf(v)
	}
	return row
}

// IsTrade reports whether the transaction carries both a quantity and a price.
func (t Transaction) IsTrade() bool { return t.Quantity != nil && t.Price != nil }

func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("importId", t.ImportID)
	w.Optional("institution", t.Institution)
	w.Append("row", t.Row)
	w.Append("date", t.Date)
	w.Optional("description", t.Description)
	w.EmbedFrom(t.Amount)
	w.Optional("account", t.AccountNumber)
	w.Optional("accountName", t.AccountName)
	w.Optional("otherParty", t.OtherParty)
	w.Optional("symbol", t.Symbol)
	w.Optional("cusip", t.CUSIP)
	w.Optional("quantity", t.Quantity)
	if t.Price != nil {
		w.Append("price", t.Price.Exact())
	}
	w.Optional("activity", t.Activity)
	w.Optional("raw", t.RawData)
	return w.MarshalJSON()
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	var j struct {
		ImportID    string            `json:"importId"`
		Institution string            `json:"institution"`
		Row         int               `json:"row"`
		Date        date.Date         `json:"date"`
		Description string            `json:"description"`
		Currency    string            `json:"currency"`
		Amount      string            `json:"amount"`
		Account     string            `json:"account"`
		AccountName string            `json:"accountName"`
		OtherParty  string            `json:"otherParty"`
		Symbol      string            `json:"symbol"`
		CUSIP       string            `json:"cusip"`
		Quantity    *Quantity         `json:"quantity"`
		Price       string            `json:"price"`
		Activity    ActivityType      `json:"activity"`
		Raw         map[string]string `json:"raw"`
	}
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	if j.ImportID == "" {
		return fmt.Errorf("transaction has no importId")
	}
	amount, err := ParseMoney(j.Amount, j.Currency)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", j.ImportID, err)
	}
	*t = Transaction{
		ImportID:      j.ImportID,
		Institution:   j.Institution,
		Row:           j.Row,
		Date:          j.Date,
		Description:   j.Description,
		Amount:        amount,
		AccountNumber: j.Account,
		AccountName:   j.AccountName,
		OtherParty:    j.OtherParty,
		Symbol:        j.Symbol,
		CUSIP:         j.CUSIP,
		Quantity:      j.Quantity,
		Activity:      j.Activity,
		RawData:       j.Raw,
	}
	if j.Price != "" {
		p, err := ParseMoney(j.Price, j.Currency)
		if err != nil {
			return fmt.Errorf("transaction %s: price: %w", j.ImportID, err)
		}
		t.Price = &p
	}
	return nil
}

// activityKeywords is searched in order, the first keyword found in the
// activity column (or the description) wins.
var activityKeywords = []struct {
	activity ActivityType
	words    []string
}{
	{Dividend, []string{"dividend", "div", "reinvest", "reinvestment", "cap gain", "cglong", "cgshort"}},
	{Interest, []string{"interest", "int", "credit interest", "bank interest"}},
	{Fee, []string{"fee", "fees", "srvchg", "service charge", "commission", "adr mgmt fee"}},
	{Transfer, []string{"transfer", "xfer", "journal", "moneylink transfer", "wire", "wire transfer", "wire_outgoing", "wire_incoming"}},
	{Trade, []string{"buy", "sell", "bought", "sold", "buystock", "sellstock", "buymf", "sellmf", "buyother", "sellother", "you bought", "you sold"}},
	{Deposit, []string{"deposit", "dep", "directdep", "direct deposit", "credit", "ach_credit"}},
	{Withdrawal, []string{"withdrawal", "atm", "debit", "check", "payment", "pos", "debit_card", "ach_debit", "directdebit"}},
}

// Classify returns the activity named by text, or "" when none is.
func Classify(text string) ActivityType {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	if len(words) == 0 {
		return ""
	}
	joined := " " + strings.Join(words, " ") + " "
	for _, k := range activityKeywords {
		for _, w := range k.words {
			if strings.Contains(joined, " "+w+" ") {
				return k.activity
			}
		}
	}
	return ""
}
