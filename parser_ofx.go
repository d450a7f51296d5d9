package recon

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/aclindsa/ofxgo"
	"github.com/charmbracelet/log"
	"github.com/etnz/recon/date"
)

// OFXParser reads OFX and QFX statements, both the SGML (v1) and the XML
// (v2) flavours, for bank, credit card and investment accounts.
//
// Documents are decoded with ofxgo. Those it rejects, incomplete headers or a
// single malformed value, are read again from their tag tree so the valid
// rows are still imported.
type OFXParser struct{}

func (*OFXParser) Name() string { return "ofx" }

func (*OFXParser) Detect(src *Source) float64 {
	head := strings.ToUpper(src.Text())
	if len(head) > 4096 {
		head = head[:4096]
	}
	if !strings.Contains(head, "<OFX>") {
		return 0
	}
	conf := 0.6
	if strings.Contains(head, "OFXHEADER") {
		conf += 0.3
	}
	if strings.Contains(head, "<STMTTRN>") || strings.Contains(head, "<INVSTMTRS>") || strings.Contains(head, "MSGSRSV1>") {
		conf += 0.1
	}
	if src.HasHint(".ofx", ".qfx", "application/x-ofx", "application/vnd.intu.qfx") {
		conf += 0.1
	}
	return conf
}

// ofx column names.
const (
	ofxDate     = "DATE"
	ofxAmount   = "AMOUNT"
	ofxName     = "NAME"
	ofxMemo     = "MEMO"
	ofxType     = "TYPE"
	ofxFITID    = "FITID"
	ofxSymbol   = "TICKER"
	ofxCUSIP    = "CUSIP"
	ofxUnits    = "UNITS"
	ofxPrice    = "UNITPRICE"
	ofxFees     = "FEES"
	ofxCurrency = "CURRENCY"
)

var ofxColumns = []string{ofxDate, ofxType, ofxName, ofxMemo, ofxAmount, ofxFITID, ofxSymbol, ofxCUSIP, ofxUnits, ofxPrice, ofxFees, ofxCurrency}

// investment transaction aggregates.
var ofxTrades = map[string]bool{
	"BUYSTOCK": true, "SELLSTOCK": true,
	"BUYMF": true, "SELLMF": true,
	"BUYOTHER": true, "SELLOTHER": true,
}

func (p *OFXParser) Parse(src *Source) (*Statement, error) {
	resp, err := ofxgo.ParseResponse(bytes.NewReader(src.Content))
	if err == nil {
		if st := ofxStatement(resp); st != nil {
			return st, nil
		}
		err = fmt.Errorf("no bank, credit card or investment statement")
	}
	log.Debug("reading OFX from its tags", "hint", src.Hint, "reason", err)
	return ofxTagStatement(src.Text())
}

// newOFXStatement returns an empty statement of the financial institution
// org, with the OFX column map.
func newOFXStatement(org string) *Statement {
	st := &Statement{Context: ImportContext{
		Institution: "ofx",
		Columns: ColumnMap{
			Date:        ofxDate,
			Amount:      ofxAmount,
			Description: ofxName,
			OtherParty:  ofxName,
			Activity:    ofxType,
			Symbol:      ofxSymbol,
			CUSIP:       ofxCUSIP,
			Quantity:    ofxUnits,
			Price:       ofxPrice,
			Fees:        ofxFees,
			Currency:    ofxCurrency,
		},
	}}
	if org = strings.TrimSpace(org); org != "" {
		st.Context.Institution = strings.ToLower(org)
	}
	return st
}

// ofxStatement maps a decoded response into a statement, or returns nil when
// it holds no statement. The first account and currency define the context.
func ofxStatement(resp *ofxgo.Response) *Statement {
	st := newOFXStatement(resp.Signon.Org.String())
	found := false
	account := func(id ofxgo.String, cur string) {
		if !found {
			st.Context.Account, st.Context.Currency = id.String(), cur
		}
		found = true
	}
	add := func(row map[string]Cell) {
		st.Rows = append(st.Rows, RawRow{Ordinal: len(st.Rows) + 1, Columns: ofxColumns, Cells: row})
	}
	addBank := func(list *ofxgo.TransactionList, cur string) {
		if list == nil {
			return
		}
		for _, tr := range list.Transactions {
			add(ofxBankTransaction(tr, cur))
		}
	}

	for _, msg := range resp.Bank {
		if s, ok := msg.(*ofxgo.StatementResponse); ok {
			cur := ofxCurrencyCode(s.CurDef)
			account(s.BankAcctFrom.AcctID, cur)
			addBank(s.BankTranList, cur)
		}
	}
	for _, msg := range resp.CreditCard {
		if s, ok := msg.(*ofxgo.CCStatementResponse); ok {
			cur := ofxCurrencyCode(s.CurDef)
			account(s.CCAcctFrom.AcctID, cur)
			addBank(s.BankTranList, cur)
		}
	}
	tickers := ofxTickers(resp)
	for _, msg := range resp.InvStmt {
		s, ok := msg.(*ofxgo.InvStatementResponse)
		if !ok {
			continue
		}
		cur := ofxCurrencyCode(s.CurDef)
		account(s.InvAcctFrom.AcctID, cur)
		if s.InvTranList == nil {
			continue
		}
		for _, tr := range s.InvTranList.InvTransactions {
			if row := ofxInvestTransaction(tr, tickers, cur); row != nil {
				add(row)
			}
		}
		for _, b := range s.InvTranList.BankTransactions {
			for _, tr := range b.Transactions {
				add(ofxBankTransaction(tr, cur))
			}
		}
	}
	if !found {
		return nil
	}
	return st
}

func ofxBankTransaction(tr ofxgo.Transaction, cur string) map[string]Cell {
	name := tr.Name.String()
	if name == "" && tr.Payee != nil {
		name = tr.Payee.Name.String()
	}
	if name == "" {
		name = tr.Memo.String()
	}
	code := ""
	if tr.Currency != nil {
		code = ofxCurrencyCode(tr.Currency.CurSym)
	}
	return map[string]Cell{
		ofxDate:     ofxDay(tr.DtPosted),
		ofxType:     TextOf(tr.TrnType.String()),
		ofxName:     TextOf(name),
		ofxMemo:     TextOf(tr.Memo.String()),
		ofxAmount:   ofxAmountCell(tr.TrnAmt, firstOf(code, cur)),
		ofxFITID:    TextOf(tr.FiTID.String()),
		ofxCurrency: TextOf(code),
	}
}

// ofxTrade holds what investment transactions have in common.
type ofxTrade struct {
	kind     string
	tran     ofxgo.InvTran
	security ofxgo.SecurityID
	units    *ofxgo.Amount
	price    *ofxgo.Amount
	total    ofxgo.Amount
	fees     []ofxgo.Amount
	currency *ofxgo.Currency
}

func ofxBuy(kind string, b ofxgo.InvBuy) ofxTrade {
	return ofxTrade{
		kind: kind, tran: b.InvTran, security: b.SecID,
		units: &b.Units, price: &b.UnitPrice, total: b.Total,
		fees:     []ofxgo.Amount{b.Commission, b.Fees, b.Taxes, b.Load},
		currency: &b.Currency,
	}
}

func ofxSell(kind string, s ofxgo.InvSell) ofxTrade {
	return ofxTrade{
		kind: kind, tran: s.InvTran, security: s.SecID,
		units: &s.Units, price: &s.UnitPrice, total: s.Total,
		fees:     []ofxgo.Amount{s.Commission, s.Fees, s.Taxes, s.Load},
		currency: &s.Currency,
	}
}

// ofxInvestTransaction maps trades, income and reinvestments. Other
// investment transactions (transfers of securities, splits) move no cash and
// are skipped.
func ofxInvestTransaction(tr ofxgo.InvTransaction, tickers map[string]string, cur string) map[string]Cell {
	var t ofxTrade
	switch x := tr.(type) {
	case ofxgo.BuyStock:
		t = ofxBuy(x.TransactionType(), x.InvBuy)
	case ofxgo.BuyMF:
		t = ofxBuy(x.TransactionType(), x.InvBuy)
	case ofxgo.BuyOther:
		t = ofxBuy(x.TransactionType(), x.InvBuy)
	case ofxgo.SellStock:
		t = ofxSell(x.TransactionType(), x.InvSell)
	case ofxgo.SellMF:
		t = ofxSell(x.TransactionType(), x.InvSell)
	case ofxgo.SellOther:
		t = ofxSell(x.TransactionType(), x.InvSell)
	case ofxgo.Income:
		t = ofxTrade{
			kind: x.TransactionType() + " " + x.IncomeType.String(),
			tran: x.InvTran, security: x.SecID, total: x.Total, currency: &x.Currency,
		}
	case ofxgo.Reinvest:
		t = ofxTrade{
			kind: x.TransactionType() + " " + x.IncomeType.String(),
			tran: x.InvTran, security: x.SecID,
			units: &x.Units, price: &x.UnitPrice, total: x.Total,
			fees:     []ofxgo.Amount{x.Commission, x.Fees, x.Taxes, x.Load},
			currency: &x.Currency,
		}
	default:
		return nil
	}

	code := ""
	if t.currency != nil {
		code = ofxCurrencyCode(t.currency.CurSym)
	}
	cur = firstOf(code, cur)
	cusip := t.security.UniqueID.String()
	memo := t.tran.Memo.String()
	name := memo
	if name == "" {
		name = strings.TrimSpace(t.kind + " " + tickers[cusip])
	}
	row := map[string]Cell{
		ofxDate:     ofxDay(t.tran.DtTrade),
		ofxType:     TextOf(t.kind),
		ofxName:     TextOf(name),
		ofxMemo:     TextOf(memo),
		ofxAmount:   ofxAmountCell(t.total, cur),
		ofxFITID:    TextOf(t.tran.FiTID.String()),
		ofxSymbol:   TextOf(tickers[cusip]),
		ofxCUSIP:    TextOf(cusip),
		ofxCurrency: TextOf(code),
	}
	if t.units != nil {
		row[ofxUnits] = ofxNumberCell(ofxDecimalText(t.units))
	}
	if t.price != nil {
		row[ofxPrice] = ofxAmountCell(*t.price, cur)
	}
	var fees ofxgo.Amount
	for _, f := range t.fees {
		fees.Add(&fees.Rat, &f.Rat)
	}
	if fees.Sign() != 0 {
		row[ofxFees] = ofxAmountCell(fees, cur)
	}
	return row
}

// ofxTickers maps the CUSIPs of the security list to their ticker.
func ofxTickers(resp *ofxgo.Response) map[string]string {
	tickers := make(map[string]string)
	for _, msg := range resp.SecList {
		list, ok := msg.(*ofxgo.SecurityList)
		if !ok {
			continue
		}
		for _, sec := range list.Securities {
			var info ofxgo.SecInfo
			switch s := sec.(type) {
			case ofxgo.StockInfo:
				info = s.SecInfo
			case ofxgo.MFInfo:
				info = s.SecInfo
			case ofxgo.DebtInfo:
				info = s.SecInfo
			case ofxgo.OptInfo:
				info = s.SecInfo
			case ofxgo.OtherInfo:
				info = s.SecInfo
			default:
				continue
			}
			if id, ticker := info.SecID.UniqueID.String(), info.Ticker.String(); id != "" && ticker != "" {
				tickers[id] = ticker
			}
		}
	}
	return tickers
}

// ofxCurrencyCode returns the ISO code of an OFX currency, "" when unset.
func ofxCurrencyCode(c fmt.Stringer) string {
	code := strings.ToUpper(strings.TrimSpace(c.String()))
	if code == "XXX" {
		return ""
	}
	return code
}

func ofxDay(d ofxgo.Date) Cell {
	if d.IsZero() {
		return TextOf("")
	}
	return DateOf(date.Of(d.Time))
}

// ofxDecimalText returns the shortest exact decimal text of an amount.
func ofxDecimalText(a *ofxgo.Amount) string {
	s := a.FloatString(18)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// ofxAmountCell returns an amount with at least the decimals of the minor
// unit of its currency, since ofxgo keeps values, not their text.
func ofxAmountCell(a ofxgo.Amount, cur string) Cell {
	scale := 2
	if c := money.GetCurrency(cur); c != nil {
		scale = c.Fraction
	}
	s := ofxDecimalText(&a)
	if _, frac, _ := strings.Cut(s, "."); len(frac) < scale {
		s = a.FloatString(scale)
	}
	return ofxNumberCell(s)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
