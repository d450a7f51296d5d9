package recon

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/recon/date"
)

// ofxTagStatement reads an OFX document from its tag tree. Unlike ofxgo it
// accepts incomplete headers and aggregates, and keeps rows whose values do
// not parse so they are reported one by one.
func ofxTagStatement(text string) (*Statement, error) {
	root, err := parseTagTree(text)
	if err != nil {
		return nil, err
	}

	org := ""
	if n := root.find("FI", "ORG"); n != nil {
		org = n.text
	}
	st := newOFXStatement(org)
	for _, from := range []string{"BANKACCTFROM", "CCACCTFROM", "INVACCTFROM"} {
		if id := root.find(from, "ACCTID"); id != nil {
			st.Context.Account = id.text
			break
		}
	}
	if cur := root.find("CURDEF"); cur != nil {
		st.Context.Currency = strings.ToUpper(cur.text)
	}

	tickers := make(map[string]string) // CUSIP → ticker
	for _, info := range root.all("SECINFO") {
		id, ticker := info.value("SECID", "UNIQUEID"), info.value("TICKER")
		if id != "" && ticker != "" {
			tickers[id] = ticker
		}
	}

	ordinal := 0
	root.walk(func(n *tagNode) bool {
		var row map[string]Cell
		switch {
		case n.name == "STMTTRN":
			row = ofxBankRow(n)
		case ofxTrades[n.name], n.name == "INCOME", n.name == "REINVEST":
			row = ofxInvestRow(n, tickers)
		default:
			return true
		}
		ordinal++
		st.Rows = append(st.Rows, RawRow{Ordinal: ordinal, Columns: ofxColumns, Cells: row})
		return false
	})
	return st, nil
}

func ofxBankRow(n *tagNode) map[string]Cell {
	name := n.value("NAME")
	if name == "" {
		name = n.value("PAYEE", "NAME")
	}
	if name == "" {
		name = n.value("MEMO")
	}
	return map[string]Cell{
		ofxDate:     ofxDateCell(n.value("DTPOSTED")),
		ofxType:     TextOf(n.value("TRNTYPE")),
		ofxName:     TextOf(name),
		ofxMemo:     TextOf(n.value("MEMO")),
		ofxAmount:   ofxNumberCell(n.value("TRNAMT")),
		ofxFITID:    TextOf(n.value("FITID")),
		ofxCurrency: TextOf(n.value("CURRENCY", "CURSYM")),
	}
}

func ofxInvestRow(n *tagNode, tickers map[string]string) map[string]Cell {
	cusip := n.deepValue("SECID", "UNIQUEID")
	typ := n.name
	if income := n.deepValue("INCOMETYPE"); income != "" {
		typ += " " + income
	}
	memo := n.deepValue("INVTRAN", "MEMO")
	name := memo
	if name == "" {
		name = strings.TrimSpace(typ + " " + tickers[cusip])
	}
	row := map[string]Cell{
		ofxDate:     ofxDateCell(n.deepValue("INVTRAN", "DTTRADE")),
		ofxType:     TextOf(typ),
		ofxName:     TextOf(name),
		ofxMemo:     TextOf(memo),
		ofxAmount:   ofxNumberCell(n.deepValue("TOTAL")),
		ofxFITID:    TextOf(n.deepValue("INVTRAN", "FITID")),
		ofxSymbol:   TextOf(tickers[cusip]),
		ofxCUSIP:    TextOf(cusip),
		ofxCurrency: TextOf(n.deepValue("CURRENCY", "CURSYM")),
	}
	if units := n.deepValue("UNITS"); units != "" {
		row[ofxUnits] = ofxNumberCell(units)
	}
	if price := n.deepValue("UNITPRICE"); price != "" {
		row[ofxPrice] = ofxNumberCell(price)
	}
	var fees []string
	for _, f := range []string{"COMMISSION", "FEES", "TAXES", "LOAD"} {
		if v := n.deepValue(f); v != "" {
			fees = append(fees, v)
		}
	}
	if len(fees) > 0 {
		total, err := sumAmounts(fees)
		if err == nil {
			row[ofxFees] = total
		} else {
			row[ofxFees] = TextOf(strings.Join(fees, "+"))
		}
	}
	return row
}

func sumAmounts(texts []string) (Cell, error) {
	var c Cell
	for i, t := range texts {
		d, err := ParseAmount(t)
		if err != nil {
			return c, err
		}
		if i == 0 {
			c = NumberOf(d)
			continue
		}
		c = NumberOf(c.Number.Add(d))
	}
	return c, nil
}

var ofxDigits = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})`)

// ofxDateCell reads an OFX datetime (YYYYMMDD[HHMMSS[.XXX]][[gmt offset:tz]])
// as a typed date. Only the calendar day is kept.
func ofxDateCell(s string) Cell {
	m := ofxDigits.FindStringSubmatch(s)
	if m == nil {
		return TextOf(s)
	}
	t, err := time.Parse("20060102", m[1]+m[2]+m[3])
	if err != nil {
		return TextOf(s)
	}
	return DateOf(date.Of(t))
}

// ofxNumberCell reads an OFX amount as a typed number, keeping the text when
// it does not read as one.
func ofxNumberCell(s string) Cell {
	d, err := ParseAmount(s)
	if err != nil {
		return TextOf(s)
	}
	return Cell{Kind: NumberCell, Number: d, Text: strings.TrimSpace(s)}
}

// tagNode is an element of an OFX document.
type tagNode struct {
	name     string
	text     string
	children []*tagNode
}

// find returns the first descendant at the end of path, in document order.
// Path elements need not be direct children.
func (n *tagNode) find(path ...string) *tagNode {
	if len(path) == 0 {
		return n
	}
	var found *tagNode
	n.walk(func(c *tagNode) bool {
		if found != nil {
			return false
		}
		if c != n && c.name == path[0] {
			found = c.find(path[1:]...)
		}
		return found == nil
	})
	return found
}

// all returns every descendant called name.
func (n *tagNode) all(name string) []*tagNode {
	var nodes []*tagNode
	n.walk(func(c *tagNode) bool {
		if c != n && c.name == name {
			nodes = append(nodes, c)
			return false
		}
		return true
	})
	return nodes
}

// value returns the text of a direct child path.
func (n *tagNode) value(path ...string) string {
	c := n
	for _, p := range path {
		var next *tagNode
		for _, x := range c.children {
			if x.name == p {
				next = x
				break
			}
		}
		if next == nil {
			return ""
		}
		c = next
	}
	return c.text
}

// deepValue returns the text of a descendant path.
func (n *tagNode) deepValue(path ...string) string {
	if c := n.find(path...); c != nil {
		return c.text
	}
	return ""
}

// walk visits n and its descendants depth first, not descending where visit
// returns false.
func (n *tagNode) walk(visit func(*tagNode) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.walk(visit)
	}
}

var ofxTag = regexp.MustCompile(`<(/?)([A-Za-z0-9_.]+)[^>]*?(/?)>`)

// parseTagTree builds the element tree of an OFX document.
//
// SGML OFX omits most closing tags so the tree is rebuilt from these rules:
// an element with text is a leaf and closes when any tag opens; an element
// closes when a sibling of the same name opens, or when it or one of its
// ancestors is closed. Closing tags that match no open element are ignored.
func parseTagTree(text string) (*tagNode, error) {
	start := strings.Index(strings.ToUpper(text), "<OFX>")
	if start < 0 {
		return nil, fmt.Errorf("no <OFX> element")
	}
	text = text[start:]

	root := &tagNode{}
	stack := []*tagNode{root}
	top := func() *tagNode { return stack[len(stack)-1] }

	pos := 0
	for _, loc := range ofxTag.FindAllStringSubmatchIndex(text, -1) {
		if t := strings.TrimSpace(text[pos:loc[0]]); t != "" && len(stack) > 1 {
			n := top()
			if n.text != "" {
				n.text += " "
			}
			n.text += ofxUnescape(t)
		}
		pos = loc[1]

		closing := loc[3] > loc[2]
		name := strings.ToUpper(text[loc[4]:loc[5]])
		selfClosing := loc[7] > loc[6]

		if closing {
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].name == name {
					stack = stack[:i]
					break
				}
			}
			continue
		}

		if n := top(); len(stack) > 1 && n.text != "" && len(n.children) == 0 {
			stack = stack[:len(stack)-1]
		}
		if n := top(); len(stack) > 1 && n.name == name {
			stack = stack[:len(stack)-1]
		}
		n := &tagNode{name: name}
		top().children = append(top().children, n)
		if !selfClosing {
			stack = append(stack, n)
		}
	}
	if len(root.children) == 0 {
		return nil, fmt.Errorf("empty OFX document")
	}
	return root, nil
}

var ofxEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", `"`, "&apos;", "'", "&nbsp;", " ")

func ofxUnescape(s string) string { return ofxEntities.Replace(s) }
