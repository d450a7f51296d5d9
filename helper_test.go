package recon

import (
	"context"
	"testing"

	"github.com/etnz/recon/date"
	"github.com/shopspring/decimal"
)

// USD is a helper for test to create exact usd money from a decimal text.
func USD(s string) Money { return Money{value: decimal.RequireFromString(s), cur: "USD"} }

// day is a helper for test to create dates from "2006-01-02" strings.
func day(s string) date.Date { return date.MustParse(s) }

// txOf is a helper for test to create a canonical transaction.
func txOf(id, account, on, amount string) Transaction {
	return Transaction{ImportID: id, AccountNumber: account, Date: day(on), Amount: USD(amount)}
}

// mustImport imports content with the default registry and a fresh id set.
func mustImport(t *testing.T, content, hint string) *ImportBatch {
	t.Helper()
	im := &Importer{Seen: IDSet{}, Workers: 2}
	b, err := im.Import(testContext(t), NewSource([]byte(content), hint))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	return b
}

const chaseCSV = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #,
DEBIT,03/02/2024,"WIRE TO   SAVINGS",-500.00,WIRE_OUTGOING,1500.00,,
CREDIT,03/01/2024,"ACME PAYROLL PPD ID: 123",2000.00,ACH_CREDIT,2000.00,,

DEBIT,03/04/2024,"COFFEE SHOP",-4.50,DEBIT_CARD,1495.50,,
`

const pncCSV = `1234567890,2024/03/01,2024/03/31,1000.00,1500.00
2024/03/02,500.00,WIRE TRANSFER,SAVINGS,REF001,DEBIT
2024/03/05,1000.00,PAYROLL,ACME CORP,REF002,CREDIT
`

const schwabCSV = `"Transactions  for account XXXX-1234 as of 03/05/2024 22:30:00 ET"
"Date","Action","Symbol","Description","Quantity","Price","Fees & Comm","Amount"
"03/01/2024","Buy","AAPL","APPLE INC","10","$175.00","","-$1,750.00"
"03/04/2024 as of 03/01/2024","Qualified Dividend","MSFT","MICROSOFT CORP","","","","$25.50"
"03/05/2024","Sell","VTI","VANGUARD TOTAL STOCK MARKET ETF","5","$250.00","$1.00","$1,249.00"
"Transactions Total","","","","","","","-$475.50"
`

const fidelityCSV = `Brokerage
Account History as of 03/06/2024
Run Date,Account,Action,Symbol,Security Description,Security Type,Quantity,Price ($),Commission ($),Fees ($),Accrued Interest ($),Amount ($),Settlement Date
03/01/2024,"=""0012345""",YOU BOUGHT APPLE INC (AAPL),AAPL,APPLE INC,Cash,10,175,,,,-1750,03/05/2024
03/04/2024,"=T(""0012345"")",DIVIDEND RECEIVED MICROSOFT CORP (MSFT),MSFT,MICROSOFT CORP,Cash,,,,,,25.5,

The data and information in this spreadsheet is provided to you solely for your use
`

const genericCSV = `Date;Description;Amount;Currency
2024-03-01;Grocery store;-42,10;EUR
2024-03-02;Salary;2500,00;EUR
`

const bankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240305120000
<LANGUAGE>ENG
<FI>
<ORG>MYBANK
<FID>1234
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>5a3e1c2b-8f4d-4e6a-9b7c-0d1e2f3a4b5c
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>121000248
<ACCTID>987654321
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301
<DTEND>20240331
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240302120000[-5:EST]
<TRNAMT>-500.00
<FITID>20240302001
<NAME>WIRE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240305
<TRNAMT>1000.00
<FITID>20240305001
<NAME>PAYROLL
<MEMO>ACME CORP
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1500.00
<DTASOF>20240331
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

// looseOFX is what some banks export: a partial header, unclosed
// transactions, thousands separators and a malformed amount.
const looseOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102

<OFX>
<SIGNONMSGSRSV1><SONRS><STATUS><CODE>0<SEVERITY>INFO</STATUS><DTSERVER>20240305120000<LANGUAGE>ENG<FI><ORG>MYBANK<FID>1234</FI></SONRS></SIGNONMSGSRSV1>
<BANKMSGSRSV1><STMTTRNRS><TRNUID>1<STATUS><CODE>0<SEVERITY>INFO</STATUS>
<STMTRS><CURDEF>USD<BANKACCTFROM><BANKID>121000248<ACCTID>987654321<ACCTTYPE>CHECKING</BANKACCTFROM>
<BANKTRANLIST><DTSTART>20240301<DTEND>20240331
<STMTTRN><TRNTYPE>DEBIT<DTPOSTED>20240302120000[-5:EST]<TRNAMT>-500.00<FITID>20240302001<NAME>WIRE
<STMTTRN><TRNTYPE>CREDIT<DTPOSTED>20240305<TRNAMT>1,000.00<FITID>20240305001<NAME>PAYROLL<MEMO>ACME CORP
<STMTTRN><TRNTYPE>DEBIT<DTPOSTED>20240306<TRNAMT>12,5<FITID>20240306001<NAME>FEE
</BANKTRANLIST>
<LEDGERBAL><BALAMT>1500.00<DTASOF>20240331</LEDGERBAL>
</STMTRS></STMTTRNRS></BANKMSGSRSV1>
</OFX>
`

const investOFX = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<?OFX OFXHEADER="200" VERSION="220" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>
<OFX>
<SIGNONMSGSRSV1><SONRS><STATUS><CODE>0</CODE><SEVERITY>INFO</SEVERITY></STATUS>
<DTSERVER>20240331120000</DTSERVER><LANGUAGE>ENG</LANGUAGE><FI><ORG>BROKER</ORG><FID>42</FID></FI></SONRS></SIGNONMSGSRSV1>
<INVSTMTMSGSRSV1><INVSTMTTRNRS><TRNUID>9c8b7a6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d</TRNUID><STATUS><CODE>0</CODE><SEVERITY>INFO</SEVERITY></STATUS>
<INVSTMTRS><DTASOF>20240331</DTASOF><CURDEF>USD</CURDEF>
<INVACCTFROM><BROKERID>example.com</BROKERID><ACCTID>BRK-42</ACCTID></INVACCTFROM>
<INVTRANLIST><DTSTART>20240301</DTSTART><DTEND>20240331</DTEND>
<BUYSTOCK><INVBUY><INVTRAN><FITID>T1</FITID><DTTRADE>20240304</DTTRADE><MEMO>BUY AAPL</MEMO></INVTRAN>
<SECID><UNIQUEID>037833100</UNIQUEID><UNIQUEIDTYPE>CUSIP</UNIQUEIDTYPE></SECID>
<UNITS>10</UNITS><UNITPRICE>175.00</UNITPRICE><COMMISSION>1.00</COMMISSION><TOTAL>-1751.00</TOTAL>
<SUBACCTSEC>CASH</SUBACCTSEC><SUBACCTFUND>CASH</SUBACCTFUND></INVBUY><BUYTYPE>BUY</BUYTYPE></BUYSTOCK>
<INCOME><INVTRAN><FITID>T2</FITID><DTTRADE>20240315</DTTRADE></INVTRAN>
<SECID><UNIQUEID>037833100</UNIQUEID><UNIQUEIDTYPE>CUSIP</UNIQUEIDTYPE></SECID>
<INCOMETYPE>DIV</INCOMETYPE><TOTAL>2.40</TOTAL><SUBACCTSEC>CASH</SUBACCTSEC><SUBACCTFUND>CASH</SUBACCTFUND></INCOME>
</INVTRANLIST></INVSTMTRS></INVSTMTTRNRS></INVSTMTMSGSRSV1>
<SECLISTMSGSRSV1><SECLIST><STOCKINFO><SECINFO><SECID><UNIQUEID>037833100</UNIQUEID><UNIQUEIDTYPE>CUSIP</UNIQUEIDTYPE></SECID>
<SECNAME>Apple Inc</SECNAME><TICKER>AAPL</TICKER></SECINFO></STOCKINFO></SECLIST></SECLISTMSGSRSV1>
</OFX>
`

// brouGrid is a spreadsheet statement as decoded from the xls export.
func brouGrid() [][]Cell {
	return [][]Cell{
		{TextOf("BANCO DE LA REPUBLICA ORIENTAL DEL URUGUAY")},
		{TextOf("Cuenta: 001234567-00001 CAJA DE AHORRO PESOS")},
		{TextOf("Período: 01/03/2024 - 31/03/2024")},
		{},
		{TextOf("Fecha"), TextOf("Descripción"), TextOf("Documento"), TextOf("Débito"), TextOf("Crédito")},
		{DateOf(day("2024-03-04")), TextOf("TRANSFERENCIA RECIBIDA"), TextOf("12345"), TextOf(""), NumberOf(decimal.RequireFromString("15000.00"))},
		{TextOf("05/03/2024"), TextOf("PAGO TARJETA"), TextOf(""), TextOf("1.234,56"), TextOf("")},
		{TextOf("Saldo final"), TextOf(""), TextOf(""), TextOf(""), NumberOf(decimal.RequireFromString("13765.44"))},
	}
}

// testContext stands in for t.Context (Go 1.24): a context canceled when the
// test ends.
func testContext(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
