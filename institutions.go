package recon

import "github.com/etnz/recon/date"

// BuiltinAdapters returns the adapters of the supported institutions, in
// detection priority order.
func BuiltinAdapters() []*Adapter {
	return []*Adapter{
		// Checking account CSV. Details is DEBIT, CREDIT, CHECK or DSLIP, the
		// amount is already signed.
		{
			Institution: "chase",
			Signatures:  []string{"Details", "Posting Date", "Check or Slip #"},
			DateHint:    date.USSlash,
			Currency:    "USD",
			Columns: ColumnMap{
				Date:        "Posting Date",
				Description: "Description",
				Amount:      "Amount",
				Activity:    "Type",
			},
		},
		// A summary row (account, period start and end, balances) then
		// headerless rows. Amounts are unsigned, the Type column holds the sign.
		{
			Institution:    "pnc",
			SkipRows:       1,
			AccountPattern: `^(\d{6,})$`,
			Header:         []string{"Date", "Amount", "Description", "Memo", "Reference", "Type"},
			DateHint:       date.ISOSlash,
			Currency:       "USD",
			Columns: ColumnMap{
				Date:        "Date",
				Amount:      "Amount",
				Description: "Description",
				OtherParty:  "Memo",
				Sign:        "Type",
			},
		},
		// Brokerage CSV, the first line names the account.
		{
			Institution:    "schwab",
			SkipRows:       1,
			AccountPattern: `(?i)for account\s+([\w.-]+)`,
			Signatures:     []string{"for account", "Fees & Comm"},
			DateHint:       date.USSlash,
			Currency:       "USD",
			Footers:        []string{"Transactions Total"},
			Columns: ColumnMap{
				Date:        "Date",
				Activity:    "Action",
				Symbol:      "Symbol",
				Description: "Description",
				Quantity:    "Quantity",
				Price:       "Price",
				Fees:        "Fees & Comm",
				Amount:      "Amount",
			},
		},
		// Brokerage history, two metadata rows and one formula wrapped account
		// per row.
		{
			Institution: "fidelity",
			SkipRows:    2,
			Signatures:  []string{"Run Date", "Security Description"},
			DateHint:    date.USSlash,
			Currency:    "USD",
			Footers:     []string{"The data and information", "Brokerage services"},
			Columns: ColumnMap{
				Date:        "Run Date",
				Account:     "Account",
				Activity:    "Action",
				Description: "Action",
				Symbol:      "Symbol",
				Quantity:    "Quantity",
				Price:       "Price ($)",
				Fees:        "Commission ($)",
				Amount:      "Amount ($)",
			},
		},
		// Banco República (Uruguay) XLS statement with split debit and credit
		// columns.
		{
			Institution:    "brou",
			Spreadsheet:    true,
			Cells:          NativeCells,
			SkipRows:       3,
			AccountPattern: `(?i)cuenta:?\s*([\d-]{6,})`,
			Signatures:     []string{"Banco de la República", "Fecha", "Débito", "Crédito"},
			DateHint:       date.EUSlash,
			DecimalComma:   true,
			Currency:       "UYU",
			Footers:        []string{"Saldo final", "Total"},
			Columns: ColumnMap{
				Date:        "Fecha",
				Description: "Descripción",
				Debit:       "Débito",
				Credit:      "Crédito",
			},
		},
	}
}
