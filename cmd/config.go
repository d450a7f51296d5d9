package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
	"github.com/spf13/viper"
)

// adapterConfig is an institution adapter as declared in a configuration
// file.
type adapterConfig struct {
	Institution    string        `mapstructure:"institution"`
	Signatures     []string      `mapstructure:"signatures"`
	Header         []string      `mapstructure:"header"`
	SkipRows       int           `mapstructure:"skip_rows"`
	Delimiter      string        `mapstructure:"delimiter"`
	AccountPattern string        `mapstructure:"account_pattern"`
	DateFormat     string        `mapstructure:"date_format"`
	Columns        columnsConfig `mapstructure:"columns"`
	DecimalComma   bool          `mapstructure:"decimal_comma"`
	Cells          string        `mapstructure:"cells"`
	Footers        []string      `mapstructure:"footers"`
	Currency       string        `mapstructure:"currency"`
	Spreadsheet    bool          `mapstructure:"spreadsheet"`
}

// columnsConfig mirrors recon.ColumnMap field for field.
type columnsConfig struct {
	Date        string `mapstructure:"date"`
	Description string `mapstructure:"description"`
	Amount      string `mapstructure:"amount"`
	Debit       string `mapstructure:"debit"`
	Credit      string `mapstructure:"credit"`
	Sign        string `mapstructure:"sign"`
	Account     string `mapstructure:"account"`
	AccountName string `mapstructure:"account_name"`
	OtherParty  string `mapstructure:"other_party"`
	Symbol      string `mapstructure:"symbol"`
	CUSIP       string `mapstructure:"cusip"`
	Quantity    string `mapstructure:"quantity"`
	Price       string `mapstructure:"price"`
	Fees        string `mapstructure:"fees"`
	Activity    string `mapstructure:"activity"`
	Currency    string `mapstructure:"currency"`
}

func (c adapterConfig) adapter() (*recon.Adapter, error) {
	hint, err := date.ParseConvention(c.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("adapter %q: %w", c.Institution, err)
	}
	var cells recon.CellMode
	switch strings.ToLower(c.Cells) {
	case "", "text":
		cells = recon.TextCells
	case "native":
		cells = recon.NativeCells
	default:
		return nil, fmt.Errorf("adapter %q: unknown cell mode %q, want text or native", c.Institution, c.Cells)
	}
	a := &recon.Adapter{
		Institution:    c.Institution,
		Signatures:     c.Signatures,
		Header:         c.Header,
		SkipRows:       c.SkipRows,
		Delimiter:      c.Delimiter,
		AccountPattern: c.AccountPattern,
		DateHint:       hint,
		Columns:        recon.ColumnMap(c.Columns),
		DecimalComma:   c.DecimalComma,
		Cells:          cells,
		Footers:        c.Footers,
		Currency:       strings.ToUpper(c.Currency),
		Spreadsheet:    c.Spreadsheet,
	}
	return a, a.Validate()
}

// LoadAdapters reads the adapters declared under the "adapters" key of a
// configuration file. The format is picked from the file extension.
func LoadAdapters(path string) ([]*recon.Adapter, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read adapters file %q: %w", path, err)
	}
	var cfg struct {
		Adapters []adapterConfig `mapstructure:"adapters"`
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode adapters file %q: %w", path, err)
	}

	adapters := make([]*recon.Adapter, 0, len(cfg.Adapters))
	seen := make(map[string]bool)
	for _, c := range cfg.Adapters {
		a, err := c.adapter()
		if err != nil {
			return nil, fmt.Errorf("adapters file %q: %w", path, err)
		}
		if seen[a.Institution] {
			return nil, fmt.Errorf("adapters file %q: institution %q declared twice", path, a.Institution)
		}
		seen[a.Institution] = true
		adapters = append(adapters, a)
	}
	return adapters, nil
}
