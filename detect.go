package recon

import (
	"errors"

	"github.com/charmbracelet/log"
)

// MinConfidence is the confidence a parser must reach to claim a statement.
const MinConfidence = 0.5

// errNoSpreadsheet is the reason spreadsheets are rejected when the binary
// is built without spreadsheet support.
var errNoSpreadsheet = errors.New("spreadsheet support is not available in this build")

// Registry is an ordered set of parsers. Order is priority: on equal
// confidence the first parser wins.
type Registry []Parser

// DefaultRegistry returns the built-in institution adapters, then the extra
// adapters, then the OFX parser and last the generic delimited parser.
func DefaultRegistry(extra ...*Adapter) Registry {
	var r Registry
	for _, a := range BuiltinAdapters() {
		r = append(r, a)
	}
	for _, a := range extra {
		r = append(r, a)
	}
	return append(r, &OFXParser{}, &DelimitedParser{})
}

// Lookup returns the parser called name.
func (r Registry) Lookup(name string) (Parser, bool) {
	for _, p := range r {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Score is the confidence of one parser for one source.
type Score struct {
	Parser     string
	Confidence float64
}

// Scores returns the confidence of every parser, in registry order.
func (r Registry) Scores(src *Source) []Score {
	scores := make([]Score, 0, len(r))
	for _, p := range r {
		scores = append(scores, Score{Parser: p.Name(), Confidence: r.confidence(p, src)})
	}
	return scores
}

// confidence guards parsers against content they can not read: only
// spreadsheet adapters may claim a spreadsheet.
func (r Registry) confidence(p Parser, src *Source) float64 {
	if src.IsSpreadsheet() {
		if a, ok := p.(*Adapter); !ok || !a.Spreadsheet {
			return 0
		}
	}
	c := p.Detect(src)
	return min(max(c, 0), 1)
}

// Detect selects the parser with the highest confidence for src.
//
// It returns an *UnrecognizedFormatError when the input is empty or when no
// parser reaches MinConfidence.
func (r Registry) Detect(src *Source) (Parser, float64, error) {
	if src.IsEmpty() {
		return nil, 0, &UnrecognizedFormatError{Reason: ErrEmptyInput}
	}
	if src.IsSpreadsheet() && src.Content != nil && !SpreadsheetSupport {
		return nil, 0, &UnrecognizedFormatError{Reason: errNoSpreadsheet}
	}

	var best Parser
	var conf float64
	for _, p := range r {
		c := r.confidence(p, src)
		log.Debug("format detection", "parser", p.Name(), "confidence", c)
		if c > conf {
			best, conf = p, c
		}
	}
	if best == nil || conf < MinConfidence {
		err := &UnrecognizedFormatError{Confidence: conf}
		if best != nil {
			err.Best = best.Name()
		}
		if src.IsSpreadsheet() {
			_, err.Reason = src.Grid()
		}
		return nil, conf, err
	}
	return best, conf, nil
}

// Detect selects a parser for src among parsers, or among the DefaultRegistry
// when none is given.
func Detect(src *Source, parsers ...Parser) (Parser, float64, error) {
	if len(parsers) == 0 {
		return DefaultRegistry().Detect(src)
	}
	return Registry(parsers).Detect(src)
}
