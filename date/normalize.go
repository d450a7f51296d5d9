package date

import (
	"fmt"
	"strings"
	"time"
)

// Convention is one of the textual date layouts found in statement exports.
// The zero value means no convention is known.
type Convention int

const (
	NoHint   Convention = iota
	ISO                 // 2006-01-02
	USSlash             // 01/02/2006
	USSlash2            // 01/02/06
	EUSlash             // 02/01/2006
	ISOSlash            // 2006/01/02
	USDash              // 01-02-2006
	EUDash              // 02-01-2006
)

// Conventions lists every supported convention in resolution order.
var Conventions = []Convention{ISO, USSlash, USSlash2, EUSlash, ISOSlash, USDash, EUDash}

var layouts = map[Convention]string{
	ISO:      "2006-1-2",
	USSlash:  "1/2/2006",
	USSlash2: "1/2/06",
	EUSlash:  "2/1/2006",
	ISOSlash: "2006/1/2",
	USDash:   "1-2-2006",
	EUDash:   "2-1-2006",
}

var names = map[Convention]string{
	NoHint:   "",
	ISO:      "iso",
	USSlash:  "us-slash",
	USSlash2: "us-slash-2",
	EUSlash:  "eu-slash",
	ISOSlash: "iso-slash",
	USDash:   "us-dash",
	EUDash:   "eu-dash",
}

func (c Convention) String() string { return names[c] }

// ParseConvention parses a convention name as returned by String.
func ParseConvention(s string) (Convention, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range names {
		if name == s {
			return c, nil
		}
	}
	return NoHint, fmt.Errorf("unknown date convention %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Convention) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Convention) UnmarshalText(b []byte) error {
	v, err := ParseConvention(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// AmbiguousDateError is returned when a text reads as several different dates
// and no convention hint settles it.
type AmbiguousDateError struct {
	Text       string
	Candidates []Date
}

func (e *AmbiguousDateError) Error() string {
	c := make([]string, len(e.Candidates))
	for i, d := range e.Candidates {
		c[i] = d.String()
	}
	return fmt.Sprintf("ambiguous date %q: could be %s", e.Text, strings.Join(c, " or "))
}

// UnparseableDateError is returned when a text matches no supported convention.
type UnparseableDateError struct {
	Text string
}

func (e *UnparseableDateError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Text)
}

// In parses text using a single convention.
func (c Convention) In(text string) (Date, bool) {
	layout, ok := layouts[c]
	if !ok {
		return Date{}, false
	}
	on, err := time.Parse(layout, text)
	if err != nil {
		return Date{}, false
	}
	return Of(on), true
}

// Normalize converts text into a Date.
//
// When hint is set it is tried first. Otherwise, or when the hint does not
// apply, every convention is tried and the text must read as exactly one
// date: several readings give an *AmbiguousDateError, none an
// *UnparseableDateError. A trailing time of day is ignored.
func Normalize(text string, hint Convention) (Date, error) {
	text = dayPart(text)
	if hint != NoHint {
		if d, ok := hint.In(text); ok {
			return d, nil
		}
	}

	var found []Date
	for _, c := range Conventions {
		d, ok := c.In(text)
		if !ok {
			continue
		}
		if !contains(found, d) {
			found = append(found, d)
		}
	}
	switch len(found) {
	case 0:
		return Date{}, &UnparseableDateError{Text: text}
	case 1:
		return found[0], nil
	default:
		return Date{}, &AmbiguousDateError{Text: text, Candidates: found}
	}
}

// dayPart drops surrounding blanks and any time of day ("2024-03-04T10:00", "03/04/2024 10:00 AM").
func dayPart(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, " T"); i > 0 {
		text = text[:i]
	}
	return text
}

func contains(ds []Date, d Date) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}
