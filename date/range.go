package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range between two days, whatever their order.
func NewRange(a, b Date) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{From: a, To: b}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// Expand returns the range widened by n days on both sides.
func (r Range) Expand(n int) Range { return Range{From: r.From.Add(-n), To: r.To.Add(n)} }

// Extend returns the smallest range containing both r and d. A zero range becomes [d, d].
func (r Range) Extend(d Date) Range {
	if r.IsZero() {
		return Range{From: d, To: d}
	}
	if d.Before(r.From) {
		r.From = d
	}
	if d.After(r.To) {
		r.To = d
	}
	return r
}

// IsZero reports whether the range has never been set.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
