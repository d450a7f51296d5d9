package date

import (
	"errors"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestSub(t *testing.T) {
	a, b := New(2024, time.February, 28), New(2024, time.March, 2)
	if got := b.Sub(a); got != 3 {
		t.Errorf("Sub() = %d, want 3", got)
	}
	if got := a.Sub(b); got != -3 {
		t.Errorf("Sub() = %d, want -3", got)
	}
}

func TestRange(t *testing.T) {
	var r Range
	r = r.Extend(New(2024, 3, 5)).Extend(New(2024, 3, 1))
	if r.From != New(2024, 3, 1) || r.To != New(2024, 3, 5) {
		t.Fatalf("Extend() = %v", r)
	}
	if got := r.Expand(3); got.From != New(2024, 2, 27) || got.To != New(2024, 3, 8) {
		t.Errorf("Expand(3) = %v", got)
	}
	if !r.Contains(New(2024, 3, 5)) || r.Contains(New(2024, 3, 6)) {
		t.Errorf("Contains() boundaries are wrong for %v", r)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		text string
		hint Convention
		want Date
	}{
		{"2024-03-04", NoHint, New(2024, time.March, 4)},
		{"2024-3-4", NoHint, New(2024, time.March, 4)},
		{"2024/03/04", NoHint, New(2024, time.March, 4)},
		{"12/31/2024", NoHint, New(2024, time.December, 31)},
		{"31/12/2024", NoHint, New(2024, time.December, 31)},
		{"31-12-2024", NoHint, New(2024, time.December, 31)},
		{"12/31/24", NoHint, New(2024, time.December, 31)},
		{"2024-03-04 10:15:00", NoHint, New(2024, time.March, 4)},
		{"2024-03-04T10:15:00Z", NoHint, New(2024, time.March, 4)},
		// US dates are month first, so this is March 4. Examples that read it
		// as April 3 under the US hint are day first, unlike US bank exports.
		{"03/04/2024", USSlash, New(2024, time.March, 4)},
		{"03/04/2024", EUSlash, New(2024, time.April, 3)},
		{"03-04-2024", EUDash, New(2024, time.April, 3)},
		// a hint that does not apply falls back to an unambiguous reading
		{"2024-03-04", USSlash, New(2024, time.March, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.hint.String(), func(t *testing.T) {
			got, err := Normalize(tt.text, tt.hint)
			if err != nil {
				t.Fatalf("Normalize(%q, %v) error: %v", tt.text, tt.hint, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q, %v) = %v, want %v", tt.text, tt.hint, got, tt.want)
			}
		})
	}
}

func TestNormalizeAmbiguous(t *testing.T) {
	_, err := Normalize("03/04/2024", NoHint)
	var amb *AmbiguousDateError
	if !errors.As(err, &amb) {
		t.Fatalf("Normalize(03/04/2024) error = %v, want AmbiguousDateError", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("Candidates = %v, want March 4 and April 3", amb.Candidates)
	}
}

func TestNormalizeUnparseable(t *testing.T) {
	for _, text := range []string{"", "yesterday", "2024-13-45", "31/02/2024", "4 Mar 2024"} {
		_, err := Normalize(text, NoHint)
		var unp *UnparseableDateError
		if !errors.As(err, &unp) {
			t.Errorf("Normalize(%q) error = %v, want UnparseableDateError", text, err)
		}
	}
}

func TestParseConvention(t *testing.T) {
	for _, c := range Conventions {
		got, err := ParseConvention(c.String())
		if err != nil || got != c {
			t.Errorf("ParseConvention(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseConvention("julian"); err == nil {
		t.Errorf("ParseConvention(julian) should fail")
	}
}
