package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", New(2025, time.January, 15), false},
		{"2020-04-06", New(2020, time.April, 6), false},
		{"2025-7-1", Date{}, true}, // canonical format only
		{"invalid-date", Date{}, true},
		{"", Date{}, true},
	}

	for _, tc := range tests {
		got, err := Parse(tc.input)
		if (err != nil) != tc.err {
			t.Errorf("Parse(%q) error = %v, want error: %v", tc.input, err, tc.err)
			continue
		}
		if !tc.err && got != tc.expected {
			t.Errorf("Parse(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestNormalization(t *testing.T) {
	// Out-of-range day carries over to the next month.
	if got := New(2024, time.February, 30); got != New(2024, time.March, 1) {
		t.Errorf("New(2024, feb, 30) = %v, want 2024-03-01", got)
	}
	if got := New(2024, time.December, 31).Add(1); got != New(2025, time.January, 1) {
		t.Errorf("Add(1) across year = %v, want 2025-01-01", got)
	}
}

func TestCompare(t *testing.T) {
	a, b := New(2024, time.June, 1), New(2024, time.June, 2)
	if !a.Before(b) || b.Before(a) || !b.After(a) {
		t.Errorf("ordering of %v and %v is wrong", a, b)
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare(%v, %v) inconsistent", a, b)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(2023, time.October, 31)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2023-10-31"` {
		t.Errorf("marshal = %s, want \"2023-10-31\"", raw)
	}
	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}
