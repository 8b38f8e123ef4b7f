package core

import (
	"encoding/json"
	"testing"
)

func TestStartOfMonth(t *testing.T) {
	cases := []struct {
		in   Date
		want Date
	}{
		{NewDate(2024, 12, 15), NewDate(2024, 12, 1)},
		{NewDate(2023, 2, 28), NewDate(2023, 2, 1)},
		{NewDate(2024, 1, 1), NewDate(2024, 1, 1)},
	}
	for i, tc := range cases {
		if got := tc.in.StartOfMonth(); !got.Equal(tc.want) {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}

func TestEndOfMonth(t *testing.T) {
	cases := []struct {
		in   Date
		want Date
	}{
		{NewDate(2024, 12, 15), NewDate(2024, 12, 31)}, // December rollover
		{NewDate(2023, 2, 10), NewDate(2023, 2, 28)},
		{NewDate(2024, 2, 10), NewDate(2024, 2, 29)}, // leap year
		{NewDate(2024, 4, 30), NewDate(2024, 4, 30)},
	}
	for i, tc := range cases {
		if got := tc.in.EndOfMonth(); !got.Equal(tc.want) {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}

func TestDefaultComparisonPeriod(t *testing.T) {
	cases := []struct {
		in   Date
		want Date
	}{
		{NewDate(2024, 6, 30), NewDate(2023, 6, 30)},
		{NewDate(2024, 2, 29), NewDate(2023, 3, 1)}, // Feb 29 normalizes like AddDate
	}
	for i, tc := range cases {
		if got := tc.in.DefaultComparisonPeriod(); !got.Equal(tc.want) {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}

func TestPreviousPeriodStart(t *testing.T) {
	start := NewDate(2024, 1, 1)
	end := NewDate(2024, 1, 31)
	if got := PreviousPeriodStart(start, end); !got.Equal(NewDate(2023, 12, 2)) {
		t.Fatalf("got %s, want 2023-12-02", got)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 3, 7)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2024-03-07"` {
		t.Fatalf("unexpected encoding %s", raw)
	}
	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip mismatch: %s", back)
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange(NewDate(2024, 1, 1), NewDate(2024, 1, 31)); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateRange(NewDate(2024, 2, 1), NewDate(2024, 1, 31)); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}
