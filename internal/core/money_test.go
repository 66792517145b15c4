package core

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"-1", "-1", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,2.3", "", false},
		{"", "", false},
		{"   ", "", false},
		{"1e400", "", false},
		{"-1e400", "", false},
		{"1e-400", "", false},
		{"1e300", "1e300", true},
		{"0e-400", "0", true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err != ErrInvalidAmount {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":      "$0.00",
		"12.5":   "$12.50",
		"3.456":  "$3.46",
		"-4":     "$-4.00",
		"1000.1": "$1000.10",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestAmountFromFloatRoundTrips(t *testing.T) {
	for _, s := range []string{"12.34", "0.1", "99.99", "-7.25"} {
		d := decimal.RequireFromString(s)
		got, err := AmountFromFloat(d.InexactFloat64())
		if err != nil || !got.Equal(d) {
			t.Fatalf("round trip %s gave %s (err=%v)", s, got, err)
		}
	}
}

func TestAmountFromFloatRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if _, err := AmountFromFloat(f); !errors.Is(err, ErrNonFiniteAmount) {
			t.Fatalf("AmountFromFloat(%v) expected ErrNonFiniteAmount, got %v", f, err)
		}
	}
}
