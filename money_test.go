package extract

import (
	"encoding/json"
	"testing"
)

func TestMoneyArithmetic(t *testing.T) {
	a := M(1050, "EUR")
	b := M(250, "EUR")
	if got := a.Add(b); !got.Equal(M(1300, "EUR")) {
		t.Errorf("Add() = %v, want 13.00 EUR", got)
	}
	if got := a.Sub(b); !got.Equal(M(800, "EUR")) {
		t.Errorf("Sub() = %v, want 8.00 EUR", got)
	}
}

func TestMoneyWeakEmptyCurrency(t *testing.T) {
	// the zero Money acts as a neutral element for accumulation
	var sum Money
	sum = sum.Add(M(100, "USD"))
	if got := sum.Currency(); got != "USD" {
		t.Errorf("Currency() = %q, want the non-empty side to win", got)
	}
}

func TestMoneyMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("adding EUR and USD did not panic")
		}
	}()
	M(100, "EUR").Add(M(100, "USD"))
}

func TestMoneyDecimal(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{M(123456, "EUR"), "1234.56"},
		{M(5, "USD"), "0.05"},
		{M(1000, "JPY"), "1000"}, // yen has no minor unit
	}
	for _, tc := range tests {
		if got := tc.m.Decimal().String(); got != tc.want {
			t.Errorf("Decimal(%v) = %s, want %s", tc.m, got, tc.want)
		}
	}
}

func TestMoneyMarshalJSON(t *testing.T) {
	b, err := json.Marshal(M(123456, "EUR"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"amount":"1234.56","currency":"EUR"}`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
}
