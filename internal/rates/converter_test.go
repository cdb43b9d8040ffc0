package rates

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestConverter(t *testing.T, table map[string]float64) *Converter {
	t.Helper()
	cache := NewCache(&fakeProvider{rates: table}, time.Hour)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}
	return NewConverter(cache)
}

func TestConvertIdentity(t *testing.T) {
	conv := newTestConverter(t, map[string]float64{"EUR": 0.92})

	// Same-currency conversion returns the amount untouched, not rounded.
	if got := conv.Convert(context.Background(), 123.456, "USD", "usd"); got != 123.456 {
		t.Errorf("Convert identity = %v, want 123.456", got)
	}
	if got := conv.Convert(context.Background(), 50, "eur", "EUR"); got != 50 {
		t.Errorf("Convert identity = %v, want 50", got)
	}
}

func TestConvertThroughUSDPivot(t *testing.T) {
	conv := newTestConverter(t, map[string]float64{"EUR": 0.92, "GBP": 0.79, "JPY": 149.50})

	tests := []struct {
		name   string
		amount float64
		from   string
		to     string
		want   float64
	}{
		{"EUR to USD", 100, "EUR", "USD", 108.70},
		{"USD to EUR", 100, "USD", "EUR", 92.00},
		{"EUR to GBP", 100, "EUR", "GBP", 85.87},
		{"USD to JPY", 10, "USD", "JPY", 1495.00},
		{"lowercase codes", 100, "eur", "usd", 108.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conv.Convert(context.Background(), tt.amount, tt.from, tt.to)
			if got != tt.want {
				t.Errorf("Convert(%v, %s, %s) = %v, want %v", tt.amount, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	conv := newTestConverter(t, map[string]float64{"EUR": 0.92})

	there := conv.Convert(context.Background(), 100, "EUR", "USD")
	back := conv.Convert(context.Background(), there, "USD", "EUR")

	if diff := back - 100; diff > 0.01 || diff < -0.01 {
		t.Errorf("round trip EUR->USD->EUR = %v, want within a cent of 100", back)
	}
}

func TestConvertMoney(t *testing.T) {
	conv := newTestConverter(t, map[string]float64{"EUR": 0.92})

	got := conv.ConvertMoney(context.Background(), core.NewMoney(100, "EUR"), "USD")
	if got.Amount != 108.70 || got.Currency != "USD" {
		t.Errorf("ConvertMoney = %+v, want {108.7 USD}", got)
	}
}

func TestSymbolFor(t *testing.T) {
	conv := newTestConverter(t, map[string]float64{"EUR": 0.92})

	tests := []struct {
		code string
		want string
	}{
		{"USD", "$"},
		{"eur", "€"},
		{"GBP", "£"},
		{"JPY", "¥"},
		{"xyz", "XYZ"},
	}

	for _, tt := range tests {
		if got := conv.SymbolFor(tt.code); got != tt.want {
			t.Errorf("SymbolFor(%s) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
