package rates

import (
	"context"
	"strings"

	"fintrack/internal/core"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "C$",
	"AUD": "A$",
	"CHF": "Fr",
	"CNY": "¥",
	"INR": "₹",
}

// Converter converts amounts between currencies via USD as the pivot,
// reading multipliers from the shared cache.
type Converter struct {
	cache *Cache
}

func NewConverter(cache *Cache) *Converter {
	return &Converter{cache: cache}
}

// Convert converts amount from one currency code to another, rounding the
// result to 2 decimals. Identity conversions return the amount untouched.
// Unknown currencies degrade to a 1.0 multiplier per the cache contract;
// conversion never fails.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) float64 {
	if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return amount
	}

	inUSD := amount / c.cache.Rate(ctx, from)
	return core.Round2(inUSD * c.cache.Rate(ctx, to))
}

// ConvertMoney returns a new Money in the target currency, leaving the
// source untouched.
func (c *Converter) ConvertMoney(ctx context.Context, m core.Money, to string) core.Money {
	return core.NewMoney(c.Convert(ctx, m.Amount, m.Currency, to), to)
}

// SymbolFor returns the display symbol for a currency code. Unknown codes
// come back as the uppercased code itself.
func (c *Converter) SymbolFor(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if symbol, ok := currencySymbols[code]; ok {
		return symbol
	}
	return code
}
