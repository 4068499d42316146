package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountLimit bounds accepted amounts in both directions.
var AmountLimit = decimal.NewFromInt(1_000_000)

// ParseAmount parses a statement amount. It accepts currency symbols and
// codes, thousands separators, a trailing minus and accounting parentheses.
// When both separators appear the last one is the decimal separator;
// otherwise a lone comma followed by exactly two digits is.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	}
	if strings.HasSuffix(raw, "-") {
		negative = true
		raw = strings.TrimSuffix(raw, "-")
	}

	cleaned := strings.NewReplacer(
		"$", "", "€", "", "£", "",
		"USD", "", "CAD", "", "EUR", "", "CHF", "",
		" ", "", "'", "", "\u00a0", "",
	).Replace(raw)

	comma, dot := strings.LastIndex(cleaned, ","), strings.LastIndex(cleaned, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		cleaned = strings.ReplaceAll(cleaned[:comma], ".", "") + "." + cleaned[comma+1:]
	case comma >= 0 && dot < 0 && len(cleaned)-comma == 3:
		cleaned = cleaned[:comma] + "." + cleaned[comma+1:]
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ClampAmount limits d to [-AmountLimit, AmountLimit].
func ClampAmount(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(AmountLimit) {
		return AmountLimit
	}
	if d.LessThan(AmountLimit.Neg()) {
		return AmountLimit.Neg()
	}
	return d
}

// FormatAmount renders d with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
