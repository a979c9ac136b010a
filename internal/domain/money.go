package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "ARS"

// FormatMinor renders an amount in minor units as "1234.50 ARS".
func FormatMinor(minor int64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	amount := decimal.New(minor, -2)
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}
