package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places every amount is kept at.
const MoneyScale = 2

// ZeroMoney is 0.00.
var ZeroMoney = decimal.New(0, -MoneyScale)

// RoundMoney rounds d to MoneyScale places, half away from zero.
// For the non-negative amounts this system handles that is round-half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FormatMoney renders d with exactly MoneyScale decimal places ("500.00").
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
