package domain

import "github.com/shopspring/decimal"

const DefaultCurrencySymbol = "S/"

func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + " " + amount.StringFixed(2)
}
