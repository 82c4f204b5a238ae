package domain

import "fmt"

type Currency string

const (
	ZMW Currency = "ZMW"
	USD Currency = "USD"
	NGN Currency = "NGN"
	KES Currency = "KES"
	GHS Currency = "GHS"
	TZS Currency = "TZS"
	UGX Currency = "UGX"
	XOF Currency = "XOF"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

var supportedCurrencies = map[Currency]bool{
	ZMW: true, USD: true, NGN: true, KES: true, GHS: true,
	TZS: true, UGX: true, XOF: true, EUR: true, GBP: true,
}

// Supported reports whether MoneyUnify can settle in this currency.
func (c Currency) Supported() bool {
	return supportedCurrencies[c]
}

// Money holds an amount in "minor units" (ngwee/cents).
// Example: 100 ZMW is stored as 10000.
type Money struct {
	Amount   int64
	Currency Currency
}

// NewMoney creates a new Money instance
func NewMoney(amount int64, currency Currency) Money {
	return Money{
		Amount:   amount,
		Currency: currency,
	}
}

// MajorString renders the amount the way the MoneyUnify API wants it,
// major units with two decimals: 10050 -> "100.50".
func (m Money) MajorString() string {
	return fmt.Sprintf("%d.%02d", m.Amount/100, m.Amount%100)
}

// Positive reports whether there is anything to charge.
func (m Money) Positive() bool {
	return m.Amount > 0
}
