package valueobjects

import "fmt"

// Money holds an amount in the smallest currency unit (kobo for NGN,
// cents for USD). Paystack reports and expects amounts in minor units,
// so comparisons stay exact integer arithmetic; the 2-decimal major
// representation is for display only.
type Money struct {
	amountMinor int64
	currency    string
}

func NewMoney(amountMinor int64, currency string) Money {
	if currency == "" {
		currency = "NGN"
	}
	return Money{
		amountMinor: amountMinor,
		currency:    currency,
	}
}

func (m Money) AmountMinor() int64 {
	return m.amountMinor
}

func (m Money) Currency() string {
	return m.currency
}

// AmountMajor returns the amount in major units with 2 decimal places.
func (m Money) AmountMajor() float64 {
	return float64(m.amountMinor) / 100.0
}

func (m Money) Equals(other Money) bool {
	return m.amountMinor == other.amountMinor && m.currency == other.currency
}

func (m Money) IsPositive() bool {
	return m.amountMinor > 0
}

// Covers reports whether m is at least the given cost in the same currency.
func (m Money) Covers(cost Money) bool {
	return m.currency == cost.currency && m.amountMinor >= cost.amountMinor
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.AmountMajor(), m.currency)
}
