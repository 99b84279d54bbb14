package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = "USD"

// Money is a value object representing a monetary amount in integer minor
// currency units (cents). It is immutable - all operations return new
// Money instances. External gateways speak decimal-string major units;
// convert at the boundary with NewMoneyFromMajorString.
type Money struct {
	amount   int64
	currency string
}

// NewMoney creates a new Money with the specified minor-unit amount and
// ISO 4217 currency code
func NewMoney(amount int64, currencyCode string) (Money, error) {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency code %q: %w", currencyCode, err)
	}
	return Money{
		amount:   amount,
		currency: unit.String(),
	}, nil
}

// NewMoneyFromMajorString converts a decimal-string major-unit amount
// (e.g. "12.34") into minor units, rounding to the nearest minor unit.
func NewMoneyFromMajorString(amount, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string %q: %w", amount, err)
	}
	minor := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return NewMoney(minor, currencyCode)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currencyCode string) Money {
	m, _ := NewMoney(0, currencyCode)
	return m
}

// ZeroUSD returns a zero-value Money in USD
func ZeroUSD() Money {
	return Zero("USD")
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the ISO 4217 currency code
func (m Money) Currency() string {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Add returns the sum of two Money values. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Sub returns the difference of two Money values. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// AbsDiff returns the absolute difference between two Money values
func (m Money) AbsDiff(other Money) (int64, error) {
	if err := m.checkCurrency(other); err != nil {
		return 0, err
	}
	diff := m.amount - other.amount
	if diff < 0 {
		diff = -diff
	}
	return diff, nil
}

// MajorString formats the amount as a decimal-string major-unit value
// ("12.34") for display and gateway requests
func (m Money) MajorString() string {
	return decimal.NewFromInt(m.amount).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// String implements fmt.Stringer
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.MajorString(), m.currency)
}

func (m Money) checkCurrency(other Money) error {
	if m.currency != other.currency {
		return errors.New("currency mismatch: " + m.currency + " vs " + other.currency)
	}
	return nil
}
