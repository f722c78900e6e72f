// Package types provides common types used across mintledger.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Money represents a non-negative monetary value in the smallest unit of its
// currency (wei for ETH). Amounts are 256-bit unsigned integers; there is no
// floating point anywhere.
//
// Examples:
//   - Ether(10) = Ξ10.00 (10 * 10^18 wei)
//   - Wei(30) = Ξ0.00000000000000003
//   - USD(4900) = $49.00
type Money struct {
	Amount   uint256.Int `json:"-"`
	Currency string      `json:"-"`
}

var weiPerEther = uint256.NewInt(1_000_000_000_000_000_000)

// Wei creates an ETH-denominated value from a wei amount.
func Wei(amount uint64) Money { return New(amount, "eth") }

// Ether creates an ETH-denominated value of n whole ether.
func Ether(n uint64) Money {
	m := Money{Currency: "eth"}
	m.Amount.Mul(uint256.NewInt(n), weiPerEther)
	return m
}

// USD creates a Money value in US Dollars (cents).
func USD(cents uint64) Money { return New(cents, "usd") }

// New creates a Money value from a smallest-unit amount.
func New(amount uint64, currency string) Money {
	m := Money{Currency: strings.ToLower(currency)}
	m.Amount.SetUint64(amount)
	return m
}

// FromBig creates a Money value from a 256-bit amount. The amount is copied.
func FromBig(amount *uint256.Int, currency string) Money {
	m := Money{Currency: strings.ToLower(currency)}
	m.Amount.Set(amount)
	return m
}

// Parse creates a Money value from a base-10 smallest-unit amount.
func Parse(amount, currency string) (Money, error) {
	v, err := uint256.FromDecimal(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", amount, err)
	}
	return FromBig(v, currency), nil
}

// Zero returns a zero Money value in the specified currency.
func Zero(currency string) Money { return Money{Currency: strings.ToLower(currency)} }

// Arithmetic operations

// Add adds two Money values. Panics if currencies don't match or the sum
// does not fit in 256 bits.
func (m Money) Add(other Money) Money {
	sum, ok := m.CheckedAdd(other)
	if !ok {
		panic("money: addition overflow")
	}
	return sum
}

// CheckedAdd adds two Money values and reports false on 256-bit overflow.
// Panics if currencies don't match.
func (m Money) CheckedAdd(other Money) (Money, bool) {
	m.assertSameCurrency(other)
	out := Money{Currency: m.Currency}
	_, overflow := out.Amount.AddOverflow(&m.Amount, &other.Amount)
	return out, !overflow
}

// Subtract subtracts another Money value. Panics if currencies don't match or
// the result would be negative.
func (m Money) Subtract(other Money) Money {
	m.assertSameCurrency(other)
	out := Money{Currency: m.Currency}
	if _, underflow := out.Amount.SubOverflow(&m.Amount, &other.Amount); underflow {
		panic("money: negative result")
	}
	return out
}

// CheckedMultiply multiplies the Money by a quantity and reports false on
// 256-bit overflow.
func (m Money) CheckedMultiply(qty uint64) (Money, bool) {
	out := Money{Currency: m.Currency}
	_, overflow := out.Amount.MulOverflow(&m.Amount, uint256.NewInt(qty))
	return out, !overflow
}

// Big returns a copy of the amount.
func (m Money) Big() *uint256.Int { return m.Amount.Clone() }

// Comparison methods

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return !m.Amount.IsZero() }

// SameCurrency reports whether both values are in the same currency.
func (m Money) SameCurrency(other Money) bool { return m.Currency == other.Currency }

// Equal returns true if both Money values are equal (same amount and currency).
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Eq(&other.Amount)
}

// LessThan returns true if this Money is less than other. Panics if currencies don't match.
func (m Money) LessThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount.Lt(&other.Amount)
}

// GreaterThan returns true if this Money is greater than other. Panics if currencies don't match.
func (m Money) GreaterThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount.Gt(&other.Amount)
}

// Formatting methods

// Dec returns the smallest-unit amount as a base-10 string.
func (m Money) Dec() string { return m.Amount.Dec() }

// FormatMajor returns the major unit string without currency symbol.
// Fractions longer than two digits drop trailing zeros:
// "10.00" for Ether(10), "0.50" for Wei(5e17), "49.00" for USD(4900).
func (m Money) FormatMajor() string {
	decimals := currencyDecimals(m.Currency)
	digits := m.Amount.Dec()
	if decimals == 0 {
		return digits
	}

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	major := digits[:len(digits)-decimals]
	minor := digits[len(digits)-decimals:]

	if decimals > 2 {
		minor = strings.TrimRight(minor, "0")
		if len(minor) < 2 {
			minor += strings.Repeat("0", 2-len(minor))
		}
	}
	return major + "." + minor
}

// String returns a human-readable string with currency symbol.
// Examples: "Ξ10.00", "$49.00".
func (m Money) String() string {
	return currencySymbol(m.Currency) + m.FormatMajor()
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display,omitempty"`
}

// MarshalJSON implements json.Marshaler. The amount is a base-10 string of
// the smallest unit so that values beyond 2^53 survive JavaScript clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.Amount.Dec(),
		Currency: m.Currency,
		Display:  m.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Amount == "" {
		raw.Amount = "0"
	}
	parsed, err := Parse(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Helper functions

// assertSameCurrency panics if currencies don't match.
func (m Money) assertSameCurrency(other Money) {
	if m.Currency != other.Currency {
		panic(fmt.Sprintf("money: currency mismatch: %s != %s", m.Currency, other.Currency))
	}
}

// currencySymbol returns the symbol for a currency code.
func currencySymbol(currency string) string {
	symbols := map[string]string{
		"eth": "Ξ",
		"usd": "$",
		"eur": "€",
		"gbp": "£",
		"sol": "◎",
	}
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym
	}
	return strings.ToUpper(currency) + " "
}

// currencyDecimals returns the number of decimal places for a currency.
func currencyDecimals(currency string) int {
	switch strings.ToLower(currency) {
	case "eth", "matic", "avax", "lux":
		return 18
	case "sol":
		return 9
	case "jpy", "krw":
		return 0
	default:
		return 2
	}
}

// Sum calculates the sum of multiple Money values. All must have the same currency.
func Sum(values ...Money) Money {
	if len(values) == 0 {
		return Zero("eth")
	}

	result := values[0]
	for i := 1; i < len(values); i++ {
		result = result.Add(values[i])
	}
	return result
}
