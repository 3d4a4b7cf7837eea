// internal/domain/money.go
package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal" // For precise monetary calculations

	"walletledger/internal/util"
)

// Scale is the number of fractional digits every amount and balance carries.
const Scale = 2

var (
	// MaxAmount is the upper bound for any single amount and any wallet balance.
	MaxAmount = NewMoney(decimal.RequireFromString("999999999999.99"))
	// Tolerance is the absolute difference under which two amounts are treated as equal.
	Tolerance = NewMoney(decimal.New(1, -Scale))
	// Zero is 0.00.
	Zero = Money{value: decimal.Zero}
)

// Money is a fixed-point value with two fractional digits.
// The zero value is 0.00.
type Money struct {
	value decimal.Decimal
}

// Round2 rounds d half away from zero to two fractional digits.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// NewMoney wraps d, rounded to two fractional digits. It does not check bounds.
func NewMoney(d decimal.Decimal) Money {
	return Money{value: Round2(d)}
}

// ParseMoney parses a base-10 string such as "200.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: malformed amount %q", util.ErrInvalidInput, s)
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewAmount validates a requested movement amount and rounds it.
// The amount must be positive before and after rounding and must not exceed MaxAmount.
func NewAmount(d decimal.Decimal) (Money, error) {
	if !d.IsPositive() {
		return Money{}, util.ErrInvalidAmount
	}
	if d.GreaterThan(MaxAmount.value) {
		return Money{}, util.ErrAmountExceedsMaximum
	}
	m := NewMoney(d)
	if !m.IsPositive() {
		return Money{}, util.ErrInvalidAmount
	}
	return m, nil
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

func (m Money) Add(o Money) Money { return NewMoney(m.value.Add(o.value)) }

func (m Money) Sub(o Money) Money { return NewMoney(m.value.Sub(o.value)) }

func (m Money) Abs() Money { return Money{value: m.value.Abs()} }

func (m Money) Cmp(o Money) int { return m.value.Cmp(o.value) }

func (m Money) Equal(o Money) bool { return m.value.Equal(o.value) }

func (m Money) LessThan(o Money) bool { return m.value.LessThan(o.value) }

func (m Money) GreaterThan(o Money) bool { return m.value.GreaterThan(o.value) }

func (m Money) IsZero() bool { return m.value.IsZero() }

func (m Money) IsNegative() bool { return m.value.IsNegative() }

func (m Money) IsPositive() bool { return m.value.IsPositive() }

// WithinBounds reports whether m lies in [0, MaxAmount].
func (m Money) WithinBounds() bool {
	return !m.IsNegative() && !m.GreaterThan(MaxAmount)
}

// ApproxEqual reports whether |m - o| < Tolerance.
func (m Money) ApproxEqual(o Money) bool {
	return m.value.Sub(o.value).Abs().LessThan(Tolerance.value)
}

// ValidateBalance checks a balance about to be persisted.
func (m Money) ValidateBalance() error {
	if m.IsNegative() {
		return fmt.Errorf("%w: balance %s is negative", util.ErrInvalidAmount, m)
	}
	if m.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: balance %s", util.ErrBalanceExceedsMaximum, m)
	}
	return nil
}

// String renders m with exactly two fractional digits.
func (m Money) String() string { return m.value.StringFixed(Scale) }

// MarshalJSON renders m as a JSON string, e.g. "300.00".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON string or number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
