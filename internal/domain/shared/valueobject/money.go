package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnitScale is the number of decimal places of the minor currency unit
// (2 for cent-based currencies).
const minorUnitScale = 2

// Money is a value object representing a monetary amount as an integer count
// of minor currency units. Keeping amounts integral internally eliminates
// rounding drift between headers and lines; decimal representation exists
// only at the presentation boundary. Money is immutable - all operations
// return new instances.
type Money struct {
	units int64
}

// Zero is the zero monetary amount
var Zero = Money{}

// NewMoney creates Money from a count of minor units (e.g. cents)
func NewMoney(units int64) Money {
	return Money{units: units}
}

// NewMoneyFromDecimal creates Money from a decimal major-unit amount,
// rounding half away from zero to the minor unit.
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{units: amount.Round(minorUnitScale).Shift(minorUnitScale).IntPart()}
}

// NewMoneyFromString creates Money from a decimal string such as "236.25"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoneyFromDecimal(d), nil
}

// NewMoneyFromFloat creates Money from a float major-unit amount
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyFromDecimal(decimal.NewFromFloat(amount))
}

// Units returns the amount in minor units
func (m Money) Units() int64 {
	return m.units
}

// Decimal returns the amount in major units for presentation
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -minorUnitScale)
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	return Money{units: m.units + other.units}
}

// Sub returns m - other
func (m Money) Sub(other Money) Money {
	return Money{units: m.units - other.units}
}

// Neg returns the negated amount
func (m Money) Neg() Money {
	return Money{units: -m.units}
}

// MulQuantity returns m multiplied by a (possibly fractional) quantity,
// rounded half away from zero to the minor unit.
func (m Money) MulQuantity(qty decimal.Decimal) Money {
	product := decimal.New(m.units, 0).Mul(qty)
	return Money{units: product.Round(0).IntPart()}
}

// Percent returns pct percent of m, rounded to the minor unit.
// Percent(decimal 10) on 250.00 yields 25.00.
func (m Money) Percent(pct decimal.Decimal) Money {
	portion := decimal.New(m.units, 0).Mul(pct).Div(decimal.NewFromInt(100))
	return Money{units: portion.Round(0).IntPart()}
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.units == 0
}

// IsNegative returns true if the amount is below zero
func (m Money) IsNegative() bool {
	return m.units < 0
}

// IsPositive returns true if the amount is above zero
func (m Money) IsPositive() bool {
	return m.units > 0
}

// Equal returns true if both amounts are identical
func (m Money) Equal(other Money) bool {
	return m.units == other.units
}

// LessThan returns true if m < other
func (m Money) LessThan(other Money) bool {
	return m.units < other.units
}

// GreaterThan returns true if m > other
func (m Money) GreaterThan(other Money) bool {
	return m.units > other.units
}

// ClampNonNegative returns m, or zero when m is negative
func (m Money) ClampNonNegative() Money {
	if m.units < 0 {
		return Zero
	}
	return m
}

// String returns the major-unit decimal representation
func (m Money) String() string {
	return m.Decimal().StringFixed(minorUnitScale)
}

// MarshalJSON renders the amount as a decimal string at the boundary
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a decimal string or a JSON number
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var f float64
		if err2 := json.Unmarshal(data, &f); err2 != nil {
			return fmt.Errorf("invalid money value %s", string(data))
		}
		*m = NewMoneyFromFloat(f)
		return nil
	}
	parsed, err := NewMoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; Money persists as its minor-unit integer
func (m Money) Value() (driver.Value, error) {
	return m.units, nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		m.units = v
	case int32:
		m.units = int64(v)
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("cannot scan %q into Money: %w", string(v), err)
		}
		m.units = d.IntPart()
	case nil:
		m.units = 0
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	return nil
}

// GormDataType tells GORM to store Money as a bigint column
func (Money) GormDataType() string {
	return "bigint"
}
