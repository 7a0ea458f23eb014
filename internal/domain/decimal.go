package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Precision is the number of significant digits kept by every operation.
const Precision = 34

var (
	arith      = newContext(Precision, apd.RoundHalfUp)
	truncating = newContext(2*Precision, apd.RoundDown)
)

func newContext(precision uint32, rounding apd.Rounder) *apd.Context {
	ctx := apd.BaseContext.WithPrecision(precision)
	ctx.Rounding = rounding
	return ctx
}

// Decimal is an immutable arbitrary-precision decimal number.
type Decimal struct {
	value apd.Decimal
}

func NewDecimal(s string) (Decimal, error) {
	var d apd.Decimal
	_, _, err := d.SetString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal: %w", err)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("invalid decimal: %q is not finite", s)
	}
	return Decimal{value: d}, nil
}

// MustDecimal is NewDecimal for literals known to be valid.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDecimalFromFloat converts f through its shortest decimal representation.
func NewDecimalFromFloat(f float64) (Decimal, error) {
	return NewDecimal(strconv.FormatFloat(f, 'f', -1, 64))
}

func NewDecimalFromInt64(i int64) Decimal {
	var d apd.Decimal
	d.SetInt64(i)
	return Decimal{value: d}
}

// String renders the value in plain notation, never with an exponent.
func (d Decimal) String() string {
	return d.value.Text('f')
}

func (d Decimal) IsZero() bool {
	return d.value.IsZero()
}

func (d Decimal) Sign() int {
	return d.value.Sign()
}

func (d Decimal) Cmp(other Decimal) int {
	return d.value.Cmp(&other.value)
}

// Add returns the sum of d and other.
func (d Decimal) Add(other Decimal) Decimal {
	var result apd.Decimal
	arith.Add(&result, &d.value, &other.value)
	return Decimal{value: result}
}

// Mul returns the product of d and other.
func (d Decimal) Mul(other Decimal) Decimal {
	var result apd.Decimal
	arith.Mul(&result, &d.value, &other.value)
	return Decimal{value: result}
}

// Quo returns d divided by other, rounded half-up to d's exponent: the
// quotient keeps as many fraction digits as the dividend has.
func (d Decimal) Quo(other Decimal) (Decimal, error) {
	if other.IsZero() {
		return Decimal{}, fmt.Errorf("division of %s by zero", d)
	}
	// Truncated digits past the target exponent decide half-up rounding
	// exactly, so the quotient is only rounded once.
	var quotient, result apd.Decimal
	if _, err := truncating.Quo(&quotient, &d.value, &other.value); err != nil {
		return Decimal{}, fmt.Errorf("divide %s by %s: %w", d, other, err)
	}
	if _, err := arith.Quantize(&result, &quotient, d.value.Exponent); err != nil {
		return Decimal{}, fmt.Errorf("divide %s by %s: %w", d, other, err)
	}
	return Decimal{value: result}, nil
}

// MarshalJSON encodes the value as a bare JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
// A JSON null leaves d unchanged.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	parsed, err := NewDecimal(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (d *Decimal) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Decimal{}
		return nil
	case int64:
		*d = NewDecimalFromInt64(v)
		return nil
	case float64:
		return d.scanString(strconv.FormatFloat(v, 'f', -1, 64))
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("scan decimal: unsupported source type %T", src)
	}
}

func (d *Decimal) scanString(s string) error {
	parsed, err := NewDecimal(s)
	if err != nil {
		return fmt.Errorf("scan decimal: %w", err)
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}
