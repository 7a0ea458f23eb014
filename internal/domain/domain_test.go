package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal(t *testing.T) {
	t.Run("parses and renders plain notation", func(t *testing.T) {
		d, err := NewDecimal("1250.50")
		require.NoError(t, err)
		assert.Equal(t, "1250.50", d.String())

		big, err := NewDecimal("2E+3")
		require.NoError(t, err)
		assert.Equal(t, "2000", big.String())
	})

	t.Run("rejects garbage and non-finite values", func(t *testing.T) {
		_, err := NewDecimal("abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid decimal")

		_, err = NewDecimal("Infinity")
		require.Error(t, err)
	})

	t.Run("divides to the dividend's scale rounding half up", func(t *testing.T) {
		cases := []struct{ x, y, want string }{
			{"2", "3", "1"},
			{"2.00", "3", "0.67"},
			{"1", "2", "1"},
			{"0.9", "2", "0.5"},
			{"0.8", "3", "0.3"},
			{"20", "0.3333333333333333", "60"},
			{"1.000", "7", "0.143"},
		}
		for _, c := range cases {
			got, err := MustDecimal(c.x).Quo(MustDecimal(c.y))
			require.NoError(t, err)
			assert.Equal(t, c.want, got.String(), "%s / %s", c.x, c.y)
		}
	})

	t.Run("from float uses the shortest representation", func(t *testing.T) {
		d, err := NewDecimalFromFloat(1200.0 / 3600)
		require.NoError(t, err)
		assert.Equal(t, "0.3333333333333333", d.String())

		_, err = NewDecimalFromFloat(math.NaN())
		require.Error(t, err)
	})

	t.Run("division by zero is an error", func(t *testing.T) {
		_, err := NewDecimalFromInt64(1).Quo(Decimal{})
		require.Error(t, err)
	})

	t.Run("add and multiply", func(t *testing.T) {
		sum := MustDecimal("0.1").Add(MustDecimal("0.2"))
		assert.Equal(t, 0, sum.Cmp(MustDecimal("0.3")))

		product := MustDecimal("1.5").Mul(NewDecimalFromInt64(4))
		assert.Equal(t, 0, product.Cmp(NewDecimalFromInt64(6)))
	})

	t.Run("json accepts numbers and strings", func(t *testing.T) {
		var r ElectricityReading
		require.NoError(t, json.Unmarshal([]byte(`{"time":"2024-01-01T00:00:00Z","reading":0.5}`), &r))
		assert.Equal(t, "0.5", r.Reading.String())

		require.NoError(t, json.Unmarshal([]byte(`{"time":"2024-01-01T00:00:00Z","reading":"1.25"}`), &r))
		assert.Equal(t, "1.25", r.Reading.String())

		out, err := json.Marshal(r)
		require.NoError(t, err)
		assert.JSONEq(t, `{"time":"2024-01-01T00:00:00Z","reading":1.25}`, string(out))
	})

	t.Run("json rejects unbalanced quotes", func(t *testing.T) {
		var d Decimal
		require.Error(t, d.UnmarshalJSON([]byte(`"1.5`)))
		require.Error(t, d.UnmarshalJSON([]byte(`1.5"`)))
		require.NoError(t, d.UnmarshalJSON([]byte(`"1.5"`)))
		assert.Equal(t, "1.5", d.String())
	})

	t.Run("json null or missing reading is rejected", func(t *testing.T) {
		var r ElectricityReading
		err := json.Unmarshal([]byte(`{"time":"2024-01-01T00:00:00Z","reading":null}`), &r)
		require.ErrorIs(t, err, ErrMissingReading)

		err = json.Unmarshal([]byte(`{"time":"2024-01-01T00:00:00Z"}`), &r)
		require.ErrorIs(t, err, ErrMissingReading)
	})

	t.Run("scans database values", func(t *testing.T) {
		var d Decimal
		require.NoError(t, d.Scan([]byte("12.345")))
		assert.Equal(t, "12.345", d.String())

		require.NoError(t, d.Scan(int64(7)))
		assert.Equal(t, "7", d.String())

		require.Error(t, d.Scan(time.Now()))
	})
}

func TestNewCatalog(t *testing.T) {
	plan := func(name, rate string) PricePlan {
		return PricePlan{PlanName: name, UnitRate: MustDecimal(rate)}
	}

	t.Run("keeps configuration order", func(t *testing.T) {
		c, err := NewCatalog(plan("b", "2"), plan("a", "1"))
		require.NoError(t, err)
		require.Equal(t, 2, c.Len())
		assert.Equal(t, "b", c.Plans()[0].PlanName)
		assert.Equal(t, "a", c.Plans()[1].PlanName)

		p, ok := c.Lookup("a")
		require.True(t, ok)
		assert.Equal(t, "1", p.UnitRate.String())
	})

	t.Run("duplicate names fail fast", func(t *testing.T) {
		_, err := NewCatalog(plan("a", "1"), plan("a", "2"))
		require.ErrorIs(t, err, ErrDuplicatePlan)
	})

	t.Run("missing name is invalid", func(t *testing.T) {
		_, err := NewCatalog(plan("", "1"))
		require.ErrorIs(t, err, ErrInvalidPlan)
	})

	t.Run("negative rate is invalid", func(t *testing.T) {
		_, err := NewCatalog(plan("a", "-1"))
		require.ErrorIs(t, err, ErrInvalidPlan)
	})

	t.Run("plans returns a copy", func(t *testing.T) {
		c, err := NewCatalog(plan("a", "1"))
		require.NoError(t, err)
		c.Plans()[0].PlanName = "mutated"
		assert.Equal(t, "a", c.Plans()[0].PlanName)
	})
}
