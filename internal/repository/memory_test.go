package repository

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown meter is absent", func(t *testing.T) {
		s := NewMemoryStore()

		rs, ok, err := s.Readings(ctx, "smart-meter-404")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, rs)
	})

	t.Run("empty batch registers a known meter with no readings", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Append(ctx, "smart-meter-0", nil))

		rs, ok, err := s.Readings(ctx, "smart-meter-0")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, rs)
	})

	t.Run("appends accumulate and reads are copies", func(t *testing.T) {
		s := NewMemoryStore()
		first := []domain.ElectricityReading{{Time: now, Reading: domain.MustDecimal("1")}}
		second := []domain.ElectricityReading{{Time: now.Add(time.Minute), Reading: domain.MustDecimal("2")}}
		require.NoError(t, s.Append(ctx, "m", first))
		require.NoError(t, s.Append(ctx, "m", second))

		rs, ok, err := s.Readings(ctx, "m")
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, rs, 2)

		rs[0].Time = time.Time{}
		again, _, _ := s.Readings(ctx, "m")
		assert.Equal(t, now, again[0].Time)
		meters, err := s.Meters(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"m"}, meters)
	})

	t.Run("concurrent appends are safe", func(t *testing.T) {
		s := NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.Append(ctx, "m", []domain.ElectricityReading{{Time: now.Add(time.Duration(i) * time.Second)}})
			}(i)
		}
		wg.Wait()

		rs, _, err := s.Readings(ctx, "m")
		require.NoError(t, err)
		assert.Len(t, rs, 20)
	})
}

func TestGenerateReadings(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	readings := GenerateReadings(5, now, rand.New(rand.NewSource(42)))

	require.Len(t, readings, 5)
	assert.Equal(t, now.Add(-40*time.Second), readings[0].Time)
	assert.Equal(t, now, readings[4].Time)
	for _, r := range readings {
		assert.GreaterOrEqual(t, r.Reading.Sign(), 0)
		assert.Equal(t, -1, r.Reading.Cmp(domain.NewDecimalFromInt64(1)))
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := Seed(ctx, s, MeterIDs(3), 4, time.Now(), rand.New(rand.NewSource(1)))

	require.NoError(t, err)
	meters, err := s.Meters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"smart-meter-0", "smart-meter-1", "smart-meter-2"}, meters)
	rs, ok, err := s.Readings(ctx, "smart-meter-2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, rs, 4)
}
