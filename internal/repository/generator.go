package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

// GenerateReadings produces n readings one per 10 seconds ending at now,
// oldest first, with values in [0, 1) kW at four decimal places.
func GenerateReadings(n int, now time.Time, rnd *rand.Rand) []domain.ElectricityReading {
	out := make([]domain.ElectricityReading, n)
	for i := 0; i < n; i++ {
		value := rnd.Int63n(10000)
		d := domain.MustDecimal(fmt.Sprintf("0.%04d", value))
		out[i] = domain.ElectricityReading{
			Time:    now.Add(-time.Duration(i) * 10 * time.Second).UTC(),
			Reading: d,
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// MeterIDs returns the identifiers of the demo smart meters, smart-meter-0 onwards.
func MeterIDs(count int) []string {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = fmt.Sprintf("smart-meter-%d", i)
	}
	return ids
}

// Appender is any reading store that can take new readings.
type Appender interface {
	Append(ctx context.Context, smartMeterID string, readings []domain.ElectricityReading) error
}

// Seed fills store with generated readings for each meter id.
func Seed(ctx context.Context, store Appender, meterIDs []string, perMeter int, now time.Time, rnd *rand.Rand) error {
	for _, id := range meterIDs {
		if err := store.Append(ctx, id, GenerateReadings(perMeter, now, rnd)); err != nil {
			return fmt.Errorf("seed %s: %w", id, err)
		}
	}
	return nil
}
