// Package strategy holds the cost calculation used to price a set of meter
// readings against a single price plan.
package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

var (
	ErrEmptyReadingSet     = errors.New("no readings to calculate with")
	ErrDegenerateTimeRange = errors.New("readings span zero elapsed time")
)

// CostCalculationStrategy prices readings against one plan.
type CostCalculationStrategy interface {
	CalculateCost(readings []domain.ElectricityReading, plan domain.PricePlan) (domain.Decimal, error)
}

// StrategyFunc adapts a plain function to CostCalculationStrategy.
type StrategyFunc func(readings []domain.ElectricityReading, plan domain.PricePlan) (domain.Decimal, error)

func (f StrategyFunc) CalculateCost(readings []domain.ElectricityReading, plan domain.PricePlan) (domain.Decimal, error) {
	return f(readings, plan)
}

// AverageRateStrategy charges the average reading per elapsed hour at the plan's unit rate:
//
//	cost = (average / elapsedHours) * unitRate
type AverageRateStrategy struct{}

func (AverageRateStrategy) CalculateCost(readings []domain.ElectricityReading, plan domain.PricePlan) (domain.Decimal, error) {
	average, err := AverageReading(readings)
	if err != nil {
		return domain.Decimal{}, err
	}
	hours, err := ElapsedHours(readings)
	if err != nil {
		return domain.Decimal{}, err
	}
	if hours.IsZero() {
		return domain.Decimal{}, fmt.Errorf("%w: %d readings share one timestamp", ErrDegenerateTimeRange, len(readings))
	}

	perHour, err := average.Quo(hours)
	if err != nil {
		return domain.Decimal{}, err
	}
	return perHour.Mul(plan.UnitRate), nil
}

// AverageReading is the arithmetic mean of the reading values, rounded half-up
// to the finest scale among them.
func AverageReading(readings []domain.ElectricityReading) (domain.Decimal, error) {
	if len(readings) == 0 {
		return domain.Decimal{}, ErrEmptyReadingSet
	}
	var sum domain.Decimal
	for _, r := range readings {
		sum = sum.Add(r.Reading)
	}
	return sum.Quo(domain.NewDecimalFromInt64(int64(len(readings))))
}

// ElapsedHours is the span between the earliest and latest reading, in hours.
// Sub-second remainders are dropped and the hours carry float64 precision.
func ElapsedHours(readings []domain.ElectricityReading) (domain.Decimal, error) {
	first, last, err := TimeRange(readings)
	if err != nil {
		return domain.Decimal{}, err
	}
	seconds := int64(last.Sub(first) / time.Second)
	return domain.NewDecimalFromFloat(float64(seconds) / 3600)
}

// TimeRange returns the earliest and latest reading timestamps.
func TimeRange(readings []domain.ElectricityReading) (time.Time, time.Time, error) {
	if len(readings) == 0 {
		return time.Time{}, time.Time{}, ErrEmptyReadingSet
	}
	first, last := readings[0].Time, readings[0].Time
	for _, r := range readings[1:] {
		if r.Time.Before(first) {
			first = r.Time
		}
		if r.Time.After(last) {
			last = r.Time
		}
	}
	return first, last, nil
}
