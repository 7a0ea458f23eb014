package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/strategy"
)

var ErrInvalidDays = errors.New("day must be between 0 and 3650000")

// maxUsageDays bounds the usage window to keep calendar arithmetic in range.
const maxUsageDays = 3650000

// placeholderCost is reported by UsageSummary until a real per-user tariff exists.
var placeholderCost = domain.NewDecimalFromInt64(10)

// Clock returns the current instant.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// MeterReadingSource looks up every reading recorded for a smart meter.
// ok is false when the meter is unknown; a known meter may still have zero readings.
type MeterReadingSource interface {
	Readings(ctx context.Context, smartMeterID string) (readings []domain.ElectricityReading, ok bool, err error)
}

// UsageSummary describes a meter's consumption over a recent window.
type UsageSummary struct {
	AverageReading domain.Decimal `json:"averageReading"`
	UsageTime      domain.Decimal `json:"usageTime"`
	EnergyConsumed domain.Decimal `json:"energyConsumed"`
	Cost           domain.Decimal `json:"cost"`
}

type PlanCost struct {
	PlanName string         `json:"planName"`
	Cost     domain.Decimal `json:"cost"`
}

type PricePlanService struct {
	catalog  domain.Catalog
	source   MeterReadingSource
	strategy strategy.CostCalculationStrategy
	now      Clock
}

type Option func(*PricePlanService)

func WithClock(c Clock) Option {
	return func(s *PricePlanService) { s.now = c }
}

func WithStrategy(st strategy.CostCalculationStrategy) Option {
	return func(s *PricePlanService) { s.strategy = st }
}

func NewPricePlanService(catalog domain.Catalog, source MeterReadingSource, opts ...Option) *PricePlanService {
	s := &PricePlanService{
		catalog:  catalog,
		source:   source,
		strategy: strategy.AverageRateStrategy{},
		now:      systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PricePlanService) Catalog() domain.Catalog { return s.catalog }

// CostsPerPlan prices all of a meter's readings against every plan in the catalog.
// ok is false when the meter has no readings on record.
func (s *PricePlanService) CostsPerPlan(ctx context.Context, smartMeterID string) (map[string]domain.Decimal, bool, error) {
	readings, ok, err := s.source.Readings(ctx, smartMeterID)
	if err != nil || !ok {
		return nil, false, err
	}

	costs := make(map[string]domain.Decimal, s.catalog.Len())
	for _, plan := range s.catalog.Plans() {
		cost, err := s.strategy.CalculateCost(readings, plan)
		if err != nil {
			return nil, true, fmt.Errorf("price plan %q: %w", plan.PlanName, err)
		}
		costs[plan.PlanName] = cost
	}
	return costs, true, nil
}

// Recommend orders the catalog by cost for the meter, cheapest first.
// A positive limit truncates the list.
func (s *PricePlanService) Recommend(ctx context.Context, smartMeterID string, limit int) ([]PlanCost, bool, error) {
	costs, ok, err := s.CostsPerPlan(ctx, smartMeterID)
	if err != nil || !ok {
		return nil, ok, err
	}

	out := make([]PlanCost, 0, len(costs))
	for _, plan := range s.catalog.Plans() {
		out = append(out, PlanCost{PlanName: plan.PlanName, Cost: costs[plan.PlanName]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost.Cmp(out[j].Cost) < 0 })

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, true, nil
}

// UsageSummary summarises readings taken strictly after now minus days.
func (s *PricePlanService) UsageSummary(ctx context.Context, smartMeterID string, days int) (UsageSummary, bool, error) {
	if days < 0 || days > maxUsageDays {
		return UsageSummary{}, false, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}
	readings, ok, err := s.source.Readings(ctx, smartMeterID)
	if err != nil || !ok {
		return UsageSummary{}, false, err
	}

	since := s.now().AddDate(0, 0, -days)
	recent := make([]domain.ElectricityReading, 0, len(readings))
	for _, r := range readings {
		if r.Time.After(since) {
			recent = append(recent, r)
		}
	}

	average, err := strategy.AverageReading(recent)
	if err != nil {
		return UsageSummary{}, true, fmt.Errorf("readings of the last %d days: %w", days, err)
	}
	elapsed, err := strategy.ElapsedHours(recent)
	if err != nil {
		return UsageSummary{}, true, err
	}

	return UsageSummary{
		AverageReading: average,
		UsageTime:      elapsed,
		EnergyConsumed: average.Mul(elapsed),
		Cost:           placeholderCost,
	}, true, nil
}
