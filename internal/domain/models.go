package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPlan    = errors.New("invalid price plan")
	ErrDuplicatePlan  = errors.New("duplicate price plan name")
	ErrMissingReading = errors.New("electricity reading has no reading value")
)

// ElectricityReading is a single instantaneous meter observation.
type ElectricityReading struct {
	Time    time.Time `db:"time" json:"time"`
	Reading Decimal   `db:"reading" json:"reading"`
}

// UnmarshalJSON rejects a reading whose value is missing or null.
func (r *ElectricityReading) UnmarshalJSON(b []byte) error {
	var raw struct {
		Time    time.Time `json:"time"`
		Reading *Decimal  `json:"reading"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Reading == nil {
		return ErrMissingReading
	}
	*r = ElectricityReading{Time: raw.Time, Reading: *raw.Reading}
	return nil
}

type PricePlan struct {
	PlanName       string  `db:"plan_name" json:"planName"`
	EnergySupplier string  `db:"energy_supplier" json:"energySupplier"`
	UnitRate       Decimal `db:"unit_rate" json:"unitRate"`
}

// MeterReadings is the payload shape used by the store endpoint and the MQTT ingest topic.
type MeterReadings struct {
	SmartMeterID        string               `json:"smartMeterId"`
	ElectricityReadings []ElectricityReading `json:"electricityReadings"`
}

// Catalog is an ordered, immutable list of price plans with unique names.
type Catalog struct {
	plans []PricePlan
}

func NewCatalog(plans ...PricePlan) (Catalog, error) {
	seen := make(map[string]struct{}, len(plans))
	for i, p := range plans {
		if p.PlanName == "" {
			return Catalog{}, fmt.Errorf("%w: plan %d has no name", ErrInvalidPlan, i)
		}
		if p.UnitRate.Sign() < 0 {
			return Catalog{}, fmt.Errorf("%w: plan %q has negative unit rate %s", ErrInvalidPlan, p.PlanName, p.UnitRate)
		}
		if _, ok := seen[p.PlanName]; ok {
			return Catalog{}, fmt.Errorf("%w: %q", ErrDuplicatePlan, p.PlanName)
		}
		seen[p.PlanName] = struct{}{}
	}
	out := make([]PricePlan, len(plans))
	copy(out, plans)
	return Catalog{plans: out}, nil
}

// Plans returns a copy of the catalog in configuration order.
func (c Catalog) Plans() []PricePlan {
	out := make([]PricePlan, len(c.plans))
	copy(out, c.plans)
	return out
}

func (c Catalog) Len() int { return len(c.plans) }

func (c Catalog) Lookup(name string) (PricePlan, bool) {
	for _, p := range c.plans {
		if p.PlanName == name {
			return p, true
		}
	}
	return PricePlan{}, false
}
