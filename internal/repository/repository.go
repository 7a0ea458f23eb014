package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS smart_meters (
	id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS meter_readings (
	smart_meter_id TEXT NOT NULL REFERENCES smart_meters(id),
	time TIMESTAMPTZ NOT NULL,
	reading NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS meter_readings_meter_time ON meter_readings (smart_meter_id, time);
CREATE TABLE IF NOT EXISTS price_plans (
	position SERIAL,
	plan_name TEXT PRIMARY KEY,
	energy_supplier TEXT NOT NULL DEFAULT '',
	unit_rate NUMERIC NOT NULL
);`

// Repos is the Postgres-backed reading store and price plan catalog.
type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

func (r *Repos) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Meters lists every registered smart meter id in ascending order.
func (r *Repos) Meters(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := r.db.SelectContext(ctx, &out, `SELECT id FROM smart_meters ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list meters: %w", err)
	}
	return out, nil
}

// Readings returns ok=false when the meter was never registered.
func (r *Repos) Readings(ctx context.Context, smartMeterID string) ([]domain.ElectricityReading, bool, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM smart_meters WHERE id = $1`, smartMeterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup meter %s: %w", smartMeterID, err)
	}

	out := []domain.ElectricityReading{}
	err = r.db.SelectContext(ctx, &out,
		`SELECT time, reading FROM meter_readings WHERE smart_meter_id = $1 ORDER BY time`, smartMeterID)
	if err != nil {
		return nil, false, fmt.Errorf("select readings for %s: %w", smartMeterID, err)
	}
	return out, true, nil
}

type readingRow struct {
	SmartMeterID string `db:"smart_meter_id"`
	domain.ElectricityReading
}

func (r *Repos) Append(ctx context.Context, smartMeterID string, readings []domain.ElectricityReading) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO smart_meters(id) VALUES ($1) ON CONFLICT DO NOTHING`, smartMeterID); err != nil {
		return fmt.Errorf("register meter %s: %w", smartMeterID, err)
	}
	if len(readings) > 0 {
		rows := make([]readingRow, len(readings))
		for i, rd := range readings {
			rows[i] = readingRow{SmartMeterID: smartMeterID, ElectricityReading: rd}
		}
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO meter_readings(smart_meter_id, time, reading) VALUES (:smart_meter_id, :time, :reading)`, rows)
		if err != nil {
			return fmt.Errorf("insert readings for %s: %w", smartMeterID, err)
		}
	}
	return tx.Commit()
}

// ListPricePlans returns the stored catalog in insertion order.
func (r *Repos) ListPricePlans(ctx context.Context) ([]domain.PricePlan, error) {
	var out []domain.PricePlan
	err := r.db.SelectContext(ctx, &out,
		`SELECT plan_name, energy_supplier, unit_rate FROM price_plans ORDER BY position`)
	return out, err
}

// UpsertPricePlans writes plans, replacing rates of plans that already exist.
func (r *Repos) UpsertPricePlans(ctx context.Context, plans []domain.PricePlan) error {
	if len(plans) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO price_plans(plan_name, energy_supplier, unit_rate) VALUES (:plan_name, :energy_supplier, :unit_rate)
		 ON CONFLICT (plan_name) DO UPDATE SET energy_supplier = EXCLUDED.energy_supplier, unit_rate = EXCLUDED.unit_rate`, plans)
	return err
}

// Catalog prefers the plans already stored, writing configured on first start.
func (r *Repos) Catalog(ctx context.Context, configured domain.Catalog) (domain.Catalog, error) {
	plans, err := r.ListPricePlans(ctx)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load price plans: %w", err)
	}
	if len(plans) > 0 {
		return domain.NewCatalog(plans...)
	}
	if err := r.UpsertPricePlans(ctx, configured.Plans()); err != nil {
		return domain.Catalog{}, fmt.Errorf("store price plans: %w", err)
	}
	return configured, nil
}
