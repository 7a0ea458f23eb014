package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReportStore persists a rendered report and returns where it can be fetched.
type ReportStore interface {
	UploadReport(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ListReports(ctx context.Context, prefix string) ([]string, error)
}

type Notifier interface {
	SendAlert(ctx context.Context, subject, message string) error
}

// CostReport is a point-in-time snapshot of a meter's plan comparison.
type CostReport struct {
	ID           string     `json:"id"`
	SmartMeterID string     `json:"smartMeterId"`
	GeneratedAt  time.Time  `json:"generatedAt"`
	Costs        []PlanCost `json:"costs"`
	Location     string     `json:"location,omitempty"`
}

// ReportService publishes cost comparisons to object storage and notifies subscribers.
type ReportService struct {
	plans    *PricePlanService
	store    ReportStore
	notifier Notifier
	now      Clock
	newID    func() string
}

// NewReportService wires report publishing; notifier may be nil.
func NewReportService(plans *PricePlanService, store ReportStore, notifier Notifier) *ReportService {
	return &ReportService{
		plans:    plans,
		store:    store,
		notifier: notifier,
		now:      plans.now,
		newID:    uuid.NewString,
	}
}

// Publish renders the meter's recommendation list as JSON and uploads it under
// reports/<meter>/<id>.json. ok is false when the meter has no readings.
func (r *ReportService) Publish(ctx context.Context, smartMeterID string) (CostReport, bool, error) {
	costs, ok, err := r.plans.Recommend(ctx, smartMeterID, 0)
	if err != nil || !ok {
		return CostReport{}, ok, err
	}

	report := CostReport{
		ID:           r.newID(),
		SmartMeterID: smartMeterID,
		GeneratedAt:  r.now(),
		Costs:        costs,
	}
	body, err := json.Marshal(report)
	if err != nil {
		return CostReport{}, true, fmt.Errorf("failed to marshal report: %w", err)
	}

	key := reportPrefix(smartMeterID) + report.ID + ".json"
	location, err := r.store.UploadReport(ctx, key, body, "application/json")
	if err != nil {
		return CostReport{}, true, fmt.Errorf("failed to store report %s: %w", key, err)
	}
	report.Location = location

	if r.notifier != nil {
		if err := r.notifier.SendAlert(ctx, "Price plan comparison ready", summarize(report)); err != nil {
			log.Error().Err(err).Str("report", report.ID).Msg("report notification failed")
		}
	}
	return report, true, nil
}

// List returns the keys of every report published for the meter.
func (r *ReportService) List(ctx context.Context, smartMeterID string) ([]string, error) {
	keys, err := r.store.ListReports(ctx, reportPrefix(smartMeterID))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for %s: %w", smartMeterID, err)
	}
	return keys, nil
}

func reportPrefix(smartMeterID string) string {
	return "reports/" + smartMeterID + "/"
}

func summarize(report CostReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Price plan comparison for %s\n\n", report.SmartMeterID)
	for i, c := range report.Costs {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.PlanName, c.Cost)
	}
	if report.Location != "" {
		fmt.Fprintf(&b, "\nDownload: %s\n", report.Location)
	}
	return b.String()
}
