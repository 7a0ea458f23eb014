package service

import (
	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

type Services struct {
	Readings   *ReadingService
	PricePlans *PricePlanService
	// Reports is nil unless cloud services are enabled.
	Reports *ReportService
}

func New(store ReadingStore, catalog domain.Catalog, topic string, opts ...Option) *Services {
	readings := NewReadingService(store, topic)
	return &Services{
		Readings:   readings,
		PricePlans: NewPricePlanService(catalog, store, opts...),
	}
}

// EnableReports attaches report publishing backed by store and notifier.
func (s *Services) EnableReports(store ReportStore, notifier Notifier) {
	s.Reports = NewReportService(s.PricePlans, store, notifier)
}
