package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

var (
	ErrInvalidReadings   = errors.New("invalid meter readings")
	ErrMetersUnsupported = errors.New("reading store cannot list smart meters")
)

// ReadingStore is a MeterReadingSource that also accepts new readings.
type ReadingStore interface {
	MeterReadingSource
	Append(ctx context.Context, smartMeterID string, readings []domain.ElectricityReading) error
}

// MeterLister is implemented by reading stores that can enumerate their meters.
type MeterLister interface {
	Meters(ctx context.Context) ([]string, error)
}

// ReadingsTopic is the default MQTT topic readings are published on.
const ReadingsTopic = "energy/readings"

type ReadingService struct {
	store ReadingStore
	topic string
}

// NewReadingService builds a ReadingService ingesting from topic and its subtopics.
func NewReadingService(store ReadingStore, topic string) *ReadingService {
	if topic == "" {
		topic = ReadingsTopic
	}
	return &ReadingService{store: store, topic: topic}
}

func (s *ReadingService) Topic() string { return s.topic }

// Store validates and appends readings for a meter.
func (s *ReadingService) Store(ctx context.Context, m domain.MeterReadings) error {
	if m.SmartMeterID == "" {
		return fmt.Errorf("%w: smart meter id is required", ErrInvalidReadings)
	}
	if len(m.ElectricityReadings) == 0 {
		return fmt.Errorf("%w: no readings for %s", ErrInvalidReadings, m.SmartMeterID)
	}
	for i, r := range m.ElectricityReadings {
		if r.Time.IsZero() {
			return fmt.Errorf("%w: reading %d has no time", ErrInvalidReadings, i)
		}
	}

	readings := make([]domain.ElectricityReading, len(m.ElectricityReadings))
	for i, r := range m.ElectricityReadings {
		readings[i] = domain.ElectricityReading{Time: r.Time.UTC(), Reading: r.Reading}
	}
	return s.store.Append(ctx, m.SmartMeterID, readings)
}

func (s *ReadingService) Readings(ctx context.Context, smartMeterID string) ([]domain.ElectricityReading, bool, error) {
	return s.store.Readings(ctx, smartMeterID)
}

// Meters lists the known smart meter ids when the store supports it.
func (s *ReadingService) Meters(ctx context.Context) ([]string, error) {
	lister, ok := s.store.(MeterLister)
	if !ok {
		return nil, ErrMetersUnsupported
	}
	return lister.Meters(ctx)
}

// FromMQTT ingests a MeterReadings payload. When the payload carries no meter id
// the subtopic names the meter, as in "energy/readings/smart-meter-0".
func (s *ReadingService) FromMQTT(topic string, payload []byte) error {
	var m domain.MeterReadings
	if err := json.Unmarshal(payload, &m); err != nil {
		return fmt.Errorf("%w: decode payload from %s: %v", ErrInvalidReadings, topic, err)
	}
	if m.SmartMeterID == "" {
		m.SmartMeterID = strings.TrimPrefix(topic, s.topic+"/")
		if m.SmartMeterID == topic {
			m.SmartMeterID = ""
		}
	}
	return s.Store(context.Background(), m)
}
