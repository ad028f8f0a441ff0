package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gear-backend/internal/aggregator"
	"gear-backend/internal/collector"
	"gear-backend/internal/gearbox"
	"gear-backend/internal/models"
)

// Store persists telemetry, recommendations and the device registry
type Store interface {
	SaveTelemetry(ctx context.Context, deviceID string, ts time.Time, r gearbox.Reading) error
	SaveRecommendation(ctx context.Context, rec *models.GearRecommendation) error
	UpsertDevice(ctx context.Context, device *models.Device) error
}

// AdvisorService turns incoming telemetry into gear recommendations,
// persists them and hands them to the publisher
type AdvisorService struct {
	selector *gearbox.Selector
	store    Store // nil disables persistence
	buffer   *aggregator.TelemetryBuffer
	log      zerolog.Logger

	// Input channels from MQTT subscribers
	TelemetryChan chan *models.VehicleTelemetry
	SignalChan    chan *models.SignalReading

	// Output channel to the publisher
	GearChan chan *models.GearRecommendation

	sendTimeout time.Duration

	mu      sync.Mutex
	devices map[string]*models.Device
}

// AdvisorServiceConfig holds configuration for the advisor service
type AdvisorServiceConfig struct {
	TelemetryChannelSize int
	SignalChannelSize    int
	GearChannelSize      int
	SendTimeout          time.Duration
	Thresholds           aggregator.ChangeThresholds
}

// DefaultAdvisorServiceConfig returns default configuration
func DefaultAdvisorServiceConfig() AdvisorServiceConfig {
	return AdvisorServiceConfig{
		TelemetryChannelSize: 100,
		SignalChannelSize:    500, // five signals per reading
		GearChannelSize:      100,
		SendTimeout:          time.Second,
		Thresholds: aggregator.ChangeThresholds{
			SpeedDelta:  1.0,
			RPMDelta:    100,
			MinInterval: time.Second,
		},
	}
}

// NewAdvisorService creates a new advisor service. store may be nil.
func NewAdvisorService(
	selector *gearbox.Selector,
	store Store,
	config AdvisorServiceConfig,
	logger zerolog.Logger,
) *AdvisorService {
	if config.SendTimeout <= 0 {
		config.SendTimeout = time.Second
	}
	s := &AdvisorService{
		selector:      selector,
		store:         store,
		log:           logger,
		TelemetryChan: make(chan *models.VehicleTelemetry, config.TelemetryChannelSize),
		SignalChan:    make(chan *models.SignalReading, config.SignalChannelSize),
		GearChan:      make(chan *models.GearRecommendation, config.GearChannelSize),
		sendTimeout:   config.SendTimeout,
		devices:       make(map[string]*models.Device),
	}
	s.buffer = aggregator.NewTelemetryBuffer(config.Thresholds, logger)
	s.buffer.SetTelemetryCallback(s.enqueueTelemetry)
	return s
}

// Start begins processing telemetry and signals from channels
// Runs until context is cancelled
func (s *AdvisorService) Start(ctx context.Context) {
	s.log.Info().Msg("starting")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.processTelemetryLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.processSignalLoop(ctx)
	}()

	wg.Wait()
	s.log.Info().Msg("shutdown complete")
}

// processTelemetryLoop continuously processes complete telemetry
func (s *AdvisorService) processTelemetryLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case telemetry, ok := <-s.TelemetryChan:
			if !ok {
				return
			}
			s.processTelemetry(ctx, telemetry)
		}
	}
}

// processSignalLoop feeds single signals into the telemetry buffer
func (s *AdvisorService) processSignalLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reading, ok := <-s.SignalChan:
			if !ok {
				return
			}
			s.buffer.Update(reading)
		}
	}
}

// enqueueTelemetry receives merged telemetry from the buffer
func (s *AdvisorService) enqueueTelemetry(telemetry *models.VehicleTelemetry) {
	select {
	case s.TelemetryChan <- telemetry:
	case <-time.After(s.sendTimeout):
		s.log.Warn().Str("device_id", telemetry.DeviceID).Msg("telemetry channel full, dropping merged telemetry")
	}
}

// processTelemetry validates one telemetry set, decides the gear, persists and forwards it
func (s *AdvisorService) processTelemetry(ctx context.Context, telemetry *models.VehicleTelemetry) *models.GearRecommendation {
	reading, err := collector.FromTelemetry(telemetry)
	if err != nil {
		s.log.Warn().Err(err).
			Str("device_id", telemetry.DeviceID).
			Str("field", collector.FieldOf(err)).
			Msg("dropping invalid telemetry")
		return nil
	}

	decision := s.selector.Decide(reading)
	rec := models.NewGearRecommendation(telemetry.DeviceID, telemetry.Timestamp, reading, decision)

	s.log.Debug().
		Str("device_id", rec.DeviceID).
		Int("gear", rec.Gear).
		Str("rule", rec.Rule).
		Msg("gear decided")

	if s.store != nil {
		s.persist(ctx, rec)
		s.registerDevice(ctx, rec)
	}

	select {
	case s.GearChan <- rec:
	case <-time.After(s.sendTimeout):
		s.log.Warn().Str("device_id", rec.DeviceID).Msg("gear channel full, dropping recommendation")
	}

	return rec
}

// persist saves the reading and the decision; failures are logged and skipped
func (s *AdvisorService) persist(ctx context.Context, rec *models.GearRecommendation) {
	if err := s.store.SaveTelemetry(ctx, rec.DeviceID, rec.Timestamp, rec.Reading); err != nil {
		s.log.Error().Err(err).Str("device_id", rec.DeviceID).Msg("error saving telemetry")
	}
	if err := s.store.SaveRecommendation(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("device_id", rec.DeviceID).Msg("error saving recommendation")
	}
}

// registerDevice upserts a device on first sight and whenever its mode changes
func (s *AdvisorService) registerDevice(ctx context.Context, rec *models.GearRecommendation) {
	s.mu.Lock()
	device, known := s.devices[rec.DeviceID]
	if known && device.LastMode == rec.Mode {
		device.LastSeen = rec.Timestamp
		s.mu.Unlock()
		return
	}
	if !known {
		device = &models.Device{
			DeviceID:     rec.DeviceID,
			Name:         rec.DeviceID,
			RegisteredAt: rec.Timestamp,
			IsActive:     true,
		}
		s.devices[rec.DeviceID] = device
	}
	device.LastSeen = rec.Timestamp
	device.LastMode = rec.Mode
	snapshot := *device
	s.mu.Unlock()

	// Best effort - don't fail if registration fails
	if err := s.store.UpsertDevice(ctx, &snapshot); err != nil {
		s.log.Error().Err(err).Str("device_id", rec.DeviceID).Msg("error registering device")
	}
}
