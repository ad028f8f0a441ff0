package aggregator

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gear-backend/internal/models"
)

// ChangeThresholds defines thresholds for detecting significant changes
type ChangeThresholds struct {
	SpeedDelta  float64       // km/h
	RPMDelta    float64       // rev/min
	MinInterval time.Duration // minimum time between two emissions for one device
}

// DeviceState holds the latest signal values for a device
type DeviceState struct {
	DeviceID string
	Latest   map[string]*models.SignalReading
	LastSent *models.VehicleTelemetry
	LastEmit time.Time
	mu       sync.RWMutex
}

// TelemetryBuffer merges per-signal readings into complete telemetry per device
type TelemetryBuffer struct {
	devices    map[string]*DeviceState
	thresholds ChangeThresholds
	mu         sync.RWMutex
	log        zerolog.Logger
	now        func() time.Time

	// Callback for complete telemetry
	onTelemetry func(*models.VehicleTelemetry)
}

// NewTelemetryBuffer creates a new telemetry buffer
func NewTelemetryBuffer(thresholds ChangeThresholds, logger zerolog.Logger) *TelemetryBuffer {
	return &TelemetryBuffer{
		devices:    make(map[string]*DeviceState),
		thresholds: thresholds,
		log:        logger,
		now:        time.Now,
	}
}

// SetTelemetryCallback sets the function receiving merged telemetry
func (tb *TelemetryBuffer) SetTelemetryCallback(callback func(*models.VehicleTelemetry)) {
	tb.onTelemetry = callback
}

// getOrCreateDevice gets or creates a device state
func (tb *TelemetryBuffer) getOrCreateDevice(deviceID string) *DeviceState {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if device, exists := tb.devices[deviceID]; exists {
		return device
	}

	device := &DeviceState{
		DeviceID: deviceID,
		Latest:   make(map[string]*models.SignalReading),
	}
	tb.devices[deviceID] = device
	return device
}

var requiredSignals = []string{
	models.SignalSpeed,
	models.SignalRPM,
	models.SignalIncline,
	models.SignalThrottle,
	models.SignalMode,
}

// Update stores a signal value and emits telemetry when the device has a
// complete set that differs enough from the last one sent.
func (tb *TelemetryBuffer) Update(reading *models.SignalReading) {
	device := tb.getOrCreateDevice(reading.DeviceID)

	device.mu.Lock()
	device.Latest[reading.Signal] = reading
	telemetry := tb.ready(device)
	if telemetry != nil {
		device.LastSent = telemetry
		device.LastEmit = tb.now()
	}
	device.mu.Unlock()

	if telemetry == nil {
		return
	}

	if tb.onTelemetry == nil {
		tb.log.Warn().Str("device_id", device.DeviceID).Msg("no telemetry callback set, skipping")
		return
	}
	tb.onTelemetry(telemetry)
}

// ready returns the merged telemetry to emit, or nil. Caller holds device.mu.
func (tb *TelemetryBuffer) ready(device *DeviceState) *models.VehicleTelemetry {
	for _, signal := range requiredSignals {
		if device.Latest[signal] == nil {
			return nil
		}
	}

	telemetry := &models.VehicleTelemetry{
		DeviceID:  device.DeviceID,
		Timestamp: tb.now(),
		Speed:     models.Float64(device.Latest[models.SignalSpeed].Value),
		RPM:       models.Float64(device.Latest[models.SignalRPM].Value),
		Incline:   models.Float64(device.Latest[models.SignalIncline].Value),
		Throttle:  models.Float64(device.Latest[models.SignalThrottle].Value),
		Mode:      models.FormatModeValue(device.Latest[models.SignalMode].Value),
	}

	last := device.LastSent
	if last == nil {
		return telemetry
	}

	if since := tb.now().Sub(device.LastEmit); since < tb.thresholds.MinInterval {
		tb.log.Debug().Str("device_id", device.DeviceID).Dur("since", since).Msg("rate limiting telemetry")
		return nil
	}

	speedDelta := math.Abs(*telemetry.Speed - *last.Speed)
	rpmDelta := math.Abs(*telemetry.RPM - *last.RPM)
	if speedDelta < tb.thresholds.SpeedDelta && rpmDelta < tb.thresholds.RPMDelta && telemetry.Mode == last.Mode {
		return nil
	}

	tb.log.Debug().
		Str("device_id", device.DeviceID).
		Float64("speed_delta", speedDelta).
		Float64("rpm_delta", rpmDelta).
		Msg("significant change detected")
	return telemetry
}
