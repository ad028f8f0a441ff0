package aggregator

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gear-backend/internal/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBuffer() (*TelemetryBuffer, *clock, *[]*models.VehicleTelemetry) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tb := NewTelemetryBuffer(ChangeThresholds{SpeedDelta: 1, RPMDelta: 100, MinInterval: time.Second}, zerolog.Nop())
	tb.now = c.now

	var emitted []*models.VehicleTelemetry
	tb.SetTelemetryCallback(func(t *models.VehicleTelemetry) {
		emitted = append(emitted, t)
	})
	return tb, c, &emitted
}

func send(tb *TelemetryBuffer, device, signal string, value float64) {
	tb.Update(&models.SignalReading{DeviceID: device, Signal: signal, Value: value})
}

func sendAll(tb *TelemetryBuffer, device string, speed, rpm, mode float64) {
	send(tb, device, models.SignalSpeed, speed)
	send(tb, device, models.SignalRPM, rpm)
	send(tb, device, models.SignalIncline, 2)
	send(tb, device, models.SignalThrottle, 30)
	send(tb, device, models.SignalMode, mode)
}

func TestEmitsOnlyWhenComplete(t *testing.T) {
	tb, _, emitted := newTestBuffer()

	send(tb, "v1", models.SignalSpeed, 45)
	send(tb, "v1", models.SignalRPM, 2000)
	send(tb, "v1", models.SignalIncline, 2)
	send(tb, "v1", models.SignalThrottle, 30)
	assert.Empty(t, *emitted)

	send(tb, "v1", models.SignalMode, 1)
	require.Len(t, *emitted, 1)

	got := (*emitted)[0]
	assert.Equal(t, "v1", got.DeviceID)
	assert.Equal(t, 45.0, *got.Speed)
	assert.Equal(t, 2000.0, *got.RPM)
	assert.Equal(t, 2.0, *got.Incline)
	assert.Equal(t, 30.0, *got.Throttle)
	assert.Equal(t, models.ModeField("1"), got.Mode)
}

func TestRateLimit(t *testing.T) {
	tb, c, emitted := newTestBuffer()
	sendAll(tb, "v1", 45, 2000, 0)
	require.Len(t, *emitted, 1)

	c.advance(500 * time.Millisecond)
	send(tb, "v1", models.SignalSpeed, 80)
	assert.Len(t, *emitted, 1)

	c.advance(600 * time.Millisecond)
	send(tb, "v1", models.SignalSpeed, 81)
	assert.Len(t, *emitted, 2)
}

func TestChangeThresholds(t *testing.T) {
	tb, c, emitted := newTestBuffer()
	sendAll(tb, "v1", 45, 2000, 0)
	require.Len(t, *emitted, 1)

	c.advance(2 * time.Second)
	send(tb, "v1", models.SignalSpeed, 45.5)
	send(tb, "v1", models.SignalRPM, 2050)
	send(tb, "v1", models.SignalIncline, 8)
	assert.Len(t, *emitted, 1, "small changes and incline do not trigger")

	send(tb, "v1", models.SignalRPM, 2100)
	assert.Len(t, *emitted, 2, "rpm delta reaches threshold")

	c.advance(2 * time.Second)
	send(tb, "v1", models.SignalMode, 1)
	assert.Len(t, *emitted, 3, "mode change triggers")
}

func TestDevicesAreIndependent(t *testing.T) {
	tb, _, emitted := newTestBuffer()
	sendAll(tb, "v1", 45, 2000, 0)
	sendAll(tb, "v2", 10, 900, 1)

	require.Len(t, *emitted, 2)
	assert.Equal(t, "v1", (*emitted)[0].DeviceID)
	assert.Equal(t, "v2", (*emitted)[1].DeviceID)
	assert.Len(t, tb.devices, 2)
}

func TestNoCallback(t *testing.T) {
	tb := NewTelemetryBuffer(ChangeThresholds{}, zerolog.Nop())
	assert.NotPanics(t, func() { sendAll(tb, "v1", 45, 2000, 0) })
	require.Contains(t, tb.devices, "v1")
	assert.NotNil(t, tb.devices["v1"].LastSent)
}
