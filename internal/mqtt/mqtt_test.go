package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gear-backend/internal/gearbox"
	"gear-backend/internal/models"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.sent = append(f.sent, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return fakeToken{err: f.err}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestSubscriber(buffer int) *Subscriber {
	s := NewSubscriber(nil, SubscriberConfig{SendTimeout: 10 * time.Millisecond},
		make(chan *models.VehicleTelemetry, buffer),
		make(chan *models.SignalReading, buffer),
		zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestExtractDeviceID(t *testing.T) {
	tests := map[string]string{
		"vehicle/truck-7/telemetry":  "truck-7",
		"vehicle/truck-7/signal/rpm": "truck-7",
		"vehicle/":                   "",
		"vehicle":                    "",
	}
	for topic, want := range tests {
		assert.Equal(t, want, extractDeviceID(topic), topic)
	}
}

func TestExtractSignalName(t *testing.T) {
	assert.Equal(t, "rpm", extractSignalName("vehicle/truck-7/signal/rpm"))
	assert.Equal(t, "", extractSignalName("vehicle/truck-7/telemetry"))
}

func TestFormatTopic(t *testing.T) {
	assert.Equal(t, "vehicle/truck-7/gear", formatTopic("vehicle/{device_id}/gear", "truck-7"))
	assert.Equal(t, "gears", formatTopic("gears", "truck-7"))
}

func TestHandleTelemetry(t *testing.T) {
	s := newTestSubscriber(1)

	s.handleTelemetry(nil, fakeMessage{
		topic:   "vehicle/truck-7/telemetry",
		payload: []byte(`{"device_id":"other","speed":45,"rpm":2000,"incline":2,"throttle":30,"mode":1}`),
	})

	require.Len(t, s.TelemetryChan, 1)
	got := <-s.TelemetryChan
	assert.Equal(t, "truck-7", got.DeviceID)
	assert.Equal(t, fixedNow, got.Timestamp)
	require.NotNil(t, got.Speed)
	assert.Equal(t, 45.0, *got.Speed)
	assert.Equal(t, models.ModeField("1"), got.Mode)
}

func TestHandleTelemetryKeepsPayloadTimestamp(t *testing.T) {
	s := newTestSubscriber(1)

	s.handleTelemetry(nil, fakeMessage{
		topic:   "vehicle/truck-7/telemetry",
		payload: []byte(`{"timestamp":"2024-01-02T03:04:05Z","speed":45}`),
	})

	got := <-s.TelemetryChan
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got.Timestamp.UTC())
}

func TestHandleTelemetryDropsBadPayload(t *testing.T) {
	s := newTestSubscriber(1)

	s.handleTelemetry(nil, fakeMessage{topic: "vehicle/truck-7/telemetry", payload: []byte(`{not json`)})

	assert.Empty(t, s.TelemetryChan)
}

func TestHandleTelemetryDropsWhenChannelFull(t *testing.T) {
	s := newTestSubscriber(1)
	msg := fakeMessage{topic: "vehicle/truck-7/telemetry", payload: []byte(`{"speed":1}`)}

	s.handleTelemetry(nil, msg)
	s.handleTelemetry(nil, msg)

	assert.Len(t, s.TelemetryChan, 1)
}

func TestHandleSignal(t *testing.T) {
	s := newTestSubscriber(1)

	s.handleSignal(nil, fakeMessage{topic: "vehicle/truck-7/signal/rpm", payload: []byte(" 2450.5\n")})

	require.Len(t, s.SignalChan, 1)
	got := <-s.SignalChan
	assert.Equal(t, &models.SignalReading{
		Timestamp: fixedNow,
		DeviceID:  "truck-7",
		Signal:    models.SignalRPM,
		Value:     2450.5,
	}, got)
}

func TestHandleSignalRejects(t *testing.T) {
	tests := []struct {
		name string
		msg  fakeMessage
	}{
		{"unknown signal", fakeMessage{topic: "vehicle/truck-7/signal/oil", payload: []byte("1")}},
		{"missing signal", fakeMessage{topic: "vehicle/truck-7/signal", payload: []byte("1")}},
		{"not a number", fakeMessage{topic: "vehicle/truck-7/signal/speed", payload: []byte("fast")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSubscriber(1)
			s.handleSignal(nil, tt.msg)
			assert.Empty(t, s.SignalChan)
		})
	}
}

func TestPublishRecommendation(t *testing.T) {
	fake := &fakePublisher{}
	p := &Publisher{client: fake, log: zerolog.Nop(), gearTopic: "vehicle/{device_id}/gear"}
	rec := &models.GearRecommendation{
		DeviceID: "truck-7",
		Gear:     3,
		Rule:     gearbox.RuleCruise,
		Mode:     "economy",
		BestGear: 1,
	}

	require.NoError(t, p.publishRecommendation(rec))

	require.Len(t, fake.sent, 1)
	assert.Equal(t, "vehicle/truck-7/gear", fake.sent[0].topic)
	assert.Equal(t, byte(1), fake.sent[0].qos)
	assert.False(t, fake.sent[0].retained)

	var decoded models.GearRecommendation
	require.NoError(t, json.Unmarshal(fake.sent[0].payload, &decoded))
	assert.Equal(t, 3, decoded.Gear)
	assert.Equal(t, gearbox.RuleCruise, decoded.Rule)
}

func TestPublishRecommendationError(t *testing.T) {
	fake := &fakePublisher{err: errors.New("broker gone")}
	p := &Publisher{client: fake, log: zerolog.Nop(), gearTopic: "vehicle/{device_id}/gear"}

	err := p.publishRecommendation(&models.GearRecommendation{DeviceID: "truck-7", Gear: 2})
	assert.ErrorContains(t, err, "broker gone")
}

func TestPublisherStartDrainsUntilClosed(t *testing.T) {
	fake := &fakePublisher{}
	gearChan := make(chan *models.GearRecommendation, 2)
	p := &Publisher{client: fake, log: zerolog.Nop(), GearChan: gearChan, gearTopic: "g/{device_id}"}

	gearChan <- &models.GearRecommendation{DeviceID: "a", Gear: 1}
	gearChan <- &models.GearRecommendation{DeviceID: "b", Gear: 2}
	close(gearChan)

	p.Start(context.Background())

	require.Len(t, fake.sent, 2)
	assert.Equal(t, "g/a", fake.sent[0].topic)
	assert.Equal(t, "g/b", fake.sent[1].topic)
}

func TestClientOptions(t *testing.T) {
	c := &Client{
		config: ClientConfig{Broker: "tcp://broker:1883", ClientID: "gear-advisor", Username: "u", Password: "p"},
		log:    zerolog.Nop(),
	}

	opts := c.clientOptions()

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "broker:1883", opts.Servers[0].Host)
	assert.Equal(t, "gear-advisor", opts.ClientID)
	assert.Equal(t, "u", opts.Username)
	assert.True(t, opts.AutoReconnect)
	assert.False(t, c.IsConnected())
}
