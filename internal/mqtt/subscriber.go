package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"gear-backend/internal/models"
)

// Default time a handler waits on a full channel before dropping the message
const defaultSendTimeout = time.Second

// Subscriber handles MQTT subscriptions and writes messages to channels
type Subscriber struct {
	client mqtt.Client
	log    zerolog.Logger

	// Output channels (written by subscriber, read by the advisor service)
	TelemetryChan chan *models.VehicleTelemetry
	SignalChan    chan *models.SignalReading

	// Topic patterns
	telemetryTopic string
	signalTopic    string

	sendTimeout time.Duration
	now         func() time.Time
}

// SubscriberConfig holds configuration for MQTT subscriber
type SubscriberConfig struct {
	TelemetryTopic string        // e.g., "vehicle/+/telemetry"
	SignalTopic    string        // e.g., "vehicle/+/signal/+"
	SendTimeout    time.Duration // zero means one second
}

// NewSubscriber creates a new MQTT subscriber with channels
func NewSubscriber(
	client mqtt.Client,
	config SubscriberConfig,
	telemetryChan chan *models.VehicleTelemetry,
	signalChan chan *models.SignalReading,
	logger zerolog.Logger,
) *Subscriber {
	timeout := config.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Subscriber{
		client:         client,
		log:            logger,
		TelemetryChan:  telemetryChan,
		SignalChan:     signalChan,
		telemetryTopic: config.TelemetryTopic,
		signalTopic:    config.SignalTopic,
		sendTimeout:    timeout,
		now:            time.Now,
	}
}

// SubscribeAll subscribes to all configured vehicle topics
func (s *Subscriber) SubscribeAll() error {
	if s.telemetryTopic != "" {
		if err := s.subscribeToTopic(s.telemetryTopic, s.handleTelemetry); err != nil {
			return fmt.Errorf("failed to subscribe to telemetry topic: %w", err)
		}
		s.log.Info().Str("topic", s.telemetryTopic).Msg("subscribed to telemetry topic")
	}

	if s.signalTopic != "" {
		if err := s.subscribeToTopic(s.signalTopic, s.handleSignal); err != nil {
			return fmt.Errorf("failed to subscribe to signal topic: %w", err)
		}
		s.log.Info().Str("topic", s.signalTopic).Msg("subscribed to signal topic")
	}

	return nil
}

// subscribeToTopic is a helper function to subscribe to a topic with a handler
func (s *Subscriber) subscribeToTopic(topic string, handler mqtt.MessageHandler) error {
	token := s.client.Subscribe(topic, 1, handler)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// handleTelemetry processes full telemetry documents and writes them to the channel
func (s *Subscriber) handleTelemetry(_ mqtt.Client, msg mqtt.Message) {
	var telemetry models.VehicleTelemetry
	if err := json.Unmarshal(msg.Payload(), &telemetry); err != nil {
		s.log.Warn().Err(err).Str("topic", msg.Topic()).Msg("error unmarshaling telemetry")
		return
	}

	// Topic wins over payload (vehicle/{device_id}/telemetry)
	if deviceID := extractDeviceID(msg.Topic()); deviceID != "" {
		telemetry.DeviceID = deviceID
	}
	if telemetry.DeviceID == "" {
		s.log.Warn().Str("topic", msg.Topic()).Msg("could not extract device ID from topic")
		return
	}

	if telemetry.Timestamp.IsZero() {
		telemetry.Timestamp = s.now()
	}

	s.log.Debug().Str("device_id", telemetry.DeviceID).Msg("received telemetry")

	select {
	case s.TelemetryChan <- &telemetry:
	case <-time.After(s.sendTimeout):
		s.log.Warn().Str("device_id", telemetry.DeviceID).Msg("telemetry channel full, dropping message")
	}
}

// handleSignal processes a raw float published on vehicle/{device_id}/signal/{name}
func (s *Subscriber) handleSignal(_ mqtt.Client, msg mqtt.Message) {
	deviceID := extractDeviceID(msg.Topic())
	signal := extractSignalName(msg.Topic())
	if deviceID == "" || !knownSignal(signal) {
		s.log.Warn().Str("topic", msg.Topic()).Msg("unrecognized signal topic")
		return
	}

	var value float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(msg.Payload())), "%f", &value); err != nil {
		s.log.Warn().Err(err).Str("device_id", deviceID).Str("signal", signal).Msg("error parsing signal value")
		return
	}

	reading := &models.SignalReading{
		Timestamp: s.now(),
		DeviceID:  deviceID,
		Signal:    signal,
		Value:     value,
	}

	s.log.Debug().Str("device_id", deviceID).Str("signal", signal).Float64("value", value).Msg("received signal")

	select {
	case s.SignalChan <- reading:
	case <-time.After(s.sendTimeout):
		s.log.Warn().Str("device_id", deviceID).Str("signal", signal).Msg("signal channel full, dropping message")
	}
}

// extractDeviceID extracts device ID from MQTT topic
// Example: "vehicle/truck-7/telemetry" -> "truck-7"
// Example: "vehicle/truck-7/signal/rpm" -> "truck-7"
func extractDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}

// extractSignalName returns the fourth topic segment
// Example: "vehicle/truck-7/signal/rpm" -> "rpm"
func extractSignalName(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 4 {
		return parts[3]
	}
	return ""
}

func knownSignal(name string) bool {
	switch name {
	case models.SignalSpeed, models.SignalRPM, models.SignalIncline, models.SignalThrottle, models.SignalMode:
		return true
	}
	return false
}
