package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"gear-backend/internal/models"
)

// tokenPublisher is the part of mqtt.Client the publisher needs
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher handles MQTT publishing from channels
type Publisher struct {
	client tokenPublisher
	log    zerolog.Logger

	// Input channel (read by publisher, written by the advisor service)
	GearChan chan *models.GearRecommendation

	// Topic pattern
	gearTopic string // e.g., "vehicle/{device_id}/gear"
}

// PublisherConfig holds configuration for MQTT publisher
type PublisherConfig struct {
	GearTopic string // e.g., "vehicle/{device_id}/gear"
}

// NewPublisher creates a new MQTT publisher with channels
func NewPublisher(
	client mqtt.Client,
	config PublisherConfig,
	gearChan chan *models.GearRecommendation,
	logger zerolog.Logger,
) *Publisher {
	return &Publisher{
		client:    client,
		log:       logger,
		GearChan:  gearChan,
		gearTopic: config.GearTopic,
	}
}

// Start begins publishing gear recommendations from the channel
// Runs until context is cancelled or channel is closed
func (p *Publisher) Start(ctx context.Context) {
	p.log.Info().Str("topic", p.gearTopic).Msg("starting")

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("context cancelled, shutting down")
			return

		case rec, ok := <-p.GearChan:
			if !ok {
				p.log.Info().Msg("gear channel closed, shutting down")
				return
			}

			if err := p.publishRecommendation(rec); err != nil {
				p.log.Error().Err(err).Str("device_id", rec.DeviceID).Msg("error publishing gear recommendation")
			}
		}
	}
}

// publishRecommendation publishes one recommendation to the device's gear topic
func (p *Publisher) publishRecommendation(rec *models.GearRecommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal gear recommendation: %w", err)
	}

	topic := formatTopic(p.gearTopic, rec.DeviceID)

	token := p.client.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish gear recommendation: %w", token.Error())
	}

	p.log.Debug().Str("device_id", rec.DeviceID).Str("topic", topic).Int("gear", rec.Gear).Msg("published gear recommendation")
	return nil
}

// formatTopic replaces {device_id} placeholder with actual device ID
func formatTopic(topicPattern, deviceID string) string {
	return strings.ReplaceAll(topicPattern, "{device_id}", deviceID)
}
