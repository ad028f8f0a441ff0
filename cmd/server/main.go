package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gear-backend/internal/aggregator"
	"gear-backend/internal/api"
	"gear-backend/internal/database"
	"gear-backend/internal/gearbox"
	"gear-backend/internal/logging"
	"gear-backend/internal/mqtt"
	"gear-backend/internal/services"
	"gear-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "server")
	log.Info().Msg("starting gear advisor service")

	drivetrain, err := cfg.DriveTrain()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	selector := gearbox.NewSelector(drivetrain)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === Initialize ClickHouse database ===
	var db *database.ClickHouseDB
	if cfg.ClickHouseEnabled {
		db, err = database.NewClickHouseDB(ctx, database.Options{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePass,
		}, logging.Component(logger, "database"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize ClickHouse")
		}
		defer db.Close()
	} else {
		log.Warn().Msg("ClickHouse disabled, recommendations will not be stored")
	}

	// === Initialize MQTT Client ===
	mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	}, logging.Component(logger, "mqtt.client"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize MQTT client")
	}
	defer mqttClient.Close()

	// === Initialize Advisor Service ===
	advisorConfig := services.DefaultAdvisorServiceConfig()
	advisorConfig.Thresholds = aggregator.ChangeThresholds{
		SpeedDelta:  cfg.SpeedChangeThreshold,
		RPMDelta:    cfg.RPMChangeThreshold,
		MinInterval: cfg.SignalMinInterval,
	}

	var store services.Store
	if db != nil {
		store = db
	}
	advisor := services.NewAdvisorService(selector, store, advisorConfig, logging.Component(logger, "advisor"))

	// === Initialize MQTT Subscriber ===
	subscriber := mqtt.NewSubscriber(
		mqttClient.GetNativeClient(),
		mqtt.SubscriberConfig{
			TelemetryTopic: cfg.MQTTTopicTelemetry,
			SignalTopic:    cfg.MQTTTopicSignal,
		},
		advisor.TelemetryChan,
		advisor.SignalChan,
		logging.Component(logger, "mqtt.subscriber"),
	)

	if err := subscriber.SubscribeAll(); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to MQTT topics")
	}

	// === Initialize MQTT Publisher ===
	publisher := mqtt.NewPublisher(
		mqttClient.GetNativeClient(),
		mqtt.PublisherConfig{GearTopic: cfg.MQTTTopicGear},
		advisor.GearChan,
		logging.Component(logger, "mqtt.publisher"),
	)

	go publisher.Start(ctx)
	go advisor.Start(ctx)

	// === Initialize HTTP API ===
	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		var recStore api.RecommendationStore
		if db != nil {
			recStore = db
		}
		handler := api.NewHandler(selector, recStore, mqttClient)
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(handler, logging.Component(logger, "api"), cfg.HTTPCORSOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go serveHTTP(httpServer, log)
	}

	log.Info().
		Str("telemetry_topic", cfg.MQTTTopicTelemetry).
		Str("signal_topic", cfg.MQTTTopicSignal).
		Str("gear_topic", cfg.MQTTTopicGear).
		Str("http_addr", cfg.HTTPAddr).
		Bool("storage", db != nil).
		Msg("gear advisor service is running")

	// === Wait for interrupt signal ===
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// === Graceful shutdown ===
	log.Info().Msg("shutdown signal received, stopping services")
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown failed")
		}
		shutdownCancel()
	}
	cancel()

	// Give services time to finish processing
	time.Sleep(2 * time.Second)

	log.Info().Msg("shutdown complete")
}

func serveHTTP(srv *http.Server, log zerolog.Logger) {
	log.Info().Str("addr", srv.Addr).Msg("HTTP API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
}
