package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"gear-backend/internal/gearbox"
)

type Config struct {
	// MQTT Configuration
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	// MQTT topics
	MQTTTopicTelemetry string
	MQTTTopicSignal    string
	MQTTTopicGear      string

	// ClickHouse Configuration
	ClickHouseEnabled bool
	ClickHouseAddr    string
	ClickHouseDB      string
	ClickHouseUser    string
	ClickHousePass    string

	// HTTP API, empty address disables it
	HTTPAddr        string
	HTTPCORSOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	// Per-signal buffer change detection
	SignalMinInterval    time.Duration
	SpeedChangeThreshold float64
	RPMChangeThreshold   float64

	// Drivetrain constants
	VehicleMass     float64
	WheelRadius     float64
	FinalDriveRatio float64
	EngineTorque    float64
	GearRatios      []float64
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	defaults := gearbox.DefaultDriveTrain()

	return &Config{
		// MQTT Configuration
		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "gear-advisor"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),

		// MQTT topics
		MQTTTopicTelemetry: getEnv("MQTT_TOPIC_TELEMETRY", "vehicle/+/telemetry"),
		MQTTTopicSignal:    getEnv("MQTT_TOPIC_SIGNAL", "vehicle/+/signal/+"),
		MQTTTopicGear:      getEnv("MQTT_TOPIC_GEAR", "vehicle/{device_id}/gear"),

		// ClickHouse Configuration
		ClickHouseEnabled: getEnvBool("CLICKHOUSE_ENABLED", true),
		ClickHouseAddr:    getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:      getEnv("CLICKHOUSE_DB", "vehicles"),
		ClickHouseUser:    getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePass:    getEnv("CLICKHOUSE_PASS", ""),

		HTTPAddr:        getEnvAllowEmpty("HTTP_ADDR", ":8080"),
		HTTPCORSOrigins: getEnvList("HTTP_CORS_ORIGINS"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SignalMinInterval:    getEnvDuration("SIGNAL_MIN_INTERVAL", time.Second),
		SpeedChangeThreshold: getEnvFloat("SPEED_CHANGE_THRESHOLD", 1.0),
		RPMChangeThreshold:   getEnvFloat("RPM_CHANGE_THRESHOLD", 100),

		VehicleMass:     getEnvFloat("VEHICLE_MASS", defaults.VehicleMass),
		WheelRadius:     getEnvFloat("WHEEL_RADIUS", defaults.WheelRadius),
		FinalDriveRatio: getEnvFloat("FINAL_DRIVE_RATIO", defaults.FinalDriveRatio),
		EngineTorque:    getEnvFloat("ENGINE_TORQUE", defaults.EngineTorque),
		GearRatios:      getEnvFloatList("GEAR_RATIOS", defaults.GearRatios[:]),
	}
}

// DriveTrain builds the drivetrain model from the configured constants.
func (c *Config) DriveTrain() (gearbox.DriveTrain, error) {
	d := gearbox.DefaultDriveTrain()
	d.VehicleMass = c.VehicleMass
	d.WheelRadius = c.WheelRadius
	d.FinalDriveRatio = c.FinalDriveRatio
	d.EngineTorque = c.EngineTorque

	if len(c.GearRatios) != gearbox.GearCount {
		return gearbox.DriveTrain{}, fmt.Errorf("need %d gear ratios, got %d", gearbox.GearCount, len(c.GearRatios))
	}
	copy(d.GearRatios[:], c.GearRatios)

	if err := d.Validate(); err != nil {
		return gearbox.DriveTrain{}, fmt.Errorf("invalid drivetrain: %w", err)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to parse as float, using default")
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to parse as bool, using default")
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to parse as duration, using default")
		return defaultValue
	}
	return d
}

// getEnvList splits a comma separated list, dropping empty entries.
func getEnvList(key string) []string {
	var list []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

// getEnvFloatList parses a comma separated list such as "3.5,2.1,1.4".
func getEnvFloatList(key string, defaultValue []float64) []float64 {
	value := os.Getenv(key)
	if value == "" {
		return append([]float64(nil), defaultValue...)
	}

	parts := strings.Split(value, ",")
	list := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to parse float list, using default")
			return append([]float64(nil), defaultValue...)
		}
		list = append(list, f)
	}
	return list
}
