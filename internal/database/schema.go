package database

// SQL schemas for all ClickHouse tables

const (
	// VehicleTelemetryTableSQL creates the vehicle_telemetry table
	VehicleTelemetryTableSQL = `
		CREATE TABLE IF NOT EXISTS vehicle_telemetry (
			timestamp DateTime64(3),
			device_id String,
			speed Float64,
			rpm Float64,
			incline Float64,
			throttle Float64,
			mode LowCardinality(String)
		) ENGINE = MergeTree()
		ORDER BY (device_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// GearRecommendationsTableSQL creates the gear_recommendations table
	GearRecommendationsTableSQL = `
		CREATE TABLE IF NOT EXISTS gear_recommendations (
			id UUID,
			timestamp DateTime64(3),
			device_id String,
			gear UInt8,
			rule LowCardinality(String),
			mode LowCardinality(String),
			best_gear UInt8,
			speed Float64,
			rpm Float64,
			incline Float64,
			throttle Float64,
			speed_score Float64,
			rpm_score Float64,
			incline_score Float64,
			throttle_score Float64
		) ENGINE = MergeTree()
		ORDER BY (device_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// DeviceRegistryTableSQL creates the device_registry table
	DeviceRegistryTableSQL = `
		CREATE TABLE IF NOT EXISTS device_registry (
			device_id String,
			name String,
			registered_at DateTime64(3),
			last_seen DateTime64(3),
			is_active Bool,
			last_mode LowCardinality(String)
		) ENGINE = ReplacingMergeTree(last_seen)
		ORDER BY device_id
	`
)

// AllTables returns all table creation SQL statements
func AllTables() []string {
	return []string{
		VehicleTelemetryTableSQL,
		GearRecommendationsTableSQL,
		DeviceRegistryTableSQL,
	}
}
