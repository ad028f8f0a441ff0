package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog"

	"gear-backend/internal/collector"
	"gear-backend/internal/gearbox"
	"gear-backend/internal/models"
)

// ErrNotFound is returned when a query matches no rows.
var ErrNotFound = errors.New("not found")

// Options holds the ClickHouse connection settings
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

type ClickHouseDB struct {
	conn driver.Conn
	log  zerolog.Logger
}

func (o Options) clickhouseOptions() *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{o.Addr},
		Auth: clickhouse.Auth{
			Database: o.Database,
			Username: o.Username,
			Password: o.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}
}

// NewClickHouseDB opens a ClickHouse connection and creates missing tables
func NewClickHouseDB(ctx context.Context, opts Options, logger zerolog.Logger) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(opts.clickhouseOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.Info().Str("addr", opts.Addr).Msg("connected to ClickHouse")

	db := &ClickHouseDB{conn: conn, log: logger}

	if err := db.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitSchema creates the necessary tables if they don't exist
func (db *ClickHouseDB) InitSchema(ctx context.Context) error {
	for _, tableSQL := range AllTables() {
		if err := db.conn.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	db.log.Info().Msg("database schema initialized")
	return nil
}

// SaveTelemetry stores a validated reading
func (db *ClickHouseDB) SaveTelemetry(ctx context.Context, deviceID string, ts time.Time, r gearbox.Reading) error {
	query := `
		INSERT INTO vehicle_telemetry (timestamp, device_id, speed, rpm, incline, throttle, mode)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		ts,
		deviceID,
		r.Speed,
		r.RPM,
		r.Incline,
		r.Throttle,
		r.Mode.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert telemetry: %w", err)
	}

	return nil
}

// SaveRecommendation stores a gear decision
func (db *ClickHouseDB) SaveRecommendation(ctx context.Context, rec *models.GearRecommendation) error {
	query := `
		INSERT INTO gear_recommendations (
			id, timestamp, device_id, gear, rule, mode, best_gear,
			speed, rpm, incline, throttle,
			speed_score, rpm_score, incline_score, throttle_score
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		rec.ID,
		rec.Timestamp,
		rec.DeviceID,
		uint8(rec.Gear),
		rec.Rule,
		rec.Mode,
		uint8(rec.BestGear),
		rec.Reading.Speed,
		rec.Reading.RPM,
		rec.Reading.Incline,
		rec.Reading.Throttle,
		rec.Scores.Speed,
		rec.Scores.RPM,
		rec.Scores.Incline,
		rec.Scores.Throttle,
	)
	if err != nil {
		return fmt.Errorf("failed to insert gear recommendation: %w", err)
	}

	return nil
}

// LatestRecommendation returns the most recent gear decision for a device
func (db *ClickHouseDB) LatestRecommendation(ctx context.Context, deviceID string) (*models.GearRecommendation, error) {
	query := `
		SELECT
			id, timestamp, gear, rule, mode, best_gear,
			speed, rpm, incline, throttle,
			speed_score, rpm_score, incline_score, throttle_score
		FROM gear_recommendations
		WHERE device_id = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var (
		rec            = models.GearRecommendation{DeviceID: deviceID}
		gear, bestGear uint8
	)

	row := db.conn.QueryRow(ctx, query, deviceID)
	err := row.Scan(
		&rec.ID, &rec.Timestamp, &gear, &rec.Rule, &rec.Mode, &bestGear,
		&rec.Reading.Speed, &rec.Reading.RPM, &rec.Reading.Incline, &rec.Reading.Throttle,
		&rec.Scores.Speed, &rec.Scores.RPM, &rec.Scores.Incline, &rec.Scores.Throttle,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recommendation for %s: %w", deviceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest recommendation: %w", err)
	}

	rec.Gear = int(gear)
	rec.BestGear = int(bestGear)
	if mode, err := collector.ParseMode(rec.Mode); err == nil {
		rec.Reading.Mode = mode
	}

	return &rec, nil
}

// UpsertDevice inserts or updates a device in the registry
func (db *ClickHouseDB) UpsertDevice(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO device_registry (device_id, name, registered_at, last_seen, is_active, last_mode)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		device.DeviceID,
		device.Name,
		device.RegisteredAt,
		device.LastSeen,
		device.IsActive,
		device.LastMode,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}

	return nil
}

// Close closes the ClickHouse connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		db.log.Info().Msg("ClickHouse connection closed")
	}
	return nil
}
