package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Signal names accepted on the per-signal topic (vehicle/{device_id}/signal/{name})
const (
	SignalSpeed    = "speed"
	SignalRPM      = "rpm"
	SignalIncline  = "incline"
	SignalThrottle = "throttle"
	SignalMode     = "mode"
)

// VehicleTelemetry is one complete set of readings from a vehicle.
// Numeric fields are pointers so that a missing field can be told apart from zero.
type VehicleTelemetry struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Speed     *float64  `json:"speed"`    // km/h
	RPM       *float64  `json:"rpm"`      // rev/min
	Incline   *float64  `json:"incline"`  // degrees
	Throttle  *float64  `json:"throttle"` // percent 0-100
	Mode      ModeField `json:"mode"`
}

// SignalReading is a single raw value received on a per-signal topic
type SignalReading struct {
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Signal    string    `json:"signal"`
	Value     float64   `json:"value"`
}

// ModeField holds a driving mode as sent by the vehicle: either the number
// (0 or 1) or the name ("economy", "towing"). It is parsed by the collector.
type ModeField string

// UnmarshalJSON accepts a JSON string or a bare JSON number. Numbers are
// rendered the way FormatModeValue renders a signal value, so 1.0 reads as "1".
func (m *ModeField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ModeField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := n.Float64()
	if err != nil {
		return err
	}
	*m = FormatModeValue(v)
	return nil
}

// FormatModeValue renders a numeric mode with no trailing zeros.
func FormatModeValue(v float64) ModeField {
	return ModeField(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float64 returns a pointer to v, for building telemetry values.
func Float64(v float64) *float64 {
	return &v
}
