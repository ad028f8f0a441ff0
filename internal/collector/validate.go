// Package collector turns raw operator or sensor input into a validated
// gearbox.Reading. Nothing reaches the gear selector without passing through here.
package collector

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gear-backend/internal/gearbox"
	"gear-backend/internal/models"
)

// Validate checks every field of r against its allowed range.
// The first invalid field is reported.
func Validate(r gearbox.Reading) error {
	if err := checkSpeed(r.Speed); err != nil {
		return err
	}
	if err := checkRPM(r.RPM); err != nil {
		return err
	}
	if err := checkIncline(r.Incline); err != nil {
		return err
	}
	if err := checkThrottle(r.Throttle); err != nil {
		return err
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: %d is not 0 (economy) or 1 (towing)", ErrInvalidMode, int(r.Mode))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkSpeed(v float64) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("%w: %v km/h, must be >= 0", ErrInvalidSpeed, v)
	}
	return nil
}

func checkRPM(v float64) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("%w: %v rpm, must be >= 0", ErrInvalidRPM, v)
	}
	return nil
}

func checkIncline(v float64) error {
	if !finite(v) {
		return fmt.Errorf("%w: %v degrees", ErrInvalidIncline, v)
	}
	return nil
}

func checkThrottle(v float64) error {
	if !finite(v) || v < 0 || v > 100 {
		return fmt.Errorf("%w: %v%%, must be within 0-100", ErrInvalidThrottle, v)
	}
	return nil
}

// ParseMode accepts the numeric mode used on the wire (0 economy, 1 towing)
// or its name.
func ParseMode(s string) (gearbox.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "eco", "economy", "ecodrive":
		return gearbox.ModeEconomy, nil
	case "1", "tow", "towing":
		return gearbox.ModeTowing, nil
	default:
		return 0, fmt.Errorf("%w: %q, want 0 (economy) or 1 (towing)", ErrInvalidMode, s)
	}
}

func parseNumber(s string, sentinel error) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", sentinel, s)
	}
	return v, nil
}

// ParseSpeed parses and range checks a speed in km/h.
func ParseSpeed(s string) (float64, error) {
	v, err := parseNumber(s, ErrInvalidSpeed)
	if err != nil {
		return 0, err
	}
	return v, checkSpeed(v)
}

// ParseRPM parses and range checks an engine speed.
func ParseRPM(s string) (float64, error) {
	v, err := parseNumber(s, ErrInvalidRPM)
	if err != nil {
		return 0, err
	}
	return v, checkRPM(v)
}

// ParseIncline parses a road grade in degrees. Any finite value is accepted.
func ParseIncline(s string) (float64, error) {
	v, err := parseNumber(s, ErrInvalidIncline)
	if err != nil {
		return 0, err
	}
	return v, checkIncline(v)
}

// ParseThrottle parses and range checks a throttle percentage.
func ParseThrottle(s string) (float64, error) {
	v, err := parseNumber(s, ErrInvalidThrottle)
	if err != nil {
		return 0, err
	}
	return v, checkThrottle(v)
}

// FromTelemetry converts a telemetry payload into a validated reading.
// Missing fields are errors, they are never defaulted.
func FromTelemetry(t *models.VehicleTelemetry) (gearbox.Reading, error) {
	switch {
	case t.Speed == nil:
		return gearbox.Reading{}, fmt.Errorf("%w: missing", ErrInvalidSpeed)
	case t.RPM == nil:
		return gearbox.Reading{}, fmt.Errorf("%w: missing", ErrInvalidRPM)
	case t.Incline == nil:
		return gearbox.Reading{}, fmt.Errorf("%w: missing", ErrInvalidIncline)
	case t.Throttle == nil:
		return gearbox.Reading{}, fmt.Errorf("%w: missing", ErrInvalidThrottle)
	case t.Mode == "":
		return gearbox.Reading{}, fmt.Errorf("%w: missing", ErrInvalidMode)
	}

	mode, err := ParseMode(string(t.Mode))
	if err != nil {
		return gearbox.Reading{}, err
	}

	r := gearbox.Reading{
		Speed:    *t.Speed,
		RPM:      *t.RPM,
		Incline:  *t.Incline,
		Throttle: *t.Throttle,
		Mode:     mode,
	}
	if err := Validate(r); err != nil {
		return gearbox.Reading{}, err
	}
	return r, nil
}
