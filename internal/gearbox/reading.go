package gearbox

import "fmt"

// Gear bounds. Every recommendation lies in [MinGear, MaxGear].
const (
	MinGear   = 1
	MaxGear   = 6
	GearCount = MaxGear - MinGear + 1
)

// Mode is the driving profile the recommendation is tuned for.
type Mode int

const (
	// ModeEconomy prefers higher gears for fuel efficiency.
	ModeEconomy Mode = 0
	// ModeTowing prefers lower gears for torque.
	ModeTowing Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeEconomy:
		return "economy"
	case ModeTowing:
		return "towing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeEconomy || m == ModeTowing
}

// Reading is the input of a single gear decision.
// Callers are expected to validate it first (see package collector).
type Reading struct {
	Speed    float64 `json:"speed"`    // km/h, >= 0
	RPM      float64 `json:"rpm"`      // rev/min, >= 0
	Incline  float64 `json:"incline"`  // degrees, negative is downhill
	Throttle float64 `json:"throttle"` // percent, 0-100
	Mode     Mode    `json:"mode"`
}

func clampGear(gear int) int {
	if gear < MinGear {
		return MinGear
	}
	if gear > MaxGear {
		return MaxGear
	}
	return gear
}
