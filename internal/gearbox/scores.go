package gearbox

import "math"

// Scores holds the graded score of each reading.
// They are heuristic weights compared against fixed thresholds, not probabilities.
type Scores struct {
	Speed    float64 `json:"speed"`
	RPM      float64 `json:"rpm"`
	Incline  float64 `json:"incline"`
	Throttle float64 `json:"throttle"`
}

// ScoreReading computes all four scores for r.
func ScoreReading(r Reading) Scores {
	return Scores{
		Speed:    SpeedScore(r.Speed),
		RPM:      RPMScore(r.RPM),
		Incline:  InclineScore(r.Incline),
		Throttle: ThrottleScore(r.Throttle),
	}
}

// unit caps a segment value at 1. Segments restart at each breakpoint and
// overshoot near the top of their interval (rpm 2400 gives 1.23).
func unit(v float64) float64 {
	return math.Min(v, 1)
}

// SpeedScore maps a speed in km/h onto [0,1], saturating at 50 km/h.
func SpeedScore(speed float64) float64 {
	switch {
	case speed < 5:
		return 0
	case speed < 15:
		return unit((speed - 5) / 10)
	case speed < 30:
		return unit(0.3 + (speed-15)/30)
	case speed < 50:
		return unit(0.6 + (speed-30)/40)
	default:
		return 1
	}
}

// RPMScore maps engine speed onto [0,1], saturating at 4000 rpm.
func RPMScore(rpm float64) float64 {
	switch {
	case rpm < 500:
		return 0
	case rpm < 1200:
		return unit((rpm - 500) / 700)
	case rpm < 2500:
		return unit(0.3 + (rpm-1200)/1300)
	case rpm < 4000:
		return unit(0.6 + (rpm-2500)/1500)
	default:
		return 1
	}
}

// InclineScore buckets the road grade. Unlike the other scores it is a step
// function: steep downhill 0.1, downhill 0.3, flat 0.5, uphill 0.7, steep uphill 0.9.
func InclineScore(angle float64) float64 {
	switch {
	case angle < -15:
		return 0.1
	case angle < -5:
		return 0.3
	case angle < 5:
		return 0.5
	case angle < 15:
		return 0.7
	default:
		return 0.9
	}
}

// ThrottleScore maps throttle percentage onto [0.05,1], saturating at 60%.
func ThrottleScore(throttle float64) float64 {
	switch {
	case throttle < 5:
		return 0.05
	case throttle < 20:
		return unit(0.2 + (throttle-5)/15)
	case throttle < 60:
		return unit(0.5 + (throttle-20)/80)
	default:
		return 1
	}
}
