// Package presenter renders gear recommendations for people.
package presenter

import (
	"fmt"
	"io"

	"gear-backend/internal/gearbox"
)

// Gear writes the one-line recommendation.
func Gear(w io.Writer, gear int) error {
	_, err := fmt.Fprintf(w, "Recommended gear: %d\n", gear)
	return err
}

// Decision writes the recommendation followed by how it was reached.
func Decision(w io.Writer, r gearbox.Reading, d gearbox.Decision) error {
	if err := Gear(w, d.Gear); err != nil {
		return err
	}

	best := "n/a (low-speed override)"
	if d.BestGear != 0 {
		best = fmt.Sprintf("%d", d.BestGear)
	}

	_, err := fmt.Fprintf(w,
		"  mode:      %s\n"+
			"  rule:      %s\n"+
			"  best gear: %s\n"+
			"  scores:    speed=%.3f rpm=%.3f incline=%.2f throttle=%.3f\n",
		r.Mode, d.Rule, best,
		d.Scores.Speed, d.Scores.RPM, d.Scores.Incline, d.Scores.Throttle)
	return err
}
