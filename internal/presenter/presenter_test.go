package presenter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gear-backend/internal/gearbox"
)

func TestGear(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Gear(&buf, 3))
	assert.Equal(t, "Recommended gear: 3\n", buf.String())
}

func TestDecision(t *testing.T) {
	s := gearbox.NewSelector(gearbox.DefaultDriveTrain())
	r := gearbox.Reading{Speed: 45, RPM: 2000, Mode: gearbox.ModeEconomy}

	var buf bytes.Buffer
	require.NoError(t, Decision(&buf, r, s.Decide(r)))

	out := buf.String()
	assert.Contains(t, out, "Recommended gear: 3\n")
	assert.Contains(t, out, "mode:      economy")
	assert.Contains(t, out, "rule:      "+gearbox.RuleCruise)
	assert.Contains(t, out, "best gear: 1")
	assert.Contains(t, out, "speed=0.975")
}

func TestDecision_LowSpeedOverride(t *testing.T) {
	s := gearbox.NewSelector(gearbox.DefaultDriveTrain())
	r := gearbox.Reading{Speed: 3, Mode: gearbox.ModeTowing}

	var buf bytes.Buffer
	require.NoError(t, Decision(&buf, r, s.Decide(r)))

	assert.Contains(t, buf.String(), "Recommended gear: 1\n")
	assert.Contains(t, buf.String(), "best gear: n/a (low-speed override)")
	assert.Contains(t, buf.String(), "mode:      towing")
}
