package collector

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gear-backend/internal/gearbox"
)

func TestPrompter_Collect(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("45\n2000\n-2.5\n30\n1\n"), &out)

	r, err := p.Collect()
	require.NoError(t, err)
	assert.Equal(t, gearbox.Reading{Speed: 45, RPM: 2000, Incline: -2.5, Throttle: 30, Mode: gearbox.ModeTowing}, r)

	assert.Equal(t,
		"Enter vehicle speed (km/h): "+
			"Enter engine RPM: "+
			"Enter ground angle (degrees): "+
			"Enter throttle percentage (0-100): "+
			"Select mode (0 for EcoDrive, 1 for Tow Mode): ",
		out.String())
}

func TestPrompter_SingleLine(t *testing.T) {
	p := NewPrompter(strings.NewReader("150 3000 0 60 0"), &bytes.Buffer{})

	r, err := p.Collect()
	require.NoError(t, err)
	assert.Equal(t, 150.0, r.Speed)
	assert.Equal(t, gearbox.ModeEconomy, r.Mode)
}

func TestPrompter_StopsAtFirstInvalidAnswer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    error
		prompts int
	}{
		{"negative speed", "-1\n2000\n0\n10\n0\n", ErrInvalidSpeed, 1},
		{"text rpm", "50\nlots\n0\n10\n0\n", ErrInvalidRPM, 2},
		{"text angle", "50\n2000\nsteep\n10\n0\n", ErrInvalidIncline, 3},
		{"throttle over 100", "50\n2000\n0\n120\n0\n", ErrInvalidThrottle, 4},
		{"unknown mode", "50\n2000\n0\n10\n5\n", ErrInvalidMode, 5},
		{"input ends early", "50\n2000\n", ErrInvalidIncline, 3},
		{"empty input", "", ErrInvalidSpeed, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := NewPrompter(strings.NewReader(tt.input), &out).Collect()

			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.prompts, strings.Count(out.String(), ": "))
		})
	}
}
