package gearbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDriveTrain_Valid(t *testing.T) {
	require.NoError(t, DefaultDriveTrain().Validate())
}

func TestDriveTrain_WheelTorque(t *testing.T) {
	d := DefaultDriveTrain()

	assert.InDelta(t, 11375.0, d.WheelTorque(2000, 1), 1e-9)
	assert.InDelta(t, 1950.0, d.WheelTorque(2000, 6), 1e-9)
	assert.InDelta(t, 11375.0/1500, d.Acceleration(d.WheelTorque(2000, 1)), 1e-9)
}

func TestDriveTrain_WheelTorqueIgnoresRPM(t *testing.T) {
	d := DefaultDriveTrain()
	for gear := MinGear; gear <= MaxGear; gear++ {
		assert.Equal(t, d.WheelTorque(0, gear), d.WheelTorque(6500, gear), "gear %d", gear)
	}
}

func TestDriveTrain_TorqueFallsWithGear(t *testing.T) {
	d := DefaultDriveTrain()
	for gear := MinGear + 1; gear <= MaxGear; gear++ {
		assert.Less(t, d.WheelTorque(3000, gear), d.WheelTorque(3000, gear-1), "gear %d", gear)
	}
}

// With the default constants the acceleration search can only ever pick first
// gear, which pins every "best" branch of the selector to 1.
func TestBestGearByAcceleration_AlwaysFirstWithDefaults(t *testing.T) {
	d := DefaultDriveTrain()
	for rpm := 0.0; rpm <= 8000; rpm += 50 {
		require.Equal(t, 1, d.BestGearByAcceleration(rpm), "rpm=%v", rpm)
	}
}

func TestBestGearByAcceleration_FollowsLargestRatio(t *testing.T) {
	d := DefaultDriveTrain()
	d.GearRatios = [GearCount]float64{0.6, 0.8, 1.0, 1.4, 2.1, 3.5}
	assert.Equal(t, 6, d.BestGearByAcceleration(3000))

	d.GearRatios = [GearCount]float64{1, 1, 2, 2, 1, 1}
	assert.Equal(t, 3, d.BestGearByAcceleration(3000), "ties go to the lower gear")
}

func TestDriveTrain_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *DriveTrain)
		errMsg string
	}{
		{"zero mass", func(d *DriveTrain) { d.VehicleMass = 0 }, "vehicle mass"},
		{"negative radius", func(d *DriveTrain) { d.WheelRadius = -0.3 }, "wheel radius"},
		{"zero final drive", func(d *DriveTrain) { d.FinalDriveRatio = 0 }, "final drive"},
		{"zero torque", func(d *DriveTrain) { d.EngineTorque = 0 }, "engine torque"},
		{"zero ratio", func(d *DriveTrain) { d.GearRatios[3] = 0 }, "gear 4 ratio"},
		{"negative ratio", func(d *DriveTrain) { d.GearRatios[0] = -3.5 }, "gear 1 ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDriveTrain()
			tt.mutate(&d)
			err := d.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
