package gearbox

import "fmt"

// DriveTrain holds the mechanical constants of the vehicle.
// It is a read-only value: build it once at startup and pass it around by value.
type DriveTrain struct {
	VehicleMass     float64            `json:"vehicle_mass"`      // kg
	Gravity         float64            `json:"gravity"`           // m/s², not used by the ranking
	WheelRadius     float64            `json:"wheel_radius"`      // m
	FinalDriveRatio float64            `json:"final_drive_ratio"` // dimensionless
	EngineTorque    float64            `json:"engine_torque"`     // N·m
	GearRatios      [GearCount]float64 `json:"gear_ratios"`       // index 0 is first gear
}

// DefaultDriveTrain returns the reference passenger-car drivetrain.
func DefaultDriveTrain() DriveTrain {
	return DriveTrain{
		VehicleMass:     1500,
		Gravity:         9.81,
		WheelRadius:     0.3,
		FinalDriveRatio: 3.9,
		EngineTorque:    250,
		GearRatios:      [GearCount]float64{3.5, 2.1, 1.4, 1.0, 0.8, 0.6},
	}
}

// Validate checks that every constant the model divides by or multiplies with is positive.
func (d DriveTrain) Validate() error {
	if d.VehicleMass <= 0 {
		return fmt.Errorf("vehicle mass must be positive, got %v", d.VehicleMass)
	}
	if d.WheelRadius <= 0 {
		return fmt.Errorf("wheel radius must be positive, got %v", d.WheelRadius)
	}
	if d.FinalDriveRatio <= 0 {
		return fmt.Errorf("final drive ratio must be positive, got %v", d.FinalDriveRatio)
	}
	if d.EngineTorque <= 0 {
		return fmt.Errorf("engine torque must be positive, got %v", d.EngineTorque)
	}
	for i, ratio := range d.GearRatios {
		if ratio <= 0 {
			return fmt.Errorf("gear %d ratio must be positive, got %v", i+MinGear, ratio)
		}
	}
	return nil
}

// WheelTorque returns the torque delivered to the wheels in the given gear, in N·m.
// The engine torque is taken as flat over the rev range, so rpm does not enter
// the result. gear must be in [MinGear, MaxGear].
func (d DriveTrain) WheelTorque(rpm float64, gear int) float64 {
	return d.EngineTorque * d.GearRatios[gear-MinGear] * d.FinalDriveRatio / d.WheelRadius
}

// Acceleration converts wheel torque into vehicle acceleration.
func (d DriveTrain) Acceleration(torque float64) float64 {
	return torque / d.VehicleMass
}

// BestGearByAcceleration returns the gear with the strictly greatest
// acceleration at rpm, lowest gear winning ties. With a flat torque curve this
// is always the gear with the largest ratio, which for any conventional
// gearbox is first gear.
func (d DriveTrain) BestGearByAcceleration(rpm float64) int {
	best, bestAccel := MinGear, 0.0
	for gear := MinGear; gear <= MaxGear; gear++ {
		if a := d.Acceleration(d.WheelTorque(rpm, gear)); a > bestAccel {
			best, bestAccel = gear, a
		}
	}
	return best
}
