package models

import (
	"time"

	"github.com/google/uuid"

	"gear-backend/internal/gearbox"
)

// GearRecommendation is the published and stored result of a gear decision
type GearRecommendation struct {
	ID        uuid.UUID       `json:"id"`
	DeviceID  string          `json:"device_id"`
	Timestamp time.Time       `json:"timestamp"`
	Gear      int             `json:"gear"`
	Rule      string          `json:"rule"`
	Mode      string          `json:"mode"`
	BestGear  int             `json:"best_gear"`
	Scores    gearbox.Scores  `json:"scores"`
	Reading   gearbox.Reading `json:"reading"`
}

// NewGearRecommendation builds a recommendation from a decision on r.
func NewGearRecommendation(deviceID string, ts time.Time, r gearbox.Reading, d gearbox.Decision) *GearRecommendation {
	return &GearRecommendation{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		Timestamp: ts,
		Gear:      d.Gear,
		Rule:      d.Rule,
		Mode:      r.Mode.String(),
		BestGear:  d.BestGear,
		Scores:    d.Scores,
		Reading:   r,
	}
}
