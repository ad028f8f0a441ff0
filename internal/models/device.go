package models

import "time"

// Device represents a vehicle known to the system
type Device struct {
	DeviceID     string    `json:"device_id"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
	LastSeen     time.Time `json:"last_seen"`
	IsActive     bool      `json:"is_active"`
	LastMode     string    `json:"last_mode"`
}
