// Package gearbox implements the gear recommendation engine.
//
// A recommendation is computed from a single Reading in three steps: the raw
// readings are mapped to graded scores in [0,1] (scores.go), every gear is
// ranked by the wheel acceleration the DriveTrain can deliver (drivetrain.go),
// and an ordered rule table picks the final gear for the driving mode
// (selector.go).
//
// Nothing in this package performs I/O or keeps state between calls. A
// Selector only holds a DriveTrain value and may be shared between goroutines.
package gearbox
