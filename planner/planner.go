// Package planner turns a walking goal into a time ordered queue of footsteps.
package planner

import (
	"github.com/golang/geo/r2"
)

// SupportFoot names the foot, or feet, bearing the body weight during a footstep.
type SupportFoot int

// The support feet.
const (
	LeftFoot SupportFoot = iota
	RightFoot
	BothFeet
)

func (s SupportFoot) String() string {
	switch s {
	case LeftFoot:
		return "left"
	case RightFoot:
		return "right"
	case BothFeet:
		return "both"
	}
	return "unknown"
}

// Opposite returns the other single foot. BothFeet has no opposite and is returned unchanged.
func (s SupportFoot) Opposite() SupportFoot {
	switch s {
	case LeftFoot:
		return RightFoot
	case RightFoot:
		return LeftFoot
	}
	return s
}

// Status is the gait status the planner plans from.
type Status int

// The gait statuses.
const (
	Start Status = iota
	Walking
)

func (s Status) String() string {
	if s == Walking {
		return "walking"
	}
	return "start"
}

// FootStep is a planned foot placement. Rotation is in radians and Time in seconds from the start
// of the plan.
type FootStep struct {
	Position r2.Point
	Rotation float64
	Time     float64
	Support  SupportFoot
}

// Planner produces and maintains the footstep queue.
type Planner interface {
	// Plan replaces the queue with the steps that take the robot from the current pose to the goal.
	Plan(goal r2.Point, goalOrientation float64, current r2.Point, currentOrientation float64,
		nextSupport SupportFoot, status Status)

	// FootSteps returns the queue. Callers may pop consumed steps from its front.
	FootSteps() *FootSteps

	// SetParameters configures the stride limits (rotation in radians), the duration of a step in
	// seconds and the lateral distance of each foot from the body center line.
	SetParameters(maxStride r2.Point, maxRotation, period, footYOffset float64)
}
