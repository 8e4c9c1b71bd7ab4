// Package lipm generates center of mass trajectories with the linear inverted pendulum model.
package lipm

import (
	"github.com/golang/geo/r2"

	"github.com/FaaizHaikal/gankenkun/planner"
)

// Sample is a planned CoM position at a time in seconds.
type Sample struct {
	Position r2.Point
	Time     float64
}

// TrajectoryGenerator turns footsteps into a destructively consumed sequence of CoM samples.
type TrajectoryGenerator interface {
	// SetParameters configures the pendulum height in meters, the control tick and the period of
	// the pendulum knots in seconds.
	SetParameters(comHeight, timeStep, comPeriod float64)

	// Update replaces the trajectory with the samples of the current step, starting at t.
	Update(t float64, steps []planner.FootStep)

	// Trajectory returns the samples not yet popped. The slice must not be modified.
	Trajectory() []Sample

	// PopFront removes and returns the oldest sample. It reports false if none remain.
	PopFront() (Sample, bool)
}

// Trajectory is a FIFO of samples. Popping advances a cursor over the buffer, and the buffer is
// reused when the trajectory is refilled.
type Trajectory struct {
	samples []Sample
	head    int
}

// Len returns the number of samples not yet popped.
func (tr *Trajectory) Len() int {
	return len(tr.samples) - tr.head
}

// Remaining returns the samples not yet popped.
func (tr *Trajectory) Remaining() []Sample {
	return tr.samples[tr.head:]
}

// Push appends a sample.
func (tr *Trajectory) Push(s Sample) {
	tr.samples = append(tr.samples, s)
}

// PopFront removes and returns the oldest sample.
func (tr *Trajectory) PopFront() (Sample, bool) {
	if tr.head >= len(tr.samples) {
		return Sample{}, false
	}
	s := tr.samples[tr.head]
	tr.head++
	return s, true
}

// Reset empties the trajectory, keeping its buffer.
func (tr *Trajectory) Reset() {
	tr.samples = tr.samples[:0]
	tr.head = 0
}
