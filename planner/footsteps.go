package planner

// FootSteps is a FIFO of footsteps ordered by time.
type FootSteps struct {
	steps []FootStep
}

// NewFootSteps returns a queue holding steps.
func NewFootSteps(steps ...FootStep) *FootSteps {
	return &FootSteps{steps: steps}
}

// Len returns the number of queued steps.
func (fs *FootSteps) Len() int {
	return len(fs.steps)
}

// At returns the i-th queued step, 0 being the current one.
func (fs *FootSteps) At(i int) FootStep {
	return fs.steps[i]
}

// PopFront drops the current step. It reports false if the queue was empty.
func (fs *FootSteps) PopFront() bool {
	if len(fs.steps) == 0 {
		return false
	}
	fs.steps = fs.steps[1:]
	return true
}

// Replace swaps the queue contents for steps.
func (fs *FootSteps) Replace(steps []FootStep) {
	fs.steps = steps
}

// Steps returns the queued steps. The slice must not be modified.
func (fs *FootSteps) Steps() []FootStep {
	return fs.steps
}
