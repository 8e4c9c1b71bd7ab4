package planner

import (
	"math"

	"github.com/golang/geo/r2"
)

const (
	// idleHold is how long the final double support step is held once the goal is reached.
	idleHold = 100.0
	// maxPlannedSteps bounds a single plan when the stride limits are degenerate.
	maxPlannedSteps = 1000
)

// StridePlanner plans evenly spaced footsteps on a straight line from the current pose to the goal,
// alternating support feet, with no stride exceeding the configured maximums.
type StridePlanner struct {
	maxStride   r2.Point
	maxRotation float64
	period      float64
	width       float64

	footSteps FootSteps
}

// NewStridePlanner returns a planner with an empty queue. SetParameters must be called before Plan.
func NewStridePlanner() *StridePlanner {
	return &StridePlanner{}
}

// SetParameters implements Planner.
func (p *StridePlanner) SetParameters(maxStride r2.Point, maxRotation, period, footYOffset float64) {
	p.maxStride = maxStride
	p.maxRotation = maxRotation
	p.period = period
	p.width = footYOffset
}

// FootSteps implements Planner.
func (p *StridePlanner) FootSteps() *FootSteps {
	return &p.footSteps
}

// Plan implements Planner. A Start status prepends a double support step held for two periods so
// the body can shift over the first support foot.
func (p *StridePlanner) Plan(
	goal r2.Point, goalOrientation float64,
	current r2.Point, currentOrientation float64,
	nextSupport SupportFoot, status Status,
) {
	if nextSupport == BothFeet {
		nextSupport = RightFoot
	}

	delta := goal.Sub(current)
	deltaA := goalOrientation - currentOrientation
	steps := math.Max(
		math.Max(math.Abs(delta.X)/p.maxStride.X, math.Abs(delta.Y)/p.maxStride.Y),
		math.Max(math.Abs(deltaA)/p.maxRotation, 1),
	)
	stride := delta.Mul(1 / steps)
	strideA := deltaA / steps

	var (
		t    float64
		plan []FootStep
	)
	if status == Start {
		plan = append(plan, FootStep{Position: current, Rotation: currentOrientation, Time: 0, Support: BothFeet})
		t += 2 * p.period
	}
	plan = append(plan, p.footStep(t, current, currentOrientation, nextSupport))
	nextSupport = nextSupport.Opposite()

	for i := 0; i < maxPlannedSteps && !p.withinStride(goal.Sub(current), goalOrientation-currentOrientation); i++ {
		t += p.period
		current = current.Add(stride)
		currentOrientation += strideA
		plan = append(plan, p.footStep(t, current, currentOrientation, nextSupport))
		nextSupport = nextSupport.Opposite()
	}

	t += p.period
	plan = append(plan, p.footStep(t, goal, goalOrientation, nextSupport))

	// two double support steps so a drained queue, which keeps its last three entries, rests on
	// both feet instead of replaying the goal step
	settle := FootStep{Position: goal, Rotation: goalOrientation, Support: BothFeet}
	for i := 0; i < 2; i++ {
		t += p.period
		settle.Time = t
		plan = append(plan, settle)
	}
	settle.Time = t + idleHold
	plan = append(plan, settle)
	p.footSteps.Replace(plan)
}

func (p *StridePlanner) withinStride(remaining r2.Point, remainingA float64) bool {
	return math.Abs(remaining.X) <= p.maxStride.X &&
		math.Abs(remaining.Y) <= p.maxStride.Y &&
		math.Abs(remainingA) <= p.maxRotation
}

// footStep places the support foot beside the body center: left feet at +width, right at -width.
func (p *StridePlanner) footStep(t float64, center r2.Point, rotation float64, support SupportFoot) FootStep {
	position := center
	switch support {
	case LeftFoot:
		position.Y += p.width
	case RightFoot:
		position.Y -= p.width
	case BothFeet:
	}
	return FootStep{Position: position, Rotation: rotation, Time: t, Support: support}
}
