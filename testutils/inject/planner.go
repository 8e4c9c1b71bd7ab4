package inject

import (
	"github.com/golang/geo/r2"

	"github.com/FaaizHaikal/gankenkun/planner"
)

// Planner is an injected footstep planner.
type Planner struct {
	planner.Planner
	PlanFunc func(goal r2.Point, goalOrientation float64, current r2.Point, currentOrientation float64,
		nextSupport planner.SupportFoot, status planner.Status)
	FootStepsFunc     func() *planner.FootSteps
	SetParametersFunc func(maxStride r2.Point, maxRotation, period, footYOffset float64)
}

// NewPlanner returns a Planner wrapping the stride planner.
func NewPlanner() *Planner {
	return &Planner{Planner: planner.NewStridePlanner()}
}

// Plan calls the injected Plan or the real version.
func (p *Planner) Plan(
	goal r2.Point,
	goalOrientation float64,
	current r2.Point,
	currentOrientation float64,
	nextSupport planner.SupportFoot,
	status planner.Status,
) {
	if p.PlanFunc == nil {
		p.Planner.Plan(goal, goalOrientation, current, currentOrientation, nextSupport, status)
		return
	}
	p.PlanFunc(goal, goalOrientation, current, currentOrientation, nextSupport, status)
}

// FootSteps calls the injected FootSteps or the real version.
func (p *Planner) FootSteps() *planner.FootSteps {
	if p.FootStepsFunc == nil {
		return p.Planner.FootSteps()
	}
	return p.FootStepsFunc()
}

// SetParameters calls the injected SetParameters or the real version.
func (p *Planner) SetParameters(maxStride r2.Point, maxRotation, period, footYOffset float64) {
	if p.SetParametersFunc == nil {
		p.Planner.SetParameters(maxStride, maxRotation, period, footYOffset)
		return
	}
	p.SetParametersFunc(maxStride, maxRotation, period, footYOffset)
}
