package inject

import (
	"github.com/FaaizHaikal/gankenkun/lipm"
	"github.com/FaaizHaikal/gankenkun/planner"
)

// TrajectoryGenerator is an injected CoM trajectory generator.
type TrajectoryGenerator struct {
	lipm.TrajectoryGenerator
	SetParametersFunc func(comHeight, timeStep, comPeriod float64)
	UpdateFunc        func(t float64, steps []planner.FootStep)
	TrajectoryFunc    func() []lipm.Sample
	PopFrontFunc      func() (lipm.Sample, bool)
}

// NewTrajectoryGenerator returns a TrajectoryGenerator wrapping the inverted pendulum generator.
func NewTrajectoryGenerator() *TrajectoryGenerator {
	return &TrajectoryGenerator{TrajectoryGenerator: lipm.NewGenerator()}
}

// SetParameters calls the injected SetParameters or the real version.
func (g *TrajectoryGenerator) SetParameters(comHeight, timeStep, comPeriod float64) {
	if g.SetParametersFunc == nil {
		g.TrajectoryGenerator.SetParameters(comHeight, timeStep, comPeriod)
		return
	}
	g.SetParametersFunc(comHeight, timeStep, comPeriod)
}

// Update calls the injected Update or the real version.
func (g *TrajectoryGenerator) Update(t float64, steps []planner.FootStep) {
	if g.UpdateFunc == nil {
		g.TrajectoryGenerator.Update(t, steps)
		return
	}
	g.UpdateFunc(t, steps)
}

// Trajectory calls the injected Trajectory or the real version.
func (g *TrajectoryGenerator) Trajectory() []lipm.Sample {
	if g.TrajectoryFunc == nil {
		return g.TrajectoryGenerator.Trajectory()
	}
	return g.TrajectoryFunc()
}

// PopFront calls the injected PopFront or the real version.
func (g *TrajectoryGenerator) PopFront() (lipm.Sample, bool) {
	if g.PopFrontFunc == nil {
		return g.TrajectoryGenerator.PopFront()
	}
	return g.PopFrontFunc()
}
