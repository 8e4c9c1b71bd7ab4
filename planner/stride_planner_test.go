package planner

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/FaaizHaikal/gankenkun/utils"
)

const width = 0.044

func newTestPlanner() *StridePlanner {
	p := NewStridePlanner()
	p.SetParameters(r2.Point{X: 0.05, Y: 0.03}, utils.DegToRad(15), 0.2, width)
	return p
}

func TestPlanFromStart(t *testing.T) {
	p := newTestPlanner()
	p.Plan(r2.Point{X: 0.1}, 0, r2.Point{}, 0, RightFoot, Start)

	steps := p.FootSteps().Steps()
	test.That(t, len(steps), test.ShouldEqual, 7)

	test.That(t, steps[0].Support, test.ShouldEqual, BothFeet)
	test.That(t, steps[0].Time, test.ShouldEqual, 0)

	test.That(t, steps[1].Support, test.ShouldEqual, RightFoot)
	test.That(t, steps[1].Time, test.ShouldAlmostEqual, 0.4)
	test.That(t, steps[1].Position.Y, test.ShouldAlmostEqual, -width)

	test.That(t, steps[2].Support, test.ShouldEqual, LeftFoot)
	test.That(t, steps[2].Position.X, test.ShouldAlmostEqual, 0.05)
	test.That(t, steps[2].Position.Y, test.ShouldAlmostEqual, width)

	test.That(t, steps[3].Support, test.ShouldEqual, RightFoot)
	test.That(t, steps[3].Position.X, test.ShouldAlmostEqual, 0.1)

	for _, step := range steps[4:] {
		test.That(t, step.Support, test.ShouldEqual, BothFeet)
		test.That(t, step.Position, test.ShouldResemble, r2.Point{X: 0.1})
	}
	test.That(t, steps[4].Time, test.ShouldAlmostEqual, 1.0)
	test.That(t, steps[5].Time, test.ShouldAlmostEqual, 1.2)
	test.That(t, steps[6].Time-steps[5].Time, test.ShouldAlmostEqual, idleHold)
}

func TestPlanDrainsOntoBothFeet(t *testing.T) {
	p := newTestPlanner()
	p.Plan(r2.Point{X: 0.3, Y: 0.1}, 0, r2.Point{}, 0, LeftFoot, Walking)

	// a stop drain keeps the last three entries
	fs := p.FootSteps()
	for fs.Len() > 3 {
		test.That(t, fs.PopFront(), test.ShouldBeTrue)
	}
	test.That(t, fs.At(0).Support, test.ShouldEqual, BothFeet)
	test.That(t, fs.At(1).Support, test.ShouldEqual, BothFeet)
	test.That(t, fs.At(0).Position, test.ShouldResemble, r2.Point{X: 0.3, Y: 0.1})
}

func TestPlanAlternatesSupport(t *testing.T) {
	p := newTestPlanner()
	p.Plan(r2.Point{X: 0.5, Y: -0.2}, utils.DegToRad(60), r2.Point{X: 0.1}, 0, LeftFoot, Walking)

	steps := p.FootSteps().Steps()
	test.That(t, steps[0].Support, test.ShouldEqual, LeftFoot)
	test.That(t, steps[0].Time, test.ShouldEqual, 0)

	var previous *FootStep
	for i := range steps {
		step := steps[i]
		if i > 0 {
			test.That(t, step.Time, test.ShouldBeGreaterThan, steps[i-1].Time)
		}
		if step.Support == BothFeet {
			continue
		}
		if previous != nil {
			test.That(t, step.Support, test.ShouldEqual, previous.Support.Opposite())
			stride := step.Position.Sub(previous.Position)
			test.That(t, math.Abs(stride.X), test.ShouldBeLessThanOrEqualTo, 0.05+1e-9)
			test.That(t, math.Abs(step.Rotation-previous.Rotation), test.ShouldBeLessThanOrEqualTo, utils.DegToRad(15)+1e-9)
		}
		previous = &steps[i]
	}
	last := steps[len(steps)-1]
	test.That(t, last.Support, test.ShouldEqual, BothFeet)
	test.That(t, last.Rotation, test.ShouldAlmostEqual, utils.DegToRad(60))
}

func TestPlanDegenerateStride(t *testing.T) {
	p := NewStridePlanner()
	p.SetParameters(r2.Point{}, 0, 0.2, width)
	p.Plan(r2.Point{X: 1}, 0, r2.Point{}, 0, BothFeet, Walking)
	test.That(t, p.FootSteps().Len(), test.ShouldBeLessThanOrEqualTo, maxPlannedSteps+5)
	test.That(t, p.FootSteps().At(0).Support, test.ShouldEqual, RightFoot)
}

func TestFootStepsQueue(t *testing.T) {
	fs := NewFootSteps(FootStep{Time: 0}, FootStep{Time: 1})
	test.That(t, fs.Len(), test.ShouldEqual, 2)
	test.That(t, fs.PopFront(), test.ShouldBeTrue)
	test.That(t, fs.At(0).Time, test.ShouldEqual, 1)
	test.That(t, fs.PopFront(), test.ShouldBeTrue)
	test.That(t, fs.PopFront(), test.ShouldBeFalse)
	test.That(t, fs.Len(), test.ShouldEqual, 0)
}

func TestSupportFoot(t *testing.T) {
	test.That(t, LeftFoot.Opposite(), test.ShouldEqual, RightFoot)
	test.That(t, RightFoot.Opposite(), test.ShouldEqual, LeftFoot)
	test.That(t, BothFeet.Opposite(), test.ShouldEqual, BothFeet)
	test.That(t, BothFeet.String(), test.ShouldEqual, "both")
	test.That(t, Walking.String(), test.ShouldEqual, "walking")
}
