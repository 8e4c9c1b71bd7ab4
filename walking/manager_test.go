package walking_test

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/FaaizHaikal/gankenkun/config"
	"github.com/FaaizHaikal/gankenkun/joint"
	"github.com/FaaizHaikal/gankenkun/kinematics"
	"github.com/FaaizHaikal/gankenkun/lipm"
	"github.com/FaaizHaikal/gankenkun/logging"
	"github.com/FaaizHaikal/gankenkun/planner"
	"github.com/FaaizHaikal/gankenkun/testutils/inject"
	"github.com/FaaizHaikal/gankenkun/walking"
)

const (
	neutralX = -0.0436
	neutralZ = 0.0115
)

func testConfig() *config.Config {
	return &config.Config{
		Walking: config.Walking{
			Timing: config.Timing{
				TimeStep:    0.01,
				DSPDuration: 0.02,
				PlanPeriod:  0.2,
				CoMPeriod:   0.05,
				StepFrames:  20,
			},
			Posture: config.Posture{CoMHeight: 0.2, FootHeight: 0.02, FeetLateral: 0.1},
			Offset:  config.WalkingOffset{FootYOffset: 0.044},
			Stride:  config.Stride{MaxX: 0.05, MaxY: 0.03, MaxA: 15},
		},
		Kinematic: config.Kinematic{
			Leg: config.Leg{
				AnkleLength: 0.026,
				CalfLength:  0.1,
				KneeLength:  0.04,
				ThighLength: 0.1,
			},
			Offset: config.KinematicOffset{X: -0.0436, Y: 0.0495},
		},
	}
}

// fixedPlanner always plans the same steps, starting on the left foot at t=0.
func fixedPlanner(steps ...planner.FootStep) *inject.Planner {
	fs := planner.NewFootSteps()
	p := inject.NewPlanner()
	p.PlanFunc = func(r2.Point, float64, r2.Point, float64, planner.SupportFoot, planner.Status) {
		fs.Replace(append([]planner.FootStep(nil), steps...))
	}
	p.FootStepsFunc = func() *planner.FootSteps {
		return fs
	}
	return p
}

var forwardSteps = []planner.FootStep{
	{Position: r2.Point{X: 0, Y: 0.044}, Time: 0, Support: planner.LeftFoot},
	{Position: r2.Point{X: 0.05, Y: -0.044}, Time: 0.2, Support: planner.RightFoot},
	{Position: r2.Point{X: 0.1, Y: 0.044}, Time: 0.4, Support: planner.LeftFoot},
	{Position: r2.Point{X: 0.1, Y: 0}, Time: 0.6, Support: planner.BothFeet},
	{Position: r2.Point{X: 0.1, Y: 0}, Time: 0.8, Support: planner.BothFeet},
	{Position: r2.Point{X: 0.1, Y: 0}, Time: 100.8, Support: planner.BothFeet},
}

// recorder captures what the manager hands to the solver and the CoM sample it used.
type recorder struct {
	left, right []kinematics.Foot
	com         []r2.Point
}

func newRecordingManager(t *testing.T, p planner.Planner) (*walking.Manager, *recorder) {
	t.Helper()
	rec := &recorder{}
	solver := inject.NewSolver()
	solver.SolveFunc = func(left, right kinematics.Foot) (joint.Angles, error) {
		rec.left = append(rec.left, left)
		rec.right = append(rec.right, right)
		return solver.Solver.Solve(left, right)
	}
	generator := inject.NewTrajectoryGenerator()
	generator.PopFrontFunc = func() (lipm.Sample, bool) {
		s, ok := generator.TrajectoryGenerator.PopFront()
		if ok {
			rec.com = append(rec.com, s.Position)
		}
		return s, ok
	}
	m := walking.NewManagerWith(logging.NewTestLogger(t), solver, p, generator)
	test.That(t, m.SetConfig(testConfig()), test.ShouldBeNil)
	return m, rec
}

func TestUpdateJointsBeforeGoal(t *testing.T) {
	m, rec := newRecordingManager(t, fixedPlanner(forwardSteps...))
	m.UpdateJoints()
	test.That(t, m.Initialized(), test.ShouldBeFalse)
	test.That(t, rec.left, test.ShouldBeEmpty)
	test.That(t, m.Joints(), test.ShouldResemble, joint.NewJoints())
}

func TestSetGoalRequiresConfig(t *testing.T) {
	m := walking.NewManager(logging.NewTestLogger(t))
	err := m.SetGoal(r2.Point{X: 0.1}, 0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, m.Initialized(), test.ShouldBeFalse)
}

func TestSetConfigKeepsPreviousOnError(t *testing.T) {
	var applied []float64
	p := fixedPlanner(forwardSteps...)
	p.SetParametersFunc = func(maxStride r2.Point, maxRotation, period, footYOffset float64) {
		applied = append(applied, period)
	}
	m := walking.NewManagerWith(logging.NewTestLogger(t), inject.NewSolver(), p, inject.NewTrajectoryGenerator())

	test.That(t, m.SetConfig(testConfig()), test.ShouldBeNil)
	test.That(t, applied, test.ShouldResemble, []float64{0.2})

	bad := testConfig()
	bad.Walking.Timing.TimeStep = 0
	bad.Walking.Timing.PlanPeriod = 0.3
	bad.Kinematic.Leg.ThighLength = -1
	err := m.SetConfig(bad)
	test.That(t, err, test.ShouldNotBeNil)

	var cfgErr *config.Error
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	test.That(t, cfgErr.Groups, test.ShouldResemble, []string{"walking.timing", "kinematic.leg"})
	test.That(t, applied, test.ShouldResemble, []float64{0.2})

	test.That(t, m.SetConfig(nil), test.ShouldNotBeNil)
}

func TestStartScenario(t *testing.T) {
	m, rec := newRecordingManager(t, fixedPlanner(forwardSteps...))
	test.That(t, m.Status(), test.ShouldEqual, planner.Start)

	test.That(t, m.SetGoal(r2.Point{X: 0.1}, 0), test.ShouldBeNil)
	test.That(t, m.Status(), test.ShouldEqual, planner.Walking)
	test.That(t, m.Initialized(), test.ShouldBeTrue)
	test.That(t, m.NextSupport(), test.ShouldEqual, planner.RightFoot)

	for i := 0; i < 20; i++ {
		m.UpdateJoints()
	}
	test.That(t, rec.right, test.ShouldHaveLength, 20)

	var (
		peak    float64
		rising  = true
		offsetX = math.Inf(-1)
	)
	for i, foot := range rec.right {
		lift := foot.Position.Z - neutralZ
		test.That(t, lift, test.ShouldBeGreaterThanOrEqualTo, -1e-12)
		if lift < peak-1e-12 {
			rising = false
		}
		if rising {
			peak = math.Max(peak, lift)
		} else {
			test.That(t, lift, test.ShouldBeLessThanOrEqualTo, peak+1e-12)
		}

		x := foot.Position.X - neutralX + rec.com[i].X
		test.That(t, x, test.ShouldBeGreaterThanOrEqualTo, offsetX-1e-12)
		offsetX = x

		// the support foot stays planted
		test.That(t, rec.left[i].Position.Z, test.ShouldEqual, neutralZ)
	}
	test.That(t, peak, test.ShouldAlmostEqual, 0.02, 1e-9)
	test.That(t, rec.right[19].Position.Z, test.ShouldEqual, neutralZ)
	test.That(t, offsetX, test.ShouldAlmostEqual, 0.05, 1e-9)

	y := rec.right[19].Position.Y + 0.0495 + rec.com[19].Y
	test.That(t, y, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestStepAdvancesWhenTrajectoryEnds(t *testing.T) {
	m, rec := newRecordingManager(t, fixedPlanner(forwardSteps...))
	test.That(t, m.SetGoal(r2.Point{X: 0.1}, 0), test.ShouldBeNil)

	for i := 0; i < 21; i++ {
		m.UpdateJoints()
	}
	// the 21st tick drained the trajectory and moved on to the right support step
	test.That(t, m.NextSupport(), test.ShouldEqual, planner.LeftFoot)
	test.That(t, rec.left[20].Position.Z, test.ShouldEqual, neutralZ)
	test.That(t, rec.right[20].Position.Z, test.ShouldEqual, neutralZ)

	for i := 0; i < 19; i++ {
		m.UpdateJoints()
	}
	left := rec.left[len(rec.left)-1]
	x := left.Position.X - neutralX + rec.com[len(rec.com)-1].X
	test.That(t, x, test.ShouldAlmostEqual, 0.1, 1e-9)
	test.That(t, left.Position.Z, test.ShouldEqual, neutralZ)
}

func TestStopDrainsQueue(t *testing.T) {
	p := inject.NewPlanner()
	m, _ := newRecordingManager(t, p)
	test.That(t, m.SetGoal(r2.Point{X: 0.1}, 0), test.ShouldBeNil)
	// double support, right, left, goal, two settling double supports, idle hold
	test.That(t, p.FootSteps().Len(), test.ShouldEqual, 7)

	expected := []struct {
		length int
		status planner.Status
	}{
		{6, planner.Walking},
		{5, planner.Walking},
		{4, planner.Walking},
		{3, planner.Start},
		{3, planner.Start},
		{3, planner.Start},
	}
	for _, exp := range expected {
		test.That(t, m.Stop(), test.ShouldBeNil)
		m.UpdateJoints()
		test.That(t, p.FootSteps().Len(), test.ShouldEqual, exp.length)
		test.That(t, m.Status(), test.ShouldEqual, exp.status)
	}
	test.That(t, p.FootSteps().At(0).Support, test.ShouldEqual, planner.BothFeet)
}

func TestWalkComesToRest(t *testing.T) {
	m, rec := newRecordingManager(t, inject.NewPlanner())
	test.That(t, m.LoadConfig("../config/testdata"), test.ShouldBeNil)
	test.That(t, m.Idle(), test.ShouldBeTrue)
	test.That(t, m.SetGoal(r2.Point{X: 0.1}, 0), test.ShouldBeNil)
	test.That(t, m.Idle(), test.ShouldBeFalse)

	// 40 ticks of double support and three 20 tick steps reach the goal
	for i := 0; i < 1000; i++ {
		m.UpdateJoints()
	}
	test.That(t, rec.left, test.ShouldHaveLength, 1000)

	lifted := 0
	for i := 100; i < 1000; i++ {
		if rec.left[i].Position.Z != neutralZ || rec.right[i].Position.Z != neutralZ {
			lifted++
		}
	}
	test.That(t, lifted, test.ShouldEqual, 0)
	test.That(t, m.Status(), test.ShouldEqual, planner.Start)
	// the last tick finished a settling step
	test.That(t, m.Idle(), test.ShouldBeTrue)

	last := len(rec.com) - 1
	for _, foot := range []kinematics.Foot{rec.left[last], rec.right[last]} {
		test.That(t, foot.Position.X-neutralX+rec.com[last].X, test.ShouldAlmostEqual, 0.1, 1e-9)
	}
	test.That(t, rec.com[last].X, test.ShouldAlmostEqual, 0.1, 1e-9)
}

func TestReplanMidStepKeepsCoM(t *testing.T) {
	m, rec := newRecordingManager(t, inject.NewPlanner())
	test.That(t, m.LoadConfig("../config/testdata"), test.ShouldBeNil)
	goal := r2.Point{X: 0.5}
	test.That(t, m.SetGoal(goal, 0), test.ShouldBeNil)

	// halfway through the first single support step
	for i := 0; i < 50; i++ {
		m.UpdateJoints()
	}
	var walkingMove float64
	for i := 1; i < len(rec.com); i++ {
		walkingMove = math.Max(walkingMove, rec.com[i].Sub(rec.com[i-1]).Norm())
	}
	test.That(t, walkingMove, test.ShouldBeGreaterThan, 0)

	test.That(t, m.SetGoal(goal, 0), test.ShouldBeNil)
	m.UpdateJoints()
	test.That(t, rec.com, test.ShouldHaveLength, 51)
	jump := rec.com[50].Sub(rec.com[49]).Norm()
	// the replanned step starts from the current CoM, not from where the interrupted step would end
	test.That(t, jump, test.ShouldBeLessThan, 0.01)

	for i := 0; i < 20; i++ {
		m.UpdateJoints()
	}
	for i := 51; i < len(rec.com); i++ {
		test.That(t, rec.com[i].Sub(rec.com[i-1]).Norm(), test.ShouldBeLessThan, 0.01)
	}
}

func TestSetGoalNeedsTwoFootSteps(t *testing.T) {
	m, _ := newRecordingManager(t, fixedPlanner(forwardSteps[0]))
	err := m.SetGoal(r2.Point{X: 0.1}, 0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least 2")
}

func TestSupportAlternates(t *testing.T) {
	p := inject.NewPlanner()
	m, _ := newRecordingManager(t, p)
	test.That(t, m.SetGoal(r2.Point{X: 0.2}, 0), test.ShouldBeNil)

	var supports []planner.SupportFoot
	last := -1.0
	for i := 0; i < 400; i++ {
		m.UpdateJoints()
		front := p.FootSteps().At(0)
		if front.Time == last {
			continue
		}
		last = front.Time
		if front.Support == planner.BothFeet {
			continue
		}
		supports = append(supports, front.Support)
		test.That(t, m.NextSupport(), test.ShouldEqual, front.Support.Opposite())
	}
	test.That(t, len(supports), test.ShouldBeGreaterThanOrEqualTo, 3)
	for i := 1; i < len(supports); i++ {
		test.That(t, supports[i], test.ShouldEqual, supports[i-1].Opposite())
	}
}

func TestLivenessUnderSolverFault(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	solver := inject.NewSolver()
	ticks := 0
	solver.SolveFunc = func(left, right kinematics.Foot) (joint.Angles, error) {
		ticks++
		switch {
		case ticks == 3:
			return joint.Angles{}, kinematics.NewSolverFault("target out of range")
		case ticks == 4:
			panic("singular leg")
		}
		return solver.Solver.Solve(left, right)
	}
	m := walking.NewManagerWith(logger, solver, fixedPlanner(forwardSteps...), inject.NewTrajectoryGenerator())
	test.That(t, m.SetConfig(testConfig()), test.ShouldBeNil)
	test.That(t, m.SetGoal(r2.Point{X: 0.1}, 0), test.ShouldBeNil)

	m.UpdateJoints()
	m.UpdateJoints()
	held := m.Joints()
	test.That(t, held[joint.LeftHipPitch].Position, test.ShouldNotEqual, 0)

	m.UpdateJoints()
	test.That(t, m.Joints(), test.ShouldResemble, held)
	m.UpdateJoints()
	test.That(t, m.Joints(), test.ShouldResemble, held)
	test.That(t, logs.FilterMessage("failed to solve inverse kinematics, holding previous joints").Len(), test.ShouldEqual, 2)

	m.UpdateJoints()
	test.That(t, ticks, test.ShouldEqual, 5)
	test.That(t, m.Joints(), test.ShouldNotResemble, held)
}

func TestSelfHealingStop(t *testing.T) {
	generator := inject.NewTrajectoryGenerator()
	updates := 0
	generator.UpdateFunc = func(float64, []planner.FootStep) {
		updates++
	}
	m := walking.NewManagerWith(logging.NewTestLogger(t), inject.NewSolver(), fixedPlanner(forwardSteps...), generator)
	test.That(t, m.SetConfig(testConfig()), test.ShouldBeNil)
	test.That(t, m.SetGoal(r2.Point{X: 0.1}, 0), test.ShouldBeNil)
	test.That(t, updates, test.ShouldEqual, 1)

	m.UpdateJoints()
	m.UpdateJoints()
	test.That(t, updates, test.ShouldEqual, 3)
	test.That(t, m.Joints(), test.ShouldResemble, joint.NewJoints())
}

func TestSetJointPosition(t *testing.T) {
	m, _ := newRecordingManager(t, fixedPlanner(forwardSteps...))
	test.That(t, m.SetJointPosition(joint.NeckPitch, 30), test.ShouldBeNil)
	test.That(t, m.SetJointPosition(joint.LeftHipPitch, 30), test.ShouldNotBeNil)
	test.That(t, m.SetJointPosition(joint.ID(joint.Count), 30), test.ShouldNotBeNil)

	test.That(t, m.SetGoal(r2.Point{X: 0.1}, 0), test.ShouldBeNil)
	for i := 0; i < 5; i++ {
		m.UpdateJoints()
	}
	joints := m.Joints()
	test.That(t, joints[joint.NeckPitch].Position, test.ShouldEqual, 30)
	test.That(t, joints[joint.RightShoulderPitch].Position, test.ShouldEqual, 0)

	joints[joint.NeckPitch].Position = 0
	test.That(t, m.Joints()[joint.NeckPitch].Position, test.ShouldEqual, 30)
}

func TestWalkEndToEnd(t *testing.T) {
	m := walking.NewManager(logging.NewTestLogger(t))
	test.That(t, m.LoadConfig("../config/testdata"), test.ShouldBeNil)
	test.That(t, m.SetGoal(r2.Point{X: 0.15, Y: 0.02}, 0.1), test.ShouldBeNil)

	for i := 0; i < 300; i++ {
		m.UpdateJoints()
		for _, j := range m.Joints() {
			test.That(t, math.IsNaN(j.Position), test.ShouldBeFalse)
		}
	}
	// the plan has drained down to the final double support steps
	test.That(t, m.Status(), test.ShouldEqual, planner.Start)

	test.That(t, m.LoadConfig(t.TempDir()), test.ShouldNotBeNil)
}
