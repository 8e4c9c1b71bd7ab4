// Package walking orchestrates the gait. Each control tick it consumes one CoM sample, moves the
// swing foot along its lift profile toward the next footstep and solves the legs for the resulting
// foot poses.
package walking

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/FaaizHaikal/gankenkun/config"
	"github.com/FaaizHaikal/gankenkun/joint"
	"github.com/FaaizHaikal/gankenkun/kinematics"
	"github.com/FaaizHaikal/gankenkun/lipm"
	"github.com/FaaizHaikal/gankenkun/logging"
	"github.com/FaaizHaikal/gankenkun/planner"
	"github.com/FaaizHaikal/gankenkun/utils"
)

// StopGoal is the goal position that requests a graceful stop instead of a walk to (-1, -1).
var StopGoal = r2.Point{X: -1, Y: -1}

// Neutral stance of each foot relative to the CoM, in meters.
var (
	initialLeftFoot  = r3.Vector{X: -0.0436, Y: 0.0495, Z: 0.0115}
	initialRightFoot = r3.Vector{X: -0.0436, Y: -0.0495, Z: 0.0115}
)

var errNotConfigured = errors.New("walking manager has no configuration")

// Solver is the leg inverse kinematics driven by the manager.
type Solver interface {
	kinematics.InverseKinematics
	SetConfig(cfg config.Kinematic)
}

// Manager is the gait controller. It is not safe for concurrent use: the caller must serialize
// SetGoal, Stop, UpdateJoints and SetConfig.
type Manager struct {
	logger    logging.Logger
	solver    Solver
	planner   planner.Planner
	generator lipm.TrajectoryGenerator

	cfg *config.Config

	initialized  bool
	status       planner.Status
	nextSupport  planner.SupportFoot
	walkRotation float64

	left, right     footOffset
	leftUp, rightUp float64

	joints []joint.Joint
}

// NewManager returns a manager driving the analytic leg solver, the stride planner and the
// inverted pendulum generator.
func NewManager(logger logging.Logger) *Manager {
	return NewManagerWith(logger, kinematics.NewSolver(), planner.NewStridePlanner(), lipm.NewGenerator())
}

// NewManagerWith returns a manager using the given collaborators.
func NewManagerWith(
	logger logging.Logger,
	solver Solver,
	footStepPlanner planner.Planner,
	generator lipm.TrajectoryGenerator,
) *Manager {
	return &Manager{
		logger:      logger,
		solver:      solver,
		planner:     footStepPlanner,
		generator:   generator,
		status:      planner.Start,
		nextSupport: planner.RightFoot,
		joints:      joint.NewJoints(),
	}
}

// LoadConfig reads walking.json and kinematic.json from dir and applies them. Nothing is applied
// unless both documents are fully valid.
func (m *Manager) LoadConfig(dir string) error {
	cfg, err := config.Read(dir)
	if err != nil {
		return err
	}
	return m.SetConfig(cfg)
}

// SetConfig validates cfg and pushes it into the planner, the generator and the solver. On error
// the previous configuration stays in effect.
func (m *Manager) SetConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	applied := *cfg
	m.cfg = &applied

	w := applied.Walking
	m.planner.SetParameters(
		r2.Point{X: w.Stride.MaxX, Y: w.Stride.MaxY},
		utils.DegToRad(w.Stride.MaxA),
		w.Timing.PlanPeriod,
		w.Offset.FootYOffset,
	)
	m.generator.SetParameters(w.Posture.CoMHeight, w.Timing.TimeStep, w.Timing.CoMPeriod)
	m.solver.SetConfig(applied.Kinematic)

	m.logger.Debugw("applied walking configuration",
		"time_step", w.Timing.TimeStep, "step_frames", w.Timing.StepFrames, "plan_period", w.Timing.PlanPeriod)
	return nil
}

// Stop requests a graceful stop. In-flight steps are drained over the following calls.
func (m *Manager) Stop() error {
	return m.SetGoal(StopGoal, 0)
}

// SetGoal plans toward position with the given orientation in radians, or drains the plan when
// position is StopGoal. The first call starts the controller.
func (m *Manager) SetGoal(position r2.Point, orientation float64) error {
	if m.cfg == nil {
		return errNotConfigured
	}
	m.initialized = true
	footYOffset := m.cfg.Walking.Offset.FootYOffset

	steps := m.planner.FootSteps()
	if position == StopGoal {
		if steps.Len() <= 4 {
			m.status = planner.Start
		}
		if steps.Len() > 3 {
			steps.PopFront()
		}
	} else {
		var (
			current            r2.Point
			currentOrientation float64
		)
		if steps.Len() > 2 {
			var yOffset float64
			if m.status != planner.Start {
				yOffset = footYOffset
				if m.nextSupport == planner.LeftFoot {
					yOffset = -footYOffset
				}
			}
			next := steps.At(1)
			current = r2.Point{X: next.Position.X, Y: next.Position.Y + yOffset}
			currentOrientation = next.Rotation
		}

		m.planner.Plan(position, orientation, current, currentOrientation, m.nextSupport, m.status)
		m.status = planner.Walking
		steps = m.planner.FootSteps()
	}

	if steps.Len() < 2 {
		return errors.Errorf("footstep plan has %d steps, at least 2 are needed", steps.Len())
	}

	current, next := steps.At(0), steps.At(1)
	m.generator.Update(current.Time, steps.Steps())

	frames := m.cfg.Walking.Timing.StepFrames
	switch current.Support {
	case planner.LeftFoot:
		m.right.retarget(swingTarget(next, footYOffset), frames)
		m.nextSupport = planner.RightFoot
	case planner.RightFoot:
		m.left.retarget(swingTarget(next, -footYOffset), frames)
		m.nextSupport = planner.LeftFoot
	case planner.BothFeet:
	}

	m.walkRotation = current.Rotation
	return nil
}

// swingTarget is where the swing foot lands for step. Single support steps are stored at the
// support foot, so the swing foot is shifted back by the foot offset.
func swingTarget(step planner.FootStep, yOffset float64) pose {
	if step.Support == planner.BothFeet {
		return pose{step.Position.X, step.Position.Y, step.Rotation}
	}
	return pose{step.Position.X, step.Position.Y + yOffset, step.Rotation}
}

// UpdateJoints advances the gait by one control tick. It does nothing before the first goal. When
// the CoM trajectory runs out it requests a stop, which moves the plan on to the next step.
func (m *Manager) UpdateJoints() {
	if !m.initialized {
		return
	}

	if len(m.generator.Trajectory()) == 0 {
		if err := m.Stop(); err != nil {
			m.logger.Warnw("cannot advance the footstep plan, holding joints", "error", err)
			return
		}
	}

	com, ok := m.generator.PopFront()
	if !ok {
		m.logger.Debug("no CoM sample planned, holding joints")
		return
	}

	steps := m.planner.FootSteps()
	if steps.Len() < 2 {
		m.logger.Warnw("footstep plan too short, holding joints", "steps", steps.Len())
		return
	}
	current, next := steps.At(0), steps.At(1)
	timing := m.cfg.Walking.Timing

	stepPeriod := math.Round((next.Time - current.Time) / timing.TimeStep)
	if stepPeriod > 0 {
		// TODO: the whole step rotation is spread over the step period; validate this rate
		// against recorded reference motion.
		m.walkRotation += (next.Rotation - current.Rotation) / stepPeriod
	}

	sspStart := math.Round(timing.DSPDuration / (2 * timing.TimeStep))
	sspEnd := math.Round(stepPeriod / 2)
	sspDuration := sspEnd - sspStart

	// frames elapsed in the current step
	progress := stepPeriod - float64(len(m.generator.Trajectory()))

	switch current.Support {
	case planner.LeftFoot:
		m.swing(&m.right, &m.rightUp, progress, sspStart, sspEnd, sspDuration)
	case planner.RightFoot:
		m.swing(&m.left, &m.leftUp, progress, sspStart, sspEnd, sspDuration)
	case planner.BothFeet:
	}

	left := m.footTarget(m.left, m.leftUp, com.Position, initialLeftFoot)
	right := m.footTarget(m.right, m.rightUp, com.Position, initialRightFoot)

	angles, err := m.solve(left, right)
	if err != nil {
		m.logger.Errorw("failed to solve inverse kinematics, holding previous joints", "error", err)
		return
	}
	for _, id := range kinematics.LegJoints() {
		m.joints[id].Position = utils.RadToDeg(angles[id])
	}
}

// swing raises the swing foot linearly through the first half of the single support phase and
// lowers it through the second, while sliding it toward its target once double support ends.
func (m *Manager) swing(offset *footOffset, up *float64, progress, sspStart, sspEnd, sspDuration float64) {
	if sspDuration > 0 {
		rate := m.cfg.Walking.Posture.FootHeight / sspDuration
		if sspStart < progress && progress <= sspEnd {
			*up += rate
		} else if *up > 0 {
			*up = math.Max(*up-rate, 0)
		}
	} else {
		*up = 0
	}

	if progress > sspStart {
		offset.advance()
		if progress > sspStart+2*sspDuration {
			offset.snap()
		}
	}
}

// footTarget is the IK target of one foot: its offset relative to the CoM on top of the neutral
// stance, lifted by up.
func (m *Manager) footTarget(offset footOffset, up float64, com r2.Point, neutral r3.Vector) kinematics.Foot {
	return kinematics.Foot{
		Position: r3.Vector{
			X: offset.current.x - com.X + neutral.X,
			Y: offset.current.y - com.Y + neutral.Y,
			Z: up + neutral.Z,
		},
		Yaw: m.walkRotation - offset.current.yaw,
	}
}

// solve runs the solver, turning a panic into a SolverFault so the tick can fall back.
func (m *Manager) solve(left, right kinematics.Foot) (angles joint.Angles, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = kinematics.NewSolverFault("solver panicked: %v", r)
		}
	}()
	return m.solver.Solve(left, right)
}

// Joints returns a snapshot of every joint position in degrees.
func (m *Manager) Joints() []joint.Joint {
	joints := make([]joint.Joint, len(m.joints))
	copy(joints, m.joints)
	return joints
}

// SetJointPosition drives a joint the legs do not use, such as the head, to degrees. It is kept
// across ticks.
func (m *Manager) SetJointPosition(id joint.ID, degrees float64) error {
	if id < 0 || int(id) >= joint.Count {
		return errors.Errorf("unknown joint %v", id)
	}
	if lo.Contains(kinematics.LegJoints(), id) {
		return errors.Errorf("joint %v is driven by the gait", id)
	}
	m.joints[id].Position = degrees
	return nil
}

// Status returns the gait status.
func (m *Manager) Status() planner.Status {
	return m.status
}

// Idle reports whether the gait is at rest: no goal was ever set, or the plan has drained to a
// double support step and its CoM motion is complete. Parameters may change safely while idle.
func (m *Manager) Idle() bool {
	if !m.initialized {
		return true
	}
	steps := m.planner.FootSteps()
	return m.status == planner.Start &&
		steps.Len() > 0 && steps.At(0).Support == planner.BothFeet &&
		len(m.generator.Trajectory()) == 0
}

// NextSupport returns the foot that becomes the support foot on the upcoming step.
func (m *Manager) NextSupport() planner.SupportFoot {
	return m.nextSupport
}

// Initialized reports whether a goal was ever set.
func (m *Manager) Initialized() bool {
	return m.initialized
}
