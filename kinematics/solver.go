// Package kinematics solves the closed-form inverse kinematics of the two legs.
package kinematics

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/FaaizHaikal/gankenkun/config"
	"github.com/FaaizHaikal/gankenkun/joint"
	"github.com/FaaizHaikal/gankenkun/utils"
)

// Foot is a target foot pose in the body frame: position in meters, yaw in radians.
type Foot struct {
	Position r3.Vector
	Yaw      float64
}

// InverseKinematics turns a pair of foot targets into joint angles.
type InverseKinematics interface {
	// Solve returns the full joint set in radians. Joints outside the legs keep the values they had.
	Solve(left, right Foot) (joint.Angles, error)
}

// SolverFault is returned when a solve cannot be trusted. The held angles are left untouched.
type SolverFault struct {
	Reason string
}

func (e *SolverFault) Error() string {
	return fmt.Sprintf("failed to solve inverse kinematics: %s", e.Reason)
}

// NewSolverFault returns a SolverFault with a formatted reason.
func NewSolverFault(format string, args ...interface{}) error {
	return &SolverFault{Reason: fmt.Sprintf(format, args...)}
}

// Solver is the analytic leg solver. It never fails on reachable or unreachable numeric targets:
// out of reach targets degrade to the closest pose the leg can take.
type Solver struct {
	leg    config.Leg
	offset config.KinematicOffset
	angles joint.Angles
}

// NewSolver returns a solver with every joint at zero. SetConfig must be called before Solve.
func NewSolver() *Solver {
	return &Solver{}
}

// SetConfig applies the segment lengths and the hip offset. The config is expected to be validated.
func (s *Solver) SetConfig(cfg config.Kinematic) {
	s.leg = cfg.Leg
	s.offset = cfg.Offset
}

// Solve implements InverseKinematics. Each leg is solved independently.
func (s *Solver) Solve(left, right Foot) (joint.Angles, error) {
	if err := checkTarget("left", left); err != nil {
		return s.angles, err
	}
	if err := checkTarget("right", right); err != nil {
		return s.angles, err
	}
	s.solveLeg(leftLeg, left)
	s.solveLeg(rightLeg, right)
	return s.angles, nil
}

func checkTarget(name string, foot Foot) error {
	if !utils.IsFinite(foot.Position.X, foot.Position.Y, foot.Position.Z, foot.Yaw) {
		return NewSolverFault("%s foot target is not finite: %v yaw %v", name, foot.Position, foot.Yaw)
	}
	return nil
}
