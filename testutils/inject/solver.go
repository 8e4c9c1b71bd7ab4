package inject

import (
	"github.com/FaaizHaikal/gankenkun/config"
	"github.com/FaaizHaikal/gankenkun/joint"
	"github.com/FaaizHaikal/gankenkun/kinematics"
)

// Solver is an injected leg solver.
type Solver struct {
	*kinematics.Solver
	SolveFunc     func(left, right kinematics.Foot) (joint.Angles, error)
	SetConfigFunc func(cfg config.Kinematic)
}

// NewSolver returns a Solver wrapping the analytic solver.
func NewSolver() *Solver {
	return &Solver{Solver: kinematics.NewSolver()}
}

// Solve calls the injected Solve or the real version.
func (s *Solver) Solve(left, right kinematics.Foot) (joint.Angles, error) {
	if s.SolveFunc == nil {
		return s.Solver.Solve(left, right)
	}
	return s.SolveFunc(left, right)
}

// SetConfig calls the injected SetConfig or the real version.
func (s *Solver) SetConfig(cfg config.Kinematic) {
	if s.SetConfigFunc == nil {
		s.Solver.SetConfig(cfg)
		return
	}
	s.SetConfigFunc(cfg)
}
