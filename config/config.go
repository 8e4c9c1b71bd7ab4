// Package config defines the walking and kinematic documents that parameterize the gait controller
// and the leg solver, and how they are read and validated.
package config

import (
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Document file names, read together from one directory.
const (
	WalkingFile   = "walking.json"
	KinematicFile = "kinematic.json"
)

// DefaultTimeStep is the control tick used when the timing section omits time_step.
const DefaultTimeStep = 0.01

// Timing configures the control tick and the step phases, in seconds unless noted.
type Timing struct {
	TimeStep    float64 `json:"time_step"`
	DSPDuration float64 `json:"dsp_duration"`
	PlanPeriod  float64 `json:"plan_period"`
	CoMPeriod   float64 `json:"com_period"`
	// StepFrames is the number of ticks a swing foot takes to reach its target.
	StepFrames float64 `json:"step_frames"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Timing) Validate(path string) error {
	if cfg.TimeStep <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("time_step must be positive, got %v", cfg.TimeStep))
	}
	if cfg.DSPDuration < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("dsp_duration cannot be negative, got %v", cfg.DSPDuration))
	}
	if cfg.PlanPeriod <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("plan_period must be positive, got %v", cfg.PlanPeriod))
	}
	if cfg.CoMPeriod <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("com_period must be positive, got %v", cfg.CoMPeriod))
	}
	if cfg.StepFrames <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("step_frames must be positive, got %v", cfg.StepFrames))
	}
	return nil
}

// Posture configures the body height and the swing foot lift, in meters.
type Posture struct {
	CoMHeight   float64 `json:"com_height"`
	FootHeight  float64 `json:"foot_height"`
	FeetLateral float64 `json:"feet_lateral"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Posture) Validate(path string) error {
	if cfg.CoMHeight <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("com_height must be positive, got %v", cfg.CoMHeight))
	}
	if cfg.FootHeight < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("foot_height cannot be negative, got %v", cfg.FootHeight))
	}
	return nil
}

// WalkingOffset configures the lateral distance from the body center line to each foot.
type WalkingOffset struct {
	FootYOffset float64 `json:"foot_y_offset"`
}

// Validate ensures all parts of the config are valid.
func (cfg *WalkingOffset) Validate(path string) error {
	return nil
}

// Stride limits a single step. MaxA is in degrees.
type Stride struct {
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
	MaxA float64 `json:"max_a"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Stride) Validate(path string) error {
	if cfg.MaxX <= 0 || cfg.MaxY <= 0 || cfg.MaxA <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_x, max_y and max_a must be positive, got %v, %v, %v", cfg.MaxX, cfg.MaxY, cfg.MaxA))
	}
	return nil
}

// Walking is the walking parameter document.
type Walking struct {
	Timing  Timing        `json:"timing"`
	Posture Posture       `json:"posture"`
	Offset  WalkingOffset `json:"offset"`
	Stride  Stride        `json:"stride"`
}

// Leg holds the leg segment lengths, in meters.
type Leg struct {
	AnkleLength float64 `json:"ankle_length"`
	CalfLength  float64 `json:"calf_length"`
	KneeLength  float64 `json:"knee_length"`
	ThighLength float64 `json:"thigh_length"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Leg) Validate(path string) error {
	if cfg.ThighLength <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("thigh_length must be positive, got %v", cfg.ThighLength))
	}
	if cfg.AnkleLength < 0 || cfg.CalfLength < 0 || cfg.KneeLength < 0 {
		return utils.NewConfigValidationError(path, errors.New("segment lengths cannot be negative"))
	}
	return nil
}

// KinematicOffset is the fixed hip to body offset, in meters.
type KinematicOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Validate ensures all parts of the config are valid.
func (cfg *KinematicOffset) Validate(path string) error {
	return nil
}

// Kinematic is the kinematic parameter document.
type Kinematic struct {
	Leg    Leg             `json:"leg"`
	Offset KinematicOffset `json:"offset"`
}

// Config holds both documents. It is only handed out once every group is valid.
type Config struct {
	Walking   Walking
	Kinematic Kinematic
}

// Validate checks every group of both documents and reports all the invalid ones at once.
func (cfg *Config) Validate() error {
	var b errorBuilder
	b.check("walking.timing", cfg.Walking.Timing.Validate("walking.timing"))
	b.check("walking.posture", cfg.Walking.Posture.Validate("walking.posture"))
	b.check("walking.offset", cfg.Walking.Offset.Validate("walking.offset"))
	b.check("walking.stride", cfg.Walking.Stride.Validate("walking.stride"))
	b.check("kinematic.leg", cfg.Kinematic.Leg.Validate("kinematic.leg"))
	b.check("kinematic.offset", cfg.Kinematic.Offset.Validate("kinematic.offset"))
	return b.build()
}
