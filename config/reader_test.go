package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func readTestdata(t *testing.T) ([]byte, []byte) {
	t.Helper()
	walkingData, err := os.ReadFile(filepath.Join("testdata", WalkingFile))
	test.That(t, err, test.ShouldBeNil)
	kinematicData, err := os.ReadFile(filepath.Join("testdata", KinematicFile))
	test.That(t, err, test.ShouldBeNil)
	return walkingData, kinematicData
}

func TestRead(t *testing.T) {
	cfg, err := Read("testdata")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, cfg.Walking.Timing.TimeStep, test.ShouldEqual, 0.01)
	test.That(t, cfg.Walking.Timing.DSPDuration, test.ShouldEqual, 0.02)
	test.That(t, cfg.Walking.Timing.PlanPeriod, test.ShouldEqual, 0.2)
	test.That(t, cfg.Walking.Timing.CoMPeriod, test.ShouldEqual, 0.05)
	test.That(t, cfg.Walking.Timing.StepFrames, test.ShouldEqual, 20)
	test.That(t, cfg.Walking.Posture.CoMHeight, test.ShouldEqual, 0.2)
	test.That(t, cfg.Walking.Posture.FootHeight, test.ShouldEqual, 0.02)
	test.That(t, cfg.Walking.Offset.FootYOffset, test.ShouldEqual, 0.044)
	test.That(t, cfg.Walking.Stride.MaxA, test.ShouldEqual, 15)
	test.That(t, cfg.Kinematic.Leg.ThighLength, test.ShouldEqual, 0.1)
	test.That(t, cfg.Kinematic.Offset.Y, test.ShouldEqual, 0.0495)
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestDefaultTimeStep(t *testing.T) {
	walking := []byte(`{
		"timing": {"dsp_duration": 0.02, "plan_period": 0.2, "com_period": 0.05, "step_frames": 20},
		"posture": {"com_height": 0.2, "foot_height": 0.02, "feet_lateral": 0.1},
		"offset": {"foot_y_offset": 0.044},
		"stride": {"max_x": 0.05, "max_y": 0.03, "max_a": 15}
	}`)
	_, kinematic := readTestdata(t)

	cfg, err := FromJSON(walking, kinematic)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Walking.Timing.TimeStep, test.ShouldEqual, DefaultTimeStep)
}

func TestReportsEveryInvalidGroup(t *testing.T) {
	walking := []byte(`{
		"timing": {"dsp_duration": 0.02, "plan_period": 0.2, "com_period": 0.05},
		"posture": {"com_height": "tall", "foot_height": 0.02, "feet_lateral": 0.1},
		"offset": {"foot_y_offset": 0.044},
		"stride": {"max_x": 0.05, "max_y": null, "max_a": 15}
	}`)
	kinematic := []byte(`{"leg": {"ankle_length": 0.026, "calf_length": 0.1, "knee_length": 0.04}}`)

	cfg, err := FromJSON(walking, kinematic)
	test.That(t, cfg, test.ShouldBeNil)

	var cfgErr *Error
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	test.That(t, cfgErr.Groups, test.ShouldResemble, []string{
		"walking.timing", "walking.posture", "walking.stride", "kinematic.leg", "kinematic.offset",
	})
	test.That(t, len(cfgErr.Unwrap()), test.ShouldEqual, 5)
	test.That(t, err.Error(), test.ShouldContainSubstring, "step_frames")
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_y")
	test.That(t, err.Error(), test.ShouldContainSubstring, "thigh_length")
	test.That(t, err.Error(), test.ShouldContainSubstring, "error found at section `walking.posture`")
}

func TestSemanticValidation(t *testing.T) {
	walking, kinematic := readTestdata(t)
	cfg, err := FromJSON(walking, kinematic)
	test.That(t, err, test.ShouldBeNil)

	cfg.Walking.Timing.StepFrames = 0
	cfg.Kinematic.Leg.ThighLength = -1
	err = cfg.Validate()

	var cfgErr *Error
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	test.That(t, cfgErr.Groups, test.ShouldResemble, []string{"walking.timing", "kinematic.leg"})
}

func TestMissingDocuments(t *testing.T) {
	dir := t.TempDir()
	_, err := Read(dir)

	var cfgErr *Error
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	test.That(t, cfgErr.Groups, test.ShouldResemble, []string{"walking", "kinematic"})

	walking, _ := readTestdata(t)
	test.That(t, os.WriteFile(filepath.Join(dir, WalkingFile), walking, 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(dir, KinematicFile), []byte(`[1, 2]`), 0o600), test.ShouldBeNil)
	_, err = Read(dir)
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	test.That(t, cfgErr.Groups, test.ShouldResemble, []string{"kinematic"})
}
