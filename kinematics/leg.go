package kinematics

import (
	"math"

	"github.com/samber/lo"

	"github.com/FaaizHaikal/gankenkun/joint"
	"github.com/FaaizHaikal/gankenkun/utils"
)

// side describes how a leg mirrors the shared solution.
type side struct {
	// offsetSign is applied to the lateral hip offset.
	offsetSign float64
	// pitchSign is applied to the hip pitch and, negated, to the upper knee.
	pitchSign float64

	hipYaw, hipRoll, hipPitch joint.ID
	upperKnee, lowerKnee      joint.ID
	anklePitch, ankleRoll     joint.ID
}

var (
	leftLeg = side{
		offsetSign: -1,
		pitchSign:  -1,
		hipYaw:     joint.LeftHipYaw,
		hipRoll:    joint.LeftHipRoll,
		hipPitch:   joint.LeftHipPitch,
		upperKnee:  joint.LeftUpperKnee,
		lowerKnee:  joint.LeftLowerKnee,
		anklePitch: joint.LeftAnklePitch,
		ankleRoll:  joint.LeftAnkleRoll,
	}
	rightLeg = side{
		offsetSign: 1,
		pitchSign:  1,
		hipYaw:     joint.RightHipYaw,
		hipRoll:    joint.RightHipRoll,
		hipPitch:   joint.RightHipPitch,
		upperKnee:  joint.RightUpperKnee,
		lowerKnee:  joint.RightLowerKnee,
		anklePitch: joint.RightAnklePitch,
		ankleRoll:  joint.RightAnkleRoll,
	}
)

// solveLeg writes the angles of one leg for the given foot target.
func (s *Solver) solveLeg(sd side, foot Foot) {
	legLength := s.leg.AnkleLength + s.leg.CalfLength + s.leg.KneeLength + s.leg.ThighLength

	// hip frame, rotated so x runs along the foot's forward axis
	x := foot.Position.X - s.offset.X
	y := foot.Position.Y + sd.offsetSign*s.offset.Y
	z := legLength - foot.Position.Z

	sin, cos := math.Sincos(foot.Yaw)
	x2 := x*cos + y*sin
	y2 := -x*sin + y*cos
	z2 := z - s.leg.AnkleLength

	hipRoll := math.Atan2(y2, z2)

	// an unreachable target leaves a negative radicand, which flattens to a straight leg
	z3 := math.Sqrt(math.Max(0, utils.Square(y2)+utils.Square(z2)-utils.Square(x2))) - s.leg.KneeLength

	pitch := math.Atan2(x2, z3)
	length := math.Hypot(x2, z3)
	kneeDisp := math.Acos(lo.Clamp(length/(2*s.leg.ThighLength), -1, 1))

	hipPitch := -pitch - kneeDisp
	kneePitch := -pitch + kneeDisp

	s.angles[sd.hipYaw] = foot.Yaw
	s.angles[sd.hipRoll] = hipRoll
	s.angles[sd.hipPitch] = sd.pitchSign * hipPitch
	s.angles[sd.upperKnee] = -sd.pitchSign * hipPitch
	s.angles[sd.lowerKnee] = -kneePitch

	// TODO: level the foot once targets carry pitch and roll; the ankles are held flat until then.
	s.angles[sd.anklePitch] = 0
	s.angles[sd.ankleRoll] = 0
}

// LegJoints returns the joints the solver drives.
func LegJoints() []joint.ID {
	var ids []joint.ID
	for _, sd := range []side{leftLeg, rightLeg} {
		ids = append(ids, sd.hipYaw, sd.hipRoll, sd.hipPitch, sd.upperKnee, sd.lowerKnee, sd.anklePitch, sd.ankleRoll)
	}
	return ids
}
