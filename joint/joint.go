// Package joint defines the servo joints of the humanoid and the angle set exchanged between the
// walking controller, the leg solver and the actuation layer.
package joint

import (
	"fmt"

	pb "go.viam.com/api/component/arm/v1"

	"github.com/FaaizHaikal/gankenkun/utils"
)

// ID identifies a single joint.
type ID int

// The joints of the robot, in servo id order.
const (
	RightShoulderPitch ID = iota
	LeftShoulderPitch
	RightShoulderRoll
	LeftShoulderRoll
	RightElbow
	LeftElbow
	RightHipYaw
	LeftHipYaw
	RightHipRoll
	LeftHipRoll
	RightHipPitch
	LeftHipPitch
	RightUpperKnee
	LeftUpperKnee
	RightLowerKnee
	LeftLowerKnee
	RightAnklePitch
	LeftAnklePitch
	RightAnkleRoll
	LeftAnkleRoll
	NeckYaw
	NeckPitch

	// Count is the number of joints.
	Count int = iota
)

var names = [Count]string{
	RightShoulderPitch: "right_shoulder_pitch",
	LeftShoulderPitch:  "left_shoulder_pitch",
	RightShoulderRoll:  "right_shoulder_roll",
	LeftShoulderRoll:   "left_shoulder_roll",
	RightElbow:         "right_elbow",
	LeftElbow:          "left_elbow",
	RightHipYaw:        "right_hip_yaw",
	LeftHipYaw:         "left_hip_yaw",
	RightHipRoll:       "right_hip_roll",
	LeftHipRoll:        "left_hip_roll",
	RightHipPitch:      "right_hip_pitch",
	LeftHipPitch:       "left_hip_pitch",
	RightUpperKnee:     "right_upper_knee",
	LeftUpperKnee:      "left_upper_knee",
	RightLowerKnee:     "right_lower_knee",
	LeftLowerKnee:      "left_lower_knee",
	RightAnklePitch:    "right_ankle_pitch",
	LeftAnklePitch:     "left_ankle_pitch",
	RightAnkleRoll:     "right_ankle_roll",
	LeftAnkleRoll:      "left_ankle_roll",
	NeckYaw:            "neck_yaw",
	NeckPitch:          "neck_pitch",
}

func (id ID) String() string {
	if id < 0 || int(id) >= Count {
		return fmt.Sprintf("joint(%d)", int(id))
	}
	return names[id]
}

// IDs returns every joint id in servo order.
func IDs() []ID {
	ids := make([]ID, Count)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Joint is a joint id and its position in degrees.
type Joint struct {
	ID       ID
	Position float64
}

// Angles holds an angle in radians for every joint. It is a value type: assigning it copies it.
type Angles [Count]float64

// Joints converts the angles to degrees, one Joint per id.
func (a Angles) Joints() []Joint {
	joints := make([]Joint, Count)
	for i, rad := range a {
		joints[i] = Joint{ID: ID(i), Position: utils.RadToDeg(rad)}
	}
	return joints
}

// NewJoints returns every joint at zero degrees.
func NewJoints() []Joint {
	return Angles{}.Joints()
}

// JointPositionsFromJoints converts joints into the degree vector consumed by the actuation layer,
// ordered by joint id.
func JointPositionsFromJoints(joints []Joint) *pb.JointPositions {
	values := make([]float64, Count)
	for _, j := range joints {
		if j.ID < 0 || int(j.ID) >= Count {
			continue
		}
		values[j.ID] = j.Position
	}
	return &pb.JointPositions{Values: values}
}
