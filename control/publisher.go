package control

import (
	"context"

	pb "go.viam.com/api/component/arm/v1"

	"github.com/FaaizHaikal/gankenkun/logging"
)

// Publisher hands joint positions, in degrees and ordered by joint id, to the actuation layer.
type Publisher interface {
	Publish(ctx context.Context, positions *pb.JointPositions) error
}

// LogPublisher is a Publisher that only logs the joints. It stands in for servos on a bench.
type LogPublisher struct {
	logger logging.Logger
}

// NewLogPublisher returns a LogPublisher logging at debug level.
func NewLogPublisher(logger logging.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, positions *pb.JointPositions) error {
	p.logger.Debugw("joints", "values", positions.GetValues())
	return nil
}
