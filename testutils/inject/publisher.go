package inject

import (
	"context"

	pb "go.viam.com/api/component/arm/v1"

	"github.com/FaaizHaikal/gankenkun/control"
)

// Publisher is an injected joint publisher.
type Publisher struct {
	control.Publisher
	PublishFunc func(ctx context.Context, positions *pb.JointPositions) error
}

// Publish calls the injected Publish or the real version.
func (p *Publisher) Publish(ctx context.Context, positions *pb.JointPositions) error {
	if p.PublishFunc == nil {
		return p.Publisher.Publish(ctx, positions)
	}
	return p.PublishFunc(ctx, positions)
}
