// Package control runs the gait controller at a fixed rate and hands its joints to the actuation
// layer. The loop goroutine is the only caller of the controller, so goals and configuration
// reloads are funneled to it through channels.
package control

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/FaaizHaikal/gankenkun/config"
	"github.com/FaaizHaikal/gankenkun/joint"
	"github.com/FaaizHaikal/gankenkun/logging"
	"github.com/FaaizHaikal/gankenkun/planner"
	"github.com/FaaizHaikal/gankenkun/utils"
	"github.com/FaaizHaikal/gankenkun/walking"
)

// maxFrequency bounds the tick rate the loop accepts, in Hz.
const maxFrequency = 1000.0

// Controller is the gait controller driven by the loop.
type Controller interface {
	SetConfig(cfg *config.Config) error
	SetGoal(position r2.Point, orientation float64) error
	Stop() error
	UpdateJoints()
	Joints() []joint.Joint
	Status() planner.Status
	// Idle reports whether the gait is at rest between motion phases.
	Idle() bool
}

var _ Controller = (*walking.Manager)(nil)

// command runs on the loop goroutine between ticks.
type command struct {
	do     func(Controller) error
	result chan error
}

// Loop ticks a Controller every time step and publishes its joints after each tick.
type Loop struct {
	logger     logging.Logger
	controller Controller
	publisher  Publisher
	clock      clock.Clock
	timeStep   float64
	dt         time.Duration

	commands chan command
	pending  *config.Config
	// closed after the first tick that ends idle
	idleWaiters []chan struct{}

	mu      sync.Mutex
	workers utils.StoppableWorkers
}

// NewLoop returns a loop ticking controller every timeStep seconds. It does not run until Start.
func NewLoop(
	logger logging.Logger,
	timeStep float64,
	controller Controller,
	publisher Publisher,
	clk clock.Clock,
) (*Loop, error) {
	if timeStep <= 0 || 1/timeStep > maxFrequency {
		return nil, errors.Errorf("loop frequency shouldn't be 0 or above %vHz, got time step %v", maxFrequency, timeStep)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		logger:     logger,
		controller: controller,
		publisher:  publisher,
		clock:      clk,
		timeStep:   timeStep,
		dt:         time.Duration(timeStep * float64(time.Second)),
		commands:   make(chan command),
	}, nil
}

// Start runs the loop until ctx is done or Close is called. Configurations received on reloads are
// applied between ticks once the gait is idle. reloads may be nil.
func (l *Loop) Start(ctx context.Context, reloads <-chan *config.Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workers != nil {
		return errors.New("control loop already started")
	}
	l.logger.Infow("running control loop", "period", l.dt)

	// created here so that no tick is lost between Start returning and the worker running
	ticker := l.clock.Ticker(l.dt)
	l.workers = utils.NewStoppableWorkersWithContext(ctx, func(ctx context.Context) {
		defer ticker.Stop()
		l.run(ctx, ticker, reloads)
	})
	return nil
}

func (l *Loop) run(ctx context.Context, ticker *clock.Ticker, reloads <-chan *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		case cmd := <-l.commands:
			cmd.result <- cmd.do(l.controller)
		case cfg, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if l.pending == nil {
				l.logger.Infow("configuration reload queued until the gait stops", "status", l.controller.Status())
			}
			l.pending = cfg
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	start := l.clock.Now()
	l.applyPending()

	l.controller.UpdateJoints()
	if err := l.publisher.Publish(ctx, joint.JointPositionsFromJoints(l.controller.Joints())); err != nil {
		l.logger.Warnw("failed to publish joints", "error", err)
	}

	if len(l.idleWaiters) > 0 && l.controller.Idle() {
		for _, waiter := range l.idleWaiters {
			close(waiter)
		}
		l.idleWaiters = nil
	}

	if elapsed := l.clock.Since(start); elapsed > l.dt {
		l.logger.Warnw("control tick overran its period", "elapsed", elapsed, "period", l.dt)
	}
}

// applyPending applies a queued configuration. Parameters only change between motion phases.
func (l *Loop) applyPending() {
	if l.pending == nil || !l.controller.Idle() {
		return
	}
	cfg := l.pending
	l.pending = nil
	// the ticker period is fixed for the life of the loop
	if ts := cfg.Walking.Timing.TimeStep; math.Abs(ts-l.timeStep) > 1e-9 {
		l.logger.Errorw("rejected reloaded configuration, time_step cannot change while running",
			"time_step", ts, "running_time_step", l.timeStep)
		return
	}
	if err := l.controller.SetConfig(cfg); err != nil {
		l.logger.Errorw("failed to apply reloaded configuration", "error", err)
		return
	}
	l.logger.Info("applied reloaded configuration")
}

// SetGoal asks the controller to walk to position, facing orientation in radians. It returns once
// the loop has planned the goal.
func (l *Loop) SetGoal(ctx context.Context, position r2.Point, orientation float64) error {
	return l.send(ctx, func(c Controller) error {
		return c.SetGoal(position, orientation)
	})
}

// Stop asks the controller to stop walking. The steps in flight are completed over the next ticks;
// use WaitIdle to wait for them.
func (l *Loop) Stop(ctx context.Context) error {
	return l.send(ctx, func(c Controller) error {
		return c.Stop()
	})
}

// WaitIdle blocks until a tick leaves the controller idle, or returns at once if it already is.
func (l *Loop) WaitIdle(ctx context.Context) error {
	idle := make(chan struct{})
	if err := l.send(ctx, func(c Controller) error {
		if c.Idle() {
			close(idle)
		} else {
			l.idleWaiters = append(l.idleWaiters, idle)
		}
		return nil
	}); err != nil {
		return err
	}

	l.mu.Lock()
	workers := l.workers
	l.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-workers.Context().Done():
		return errors.New("control loop is closed")
	}
}

func (l *Loop) send(ctx context.Context, do func(Controller) error) error {
	l.mu.Lock()
	workers := l.workers
	l.mu.Unlock()
	if workers == nil {
		return errors.New("control loop is not running")
	}

	cmd := command{do: do, result: make(chan error, 1)}
	select {
	case l.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-workers.Context().Done():
		return errors.New("control loop is closed")
	}
	select {
	case err := <-cmd.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop and waits for it to exit.
func (l *Loop) Close() {
	l.mu.Lock()
	workers := l.workers
	l.mu.Unlock()
	if workers != nil {
		l.logger.Debug("closing loop")
		workers.Stop()
	}
}
