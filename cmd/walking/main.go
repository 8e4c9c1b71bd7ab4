// Package main runs the walking controller on a bench, logging the joints it would send to the
// servos.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/FaaizHaikal/gankenkun/config"
	"github.com/FaaizHaikal/gankenkun/control"
	"github.com/FaaizHaikal/gankenkun/logging"
	"github.com/FaaizHaikal/gankenkun/utils"
	"github.com/FaaizHaikal/gankenkun/walking"
)

const (
	// Flags.
	flagConfig   = "config"
	flagDebug    = "debug"
	flagLogFile  = "log-file"
	flagGoalX    = "goal-x"
	flagGoalY    = "goal-y"
	flagGoalA    = "goal-a"
	flagDuration = "duration"
	flagStopWait = "stop-timeout"

	defaultConfigDir = "etc/walking"
)

func main() {
	var logger logging.Logger

	configFlag := &cli.StringFlag{
		Name:    flagConfig,
		Aliases: []string{"c"},
		Value:   defaultConfigDir,
		Usage:   "load walking.json and kinematic.json from `DIR`",
	}

	app := &cli.App{
		Name:  "walking",
		Usage: "run the humanoid walking controller",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write json logs to `FILE`",
			},
		},
		Before: func(c *cli.Context) error {
			switch {
			case c.String(flagLogFile) != "":
				logger = logging.NewFileLogger("walking", c.String(flagLogFile))
			case c.Bool(flagDebug):
				logger = logging.NewDebugLogger("walking")
			default:
				logger = logging.NewLogger("walking")
			}
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			logging.ReplaceGlobal(logger)
			return nil
		},
		After: func(c *cli.Context) error {
			if logger == nil {
				return nil
			}
			// syncing stdout fails on some terminals, which is not worth reporting
			_ = logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "walk toward a goal until the duration elapses or the process is interrupted",
				Flags: []cli.Flag{
					configFlag,
					&cli.Float64Flag{
						Name:  flagGoalX,
						Usage: "goal x position in meters",
					},
					&cli.Float64Flag{
						Name:  flagGoalY,
						Usage: "goal y position in meters",
					},
					&cli.Float64Flag{
						Name:  flagGoalA,
						Usage: "goal orientation in degrees",
					},
					&cli.DurationFlag{
						Name:  flagDuration,
						Value: 10 * time.Second,
						Usage: "how long to walk before stopping",
					},
					&cli.DurationFlag{
						Name:  flagStopWait,
						Value: 5 * time.Second,
						Usage: "how long to let the steps in flight finish after stopping",
					},
				},
				Action: func(c *cli.Context) error {
					return runAction(c, logger)
				},
			},
			{
				Name:  "validate",
				Usage: "check the configuration documents and report every invalid group",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					if _, err := config.Read(c.String(flagConfig)); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "configuration in %s is valid\n", c.String(flagConfig))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context, logger logging.Logger) (err error) {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dir := c.String(flagConfig)
	cfg, err := config.Read(dir)
	if err != nil {
		return err
	}

	manager := walking.NewManager(logger.Sublogger("walking"))
	if err := manager.SetConfig(cfg); err != nil {
		return err
	}

	watcher, err := config.NewWatcher(dir, logger.Sublogger("config"))
	if err != nil {
		return errors.Wrap(err, "failed to watch configuration")
	}
	defer func() {
		err = multierr.Combine(err, watcher.Close())
	}()

	loop, err := control.NewLoop(
		logger.Sublogger("control"),
		cfg.Walking.Timing.TimeStep,
		manager,
		control.NewLogPublisher(logger.Sublogger("joints")),
		clock.New(),
	)
	if err != nil {
		return err
	}
	// the loop outlives the interrupt so the gait can drain before exit
	if err := loop.Start(c.Context, watcher.Configs()); err != nil {
		return err
	}
	defer loop.Close()

	goal := r2.Point{X: c.Float64(flagGoalX), Y: c.Float64(flagGoalY)}
	orientation := utils.DegToRad(c.Float64(flagGoalA))
	if err := loop.SetGoal(ctx, goal, orientation); err != nil {
		return errors.Wrap(err, "failed to set goal")
	}
	logger.Infow("walking", "goal", goal, "orientation_deg", c.Float64(flagGoalA))

	select {
	case <-ctx.Done():
	case <-time.After(c.Duration(flagDuration)):
	}

	stopCtx, stopCancel := context.WithTimeout(c.Context, c.Duration(flagStopWait))
	defer stopCancel()
	if err := loop.Stop(stopCtx); err != nil {
		logger.Warnw("failed to request stop", "error", err)
		return nil
	}
	if err := loop.WaitIdle(stopCtx); err != nil {
		logger.Warnw("gait did not come to rest before exiting", "error", err)
		return nil
	}
	logger.Info("stopped")
	return nil
}
