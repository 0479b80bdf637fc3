// Package cli contains the roombactl command line application.
package cli

import (
	"context"
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/roombactl/config"
)

const (
	// Action flags. Each one sends one or more commands, in command line order.
	flagClean    = "clean"
	flagPowerOff = "power-off"
	flagReset    = "reset"
	flagTime     = "time"
	flagSchedule = "schedule"
	flagLEDs     = "leds"
	flagSpot     = "spot"
	flagDock     = "dock"
	flagMax      = "max"

	// Setting flags.
	flagVerbose     = "verbose"
	flagDevice      = "device"
	flagConfig      = "config"
	flagBaud        = "baud"
	flagSettleDelay = "settle-delay"
	flagLogFile     = "log-file"
	flagLogLevel    = "log-level"
)

func newApp(out, errOut io.Writer, args []string) *cli.App {
	return &cli.App{
		Name:                   "roombactl",
		Usage:                  "send commands to a Roomba over its serial port",
		UsageText:              "roombactl -d device [-cprtv] [-l led] [-s schedule]",
		HideHelpCommand:        true,
		UseShortOptionHandling: true,
		Writer:                 out,
		ErrWriter:              errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagClean,
				Aliases: []string{"c"},
				Usage:   "start a cleaning cycle",
			},
			&cli.BoolFlag{
				Name:    flagPowerOff,
				Aliases: []string{"p"},
				Usage:   "power the robot off",
			},
			&cli.BoolFlag{
				Name:    flagReset,
				Aliases: []string{"r"},
				Usage:   "reset the robot",
			},
			&cli.BoolFlag{
				Name:    flagTime,
				Aliases: []string{"t"},
				Usage:   "set the robot's clock to the local time",
			},
			&cli.StringFlag{
				Name:    flagSchedule,
				Aliases: []string{"s"},
				Usage:   "set the clock and the weekly schedule, e.g. `mon:09:30,thu:14:00`",
			},
			&cli.StringFlag{
				Name:    flagLEDs,
				Aliases: []string{"l"},
				Usage:   "set LEDs from `check,dock,spot,debris,colour:[0-255],intensity:[0-255]`",
			},
			&cli.BoolFlag{
				Name:  flagSpot,
				Usage: "start a spot cleaning cycle",
			},
			&cli.BoolFlag{
				Name:  flagDock,
				Usage: "send the robot to its dock",
			},
			&cli.BoolFlag{
				Name:  flagMax,
				Usage: "start a max cleaning cycle",
			},
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "log every command sent",
			},
			&cli.StringFlag{
				Name:    flagDevice,
				Aliases: []string{"d"},
				Usage:   "serial device `PATH`, defaults to $" + config.DeviceEnvVar,
			},
			&cli.StringFlag{
				Name:  flagConfig,
				Usage: "load configuration from `FILE`",
			},
			&cli.IntFlag{
				Name:  flagBaud,
				Usage: "baud rate of the robot's serial interface",
			},
			&cli.DurationFlag{
				Name:  flagSettleDelay,
				Usage: "pause after waking the robot",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to rotated `FILE`",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "log `LEVEL`: debug, info, warn or error",
			},
		},
		Action: func(c *cli.Context) error {
			var rest []string
			if len(args) > 1 {
				rest = args[1:]
			}
			return runAction(c, actionSteps(rest))
		},
	}
}

// Run runs roombactl with the given arguments, args[0] being the program name.
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	if len(args) > 1 {
		args = append([]string{args[0]}, normalizeArgs(args[1:])...)
	}
	return newApp(out, errOut, args).RunContext(ctx, args)
}
