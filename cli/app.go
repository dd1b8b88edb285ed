// Package cli contains the vexbot command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagDebug   = "debug"
	generalFlagLogFile = "log-file"

	runFlagConfig   = "config"
	runFlagScript   = "script"
	runFlagMode     = "mode"
	runFlagDuration = "duration"
	runFlagWatch    = "watch"
)

var configFlag = &cli.StringFlag{
	Name:     runFlagConfig,
	Aliases:  []string{"c"},
	Required: true,
	Usage:    "load robot configuration from `FILE`",
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "vexbot",
		Usage:           "drive a simulated competition robot",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  generalFlagLogFile,
				Usage: "also write logs to `FILE`, rotated by size",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "check a robot config and print its motor ports",
				Flags:  []cli.Flag{configFlag},
				Action: ValidateAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the robot config",
				Action: SchemaAction,
			},
			{
				Name:  "run",
				Usage: "run the robot in a competition mode",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  runFlagScript,
						Usage: "replay controller input from the JSON lines `FILE`; without it the sticks stay centered",
					},
					&cli.StringFlag{
						Name:  runFlagMode,
						Value: "opcontrol",
						Usage: "competition mode to enter: disabled, autonomous or opcontrol",
					},
					&cli.DurationFlag{
						Name:  runFlagDuration,
						Usage: "stop after this long; by default runs until the script ends or an interrupt",
					},
					&cli.BoolFlag{
						Name:  runFlagWatch,
						Usage: "apply teleop tuning whenever the config file changes",
					},
				},
				Action: RunAction,
			},
		},
	}
}
