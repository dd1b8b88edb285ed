package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.viam.com/teleop/components/input"
	fakeinput "go.viam.com/teleop/components/input/fake"
	"go.viam.com/teleop/components/input/scripted"
	"go.viam.com/teleop/config"
	"go.viam.com/teleop/display"
	"go.viam.com/teleop/logging"
	"go.viam.com/teleop/robot"
	"go.viam.com/teleop/robot/competition"
)

// scriptPollInterval is how often a run checks whether its script has finished.
const scriptPollInterval = 50 * time.Millisecond

// newLogger returns a logger writing to the app's error writer and, if requested, a rotated file.
// The returned func must be called once logging is finished.
func newLogger(c *cli.Context, cfg *config.Config) (logging.Logger, func() error) {
	logger := logging.NewBlankLogger("vexbot")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(logging.INFO)

	var fileConf *logging.FileAppenderConfig
	if cfg != nil {
		logger.SetLevel(cfg.Log.Level)
		fileConf = cfg.Log.File
	}
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	if name := c.String(generalFlagLogFile); name != "" {
		fileConf = &logging.FileAppenderConfig{Filename: name}
	}
	if fileConf == nil {
		return logger, func() error { return nil }
	}
	appender, closer := logging.NewFileAppender(*fileConf)
	logger.AddAppender(appender)
	return logger, closer.Close
}

// readConfig reads the config named by the config flag, logging with a console only logger.
func readConfig(c *cli.Context) (*config.Config, error) {
	logger, _ := newLogger(c, nil)
	return config.Read(c.String(runFlagConfig), logger)
}

// ValidateAction is the corresponding action for 'validate'.
func ValidateAction(c *cli.Context) error {
	cfg, err := readConfig(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, cfg.String())
	return nil
}

// SchemaAction is the corresponding action for 'schema'.
func SchemaAction(c *cli.Context) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(schema))
	return nil
}

// RunAction is the corresponding action for 'run'.
func RunAction(c *cli.Context) (err error) {
	cfg, err := readConfig(c)
	if err != nil {
		return err
	}
	mode, err := competition.ParseMode(c.String(runFlagMode))
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(c, cfg)
	defer func() {
		err = multierr.Combine(err, closeLog())
	}()

	clk := clock.New()
	var controller input.Controller
	var script *scripted.Controller
	if path := c.String(runFlagScript); path != "" {
		script, err = scripted.NewControllerFromFile(path, clk)
		if err != nil {
			return err
		}
		controller = script
	} else {
		controller = fakeinput.NewController()
	}

	sim, err := robot.FromConfig(cfg, controller, display.NewConsoleScreen(c.App.Writer), clk, logger)
	if err != nil {
		return err
	}
	logger.Infow("starting robot",
		"run_id", uuid.New().String(),
		"config", cfg.ConfigFilePath,
		"mode", mode,
		"script", c.String(runFlagScript),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := c.Duration(runFlagDuration); d > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	switcher := competition.NewSwitcher(sim, logger.Sublogger("competition"))
	if err := enterMode(runCtx, switcher, mode); err != nil {
		switcher.Stop()
		return multierr.Combine(err, sim.Close(context.Background()))
	}

	g, gCtx := errgroup.WithContext(runCtx)
	if script != nil && c.Duration(runFlagDuration) <= 0 {
		g.Go(func() error {
			for !script.Done() {
				if !utils.SelectContextOrWait(gCtx, scriptPollInterval) {
					return nil
				}
			}
			logger.Info("script finished")
			cancelRun()
			return nil
		})
	}
	if c.Bool(runFlagWatch) {
		g.Go(func() error {
			return watchConfig(gCtx, cfg.ConfigFilePath, sim.Robot, logger)
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		return nil
	})
	runErr := g.Wait()

	switcher.Stop()
	closeErr := sim.Close(context.Background())
	if err := printSummary(c.Context, c.App.Writer, sim); err != nil {
		logger.Warnw("cannot print summary", "error", err)
	}
	return multierr.Combine(runErr, switcher.Err(), closeErr)
}

// enterMode walks the switcher through the sequence field control uses before a match and then
// into mode.
func enterMode(ctx context.Context, switcher *competition.Switcher, mode competition.Mode) error {
	if err := switcher.Start(ctx); err != nil {
		return err
	}
	if err := switcher.ConnectField(ctx); err != nil {
		return err
	}
	return switcher.SetMode(mode)
}

// watchConfig applies the teleop section of every valid config written to path until ctx is done.
func watchConfig(ctx context.Context, path string, r *robot.Robot, logger logging.Logger) error {
	watcher, err := config.NewWatcher(path, 0, logger.Sublogger("config"))
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(watcher.Close)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-watcher.Config():
			if err := r.Reconfigure(cfg.ConvertedTeleop); err != nil {
				logger.Errorw("cannot apply new teleop config", "error", err)
				continue
			}
			logger.Info("applied new teleop config")
		}
	}
}

// printSummary writes how often every motor was commanded and the final pose.
func printSummary(ctx context.Context, w io.Writer, sim *robot.Simulation) error {
	names := lo.Keys(sim.Motors)
	sort.Strings(names)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Motor", "Port", "Commands"})
	for _, name := range names {
		m := sim.Motors[name]
		t.AppendRow(table.Row{name, m.Config.Port, m.Commands()})
	}
	pose, err := sim.Drivetrain.Pose(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot read final pose")
	}
	_, err = fmt.Fprintf(w, "%s\nfinal pose %s\n", t.Render(), pose)
	return err
}
