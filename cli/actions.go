package cli

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/roombactl/config"
	"go.viam.com/roombactl/logging"
	"go.viam.com/roombactl/roomba"
	"go.viam.com/roombactl/serial"
)

// wallClock is read by set-time. It's a variable so tests can pin it.
var wallClock = clock.New()

// commands are the action flags that send fixed commands.
var commands = map[string]func(*roomba.Session, context.Context) error{
	flagClean:    (*roomba.Session).Clean,
	flagPowerOff: (*roomba.Session).PowerOff,
	flagReset:    (*roomba.Session).Reset,
	flagTime:     (*roomba.Session).SetTime,
	flagSpot:     (*roomba.Session).Spot,
	flagDock:     (*roomba.Session).Dock,
	flagMax:      (*roomba.Session).Max,
}

var shortFlags = map[rune]string{
	'c': flagClean,
	'p': flagPowerOff,
	'r': flagReset,
	't': flagTime,
	's': flagSchedule,
	'l': flagLEDs,
	'v': flagVerbose,
	'd': flagDevice,
}

var valueFlags = map[string]bool{
	flagSchedule:    true,
	flagLEDs:        true,
	flagDevice:      true,
	flagConfig:      true,
	flagBaud:        true,
	flagSettleDelay: true,
	flagLogFile:     true,
	flagLogLevel:    true,
}

func isAction(name string) bool {
	_, ok := commands[name]
	return ok || name == flagSchedule || name == flagLEDs
}

func isLongFlag(name string) bool {
	return isAction(name) || valueFlags[name] || name == flagVerbose
}

// step is one action flag occurrence and, for schedule and leds, its spec.
type step struct {
	name  string
	value string
}

// normalizeArgs splits combined short flags and attached values, so
// -d/dev/ttyUSB0 becomes -d /dev/ttyUSB0 and -csmon:10:00 becomes
// -c -s mon:10:00. Anything it does not recognise is left to the flag parser.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		split := splitShortGroup(arg)
		out = append(out, split...)
		if needsValue(split[len(split)-1]) && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

func splitShortGroup(arg string) []string {
	if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") || len(arg) <= 2 {
		return []string{arg}
	}
	name := arg[1:]
	if long, _, _ := strings.Cut(name, "="); isLongFlag(long) {
		return []string{arg}
	}

	runes := []rune(name)
	var split []string
	for idx, r := range runes {
		long, ok := shortFlags[r]
		if !ok {
			return []string{arg}
		}
		flag := "-" + string(r)
		if !valueFlags[long] {
			split = append(split, flag)
			continue
		}
		rest := string(runes[idx+1:])
		switch {
		case rest == "":
			return append(split, flag)
		case rest[0] == '=':
			return append(split, flag+rest)
		default:
			return append(split, flag, rest)
		}
	}
	return split
}

// flagName resolves a flag argument to its long name and any attached value.
func flagName(arg string) (name, value string, hasValue bool) {
	name, value, hasValue = strings.Cut(strings.TrimLeft(arg, "-"), "=")
	if long, ok := shortFlags[singleRune(name)]; ok {
		name = long
	}
	return name, value, hasValue
}

func needsValue(arg string) bool {
	if !strings.HasPrefix(arg, "-") || arg == "-" {
		return false
	}
	name, _, hasValue := flagName(arg)
	return valueFlags[name] && !hasValue
}

// actionSteps returns the action flags of args in the order they were given.
// The flag parser only reports which flags are set, not where, and keeps only
// the last value of a repeated flag.
func actionSteps(args []string) []step {
	args = normalizeArgs(args)
	var steps []step
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			continue
		}

		name, value, hasValue := flagName(arg)
		if valueFlags[name] && !hasValue && i+1 < len(args) {
			i++
			value = args[i]
		}
		if !isAction(name) {
			continue
		}
		if !valueFlags[name] && hasValue {
			// --clean=false turns the action off
			if enabled, err := strconv.ParseBool(value); err != nil || !enabled {
				continue
			}
			value = ""
		}
		steps = append(steps, step{name: name, value: value})
	}
	return steps
}

// singleRune returns the only rune of s, or 0.
func singleRune(s string) rune {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0
	}
	return runes[0]
}

type plannedAction struct {
	name string
	run  func(ctx context.Context, s *roomba.Session) error
}

// planActions parses every schedule and LED spec up front, so a bad spec
// never leaves a half applied run.
func planActions(steps []step) ([]plannedAction, error) {
	planned := make([]plannedAction, 0, len(steps))
	for _, st := range steps {
		action := plannedAction{name: st.name}
		switch st.name {
		case flagSchedule:
			schedule, err := roomba.ParseSchedule(st.value)
			if err != nil {
				return nil, errors.Wrap(err, st.name)
			}
			action.run = func(ctx context.Context, s *roomba.Session) error {
				// a schedule is only useful against a correct clock
				if err := s.SetTime(ctx); err != nil {
					return err
				}
				return s.SetSchedule(ctx, schedule)
			}
		case flagLEDs:
			leds, err := roomba.ParseLEDs(st.value)
			if err != nil {
				return nil, errors.Wrap(err, st.name)
			}
			action.run = func(ctx context.Context, s *roomba.Session) error {
				return s.SetLEDs(ctx, leds)
			}
		default:
			command := commands[st.name]
			action.run = func(ctx context.Context, s *roomba.Session) error {
				return command(s, ctx)
			}
		}
		planned = append(planned, action)
	}
	return planned, nil
}

func runAction(c *cli.Context, steps []step) (err error) {
	if len(steps) == 0 {
		if err := cli.ShowAppHelp(c); err != nil {
			return err
		}
		return errors.New("no command given")
	}

	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if c.Bool(flagVerbose) {
		level = logging.DEBUG
	}

	logger := logging.NewBlankLogger(c.App.Name)
	logger.AddAppender(logging.NewWriterAppender(c.App.Writer, logging.NewLoggerConfig()))
	logger.SetLevel(level)
	if cfg.LogFile != "" {
		appender, closer := logging.NewFileAppender(cfg.LogFile, logging.DefaultFileOptions)
		logger.AddAppender(appender)
		defer func() {
			err = multierr.Combine(err, closer.Close())
		}()
	}

	planned, err := planActions(steps)
	if err != nil {
		return err
	}

	session, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, session.Close())
	}()

	for _, action := range planned {
		if err := action.run(c.Context, session); err != nil {
			return errors.Wrap(err, action.name)
		}
	}
	return nil
}

// resolveConfig layers defaults, the config file, the environment and flags,
// each overriding the one before.
func resolveConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)

	if c.IsSet(flagDevice) {
		cfg.Device = c.String(flagDevice)
	}
	if c.IsSet(flagBaud) {
		cfg.BaudRate = c.Int(flagBaud)
	}
	if c.IsSet(flagSettleDelay) {
		cfg.SettleDelay = c.Duration(flagSettleDelay)
	}
	if c.IsSet(flagLogFile) {
		cfg.LogFile = c.String(flagLogFile)
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}
	return cfg, cfg.Validate()
}

// openSession opens the configured device. Without one the session still
// exists, but the first command fails with roomba.ErrNoDevice.
func openSession(cfg *config.Config, logger logging.Logger) (*roomba.Session, error) {
	var ch roomba.Channel
	if cfg.Device != "" {
		logger.Infof("open %s", cfg.Device)
		port, err := serial.Open(cfg.Device, cfg.SerialOptions())
		if err != nil {
			return nil, &roomba.Error{Kind: roomba.IOError, Err: err}
		}
		ch = port
	}
	return roomba.NewSession(ch, logger.Sublogger("session"),
		roomba.WithClock(wallClock),
		roomba.WithSettleDelay(cfg.SettleDelay),
	), nil
}
