package roomba

import (
	"context"
	"io"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/roombactl/logging"
)

// DefaultSettleDelay is how long the robot is given to wake up after a start
// frame, and to switch mode before LED commands.
const DefaultSettleDelay = 100 * time.Millisecond

// maxStalledWrites bounds consecutive writes that return neither bytes nor an error.
const maxStalledWrites = 100

// Channel is the opened, line configured connection to the robot.
type Channel = io.WriteCloser

// State is the start gating state of a Session.
type State int

const (
	// NeedsStart means a start frame must precede the next command.
	NeedsStart State = iota
	// Started means the robot has been woken on this channel.
	Started
)

func (s State) String() string {
	if s == Started {
		return "started"
	}
	return "needs start"
}

// Session owns a channel to a robot and the start gating state for it. The
// robot ignores everything until it sees a start frame, and forgets it was
// started after a reset, so Send injects a start frame when needed.
//
// A Session is not safe for concurrent use.
type Session struct {
	ch          Channel
	state       State
	clock       clock.Clock
	settleDelay time.Duration
	logger      logging.Logger
	closed      bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for settle delays and SetTime.
func WithClock(clk clock.Clock) Option {
	return func(s *Session) {
		s.clock = clk
	}
}

// WithSettleDelay sets the pause after an injected start frame and before
// LED commands. Zero or negative disables it.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Session) {
		s.settleDelay = d
	}
}

// NewSession returns a Session writing to ch. A nil ch yields a Session whose
// every Send fails with ErrNoDevice.
func NewSession(ch Channel, logger logging.Logger, opts ...Option) *Session {
	s := &Session{
		ch:          ch,
		state:       NeedsStart,
		clock:       clock.New(),
		settleDelay: DefaultSettleDelay,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current start gating state.
func (s *Session) State() State {
	return s.state
}

// Send transmits cmd, first sending a start frame if the robot has not been
// started on this channel yet. START and RESET are never preceded by one.
func (s *Session) Send(ctx context.Context, cmd *Command) error {
	if s.ch == nil || s.closed {
		return ErrNoDevice
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	if s.state == NeedsStart && cmd.Op != OpStart && cmd.Op != OpReset {
		if err := s.transmit(NewSimpleCommand(OpStart)); err != nil {
			return err
		}
		s.state = Started
		if err := s.settle(ctx); err != nil {
			return err
		}
	}

	if err := s.transmit(cmd); err != nil {
		return err
	}
	if cmd.Op == OpReset {
		s.state = NeedsStart
	} else {
		s.state = Started
	}
	return nil
}

func (s *Session) settle(ctx context.Context) error {
	if s.settleDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(s.settleDelay):
		return nil
	}
}

// transmit writes the whole frame, resuming partial writes and retrying
// interrupted ones. Any other failure aborts the frame.
func (s *Session) transmit(cmd *Command) error {
	s.logger.Debug(cmd.String())

	packet := cmd.ToPacket()
	stalled := 0
	for pos := 0; pos < len(packet); {
		n, err := s.ch.Write(packet[pos:])
		if n > 0 {
			pos += n
			stalled = 0
		}
		if err != nil {
			if isRetryable(err) {
				s.logger.Debugw("retrying write", "opcode", cmd.Op.String(), "error", err)
				continue
			}
			return newError(IOError, "", errors.Wrapf(err, "writing %s", cmd.Op))
		}
		if n == 0 {
			stalled++
			if stalled >= maxStalledWrites {
				return newError(IOError, "", errors.Wrapf(io.ErrNoProgress, "writing %s", cmd.Op))
			}
		}
	}
	return nil
}

func isRetryable(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}

// Close closes the channel. Only the first call has any effect.
func (s *Session) Close() error {
	if s.ch == nil || s.closed {
		return nil
	}
	s.closed = true
	return s.ch.Close()
}

// Start wakes the robot explicitly.
func (s *Session) Start(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpStart))
}

// Reset resets the robot. It has to be started again afterwards, which the
// next Send takes care of.
func (s *Session) Reset(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpReset))
}

// Clean starts a default cleaning cycle.
func (s *Session) Clean(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpClean))
}

// Spot starts a spot cleaning cycle.
func (s *Session) Spot(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpSpot))
}

// Max starts a max cleaning cycle.
func (s *Session) Max(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpMax))
}

// Dock sends the robot looking for its dock.
func (s *Session) Dock(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpDock))
}

// PowerOff powers the robot down.
func (s *Session) PowerOff(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpPower))
}

// Safe puts the robot in safe mode.
func (s *Session) Safe(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpSafe))
}

// Full puts the robot in full mode.
func (s *Session) Full(ctx context.Context) error {
	return s.Send(ctx, NewSimpleCommand(OpFull))
}

// SetTime sets the robot's clock to the local wall clock time.
func (s *Session) SetTime(ctx context.Context) error {
	now := s.clock.Now()
	s.logger.Infof("set time: day %d %02d:%02d", now.Weekday(), now.Hour(), now.Minute())
	return s.Send(ctx, NewSetTimeCommand(now))
}

// SetSchedule replaces the robot's weekly schedule.
func (s *Session) SetSchedule(ctx context.Context, schedule *Schedule) error {
	s.logger.Infof("schedule: %s", schedule)
	return s.Send(ctx, NewScheduleCommand(schedule))
}

// SetLEDs sets the indicator and power LEDs. LEDs only respond in safe or full
// mode, so the robot is switched to full mode first.
func (s *Session) SetLEDs(ctx context.Context, leds *LEDState) error {
	s.logger.Infof("leds: %s", leds)
	if err := s.Full(ctx); err != nil {
		return err
	}
	if err := s.settle(ctx); err != nil {
		return err
	}
	return s.Send(ctx, NewLEDCommand(leds))
}
