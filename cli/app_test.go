package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/roombactl/roomba"
	"go.viam.com/roombactl/serial"
)

type fakePort struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed int
}

func (p *fakePort) Read(b []byte) (int, error) {
	return 0, io.EOF
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakePort) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.buf.Bytes()...)
}

type runResult struct {
	port    *fakePort
	opened  []string
	options []serial.Options
	out     string
	err     error
}

// run runs roombactl against a fake port with a pinned clock.
func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var res runResult
	res.port = &fakePort{}

	prevOpen := serial.Open
	serial.Open = func(devicePath string, options serial.Options) (io.ReadWriteCloser, error) {
		res.opened = append(res.opened, devicePath)
		res.options = append(res.options, options)
		return res.port, nil
	}
	prevClock := wallClock
	mockClock := clock.NewMock()
	// a Monday
	mockClock.Set(time.Date(2026, time.October, 19, 9, 41, 0, 0, time.Local))
	wallClock = mockClock
	defer func() {
		serial.Open = prevOpen
		wallClock = prevClock
	}()

	var out, errOut bytes.Buffer
	res.err = Run(context.Background(), append([]string{"roombactl", "--settle-delay", "0s"}, args...), &out, &errOut)
	res.out = out.String() + errOut.String()
	return res
}

func TestRunClean(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d", "/dev/ttyUSB0", "-c")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.opened, test.ShouldResemble, []string{"/dev/ttyUSB0"})
	test.That(t, res.options[0], test.ShouldResemble, serial.DefaultOptions())
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 135})
	test.That(t, res.port.closed, test.ShouldEqual, 1)
	test.That(t, res.out, test.ShouldContainSubstring, "open /dev/ttyUSB0")
}

func TestRunActionOrder(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d", "/dev/ttyUSB0", "-r", "-c", "--dock", "-p")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{7, 128, 135, 143, 133})

	res = run(t, "-d", "/dev/ttyUSB0", "-p", "-r", "-c")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 133, 7, 128, 135})

	// an action switched off explicitly sends nothing
	res = run(t, "-d", "/dev/ttyUSB0", "--clean=false", "-p")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 133})

	res = run(t, "-d", "/dev/ttyUSB0", "-c=false", "--dock")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 143})
}

func TestRunRepeatedSpecs(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d", "/dev/ttyUSB0", "-s", "mon:10:00", "-s", "tue:11:00")
	test.That(t, res.err, test.ShouldBeNil)

	expected := []byte{128}
	expected = append(expected, 168, 1, 9, 41, 167, 0b0010, 0, 0, 10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	expected = append(expected, 168, 1, 9, 41, 167, 0b0100, 0, 0, 0, 0, 11, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	test.That(t, res.port.Bytes(), test.ShouldResemble, expected)

	res = run(t, "-d", "/dev/ttyUSB0", "-l", "check", "--leds", "dock,intensity:9")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 132, 139, 0b1000, 0, 0, 132, 139, 0b0100, 0, 9})
}

func TestRunAttachedValues(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d/dev/ttyUSB0", "-csmon:10:00")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.opened, test.ShouldResemble, []string{"/dev/ttyUSB0"})
	test.That(t, res.port.Bytes(), test.ShouldResemble,
		[]byte{128, 135, 168, 1, 9, 41, 167, 0b0010, 0, 0, 10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
}

func TestRunCombinedShortFlags(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d", "/dev/ttyUSB0", "-ct")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 135, 168, 1, 9, 41})
}

func TestRunSchedule(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d", "/dev/ttyUSB0", "-s", "mon:14:30,wed:08:05")
	test.That(t, res.err, test.ShouldBeNil)

	expected := []byte{128, 168, 1, 9, 41, 167, 0b0001010, 0, 0, 14, 30, 0, 0, 8, 5, 0, 0, 0, 0, 0, 0}
	test.That(t, res.port.Bytes(), test.ShouldResemble, expected)
	test.That(t, res.out, test.ShouldContainSubstring, "set time: day 1 09:41")
	test.That(t, res.out, test.ShouldContainSubstring, "schedule: mon 14:30, wed 08:05")
}

func TestRunLEDs(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d", "/dev/ttyUSB0", "--leds=debris,spot,colour:200,intensity:50")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 132, 139, 0b0011, 200, 50})
}

func TestRunBadSpecSendsNothing(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-d", "/dev/ttyUSB0", "-c", "-l", "debris,unknown")
	test.That(t, res.err, test.ShouldNotBeNil)
	kind, ok := roomba.KindOf(res.err)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, kind, test.ShouldEqual, roomba.UnknownToken)
	test.That(t, res.err.Error(), test.ShouldContainSubstring, `"unknown"`)
	test.That(t, res.opened, test.ShouldBeEmpty)
	test.That(t, res.port.Bytes(), test.ShouldBeEmpty)

	res = run(t, "-d", "/dev/ttyUSB0", "-s", "mon:25:00")
	kind, _ = roomba.KindOf(res.err)
	test.That(t, kind, test.ShouldEqual, roomba.RangeError)
	test.That(t, res.port.Bytes(), test.ShouldBeEmpty)
}

func TestRunDeviceFromEnv(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "/dev/ttyACM0")
	res := run(t, "--spot")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.opened, test.ShouldResemble, []string{"/dev/ttyACM0"})
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 134})

	// the flag wins over the environment
	res = run(t, "-d", "/dev/ttyUSB1", "--max")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.opened, test.ShouldResemble, []string{"/dev/ttyUSB1"})
}

func TestRunNoDevice(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-c")
	test.That(t, res.err, test.ShouldNotBeNil)
	test.That(t, errors.Is(res.err, roomba.ErrNoDevice), test.ShouldBeTrue)
	test.That(t, res.opened, test.ShouldBeEmpty)
}

func TestRunOpenFailure(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	prevOpen := serial.Open
	defer func() {
		serial.Open = prevOpen
	}()
	serial.Open = func(devicePath string, options serial.Options) (io.ReadWriteCloser, error) {
		return nil, errors.Errorf("cannot open %s", devicePath)
	}

	var out bytes.Buffer
	err := Run(context.Background(), []string{"roombactl", "-d", "/dev/nope", "-c"}, &out, &out)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot open /dev/nope")
	kind, _ := roomba.KindOf(err)
	test.That(t, kind, test.ShouldEqual, roomba.IOError)
}

func TestRunUsage(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t)
	test.That(t, res.err, test.ShouldNotBeNil)
	test.That(t, res.err.Error(), test.ShouldContainSubstring, "no command given")
	test.That(t, res.out, test.ShouldContainSubstring, "roombactl -d device")

	res = run(t, "-d", "/dev/ttyUSB0", "-x")
	test.That(t, res.err, test.ShouldNotBeNil)
	test.That(t, res.port.Bytes(), test.ShouldBeEmpty)
}

func TestRunVerbose(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "-v", "-d", "/dev/ttyUSB0", "-c")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.out, test.ShouldContainSubstring, "command 128")
	test.That(t, res.out, test.ShouldContainSubstring, "command 135")

	res = run(t, "-d", "/dev/ttyUSB0", "-c")
	test.That(t, res.out, test.ShouldNotContainSubstring, "command 135")
}

func TestRunLogLevel(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	res := run(t, "--log-level", "warn", "-d", "/dev/ttyUSB0", "-c")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.out, test.ShouldNotContainSubstring, "open /dev/ttyUSB0")
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 135})

	res = run(t, "--log-level", "debug", "-d", "/dev/ttyUSB0", "-c")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.out, test.ShouldContainSubstring, "command 135")

	res = run(t, "--log-level", "loud", "-d", "/dev/ttyUSB0", "-c")
	test.That(t, res.err, test.ShouldNotBeNil)
	test.That(t, res.err.Error(), test.ShouldContainSubstring, "invalid log_level")
	test.That(t, res.opened, test.ShouldBeEmpty)
}

func TestRunConfigFile(t *testing.T) {
	t.Setenv("ROOMBA_DEVICE", "")
	dir := t.TempDir()
	logPath := filepath.Join(dir, "roombactl.log")
	cfgPath := filepath.Join(dir, "roombactl.json")
	test.That(t, os.WriteFile(cfgPath, []byte(`{
		"device": "/dev/ttyS3",
		"baud_rate": 19200,
		"log_file": "`+logPath+`"
	}`), 0o600), test.ShouldBeNil)

	res := run(t, "--config", cfgPath, "-p")
	test.That(t, res.err, test.ShouldBeNil)
	test.That(t, res.opened, test.ShouldResemble, []string{"/dev/ttyS3"})
	test.That(t, res.options[0].BaudRate, test.ShouldEqual, 19200)
	test.That(t, res.port.Bytes(), test.ShouldResemble, []byte{128, 133})

	//nolint:gosec
	logged, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logged), test.ShouldContainSubstring, "open /dev/ttyS3")

	res = run(t, "--config", cfgPath, "--baud", "250000", "-p")
	test.That(t, res.err, test.ShouldNotBeNil)
	test.That(t, res.err.Error(), test.ShouldContainSubstring, "invalid baud_rate 250000")
	test.That(t, res.opened, test.ShouldBeEmpty)
}

func TestActionSteps(t *testing.T) {
	clean := step{name: flagClean}
	for _, tc := range []struct {
		args     []string
		expected []step
	}{
		{nil, nil},
		{[]string{"-v", "-d", "/dev/x"}, nil},
		{[]string{"-c", "-p"}, []step{clean, {name: flagPowerOff}}},
		{[]string{"-cp", "-r"}, []step{clean, {name: flagPowerOff}, {name: flagReset}}},
		{[]string{"-cs", "mon:10:00", "-t"}, []step{clean, {flagSchedule, "mon:10:00"}, {name: flagTime}}},
		{[]string{"--leds", "-c", "--spot"}, []step{{flagLEDs, "-c"}, {name: flagSpot}}},
		{[]string{"--leds=check", "-c"}, []step{{flagLEDs, "check"}, clean}},
		{[]string{"-d", "-c", "-t"}, []step{{name: flagTime}}},
		{[]string{"-reset", "-clean"}, []step{{name: flagReset}, clean}},
		{[]string{"-c", "--", "-p"}, []step{clean}},
		{[]string{"--c", "--s", "tue:07:00"}, []step{clean, {flagSchedule, "tue:07:00"}}},
		{[]string{"-dc", "-t"}, []step{{name: flagTime}}},
		{[]string{"--clean=false", "-c=0", "--dock=true", "-p"}, []step{{name: flagDock}, {name: flagPowerOff}}},
		{[]string{"-s", "mon:10:00", "-s", "tue:11:00"}, []step{{flagSchedule, "mon:10:00"}, {flagSchedule, "tue:11:00"}}},
		{[]string{"-csmon:10:00", "-lcheck"}, []step{clean, {flagSchedule, "mon:10:00"}, {flagLEDs, "check"}}},
		{[]string{"-d/dev/ttyUSB0", "-s=wed:01:02"}, []step{{flagSchedule, "wed:01:02"}}},
	} {
		test.That(t, actionSteps(tc.args), test.ShouldResemble, tc.expected)
	}
}

func TestNormalizeArgs(t *testing.T) {
	for _, tc := range []struct {
		args     []string
		expected []string
	}{
		{[]string{"-ct"}, []string{"-c", "-t"}},
		{[]string{"-d/dev/ttyUSB0", "-c"}, []string{"-d", "/dev/ttyUSB0", "-c"}},
		{[]string{"-csmon:10:00"}, []string{"-c", "-s", "mon:10:00"}},
		{[]string{"-cs=mon:10:00"}, []string{"-c", "-s=mon:10:00"}},
		{[]string{"-l", "-ct"}, []string{"-l", "-ct"}},
		{[]string{"-c=false", "-reset", "--device", "-x"}, []string{"-c=false", "-reset", "--device", "-x"}},
		{[]string{"-cx"}, []string{"-cx"}},
		{[]string{"--", "-ct"}, []string{"--", "-ct"}},
	} {
		test.That(t, normalizeArgs(tc.args), test.ShouldResemble, tc.expected)
	}
}
