// Package serial opens and line-configures the serial device a robot is attached to.
package serial

import (
	"io"

	"github.com/pkg/errors"
	ser "go.bug.st/serial"
)

// Options to be passed to Open(), closely mirrors goserial.Mode.
type Options struct {
	BaudRate int
	DataBits int
	StopBits StopBits
	Parity   Parity
}

// DefaultBaudRate is the speed the Open Interface starts in after power on.
const DefaultBaudRate = 115200

// DefaultOptions returns raw 8N1 at the default baud rate.
func DefaultOptions() Options {
	return Options{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		StopBits: OneStopBit,
		Parity:   NoParity,
	}
}

// Parity describes a serial port parity setting.
type Parity int

const (
	// NoParity disable parity control (default).
	NoParity Parity = iota
	// OddParity enable odd-parity check.
	OddParity
	// EvenParity enable even-parity check.
	EvenParity
	// MarkParity enable mark-parity (always 1) check.
	MarkParity
	// SpaceParity enable space-parity (always 0) check.
	SpaceParity
)

// StopBits describe a serial port stop bits setting.
type StopBits int

const (
	// OneStopBit sets 1 stop bit (default).
	OneStopBit StopBits = iota
	// OnePointFiveStopBits sets 1.5 stop bits.
	OnePointFiveStopBits
	// TwoStopBits sets 2 stop bits.
	TwoStopBits
)

func (options Options) mode() *ser.Mode {
	return &ser.Mode{
		BaudRate: options.BaudRate,
		Parity:   ser.Parity(options.Parity),
		DataBits: options.DataBits,
		StopBits: ser.StopBits(options.StopBits),
	}
}

// Open attempts to open a serial device on the given path, configure its line
// and discard anything left in its buffers. It's a variable in case you need to
// override it during tests.
var Open = func(devicePath string, options Options) (io.ReadWriteCloser, error) {
	device, err := ser.Open(devicePath, options.mode())
	if err != nil {
		return nil, errors.Wrapf(err, "opening serial device %q", devicePath)
	}
	if err := flush(device); err != nil {
		return nil, errors.Wrapf(closeOnError(device, err), "flushing serial device %q", devicePath)
	}

	return device, nil
}

func flush(p ser.Port) error {
	if err := p.ResetInputBuffer(); err != nil {
		return err
	}
	return p.ResetOutputBuffer()
}

func closeOnError(p ser.Port, err error) error {
	//nolint:errcheck
	p.Close()
	return err
}
