package roomba

import (
	"strconv"
	"strings"
)

// LEDBits selects the indicator LEDs.
type LEDBits byte

// The indicator LEDs.
const (
	LEDDebris LEDBits = 1 << iota
	LEDSpot
	LEDDock
	LEDCheck
)

var ledFlags = map[string]LEDBits{
	"debris": LEDDebris,
	"spot":   LEDSpot,
	"dock":   LEDDock,
	"check":  LEDCheck,
}

// LEDState is the payload of the LEDS command. Color and Intensity drive the
// power LED: color 0 is green and 255 red, intensity 0 is off.
type LEDState struct {
	Bits      LEDBits
	Color     byte
	Intensity byte
}

// Payload returns the 3 byte LEDS payload.
func (l *LEDState) Payload() []byte {
	return []byte{byte(l.Bits), l.Color, l.Intensity}
}

func (l *LEDState) String() string {
	var names []string
	for _, name := range []string{"debris", "spot", "dock", "check"} {
		if l.Bits&ledFlags[name] != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(append(names,
		"colour:"+strconv.Itoa(int(l.Color)),
		"intensity:"+strconv.Itoa(int(l.Intensity)),
	), ",")
}

// ParseLEDs parses "check,dock,spot,debris,colour:[0-255],intensity:[0-255]".
// Flags accumulate; a later colour or intensity overrides an earlier one.
func ParseLEDs(spec string) (*LEDState, error) {
	l := &LEDState{}
	for _, text := range splitSpec(spec) {
		tok, err := lexLED(text)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenLEDFlag:
			l.Bits |= tok.flag
		case tokenLEDValue:
			if tok.key == ledKeyColor {
				l.Color = byte(tok.value)
			} else {
				l.Intensity = byte(tok.value)
			}
		}
	}
	return l, nil
}

// NewLEDCommand returns the LEDS command for l.
func NewLEDCommand(l *LEDState) *Command {
	cmd := NewCommand(OpLEDs, ledPayloadLen)
	copy(cmd.Data, l.Payload())
	return cmd
}
