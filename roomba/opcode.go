// Package roomba encodes Open Interface commands and sends them to a Roomba
// over an already configured serial channel.
//
// Roomba 500 Open Interface:
// http://www.irobot.lv/uploaded_files/File/iRobot_Roomba_500_Open_Interface_Spec.pdf
package roomba

import "fmt"

// Opcode is the first byte of every command frame.
type Opcode byte

// Initialisation commands.
const (
	OpReset Opcode = 7 // undocumented
	OpStart Opcode = 128
	OpBaud  Opcode = 129
)

// Mode commands.
const (
	OpControl Opcode = 130 // deprecated alias of safe
	OpSafe    Opcode = 131
	OpFull    Opcode = 132
	OpPower   Opcode = 133
)

// Cleaning commands.
const (
	OpSpot  Opcode = 134
	OpClean Opcode = 135
	OpMax   Opcode = 136
	OpDock  Opcode = 143
)

// Actuator and schedule commands.
const (
	OpLEDs     Opcode = 139
	OpSchedule Opcode = 167
	OpSetTime  Opcode = 168
)

const (
	baudPayloadLen     = 1
	ledPayloadLen      = 3
	schedulePayloadLen = 15
	setTimePayloadLen  = 3
)

var opcodeInfo = map[Opcode]struct {
	name       string
	payloadLen int
}{
	OpReset:    {"reset", 0},
	OpStart:    {"start", 0},
	OpBaud:     {"baud", baudPayloadLen},
	OpControl:  {"control", 0},
	OpSafe:     {"safe", 0},
	OpFull:     {"full", 0},
	OpPower:    {"power", 0},
	OpSpot:     {"spot", 0},
	OpClean:    {"clean", 0},
	OpMax:      {"max", 0},
	OpDock:     {"dock", 0},
	OpLEDs:     {"leds", ledPayloadLen},
	OpSchedule: {"schedule", schedulePayloadLen},
	OpSetTime:  {"settime", setTimePayloadLen},
}

// PayloadLen returns the fixed payload size of a known opcode.
func PayloadLen(op Opcode) (int, bool) {
	info, ok := opcodeInfo[op]
	return info.payloadLen, ok
}

func (op Opcode) String() string {
	if info, ok := opcodeInfo[op]; ok {
		return info.name
	}
	return fmt.Sprintf("opcode(%d)", byte(op))
}
