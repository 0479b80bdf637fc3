package roomba

import "time"

// NewSetTimeCommand returns the SETTIME command for t: day of week (Sunday is
// 0), hour and minute, read in t's own location.
func NewSetTimeCommand(t time.Time) *Command {
	cmd := NewCommand(OpSetTime, setTimePayloadLen)
	cmd.Data[0] = byte(t.Weekday())
	cmd.Data[1] = byte(t.Hour())
	cmd.Data[2] = byte(t.Minute())
	return cmd
}
