package roomba

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimeOfDay is a schedule slot.
type TimeOfDay struct {
	Hour   byte
	Minute byte
}

// Schedule is the weekly cleaning schedule. Bit d of Mask enables day d
// (Sunday is 0); Times[d] is only meaningful when that bit is set.
type Schedule struct {
	Mask  byte
	Times [7]TimeOfDay
}

// Set enables day at hour:minute, replacing any earlier time for that day.
func (s *Schedule) Set(day time.Weekday, hour, minute int) error {
	switch {
	case day < time.Sunday || day > time.Saturday:
		return newError(RangeError, "", errors.Errorf("day %d not in [0,6]", day))
	case hour < 0 || hour > 23:
		return newError(RangeError, "", errors.Errorf("hour %d not in [0,23]", hour))
	case minute < 0 || minute > 59:
		return newError(RangeError, "", errors.Errorf("minute %d not in [0,59]", minute))
	}
	s.Mask |= 1 << uint(day)
	s.Times[day] = TimeOfDay{Hour: byte(hour), Minute: byte(minute)}
	return nil
}

// Enabled reports whether day's mask bit is set.
func (s *Schedule) Enabled(day time.Weekday) bool {
	return s.Mask&(1<<uint(day)) != 0
}

// Payload returns the 15 byte SCHEDULE payload: the day mask followed by an
// hour, minute pair for each day starting with Sunday.
func (s *Schedule) Payload() []byte {
	payload := make([]byte, schedulePayloadLen)
	payload[0] = s.Mask
	for day, tod := range s.Times {
		payload[1+day*2] = tod.Hour
		payload[2+day*2] = tod.Minute
	}
	return payload
}

func (s *Schedule) String() string {
	var days []string
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Enabled(day) {
			tod := s.Times[day]
			days = append(days, fmt.Sprintf("%s %02d:%02d", dayNames[day], tod.Hour, tod.Minute))
		}
	}
	if len(days) == 0 {
		return "none"
	}
	return strings.Join(days, ", ")
}

// DecodeSchedule parses a SCHEDULE payload back into a Schedule.
func DecodeSchedule(payload []byte) (*Schedule, error) {
	if len(payload) != schedulePayloadLen {
		return nil, errors.Errorf("schedule payload is %d bytes, expected %d", len(payload), schedulePayloadLen)
	}
	s := &Schedule{Mask: payload[0]}
	for day := range s.Times {
		s.Times[day] = TimeOfDay{Hour: payload[1+day*2], Minute: payload[2+day*2]}
	}
	return s, nil
}

// ParseSchedule parses "day:HH:MM[,day:HH:MM]..." where day is a three letter
// English day name. A later entry for the same day wins.
func ParseSchedule(spec string) (*Schedule, error) {
	s := &Schedule{}
	for _, text := range splitSpec(spec) {
		tok, err := lexDayTime(text)
		if err != nil {
			return nil, err
		}
		if err := s.Set(tok.day, tok.hour, tok.minute); err != nil {
			return nil, withToken(err, tok.text)
		}
	}
	return s, nil
}

// NewScheduleCommand returns the SCHEDULE command for s.
func NewScheduleCommand(s *Schedule) *Command {
	cmd := NewCommand(OpSchedule, schedulePayloadLen)
	copy(cmd.Data, s.Payload())
	return cmd
}
