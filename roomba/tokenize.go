package roomba

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type tokenKind int

const (
	tokenDayTime tokenKind = iota
	tokenLEDFlag
	tokenLEDValue
)

// token is one lexed element of a schedule or LED spec.
type token struct {
	kind tokenKind
	text string

	// tokenDayTime
	day    time.Weekday
	hour   int
	minute int

	// tokenLEDFlag
	flag LEDBits

	// tokenLEDValue
	key   string
	value int
}

// splitSpec splits a spec on runs of commas and whitespace.
func splitSpec(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

var dayNames = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

func lookupDay(name string) (time.Weekday, bool) {
	for i, day := range dayNames {
		if strings.EqualFold(day, name) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// lexDayTime lexes "day:HH:MM". Range checks are left to Schedule.Set.
func lexDayTime(text string) (token, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return token{}, newError(ParseError, text, errors.New("expected day:HH:MM"))
	}
	day, ok := lookupDay(parts[0])
	if !ok {
		return token{}, newError(UnknownToken, text, errors.Errorf("unknown day %q", parts[0]))
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil {
		return token{}, newError(ParseError, text, errors.Errorf("bad hour %q", parts[1]))
	}
	minute, err := strconv.Atoi(parts[2])
	if err != nil {
		return token{}, newError(ParseError, text, errors.Errorf("bad minute %q", parts[2]))
	}
	return token{kind: tokenDayTime, text: text, day: day, hour: hour, minute: minute}, nil
}

var ledValueKeys = map[string]string{
	"colour":    ledKeyColor,
	"color":     ledKeyColor,
	"intensity": ledKeyIntensity,
}

const (
	ledKeyColor     = "color"
	ledKeyIntensity = "intensity"
)

// lexLED lexes a flag name or a key:value pair with a value in [0,255].
func lexLED(text string) (token, error) {
	lower := strings.ToLower(text)
	if flag, ok := ledFlags[lower]; ok {
		return token{kind: tokenLEDFlag, text: text, flag: flag}, nil
	}

	name, raw, found := strings.Cut(lower, ":")
	key, known := ledValueKeys[name]
	if !found || !known {
		return token{}, newError(UnknownToken, text, nil)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return token{}, newError(ParseError, text, errors.Errorf("bad %s value %q", key, raw))
	}
	if value < 0 || value > 255 {
		return token{}, newError(RangeError, text, errors.Errorf("%s %d not in [0,255]", key, value))
	}
	return token{kind: tokenLEDValue, text: text, key: key, value: value}, nil
}
