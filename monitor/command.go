package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"periph.io/x/devices/v3/gc9a01/image565"
)

var (
	// ErrUnknownCommand is returned for a line whose prefix is not recognised.
	ErrUnknownCommand = errors.New("monitor: unknown command")
	// ErrMalformed is returned when a command payload cannot be parsed.
	ErrMalformed = errors.New("monitor: malformed command")
	// ErrNoBattery is returned for SOC commands when no battery is attached.
	ErrNoBattery = errors.New("monitor: no battery monitor")
)

// Effect is what the display must do after a command.
type Effect uint8

const (
	// EffectNone leaves the panel untouched.
	EffectNone Effect = iota
	// EffectRedraw repaints the current screen.
	EffectRedraw
	// EffectGauge repaints the battery ring, incrementally when possible.
	EffectGauge
	// EffectBrightness changes the backlight only.
	EffectBrightness
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "None"
	case EffectRedraw:
		return "Redraw"
	case EffectGauge:
		return "Gauge"
	case EffectBrightness:
		return "Brightness"
	default:
		return fmt.Sprintf("Effect(%d)", e)
	}
}

// Command is one parsed protocol line.
type Command struct {
	Name    string   // Upper case prefix, e.g. "WEATHER"
	Payload string   // Text after the first colon, trimmed
	Fields  []string // Payload split on commas
}

// ParseCommand splits a line of the form NAME:payload. Trailing CR and
// whitespace are ignored.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	name, payload, ok := strings.Cut(line, ":")
	if !ok || name == "" {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}
	payload = strings.TrimSpace(payload)
	c := Command{Name: strings.ToUpper(name), Payload: payload}
	if payload != "" {
		c.Fields = strings.Split(payload, ",")
		for i := range c.Fields {
			c.Fields[i] = strings.TrimSpace(c.Fields[i])
		}
	}
	return c, nil
}

// Dispatcher applies protocol lines to a State.
type Dispatcher struct {
	State *State
	// Now returns the host time. Defaults to time.Now.
	Now func() time.Time
	// Logf, when set, receives one line per applied command.
	Logf func(format string, args ...any)
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
	}
}

// Handle parses and applies one line. On error the state is unchanged.
func (d *Dispatcher) Handle(line string) (Effect, error) {
	c, err := ParseCommand(line)
	if err != nil {
		return EffectNone, err
	}
	s := d.State

	switch c.Name {
	case "MSG", "DISP":
		s.Message = c.Payload
		s.Mode = ModeMessage
		d.logf("monitor: message %q", c.Payload)
		return EffectRedraw, nil

	case "BRIGHT":
		n, err := atoi(c, c.Payload)
		if err != nil {
			return EffectNone, err
		}
		if n < 0 || n > 100 {
			return EffectNone, fmt.Errorf("%w: brightness %d outside 0-100", ErrMalformed, n)
		}
		s.Brightness = n
		d.logf("monitor: brightness %d%%", n)
		return EffectBrightness, nil

	case "MODE":
		m, err := ParseMode(c.Payload)
		if err != nil {
			return EffectNone, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if m == ModeCycle && s.Mode != ModeCycle {
			s.CycleIndex = 0
		}
		s.Mode = m
		d.logf("monitor: mode %s", m)
		return EffectRedraw, nil

	case "CMD":
		switch strings.ToUpper(c.Payload) {
		case "CLEAR":
			s.Message = ""
			s.Mode = ModeMessage
			return EffectRedraw, nil
		case "TIME":
			s.Mode = ModeClock
			return EffectRedraw, nil
		}
		return EffectNone, fmt.Errorf("%w: CMD:%s", ErrUnknownCommand, c.Payload)

	case "COLOR":
		if err := wantFields(c, 3); err != nil {
			return EffectNone, err
		}
		var rgb [3]uint8
		for i, f := range c.Fields {
			n, err := strconv.ParseUint(f, 10, 8)
			if err != nil {
				return EffectNone, fmt.Errorf("%w: COLOR channel %q", ErrMalformed, f)
			}
			rgb[i] = uint8(n)
		}
		s.TextColor = image565.Pack(rgb[0], rgb[1], rgb[2])
		d.logf("monitor: color %v", rgb)
		return EffectRedraw, nil

	case "SETTIME":
		if err := wantFields(c, 8); err != nil {
			return EffectNone, err
		}
		var v [6]int
		for i := range v {
			n, err := atoi(c, c.Fields[i])
			if err != nil {
				return EffectNone, err
			}
			v[i] = n
		}
		if err := checkDate(v); err != nil {
			return EffectNone, err
		}
		// Weekday and yearday are implied by the date.
		for _, f := range c.Fields[6:] {
			if _, err := atoi(c, f); err != nil {
				return EffectNone, err
			}
		}
		t := time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], v[5], 0, time.Local)
		if t.Day() != v[2] {
			return EffectNone, fmt.Errorf("%w: SETTIME day %d not in month %d", ErrMalformed, v[2], v[1])
		}
		s.ClockOffset = t.Sub(d.now())
		d.logf("monitor: time set to %s", t.Format(time.DateTime))
		return d.redrawIf(ModeClock), nil

	case "WEATHER":
		if err := wantFields(c, 3); err != nil {
			return EffectNone, err
		}
		s.Weather = Weather{Condition: c.Fields[0], Temp: c.Fields[1], Humidity: c.Fields[2]}
		return d.redrawIf(ModeWeather), nil

	case "BEDROOM":
		if err := wantFields(c, 2); err != nil {
			return EffectNone, err
		}
		s.Bedroom = Bedroom{Temp: c.Fields[0], Humidity: c.Fields[1]}
		return d.redrawIf(ModeBedroom), nil

	case "HIVE":
		if err := wantFields(c, 4); err != nil {
			return EffectNone, err
		}
		s.Hive = Hive{Current: c.Fields[0], Target: c.Fields[1], Heating: c.Fields[2], HotWater: c.Fields[3]}
		return d.redrawIf(ModeBedroom), nil

	case "SOC":
		if s.Battery == nil {
			return EffectNone, ErrNoBattery
		}
		f, err := strconv.ParseFloat(c.Payload, 64)
		if err != nil {
			return EffectNone, fmt.Errorf("%w: SOC %q", ErrMalformed, c.Payload)
		}
		if err := s.Battery.Update(f, d.now()); err != nil {
			return EffectNone, err
		}
		if s.Shows(ModeBattery) {
			return EffectGauge, nil
		}
		return EffectNone, nil
	}
	return EffectNone, fmt.Errorf("%w: %s", ErrUnknownCommand, c.Name)
}

func (d *Dispatcher) redrawIf(m Mode) Effect {
	if d.State.Shows(m) {
		return EffectRedraw
	}
	return EffectNone
}

var dateLimits = [6]struct {
	name     string
	min, max int
}{
	{"year", 1, 9999},
	{"month", 1, 12},
	{"day", 1, 31},
	{"hour", 0, 23},
	{"minute", 0, 59},
	{"second", 0, 59},
}

// checkDate rejects fields time.Date would silently normalise.
func checkDate(v [6]int) error {
	for i, l := range dateLimits {
		if v[i] < l.min || v[i] > l.max {
			return fmt.Errorf("%w: SETTIME %s %d outside %d-%d", ErrMalformed, l.name, v[i], l.min, l.max)
		}
	}
	return nil
}

func wantFields(c Command, n int) error {
	if len(c.Fields) != n {
		return fmt.Errorf("%w: %s wants %d fields, got %d", ErrMalformed, c.Name, n, len(c.Fields))
	}
	return nil
}

func atoi(c Command, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s value %q", ErrMalformed, c.Name, s)
	}
	return n, nil
}
