package monitor

import (
	"fmt"
	"strings"
)

// Mode is what the display is currently showing.
type Mode uint8

const (
	ModeClock Mode = iota
	ModeBedroom
	ModeWeather
	ModeCycle
	ModeBattery
	ModeMessage
)

var modeNames = [...]string{
	ModeClock:   "Clock",
	ModeBedroom: "Bedroom",
	ModeWeather: "Weather",
	ModeCycle:   "Cycle",
	ModeBattery: "Battery",
	ModeMessage: "Message",
}

// cycleModes are the screens ModeCycle rotates through.
var cycleModes = []Mode{ModeClock, ModeWeather, ModeBedroom}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode returns the mode with the given name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("monitor: unknown mode %q", s)
}

// Next returns the mode selected by the on-screen mode button.
// Battery and message screens return to the clock.
func (m Mode) Next() Mode {
	switch m {
	case ModeClock:
		return ModeBedroom
	case ModeBedroom:
		return ModeWeather
	case ModeWeather:
		return ModeCycle
	default:
		return ModeClock
	}
}
