package monitor

import (
	"time"

	"periph.io/x/devices/v3/gc9a01/image565"
)

const notAvailable = "N/A"

// Weather is the last WEATHER report.
type Weather struct {
	Condition, Temp, Humidity string
}

// Bedroom is the last BEDROOM report.
type Bedroom struct {
	Temp, Humidity string
}

// Hive is the last HIVE thermostat report.
type Hive struct {
	Current, Target, Heating, HotWater string
}

// State is everything the command stream can change. It is owned by one
// goroutine; Server never shares it.
type State struct {
	Mode       Mode
	CycleIndex int // Index into the cycle rotation while in ModeCycle
	Brightness int // Backlight percent
	TextColor  image565.BRG565
	Message    string

	// ClockOffset is added to the host clock after a SETTIME.
	ClockOffset time.Duration

	Weather Weather
	Bedroom Bedroom
	Hive    Hive
	Battery *Battery
}

// NewState returns the power-up state: clock mode, full brightness and no
// sensor data.
func NewState(battery *Battery) *State {
	return &State{
		Mode:       ModeClock,
		Brightness: 100,
		TextColor:  image565.White,
		Weather:    Weather{Condition: notAvailable, Temp: notAvailable, Humidity: notAvailable},
		Bedroom:    Bedroom{Temp: notAvailable, Humidity: notAvailable},
		Hive:       Hive{Current: notAvailable, Target: notAvailable, Heating: "OFF", HotWater: "OFF"},
		Battery:    battery,
	}
}

// Now returns the display clock time for the host time now.
func (s *State) Now(now time.Time) time.Time {
	return now.Add(s.ClockOffset)
}

// Screen returns the mode actually drawn, resolving ModeCycle to its
// current sub-screen.
func (s *State) Screen() Mode {
	if s.Mode == ModeCycle {
		return cycleModes[s.CycleIndex%len(cycleModes)]
	}
	return s.Mode
}

// Shows reports whether screen m is currently on the display.
func (s *State) Shows(m Mode) bool {
	return s.Screen() == m
}

// AdvanceCycle moves ModeCycle to its next sub-screen.
func (s *State) AdvanceCycle() {
	s.CycleIndex = (s.CycleIndex + 1) % len(cycleModes)
}
