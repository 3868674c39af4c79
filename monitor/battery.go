package monitor

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"periph.io/x/devices/v3/gc9a01/gauge"
	"periph.io/x/devices/v3/gc9a01/image565"
)

// StalenessTimeout is how long a state of charge reading stays current:
// three missed polls of a 5 s source.
const StalenessTimeout = 15 * time.Second

// ErrSOCRange is returned for a state of charge outside 0-100.
var ErrSOCRange = errors.New("monitor: state of charge out of range")

// BatteryGaugeConfig is the state of charge ring used on the 240x240 panel:
// twenty segments sweeping clockwise across the bottom of the dial.
func BatteryGaugeConfig() gauge.Config {
	return gauge.Config{
		Center:         image.Pt(120, 120),
		Radius:         115,
		Thickness:      10,
		Segments:       20,
		StartAngle:     215,
		EndAngle:       320,
		Gap:            2,
		Foreground:     uint16(image565.White),
		Background:     uint16(image565.Pack(230, 135, 230)),
		ShowBackground: true,
		Clockwise:      true,
	}
}

// Battery tracks the latest state of charge and when it arrived.
type Battery struct {
	gauge   *gauge.Gauge
	timeout time.Duration

	soc        float64
	hasSOC     bool
	lastUpdate time.Time
}

// NewBattery creates a battery monitor drawing its ring with cfg.
func NewBattery(cfg gauge.Config) (*Battery, error) {
	g, err := gauge.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("monitor: battery gauge: %w", err)
	}
	return &Battery{gauge: g, timeout: StalenessTimeout}, nil
}

// Gauge returns the ring used to draw the state of charge.
func (b *Battery) Gauge() *gauge.Gauge {
	return b.gauge
}

// Update records a new state of charge. Unlike the gauge, which clamps,
// readings outside 0-100 are rejected so a bad sample never reaches the
// screen. The fractional part is dropped.
func (b *Battery) Update(soc float64, now time.Time) error {
	if math.IsNaN(soc) || soc < 0 || soc > 100 {
		return fmt.Errorf("%w: %g", ErrSOCRange, soc)
	}
	b.soc = math.Trunc(soc)
	b.hasSOC = true
	b.lastUpdate = now
	return nil
}

// SOC returns the last state of charge, or 0 and false before the first
// reading.
func (b *Battery) SOC() (float64, bool) {
	return b.soc, b.hasSOC
}

// IsStale reports whether no reading arrived within the staleness timeout.
// A monitor that never got a reading is stale.
func (b *Battery) IsStale(now time.Time) bool {
	if !b.hasSOC {
		return true
	}
	return now.Sub(b.lastUpdate) > b.timeout
}

// BatteryStatus is a snapshot of the battery monitor.
type BatteryStatus struct {
	SOC        float64       `json:"soc"`
	Valid      bool          `json:"valid"`
	LastUpdate time.Time     `json:"last_update"`
	Age        time.Duration `json:"age_ns"`
	Stale      bool          `json:"stale"`
}

// Status returns the monitor state at time now.
func (b *Battery) Status(now time.Time) BatteryStatus {
	st := BatteryStatus{
		SOC:   b.soc,
		Valid: b.hasSOC,
		Stale: b.IsStale(now),
	}
	if b.hasSOC {
		st.LastUpdate = b.lastUpdate
		st.Age = now.Sub(b.lastUpdate)
	}
	return st
}
