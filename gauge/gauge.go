// Package gauge draws a segmented circular progress ring onto a pixel
// buffer.
//
// Angles are in degrees: 0° points right, 90° points up and angles grow
// counter-clockwise. An EndAngle past 360°, or below StartAngle, describes
// an arc that wraps around 0°.
//
// A Gauge holds no reference to the buffer it draws on; each draw call takes
// a PixelWriter for the duration of the call. A Gauge is not safe for
// concurrent use: callers sharing one across goroutines must serialise
// SetValue and the draw methods themselves.
package gauge

import (
	"errors"
	"fmt"
	"image"
	"math"
)

const (
	// MinSegments and MaxSegments bound Config.Segments.
	MinSegments = 4
	MaxSegments = 20

	// BoundsPad is the margin added around the ring by BoundingBox.
	BoundsPad = 5
)

// DefaultScreen is used when Config.Screen is empty.
var DefaultScreen = image.Rect(0, 0, 240, 240)

// ErrInvalidConfig is wrapped by every error returned from New.
var ErrInvalidConfig = errors.New("gauge: invalid configuration")

// PixelWriter receives the pixels of a gauge.
type PixelWriter interface {
	SetPixel(x, y int, c uint16)
}

// PixelWriterFunc adapts a function to PixelWriter.
type PixelWriterFunc func(x, y int, c uint16)

// SetPixel calls f(x, y, c).
func (f PixelWriterFunc) SetPixel(x, y int, c uint16) {
	f(x, y, c)
}

// Config is the geometry and colours of a gauge.
type Config struct {
	Center    image.Point
	Radius    int // Outer radius in pixels
	Thickness int // Band width in pixels, 1..Radius

	// Segments is clamped to [MinSegments, MaxSegments].
	Segments int

	StartAngle float64 // Degrees
	EndAngle   float64 // Degrees, may exceed 360 or be below StartAngle
	Gap        float64 // Degrees between adjacent segments

	Foreground uint16 // Packed colour of filled segments
	Background uint16 // Packed colour of unfilled segments
	// ShowBackground enables drawing unfilled segments in Background.
	// Without it unfilled segments are left untouched.
	ShowBackground bool

	// Clockwise walks from StartAngle to EndAngle with decreasing angles.
	Clockwise bool

	// Screen is the writable area; pixels outside it are dropped.
	// The zero value means DefaultScreen.
	Screen image.Rectangle
}

// Segment is the angular extent of one wedge, in traversal order.
type Segment struct {
	Start, End float64
}

// Span returns the absolute angular width of s.
func (s Segment) Span() float64 {
	return math.Abs(s.Start - s.End)
}

// Gauge is a segmented ring with a value between 0 and 100.
type Gauge struct {
	cfg      Config
	segments []Segment

	totalArc   float64
	usableArc  float64
	segmentArc float64

	value float64
}

// New validates cfg and precomputes the segment table.
//
// Out-of-range segment counts are clamped rather than rejected. An error is
// returned when the gaps leave no room for the segments, or the ring
// geometry is unusable.
func New(cfg Config) (*Gauge, error) {
	if cfg.Screen.Empty() {
		cfg.Screen = DefaultScreen
	}
	cfg.Segments = clampInt(cfg.Segments, MinSegments, MaxSegments)

	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius %d must be positive", ErrInvalidConfig, cfg.Radius)
	}
	if cfg.Thickness < 1 || cfg.Thickness > cfg.Radius {
		return nil, fmt.Errorf("%w: thickness %d must be between 1 and radius %d", ErrInvalidConfig, cfg.Thickness, cfg.Radius)
	}
	if cfg.Gap < 0 || math.IsNaN(cfg.Gap) {
		return nil, fmt.Errorf("%w: gap %g must not be negative", ErrInvalidConfig, cfg.Gap)
	}

	total := totalArc(cfg.StartAngle, cfg.EndAngle, cfg.Clockwise)
	usable := total - cfg.Gap*float64(cfg.Segments)
	if !(usable > 0) {
		return nil, fmt.Errorf("%w: %d gaps of %g° leave no room in a %g° arc", ErrInvalidConfig, cfg.Segments, cfg.Gap, total)
	}

	g := &Gauge{
		cfg:        cfg,
		totalArc:   total,
		usableArc:  usable,
		segmentArc: usable / float64(cfg.Segments),
	}
	g.segments = layout(cfg.StartAngle, g.segmentArc, cfg.Gap, cfg.Segments, cfg.Clockwise)
	return g, nil
}

// totalArc returns the arc swept from start to end in the given direction.
// A non-positive difference wraps once around the circle, so equal angles
// mean a full ring.
func totalArc(start, end float64, clockwise bool) float64 {
	arc := end - start
	if clockwise {
		arc = start - end
	}
	if arc <= 0 {
		arc += 360
	}
	return arc
}

func layout(start, segArc, gap float64, n int, clockwise bool) []Segment {
	dir := 1.0
	if clockwise {
		dir = -1
	}
	segs := make([]Segment, n)
	current := start
	for i := range segs {
		segs[i] = Segment{Start: current, End: current + dir*segArc}
		current += dir * (segArc + gap)
	}
	return segs
}

// Config returns the configuration after defaults and clamping.
func (g *Gauge) Config() Config {
	return g.cfg
}

// Segments returns a copy of the segment table.
func (g *Gauge) Segments() []Segment {
	out := make([]Segment, len(g.segments))
	copy(out, g.segments)
	return out
}

// SegmentCount returns the clamped number of segments.
func (g *Gauge) SegmentCount() int {
	return len(g.segments)
}

// TotalArc returns the span from StartAngle to EndAngle in degrees.
func (g *Gauge) TotalArc() float64 {
	return g.totalArc
}

// UsableArc returns TotalArc minus all gaps.
func (g *Gauge) UsableArc() float64 {
	return g.usableArc
}

// SegmentArc returns the angular width of each segment.
func (g *Gauge) SegmentArc() float64 {
	return g.segmentArc
}

// HasBackground reports whether unfilled segments are painted. Without a
// background colour DrawIncremental cannot erase segments on a decrease and
// callers need a full redraw over a cleared frame instead.
func (g *Gauge) HasBackground() bool {
	return g.cfg.ShowBackground
}

// SetValue sets the fill percentage, clamped to [0, 100]. NaN is read as 0.
// Nothing is drawn.
func (g *Gauge) SetValue(pct float64) {
	g.value = clampValue(pct)
}

// Value returns the current fill percentage.
func (g *Gauge) Value() float64 {
	return g.value
}

// FilledCount returns how many segments the current value fills.
func (g *Gauge) FilledCount() int {
	return filledCount(g.value, len(g.segments))
}

func filledCount(value float64, n int) int {
	return int(math.Floor(clampValue(value) / 100 * float64(n)))
}

// Draw paints every segment: filled ones in Foreground, the rest in
// Background when ShowBackground is set. Unfilled segments without a
// background are not touched, so callers wanting a clean ring must clear
// the buffer first.
func (g *Gauge) Draw(w PixelWriter) {
	filled := g.FilledCount()
	for i, s := range g.segments {
		switch {
		case i < filled:
			g.drawArc(w, s, g.cfg.Foreground)
		case g.cfg.ShowBackground:
			g.drawArc(w, s, g.cfg.Background)
		}
	}
}

// Update sets the value and redraws the whole gauge.
func (g *Gauge) Update(w PixelWriter, pct float64) {
	g.SetValue(pct)
	g.Draw(w)
}

// DrawIncremental repaints only the segments whose filled state differs
// between previous and the current value. The pixels written are exactly
// those Draw would write for the same segments.
//
// Segments that become unfilled are painted in Background; without
// ShowBackground they are left as they were (see HasBackground).
//
// With a zero Gap neighbouring segments share their boundary pixels, so
// after an increase those pixels keep the Foreground colour where a full
// Draw would leave them in the next segment's Background.
func (g *Gauge) DrawIncremental(w PixelWriter, previous float64) {
	oldFilled := filledCount(previous, len(g.segments))
	newFilled := g.FilledCount()

	switch {
	case newFilled > oldFilled:
		for i := oldFilled; i < newFilled; i++ {
			g.drawArc(w, g.segments[i], g.cfg.Foreground)
		}
	case newFilled < oldFilled:
		if !g.cfg.ShowBackground {
			return
		}
		for i := newFilled; i < oldFilled; i++ {
			g.drawArc(w, g.segments[i], g.cfg.Background)
		}
	}
}

// BoundingBox returns the inclusive pixel box covering the ring plus
// BoundsPad, clamped to the screen.
func (g *Gauge) BoundingBox() (xMin, yMin, xMax, yMax int) {
	c, r, s := g.cfg.Center, g.cfg.Radius+BoundsPad, g.cfg.Screen
	xMin = clampInt(c.X-r, s.Min.X, s.Max.X-1)
	yMin = clampInt(c.Y-r, s.Min.Y, s.Max.Y-1)
	xMax = clampInt(c.X+r, s.Min.X, s.Max.X-1)
	yMax = clampInt(c.Y+r, s.Min.Y, s.Max.Y-1)
	return
}

// Bounds is BoundingBox as an image.Rectangle (exclusive maximum), the form
// partial-refresh display drivers take.
func (g *Gauge) Bounds() image.Rectangle {
	xMin, yMin, xMax, yMax := g.BoundingBox()
	return image.Rect(xMin, yMin, xMax+1, yMax+1)
}

func clampValue(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
