package monitor

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"

	"periph.io/x/devices/v3/gc9a01/image565"
)

var (
	fontSmall  tinyfont.Fonter = &proggy.TinySZ8pt7b
	fontMedium tinyfont.Fonter = &freemono.Bold12pt7b
	fontLarge  tinyfont.Fonter = &freemono.Bold24pt7b
)

const (
	grey      = image565.BRG565(0x7BEF)
	buttonTop = 210
)

// socLabel is the area holding the percentage inside the battery ring.
var socLabel = image.Rect(50, 95, 190, 145)

// frameDisplayer lets tinyfont draw into a Frame.
type frameDisplayer struct {
	f *image565.Frame
}

var _ drivers.Displayer = frameDisplayer{}

func (d frameDisplayer) Size() (x, y int16) {
	s := d.f.Bounds().Size()
	return int16(s.X), int16(s.Y)
}

func (d frameDisplayer) SetPixel(x, y int16, c color.RGBA) {
	d.f.SetBRG565(int(x), int(y), image565.Pack(c.R, c.G, c.B))
}

func (d frameDisplayer) Display() error {
	return nil
}

// rectWriter forwards pixels and records the box they cover.
type rectWriter struct {
	f     *image565.Frame
	dirty image.Rectangle
}

func (w *rectWriter) SetPixel(x, y int, c uint16) {
	w.f.SetPixel(x, y, c)
	w.dirty = w.dirty.Union(image.Rect(x, y, x+1, y+1))
}

func rgba(c image565.BRG565) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

// Renderer draws screens into an off-screen frame.
type Renderer struct {
	frame      *image565.Frame
	background *image565.Frame
	text       frameDisplayer

	// gaugeShown is set while the frame holds a complete battery screen,
	// which is what lets RenderGauge repaint only the changed segments.
	gaugeShown bool
	staleShown bool
}

// NewRenderer returns a renderer for a panel of the given bounds. The
// background, which may be nil, is used behind the battery gauge.
func NewRenderer(bounds image.Rectangle, background *image565.Frame) *Renderer {
	f := image565.NewFrame(bounds)
	return &Renderer{frame: f, background: background, text: frameDisplayer{f}}
}

// Frame returns the frame screens are drawn into.
func (r *Renderer) Frame() *image565.Frame {
	return r.frame
}

// Render draws the current screen from scratch and returns the area to
// present, which is the whole frame.
func (r *Renderer) Render(s *State, now time.Time) image.Rectangle {
	r.gaugeShown = false
	screen := s.Screen()
	if screen == ModeBattery {
		r.renderBattery(s, now)
		return r.frame.Bounds()
	}

	r.frame.Fill(image565.Black)
	switch screen {
	case ModeClock:
		r.renderClock(s.Now(now))
	case ModeBedroom:
		r.renderBedroom(s)
	case ModeWeather:
		r.renderWeather(s)
	case ModeMessage:
		r.centered(fontMedium, s.Message, 125, s.TextColor)
	}
	if screen != ModeMessage {
		r.renderButton(s.Mode)
	}
	return r.frame.Bounds()
}

// RenderGauge refreshes the battery ring after a new state of charge and
// returns the area that changed. When the ring has a background colour
// and is already on screen only the segments whose state flipped are
// repainted; otherwise the whole screen is redrawn.
func (r *Renderer) RenderGauge(s *State, now time.Time) image.Rectangle {
	if s.Battery == nil || !s.Shows(ModeBattery) {
		return image.Rectangle{}
	}
	g := s.Battery.Gauge()
	if !r.gaugeShown || !g.HasBackground() {
		return r.Render(s, now)
	}

	prev := g.Value()
	soc, _ := s.Battery.SOC()
	g.SetValue(soc)
	w := &rectWriter{f: r.frame}
	g.DrawIncremental(w, prev)

	r.restore(socLabel)
	r.renderSOCLabel(s, now)
	return w.dirty.Union(socLabel).Intersect(r.frame.Bounds())
}

// StaleChanged reports whether the battery label would now read
// differently because the reading went stale, or became current.
func (r *Renderer) StaleChanged(s *State, now time.Time) bool {
	return r.gaugeShown && s.Battery != nil && s.Battery.IsStale(now) != r.staleShown
}

func (r *Renderer) renderBattery(s *State, now time.Time) {
	if s.Battery == nil {
		r.frame.Fill(image565.Black)
		r.centered(fontMedium, "No battery", 125, grey)
		return
	}
	soc, _ := s.Battery.SOC()
	Composite(r.frame, r.background, Overlay{Gauge: s.Battery.Gauge(), Value: soc})
	r.renderSOCLabel(s, now)
	r.gaugeShown = true
}

func (r *Renderer) renderSOCLabel(s *State, now time.Time) {
	r.staleShown = s.Battery.IsStale(now)
	if r.staleShown {
		r.centered(fontLarge, "--%", 135, grey)
		return
	}
	soc, _ := s.Battery.SOC()
	r.centered(fontLarge, strconv.Itoa(int(soc))+"%", 135, s.TextColor)
}

// restore repaints rect from the background, or black without one.
func (r *Renderer) restore(rect image.Rectangle) {
	if r.background == nil {
		r.frame.FillRect(rect, image565.Black)
		return
	}
	draw.Draw(r.frame, rect, r.background, rect.Min, draw.Src)
}

func (r *Renderer) renderClock(t time.Time) {
	r.centered(fontSmall, t.Format("Mon 2 Jan 2006"), 50, image565.White)
	r.centered(fontLarge, t.Format("03:04"), 125, image565.White)
	r.centered(fontMedium, t.Format("PM"), 165, image565.White)
}

func (r *Renderer) renderBedroom(s *State) {
	r.centered(fontSmall, "BEDROOM", 30, image565.White)
	r.centered(fontSmall, "Temperature", 60, image565.White)
	r.reading(fontMedium, s.Bedroom.Temp, "C", "--.-C", 95)
	r.centered(fontSmall, "Humidity", 135, image565.White)
	r.reading(fontMedium, s.Bedroom.Humidity, "%", "--%", 165)
	h := s.Hive
	if known(h.Current) || known(h.Target) {
		line := "Hive " + h.Current + "/" + h.Target + "C  Heat " + h.Heating + "  Water " + h.HotWater
		r.centered(fontSmall, line, 195, grey)
	}
}

func (r *Renderer) renderWeather(s *State) {
	w := s.Weather
	r.centered(fontMedium, w.Condition, 45, image565.White)
	r.reading(fontLarge, w.Temp, "C", "--C", 105)
	r.centered(fontSmall, "Humidity", 140, image565.White)
	r.reading(fontMedium, w.Humidity, "%", "--%", 170)
}

// ButtonBar returns the strip at the bottom of the screen that selects the
// next mode when touched.
func (r *Renderer) ButtonBar() image.Rectangle {
	b := r.frame.Bounds()
	return image.Rect(b.Min.X, buttonTop, b.Max.X, b.Max.Y)
}

// renderButton draws the touch bar naming the selected mode.
func (r *Renderer) renderButton(m Mode) {
	bar := r.ButtonBar()
	c := image565.Red
	if m == ModeClock {
		c = image565.Blue
	}
	r.frame.FillRect(bar, c)
	r.centered(fontSmall, m.String(), buttonTop+18, image565.White)
}

// reading draws v with its unit, or placeholder in grey when unknown.
func (r *Renderer) reading(f tinyfont.Fonter, v, unit, placeholder string, y int16) {
	if !known(v) {
		r.centered(f, placeholder, y, grey)
		return
	}
	r.centered(f, strings.TrimSuffix(v, unit)+unit, y, image565.White)
}

// centered writes s horizontally centred with its baseline at y.
func (r *Renderer) centered(f tinyfont.Fonter, s string, y int16, c image565.BRG565) {
	if s == "" {
		return
	}
	_, w := tinyfont.LineWidth(f, s)
	x := int16(r.frame.Bounds().Dx()/2) - int16(w/2)
	tinyfont.WriteLine(r.text, f, x, y, s, rgba(c))
}

func known(v string) bool {
	return v != "" && v != notAvailable
}
