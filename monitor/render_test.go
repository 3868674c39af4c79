package monitor

import (
	"bytes"
	"image"
	"testing"
	"time"

	"periph.io/x/devices/v3/gc9a01/gauge"
	"periph.io/x/devices/v3/gc9a01/image565"
)

var panel = image.Rect(0, 0, 240, 240)

func countColor(f *image565.Frame, r image.Rectangle, c image565.BRG565) int {
	n := 0
	r = r.Intersect(f.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if f.BRG565At(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestRenderButtonBar(t *testing.T) {
	tests := []struct {
		mode Mode
		want image565.BRG565
	}{
		{ModeClock, image565.Blue},
		{ModeBedroom, image565.Red},
		{ModeWeather, image565.Red},
		{ModeCycle, image565.Red},
		{ModeMessage, image565.Black},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			s := NewState(nil)
			s.Mode = tt.mode
			r := NewRenderer(panel, nil)
			if got := r.Render(s, testNow); got != panel {
				t.Errorf("Render() = %v, want %v", got, panel)
			}
			if got := r.Frame().BRG565At(2, 238); got != tt.want {
				t.Errorf("bar pixel = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestRenderClockDrawsText(t *testing.T) {
	s := NewState(nil)
	r := NewRenderer(panel, nil)
	r.Render(s, testNow)
	if n := countColor(r.Frame(), image.Rect(0, 0, 240, buttonTop), image565.White); n == 0 {
		t.Error("clock screen has no text")
	}
}

func TestRenderMessageColour(t *testing.T) {
	s := NewState(nil)
	s.Mode = ModeMessage
	s.Message = "Hello"
	s.TextColor = image565.Pack(230, 135, 230)
	r := NewRenderer(panel, nil)
	r.Render(s, testNow)
	if n := countColor(r.Frame(), panel, s.TextColor); n == 0 {
		t.Error("message not drawn in the text colour")
	}

	s.Message = ""
	r.Render(s, testNow)
	if n := countColor(r.Frame(), panel, image565.Black); n != 240*240 {
		t.Errorf("cleared screen has %d non-black pixels", 240*240-n)
	}
}

func TestRenderPlaceholders(t *testing.T) {
	s := NewState(nil)
	s.Mode = ModeBedroom
	r := NewRenderer(panel, nil)
	r.Render(s, testNow)
	if n := countColor(r.Frame(), image.Rect(0, 70, 240, 100), grey); n == 0 {
		t.Error("missing bedroom temperature is not shown as a grey placeholder")
	}

	s.Bedroom = Bedroom{Temp: "19.5", Humidity: "50"}
	r.Render(s, testNow)
	if n := countColor(r.Frame(), image.Rect(0, 70, 240, 100), grey); n != 0 {
		t.Error("known temperature drawn in grey")
	}
}

func newBatteryState(t *testing.T) *State {
	t.Helper()
	s := NewState(newTestBattery(t))
	s.Mode = ModeBattery
	return s
}

func TestRenderBattery(t *testing.T) {
	s := newBatteryState(t)
	r := NewRenderer(panel, nil)
	r.Render(s, testNow)

	bg := image565.BRG565(BatteryGaugeConfig().Background)
	if n := countColor(r.Frame(), panel, bg); n == 0 {
		t.Error("empty ring not drawn in its background colour")
	}
	if n := countColor(r.Frame(), socLabel, grey); n == 0 {
		t.Error("stale reading not labelled in grey")
	}
	if !r.gaugeShown {
		t.Error("gaugeShown not set after battery render")
	}

	r.Render(NewState(nil), testNow)
	if r.gaugeShown {
		t.Error("gaugeShown still set after leaving battery screen")
	}
}

func TestRenderGaugeIncremental(t *testing.T) {
	s := newBatteryState(t)
	if err := s.Battery.Update(50, testNow); err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(panel, nil)
	r.Render(s, testNow)

	if err := s.Battery.Update(60, testNow); err != nil {
		t.Fatal(err)
	}
	dirty := r.RenderGauge(s, testNow)
	if dirty == panel || !socLabel.In(dirty) {
		t.Errorf("RenderGauge() = %v, want a partial area covering %v", dirty, socLabel)
	}

	// A fresh full render of the same state must give the same pixels.
	want := newBatteryState(t)
	if err := want.Battery.Update(60, testNow); err != nil {
		t.Fatal(err)
	}
	full := NewRenderer(panel, nil)
	full.Render(want, testNow)
	if !bytes.Equal(r.Frame().Pix, full.Frame().Pix) {
		t.Error("incremental frame differs from full render")
	}
}

func TestRenderGaugeFallsBackToFull(t *testing.T) {
	s := newBatteryState(t)
	r := NewRenderer(panel, nil)
	if got := r.RenderGauge(s, testNow); got != panel {
		t.Errorf("first RenderGauge() = %v, want full frame", got)
	}

	cfg := BatteryGaugeConfig()
	cfg.ShowBackground = false
	b, err := NewBattery(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Battery = b
	r.Render(s, testNow)
	if got := r.RenderGauge(s, testNow); got != panel {
		t.Errorf("RenderGauge() without background = %v, want full frame", got)
	}

	s.Mode = ModeClock
	if got := r.RenderGauge(s, testNow); !got.Empty() {
		t.Errorf("RenderGauge() off the battery screen = %v, want empty", got)
	}
}

func TestStaleChanged(t *testing.T) {
	s := newBatteryState(t)
	if err := s.Battery.Update(70, testNow); err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(panel, nil)
	r.Render(s, testNow)

	if r.StaleChanged(s, testNow.Add(time.Second)) {
		t.Error("fresh reading reported as changed")
	}
	later := testNow.Add(StalenessTimeout + time.Second)
	if !r.StaleChanged(s, later) {
		t.Fatal("stale reading not reported")
	}
	r.RenderGauge(s, later)
	if r.StaleChanged(s, later) {
		t.Error("stale label not recorded after redraw")
	}
	if n := countColor(r.Frame(), socLabel, grey); n == 0 {
		t.Error("stale label not drawn")
	}
}

func TestRectWriter(t *testing.T) {
	f := image565.NewFrame(panel)
	w := &rectWriter{f: f}
	var pw gauge.PixelWriter = w
	pw.SetPixel(10, 20, 0xFFFF)
	pw.SetPixel(30, 5, 0xFFFF)
	if want := image.Rect(10, 5, 31, 21); w.dirty != want {
		t.Errorf("dirty = %v, want %v", w.dirty, want)
	}
	if f.BRG565At(30, 5) != image565.White {
		t.Error("pixel not forwarded")
	}
}

func TestFrameDisplayer(t *testing.T) {
	f := image565.NewFrame(panel)
	d := frameDisplayer{f}
	if x, y := d.Size(); x != 240 || y != 240 {
		t.Errorf("Size() = %d, %d", x, y)
	}
	d.SetPixel(1, 2, rgba(image565.Pack(230, 135, 230)))
	if got := f.BRG565At(1, 2); got != 0xE43C {
		t.Errorf("pixel = %#04x, want 0xe43c", got)
	}
	d.SetPixel(-1, 300, rgba(image565.White))
	if err := d.Display(); err != nil {
		t.Error(err)
	}
}
