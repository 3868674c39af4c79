package monitor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"periph.io/x/devices/v3/gc9a01/gauge"
	"periph.io/x/devices/v3/gc9a01/image565"
)

// Display is the panel a Server draws on. *gc9a01.Dev implements it.
type Display interface {
	Present(f *image565.Frame, r image.Rectangle) error
	SetBrightness(pct int) error
}

// Options configures a Server. The zero value is usable.
type Options struct {
	// Background is shown behind the battery gauge. Nil means black.
	Background *image565.Frame
	// Battery is the state of charge ring. The zero value selects
	// BatteryGaugeConfig.
	Battery gauge.Config

	Tick           time.Duration // Timer resolution; default 1s
	ClockRefresh   time.Duration // Clock screen redraw; default 60s
	CycleInterval  time.Duration // Cycle mode rotation; default 10s
	SensorInterval time.Duration // SENSOR report period; default 10s
	TouchDebounce  time.Duration // Minimum time between mode button presses; default 500ms

	// Touches, when set, delivers touch panel presses in screen
	// coordinates. Presses on the button bar select the next mode.
	Touches <-chan image.Point

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.ClockRefresh <= 0 {
		o.ClockRefresh = time.Minute
	}
	if o.CycleInterval <= 0 {
		o.CycleInterval = 10 * time.Second
	}
	if o.SensorInterval <= 0 {
		o.SensorInterval = 10 * time.Second
	}
	if o.TouchDebounce <= 0 {
		o.TouchDebounce = 500 * time.Millisecond
	}
	if o.Logf == nil {
		o.Logf = log.Printf
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Battery == (gauge.Config{}) {
		o.Battery = BatteryGaugeConfig()
	}
}

// Server drives a Display from a line command stream.
type Server struct {
	disp     Display
	opts     Options
	state    *State
	dispatch *Dispatcher
	render   *Renderer

	lastClock  time.Time
	lastCycle  time.Time
	lastSensor time.Time
	lastTouch  time.Time
}

// NewServer returns a server drawing frames of the given bounds on d.
func NewServer(d Display, bounds image.Rectangle, opts *Options) (*Server, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.setDefaults()
	battery, err := NewBattery(o.Battery)
	if err != nil {
		return nil, err
	}
	st := NewState(battery)
	s := &Server{
		disp:   d,
		opts:   o,
		state:  st,
		render: NewRenderer(bounds, o.Background),
	}
	s.dispatch = &Dispatcher{State: st, Now: o.Now, Logf: o.Logf}
	return s, nil
}

// State returns the server state. It must not be used while Serve runs.
func (s *Server) State() *State {
	return s.state
}

// Serve draws the current screen, then applies commands read line by line
// from r until r reaches EOF or ctx is cancelled. Periodic SENSOR reports
// are written to w, which may be nil. Bad commands are logged and skipped.
//
// If r implements io.Closer it is closed on cancellation to unblock the
// pending read; other readers must return on their own.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	now := s.opts.Now()
	s.lastClock, s.lastCycle, s.lastSensor = now, now, now
	if err := s.disp.SetBrightness(s.state.Brightness); err != nil {
		s.opts.Logf("monitor: brightness: %v", err)
	}
	if err := s.present(s.render.Render(s.state, now)); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancel := context.WithCancel(gctx)
	lines := make(chan string)

	g.Go(func() error {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-loopCtx.Done():
				return nil
			}
		}
		if err := sc.Err(); err != nil && loopCtx.Err() == nil {
			return fmt.Errorf("monitor: read: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-loopCtx.Done()
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.opts.Logf("monitor: close input: %v", err)
			}
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		t := time.NewTicker(s.opts.Tick)
		defer t.Stop()
		touches := s.opts.Touches
		for {
			select {
			case <-loopCtx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if err := s.handle(line); err != nil {
					return err
				}
			case p, ok := <-touches:
				if !ok {
					touches = nil
					break
				}
				if err := s.touch(p, s.opts.Now()); err != nil {
					return err
				}
			case <-t.C:
				if err := s.tick(s.opts.Now(), w); err != nil {
					return err
				}
			}
		}
	})

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// handle applies one command line. Only display failures are returned.
func (s *Server) handle(line string) error {
	effect, err := s.dispatch.Handle(line)
	if err != nil {
		s.opts.Logf("monitor: %v", err)
		return nil
	}
	now := s.opts.Now()
	switch effect {
	case EffectRedraw:
		s.lastClock, s.lastCycle = now, now
		return s.present(s.render.Render(s.state, now))
	case EffectGauge:
		return s.present(s.render.RenderGauge(s.state, now))
	case EffectBrightness:
		if err := s.disp.SetBrightness(s.state.Brightness); err != nil {
			s.opts.Logf("monitor: brightness: %v", err)
		}
	}
	return nil
}

// touch handles a press at p. A press on the button bar selects the next
// mode unless it comes within the debounce period of the last accepted
// press; presses elsewhere are ignored.
func (s *Server) touch(p image.Point, now time.Time) error {
	if !p.In(s.render.ButtonBar()) {
		return nil
	}
	if !s.lastTouch.IsZero() && now.Sub(s.lastTouch) < s.opts.TouchDebounce {
		return nil
	}
	s.lastTouch = now

	next := s.state.Mode.Next()
	if next == ModeCycle {
		s.state.CycleIndex = 0
	}
	s.state.Mode = next
	s.opts.Logf("monitor: mode %s (button)", next)
	s.lastClock, s.lastCycle = now, now
	return s.present(s.render.Render(s.state, now))
}

// tick runs the timed work due at now.
func (s *Server) tick(now time.Time, w io.Writer) error {
	switch {
	case s.state.Mode == ModeCycle && now.Sub(s.lastCycle) >= s.opts.CycleInterval:
		s.state.AdvanceCycle()
		s.lastCycle, s.lastClock = now, now
		if err := s.present(s.render.Render(s.state, now)); err != nil {
			return err
		}
	case s.state.Shows(ModeClock) && now.Sub(s.lastClock) >= s.opts.ClockRefresh:
		s.lastClock = now
		if err := s.present(s.render.Render(s.state, now)); err != nil {
			return err
		}
	case s.render.StaleChanged(s.state, now):
		if err := s.present(s.render.RenderGauge(s.state, now)); err != nil {
			return err
		}
	}

	if w != nil && now.Sub(s.lastSensor) >= s.opts.SensorInterval {
		s.lastSensor = now
		if err := s.writeSensor(w, now); err != nil {
			s.opts.Logf("monitor: sensor report: %v", err)
		}
	}
	return nil
}

type sensorReport struct {
	Status     string         `json:"status"`
	Mode       string         `json:"mode"`
	Screen     string         `json:"screen"`
	Brightness int            `json:"brightness"`
	Battery    *BatteryStatus `json:"battery,omitempty"`
}

// writeSensor sends one SENSOR:{json} line.
func (s *Server) writeSensor(w io.Writer, now time.Time) error {
	rep := sensorReport{
		Status:     "OK",
		Mode:       s.state.Mode.String(),
		Screen:     s.state.Screen().String(),
		Brightness: s.state.Brightness,
	}
	if b := s.state.Battery; b != nil {
		st := b.Status(now)
		rep.Battery = &st
	}
	buf, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "SENSOR:%s\n", buf)
	return err
}

func (s *Server) present(r image.Rectangle) error {
	if r.Empty() {
		return nil
	}
	if err := s.disp.Present(s.render.Frame(), r); err != nil {
		return fmt.Errorf("monitor: present: %w", err)
	}
	return nil
}
