// Package termview previews panel frames in a terminal.
//
// Each character cell shows two vertically adjacent pixels using an upper
// half block, so a 240x240 frame at step 2 needs 120 columns and 60 rows.
package termview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"periph.io/x/devices/v3/gc9a01/gauge"
	"periph.io/x/devices/v3/gc9a01/image565"
)

const halfBlock = "▀"

var (
	styleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#222222")).
			Padding(0, 1)
	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
}

// Render draws img sampling every step-th pixel in both directions.
func Render(img image.Image, step int) string {
	if step < 1 {
		step = 1
	}
	b := img.Bounds()
	cache := map[[2]color.Color]lipgloss.Style{}
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 * step {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x += step {
			top := img.At(x, y)
			var bottom color.Color = color.Black
			if y+step < b.Max.Y {
				bottom = img.At(x, y+step)
			}
			key := [2]color.Color{top, bottom}
			st, ok := cache[key]
			if !ok {
				st = lipgloss.NewStyle().Foreground(hex(top)).Background(hex(bottom))
				cache[key] = st
			}
			sb.WriteString(st.Render(halfBlock))
		}
	}
	return sb.String()
}

// counter forwards pixels to a frame and counts them.
type counter struct {
	f *image565.Frame
	n int
}

func (c *counter) SetPixel(x, y int, v uint16) {
	c.f.SetPixel(x, y, v)
	c.n++
}

// Model is a bubbletea model stepping a gauge with the arrow keys.
type Model struct {
	gauge *gauge.Gauge
	frame *image565.Frame
	step  int

	full   bool // Redraw the whole ring on every change
	writes int  // Pixels written by the last redraw
}

// New returns a model showing g in a frame covering the gauge screen.
func New(g *gauge.Gauge, step int) Model {
	m := Model{
		gauge: g,
		frame: image565.NewFrame(g.Config().Screen),
		step:  step,
	}
	c := &counter{f: m.frame}
	g.Draw(c)
	m.writes = c.n
	return m
}

// Frame returns the frame the gauge is drawn into.
func (m Model) Frame() *image565.Frame {
	return m.frame
}

// Writes returns how many pixels the last redraw wrote.
func (m Model) Writes() int {
	return m.writes
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "Q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "right", "k", "l":
		m.set(m.gauge.Value() + 5)
	case "down", "left", "j", "h":
		m.set(m.gauge.Value() - 5)
	case "pgup":
		m.set(m.gauge.Value() + 25)
	case "pgdown":
		m.set(m.gauge.Value() - 25)
	case "home":
		m.set(0)
	case "end":
		m.set(100)
	case "f":
		m.full = !m.full
	}
	return m, nil
}

func (m *Model) set(v float64) {
	c := &counter{f: m.frame}
	// Without a background colour, emptied segments can only be erased
	// by clearing and drawing the whole ring.
	if m.full || !m.gauge.HasBackground() {
		m.frame.Fill(image565.Black)
		m.gauge.Update(c, v)
	} else {
		prev := m.gauge.Value()
		m.gauge.SetValue(v)
		m.gauge.DrawIncremental(c, prev)
	}
	m.writes = c.n
}

func (m Model) View() string {
	mode := "incremental"
	if m.full {
		mode = "full"
	}
	status := fmt.Sprintf("%3.0f%%  %d/%d segments  %d px (%s)",
		m.gauge.Value(), m.gauge.FilledCount(), m.gauge.SegmentCount(), m.writes, mode)
	return Render(m.frame, m.step) + "\n" +
		styleStatus.Render(status) + "\n" +
		styleHelp.Render("←/→ step 5  pgup/pgdn step 25  f full redraw  q quit")
}
