// Package gc9a01 controls a GC9A01 round TFT display via SPI.
//
// See the examples for how to use this package.
package gc9a01

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/gc9a01/image565"
)

// Rotation selects the panel scan direction.
type Rotation byte

const (
	Rotation0 Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Memory access control bits.
const (
	madctlMY  = 0x80
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlBGR = 0x08
)

func (r Rotation) madctl() byte {
	switch r {
	case Rotation90:
		return madctlMX | madctlMV | madctlBGR
	case Rotation180:
		return madctlMX | madctlMY | madctlBGR
	case Rotation270:
		return madctlMY | madctlMV | madctlBGR
	default:
		return madctlBGR
	}
}

// Opts is the configuration for the GC9A01 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 240, must be ≤240)
	H int // Height (default: 240, must be ≤240)

	Rotation Rotation

	// Optional pins
	RST gpio.PinOut // Reset pin (nil if not used)
	BL  gpio.PinOut // Backlight pin, driven with PWM (nil if not used)
}

// Dev is the device handle for the GC9A01 display.
type Dev struct {
	// Communication
	c     conn.Conn   // SPI connection
	dc    gpio.PinOut // Data/Command pin
	rst   gpio.PinOut // Reset pin (optional)
	bl    gpio.PinOut // Backlight pin (optional)
	maxTx int         // Largest single SPI transfer

	rect image.Rectangle

	// Pixel buffers
	next *image565.Frame // Lazily allocated drawing buffer
	last *image565.Frame // What the panel currently shows

	brightness int
	halted     bool
}

var _ display.Drawer = (*Dev)(nil)

// Panel commands.
const (
	cmdSleepIn    = 0x10
	cmdSleepOut   = 0x11
	cmdInvertOff  = 0x20
	cmdInvertOn   = 0x21
	cmdDisplayOff = 0x28
	cmdDisplayOn  = 0x29
	cmdColumnAddr = 0x2A
	cmdRowAddr    = 0x2B
	cmdMemWrite   = 0x2C
	cmdMemAccess  = 0x36
	cmdPixelFmt   = 0x3A
)

// NewSPI creates a new GC9A01 device connected via SPI.
//
// The SPI port is configured for 40MHz, Mode0, 8-bit transfers.
// The dc (Data/Command) GPIO pin must be provided and configured as an output.
//
// opts can be nil to use defaults (240x240 display).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 240, H: 240}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	c, err := p.Connect(40*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("gc9a01: %w", err)
	}

	d := &Dev{
		c:     c,
		dc:    dc,
		rst:   opts.RST,
		bl:    opts.BL,
		maxTx: 4096,
		rect:  image.Rect(0, 0, opts.W, opts.H),
	}
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		d.maxTx = l.MaxTxSize()
	}
	d.last = image565.NewFrame(d.rect)

	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func (o *Opts) validate() error {
	if o.W <= 0 || o.W > 240 {
		return errors.New("gc9a01: width must be between 1 and 240")
	}
	if o.H <= 0 || o.H > 240 {
		return errors.New("gc9a01: height must be between 1 and 240")
	}
	if o.Rotation > Rotation270 {
		return errors.New("gc9a01: invalid rotation")
	}
	return nil
}

type initCmd struct {
	cmd   byte
	data  []byte
	delay time.Duration
}

// initSequence is the vendor power-up sequence followed by the settings this
// driver relies on: BGR order, 16-bit pixels, inversion on.
var initSequence = []initCmd{
	{cmd: 0xEF},
	{cmd: 0xEB, data: []byte{0x14}},
	{cmd: 0xFE},
	{cmd: 0xEF},
	{cmd: 0xEB, data: []byte{0x14}},
	{cmd: 0x84, data: []byte{0x40}},
	{cmd: 0x85, data: []byte{0xFF}},
	{cmd: 0x86, data: []byte{0xFF}},
	{cmd: 0x87, data: []byte{0xFF}},
	{cmd: 0x88, data: []byte{0x0A}},
	{cmd: 0x89, data: []byte{0x21}},
	{cmd: 0x8A, data: []byte{0x00}},
	{cmd: 0x8B, data: []byte{0x80}},
	{cmd: 0x8C, data: []byte{0x01}},
	{cmd: 0x8D, data: []byte{0x01}},
	{cmd: 0x8E, data: []byte{0xFF}},
	{cmd: 0x8F, data: []byte{0xFF}},
	{cmd: 0xB6, data: []byte{0x00, 0x20}},
	{cmd: cmdPixelFmt, data: []byte{0x05}}, // 16 bits per pixel
	{cmd: 0x90, data: []byte{0x08, 0x08, 0x08, 0x08}},
	{cmd: 0xBD, data: []byte{0x06}},
	{cmd: 0xBC, data: []byte{0x00}},
	{cmd: 0xFF, data: []byte{0x60, 0x01, 0x04}},
	{cmd: 0xC3, data: []byte{0x13}},
	{cmd: 0xC4, data: []byte{0x13}},
	{cmd: 0xC9, data: []byte{0x22}},
	{cmd: 0xBE, data: []byte{0x11}},
	{cmd: 0xE1, data: []byte{0x10, 0x0E}},
	{cmd: 0xDF, data: []byte{0x21, 0x0C, 0x02}},
	{cmd: 0xF0, data: []byte{0x45, 0x09, 0x08, 0x08, 0x26, 0x2A}}, // Gamma
	{cmd: 0xF1, data: []byte{0x43, 0x70, 0x72, 0x36, 0x37, 0x6F}},
	{cmd: 0xF2, data: []byte{0x45, 0x09, 0x08, 0x08, 0x26, 0x2A}},
	{cmd: 0xF3, data: []byte{0x43, 0x70, 0x72, 0x36, 0x37, 0x6F}},
	{cmd: 0xED, data: []byte{0x1B, 0x0B}},
	{cmd: 0xAE, data: []byte{0x77}},
	{cmd: 0xCD, data: []byte{0x63}},
	{cmd: 0x70, data: []byte{0x07, 0x07, 0x04, 0x0E, 0x0F, 0x09, 0x07, 0x08, 0x03}},
	{cmd: 0xE8, data: []byte{0x34}},
	{cmd: 0x62, data: []byte{0x18, 0x0D, 0x71, 0xED, 0x70, 0x70, 0x18, 0x0F, 0x71, 0xEF, 0x70, 0x70}},
	{cmd: 0x63, data: []byte{0x18, 0x11, 0x71, 0xF1, 0x70, 0x70, 0x18, 0x13, 0x71, 0xF3, 0x70, 0x70}},
	{cmd: 0x64, data: []byte{0x28, 0x29, 0xF1, 0x01, 0xF1, 0x00, 0x07}},
	{cmd: 0x66, data: []byte{0x3C, 0x00, 0xCD, 0x67, 0x45, 0x45, 0x10, 0x00, 0x00, 0x00}},
	{cmd: 0x67, data: []byte{0x00, 0x3C, 0x00, 0x00, 0x00, 0x01, 0x54, 0x10, 0x32, 0x98}},
	{cmd: 0x74, data: []byte{0x10, 0x85, 0x80, 0x00, 0x00, 0x4E, 0x00}},
	{cmd: 0x98, data: []byte{0x3E, 0x07}},
	{cmd: 0x35},        // Tearing effect line on
	{cmd: cmdInvertOn}, // The panel needs inversion for true colours
	{cmd: cmdSleepOut, delay: 120 * time.Millisecond},
}

// init sends the initialization sequence to the display.
func (d *Dev) init(opts *Opts) error {
	// Hardware reset sequence (if RST pin is provided)
	if d.rst != nil {
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("gc9a01: failed to pull RST high: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("gc9a01: failed to pull RST low: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("gc9a01: failed to pull RST high: %w", err)
		}
		time.Sleep(120 * time.Millisecond)
	}

	for _, ic := range initSequence {
		if err := d.sendCommand(ic.cmd, ic.data...); err != nil {
			return err
		}
		if ic.delay > 0 {
			time.Sleep(ic.delay)
		}
	}
	if err := d.sendCommand(cmdMemAccess, opts.Rotation.madctl()); err != nil {
		return err
	}

	// Clear display RAM
	if err := d.writeRect(d.rect, make([]byte, 2*d.rect.Dx()*d.rect.Dy())); err != nil {
		return err
	}

	if err := d.sendCommand(cmdDisplayOn); err != nil {
		return err
	}
	if d.bl != nil {
		return d.SetBrightness(100)
	}
	return nil
}

// sendCommand sends a command byte followed by its parameters.
func (d *Dev) sendCommand(cmd byte, params ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return d.sendData(params)
}

// sendData sends data bytes, split into transfers the bus accepts.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := min(len(data), d.maxTx)
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// writeRect sets the address window to r and writes pixel data into it.
func (d *Dev) writeRect(r image.Rectangle, pixels []byte) error {
	x0, x1 := uint16(r.Min.X), uint16(r.Max.X-1)
	y0, y1 := uint16(r.Min.Y), uint16(r.Max.Y-1)

	if err := d.sendCommand(cmdColumnAddr, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.sendCommand(cmdRowAddr, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	if err := d.sendCommand(cmdMemWrite); err != nil {
		return err
	}
	return d.sendData(pixels)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image565.BRG565Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes raw BRG565 pixel data (big-endian) to the whole display.
// The data must be exactly d.rect.Dx() * d.rect.Dy() * 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("gc9a01: halted")
	}
	if len(pixels) != len(d.last.Pix) {
		return 0, errors.New("gc9a01: invalid buffer size")
	}
	if err := d.writeRect(d.rect, pixels); err != nil {
		return 0, err
	}
	copy(d.last.Pix, pixels)
	if d.next != nil {
		copy(d.next.Pix, pixels)
	}
	return len(pixels), nil
}

// Draw draws an image onto the display with differential update optimization.
// Only the smallest rectangle enclosing changed pixels is sent.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("gc9a01: halted")
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	// Fast path: a full-size frame is sent as is.
	if f, ok := src.(*image565.Frame); ok && dst == d.rect && sp == (image.Point{}) && f.Rect == d.rect {
		_, err := d.Write(f.Pix)
		return err
	}

	if d.next == nil {
		d.next = image565.NewFrame(d.rect)
		copy(d.next.Pix, d.last.Pix)
	}
	draw.Draw(d.next, dst, src, sp, draw.Src)

	changed := d.calculateDiff()
	if changed.Empty() {
		return nil
	}
	if err := d.writeRect(changed, d.next.Region(changed)); err != nil {
		return err
	}
	copy(d.last.Pix, d.next.Pix)
	return nil
}

// Present sends the pixels of f inside r to the panel, for callers that
// track their own dirty region (such as a gauge bounding box). f must
// have the display's bounds.
func (d *Dev) Present(f *image565.Frame, r image.Rectangle) error {
	if d.halted {
		return errors.New("gc9a01: halted")
	}
	if f.Rect != d.rect {
		return errors.New("gc9a01: frame bounds do not match display")
	}
	r = r.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	if err := d.writeRect(r, f.Region(r)); err != nil {
		return err
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := f.PixOffset(r.Min.X, y)
		copy(d.last.Pix[i:i+2*r.Dx()], f.Pix[i:])
	}
	if d.next != nil {
		copy(d.next.Pix, d.last.Pix)
	}
	return nil
}

// calculateDiff returns the smallest rectangle covering the pixels that
// differ between the panel and the drawing buffer, or an empty rectangle.
func (d *Dev) calculateDiff() image.Rectangle {
	width := d.rect.Dx()
	height := d.rect.Dy()
	stride := d.last.Stride

	minCol, maxCol := width, -1
	minRow, maxRow := height, -1

	for y := 0; y < height; y++ {
		row := y * stride
		a, b := d.last.Pix[row:row+stride], d.next.Pix[row:row+stride]
		if bytes.Equal(a, b) {
			continue
		}
		minRow = min(minRow, y)
		maxRow = y

		for x := 0; x < width; x++ {
			if a[2*x] != b[2*x] || a[2*x+1] != b[2*x+1] {
				minCol = min(minCol, x)
				maxCol = max(maxCol, x)
			}
		}
	}

	if maxRow < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minCol, minRow, maxCol+1, maxRow+1).Add(d.rect.Min)
}

// SetBrightness sets the backlight level in percent (0-100).
func (d *Dev) SetBrightness(pct int) error {
	if d.halted {
		return errors.New("gc9a01: halted")
	}
	if d.bl == nil {
		return errors.New("gc9a01: no backlight pin")
	}
	pct = max(0, min(100, pct))
	duty := gpio.Duty(int64(gpio.DutyMax) * int64(pct) / 100)
	if err := d.bl.PWM(duty, physic.KiloHertz); err != nil {
		return fmt.Errorf("gc9a01: backlight: %w", err)
	}
	d.brightness = pct
	return nil
}

// Brightness returns the last backlight level set.
func (d *Dev) Brightness() int {
	return d.brightness
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("gc9a01: halted")
	}
	// The panel shows true colours with controller inversion on.
	mode := byte(cmdInvertOn)
	if invert {
		mode = cmdInvertOff
	}
	return d.sendCommand(mode)
}

// Sleep puts the panel in or out of sleep mode. Display RAM is kept.
func (d *Dev) Sleep(sleep bool) error {
	if d.halted {
		return errors.New("gc9a01: halted")
	}
	if sleep {
		return d.sendCommand(cmdSleepIn)
	}
	if err := d.sendCommand(cmdSleepOut); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	return nil
}

// Halt turns the display off.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	if d.bl != nil {
		if err := d.bl.Out(gpio.Low); err != nil {
			return err
		}
	}
	return d.sendCommand(cmdDisplayOff)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("gc9a01.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
