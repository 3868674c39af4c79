package image565

import (
	"image"
	"image/color"
)

// BRG565 is a packed 16-bit colour: blue in bits 11-15, green in bits 5-10
// and red in bits 0-4.
type BRG565 uint16

// Common colours.
const (
	Black BRG565 = 0x0000
	White BRG565 = 0xFFFF
	Red   BRG565 = 0x001F
	Green BRG565 = 0x07E0
	Blue  BRG565 = 0xF800
)

// Pack converts an 8-bit-per-channel colour to BRG565.
//
// Only the top bits of each channel survive, so distinct inputs that differ
// in their low bits pack to the same word.
func Pack(r, g, b uint8) BRG565 {
	return BRG565(uint16(b&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(r>>3))
}

// Channels returns the 5-6-5 bit fields of c.
func (c BRG565) Channels() (r5, g6, b5 uint8) {
	return uint8(c & 0x1F), uint8((c >> 5) & 0x3F), uint8(c >> 11)
}

// RGBA implements color.Color.
// Each field is scaled to 16 bits by bit replication.
func (c BRG565) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := c.Channels()
	r8 := uint32(r5<<3 | r5>>2)
	g8 := uint32(g6<<2 | g6>>4)
	b8 := uint32(b5<<3 | b5>>2)
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

func toBRG565(c color.Color) color.Color {
	if p, ok := c.(BRG565); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// BRG565Model converts colors to BRG565.
var BRG565Model = color.ModelFunc(toBRG565)

// Frame is a BRG565 image stored big-endian, two bytes per pixel.
type Frame struct {
	Pix    []byte          // Pixel data (2 bytes per pixel, high byte first)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewFrame creates a new Frame with the specified bounds.
func NewFrame(r image.Rectangle) *Frame {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Frame{Rect: r}
	}
	return &Frame{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Frame) ColorModel() color.Model {
	return BRG565Model
}

// Bounds returns the image bounds.
func (p *Frame) Bounds() image.Rectangle {
	return p.Rect
}

// At implements the image.Image interface.
func (p *Frame) At(x, y int) color.Color {
	return p.BRG565At(x, y)
}

// BRG565At returns the packed colour of the pixel at (x, y).
func (p *Frame) BRG565At(x, y int) BRG565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	i := p.PixOffset(x, y)
	return BRG565(p.Pix[i])<<8 | BRG565(p.Pix[i+1])
}

// Set implements the draw.Image interface.
func (p *Frame) Set(x, y int, c color.Color) {
	p.SetBRG565(x, y, BRG565Model.Convert(c).(BRG565))
}

// SetBRG565 sets the pixel at (x, y) without colour conversion.
// Points outside the frame are ignored.
func (p *Frame) SetBRG565(x, y int, c BRG565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c >> 8)
	p.Pix[i+1] = byte(c)
}

// SetPixel writes a raw packed word. It lets a Frame be handed to anything
// that draws with plain uint16 colours, such as gauge.Gauge.
func (p *Frame) SetPixel(x, y int, c uint16) {
	p.SetBRG565(x, y, BRG565(c))
}

// Fill sets every pixel of the frame to c.
func (p *Frame) Fill(c BRG565) {
	p.FillRect(p.Rect, c)
}

// FillRect sets every pixel of r, clipped to the frame, to c.
func (p *Frame) FillRect(r image.Rectangle, c BRG565) {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return
	}
	hi, lo := byte(c>>8), byte(c)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := p.PixOffset(r.Min.X, y)
		end := i + 2*r.Dx()
		for ; i < end; i += 2 {
			p.Pix[i] = hi
			p.Pix[i+1] = lo
		}
	}
}

// Region returns a copy of the pixels in r, clipped to the frame, packed
// row after row with no padding. This is the layout the panel expects after
// its address window has been set to r.
func (p *Frame) Region(r image.Rectangle) []byte {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return nil
	}
	rowBytes := 2 * r.Dx()
	out := make([]byte, 0, rowBytes*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := p.PixOffset(r.Min.X, y)
		out = append(out, p.Pix[i:i+rowBytes]...)
	}
	return out
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Frame) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
