package monitor

import (
	"fmt"
	"image"
	"image/draw"
	"io"

	// Background images are PNG, JPEG or BMP.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"periph.io/x/devices/v3/gc9a01/gauge"
	"periph.io/x/devices/v3/gc9a01/image565"
)

// LoadBackground decodes an image and scales it to bounds.
func LoadBackground(r io.Reader, bounds image.Rectangle) (*image565.Frame, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("monitor: decode background: %w", err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("monitor: empty %s background", format)
	}
	f := image565.NewFrame(bounds)
	if src.Bounds().Size() == bounds.Size() {
		draw.Draw(f, bounds, src, src.Bounds().Min, draw.Src)
		return f, nil
	}
	xdraw.CatmullRom.Scale(f, bounds, src, src.Bounds(), xdraw.Src, nil)
	return f, nil
}

// Overlay is a gauge drawn over a background at the given value.
type Overlay struct {
	Gauge *gauge.Gauge
	Value float64
}

// Composite paints bg into dst, black when bg is nil, then draws each
// overlay in order. Every overlay gauge is left holding its Value.
func Composite(dst, bg *image565.Frame, overlays ...Overlay) {
	switch {
	case bg == nil:
		dst.Fill(image565.Black)
	case bg.Rect == dst.Rect:
		copy(dst.Pix, bg.Pix)
	default:
		dst.Fill(image565.Black)
		draw.Draw(dst, dst.Rect, bg, dst.Rect.Min, draw.Src)
	}
	for _, o := range overlays {
		o.Gauge.Update(dst, o.Value)
	}
}
