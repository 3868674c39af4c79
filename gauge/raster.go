package gauge

import (
	"image"
	"math"
)

// drawArc paints the annular wedge of s across the ring's band.
func (g *Gauge) drawArc(w PixelWriter, s Segment, c uint16) {
	inner := g.cfg.Radius - g.cfg.Thickness + 1
	for r := inner; r <= g.cfg.Radius; r++ {
		arcPoints(g.cfg.Center, r, s.Start, s.End, func(p image.Point) {
			if p.In(g.cfg.Screen) {
				w.SetPixel(p.X, p.Y, c)
			}
		})
	}
}

// arcPoints calls fn for each sample of the circle of radius r between
// startDeg and endDeg inclusive. The walk direction follows the sign of
// startDeg-endDeg. Samples are 1/r radians apart, about one pixel along
// the circumference. Consecutive samples can round to the same pixel; fn
// is called for each of them.
func arcPoints(center image.Point, r int, startDeg, endDeg float64, fn func(image.Point)) {
	if r <= 0 {
		return
	}
	start := startDeg * math.Pi / 180
	end := endDeg * math.Pi / 180
	step := 1 / float64(r)
	if start > end {
		step = -step
	}

	cx, cy, fr := float64(center.X), float64(center.Y), float64(r)
	for i := 0; ; i++ {
		a := start + float64(i)*step
		if (step > 0 && a > end) || (step < 0 && a < end) {
			return
		}
		fn(image.Point{
			X: int(math.Round(cx + fr*math.Cos(a))),
			Y: int(math.Round(cy - fr*math.Sin(a))),
		})
	}
}
