// Package gc9a01 controls a GC9A01 round TFT display via SPI.
//
// The GC9A01 is a 16-bit colour TFT controller driving 240×240 round
// panels, such as the Waveshare 1.28" modules.
// This driver implements the display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 240×240 pixels, circular visible area
// - 16-bit colour (5-6-5) in BGR order, see package image565
// - Backlight brightness via PWM on an optional pin
// - Display inversion and sleep mode
//
// # Hardware Connection
//
// Connect the GC9A01 display to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL         → SPI Clock (SCLK)
//	SDA         → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select
//	RST         → Optional: GPIO for hardware reset
//	BL          → Optional: PWM-capable GPIO for the backlight
//
// # Basic Usage
//
//	package main
//
//	import (
//		"image"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/gc9a01"
//		"periph.io/x/devices/v3/gc9a01/gauge"
//		"periph.io/x/devices/v3/gc9a01/image565"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//		b, _ := spireg.Open("")
//		dev, _ := gc9a01.NewSPI(b, gpioreg.ByName("GPIO25"), nil)
//		defer dev.Halt()
//
//		frame := image565.NewFrame(dev.Bounds())
//		g, _ := gauge.New(gauge.Config{
//			Center:     image.Pt(120, 120),
//			Radius:     115,
//			Thickness:  10,
//			Segments:   20,
//			StartAngle: 215,
//			EndAngle:   320,
//			Gap:        2,
//			Foreground: uint16(image565.White),
//			Clockwise:  true,
//		})
//		g.Update(frame, 75)
//		dev.Present(frame, g.Bounds())
//	}
//
// # Drawing Modes
//
// ## Full-Frame Update
//
// Write raw big-endian BRG565 pixel data for the whole panel:
//
//	pixels := make([]byte, 240*240*2)
//	dev.Write(pixels)
//
// ## Differential Updates
//
// Draw keeps a copy of what the panel shows and sends only the smallest
// rectangle that changed:
//
//	dev.Draw(dev.Bounds(), myImage, image.Point{})
//
// ## Region Updates
//
// Present sends one rectangle of a frame. It pairs with gauge bounding
// boxes, so redrawing a gauge costs a single window transfer:
//
//	g.DrawIncremental(frame, previous)
//	dev.Present(frame, g.Bounds())
//
// # Datasheet
//
// https://www.buydisplay.com/download/ic/GC9A01A.pdf
package gc9a01
