// Package image565 provides the 16-bit packed colour format and frame buffer
// used by the GC9A01 round display.
//
// The panel is driven in BGR order, so a packed word carries blue in the
// high five bits and red in the low five bits:
//
//	bit  15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
//	     b4 b3 b2 b1 b0 g5 g4 g3 g2 g1 g0 r4 r3 r2 r1 r0
//
// Frame stores pixels two bytes each, most significant byte first, which is
// the byte order the controller expects on the SPI bus. A region of a Frame
// can therefore be streamed to the panel without conversion.
//
// Example usage:
//
//	// Create a 240x240 frame
//	img := image565.NewFrame(image.Rect(0, 0, 240, 240))
//
//	// Clear it to black and set one pixel to orange
//	img.Fill(image565.Black)
//	img.SetBRG565(120, 120, image565.Pack(255, 128, 0))
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(image565.White), image.Point{}, draw.Src)
package image565
