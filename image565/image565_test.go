package image565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    BRG565
	}{
		{"red", 255, 0, 0, 0x001F},
		{"green", 0, 255, 0, 0x07E0},
		{"blue", 0, 0, 255, 0xF800},
		{"white", 255, 255, 255, 0xFFFF},
		{"black", 0, 0, 0, 0x0000},
		{"magenta bg", 230, 135, 230, 0xE43C},
		{"dark grey", 64, 64, 64, 0x4208},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pack(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("Pack(%d, %d, %d) = 0x%04X, want 0x%04X", tt.r, tt.g, tt.b, uint16(got), uint16(tt.want))
			}
		})
	}
}

func TestPackConstants(t *testing.T) {
	if Pack(255, 0, 0) != Red || Pack(0, 255, 0) != Green || Pack(0, 0, 255) != Blue {
		t.Error("primary colour constants do not match Pack")
	}
	if Pack(255, 255, 255) != White || Pack(0, 0, 0) != Black {
		t.Error("black/white constants do not match Pack")
	}
}

func TestPackNotInjective(t *testing.T) {
	// Only the low bits differ; they are truncated away.
	a := Pack(0xF8, 0xFC, 0xF8)
	b := Pack(0xFF, 0xFF, 0xFF)
	if a != b {
		t.Errorf("Pack(0xF8,0xFC,0xF8) = 0x%04X, Pack(0xFF,0xFF,0xFF) = 0x%04X, want equal", uint16(a), uint16(b))
	}
}

func TestBRG565RGBA(t *testing.T) {
	tests := []struct {
		name       string
		c          BRG565
		r, g, b    uint32
	}{
		{"black", Black, 0, 0, 0},
		{"white", White, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", Red, 0xFFFF, 0, 0},
		{"green", Green, 0, 0xFFFF, 0},
		{"blue", Blue, 0, 0, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.r || g != tt.g || b != tt.b || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, ffff)", r, g, b, a, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestBRG565ModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  BRG565
	}{
		{"passthrough", BRG565(0x1234), 0x1234},
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"rgba red", color.RGBA{0xFF, 0, 0, 0xFF}, Red},
		{"rgba blue", color.RGBA{0, 0, 0xFF, 0xFF}, Blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BRG565Model.Convert(tt.input).(BRG565)
			if got != tt.want {
				t.Errorf("Convert(%v) = 0x%04X, want 0x%04X", tt.input, uint16(got), uint16(tt.want))
			}
		})
	}
}

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantStride int
		wantPixLen int
	}{
		{"240x240", image.Rect(0, 0, 240, 240), 480, 115200},
		{"3x2", image.Rect(0, 0, 3, 2), 6, 12},
		{"offset rect", image.Rect(10, 20, 14, 22), 8, 16},
		{"empty", image.Rect(0, 0, 0, 5), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewFrame(tt.rect)
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestFrameByteOrder(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 2, 1))
	img.SetBRG565(0, 0, 0xABCD)
	img.SetPixel(1, 0, 0x1234)

	want := []byte{0xAB, 0xCD, 0x12, 0x34}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, img.Pix[i], b)
		}
	}
}

func TestFrameSetGet(t *testing.T) {
	img := NewFrame(image.Rect(5, 5, 9, 7))
	for y := 5; y < 7; y++ {
		for x := 5; x < 9; x++ {
			img.SetBRG565(x, y, BRG565(x*100+y))
		}
	}
	for y := 5; y < 7; y++ {
		for x := 5; x < 9; x++ {
			if got := img.BRG565At(x, y); got != BRG565(x*100+y) {
				t.Errorf("BRG565At(%d, %d) = %d, want %d", x, y, got, x*100+y)
			}
		}
	}
}

func TestFrameOutOfBounds(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 4, 4))

	// Must not panic.
	img.SetBRG565(-1, 0, White)
	img.SetBRG565(4, 0, White)
	img.SetPixel(0, 4, 0xFFFF)
	img.Set(0, -1, color.White)

	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = 0x%02X after out-of-bounds writes, want 0", i, b)
		}
	}
	if got := img.BRG565At(10, 10); got != 0 {
		t.Errorf("BRG565At out of bounds = 0x%04X, want 0", uint16(got))
	}
}

func TestFrameFillRect(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 4, 4))
	img.Fill(Blue)
	img.FillRect(image.Rect(1, 1, 3, 10), Red)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := Blue
			if x >= 1 && x < 3 && y >= 1 {
				want = Red
			}
			if got := img.BRG565At(x, y); got != want {
				t.Errorf("(%d, %d) = 0x%04X, want 0x%04X", x, y, uint16(got), uint16(want))
			}
		}
	}
}

func TestFrameRegion(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetBRG565(x, 1, BRG565(0x0100*(x+1)))
	}

	got := img.Region(image.Rect(1, 1, 3, 2))
	want := []byte{0x02, 0x00, 0x03, 0x00}
	if len(got) != len(want) {
		t.Fatalf("len(Region) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Region[%d] = 0x%02X, want 0x%02X", i, got[i], want[i])
		}
	}

	if r := img.Region(image.Rect(10, 10, 12, 12)); r != nil {
		t.Errorf("Region outside frame = %v, want nil", r)
	}
}

func TestFrameDraw(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{0, 0xFF, 0, 0xFF}), image.Point{}, draw.Src)
	if got := img.BRG565At(3, 3); got != Green {
		t.Errorf("after draw.Draw pixel = 0x%04X, want 0x%04X", uint16(got), uint16(Green))
	}
}
