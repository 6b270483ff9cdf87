package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// Icons are a microphone capsule: outlined when idle, filled red while
// recording and amber after an error.
var (
	iconIdle   []byte
	iconIdleHi []byte
	iconRecHi  []byte
	iconWarnHi []byte
)

func init() {
	red := color.RGBA{R: 255, G: 59, B: 48, A: 255}
	amber := color.RGBA{R: 255, G: 179, B: 0, A: 255}
	iconIdle = renderMic(22, nil)
	iconIdleHi = renderMic(44, nil)
	iconRecHi = renderMic(44, &red)
	iconWarnHi = renderMic(44, &amber)
}

// capsuleDist is the signed distance from (x, y) to a vertical capsule
// centred on cx between y0 and y1 with radius r.
func capsuleDist(x, y, cx, y0, y1, r float64) float64 {
	cy := math.Max(y0, math.Min(y, y1))
	return math.Hypot(x-cx, y-cy) - r
}

func renderMic(size int, fill *color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	cx := s / 2
	r := s * 0.2
	top, bottom := s*0.1+r, s*0.55
	stroke := math.Max(1, s/16)

	for y := range size {
		for x := range size {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			d := capsuleDist(fx, fy, cx, top, bottom, r)
			switch {
			case d <= -stroke && fill != nil:
				img.Set(x, y, fill)
			case d <= 0:
				img.Set(x, y, color.Black)
			case fy >= s*0.72 && fy <= s*0.9 && math.Abs(fx-cx) <= stroke/2:
				// stand
				img.Set(x, y, color.Black)
			case fy >= s*0.86 && fy <= s*0.86+stroke && math.Abs(fx-cx) <= s*0.2:
				// base
				img.Set(x, y, color.Black)
			}
		}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}
