package swatch

import (
	"bytes"
	"image"
	stdcolor "image/color"
	"image/png"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

// solidPNG encodes a uniform-color image for descriptor tests.
func solidPNG(t *testing.T, c stdcolor.RGBA, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAverageLab_SolidColor(t *testing.T) {
	rgba := stdcolor.RGBA{R: 180, G: 60, B: 40, A: 255}
	data := solidPNG(t, rgba, 300, 200)

	got, err := AverageLab(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref, _ := colorful.MakeColor(rgba)
	l, a, b := ref.Lab()
	want := [3]float64{l * 100, a * 100, b * 100}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1.0 {
			t.Errorf("channel %d = %g, want ~%g", i, got[i], want[i])
		}
	}
}

func TestAverageLab_WhiteAndBlack(t *testing.T) {
	white, err := AverageLab(solidPNG(t, stdcolor.RGBA{255, 255, 255, 255}, 10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(white[0]-100) > 1 {
		t.Errorf("white L* = %g, want ~100", white[0])
	}

	black, err := AverageLab(solidPNG(t, stdcolor.RGBA{0, 0, 0, 255}, 10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(black[0]) > 1 {
		t.Errorf("black L* = %g, want ~0", black[0])
	}
}

func TestAverageLab_StableAcrossResolutions(t *testing.T) {
	c := stdcolor.RGBA{R: 90, G: 120, B: 200, A: 255}
	small, err := AverageLab(solidPNG(t, c, 16, 16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	large, err := AverageLab(solidPNG(t, c, 640, 480))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range small {
		if math.Abs(small[i]-large[i]) > 1.0 {
			t.Errorf("channel %d differs across resolutions: %g vs %g", i, small[i], large[i])
		}
	}
}

func TestAverageLab_CorruptInput(t *testing.T) {
	if _, err := AverageLab([]byte("not an image")); err == nil {
		t.Error("expected error for corrupt bytes")
	}
	if _, err := AverageLab(nil); err == nil {
		t.Error("expected error for empty input")
	}
}
