package scene

import (
	"image"
	"image/color"
	"testing"
)

func TestImageScaleAndReload(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 42, G: 42, B: 42, A: 255})
		}
	}
	img := NewImage("plate.png", src, 3, false)

	img.Scale(16, 8)
	if w, h := img.Size(); w != 16 || h != 8 {
		t.Fatalf("scaled to %dx%d; expected 16x8", w, h)
	}

	img.Reload()
	if w, h := img.Size(); w != 10 || h != 6 {
		t.Errorf("reloaded to %dx%d; expected authored 10x6", w, h)
	}
	if px := img.Pixels().NRGBAAt(3, 3); px.R != 42 {
		t.Errorf("reloaded pixel %v; expected the authored value", px)
	}
}

func TestImageIsolatedFromSource(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img := NewImage("iso.png", src, 3, false)

	// mutating the source after construction must not leak in
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	if px := img.Pixels().NRGBAAt(0, 0); px.R != 0 {
		t.Errorf("image shares pixels with its source: %v", px)
	}
}
