package logoprep

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func maskWithRect(w, h int, r image.Rectangle) *Mask {
	m := NewMask(w, h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, 255)
		}
	}
	return m
}

func TestDilateErodeSinglePixel(t *testing.T) {
	m := NewMask(5, 5)
	m.Set(2, 2, 255)

	d := Dilate(m, Square(3), 1)
	if got := d.Count(); got != 9 {
		t.Fatalf("dilated count = %d, want 9", got)
	}
	e := Erode(d, Square(3), 1)
	if got := e.Count(); got != 1 || e.At(2, 2) == 0 {
		t.Fatalf("eroded count = %d (center %d), want only the center", got, e.At(2, 2))
	}
	if m.Count() != 1 {
		t.Fatal("input mask was modified")
	}
}

func TestErodeIgnoresOutside(t *testing.T) {
	m := maskWithRect(4, 4, image.Rect(0, 0, 4, 4))
	if got := Erode(m, Square(3), 3).Count(); got != 16 {
		t.Errorf("full mask eroded to %d pixels, want 16", got)
	}
}

func TestOpenRemovesSpeckle(t *testing.T) {
	m := maskWithRect(10, 10, image.Rect(2, 2, 7, 7))
	m.Set(9, 0, 255)
	o := Open(m, Square(3), 1)
	if o.At(9, 0) != 0 {
		t.Error("isolated pixel survived opening")
	}
	if got := o.Count(); got != 25 {
		t.Errorf("opened count = %d, want 25", got)
	}
}

func TestCloseFillsHole(t *testing.T) {
	m := maskWithRect(9, 9, image.Rect(2, 2, 7, 7))
	m.Set(4, 4, 0)
	c := Close(m, Square(3), 1)
	if c.At(4, 4) == 0 {
		t.Error("hole not closed")
	}
	if got := c.Count(); got != 25 {
		t.Errorf("closed count = %d, want 25", got)
	}
}

func TestMorphRectangularKernel(t *testing.T) {
	m := NewMask(7, 7)
	m.Set(3, 3, 255)
	d := Dilate(m, Kernel{W: 5, H: 1}, 1)
	if got := d.Count(); got != 5 {
		t.Fatalf("count = %d, want 5", got)
	}
	for x := 1; x <= 5; x++ {
		if d.At(x, 3) == 0 {
			t.Errorf("pixel (%d,3) not set", x)
		}
	}
}

func TestInvertAndGray(t *testing.T) {
	m := NewMask(2, 1)
	m.Set(0, 0, 10)
	m.Invert()
	if m.At(0, 0) != 245 || m.At(1, 0) != 255 {
		t.Fatalf("inverted = %v", m.Pix)
	}
	g := m.Gray()
	if g.GrayAt(0, 0).Y != 245 {
		t.Errorf("gray = %d", g.GrayAt(0, 0).Y)
	}
	if back := MaskFromGray(g); back.At(1, 0) != 255 || back.W != 2 {
		t.Errorf("round trip = %+v", back)
	}
}

func TestApplyClearsBackground(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 4, G: 5, B: 6, A: 255})
	m := NewMask(2, 1)
	m.Set(0, 0, 255)

	out := m.Apply(img)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("kept pixel = %v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{}) {
		t.Errorf("cleared pixel = %v", got)
	}
	if img.NRGBAAt(1, 0).A != 255 {
		t.Error("input image was modified")
	}
}

func TestAlphaFloor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := range 3 {
		img.SetNRGBA(x, 0, color.NRGBA{R: 100, G: 110, B: 120, A: 255})
	}
	m := NewMask(3, 1)
	m.Pix = []uint8{5, 10, 200}

	out := m.Alpha(img, 10)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 0}) {
		t.Errorf("below floor = %v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{R: 100, G: 110, B: 120, A: 10}) {
		t.Errorf("at floor = %v", got)
	}
	if got := out.NRGBAAt(2, 0).A; got != 200 {
		t.Errorf("alpha = %d, want 200", got)
	}
}

func TestApplyAndAlphaClipToImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.SetNRGBA(x, y, color.NRGBA{R: 9, A: 255})
		}
	}
	m := NewMask(4, 3) // larger than img, all background

	out := m.Apply(img)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if got := out.NRGBAAt(1, 1); got != (color.NRGBA{}) {
		t.Errorf("Apply: pixel = %v, want cleared", got)
	}
	if got := m.Alpha(img, 10).NRGBAAt(1, 1); got.A != 0 {
		t.Errorf("Alpha: pixel = %v, want transparent", got)
	}

	small := maskWithRect(1, 1, image.Rect(0, 0, 1, 1))
	out = small.Apply(img)
	if got := out.NRGBAAt(1, 1); got.A != 255 {
		t.Errorf("outside a smaller mask = %v, want untouched", got)
	}
}

func TestMorphInvalidKernelIsNoop(t *testing.T) {
	m := maskWithRect(5, 5, image.Rect(1, 1, 4, 4))
	for _, k := range []Kernel{{0, 3}, {3, -1}} {
		if err := k.Validate(); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("%v: Validate = %v", k, err)
		}
		if got := Dilate(m, k, 2); got.Count() != m.Count() {
			t.Errorf("%v: dilate changed the mask", k)
		}
		if got := Erode(m, k, 2); got.Count() != m.Count() {
			t.Errorf("%v: erode changed the mask", k)
		}
	}
	if err := Square(3).Validate(); err != nil {
		t.Errorf("3x3: %v", err)
	}
	if got := Dilate(m, Square(3), 0); got.Count() != m.Count() {
		t.Error("zero iterations changed the mask")
	}
}
