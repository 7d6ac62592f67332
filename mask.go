package logoprep

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var (
	ErrEmptyImage     = errors.New("logoprep: empty image")
	ErrInvalidOptions = errors.New("logoprep: invalid options")
)

// Mask is an 8-bit single channel mask. Zero is background, anything else
// is foreground. Pix is row-major, len = W*H.
type Mask struct {
	W, H int
	Pix  []uint8
}

func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]uint8, w*h)}
}

// MaskFunc builds a mask from a per-pixel predicate over an NRGBA image.
func MaskFunc(img *image.NRGBA, keep func(c color.NRGBA) bool) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := range m.H {
		row := img.Pix[y*img.Stride:]
		for x := range m.W {
			i := x * 4
			c := color.NRGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}
			if keep(c) {
				m.Pix[y*m.W+x] = 255
			}
		}
	}
	return m
}

func MaskFromGray(g *image.Gray) *Mask {
	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := range m.H {
		copy(m.Pix[y*m.W:(y+1)*m.W], g.Pix[y*g.Stride:y*g.Stride+m.W])
	}
	return m
}

func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.W, m.H))
	copy(g.Pix, m.Pix)
	return g
}

func (m *Mask) Clone() *Mask {
	return &Mask{W: m.W, H: m.H, Pix: append([]uint8(nil), m.Pix...)}
}

func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.W+x]
}

func (m *Mask) Set(x, y int, v uint8) {
	m.Pix[y*m.W+x] = v
}

// Invert flips every value in place (v -> 255-v).
func (m *Mask) Invert() *Mask {
	for i, v := range m.Pix {
		m.Pix[i] = 255 - v
	}
	return m
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Apply returns a copy of img where every background pixel of m is
// fully transparent black. Only the overlap of m and img is touched.
func (m *Mask) Apply(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	w, h := m.overlap(out)
	for y := range h {
		row := out.Pix[y*out.Stride:]
		for x := range w {
			if m.Pix[y*m.W+x] != 0 {
				continue
			}
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = 0, 0, 0, 0
		}
	}
	return out
}

// Alpha uses the mask values as the alpha channel of img. Pixels whose
// mask value is below floor become transparent white. Only the overlap of
// m and img is touched.
func (m *Mask) Alpha(img image.Image, floor uint8) *image.NRGBA {
	out := imaging.Clone(img)
	w, h := m.overlap(out)
	for y := range h {
		row := out.Pix[y*out.Stride:]
		for x := range w {
			a := m.Pix[y*m.W+x]
			i := x * 4
			if a < floor {
				row[i], row[i+1], row[i+2], row[i+3] = 255, 255, 255, 0
				continue
			}
			row[i+3] = a
		}
	}
	return out
}

func (m *Mask) overlap(img *image.NRGBA) (w, h int) {
	b := img.Bounds()
	return min(m.W, b.Dx()), min(m.H, b.Dy())
}

// ============ MORPHOLOGY ============

// Kernel is a rectangular structuring element of all ones.
type Kernel struct {
	W, H int
}

func Square(n int) Kernel {
	return Kernel{W: n, H: n}
}

// Validate reports an ErrInvalidOptions error for an empty kernel.
func (k Kernel) Validate() error {
	if k.W <= 0 || k.H <= 0 {
		return fmt.Errorf("%w: kernel %dx%d", ErrInvalidOptions, k.W, k.H)
	}
	return nil
}

// Erode replaces each pixel with the minimum over the kernel window.
// Pixels outside the image are ignored. An invalid kernel (see
// Kernel.Validate) or iterations <= 0 returns an unchanged copy.
func Erode(m *Mask, k Kernel, iterations int) *Mask {
	return morph(m, k, iterations, false)
}

// Dilate replaces each pixel with the maximum over the kernel window.
// Pixels outside the image are ignored. An invalid kernel or iterations
// <= 0 returns an unchanged copy.
func Dilate(m *Mask, k Kernel, iterations int) *Mask {
	return morph(m, k, iterations, true)
}

// Open erodes then dilates, each iterations times.
func Open(m *Mask, k Kernel, iterations int) *Mask {
	return Dilate(Erode(m, k, iterations), k, iterations)
}

// Close dilates then erodes, each iterations times.
func Close(m *Mask, k Kernel, iterations int) *Mask {
	return Erode(Dilate(m, k, iterations), k, iterations)
}

func morph(m *Mask, k Kernel, iterations int, dilate bool) *Mask {
	out := m.Clone()
	if k.Validate() != nil || m.W == 0 || m.H == 0 {
		return out
	}
	ax, ay := k.W/2, k.H/2
	tmp := make([]uint8, len(out.Pix))
	for range iterations {
		// Rectangular kernels are separable: rows first, then columns.
		for y := range m.H {
			row := out.Pix[y*m.W : (y+1)*m.W]
			for x := range m.W {
				x0 := max(0, x-ax)
				x1 := min(m.W-1, x-ax+k.W-1)
				tmp[y*m.W+x] = extreme(row[x0:x1+1], 1, dilate)
			}
		}
		for x := range m.W {
			for y := range m.H {
				y0 := max(0, y-ay)
				y1 := min(m.H-1, y-ay+k.H-1)
				out.Pix[y*m.W+x] = extreme(tmp[y0*m.W+x:y1*m.W+x+1], m.W, dilate)
			}
		}
	}
	return out
}

func extreme(vals []uint8, stride int, dilate bool) uint8 {
	v := vals[0]
	for i := stride; i < len(vals); i += stride {
		if dilate {
			v = max(v, vals[i])
		} else {
			v = min(v, vals[i])
		}
	}
	return v
}
