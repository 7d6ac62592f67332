package logoprep

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Fixed binomial kernels used when sigma is not given and the kernel is
// small. They match the smoothing tables most vision libraries ship.
var smallGaussianTab = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianKernel returns a normalized 1D gaussian of odd length ksize.
// When sigma <= 0 it is derived from ksize as 0.3*((ksize-1)*0.5-1)+0.8.
func GaussianKernel(ksize int, sigma float64) ([]float64, error) {
	if ksize <= 0 || ksize%2 == 0 {
		return nil, fmt.Errorf("%w: gaussian kernel size %d must be odd and positive", ErrInvalidOptions, ksize)
	}
	if sigma <= 0 {
		if tab, ok := smallGaussianTab[ksize]; ok {
			return append([]float64(nil), tab...), nil
		}
		sigma = 0.3*((float64(ksize)-1)*0.5-1) + 0.8
	}
	k := make([]float64, ksize)
	c := ksize / 2
	den := 2 * sigma * sigma
	for i := range k {
		d := float64(i - c)
		k[i] = math.Exp(-d * d / den)
	}
	floats.Scale(1/floats.Sum(k), k)
	return k, nil
}

type borderMode int

const (
	borderReflect101 borderMode = iota
	borderReplicate
)

func borderIndex(i, n int, mode borderMode) int {
	if n == 1 {
		return 0
	}
	switch mode {
	case borderReplicate:
		return clampInt(i, 0, n-1)
	default:
		for i < 0 || i >= n {
			if i < 0 {
				i = -i
			}
			if i >= n {
				i = 2*n - 2 - i
			}
		}
		return i
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundU8(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v))))
}

// convolveSeparable applies k horizontally then vertically and returns the
// unrounded result.
func convolveSeparable(m *Mask, k []float64, mode borderMode) []float64 {
	w, h := m.W, m.H
	c := len(k) / 2
	tmp := make([]float64, w*h)
	for y := range h {
		row := m.Pix[y*w : (y+1)*w]
		for x := range w {
			sum := 0.0
			for i, kv := range k {
				sum += kv * float64(row[borderIndex(x+i-c, w, mode)])
			}
			tmp[y*w+x] = sum
		}
	}
	out := make([]float64, w*h)
	for y := range h {
		for x := range w {
			sum := 0.0
			for i, kv := range k {
				sum += kv * tmp[borderIndex(y+i-c, h, mode)*w+x]
			}
			out[y*w+x] = sum
		}
	}
	return out
}

// Convolve3x3Mask applies the 3x3 kernel k (row-major), divided by the sum
// of its taps, with the edge pixels repeated past the border.
func Convolve3x3Mask(m *Mask, k [9]float64) *Mask {
	out := NewMask(m.W, m.H)
	div := floats.Sum(k[:])
	if div == 0 {
		div = 1
	}
	for y := range m.H {
		for x := range m.W {
			sum := 0.0
			for i, kv := range k {
				sx := borderIndex(x+i%3-1, m.W, borderReplicate)
				sy := borderIndex(y+i/3-1, m.H, borderReplicate)
				sum += kv * float64(m.Pix[sy*m.W+sx])
			}
			out.Pix[y*m.W+x] = roundU8(sum / div)
		}
	}
	return out
}

// GaussianBlurMask smooths m with a ksize×ksize gaussian, reflecting at the
// borders without repeating the edge pixel.
func GaussianBlurMask(m *Mask, ksize int, sigma float64) (*Mask, error) {
	k, err := GaussianKernel(ksize, sigma)
	if err != nil {
		return nil, err
	}
	out := NewMask(m.W, m.H)
	if m.W == 0 || m.H == 0 {
		return out, nil
	}
	for i, v := range convolveSeparable(m, k, borderReflect101) {
		out.Pix[i] = roundU8(v)
	}
	return out, nil
}

// Grayscale converts img to luma using Y = 0.299R + 0.587G + 0.114B.
// Alpha is ignored.
func Grayscale(img *image.NRGBA) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := range m.H {
		row := img.Pix[y*img.Stride:]
		for x := range m.W {
			i := x * 4
			r, g, bl := int(row[i]), int(row[i+1]), int(row[i+2])
			m.Pix[y*m.W+x] = uint8((299*r + 587*g + 114*bl + 500) / 1000)
		}
	}
	return m
}

// Threshold sets pixels above thresh to 255 and the rest to 0.
func Threshold(m *Mask, thresh uint8) *Mask {
	out := NewMask(m.W, m.H)
	for i, v := range m.Pix {
		if v > thresh {
			out.Pix[i] = 255
		}
	}
	return out
}

// ThresholdInv sets pixels at or below thresh to 255 and the rest to 0.
func ThresholdInv(m *Mask, thresh uint8) *Mask {
	return Threshold(m, thresh).Invert()
}

// AdaptiveThresholdInv marks a pixel as foreground when it is not brighter
// than its gaussian weighted blockSize neighbourhood mean minus c. Dark
// strokes on a lighter local surround come out as 255.
func AdaptiveThresholdInv(m *Mask, blockSize int, c float64) (*Mask, error) {
	if blockSize < 3 || blockSize%2 == 0 {
		return nil, fmt.Errorf("%w: adaptive block size %d must be odd and >= 3", ErrInvalidOptions, blockSize)
	}
	k, err := GaussianKernel(blockSize, 0)
	if err != nil {
		return nil, err
	}
	out := NewMask(m.W, m.H)
	if m.W == 0 || m.H == 0 {
		return out, nil
	}
	means := convolveSeparable(m, k, borderReplicate)
	for i, v := range m.Pix {
		mean := float64(roundU8(means[i]))
		if float64(v)-mean <= -c {
			out.Pix[i] = 255
		}
	}
	return out, nil
}
