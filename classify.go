package logoprep

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Brightness is the plain channel mean (R+G+B)/3 in [0,255].
func Brightness(c color.NRGBA) float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// ColorRange is max(R,G,B) - min(R,G,B), a cheap colourfulness measure.
// Grays have range 0.
func ColorRange(c color.NRGBA) uint8 {
	return max(c.R, c.G, c.B) - min(c.R, c.G, c.B)
}

// HSV8 converts c to the 8-bit HSV convention: H in [0,180), S and V in
// [0,255]. Alpha is ignored.
func HSV8(c color.NRGBA) (h, s, v float64) {
	col := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	hh, ss, vv := col.Hsv()
	h = math.Round(hh / 2)
	if h >= 180 {
		h -= 180
	}
	return h, math.Round(ss * 255), math.Round(vv * 255)
}

// HSVRange is an inclusive box in 8-bit HSV space.
type HSVRange struct {
	Lower [3]float64 `yaml:"lower"`
	Upper [3]float64 `yaml:"upper"`
}

// DarkHSVRange covers every hue and saturation up to value 50, i.e. black
// and dark gray backgrounds.
var DarkHSVRange = HSVRange{
	Lower: [3]float64{0, 0, 0},
	Upper: [3]float64{180, 255, 50},
}

func (r HSVRange) Contains(c color.NRGBA) bool {
	h, s, v := HSV8(c)
	hsv := [3]float64{h, s, v}
	for i := range hsv {
		if hsv[i] < r.Lower[i] || hsv[i] > r.Upper[i] {
			return false
		}
	}
	return true
}
