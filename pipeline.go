package logoprep

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// smoothKernel is the classic 3x3 SMOOTH filter: a heavier centre tap
// surrounded by ones.
var smoothKernel = [9]float64{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// smooth runs smoothKernel over all four channels. imaging only filters
// the colour channels, so alpha is done separately on a Mask.
func smooth(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	alpha := NewMask(b.Dx(), b.Dy())
	for y := range alpha.H {
		row := img.Pix[y*img.Stride:]
		for x := range alpha.W {
			alpha.Pix[y*alpha.W+x] = row[x*4+3]
		}
	}
	alpha = Convolve3x3Mask(alpha, smoothKernel)

	out := imaging.Convolve3x3(img, smoothKernel, &imaging.ConvolveOptions{Normalize: true})
	for y := range alpha.H {
		row := out.Pix[y*out.Stride:]
		for x := range alpha.W {
			row[x*4+3] = alpha.Pix[y*alpha.W+x]
		}
	}
	return out
}

func prepare(img image.Image) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return imaging.Clone(img), nil
}

func checkKernelSize(name string, n int) error {
	if n <= 0 || n%2 == 0 {
		return fmt.Errorf("%w: %s kernel size %d must be odd and positive", ErrInvalidOptions, name, n)
	}
	return nil
}

// ============ MIDTONES ============

type MidtoneOptions struct {
	// Pixels darker than this mean brightness...
	BackgroundBrightness float64 `yaml:"background_brightness"`
	// ...and less colourful than this are treated as background.
	BackgroundRange uint8 `yaml:"background_range"`
	// Pixels brighter than this are treated as text.
	TextBrightness float64 `yaml:"text_brightness"`
	// Pixels with all channels above this are treated as text too.
	TextChannel uint8 `yaml:"text_channel"`
	// Gaussian sigma applied to the result to soften edges. 0 disables it.
	BlurSigma float64 `yaml:"blur_sigma"`
}

func DefaultMidtoneOptions() MidtoneOptions {
	return MidtoneOptions{
		BackgroundBrightness: 60,
		BackgroundRange:      30,
		TextBrightness:       180,
		TextChannel:          180,
		BlurSigma:            0.5,
	}
}

// IsolateMidtones keeps the coloured mid-tone artwork of a logo and clears
// both the dark background and bright lettering.
func IsolateMidtones(img image.Image, opt MidtoneOptions) (*image.NRGBA, error) {
	if opt.BlurSigma < 0 {
		return nil, fmt.Errorf("%w: blur sigma %v", ErrInvalidOptions, opt.BlurSigma)
	}
	src, err := prepare(img)
	if err != nil {
		return nil, err
	}
	keep := MaskFunc(src, func(c color.NRGBA) bool {
		bright := Brightness(c)
		background := bright < opt.BackgroundBrightness && ColorRange(c) < opt.BackgroundRange
		text := bright > opt.TextBrightness ||
			(c.R > opt.TextChannel && c.G > opt.TextChannel && c.B > opt.TextChannel)
		return !(background || text) && c.A > 0
	})
	out := keep.Apply(src)
	if opt.BlurSigma > 0 {
		out = imaging.Blur(out, opt.BlurSigma)
	}
	return out, nil
}

// ============ CONTOUR BACKGROUND ============

type ContourOptions struct {
	// Gaussian pre-blur kernel size (odd).
	BlurSize int `yaml:"blur_size"`
	// Gray levels above this are background (near-white).
	Threshold uint8 `yaml:"threshold"`
	// Square opening kernel and iterations that remove speckles.
	OpenSize       int `yaml:"open_size"`
	OpenIterations int `yaml:"open_iterations"`
	// Contours with an area at or below this are dropped.
	MinArea float64 `yaml:"min_area"`
	// Square dilation kernel and iterations that grow the kept shapes.
	DilateSize       int `yaml:"dilate_size"`
	DilateIterations int `yaml:"dilate_iterations"`
}

func DefaultContourOptions() ContourOptions {
	return ContourOptions{
		BlurSize:         5,
		Threshold:        240,
		OpenSize:         3,
		OpenIterations:   2,
		MinArea:          500,
		DilateSize:       5,
		DilateIterations: 2,
	}
}

// RemoveContourBackground keeps the large shapes of a logo that differ from
// a near-white background and makes everything else transparent.
func RemoveContourBackground(img image.Image, opt ContourOptions) (*image.NRGBA, error) {
	for _, k := range []struct {
		name string
		size int
	}{{"blur", opt.BlurSize}, {"open", opt.OpenSize}, {"dilate", opt.DilateSize}} {
		if err := checkKernelSize(k.name, k.size); err != nil {
			return nil, err
		}
	}
	src, err := prepare(img)
	if err != nil {
		return nil, err
	}

	// 1. Gray + blur + inverse threshold
	blurred, err := GaussianBlurMask(Grayscale(src), opt.BlurSize, 0)
	if err != nil {
		return nil, err
	}
	fg := Open(ThresholdInv(blurred, opt.Threshold), Square(opt.OpenSize), opt.OpenIterations)

	// 2. Keep only large outer shapes
	mask := NewMask(fg.W, fg.H)
	for _, c := range FindExternalContours(fg) {
		if c.Area() > opt.MinArea {
			mask.FillContour(c)
		}
	}

	// 3. Grow the mask so anti-aliased edges survive
	mask = Dilate(mask, Square(opt.DilateSize), opt.DilateIterations)
	return mask.Apply(src), nil
}

// ============ HSV BACKGROUND ============

type HSVOptions struct {
	// Background colour range in 8-bit HSV.
	Range HSVRange `yaml:"range"`
	// Square kernel used for both the opening and the closing.
	MorphSize       int `yaml:"morph_size"`
	OpenIterations  int `yaml:"open_iterations"`
	CloseIterations int `yaml:"close_iterations"`
	// Gaussian kernel size softening the mask edge (odd).
	BlurSize int `yaml:"blur_size"`
	// Alpha values below this become fully transparent.
	AlphaFloor uint8 `yaml:"alpha_floor"`
	// Run a 3x3 smoothing pass over the final image.
	Smooth bool `yaml:"smooth"`
}

func DefaultHSVOptions() HSVOptions {
	return HSVOptions{
		Range:           DarkHSVRange,
		MorphSize:       3,
		OpenIterations:  1,
		CloseIterations: 2,
		BlurSize:        5,
		AlphaFloor:      10,
		Smooth:          true,
	}
}

// RemoveHSVBackground turns pixels inside opt.Range transparent with a
// soft, blurred alpha edge.
func RemoveHSVBackground(img image.Image, opt HSVOptions) (*image.NRGBA, error) {
	if err := checkKernelSize("morph", opt.MorphSize); err != nil {
		return nil, err
	}
	if err := checkKernelSize("blur", opt.BlurSize); err != nil {
		return nil, err
	}
	src, err := prepare(img)
	if err != nil {
		return nil, err
	}
	bg := MaskFunc(src, opt.Range.Contains)
	k := Square(opt.MorphSize)
	bg = Close(Open(bg, k, opt.OpenIterations), k, opt.CloseIterations)
	bg, err = GaussianBlurMask(bg, opt.BlurSize, 0)
	if err != nil {
		return nil, err
	}
	out := bg.Invert().Alpha(src, opt.AlphaFloor)
	if opt.Smooth {
		out = smooth(out)
	}
	return out, nil
}

// ============ TEXT ============

type TextOptions struct {
	// Adaptive threshold neighbourhood (odd) and offset.
	BlockSize int     `yaml:"block_size"`
	C         float64 `yaml:"c"`
	// Glyph area must lie strictly between MinArea and MaxAreaRatio*W*H.
	MinArea      float64 `yaml:"min_area"`
	MaxAreaRatio float64 `yaml:"max_area_ratio"`
	// Width/height of a glyph bounding box must lie strictly inside
	// (MinAspect, MaxAspect).
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`
	// Square dilation kernel and iterations joining strokes into words.
	DilateSize       int `yaml:"dilate_size"`
	DilateIterations int `yaml:"dilate_iterations"`
}

func DefaultTextOptions() TextOptions {
	return TextOptions{
		BlockSize:        11,
		C:                2,
		MinArea:          50,
		MaxAreaRatio:     0.4,
		MinAspect:        0.1,
		MaxAspect:        5,
		DilateSize:       5,
		DilateIterations: 3,
	}
}

// ExtractText keeps glyph-shaped regions of a logo and makes the rest
// transparent.
func ExtractText(img image.Image, opt TextOptions) (*image.NRGBA, error) {
	if err := checkKernelSize("dilate", opt.DilateSize); err != nil {
		return nil, err
	}
	src, err := prepare(img)
	if err != nil {
		return nil, err
	}
	strokes, err := AdaptiveThresholdInv(Grayscale(src), opt.BlockSize, opt.C)
	if err != nil {
		return nil, err
	}
	maxArea := float64(strokes.W*strokes.H) * opt.MaxAreaRatio
	mask := NewMask(strokes.W, strokes.H)
	for _, c := range FindExternalContours(strokes) {
		area := c.Area()
		if area <= opt.MinArea || area >= maxArea {
			continue
		}
		if ar := c.AspectRatio(); ar > opt.MinAspect && ar < opt.MaxAspect {
			mask.FillContour(c)
		}
	}
	mask = Dilate(mask, Square(opt.DilateSize), opt.DilateIterations)
	return mask.Apply(src), nil
}

// ============ BLACK BACKGROUND ============

type BlackOptions struct {
	// Pixels with R, G and B all below this become transparent.
	Tolerance int `yaml:"tolerance"`
}

func DefaultBlackOptions() BlackOptions {
	return BlackOptions{Tolerance: 30}
}

// RemoveBlackBackground clears the alpha of near-black pixels. Colour
// channels are left untouched.
func RemoveBlackBackground(img image.Image, opt BlackOptions) (*image.NRGBA, error) {
	if opt.Tolerance < 0 || opt.Tolerance > 256 {
		return nil, fmt.Errorf("%w: tolerance %d outside 0..256", ErrInvalidOptions, opt.Tolerance)
	}
	out, err := prepare(img)
	if err != nil {
		return nil, err
	}
	t := opt.Tolerance
	b := out.Bounds()
	for y := range b.Dy() {
		row := out.Pix[y*out.Stride:]
		for x := range b.Dx() {
			i := x * 4
			if int(row[i]) < t && int(row[i+1]) < t && int(row[i+2]) < t {
				row[i+3] = 0
			}
		}
	}
	return out, nil
}
