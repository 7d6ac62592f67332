// Package favicon renders the site favicon set: a stylised letter on a dark
// disc, or an existing logo scaled into square canvases.
package favicon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	ico "github.com/sergeymakinen/go-ico"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/setanarut/logoprep/utils"
)

// DefaultSizes are the icon sizes the site links to.
var DefaultSizes = []int{16, 32, 48, 192}

// IcoSize is the resolution embedded in favicon.ico.
const IcoSize = 32

var ErrInvalidSize = errors.New("favicon: size must be positive")

// RGB is an opaque colour, written as [r, g, b] in YAML.
type RGB [3]uint8

func (c RGB) nrgba(a uint8) color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: a}
}

type Style struct {
	Background      RGB   `yaml:"background"`
	BackgroundAlpha uint8 `yaml:"background_alpha"`
	Glyph           RGB   `yaml:"glyph"`
	Highlight       RGB   `yaml:"highlight"`
	Outline         RGB   `yaml:"outline"`
	// Disc inset from each edge, as a fraction of the size.
	Padding float64 `yaml:"padding"`
	// Font size as a fraction of the size.
	FontScale float64 `yaml:"font_scale"`
	// Up-left shift of the highlight pass, as a fraction of the size.
	HighlightOffset float64 `yaml:"highlight_offset"`
	Text            string  `yaml:"text"`
	// Optional TrueType file. The embedded Go Bold face is used when empty
	// or unreadable.
	FontPath string `yaml:"font_path"`
}

func DefaultStyle() Style {
	return Style{
		Background:      RGB{18, 18, 18},
		BackgroundAlpha: 250,
		Glyph:           RGB{180, 180, 180},
		Highlight:       RGB{230, 230, 230},
		Outline:         RGB{240, 240, 240},
		Padding:         0.08,
		FontScale:       0.75,
		HighlightOffset: 0.02,
		Text:            "S",
	}
}

var goBold = sync.OnceValue(func() *truetype.Font {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		panic(err) // embedded font is always valid
	}
	return f
})

func loadFace(path string, points float64) font.Face {
	if path != "" {
		if face, err := gg.LoadFontFace(path, points); err == nil {
			return face
		}
	}
	return truetype.NewFace(goBold(), &truetype.Options{Size: points, Hinting: font.HintingFull})
}

// Draw renders the glyph favicon at size×size on a transparent canvas.
func Draw(size int, style Style) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	s := float64(size)
	dc := gg.NewContext(size, size)

	pad := float64(int(s * style.Padding))
	bg := style.Background.nrgba(style.BackgroundAlpha)
	dc.SetColor(bg)
	dc.DrawCircle(s/2, s/2, (s-2*pad)/2)
	dc.Fill()

	text := style.Text
	if text == "" {
		text = "S"
	}
	face := loadFace(style.FontPath, float64(max(1, int(s*style.FontScale))))
	dc.SetFontFace(face)

	// Centre the ink box, not the advance box.
	ink, _ := font.BoundString(face, text)
	inkW := float64(ink.Max.X-ink.Min.X) / 64
	inkH := float64(ink.Max.Y-ink.Min.Y) / 64
	x := (s-inkW)/2 - float64(ink.Min.X)/64
	y := (s-inkH)/2 - float64(ink.Min.Y)/64

	dc.SetColor(style.Outline.nrgba(255))
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dc.DrawString(text, x+float64(dx), y+float64(dy))
		}
	}
	off := float64(int(s * style.HighlightOffset))
	dc.SetColor(style.Highlight.nrgba(255))
	dc.DrawString(text, x-off, y-off)
	dc.SetColor(style.Glyph.nrgba(255))
	dc.DrawString(text, x, y)

	return imaging.Clone(dc.Image()), nil
}

// FromImage scales src to fit a size×size transparent canvas, keeping the
// aspect ratio and centring it.
func FromImage(src image.Image, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	sb := src.Bounds()
	if sb.Empty() {
		return nil, errors.New("favicon: empty source image")
	}
	scale := min(float64(size)/float64(sb.Dx()), float64(size)/float64(sb.Dy()))
	w := max(1, int(float64(sb.Dx())*scale+0.5))
	h := max(1, int(float64(sb.Dy())*scale+0.5))

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	offX, offY := (size-w)/2, (size-h)/2
	xdraw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+w, offY+h), src, sb, xdraw.Over, nil)
	return dst, nil
}

// Source renders one icon at the requested size.
type Source func(size int) (*image.NRGBA, error)

func Glyph(style Style) Source {
	return func(size int) (*image.NRGBA, error) {
		return Draw(size, style)
	}
}

func Scaled(src image.Image) Source {
	return func(size int) (*image.NRGBA, error) {
		return FromImage(src, size)
	}
}

// WriteSet writes dir/favicon.png at the largest size, one
// dir/favicon/favicon-NxN.png per size and dir/favicon.ico. The largest
// size is rendered once and reused. It returns the written paths.
func WriteSet(dir string, sizes []int, src Source) ([]string, error) {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	for _, n := range sizes {
		if n <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
		}
	}
	largest := slices.Max(sizes)
	top, err := src(largest)
	if err != nil {
		return nil, fmt.Errorf("rendering %dpx: %w", largest, err)
	}

	var written []string
	save := func(img image.Image, path string) error {
		if err := utils.SaveImage(img, path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := save(top, filepath.Join(dir, "favicon.png")); err != nil {
		return written, err
	}
	for _, n := range sizes {
		img := top
		if n != largest {
			// Re-render rather than downscale; small sizes stay crisp.
			if img, err = src(n); err != nil {
				return written, fmt.Errorf("rendering %dpx: %w", n, err)
			}
		}
		path := filepath.Join(dir, "favicon", fmt.Sprintf("favicon-%dx%d.png", n, n))
		if err := save(img, path); err != nil {
			return written, err
		}
	}

	icon, err := src(IcoSize)
	if err != nil {
		return written, fmt.Errorf("rendering ico: %w", err)
	}
	var buf bytes.Buffer
	if err := ico.Encode(&buf, icon); err != nil {
		return written, fmt.Errorf("encoding ico: %w", err)
	}
	icoPath := filepath.Join(dir, "favicon.ico")
	if err := os.WriteFile(icoPath, buf.Bytes(), 0o644); err != nil {
		return written, fmt.Errorf("writing %s: %w", icoPath, err)
	}
	written = append(written, icoPath)
	return written, nil
}
