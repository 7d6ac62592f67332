package utils

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(s) {
	case "", "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	default:
		return 0, fmt.Errorf("unknown palette method: %q", s)
	}
}

// Swatch is a palette candidate with its share of the image.
type Swatch struct {
	Col    colorful.Color
	Weight float64
}

// ============ I/O ============

// ReadImage decodes any format imaging understands and applies the EXIF
// orientation. A missing file yields an error wrapping fs.ErrNotExist.
func ReadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return img, nil
}

// SaveImage writes img in the format implied by the file extension,
// creating parent directories as needed.
func SaveImage(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SavePalette writes the palette as a strip of square tiles.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewNRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		img = imaging.Paste(img, imaging.New(tileSize, tileSize, color.NRGBA{R: r, G: g, B: b, A: 255}), tile.Min)
	}
	return SaveImage(img, filename)
}

// ============ PALETTE ============

// SortPaletteByBrightness orders colors from darkest to brightest by
// relative luminance, so a dark logo background ends up first.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ya, yb := luminance(a), luminance(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		if p := ExtractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	found := dominantcolor.FindWeight(img, max(16, k*6))
	swatches := make([]Swatch, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		swatches = append(swatches, Swatch{Col: col.Clamped(), Weight: max(c.Weight, 1e-6)})
	}
	return PickDistinct(swatches, k)
}

// ExtractKMeansPalette clusters the opaque pixels of img in RGB space.
// Large images are subsampled on a regular grid.
func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	const maxSamples = 10000
	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Sqrt(float64(n)/maxSamples)) + 1
	}

	var obs clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			obs = append(obs, clusters.Coordinates{
				float64(c.R) / 255.0,
				float64(c.G) / 255.0,
				float64(c.B) / 255.0,
			})
		}
	}
	if len(obs) == 0 {
		return nil
	}

	groups, err := kmeans.New().Partition(obs, min(k*3, len(obs)))
	if err != nil {
		return nil
	}
	swatches := make([]Swatch, 0, len(groups))
	for _, g := range groups {
		if len(g.Observations) == 0 || len(g.Center) < 3 {
			continue
		}
		swatches = append(swatches, Swatch{
			Col:    colorful.Color{R: g.Center[0], G: g.Center[1], B: g.Center[2]}.Clamped(),
			Weight: float64(len(g.Observations)),
		})
	}
	return PickDistinct(swatches, k)
}

// PickDistinct greedily selects k swatches, starting from the heaviest and
// then always taking the one farthest (in Lab) from what was already
// chosen, scaled by its weight.
func PickDistinct(swatches []Swatch, k int) []colorful.Color {
	if k <= 0 || len(swatches) == 0 {
		return nil
	}
	k = min(k, len(swatches))
	heaviest := slices.MaxFunc(swatches, func(a, b Swatch) int {
		switch {
		case a.Weight < b.Weight:
			return -1
		case a.Weight > b.Weight:
			return 1
		}
		return 0
	}).Weight

	picked := make([]bool, len(swatches))
	var out []colorful.Color
	for len(out) < k {
		best, bestScore := -1, -1.0
		for i, s := range swatches {
			if picked[i] {
				continue
			}
			score := s.Weight / heaviest
			if len(out) > 0 {
				nearest := math.MaxFloat64
				for _, o := range out {
					nearest = min(nearest, s.Col.DistanceLab(o))
				}
				score = nearest * (0.5 + 0.5*math.Sqrt(score))
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		picked[best] = true
		out = append(out, swatches[best].Col)
	}
	return out
}

// ============ STATS ============

type Stats struct {
	Width, Height int
	// Luma statistics over pixels with non-zero alpha.
	MeanLuma, StdDevLuma, MedianLuma float64
	// Fraction of fully transparent pixels.
	Transparent float64
	// Fraction of the outermost pixel ring that is opaque and darker than
	// DarkLuma. A value close to 1 suggests a dark background.
	DarkBorder float64
}

// DarkLuma is the luma below which a border pixel counts as dark.
const DarkLuma = 60

func ComputeStats(img image.Image) Stats {
	b := img.Bounds()
	st := Stats{Width: b.Dx(), Height: b.Dy()}
	if b.Empty() {
		return st
	}
	lumas := make([]float64, 0, b.Dx()*b.Dy())
	transparent, border, darkBorder := 0, 0, 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			onBorder := x == b.Min.X || y == b.Min.Y || x == b.Max.X-1 || y == b.Max.Y-1
			if onBorder {
				border++
			}
			if c.A == 0 {
				transparent++
				continue
			}
			l := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			lumas = append(lumas, l)
			if onBorder && l < DarkLuma {
				darkBorder++
			}
		}
	}
	st.Transparent = float64(transparent) / float64(b.Dx()*b.Dy())
	st.DarkBorder = float64(darkBorder) / float64(border)
	if len(lumas) > 0 {
		st.MeanLuma, st.StdDevLuma = stat.MeanStdDev(lumas, nil)
		if len(lumas) == 1 {
			st.StdDevLuma = 0
		}
		slices.Sort(lumas)
		st.MedianLuma = stat.Quantile(0.5, stat.Empirical, lumas, nil)
	}
	return st
}
