package workflow

import (
	"fmt"
	"image"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/setanarut/logoprep"
	"github.com/setanarut/logoprep/favicon"
)

type op struct {
	run   func(img image.Image, params *yaml.Node) (*image.NRGBA, error)
	check func(params *yaml.Node) error
}

var ops = map[string]op{
	"midtones":           withParams(logoprep.DefaultMidtoneOptions, logoprep.IsolateMidtones),
	"contour-background": withParams(logoprep.DefaultContourOptions, logoprep.RemoveContourBackground),
	"hsv-background":     withParams(logoprep.DefaultHSVOptions, logoprep.RemoveHSVBackground),
	"text":               withParams(logoprep.DefaultTextOptions, logoprep.ExtractText),
	"black-background":   withParams(logoprep.DefaultBlackOptions, logoprep.RemoveBlackBackground),
}

// Ops returns the operation names a step may use.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func withParams[O any](defaults func() O, apply func(image.Image, O) (*image.NRGBA, error)) op {
	return op{
		run: func(img image.Image, params *yaml.Node) (*image.NRGBA, error) {
			opt := defaults()
			if err := decodeParams(params, &opt); err != nil {
				return nil, err
			}
			return apply(img, opt)
		},
		check: func(params *yaml.Node) error {
			opt := defaults()
			return decodeParams(params, &opt)
		},
	}
}

// decodeParams overlays the YAML mapping onto v. An absent node leaves v
// unchanged.
func decodeParams(n *yaml.Node, v any) error {
	if n == nil || n.Kind == 0 {
		return nil
	}
	if err := n.Decode(v); err != nil {
		return fmt.Errorf("decoding params: %w", err)
	}
	return nil
}

func faviconStyle(n *yaml.Node) (favicon.Style, error) {
	style := favicon.DefaultStyle()
	err := decodeParams(n, &style)
	return style, err
}
