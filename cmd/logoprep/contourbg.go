package main

import (
	"image"

	"github.com/setanarut/logoprep"
	"github.com/spf13/cobra"
)

var contourBgCmd = &cobra.Command{
	Use:   "contour-bg",
	Short: "Keep large shapes on a light background, make the rest transparent",
	RunE:  runContourBg,
}

func init() {
	def := logoprep.DefaultContourOptions()
	addIOFlags(contourBgCmd, "logo-brain.png", "logo-brain-transparent.png")
	contourBgCmd.Flags().Uint8("threshold", def.Threshold, "Gray level above which a pixel is background")
	contourBgCmd.Flags().Float64("min-area", def.MinArea, "Drop shapes with an area at or below this")
	contourBgCmd.Flags().Int("dilate", def.DilateIterations, "Dilation iterations applied to the kept shapes")
	rootCmd.AddCommand(contourBgCmd)
}

func runContourBg(cmd *cobra.Command, args []string) error {
	opt := logoprep.DefaultContourOptions()
	opt.Threshold, _ = cmd.Flags().GetUint8("threshold")
	opt.MinArea, _ = cmd.Flags().GetFloat64("min-area")
	opt.DilateIterations, _ = cmd.Flags().GetInt("dilate")

	return processFile(cmd, func(img image.Image) (*image.NRGBA, error) {
		return logoprep.RemoveContourBackground(img, opt)
	})
}
