package main

import (
	"image"

	"github.com/setanarut/logoprep"
	"github.com/spf13/cobra"
)

var hsvBgCmd = &cobra.Command{
	Use:   "hsv-bg",
	Short: "Remove a dark background with a soft alpha edge",
	RunE:  runHSVBg,
}

func init() {
	def := logoprep.DefaultHSVOptions()
	addIOFlags(hsvBgCmd, "logo-brain.png", "logo-brain-transparent.png")
	hsvBgCmd.Flags().Float64("max-value", def.Range.Upper[2], "HSV value (0-255) at or below which a pixel is background")
	hsvBgCmd.Flags().Uint8("alpha-floor", def.AlphaFloor, "Alpha below this becomes fully transparent")
	hsvBgCmd.Flags().Bool("smooth", def.Smooth, "Apply a 3x3 smoothing pass to the result")
	rootCmd.AddCommand(hsvBgCmd)
}

func runHSVBg(cmd *cobra.Command, args []string) error {
	opt := logoprep.DefaultHSVOptions()
	opt.Range.Upper[2], _ = cmd.Flags().GetFloat64("max-value")
	opt.AlphaFloor, _ = cmd.Flags().GetUint8("alpha-floor")
	opt.Smooth, _ = cmd.Flags().GetBool("smooth")

	return processFile(cmd, func(img image.Image) (*image.NRGBA, error) {
		return logoprep.RemoveHSVBackground(img, opt)
	})
}
