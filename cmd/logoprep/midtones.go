package main

import (
	"image"

	"github.com/setanarut/logoprep"
	"github.com/spf13/cobra"
)

var midtonesCmd = &cobra.Command{
	Use:   "midtones",
	Short: "Keep coloured mid-tone artwork, drop the dark background and bright text",
	RunE:  runMidtones,
}

func init() {
	def := logoprep.DefaultMidtoneOptions()
	addIOFlags(midtonesCmd, "logo.png", "logo-brain.png")
	midtonesCmd.Flags().Float64("bg-brightness", def.BackgroundBrightness, "Background: mean brightness below this")
	midtonesCmd.Flags().Uint8("bg-range", def.BackgroundRange, "Background: colour range below this")
	midtonesCmd.Flags().Float64("text-brightness", def.TextBrightness, "Text: mean brightness above this")
	midtonesCmd.Flags().Float64("blur", def.BlurSigma, "Gaussian sigma for edge softening (0 disables)")
	rootCmd.AddCommand(midtonesCmd)
}

func runMidtones(cmd *cobra.Command, args []string) error {
	opt := logoprep.DefaultMidtoneOptions()
	opt.BackgroundBrightness, _ = cmd.Flags().GetFloat64("bg-brightness")
	opt.BackgroundRange, _ = cmd.Flags().GetUint8("bg-range")
	opt.TextBrightness, _ = cmd.Flags().GetFloat64("text-brightness")
	opt.BlurSigma, _ = cmd.Flags().GetFloat64("blur")

	return processFile(cmd, func(img image.Image) (*image.NRGBA, error) {
		return logoprep.IsolateMidtones(img, opt)
	})
}
