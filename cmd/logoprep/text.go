package main

import (
	"image"

	"github.com/setanarut/logoprep"
	"github.com/spf13/cobra"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Isolate the lettering of a logo",
	RunE:  runText,
}

func init() {
	def := logoprep.DefaultTextOptions()
	addIOFlags(textCmd, "logo.png", "logo-text.png")
	textCmd.Flags().Int("block", def.BlockSize, "Adaptive threshold block size (odd)")
	textCmd.Flags().Float64("c", def.C, "Adaptive threshold offset")
	textCmd.Flags().Float64("min-area", def.MinArea, "Minimum glyph area")
	textCmd.Flags().Float64("max-area-ratio", def.MaxAreaRatio, "Maximum glyph area as a fraction of the image")
	rootCmd.AddCommand(textCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	opt := logoprep.DefaultTextOptions()
	opt.BlockSize, _ = cmd.Flags().GetInt("block")
	opt.C, _ = cmd.Flags().GetFloat64("c")
	opt.MinArea, _ = cmd.Flags().GetFloat64("min-area")
	opt.MaxAreaRatio, _ = cmd.Flags().GetFloat64("max-area-ratio")

	return processFile(cmd, func(img image.Image) (*image.NRGBA, error) {
		return logoprep.ExtractText(img, opt)
	})
}
