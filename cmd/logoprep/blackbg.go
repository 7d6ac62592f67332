package main

import (
	"image"

	"github.com/setanarut/logoprep"
	"github.com/spf13/cobra"
)

var blackBgCmd = &cobra.Command{
	Use:   "black-bg",
	Short: "Make near-black pixels transparent",
	RunE:  runBlackBg,
}

func init() {
	addIOFlags(blackBgCmd, "logo-text.png", "logo-text-transparent.png")
	blackBgCmd.Flags().Int("tolerance", logoprep.DefaultBlackOptions().Tolerance, "Channels below this count as black")
	rootCmd.AddCommand(blackBgCmd)
}

func runBlackBg(cmd *cobra.Command, args []string) error {
	tolerance, _ := cmd.Flags().GetInt("tolerance")
	return processFile(cmd, func(img image.Image) (*image.NRGBA, error) {
		return logoprep.RemoveBlackBackground(img, logoprep.BlackOptions{Tolerance: tolerance})
	})
}
