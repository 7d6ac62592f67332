package main

import (
	"fmt"

	"github.com/setanarut/logoprep/utils"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Report image statistics and its dominant palette",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntP("colors", "k", 5, "Palette size")
	inspectCmd.Flags().String("method", "dominantcolor", "Palette method (dominantcolor, kmeans)")
	inspectCmd.Flags().String("palette-out", "", "Write the palette as a swatch strip to this file")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	k, _ := cmd.Flags().GetInt("colors")
	methodStr, _ := cmd.Flags().GetString("method")
	paletteOut, _ := cmd.Flags().GetString("palette-out")

	method, err := utils.ParsePaletteMethod(methodStr)
	if err != nil {
		return err
	}
	img, err := utils.ReadImage(path)
	if err != nil {
		return err
	}

	st := utils.ComputeStats(img)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:        %s\n", path)
	fmt.Fprintf(out, "Dimensions:  %d x %d\n", st.Width, st.Height)
	fmt.Fprintf(out, "Luma:        mean %.1f, stddev %.1f, median %.1f\n", st.MeanLuma, st.StdDevLuma, st.MedianLuma)
	fmt.Fprintf(out, "Transparent: %.1f%%\n", st.Transparent*100)
	fmt.Fprintf(out, "Dark border: %.1f%%\n", st.DarkBorder*100)
	if st.DarkBorder > 0.8 {
		fmt.Fprintln(out, "Hint:        dark background, try hsv-bg or black-bg")
	}

	palette := utils.ExtractPalette(img, k, method)
	utils.SortPaletteByBrightness(palette)
	fmt.Fprintf(out, "Palette (%s, dark → bright):\n", method)
	for _, c := range palette {
		fmt.Fprintf(out, "  %s\n", c.Clamped().Hex())
	}

	if paletteOut != "" && len(palette) > 0 {
		if err := utils.SavePalette(palette, 64, paletteOut); err != nil {
			return err
		}
		fmt.Fprintf(out, "Swatch:      %s\n", paletteOut)
	}
	return nil
}
