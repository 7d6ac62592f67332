package main

import (
	"fmt"
	"image"
	"os"

	"github.com/setanarut/logoprep/utils"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "logoprep",
	Short:         "Prepare logo images for the web: strip backgrounds, isolate text, build favicons",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addIOFlags registers -i/-o with the given default file names.
func addIOFlags(cmd *cobra.Command, input, output string) {
	cmd.Flags().StringP("input", "i", input, "Input image")
	cmd.Flags().StringP("output", "o", output, "Output image (format from extension)")
}

// processFile reads the -i image, applies fn and writes the -o image.
func processFile(cmd *cobra.Command, fn func(image.Image) (*image.NRGBA, error)) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	img, err := utils.ReadImage(inputPath)
	if err != nil {
		return err
	}
	result, err := fn(img)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if err := utils.SaveImage(result, outputPath); err != nil {
		return err
	}

	b := result.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %dx%d: %s → %s\n", b.Dx(), b.Dy(), inputPath, outputPath)
	return nil
}
