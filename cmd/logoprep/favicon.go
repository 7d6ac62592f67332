package main

import (
	"fmt"

	"github.com/setanarut/logoprep/favicon"
	"github.com/setanarut/logoprep/utils"
	"github.com/spf13/cobra"
)

var faviconCmd = &cobra.Command{
	Use:   "favicon",
	Short: "Generate the favicon set (favicon.png, favicon/favicon-NxN.png, favicon.ico)",
	RunE:  runFavicon,
}

func init() {
	faviconCmd.Flags().String("dir", ".", "Output directory")
	faviconCmd.Flags().IntSlice("sizes", favicon.DefaultSizes, "Icon sizes in pixels")
	faviconCmd.Flags().String("from", "", "Scale this image instead of drawing the glyph")
	faviconCmd.Flags().String("font", "", "TrueType font for the glyph (default: embedded Go Bold)")
	faviconCmd.Flags().String("text", favicon.DefaultStyle().Text, "Glyph text")
	rootCmd.AddCommand(faviconCmd)
}

func runFavicon(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	sizes, _ := cmd.Flags().GetIntSlice("sizes")
	from, _ := cmd.Flags().GetString("from")

	style := favicon.DefaultStyle()
	style.FontPath, _ = cmd.Flags().GetString("font")
	style.Text, _ = cmd.Flags().GetString("text")

	src := favicon.Glyph(style)
	if from != "" {
		img, err := utils.ReadImage(from)
		if err != nil {
			return err
		}
		src = favicon.Scaled(img)
	}

	written, err := favicon.WriteSet(dir, sizes, src)
	if err != nil {
		return fmt.Errorf("favicon: %w", err)
	}
	for _, p := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
	}
	return nil
}
