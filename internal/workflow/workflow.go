package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/setanarut/logoprep/favicon"
	"github.com/setanarut/logoprep/utils"
)

// Run executes the steps in order and then writes the favicon set. It
// stops at the first failure.
func Run(ctx context.Context, cfg *Config) error {
	for i, st := range cfg.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runStep(cfg, st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
	}
	if cfg.Favicon == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return runFavicon(cfg, cfg.Favicon)
}

func runStep(cfg *Config, st Step) error {
	start := time.Now()
	in, out := cfg.resolve(st.Input), cfg.resolve(st.Output)
	img, err := utils.ReadImage(in)
	if err != nil {
		return err
	}
	res, err := ops[st.Op].run(img, &st.Params)
	if err != nil {
		return err
	}
	if err := utils.SaveImage(res, out); err != nil {
		return err
	}
	log.Printf("%s: %s -> %s (%s)", st.Op, in, out, time.Since(start).Round(time.Millisecond))
	return nil
}

func runFavicon(cfg *Config, f *FaviconConfig) error {
	style, err := faviconStyle(&f.Style)
	if err != nil {
		return fmt.Errorf("favicon: %w", err)
	}
	style.FontPath = cfg.resolve(style.FontPath)
	src := favicon.Glyph(style)
	if f.Source != "" {
		img, err := utils.ReadImage(cfg.resolve(f.Source))
		if err != nil {
			return fmt.Errorf("favicon: %w", err)
		}
		src = favicon.Scaled(img)
	}
	dir := cfg.resolve(f.Dir)
	if dir == "" {
		dir = cfg.resolve(".")
	}
	written, err := favicon.WriteSet(dir, f.Sizes, src)
	if err != nil {
		return fmt.Errorf("favicon: %w", err)
	}
	log.Printf("favicon: wrote %d files to %s", len(written), dir)
	return nil
}
