package workflow

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/setanarut/logoprep/utils"
)

// writeLogo saves a 20x20 image: black frame, grey (80) ring, white centre.
func writeLogo(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := range 20 {
		for x := range 20 {
			c := color.NRGBA{A: 255}
			switch {
			case x >= 8 && x < 12 && y >= 8 && y < 12:
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			case x >= 4 && x < 16 && y >= 4 && y < 16:
				c = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	if err := utils.SaveImage(img, path); err != nil {
		t.Fatal(err)
	}
}

func writeConfig(t *testing.T, dir, data string) *Config {
	t.Helper()
	path := filepath.Join(dir, "logoprep.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func alphaAt(t *testing.T, path string, x, y int) uint8 {
	t.Helper()
	img, err := utils.ReadImage(path)
	if err != nil {
		t.Fatal(err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA).A
}

func TestRunParamsOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	writeLogo(t, filepath.Join(dir, "logo.png"))
	cfg := writeConfig(t, dir, `
steps:
  - op: black-background
    input: logo.png
    output: out/default.png
  - op: black-background
    input: logo.png
    output: out/loose.png
    params:
      tolerance: 100
`)
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	def := filepath.Join(dir, "out", "default.png")
	loose := filepath.Join(dir, "out", "loose.png")
	if a := alphaAt(t, def, 0, 0); a != 0 {
		t.Errorf("default: frame alpha = %d, want 0", a)
	}
	if a := alphaAt(t, def, 5, 5); a != 255 {
		t.Errorf("default: ring alpha = %d, want 255", a)
	}
	if a := alphaAt(t, loose, 5, 5); a != 0 {
		t.Errorf("tolerance 100: ring alpha = %d, want 0", a)
	}
	if a := alphaAt(t, loose, 10, 10); a != 255 {
		t.Errorf("tolerance 100: centre alpha = %d, want 255", a)
	}
}

func TestRunChainsSteps(t *testing.T) {
	dir := t.TempDir()
	writeLogo(t, filepath.Join(dir, "logo.png"))
	cfg := writeConfig(t, dir, `
steps:
  - op: midtones
    input: logo.png
    output: brain.png
  - op: black-background
    input: brain.png
    output: final.png
`)
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"brain.png", "final.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRunWrapsStepError(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, `
steps:
  - op: black-background
    input: missing.png
    output: out.png
`)
	err := Run(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "step 1 (black-background)") {
		t.Errorf("error %q lacks step context", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %q does not wrap fs.ErrNotExist", err)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	writeLogo(t, filepath.Join(dir, "logo.png"))
	cfg := writeConfig(t, dir, `
steps:
  - op: text
    input: logo.png
    output: text.png
`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "text.png")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("cancelled run still wrote output")
	}
}

func TestRunFavicon(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, `
favicon:
  dir: site
  sizes: [16, 32]
  style:
    text: L
`)
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"favicon.png",
		"favicon.ico",
		filepath.Join("favicon", "favicon-16x16.png"),
		filepath.Join("favicon", "favicon-32x32.png"),
	} {
		if _, err := os.Stat(filepath.Join(dir, "site", name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	img, err := utils.ReadImage(filepath.Join(dir, "site", "favicon.png"))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("favicon.png width = %d, want 32", img.Bounds().Dx())
	}
}

func TestWatchedInputs(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, `
steps:
  - op: midtones
    input: a.png
    output: b.png
  - op: text
    input: b.png
    output: c.png
  - op: black-background
    input: d.png
    output: d.png
favicon:
  source: c.png
`)
	got, err := watchedInputs(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "a.png")
	if len(got) != 1 || !got[want] {
		t.Errorf("watchedInputs = %v, want only %s", got, want)
	}
}

func TestWatchRunsOnceAndStops(t *testing.T) {
	dir := t.TempDir()
	writeLogo(t, filepath.Join(dir, "logo.png"))
	cfg := writeConfig(t, dir, `
steps:
  - op: black-background
    input: logo.png
    output: out.png
`)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, cfg, 10*time.Millisecond) }()

	out := filepath.Join(dir, "out.png")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(out); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("initial run did not write output")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

// logBuffer captures the standard logger for the duration of a test.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) count(s string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), s)
}

func captureLog(t *testing.T) *logBuffer {
	t.Helper()
	b := &logBuffer{}
	prev := log.Writer()
	log.SetOutput(b)
	t.Cleanup(func() { log.SetOutput(prev) })
	return b
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// startWatch runs Watch in the background and waits for the initial run.
func startWatch(t *testing.T, debounce time.Duration) (dir string, logs *logBuffer) {
	t.Helper()
	logs = captureLog(t)
	dir = t.TempDir()
	writeLogo(t, filepath.Join(dir, "logo.png"))
	cfg := writeConfig(t, dir, `
steps:
  - op: black-background
    input: logo.png
    output: out.png
`)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, cfg, debounce) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("Watch did not stop after cancel")
		}
	})
	waitFor(t, "initial run", func() bool { return logs.count("black-background: ") == 1 })
	return dir, logs
}

func TestWatchRerunsOnInputChange(t *testing.T) {
	dir, logs := startWatch(t, 20*time.Millisecond)
	out := filepath.Join(dir, "out.png")
	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}

	writeLogo(t, filepath.Join(dir, "logo.png"))
	waitFor(t, "re-run", func() bool {
		_, err := os.Stat(out)
		return err == nil && logs.count("black-background: ") == 2
	})
	if n := logs.count("input changed"); n < 1 {
		t.Errorf("%d re-runs logged, want at least 1", n)
	}
}

func TestWatchDebouncesBurst(t *testing.T) {
	const debounce = 300 * time.Millisecond
	dir, logs := startWatch(t, debounce)

	for range 5 {
		writeLogo(t, filepath.Join(dir, "logo.png"))
		time.Sleep(10 * time.Millisecond)
	}
	waitFor(t, "re-run", func() bool { return logs.count("black-background: ") == 2 })
	time.Sleep(3 * debounce)
	if n := logs.count("input changed"); n != 1 {
		t.Errorf("burst of writes gave %d re-runs, want 1", n)
	}
}

func TestWatchIgnoresOutputs(t *testing.T) {
	const debounce = 20 * time.Millisecond
	dir, logs := startWatch(t, debounce)

	writeLogo(t, filepath.Join(dir, "out.png"))
	time.Sleep(20 * debounce)
	if n := logs.count("input changed"); n != 0 {
		t.Errorf("writing the output triggered %d re-runs", n)
	}
}
