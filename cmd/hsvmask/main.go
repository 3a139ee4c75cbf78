// Command hsvmask applies an HSV range to a still image and writes the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"hsv-range-finder/internal/config"
	"hsv-range-finder/internal/hsv"
	"hsv-range-finder/internal/preset"
	"hsv-range-finder/internal/version"

	"gocv.io/x/gocv"
)

func main() {
	imagePath := flag.String("image", "", "Path to input image")
	outPath := flag.String("out", "", "Path for the processed image (default <image>-mask.png)")
	presetName := flag.String("preset", "", "Named preset to apply")
	presetsPath := flag.String("presets", "", "Preset store (default from config)")
	presetFile := flag.String("preset-file", "", "Apply a preset from a .yaml or .toml file")
	hueFlag := flag.String("h", "", "Hue bounds lo:hi")
	satFlag := flag.String("s", "", "Saturation bounds lo:hi")
	valFlag := flag.String("v", "", "Value bounds lo:hi")
	binary := flag.Bool("binary", false, "Write the binary mask instead of the masked image")
	fullHue := flag.Bool("full-hue", false, "Use the 0-255 hue scale")
	refine := flag.Float64("refine", 0, "Print a refined range at mean ± k·σ of the selection")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: hsvmask -image <path> [-preset name | -preset-file path | -h lo:hi -s lo:hi -v lo:hi] [-binary] [-full-hue] [-out path]")
		os.Exit(1)
	}

	r, hueFull, err := resolveRange(*presetName, *presetsPath, *presetFile, *fullHue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	for c, spec := range map[hsv.Channel]string{hsv.Hue: *hueFlag, hsv.Saturation: *satFlag, hsv.Value: *valFlag} {
		if spec == "" {
			continue
		}
		lo, hi, err := parseBounds(spec, c.Max(hueFull))
		if err != nil {
			fmt.Fprintf(os.Stderr, "-%s: %v\n", strings.ToLower(c.String()), err)
			os.Exit(1)
		}
		r = r.WithLow(c, lo).WithHigh(c, hi)
	}
	r = r.Normalize(hueFull)

	frame := gocv.IMRead(*imagePath, gocv.IMReadColor)
	if frame.Empty() {
		fmt.Fprintf(os.Stderr, "Failed to read image: %s\n", *imagePath)
		os.Exit(1)
	}
	defer frame.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", frame.Cols(), frame.Rows())
	fmt.Printf("Range: %s (hue scale 0-%d)\n", r, hsv.Hue.Max(hueFull))

	mode := hsv.OutputMasked
	if *binary {
		mode = hsv.OutputBinary
	}

	proc := hsv.NewProcessor()
	defer proc.Close()

	out, err := proc.Process(frame, r, hueFull, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Mask coverage: %.2f%%\n", hsv.Coverage(proc.LastMask())*100)

	if *refine > 0 {
		refined, st, err := hsv.Refine(proc.HSV(), proc.LastMask(), *refine, hueFull)
		switch {
		case errors.Is(err, hsv.ErrNoMaskedPixels):
			fmt.Println("Nothing selected, cannot refine")
		case err != nil:
			fmt.Fprintf(os.Stderr, "Refine failed: %v\n", err)
		default:
			fmt.Printf("Selection: %s\n", st)
			fmt.Printf("Refined:   %s\n", refined)
		}
	}

	dst := *outPath
	if dst == "" {
		dst = defaultOutPath(*imagePath)
	}
	if ok := gocv.IMWrite(dst, out); !ok {
		fmt.Fprintf(os.Stderr, "Failed to write %s\n", dst)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%s)\n", dst, mode)
}

// resolveRange picks the starting range: an explicit preset file, a named
// preset from the store, or the full range.
func resolveRange(name, storePath, file string, fullHue bool) (hsv.Range, bool, error) {
	switch {
	case file != "":
		p, err := preset.ReadFile(file)
		if err != nil {
			return hsv.Range{}, false, err
		}
		return p.Range, p.HueFullRange, nil
	case name != "":
		if storePath == "" {
			storePath = config.Default().Presets.Path
		}
		store, err := preset.Load(storePath)
		if err != nil {
			return hsv.Range{}, false, err
		}
		p, err := store.Get(name)
		if err != nil {
			return hsv.Range{}, false, fmt.Errorf("preset %q: %w", name, err)
		}
		return p.Range, p.HueFullRange, nil
	default:
		return hsv.FullRange(fullHue), fullHue, nil
	}
}

// parseBounds parses "lo:hi" and checks both ends lie within 0..max.
func parseBounds(spec string, max int) (lo, hi int, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bounds %q: want lo:hi", spec)
	}
	if lo, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, fmt.Errorf("bounds %q: low: %w", spec, err)
	}
	if hi, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, fmt.Errorf("bounds %q: high: %w", spec, err)
	}
	if lo < 0 || hi > max {
		return 0, 0, fmt.Errorf("bounds %q: outside 0-%d", spec, max)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("bounds %q: low exceeds high", spec)
	}
	return lo, hi, nil
}

func defaultOutPath(in string) string {
	ext := ""
	if i := strings.LastIndex(in, "."); i > strings.LastIndex(in, "/") {
		in, ext = in[:i], in[i:]
	}
	if ext == "" || strings.EqualFold(ext, ".gif") {
		ext = ".png"
	}
	return in + "-mask" + ext
}
