package snapshot

import (
	"image"
	"image/color"
	"os"
	"strings"
	"testing"
	"time"

	"hsv-range-finder/internal/hsv"

	"golang.org/x/image/tiff"
)

func solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestWriterSave(t *testing.T) {
	w := NewWriter(t.TempDir())
	w.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	r := hsv.Range{HLow: 100, HHigh: 130, SLow: 50, SHigh: 255, VLow: 50, VHigh: 255}
	paths, err := w.Save(solid(color.RGBA{B: 255, A: 255}), solid(color.RGBA{A: 255}), Sidecar{
		Camera:   1,
		Mode:     hsv.OutputMasked.String(),
		Coverage: 0.25,
		Range:    r,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	if !strings.HasSuffix(paths[0], "-raw.tiff") || !strings.HasSuffix(paths[1], "-masked.tiff") {
		t.Errorf("image paths = %v", paths[:2])
	}
	if !strings.Contains(paths[0], "20260304-050607-") {
		t.Errorf("raw path missing timestamp: %s", paths[0])
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("decode raw tiff: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("raw bounds = %v", img.Bounds())
	}
	if _, _, b, _ := img.At(3, 3).RGBA(); b>>8 != 255 {
		t.Errorf("raw pixel blue = %d, want 255", b>>8)
	}

	meta, err := ReadSidecar(paths[2])
	if err != nil {
		t.Fatalf("ReadSidecar: %v", err)
	}
	if meta.Range != r || meta.Coverage != 0.25 || meta.Camera != 1 {
		t.Errorf("sidecar = %+v", meta)
	}
	if len(meta.ID) != 36 {
		t.Errorf("sidecar id = %q, want uuid", meta.ID)
	}
}

func TestWriterSaveNoFrame(t *testing.T) {
	w := NewWriter(t.TempDir())
	if _, err := w.Save(nil, nil, Sidecar{Mode: "masked"}); err == nil {
		t.Fatal("expected error without frames")
	}
}
