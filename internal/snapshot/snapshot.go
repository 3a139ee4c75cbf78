// Package snapshot exports the current raw and processed frames together
// with the range that produced them.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"hsv-range-finder/internal/hsv"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"golang.org/x/image/tiff"
)

// Sidecar is written next to the images.
type Sidecar struct {
	ID           string    `toml:"id"`
	Captured     time.Time `toml:"captured"`
	Camera       int       `toml:"camera"`
	Mode         string    `toml:"mode"`
	HueFullRange bool      `toml:"hue_full_range"`
	Coverage     float64   `toml:"coverage"`
	Range        hsv.Range `toml:"range"`
}

// Writer saves snapshots into Dir.
type Writer struct {
	Dir string
	now func() time.Time
}

// NewWriter creates a writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, now: time.Now}
}

// Save writes raw and processed TIFFs and the TOML sidecar. It returns the
// paths written, raw first.
func (w *Writer) Save(raw, processed image.Image, meta Sidecar) ([]string, error) {
	if raw == nil || processed == nil {
		return nil, errors.New("no frame to save")
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir snapshot dir: %w", err)
	}

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Captured.IsZero() {
		meta.Captured = w.now()
	}
	base := fmt.Sprintf("%s-%s", meta.Captured.Format("20060102-150405"), meta.ID[:8])

	rawPath := filepath.Join(w.Dir, base+"-raw.tiff")
	procPath := filepath.Join(w.Dir, base+"-"+meta.Mode+".tiff")
	metaPath := filepath.Join(w.Dir, base+".toml")

	if err := writeTIFF(rawPath, raw); err != nil {
		return nil, err
	}
	if err := writeTIFF(procPath, processed); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(meta); err != nil {
		return nil, fmt.Errorf("encode sidecar: %w", err)
	}
	if err := os.WriteFile(metaPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write sidecar: %w", err)
	}

	return []string{rawPath, procPath, metaPath}, nil
}

func writeTIFF(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ReadSidecar loads a sidecar written by Save.
func ReadSidecar(path string) (Sidecar, error) {
	var s Sidecar
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Sidecar{}, fmt.Errorf("read sidecar: %w", err)
	}
	return s, nil
}
