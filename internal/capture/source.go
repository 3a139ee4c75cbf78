// Package capture runs the camera producer loop that feeds the raw and masked views.
package capture

import (
	"fmt"
	"math"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Default values used when no config is provided.
const (
	DefaultDevice = 1
	DefaultFPS    = 30
)

// Settings holds camera capture configuration.
type Settings struct {
	FPS    int // Target frames per second
	Width  int // Requested capture width, 0 keeps the driver default
	Height int // Requested capture height, 0 keeps the driver default
}

// DefaultSettings returns the settings used by the calibration window.
func DefaultSettings() Settings {
	return Settings{FPS: DefaultFPS}
}

// Interval returns the pause between frames for the configured FPS.
func (s Settings) Interval() int {
	fps := s.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return 1000 / fps
}

// Source delivers BGR frames. gocv.VideoCapture satisfies it.
type Source interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// Opener opens the camera with the given device index.
type Opener func(device int) (Source, error)

// OpenCamera returns an Opener backed by gocv.VideoCaptureDevice.
func OpenCamera(s Settings) Opener {
	return func(device int) (Source, error) {
		cam, err := gocv.VideoCaptureDevice(device)
		if err != nil {
			return nil, fmt.Errorf("open device %d: %w", device, err)
		}
		if !cam.IsOpened() {
			cam.Close()
			return nil, fmt.Errorf("device %d is not opened", device)
		}

		if s.Width > 0 {
			cam.Set(gocv.VideoCaptureFrameWidth, float64(s.Width))
		}
		if s.Height > 0 {
			cam.Set(gocv.VideoCaptureFrameHeight, float64(s.Height))
		}
		return cam, nil
	}
}

func loadFloat(v *atomic.Uint64) float64 {
	return math.Float64frombits(v.Load())
}

func storeFloat(v *atomic.Uint64, f float64) {
	v.Store(math.Float64bits(f))
}
