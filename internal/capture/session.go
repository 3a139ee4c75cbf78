package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"hsv-range-finder/internal/hsv"

	"gocv.io/x/gocv"
)

// Status messages shown while capturing.
const (
	StatusCapturing    = "Capturing..."
	StatusDisconnected = "Camera disconnected (empty frame error)"
	StatusIdle         = "No capture"
)

var (
	// ErrAlreadyRunning is returned by Start while a capture is active.
	ErrAlreadyRunning = errors.New("capture already running")
	// ErrCameraOpen is returned by Start when the camera cannot be opened.
	ErrCameraOpen = errors.New("cannot open camera")
	// ErrEmptyFrame ends a capture when the camera stops delivering frames.
	ErrEmptyFrame = errors.New("empty frame")
)

// StatusCannotOpen formats the status shown when a device fails to open.
func StatusCannotOpen(device int) string {
	return fmt.Sprintf("Cannot open camera with ID: %d", device)
}

// Controls supplies the live thresholding parameters. They are read once
// per frame so UI edits apply to the next frame.
type Controls interface {
	Range() hsv.Range
	HueFull() bool
	OutputMode() hsv.OutputMode
}

// Frame is one processed camera frame.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Raw       image.Image
	Processed image.Image
	Range     hsv.Range
	HueFull   bool
	Mode      hsv.OutputMode
	Coverage  float64
}

// Sink receives the producer's output. Methods are called from the
// capture goroutine.
type Sink interface {
	ShowFrame(f Frame)
	ClearFrames()
	SetStatus(msg string)
	// CaptureEnded is called when the loop stops on its own (not via Stop),
	// after the producer has exited. Start may be called from it.
	CaptureEnded(err error)
}

// Stats contains capture counters.
type Stats struct {
	Frames   uint64
	Coverage float64
	FPS      float64
	Device   int
	Running  bool
}

// Session owns the single producer goroutine. Start and Stop are safe to
// call from the UI goroutine.
type Session struct {
	settings Settings
	open     Opener
	controls Controls
	sink     Sink

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	device int

	running  atomic.Bool
	frames   atomic.Uint64
	coverage atomic.Uint64 // math.Float64bits
	fps      atomic.Uint64 // math.Float64bits

	lastMu sync.RWMutex
	last   Frame
}

// NewSession creates an idle session.
func NewSession(settings Settings, open Opener, controls Controls, sink Sink) *Session {
	if open == nil {
		open = OpenCamera(settings)
	}
	return &Session{
		settings: settings,
		open:     open,
		controls: controls,
		sink:     sink,
		device:   -1,
	}
}

// Start opens the device and launches the producer. It returns once the
// producer is either running or has failed to open the camera.
func (s *Session) Start(ctx context.Context, device int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
			// Previous loop ended on its own.
			s.cancel()
			s.cancel, s.done = nil, nil
		default:
			return ErrAlreadyRunning
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	started := make(chan error, 1)
	done := make(chan struct{})

	go s.run(runCtx, device, started, done)

	if err := <-started; err != nil {
		cancel()
		<-done
		return err
	}

	s.cancel = cancel
	s.done = done
	s.device = device
	return nil
}

// Stop revokes the capture and waits for the producer to exit. It is
// idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.sink.SetStatus(StatusIdle)
}

// Running reports whether the producer loop is active.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Device returns the device of the current or last capture, or -1.
func (s *Session) Device() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// LastFrame returns the most recently delivered frame.
func (s *Session) LastFrame() (Frame, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last, s.last.Raw != nil
}

// Stats returns a snapshot of the capture counters.
func (s *Session) Stats() Stats {
	return Stats{
		Frames:   s.frames.Load(),
		Coverage: loadFloat(&s.coverage),
		FPS:      loadFloat(&s.fps),
		Device:   s.Device(),
		Running:  s.Running(),
	}
}

func (s *Session) run(ctx context.Context, device int, started chan<- error, done chan<- struct{}) {
	src, err := s.open(device)
	if err != nil {
		log.Printf("capture: %v", err)
		s.sink.SetStatus(StatusCannotOpen(device))
		s.sink.ClearFrames()
		started <- fmt.Errorf("%w with ID %d: %v", ErrCameraOpen, device, err)
		close(done)
		return
	}

	err = s.capture(ctx, device, src, started)
	s.sink.ClearFrames()
	close(done)

	// The producer has fully exited here, so the sink may restart capture.
	if err != nil {
		log.Printf("capture: device %d: %v", device, err)
		s.sink.CaptureEnded(err)
	}
}

// capture runs the frame loop on an opened source and releases it.
func (s *Session) capture(ctx context.Context, device int, src Source, started chan<- error) error {
	defer src.Close()

	s.running.Store(true)
	defer s.running.Store(false)

	s.frames.Store(0)
	s.lastMu.Lock()
	s.last = Frame{}
	s.lastMu.Unlock()

	s.sink.SetStatus(StatusCapturing)
	log.Printf("capture: device %d opened at %d fps", device, s.settings.FPS)
	started <- nil

	return s.loop(ctx, src)
}

// loop reads and processes frames until the context is cancelled or the
// camera stops delivering frames.
func (s *Session) loop(ctx context.Context, src Source) error {
	proc := hsv.NewProcessor()
	defer proc.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	interval := time.Duration(s.settings.Interval()) * time.Millisecond
	timer := time.NewTimer(interval)
	defer timer.Stop()

	var lastTick time.Time

	for {
		if ctx.Err() != nil {
			return nil
		}

		if ok := src.Read(&mat); !ok || mat.Empty() {
			s.sink.SetStatus(StatusDisconnected)
			return ErrEmptyFrame
		}

		frame, err := s.process(proc, mat)
		if err != nil {
			return err
		}
		s.sink.ShowFrame(frame)

		now := time.Now()
		if !lastTick.IsZero() {
			if dt := now.Sub(lastTick).Seconds(); dt > 0 {
				storeFloat(&s.fps, 1/dt)
			}
		}
		lastTick = now

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

func (s *Session) process(proc *hsv.Processor, mat gocv.Mat) (Frame, error) {
	r := s.controls.Range()
	hueFull := s.controls.HueFull()
	mode := s.controls.OutputMode()

	out, err := proc.Process(mat, r, hueFull, mode)
	if err != nil {
		return Frame{}, fmt.Errorf("process frame: %w", err)
	}

	raw, err := mat.ToImage()
	if err != nil {
		return Frame{}, fmt.Errorf("convert raw frame: %w", err)
	}
	processed, err := out.ToImage()
	if err != nil {
		return Frame{}, fmt.Errorf("convert processed frame: %w", err)
	}

	coverage := hsv.Coverage(proc.LastMask())
	storeFloat(&s.coverage, coverage)

	f := Frame{
		Seq:       s.frames.Add(1),
		Timestamp: time.Now(),
		Raw:       raw,
		Processed: processed,
		Range:     r,
		HueFull:   hueFull,
		Mode:      mode,
		Coverage:  coverage,
	}

	s.lastMu.Lock()
	s.last = f
	s.lastMu.Unlock()
	return f, nil
}
