package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hsv-range-finder/internal/hsv"

	"gocv.io/x/gocv"
)

type fakeControls struct {
	mu   sync.Mutex
	r    hsv.Range
	mode hsv.OutputMode
}

func (c *fakeControls) Range() hsv.Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r
}

func (c *fakeControls) HueFull() bool { return false }

func (c *fakeControls) OutputMode() hsv.OutputMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

type fakeSink struct {
	mu       sync.Mutex
	frames   []Frame
	statuses []string
	cleared  int
	ended    chan error
}

func newFakeSink() *fakeSink {
	return &fakeSink{ended: make(chan error, 1)}
}

func (s *fakeSink) ShowFrame(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *fakeSink) ClearFrames() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func (s *fakeSink) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, msg)
}

func (s *fakeSink) CaptureEnded(err error) {
	s.ended <- err
}

func (s *fakeSink) snapshot() ([]Frame, []string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Frame(nil), s.frames...), append([]string(nil), s.statuses...), s.cleared
}

// fakeSource yields a solid blue frame limit times, then reports failure.
// limit < 0 never fails.
type fakeSource struct {
	mu     sync.Mutex
	limit  int
	reads  int
	closed bool
}

func (f *fakeSource) Read(m *gocv.Mat) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limit >= 0 && f.reads >= f.limit {
		return false
	}
	f.reads++
	blue := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer blue.Close()
	blue.CopyTo(m)
	return true
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func openerFor(src *fakeSource) Opener {
	return func(device int) (Source, error) { return src, nil }
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSessionStartStop(t *testing.T) {
	src := &fakeSource{limit: -1}
	sink := newFakeSink()
	controls := &fakeControls{r: hsv.FullRange(false)}
	s := NewSession(Settings{FPS: 200}, openerFor(src), controls, sink)

	if err := s.Start(context.Background(), 2); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Running() {
		t.Error("Running() = false after Start")
	}
	if s.Device() != 2 {
		t.Errorf("Device() = %d, want 2", s.Device())
	}
	if err := s.Start(context.Background(), 3); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start error = %v, want ErrAlreadyRunning", err)
	}

	waitFor(t, func() bool {
		frames, _, _ := sink.snapshot()
		return len(frames) >= 3
	})

	s.Stop()
	if s.Running() {
		t.Error("Running() = true after Stop")
	}
	if !src.isClosed() {
		t.Error("source not closed after Stop")
	}

	frames, statuses, cleared := sink.snapshot()
	if cleared != 1 {
		t.Errorf("ClearFrames called %d times, want 1", cleared)
	}
	if statuses[0] != StatusCapturing || statuses[len(statuses)-1] != StatusIdle {
		t.Errorf("statuses = %q", statuses)
	}
	if frames[0].Seq != 1 || frames[0].Coverage != 1 {
		t.Errorf("first frame seq=%d coverage=%v", frames[0].Seq, frames[0].Coverage)
	}
	if _, ok := s.LastFrame(); !ok {
		t.Error("LastFrame() reported no frame")
	}
	if st := s.Stats(); st.Frames < 3 || st.Running {
		t.Errorf("Stats() = %+v", st)
	}

	select {
	case err := <-sink.ended:
		t.Errorf("CaptureEnded(%v) called on explicit Stop", err)
	default:
	}

	// Stop is idempotent.
	s.Stop()
}

func TestSessionAppliesLiveControls(t *testing.T) {
	src := &fakeSource{limit: -1}
	sink := newFakeSink()
	controls := &fakeControls{r: hsv.Range{HLow: 50, HHigh: 60, SHigh: 255, VHigh: 255}}
	s := NewSession(Settings{FPS: 200}, openerFor(src), controls, sink)

	if err := s.Start(context.Background(), 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool {
		frames, _, _ := sink.snapshot()
		return len(frames) >= 1
	})

	controls.mu.Lock()
	controls.r = hsv.Range{HLow: 110, HHigh: 130, SHigh: 255, VHigh: 255}
	controls.mode = hsv.OutputBinary
	controls.mu.Unlock()

	waitFor(t, func() bool {
		frames, _, _ := sink.snapshot()
		last := frames[len(frames)-1]
		return last.Mode == hsv.OutputBinary && last.Coverage == 1
	})

	frames, _, _ := sink.snapshot()
	if frames[0].Coverage != 0 {
		t.Errorf("first frame coverage = %v, want 0", frames[0].Coverage)
	}
}

func TestSessionCameraOpenFailure(t *testing.T) {
	sink := newFakeSink()
	open := func(device int) (Source, error) {
		return nil, errors.New("no such device")
	}
	s := NewSession(DefaultSettings(), open, &fakeControls{}, sink)

	err := s.Start(context.Background(), 3)
	if !errors.Is(err, ErrCameraOpen) {
		t.Fatalf("Start error = %v, want ErrCameraOpen", err)
	}
	if s.Running() {
		t.Error("Running() = true after failed Start")
	}

	_, statuses, cleared := sink.snapshot()
	if len(statuses) != 1 || statuses[0] != "Cannot open camera with ID: 3" {
		t.Errorf("statuses = %q", statuses)
	}
	if cleared != 1 {
		t.Errorf("ClearFrames called %d times, want 1", cleared)
	}

	// A failed start leaves the session startable.
	src := &fakeSource{limit: -1}
	s.open = openerFor(src)
	if err := s.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start after failure: %v", err)
	}
	s.Stop()
}

func TestSessionDisconnect(t *testing.T) {
	src := &fakeSource{limit: 2}
	sink := newFakeSink()
	s := NewSession(Settings{FPS: 200}, openerFor(src), &fakeControls{r: hsv.FullRange(false)}, sink)

	if err := s.Start(context.Background(), 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case err := <-sink.ended:
		if !errors.Is(err, ErrEmptyFrame) {
			t.Errorf("CaptureEnded error = %v, want ErrEmptyFrame", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not end after source ran dry")
	}

	waitFor(t, func() bool { return !s.Running() })

	frames, statuses, cleared := sink.snapshot()
	if len(frames) != 2 {
		t.Errorf("frames = %d, want 2", len(frames))
	}
	if cleared != 1 {
		t.Errorf("ClearFrames called %d times, want 1", cleared)
	}
	if statuses[len(statuses)-1] != StatusDisconnected {
		t.Errorf("last status = %q, want %q", statuses[len(statuses)-1], StatusDisconnected)
	}

	// The session can be restarted after ending on its own.
	src2 := &fakeSource{limit: -1}
	s.open = openerFor(src2)
	if err := s.Start(context.Background(), 0); err != nil {
		t.Fatalf("restart: %v", err)
	}
	s.Stop()
}

// restartSink starts a new capture as soon as the previous one ends.
type restartSink struct {
	*fakeSink
	session *Session
	result  chan error
}

func (r *restartSink) CaptureEnded(err error) {
	r.result <- r.session.Start(context.Background(), 0)
}

func TestSessionRestartFromCaptureEnded(t *testing.T) {
	first := &fakeSource{limit: 1}
	second := &fakeSource{limit: -1}
	var mu sync.Mutex
	opened := 0
	open := func(device int) (Source, error) {
		mu.Lock()
		defer mu.Unlock()
		opened++
		if opened == 1 {
			return first, nil
		}
		return second, nil
	}

	sink := &restartSink{fakeSink: newFakeSink(), result: make(chan error, 1)}
	s := NewSession(Settings{FPS: 200}, open, &fakeControls{r: hsv.FullRange(false)}, sink)
	sink.session = s

	if err := s.Start(context.Background(), 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case err := <-sink.result:
		if err != nil {
			t.Fatalf("Start from CaptureEnded: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("capture did not end")
	}

	if !first.isClosed() {
		t.Error("first source still open when CaptureEnded ran")
	}
	waitFor(t, s.Running)

	s.Stop()
	if !second.isClosed() {
		t.Error("second source not closed after Stop")
	}
}

func TestSettingsInterval(t *testing.T) {
	if got := (Settings{FPS: 30}).Interval(); got != 33 {
		t.Errorf("Interval(30) = %d, want 33", got)
	}
	if got := (Settings{}).Interval(); got != 33 {
		t.Errorf("Interval(0) = %d, want default 33", got)
	}
}
