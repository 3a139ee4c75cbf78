// Package app provides application state, events, theme and lifecycle helpers.
package app

import (
	"sync"
	"sync/atomic"

	"hsv-range-finder/internal/hsv"
)

// State holds the values shared between the UI and the capture loop.
type State struct {
	mu sync.RWMutex

	// Threshold bounds read by the capture loop every frame
	Bounds *hsv.Bounds

	binaryOutput atomic.Bool
	capturing    atomic.Bool
	cameraID     atomic.Int64

	// Name of the preset last loaded or saved, "" if none
	presetName string

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventBoundsChanged EventType = iota
	EventOutputModeChanged
	EventHueScaleChanged
	EventCameraChanged
	EventCaptureStarted
	EventCaptureStopped
	EventStatus
	EventPresetLoaded
	EventPresetSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with the full range selected.
func NewState(cameraID int, hueFull bool) *State {
	s := &State{
		Bounds:    hsv.NewBounds(hueFull),
		listeners: make(map[EventType][]EventListener),
	}
	s.cameraID.Store(int64(cameraID))
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Range returns the current threshold range.
func (s *State) Range() hsv.Range {
	return s.Bounds.Snapshot()
}

// HueFull reports whether hue is on the 0-255 scale.
func (s *State) HueFull() bool {
	return s.Bounds.HueFull()
}

// SetLow stores a lower bound and returns the value actually stored.
func (s *State) SetLow(c hsv.Channel, v int) int {
	stored := s.Bounds.SetLow(c, v)
	s.Emit(EventBoundsChanged, s.Bounds.Snapshot())
	return stored
}

// SetHigh stores an upper bound and returns the value actually stored.
func (s *State) SetHigh(c hsv.Channel, v int) int {
	stored := s.Bounds.SetHigh(c, v)
	s.Emit(EventBoundsChanged, s.Bounds.Snapshot())
	return stored
}

// SetRange replaces all bounds, returning the normalized range.
func (s *State) SetRange(r hsv.Range) hsv.Range {
	stored := s.Bounds.Set(r)
	s.Emit(EventBoundsChanged, stored)
	return stored
}

// SetHueFull switches the hue scale.
func (s *State) SetHueFull(full bool) {
	if s.Bounds.HueFull() == full {
		return
	}
	r := s.Bounds.SetHueFull(full)
	s.Emit(EventHueScaleChanged, full)
	s.Emit(EventBoundsChanged, r)
}

// OutputMode returns how the processed view is rendered.
func (s *State) OutputMode() hsv.OutputMode {
	if s.binaryOutput.Load() {
		return hsv.OutputBinary
	}
	return hsv.OutputMasked
}

// BinaryOutput reports whether the processed view shows the raw mask.
func (s *State) BinaryOutput() bool {
	return s.binaryOutput.Load()
}

// SetBinaryOutput toggles binary output. Takes effect on the next frame.
func (s *State) SetBinaryOutput(binary bool) {
	if s.binaryOutput.Swap(binary) != binary {
		s.Emit(EventOutputModeChanged, s.OutputMode())
	}
}

// CameraID returns the selected camera device index.
func (s *State) CameraID() int {
	return int(s.cameraID.Load())
}

// SetCameraID changes the camera while no capture is running. While
// capturing the change is refused. Returns the effective camera id.
func (s *State) SetCameraID(id int) int {
	if s.capturing.Load() {
		return s.CameraID()
	}
	if int(s.cameraID.Swap(int64(id))) != id {
		s.Emit(EventCameraChanged, id)
	}
	return id
}

// Capturing reports whether a capture is active.
func (s *State) Capturing() bool {
	return s.capturing.Load()
}

// SetCapturing records capture activity and notifies listeners.
func (s *State) SetCapturing(active bool) {
	if s.capturing.Swap(active) == active {
		return
	}
	if active {
		s.Emit(EventCaptureStarted, s.CameraID())
	} else {
		s.Emit(EventCaptureStopped, s.CameraID())
	}
}

// SetStatus broadcasts a user-facing status message.
func (s *State) SetStatus(msg string) {
	s.Emit(EventStatus, msg)
}

// PresetName returns the preset last loaded or saved, or "".
func (s *State) PresetName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presetName
}

// SetPresetName records the active preset. Safe to call from any goroutine.
func (s *State) SetPresetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presetName = name
}
