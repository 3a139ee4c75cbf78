package app

import (
	"fmt"
	"sync"
	"testing"

	"hsv-range-finder/internal/hsv"
)

func TestStateBoundsEmitEvents(t *testing.T) {
	s := NewState(1, false)

	var got []hsv.Range
	s.On(EventBoundsChanged, func(data interface{}) {
		got = append(got, data.(hsv.Range))
	})

	if v := s.SetHigh(hsv.Hue, 30); v != 30 {
		t.Errorf("SetHigh = %d, want 30", v)
	}
	if v := s.SetLow(hsv.Hue, 50); v != 30 {
		t.Errorf("SetLow above high = %d, want 30", v)
	}
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[1].HLow != 30 || got[1].HHigh != 30 {
		t.Errorf("last event range = %v", got[1])
	}
}

func TestStateCameraIDLockedWhileCapturing(t *testing.T) {
	s := NewState(1, false)

	var changes []int
	s.On(EventCameraChanged, func(data interface{}) {
		changes = append(changes, data.(int))
	})

	if id := s.SetCameraID(4); id != 4 {
		t.Errorf("SetCameraID(4) = %d", id)
	}

	s.SetCapturing(true)
	if id := s.SetCameraID(7); id != 4 {
		t.Errorf("SetCameraID while capturing = %d, want 4", id)
	}
	s.SetCapturing(false)

	if id := s.SetCameraID(7); id != 7 {
		t.Errorf("SetCameraID after stop = %d, want 7", id)
	}
	if len(changes) != 2 || changes[0] != 4 || changes[1] != 7 {
		t.Errorf("camera change events = %v", changes)
	}
}

func TestStateCaptureEvents(t *testing.T) {
	s := NewState(2, false)
	var started, stopped int
	s.On(EventCaptureStarted, func(interface{}) { started++ })
	s.On(EventCaptureStopped, func(interface{}) { stopped++ })

	s.SetCapturing(true)
	s.SetCapturing(true)
	s.SetCapturing(false)
	s.SetCapturing(false)

	if started != 1 || stopped != 1 {
		t.Errorf("started=%d stopped=%d, want 1/1", started, stopped)
	}
}

func TestStateOutputMode(t *testing.T) {
	s := NewState(1, false)
	if s.OutputMode() != hsv.OutputMasked {
		t.Error("default output mode should be masked")
	}

	var modes []hsv.OutputMode
	s.On(EventOutputModeChanged, func(data interface{}) {
		modes = append(modes, data.(hsv.OutputMode))
	})

	s.SetBinaryOutput(true)
	s.SetBinaryOutput(true)
	if s.OutputMode() != hsv.OutputBinary || !s.BinaryOutput() {
		t.Error("output mode should be binary")
	}
	if len(modes) != 1 {
		t.Errorf("mode events = %d, want 1", len(modes))
	}
}

func TestStateHueScale(t *testing.T) {
	s := NewState(1, false)
	var scales int
	s.On(EventHueScaleChanged, func(interface{}) { scales++ })

	s.SetHueFull(true)
	if !s.HueFull() || s.Range().HHigh != hsv.HueFullMax {
		t.Errorf("after SetHueFull(true): full=%v range=%v", s.HueFull(), s.Range())
	}
	s.SetHueFull(true)
	if scales != 1 {
		t.Errorf("scale events = %d, want 1", scales)
	}
}

func TestStatePresetNameConcurrentAccess(t *testing.T) {
	s := NewState(1, false)
	if s.PresetName() != "" {
		t.Fatalf("initial PresetName = %q", s.PresetName())
	}

	// Preferences are stored from the hot reload tick while dialogs set the name.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.SetPresetName(fmt.Sprintf("preset-%d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.PresetName()
		}
	}()
	wg.Wait()

	if got := s.PresetName(); got != "preset-199" {
		t.Errorf("PresetName = %q, want preset-199", got)
	}
}
