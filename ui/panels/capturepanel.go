package panels

import (
	"hsv-range-finder/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// CapturePanel holds the camera selector, start/stop buttons and output options.
type CapturePanel struct {
	state     *app.State
	container fyne.CanvasObject

	cameraEntry *SpinEntry
	startBtn    *widget.Button
	stopBtn     *widget.Button
	binaryCheck *widget.Check
	hueCheck    *widget.Check
	statsLabel  *widget.Label
}

// NewCapturePanel creates the panel. onStart and onStop run on the UI goroutine.
func NewCapturePanel(state *app.State, onStart, onStop func()) *CapturePanel {
	cp := &CapturePanel{state: state}

	cp.cameraEntry = NewSpinEntry(state.CameraID(), func(v int) {
		if v < 0 {
			v = 0
		}
		// Refused while capturing; the entry snaps back to the active camera
		cp.cameraEntry.SetValue(state.SetCameraID(v))
	})

	cp.startBtn = widget.NewButtonWithIcon("Start Capture", theme.MediaPlayIcon(), onStart)
	cp.stopBtn = widget.NewButtonWithIcon("Stop Capture", theme.MediaStopIcon(), onStop)
	cp.stopBtn.Importance = widget.DangerImportance

	cp.binaryCheck = widget.NewCheck("Binary output", state.SetBinaryOutput)
	cp.binaryCheck.SetChecked(state.BinaryOutput())

	cp.hueCheck = widget.NewCheck("Full hue scale (0-255)", state.SetHueFull)
	cp.hueCheck.SetChecked(state.HueFull())

	cp.statsLabel = widget.NewLabel("")

	cp.container = widget.NewCard("Camera", "", container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Camera ID:"), nil, cp.cameraEntry),
		container.NewGridWithColumns(2, cp.startBtn, cp.stopBtn),
		cp.binaryCheck,
		cp.hueCheck,
		cp.statsLabel,
	))

	state.On(app.EventCameraChanged, func(data interface{}) {
		if id, ok := data.(int); ok {
			cp.cameraEntry.SetValue(id)
		}
	})
	state.On(app.EventHueScaleChanged, func(data interface{}) {
		if full, ok := data.(bool); ok && cp.hueCheck.Checked != full {
			cp.hueCheck.SetChecked(full)
		}
	})

	cp.SetRunning(false)
	return cp
}

// Container returns the panel container.
func (cp *CapturePanel) Container() fyne.CanvasObject {
	return cp.container
}

// SetRunning toggles the controls between idle and capturing.
func (cp *CapturePanel) SetRunning(running bool) {
	if running {
		cp.cameraEntry.Disable()
		cp.startBtn.Disable()
		cp.stopBtn.Enable()
		return
	}
	cp.cameraEntry.Enable()
	cp.startBtn.Enable()
	cp.stopBtn.Disable()
	cp.cameraEntry.SetValue(cp.state.CameraID())
}

// SetStats shows capture counters.
func (cp *CapturePanel) SetStats(text string) {
	cp.statsLabel.SetText(text)
}

// SetBinary updates the checkbox without re-emitting.
func (cp *CapturePanel) SetBinary(binary bool) {
	if cp.binaryCheck.Checked != binary {
		cp.binaryCheck.SetChecked(binary)
	}
}

// Running reports whether the panel is in the capturing layout.
func (cp *CapturePanel) Running() bool {
	return cp.startBtn.Disabled()
}
