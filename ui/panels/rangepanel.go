package panels

import (
	"fmt"
	"image/color"

	"hsv-range-finder/internal/app"
	"hsv-range-finder/internal/hsv"
	"hsv-range-finder/pkg/colorutil"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// boundControl is a slider and entry pair bound to one end of a channel.
type boundControl struct {
	channel hsv.Channel
	high    bool

	slider *widget.Slider
	entry  *SpinEntry

	store   func(c hsv.Channel, v int) int
	syncing bool
}

func newBoundControl(c hsv.Channel, high bool, max, value int, store func(hsv.Channel, int) int) *boundControl {
	bc := &boundControl{channel: c, high: high, store: store}

	bc.slider = widget.NewSlider(0, float64(max))
	bc.slider.Step = 1
	bc.slider.Value = float64(value)
	bc.slider.OnChanged = bc.onSliderChanged

	bc.entry = NewSpinEntry(value, bc.onEntryCommit)
	return bc
}

func (bc *boundControl) onSliderChanged(v float64) {
	if bc.syncing {
		return
	}
	bc.show(bc.store(bc.channel, int(v)))
}

func (bc *boundControl) onEntryCommit(v int) {
	if bc.syncing {
		return
	}
	bc.show(bc.store(bc.channel, v))
}

// show moves both widgets to v without feeding back into the store.
func (bc *boundControl) show(v int) {
	bc.syncing = true
	defer func() { bc.syncing = false }()

	if bc.slider.Value != float64(v) {
		bc.slider.SetValue(float64(v))
	}
	bc.entry.SetValue(v)
}

func (bc *boundControl) setMax(max int) {
	bc.slider.Max = float64(max)
	bc.slider.Refresh()
}

func (bc *boundControl) label() string {
	if bc.high {
		return bc.channel.String() + " high"
	}
	return bc.channel.String() + " low"
}

// RangePanel edits the six HSV bounds.
type RangePanel struct {
	state     *app.State
	container fyne.CanvasObject

	lows   [3]*boundControl
	highs  [3]*boundControl
	swatch *fynecanvas.Rectangle
	info   *widget.Label
}

// NewRangePanel creates the bound editors and keeps them in sync with state.
func NewRangePanel(state *app.State) *RangePanel {
	rp := &RangePanel{state: state}

	r := state.Range()
	hueFull := state.HueFull()

	rows := []fyne.CanvasObject{}
	for i, c := range hsv.Channels {
		max := c.Max(hueFull)
		rp.lows[i] = newBoundControl(c, false, max, r.Low(c), state.SetLow)
		rp.highs[i] = newBoundControl(c, true, max, r.High(c), state.SetHigh)

		card := widget.NewCard(c.Name(), "", container.NewVBox(
			rp.row(rp.lows[i]),
			rp.row(rp.highs[i]),
		))
		rows = append(rows, card)
	}

	rp.swatch = fynecanvas.NewRectangle(color.Black)
	rp.swatch.SetMinSize(fyne.NewSize(48, 24))
	rp.info = widget.NewLabel("")

	rows = append(rows, container.NewHBox(widget.NewLabel("Center:"), rp.swatch, rp.info))
	rp.container = container.NewVBox(rows...)

	state.On(app.EventBoundsChanged, func(data interface{}) {
		if r, ok := data.(hsv.Range); ok {
			rp.Sync(r)
		}
	})
	state.On(app.EventHueScaleChanged, func(data interface{}) {
		if full, ok := data.(bool); ok {
			rp.lows[0].setMax(hsv.Hue.Max(full))
			rp.highs[0].setMax(hsv.Hue.Max(full))
		}
	})

	rp.updateSwatch(r)
	return rp
}

func (rp *RangePanel) row(bc *boundControl) fyne.CanvasObject {
	return container.NewBorder(nil, nil,
		widget.NewLabel(fmt.Sprintf("%-6s", bc.label())),
		bc.entry,
		bc.slider,
	)
}

// Container returns the panel container.
func (rp *RangePanel) Container() fyne.CanvasObject {
	return rp.container
}

// Sync moves every control to r.
func (rp *RangePanel) Sync(r hsv.Range) {
	for i, c := range hsv.Channels {
		rp.lows[i].show(r.Low(c))
		rp.highs[i].show(r.High(c))
	}
	rp.updateSwatch(r)
}

func (rp *RangePanel) updateSwatch(r hsv.Range) {
	hueMax := float64(hsv.Hue.Max(rp.state.HueFull()) + 1)
	h := float64(r.HLow+r.HHigh) / 2
	s := float64(r.SLow+r.SHigh) / 2
	v := float64(r.VLow+r.VHigh) / 2
	rp.swatch.FillColor = colorutil.HSVToRGB(h, s, v, hueMax)
	rp.swatch.Refresh()
	rp.info.SetText(r.String())
}
