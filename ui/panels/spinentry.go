// Package panels provides the control panels of the main window.
package panels

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// SpinEntry is a numeric entry that commits on Enter or focus loss and
// steps with the Up/Down keys.
type SpinEntry struct {
	widget.Entry

	value    int
	OnCommit func(v int)
}

// NewSpinEntry creates an entry showing value.
func NewSpinEntry(value int, onCommit func(v int)) *SpinEntry {
	e := &SpinEntry{value: value, OnCommit: onCommit}
	e.ExtendBaseWidget(e)
	e.SetText(strconv.Itoa(value))
	e.OnSubmitted = func(string) { e.Commit() }
	return e
}

// Value returns the last committed value.
func (e *SpinEntry) Value() int {
	return e.value
}

// SetValue displays v without invoking OnCommit.
func (e *SpinEntry) SetValue(v int) {
	e.value = v
	if text := strconv.Itoa(v); e.Text != text {
		e.SetText(text)
	}
}

// Commit parses the text and hands it to OnCommit. Unparsable text is
// reverted to the last value.
func (e *SpinEntry) Commit() {
	v, err := strconv.Atoi(strings.TrimSpace(e.Text))
	if err != nil {
		e.SetValue(e.value)
		return
	}
	e.commitValue(v)
}

func (e *SpinEntry) commitValue(v int) {
	if e.OnCommit != nil {
		e.OnCommit(v)
		return
	}
	e.SetValue(v)
}

// FocusLost commits pending edits.
func (e *SpinEntry) FocusLost() {
	e.Commit()
	e.Entry.FocusLost()
}

// TypedKey steps the value with Up/Down.
func (e *SpinEntry) TypedKey(key *fyne.KeyEvent) {
	if e.Disabled() {
		return
	}
	switch key.Name {
	case fyne.KeyUp:
		e.commitValue(e.value + 1)
	case fyne.KeyDown:
		e.commitValue(e.value - 1)
	default:
		e.Entry.TypedKey(key)
	}
}

// MinSize fits three digits.
func (e *SpinEntry) MinSize() fyne.Size {
	min := e.Entry.MinSize()
	return fyne.NewSize(fyne.Max(min.Width, 64), min.Height)
}
