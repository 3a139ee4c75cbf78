package mainwindow

import (
	"log"
	"strings"

	"hsv-range-finder/internal/hsv"
	"hsv-range-finder/ui/prefs"
)

// boundKey returns the preference key for one end of a channel, e.g. "hLow".
func boundKey(c hsv.Channel, high bool) string {
	key := strings.ToLower(c.String())
	if high {
		return key + "High"
	}
	return key + "Low"
}

// restorePreferences applies the saved camera, output mode, hue scale and bounds.
func (mw *MainWindow) restorePreferences() {
	if mw.prefs == nil {
		return
	}
	mw.state.SetCameraID(mw.prefs.Int(prefs.KeyCameraID, mw.state.CameraID()))
	mw.state.SetBinaryOutput(mw.prefs.Bool(prefs.KeyBinaryOutput, mw.state.BinaryOutput()))
	mw.state.SetPresetName(mw.prefs.String(prefs.KeyPresetName))

	// Bounds are stored on the hue scale they were tuned on.
	mw.state.SetHueFull(mw.prefs.Bool(prefs.KeyHueFull, mw.state.HueFull()))
	r := mw.state.Range()
	for _, c := range hsv.Channels {
		r = r.WithLow(c, mw.prefs.Int(boundKey(c, false), r.Low(c)))
		r = r.WithHigh(c, mw.prefs.Int(boundKey(c, true), r.High(c)))
	}
	mw.state.SetRange(r)
}

// storePreferences copies the current state into prefs without writing.
func (mw *MainWindow) storePreferences() {
	mw.prefs.SetInt(prefs.KeyCameraID, mw.state.CameraID())
	mw.prefs.SetBool(prefs.KeyBinaryOutput, mw.state.BinaryOutput())
	mw.prefs.SetString(prefs.KeyPresetName, mw.state.PresetName())
	mw.prefs.SetBool(prefs.KeyHueFull, mw.state.HueFull())

	r := mw.state.Range()
	for _, c := range hsv.Channels {
		mw.prefs.SetInt(boundKey(c, false), r.Low(c))
		mw.prefs.SetInt(boundKey(c, true), r.High(c))
	}
}

// SavePreferences writes the current settings to disk.
func (mw *MainWindow) SavePreferences() {
	if mw.prefs == nil {
		return
	}
	mw.storePreferences()
	if err := mw.prefs.Save(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}

// SavePreferencesIfChanged writes preferences only if something changed.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if mw.prefs == nil {
		return
	}
	mw.storePreferences()
	if err := mw.prefs.SaveIfChanged(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}
