package prefs

import (
	"path/filepath"
	"testing"
)

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "preferences.json")
	p := LoadFrom(path)

	if got := p.Int(KeyCameraID, 1); got != 1 {
		t.Errorf("Int fallback = %d, want 1", got)
	}
	if p.Changed() {
		t.Error("fresh prefs reported as changed")
	}

	p.SetInt(KeyCameraID, 3)
	p.SetBool(KeyBinaryOutput, true)
	p.SetString(KeyPresetName, "ball")
	if !p.Changed() {
		t.Error("Changed() = false after Set")
	}
	if err := p.SaveIfChanged(); err != nil {
		t.Fatalf("SaveIfChanged: %v", err)
	}
	if p.Changed() {
		t.Error("Changed() = true after save")
	}

	q := LoadFrom(path)
	if got := q.Int(KeyCameraID, 1); got != 3 {
		t.Errorf("Int after reload = %d, want 3", got)
	}
	if !q.Bool(KeyBinaryOutput, false) {
		t.Error("Bool after reload = false")
	}
	if q.String(KeyPresetName) != "ball" {
		t.Errorf("String after reload = %q", q.String(KeyPresetName))
	}
}

func TestPrefsSetSameValueNotChanged(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "preferences.json"))
	p.SetInt("x", 5)
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}
	p.SetInt("x", 5)
	if p.Changed() {
		t.Error("setting identical value marked prefs as changed")
	}
}
