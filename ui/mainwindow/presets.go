package mainwindow

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"hsv-range-finder/internal/app"
	"hsv-range-finder/internal/preset"
	"hsv-range-finder/internal/version"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// ApplyPreset makes p the current range.
func (mw *MainWindow) ApplyPreset(p preset.Preset) {
	mw.state.SetHueFull(p.HueFullRange)
	mw.state.SetRange(p.Range)
	mw.state.SetPresetName(p.Name)
	mw.state.Emit(app.EventPresetLoaded, p.Name)
	mw.updateStatus("Loaded preset " + p.Name)
}

// StorePreset saves the current range under name and writes the store.
func (mw *MainWindow) StorePreset(name, notes string) (preset.Preset, error) {
	p := preset.Preset{
		Name:         strings.TrimSpace(name),
		HueFullRange: mw.state.HueFull(),
		Range:        mw.state.Range(),
		Notes:        notes,
		Updated:      time.Now(),
	}
	if err := mw.presets.Put(p); err != nil {
		return p, err
	}
	if err := mw.presets.Save(); err != nil {
		return p, fmt.Errorf("save presets: %w", err)
	}
	mw.state.SetPresetName(p.Name)
	mw.state.Emit(app.EventPresetSaved, p.Name)
	return p, nil
}

func (mw *MainWindow) presetSelect() *widget.Select {
	sel := widget.NewSelect(mw.presets.Names(), nil)
	if mw.state.PresetName() != "" {
		sel.SetSelected(mw.state.PresetName())
	}
	return sel
}

func (mw *MainWindow) onLoadPreset() {
	if mw.presets.Len() == 0 {
		dialog.ShowInformation("Load Preset", "No presets saved yet.", mw.Window)
		return
	}
	sel := mw.presetSelect()
	dialog.ShowForm("Load Preset", "Load", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Preset", sel)},
		func(ok bool) {
			if !ok || sel.Selected == "" {
				return
			}
			p, err := mw.presets.Get(sel.Selected)
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.ApplyPreset(p)
		}, mw.Window)
}

func (mw *MainWindow) onSavePreset() {
	name := widget.NewEntry()
	name.SetText(mw.state.PresetName())
	name.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("name required")
		}
		return nil
	}
	notes := widget.NewEntry()

	dialog.ShowForm("Save Preset", "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Name", name),
			widget.NewFormItem("Notes", notes),
		},
		func(ok bool) {
			if !ok {
				return
			}
			p, err := mw.StorePreset(name.Text, notes.Text)
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.SetTitle(version.Name + " - " + p.Name)
			mw.updateStatus(fmt.Sprintf("Saved preset %s to %s", p.Name, mw.presets.Path()))
		}, mw.Window)
}

func (mw *MainWindow) onDeletePreset() {
	if mw.presets.Len() == 0 {
		return
	}
	sel := mw.presetSelect()
	dialog.ShowForm("Delete Preset", "Delete", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Preset", sel)},
		func(ok bool) {
			if !ok || sel.Selected == "" {
				return
			}
			if err := mw.presets.Delete(sel.Selected); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			if err := mw.presets.Save(); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.updateStatus("Deleted preset " + sel.Selected)
		}, mw.Window)
}

func (mw *MainWindow) onImportPreset() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		p, err := preset.ReadFile(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.ApplyPreset(p)
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml", ".toml"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportPreset() {
	name := mw.state.PresetName()
	if name == "" {
		name = "range"
	}
	p := preset.Preset{
		Name:         name,
		HueFullRange: mw.state.HueFull(),
		Range:        mw.state.Range(),
		Updated:      time.Now(),
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		mw.saveLastDir(writer.URI().Path())

		if err := preset.ExportYAML(writer, p); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		log.Printf("exported preset %s to %s", p.Name, writer.URI().Path())
		mw.updateStatus("Exported " + filepath.Base(writer.URI().Path()))
	}, mw.Window)
	fd.SetFileName(name + ".yaml")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}
