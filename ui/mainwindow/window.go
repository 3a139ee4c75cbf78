// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"path/filepath"

	"hsv-range-finder/internal/app"
	"hsv-range-finder/internal/capture"
	"hsv-range-finder/internal/config"
	"hsv-range-finder/internal/hsv"
	"hsv-range-finder/internal/preset"
	"hsv-range-finder/internal/snapshot"
	"hsv-range-finder/internal/version"
	"hsv-range-finder/ui/canvas"
	"hsv-range-finder/ui/panels"
	"hsv-range-finder/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// StatusWelcome is shown in the status bar before the first capture.
const StatusWelcome = "Welcome to HSV Range Finder for USB Camera!"

// Deps are the collaborators the window is built from.
type Deps struct {
	Config  config.Config
	State   *app.State
	Prefs   *prefs.Prefs
	Presets *preset.Store
	// Opener overrides camera access; nil uses the configured device.
	Opener capture.Opener
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	cfg       config.Config
	state     *app.State
	prefs     *prefs.Prefs
	presets   *preset.Store
	snapshots *snapshot.Writer
	session   *capture.Session

	rawView       *canvas.FrameView
	processedView *canvas.FrameView
	rangePanel    *panels.RangePanel
	capturePanel  *panels.CapturePanel
	statusBar     *widget.Label
}

// New creates a new main window.
func New(fyneApp fyne.App, deps Deps) *MainWindow {
	win := fyneApp.NewWindow(version.Name)

	mw := &MainWindow{
		Window:    win,
		app:       fyneApp,
		cfg:       deps.Config,
		state:     deps.State,
		prefs:     deps.Prefs,
		presets:   deps.Presets,
		snapshots: snapshot.NewWriter(deps.Config.Snapshot.Dir),
	}
	if mw.presets == nil {
		mw.presets = preset.NewStore(deps.Config.Presets.Path)
	}

	settings := capture.Settings{
		FPS:    deps.Config.Camera.FPS,
		Width:  deps.Config.Camera.Width,
		Height: deps.Config.Camera.Height,
	}
	mw.session = capture.NewSession(settings, deps.Opener, mw.state, mw)

	mw.restorePreferences()
	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.SetCloseIntercept(func() {
		mw.Shutdown()
		mw.Close()
	})

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.rawView = canvas.NewFrameView("Raw", mw.cfg.Display.MaxWidth)
	mw.rawView.SetOnTapped(mw.onSampleColor)
	mw.processedView = canvas.NewFrameView("Processed", mw.cfg.Display.MaxWidth)

	mw.rangePanel = panels.NewRangePanel(mw.state)
	mw.capturePanel = panels.NewCapturePanel(mw.state, mw.onStartCapture, mw.onStopCapture)

	mw.statusBar = widget.NewLabel(StatusWelcome)

	views := container.NewGridWithColumns(2, mw.rawView, mw.processedView)

	controls := container.NewVScroll(container.NewVBox(
		mw.capturePanel.Container(),
		mw.rangePanel.Container(),
	))

	split := container.NewHSplit(views, controls)
	split.SetOffset(0.7)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1280, 720))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Load Preset...", mw.onLoadPreset),
		fyne.NewMenuItem("Save Preset...", mw.onSavePreset),
		fyne.NewMenuItem("Delete Preset...", mw.onDeletePreset),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Preset File...", mw.onImportPreset),
		fyne.NewMenuItem("Export Preset YAML...", mw.onExportPreset),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Snapshot", mw.onSaveSnapshot),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.Shutdown()
			mw.app.Quit()
		}),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Refine Range from Mask", mw.onRefineRange),
		fyne.NewMenuItem("Reset Range", mw.onResetRange),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})

	mw.state.On(app.EventOutputModeChanged, func(data interface{}) {
		if mode, ok := data.(hsv.OutputMode); ok {
			mw.capturePanel.SetBinary(mode == hsv.OutputBinary)
		}
	})

	mw.state.On(app.EventPresetLoaded, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.SetTitle(version.Name + " - " + name)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// Session returns the capture session driven by this window.
func (mw *MainWindow) Session() *capture.Session {
	return mw.session
}

// Shutdown stops any capture and flushes preferences.
func (mw *MainWindow) Shutdown() {
	mw.session.Stop()
	mw.state.SetCapturing(false)
	mw.SavePreferences()
}

// capture.Sink

// ShowFrame displays a processed frame pair.
func (mw *MainWindow) ShowFrame(f capture.Frame) {
	mw.rawView.SetFrame(f.Raw)
	mw.processedView.SetFrame(f.Processed)

	st := mw.session.Stats()
	mw.capturePanel.SetStats(fmt.Sprintf("Frames: %d   Mask: %.1f%%   %.1f fps",
		f.Seq, f.Coverage*100, st.FPS))
}

// ClearFrames blanks both views.
func (mw *MainWindow) ClearFrames() {
	mw.rawView.Clear()
	mw.processedView.Clear()
}

// SetStatus shows a capture status message.
func (mw *MainWindow) SetStatus(msg string) {
	mw.state.SetStatus(msg)
}

// CaptureEnded resets the controls after the camera went away.
func (mw *MainWindow) CaptureEnded(err error) {
	log.Printf("capture ended: %v", err)
	mw.state.SetCapturing(false)
	mw.capturePanel.SetRunning(false)
}

// Capture control

func (mw *MainWindow) onStartCapture() {
	if mw.state.Capturing() {
		return
	}
	mw.capturePanel.SetRunning(true)
	mw.state.SetCapturing(true)

	device := mw.state.CameraID()
	if err := mw.session.Start(context.Background(), device); err != nil {
		log.Printf("start capture on device %d: %v", device, err)
		mw.state.SetCapturing(false)
		mw.capturePanel.SetRunning(false)
	}
}

func (mw *MainWindow) onStopCapture() {
	mw.session.Stop()
	mw.state.SetCapturing(false)
	mw.capturePanel.SetRunning(false)
}

// Range tools

// onSampleColor centers the range on the tapped raw pixel.
func (mw *MainWindow) onSampleColor(c color.Color, x, y int) {
	r, px := hsv.SampleColor(c, mw.cfg.HSV.SampleTolerance, mw.state.HueFull())
	mw.state.SetRange(r)
	mw.updateStatus(fmt.Sprintf("Sampled H%d S%d V%d at (%d, %d)", px[0], px[1], px[2], x, y))
}

func (mw *MainWindow) onRefineRange() {
	raw := mw.rawView.Frame()
	if f, ok := mw.session.LastFrame(); ok {
		raw = f.Raw
	}
	if raw == nil {
		mw.updateStatus("No frame to refine from")
		return
	}

	r, st, err := hsv.RefineImage(raw, mw.state.Range(), mw.cfg.HSV.RefineSigma, mw.state.HueFull())
	if err != nil {
		dialog.ShowError(fmt.Errorf("refine range: %w", err), mw.Window)
		return
	}
	mw.state.SetRange(r)
	mw.updateStatus("Refined: " + st.String())
}

func (mw *MainWindow) onResetRange() {
	mw.state.SetRange(hsv.FullRange(mw.state.HueFull()))
	mw.state.SetPresetName("")
	mw.SetTitle(version.Name)
	mw.updateStatus("Range reset")
}

// Snapshot

func (mw *MainWindow) onSaveSnapshot() {
	f, ok := mw.session.LastFrame()
	if !ok {
		mw.updateStatus("No frame to save")
		return
	}
	paths, err := mw.snapshots.Save(f.Raw, f.Processed, snapshot.Sidecar{
		Captured:     f.Timestamp,
		Camera:       mw.session.Device(),
		Mode:         f.Mode.String(),
		HueFullRange: f.HueFull,
		Coverage:     f.Coverage,
		Range:        f.Range,
	})
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	log.Printf("snapshot saved: %v", paths)
	mw.updateStatus("Snapshot saved to " + filepath.Dir(paths[0]))
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.Name,
		fmt.Sprintf("%s v%s\n\n"+
			"Find HSV threshold ranges for a USB camera feed.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Name, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}
