// Package main provides the entry point for the HSV Range Finder application.
package main

import (
	"flag"
	"log"
	"time"

	"hsv-range-finder/internal/app"
	"hsv-range-finder/internal/config"
	"hsv-range-finder/internal/preset"
	"hsv-range-finder/internal/version"
	"hsv-range-finder/ui/mainwindow"
	"hsv-range-finder/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appID = "io.github.hsvrangefinder"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	camera := flag.Int("camera", -1, "Camera device ID (overrides config and saved preferences)")
	presetName := flag.String("preset", "", "Preset to load at startup")
	writeConfig := flag.Bool("write-config", false, "Write the effective config file and exit")
	flag.Parse()

	log.Printf("Starting %s v%s", version.Name, version.Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *writeConfig {
		if err := config.Save(cfg); err != nil {
			log.Fatalf("write config: %v", err)
		}
		return
	}

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.RangeFinderTheme{})

	state := app.NewState(cfg.Camera.Device, cfg.HSV.HueFullRange)
	state.SetBinaryOutput(cfg.Display.BinaryOutput)

	store, err := preset.Load(cfg.Presets.Path)
	if err != nil {
		log.Printf("Failed to load presets %s: %v", cfg.Presets.Path, err)
		store = preset.NewStore(cfg.Presets.Path)
	}

	win := mainwindow.New(a, mainwindow.Deps{
		Config:  cfg,
		State:   state,
		Prefs:   prefs.Load(),
		Presets: store,
	})

	if *camera >= 0 {
		state.SetCameraID(*camera)
	}
	if *presetName != "" {
		if p, err := store.Get(*presetName); err != nil {
			log.Printf("Preset %q: %v", *presetName, err)
		} else {
			win.ApplyPreset(p)
		}
	}

	setupHotReload(win)

	win.ShowAndRun()
	win.Shutdown()
}

// setupHotReload configures automatic restart detection when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnTick(func() {
		win.SavePreferencesIfChanged()
	})

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Stop()
					reloader.Start()
					return
				}
				log.Println("Hot reload: stopping capture and saving preferences before restart...")
				win.Shutdown()
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
