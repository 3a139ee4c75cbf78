package app

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// HotReloader watches the running binary for changes and triggers a callback
// when a newer version is detected. It also drives a periodic tick used to
// flush preferences.
type HotReloader struct {
	execPath     string
	startupTime  time.Time
	tickInterval time.Duration

	mu          sync.Mutex
	stopCh      chan struct{}
	onNewBinary func() // Called when newer binary detected
	onTick      func() // Called every tickInterval
}

// NewHotReloader creates a new hot reloader that watches the current executable.
// Returns nil if the executable path cannot be determined.
func NewHotReloader(tickInterval time.Duration) *HotReloader {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	return NewHotReloaderForPath(execPath, tickInterval)
}

// NewHotReloaderForPath watches an arbitrary file. Returns nil if it
// cannot be stat'ed.
func NewHotReloaderForPath(path string, tickInterval time.Duration) *HotReloader {
	// go build replaces the file, so resolve symlinks up front
	if realPath, err := filepath.EvalSymlinks(path); err == nil {
		path = realPath
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	return &HotReloader{
		execPath:     path,
		startupTime:  info.ModTime(),
		tickInterval: tickInterval,
	}
}

// OnNewBinary sets the callback to invoke when a newer binary is detected.
// The callback is called from a background goroutine.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNewBinary = callback
}

// OnTick sets the callback invoked every tick interval.
func (h *HotReloader) OnTick(callback func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTick = callback
}

// Start begins watching in a background goroutine. The directory is
// watched rather than the file since builds replace it.
func (h *HotReloader) Start() {
	h.mu.Lock()
	h.stopCh = make(chan struct{})
	stopCh := h.stopCh
	h.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Hot reload: watcher unavailable: %v", err)
		watcher = nil
	} else if err := watcher.Add(filepath.Dir(h.execPath)); err != nil {
		log.Printf("Hot reload: cannot watch %s: %v", filepath.Dir(h.execPath), err)
		watcher.Close()
		watcher = nil
	}

	go h.watchLoop(watcher, stopCh)
}

// Stop stops the watcher goroutine.
func (h *HotReloader) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
}

func (h *HotReloader) watchLoop(watcher *fsnotify.Watcher, stopCh chan struct{}) {
	var events <-chan fsnotify.Event
	var errs <-chan error
	if watcher != nil {
		defer watcher.Close()
		events = watcher.Events
		errs = watcher.Errors
	}

	ticker := time.NewTicker(h.tickInterval)
	defer ticker.Stop()

	notified := false
	for {
		select {
		case <-stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != h.execPath || notified {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 && h.checkForUpdate() {
				notified = true
				h.fireNewBinary()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("Hot reload: watch error: %v", err)
		case <-ticker.C:
			h.mu.Lock()
			tick := h.onTick
			h.mu.Unlock()
			if tick != nil {
				tick()
			}
			// Fallback for filesystems without inotify support
			if watcher == nil && !notified && h.checkForUpdate() {
				notified = true
				h.fireNewBinary()
			}
		}
	}
}

func (h *HotReloader) fireNewBinary() {
	h.mu.Lock()
	cb := h.onNewBinary
	h.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// checkForUpdate returns true if the binary has been modified since startup.
func (h *HotReloader) checkForUpdate() bool {
	info, err := os.Stat(h.execPath)
	if err != nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return info.ModTime().After(h.startupTime)
}

// ExecPath returns the path to the watched executable.
func (h *HotReloader) ExecPath() string {
	return h.execPath
}

// StartupTime returns the binary's modification time at program start.
func (h *HotReloader) StartupTime() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.startupTime
}

// ResetBaseline updates the baseline timestamp to the current binary's mod time.
// Call this when the user declines a restart to avoid repeated notifications.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.execPath); err == nil {
		h.mu.Lock()
		h.startupTime = info.ModTime()
		h.mu.Unlock()
	}
}

// Restart replaces the current process with a new instance of the binary.
// This function does not return on success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
