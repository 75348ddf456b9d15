// Package tray provides the operator's system tray menu: the live view
// readout, the last photo, Reset View and Quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onReset      func()
	onOpenViewer func()
	onQuit       func()
	mu           sync.RWMutex

	// Menu items stored for later updates
	menuView      *systray.MenuItem
	menuLastPhoto *systray.MenuItem
	viewTitle     string
	photoTitle    string
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{
		viewTitle:  viewTitle(1, 0),
		photoTitle: photoTitle(""),
	}
}

// OnReset sets the callback function to be called when Reset View is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnOpenViewer sets the callback function to be called when Open Viewer is clicked.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenViewer = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Hand Gestures")
	systray.SetTooltip("Hand gesture zoom and photo control")

	t.mu.Lock()
	t.menuView = systray.AddMenuItem(t.viewTitle, "Current view")
	t.menuView.Disable()
	t.menuLastPhoto = systray.AddMenuItem(t.photoTitle, "Last photo taken")
	t.menuLastPhoto.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open Viewer", "Open the live view in a browser")
	menuReset := systray.AddMenuItem("Reset View", "Return to zoom 1x and no rotation")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Hand Gestures")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuViewer.ClickedCh:
				t.call(func() func() { return t.onOpenViewer })
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// call runs the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleReset handles the Reset View menu item click.
func (t *Tray) handleReset() {
	t.call(func() func() { return t.onReset })
	t.SetView(1, 0)
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// SetView updates the view readout in the menu.
func (t *Tray) SetView(zoom, rotation float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.viewTitle = viewTitle(zoom, rotation)
	if t.menuView != nil {
		t.menuView.SetTitle(t.viewTitle)
	}
}

// SetLastPhoto updates the last photo display in the menu.
func (t *Tray) SetLastPhoto(filename string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.photoTitle = photoTitle(filename)
	if t.menuLastPhoto != nil {
		t.menuLastPhoto.SetTitle(t.photoTitle)
	}
}

// ViewTitle returns the current view readout.
func (t *Tray) ViewTitle() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viewTitle
}

// PhotoTitle returns the current last photo readout.
func (t *Tray) PhotoTitle() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.photoTitle
}

func viewTitle(zoom, rotation float64) string {
	return fmt.Sprintf("Zoom %.2fx, rotation %.1f deg", zoom, rotation)
}

func photoTitle(filename string) string {
	if filename == "" {
		return "Last photo: none"
	}
	return "Last photo: " + filename
}
