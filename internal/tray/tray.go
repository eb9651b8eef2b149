// Package tray provides system tray integration using fyne.io/systray.
// Adapted from the teacher's layout-switcher menu: this daemon has no
// per-device layout concept, so the layout submenu is replaced with a
// "Reload config" action that re-reads the mapping document and
// rebuilds the router, while the enable/disable toggle and quit
// handling are kept as-is.
package tray

import (
	"log/slog"
	"time"

	"fyne.io/systray"
)

// Config holds tray configuration.
type Config struct {
	Enabled bool

	OnReload func() error
	OnToggle func(enabled bool)
	OnQuit   func()

	Logger *slog.Logger
}

// Tray represents the system tray icon and menu.
type Tray struct {
	logger *slog.Logger

	onReload func() error
	onToggle func(enabled bool)
	onQuit   func()

	enabled bool

	statusItem *systray.MenuItem
	reloadItem *systray.MenuItem
}

// New creates a new system tray icon.
func New(cfg Config) *Tray {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		enabled:  cfg.Enabled,
		onReload: cfg.OnReload,
		onToggle: cfg.OnToggle,
		onQuit:   cfg.OnQuit,
		logger:   logger,
	}
}

// Run starts the system tray. This blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(keyboardIcon)
	systray.SetTitle("kmapd")
	t.updateTooltip()

	label := "✓ Enabled"
	if !t.enabled {
		label = "✗ Disabled"
	}
	t.statusItem = systray.AddMenuItem(label, "Toggle key mapping")

	systray.AddSeparator()

	t.reloadItem = systray.AddMenuItem("Reload config", "Re-read the mapping config and rebuild routing")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Exit kmapd")

	go t.handleClicks(quitItem)
}

func (t *Tray) handleClicks(quitItem *systray.MenuItem) {
	for {
		select {
		case <-t.statusItem.ClickedCh:
			t.toggleEnabled()

		case <-t.reloadItem.ClickedCh:
			t.reload()

		case <-quitItem.ClickedCh:
			if t.onQuit != nil {
				t.onQuit()
			}
			systray.Quit()
			return

		default:
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func (t *Tray) toggleEnabled() {
	t.enabled = !t.enabled

	if t.enabled {
		t.statusItem.SetTitle("✓ Enabled")
		systray.SetIcon(keyboardIcon)
	} else {
		t.statusItem.SetTitle("✗ Disabled")
		systray.SetIcon(keyboardDisabledIcon)
	}

	t.updateTooltip()

	if t.onToggle != nil {
		t.onToggle(t.enabled)
	}
}

func (t *Tray) reload() {
	t.logger.Info("reload requested from tray")
	if t.onReload == nil {
		return
	}
	if err := t.onReload(); err != nil {
		t.logger.Error("reload failed", "error", err)
		systray.SetTooltip("kmapd: reload failed — " + err.Error())
		return
	}
	t.updateTooltip()
}

func (t *Tray) updateTooltip() {
	status := "Enabled"
	if !t.enabled {
		status = "Disabled"
	}
	systray.SetTooltip("kmapd: " + status)
}

func (t *Tray) onExit() {
	t.logger.Info("tray exiting")
}

// Quit stops the system tray.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetEnabled sets the enabled state, reflecting an external toggle
// (e.g. a signal) in the menu.
func (t *Tray) SetEnabled(enabled bool) {
	t.enabled = enabled
	if t.statusItem != nil {
		if enabled {
			t.statusItem.SetTitle("✓ Enabled")
		} else {
			t.statusItem.SetTitle("✗ Disabled")
		}
	}
	t.updateTooltip()
}
