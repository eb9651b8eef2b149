// Package device handles discovery, exclusive grabbing, and raw event
// reading for hardware keyboard devices under /dev/input. This is a
// collaborator external to the mapping engine (spec.md §1: "Linux
// input device discovery, grabbing (EVIOCGRAB), and virtual device
// creation are out of scope for the core specification") — it exists
// to feed engine.Engine instances, not to implement them.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

// Device wraps an open, possibly-grabbed evdev input device.
type Device struct {
	path string
	dev  *evdev.InputDevice
	name string
}

func (d *Device) Path() string { return d.path }
func (d *Device) Name() string { return d.name }

// RawEvent is a single (code, value) pair read off a Device, where
// value follows the Linux kernel encoding of spec.md §6.3:
// 0=Released, 1=Clicked, 2=Pressed.
type RawEvent struct {
	Code   int32
	Value  int32
	Device *Device
}

// selfDeviceName is the substring used to recognise (and skip) our own
// synthetic keyboard when enumerating /dev/input, so the daemon never
// grabs the device it created.
const selfDeviceName = "kmapd-virtual"

// Manager discovers, grabs, and closes keyboard devices.
type Manager struct {
	mu      sync.Mutex
	devices map[string]*Device
	logger  *slog.Logger
}

// NewManager returns a Manager that logs through logger.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{devices: make(map[string]*Device), logger: logger}
}

// FindKeyboards globs /dev/input/event* and returns every node that
// looks like a keyboard, per isKeyboard's heuristic.
func (m *Manager) FindKeyboards() ([]*Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("globbing input devices: %w", err)
	}

	var keyboards []*Device
	for _, path := range matches {
		dev, ok := m.openIfKeyboard(path)
		if !ok {
			continue
		}
		m.devices[path] = dev
		keyboards = append(keyboards, dev)
	}
	return keyboards, nil
}

// openIfKeyboard opens path and returns the Device if it passes
// isKeyboard and is not our own synthetic device; callers must hold m.mu.
func (m *Manager) openIfKeyboard(path string) (*Device, bool) {
	evd, err := evdev.Open(path)
	if err != nil {
		m.logger.Debug("cannot open device", "path", path, "error", err)
		return nil, false
	}

	name, err := evd.Name()
	if err != nil {
		evd.Close()
		return nil, false
	}

	if !isKeyboard(evd) {
		evd.Close()
		return nil, false
	}

	if strings.Contains(strings.ToLower(name), selfDeviceName) {
		evd.Close()
		return nil, false
	}

	m.logger.Info("found keyboard", "name", name, "path", path)
	return &Device{path: path, dev: evd, name: name}, true
}

// isKeyboard reports whether dev advertises EV_KEY capability for at
// least one code in 30..52 (KEY_A through KEY_DOT: the home and bottom
// letter rows and their punctuation), the teacher's heuristic for
// distinguishing real keyboards from devices that merely expose a few
// key-like events (e.g. power buttons).
func isKeyboard(dev *evdev.InputDevice) bool {
	for _, t := range dev.CapableTypes() {
		if t != evdev.EV_KEY {
			continue
		}
		for _, code := range dev.CapableEvents(evdev.EV_KEY) {
			if code >= 30 && code <= 52 {
				return true
			}
		}
	}
	return false
}

// GrabDevice takes exclusive control of dev (EVIOCGRAB via go-evdev),
// per spec.md §6.1.
func (m *Manager) GrabDevice(dev *Device) error {
	if err := dev.dev.Grab(); err != nil {
		return fmt.Errorf("grabbing device %s: %w", dev.path, err)
	}
	m.logger.Info("grabbed device", "name", dev.name)
	return nil
}

// ReleaseDevice releases exclusive control of dev.
func (m *Manager) ReleaseDevice(dev *Device) error {
	if err := dev.dev.Ungrab(); err != nil {
		return fmt.Errorf("releasing device %s: %w", dev.path, err)
	}
	m.logger.Info("released device", "name", dev.name)
	return nil
}

// Close closes every device the Manager has opened.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, dev := range m.devices {
		dev.dev.Close()
		delete(m.devices, path)
	}
}

// ReadEvents reads raw key events from dev and sends them to events
// until ctx is cancelled or the device errors out (e.g. unplugged).
// Only EV_KEY events are forwarded; events of every other kind are read
// and discarded here, so they reach neither the handler nor the virtual
// keyboard.
func ReadEvents(ctx context.Context, dev *Device, events chan<- RawEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ev, err := dev.dev.ReadOne()
		if err != nil {
			return fmt.Errorf("reading event from %s: %w", dev.path, err)
		}

		if ev.Type != evdev.EV_KEY {
			continue
		}

		select {
		case events <- RawEvent{Code: int32(ev.Code), Value: ev.Value, Device: dev}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
