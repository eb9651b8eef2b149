// Package vkeyboard drives the synthetic virtual keyboard consumers
// downstream of the mapper see (spec.md §1, §6.1: "virtual device
// creation (uinput)" is an out-of-scope external collaborator the
// engine's output events are routed through).
package vkeyboard

import (
	"fmt"
	"log/slog"

	"github.com/bendahl/uinput"

	"github.com/kmapd/kmapd/internal/engine"
)

// deviceName is the name advertised for the synthetic device; device.go
// uses the same substring to recognise and skip it during enumeration.
const deviceName = "kmapd-virtual"

// VirtualKeyboard wraps a uinput keyboard and translates engine output
// events onto it.
type VirtualKeyboard struct {
	kb     uinput.Keyboard
	logger *slog.Logger
}

// New creates the synthetic keyboard via /dev/uinput.
func New(logger *slog.Logger) (*VirtualKeyboard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kb, err := uinput.CreateKeyboard("/dev/uinput", []byte(deviceName))
	if err != nil {
		return nil, fmt.Errorf("creating virtual keyboard: %w", err)
	}
	return &VirtualKeyboard{kb: kb, logger: logger}, nil
}

// Close releases the virtual keyboard.
func (v *VirtualKeyboard) Close() error {
	return v.kb.Close()
}

// Emit translates one engine output event onto the wire. Per spec.md
// §6.3, ForceReleased is encoded identically to Released on the wire —
// it is an internal-only distinction the key-state store needs to tell
// a synthetic hijack-release apart from a real one, not something a
// downstream consumer can observe.
func (v *VirtualKeyboard) Emit(ev engine.Event) error {
	switch ev.Status {
	case engine.Released, engine.ForceReleased:
		return v.kb.KeyUp(int(ev.Code))
	case engine.Clicked:
		return v.kb.KeyDown(int(ev.Code))
	case engine.Pressed:
		// The key is already down; another KeyDown triggers the
		// kernel's own auto-repeat rather than a fresh Down+Up pair.
		return v.kb.KeyDown(int(ev.Code))
	default:
		return fmt.Errorf("vkeyboard: unknown key status %v for code %d", ev.Status, ev.Code)
	}
}

// ForwardRaw forwards a raw key (code, value) pair unchanged — used when
// mapping is disabled (handler.Handler.SetEnabled(false)). Only the key
// values 0, 1 and 2 are accepted; any other value is an error.
func (v *VirtualKeyboard) ForwardRaw(code int32, value int32) error {
	switch value {
	case 0:
		return v.kb.KeyUp(int(code))
	case 1:
		return v.kb.KeyDown(int(code))
	case 2:
		return v.kb.KeyDown(int(code))
	default:
		return fmt.Errorf("vkeyboard: unknown raw value %d for code %d", value, code)
	}
}
