// Package handler coordinates reading raw events off one physical
// keyboard, running them through that keyboard's mapping engine, and
// writing the resulting events to the shared virtual keyboard — the
// event-loop/fd-multiplexing layer spec.md §1 treats as external to
// the engine itself.
package handler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kmapd/kmapd/internal/device"
	"github.com/kmapd/kmapd/internal/engine"
	"github.com/kmapd/kmapd/internal/keycodes"
	"github.com/kmapd/kmapd/internal/vkeyboard"
)

// Handler owns one engine.Engine for one physical keyboard and writes
// its output to a shared virtual keyboard. Per spec.md §5, each
// keyboard's engine is single-owner and not thread-safe; Handler
// upholds that by running ProcessEvents from exactly one goroutine per
// Handler, and only ever touching its engine from that goroutine.
type Handler struct {
	name   string
	eng    *engine.Engine
	vkb    *vkeyboard.VirtualKeyboard
	logger *slog.Logger

	enabled atomic.Bool

	// mu is held around each eng.MapEvent call in handleEvent (the
	// teacher's mutex-per-handler pattern); enabled is an atomic.Bool
	// and needs no lock.
	mu sync.Mutex
}

// New creates a Handler for one physical keyboard's event stream,
// mapping through eng and emitting to vkb.
func New(name string, eng *engine.Engine, vkb *vkeyboard.VirtualKeyboard, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{name: name, eng: eng, vkb: vkb, logger: logger}
	h.enabled.Store(true)
	return h
}

// SetEnabled toggles whether incoming events are mapped at all. When
// disabled, raw events are forwarded to the virtual keyboard unchanged
// and never reach engine.MapEvent — the global passthrough toggle the
// teacher's system tray drives.
func (h *Handler) SetEnabled(enabled bool) {
	h.enabled.Store(enabled)
	h.logger.Info("handler state changed", "keyboard", h.name, "enabled", enabled)
}

// ProcessEvents reads raw events from events until ctx is cancelled,
// routing each one through Handler's engine and writing the resulting
// events to the virtual keyboard, in input order, per spec.md §5.
func (h *Handler) ProcessEvents(ctx context.Context, events <-chan device.RawEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := h.handleEvent(ev); err != nil {
				h.logger.Error("error handling event", "keyboard", h.name, "error", err)
			}
		}
	}
}

func (h *Handler) handleEvent(ev device.RawEvent) error {
	h.logger.Debug("raw event",
		"keyboard", h.name,
		"code", ev.Code,
		"name", keycodes.CodeToName(keycodes.Code(ev.Code)),
		"value", ev.Value,
	)

	if !h.enabled.Load() {
		return h.vkb.ForwardRaw(ev.Code, ev.Value)
	}

	status, ok := statusFromRaw(ev.Value)
	if !ok {
		h.logger.Warn("unknown raw event value, not mapped",
			"keyboard", h.name, "code", ev.Code, "value", ev.Value)
		return h.vkb.ForwardRaw(ev.Code, ev.Value)
	}

	h.mu.Lock()
	out := h.eng.MapEvent(engine.Event{Code: ev.Code, Status: status})
	h.mu.Unlock()

	for _, oev := range out {
		if err := h.vkb.Emit(oev); err != nil {
			return err
		}
	}
	return nil
}

// statusFromRaw translates the kernel's 0/1/2 encoding (spec.md §6.3)
// into the engine's KeyStatus. ForceReleased never appears on the
// wire, so it is never a valid raw value.
func statusFromRaw(value int32) (engine.KeyStatus, bool) {
	switch value {
	case 0:
		return engine.Released, true
	case 1:
		return engine.Clicked, true
	case 2:
		return engine.Pressed, true
	default:
		return 0, false
	}
}
