// Package engine implements the mapping engine of spec.md §4.E: a pure
// per-device state machine consuming a stream of raw key events and
// producing a stream of synthetic key events that implement the
// layered "simple + complex layer" remapping model described in
// spec.md §3–§4. The engine performs no I/O, holds no file descriptors,
// and is owned exclusively by one single-threaded caller (spec.md §5).
package engine

import (
	"errors"
	"log/slog"

	"github.com/kmapd/kmapd/internal/keystate"
	"github.com/kmapd/kmapd/internal/layer"
)

// KeyStatus mirrors keystate.KeyStatus for the engine's public event
// type, so callers outside keystate never need to import it directly.
type KeyStatus = keystate.KeyStatus

const (
	Clicked       = keystate.Clicked
	Pressed       = keystate.Pressed
	Released      = keystate.Released
	ForceReleased = keystate.ForceReleased
)

// Event is the (code, status) pair both input and output events share,
// per spec.md §3.
type Event struct {
	Code   int32
	Status KeyStatus
}

// ErrIllegalTransition is attached (as the "err" attribute) to the log
// record written when an input event pair violates the dispatch table
// of spec.md §4.E — e.g. a Clicked event for a key already in
// ForceReleased status. MapEvent never returns it. Per spec.md §7 this
// is never fatal: the engine logs and emits no events.
var ErrIllegalTransition = errors.New("illegal key transition")

// ErrInvariantViolation is attached (as the "err" attribute) to the log
// record written when an invariant the spec guarantees (e.g. every
// trigger-set member of the active layer being present in the forward
// store) does not hold. MapEvent never returns it.
// Per spec.md §7 this is treated as a bug: log loudly, emit no events.
var ErrInvariantViolation = errors.New("key-state invariant violation")

// Config is the built, code-level configuration an Engine runs against
// — the output of the mapconfig package's Build step (spec.md §4.B).
// Both fields are immutable after construction (spec.md §3).
type Config struct {
	// Simple is the unconditional physical->logical remap table.
	// A physical code absent from Simple maps to itself.
	Simple map[int32]int32
	// Layers is the ordered collection of configured layers. Selection
	// (layer.Select) goes by size, then recency; order only decides
	// between equal-size candidates with the same last-press time, where
	// the earlier layer wins. Duplicate trigger sets are expected to already have been
	// deduplicated by mapconfig.Build ("later wins").
	Layers []layer.Layer
}

// Engine is the per-device mapping state machine of spec.md §4.E.
type Engine struct {
	cfg    Config
	store  *keystate.Store
	logger *slog.Logger
}

// New builds an Engine from an already-validated Config. Config
// validation itself (spec.md §4.B ConfigError) happens one layer up,
// in mapconfig — by the time a Config reaches here it is assumed sound.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, store: keystate.New(), logger: logger}
}

// simpleTarget resolves phys through the simple table, defaulting to
// identity.
func (e *Engine) simpleTarget(phys int32) int32 {
	if t, ok := e.cfg.Simple[phys]; ok {
		return t
	}
	return phys
}

// activeLayer returns the currently selected layer, if any.
func (e *Engine) activeLayer() (layer.Layer, bool) {
	idx, ok := layer.Select(e.cfg.Layers, e.store)
	if !ok {
		return layer.Layer{}, false
	}
	return e.cfg.Layers[idx], true
}

// complexTarget resolves phys through l's override table.
func complexTarget(l layer.Layer, phys int32) (int32, bool) {
	t, ok := l.Override[phys]
	return t, ok
}

// MapEvent consumes one raw input event and returns the ordered list
// of events to emit downstream, per spec.md §4.E's dispatch table.
// Deterministic, no I/O; never panics in production — illegal or
// invariant-violating input is logged and yields no output.
func (e *Engine) MapEvent(ev Event) []Event {
	phys := ev.Code
	prevState, tracked := e.store.StateOf(phys)
	prevStatus := Released
	if tracked {
		prevStatus = prevState.Status
	}

	switch {
	case prevStatus == Released && ev.Status == Clicked:
		return e.onClick(phys)

	case (prevStatus == Clicked || prevStatus == Pressed) && ev.Status == Released:
		if !tracked {
			e.logger.Warn("key release for untracked key, skipping", "code", phys)
			return nil
		}
		return e.onRelease(phys, prevState)

	case prevStatus == ForceReleased && ev.Status == Released:
		e.onForcedReleaseCleanup(phys, prevState)
		return nil

	case (prevStatus == Clicked || prevStatus == Pressed) && ev.Status == Pressed:
		return []Event{{Code: prevState.MappedCode, Status: Pressed}}

	case prevStatus == ForceReleased && ev.Status == Pressed:
		// Auto-repeat of a hijacked modifier is swallowed.
		return nil

	case prevStatus == ForceReleased && ev.Status == Clicked:
		e.logger.Error("impossible transition: key clicked while force-released",
			"code", phys, "err", ErrIllegalTransition)
		return nil

	default:
		e.logger.Warn("illegal key transition, ignoring",
			"code", phys, "prev", prevStatus.String(), "incoming", ev.Status.String(),
			"err", ErrIllegalTransition)
		return nil
	}
}

// onClick implements spec.md §4.E's on_click: synthesize modifier
// events around the primary keypress, record them and the primary
// press in that order, and emit them in that order.
func (e *Engine) onClick(phys int32) []Event {
	simple := e.simpleTarget(phys)

	active, hasActive := e.activeLayer()
	var complex int32
	isComplex := false
	if hasActive {
		complex, isComplex = complexTarget(active, phys)
	}

	resolved := simple
	if isComplex {
		resolved = complex
	}

	type synth struct {
		src, tgt int32
		status   KeyStatus
	}
	var synthetics []synth

	if hasActive {
		for _, mod := range active.Trigger {
			ms, ok := e.store.StateOf(mod)
			if !ok {
				e.logger.Error("trigger-set member not pressed despite active layer",
					"code", mod, "err", ErrInvariantViolation)
				return nil
			}
			switch {
			case ms.Status == Clicked && isComplex:
				synthetics = append(synthetics, synth{mod, ms.MappedCode, ForceReleased})
			case ms.Status == ForceReleased && !isComplex:
				synthetics = append(synthetics, synth{mod, ms.MappedCode, Clicked})
			case ms.Status == Released:
				e.logger.Error("trigger-set member already released",
					"code", mod, "err", ErrInvariantViolation)
				return nil
			default:
				// Clicked && !isComplex, ForceReleased && isComplex,
				// and Pressed in either case: no synthetic effect.
			}
		}
	}

	for _, s := range synthetics {
		e.store.Record(s.src, s.tgt, s.status)
	}
	e.store.Record(phys, resolved, Clicked)

	events := make([]Event, 0, len(synthetics)+1)
	for _, s := range synthetics {
		events = append(events, Event{Code: s.tgt, Status: s.status})
	}
	events = append(events, Event{Code: resolved, Status: Clicked})
	return events
}

// onRelease implements spec.md §4.E's on_release: emit the logical
// release only when the releasing physical key is the last producer
// of its logical code (reference-counted release).
func (e *Engine) onRelease(phys int32, prevState keystate.State) []Event {
	prevLog := prevState.MappedCode
	var out []Event
	if e.store.ProducerCount(prevLog) == 1 {
		out = append(out, Event{Code: prevLog, Status: Released})
	}
	e.store.Release(phys)
	return out
}

// onForcedReleaseCleanup implements spec.md §4.E's
// on_forced_release_cleanup: the logical effect was already withdrawn
// synthetically, so only the internal state is updated — nothing is
// emitted.
func (e *Engine) onForcedReleaseCleanup(phys int32, prevState keystate.State) {
	e.store.Release(phys)
}
