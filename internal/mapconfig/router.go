package mapconfig

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kmapd/kmapd/internal/engine"
)

// Router maps a physical keyboard's device name to the engine instance
// that owns it, built once from a RootConfig at startup. Each
// KeyboardConfig document yields exactly one engine, shared by every
// device name it lists — spec.md §6.2: "an event from any device
// listed in keyboards is routed through this engine."
//
// A Router is shared between the hot-plug watcher goroutine (reading
// via EngineFor as new devices appear) and the tray's config-reload
// callback (replacing the whole table via Replace); mu guards that
// handoff so a reload can never race a concurrent lookup.
type Router struct {
	mu       sync.RWMutex
	byDevice map[string]*engine.Engine
}

// BuildRouter validates and builds one engine per document in root,
// returning the first validation error encountered (with the index of
// the offending document) so callers can report which keyboard's
// configuration is broken.
func BuildRouter(root RootConfig, lookup NameToCode, logger *slog.Logger) (*Router, error) {
	r := &Router{byDevice: make(map[string]*engine.Engine)}
	for i, kc := range root {
		if err := Validate(kc, lookup); err != nil {
			return nil, fmt.Errorf("keyboard config #%d: %w", i, err)
		}
		if len(kc.Keyboards) == 0 {
			return nil, fmt.Errorf("keyboard config #%d: keyboards list must be non-empty", i)
		}
		cfg := Build(kc, lookup)
		eng := engine.New(cfg, logger)
		for _, name := range kc.Keyboards {
			r.byDevice[name] = eng
		}
	}
	return r, nil
}

// EngineFor returns the engine routing events from the named device,
// if any keyboard configuration claims it.
func (r *Router) EngineFor(deviceName string) (*engine.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.byDevice[deviceName]
	return eng, ok
}

// Replace atomically swaps r's routing table for other's, for a
// config reload triggered from the tray while the hot-plug watcher may
// be concurrently calling EngineFor on a newly-plugged device.
func (r *Router) Replace(other *Router) {
	other.mu.RLock()
	byDevice := other.byDevice
	other.mu.RUnlock()

	r.mu.Lock()
	r.byDevice = byDevice
	r.mu.Unlock()
}
