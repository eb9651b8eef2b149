// Package layer implements the layer-selection query described in
// spec.md §4.D: given the current key-state store and the configured
// layers, determine the single active layer deterministically. The
// selector mutates nothing — it is a pure query over the store.
package layer

import "github.com/kmapd/kmapd/internal/keystate"

// Layer pairs an ordered trigger set with the override table it
// activates when every member of the trigger set is pressed.
type Layer struct {
	// Trigger holds the physical keycodes that must all be held for
	// this layer to be a candidate, in ascending order — the order
	// spec.md §4.E's on_click synthesizes modifier events in.
	Trigger []int32
	// Override maps physical keycode to logical keycode for this layer.
	Override map[int32]int32
}

// triggerPressed reports whether every member of l's trigger set is
// currently held.
func triggerPressed(l Layer, store *keystate.Store) bool {
	for _, k := range l.Trigger {
		if !store.IsPressed(k) {
			return false
		}
	}
	return true
}

// lastPressedTime returns the maximum, over the trigger set's members,
// of the logical time at which each member's most recent physical
// source last changed — spec.md §4.D's tiebreak quantity.
func lastPressedTime(l Layer, store *keystate.Store) (uint64, bool) {
	var max uint64
	found := false
	for _, k := range l.Trigger {
		src, ok := store.MostRecentSource(k)
		if !ok {
			continue
		}
		st, ok := store.StateOf(src)
		if !ok {
			continue
		}
		if !found || st.Time > max {
			max = st.Time
			found = true
		}
	}
	return max, found
}

// Select returns the index into layers of the active layer, or false
// if none is a candidate. Candidates are layers whose full trigger set
// is pressed; among candidates the winner has the largest trigger set,
// ties broken by the most recently completed trigger.
func Select(layers []Layer, store *keystate.Store) (int, bool) {
	best := -1
	var bestTime uint64
	for i, l := range layers {
		if !triggerPressed(l, store) {
			continue
		}
		if best == -1 {
			best = i
			bestTime, _ = lastPressedTime(l, store)
			continue
		}
		switch {
		case len(l.Trigger) > len(layers[best].Trigger):
			best = i
			bestTime, _ = lastPressedTime(l, store)
		case len(l.Trigger) == len(layers[best].Trigger):
			t, _ := lastPressedTime(l, store)
			if t > bestTime {
				best = i
				bestTime = t
			}
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
