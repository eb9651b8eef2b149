// Package keystate implements the per-engine forward and reverse key
// stores described in spec.md §4.C: a forward map from physical
// keycode to its current logical state, and a reverse, insertion-ordered
// map from logical keycode to the set of physical keys currently
// producing it. Both are mutated only through Record and Release so
// the invariants in spec.md §3 hold after every call.
package keystate

// KeyStatus is the closed sum of tags spec.md §3 defines for a tracked
// physical key.
type KeyStatus int

const (
	// Clicked marks a key that transitioned from not-pressed to pressed.
	Clicked KeyStatus = iota
	// Pressed marks auto-repeat while the key is held.
	Pressed
	// Released marks a key that transitioned from pressed to not-pressed.
	Released
	// ForceReleased is internal-only: a physical key whose logical
	// effect has been synthetically released because a layer
	// consumed it, while the physical key itself is still held.
	ForceReleased
)

func (s KeyStatus) String() string {
	switch s {
	case Clicked:
		return "Clicked"
	case Pressed:
		return "Pressed"
	case Released:
		return "Released"
	case ForceReleased:
		return "ForceReleased"
	default:
		return "Unknown"
	}
}

// State is the value stored per currently-tracked physical key.
type State struct {
	// MappedCode is the logical keycode currently emitted on this
	// physical key's behalf.
	MappedCode int32
	// Status is one of Clicked, Pressed, ForceReleased. Released
	// states are never stored — see Release.
	Status KeyStatus
	// Time is the logical clock value assigned at the last state change.
	Time uint64
}

// orderedSet is an insertion-ordered set of physical keycodes producing
// a given logical code. Only membership, append, remove-by-key,
// emptiness, and "most recently appended" are ever queried, so a slice
// plus a membership index is sufficient and avoids pulling in a
// separate ordered-map dependency for a single internal use.
type orderedSet struct {
	order []int32
	index map[int32]int
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[int32]int)}
}

func (s *orderedSet) add(code int32) {
	if _, ok := s.index[code]; ok {
		return
	}
	s.index[code] = len(s.order)
	s.order = append(s.order, code)
}

func (s *orderedSet) remove(code int32) {
	pos, ok := s.index[code]
	if !ok {
		return
	}
	delete(s.index, code)
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	for i := pos; i < len(s.order); i++ {
		s.index[s.order[i]] = i
	}
}

func (s *orderedSet) last() (int32, bool) {
	if len(s.order) == 0 {
		return 0, false
	}
	return s.order[len(s.order)-1], true
}

func (s *orderedSet) len() int {
	return len(s.order)
}

// Store holds the forward store (source_to_mapped), the reverse store
// (mapped_to_source) and the logical clock for a single mapping engine.
// It is not safe for concurrent use — each engine owns exactly one
// Store from a single goroutine, per spec.md §5.
type Store struct {
	forward map[int32]State
	reverse map[int32]*orderedSet
	clock   uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		forward: make(map[int32]State),
		reverse: make(map[int32]*orderedSet),
	}
}

// IsPressed reports whether the forward store contains phys.
func (s *Store) IsPressed(phys int32) bool {
	_, ok := s.forward[phys]
	return ok
}

// StateOf returns the current state of phys, if tracked.
func (s *Store) StateOf(phys int32) (State, bool) {
	st, ok := s.forward[phys]
	return st, ok
}

// MostRecentSource returns the last physical producer of logical code
// log, if any currently produce it.
func (s *Store) MostRecentSource(log int32) (int32, bool) {
	set, ok := s.reverse[log]
	if !ok {
		return 0, false
	}
	return set.last()
}

// ProducerCount returns the number of physical keys currently
// producing logical code log.
func (s *Store) ProducerCount(log int32) int {
	set, ok := s.reverse[log]
	if !ok {
		return 0
	}
	return set.len()
}

// Record inserts or overwrites the forward entry for phys, appends
// phys to the reverse set for log (if not already present), and
// advances the logical clock. status must be one of Clicked, Pressed,
// or ForceReleased; Released entries are removed via Release instead.
func (s *Store) Record(phys, log int32, status KeyStatus) {
	s.forward[phys] = State{
		MappedCode: log,
		Status:     status,
		Time:       s.clock,
	}
	set, ok := s.reverse[log]
	if !ok {
		set = newOrderedSet()
		s.reverse[log] = set
	}
	set.add(phys)
	s.clock++
}

// Release removes phys from the forward store and from the reverse
// set of the logical code it was last mapped to, dropping the reverse
// entry entirely once it is empty, and advances the logical clock.
// Release is a no-op if phys is not currently tracked.
func (s *Store) Release(phys int32) {
	st, ok := s.forward[phys]
	if !ok {
		return
	}
	delete(s.forward, phys)
	if set, ok := s.reverse[st.MappedCode]; ok {
		set.remove(phys)
		if set.len() == 0 {
			delete(s.reverse, st.MappedCode)
		}
	}
	s.clock++
}

// Len reports the number of physical keys currently tracked by the
// forward store — I3 of spec.md §8.1.
func (s *Store) Len() int {
	return len(s.forward)
}
