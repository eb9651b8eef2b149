package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kmapd/kmapd/internal/layer"
)

// Keycodes mirroring the reference config shared by spec.md §8.3 and
// kbct's test.rs create_test_kbct(): simple "3"->"2", layer [A,B]
// swapping 1<->2, layer [A,C] mapping 2->3, layer [A] mapping 1->3.
const (
	k1 int32 = 2
	k2 int32 = 3
	k3 int32 = 4
	kA int32 = 30
	kB int32 = 48
	kC int32 = 46
)

func testConfig() Config {
	return Config{
		Simple: map[int32]int32{k3: k2},
		Layers: []layer.Layer{
			{Trigger: []int32{kA, kB}, Override: map[int32]int32{k1: k2, k2: k1}},
			{Trigger: []int32{kA, kC}, Override: map[int32]int32{k2: k3}},
			{Trigger: []int32{kA}, Override: map[int32]int32{k1: k3}},
		},
	}
}

func click(code int32) Event        { return Event{Code: code, Status: Clicked} }
func press(code int32) Event        { return Event{Code: code, Status: Pressed} }
func release(code int32) Event      { return Event{Code: code, Status: Released} }
func forceRelease(code int32) Event { return Event{Code: code, Status: ForceReleased} }
func evs(evs ...Event) []Event      { return evs }

func TestMapEventBareClickPressRelease(t *testing.T) {
	e := New(testConfig(), nil)

	assert.Equal(t, evs(click(k1)), e.MapEvent(click(k1)))
	assert.Equal(t, evs(press(k1)), e.MapEvent(press(k1)))
	assert.Equal(t, evs(release(k1)), e.MapEvent(release(k1)))
}

func TestMapEventSimpleRemap(t *testing.T) {
	e := New(testConfig(), nil)

	assert.Equal(t, evs(click(k2)), e.MapEvent(click(k3)))
	assert.Equal(t, evs(release(k2)), e.MapEvent(release(k3)))
}

func TestMapEventSingleLayerForceReleaseAndCleanup(t *testing.T) {
	e := New(testConfig(), nil)

	// A clicked: no layer is a candidate yet (A isn't tracked as pressed
	// until this click is recorded), so A maps to itself.
	assert.Equal(t, evs(click(kA)), e.MapEvent(click(kA)))

	// 1 clicked while A held: layer [A] is now the only candidate, and
	// it's complex for 1 (1->3). A's own trigger entry is Clicked, so
	// per the Clicked&&complex synthesis rule A is force-released
	// (encoded identically to Released downstream) alongside the
	// resolved 1->3 click.
	assert.Equal(t, evs(forceRelease(kA), click(k3)), e.MapEvent(click(k1)))

	// Release 1 (mapped to 3): reference count for 3 drops to zero.
	assert.Equal(t, evs(release(k3)), e.MapEvent(release(k1)))

	// Release A: its tracked status is ForceReleased, not Clicked, so
	// this is on_forced_release_cleanup — internal bookkeeping only, no
	// further output (the downstream release was already emitted above).
	assert.Nil(t, e.MapEvent(release(kA)))
}

func TestMapEventTwoLayerConsecutive(t *testing.T) {
	e := New(testConfig(), nil)

	// A clicked alone.
	assert.Equal(t, evs(click(kA)), e.MapEvent(click(kA)))

	// B clicked while A held: layer selection snapshots which keys are
	// pressed *before* the current event, so B itself isn't yet a
	// member of any trigger set it's still in the middle of completing;
	// [A] (the only currently-satisfied trigger set) stays active, and
	// B isn't in its override table, so B maps to itself with no
	// synthetic effect on A.
	assert.Equal(t, evs(click(kB)), e.MapEvent(click(kB)))

	// Press A (auto-repeat).
	assert.Equal(t, evs(press(kA)), e.MapEvent(press(kA)))

	// Release B, then A: plain reference-counted releases, since
	// neither was ever force-released in this scenario.
	assert.Equal(t, evs(release(kB)), e.MapEvent(release(kB)))
	assert.Equal(t, evs(release(kA)), e.MapEvent(release(kA)))
}

func TestMapEventForceReleasedModifierReclicksOnUnrelatedKey(t *testing.T) {
	// Continues the scenario of spec.md §8.3's end-to-end table: after A
	// is force-released by a layered click, a *subsequent* key that the
	// active layer does not cover falls through to its simple/identity
	// target, and the force-released modifier is synthetically
	// re-clicked downstream (build_modifier_events' ForceReleased&&
	// !complex case) so the OS sees it held again.
	e := New(testConfig(), nil)

	assert.Equal(t, evs(click(kA)), e.MapEvent(click(kA)))
	assert.Equal(t, evs(forceRelease(kA), click(k3)), e.MapEvent(click(k1)))

	// k2 clicked while A is still held (ForceReleased) and [A] is still
	// the active layer: [A]'s override only covers k1, not k2, so k2 is
	// not complex here and falls through to its identity target; A is
	// re-clicked alongside it.
	assert.Equal(t, evs(click(kA), click(k2)), e.MapEvent(click(k2)))
}

func TestMapEventIllegalTransitionIsIgnored(t *testing.T) {
	e := New(testConfig(), nil)
	// Release with no prior click: untracked, warn and emit nothing.
	assert.Nil(t, e.MapEvent(release(k1)))
}
