package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmapd/kmapd/internal/keystate"
)

const (
	codeA = 30
	codeB = 48
	codeC = 46
)

func TestSelectNoCandidates(t *testing.T) {
	store := keystate.New()
	layers := []Layer{{Trigger: []int32{codeA}}}
	_, ok := Select(layers, store)
	assert.False(t, ok)
}

func TestSelectSingleCandidate(t *testing.T) {
	store := keystate.New()
	store.Record(codeA, codeA, keystate.Clicked)

	layers := []Layer{{Trigger: []int32{codeA}}}
	idx, ok := Select(layers, store)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestSelectPrefersLargerTriggerSet(t *testing.T) {
	store := keystate.New()
	store.Record(codeA, codeA, keystate.Clicked)
	store.Record(codeB, codeB, keystate.Clicked)

	layers := []Layer{
		{Trigger: []int32{codeA}},
		{Trigger: []int32{codeA, codeB}},
	}
	idx, ok := Select(layers, store)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestSelectTiesBrokenByRecency(t *testing.T) {
	store := keystate.New()
	store.Record(codeA, codeA, keystate.Clicked)
	store.Record(codeB, codeB, keystate.Clicked)
	store.Record(codeC, codeC, keystate.Clicked)

	// Two same-size candidate trigger sets: [A,B] completed when B was
	// clicked, [A,C] completed when C was clicked (later). [A,C] should win.
	layers := []Layer{
		{Trigger: []int32{codeA, codeB}},
		{Trigger: []int32{codeA, codeC}},
	}
	idx, ok := Select(layers, store)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestSelectIgnoresUnpressedCandidate(t *testing.T) {
	store := keystate.New()
	store.Record(codeA, codeA, keystate.Clicked)

	layers := []Layer{{Trigger: []int32{codeA, codeB}}}
	_, ok := Select(layers, store)
	assert.False(t, ok)
}
