package keystate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordAndStateOf(t *testing.T) {
	s := New()
	_, tracked := s.StateOf(30)
	assert.False(t, tracked)

	s.Record(30, 42, Clicked)
	st, tracked := s.StateOf(30)
	require.True(t, tracked)
	assert.Equal(t, int32(42), st.MappedCode)
	assert.Equal(t, Clicked, st.Status)
}

func TestStoreClockAlwaysAdvances(t *testing.T) {
	s := New()
	s.Record(30, 42, Clicked)
	first := s.clock
	s.Record(31, 43, Clicked)
	assert.Greater(t, s.clock, first)
}

func TestStoreProducerCountAndRelease(t *testing.T) {
	s := New()
	s.Record(30, 100, Clicked)
	s.Record(31, 100, Clicked)

	assert.Equal(t, 2, s.ProducerCount(100))

	s.Release(30)
	assert.Equal(t, 1, s.ProducerCount(100))
	_, tracked := s.StateOf(30)
	assert.False(t, tracked)

	s.Release(31)
	assert.Equal(t, 0, s.ProducerCount(100))
}

func TestStoreReleaseUntrackedIsNoop(t *testing.T) {
	s := New()
	before := s.clock
	s.Release(999)
	assert.Equal(t, before, s.clock)
}

func TestStoreMostRecentSource(t *testing.T) {
	s := New()
	s.Record(30, 100, Clicked)
	s.Record(31, 100, Clicked)

	latest, ok := s.MostRecentSource(100)
	require.True(t, ok)
	assert.Equal(t, int32(31), latest)
}

func TestStoreLen(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	s.Record(30, 100, Clicked)
	assert.Equal(t, 1, s.Len())
	s.Record(31, 101, Clicked)
	assert.Equal(t, 2, s.Len())
	s.Release(30)
	assert.Equal(t, 1, s.Len())
}
