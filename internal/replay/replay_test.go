package replay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmapd/kmapd/internal/engine"
	"github.com/kmapd/kmapd/internal/layer"
)

func TestParseLineBasic(t *testing.T) {
	c, err := ParseLine("+a -> +a", 1)
	require.NoError(t, err)
	assert.Equal(t, engine.Event{Code: 30, Status: engine.Clicked}, c.Input)
	assert.Equal(t, []engine.Event{{Code: 30, Status: engine.Clicked}}, c.Expected)
}

func TestParseLineNoExpectedOutput(t *testing.T) {
	c, err := ParseLine("-a ->", 2)
	require.NoError(t, err)
	assert.Equal(t, engine.Event{Code: 30, Status: engine.Released}, c.Input)
	assert.Empty(t, c.Expected)
}

func TestParseLineMultipleExpected(t *testing.T) {
	c, err := ParseLine("+1 -> -leftctrl +3", 3)
	require.NoError(t, err)
	require.Len(t, c.Expected, 2)
	assert.Equal(t, engine.Event{Code: 29, Status: engine.Released}, c.Expected[0])
	assert.Equal(t, engine.Event{Code: 4, Status: engine.Clicked}, c.Expected[1])
}

func TestParseLineRejectsMalformed(t *testing.T) {
	_, err := ParseLine("not a valid line", 4)
	assert.Error(t, err)
}

func TestParseLineRejectsUnknownKeyName(t *testing.T) {
	_, err := ParseLine("+nosuchkey ->", 5)
	assert.Error(t, err)
}

func TestParseScriptSkipsBlankAndCommentLines(t *testing.T) {
	script := "# comment\n\n+a -> +a\n  \n-a -> -a\n"
	cases, err := ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, 3, cases[0].Line)
	assert.Equal(t, 5, cases[1].Line)
}

func TestRunDetectsMismatch(t *testing.T) {
	eng := engine.New(engine.Config{
		Layers: []layer.Layer{{Trigger: []int32{30}, Override: map[int32]int32{2: 4}}},
	}, nil)

	cases := []Case{
		{Line: 1, Input: engine.Event{Code: 30, Status: engine.Clicked}, Expected: []engine.Event{{Code: 30, Status: engine.Clicked}}},
		{Line: 2, Input: engine.Event{Code: 2, Status: engine.Clicked}, Expected: []engine.Event{{Code: 2, Status: engine.Clicked}}},
	}
	results := Run(cases, eng)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
}

func TestFormatEvent(t *testing.T) {
	assert.Equal(t, "+a", FormatEvent(engine.Event{Code: 30, Status: engine.Clicked}))
	assert.Equal(t, "-a", FormatEvent(engine.Event{Code: 30, Status: engine.Released}))
	assert.Equal(t, "=a", FormatEvent(engine.Event{Code: 30, Status: engine.Pressed}))
}
