// Package replay implements the textual replay/test harness of
// spec.md §6.4: lines of the form "<op><keyname> -> [<op><keyname> …]"
// where op is +, =, or - for Clicked, Pressed, Released. It is grounded
// in kbct's util.rs replay tool and test-case parser, reworked to
// compare engine.Engine output in-process rather than round-tripping
// through a real uinput device and reading it back — the original
// replays over a live device because it doubles as an integration test
// for its uinput/evdev plumbing; this package's job is purely to
// exercise engine.Engine, so the uinput round-trip would only add
// flakiness without covering anything replay.Run is meant to verify.
package replay

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/kmapd/kmapd/internal/engine"
	"github.com/kmapd/kmapd/internal/keycodes"
)

// Case is one parsed line: an input event and the output sequence
// expected in response.
type Case struct {
	Line     int
	Input    engine.Event
	Expected []engine.Event
}

var lineRegexp = regexp.MustCompile(
	`^([+=-][0-9a-z_]+)\s*->\s*([+=-][0-9a-z_]+(\s+[+=-][0-9a-z_]+)*)*\s*$`)

func opToStatus(op byte) (engine.KeyStatus, error) {
	switch op {
	case '+':
		return engine.Clicked, nil
	case '=':
		return engine.Pressed, nil
	case '-':
		return engine.Released, nil
	default:
		return 0, fmt.Errorf("illegal operator %q", op)
	}
}

func parseKeyEvent(tok string) (engine.Event, error) {
	if len(tok) < 2 {
		return engine.Event{}, fmt.Errorf("malformed key token %q", tok)
	}
	status, err := opToStatus(tok[0])
	if err != nil {
		return engine.Event{}, err
	}
	name := tok[1:]
	code, ok := keycodes.NameToCode(name)
	if !ok {
		return engine.Event{}, fmt.Errorf("unknown key name %q", name)
	}
	return engine.Event{Code: int32(code), Status: status}, nil
}

// ParseLine parses one non-comment, non-blank replay line.
func ParseLine(line string, lineNo int) (Case, error) {
	if !lineRegexp.MatchString(line) {
		return Case{}, fmt.Errorf("illegal test case on line %d: %q", lineNo, line)
	}
	matches := lineRegexp.FindStringSubmatch(line)
	input, err := parseKeyEvent(strings.TrimSpace(matches[1]))
	if err != nil {
		return Case{}, fmt.Errorf("line %d: %w", lineNo, err)
	}

	var expected []engine.Event
	rhs := strings.TrimSpace(matches[2])
	if rhs != "" {
		for _, tok := range strings.Fields(rhs) {
			ev, err := parseKeyEvent(tok)
			if err != nil {
				return Case{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			expected = append(expected, ev)
		}
	}

	return Case{Line: lineNo, Input: input, Expected: expected}, nil
}

// ParseScript reads every non-blank, non-comment ("#"-prefixed) line
// from r as a Case, per spec.md §6.4.
func ParseScript(r io.Reader) ([]Case, error) {
	var cases []Case
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := ParseLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cases, nil
}

// Result is the outcome of replaying one Case against an engine.
type Result struct {
	Case   Case
	Actual []engine.Event
	OK     bool
}

// Run feeds each case's input event through eng.MapEvent, in order,
// and compares the actual output against the expected sequence.
func Run(cases []Case, eng *engine.Engine) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		actual := eng.MapEvent(c.Input)
		results = append(results, Result{
			Case:   c,
			Actual: actual,
			OK:     eventsEqual(actual, c.Expected),
		})
	}
	return results
}

func eventsEqual(a, b []engine.Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatEvent renders an event in the script's own notation, e.g. "+a".
func FormatEvent(ev engine.Event) string {
	op := map[engine.KeyStatus]byte{
		engine.Clicked:       '+',
		engine.Pressed:       '=',
		engine.Released:      '-',
		engine.ForceReleased: '-',
	}[ev.Status]
	return fmt.Sprintf("%c%s", op, keycodes.CodeToName(keycodes.Code(ev.Code)))
}
