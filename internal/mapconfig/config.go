// Package mapconfig implements the configuration model of spec.md §4.B:
// the typed, symbolic representation of one keyboard's mapping
// (keymap + ordered layers), and its translation into the code-level
// engine.Config a mapping engine is built from.
package mapconfig

import (
	"fmt"
	"sort"

	"github.com/kmapd/kmapd/internal/engine"
	"github.com/kmapd/kmapd/internal/layer"
)

// ComplexLayer is one entry of a KeyboardConfig's layers list: an
// ordered modifier/trigger-key list and the keymap it activates.
type ComplexLayer struct {
	Modifiers []string          `yaml:"modifiers"`
	Keymap    map[string]string `yaml:"keymap"`
}

// KeyboardConfig is the recognised configuration for one keyboard, per
// spec.md §6.2: the device names it applies to, an optional
// always-on simple keymap, and an optional ordered list of layers.
type KeyboardConfig struct {
	Keyboards []string          `yaml:"keyboards"`
	Keymap    map[string]string `yaml:"keymap"`
	Layers    []ComplexLayer    `yaml:"layers"`
}

// RootConfig is the top-level YAML document: a sequence of per-keyboard
// configurations (spec.md §6.2).
type RootConfig []KeyboardConfig

// NameToCode resolves a symbolic key name to its integer code. Absence
// is reported via the second return value, never via a sentinel code,
// so Validate can distinguish "unknown name" from a legitimately
// negative or zero code.
type NameToCode func(name string) (int32, bool)

// UnknownKeysError aggregates every symbolic name referenced by a
// configuration that the vocabulary does not recognise, per spec.md
// §4.B: "emits a single error listing all unknown names."
type UnknownKeysError struct {
	Names []string
}

func (e *UnknownKeysError) Error() string {
	return fmt.Sprintf("configuration contains unknown keys: %v", e.Names)
}

// Validate checks that every symbolic name referenced by conf (in its
// keymap and in every layer's modifiers/keymap) is known to lookup.
// It returns nil if all names resolve, or an *UnknownKeysError listing
// every name that did not.
func Validate(conf KeyboardConfig, lookup NameToCode) error {
	seen := map[string]struct{}{}
	var unknown []string
	check := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		if _, ok := lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}

	for k, v := range conf.Keymap {
		check(k)
		check(v)
	}
	for _, l := range conf.Layers {
		for _, m := range l.Modifiers {
			check(m)
		}
		for k, v := range l.Keymap {
			check(k)
			check(v)
		}
	}

	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &UnknownKeysError{Names: unknown}
}

// Build converts a validated KeyboardConfig into an engine.Config.
// Callers must call Validate first; Build assumes every name resolves
// and will silently skip anything lookup can't translate.
//
// Ambiguity policy (spec.md §4.B): if two layers share the same
// trigger set, the later entry wins — achieved here by building the
// layer collection in a map keyed by trigger set before converting to
// the ordered slice engine.Config expects.
func Build(conf KeyboardConfig, lookup NameToCode) engine.Config {
	simple := make(map[int32]int32, len(conf.Keymap))
	for k, v := range conf.Keymap {
		sk, ok := lookup(k)
		if !ok {
			continue
		}
		sv, ok := lookup(v)
		if !ok {
			continue
		}
		simple[sk] = sv
	}

	type triggerKey string
	byTrigger := make(map[triggerKey]layer.Layer)
	var order []triggerKey

	for _, l := range conf.Layers {
		trigger := make([]int32, 0, len(l.Modifiers))
		for _, m := range l.Modifiers {
			code, ok := lookup(m)
			if !ok {
				continue
			}
			trigger = append(trigger, code)
		}
		sort.Slice(trigger, func(i, j int) bool { return trigger[i] < trigger[j] })

		override := make(map[int32]int32, len(l.Keymap))
		for k, v := range l.Keymap {
			sk, ok := lookup(k)
			if !ok {
				continue
			}
			sv, ok := lookup(v)
			if !ok {
				continue
			}
			override[sk] = sv
		}

		key := triggerKey(triggerKeyOf(trigger))
		if _, exists := byTrigger[key]; !exists {
			order = append(order, key)
		}
		byTrigger[key] = layer.Layer{Trigger: trigger, Override: override}
	}

	layers := make([]layer.Layer, 0, len(order))
	for _, key := range order {
		layers = append(layers, byTrigger[key])
	}

	return engine.Config{Simple: simple, Layers: layers}
}

func triggerKeyOf(trigger []int32) string {
	s := fmt.Sprint(trigger)
	return s
}
