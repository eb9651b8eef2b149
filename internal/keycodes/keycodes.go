// Package keycodes provides the bidirectional mapping between symbolic
// key names and the integer codes Linux's input subsystem uses
// (linux/input-event-codes.h). Configuration loading translates
// symbolic names into codes with this package; the mapping engine
// itself never looks a name up — it is vocabulary-agnostic.
package keycodes

// Code is a Linux input event keycode.
type Code int32

// Keycodes from linux/input-event-codes.h, named without the KEY_
// prefix and lowercased to match the symbolic names used in mapping
// configuration files.
const (
	Esc       Code = 1
	Key1      Code = 2
	Key2      Code = 3
	Key3      Code = 4
	Key4      Code = 5
	Key5      Code = 6
	Key6      Code = 7
	Key7      Code = 8
	Key8      Code = 9
	Key9      Code = 10
	Key0      Code = 11
	Minus     Code = 12
	Equal     Code = 13
	Backspace Code = 14
	Tab       Code = 15
	Q         Code = 16
	W         Code = 17
	E         Code = 18
	R         Code = 19
	T         Code = 20
	Y         Code = 21
	U         Code = 22
	I         Code = 23
	O         Code = 24
	P         Code = 25

	Leftbrace  Code = 26
	Rightbrace Code = 27
	Enter      Code = 28
	Leftctrl   Code = 29

	A Code = 30
	S Code = 31
	D Code = 32
	F Code = 33
	G Code = 34
	H Code = 35
	J Code = 36
	K Code = 37
	L Code = 38

	Semicolon  Code = 39
	Apostrophe Code = 40
	Grave      Code = 41
	Leftshift  Code = 42
	Backslash  Code = 43

	Z Code = 44
	X Code = 45
	C Code = 46
	V Code = 47
	B Code = 48
	N Code = 49
	M Code = 50

	Comma      Code = 51
	Dot        Code = 52
	Slash      Code = 53
	Rightshift Code = 54
	KpAsterisk Code = 55
	Leftalt    Code = 56
	Space      Code = 57
	Capslock   Code = 58

	F1  Code = 59
	F2  Code = 60
	F3  Code = 61
	F4  Code = 62
	F5  Code = 63
	F6  Code = 64
	F7  Code = 65
	F8  Code = 66
	F9  Code = 67
	F10 Code = 68

	Numlock    Code = 69
	Scrolllock Code = 70

	Kp7     Code = 71
	Kp8     Code = 72
	Kp9     Code = 73
	KpMinus Code = 74
	Kp4     Code = 75
	Kp5     Code = 76
	Kp6     Code = 77
	KpPlus  Code = 78
	Kp1     Code = 79
	Kp2     Code = 80
	Kp3     Code = 81
	Kp0     Code = 82
	KpDot   Code = 83

	Num102 Code = 86
	F11    Code = 87
	F12    Code = 88

	KpEnter   Code = 96
	Rightctrl Code = 97
	KpSlash   Code = 98
	Sysrq     Code = 99
	Rightalt  Code = 100

	Home     Code = 102
	Up       Code = 103
	Pageup   Code = 104
	Left     Code = 105
	Right    Code = 106
	End      Code = 107
	Down     Code = 108
	Pagedown Code = 109
	Insert   Code = 110
	Delete   Code = 111

	Mute       Code = 113
	Volumedown Code = 114
	Volumeup   Code = 115

	Pause Code = 119

	Compose Code = 127

	Leftmeta  Code = 125
	Rightmeta Code = 126

	F13 Code = 183
	F14 Code = 184
	F15 Code = 185
	F16 Code = 186
	F17 Code = 187
	F18 Code = 188
	F19 Code = 189
	F20 Code = 190
	F21 Code = 191
	F22 Code = 192
	F23 Code = 193
	F24 Code = 194
)

// codeToName holds the canonical lowercase spelling for every known
// code. nameToCode is its inverse, built once in init.
var codeToName = map[Code]string{
	Esc: "esc", Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",
	Minus: "minus", Equal: "equal", Backspace: "backspace", Tab: "tab",
	Q: "q", W: "w", E: "e", R: "r", T: "t", Y: "y", U: "u", I: "i", O: "o", P: "p",
	Leftbrace: "leftbrace", Rightbrace: "rightbrace", Enter: "enter", Leftctrl: "leftctrl",
	A: "a", S: "s", D: "d", F: "f", G: "g", H: "h", J: "j", K: "k", L: "l",
	Semicolon: "semicolon", Apostrophe: "apostrophe", Grave: "grave",
	Leftshift: "leftshift", Backslash: "backslash",
	Z: "z", X: "x", C: "c", V: "v", B: "b", N: "n", M: "m",
	Comma: "comma", Dot: "dot", Slash: "slash", Rightshift: "rightshift",
	KpAsterisk: "kpasterisk", Leftalt: "leftalt", Space: "space", Capslock: "capslock",
	F1: "f1", F2: "f2", F3: "f3", F4: "f4", F5: "f5",
	F6: "f6", F7: "f7", F8: "f8", F9: "f9", F10: "f10",
	Numlock: "numlock", Scrolllock: "scrolllock",
	Kp7: "kp7", Kp8: "kp8", Kp9: "kp9", KpMinus: "kpminus",
	Kp4: "kp4", Kp5: "kp5", Kp6: "kp6", KpPlus: "kpplus",
	Kp1: "kp1", Kp2: "kp2", Kp3: "kp3", Kp0: "kp0", KpDot: "kpdot",
	Num102: "102nd", F11: "f11", F12: "f12",
	KpEnter: "kpenter", Rightctrl: "rightctrl", KpSlash: "kpslash",
	Sysrq: "sysrq", Rightalt: "rightalt",
	Home: "home", Up: "up", Pageup: "pageup", Left: "left", Right: "right",
	End: "end", Down: "down", Pagedown: "pagedown", Insert: "insert", Delete: "delete",
	Mute: "mute", Volumedown: "volumedown", Volumeup: "volumeup",
	Pause: "pause", Compose: "compose",
	Leftmeta: "leftmeta", Rightmeta: "rightmeta",
	F13: "f13", F14: "f14", F15: "f15", F16: "f16", F17: "f17",
	F18: "f18", F19: "f19", F20: "f20", F21: "f21", F22: "f22", F23: "f23", F24: "f24",
}

var nameToCode map[string]Code

func init() {
	nameToCode = make(map[string]Code, len(codeToName))
	for code, name := range codeToName {
		nameToCode[name] = code
	}
}

// NameToCode translates a symbolic key name into its code. The second
// return value is false if the name is not part of the vocabulary.
func NameToCode(name string) (Code, bool) {
	code, ok := nameToCode[name]
	return code, ok
}

// CodeToName translates a code into its symbolic name. Unknown codes
// yield an empty string.
func CodeToName(code Code) string {
	return codeToName[code]
}

// IsModifier reports whether code is one of the eight standard
// modifier keys. Nothing in this repository calls it; the engine
// itself has no notion of "modifier" beyond trigger-set membership
// (spec.md §4.D).
func IsModifier(code Code) bool {
	switch code {
	case Leftshift, Rightshift, Leftctrl, Rightctrl, Leftalt, Rightalt, Leftmeta, Rightmeta:
		return true
	default:
		return false
	}
}
