package types

import (
	"errors"
	"fmt"
	"strings"
)

// Character classes used to build the preset alphabets.
const (
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	punctuation  = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Alphabet presets selectable by name.
const (
	PresetFull    = "full"
	PresetLetters = "letters"
	PresetLower   = "lower"
	PresetUpper   = "upper"
	PresetDigits  = "digits"
	PresetAlnum   = "alnum"
)

var presets = map[string]string{
	PresetFull:    lowerLetters + upperLetters + digits + punctuation + " ",
	PresetLetters: lowerLetters + upperLetters,
	PresetLower:   lowerLetters,
	PresetUpper:   upperLetters,
	PresetDigits:  digits,
	PresetAlnum:   lowerLetters + upperLetters + digits,
}

// ErrEmptyAlphabet indicates an alphabet with no symbols.
var ErrEmptyAlphabet = errors.New("alphabet is empty")

// ErrDuplicateSymbol indicates a symbol that appears more than once.
var ErrDuplicateSymbol = errors.New("alphabet contains a duplicate symbol")

// ErrLineTerminator indicates a newline or carriage return in an alphabet.
// Output is one string per line, so neither can be a symbol.
var ErrLineTerminator = errors.New("alphabet contains a line terminator")

// ErrUnknownPreset indicates an alphabet preset name that is not defined.
var ErrUnknownPreset = errors.New("unknown alphabet preset")

// Alphabet is an ordered set of symbols. The zero value is empty.
type Alphabet struct {
	symbols []rune
}

// NewAlphabet builds an alphabet from the characters of s, in order.
// Duplicate characters and line terminators are rejected.
func NewAlphabet(s string) (Alphabet, error) {
	symbols := []rune(s)
	seen := make(map[rune]struct{}, len(symbols))
	for _, r := range symbols {
		if r == '\n' || r == '\r' {
			return Alphabet{}, fmt.Errorf("%w: %q", ErrLineTerminator, r)
		}
		if _, ok := seen[r]; ok {
			return Alphabet{}, fmt.Errorf("%w: %q", ErrDuplicateSymbol, r)
		}
		seen[r] = struct{}{}
	}
	return Alphabet{symbols: symbols}, nil
}

// DefaultAlphabet returns letters, digits, punctuation and space.
func DefaultAlphabet() Alphabet {
	return Alphabet{symbols: []rune(presets[PresetFull])}
}

// PresetAlphabet returns the named preset alphabet.
func PresetAlphabet(name string) (Alphabet, error) {
	s, ok := presets[strings.ToLower(name)]
	if !ok {
		return Alphabet{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return Alphabet{symbols: []rune(s)}, nil
}

// PresetNames lists the preset alphabet names.
func PresetNames() []string {
	return []string{PresetFull, PresetLetters, PresetLower, PresetUpper, PresetDigits, PresetAlnum}
}

// Len returns the number of symbols.
func (a Alphabet) Len() int {
	return len(a.symbols)
}

// Symbols returns a copy of the symbols in order.
func (a Alphabet) Symbols() []rune {
	out := make([]rune, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// Slice returns the symbols in [from, to) without copying.
// Callers must not modify the result.
func (a Alphabet) Slice(from, to int) []rune {
	return a.symbols[from:to]
}

// String returns the symbols as a string.
func (a Alphabet) String() string {
	return string(a.symbols)
}
