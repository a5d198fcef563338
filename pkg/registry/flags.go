// Package registry holds the static lookup tables used to validate and
// display ledger fields: meeting flags, joint societies and venue codes.
package registry

import "strings"

// FlagAlphabet lists every flag character a ledger line may carry.
const FlagAlphabet = "bcdefimnoprtv"

// DefaultExclude is the exclusion set applied when none is configured:
// sporting events, dinners, inaugural meetings and photographs.
const DefaultExclude = "cdip"

// DebateFlag marks a meeting held as a debate.
const DebateFlag = 'f'

// FlagKind distinguishes meeting types from additional meeting flags.
type FlagKind string

const (
	KindType FlagKind = "type"
	KindFlag FlagKind = "flag"
)

// FlagInfo describes one flag character.
type FlagInfo struct {
	Char rune
	Name string
	Kind FlagKind
}

var flags = map[rune]FlagInfo{
	'c': {'c', "sporting event", KindType},
	'd': {'d', "dinner", KindType},
	'f': {'f', "debate", KindType},
	'i': {'i', "inaugural meeting", KindType},
	'm': {'m', "film night", KindType},
	'n': {'n', "panel discussion", KindType},
	'o': {'o', "opera", KindType},
	'p': {'p', "photograph", KindType},
	'r': {'r', "recreational", KindType},
	'v': {'v', "visit", KindType},
	'b': {'b', "non-election business", KindFlag},
	'e': {'e', "election of officers", KindFlag},
	't': {'t', "televised", KindFlag},
}

// Flag returns the description of a flag character.
func Flag(c rune) (FlagInfo, bool) {
	info, ok := flags[c]
	return info, ok
}

// ValidFlag reports whether c is in the flag alphabet.
func ValidFlag(c rune) bool {
	_, ok := flags[c]
	return ok
}

// InvalidFlag returns the first character of s outside the flag alphabet.
func InvalidFlag(s string) (rune, bool) {
	for _, c := range s {
		if !ValidFlag(c) {
			return c, true
		}
	}
	return 0, false
}

// FlagNames returns the display names of the flags in s, in order.
// Unknown characters are skipped.
func FlagNames(s string) []string {
	var names []string
	for _, c := range s {
		if info, ok := flags[c]; ok {
			names = append(names, info.Name)
		}
	}
	return names
}

// HasAny reports whether s and set share a character.
func HasAny(s, set string) bool {
	return set != "" && strings.ContainsAny(s, set)
}
