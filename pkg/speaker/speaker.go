// Package speaker decodes the raw speaker column of a ledger line into
// honorific, initials, surname and role.
package speaker

import (
	"fmt"
	"regexp"
	"strings"

	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
)

// Unminuted is the literal marker for a talk whose speaker was not recorded.
const Unminuted = "unminuted"

// Honorifics are tried in this order; at most one is stripped.
var Honorifics = []string{
	"Prof.", "Rev.", "Dr.", "Hon.", "Col.", "Sir", "Lord", "Mr.", "Mrs.", "Ms.", "Miss",
}

// Roles are the parenthetical markers recognised at the end of a speaker.
var Roles = []string{"(prop)", "(opp)", "(author)", "(producer)"}

var roleNames = map[string]string{
	"(prop)":     "proponent",
	"(opp)":      "opponent",
	"(author)":   "author",
	"(producer)": "producer",
}

// Identity is a decoded speaker.
type Identity struct {
	Honorific string `json:"honorific,omitempty" yaml:"honorific,omitempty"`
	Initials  string `json:"initials,omitempty" yaml:"initials,omitempty"`
	Surname   string `json:"surname" yaml:"surname"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
}

// IsPlaceholder reports whether the identity stands for no recorded speaker.
func (id Identity) IsPlaceholder() bool {
	return IsPlaceholder(id.Surname) && id.Initials == ""
}

// CanonicalName returns the "Surname, Initials" key used by the statistics.
func (id Identity) CanonicalName() string {
	return id.Surname + ", " + id.Initials
}

// String reassembles the raw form.
func (id Identity) String() string {
	var parts []string
	for _, p := range []string{id.Honorific, id.Initials, id.Surname, id.Role} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsPlaceholder reports whether raw is empty or the unminuted marker.
func IsPlaceholder(raw string) bool {
	return raw == "" || raw == Unminuted
}

// RoleName maps a role marker to its long form, e.g. "(prop)" to "proponent".
func RoleName(role string) string {
	return roleNames[role]
}

// rule consumes part of the remaining text, filling in id.
type rule func(raw, rest string, id *Identity) (string, error)

var rules = []rule{honorificRule, roleRule, nameRule}

// Decode splits a raw speaker string. Placeholders decode to an identity
// whose surname is the input; anything else must reduce fully or the result
// is an error wrapping errors.ErrMalformedSpeaker.
func Decode(raw string) (Identity, error) {
	if IsPlaceholder(raw) {
		return Identity{Surname: raw}, nil
	}

	var id Identity
	rest := raw
	for _, r := range rules {
		var err error
		rest, err = r(raw, rest, &id)
		if err != nil {
			return Identity{}, err
		}
	}
	return id, nil
}

// MustDecode is like Decode but panics on error.
func MustDecode(raw string) Identity {
	id, err := Decode(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func honorificRule(raw, rest string, id *Identity) (string, error) {
	for _, h := range Honorifics {
		if strings.HasPrefix(rest, h+" ") {
			id.Honorific = h
			rest = rest[len(h)+1:]
			break
		}
	}
	if !strings.HasSuffix(raw, rest) {
		return "", fmt.Errorf("%w: speaker %q: remainder %q after honorific", lerrors.ErrInternal, raw, rest)
	}
	return rest, nil
}

func roleRule(_, rest string, id *Identity) (string, error) {
	for _, role := range Roles {
		if strings.HasSuffix(rest, " "+role) {
			id.Role = role
			return strings.TrimSuffix(rest, " "+role), nil
		}
	}
	return rest, nil
}

// The surname is the token after the last ". " and has no period or space.
var namePattern = regexp.MustCompile(`^(.*\.) ([^.\s]+)$`)

func nameRule(raw, rest string, id *Identity) (string, error) {
	m := namePattern.FindStringSubmatch(rest)
	if m == nil {
		return "", fmt.Errorf("%w: %q is not of the form [Title] Initials. Surname [(role)]", lerrors.ErrMalformedSpeaker, raw)
	}
	id.Initials = m[1]
	id.Surname = m[2]
	return "", nil
}

// ExplodeInitials inserts a space between run-together initials, so that
// "A.B." becomes "A. B.". Only a capital, a period and another capital form
// a split point; "A.de" and "Ch.B." are left alone.
func ExplodeInitials(initials string) string {
	var b strings.Builder
	runes := []rune(initials)
	for i, r := range runes {
		b.WriteRune(r)
		if r == '.' && i > 0 && i+1 < len(runes) && isCapital(runes[i-1]) && isCapital(runes[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func isCapital(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
