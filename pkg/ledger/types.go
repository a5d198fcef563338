// Package ledger reads and writes the fixed-column meetings ledger.
//
// A ledger line is either the first line of a meeting (number and date
// columns filled) or a continuation that adds a talk or a co-speaker to the
// meeting above it. The parser turns the whole file into an ordered slice of
// Meeting values; every consumer treats that slice as read-only.
package ledger

import (
	"strings"

	"github.com/otherjamesbrown/tmsledger/pkg/calendar"
	"github.com/otherjamesbrown/tmsledger/pkg/registry"
	"github.com/otherjamesbrown/tmsledger/pkg/speaker"
)

// Meeting is one ledger entry.
type Meeting struct {
	Number    string        `json:"number"`
	Date      calendar.Date `json:"date"`
	Flags     string        `json:"flags,omitempty"`
	JointCode string        `json:"joint_code,omitempty"`
	Venue     string        `json:"venue,omitempty"`
	Page      string        `json:"page,omitempty"`
	Audience  string        `json:"audience,omitempty"`
	Talks     []Talk        `json:"talks"`
}

// Talk is a titled item within a meeting. Speakers holds the raw speaker
// strings; an entry may be empty or "unminuted".
type Talk struct {
	Title    string   `json:"title,omitempty"`
	Speakers []string `json:"speakers"`
}

// HasFlag reports whether the meeting carries flag c.
func (m *Meeting) HasFlag(c rune) bool {
	return strings.ContainsRune(m.Flags, c)
}

// IsDebate reports whether the meeting was a debate.
func (m *Meeting) IsDebate() bool {
	return m.HasFlag(registry.DebateFlag)
}

// JointSocieties returns the display names of the co-hosting societies.
func (m *Meeting) JointSocieties() []string {
	names, _ := registry.JointSocieties(m.JointCode)
	return names
}

// SpeakerCount returns the number of speaker strings over all talks.
func (m *Meeting) SpeakerCount() int {
	n := 0
	for _, t := range m.Talks {
		n += len(t.Speakers)
	}
	return n
}

// Summary counts what a ledger holds.
type Summary struct {
	Meetings      int    `json:"meetings" yaml:"meetings"`
	UnknownDates  int    `json:"unknown_dates" yaml:"unknown_dates"`
	Talks         int    `json:"talks" yaml:"talks"`
	Speakers      int    `json:"speakers" yaml:"speakers"`
	Distinct      int    `json:"distinct_speakers" yaml:"distinct_speakers"`
	JointMeetings int    `json:"joint_meetings" yaml:"joint_meetings"`
	First         string `json:"first_date,omitempty" yaml:"first_date,omitempty"`
	Last          string `json:"last_date,omitempty" yaml:"last_date,omitempty"`
}

// Summarize counts meetings, talks and speakers. Placeholder speakers are
// counted in Speakers but not in Distinct.
func Summarize(meetings []Meeting) Summary {
	var s Summary
	seen := make(map[string]bool)
	for i := range meetings {
		m := &meetings[i]
		s.Meetings++
		if !m.Date.Known() {
			s.UnknownDates++
		} else {
			if s.First == "" {
				s.First = m.Date.String()
			}
			s.Last = m.Date.String()
		}
		if m.JointCode != "" {
			s.JointMeetings++
		}
		s.Talks += len(m.Talks)
		for _, t := range m.Talks {
			for _, sp := range t.Speakers {
				s.Speakers++
				if !speaker.IsPlaceholder(sp) && !seen[sp] {
					seen[sp] = true
					s.Distinct++
				}
			}
		}
	}
	return s
}
