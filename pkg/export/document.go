// Package export builds a self-describing document from parsed meetings and
// writes it as JSON, YAML or XML.
package export

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/registry"
	"github.com/otherjamesbrown/tmsledger/pkg/speaker"
)

// Document is the exported form of a ledger.
type Document struct {
	XMLName  xml.Name  `json:"-" yaml:"-" xml:"meetings"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty" xml:"source,attr,omitempty"`
	Meetings []Meeting `json:"meetings" yaml:"meetings" xml:"meeting"`
}

// Meeting is one exported meeting.
type Meeting struct {
	Number    string   `json:"number" yaml:"number" xml:"number"`
	Date      string   `json:"date,omitempty" yaml:"date,omitempty" xml:"date"`
	DayNumber int      `json:"day_number,omitempty" yaml:"day_number,omitempty" xml:"day_number,omitempty"`
	Flags     []Flag   `json:"flags,omitempty" yaml:"flags,omitempty" xml:"flag"`
	JointCode string   `json:"joint_code,omitempty" yaml:"joint_code,omitempty" xml:"-"`
	Joint     []string `json:"joint,omitempty" yaml:"joint,omitempty" xml:"joint"`
	Talks     []Talk   `json:"talks" yaml:"talks" xml:"sub"`
	Venue     *Venue   `json:"venue,omitempty" yaml:"venue,omitempty" xml:"venue,omitempty"`
	Page      string   `json:"page,omitempty" yaml:"page,omitempty" xml:"minutes>page,omitempty"`
	Audience  string   `json:"audience,omitempty" yaml:"audience,omitempty" xml:"attendance,omitempty"`
}

// Flag is a flag character with its display name.
type Flag struct {
	Code string `json:"code" yaml:"code" xml:"code,attr"`
	Name string `json:"name" yaml:"name" xml:",chardata"`
}

// Venue is a venue code with its expanded name.
type Venue struct {
	Code string `json:"code" yaml:"code" xml:"code,attr"`
	Name string `json:"name" yaml:"name" xml:",chardata"`
}

// Talk is one exported talk. Title is the ledger text; Text is the same
// title with typographic punctuation.
type Talk struct {
	Speakers []Speaker `json:"speakers,omitempty" yaml:"speakers,omitempty" xml:"speaker"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty" xml:"title,omitempty"`
	Text     string    `json:"text,omitempty" yaml:"text,omitempty" xml:"text,omitempty"`
}

// Speaker is a decoded speaker. Honorific uses the British convention of no
// full stop after a contraction ("Dr" rather than "Dr.").
type Speaker struct {
	Raw       string `json:"raw" yaml:"raw" xml:"raw,attr"`
	Honorific string `json:"honorific,omitempty" yaml:"honorific,omitempty" xml:"stitle"`
	Initials  string `json:"initials,omitempty" yaml:"initials,omitempty" xml:"first"`
	Surname   string `json:"surname" yaml:"surname" xml:"last"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty" xml:"role,omitempty"`
}

var contractions = map[string]string{
	"Dr.":  "Dr",
	"Mr.":  "Mr",
	"Mrs.": "Mrs",
	"Ms.":  "Ms",
}

// Build converts meetings to a Document. Placeholder speakers are left out.
func Build(source string, meetings []ledger.Meeting) (*Document, error) {
	doc := &Document{Source: source, Meetings: make([]Meeting, 0, len(meetings))}
	for i := range meetings {
		m, err := buildMeeting(&meetings[i])
		if err != nil {
			return nil, fmt.Errorf("meeting %q: %w", meetings[i].Number, err)
		}
		doc.Meetings = append(doc.Meetings, m)
	}
	return doc, nil
}

func buildMeeting(m *ledger.Meeting) (Meeting, error) {
	out := Meeting{
		Number:    m.Number,
		Date:      m.Date.String(),
		DayNumber: m.Date.DayNumber(),
		JointCode: m.JointCode,
		Joint:     m.JointSocieties(),
		Page:      m.Page,
		Audience:  m.Audience,
	}
	for _, c := range m.Flags {
		info, _ := registry.Flag(c)
		out.Flags = append(out.Flags, Flag{Code: string(c), Name: info.Name})
	}
	if m.Venue != "" {
		name, _ := registry.VenueName(m.Venue)
		out.Venue = &Venue{Code: m.Venue, Name: name}
	}

	for _, t := range m.Talks {
		talk := Talk{Title: t.Title, Text: Typeset(t.Title)}
		for _, raw := range t.Speakers {
			if speaker.IsPlaceholder(raw) {
				continue
			}
			id, err := speaker.Decode(raw)
			if err != nil {
				return Meeting{}, err
			}
			talk.Speakers = append(talk.Speakers, buildSpeaker(raw, id))
		}
		out.Talks = append(out.Talks, talk)
	}
	return out, nil
}

func buildSpeaker(raw string, id speaker.Identity) Speaker {
	honorific := id.Honorific
	if short, ok := contractions[honorific]; ok {
		honorific = short
	}
	return Speaker{
		Raw:       raw,
		Honorific: honorific,
		Initials:  speaker.ExplodeInitials(id.Initials),
		Surname:   id.Surname,
		Role:      speaker.RoleName(id.Role),
	}
}

var (
	quotePair   = regexp.MustCompile(`"([^"]*)"`)
	digitHyphen = regexp.MustCompile(`([0-9])-`)
)

// Typeset converts ledger title text to Unicode punctuation: curly quotes
// and apostrophes, dashes, ellipses and the \pi and \Delta escapes.
func Typeset(text string) string {
	s := strings.ReplaceAll(text, "'", "’")
	s = strings.ReplaceAll(s, "...", "…")
	s = strings.ReplaceAll(s, `\pi`, "π")
	s = strings.ReplaceAll(s, `\Delta`, "Δ")
	s = strings.ReplaceAll(s, " - ", "—")
	s = quotePair.ReplaceAllString(s, "“${1}”")
	s = digitHyphen.ReplaceAllString(s, "${1}–")
	return s
}
