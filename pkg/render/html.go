// Package render turns meetings and speaker statistics into the HTML listing
// and the text reports.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/otherjamesbrown/tmsledger/pkg/calendar"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/registry"
	"github.com/otherjamesbrown/tmsledger/pkg/speaker"
)

// AnchorStyle selects how year headings are made linkable.
type AnchorStyle string

const (
	// AnchorID puts the anchor in an id attribute on the heading.
	AnchorID AnchorStyle = "id"
	// AnchorName wraps the heading text in a legacy <a name="..."> element.
	AnchorName AnchorStyle = "name"
)

// ParseAnchorStyle validates an anchor style name. Empty means AnchorID.
func ParseAnchorStyle(s string) (AnchorStyle, error) {
	switch AnchorStyle(s) {
	case "", AnchorID:
		return AnchorID, nil
	case AnchorName:
		return AnchorName, nil
	}
	return "", fmt.Errorf("unknown anchor style %q (want id or name)", s)
}

// EditorialNote1994 follows the 1994–1995 heading.
const EditorialNote1994 = "<p>From 1994&ndash;1995 onwards the list is compiled from termcards " +
	"and society records rather than from the minute books, and details of " +
	"venues and attendance are incomplete.</p>"

// UnknownDateItem is the list item for a meeting with no recorded date.
const UnknownDateItem = "<li>Unminuted meeting (date unknown).</li>"

// HTMLOptions configures the listing.
type HTMLOptions struct {
	// Exclude lists flag characters of meetings to leave out.
	Exclude string
	Anchor  AnchorStyle
}

// HTML renders the meetings as year-grouped <ul> blocks. Meetings are taken
// in ledger order; they are assumed to be in date order.
func HTML(meetings []ledger.Meeting, opts HTMLOptions) (string, error) {
	filter := ledger.Filter{Exclude: opts.Exclude}

	var b strings.Builder
	cur := 0
	open := false
	noted := false

	for i := range meetings {
		m := &meetings[i]
		if !filter.Keep(m) {
			continue
		}

		if m.Date.Known() && startsYear(m.Date, cur) {
			if open {
				b.WriteString("</ul>\n")
			}
			cur = m.Date.AcademicYear()
			b.WriteString(heading(cur, opts.Anchor))
			b.WriteByte('\n')
			if cur == 1994 && !noted {
				b.WriteString(EditorialNote1994)
				b.WriteByte('\n')
				noted = true
			}
			b.WriteString("<ul>\n")
			open = true
		}
		if !open {
			b.WriteString("<ul>\n")
			open = true
		}

		item, err := meetingItem(m)
		if err != nil {
			return "", fmt.Errorf("meeting %s: %w", m.Number, err)
		}
		b.WriteString(item)
		b.WriteByte('\n')
	}

	if open {
		b.WriteString("</ul>\n")
	}
	return b.String(), nil
}

// startsYear reports whether a meeting on d opens a new academic year after
// the one starting in cur.
func startsYear(d calendar.Date, cur int) bool {
	return d.Year >= cur+2 || (d.Year == cur+1 && d.Month >= 10)
}

func heading(start int, anchor AnchorStyle) string {
	label := fmt.Sprintf("%d&ndash;%d", start, start+1)
	if anchor == AnchorName {
		return fmt.Sprintf(`<h2><a name="y%d">%s</a></h2>`, start, label)
	}
	return fmt.Sprintf(`<h2 id="y%d">%s</h2>`, start, label)
}

func meetingItem(m *ledger.Meeting) (string, error) {
	if !m.Date.Known() {
		return UnknownDateItem, nil
	}

	talks := make([]string, 0, len(m.Talks))
	for _, t := range m.Talks {
		text, err := talkText(t, m.IsDebate())
		if err != nil {
			return "", err
		}
		talks = append(talks, text)
	}

	var b strings.Builder
	b.WriteString("<li>")
	b.WriteString(m.Date.Long())
	joint := jointText(m.JointSocieties())

	if len(talks) == 1 {
		b.WriteString(": ")
		b.WriteString(talks[0])
		b.WriteString(joint)
		b.WriteString(".")
	} else {
		b.WriteString(joint)
		b.WriteString(":\n<ul>\n")
		for _, t := range talks {
			b.WriteString("<li>")
			b.WriteString(t)
			b.WriteString(".</li>\n")
		}
		b.WriteString("</ul>")
	}

	if details := detailsText(m); details != "" {
		if len(talks) == 1 {
			b.WriteString("<br>")
		}
		b.WriteString("\n<small>")
		b.WriteString(details)
		b.WriteString("</small>")
	}
	b.WriteString("</li>")
	return b.String(), nil
}

func talkText(t ledger.Talk, debate bool) (string, error) {
	var names []string
	for _, raw := range t.Speakers {
		if speaker.IsPlaceholder(raw) {
			continue
		}
		id, err := speaker.Decode(raw)
		if err != nil {
			return "", err
		}
		names = append(names, SpeakerHTML(id))
	}

	title := t.Title
	if title == "" {
		title = "(unminuted)"
	}
	text := TitleHTML(title)
	if debate {
		text = "debate " + text
	}
	if len(names) == 0 {
		return text, nil
	}
	return strings.Join(names, " and ") + ", " + text, nil
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// typographic replaces the non-ASCII punctuation used in registry names.
var typographic = strings.NewReplacer("’", "&rsquo;", "–", "&ndash;")

// SpeakerHTML renders a speaker as honorific, spaced initials and surname
// joined by non-breaking spaces, followed by the role.
func SpeakerHTML(id speaker.Identity) string {
	var parts []string
	for _, p := range []string{id.Honorific, speaker.ExplodeInitials(id.Initials), id.Surname} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	text := strings.ReplaceAll(escaper.Replace(strings.Join(parts, " ")), " ", "&nbsp;")
	if id.Role != "" {
		text += " " + escaper.Replace(id.Role)
	}
	return text
}

var (
	quotePair   = regexp.MustCompile(`"([^"]*)"`)
	digitHyphen = regexp.MustCompile(`([0-9])-`)
)

// TitleHTML converts ledger title text to HTML with typographic entities.
func TitleHTML(title string) string {
	s := escaper.Replace(title)
	s = strings.ReplaceAll(s, `\pi`, "&pi;")
	s = strings.ReplaceAll(s, `\Delta`, "&Delta;")
	s = strings.ReplaceAll(s, "...", "&hellip;")
	s = strings.ReplaceAll(s, "'", "&rsquo;")
	s = quotePair.ReplaceAllString(s, "&ldquo;${1}&rdquo;")
	s = strings.ReplaceAll(s, " - ", "&mdash;")
	s = digitHyphen.ReplaceAllString(s, "${1}&ndash;")
	return s
}

func jointText(societies []string) string {
	if len(societies) == 0 {
		return ""
	}
	names := make([]string, len(societies))
	for i, s := range societies {
		names[i] = "the " + typographic.Replace(escaper.Replace(s))
	}
	return " (joint with " + strings.Join(names, " and ") + ")"
}

func detailsText(m *ledger.Meeting) string {
	var parts []string
	if m.Number != "" {
		parts = append(parts, "Meeting "+escaper.Replace(m.Number))
	}
	if m.Venue != "" {
		name, _ := registry.VenueName(m.Venue)
		parts = append(parts, typographic.Replace(escaper.Replace(name)))
	}
	if page := displayUnknown(m.Page); page != "" && strings.Trim(page, "-") != "" {
		parts = append(parts, "minutes page "+escaper.Replace(page))
	}
	if aud := displayUnknown(m.Audience); aud != "" {
		parts = append(parts, "attendance "+escaper.Replace(aud))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + "."
}

// displayUnknown collapses the runs of question marks used for unknown
// values to a single one.
func displayUnknown(s string) string {
	if s != "" && strings.Trim(s, "?") == "" {
		return "?"
	}
	return s
}
