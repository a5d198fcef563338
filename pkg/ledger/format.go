package ledger

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FormatHeader is the column legend written at the top of a formatted ledger.
var FormatHeader = strings.TrimRight(fmt.Sprintf("%-5s %-10s %-3s %-5s %-32s %-103s %-5s %-3s %s",
	FormatHeaderMarker, "yyyy-mm-dd", "fff", "joint", "speaker", "title", "venue", "ppp", "aud"), " ")

var leadingDigits = regexp.MustCompile(`^([0-9]*)(.*)$`)

// Format writes meetings in the fixed-column layout, one line per talk and
// co-speaker, preceded by FormatHeader. Parsing the output yields the same
// meetings.
func Format(w io.Writer, meetings []Meeting) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, FormatHeader); err != nil {
		return err
	}
	for i := range meetings {
		for _, line := range FormatMeeting(&meetings[i]) {
			if _, err := fmt.Fprintln(bw, line); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// FormatMeeting returns the ledger lines for one meeting.
func FormatMeeting(m *Meeting) []string {
	first := Talk{Speakers: []string{""}}
	if len(m.Talks) > 0 {
		first = m.Talks[0]
	}
	firstSpeaker := ""
	if len(first.Speakers) > 0 {
		firstSpeaker = first.Speakers[0]
	}

	lines := []string{strings.TrimRight(fmt.Sprintf("%s %-10s %-3s %5s %-32s %-103s %-5s %3s %s",
		formatNumber(m.Number),
		m.Date.String(),
		m.Flags,
		m.JointCode,
		firstSpeaker,
		first.Title,
		m.Venue,
		m.Page,
		formatAudience(m.Audience),
	), " ")}

	for i, t := range m.Talks {
		for j, sp := range t.Speakers {
			switch {
			case i == 0 && j == 0:
				continue
			case j == 0:
				lines = append(lines, continuationLine(sp, t.Title))
			default:
				lines = append(lines, continuationLine(sp, ""))
			}
		}
	}
	return lines
}

func continuationLine(speaker, title string) string {
	return strings.TrimRight(fmt.Sprintf("%27s%-32s %s", "", speaker, title), " ")
}

// formatNumber right-aligns the digits of a meeting number in three columns
// and puts a suffix such as "a" in the two after.
func formatNumber(n string) string {
	m := leadingDigits.FindStringSubmatch(n)
	if len(m[1]) <= 3 && utf8.RuneCountInString(m[2]) <= 2 {
		return fmt.Sprintf("%3s%-2s", m[1], m[2])
	}
	return fmt.Sprintf("%5s", n)
}

func formatAudience(a string) string {
	m := leadingDigits.FindStringSubmatch(a)
	if m[1] == "" {
		return a
	}
	return fmt.Sprintf("%3s%s", m[1], m[2])
}
