package ledger

import (
	"strings"

	"github.com/otherjamesbrown/tmsledger/pkg/registry"
	"github.com/otherjamesbrown/tmsledger/pkg/speaker"
)

// AdministrativeTitles prefix the titles of meetings left out of listings
// and statistics when they are a meeting's only talk.
var AdministrativeTitles = []string{
	"Business Meeting",
	"Annual General Meeting",
	"(no speaker present)",
}

// Filter selects the meetings that count for the listing and statistics.
type Filter struct {
	// Exclude lists flag characters; a meeting with any of them is dropped.
	Exclude string
}

// DefaultFilter returns a filter with the default exclusion set.
func DefaultFilter() Filter {
	return Filter{Exclude: registry.DefaultExclude}
}

// Excluded reports whether the meeting carries an excluded flag.
func (f Filter) Excluded(m *Meeting) bool {
	return registry.HasAny(m.Flags, f.Exclude)
}

// IsAdministrative reports whether m is a lone business meeting, AGM or a
// meeting with no speaker present. The single talk must have no recorded
// speaker; a named talk titled "Business Meeting" is still listed.
func IsAdministrative(m *Meeting) bool {
	if len(m.Talks) != 1 {
		return false
	}
	talk := m.Talks[0]
	for _, raw := range talk.Speakers {
		if !speaker.IsPlaceholder(raw) {
			return false
		}
	}
	for _, prefix := range AdministrativeTitles {
		if strings.HasPrefix(talk.Title, prefix) {
			return true
		}
	}
	return false
}

// Keep reports whether m passes the filter.
func (f Filter) Keep(m *Meeting) bool {
	return !f.Excluded(m) && !IsAdministrative(m)
}
