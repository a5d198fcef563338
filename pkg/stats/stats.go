// Package stats aggregates per-speaker talk counts and date spans.
package stats

import (
	"sort"

	"github.com/otherjamesbrown/tmsledger/pkg/calendar"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/speaker"
)

// Speaker holds the statistics for one canonical speaker name.
type Speaker struct {
	Name     string        `json:"name" yaml:"name"`
	Talks    int           `json:"talks" yaml:"talks"`
	First    calendar.Date `json:"first" yaml:"first"`
	Last     calendar.Date `json:"last" yaml:"last"`
	FirstDay int           `json:"first_day" yaml:"first_day"`
	LastDay  int           `json:"last_day" yaml:"last_day"`
	DayRange int           `json:"day_range" yaml:"day_range"`
}

// Table maps canonical "Surname, Initials" names to statistics.
type Table map[string]*Speaker

// Aggregate sweeps the meetings that pass filter and have a known date,
// counting every non-placeholder speaker of every talk.
//
// Meetings must be in non-decreasing date order: the first sighting of a
// speaker sets First and every later sighting overwrites Last, without
// comparing dates.
func Aggregate(meetings []ledger.Meeting, filter ledger.Filter) (Table, error) {
	table := make(Table)
	for i := range meetings {
		m := &meetings[i]
		if !filter.Keep(m) || !m.Date.Known() {
			continue
		}
		day := m.Date.DayNumber()
		for _, t := range m.Talks {
			for _, raw := range t.Speakers {
				if speaker.IsPlaceholder(raw) {
					continue
				}
				id, err := speaker.Decode(raw)
				if err != nil {
					return nil, err
				}
				table.add(id.CanonicalName(), m.Date, day)
			}
		}
	}

	for _, s := range table {
		s.DayRange = s.LastDay - s.FirstDay
	}
	return table, nil
}

func (t Table) add(name string, date calendar.Date, day int) {
	s, ok := t[name]
	if !ok {
		s = &Speaker{Name: name, First: date, FirstDay: day}
		t[name] = s
	}
	s.Talks++
	s.Last = date
	s.LastDay = day
}

// ByCount returns the speakers sorted by talk count, then name.
func (t Table) ByCount() []*Speaker {
	return t.sorted(func(a, b *Speaker) bool {
		if a.Talks != b.Talks {
			return a.Talks < b.Talks
		}
		return a.Name < b.Name
	})
}

// ByRange returns the speakers sorted by day range, then name.
func (t Table) ByRange() []*Speaker {
	return t.sorted(func(a, b *Speaker) bool {
		if a.DayRange != b.DayRange {
			return a.DayRange < b.DayRange
		}
		return a.Name < b.Name
	})
}

func (t Table) sorted(less func(a, b *Speaker) bool) []*Speaker {
	out := make([]*Speaker, 0, len(t))
	for _, s := range t {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
