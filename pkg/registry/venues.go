package registry

import "strings"

var venues = map[string]string{
	"AHSR":  "Adrian House Seminar Room",
	"BBCR":  "Blue Boar Common Room",
	"BHPR":  "Butler House Party Room",
	"CAI":   "Caius College",
	"CAM":   "river Cam",
	"CHR":   "Christ’s College",
	"DAMTP": "DAMTP",
	"EMM":   "Emmanuel College",
	"Hall":  "Hall",
	"JCR":   "Junior Combination Room",
	"JP":    "Junior Parlour",
	"LRT":   "Lecture-Room Theatre (I Great Court)",
	"ML":    "Master’s Lodge",
	"OCR":   "Old Combination Room",
	"OF":    "Old Field",
	"OK":    "Old Kitchens",
	"PSR":   "Private Supply Room",
	"SJC":   "St John’s College",
	"WLT":   "Winstanley Lecture Theatre",
	"WPR":   "Wolfson Party Room",
}

type venuePrefix struct {
	prefix string
	format func(rest string) string
}

// Order matters: longer prefixes sharing a first letter come first.
var venuePrefixes = []venuePrefix{
	{"BB", func(r string) string { return r + " Blue Boar Court" }},
	{"BS", func(r string) string { return "Room " + r + ", 4A Bridge Street" }},
	{"B", func(r string) string { return r + " Bishop’s Hostel" }},
	{"G", func(r string) string { return r + " Great Court" }},
	{"H", func(r string) string { return r + " Whewell’s Court" }},
	{"K", func(r string) string { return r + " New Court" }},
	{"LR", func(r string) string {
		if r == "" {
			return "Lecture Rooms (I Great Court)"
		}
		return "Lecture Room " + r + " (I Great Court)"
	}},
	{"MR", func(r string) string { return "Centre for Mathematical Sciences MR" + r }},
	{"N", func(r string) string { return r + " Nevile’s Court" }},
}

// VenueName expands a venue code. Exact codes win over prefix rules. The
// second result is false when the code is unknown, in which case the code
// itself is returned.
func VenueName(code string) (string, bool) {
	if code == "" {
		return "", true
	}
	if name, ok := venues[code]; ok {
		return name, true
	}
	for _, p := range venuePrefixes {
		if strings.HasPrefix(code, p.prefix) {
			return p.format(code[len(p.prefix):]), true
		}
	}
	return code, false
}
