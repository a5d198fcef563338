package registry

import "sort"

var jointSocieties = map[string][]string{
	"Adams": {"Adams Society"},
	"M&S":   {"Magpie and Stump"},
	"A/M&S": {"Adams Society", "Magpie and Stump"},
	"MRSTC": {"Mathematics Research Students’ Tea Club"},
	"NP":    {"New Pythagoreans"},
	"TCMS":  {"Trinity College Music Society"},
	"TCNSS": {"Trinity College Natural Sciences Society"},
	"TCSS":  {"Trinity College Science Society"},
}

// JointSocieties returns the display names of the societies behind a joint
// code. An empty code yields nil and true.
func JointSocieties(code string) ([]string, bool) {
	if code == "" {
		return nil, true
	}
	names, ok := jointSocieties[code]
	if !ok {
		return nil, false
	}
	return append([]string(nil), names...), true
}

// ValidJointCode reports whether code is empty or a known joint code.
func ValidJointCode(code string) bool {
	_, ok := JointSocieties(code)
	return ok
}

// JointCodes returns every known joint code, sorted.
func JointCodes() []string {
	codes := make([]string, 0, len(jointSocieties))
	for code := range jointSocieties {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
