package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Excluded(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, "cdip", f.Exclude)

	assert.True(t, f.Excluded(&Meeting{Flags: "d"}))
	assert.True(t, f.Excluded(&Meeting{Flags: "tp"}))
	assert.False(t, f.Excluded(&Meeting{Flags: "ft"}))
	assert.False(t, f.Excluded(&Meeting{}))

	none := Filter{}
	assert.False(t, none.Excluded(&Meeting{Flags: "d"}))
}

func TestIsAdministrative(t *testing.T) {
	single := func(title string) *Meeting {
		return &Meeting{Talks: []Talk{{Title: title, Speakers: []string{""}}}}
	}

	assert.True(t, IsAdministrative(single("Business Meeting")))
	assert.True(t, IsAdministrative(single("Business Meeting (elections)")))
	assert.True(t, IsAdministrative(single("Annual General Meeting")))
	assert.True(t, IsAdministrative(single("(no speaker present)")))
	assert.False(t, IsAdministrative(single(`"Business Meeting"`)))
	assert.False(t, IsAdministrative(single(`"Groups"`)))

	two := &Meeting{Talks: []Talk{
		{Title: "Business Meeting", Speakers: []string{""}},
		{Title: `"Groups"`, Speakers: []string{"J. Doe"}},
	}}
	assert.False(t, IsAdministrative(two))

	unminuted := &Meeting{Talks: []Talk{{Title: "Annual General Meeting", Speakers: []string{"unminuted"}}}}
	assert.True(t, IsAdministrative(unminuted))

	named := &Meeting{Talks: []Talk{{Title: "Business Meeting", Speakers: []string{"J. Doe"}}}}
	assert.False(t, IsAdministrative(named), "a talk with a speaker is listed")

	mixed := &Meeting{Talks: []Talk{{Title: "(no speaker present)", Speakers: []string{"", "A. Roe"}}}}
	assert.False(t, IsAdministrative(mixed))
}

func TestFilter_Keep(t *testing.T) {
	f := Filter{Exclude: "f"}
	talk := []Talk{{Title: `"X"`, Speakers: []string{"J. Doe"}}}

	assert.True(t, f.Keep(&Meeting{Talks: talk}))
	assert.False(t, f.Keep(&Meeting{Flags: "f", Talks: talk}))
	assert.False(t, f.Keep(&Meeting{Talks: []Talk{{Title: "Annual General Meeting", Speakers: []string{""}}}}))
}
