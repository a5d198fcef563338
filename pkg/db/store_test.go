package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/tmsledger/pkg/calendar"
	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/stats"
)

func sampleMeetings() []ledger.Meeting {
	return []ledger.Meeting{
		{
			Number: "1", Date: calendar.MustParse("1919-11-04"), Venue: "AR", Page: "1", Audience: "40",
			Talks: []ledger.Talk{{Title: `"Opening"`, Speakers: []string{"Prof. G.H. Hardy"}}},
		},
		{
			Number: "2", Date: calendar.MustParse("1920-01-20"), Flags: "f", JointCode: "a",
			Talks: []ledger.Talk{{Title: `"Motion"`, Speakers: []string{"J. Doe (prop)", "A. Roe (opp)"}}},
		},
		{
			Number: "3",
			Talks:  []ledger.Talk{{Title: `"Lost"`, Speakers: []string{"J. Doe"}}},
		},
		{
			Number: "4", Date: calendar.MustParse("1921-02-01"), Flags: "d",
			Talks: []ledger.Talk{{Title: `"Dinner"`, Speakers: []string{"J. Doe"}}},
		},
		{
			Number: "5", Date: calendar.MustParse("1921-03-01"),
			Talks: []ledger.Talk{{Title: "Business Meeting", Speakers: []string{""}}},
		},
		{
			Number: "6a", Date: calendar.MustParse("1922-05-10"),
			Talks: []ledger.Talk{
				{Title: `"Again"`, Speakers: []string{"Dr. J. Doe"}},
				{Title: `"Other"`, Speakers: []string{"unminuted"}},
			},
		},
	}
}

func TestSaveImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	meetings := sampleMeetings()

	id, err := s.SaveImport(ctx, "meetings.txt", meetings)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	imp, err := s.LoadImport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, imp.ID)
	assert.Equal(t, "meetings.txt", imp.Source)
	assert.False(t, imp.CreatedAt.IsZero())
	assert.Equal(t, meetings, imp.Meetings)
}

func TestSaveImport_DecodedSpeakers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.SaveImport(ctx, "meetings.txt", sampleMeetings())
	require.NoError(t, err)

	var honorific, initials, surname, role, canonical string
	require.NoError(t, s.DB().QueryRowContext(ctx, `
		SELECT honorific, initials, surname, role, canonical FROM speakers
		WHERE import_id = $1 AND raw = $2`, id, "J. Doe (prop)",
	).Scan(&honorific, &initials, &surname, &role, &canonical))
	assert.Equal(t, "", honorific)
	assert.Equal(t, "J.", initials)
	assert.Equal(t, "Doe", surname)
	assert.Equal(t, "(prop)", role)
	assert.Equal(t, "Doe, J.", canonical)

	var placeholders int
	require.NoError(t, s.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM speakers WHERE import_id = $1 AND placeholder = 1", id,
	).Scan(&placeholders))
	assert.Equal(t, 2, placeholders)

	var administrative int
	require.NoError(t, s.DB().QueryRowContext(ctx,
		"SELECT administrative FROM meetings WHERE import_id = $1 AND number = $2", id, "5",
	).Scan(&administrative))
	assert.Equal(t, 1, administrative)
}

func TestSaveImport_MalformedSpeakerRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	meetings := sampleMeetings()
	meetings[3].Talks[0].Speakers = []string{"Smith"}

	_, err := s.SaveImport(ctx, "bad.txt", meetings)
	require.Error(t, err)
	assert.True(t, lerrors.IsMalformedSpeaker(err))

	_, err = s.LatestImport(ctx)
	assert.True(t, lerrors.IsNotFound(err), "nothing is committed")
}

func TestSaveImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := openTestStore(t)
	cancel()

	_, err := s.SaveImport(ctx, "meetings.txt", sampleMeetings())
	require.Error(t, err)
}

func TestLoadImport_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadImport(context.Background(), "no-such-import")
	require.Error(t, err)
	assert.True(t, lerrors.IsNotFound(err))
}

func TestLatestImport(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.LatestImport(ctx)
	require.Error(t, err)
	assert.True(t, lerrors.IsNotFound(err))

	_, err = s.SaveImport(ctx, "old.txt", sampleMeetings()[:1])
	require.NoError(t, err)
	newest, err := s.SaveImport(ctx, "new.txt", sampleMeetings())
	require.NoError(t, err)

	imp, err := s.LatestImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, newest, imp.ID)
	assert.Equal(t, "new.txt", imp.Source)
	assert.Len(t, imp.Meetings, len(sampleMeetings()))
}

func TestLatestImportID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.LatestImportID(ctx)
	require.Error(t, err)
	assert.True(t, lerrors.IsNotFound(err))

	_, err = s.SaveImport(ctx, "old.txt", sampleMeetings()[:1])
	require.NoError(t, err)
	newest, err := s.SaveImport(ctx, "new.txt", sampleMeetings())
	require.NoError(t, err)

	id, err := s.LatestImportID(ctx)
	require.NoError(t, err)
	assert.Equal(t, newest, id)
}

func TestSpeakerCounts_UnknownImport(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.SaveImport(ctx, "meetings.txt", sampleMeetings())
	require.NoError(t, err)

	counts, err := s.SpeakerCounts(ctx, "no-such-import", ledger.Filter{})
	require.Error(t, err)
	assert.True(t, lerrors.IsNotFound(err), err)
	assert.Nil(t, counts)
}

func TestSpeakerCounts_EmptyImport(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.SaveImport(ctx, "empty.txt", nil)
	require.NoError(t, err)

	counts, err := s.SpeakerCounts(ctx, id, ledger.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestSaveImport_Empty(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.SaveImport(ctx, "empty.txt", nil)
	require.NoError(t, err)

	imp, err := s.LoadImport(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, imp.Meetings)
}

func TestSpeakerCounts_MatchesAggregate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	meetings := sampleMeetings()

	id, err := s.SaveImport(ctx, "meetings.txt", meetings)
	require.NoError(t, err)

	for _, filter := range []ledger.Filter{ledger.DefaultFilter(), {Exclude: ""}, {Exclude: "f"}} {
		t.Run("exclude="+filter.Exclude, func(t *testing.T) {
			counts, err := s.SpeakerCounts(ctx, id, filter)
			require.NoError(t, err)

			table, err := stats.Aggregate(meetings, filter)
			require.NoError(t, err)

			var want []SpeakerCount
			for _, sp := range table.ByCount() {
				want = append(want, SpeakerCount{Name: sp.Name, Talks: sp.Talks})
			}
			assert.Equal(t, want, counts)
		})
	}
}

func TestSpeakerCounts_DefaultFilter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.SaveImport(ctx, "meetings.txt", sampleMeetings())
	require.NoError(t, err)

	counts, err := s.SpeakerCounts(ctx, id, ledger.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, []SpeakerCount{
		{Name: "Hardy, G.H.", Talks: 1},
		{Name: "Roe, A.", Talks: 1},
		{Name: "Doe, J.", Talks: 2},
	}, counts)
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("TMSLEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TMSLEDGER_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: DriverPostgres, DSN: dsn}, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	defer s.Close()

	meetings := sampleMeetings()
	id, err := s.SaveImport(ctx, "meetings.txt", meetings)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.DB().ExecContext(context.Background(), "DELETE FROM imports WHERE id = $1", id)
	})

	imp, err := s.LoadImport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, meetings, imp.Meetings)

	counts, err := s.SpeakerCounts(ctx, id, ledger.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, counts, 3)
}
