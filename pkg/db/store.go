package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/tmsledger/pkg/calendar"
	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/speaker"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Import is one saved ledger.
type Import struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Meetings  []ledger.Meeting
}

// SpeakerCount is one row of the counts report.
type SpeakerCount struct {
	Name  string
	Talks int
}

// SaveImport writes meetings with their talks and decoded speakers in one
// transaction and returns the new import id.
func (s *Store) SaveImport(ctx context.Context, source string, meetings []ledger.Meeting) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO imports (id, source, created_at, meeting_count) VALUES ($1, $2, $3, $4)",
		id, source, time.Now().UTC().Format(timeLayout), len(meetings),
	); err != nil {
		return "", fmt.Errorf("failed to insert import: %w", err)
	}

	w, err := prepareWriter(ctx, tx)
	if err != nil {
		return "", err
	}
	defer w.close()

	for i := range meetings {
		if err := ctx.Err(); err != nil {
			return "", &lerrors.LedgerError{Code: lerrors.CodeCancelled, Message: "save interrupted", Cause: err}
		}
		if err := w.meeting(ctx, id, i, &meetings[i]); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit import: %w", err)
	}

	s.logger.Info("Saved import",
		logging.F("import_id", id),
		logging.F("source", source),
		logging.F("meetings", len(meetings)),
	)
	return id, nil
}

type writer struct {
	meetings *sql.Stmt
	talks    *sql.Stmt
	speakers *sql.Stmt
}

func prepareWriter(ctx context.Context, tx *sql.Tx) (*writer, error) {
	w := &writer{}
	var err error
	if w.meetings, err = tx.PrepareContext(ctx, `
		INSERT INTO meetings (import_id, seq, number, meeting_date, day_number, flags,
			joint_code, venue, page, audience, administrative)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`); err != nil {
		return nil, fmt.Errorf("failed to prepare meeting insert: %w", err)
	}
	if w.talks, err = tx.PrepareContext(ctx, `
		INSERT INTO talks (import_id, meeting_seq, seq, title)
		VALUES ($1, $2, $3, $4)`); err != nil {
		w.close()
		return nil, fmt.Errorf("failed to prepare talk insert: %w", err)
	}
	if w.speakers, err = tx.PrepareContext(ctx, `
		INSERT INTO speakers (import_id, meeting_seq, talk_seq, seq, raw, placeholder,
			honorific, initials, surname, role, canonical)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`); err != nil {
		w.close()
		return nil, fmt.Errorf("failed to prepare speaker insert: %w", err)
	}
	return w, nil
}

func (w *writer) close() {
	for _, stmt := range []*sql.Stmt{w.meetings, w.talks, w.speakers} {
		if stmt != nil {
			stmt.Close()
		}
	}
}

func (w *writer) meeting(ctx context.Context, id string, seq int, m *ledger.Meeting) error {
	if _, err := w.meetings.ExecContext(ctx,
		id, seq, m.Number, m.Date.String(), m.Date.DayNumber(), m.Flags,
		m.JointCode, m.Venue, m.Page, m.Audience, boolInt(ledger.IsAdministrative(m)),
	); err != nil {
		return fmt.Errorf("failed to insert meeting %s: %w", m.Number, err)
	}

	for ti, t := range m.Talks {
		if _, err := w.talks.ExecContext(ctx, id, seq, ti, t.Title); err != nil {
			return fmt.Errorf("failed to insert talk of meeting %s: %w", m.Number, err)
		}
		for si, raw := range t.Speakers {
			var who speaker.Identity
			placeholder := speaker.IsPlaceholder(raw)
			if !placeholder {
				decoded, err := speaker.Decode(raw)
				if err != nil {
					return fmt.Errorf("meeting %s: %w", m.Number, err)
				}
				who = decoded
			}
			canonical := ""
			if !placeholder {
				canonical = who.CanonicalName()
			}
			if _, err := w.speakers.ExecContext(ctx,
				id, seq, ti, si, raw, boolInt(placeholder),
				who.Honorific, who.Initials, who.Surname, who.Role, canonical,
			); err != nil {
				return fmt.Errorf("failed to insert speaker %q: %w", raw, err)
			}
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LatestImportID returns the id of the most recently saved import.
func (s *Store) LatestImportID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM imports ORDER BY created_at DESC LIMIT 1",
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: no imports saved", lerrors.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest import: %w", err)
	}
	return id, nil
}

// LatestImport loads the most recently saved import.
func (s *Store) LatestImport(ctx context.Context) (*Import, error) {
	id, err := s.LatestImportID(ctx)
	if err != nil {
		return nil, err
	}
	return s.LoadImport(ctx, id)
}

func (s *Store) requireImport(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM imports WHERE id = $1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: import %s", lerrors.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up import %s: %w", id, err)
	}
	return nil
}

// LoadImport reads an import back with its meetings in ledger order.
func (s *Store) LoadImport(ctx context.Context, id string) (*Import, error) {
	imp := &Import{ID: id}
	var created string
	err := s.db.QueryRowContext(ctx,
		"SELECT source, created_at FROM imports WHERE id = $1", id,
	).Scan(&imp.Source, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: import %s", lerrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import %s: %w", id, err)
	}
	if imp.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("import %s: bad created_at %q: %w", id, created, err)
	}

	if imp.Meetings, err = s.loadMeetings(ctx, id); err != nil {
		return nil, err
	}
	if err := s.loadTalks(ctx, id, imp.Meetings); err != nil {
		return nil, err
	}
	if err := s.loadSpeakers(ctx, id, imp.Meetings); err != nil {
		return nil, err
	}
	return imp, nil
}

func (s *Store) loadMeetings(ctx context.Context, id string) ([]ledger.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, meeting_date, flags, joint_code, venue, page, audience
		FROM meetings WHERE import_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	meetings := []ledger.Meeting{}
	for rows.Next() {
		var m ledger.Meeting
		var date string
		if err := rows.Scan(&m.Number, &date, &m.Flags, &m.JointCode, &m.Venue, &m.Page, &m.Audience); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		if date != "" {
			if m.Date, err = calendar.ParseDate(date); err != nil {
				return nil, fmt.Errorf("meeting %s: %w", m.Number, err)
			}
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (s *Store) loadTalks(ctx context.Context, id string, meetings []ledger.Meeting) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meeting_seq, title FROM talks
		WHERE import_id = $1 ORDER BY meeting_seq, seq`, id)
	if err != nil {
		return fmt.Errorf("failed to query talks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int
		var title string
		if err := rows.Scan(&seq, &title); err != nil {
			return fmt.Errorf("failed to scan talk: %w", err)
		}
		if seq < 0 || seq >= len(meetings) {
			return fmt.Errorf("%w: talk for missing meeting %d", lerrors.ErrInternal, seq)
		}
		meetings[seq].Talks = append(meetings[seq].Talks, ledger.Talk{Title: title})
	}
	return rows.Err()
}

func (s *Store) loadSpeakers(ctx context.Context, id string, meetings []ledger.Meeting) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meeting_seq, talk_seq, raw FROM speakers
		WHERE import_id = $1 ORDER BY meeting_seq, talk_seq, seq`, id)
	if err != nil {
		return fmt.Errorf("failed to query speakers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mseq, tseq int
		var raw string
		if err := rows.Scan(&mseq, &tseq, &raw); err != nil {
			return fmt.Errorf("failed to scan speaker: %w", err)
		}
		if mseq < 0 || mseq >= len(meetings) || tseq < 0 || tseq >= len(meetings[mseq].Talks) {
			return fmt.Errorf("%w: speaker for missing talk %d/%d", lerrors.ErrInternal, mseq, tseq)
		}
		t := &meetings[mseq].Talks[tseq]
		t.Speakers = append(t.Speakers, raw)
	}
	return rows.Err()
}

// SpeakerCounts answers the counts report for an import from SQL. Rows are
// ordered by talk count, then name, ascending. An unknown id is ErrNotFound.
func (s *Store) SpeakerCounts(ctx context.Context, id string, filter ledger.Filter) ([]SpeakerCount, error) {
	if err := s.requireImport(ctx, id); err != nil {
		return nil, err
	}

	query := `
		SELECT s.canonical, COUNT(*) FROM speakers s
		JOIN meetings m ON m.import_id = s.import_id AND m.seq = s.meeting_seq
		WHERE s.import_id = $1 AND s.placeholder = 0
			AND m.administrative = 0 AND m.day_number > 0`
	args := []any{id}
	for _, c := range filter.Exclude {
		args = append(args, "%"+string(c)+"%")
		query += fmt.Sprintf(" AND m.flags NOT LIKE $%d", len(args))
	}
	query += " GROUP BY s.canonical"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query speaker counts: %w", err)
	}
	defer rows.Close()

	var counts []SpeakerCount
	for rows.Next() {
		var c SpeakerCount
		if err := rows.Scan(&c.Name, &c.Talks); err != nil {
			return nil, fmt.Errorf("failed to scan speaker count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Collation differs between drivers, so order in Go.
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Talks != counts[j].Talks {
			return counts[i].Talks < counts[j].Talks
		}
		return counts[i].Name < counts[j].Name
	})
	return counts, nil
}
