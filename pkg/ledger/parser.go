package ledger

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/otherjamesbrown/tmsledger/pkg/calendar"
	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/registry"
	"github.com/otherjamesbrown/tmsledger/pkg/speaker"
)

// Column grammar. Fields are separated by single spaces; everything after
// the speaker column is optional so that lines with trailing blanks removed
// still parse.
var lineRegex = regexp.MustCompile(
	`^(.{5}) (.{10}) (.{3}) (.{5}) (.{1,32})(?: (.{1,103})(?: (.{1,5})(?: (.{1,3})(?: (.*))?)?)?)?$`)

// minLineWidth is the width up to and including the first speaker column.
const minLineWidth = 28

// FormatHeaderMarker starts the column header line found under each volume
// heading.
const FormatHeaderMarker = "mmmxx"

// LineKind classifies an input line.
type LineKind string

const (
	LineMeeting      LineKind = "meeting"
	LineContinuation LineKind = "continuation"
	LineSkipped      LineKind = "skipped"
)

// SkipReason says why a line was skipped.
type SkipReason string

const (
	SkipBlank   SkipReason = "blank"
	SkipVolume  SkipReason = "volume"
	SkipRule    SkipReason = "rule"
	SkipHeader  SkipReason = "header"
	SkipNote    SkipReason = "note"
	SkipNothing SkipReason = ""
)

// Observer receives per-line parse events.
type Observer interface {
	ObserveLine(kind LineKind, reason SkipReason)
	ObserveError(code lerrors.ErrorCode)
}

type parseState int

const (
	stateNewMeeting parseState = iota
	stateContinuation
)

// Parser reads ledger text into meetings.
type Parser struct {
	validateSpeakers bool
	observer         Observer
	logger           logging.Logger
}

// Option configures the parser.
type Option func(*Parser)

// WithObserver registers an observer for line events.
func WithObserver(o Observer) Option {
	return func(p *Parser) {
		p.observer = o
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithSpeakerValidation turns speaker decoding during the parse on or off.
// It is on by default.
func WithSpeakerValidation(enabled bool) Option {
	return func(p *Parser) {
		p.validateSpeakers = enabled
	}
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		validateSpeakers: true,
		logger:           logging.MustGlobal(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logging.F("component", "ledger_parser"))
	return p
}

// Parse reads a whole ledger with a default parser.
func Parse(ctx context.Context, r io.Reader, opts ...Option) ([]Meeting, error) {
	return NewParser(opts...).Parse(ctx, r)
}

// fields holds the trimmed columns of one line.
type fields struct {
	number   string
	date     string
	flags    string
	joint    string
	speaker  string
	title    string
	venue    string
	page     string
	audience string
}

// run is the state of one Parse call. In stateContinuation the cursor is the
// last meeting and its talk at index talk.
type run struct {
	state    parseState
	meetings []Meeting
	talk     int
}

func (r *run) current() *Meeting {
	return &r.meetings[len(r.meetings)-1]
}

// Parse reads r to the end and returns the meetings in file order. The first
// bad line aborts the parse; no meetings are returned with an error.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]Meeting, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	st := &run{state: stateNewMeeting}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, p.fail(&lerrors.LedgerError{Code: lerrors.CodeCancelled, Message: "parse interrupted", Cause: err})
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if reason, skip := skipReason(line); skip {
			p.observe(LineSkipped, reason)
			continue
		}

		f, err := splitLine(line, lineNo)
		if err != nil {
			return nil, p.fail(err)
		}

		if f.date == "" && f.number == "" {
			err = p.continuation(st, f, line, lineNo)
		} else {
			err = p.meeting(st, f, line, lineNo)
		}
		if err != nil {
			return nil, p.fail(err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, p.fail(&lerrors.LedgerError{Code: lerrors.CodeProcessing, Message: "read ledger", Cause: err})
	}

	p.logger.Debug("Parsed ledger",
		logging.F("lines", lineNo),
		logging.F("meetings", len(st.meetings)))

	if st.meetings == nil {
		return []Meeting{}, nil
	}
	return st.meetings, nil
}

func (p *Parser) meeting(st *run, f fields, line string, lineNo int) error {
	var date calendar.Date
	if f.date != "" {
		d, err := calendar.ParseDate(f.date)
		if err != nil {
			return lerrors.NewLineError(lerrors.CodeMalformedLine, lineNo, line, "bad date").WithCause(err)
		}
		date = d
	}
	if c, bad := registry.InvalidFlag(f.flags); bad {
		return lerrors.NewLineError(lerrors.CodeInvalidFlags, lineNo, line, "unknown flag %q", c)
	}
	if !registry.ValidJointCode(f.joint) {
		return lerrors.NewLineError(lerrors.CodeInvalidJointCode, lineNo, line, "unknown joint society %q", f.joint)
	}
	if err := p.checkSpeaker(f.speaker, line, lineNo); err != nil {
		return err
	}

	st.meetings = append(st.meetings, Meeting{
		Number:    f.number,
		Date:      date,
		Flags:     f.flags,
		JointCode: f.joint,
		Venue:     f.venue,
		Page:      f.page,
		Audience:  f.audience,
		Talks:     []Talk{{Title: f.title, Speakers: []string{f.speaker}}},
	})
	st.talk = 0
	st.state = stateContinuation
	p.observe(LineMeeting, SkipNothing)
	return nil
}

func (p *Parser) continuation(st *run, f fields, line string, lineNo int) error {
	if st.state != stateContinuation {
		return lerrors.NewLineError(lerrors.CodeMalformedContinuation, lineNo, line, "continuation line before any meeting")
	}
	if f.flags != "" || f.joint != "" {
		return lerrors.NewLineError(lerrors.CodeMalformedContinuation, lineNo, line, "flags or joint code on continuation line")
	}
	if f.venue != "" || f.page != "" || f.audience != "" {
		return lerrors.NewLineError(lerrors.CodeMalformedContinuation, lineNo, line, "venue, page or audience on continuation line")
	}
	if err := p.checkSpeaker(f.speaker, line, lineNo); err != nil {
		return err
	}

	m := st.current()
	if f.title != "" {
		m.Talks = append(m.Talks, Talk{Title: f.title, Speakers: []string{f.speaker}})
		st.talk = len(m.Talks) - 1
	} else {
		t := &m.Talks[st.talk]
		t.Speakers = append(t.Speakers, f.speaker)
	}
	p.observe(LineContinuation, SkipNothing)
	return nil
}

func (p *Parser) checkSpeaker(raw, line string, lineNo int) error {
	if !p.validateSpeakers {
		return nil
	}
	if _, err := speaker.Decode(raw); err != nil {
		code := lerrors.CodeMalformedSpeaker
		if lerrors.IsInternal(err) {
			code = lerrors.CodeInternal
		}
		return lerrors.NewLineError(code, lineNo, line, "bad speaker %q", raw).WithCause(err)
	}
	return nil
}

func (p *Parser) observe(kind LineKind, reason SkipReason) {
	if p.observer != nil {
		p.observer.ObserveLine(kind, reason)
	}
}

func (p *Parser) fail(err error) error {
	le := lerrors.ClassifyError(err)
	if p.observer != nil {
		p.observer.ObserveError(le.Code)
	}
	p.logger.Debug("Ledger parse failed",
		logging.F("line", le.Line),
		logging.F("code", string(le.Code)),
		logging.Err(err))
	return err
}

func skipReason(line string) (SkipReason, bool) {
	switch {
	case strings.TrimSpace(line) == "":
		return SkipBlank, true
	case strings.HasPrefix(line, "VOLUME"):
		return SkipVolume, true
	case strings.Trim(line, "-") == "":
		return SkipRule, true
	case strings.HasPrefix(line, FormatHeaderMarker):
		return SkipHeader, true
	case strings.HasPrefix(line, "("):
		return SkipNote, true
	}
	return SkipNothing, false
}

func splitLine(line string, lineNo int) (fields, error) {
	padded := line
	if n := utf8.RuneCountInString(line); n < minLineWidth {
		padded += strings.Repeat(" ", minLineWidth-n)
	}

	m := lineRegex.FindStringSubmatch(padded)
	if m == nil {
		return fields{}, lerrors.NewLineError(lerrors.CodeMalformedLine, lineNo, line, "line does not match the column layout")
	}

	return fields{
		number:   stripSpaces(m[1]),
		date:     strings.TrimSpace(m[2]),
		flags:    stripSpaces(m[3]),
		joint:    stripSpaces(m[4]),
		speaker:  strings.TrimRight(m[5], " \t"),
		title:    strings.TrimRight(m[6], " \t"),
		venue:    stripSpaces(m[7]),
		page:     stripSpaces(m[8]),
		audience: stripSpaces(m[9]),
	}, nil
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
