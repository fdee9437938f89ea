package lecture

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyNote       = errors.New("note text is empty")
	ErrUnknownNoteKind = errors.New("unknown note kind")
	ErrBlankName       = errors.New("student name is blank")
	ErrEmptyLog        = errors.New("session log is empty")
	ErrEmptyRoster     = errors.New("roster is empty")
	ErrSegmentCount    = errors.New("segment count cannot change")
)

// Session is the whole state of one lecture: lesson metadata, the segmented
// timer, the log and the attendance roster. It is not safe for concurrent
// use; a single owner applies commands one at a time.
type Session struct {
	ID     uuid.UUID
	info   Context
	timer  *Timer
	log    Log
	roster *Roster
}

// Settings is a partial update of the lesson configuration; nil fields are left alone.
type Settings struct {
	Course   *string
	Date     *time.Time
	Title    *string
	Theme    *string
	Segments []Segment
}

type Snapshot struct {
	SessionID        uuid.UUID
	Info             Context
	Segments         []Segment
	SegmentIndex     int
	Segment          Segment
	Running          bool
	ElapsedSeconds   float64
	RemainingSeconds int
	Progress         float64
	Log              []Entry
	Roster           []Student
	Summary          Summary
}

// RemainingLabel formats remaining time as MM:SS.
func (s Snapshot) RemainingLabel() string {
	return fmt.Sprintf("%02d:%02d", s.RemainingSeconds/60, s.RemainingSeconds%60)
}

func NewSession(course string, date time.Time, segments []Segment) *Session {
	return &Session{
		ID:     uuid.New(),
		info:   Context{Date: truncateDay(date), Course: strings.TrimSpace(course)},
		timer:  NewTimer(segments),
		roster: NewRoster(),
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *Session) Info() Context {
	return s.info
}

// Configure applies a partial update. Segments are renamed and resized by
// position only: a list of a different length is rejected before anything
// changes.
func (s *Session) Configure(set Settings) error {
	if set.Segments != nil && len(set.Segments) != len(s.timer.Segments()) {
		return fmt.Errorf("%w: got %d, plan has %d", ErrSegmentCount, len(set.Segments), len(s.timer.Segments()))
	}

	if set.Course != nil {
		s.info.Course = strings.TrimSpace(*set.Course)
	}
	if set.Date != nil {
		s.info.Date = truncateDay(*set.Date)
	}
	if set.Title != nil {
		s.info.Title = strings.TrimSpace(*set.Title)
	}
	if set.Theme != nil {
		s.info.Theme = strings.TrimSpace(*set.Theme)
	}
	if set.Segments != nil {
		s.timer.SetSegments(set.Segments)
	}

	return nil
}

func (s *Session) Start(now time.Time) bool {
	return s.timer.Start(now)
}

func (s *Session) Pause(now time.Time) bool {
	return s.timer.Pause(now)
}

func (s *Session) Tick(now time.Time) {
	s.timer.Tick(now)
}

func (s *Session) Running() bool {
	return s.timer.Running()
}

// Advance logs the current segment with the time spent on it and moves on.
func (s *Session) Advance(now time.Time) BlockEntry {
	done := s.timer.Advance(now)

	return s.log.AppendBlock(BlockEntry{
		Context:        s.info,
		Segment:        done.Segment.Name,
		PlannedMinutes: done.Segment.Minutes,
		SpentMinutes:   done.SpentMinutes,
		Timestamp:      now,
	})
}

// Reset starts the lecture over: the timer goes back to the first segment
// and the log is emptied. The roster is kept.
func (s *Session) Reset() {
	s.timer.Reset()
	s.log.Clear()
}

// AddNote appends a free-text note. Content notes are attached to the
// current segment; tasks and assignments are not tied to one.
func (s *Session) AddNote(now time.Time, kind NoteKind, text string) (NoteEntry, error) {
	if !kind.IsNote() {
		return NoteEntry{}, fmt.Errorf("%w: %q", ErrUnknownNoteKind, kind)
	}
	if strings.TrimSpace(text) == "" {
		return NoteEntry{}, ErrEmptyNote
	}

	segment := NoSegment
	if kind == KindContent {
		segment = s.timer.Current().Name
	}

	return s.log.AppendNote(NoteEntry{
		Context:   s.info,
		Label:     kind,
		Segment:   segment,
		Text:      text,
		Timestamp: now,
	}), nil
}

func (s *Session) SetRoster(raw string) int {
	return s.roster.SetFromText(raw)
}

func (s *Session) SetPresence(name string, present bool) error {
	if !s.roster.SetPresence(name, present) {
		return ErrBlankName
	}
	return nil
}

func (s *Session) ClearRoster() {
	s.roster.Clear()
}

func (s *Session) ExportLog() (Table, error) {
	if s.log.Len() == 0 {
		return Table{}, ErrEmptyLog
	}
	return s.log.Export(), nil
}

func (s *Session) ExportRoster() (Table, error) {
	if s.roster.Len() == 0 {
		return Table{}, ErrEmptyRoster
	}
	return s.roster.Export(s.info.Date, s.info.Course), nil
}

// Snapshot reports the state as of the last Tick; it does not advance time.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:        s.ID,
		Info:             s.info,
		Segments:         s.timer.Segments(),
		SegmentIndex:     s.timer.Index(),
		Segment:          s.timer.Current(),
		Running:          s.timer.Running(),
		ElapsedSeconds:   s.timer.ElapsedSeconds(),
		RemainingSeconds: s.timer.RemainingSeconds(),
		Progress:         s.timer.Progress(),
		Log:              s.log.Entries(),
		Roster:           s.roster.Students(),
		Summary:          s.log.Summary(),
	}
}
