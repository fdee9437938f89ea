package lecture

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
)

const DateLayout = "2006-01-02"

type EntryKind string

const (
	KindBlock      EntryKind = "block"
	KindContent    EntryKind = "content"
	KindTask       EntryKind = "task"
	KindAssignment EntryKind = "assignment"
)

// NoteKind is the subset of EntryKind accepted for free-text notes.
type NoteKind = EntryKind

func (k EntryKind) IsNote() bool {
	return k == KindContent || k == KindTask || k == KindAssignment
}

// NoSegment is recorded for notes that are not tied to the running block.
const NoSegment = "N/A"

// Context is the lesson metadata stamped on every log entry.
type Context struct {
	Date   time.Time
	Course string
	Title  string
	Theme  string
}

// Entry is either a BlockEntry or a NoteEntry.
type Entry interface {
	EntryID() uuid.UUID
	Kind() EntryKind
	row() []string
}

type BlockEntry struct {
	ID             uuid.UUID
	Context        Context
	Segment        string
	PlannedMinutes int
	SpentMinutes   float64
	Timestamp      time.Time
}

func (e BlockEntry) EntryID() uuid.UUID { return e.ID }
func (e BlockEntry) Kind() EntryKind    { return KindBlock }

func (e BlockEntry) row() []string {
	return []string{
		e.ID.String(),
		e.Context.Date.Format(DateLayout),
		e.Context.Course,
		e.Context.Title,
		e.Context.Theme,
		string(KindBlock),
		e.Segment,
		strconv.Itoa(e.PlannedMinutes),
		strconv.FormatFloat(e.SpentMinutes, 'f', 1, 64),
		"",
		e.Timestamp.Format(time.RFC3339),
	}
}

type NoteEntry struct {
	ID        uuid.UUID
	Context   Context
	Label     NoteKind
	Segment   string
	Text      string
	Timestamp time.Time
}

func (e NoteEntry) EntryID() uuid.UUID { return e.ID }
func (e NoteEntry) Kind() EntryKind    { return e.Label }

func (e NoteEntry) row() []string {
	return []string{
		e.ID.String(),
		e.Context.Date.Format(DateLayout),
		e.Context.Course,
		e.Context.Title,
		e.Context.Theme,
		string(e.Label),
		e.Segment,
		"",
		"",
		e.Text,
		e.Timestamp.Format(time.RFC3339),
	}
}

// LogColumns is the union of BlockEntry and NoteEntry fields, in export order.
var LogColumns = []string{
	"id", "date", "course", "title", "theme", "kind", "segment",
	"planned_minutes", "spent_minutes", "content", "timestamp",
}

// Table is the flat projection handed to exporters.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Log is append-only; entries are removed only by Clear.
type Log struct {
	entries []Entry
}

func (l *Log) AppendBlock(e BlockEntry) BlockEntry {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	l.entries = append(l.entries, e)
	return e
}

func (l *Log) AppendNote(e NoteEntry) NoteEntry {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	l.entries = append(l.entries, e)
	return e
}

func (l *Log) Clear() {
	l.entries = nil
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Export projects entries in append order; fields an entry kind lacks are empty.
func (l *Log) Export() Table {
	rows := make([][]string, 0, len(l.entries))
	for _, e := range l.entries {
		rows = append(rows, e.row())
	}

	return Table{Header: LogColumns, Rows: rows}
}

type Summary struct {
	Blocks         int     `json:"blocks"`
	Notes          int     `json:"notes"`
	PlannedMinutes float64 `json:"planned_minutes"`
	SpentMinutes   float64 `json:"spent_minutes"`
	MeanSpent      float64 `json:"mean_spent_minutes"`
	Overrun        float64 `json:"overrun_minutes"`
}

func (l *Log) Summary() Summary {
	var (
		planned stats.Float64Data
		spent   stats.Float64Data
		sum     Summary
	)

	for _, e := range l.entries {
		switch v := e.(type) {
		case BlockEntry:
			planned = append(planned, float64(v.PlannedMinutes))
			spent = append(spent, v.SpentMinutes)
		case NoteEntry:
			sum.Notes++
		}
	}

	sum.Blocks = len(spent)
	if sum.Blocks == 0 {
		return sum
	}

	// Sum and Mean only fail on empty input, ruled out above.
	sum.PlannedMinutes, _ = planned.Sum()
	sum.SpentMinutes, _ = spent.Sum()
	mean, _ := spent.Mean()
	sum.MeanSpent, _ = stats.Round(mean, 1)
	sum.Overrun, _ = stats.Round(sum.SpentMinutes-sum.PlannedMinutes, 1)
	sum.SpentMinutes, _ = stats.Round(sum.SpentMinutes, 1)

	return sum
}
