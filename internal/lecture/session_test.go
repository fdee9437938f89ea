package lecture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	s := NewSession("History I", t0, DefaultSegments())
	title, theme := "The Vargas Era", "Estado Novo"
	if err := s.Configure(Settings{Title: &title, Theme: &theme}); err != nil {
		panic(err)
	}
	return s
}

func TestSession_LogExportKeepsAppendOrder(t *testing.T) {
	s := newTestSession()

	s.Start(at(0))
	block := s.Advance(at(600))
	_, err := s.AddNote(at(610), KindContent, "primary sources")
	require.NoError(t, err)
	_, err = s.AddNote(at(620), KindTask, "read chapter 3")
	require.NoError(t, err)

	tbl, err := s.ExportLog()
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, LogColumns, tbl.Header)

	assert.Equal(t, []string{
		block.ID.String(), "2025-03-10", "History I", "The Vargas Era", "Estado Novo",
		"block", "Warm-up", "10", "10.0", "", at(600).Format(time.RFC3339),
	}, tbl.Rows[0])

	// content notes belong to the segment that is current when they are taken
	assert.Equal(t, "content", tbl.Rows[1][5])
	assert.Equal(t, "Lecture", tbl.Rows[1][6])
	assert.Equal(t, "", tbl.Rows[1][7])
	assert.Equal(t, "", tbl.Rows[1][8])
	assert.Equal(t, "primary sources", tbl.Rows[1][9])

	assert.Equal(t, "task", tbl.Rows[2][5])
	assert.Equal(t, NoSegment, tbl.Rows[2][6])
	assert.Equal(t, "read chapter 3", tbl.Rows[2][9])
}

func TestSession_AddNoteRejectsInvalidInput(t *testing.T) {
	s := newTestSession()

	_, err := s.AddNote(at(0), KindAssignment, "  \n ")
	assert.ErrorIs(t, err, ErrEmptyNote)

	_, err = s.AddNote(at(0), KindBlock, "text")
	assert.ErrorIs(t, err, ErrUnknownNoteKind)

	_, err = s.AddNote(at(0), "quiz", "text")
	assert.ErrorIs(t, err, ErrUnknownNoteKind)

	assert.Empty(t, s.Snapshot().Log)
}

func TestSession_ResetClearsTimerAndLogKeepsRoster(t *testing.T) {
	s := newTestSession()
	s.SetRoster("Ana\nBruno")
	s.Start(at(0))
	s.Advance(at(60))
	s.Start(at(60))
	s.Tick(at(90))

	s.Reset()
	snap := s.Snapshot()

	assert.Equal(t, 0, snap.SegmentIndex)
	assert.Equal(t, 10*60, snap.RemainingSeconds)
	assert.False(t, snap.Running)
	assert.Empty(t, snap.Log)
	assert.Len(t, snap.Roster, 2)
}

func TestSession_ExportRejectsEmpty(t *testing.T) {
	s := newTestSession()

	_, err := s.ExportLog()
	assert.ErrorIs(t, err, ErrEmptyLog)

	_, err = s.ExportRoster()
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestSession_RepeatedAdvanceAtLastSegmentRelogs(t *testing.T) {
	s := NewSession("Math", t0, []Segment{{Name: "Only", Minutes: 5}})

	s.Start(at(0))
	first := s.Advance(at(120))
	second := s.Advance(at(125))

	assert.Equal(t, "Only", first.Segment)
	assert.Equal(t, 2.0, first.SpentMinutes)
	assert.Equal(t, "Only", second.Segment)
	assert.Zero(t, second.SpentMinutes)
	assert.Equal(t, 0, s.Snapshot().SegmentIndex)
}

func TestSession_Summary(t *testing.T) {
	s := newTestSession()

	s.Start(at(0))
	s.Advance(at(12 * 60))
	s.Start(at(12 * 60))
	s.Advance(at(12*60 + 21*60))
	_, _ = s.AddNote(at(2000), KindContent, "x")

	sum := s.Snapshot().Summary

	assert.Equal(t, 2, sum.Blocks)
	assert.Equal(t, 1, sum.Notes)
	assert.Equal(t, 35.0, sum.PlannedMinutes)
	assert.Equal(t, 33.0, sum.SpentMinutes)
	assert.Equal(t, 16.5, sum.MeanSpent)
	assert.Equal(t, -2.0, sum.Overrun)
}

func TestSnapshot_RemainingLabel(t *testing.T) {
	s := newTestSession()
	s.Start(at(0))
	s.Tick(at(61))

	snap := s.Snapshot()
	assert.Equal(t, 539, snap.RemainingSeconds)
	assert.Equal(t, "08:59", snap.RemainingLabel())
}

func TestSession_ConfigureTrimsAndKeepsDateOnly(t *testing.T) {
	s := newTestSession()
	course := "  Geography  "
	date := time.Date(2025, 4, 1, 15, 30, 0, 0, time.UTC)

	require.NoError(t, s.Configure(Settings{Course: &course, Date: &date}))

	assert.Equal(t, "Geography", s.Info().Course)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), s.Info().Date)
	assert.Equal(t, "The Vargas Era", s.Info().Title)
}

func TestSession_ConfigureSegmentsByPosition(t *testing.T) {
	s := newTestSession()
	s.Start(at(0))
	s.Advance(at(60))

	err := s.Configure(Settings{Segments: []Segment{
		{Name: "Quiz", Minutes: 5},
		{Name: " ", Minutes: 30},
		{Name: "Lab", Minutes: 0},
		{Name: "Wrap-up", Minutes: 500},
	}})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, []Segment{
		{Name: "Quiz", Minutes: 5},
		{Name: "Block 2", Minutes: 30},
		{Name: "Lab", Minutes: 1},
		{Name: "Wrap-up", Minutes: 180},
	}, snap.Segments)
	assert.Equal(t, 1, snap.SegmentIndex)
}

func TestSession_ConfigureRejectsSegmentCountChange(t *testing.T) {
	s := newTestSession()
	course := "Geography"

	for _, segs := range [][]Segment{
		{},
		{{Name: "Only", Minutes: 10}},
		append(DefaultSegments(), Segment{Name: "Extra", Minutes: 5}),
	} {
		err := s.Configure(Settings{Course: &course, Segments: segs})
		require.ErrorIs(t, err, ErrSegmentCount)
	}

	// nothing from a rejected update is applied
	assert.Equal(t, DefaultSegments(), s.Snapshot().Segments)
	assert.Equal(t, "History I", s.Info().Course)
}
