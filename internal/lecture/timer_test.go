package lecture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func TestTimer_OverrunClampsRemainingAndProgress(t *testing.T) {
	tm := NewTimer([]Segment{{Name: "Warmup", Minutes: 10}})

	require.True(t, tm.Start(at(0)))
	tm.Tick(at(650))

	assert.Equal(t, 650.0, tm.ElapsedSeconds())
	assert.Equal(t, 0, tm.RemainingSeconds())
	assert.Equal(t, 1.0, tm.Progress())
}

func TestTimer_PauseResumeKeepsElapsed(t *testing.T) {
	tm := NewTimer(DefaultSegments())

	// running windows: [0,30) [100,145) [200,225) = 100s
	tm.Start(at(0))
	tm.Pause(at(30))
	tm.Tick(at(90))
	assert.Equal(t, 30.0, tm.ElapsedSeconds(), "paused timer must not move")

	tm.Start(at(100))
	tm.Pause(at(145))
	tm.Start(at(200))
	tm.Pause(at(225))

	assert.Equal(t, 100.0, tm.ElapsedSeconds())
	assert.False(t, tm.Running())
}

func TestTimer_StartWhileRunningIsNoop(t *testing.T) {
	tm := NewTimer(DefaultSegments())

	assert.True(t, tm.Start(at(0)))
	assert.False(t, tm.Start(at(50)))

	tm.Tick(at(60))
	assert.Equal(t, 60.0, tm.ElapsedSeconds())
}

func TestTimer_PauseWhileStoppedIsNoop(t *testing.T) {
	tm := NewTimer(DefaultSegments())

	assert.False(t, tm.Pause(at(10)))
	assert.Zero(t, tm.ElapsedSeconds())
}

func TestTimer_RemainingMonotonic(t *testing.T) {
	tm := NewTimer([]Segment{{Name: "A", Minutes: 1}})
	tm.Start(at(0))

	prev := tm.RemainingSeconds()
	for s := 1; s <= 90; s++ {
		tm.Tick(at(s))
		cur := tm.RemainingSeconds()
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0)
		prev = cur
	}

	tm.Pause(at(90))
	frozen := tm.RemainingSeconds()
	tm.Tick(at(500))
	assert.Equal(t, frozen, tm.RemainingSeconds())
}

func TestTimer_AdvanceClampsAtLastSegment(t *testing.T) {
	segs := DefaultSegments()

	for n := 0; n <= 7; n++ {
		tm := NewTimer(segs)
		for i := 0; i < n; i++ {
			tm.Advance(at(i))
		}
		assert.Equal(t, min(n, len(segs)-1), tm.Index(), "after %d advances", n)
	}
}

func TestTimer_AdvanceCapturesSpentMinutes(t *testing.T) {
	tm := NewTimer(DefaultSegments())
	tm.Start(at(0))

	done := tm.Advance(at(754))

	assert.Equal(t, 0, done.Index)
	assert.Equal(t, "Warm-up", done.Segment.Name)
	assert.Equal(t, 10, done.Segment.Minutes)
	assert.Equal(t, 12.6, done.SpentMinutes)

	assert.Equal(t, 1, tm.Index())
	assert.False(t, tm.Running())
	assert.Zero(t, tm.ElapsedSeconds())
}

func TestTimer_AdvanceWhilePausedUsesFrozenElapsed(t *testing.T) {
	tm := NewTimer(DefaultSegments())
	tm.Start(at(0))
	tm.Pause(at(90))

	done := tm.Advance(at(1000))
	assert.Equal(t, 1.5, done.SpentMinutes)
}

func TestTimer_ResetRestoresFirstSegment(t *testing.T) {
	tm := NewTimer(DefaultSegments())
	tm.Start(at(0))
	tm.Advance(at(100))
	tm.Start(at(100))
	tm.Tick(at(200))

	tm.Reset()

	assert.Equal(t, 0, tm.Index())
	assert.False(t, tm.Running())
	assert.Equal(t, 10*60, tm.RemainingSeconds())
	assert.Zero(t, tm.Progress())
}

func TestTimer_SetSegmentsClampsIndex(t *testing.T) {
	tm := NewTimer(DefaultSegments())
	tm.Advance(at(0))
	tm.Advance(at(0))
	tm.Advance(at(0))
	require.Equal(t, 3, tm.Index())

	tm.SetSegments([]Segment{{Name: "Only", Minutes: 500}})

	assert.Equal(t, 0, tm.Index())
	assert.Equal(t, Segment{Name: "Only", Minutes: MaxSegmentMinutes}, tm.Current())
}

func TestNormalizeSegments(t *testing.T) {
	got := NormalizeSegments([]Segment{
		{Name: "  Intro ", Minutes: 0},
		{Name: "", Minutes: 45},
		{Name: "Lab", Minutes: 999},
	})

	assert.Equal(t, []Segment{
		{Name: "Intro", Minutes: 1},
		{Name: "Block 2", Minutes: 45},
		{Name: "Lab", Minutes: 180},
	}, got)

	assert.Equal(t, DefaultSegments(), NormalizeSegments(nil))
}
