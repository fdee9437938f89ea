package lecture

import (
	"math"
	"time"
)

// Timer is the segmented countdown. Elapsed time is wall-clock based: while
// running it is recomputed from startedAt on every Tick, and startedAt is
// backdated by the frozen elapsed value on Start, so any number of
// pause/resume cycles keeps the accumulated total.
type Timer struct {
	segments  []Segment
	running   bool
	startedAt time.Time
	elapsed   time.Duration
	index     int
}

// CompletedBlock is what Advance hands back to the session for logging.
type CompletedBlock struct {
	Index        int
	Segment      Segment
	SpentMinutes float64
}

func NewTimer(segments []Segment) *Timer {
	return &Timer{segments: NormalizeSegments(segments)}
}

// Start resumes from the frozen elapsed value. Calling it while running does nothing.
func (t *Timer) Start(now time.Time) bool {
	if t.running {
		return false
	}
	t.running = true
	t.startedAt = now.Add(-t.elapsed)

	return true
}

// Pause freezes elapsed at its value as of now. Calling it while stopped does nothing.
func (t *Timer) Pause(now time.Time) bool {
	if !t.running {
		return false
	}
	t.Tick(now)
	t.running = false

	return true
}

// Advance closes the current segment and moves to the next one. The index is
// clamped at the last segment, so advancing there logs it again.
func (t *Timer) Advance(now time.Time) CompletedBlock {
	t.Tick(now)

	done := CompletedBlock{
		Index:        t.index,
		Segment:      t.Current(),
		SpentMinutes: math.Round(t.elapsed.Minutes()*10) / 10,
	}

	t.index = min(t.index+1, len(t.segments)-1)
	t.running = false
	t.elapsed = 0
	t.startedAt = time.Time{}

	return done
}

func (t *Timer) Reset() {
	t.running = false
	t.elapsed = 0
	t.startedAt = time.Time{}
	t.index = 0
}

// Tick recomputes elapsed time while running; it is a no-op otherwise.
func (t *Timer) Tick(now time.Time) {
	if !t.running {
		return
	}
	t.elapsed = max(0, now.Sub(t.startedAt))
}

// SetSegments replaces the plan in place. The current index is kept when it
// still exists and clamped to the last segment otherwise.
func (t *Timer) SetSegments(segments []Segment) {
	t.segments = NormalizeSegments(segments)
	t.index = min(t.index, len(t.segments)-1)
}

func (t *Timer) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

func (t *Timer) Current() Segment {
	return t.segments[t.index]
}

func (t *Timer) Index() int {
	return t.index
}

func (t *Timer) Running() bool {
	return t.running
}

func (t *Timer) Elapsed() time.Duration {
	return t.elapsed
}

func (t *Timer) ElapsedSeconds() float64 {
	return t.elapsed.Seconds()
}

// RemainingSeconds never goes below zero; an overrun segment keeps reporting 0.
func (t *Timer) RemainingSeconds() int {
	planned := t.Current().Minutes * 60
	return max(0, planned-int(t.elapsed/time.Second))
}

func (t *Timer) Progress() float64 {
	planned := t.Current().PlannedSeconds()
	if planned <= 0 {
		return 0
	}

	return math.Min(1, math.Max(0, t.elapsed.Seconds()/planned))
}
