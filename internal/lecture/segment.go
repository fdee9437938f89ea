package lecture

import (
	"fmt"
	"strings"
)

const (
	MinSegmentMinutes = 1
	MaxSegmentMinutes = 180
)

// Segment is a named, fixed-duration block of a lecture. Its position in the
// session's segment list is its identity.
type Segment struct {
	Name    string `json:"name" yaml:"name"`
	Minutes int    `json:"minutes" yaml:"minutes"`
}

func (s Segment) PlannedSeconds() float64 {
	return float64(s.Minutes * 60)
}

func DefaultSegments() []Segment {
	return []Segment{
		{Name: "Warm-up", Minutes: 10},
		{Name: "Lecture", Minutes: 25},
		{Name: "Activity", Minutes: 20},
		{Name: "Wrap-up", Minutes: 5},
	}
}

func ClampMinutes(m int) int {
	if m < MinSegmentMinutes {
		return MinSegmentMinutes
	}
	if m > MaxSegmentMinutes {
		return MaxSegmentMinutes
	}
	return m
}

// NormalizeSegments clamps minutes and fills blank names. An empty input
// yields the default plan so the timer always has a current segment.
func NormalizeSegments(in []Segment) []Segment {
	if len(in) == 0 {
		return DefaultSegments()
	}

	out := make([]Segment, len(in))
	for i, s := range in {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = fmt.Sprintf("Block %d", i+1)
		}
		out[i] = Segment{Name: name, Minutes: ClampMinutes(s.Minutes)}
	}

	return out
}
