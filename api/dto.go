package api

import "time"

type Segment struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

type LogEntry struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Date           string    `json:"date"`
	Course         string    `json:"course"`
	Title          string    `json:"title,omitempty"`
	Theme          string    `json:"theme,omitempty"`
	Segment        string    `json:"segment"`
	PlannedMinutes *int      `json:"planned_minutes,omitempty"`
	SpentMinutes   *float64  `json:"spent_minutes,omitempty"`
	Content        string    `json:"content,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type Student struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

type Summary struct {
	Blocks         int     `json:"blocks"`
	Notes          int     `json:"notes"`
	PlannedMinutes float64 `json:"planned_minutes"`
	SpentMinutes   float64 `json:"spent_minutes"`
	MeanSpent      float64 `json:"mean_spent_minutes"`
	Overrun        float64 `json:"overrun_minutes"`
}

type SessionResponse struct {
	SessionID        string     `json:"session_id"`
	Course           string     `json:"course"`
	Date             string     `json:"date"`
	Title            string     `json:"title"`
	Theme            string     `json:"theme"`
	Segments         []Segment  `json:"segments"`
	SegmentIndex     int        `json:"segment_index"`
	Segment          Segment    `json:"segment"`
	Running          bool       `json:"running"`
	ElapsedSeconds   float64    `json:"elapsed_seconds"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Remaining        string     `json:"remaining"`
	Progress         float64    `json:"progress"`
	Log              []LogEntry `json:"log"`
	Roster           []Student  `json:"roster"`
	Summary          Summary    `json:"summary"`
}

// ConfigureRequest is a partial update; omitted fields keep their value.
// Segments, when present, must list every segment of the plan in order.
type ConfigureRequest struct {
	Course   *string   `json:"course,omitempty"`
	Date     *string   `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Title    *string   `json:"title,omitempty"`
	Theme    *string   `json:"theme,omitempty"`
	Segments []Segment `json:"segments,omitempty" validate:"omitempty,max=32,dive"`
}

type NoteRequest struct {
	Kind string `json:"kind" validate:"required,oneof=content task assignment"`
	Text string `json:"text" validate:"notblank"`
}

type RosterRequest struct {
	Text string `json:"text"`
}

type PresenceRequest struct {
	Present *bool `json:"present" validate:"required"`
}

type RosterResponse struct {
	Added    int       `json:"added"`
	Students []Student `json:"students"`
}
