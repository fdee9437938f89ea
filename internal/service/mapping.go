package service

import (
	"class-panel/api"
	"class-panel/internal/lecture"
)

func toSessionResponse(snap lecture.Snapshot) api.SessionResponse {
	segments := make([]api.Segment, len(snap.Segments))
	for i, seg := range snap.Segments {
		segments[i] = api.Segment{Name: seg.Name, Minutes: seg.Minutes}
	}

	log := make([]api.LogEntry, 0, len(snap.Log))
	for _, e := range snap.Log {
		log = append(log, toLogEntry(e))
	}

	return api.SessionResponse{
		SessionID:        snap.SessionID.String(),
		Course:           snap.Info.Course,
		Date:             snap.Info.Date.Format(lecture.DateLayout),
		Title:            snap.Info.Title,
		Theme:            snap.Info.Theme,
		Segments:         segments,
		SegmentIndex:     snap.SegmentIndex,
		Segment:          api.Segment{Name: snap.Segment.Name, Minutes: snap.Segment.Minutes},
		Running:          snap.Running,
		ElapsedSeconds:   snap.ElapsedSeconds,
		RemainingSeconds: snap.RemainingSeconds,
		Remaining:        snap.RemainingLabel(),
		Progress:         snap.Progress,
		Log:              log,
		Roster:           toStudents(snap.Roster),
		Summary:          api.Summary(snap.Summary),
	}
}

func toLogEntry(e lecture.Entry) api.LogEntry {
	switch v := e.(type) {
	case lecture.BlockEntry:
		planned, spent := v.PlannedMinutes, v.SpentMinutes
		return api.LogEntry{
			ID:             v.ID.String(),
			Kind:           string(lecture.KindBlock),
			Date:           v.Context.Date.Format(lecture.DateLayout),
			Course:         v.Context.Course,
			Title:          v.Context.Title,
			Theme:          v.Context.Theme,
			Segment:        v.Segment,
			PlannedMinutes: &planned,
			SpentMinutes:   &spent,
			Timestamp:      v.Timestamp,
		}
	case lecture.NoteEntry:
		return api.LogEntry{
			ID:        v.ID.String(),
			Kind:      string(v.Label),
			Date:      v.Context.Date.Format(lecture.DateLayout),
			Course:    v.Context.Course,
			Title:     v.Context.Title,
			Theme:     v.Context.Theme,
			Segment:   v.Segment,
			Content:   v.Text,
			Timestamp: v.Timestamp,
		}
	}

	return api.LogEntry{ID: e.EntryID().String(), Kind: string(e.Kind())}
}

func toStudents(in []lecture.Student) []api.Student {
	out := make([]api.Student, len(in))
	for i, st := range in {
		out[i] = api.Student(st)
	}
	return out
}

func toRosterResponse(added int, students []lecture.Student) api.RosterResponse {
	return api.RosterResponse{Added: added, Students: toStudents(students)}
}
