package lecture

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

var RosterColumns = []string{"date", "course", "name", "present"}

type Student struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// Roster maps student names to presence. It only grows: names leave it
// through Clear and nothing else.
type Roster struct {
	present map[string]bool
}

func NewRoster() *Roster {
	return &Roster{present: make(map[string]bool)}
}

// ParseNames splits pasted text into trimmed, non-empty, unique names in
// first-seen order.
func ParseNames(raw string) []string {
	seen := make(map[string]struct{})
	var names []string

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

// SetFromText adds names not yet known as absent and keeps everyone else,
// including names missing from raw. It returns how many names were added.
func (r *Roster) SetFromText(raw string) int {
	added := 0
	for _, name := range ParseNames(raw) {
		if _, ok := r.present[name]; ok {
			continue
		}
		r.present[name] = false
		added++
	}

	return added
}

// SetPresence records presence for name, adding it when unknown.
func (r *Roster) SetPresence(name string, present bool) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	r.present[name] = present

	return true
}

func (r *Roster) Clear() {
	r.present = make(map[string]bool)
}

func (r *Roster) Len() int {
	return len(r.present)
}

func (r *Roster) Present(name string) (bool, bool) {
	p, ok := r.present[name]
	return p, ok
}

// Students lists the roster sorted by name.
func (r *Roster) Students() []Student {
	out := make([]Student, 0, len(r.present))
	for name, p := range r.present {
		out = append(out, Student{Name: name, Present: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

func (r *Roster) Export(date time.Time, course string) Table {
	students := r.Students()
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			date.Format(DateLayout),
			course,
			s.Name,
			strconv.FormatBool(s.Present),
		})
	}

	return Table{Header: RosterColumns, Rows: rows}
}
