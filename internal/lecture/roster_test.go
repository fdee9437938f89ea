package lecture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoster_SetFromTextDedupsAndAccumulates(t *testing.T) {
	r := NewRoster()

	assert.Equal(t, 2, r.SetFromText("A\nB\nA\n"))
	assert.Equal(t, []Student{{Name: "A"}, {Name: "B"}}, r.Students())

	r.SetPresence("B", true)

	assert.Equal(t, 1, r.SetFromText("B\nC\n"))
	assert.Equal(t, []Student{
		{Name: "A", Present: false},
		{Name: "B", Present: true},
		{Name: "C", Present: false},
	}, r.Students())
}

func TestParseNames(t *testing.T) {
	got := ParseNames("  Zoe \r\n\n\t\nAda\nZoe\n  \nada\n")
	assert.Equal(t, []string{"Zoe", "Ada", "ada"}, got)
}

func TestRoster_SetPresenceAddsUnknownName(t *testing.T) {
	r := NewRoster()

	assert.True(t, r.SetPresence(" Max ", true))
	p, ok := r.Present("Max")
	assert.True(t, ok)
	assert.True(t, p)

	assert.False(t, r.SetPresence("   ", true))
	assert.Equal(t, 1, r.Len())
}

func TestRoster_Clear(t *testing.T) {
	r := NewRoster()
	r.SetFromText("A\nB")
	r.Clear()

	assert.Zero(t, r.Len())
	assert.Empty(t, r.Students())
}

func TestRoster_ExportSortedByName(t *testing.T) {
	r := NewRoster()
	r.SetFromText("Carla\nAna\nBruno")
	r.SetPresence("Bruno", true)

	tbl := r.Export(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "History I")

	assert.Equal(t, RosterColumns, tbl.Header)
	assert.Equal(t, [][]string{
		{"2025-03-10", "History I", "Ana", "false"},
		{"2025-03-10", "History I", "Bruno", "true"},
		{"2025-03-10", "History I", "Carla", "false"},
	}, tbl.Rows)
}
