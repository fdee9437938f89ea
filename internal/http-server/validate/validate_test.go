package validate

import (
	"testing"

	"class-panel/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_NoteRequest(t *testing.T) {
	msg, err := Struct(api.NoteRequest{Kind: "task", Text: "read ch. 2"})
	require.NoError(t, err)
	assert.Empty(t, msg)

	msg, err = Struct(api.NoteRequest{Kind: "task", Text: " \n\t"})
	require.NoError(t, err)
	assert.Equal(t, "text must not be blank", msg)

	msg, err = Struct(api.NoteRequest{Kind: "quiz", Text: "x"})
	require.NoError(t, err)
	assert.Contains(t, msg, "kind")
}

func TestStruct_ConfigureRequestDate(t *testing.T) {
	good, bad := "2025-03-10", "10/03/2025"

	msg, err := Struct(api.ConfigureRequest{Date: &good})
	require.NoError(t, err)
	assert.Empty(t, msg)

	msg, err = Struct(api.ConfigureRequest{Date: &bad})
	require.NoError(t, err)
	assert.Contains(t, msg, "date")
}

func TestStruct_PresenceRequired(t *testing.T) {
	msg, err := Struct(api.PresenceRequest{})
	require.NoError(t, err)
	assert.Contains(t, msg, "present")
}
