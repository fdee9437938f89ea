package client

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"class-panel/internal/http-server/router"
	"class-panel/internal/lecture"
	"class-panel/internal/lock"
	"class-panel/internal/service"
	"class-panel/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPanel(t *testing.T) *Client {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewService(log, lock.NewMemoryLock(), service.Options{
		Course:   "History I",
		Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Segments: lecture.DefaultSegments(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = svc.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(router.New(log, svc))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})

	// exercise the scheme-less form the CLI accepts
	return New(srv.Listener.Addr().String())
}

func TestClient_TimerAndNotes(t *testing.T) {
	c := newPanel(t)
	ctx := context.Background()

	s, err := c.Timer(ctx, "start")
	require.NoError(t, err)
	assert.True(t, s.Running)

	s, err = c.Timer(ctx, "advance")
	require.NoError(t, err)
	assert.Equal(t, 1, s.SegmentIndex)

	e, err := c.AddNote(ctx, "task", "read chapter 2", "k1")
	require.NoError(t, err)
	assert.Equal(t, lecture.NoSegment, e.Segment)

	_, err = c.AddNote(ctx, "task", "read chapter 2", "k1")
	require.Error(t, err)
	assert.True(t, IsCode(err, response.LOCKED))

	s, err = c.Session(ctx)
	require.NoError(t, err)
	assert.Len(t, s.Log, 2)
}

func TestClient_RosterExport(t *testing.T) {
	c := newPanel(t)
	ctx := context.Background()

	var buf bytes.Buffer
	_, err := c.Export(ctx, "roster", "csv", &buf)
	require.Error(t, err)
	assert.True(t, IsCode(err, response.EMPTY_EXPORT))

	r, err := c.SetRoster(ctx, "Ana\nBruno")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Added)

	r, err = c.SetPresence(ctx, "Ana", true)
	require.NoError(t, err)
	assert.True(t, r.Students[0].Present)

	name, err := c.Export(ctx, "roster", "csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, "attendance_History-I_2025-03-10.csv", name)
	assert.Contains(t, buf.String(), "2025-03-10,History I,Ana,true")

	require.NoError(t, c.ClearRoster(ctx))
	s, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.Roster)
}
