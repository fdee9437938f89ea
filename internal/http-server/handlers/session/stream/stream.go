package stream

import (
	"context"
	"errors"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"class-panel/api"
	"class-panel/pkg/response"
	"class-panel/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const eventSession = "session"

type SessionStreamer interface {
	GetSession(ctx context.Context) (*api.SessionResponse, error)
	Subscribe() (<-chan api.SessionResponse, func())
}

// New streams session snapshots as server-sent events: the current one on
// connect, then one per command and per refresh tick while the timer runs.
func New(log *slog.Logger, streamer SessionStreamer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.stream.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		flusher, ok := w.(http.Flusher)
		if !ok {
			log.Error("Streaming unsupported by response writer")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "streaming unsupported"))
			return
		}

		updates, unsubscribe := streamer.Subscribe()
		defer unsubscribe()

		current, err := streamer.GetSession(r.Context())

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if err != nil {
			log.Error("Failed to get session", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get session"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		log.Info("Stream opened")
		defer log.Info("Stream closed")

		if err := writeEvent(w, current); err != nil {
			log.Warn("Failed to write event", sl.Err(err))
			return
		}
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, &snap); err != nil {
					log.Warn("Failed to write event", sl.Err(err))
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w io.Writer, snap *api.SessionResponse) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventSession, data)
	return err
}
