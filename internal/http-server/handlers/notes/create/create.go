package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"class-panel/api"
	"class-panel/internal/http-server/validate"
	"class-panel/internal/lecture"
	"class-panel/pkg/response"
	"class-panel/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type NoteCreator interface {
	AddNote(ctx context.Context, req *api.NoteRequest, idempotencyKey *string) (*api.LogEntry, error)
}

type Request struct {
	api.NoteRequest
}

type Response struct {
	response.Response
	Entry *api.LogEntry `json:"entry,omitempty"`
}

func New(log *slog.Logger, creator NoteCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.String("kind", req.Kind), slog.Int("length", len(req.Text)))

		msg, err := validate.Struct(req.NoteRequest)
		if err != nil {
			log.Error("Failed to validate request", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to validate request"))
			return
		}
		if msg != "" {
			log.Warn("Note rejected", slog.String("reason", msg))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), msg))
			return
		}

		idempotencyKey := r.Header.Get("Idempotency-Key")
		var idempotencyKeyPtr *string
		if idempotencyKey != "" {
			idempotencyKeyPtr = &idempotencyKey
		}

		entry, err := creator.AddNote(r.Context(), &req.NoteRequest, idempotencyKeyPtr)

		if errors.Is(err, response.ErrLocked) {
			log.Warn("Note already submitted", slog.String("idempotency_key", idempotencyKey))
			render.Status(r, http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "note already submitted"))
			return
		}

		if errors.Is(err, lecture.ErrEmptyNote) || errors.Is(err, lecture.ErrUnknownNoteKind) {
			log.Warn("Note rejected", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "write something to record"))
			return
		}

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if err != nil {
			log.Error("Failed to add note", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to add note"))
			return
		}

		log.Info("Note recorded", slog.String("id", entry.ID), slog.String("segment", entry.Segment))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Entry: entry,
		})
	}
}
