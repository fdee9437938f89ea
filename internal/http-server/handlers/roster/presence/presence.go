package presence

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"class-panel/api"
	"class-panel/internal/http-server/validate"
	"class-panel/internal/lecture"
	"class-panel/pkg/response"
	"class-panel/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type PresenceSetter interface {
	SetPresence(ctx context.Context, name string, present bool) (*api.RosterResponse, error)
}

type Request struct {
	api.PresenceRequest
}

type Response struct {
	response.Response
	Roster *api.RosterResponse `json:"roster,omitempty"`
}

func New(log *slog.Logger, setter PresenceSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roster.presence.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		name, err := nameParam(r)
		if err != nil || name == "" {
			log.Error("name is empty")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "name is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if msg, err := validate.Struct(req.PresenceRequest); err != nil || msg != "" {
			log.Warn("Invalid request", slog.String("reason", msg))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "present is required"))
			return
		}

		roster, err := setter.SetPresence(r.Context(), name, *req.Present)

		if errors.Is(err, lecture.ErrBlankName) {
			log.Warn("Blank student name")
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "name must not be blank"))
			return
		}

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if err != nil {
			log.Error("Failed to set presence", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to set presence"))
			return
		}

		log.Info("Presence set", slog.String("name", name), slog.Bool("present", *req.Present))

		render.JSON(w, r, Response{
			Roster: roster,
		})
	}
}

// nameParam returns the decoded {name} segment. chi matches on RawPath when
// the request carries one, leaving the param escaped; otherwise it is already
// decoded and must not be unescaped again.
func nameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}
