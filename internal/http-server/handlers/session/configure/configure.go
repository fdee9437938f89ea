package configure

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

type SessionConfigurer interface {
	Configure(ctx context.Context, req *api.ConfigureRequest) (*api.SessionResponse, error)
}

type Request struct {
	api.ConfigureRequest
}

type Response struct {
	response.Response
	Session *api.SessionResponse `json:"session,omitempty"`
}

func New(log *slog.Logger, configurer SessionConfigurer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.session.configure.New"

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

		log.Info("Request body decoded", slog.Any("request", req))

		msg, err := validate.Struct(req.ConfigureRequest)
		if err != nil {
			log.Error("Failed to validate request", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to validate request"))
			return
		}
		if msg != "" {
			log.Warn("Invalid request", slog.String("reason", msg))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), msg))
			return
		}

		session, err := configurer.Configure(r.Context(), &req.ConfigureRequest)

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if errors.Is(err, lecture.ErrSegmentCount) {
			log.Warn("Segment count changed", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "segments can be renamed and resized but not added or removed"))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Warn("Invalid configuration", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), "invalid configuration"))
			return
		}

		if err != nil {
			log.Error("Failed to configure session", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to configure session"))
			return
		}

		log.Info("Session configured", slog.String("course", session.Course), slog.Int("segments", len(session.Segments)))

		render.JSON(w, r, Response{
			Session: session,
		})
	}
}
