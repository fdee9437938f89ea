package clear

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"class-panel/pkg/response"
	"class-panel/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type RosterClearer interface {
	ClearRoster(ctx context.Context) error
}

func New(log *slog.Logger, clearer RosterClearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roster.clear.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err := clearer.ClearRoster(r.Context())

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if err != nil {
			log.Error("Failed to clear roster", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to clear roster"))
			return
		}

		log.Info("Roster cleared")
		w.WriteHeader(http.StatusNoContent)
	}
}
