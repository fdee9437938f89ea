package set

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"class-panel/api"
	"class-panel/pkg/response"
	"class-panel/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type RosterSetter interface {
	SetRoster(ctx context.Context, req *api.RosterRequest) (*api.RosterResponse, error)
}

type Request struct {
	api.RosterRequest
}

type Response struct {
	response.Response
	Roster *api.RosterResponse `json:"roster,omitempty"`
}

// New merges a pasted name list into the roster. Names already present keep
// their state and names missing from the text are kept.
func New(log *slog.Logger, setter RosterSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roster.set.New"

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

		roster, err := setter.SetRoster(r.Context(), &req.RosterRequest)

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if err != nil {
			log.Error("Failed to set roster", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to set roster"))
			return
		}

		log.Info("Roster updated", slog.Int("added", roster.Added), slog.Int("total", len(roster.Students)))

		render.JSON(w, r, Response{
			Roster: roster,
		})
	}
}
