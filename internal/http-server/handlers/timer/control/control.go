package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"class-panel/api"
	"class-panel/pkg/response"
	"class-panel/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Action string

const (
	ActionStart   Action = "start"
	ActionPause   Action = "pause"
	ActionAdvance Action = "advance"
	ActionReset   Action = "reset"
)

type TimerController interface {
	Start(ctx context.Context) (*api.SessionResponse, error)
	Pause(ctx context.Context) (*api.SessionResponse, error)
	Advance(ctx context.Context) (*api.SessionResponse, error)
	Reset(ctx context.Context) (*api.SessionResponse, error)
}

type Response struct {
	response.Response
	Session *api.SessionResponse `json:"session,omitempty"`
}

// New serves one timer command. Start while running and pause while stopped
// answer 200 with the unchanged session.
func New(log *slog.Logger, controller TimerController, action Action) http.HandlerFunc {
	run := map[Action]func(context.Context) (*api.SessionResponse, error){
		ActionStart:   controller.Start,
		ActionPause:   controller.Pause,
		ActionAdvance: controller.Advance,
		ActionReset:   controller.Reset,
	}[action]
	if run == nil {
		panic(fmt.Sprintf("control: unknown timer action %q", action))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.timer.control.New"

		log := log.With(
			slog.String("op", op),
			slog.String("action", string(action)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		session, err := run(r.Context())

		if errors.Is(err, response.ErrUnavailable) {
			log.Warn("Session loop is stopped")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(string(response.UNAVAILABLE), "panel is shutting down"))
			return
		}

		if err != nil {
			log.Error("Failed to run timer command", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), fmt.Sprintf("failed to %s timer", action)))
			return
		}

		log.Info("Timer command applied",
			slog.Bool("running", session.Running),
			slog.Int("segment_index", session.SegmentIndex),
			slog.Float64("elapsed_seconds", session.ElapsedSeconds),
		)

		render.JSON(w, r, Response{
			Session: session,
		})
	}
}
