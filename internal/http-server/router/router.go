package router

import (
	"log/slog"
	"net/http"

	"class-panel/internal/http-server/handlers/log/download"
	notesCreate "class-panel/internal/http-server/handlers/notes/create"
	rosterClear "class-panel/internal/http-server/handlers/roster/clear"
	rosterDownload "class-panel/internal/http-server/handlers/roster/download"
	rosterPresence "class-panel/internal/http-server/handlers/roster/presence"
	rosterSet "class-panel/internal/http-server/handlers/roster/set"
	sessionConfigure "class-panel/internal/http-server/handlers/session/configure"
	sessionGet "class-panel/internal/http-server/handlers/session/get"
	sessionStream "class-panel/internal/http-server/handlers/session/stream"
	"class-panel/internal/http-server/handlers/timer/control"
	"class-panel/internal/service"
	"class-panel/pkg/middleware/mwLogger"
	"class-panel/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func New(log *slog.Logger, svc *service.Service) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(CORS)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(string(response.NOT_FOUND), "no such route"))
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Session
	router.Get("/session", sessionGet.New(log, svc))
	router.Put("/session", sessionConfigure.New(log, svc))
	router.Get("/session/stream", sessionStream.New(log, svc))

	// Timer
	router.Post("/timer/start", control.New(log, svc, control.ActionStart))
	router.Post("/timer/pause", control.New(log, svc, control.ActionPause))
	router.Post("/timer/advance", control.New(log, svc, control.ActionAdvance))
	router.Post("/timer/reset", control.New(log, svc, control.ActionReset))

	// Notes and log
	router.Post("/notes", notesCreate.New(log, svc))
	router.Get("/log/export", download.New(log, svc))

	// Attendance
	router.Put("/roster", rosterSet.New(log, svc))
	router.Delete("/roster", rosterClear.New(log, svc))
	router.Put("/roster/{name}", rosterPresence.New(log, svc))
	router.Get("/roster/export", rosterDownload.New(log, svc))

	return router
}
